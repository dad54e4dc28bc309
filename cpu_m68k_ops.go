// cpu_m68k_ops.go - 68000 instruction semantics and the construction-time
// decode table consumed by buildDecodeCache.

package main

func sizeOf(bits2 int) int {
	switch bits2 {
	case 0:
		return 1
	case 1:
		return 2
	default:
		return 4
	}
}

// m68kOpcodeTable lists (mask, signature, routine) rows in priority order:
// the decode cache keeps the FIRST row whose (opcode&mask)==signature for
// each of the 65536 opcodes, so more specific patterns are listed before
// the broader families they would otherwise be swallowed by.
func m68kOpcodeTable() []m68kOpcodeEntry {
	return []m68kOpcodeEntry{
		// exact single-opcode forms
		{0xFFFF, 0x4E71, opNop},
		{0xFFFF, 0x4E75, opRts},
		{0xFFFF, 0x4E73, opRte},
		{0xFFFF, 0x4E77, opRtr},
		{0xFFFF, 0x4E76, opTrapv},
		{0xFFFF, 0x4E70, opReset},
		{0xFFFF, 0x4E72, opStop},
		{0xFFFF, 0x4AFC, opIllegal},

		// register-field families with fixed high bits
		{0xFFF8, 0x4E50, opLink},
		{0xFFF8, 0x4E58, opUnlk},
		{0xFFF8, 0x4E60, opMoveToUSP},
		{0xFFF8, 0x4E68, opMoveFromUSP},
		{0xFFF8, 0x4840, opSwap},
		{0xFFC0, 0x4840, opPea},
		{0xFFF8, 0x4880, opExtWord},
		{0xFFF8, 0x48C0, opExtLong},

		{0xFFC0, 0x4E80, opJsr},
		{0xFFC0, 0x4EC0, opJmp},

		{0xFFC0, 0x4AC0, opTas},

		{0xF1C0, 0x41C0, opLea},

		{0xF1F8, 0xC140, opExg}, // Dx,Dy
		{0xF1F8, 0xC148, opExg}, // Ax,Ay
		{0xF1F8, 0xC188, opExg}, // Dx,Ay

		{0xF000, 0x7000, opMoveq},

		// MOVE to/from SR/CCR: bits7-6==11 distinguishes these from the
		// size-keyed CLR/NEG/NEGX/NOT/TST family below, so they must be
		// matched first.
		{0xFFC0, 0x46C0, opMoveToSR},
		{0xFFC0, 0x40C0, opMoveFromSR},
		{0xFFC0, 0x44C0, opMoveToCCR},
		{0xFFC0, 0x42C0, opMoveFromCCR},

		// MOVE (includes MOVEA when dest mode==001)
		{0xF000, 0x1000, opMove}, // byte
		{0xF000, 0x3000, opMove}, // word
		{0xF000, 0x2000, opMove}, // long

		// immediate-to-EA arithmetic/logical (ORI/ANDI/SUBI/ADDI/EORI/CMPI)
		{0xFF00, 0x0000, opOriI},
		{0xFF00, 0x0200, opAndiI},
		{0xFF00, 0x0400, opSubiI},
		{0xFF00, 0x0600, opAddiI},
		{0xFF00, 0x0A00, opEoriI},
		{0xFF00, 0x0C00, opCmpiI},

		// static bit ops with immediate bit number: 0000 1000 oo mmm rrr
		{0xFFC0, 0x0800, opBtstImm},
		{0xFFC0, 0x0840, opBchgImm},
		{0xFFC0, 0x0880, opBclrImm},
		{0xFFC0, 0x08C0, opBsetImm},

		// dynamic bit ops: 0000 ddd1 oo mmm rrr
		{0xF1C0, 0x0100, opBtstDyn},
		{0xF1C0, 0x0140, opBchgDyn},
		{0xF1C0, 0x0180, opBclrDyn},
		{0xF1C0, 0x01C0, opBsetDyn},

		// MOVEP: 0000 ddd1 oo 001 rrr
		{0xF1F8, 0x0108, opMovepWtoR},
		{0xF1F8, 0x0148, opMovepLtoR},
		{0xF1F8, 0x0188, opMovepWfromR},
		{0xF1F8, 0x01C8, opMovepLfromR},

		// MOVEM: 0100 100d mm mmm rrr (mode bit11=dir: 0=reg->mem,1=mem->reg)
		{0xFFB8, 0x4880, opMovemMem}, // reg->mem, predecrement/other
		{0xFFB8, 0x4C80, opMovemReg}, // mem->reg, postincrement/other

		// Scc/DBcc before ADDQ/SUBQ and Bcc so they win the bits7-6==11 space
		{0xF0F8, 0x50C8, opDbcc},
		{0xF0C0, 0x50C0, opScc},

		{0xF100, 0x5000, opAddq},
		{0xF100, 0x5100, opSubq},

		{0xF000, 0x6000, opBccOrBra},

		{0xFF00, 0x4200, opClr},
		{0xFF00, 0x4400, opNeg},
		{0xFF00, 0x4000, opNegx},
		{0xFF00, 0x4600, opNot},
		{0xFF00, 0x4A00, opTst},

		{0xF1C0, 0x4180, opChk},

		{0xF8C0, 0xE0C0, opShiftMem}, // memory-form shift/rotate (mode>=2)
		{0xF018, 0xE000, opShiftReg}, // register-form shift/rotate

		{0xF130, 0xC100, opAbcd},
		{0xF130, 0x8100, opSbcd},
		{0xFFC0, 0x4800, opNbcd},

		{0xF130, 0xD100, opAddx},
		{0xF130, 0x9100, opSubx},

		{0xF000, 0xD000, opAddFamily},
		{0xF000, 0x9000, opSubFamily},
		{0xF000, 0xB000, opCmpEorFamily},
		{0xF000, 0xC000, opAndMulFamily},
		{0xF000, 0x8000, opOrDivFamily},

		{0xF000, 0xA000, opIllegal}, // line-A emulator trap: unimplemented
		{0xF000, 0xF000, opIllegal}, // line-F coprocessor trap: unimplemented

		{0xFFF0, 0x4E40, opTrap},
	}
}

// --- data movement -----------------------------------------------------

func opMove(c *M68KCPU, op uint16) {
	var size int
	switch op & 0x3000 {
	case 0x1000:
		size = 1
	case 0x3000:
		size = 2
	case 0x2000:
		size = 4
	}
	srcMode := int(op>>3) & 7
	srcReg := int(op) & 7
	dstMode := int(op>>6) & 7
	dstReg := int(op>>9) & 7

	src := c.resolveEA(srcMode, srcReg, size)
	v := src.Read(size)
	dst := c.resolveEA(dstMode, dstReg, size)
	dst.Write(size, v)

	if dstMode != 1 { // MOVEA does not affect flags
		c.setFlagsNZ(v, size)
	}
}

func opMoveq(c *M68KCPU, op uint16) {
	reg := int(op>>9) & 7
	data := signExtend(uint32(op&0xFF), 1)
	c.D[reg] = data
	c.setFlagsNZ(data, 4)
}

func opLea(c *M68KCPU, op uint16) {
	reg := int(op>>9) & 7
	mode := int(op>>3) & 7
	srcReg := int(op) & 7
	ea := c.resolveEA(mode, srcReg, 4)
	c.writeA(reg, ea.Addr())
}

func opPea(c *M68KCPU, op uint16) {
	mode := int(op>>3) & 7
	srcReg := int(op) & 7
	ea := c.resolveEA(mode, srcReg, 4)
	c.SSP -= 4
	c.bus.Poke32(c.SSP, ea.Addr())
}

func opSwap(c *M68KCPU, op uint16) {
	reg := int(op) & 7
	v := c.D[reg]
	c.D[reg] = v<<16 | v>>16
	c.setFlagsNZ(c.D[reg], 4)
}

func opExtWord(c *M68KCPU, op uint16) {
	reg := int(op) & 7
	v := signExtend(c.D[reg]&0xFF, 1)
	c.D[reg] = (c.D[reg] &^ 0xFFFF) | (v & 0xFFFF)
	c.setFlagsNZ(c.D[reg], 2)
}

func opExtLong(c *M68KCPU, op uint16) {
	reg := int(op) & 7
	v := signExtend(c.D[reg]&0xFFFF, 2)
	c.D[reg] = v
	c.setFlagsNZ(c.D[reg], 4)
}

func opExg(c *M68KCPU, op uint16) {
	rx := int(op>>9) & 7
	ry := int(op) & 7
	mode := op & 0xF8
	switch mode {
	case 0x40:
		c.D[rx], c.D[ry] = c.D[ry], c.D[rx]
	case 0x48:
		a, b := c.readA(rx), c.readA(ry)
		c.writeA(rx, b)
		c.writeA(ry, a)
	case 0x88:
		a, d := c.readA(rx), c.D[ry]
		c.writeA(rx, d)
		c.D[ry] = a
	}
}

func opMoveToUSP(c *M68KCPU, op uint16) {
	if !c.checkSupervisor() {
		return
	}
	c.USP = c.readA(int(op) & 7)
}

func opMoveFromUSP(c *M68KCPU, op uint16) {
	if !c.checkSupervisor() {
		return
	}
	c.writeA(int(op)&7, c.USP)
}

func opLink(c *M68KCPU, op uint16) {
	reg := int(op) & 7
	disp := signExtend(uint32(c.fetchWord()), 2)
	c.SSP -= 4
	c.bus.Poke32(c.SSP, c.readA(reg))
	c.writeA(reg, c.SSP)
	c.SSP += disp
}

func opUnlk(c *M68KCPU, op uint16) {
	reg := int(op) & 7
	a := c.readA(reg)
	c.SSP = a
	v, _ := c.bus.Peek32(c.SSP)
	c.SSP += 4
	c.writeA(reg, v)
}

func opMovemMem(c *M68KCPU, op uint16) {
	size := 2
	if op&0x0040 != 0 {
		size = 4
	}
	mask := c.fetchWord()
	mode := int(op>>3) & 7
	reg := int(op) & 7
	if mode == 4 { // predecrement: register order reversed, list is A7..D0
		addr := c.readA(reg)
		if addr&1 != 0 {
			c.raiseAddressError()
			return
		}
		for i := 0; i < 16; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			regIdx := 15 - i // 0-7 = D0-D7, 8-15 = A0-A7
			var v uint32
			if regIdx < 8 {
				v = c.D[regIdx]
			} else {
				v = c.readA(regIdx - 8)
			}
			addr -= uint32(size)
			if size == 2 {
				c.bus.Poke16(addr, uint16(v))
			} else {
				c.bus.Poke32(addr, v)
			}
		}
		c.writeA(reg, addr)
		return
	}
	ea := c.resolveEA(mode, reg, size)
	addr := ea.addr
	if addr&1 != 0 {
		c.raiseAddressError()
		return
	}
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		var v uint32
		if i < 8 {
			v = c.D[i]
		} else {
			v = c.readA(i - 8)
		}
		if size == 2 {
			c.bus.Poke16(addr, uint16(v))
		} else {
			c.bus.Poke32(addr, v)
		}
		addr += uint32(size)
	}
}

func opMovemReg(c *M68KCPU, op uint16) {
	size := 2
	if op&0x0040 != 0 {
		size = 4
	}
	mask := c.fetchWord()
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, size)
	addr := ea.addr
	if addr&1 != 0 {
		c.raiseAddressError()
		return
	}
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		var v uint32
		if size == 2 {
			w, _ := c.bus.Peek16(addr)
			v = signExtend(uint32(w), 2)
		} else {
			v, _ = c.bus.Peek32(addr)
		}
		if i < 8 {
			c.D[i] = v
		} else {
			c.writeA(i-8, v)
		}
		addr += uint32(size)
	}
	if mode == 3 { // postincrement
		c.writeA(reg, addr)
	}
}

func opMovepWtoR(c *M68KCPU, op uint16) { movepToReg(c, op, 2) }
func opMovepLtoR(c *M68KCPU, op uint16) { movepToReg(c, op, 4) }

func movepToReg(c *M68KCPU, op uint16, size int) {
	dreg := int(op>>9) & 7
	areg := int(op) & 7
	disp := signExtend(uint32(c.fetchWord()), 2)
	addr := c.readA(areg) + disp
	var v uint32
	for i := 0; i < size; i++ {
		b, _ := c.bus.Peek8(addr)
		v = v<<8 | uint32(b)
		addr += 2
	}
	if size == 2 {
		c.D[dreg] = (c.D[dreg] &^ 0xFFFF) | v
	} else {
		c.D[dreg] = v
	}
}

func opMovepWfromR(c *M68KCPU, op uint16) { movepFromReg(c, op, 2) }
func opMovepLfromR(c *M68KCPU, op uint16) { movepFromReg(c, op, 4) }

func movepFromReg(c *M68KCPU, op uint16, size int) {
	dreg := int(op>>9) & 7
	areg := int(op) & 7
	disp := signExtend(uint32(c.fetchWord()), 2)
	addr := c.readA(areg) + disp
	v := c.D[dreg]
	for i := size - 1; i >= 0; i-- {
		c.bus.Poke8(addr, byte(v>>(uint(i)*8)))
		addr += 2
	}
}

// --- SR/CCR access -------------------------------------------------------

func opMoveToSR(c *M68KCPU, op uint16) {
	if !c.checkSupervisor() {
		return
	}
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, 2)
	c.SR = uint16(ea.Read(2))
}

func opMoveFromSR(c *M68KCPU, op uint16) {
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, 2)
	ea.Write(2, uint32(c.SR))
}

func opMoveToCCR(c *M68KCPU, op uint16) {
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, 2)
	c.SR = (c.SR &^ 0xFF) | uint16(ea.Read(2)&0xFF)
}

func opMoveFromCCR(c *M68KCPU, op uint16) {
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, 2)
	ea.Write(2, uint32(c.SR&0xFF))
}

// --- control flow ---------------------------------------------------------

func opNop(c *M68KCPU, op uint16) {}

func opBccOrBra(c *M68KCPU, op uint16) {
	cc := int(op>>8) & 0xF
	disp := int8(op & 0xFF)
	instrPC := c.PC - 2
	var target uint32
	if disp == 0 {
		d := signExtend(uint32(c.fetchWord()), 2)
		target = instrPC + 2 + d
	} else {
		target = instrPC + 2 + signExtend(uint32(uint8(disp)), 1)
	}
	switch cc {
	case 0: // BRA
		c.PC = target
	case 1: // BSR
		c.SSP -= 4
		c.bus.Poke32(c.SSP, c.PC)
		c.PC = target
	default:
		if c.CheckCondition(cc) {
			c.PC = target
		}
	}
}

func opDbcc(c *M68KCPU, op uint16) {
	cc := int(op>>8) & 0xF
	reg := int(op) & 7
	instrPC := c.PC - 2
	disp := signExtend(uint32(c.fetchWord()), 2)
	if c.CheckCondition(cc) {
		return
	}
	lo := uint16(c.D[reg])
	lo--
	c.D[reg] = (c.D[reg] &^ 0xFFFF) | uint32(lo)
	if lo != 0xFFFF {
		c.PC = instrPC + 2 + disp
	}
}

func opScc(c *M68KCPU, op uint16) {
	cc := int(op>>8) & 0xF
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, 1)
	if c.CheckCondition(cc) {
		ea.Write(1, 0xFF)
	} else {
		ea.Write(1, 0x00)
	}
}

func opJmp(c *M68KCPU, op uint16) {
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, 4)
	c.PC = ea.Addr()
}

func opJsr(c *M68KCPU, op uint16) {
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, 4)
	c.SSP -= 4
	c.bus.Poke32(c.SSP, c.PC)
	c.PC = ea.Addr()
}

func opRts(c *M68KCPU, op uint16) {
	pc, _ := c.bus.Peek32(c.SSP)
	c.SSP += 4
	c.PC = pc
}

func opRtr(c *M68KCPU, op uint16) {
	ccr, _ := c.bus.Peek16(c.SSP)
	c.SSP += 2
	pc, _ := c.bus.Peek32(c.SSP)
	c.SSP += 4
	c.SR = (c.SR &^ 0xFF) | (ccr & 0xFF)
	c.PC = pc
}

func opRte(c *M68KCPU, op uint16) {
	if !c.checkSupervisor() {
		return
	}
	sr, _ := c.bus.Peek16(c.SSP)
	c.SSP += 2
	pc, _ := c.bus.Peek32(c.SSP)
	c.SSP += 4
	c.SR = sr
	c.PC = pc
}

func opTrap(c *M68KCPU, op uint16) {
	n := int(op) & 0xF
	c.processException(vecTrap0 + n)
}

func opTrapv(c *M68KCPU, op uint16) {
	if c.SR&srV != 0 {
		c.processException(7)
	}
}

func opChk(c *M68KCPU, op uint16) {
	reg := int(op>>9) & 7
	mode := int(op>>3) & 7
	srcReg := int(op) & 7
	ea := c.resolveEA(mode, srcReg, 2)
	bound := int16(ea.Read(2))
	v := int16(uint16(c.D[reg]))
	if v < 0 {
		setFlag(&c.SR, srN, true)
		c.processException(6)
		return
	}
	if v > bound {
		setFlag(&c.SR, srN, false)
		c.processException(6)
	}
}

func opReset(c *M68KCPU, op uint16) {
	if !c.checkSupervisor() {
		return
	}
	// asserts the RESET line to external devices; the core's own state is
	// unaffected (only an external chip reset reinitialises the CPU).
}

func opStop(c *M68KCPU, op uint16) {
	if !c.checkSupervisor() {
		return
	}
	c.SR = uint16(c.fetchWord())
	c.state = m68kStateStop
}

func opIllegal(c *M68KCPU, op uint16) {
	c.raiseIllegal()
}

// --- arithmetic/logical ----------------------------------------------------

func opClr(c *M68KCPU, op uint16) {
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, size)
	ea.Write(size, 0)
	c.setFlagsNZ(0, size)
}

func opTst(c *M68KCPU, op uint16) {
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, size)
	v := ea.Read(size)
	c.setFlagsNZ(v, size)
}

func opNeg(c *M68KCPU, op uint16) {
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, size)
	v := ea.Read(size)
	result := (-int64(v)) & int64(sizeMaskFor(size))
	ea.Write(size, uint32(result))
	c.setConditionCodes(v, 0, uint32(result), size, ccSubtraction, srX|srN|srZ|srV|srC)
}

func opNegx(c *M68KCPU, op uint16) {
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, size)
	v := ea.Read(size)
	x := uint32(0)
	if c.SR&srX != 0 {
		x = 1
	}
	result := uint32(0) - v - x
	ea.Write(size, result)
	c.setConditionCodes(v, 0, result, size, ccSubtraction, srX|srN|srZ|srV|srC)
}

func opNot(c *M68KCPU, op uint16) {
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, size)
	v := ^ea.Read(size)
	ea.Write(size, v)
	c.setFlagsNZ(v, size)
}

func opTas(c *M68KCPU, op uint16) {
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, 1)
	v := ea.Read(1)
	c.setFlagsNZ(v, 1)
	ea.Write(1, v|0x80)
}

func sizeMaskFor(size int) uint32 {
	switch size {
	case 1:
		return 0xFF
	case 2:
		return 0xFFFF
	default:
		return 0xFFFFFFFF
	}
}

func opOriI(c *M68KCPU, op uint16) { immOp(c, op, func(a, b uint32) uint32 { return a | b }, true) }
func opAndiI(c *M68KCPU, op uint16) { immOp(c, op, func(a, b uint32) uint32 { return a & b }, true) }
func opEoriI(c *M68KCPU, op uint16) { immOp(c, op, func(a, b uint32) uint32 { return a ^ b }, true) }

func immOp(c *M68KCPU, op uint16, fn func(a, b uint32) uint32, logical bool) {
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	if mode == 7 && reg == 4 {
		// ORI/ANDI/EORI #imm,CCR or SR - narrow special case: the byte form
		// touches only the CCR (low byte of SR), the word form the whole SR
		imm := readImmediate(c, size)
		if size == 1 {
			c.SR = (c.SR &^ 0xFF) | uint16(fn(uint32(c.SR&0xFF), imm)&0xFF)
			return
		}
		c.SR = uint16(fn(uint32(c.SR), imm))
		return
	}
	imm := readImmediate(c, size)
	ea := c.resolveEA(mode, reg, size)
	v := fn(imm, ea.Read(size))
	ea.Write(size, v)
	c.setFlagsNZ(v, size)
}

func readImmediate(c *M68KCPU, size int) uint32 {
	switch size {
	case 1:
		w := c.fetchWord()
		return uint32(w & 0xFF)
	case 2:
		return uint32(c.fetchWord())
	default:
		return c.fetchLong()
	}
}

func opSubiI(c *M68KCPU, op uint16) {
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	imm := readImmediate(c, size)
	ea := c.resolveEA(mode, reg, size)
	dst := ea.Read(size)
	result := dst - imm
	ea.Write(size, result)
	c.setConditionCodes(imm, dst, result, size, ccSubtraction, srX|srN|srZ|srV|srC)
}

func opAddiI(c *M68KCPU, op uint16) {
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	imm := readImmediate(c, size)
	ea := c.resolveEA(mode, reg, size)
	dst := ea.Read(size)
	result := dst + imm
	ea.Write(size, result)
	c.setConditionCodes(imm, dst, result, size, ccAddition, srX|srN|srZ|srV|srC)
}

func opCmpiI(c *M68KCPU, op uint16) {
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	imm := readImmediate(c, size)
	ea := c.resolveEA(mode, reg, size)
	dst := ea.Read(size)
	result := dst - imm
	c.setConditionCodes(imm, dst, result, size, ccSubtraction, srN|srZ|srV|srC)
}

func opAddq(c *M68KCPU, op uint16) {
	data := int((op >> 9) & 7)
	if data == 0 {
		data = 8
	}
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	if mode == 1 {
		size = 4
	}
	ea := c.resolveEA(mode, reg, size)
	dst := ea.Read(size)
	result := dst + uint32(data)
	ea.Write(size, result)
	if mode == 1 { // addq to An does not affect flags and uses long arithmetic
		return
	}
	c.setConditionCodes(uint32(data), dst, result, size, ccAddition, srX|srN|srZ|srV|srC)
}

func opSubq(c *M68KCPU, op uint16) {
	data := int((op >> 9) & 7)
	if data == 0 {
		data = 8
	}
	size := sizeOf(int(op>>6) & 3)
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, size)
	dst := ea.Read(size)
	result := dst - uint32(data)
	ea.Write(size, result)
	if mode == 1 {
		return
	}
	c.setConditionCodes(uint32(data), dst, result, size, ccSubtraction, srX|srN|srZ|srV|srC)
}

// opAddFamily decodes the 1101 group: ADD, ADDA. (ADDX is matched earlier.)
func opAddFamily(c *M68KCPU, op uint16) {
	reg := int(op>>9) & 7
	opmode := int(op>>6) & 7
	mode := int(op>>3) & 7
	srcReg := int(op) & 7

	if opmode == 3 || opmode == 7 { // ADDA word/long
		size := 2
		if opmode == 7 {
			size = 4
		}
		ea := c.resolveEA(mode, srcReg, size)
		v := signExtend(ea.Read(size), size)
		c.writeA(reg, c.readA(reg)+v)
		return
	}
	size := sizeOf(opmode & 3)
	toMemory := opmode >= 4
	ea := c.resolveEA(mode, srcReg, size)
	if toMemory {
		src := c.D[reg]
		dst := ea.Read(size)
		result := dst + src
		ea.Write(size, result)
		c.setConditionCodes(src, dst, result, size, ccAddition, srX|srN|srZ|srV|srC)
		return
	}
	src := ea.Read(size)
	dst := c.D[reg]
	result := dst + src
	c.D[reg] = (c.D[reg] &^ sizeMaskFor(size)) | (result & sizeMaskFor(size))
	c.setConditionCodes(src, dst, result, size, ccAddition, srX|srN|srZ|srV|srC)
}

func opSubFamily(c *M68KCPU, op uint16) {
	reg := int(op>>9) & 7
	opmode := int(op>>6) & 7
	mode := int(op>>3) & 7
	srcReg := int(op) & 7

	if opmode == 3 || opmode == 7 {
		size := 2
		if opmode == 7 {
			size = 4
		}
		ea := c.resolveEA(mode, srcReg, size)
		v := signExtend(ea.Read(size), size)
		c.writeA(reg, c.readA(reg)-v)
		return
	}
	size := sizeOf(opmode & 3)
	toMemory := opmode >= 4
	ea := c.resolveEA(mode, srcReg, size)
	if toMemory {
		src := c.D[reg]
		dst := ea.Read(size)
		result := dst - src
		ea.Write(size, result)
		c.setConditionCodes(src, dst, result, size, ccSubtraction, srX|srN|srZ|srV|srC)
		return
	}
	src := ea.Read(size)
	dst := c.D[reg]
	result := dst - src
	c.D[reg] = (c.D[reg] &^ sizeMaskFor(size)) | (result & sizeMaskFor(size))
	c.setConditionCodes(src, dst, result, size, ccSubtraction, srX|srN|srZ|srV|srC)
}

// opCmpEorFamily decodes the 1011 group: CMP, CMPA, CMPM, EOR.
func opCmpEorFamily(c *M68KCPU, op uint16) {
	reg := int(op>>9) & 7
	opmode := int(op>>6) & 7
	mode := int(op>>3) & 7
	srcReg := int(op) & 7

	if opmode == 3 || opmode == 7 {
		size := 2
		if opmode == 7 {
			size = 4
		}
		ea := c.resolveEA(mode, srcReg, size)
		src := signExtend(ea.Read(size), size)
		dst := c.readA(reg)
		result := dst - src
		c.setConditionCodes(src, dst, result, 4, ccSubtraction, srN|srZ|srV|srC)
		return
	}
	size := sizeOf(opmode & 3)
	if opmode >= 4 && mode == 1 { // CMPM (An)+,(An)+
		srcEA := c.resolveEA(3, srcReg, size)
		dstEA := c.resolveEA(3, reg, size)
		src := srcEA.Read(size)
		dst := dstEA.Read(size)
		result := dst - src
		c.setConditionCodes(src, dst, result, size, ccSubtraction, srN|srZ|srV|srC)
		return
	}
	ea := c.resolveEA(mode, srcReg, size)
	if opmode >= 4 { // EOR Dn,<ea>
		src := c.D[reg]
		dst := ea.Read(size)
		result := src ^ dst
		ea.Write(size, result)
		c.setFlagsNZ(result, size)
		return
	}
	// CMP <ea>,Dn
	src := ea.Read(size)
	dst := c.D[reg]
	result := dst - src
	c.setConditionCodes(src, dst, result, size, ccSubtraction, srN|srZ|srV|srC)
}

// opAndMulFamily decodes the 1100 group: AND, MULU, MULS, ABCD, EXG (EXG/ABCD
// intercepted earlier by more specific masks).
func opAndMulFamily(c *M68KCPU, op uint16) {
	reg := int(op>>9) & 7
	opmode := int(op>>6) & 7
	mode := int(op>>3) & 7
	srcReg := int(op) & 7

	if opmode == 3 { // MULU
		ea := c.resolveEA(mode, srcReg, 2)
		result := uint32(uint16(c.D[reg])) * uint32(uint16(ea.Read(2)))
		c.D[reg] = result
		c.setFlagsNZ(result, 4)
		return
	}
	if opmode == 7 { // MULS
		ea := c.resolveEA(mode, srcReg, 2)
		result := int32(int16(c.D[reg])) * int32(int16(ea.Read(2)))
		c.D[reg] = uint32(result)
		c.setFlagsNZ(uint32(result), 4)
		return
	}
	size := sizeOf(opmode & 3)
	ea := c.resolveEA(mode, srcReg, size)
	if opmode >= 4 {
		src := c.D[reg]
		dst := ea.Read(size)
		result := src & dst
		ea.Write(size, result)
		c.setFlagsNZ(result, size)
		return
	}
	src := ea.Read(size)
	dst := c.D[reg]
	result := src & dst
	c.D[reg] = (c.D[reg] &^ sizeMaskFor(size)) | (result & sizeMaskFor(size))
	c.setFlagsNZ(result, size)
}

// opOrDivFamily decodes the 1000 group: OR, DIVU, DIVS, SBCD (SBCD
// intercepted earlier by a more specific mask).
func opOrDivFamily(c *M68KCPU, op uint16) {
	reg := int(op>>9) & 7
	opmode := int(op>>6) & 7
	mode := int(op>>3) & 7
	srcReg := int(op) & 7

	if opmode == 3 { // DIVU
		ea := c.resolveEA(mode, srcReg, 2)
		divisor := uint32(uint16(ea.Read(2)))
		if divisor == 0 {
			c.processException(5)
			return
		}
		dividend := c.D[reg]
		q := dividend / divisor
		r := dividend % divisor
		if q > 0xFFFF {
			setFlag(&c.SR, srV, true)
			return
		}
		c.D[reg] = (r << 16) | (q & 0xFFFF)
		c.setFlagsNZ(q, 2)
		return
	}
	if opmode == 7 { // DIVS
		ea := c.resolveEA(mode, srcReg, 2)
		divisor := int32(int16(ea.Read(2)))
		if divisor == 0 {
			c.processException(5)
			return
		}
		dividend := int32(c.D[reg])
		q := dividend / divisor
		r := dividend % divisor
		if q > 32767 || q < -32768 {
			setFlag(&c.SR, srV, true)
			return
		}
		c.D[reg] = (uint32(uint16(r)) << 16) | uint32(uint16(q))
		c.setFlagsNZ(uint32(q), 2)
		return
	}
	size := sizeOf(opmode & 3)
	ea := c.resolveEA(mode, srcReg, size)
	if opmode >= 4 {
		src := c.D[reg]
		dst := ea.Read(size)
		result := src | dst
		ea.Write(size, result)
		c.setFlagsNZ(result, size)
		return
	}
	src := ea.Read(size)
	dst := c.D[reg]
	result := src | dst
	c.D[reg] = (c.D[reg] &^ sizeMaskFor(size)) | (result & sizeMaskFor(size))
	c.setFlagsNZ(result, size)
}

func opAddx(c *M68KCPU, op uint16) { addxSubx(c, op, true) }
func opSubx(c *M68KCPU, op uint16) { addxSubx(c, op, false) }

func addxSubx(c *M68KCPU, op uint16, isAdd bool) {
	size := sizeOf(int(op>>6) & 3)
	rx := int(op>>9) & 7
	ry := int(op) & 7
	rm := op&0x0008 != 0
	x := uint32(0)
	if c.SR&srX != 0 {
		x = 1
	}
	if rm {
		srcEA := c.resolveEA(4, ry, size)
		dstEA := c.resolveEA(4, rx, size)
		src := srcEA.Read(size)
		dst := dstEA.Read(size)
		var result uint32
		if isAdd {
			result = dst + src + x
			dstEA.Write(size, result)
			c.setConditionCodes(src, dst, result, size, ccAddition, srX|srN|srZ|srV|srC)
		} else {
			result = dst - src - x
			dstEA.Write(size, result)
			c.setConditionCodes(src, dst, result, size, ccSubtraction, srX|srN|srZ|srV|srC)
		}
		return
	}
	src := truncate(c.D[ry], size)
	dst := truncate(c.D[rx], size)
	var result uint32
	if isAdd {
		result = dst + src + x
	} else {
		result = dst - src - x
	}
	c.D[rx] = (c.D[rx] &^ sizeMaskFor(size)) | (result & sizeMaskFor(size))
	if isAdd {
		c.setConditionCodes(src, dst, result, size, ccAddition, srX|srN|srZ|srV|srC)
	} else {
		c.setConditionCodes(src, dst, result, size, ccSubtraction, srX|srN|srZ|srV|srC)
	}
}

// --- BCD -------------------------------------------------------------------

func opAbcd(c *M68KCPU, op uint16) { bcdOp(c, op, true) }
func opSbcd(c *M68KCPU, op uint16) { bcdOp(c, op, false) }

func bcdOp(c *M68KCPU, op uint16, isAdd bool) {
	rx := int(op>>9) & 7
	ry := int(op) & 7
	rm := op&0x0008 != 0
	x := uint32(0)
	if c.SR&srX != 0 {
		x = 1
	}
	var src, dst uint32
	var srcEA, dstEA eaOperand
	if rm {
		srcEA = c.resolveEA(4, ry, 1)
		dstEA = c.resolveEA(4, rx, 1)
		src = srcEA.Read(1)
		dst = dstEA.Read(1)
	} else {
		src = c.D[ry] & 0xFF
		dst = c.D[rx] & 0xFF
	}
	lo := func(v uint32) uint32 { return v & 0xF }
	hi := func(v uint32) uint32 { return (v >> 4) & 0xF }
	var result uint32
	var carry bool
	if isAdd {
		loSum := lo(dst) + lo(src) + x
		var loCarry uint32
		if loSum > 9 {
			loSum += 6
		}
		if loSum > 0xF {
			loCarry = 1
			loSum &= 0xF
		}
		hiSum := hi(dst) + hi(src) + loCarry
		if hiSum > 9 {
			hiSum += 6
		}
		if hiSum > 0xF {
			carry = true
			hiSum &= 0xF
		}
		result = (hiSum << 4) | loSum
	} else {
		loDiff := int(lo(dst)) - int(lo(src)) - int(x)
		var loBorrow uint32
		if loDiff < 0 {
			loDiff += 10
			loBorrow = 1
		}
		hiDiff := int(hi(dst)) - int(hi(src)) - int(loBorrow)
		if hiDiff < 0 {
			hiDiff += 10
			carry = true
		}
		result = (uint32(hiDiff) << 4) | uint32(loDiff)
	}
	setFlag(&c.SR, srX, carry)
	setFlag(&c.SR, srC, carry)
	if result != 0 {
		setFlag(&c.SR, srZ, false)
	}
	setFlag(&c.SR, srN, result&0x80 != 0)
	if rm {
		dstEA.Write(1, result)
	} else {
		c.D[rx] = (c.D[rx] &^ 0xFF) | result
	}
}

func opNbcd(c *M68KCPU, op uint16) {
	mode := int(op>>3) & 7
	reg := int(op) & 7
	ea := c.resolveEA(mode, reg, 1)
	x := uint32(0)
	if c.SR&srX != 0 {
		x = 1
	}
	v := ea.Read(1)
	lo := int(v&0xF)*-1 - int(x)
	hi := int((v>>4)&0xF) * -1
	var borrow int
	if lo < 0 {
		lo += 10
		borrow = 1
	}
	hi -= borrow
	var carry bool
	if hi < 0 {
		hi += 10
		carry = true
	}
	result := uint32((hi<<4)&0xF0) | uint32(lo&0xF)
	ea.Write(1, result)
	setFlag(&c.SR, srX, carry)
	setFlag(&c.SR, srC, carry)
	setFlag(&c.SR, srN, result&0x80 != 0)
	if result != 0 {
		setFlag(&c.SR, srZ, false)
	}
}

// --- bit ops -----------------------------------------------------------

func bitOpCommon(c *M68KCPU, op uint16, bitNum uint32) (eaOperand, uint32, bool) {
	mode := int(op>>3) & 7
	reg := int(op) & 7
	size := 4
	if mode != 0 {
		size = 1
	}
	ea := c.resolveEA(mode, reg, size)
	v := ea.Read(size)
	n := bitNum % uint32(size*8)
	bitSet := v&(1<<n) != 0
	return ea, n, bitSet
}

func opBtstImm(c *M68KCPU, op uint16) {
	n := uint32(c.fetchWord() & 0x1F)
	_, _, bitSet := bitOpCommon(c, op, n)
	setFlag(&c.SR, srZ, !bitSet)
}

func opBtstDyn(c *M68KCPU, op uint16) {
	n := c.D[int(op>>9)&7]
	_, _, bitSet := bitOpCommon(c, op, n)
	setFlag(&c.SR, srZ, !bitSet)
}

func opBchgImm(c *M68KCPU, op uint16) {
	n := uint32(c.fetchWord() & 0x1F)
	ea, bit, bitSet := bitOpCommon(c, op, n)
	setFlag(&c.SR, srZ, !bitSet)
	toggleBit(ea, bit, bitSet)
}

func opBchgDyn(c *M68KCPU, op uint16) {
	n := c.D[int(op>>9)&7]
	ea, bit, bitSet := bitOpCommon(c, op, n)
	setFlag(&c.SR, srZ, !bitSet)
	toggleBit(ea, bit, bitSet)
}

func toggleBit(ea eaOperand, bit uint32, bitSet bool) {
	size := 4
	if ea.isMem {
		size = 1
	}
	v := ea.Read(size)
	if bitSet {
		v &^= 1 << bit
	} else {
		v |= 1 << bit
	}
	ea.Write(size, v)
}

func opBclrImm(c *M68KCPU, op uint16) {
	n := uint32(c.fetchWord() & 0x1F)
	ea, bit, bitSet := bitOpCommon(c, op, n)
	setFlag(&c.SR, srZ, !bitSet)
	size := 4
	if ea.isMem {
		size = 1
	}
	v := ea.Read(size) &^ (1 << bit)
	ea.Write(size, v)
}

func opBclrDyn(c *M68KCPU, op uint16) {
	n := c.D[int(op>>9)&7]
	ea, bit, bitSet := bitOpCommon(c, op, n)
	setFlag(&c.SR, srZ, !bitSet)
	size := 4
	if ea.isMem {
		size = 1
	}
	v := ea.Read(size) &^ (1 << bit)
	ea.Write(size, v)
}

func opBsetImm(c *M68KCPU, op uint16) {
	n := uint32(c.fetchWord() & 0x1F)
	ea, bit, bitSet := bitOpCommon(c, op, n)
	setFlag(&c.SR, srZ, !bitSet)
	size := 4
	if ea.isMem {
		size = 1
	}
	v := ea.Read(size) | (1 << bit)
	ea.Write(size, v)
}

func opBsetDyn(c *M68KCPU, op uint16) {
	n := c.D[int(op>>9)&7]
	ea, bit, bitSet := bitOpCommon(c, op, n)
	setFlag(&c.SR, srZ, !bitSet)
	size := 4
	if ea.isMem {
		size = 1
	}
	v := ea.Read(size) | (1 << bit)
	ea.Write(size, v)
}

// --- shifts and rotates --------------------------------------------------

type shiftKind int

const (
	shiftASL shiftKind = iota
	shiftASR
	shiftLSL
	shiftLSR
	shiftROL
	shiftROR
	shiftROXL
	shiftROXR
)

func applyShift(c *M68KCPU, v uint32, size int, count int, kind shiftKind) uint32 {
	bitsN := uint(size * 8)
	v = truncate(v, size)
	lastOut := false
	result := v
	for i := 0; i < count; i++ {
		msb := msbAt(result, size)
		switch kind {
		case shiftASL, shiftLSL:
			lastOut = msbAt(result, size)
			result = truncate(result<<1, size)
			if kind == shiftASL {
				setFlag(&c.SR, srV, msb != msbAt(result, size))
			}
		case shiftASR:
			lastOut = result&1 != 0
			signBit := uint32(0)
			if msb {
				signBit = 1 << (bitsN - 1)
			}
			result = truncate((result>>1)|signBit, size)
		case shiftLSR:
			lastOut = result&1 != 0
			result = truncate(result>>1, size)
		case shiftROL:
			lastOut = msbAt(result, size)
			bit := uint32(0)
			if lastOut {
				bit = 1
			}
			result = truncate((result<<1)|bit, size)
		case shiftROR:
			lastOut = result&1 != 0
			bit := uint32(0)
			if lastOut {
				bit = 1 << (bitsN - 1)
			}
			result = truncate((result>>1)|bit, size)
		case shiftROXL:
			x := uint32(0)
			if c.SR&srX != 0 {
				x = 1
			}
			lastOut = msbAt(result, size)
			result = truncate((result<<1)|x, size)
			setFlag(&c.SR, srX, lastOut)
		case shiftROXR:
			x := uint32(0)
			if c.SR&srX != 0 {
				x = 1 << (bitsN - 1)
			}
			lastOut = result&1 != 0
			result = truncate((result>>1)|x, size)
			setFlag(&c.SR, srX, lastOut)
		}
	}
	if count > 0 && kind != shiftROXL && kind != shiftROXR {
		if kind == shiftASL || kind == shiftLSL || kind == shiftASR || kind == shiftLSR {
			setFlag(&c.SR, srX, lastOut)
			setFlag(&c.SR, srC, lastOut)
		} else {
			setFlag(&c.SR, srC, lastOut)
		}
	} else if count == 0 {
		c.SR &^= srC
	}
	c.setFlagsNZ(result, size)
	if kind != shiftASL {
		c.SR &^= srV
	}
	return result
}

func shiftKindFromBits(dir, typ int) shiftKind {
	kinds := [4][2]shiftKind{
		{shiftASR, shiftASL},
		{shiftLSR, shiftLSL},
		{shiftROXR, shiftROXL},
		{shiftROR, shiftROL},
	}
	return kinds[typ][dir]
}

func opShiftReg(c *M68KCPU, op uint16) {
	size := sizeOf(int(op>>6) & 3)
	dir := int(op>>8) & 1
	typ := int(op>>3) & 3
	reg := int(op) & 7
	kind := shiftKindFromBits(dir, typ)

	var count int
	if op&0x0020 != 0 { // register count
		count = int(c.D[int(op>>9)&7] % 64)
	} else {
		count = int(op>>9) & 7
		if count == 0 {
			count = 8
		}
	}
	result := applyShift(c, c.D[reg], size, count, kind)
	c.D[reg] = (c.D[reg] &^ sizeMaskFor(size)) | (result & sizeMaskFor(size))
}

func opShiftMem(c *M68KCPU, op uint16) {
	dir := int(op>>8) & 1
	typ := int(op>>9) & 3
	mode := int(op>>3) & 7
	reg := int(op) & 7
	kind := shiftKindFromBits(dir, typ)
	ea := c.resolveEA(mode, reg, 2)
	result := applyShift(c, ea.Read(2), 2, 1, kind)
	ea.Write(2, result)
}
