// cpu_m68k_ea.go - effective-address computation for the 68000 interpreter

package main

// eaOperand is a resolved effective address: either a register (data or
// address) or a memory location. Pre/post increment and PC-relative
// extension-word side effects happen once, at resolution time, so a
// read-modify-write instruction can Read() then Write() the same operand.
type eaOperand struct {
	cpu       *M68KCPU
	isMem     bool
	isAddrReg bool
	regNum    int
	addr      uint32

	immediateByte bool
	immediateWord bool
	immediateLong bool
}

func (c *M68KCPU) fetchWord() uint16 {
	w, ok := c.bus.Peek16(c.PC)
	if !ok {
		c.raiseBusError()
		return 0
	}
	c.PC += 2
	return w
}

func (c *M68KCPU) fetchLong() uint32 {
	l, ok := c.bus.Peek32(c.PC)
	if !ok {
		c.raiseBusError()
		return 0
	}
	c.PC += 4
	return l
}

// stepSizeFor7 returns the pre/post-decrement/increment step for An,
// using 2 bytes instead of 1 for byte-sized operations on A7 to keep the
// stack word-aligned.
func stepSizeFor7(n, size int) uint32 {
	if size == 1 && n == 7 {
		return 2
	}
	return uint32(size)
}

// resolveEA computes the effective address/register for a 6-bit
// mode/register field (3 bits each) and the given operand size (1/2/4).
func (c *M68KCPU) resolveEA(mode, reg, size int) eaOperand {
	switch mode {
	case 0: // Dn
		return eaOperand{cpu: c, isMem: false, isAddrReg: false, regNum: reg}
	case 1: // An
		return eaOperand{cpu: c, isMem: false, isAddrReg: true, regNum: reg}
	case 2: // (An)
		return eaOperand{cpu: c, isMem: true, addr: c.readA(reg)}
	case 3: // (An)+
		addr := c.readA(reg)
		c.writeA(reg, addr+stepSizeFor7(reg, size))
		return eaOperand{cpu: c, isMem: true, addr: addr}
	case 4: // -(An)
		step := stepSizeFor7(reg, size)
		addr := c.readA(reg) - step
		c.writeA(reg, addr)
		return eaOperand{cpu: c, isMem: true, addr: addr}
	case 5: // (d16,An)
		disp := signExtend(uint32(c.fetchWord()), 2)
		return eaOperand{cpu: c, isMem: true, addr: c.readA(reg) + disp}
	case 6: // (d8,An,Xn)
		ext := c.fetchWord()
		return eaOperand{cpu: c, isMem: true, addr: c.readA(reg) + c.indexedDisplacement(ext)}
	case 7:
		switch reg {
		case 0: // absolute short
			addr := signExtend(uint32(c.fetchWord()), 2)
			return eaOperand{cpu: c, isMem: true, addr: addr}
		case 1: // absolute long
			return eaOperand{cpu: c, isMem: true, addr: c.fetchLong()}
		case 2: // (d16,PC)
			base := c.PC
			disp := signExtend(uint32(c.fetchWord()), 2)
			return eaOperand{cpu: c, isMem: true, addr: base + disp}
		case 3: // (d8,PC,Xn)
			base := c.PC
			ext := c.fetchWord()
			return eaOperand{cpu: c, isMem: true, addr: base + c.indexedDisplacement(ext)}
		case 4: // immediate, read-through PC
			switch size {
			case 1:
				return eaOperand{cpu: c, isMem: true, addr: c.PC + 1, immediateByte: true}
			case 2:
				return eaOperand{cpu: c, isMem: true, addr: c.PC, immediateWord: true}
			default:
				return eaOperand{cpu: c, isMem: true, addr: c.PC, immediateLong: true}
			}
		}
	}
	c.raiseIllegal()
	return eaOperand{cpu: c}
}

// indexedDisplacement decodes a brief extension word: bit15 selects D/A,
// bits14-12 the register, bit11 selects word(0)/long(1) sign-extension,
// bits7-0 the signed byte displacement.
func (c *M68KCPU) indexedDisplacement(ext uint16) uint32 {
	regNum := int(ext>>12) & 7
	var idxVal uint32
	if ext&0x8000 != 0 {
		idxVal = c.readA(regNum)
	} else {
		idxVal = c.D[regNum]
	}
	if ext&0x0800 == 0 {
		idxVal = signExtend(idxVal, 2)
	}
	disp := signExtend(uint32(ext&0xFF), 1)
	return idxVal + disp
}

func (e *eaOperand) Read(size int) uint32 {
	c := e.cpu
	if !e.isMem {
		if e.isAddrReg {
			return truncate(c.readA(e.regNum), size)
		}
		return truncate(c.D[e.regNum], size)
	}
	switch {
	case e.immediateByte:
		v, _ := c.bus.Peek8(e.addr)
		c.PC += 2
		return uint32(v)
	case e.immediateWord:
		v := c.fetchWord()
		return uint32(v)
	case e.immediateLong:
		return c.fetchLong()
	}
	switch size {
	case 1:
		v, ok := c.bus.Peek8(e.addr)
		if !ok {
			c.raiseBusError()
		}
		return uint32(v)
	case 2:
		if e.addr&1 != 0 {
			c.raiseAddressError()
			return 0
		}
		v, ok := c.bus.Peek16(e.addr)
		if !ok {
			c.raiseBusError()
		}
		return uint32(v)
	default:
		if e.addr&1 != 0 {
			c.raiseAddressError()
			return 0
		}
		v, ok := c.bus.Peek32(e.addr)
		if !ok {
			c.raiseBusError()
		}
		return v
	}
}

func (e *eaOperand) Write(size int, value uint32) {
	c := e.cpu
	if !e.isMem {
		if e.isAddrReg {
			c.writeA(e.regNum, signExtend(value, size))
			return
		}
		switch size {
		case 1:
			c.D[e.regNum] = (c.D[e.regNum] &^ 0xFF) | (value & 0xFF)
		case 2:
			c.D[e.regNum] = (c.D[e.regNum] &^ 0xFFFF) | (value & 0xFFFF)
		default:
			c.D[e.regNum] = value
		}
		return
	}
	switch size {
	case 1:
		if !c.bus.Poke8(e.addr, byte(value)) {
			c.raiseBusError()
		}
	case 2:
		if e.addr&1 != 0 {
			c.raiseAddressError()
			return
		}
		if !c.bus.Poke16(e.addr, uint16(value)) {
			c.raiseBusError()
		}
	default:
		if e.addr&1 != 0 {
			c.raiseAddressError()
			return
		}
		if !c.bus.Poke32(e.addr, value) {
			c.raiseBusError()
		}
	}
}

// Addr returns the resolved memory address (zero for a register operand,
// which carries no address - used only by LEA/PEA/JMP/JSR).
func (e *eaOperand) Addr() uint32 { return e.addr }
