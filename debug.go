// debug.go - the machine-monitor surface: disassembly line records plus a
// thin breakpoint/single-step wrapper around the 68K core. The
// disassemblers themselves live in debug_disasm_m68k.go/debug_disasm_z80.go.

package main

import "fmt"

// DisassembledLine is one decoded instruction, as produced by
// disassembleM68K/disassembleZ80.
type DisassembledLine struct {
	Address  uint64
	HexBytes string
	Mnemonic string
	Size     int

	// Set by disassembleZ80 for JP/CALL/JR/DJNZ, with the decoded target.
	IsBranch     bool
	BranchTarget uint64
}

func (l DisassembledLine) String() string {
	return fmt.Sprintf("%06X  %-14s %s", l.Address, l.HexBytes, l.Mnemonic)
}

// Debugger wraps a Genesis instance with breakpoints and single-stepping
// for the 68K only; it offers no Z80 breakpoints or stepping.
type Debugger struct {
	g          *Genesis
	breakpoint map[uint32]bool
	running    bool
}

func NewDebugger(g *Genesis) *Debugger {
	return &Debugger{g: g, breakpoint: make(map[uint32]bool)}
}

func (d *Debugger) SetBreakpoint(addr uint32)   { d.breakpoint[addr] = true }
func (d *Debugger) ClearBreakpoint(addr uint32) { delete(d.breakpoint, addr) }

// StepM68K single-steps the 68K only, ignoring the VDP/Z80 clock ratio -
// useful for instruction-level debugging where frame timing doesn't matter.
func (d *Debugger) StepM68K() {
	d.g.m68k.StepOne()
}

// RunUntilBreakpoint steps the 68K until it reaches a set breakpoint or
// maxInstructions is exhausted (a safety bound against runaway loops).
func (d *Debugger) RunUntilBreakpoint(maxInstructions int) (hit uint32, stopped bool) {
	for i := 0; i < maxInstructions; i++ {
		if d.breakpoint[d.g.m68k.PC] {
			return d.g.m68k.PC, true
		}
		d.g.m68k.StepOne()
	}
	return 0, false
}

// m68kReadMem adapts the bus into the disassembler's readMem shape.
func (d *Debugger) m68kReadMem(addr uint64, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		b, _ := d.g.bus.Peek8(uint32(addr) + uint32(i))
		out[i] = b
	}
	return out
}

// Disassemble68K returns count decoded instructions starting at addr.
func (d *Debugger) Disassemble68K(addr uint32, count int) []DisassembledLine {
	return disassembleM68K(d.m68kReadMem, uint64(addr), count)
}
