// component_reset.go - Reset() methods for the emulated hardware, mirroring
// the 68K's own reset sequence for every component that needs to return to
// power-on state. Nothing in this tree calls Genesis.Reset or VDP.Reset;
// main.go resets only the 68K after loading the cartridge.

package main

// Reset restores the VDP to power-on state: all registers, memories, and
// DMA state cleared, beam at (0,0).
func (v *VDP) Reset() {
	v.regs = [25]byte{}
	v.vram = [65536]byte{}
	v.cram = [64]uint16{}
	v.vsram = [40]uint16{}

	v.addr = 0
	v.code = 0
	v.writeWord = 0
	v.word1 = 0
	v.pendingDataHi = 0
	v.pendingCtrlHi = 0

	v.vintPending = false
	v.sovr = false
	v.scol = false

	v.beamH = 0
	v.beamV = 0
	v.oddFrame = false

	v.hBlankCounter = 0
	v.dma = vdpDMA{}
	v.spriteCache = v.spriteCache[:0]
}

// Reset clears the Genesis system: re-initialises the Z80, releases the bus
// request/reset lines to their power-on defaults, and resets the
// 68K (which re-reads the stack pointer and PC from the cartridge vector
// table via the bus).
func (g *Genesis) Reset() {
	g.vdp.Reset()
	g.z80.SetBusRequest(false)
	g.z80.SetReset(false)
	g.z80.cpu.Reset()
	g.m68k.Reset()
}
