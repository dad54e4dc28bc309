// vdp_test.go - control/data port protocol, register writes, VRAM/CRAM
// access, and the VRAM FILL DMA path.

package main

import "testing"

func newTestVDP() (*VDP, *Bus) {
	bus := newBus("test", 0x1000000)
	ram := newRAMDevice(0x1000000)
	bus.wireRange(0, 0xFFFFFF, 0, ram)
	m68k := NewM68KCPU(bus)
	vdp := NewVDP(bus, m68k, nil, false)
	return vdp, bus
}

// ctrlWrite drives the two-byte control port exactly as the 68K
// would: high byte first, then low byte completes the word.
func ctrlWrite(v *VDP, word uint16) {
	d := vdpControlPortDevice{v}
	d.poke(0, byte(word>>8))
	d.poke(1, byte(word))
}

func dataWrite(v *VDP, word uint16) {
	d := vdpDataPortDevice{v}
	d.poke(0, byte(word>>8))
	d.poke(1, byte(word))
}

func TestControlPortSetsRegisterDirectly(t *testing.T) {
	vdp, _ := newTestVDP()
	ctrlWrite(vdp, 0x8134) // reg-select form: reg 1 <- 0x34 (Mode2)

	if vdp.regs[vdpRegMode2] != 0x34 {
		t.Errorf("regs[1] = %#x, want 0x34", vdp.regs[vdpRegMode2])
	}
}

func TestVRAMWriteThenReadRoundTrips(t *testing.T) {
	vdp, _ := newTestVDP()
	// Two-word address latch: word1's top 2 bits (01) select code=1 (VRAM
	// write); both words' low bits are zero, so addr=0.
	ctrlWrite(vdp, 0x4000)
	ctrlWrite(vdp, 0x0000)

	dataWrite(vdp, 0xBEEF)

	// Re-latch addr 0 with code=0 (VRAM read).
	ctrlWrite(vdp, 0x0000)
	ctrlWrite(vdp, 0x0000)

	got := vdp.readData()
	if got != 0xBEEF {
		t.Errorf("VRAM round trip = %#x, want 0xBEEF", got)
	}
}

func TestCRAMWriteUpdatesColourCache(t *testing.T) {
	vdp, _ := newTestVDP()
	// word1's top 2 bits (11) contribute code bits 1:0 = 3 (CRAM write).
	ctrlWrite(vdp, 0xC000)
	ctrlWrite(vdp, 0x0000)

	dataWrite(vdp, 0x000E) // low byte ---- BBB-: BBB=7, full blue

	if vdp.cram[0] == 0 {
		t.Fatal("expected CRAM entry 0 to be written")
	}
	if vdp.colourCache[0] != (rgb{0, 0, 255}) {
		t.Errorf("colourCache[0] = %v, want {0 0 255}", vdp.colourCache[0])
	}
}

func TestStatusByteReflectsPALFlag(t *testing.T) {
	vdp, _ := newTestVDP()
	vdp.pal = true
	if vdp.statusByte()&stPAL == 0 {
		t.Error("expected stPAL set when vdp.pal is true")
	}
}

func TestVBlankRaisesVerticalInterrupt(t *testing.T) {
	vdp, _ := newTestVDP()
	vdp.regs[vdpRegMode2] = mode2IE0 // enable vblank IRQ, NTSC height select

	// Drive the beam to the last NTSC active-area scanline's final pixel.
	vdp.beamV = activeHeightNTSC - 1
	vdp.beamH = vdp.overscanWidth() - 1
	vdp.Clock(1)

	if !vdp.vintPending {
		t.Error("expected vintPending set on crossing into VBlank")
	}
	if vdp.beamV != activeHeightNTSC {
		t.Errorf("beamV = %d, want %d", vdp.beamV, activeHeightNTSC)
	}
}

func TestAcknowledgeInterruptClearsVint(t *testing.T) {
	vdp, _ := newTestVDP()
	vdp.vintPending = true
	vdp.AcknowledgeInterrupt(6)
	if vdp.vintPending {
		t.Error("AcknowledgeInterrupt(6) should clear vintPending")
	}
	vdp.vintPending = true
	vdp.AcknowledgeInterrupt(4)
	if !vdp.vintPending {
		t.Error("AcknowledgeInterrupt at a non-vint level should not clear it")
	}
}

func TestVRAMFillDMA(t *testing.T) {
	vdp, _ := newTestVDP()
	vdp.regs[vdpRegMode2] |= mode2M1 // DMA enable

	vdp.regs[vdpRegDMALengthLow] = 2
	vdp.regs[vdpRegDMALengthHigh] = 0
	vdp.regs[vdpRegDMASourceHigh] = 0x80 // type=2 (FILL) in top 2 bits

	// word1's top 2 bits select code=1 (VRAM write); word2's bit5 is the
	// control-port DMA-arm bit (folds into code bit 0x20).
	ctrlWrite(vdp, 0x4000)
	ctrlWrite(vdp, 0x0020)

	if !vdp.dma.active {
		t.Fatal("expected DMA to be armed")
	}
	if vdp.dma.typ != dmaVRAMFill {
		t.Fatalf("dma.typ = %d, want dmaVRAMFill", vdp.dma.typ)
	}

	// The initiating data-port write latches the fill word; its low byte is
	// also written to the starting address immediately (a documented
	// hardware quirk), decrementing length once.
	dataWrite(vdp, 0xEE00)
	if vdp.dma.length != 1 {
		t.Fatalf("dma.length = %d after latch, want 1", vdp.dma.length)
	}

	// The remaining step writes the real fill byte (the word's high byte)
	// to the next address and finishes once length reaches zero.
	vdp.dma.step(vdp)
	if vdp.vram[1] != 0xEE {
		t.Errorf("vram[1] = %#x, want 0xEE (the fill byte)", vdp.vram[1])
	}
	if vdp.dma.active {
		t.Error("expected DMA to finish after length reaches zero")
	}
}
