// scheduler_test.go - the fixed 105/60/28 master-clock interleave.

package main

import "testing"

func newTestScheduler(pal bool) (*Scheduler, *Bus) {
	bus := newBus("test", 0x1000000)
	ram := newRAMDevice(0x1000000)
	bus.wireRange(0, 0xFFFFFF, 0, ram)

	m68k := NewM68KCPU(bus)
	soundRAM := newRAMDevice(0x2000)
	bank := &z80BankRegisterDevice{}
	z80ROM := &z80BankedROMDevice{rom: make([]byte, 0x8000), bank: bank}
	fm := &fmPortDevice{}
	z80 := NewZ80Coprocessor(soundRAM, bank, z80ROM, fm)

	vdp := NewVDP(bus, m68k, z80, pal)
	return NewScheduler(vdp, m68k, z80, pal), bus
}

// RunFrame runs whole iterations until the budget (896040 NTSC / 1067040
// PAL) is spent. Neither budget is a multiple of masterCyclesPerIteration
// (420), so the last iteration overruns it: ceil(budget/420) iterations,
// each giving the VDP 105 pixel ticks - observable as the beam position
// reached from (0,0).
func TestRunFrameConsumesWholeIterationBudget(t *testing.T) {
	for _, pal := range []bool{false, true} {
		sched, _ := newTestScheduler(pal)
		budget := masterCyclesPerFrameNTSC
		if pal {
			budget = masterCyclesPerFramePAL
		}
		iterations := (budget + masterCyclesPerIteration - 1) / masterCyclesPerIteration
		ticks := iterations * vdpCyclesPerIteration
		wantH := ticks % sched.vdp.overscanWidth()
		wantV := (ticks / sched.vdp.overscanWidth()) % sched.vdp.overscanHeight()

		sched.RunFrame()

		if sched.vdp.beamH != wantH {
			t.Fatalf("pal=%v: beamH = %d after %d iterations, want %d",
				pal, sched.vdp.beamH, iterations, wantH)
		}
		if sched.vdp.beamV != wantV {
			t.Fatalf("pal=%v: beamV = %d after %d iterations, want %d",
				pal, sched.vdp.beamV, iterations, wantV)
		}
	}
}

func TestRunFrameAdvancesVDPBeam(t *testing.T) {
	sched, _ := newTestScheduler(false)
	sched.RunFrame()

	if sched.vdp.beamH < 0 || sched.vdp.beamH >= sched.vdp.overscanWidth() {
		t.Errorf("beamH out of range: %d", sched.vdp.beamH)
	}
	if sched.vdp.beamV < 0 || sched.vdp.beamV >= sched.vdp.overscanHeight() {
		t.Errorf("beamV out of range: %d", sched.vdp.beamV)
	}
}

func TestRunFramePALUsesLargerBudget(t *testing.T) {
	if masterCyclesPerFramePAL <= masterCyclesPerFrameNTSC {
		t.Fatal("PAL frame budget should exceed NTSC's (lower refresh rate, same master clock ratios)")
	}
}

func TestSchedulerDoesNotPanicAcrossMultipleFrames(t *testing.T) {
	sched, _ := newTestScheduler(false)
	for i := 0; i < 3; i++ {
		sched.RunFrame()
	}
}
