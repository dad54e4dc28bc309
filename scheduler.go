// scheduler.go - the per-frame master-clock interleave.

package main

// Master-clock cycles per frame, per spec.md §4.5.
const (
	masterCyclesPerFrameNTSC = 896040
	masterCyclesPerFramePAL  = 1067040

	vdpCyclesPerIteration  = 105
	m68kCyclesPerIteration = 60
	z80CyclesPerIteration  = 28
	// One iteration spans 420 master cycles: 105*4 = 60*7 = 28*15.
	masterCyclesPerIteration = vdpCyclesPerIteration * 4
)

// Scheduler drives the VDP, 68K, and Z80 in the fixed 105/60/28 interleave
// the hardware ratios require: VDP at 1/4, 68K at 1/7, Z80 at 1/15 of
// master clock. Single-threaded and cooperative - there is no parallelism
// between the three components.
type Scheduler struct {
	vdp  *VDP
	m68k *M68KCPU
	z80  *Z80Coprocessor

	pal bool
}

func NewScheduler(vdp *VDP, m68k *M68KCPU, z80 *Z80Coprocessor, pal bool) *Scheduler {
	return &Scheduler{vdp: vdp, m68k: m68k, z80: z80, pal: pal}
}

// RunFrame dispenses one frame's master-clock budget, advancing VDP, 68K,
// then Z80 in that fixed order each iteration.
func (s *Scheduler) RunFrame() {
	budget := masterCyclesPerFrameNTSC
	if s.pal {
		budget = masterCyclesPerFramePAL
	}
	for budget > 0 {
		s.vdp.Clock(vdpCyclesPerIteration)
		s.m68k.Clock(m68kCyclesPerIteration)
		s.z80.Clock(z80CyclesPerIteration)
		budget -= masterCyclesPerIteration
	}
}
