// z80_core.go - Z80 co-processor wrapper: tick-credit clocking plus the
// BUSREQ/RESET gating the 68K observes through the Z80 control port.

package main

// z80SoundBus adapts the Genesis Z80-side address map (sound RAM, banked
// cartridge window, FM ports) onto the Z80Bus interface the interpreter in
// cpu_z80.go expects.
type z80SoundBus struct {
	ram   *ramDevice
	bank  *z80BankRegisterDevice
	rom   *z80BankedROMDevice
	fm    busDevice
	ticks int
}

func (b *z80SoundBus) Read(addr uint16) byte {
	switch {
	case addr < 0x2000:
		v, _ := b.ram.peek(uint32(addr) & 0x1FFF)
		return v
	case addr >= 0x4000 && addr < 0x4004:
		v, _ := b.fm.peek(uint32(addr) & 3)
		return v
	case addr >= 0x6000 && addr < 0x6001:
		return 0xFF
	case addr >= 0x8000:
		v, _ := b.rom.peek(uint32(addr) - 0x8000)
		return v
	default:
		return 0xFF
	}
}

func (b *z80SoundBus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		b.ram.poke(uint32(addr)&0x1FFF, value)
	case addr >= 0x4000 && addr < 0x4004:
		b.fm.poke(uint32(addr)&3, value)
	case addr == 0x6000:
		b.bank.poke(0, value)
	}
}

func (b *z80SoundBus) In(port uint16) byte          { return 0xFF }
func (b *z80SoundBus) Out(port uint16, value byte)  {}
func (b *z80SoundBus) Tick(cycles int)              { b.ticks += cycles }

// Z80Coprocessor owns the Z80 interpreter plus the BUSREQ/RESET state the
// 68K drives through z80ControlDevice.
type Z80Coprocessor struct {
	cpu          *CPU_Z80
	sbus         *z80SoundBus
	busRequested bool
	resetAsserted bool
	currentTicks int64
}

func NewZ80Coprocessor(ram *ramDevice, bank *z80BankRegisterDevice, rom *z80BankedROMDevice, fm busDevice) *Z80Coprocessor {
	sbus := &z80SoundBus{ram: ram, bank: bank, rom: rom, fm: fm}
	return &Z80Coprocessor{cpu: NewCPU_Z80(sbus), sbus: sbus}
}

// SetBusRequest implements the 68K's write side of the BUSREQ port.
func (z *Z80Coprocessor) SetBusRequest(asserted bool) { z.busRequested = asserted }

// SetReset implements the 68K's write side of the RESET port. Asserting
// reset halts the Z80 immediately; de-asserting it re-initialises the
// interpreter at once, and execution resumes on the next clock.
func (z *Z80Coprocessor) SetReset(asserted bool) {
	wasAsserted := z.resetAsserted
	z.resetAsserted = asserted
	if wasAsserted && !asserted {
		z.cpu.Reset()
	}
}

// BusGranted reports whether the 68K's BUSREQ/RESET port should read back
// "bus granted" (the Z80 is halted and the 68K may access sound RAM).
func (z *Z80Coprocessor) BusGranted() bool {
	return z.busRequested || z.resetAsserted
}

func (z *Z80Coprocessor) running() bool {
	return !z.busRequested && !z.resetAsserted
}

// Clock spends ticks Z80 clock cycles (the scheduler passes 28, the Z80's
// 1/15 share of an iteration); while BUSREQ or RESET hold the Z80 off the bus, ticks are
// consumed without executing.
func (z *Z80Coprocessor) Clock(ticks int) {
	z.currentTicks -= int64(ticks)
	for z.currentTicks < 0 {
		if !z.running() {
			z.currentTicks++
			continue
		}
		before := z.sbus.ticks
		z.cpu.Step()
		spent := z.sbus.ticks - before
		if spent <= 0 {
			spent = 4
		}
		z.currentTicks += int64(spent)
	}
}

// z80ControlDevice is the 4-byte BUSREQ/RESET port wired at A11100-A11201
// on the 68K side.
type z80ControlDevice struct {
	z80 *Z80Coprocessor
}

func newZ80ControlDevice(z80 *Z80Coprocessor) *z80ControlDevice {
	return &z80ControlDevice{z80: z80}
}

func (d *z80ControlDevice) peek(offset uint32) (byte, bool) {
	if offset <= 1 {
		if d.z80.BusGranted() {
			return 0x00, true
		}
		return 0x01, true
	}
	return 0xFF, true
}

func (d *z80ControlDevice) poke(offset uint32, value byte) bool {
	switch {
	case offset <= 1:
		d.z80.SetBusRequest(value != 0)
	case offset >= 0x100 && offset <= 0x101:
		d.z80.SetReset(value == 0)
	}
	return true
}
