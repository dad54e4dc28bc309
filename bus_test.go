// bus_test.go - address-decode, fault tracking, and endianness assembly.

package main

import "testing"

func TestWireRangeRoutesOffsets(t *testing.T) {
	bus := newBus("test", 0x10000)
	ram := newRAMDevice(0x100)
	bus.wireRange(0x1000, 0x10FF, 0, ram)

	if ok := bus.poke8(0x1000, 0xAB); !ok {
		t.Fatal("poke8 at wired address failed")
	}
	v, ok := ram.peek(0)
	if !ok || v != 0xAB {
		t.Fatalf("ram[0] = %#x, ok=%v, want 0xAB", v, ok)
	}
}

func TestUnmappedAddressFaults(t *testing.T) {
	bus := newBus("test", 0x10000)
	if _, ok := bus.peek8(0x500); ok {
		t.Fatal("peek8 on unmapped address should fail")
	}
	addr, faulted := bus.LastFault()
	if !faulted || addr != 0x500 {
		t.Fatalf("LastFault = (%#x, %v), want (0x500, true)", addr, faulted)
	}
}

func TestClearFault(t *testing.T) {
	bus := newBus("test", 0x10000)
	bus.peek8(0x500)
	bus.ClearFault()
	if _, faulted := bus.LastFault(); faulted {
		t.Fatal("ClearFault should reset the fault flag")
	}
}

func TestPeek16IsBigEndian(t *testing.T) {
	bus := newBus("test", 0x10000)
	ram := newRAMDevice(0x10)
	bus.wireRange(0, 0xF, 0, ram)
	bus.poke8(0, 0x12)
	bus.poke8(1, 0x34)

	v, ok := bus.Peek16(0)
	if !ok || v != 0x1234 {
		t.Fatalf("Peek16 = %#x, want 0x1234", v)
	}
}

func TestPoke16WritesBigEndianBytes(t *testing.T) {
	bus := newBus("test", 0x10000)
	ram := newRAMDevice(0x10)
	bus.wireRange(0, 0xF, 0, ram)
	bus.Poke16(0, 0xBEEF)

	hi, _ := bus.peek8(0)
	lo, _ := bus.peek8(1)
	if hi != 0xBE || lo != 0xEF {
		t.Fatalf("bytes = %#x %#x, want 0xBE 0xEF", hi, lo)
	}
}

func TestPeek32AssemblesFourBytes(t *testing.T) {
	bus := newBus("test", 0x10000)
	ram := newRAMDevice(0x10)
	bus.wireRange(0, 0xF, 0, ram)
	bus.Poke32(0, 0xDEADBEEF)

	v, ok := bus.Peek32(0)
	if !ok || v != 0xDEADBEEF {
		t.Fatalf("Peek32 = %#x, want 0xDEADBEEF", v)
	}
}

func TestWirePointOverridesSingleAddress(t *testing.T) {
	bus := newBus("test", 0x10000)
	ramA := newRAMDevice(0x10)
	ramB := newRAMDevice(0x10)
	bus.wireRange(0, 0xF, 0, ramA)
	bus.wirePoint(0x5, 0x0, ramB)

	bus.poke8(0x5, 0x99)
	if v, _ := ramB.peek(0); v != 0x99 {
		t.Fatalf("wirePoint target got %#x, want 0x99", v)
	}
	if v, _ := ramA.peek(5); v != 0 {
		t.Fatalf("original mapping should be untouched, got %#x", v)
	}
}

func TestLaterWiringWins(t *testing.T) {
	bus := newBus("test", 0x10000)
	ramA := newRAMDevice(0x10)
	ramB := newRAMDevice(0x10)
	bus.wireRange(0, 0xF, 0, ramA)
	bus.wireRange(0, 0xF, 0, ramB)

	bus.poke8(0x3, 0x7)
	if v, _ := ramB.peek(3); v != 0x7 {
		t.Fatalf("second wiring should win, ramB[3] = %#x", v)
	}
	if v, _ := ramA.peek(3); v != 0 {
		t.Fatalf("first wiring should be fully shadowed, ramA[3] = %#x", v)
	}
}
