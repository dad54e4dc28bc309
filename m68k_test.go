// m68k_test.go - decode-cache 68000 interpreter tests: ALU flags, branch
// conditions, and BCD arithmetic, driven end-to-end through the bus.

package main

import "testing"

func newTestM68K() (*M68KCPU, *Bus) {
	bus := newBus("test", 0x100000)
	ram := newRAMDevice(0x100000)
	bus.wireRange(0, 0xFFFFF, 0, ram)
	cpu := NewM68KCPU(bus)
	cpu.SR = srS
	cpu.PC = 0x1000
	cpu.SSP = 0x8000
	return cpu, bus
}

func (c *M68KCPU) writeWord(addr uint32, w uint16) { c.bus.Poke16(addr, w) }

func TestAddLongDataRegister(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.D[0] = 0x00000010
	cpu.D[1] = 0x00000005
	cpu.writeWord(cpu.PC, 0xD081) // ADD.L D1,D0
	cpu.StepOne()

	if cpu.D[0] != 0x15 {
		t.Errorf("D0 = %#x, want 0x15", cpu.D[0])
	}
	if cpu.SR&srC != 0 || cpu.SR&srV != 0 {
		t.Errorf("unexpected carry/overflow, SR=%#x", cpu.SR)
	}
}

func TestAddLongOverflow(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.D[0] = 0x7FFFFFFF
	cpu.D[1] = 1
	cpu.writeWord(cpu.PC, 0xD081)
	cpu.StepOne()

	if cpu.D[0] != 0x80000000 {
		t.Errorf("D0 = %#x, want 0x80000000", cpu.D[0])
	}
	if cpu.SR&srV == 0 || cpu.SR&srN == 0 {
		t.Errorf("expected N and V set, SR=%#x", cpu.SR)
	}
}

func TestMoveqSignExtends(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.writeWord(cpu.PC, 0x7AFF) // MOVEQ #-1,D5
	cpu.StepOne()

	if cpu.D[5] != 0xFFFFFFFF {
		t.Errorf("D5 = %#x, want 0xFFFFFFFF", cpu.D[5])
	}
	if cpu.SR&srN == 0 {
		t.Error("expected N set for negative MOVEQ result")
	}
}

func TestBraBranchesForward(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.writeWord(cpu.PC, 0x6008) // BRA.S +8
	cpu.StepOne()

	if cpu.PC != 0x100A {
		t.Errorf("PC = %#x, want 0x100A", cpu.PC)
	}
}

func TestDbccFallsThroughWhenConditionTrue(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.SR |= srZ
	cpu.D[0] = 5
	cpu.writeWord(cpu.PC, 0x57C8)      // DBEQ D0,$0FFE
	cpu.writeWord(cpu.PC+2, 0xFFFC)
	cpu.StepOne()

	if cpu.PC != 0x1004 {
		t.Errorf("PC = %#x, want 0x1004 (condition true, no loop)", cpu.PC)
	}
	if cpu.D[0] != 5 {
		t.Errorf("D0 = %d, want unchanged 5", cpu.D[0])
	}
}

func TestDbccLoopsAndDecrements(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.D[0] = 2
	cpu.writeWord(cpu.PC, 0x51C8) // DBF D0,$0FFE
	cpu.writeWord(cpu.PC+2, 0xFFFC)
	cpu.StepOne()

	if cpu.PC != 0x0FFE {
		t.Errorf("PC = %#x, want loop back to 0x0FFE", cpu.PC)
	}
	if uint16(cpu.D[0]) != 1 {
		t.Errorf("D0 low word = %d, want 1", uint16(cpu.D[0]))
	}
}

func TestSccSetsByteOnCondition(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.SR |= srZ
	cpu.D[0] = 0x12345600
	cpu.writeWord(cpu.PC, 0x57C0) // SEQ D0
	cpu.StepOne()

	if cpu.D[0] != 0x123456FF {
		t.Errorf("D0 = %#x, want 0x123456FF", cpu.D[0])
	}
}

func TestAbcdSimpleAddition(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.D[0] = 0x15
	cpu.D[1] = 0x27
	cpu.writeWord(cpu.PC, 0xC300) // ABCD D0,D1 -> D1
	cpu.StepOne()

	if cpu.D[1]&0xFF != 0x42 {
		t.Errorf("D1 low byte = %#x, want 0x42 (BCD 15+27)", cpu.D[1]&0xFF)
	}
}

func TestJsrRtsRoundTrip(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.writeWord(0x2000, 0x4E75) // RTS
	cpu.writeWord(cpu.PC, 0x4EB9) // JSR xxx.L
	cpu.bus.Poke32(cpu.PC+2, 0x2000)

	cpu.StepOne()
	if cpu.PC != 0x2000 {
		t.Fatalf("PC = %#x after JSR, want 0x2000", cpu.PC)
	}
	cpu.StepOne()
	if cpu.PC != 0x1006 {
		t.Errorf("PC = %#x after RTS, want 0x1006", cpu.PC)
	}
}

func TestCheckConditionTable(t *testing.T) {
	cpu, _ := newTestM68K()
	cpu.SR |= srZ
	if !cpu.CheckCondition(7) { // EQ
		t.Error("EQ should be true when Z=1")
	}
	if cpu.CheckCondition(6) { // NE
		t.Error("NE should be false when Z=1")
	}
}
