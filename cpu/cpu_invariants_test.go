package cpu

import (
	"testing"

	"github.com/retrobus/ndscore/cpu/registers"
)

func TestPCAlignmentMatchesState(t *testing.T) {
	bus := newFakeBus(0x1000)
	bus.putARM(0x0, 0xE3A00005) // MOV R0, #5
	c := NewCore(ARMv4, bus, 0x0)
	runInstructions(c, 1)

	if c.fetch.Addr&3 != 0 {
		t.Fatalf("ARM-state fetch address must stay word-aligned, got %#x", c.fetch.Addr)
	}

	bus2 := newFakeBus(0x1000)
	bus2.putThumb(0x0, 0x2005) // MOV R0, #5 (format 3)
	t2 := NewCore(ARMv4, bus2, 0x0)
	t2.CPSR.T = true
	t2.Flush(0x0)
	runInstructions(t2, 1)
	if t2.fetch.Addr&1 != 0 {
		t.Fatalf("Thumb-state fetch address must stay halfword-aligned, got %#x", t2.fetch.Addr)
	}
}

func TestModeTransitionRoundTripPreservesRegisters(t *testing.T) {
	bus := newFakeBus(0x10)
	c := NewCore(ARMv4, bus, 0)
	for i := 0; i < 13; i++ {
		c.R[i] = uint32(i) * 0x1000
	}
	want := c.R

	c.SwitchMode(registers.ModeIRQ)
	c.R[13] = 0xCAFE0000
	c.R[14] = 0xCAFE0001
	c.SwitchMode(registers.ModeSVC)

	if c.R != want {
		t.Fatalf("A->IRQ->A round trip changed unbanked registers:\ngot  %#v\nwant %#v", c.R, want)
	}
}

func TestModeTransitionAcrossFIQPreservesR8to12(t *testing.T) {
	bus := newFakeBus(0x10)
	c := NewCore(ARMv4, bus, 0)
	for i := 8; i <= 12; i++ {
		c.R[i] = 0x5555_0000 + uint32(i)
	}
	want := c.R

	c.SwitchMode(registers.ModeFIQ)
	for i := 8; i <= 12; i++ {
		c.R[i] = 0
	}
	c.SwitchMode(registers.ModeSVC)

	if c.R != want {
		t.Fatalf("A->FIQ->A round trip changed R8-R12:\ngot  %#v\nwant %#v", c.R, want)
	}
}

func TestIRQEntrySetsLinkAndSPSR(t *testing.T) {
	bus := newFakeBus(0x1000)
	bus.irq = true
	bus.putARM(0x0, 0xE1A00000) // MOV R0, R0 (NOP)
	c := NewCore(ARMv4, bus, 0)
	c.CPSR.I = false

	savedCPSR := c.CPSR
	c.Step() // pipeline fill
	c.decode.Addr = 0x100
	c.IRQ()

	if c.CPSR.Mode != registers.ModeIRQ {
		t.Fatalf("expected IRQ mode, got %v", c.CPSR.Mode)
	}
	if c.R[14] != 0x104 {
		t.Fatalf("expected R14_irq = decode addr + 4 = 0x104, got %#x", c.R[14])
	}
	if c.bank.SPSR(registers.ModeIRQ).Value() != savedCPSR.Value() {
		t.Fatalf("expected SPSR_irq to capture the pre-exception CPSR")
	}
	if !c.CPSR.I {
		t.Fatalf("expected IRQ to mask further IRQs")
	}
	if c.CPSR.T {
		t.Fatalf("expected IRQ entry to force ARM state")
	}
}

func TestUnalignedWordLoadDivergesByArch(t *testing.T) {
	bus4 := newFakeBus(0x1000)
	bus4.Write(0x100, Word, Sequential, 0x12345678)
	v4 := NewCore(ARMv4, bus4, 0)
	got4 := rotateUnaligned(v4, bus4.Read(0x101, Word, NonSequential), 0x101)

	bus5 := newFakeBus(0x1000)
	bus5.Write(0x100, Word, Sequential, 0x12345678)
	v5 := NewCore(ARMv5, bus5, 0)
	got5 := rotateUnaligned(v5, bus5.Read(0x101, Word, NonSequential), 0x101)

	raw := bus4.Read(0x101, Word, NonSequential)
	if got4 == raw {
		t.Fatalf("expected ARMv4 unaligned word load to rotate, value unchanged")
	}
	if got5 != raw {
		t.Fatalf("expected ARMv5 unaligned word load to be a true misaligned access, got rotated value")
	}
}

func TestBranchSetsPCAndFlushesPipeline(t *testing.T) {
	bus := newFakeBus(0x1000)
	bus.putARM(0x0, 0xEA000000) // B #0 (branch to addr+8)
	c := NewCore(ARMv4, bus, 0)
	runInstructions(c, 1)

	if c.fetch.Addr != 0x8 {
		t.Fatalf("expected branch target 0x8, got %#x", c.fetch.Addr)
	}
}
