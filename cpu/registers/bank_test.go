package registers_test

import (
	"testing"

	"github.com/retrobus/ndscore/cpu/registers"
)

func TestSwitchModeRoundTrip(t *testing.T) {
	var regs [16]uint32
	for i := range regs {
		regs[i] = uint32(i) * 0x11111111
	}
	want := regs

	b := &registers.Banks{}
	b.SwitchMode(&regs, registers.ModeUser, registers.ModeIRQ)
	regs[13] = 0xDEAD0000 // IRQ stack, used only while in IRQ mode
	regs[14] = 0xDEAD0001
	b.SwitchMode(&regs, registers.ModeIRQ, registers.ModeUser)

	if regs != want {
		t.Fatalf("round trip through IRQ mode changed unbanked registers: got %#v want %#v", regs, want)
	}
}

func TestSwitchModeCrossingFIQBanksR8to12(t *testing.T) {
	var regs [16]uint32
	for i := 8; i <= 12; i++ {
		regs[i] = 0xAAAA0000 + uint32(i)
	}
	want := regs

	b := &registers.Banks{}
	b.SwitchMode(&regs, registers.ModeUser, registers.ModeFIQ)
	for i := 8; i <= 12; i++ {
		regs[i] = 0xFFFF0000 + uint32(i)
	}
	b.SwitchMode(&regs, registers.ModeFIQ, registers.ModeUser)

	if regs != want {
		t.Fatalf("round trip through FIQ mode changed R8-R12: got %#v want %#v", regs, want)
	}
}

func TestSwitchModeNonFIQLeavesR8to12Alone(t *testing.T) {
	var regs [16]uint32
	regs[9] = 0x1234

	b := &registers.Banks{}
	b.SwitchMode(&regs, registers.ModeUser, registers.ModeSVC)
	if regs[9] != 0x1234 {
		t.Fatalf("SVC switch should not touch R8-R12")
	}
	b.SwitchMode(&regs, registers.ModeSVC, registers.ModeUser)
	if regs[9] != 0x1234 {
		t.Fatalf("SVC switch back should not touch R8-R12")
	}
}

func TestSPSRBankedPerMode(t *testing.T) {
	b := &registers.Banks{}
	b.SPSR(registers.ModeIRQ).SetValue(0x00000013)
	b.SPSR(registers.ModeSVC).SetValue(0x00000010)

	if b.SPSR(registers.ModeIRQ).Mode != registers.ModeSVC {
		t.Fatalf("expected SPSR_irq mode field to decode as svc, got %v", b.SPSR(registers.ModeIRQ).Mode)
	}
	if b.SPSR(registers.ModeSVC).Mode != registers.ModeUser {
		t.Fatalf("expected SPSR_svc mode field to decode as usr, got %v", b.SPSR(registers.ModeSVC).Mode)
	}
}

func TestHasSPSR(t *testing.T) {
	if registers.HasSPSR(registers.ModeUser) || registers.HasSPSR(registers.ModeSYS) {
		t.Fatalf("User and System modes must not report a banked SPSR")
	}
	if !registers.HasSPSR(registers.ModeIRQ) {
		t.Fatalf("IRQ mode must report a banked SPSR")
	}
}
