package vram_test

import (
	"testing"

	"github.com/retrobus/ndscore/vram"
)

func TestReadRoleORsOverlappingBanks(t *testing.T) {
	v := vram.New()
	v.SetMapping(vram.BankA, vram.Mapping{Role: vram.RoleLCDC, Offset: 0, Enable: true})
	v.SetMapping(vram.BankB, vram.Mapping{Role: vram.RoleLCDC, Offset: 0, Enable: true})

	v.Raw(vram.BankA)[0] = 0x0F
	v.Raw(vram.BankB)[0] = 0xF0

	got := v.ReadRole(vram.RoleLCDC, 0)
	if got != 0xFF {
		t.Fatalf("expected OR of overlapping banks = 0xFF, got %#x", got)
	}
}

func TestReadRoleIgnoresDisabledBank(t *testing.T) {
	v := vram.New()
	v.SetMapping(vram.BankA, vram.Mapping{Role: vram.RoleLCDC, Offset: 0, Enable: false})
	v.Raw(vram.BankA)[0] = 0xFF

	if got := v.ReadRole(vram.RoleLCDC, 0); got != 0 {
		t.Fatalf("expected disabled bank to contribute nothing, got %#x", got)
	}
}

func TestWriteRoleRespectsOffset(t *testing.T) {
	v := vram.New()
	v.SetMapping(vram.BankC, vram.Mapping{Role: vram.RoleEngineABG, Offset: 0x20000, Enable: true})

	v.WriteRole(vram.RoleEngineABG, 0x20010, 0x7E)
	if v.Raw(vram.BankC)[0x10] != 0x7E {
		t.Fatalf("expected write to land at bank-relative offset 0x10")
	}
}
