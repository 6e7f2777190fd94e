package romfile_test

import (
	"testing"

	"github.com/retrobus/ndscore/romfile"
)

func makeHeader() []byte {
	h := make([]byte, 0x1000)
	put32 := func(off int, v uint32) {
		h[off] = byte(v)
		h[off+1] = byte(v >> 8)
		h[off+2] = byte(v >> 16)
		h[off+3] = byte(v >> 24)
	}
	put32(0x20, 0x200) // arm9 rom offset
	put32(0x24, 0x02000000)
	put32(0x28, 0x02000000)
	put32(0x2C, 0x100) // arm9 size
	put32(0x30, 0x300) // arm7 rom offset
	put32(0x34, 0x02380000)
	put32(0x38, 0x02380000)
	put32(0x3C, 0x100) // arm7 size
	return h
}

func TestLoadROMParsesHeader(t *testing.T) {
	data := makeHeader()
	r, err := romfile.LoadROM(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Header.ARM9RomOffset != 0x200 || r.Header.ARM9Size != 0x100 {
		t.Fatalf("unexpected arm9 header fields: %+v", r.Header)
	}
	if len(r.ARM9Segment()) != 0x100 || len(r.ARM7Segment()) != 0x100 {
		t.Fatalf("unexpected segment lengths")
	}
}

func TestLoadROMRejectsTruncatedSegments(t *testing.T) {
	data := makeHeader()[:0x300]
	if _, err := romfile.LoadROM(data); err == nil {
		t.Fatalf("expected error for rom truncated before arm7 segment")
	}
}

func TestLoadBIOSSizeValidation(t *testing.T) {
	if _, err := romfile.LoadBIOS7(make([]byte, 10)); err == nil {
		t.Fatalf("expected error for undersized bios7")
	}
	if _, err := romfile.LoadBIOS9(make([]byte, romfile.BIOS9Size)); err != nil {
		t.Fatalf("unexpected error for correctly sized bios9: %v", err)
	}
}

func TestKEY1TableExtraction(t *testing.T) {
	bios7 := make([]byte, romfile.BIOS7Size)
	bios7[romfile.KEY1TableOff] = 0xAB
	table, err := romfile.KEY1Table(bios7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table[0] != 0xAB {
		t.Fatalf("expected table to start at the key1 offset")
	}
}
