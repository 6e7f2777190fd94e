package cartridge

import "testing"

func TestRegisterWindowReadHeader(t *testing.T) {
	rom := make([]byte, 0x1000)
	for i := range rom {
		rom[i] = byte(i)
	}
	c := New(rom, nil)

	// command 0x00 (header), size selector 1 -> 0x200 bytes
	c.WriteByte(regCARDCOMMAND, 0x00)
	for i := uint32(1); i < 8; i++ {
		c.WriteByte(regCARDCOMMAND+i, 0)
	}
	c.WriteByte(regROMCTRL+2, 0x01)
	c.WriteByte(regROMCTRL+3, 0x80) // start bit

	ctrlHigh, _ := c.ReadByte(regROMCTRL + 3)
	if ctrlHigh&(1<<7) == 0 {
		t.Fatalf("expected ready/busy bit set after start")
	}

	var got [4]byte
	for i := range got {
		got[i], _ = c.ReadByte(regCARDDATA + uint32(i))
	}
	want := [4]byte{rom[0], rom[1], rom[2], rom[3]}
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}
