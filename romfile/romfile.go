// Package romfile loads and validates the opaque file blobs System needs
// to boot: the NDS ROM image, both BIOS images, and the firmware image.
//
// Validation happens ahead of handing bytes to the cartridge controller,
// generalised from "one cartridge format" to "ROM header + two fixed-size
// BIOS blobs + a firmware blob", each with its own validation rule.
package romfile

import "github.com/retrobus/ndscore/coreerr"

const (
	HeaderSize   = 0x200
	BIOS7Size    = 16 * 1024
	BIOS9Size    = 4 * 1024
	KEY1TableOff = 0x30
	KEY1TableLen = 0x1048
)

// Header is the parsed subset of an NDS ROM's first 0x200 bytes that the
// rest of the system needs.
type Header struct {
	GameTitle [12]byte
	GameCode  uint32

	ARM9RomOffset  uint32
	ARM9EntryAddr  uint32
	ARM9RamAddr    uint32
	ARM9Size       uint32
	ARM7RomOffset  uint32
	ARM7EntryAddr  uint32
	ARM7RamAddr    uint32
	ARM7Size       uint32
}

// ROM wraps a full cartridge image with its parsed header.
type ROM struct {
	Header Header
	Data   []byte
}

func readLE32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

// LoadROM validates and parses an NDS ROM image.
func LoadROM(data []byte) (*ROM, error) {
	if len(data) < HeaderSize {
		return nil, coreerr.Errorf(coreerr.Configuration, "rom too small to contain a header: %d bytes", len(data))
	}
	var h Header
	copy(h.GameTitle[:], data[0x00:0x0C])
	h.GameCode = readLE32(data, 0x0C)
	h.ARM9RomOffset = readLE32(data, 0x20)
	h.ARM9EntryAddr = readLE32(data, 0x24)
	h.ARM9RamAddr = readLE32(data, 0x28)
	h.ARM9Size = readLE32(data, 0x2C)
	h.ARM7RomOffset = readLE32(data, 0x30)
	h.ARM7EntryAddr = readLE32(data, 0x34)
	h.ARM7RamAddr = readLE32(data, 0x38)
	h.ARM7Size = readLE32(data, 0x3C)

	if int(h.ARM9RomOffset+h.ARM9Size) > len(data) || int(h.ARM7RomOffset+h.ARM7Size) > len(data) {
		return nil, coreerr.Errorf(coreerr.Configuration, "rom header describes segments past the end of the file")
	}
	return &ROM{Header: h, Data: data}, nil
}

// ARM9Segment/ARM7Segment slice out each core's boot image from the ROM.
func (r *ROM) ARM9Segment() []byte {
	return r.Data[r.Header.ARM9RomOffset : r.Header.ARM9RomOffset+r.Header.ARM9Size]
}

func (r *ROM) ARM7Segment() []byte {
	return r.Data[r.Header.ARM7RomOffset : r.Header.ARM7RomOffset+r.Header.ARM7Size]
}

// LoadBIOS7/LoadBIOS9 validate the fixed-size opaque BIOS blobs.
func LoadBIOS7(data []byte) ([]byte, error) {
	if len(data) != BIOS7Size {
		return nil, coreerr.Errorf(coreerr.Configuration, "bios7 must be %d bytes, got %d", BIOS7Size, len(data))
	}
	return data, nil
}

func LoadBIOS9(data []byte) ([]byte, error) {
	if len(data) != BIOS9Size {
		return nil, coreerr.Errorf(coreerr.Configuration, "bios9 must be %d bytes, got %d", BIOS9Size, len(data))
	}
	return data, nil
}

// KEY1Table extracts the cartridge-cipher subkey/S-box table carried in the
// ARM7 BIOS image at bytes 0x30..0x1078.
func KEY1Table(bios7 []byte) ([]byte, error) {
	if len(bios7) < KEY1TableOff+KEY1TableLen {
		return nil, coreerr.Errorf(coreerr.Configuration, "bios7 too small to contain a key1 table")
	}
	return bios7[KEY1TableOff : KEY1TableOff+KEY1TableLen], nil
}

// Firmware wraps the opaque firmware blob along with its user-settings
// region (nickname, birthday, language).
type Firmware struct {
	Data []byte
}

// LoadFirmware validates the firmware image is at least large enough to
// contain a user-settings block, without otherwise interpreting its
// contents (decoding nickname/birthday/language is the SPI firmware
// device's job when the guest actually reads them).
func LoadFirmware(data []byte) (*Firmware, error) {
	if len(data) < 0x40000 {
		return nil, coreerr.Errorf(coreerr.Configuration, "firmware image too small: %d bytes", len(data))
	}
	return &Firmware{Data: data}, nil
}

// UserSettingsOffset reads the firmware header's pointer to the active
// user-settings block.
func (f *Firmware) UserSettingsOffset() uint32 {
	halfwordIndex := uint32(f.Data[0x20]) | uint32(f.Data[0x21])<<8
	return halfwordIndex * 8
}
