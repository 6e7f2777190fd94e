// Package vram models the nine independently-mappable VRAM banks (A..I)
// and the VRAMCNT mapping control that assigns each bank to one of several
// possible roles.
//
// Modelled on cartridge bank-switching (a cartridge's mapped ROM banks
// change which physical bytes an address range reads from; VRAM banks
// change which physical bytes a GPU address window is backed by — the
// same "current mapping indirection" shape).
package vram

import "github.com/retrobus/ndscore/random"

// Bank identifies one of the nine VRAM banks.
type Bank int

const (
	BankA Bank = iota
	BankB
	BankC
	BankD
	BankE
	BankF
	BankG
	BankH
	BankI
	bankCount
)

// Sizes in bytes, fixed by hardware.
var bankSize = [bankCount]uint32{
	BankA: 128 * 1024,
	BankB: 128 * 1024,
	BankC: 128 * 1024,
	BankD: 128 * 1024,
	BankE: 64 * 1024,
	BankF: 16 * 1024,
	BankG: 16 * 1024,
	BankH: 32 * 1024,
	BankI: 16 * 1024,
}

// Role is where a bank's bytes are currently wired to.
type Role int

const (
	RoleUnmapped Role = iota
	RoleLCDC
	RoleEngineABG
	RoleEngineAOBJ
	RoleEngineBBG
	RoleEngineBOBJ
	RoleTexture
	RoleTexturePalette
	RoleExtPaletteBG
	RoleExtPaletteOBJ
	RoleARM7WorkRAM
)

// Mapping is one bank's current VRAMCNT-derived assignment: its role, and
// the offset within that role's address space the bank starts at (several
// banks can be mapped to overlapping offsets of the same role; reads OR
// together every bank currently covering the accessed byte).
type Mapping struct {
	Role   Role
	Offset uint32
	Enable bool
}

// VRAM owns the nine banks' backing storage and their current mappings.
type VRAM struct {
	data    [bankCount][]byte
	mapping [bankCount]Mapping
}

func New() *VRAM {
	v := &VRAM{}
	rng := random.NewRandom(nil)
	for b := Bank(0); b < bankCount; b++ {
		v.data[b] = make([]byte, bankSize[b])
		rng.Fill(v.data[b])
	}
	return v
}

// SetMapping installs a new VRAMCNT-derived mapping for bank, as decoded by
// the caller (Registers in this package decodes the VRAMCNT bytes into
// these calls).
func (v *VRAM) SetMapping(b Bank, m Mapping) {
	v.mapping[b] = m
}

// Mapping returns bank b's current mapping.
func (v *VRAM) Mapping(b Bank) Mapping {
	return v.mapping[b]
}

// Raw returns bank b's backing storage directly, for a client (video2d,
// video3d) that already knows which banks are mapped to it and wants
// direct byte access rather than going through a role-addressed Read.
func (v *VRAM) Raw(b Bank) []byte {
	return v.data[b]
}

// ReadRole reads one byte at offset within the given role's address space,
// OR-combining every currently-enabled bank mapped to that role and offset
//.
func (v *VRAM) ReadRole(role Role, offset uint32) byte {
	var result byte
	for b := Bank(0); b < bankCount; b++ {
		m := v.mapping[b]
		if !m.Enable || m.Role != role {
			continue
		}
		if offset < m.Offset || offset >= m.Offset+uint32(len(v.data[b])) {
			continue
		}
		result |= v.data[b][offset-m.Offset]
	}
	return result
}

// WriteRole writes to every currently-enabled bank mapped to role at
// offset (normally exactly one bank covers a given role+offset for writes,
// but overlapping LCDC-direct mappings are legal hardware configurations).
func (v *VRAM) WriteRole(role Role, offset uint32, value byte) {
	for b := Bank(0); b < bankCount; b++ {
		m := v.mapping[b]
		if !m.Enable || m.Role != role {
			continue
		}
		if offset < m.Offset || offset >= m.Offset+uint32(len(v.data[b])) {
			continue
		}
		v.data[b][offset-m.Offset] = value
	}
}

// BankSize returns the fixed hardware size of bank b.
func BankSize(b Bank) uint32 { return bankSize[b] }
