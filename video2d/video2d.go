// Package video2d implements the two 2D graphics engines (A and B): tile
// and bitmap background layers, the object (sprite) layer, and the
// window/blend compositor that produces one RGB24 scanline at a time.
//
// The per-scanline pipeline — clear object buffer, render objects, render
// backgrounds, composite, brighten, emit — is expressed in a plain
// struct-plus-methods style rather than a class hierarchy.
package video2d

// ScreenWidth/ScreenHeight are the DS's fixed visible raster dimensions.
const (
	ScreenWidth  = 256
	ScreenHeight = 192
)

// DisplayMode selects what DISPCNT routes to the screen.
type DisplayMode int

const (
	DisplayForceWhite DisplayMode = iota
	DisplayNormal
	DisplayVRAM
	DisplayMainMemoryFIFO
)

// BGMode selects one of the six background mode configurations, each
// mixing a different combination of text, affine, and extended background
// layers.
type BGMode int

const (
	BGMode0 BGMode = iota
	BGMode1
	BGMode2
	BGMode3
	BGMode4
	BGMode5
)

// BGKind is what a given background index renders as under the current
// mode: text (tile+map), affine (rotated/scaled tile+map, 256-color), or
// extended (one of three bitmap/tilemap sub-modes).
type BGKind int

const (
	BGText BGKind = iota
	BGAffine
	BGExtended
	BGDisabled
)

// bgKindTable[mode][bgIndex] is the per-mode background-kind table.
var bgKindTable = [6][4]BGKind{
	{BGText, BGText, BGText, BGText},
	{BGText, BGText, BGText, BGAffine},
	{BGText, BGText, BGAffine, BGAffine},
	{BGText, BGText, BGText, BGExtended},
	{BGText, BGText, BGAffine, BGExtended},
	{BGText, BGText, BGExtended, BGExtended},
}

// KindOf reports what background index n renders as under mode m.
func KindOf(m BGMode, n int) BGKind {
	if n < 0 || n > 3 {
		return BGDisabled
	}
	return bgKindTable[m][n]
}

// RGB15 is the DS's native 15-bit-color + bit-15-alpha/mode pixel format,
// used for VRAM bitmap storage and palette entries.
type RGB15 uint16

// RGB24 is the engine's internal compositing and final output format.
type RGB24 struct {
	R, G, B uint8
}

// ToRGB24 expands a 5-bit-per-channel RGB15 value.
func (c RGB15) ToRGB24() RGB24 {
	r := uint8(uint16(c&0x1F) * 255 / 31)
	g := uint8(uint16((c>>5)&0x1F) * 255 / 31)
	b := uint8(uint16((c>>10)&0x1F) * 255 / 31)
	return RGB24{R: r, G: g, B: b}
}

// RGB24ToRGB15 quantizes back down, used by display capture.
func RGB24ToRGB15(c RGB24) RGB15 {
	r := RGB15(c.R) * 31 / 255
	g := RGB15(c.G) * 31 / 255
	b := RGB15(c.B) * 31 / 255
	return r | g<<5 | b<<10
}
