package video2d

// BGControl is one background's BGxCNT register fields plus its scroll
// (text) or affine reference-point/parameter state.
type BGControl struct {
	Priority       int
	CharBaseBlock  int
	Mosaic         bool
	Palette256     bool
	ScreenBaseBlock int
	AffineWrap     bool // affine BGs only: wraps instead of showing backdrop outside the map
	ScreenSize     int  // meaning depends on BGKind (text: 0..3 map sizes; affine: 0..3 map sizes)

	// Text BG scroll.
	HOfs, VOfs int

	// Affine BG reference point and parameters, latched at each scanline
	// boundary.
	RefX, RefY     int32 // 20.8 fixed point
	DX, DMX        int16 // 8.8 fixed point
	DY, DMY        int16
	internalX, internalY int32
}

// LatchReferencePoint is called whenever the CPU writes BGxX/BGxY,
// resetting the internal reference point that scanline-stepping advances.
func (b *BGControl) LatchReferencePoint() {
	b.internalX, b.internalY = b.RefX, b.RefY
}

// StepScanline advances the internal affine reference point by one
// scanline's worth of (dmx, dmy).
func (b *BGControl) StepScanline() {
	b.internalX += int32(b.DMX)
	b.internalY += int32(b.DMY)
}

// textMapSize returns the map's width/height in tiles for a text BG's
// ScreenSize field (0: 32x32, 1: 64x32, 2: 32x64, 3: 64x64).
func textMapSize(selector int) (w, h int) {
	switch selector {
	case 1:
		return 64, 32
	case 2:
		return 32, 64
	case 3:
		return 64, 64
	default:
		return 32, 32
	}
}

// affineMapSize returns an affine BG's square map size in tiles (0:16x16,
// 1:32x32, 2:64x64, 3:128x128).
func affineMapSize(selector int) int {
	return 16 << uint(selector)
}

// tileBase/mapBase compute VRAM-relative byte offsets from the control
// register's base-block fields, adding engine A's extra DISPCNT screen-
// and char-base offset (engine B has no such extra offset).
func (b *BGControl) tileBase(engineADispcntScreenBase int, isEngineA bool) uint32 {
	base := uint32(b.CharBaseBlock) * 16 * 1024
	if isEngineA {
		base += uint32(engineADispcntScreenBase) * 64 * 1024
	}
	return base
}

func (b *BGControl) mapBase(engineADispcntScreenBase int, isEngineA bool) uint32 {
	base := uint32(b.ScreenBaseBlock) * 2 * 1024
	if isEngineA {
		base += uint32(engineADispcntScreenBase) * 64 * 1024
	}
	return base
}

// decodeTile4bpp/decodeTile8bpp read one 8x8 tile's palette indices from
// character VRAM, the two pixel formats text BGs and objects use.
func decodeTile4bpp(data []byte, tileIndex int, px, py int) int {
	off := tileIndex*32 + py*4 + px/2
	if off < 0 || off >= len(data) {
		return 0
	}
	b := data[off]
	if px%2 == 0 {
		return int(b & 0xF)
	}
	return int(b >> 4)
}

func decodeTile8bpp(data []byte, tileIndex int, px, py int) int {
	off := tileIndex*64 + py*8 + px
	if off < 0 || off >= len(data) {
		return 0
	}
	return int(data[off])
}
