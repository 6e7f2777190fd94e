package video2d

// ObjShape/ObjSize combine to pick
// a sprite's pixel dimensions from an 8-entry table, same as attribute0's
// shape field crossed with attribute1's size field on real hardware.
type ObjShape int

const (
	ShapeSquare ObjShape = iota
	ShapeWide
	ShapeTall
)

var objDimTable = map[[2]int][2]int{
	{int(ShapeSquare), 0}: {8, 8}, {int(ShapeSquare), 1}: {16, 16},
	{int(ShapeSquare), 2}: {32, 32}, {int(ShapeSquare), 3}: {64, 64},
	{int(ShapeWide), 0}: {16, 8}, {int(ShapeWide), 1}: {32, 8},
	{int(ShapeWide), 2}: {32, 16}, {int(ShapeWide), 3}: {64, 32},
	{int(ShapeTall), 0}: {8, 16}, {int(ShapeTall), 1}: {8, 32},
	{int(ShapeTall), 2}: {16, 32}, {int(ShapeTall), 3}: {32, 64},
}

// ObjMode selects how an object's pixels combine with the rest of the
// scene: normal, alpha-blended (semi-transparent OBJ), OBJ-window (defines
// a mask rather than drawing), or bitmap (direct-color sprite).
type ObjMode int

const (
	ObjNormal ObjMode = iota
	ObjSemiTransparent
	ObjWindow
	ObjBitmap
)

// Object is one of OAM's 128 entries, decoded from its three 16-bit
// attribute words.
type Object struct {
	Y               int
	RotateScale     bool
	Disable         bool // when RotateScale is false, this attribute0 bit means "hidden"
	DoubleSize      bool // when RotateScale is true, this bit means "double-size bounding box"
	Mode            ObjMode
	Mosaic          bool
	Palette256      bool
	Shape           ObjShape

	X               int
	AffineIndex     int // valid only when RotateScale
	FlipH, FlipV    bool // valid only when !RotateScale
	SizeSelector    int

	TileNumber   int
	Priority     int
	PaletteBank  int
}

// DecodeObject parses one 8-byte OAM entry (little-endian attr0, attr1,
// attr2; the 4th word is the affine parameter slot shared across 4 OAM
// entries and is read separately by AffineParam).
func DecodeObject(entry []byte) Object {
	attr0 := uint16(entry[0]) | uint16(entry[1])<<8
	attr1 := uint16(entry[2]) | uint16(entry[3])<<8
	attr2 := uint16(entry[4]) | uint16(entry[5])<<8

	o := Object{
		Y:            int(attr0 & 0xFF),
		RotateScale:  attr0&(1<<8) != 0,
		Mode:         ObjMode((attr0 >> 10) & 0x3),
		Mosaic:       attr0&(1<<12) != 0,
		Palette256:   attr0&(1<<13) != 0,
		Shape:        ObjShape((attr0 >> 14) & 0x3),
		X:            int(attr1 & 0x1FF),
		SizeSelector: int((attr1 >> 14) & 0x3),
		TileNumber:   int(attr2 & 0x3FF),
		Priority:     int((attr2 >> 10) & 0x3),
		PaletteBank:  int((attr2 >> 12) & 0xF),
	}
	if o.RotateScale {
		o.AffineIndex = int((attr1 >> 9) & 0x1F)
		o.DoubleSize = attr0&(1<<9) != 0
	} else {
		o.Disable = attr0&(1<<9) != 0
		o.FlipH = attr1&(1<<12) != 0
		o.FlipV = attr1&(1<<13) != 0
	}
	return o
}

// Dimensions returns the sprite's pixel width and height.
func (o Object) Dimensions() (w, h int) {
	d := objDimTable[[2]int{int(o.Shape), o.SizeSelector}]
	return d[0], d[1]
}

// AffineParam reads one of an affine group's four parameters (PA, PB, PC,
// PD) from OAM, each stored as an 8.8 fixed-point s16 in the 4th attribute
// word of OAM entries [group*4 .. group*4+3].
func AffineParam(oam []byte, group, index int) int16 {
	off := (group*4+index)*8 + 6
	return int16(uint16(oam[off]) | uint16(oam[off+1])<<8)
}
