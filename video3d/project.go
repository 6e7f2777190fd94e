package video3d

// Projected is one vertex after the screen-space projection step: its
// screen coordinate, normalized depth, and normalized w.
type Projected struct {
	ScreenX, ScreenY int
	Depth            uint32 // 24-bit normalized depth
	NormW            uint16
	Col              Color
	U, V             Fixed
	W                Fixed // original clip-space w, kept for perspective interpolation
}

// project implements per-vertex screen projection:
//
//	screen_x = (x+w)*viewport_w/(2w) + x1
//	screen_y = (h_viewport-(y+w)*viewport_h/(2w)) + y1
//	depth    = ((z*0x4000/w + 0x3fff)*0x200) mod 0x1000000
func project(v Vertex, viewportX1, viewportY1, viewportW, viewportH int) Projected {
	w := v.Pos.W
	if w == 0 {
		w = 1 // degenerate vertex; avoid a divide by zero rather than special-casing every caller
	}

	// x, y, z, and w all share the same FracBits scale, so it cancels out
	// of every ratio below; these are plain-integer versions of the
	// spec's formulas operating on the raw fixed-point representation
	// directly; viewport_w/viewport_h and the 0x4000/0x3fff/0x200
	// constants are genuine plain integers, not fixed-point values, so
	// Fixed's scaled Mul/Div would double-apply the scale factor here.
	xRaw, yRaw, zRaw, wRaw := int64(v.Pos.X), int64(v.Pos.Y), int64(v.Pos.Z), int64(w)

	sx := (xRaw+wRaw)*int64(viewportW)/(2*wRaw) + int64(viewportX1)
	sy := int64(viewportH) - (yRaw+wRaw)*int64(viewportH)/(2*wRaw) + int64(viewportY1)

	depthPart := zRaw*0x4000/wRaw + 0x3fff
	depth := ((depthPart * 0x200) % 0x1000000)
	if depth < 0 {
		depth += 0x1000000
	}

	return Projected{
		ScreenX: int(sx),
		ScreenY: int(sy),
		Depth:   uint32(depth),
		NormW:   quantizeW(w),
		Col:     v.Col,
		U:       v.U,
		V:       v.V,
		W:       w,
	}
}

// quantizeW reduces one clip-space w to 16 bits: shift right by however
// many bits the value exceeds 16, so larger w values lose low-end
// precision rather than saturating. Rasterizer.Render then re-quantizes
// every vertex of a polygon with the shift taken from the polygon's
// largest w.
func quantizeW(w Fixed) uint16 {
	v := int64(w)
	if v < 0 {
		v = 0
	}
	shift := 0
	for v>>uint(shift) > 0xFFFF {
		shift++
	}
	return uint16(v >> uint(shift))
}

// perspectiveFactor implements the perspective interpolation weight:
// factor = t*w0 / ((1-t)*w1 + t*w0).
func perspectiveFactor(t Fixed, w0, w1 uint16) Fixed {
	tw0 := t.Mul(Fixed(w0))
	oneMinusT := FixedFromInt(1) - t
	denom := oneMinusT.Mul(Fixed(w1)) + tw0
	if denom == 0 {
		return t
	}
	return tw0.Div(denom)
}
