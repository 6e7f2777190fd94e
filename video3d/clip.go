package video3d

// clipPlane is one of the six homogeneous clip planes the view frustum is
// built from, clipped against one at a time by Sutherland-Hodgman.
type clipPlane int

const (
	clipPosX clipPlane = iota
	clipNegX
	clipPosY
	clipNegY
	clipPosZ
	clipNegZ
)

// distance returns a vertex's signed distance from the plane; vertices
// with distance >= 0 are inside.
func (p clipPlane) distance(v Vertex) Fixed {
	switch p {
	case clipPosX:
		return v.Pos.W - v.Pos.X
	case clipNegX:
		return v.Pos.W + v.Pos.X
	case clipPosY:
		return v.Pos.W - v.Pos.Y
	case clipNegY:
		return v.Pos.W + v.Pos.Y
	case clipPosZ:
		return v.Pos.W - v.Pos.Z
	case clipNegZ:
		return v.Pos.W + v.Pos.Z
	}
	return 0
}

func lerpVertex(a, b Vertex, t Fixed) Vertex {
	lerp := func(x, y Fixed) Fixed { return x + (y-x).Mul(t) }
	lerp8 := func(x, y uint8) uint8 {
		return uint8(int(x) + (int(int(y)-int(x))*int(t))>>FracBits)
	}
	return Vertex{
		Pos: Vector4{
			X: lerp(a.Pos.X, b.Pos.X),
			Y: lerp(a.Pos.Y, b.Pos.Y),
			Z: lerp(a.Pos.Z, b.Pos.Z),
			W: lerp(a.Pos.W, b.Pos.W),
		},
		Col: Color{R: lerp8(a.Col.R, b.Col.R), G: lerp8(a.Col.G, b.Col.G), B: lerp8(a.Col.B, b.Col.B), A: lerp8(a.Col.A, b.Col.A)},
		U:   lerp(a.U, b.U),
		V:   lerp(a.V, b.V),
	}
}

// clipAgainstPlane runs one Sutherland-Hodgman pass against a single
// plane, returning the (possibly empty, possibly larger) clipped polygon.
func clipAgainstPlane(poly []Vertex, plane clipPlane) []Vertex {
	if len(poly) == 0 {
		return nil
	}
	var out []Vertex
	prev := poly[len(poly)-1]
	prevDist := plane.distance(prev)
	for _, cur := range poly {
		curDist := plane.distance(cur)
		curIn := curDist >= 0
		prevIn := prevDist >= 0
		if curIn != prevIn {
			// interpolate from the inside vertex, so that truncating t
			// leaves the new vertex on the inside of the plane
			in, outside, inDist, outDist := prev, cur, prevDist, curDist
			if curIn {
				in, outside, inDist, outDist = cur, prev, curDist, prevDist
			}
			t := inDist.Div(inDist - outDist)
			out = append(out, lerpVertex(in, outside, t))
		}
		if curIn {
			out = append(out, cur)
		}
		prev, prevDist = cur, curDist
	}
	return out
}

// clipPolygon applies all six planes in turn.
func clipPolygon(poly []Vertex) []Vertex {
	planes := [6]clipPlane{clipPosX, clipNegX, clipPosY, clipNegY, clipPosZ, clipNegZ}
	for _, p := range planes {
		poly = clipAgainstPlane(poly, p)
		if len(poly) == 0 {
			return nil
		}
	}
	return poly
}
