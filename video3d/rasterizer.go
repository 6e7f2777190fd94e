package video3d

import "sort"

// Framebuffer holds the 3D engine's color and depth planes, written by
// the rasterizer and read by the 2D compositor's VRAM-display-mode path.
type Framebuffer struct {
	Width, Height int
	Color         [][]Color
	Depth         [][]uint32
}

func NewFramebuffer(w, h int) *Framebuffer {
	fb := &Framebuffer{Width: w, Height: h}
	fb.Color = make([][]Color, h)
	fb.Depth = make([][]uint32, h)
	for y := range fb.Color {
		fb.Color[y] = make([]Color, w)
		fb.Depth[y] = make([]uint32, w)
		for x := range fb.Depth[y] {
			fb.Depth[y][x] = 0xFFFFFF
		}
	}
	return fb
}

// TextureSource resolves a polygon's texture parameters to its backing
// texel and palette bytes, owned by whichever VRAM banks are currently
// mapped to the texture/texture-palette roles.
type TextureSource func(TextureParam) (data, pal []byte)

// Rasterizer converts one frame's clipped, projected polygons into pixels
//.
type Rasterizer struct {
	AlphaTestThreshold uint8
	DepthTestEqualBand uint32 // spec: "within +-0x200 when depth equal is set"
}

func NewRasterizer() *Rasterizer {
	return &Rasterizer{DepthTestEqualBand: 0x200}
}

type screenVertex struct {
	Projected
}

// Render projects every polygon's vertices, sorts opaque polygons first
// (within each group by minimum y), and scan-converts each
// into fb.
func (r *Rasterizer) Render(fb *Framebuffer, polygons []Polygon, viewportX1, viewportY1, viewportW, viewportH int, tex TextureSource) {
	type job struct {
		poly   Polygon
		verts  []screenVertex
		opaque bool
		minY   int
	}
	jobs := make([]job, 0, len(polygons))
	for _, p := range polygons {
		if len(p.Vertices) < 3 {
			continue
		}
		verts := make([]screenVertex, len(p.Vertices))
		minY := 1 << 30
		for i, v := range p.Vertices {
			pr := project(v, viewportX1, viewportY1, viewportW, viewportH)
			verts[i] = screenVertex{pr}
			if pr.ScreenY < minY {
				minY = pr.ScreenY
			}
		}
		// normalized w uses one shift per polygon, from its largest w
		var maxW Fixed
		for _, v := range verts {
			if v.W > maxW {
				maxW = v.W
			}
		}
		shift := uint(0)
		for maxW>>shift > 0xFFFF {
			shift++
		}
		for i := range verts {
			if verts[i].W > 0 {
				verts[i].NormW = uint16(verts[i].W >> shift)
			}
		}
		jobs = append(jobs, job{poly: p, verts: verts, opaque: p.Attr.Alpha == 31, minY: minY})
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].opaque != jobs[j].opaque {
			return jobs[i].opaque // opaque first
		}
		return jobs[i].minY < jobs[j].minY
	})

	for _, j := range jobs {
		data, pal := []byte(nil), []byte(nil)
		if j.poly.Tex.Format != TexNone && tex != nil {
			data, pal = tex(j.poly.Tex)
		}
		r.scanConvert(fb, j.verts, j.poly, data, pal)
	}
}

func (r *Rasterizer) scanConvert(fb *Framebuffer, verts []screenVertex, poly Polygon, texData, pal []byte) {
	minY, maxY := verts[0].ScreenY, verts[0].ScreenY
	for _, v := range verts {
		if v.ScreenY < minY {
			minY = v.ScreenY
		}
		if v.ScreenY > maxY {
			maxY = v.ScreenY
		}
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}

	n := len(verts)
	for y := minY; y <= maxY; y++ {
		var hits []screenVertex
		for i := 0; i < n; i++ {
			a, b := verts[i], verts[(i+1)%n]
			if (a.ScreenY <= y && b.ScreenY > y) || (b.ScreenY <= y && a.ScreenY > y) {
				t := Fixed(0)
				if b.ScreenY != a.ScreenY {
					t = FixedFromInt(y - a.ScreenY).Div(FixedFromInt(b.ScreenY - a.ScreenY))
				}
				factor := perspectiveFactor(t, a.NormW, b.NormW)
				hits = append(hits, interpolateScreen(a, b, factor))
			}
		}
		if len(hits) < 2 {
			continue
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].ScreenX < hits[j].ScreenX })
		left, right := hits[0], hits[len(hits)-1]

		x0, x1 := left.ScreenX, right.ScreenX
		if x0 < 0 {
			x0 = 0
		}
		if x1 >= fb.Width {
			x1 = fb.Width - 1
		}
		for x := x0; x <= x1; x++ {
			t := Fixed(0)
			if right.ScreenX != left.ScreenX {
				t = FixedFromInt(x - left.ScreenX).Div(FixedFromInt(right.ScreenX - left.ScreenX))
			}
			factor := perspectiveFactor(t, left.NormW, right.NormW)
			p := interpolateScreen(left, right, factor)
			r.writePixel(fb, x, y, p, poly, texData, pal)
		}
	}
}

func interpolateScreen(a, b screenVertex, t Fixed) screenVertex {
	lerp := func(x, y Fixed) Fixed { return x + (y-x).Mul(t) }
	lerp8 := func(x, y uint8) uint8 { return uint8(int(x) + (int(int(y)-int(x))*int(t))>>FracBits) }
	rawT := int64(t) // t's raw fixed-point representation, already scaled by 1<<FracBits
	lerpInt := func(x, y int64) int64 { return x + ((y-x)*rawT)>>FracBits }
	return screenVertex{Projected{
		ScreenX: int(lerpInt(int64(a.ScreenX), int64(b.ScreenX))),
		ScreenY: a.ScreenY,
		Depth:   uint32(lerpInt(int64(a.Depth), int64(b.Depth))),
		NormW:   uint16(lerpInt(int64(a.NormW), int64(b.NormW))),
		Col:     Color{R: lerp8(a.Col.R, b.Col.R), G: lerp8(a.Col.G, b.Col.G), B: lerp8(a.Col.B, b.Col.B), A: lerp8(a.Col.A, b.Col.A)},
		U:       lerp(a.U, b.U),
		V:       lerp(a.V, b.V),
		W:       lerp(a.W, b.W),
	}}
}

func (r *Rasterizer) writePixel(fb *Framebuffer, x, y int, p screenVertex, poly Polygon, texData, pal []byte) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}

	color := p.Col
	if poly.Tex.Format != TexNone && texData != nil {
		tx := p.U.Int()
		ty := p.V.Int()
		texel, ok := poly.Tex.sample(texData, pal, tx, ty)
		if ok {
			switch poly.Attr.Mode {
			case PolyDecal:
				color = texel
			case PolyToon, PolyShadow, PolyModulation:
				fallthrough
			default:
				color = Color{
					R: modulate(texel.R, p.Col.R),
					G: modulate(texel.G, p.Col.G),
					B: modulate(texel.B, p.Col.B),
					A: modulate(texel.A, p.Col.A),
				}
			}
		} else if poly.Attr.Mode != PolyDecal {
			return // color-0 transparent texel and not decal mode: pixel contributes nothing
		}
	}

	alpha := uint8(int(poly.Attr.Alpha) * 255 / 31)
	if alpha < r.AlphaTestThreshold {
		return
	}

	existing := fb.Depth[y][x]
	pass := p.Depth < existing
	if poly.Attr.DepthEqual {
		diff := int64(p.Depth) - int64(existing)
		if diff < 0 {
			diff = -diff
		}
		pass = pass || uint32(diff) <= r.DepthTestEqualBand
	}
	if !pass {
		return
	}

	fb.Color[y][x] = color
	fb.Depth[y][x] = p.Depth
}

func modulate(a, b uint8) uint8 {
	return uint8(int(a) * int(b) / 255)
}
