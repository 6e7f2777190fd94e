package video3d

import "testing"

// pushCmd pushes one opcode word (other three packed-opcode slots left at
// zero, a no-op per drain()) followed by its parameter words, matching how
// a single, unpacked command is driven through the real FIFO port.
func pushCmd(e *Engine, op Opcode, params ...uint32) {
	e.Push(uint32(op))
	for _, p := range params {
		e.Push(p)
	}
}

func pushVertex(e *Engine, x, y, z int16) {
	pushCmd(e, OpVtx16,
		uint32(uint16(x))|uint32(uint16(y))<<16,
		uint32(uint16(z)),
	)
}

func TestMatrixStackPushPopRoundTrips(t *testing.T) {
	e := NewEngine()
	pushCmd(e, OpMtxMode, uint32(ModePosition))

	orig := e.matrices.position.current()
	pushCmd(e, OpMtxPush)
	pushCmd(e, OpMtxScale, uint32(FixedFromInt(2)), uint32(FixedFromInt(2)), uint32(FixedFromInt(2)))
	if e.matrices.position.current() == orig {
		t.Fatalf("expected scale to change the current matrix")
	}
	pushCmd(e, OpMtxPop, 1)
	if e.matrices.position.current() != orig {
		t.Fatalf("expected pop to restore the pushed matrix")
	}
}

func TestMatrixStackOverflowSetsStickyError(t *testing.T) {
	e := NewEngine()
	pushCmd(e, OpMtxMode, uint32(ModeProjection)) // depth-1 stack
	pushCmd(e, OpMtxPush)                         // fills the one available slot
	if e.StickyError() {
		t.Fatalf("did not expect an error after a single push on a depth-1 stack")
	}
	pushCmd(e, OpMtxPush) // no room left
	if !e.StickyError() {
		t.Fatalf("expected overflow on a depth-1 stack's second push")
	}
}

func TestTrianglePrimitiveAssemblesAfterThreeVertices(t *testing.T) {
	e := NewEngine()
	pushCmd(e, OpBeginVtxs, uint32(PrimTriangles))

	verts := [][3]int16{{0, 0, 0}, {100, 0, 0}, {0, 100, 0}}
	for _, v := range verts {
		pushVertex(e, v[0], v[1], v[2])
	}
	pushCmd(e, OpSwapBuffers, 0)
	if !e.Swapped() {
		t.Fatalf("expected a swap after SWAP_BUFFERS")
	}
	if len(e.FrontBuffer()) != 1 {
		t.Fatalf("expected exactly one assembled triangle, got %d", len(e.FrontBuffer()))
	}
}

func TestQuadStripSwapsThirdAndFourthVertex(t *testing.T) {
	e := NewEngine()
	pushCmd(e, OpBeginVtxs, uint32(PrimQuadStrip))
	verts := [][3]int16{{0, 0, 0}, {0, 100, 0}, {100, 0, 0}, {100, 100, 0}}
	for _, v := range verts {
		pushVertex(e, v[0], v[1], v[2])
	}
	pushCmd(e, OpSwapBuffers, 0)
	if len(e.FrontBuffer()) != 1 {
		t.Fatalf("expected one quad from the first four strip vertices")
	}
	q := e.FrontBuffer()[0].Vertices
	if q[2].Pos.X != 100 || q[2].Pos.Y != 100 || q[3].Pos.X != 100 || q[3].Pos.Y != 0 {
		t.Fatalf("expected the third and fourth strip vertices swapped, got %+v", q)
	}
}

func TestClipPolygonDropsVertexOutsidePlane(t *testing.T) {
	w := FixedFromInt(1)
	poly := []Vertex{
		{Pos: Vector4{X: 0, Y: 0, Z: 0, W: w}},
		{Pos: Vector4{X: w * 10, Y: 0, Z: 0, W: w}}, // far outside +x plane (x > w)
		{Pos: Vector4{X: 0, Y: w / 2, Z: 0, W: w}},
	}
	out := clipPolygon(poly)
	if len(out) == 0 {
		t.Fatalf("expected at least one vertex to survive clipping")
	}
	for _, v := range out {
		if v.Pos.X > v.Pos.W {
			t.Fatalf("clip plane violated: x=%d w=%d", v.Pos.X, v.Pos.W)
		}
	}
}

func TestProjectCentersOriginInViewport(t *testing.T) {
	v := Vertex{Pos: Vector4{X: 0, Y: 0, Z: 0, W: FixedFromInt(1)}}
	p := project(v, 0, 0, 256, 192)
	if p.ScreenX != 128 || p.ScreenY != 96 {
		t.Fatalf("expected the coordinate origin to land at viewport center, got (%d,%d)", p.ScreenX, p.ScreenY)
	}
}

func TestRasterizerDepthTestRejectsFartherPixel(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Depth[1][1] = 10
	fb.Color[1][1] = Color{R: 200}

	r := NewRasterizer()
	w := FixedFromInt(1)
	far := []Vertex{
		{Pos: Vector4{X: FixedFromInt(-1), Y: FixedFromInt(1), Z: FixedFromInt(100), W: w}, Col: Color{R: 50}},
		{Pos: Vector4{X: FixedFromInt(1), Y: FixedFromInt(1), Z: FixedFromInt(100), W: w}, Col: Color{R: 50}},
		{Pos: Vector4{X: FixedFromInt(-1), Y: FixedFromInt(-1), Z: FixedFromInt(100), W: w}, Col: Color{R: 50}},
	}
	poly := []Polygon{{Vertices: far, Attr: PolygonAttr{Alpha: 31}}}
	r.Render(fb, poly, 0, 0, 4, 4, nil)

	if fb.Color[1][1].R != 200 {
		t.Fatalf("expected the nearer existing pixel to survive a farther overdraw, got %+v", fb.Color[1][1])
	}
}
