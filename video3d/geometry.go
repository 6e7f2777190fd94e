package video3d

// Opcode identifies one geometry command. Values match the conventional
// GX command byte used by the real hardware's geometry FIFO.
type Opcode uint8

const (
	OpMtxMode     Opcode = 0x10
	OpMtxPush     Opcode = 0x11
	OpMtxPop      Opcode = 0x12
	OpMtxIdentity Opcode = 0x15
	OpMtxLoad4x4  Opcode = 0x16
	OpMtxMul4x4   Opcode = 0x18
	OpMtxScale    Opcode = 0x1B
	OpMtxTrans    Opcode = 0x1C
	OpColor       Opcode = 0x20
	OpTexCoord    Opcode = 0x22
	OpVtx16       Opcode = 0x23
	OpPolygonAttr Opcode = 0x29
	OpBeginVtxs   Opcode = 0x40
	OpEndVtxs     Opcode = 0x41
	OpSwapBuffers Opcode = 0x50
	OpViewport    Opcode = 0x60
)

// paramWords is the documented parameter-word count for each opcode this
// pipeline recognizes; an opcode not present here consumes zero parameter
// words and is otherwise ignored, matching real hardware's behaviour for
// unimplemented/reserved commands.
var paramWords = map[Opcode]int{
	OpMtxMode:     1,
	OpMtxPush:     0,
	OpMtxPop:      1,
	OpMtxIdentity: 0,
	OpMtxLoad4x4:  16,
	OpMtxMul4x4:   16,
	OpMtxScale:    3,
	OpMtxTrans:    3,
	OpColor:       1,
	OpTexCoord:    1,
	OpVtx16:       2,
	OpPolygonAttr: 1,
	OpBeginVtxs:   1,
	OpEndVtxs:     0,
	OpSwapBuffers: 1,
	OpViewport:    1,
}

// PrimitiveType selects how BEGIN_VTXS groups subsequent vertices: strip
// variants re-use the last two vertices submitted, and quad strips swap
// vertices 3 and 4 before submission so the quad winds consistently.
type PrimitiveType int

const (
	PrimTriangles PrimitiveType = iota
	PrimQuads
	PrimTriangleStrip
	PrimQuadStrip
)

// Color is a packed RGB555-like vertex/material color, carried through the
// pipeline as plain 8-bit channels for interpolation simplicity.
type Color struct{ R, G, B, A uint8 }

// Vertex is one submitted vertex after clip-matrix transformation: clip
// space position, vertex color, and texture coordinate.
type Vertex struct {
	Pos Vector4
	Col Color
	U, V Fixed
}

// PolygonMode selects the blending behaviour applied at rasterization
//.
type PolygonMode int

const (
	PolyModulation PolygonMode = iota
	PolyDecal
	PolyToon
	PolyShadow
)

// PolygonAttr is POLYGON_ATTR decoded: mode, alpha, depth-equal test flag,
// and which faces are rendered.
type PolygonAttr struct {
	Mode        PolygonMode
	Alpha       uint8 // 5-bit, 0..31
	DepthEqual  bool
	RenderFront bool
	RenderBack  bool
}

// Polygon is one assembled, clip-matrix-transformed primitive awaiting
// clipping and rasterization.
type Polygon struct {
	Vertices []Vertex
	Attr     PolygonAttr
	Tex      TextureParam
}

// Engine is the geometry pipeline: command decode, matrix stacks, vertex
// latch and primitive assembly, and the accumulating polygon lists for
// the frame currently being built and the frame last swapped in for
// rasterization.
type Engine struct {
	matrices *matrixState

	viewportW, viewportH int
	viewportX1, viewportY1 int

	latched     Vector4 // last VTX-command position, pre-transform
	currentColor Color
	currentU, currentV Fixed

	texParam TextureParam
	polyAttr PolygonAttr

	primitive PrimitiveType
	pending   []Vertex // vertices accumulated for the current primitive
	building  []Polygon

	frontBuffer []Polygon // last swapped-in frame, read by the rasterizer
	swapped     bool

	fifo []uint32
}

func NewEngine() *Engine {
	return &Engine{
		matrices:  newMatrixState(),
		viewportW: 256, viewportH: 192,
	}
}

// clipMatrix composes projection x position. It is recomputed on every
// vertex submission; no cached copy is kept or refreshed only when a
// contributing matrix changes, trading a redundant multiply for simpler,
// obviously-correct code.
func (e *Engine) clipMatrix() Matrix4 {
	return e.matrices.projection.current().Mul(e.matrices.position.current())
}

// Push writes one 32-bit FIFO word, decoding it as up to four packed
// command bytes and consuming the documented parameter words for each
// from subsequent calls.
//
// The caller is expected to push exactly paramWords[op] additional words
// per opcode before the next opcode word; this matches how the real FIFO
// port is driven (command byte then its parameters, back to back).
func (e *Engine) Push(word uint32) {
	e.fifo = append(e.fifo, word)
	e.drain()
}

func (e *Engine) drain() {
	for len(e.fifo) > 0 {
		word := e.fifo[0]
		opcodes := [4]Opcode{
			Opcode(word), Opcode(word >> 8), Opcode(word >> 16), Opcode(word >> 24),
		}
		need := 1
		for _, op := range opcodes {
			need += paramWords[op]
		}
		if len(e.fifo) < need {
			return // wait for more parameter words to arrive
		}
		params := e.fifo[1:need]
		e.fifo = e.fifo[need:]

		off := 0
		for _, op := range opcodes {
			n := paramWords[op]
			e.execute(op, params[off:off+n])
			off += n
		}
	}
}

func (e *Engine) execute(op Opcode, params []uint32) {
	switch op {
	case OpMtxMode:
		e.matrices.mode = MatrixMode(params[0] & 0x3)
	case OpMtxPush:
		e.matrices.push()
	case OpMtxPop:
		e.matrices.pop(int(int8(params[0] & 0x3F)))
	case OpMtxIdentity:
		e.matrices.load(Identity())
	case OpMtxLoad4x4:
		e.matrices.load(matrixFromParams(params))
	case OpMtxMul4x4:
		e.matrices.multiply(matrixFromParams(params))
	case OpMtxScale:
		m := Identity()
		m[0][0], m[1][1], m[2][2] = Fixed(int32(params[0])), Fixed(int32(params[1])), Fixed(int32(params[2]))
		e.matrices.multiply(m)
	case OpMtxTrans:
		m := Identity()
		m[0][3], m[1][3], m[2][3] = Fixed(int32(params[0])), Fixed(int32(params[1])), Fixed(int32(params[2]))
		e.matrices.multiply(m)
	case OpColor:
		e.currentColor = colorFromRGB555(uint16(params[0]))
	case OpTexCoord:
		e.currentU = Fixed(int16(params[0]))
		e.currentV = Fixed(int16(params[0] >> 16))
	case OpVtx16:
		x := Fixed(int16(params[0]))
		y := Fixed(int16(params[0] >> 16))
		z := Fixed(int16(params[1]))
		e.submitVertex(x, y, z)
	case OpPolygonAttr:
		e.polyAttr = decodePolygonAttr(params[0])
	case OpBeginVtxs:
		e.primitive = PrimitiveType(params[0] & 0x3)
		e.pending = nil
	case OpEndVtxs:
		e.pending = nil
	case OpSwapBuffers:
		e.frontBuffer = e.building
		e.building = nil
		e.swapped = true
	case OpViewport:
		e.viewportX1 = int(params[0] & 0xFF)
		e.viewportY1 = int((params[0] >> 8) & 0xFF)
		x2 := int((params[0] >> 16) & 0xFF)
		y2 := int((params[0] >> 24) & 0xFF)
		e.viewportW = x2 - e.viewportX1 + 1
		e.viewportH = y2 - e.viewportY1 + 1
	}
}

func matrixFromParams(params []uint32) Matrix4 {
	var m Matrix4
	i := 0
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[c][r] = Fixed(int32(params[i])) // stored column-major on the wire
			i++
		}
	}
	return m
}

func colorFromRGB555(v uint16) Color {
	expand := func(c uint16) uint8 { return uint8(c * 255 / 31) }
	return Color{R: expand(v & 0x1F), G: expand((v >> 5) & 0x1F), B: expand((v >> 10) & 0x1F), A: 255}
}

func decodePolygonAttr(v uint32) PolygonAttr {
	return PolygonAttr{
		RenderFront: v&(1<<7) != 0,
		RenderBack:  v&(1<<6) != 0,
		Alpha:       uint8((v >> 16) & 0x1F),
		Mode:        PolygonMode((v >> 4) & 0x3),
		DepthEqual:  v&(1<<11) != 0,
	}
}

// submitVertex implements the vertex and primitive-assembly rules: the
// latched position is transformed by the clip matrix, appended to the
// current primitive's pending vertex list, and a full primitive is handed
// to clipping+projection once enough vertices have accumulated.
func (e *Engine) submitVertex(x, y, z Fixed) {
	e.latched = Vector4{X: x, Y: y, Z: z, W: FixedFromInt(1)}
	clip := e.clipMatrix().Transform(e.latched)
	v := Vertex{Pos: clip, Col: e.currentColor, U: e.currentU, V: e.currentV}

	switch e.primitive {
	case PrimTriangles:
		e.pending = append(e.pending, v)
		if len(e.pending) == 3 {
			e.finishPrimitive(e.pending)
			e.pending = nil
		}
	case PrimQuads:
		e.pending = append(e.pending, v)
		if len(e.pending) == 4 {
			e.finishPrimitive(e.pending)
			e.pending = nil
		}
	case PrimTriangleStrip:
		e.pending = append(e.pending, v)
		if len(e.pending) == 3 {
			e.finishPrimitive(e.pending)
			e.pending = append([]Vertex{}, e.pending[1:]...) // re-use last two
		}
	case PrimQuadStrip:
		e.pending = append(e.pending, v)
		if len(e.pending) == 4 {
			ordered := []Vertex{e.pending[0], e.pending[1], e.pending[3], e.pending[2]} // swap 3/4
			e.finishPrimitive(ordered)
			e.pending = append([]Vertex{}, e.pending[2:]...)
		}
	}
}

func (e *Engine) finishPrimitive(vertices []Vertex) {
	verts := append([]Vertex(nil), vertices...)
	clipped := clipPolygon(verts)
	if len(clipped) == 0 {
		return
	}
	e.building = append(e.building, Polygon{
		Vertices: clipped,
		Attr:     e.polyAttr,
		Tex:      e.texParam,
	})
}

// Swapped reports whether a SwapBuffers command has produced a frame
// ready for the rasterizer, clearing the flag on read.
func (e *Engine) Swapped() bool {
	s := e.swapped
	e.swapped = false
	return s
}

// FrontBuffer returns the polygon list from the most recent SwapBuffers.
func (e *Engine) FrontBuffer() []Polygon { return e.frontBuffer }

func (e *Engine) Viewport() (x1, y1, w, h int) {
	return e.viewportX1, e.viewportY1, e.viewportW, e.viewportH
}

func (e *Engine) StickyError() bool { return e.matrices.stickyError() }
