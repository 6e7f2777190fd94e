package video2d

// BlendMode selects BLDCNT's special-effect: none, alpha blend between two
// selected layers, or brighten/darken one selected layer toward white/black
//.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendBrighten
	BlendDarken
)

// LayerID names the six blend-target slots BLDCNT selects among: BG0-3,
// OBJ, and the backdrop (palette index 0).
type LayerID int

const (
	LayerBG0 LayerID = iota
	LayerBG1
	LayerBG2
	LayerBG3
	LayerOBJ
	LayerBackdrop
	layerCount
)

// BlendControl is BLDCNT/BLDALPHA/BLDY decoded.
type BlendControl struct {
	Mode              BlendMode
	Top, Bottom       [layerCount]bool
	EVA, EVB, EVY     uint8 // 5-bit hardware fields; EVA/EVB capped at 16
}

func cap16(v uint8) uint8 {
	if v > 16 {
		return 16
	}
	return v
}

// Window describes one of W0/W1's rectangle plus its per-layer enable
// mask, or the always-covering "outside" pseudo-window / object-window.
type Window struct {
	Enabled              bool
	X0, X1, Y0, Y1       int
	LayerEnable          [layerCount]bool
	EffectEnable         bool
}

func (w Window) contains(x, y int) bool {
	inX := x >= w.X0 && x < w.X1
	if w.X1 < w.X0 { // hardware wraps when X1 < X0
		inX = x >= w.X0 || x < w.X1
	}
	inY := y >= w.Y0 && y < w.Y1
	if w.Y1 < w.Y0 {
		inY = y >= w.Y0 || y < w.Y1
	}
	return inX && inY
}

// pixelCandidate is one layer's contribution at a single screen column,
// before window masking and blending are applied.
type pixelCandidate struct {
	layer    LayerID
	priority int
	color    RGB24
	opaque   bool
}

// WindowSet bundles the rectangular windows (priority order W0 then W1),
// the object-window's per-pixel hit test result for this column, and the
// always-present "outside" fallback window, in priority order
// W0 > W1 > object-window > outside.
type WindowSet struct {
	W0, W1    Window
	ObjWindow Window
	Outside   Window
	AnyActive bool // true if any of W0/W1/ObjWindow is enabled; when false, masking is skipped entirely
}

func (ws WindowSet) resolve(x, y int, objWindowHit bool) Window {
	if ws.W0.Enabled && ws.W0.contains(x, y) {
		return ws.W0
	}
	if ws.W1.Enabled && ws.W1.contains(x, y) {
		return ws.W1
	}
	if ws.ObjWindow.Enabled && objWindowHit {
		return ws.ObjWindow
	}
	return ws.Outside
}

// compositePixel resolves one column's final color: window masking
// selects which layers may contribute, the two highest-priority
// opaque layers among those are found, and BLDCNT's mode blends them (or
// passes the top one through unmodified).
func compositePixel(x, y int, candidates []pixelCandidate, windows WindowSet, objWindowHit bool, blend BlendControl) RGB24 {
	var mask *Window
	if windows.AnyActive {
		w := windows.resolve(x, y, objWindowHit)
		mask = &w
	}

	var top, bottom *pixelCandidate
	for i := range candidates {
		c := &candidates[i]
		if !c.opaque {
			continue
		}
		if mask != nil && !mask.LayerEnable[c.layer] {
			continue
		}
		if top == nil || c.priority < top.priority {
			bottom = top
			top = c
		} else if bottom == nil || c.priority < bottom.priority {
			bottom = c
		}
	}

	if top == nil {
		return RGB24{}
	}
	if mask != nil && !mask.EffectEnable {
		return top.color
	}

	switch blend.Mode {
	case BlendAlpha:
		if bottom != nil && blend.Top[top.layer] && blend.Bottom[bottom.layer] {
			return alphaBlend(top.color, bottom.color, cap16(blend.EVA), cap16(blend.EVB))
		}
	case BlendBrighten:
		if blend.Top[top.layer] {
			return brighten(top.color, blend.EVY)
		}
	case BlendDarken:
		if blend.Top[top.layer] {
			return darken(top.color, blend.EVY)
		}
	}
	return top.color
}

func blendChannel(a, b uint8, eva, evb uint8) uint8 {
	v := (int(a)*int(eva) + int(b)*int(evb)) / 16
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func alphaBlend(top, bottom RGB24, eva, evb uint8) RGB24 {
	return RGB24{
		R: blendChannel(top.R, bottom.R, eva, evb),
		G: blendChannel(top.G, bottom.G, eva, evb),
		B: blendChannel(top.B, bottom.B, eva, evb),
	}
}

func brightenChannel(v, evy uint8) uint8 {
	delta := (int(255-v) * int(evy)) / 16
	r := int(v) + delta
	if r > 255 {
		r = 255
	}
	return uint8(r)
}

func brighten(c RGB24, evy uint8) RGB24 {
	return RGB24{R: brightenChannel(c.R, evy), G: brightenChannel(c.G, evy), B: brightenChannel(c.B, evy)}
}

func darkenChannel(v, evy uint8) uint8 {
	delta := (int(v) * int(evy)) / 16
	r := int(v) - delta
	if r < 0 {
		r = 0
	}
	return uint8(r)
}

func darken(c RGB24, evy uint8) RGB24 {
	return RGB24{R: darkenChannel(c.R, evy), G: darkenChannel(c.G, evy), B: darkenChannel(c.B, evy)}
}

// MasterBrightness is the final whole-screen brighten/darken pass applied
// after compositing.
type MasterBrightness struct {
	Mode   BlendMode // only None, Brighten, Darken are meaningful here
	Factor uint8      // 5-bit factor, 0..16 after capping
}

func (m MasterBrightness) Apply(c RGB24) RGB24 {
	factor := m.Factor
	if factor > 16 {
		factor = 16
	}
	switch m.Mode {
	case BlendBrighten:
		return brighten(c, factor)
	case BlendDarken:
		return darken(c, factor)
	default:
		return c
	}
}
