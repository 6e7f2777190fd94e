package video2d

import "github.com/retrobus/ndscore/vram"

import "testing"

func newTestEngine() *Engine {
	v := vram.New()
	v.SetMapping(vram.BankA, vram.Mapping{Role: vram.RoleEngineABG, Offset: 0, Enable: true})

	e := &Engine{
		IsEngineA: true,
		Mode:      BGMode0,
		VRAM:      v,
		BGRole:    vram.RoleEngineABG,
		OBJRole:   vram.RoleEngineAOBJ,
		Backdrop:  RGB24{R: 10, G: 10, B: 10},
		OAM:       make([]byte, 128*8),
	}
	e.BG[0] = BGControl{ScreenSize: 0}
	e.BGEnable[0] = true
	e.Windows = WindowSet{} // no active windows: masking skipped
	return e
}

func TestRenderScanlineFallsBackToBackdrop(t *testing.T) {
	e := newTestEngine()
	bank := e.VRAM.Raw(vram.BankA)
	for i := range bank {
		bank[i] = 0 // vram.New primes every bank with pseudo-random content
	}
	line := e.RenderScanline(0)
	if line[0] != e.Backdrop {
		t.Fatalf("expected backdrop color with no tile data, got %+v", line[0])
	}
}

func TestRenderScanlineSamplesTextTile(t *testing.T) {
	e := newTestEngine()

	// one map entry (tile 1, palette bank 0) at the top-left of the map.
	e.VRAM.WriteRole(vram.RoleEngineABG, 0, 1) // map base 0, entry 0 low byte: tile 1
	e.VRAM.WriteRole(vram.RoleEngineABG, 1, 0)

	// tile 1's first row, 4bpp: char base 0, tile size 32 bytes.
	charBase := uint32(32)
	e.VRAM.WriteRole(vram.RoleEngineABG, charBase, 0x21) // pixel0=1, pixel1=2

	e.PaletteBG[1] = RGB15(0x1F) // red
	e.PaletteBG[2] = RGB15(0x1F << 5) // green

	line := e.RenderScanline(0)
	if line[0] == e.Backdrop {
		t.Fatalf("expected tile pixel to override backdrop at x=0")
	}
}

func TestCompositePixelAppliesAlphaBlend(t *testing.T) {
	candidates := []pixelCandidate{
		{layer: LayerBG0, priority: 0, color: RGB24{R: 255}, opaque: true},
		{layer: LayerBG1, priority: 1, color: RGB24{B: 255}, opaque: true},
	}
	blend := BlendControl{Mode: BlendAlpha, EVA: 8, EVB: 8}
	blend.Top[LayerBG0] = true
	blend.Bottom[LayerBG1] = true

	out := compositePixel(0, 0, candidates, WindowSet{}, false, blend)
	if out.R == 255 || out.B == 255 {
		t.Fatalf("expected blended output, got %+v", out)
	}
	if out.R == 0 || out.B == 0 {
		t.Fatalf("expected both channels present after blend, got %+v", out)
	}
}

func TestWindowMaskingExcludesDisabledLayer(t *testing.T) {
	candidates := []pixelCandidate{
		{layer: LayerBG0, priority: 0, color: RGB24{R: 255}, opaque: true},
		{layer: LayerBackdrop, priority: 4, color: RGB24{G: 255}, opaque: true},
	}
	win := WindowSet{
		AnyActive: true,
		W0: Window{Enabled: true, X0: 0, X1: ScreenWidth, Y0: 0, Y1: ScreenHeight, EffectEnable: true},
	}
	win.W0.LayerEnable[LayerBackdrop] = true // BG0 left disabled in the window

	out := compositePixel(0, 0, candidates, win, false, BlendControl{})
	if out != (RGB24{G: 255}) {
		t.Fatalf("expected window to mask BG0 and fall through to backdrop, got %+v", out)
	}
}

func TestMasterBrightnessDarkensTowardBlack(t *testing.T) {
	m := MasterBrightness{Mode: BlendDarken, Factor: 16}
	out := m.Apply(RGB24{R: 255, G: 255, B: 255})
	if out != (RGB24{}) {
		t.Fatalf("expected full darken to reach black, got %+v", out)
	}
}
