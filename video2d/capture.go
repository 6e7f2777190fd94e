package video2d

import "github.com/retrobus/ndscore/vram"

// CaptureSource selects what a display-capture pass writes to VRAM:
// engine A only, compositing source A/B into a writable VRAM bank.
type CaptureSource int

const (
	CaptureSourceA CaptureSource = iota
	CaptureSourceB
	CaptureSourceBlend
)

// CaptureUnit is engine A's display-capture configuration. It has no
// counterpart on engine B.
type CaptureUnit struct {
	Enabled  bool
	Source   CaptureSource
	DestRole vram.Role
	Width    int
	Height   int
	EVA, EVB uint8
}

// CaptureLine writes one scanline's worth of captured pixels, converting
// RGB24 back to RGB15 with the alpha bit set.
func (c *CaptureUnit) CaptureLine(y int, vr *vram.VRAM, engineA, engineB [ScreenWidth]RGB24) {
	if !c.Enabled || y >= c.Height {
		return
	}
	for x := 0; x < c.Width && x < ScreenWidth; x++ {
		var color RGB24
		switch c.Source {
		case CaptureSourceB:
			color = engineB[x]
		case CaptureSourceBlend:
			color = alphaBlend(engineA[x], engineB[x], cap16(c.EVA), cap16(c.EVB))
		default:
			color = engineA[x]
		}
		pixel := RGB24ToRGB15(color) | 0x8000
		offset := uint32((y*c.Width + x) * 2)
		vr.WriteRole(c.DestRole, offset, byte(pixel))
		vr.WriteRole(c.DestRole, offset+1, byte(pixel>>8))
	}
}
