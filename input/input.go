// Package input tracks the guest-visible button, touch, and hinge state:
// KEYINPUT/EXTKEYINPUT's button bits, the touchscreen's latched
// coordinates, and the clamshell hinge sensor, in a small, explicit-method
// accessor idiom with one bit-per-control field rather than a bitmask the
// caller has to shift and mask by hand.
package input

// Key bitmask bits, KEYINPUT layout (active-low on real hardware; this
// State stores active-high booleans via the bitmask accessor for a
// friendlier Go API and lets the caller invert when writing the register).
const (
	KeyA = 1 << iota
	KeyB
	KeySelect
	KeyStart
	KeyRight
	KeyLeft
	KeyUp
	KeyDown
	KeyR
	KeyL
)

// Extkey bitmask bits, EXTKEYIN layout. Unlike the button bits, PenDown and
// HingeClosed are tracked directly in this polarity (set = pen down / hinge
// closed) rather than inverted, since ExtKeyInput below returns the field
// as-is instead of complementing it.
const (
	ExtKeyX = 1 << iota
	ExtKeyY
	ExtKeyDebug
	_
	ExtKeyPenDown
	ExtKeyHingeClosed
)

// State holds the emulator's current input snapshot, read by the bus's
// KEYINPUT/EXTKEYIN registers and the touchscreen controller.
type State struct {
	keys    uint16
	extkeys uint16

	touchX, touchY uint16
	touching       bool
}

func New() *State {
	return &State{extkeys: ExtKeyHingeClosed}
}

// SetKeyInput replaces the face/d-pad/shoulder button bitmask.
func (s *State) SetKeyInput(mask uint16) { s.keys = mask & 0x3FF }

// SetExtKeyInput replaces the X/Y/debug button bitmask (pen-down and
// hinge-closed bits are managed separately by Touch/ReleaseTouch/HingeOpen).
func (s *State) SetExtKeyInput(mask uint16) {
	s.extkeys = (s.extkeys & (ExtKeyPenDown | ExtKeyHingeClosed)) | (mask &^ (ExtKeyPenDown | ExtKeyHingeClosed))
}

// Touch registers a touchscreen press at 12-bit ADC coordinates.
func (s *State) Touch(x, y uint16) {
	s.touchX, s.touchY = x, y
	s.touching = true
	s.extkeys |= ExtKeyPenDown
}

// ReleaseTouch registers the stylus lifting off the screen.
func (s *State) ReleaseTouch() {
	s.touching = false
	s.extkeys &^= ExtKeyPenDown
}

// HingeOpen sets whether the console's hinge is open.
func (s *State) HingeOpen(open bool) {
	if open {
		s.extkeys &^= ExtKeyHingeClosed
	} else {
		s.extkeys |= ExtKeyHingeClosed
	}
}

// KeyInput returns the active-low KEYINPUT register value.
func (s *State) KeyInput() uint16 { return ^s.keys & 0x3FF }

// ExtKeyInput returns the EXTKEYIN register value.
func (s *State) ExtKeyInput() uint16 { return s.extkeys & 0x7F }

// Touching reports whether the stylus is currently down and its position,
// for the cartridge SPI touchscreen device to sample.
func (s *State) Touching() (x, y uint16, down bool) {
	return s.touchX, s.touchY, s.touching
}
