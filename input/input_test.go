package input_test

import (
	"testing"

	"github.com/retrobus/ndscore/input"
)

func TestKeyInputIsActiveLow(t *testing.T) {
	s := input.New()
	s.SetKeyInput(input.KeyA | input.KeyUp)
	got := s.KeyInput()
	if got&input.KeyA != 0 || got&input.KeyUp != 0 {
		t.Fatalf("expected pressed bits to read low, got %#x", got)
	}
	if got&input.KeyB == 0 {
		t.Fatalf("expected unpressed bits to read high, got %#x", got)
	}
}

func TestTouchSetsPenDownAndPosition(t *testing.T) {
	s := input.New()
	s.Touch(0x123, 0x456)
	x, y, down := s.Touching()
	if !down || x != 0x123 || y != 0x456 {
		t.Fatalf("got x=%#x y=%#x down=%v", x, y, down)
	}
	if s.ExtKeyInput()&input.ExtKeyPenDown == 0 {
		t.Fatalf("expected pen-down bit set while touching")
	}
}

func TestReleaseTouchSetsPenUp(t *testing.T) {
	s := input.New()
	s.Touch(1, 1)
	s.ReleaseTouch()
	_, _, down := s.Touching()
	if down {
		t.Fatalf("expected touching to be false after release")
	}
	if s.ExtKeyInput()&input.ExtKeyPenDown != 0 {
		t.Fatalf("expected pen-down bit clear after release")
	}
}

func TestHingeOpenClearsClosedBit(t *testing.T) {
	s := input.New()
	if s.ExtKeyInput()&input.ExtKeyHingeClosed == 0 {
		t.Fatalf("expected hinge to start closed")
	}
	s.HingeOpen(true)
	if s.ExtKeyInput()&input.ExtKeyHingeClosed != 0 {
		t.Fatalf("expected hinge-closed bit clear once opened")
	}
}
