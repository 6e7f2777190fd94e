package cpu

import "testing"

func TestBarrelShiftLSLImmediate(t *testing.T) {
	r, c := barrelShift(0x1, shiftLSL, 31, true, false)
	if r != 0x80000000 || c {
		t.Fatalf("LSL#31 of 1: got %#x carry=%v", r, c)
	}
}

func TestBarrelShiftLSRImmediateZeroMeansThirtyTwo(t *testing.T) {
	r, c := barrelShift(0x80000000, shiftLSR, 0, true, false)
	if r != 0 || !c {
		t.Fatalf("LSR#0 (=#32) of 0x80000000: got %#x carry=%v", r, c)
	}
}

func TestBarrelShiftASRSignExtends(t *testing.T) {
	r, _ := barrelShift(0x80000000, shiftASR, 31, true, false)
	if r != 0xFFFFFFFF {
		t.Fatalf("ASR#31 of negative: got %#x", r)
	}
}

func TestBarrelShiftRORImmediateZeroIsRRX(t *testing.T) {
	r, c := barrelShift(0x1, shiftROR, 0, true, true)
	if r != 0x80000000 || !c {
		t.Fatalf("RRX of 1 with carry-in set: got %#x carry=%v", r, c)
	}
}

func TestBarrelShiftRegisterAmountZeroIsNoop(t *testing.T) {
	r, c := barrelShift(0x1234, shiftLSL, 0, false, true)
	if r != 0x1234 || !c {
		t.Fatalf("register-specified shift of 0 must be a pure no-op including carry")
	}
}
