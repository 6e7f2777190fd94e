package memory

import "testing"

func TestDivisionBasic(t *testing.T) {
	var m MathUnit
	m.SetDivDenominator(3, 0)
	m.SetDivNumerator(10, 0)
	if m.DivResult() != 3 || m.DivRemainder() != 1 {
		t.Fatalf("10/3: got q=%d r=%d", m.DivResult(), m.DivRemainder())
	}
}

func TestDivisionByZeroSaturates(t *testing.T) {
	var m MathUnit
	m.SetDivDenominator(0, 0)
	m.SetDivNumerator(42, 0)
	if m.DivResult() != -1 {
		t.Fatalf("expected -1 for positive/0, got %d", m.DivResult())
	}
	if m.DivRemainder() != 42 {
		t.Fatalf("expected remainder == numerator, got %d", m.DivRemainder())
	}
}

func TestSquareRoot(t *testing.T) {
	var m MathUnit
	m.SetSqrtInput(144, 0)
	if m.SqrtResult() != 12 {
		t.Fatalf("sqrt(144): got %d", m.SqrtResult())
	}
	m.SetSqrtInput(0, 0)
	if m.SqrtResult() != 0 {
		t.Fatalf("sqrt(0): got %d", m.SqrtResult())
	}
}

func TestBusyClearsAfterLatency(t *testing.T) {
	var m MathUnit
	m.SetDivDenominator(2, 100)
	m.SetDivNumerator(4, 100)
	if !m.Busy(105) {
		t.Fatalf("expected busy shortly after latch")
	}
	if m.Busy(200) {
		t.Fatalf("expected not busy well after latch")
	}
}
