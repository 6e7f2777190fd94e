package memory

// MathUnit models the hardware division and square-root coprocessors: two
// memory-mapped fixed-function units the application core uses instead of
// software division. Real hardware takes several
// cycles to latch a result; this model completes instantly and simply
// tracks a "busy until cycle" timestamp for software that polls the busy
// flag expecting it to eventually clear, since guest code that doesn't
// poll at all still needs a correct final answer.
type MathUnit struct {
	divNumer  int64
	divDenom  int64
	divResult int64
	divRemain int64
	divMode   uint32

	sqrtInput  uint64
	sqrtResult uint32
	sqrtMode   uint32

	busyUntil uint64
}

const (
	DivMode32_32 = 0
	DivMode64_32 = 1
	DivMode64_64 = 2
)

// SetDivNumerator/SetDivDenominator latch new operands and recompute,
// mirroring the real unit's "write either operand register, result updates"
// behaviour.
func (m *MathUnit) SetDivMode(mode uint32, now uint64) {
	m.divMode = mode & 0x3
	m.recomputeDiv(now)
}

func (m *MathUnit) SetDivNumerator(v int64, now uint64) {
	m.divNumer = v
	m.recomputeDiv(now)
}

func (m *MathUnit) SetDivDenominator(v int64, now uint64) {
	m.divDenom = v
	m.recomputeDiv(now)
}

func (m *MathUnit) recomputeDiv(now uint64) {
	if m.divDenom == 0 {
		// division by zero: hardware returns +-1 saturated and the full
		// numerator as remainder, a well-documented quirk guest software
		// sometimes relies on for overflow detection.
		if m.divNumer < 0 {
			m.divResult = 1
		} else {
			m.divResult = -1
		}
		m.divRemain = m.divNumer
	} else {
		m.divResult = m.divNumer / m.divDenom
		m.divRemain = m.divNumer % m.divDenom
	}
	m.busyUntil = now + 18
}

func (m *MathUnit) DivResult() int64  { return m.divResult }
func (m *MathUnit) DivRemainder() int64 { return m.divRemain }

// SetSqrtMode/SetSqrtInput mirror the division unit's latch-and-recompute
// behaviour for the integer square root unit.
func (m *MathUnit) SetSqrtMode(mode uint32, now uint64) {
	m.sqrtMode = mode & 0x1
	m.recomputeSqrt(now)
}

func (m *MathUnit) SetSqrtInput(v uint64, now uint64) {
	m.sqrtInput = v
	m.recomputeSqrt(now)
}

func (m *MathUnit) recomputeSqrt(now uint64) {
	m.sqrtResult = isqrt(m.sqrtInput)
	m.busyUntil = now + 13
}

func (m *MathUnit) SqrtResult() uint32 { return m.sqrtResult }

// Busy reports whether either unit's latched result is still "in flight"
// at the given cycle, for the DIVCNT/SQRTCNT busy-flag bit.
func (m *MathUnit) Busy(now uint64) bool {
	return now < m.busyUntil
}

// MathUnitState is a save-state snapshot of MathUnit's latched operands and
// results.
type MathUnitState struct {
	DivNumer, DivDenom, DivResult, DivRemain int64
	DivMode                                  uint32
	SqrtInput                                uint64
	SqrtResult                               uint32
	SqrtMode                                 uint32
	BusyUntil                                uint64
}

// Snapshot captures the unit's full latched state.
func (m *MathUnit) Snapshot() MathUnitState {
	return MathUnitState{
		DivNumer: m.divNumer, DivDenom: m.divDenom, DivResult: m.divResult, DivRemain: m.divRemain,
		DivMode:    m.divMode,
		SqrtInput:  m.sqrtInput,
		SqrtResult: m.sqrtResult,
		SqrtMode:   m.sqrtMode,
		BusyUntil:  m.busyUntil,
	}
}

// Restore replaces the unit's state wholesale, as captured by a prior
// Snapshot. Results are restored directly rather than recomputed, since a
// restored busyUntil in the past must not re-trigger a recompute.
func (m *MathUnit) Restore(s MathUnitState) {
	m.divNumer, m.divDenom, m.divResult, m.divRemain = s.DivNumer, s.DivDenom, s.DivResult, s.DivRemain
	m.divMode = s.DivMode
	m.sqrtInput, m.sqrtResult, m.sqrtMode = s.SqrtInput, s.SqrtResult, s.SqrtMode
	m.busyUntil = s.BusyUntil
}

func isqrt(v uint64) uint32 {
	if v == 0 {
		return 0
	}
	var x uint64 = v
	var res uint64
	bit := uint64(1) << 62
	for bit > x {
		bit >>= 2
	}
	for bit != 0 {
		if x >= res+bit {
			x -= res + bit
			res = res/2 + bit
		} else {
			res /= 2
		}
		bit >>= 2
	}
	return uint32(res)
}
