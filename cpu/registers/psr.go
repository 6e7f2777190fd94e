// Package registers implements the ARM program status registers (CPSR and
// the per-mode SPSR banks) and the banked general-purpose register file
// shared by the ARMv4 and ARMv5 cores.
//
// The flag-struct-with-Load/Value shape keeps each flag as a plain bool,
// packed to and from the architected 32-bit word only at the boundary.
package registers

import "strings"

// Mode is the 5-bit CPSR mode field.
type Mode uint32

const (
	ModeUser Mode = 0x10
	ModeFIQ  Mode = 0x11
	ModeIRQ  Mode = 0x12
	ModeSVC  Mode = 0x13
	ModeABT  Mode = 0x17
	ModeUND  Mode = 0x1B
	ModeSYS  Mode = 0x1F
)

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "usr"
	case ModeFIQ:
		return "fiq"
	case ModeIRQ:
		return "irq"
	case ModeSVC:
		return "svc"
	case ModeABT:
		return "abt"
	case ModeUND:
		return "und"
	case ModeSYS:
		return "sys"
	default:
		return "???"
	}
}

// PSR is a program status register: the CPSR, or one of the per-mode SPSR
// shadows. N,Z,C,V are the condition flags; Q is the ARMv5 sticky-overflow
// flag set by QADD/QSUB/QDADD/QDSUB and by signed multiply saturation; I and
// F are the IRQ/FIQ disable bits; T is the Thumb-state bit.
type PSR struct {
	N, Z, C, V, Q bool
	I, F, T       bool
	Mode          Mode
}

// NewPSR returns a PSR in Supervisor mode with interrupts masked, the state
// the real hardware's CPSR is in immediately after reset.
func NewPSR() PSR {
	return PSR{I: true, F: true, Mode: ModeSVC}
}

// Value packs the flag struct into the architected 32-bit word.
func (p PSR) Value() uint32 {
	var v uint32
	if p.N {
		v |= 1 << 31
	}
	if p.Z {
		v |= 1 << 30
	}
	if p.C {
		v |= 1 << 29
	}
	if p.V {
		v |= 1 << 28
	}
	if p.Q {
		v |= 1 << 27
	}
	if p.I {
		v |= 1 << 7
	}
	if p.F {
		v |= 1 << 6
	}
	if p.T {
		v |= 1 << 5
	}
	v |= uint32(p.Mode) & 0x1f
	return v
}

// SetValue unpacks the architected 32-bit word into the flag struct,
// replacing it wholesale. Used by MSR to CPSR/SPSR and by exception entry
// restoring SPSR into CPSR on return.
func (p *PSR) SetValue(v uint32) {
	p.N = v&(1<<31) != 0
	p.Z = v&(1<<30) != 0
	p.C = v&(1<<29) != 0
	p.V = v&(1<<28) != 0
	p.Q = v&(1<<27) != 0
	p.I = v&(1<<7) != 0
	p.F = v&(1<<6) != 0
	p.T = v&(1<<5) != 0
	p.Mode = Mode(v & 0x1f)
}

// SetValueMasked replaces only the bits selected by mask, leaving the rest
// of the PSR untouched. Used by MSR's field-selection mechanism (flags-only
// vs flags-and-control).
func (p *PSR) SetValueMasked(v, mask uint32) {
	cur := p.Value()
	p.SetValue((cur &^ mask) | (v & mask))
}

// SetNZ sets the N and Z flags from the given result, the common case after
// a logical data-processing operation.
func (p *PSR) SetNZ(result uint32) {
	p.N = result&0x80000000 != 0
	p.Z = result == 0
}

func (p PSR) String() string {
	s := strings.Builder{}
	flag := func(set bool, upper, lower byte) {
		if set {
			s.WriteByte(upper)
		} else {
			s.WriteByte(lower)
		}
	}
	flag(p.N, 'N', 'n')
	flag(p.Z, 'Z', 'z')
	flag(p.C, 'C', 'c')
	flag(p.V, 'V', 'v')
	flag(p.Q, 'Q', 'q')
	s.WriteByte('-')
	flag(p.I, 'I', 'i')
	flag(p.F, 'F', 'f')
	flag(p.T, 'T', 't')
	s.WriteByte(' ')
	s.WriteString(p.Mode.String())
	return s.String()
}
