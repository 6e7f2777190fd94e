package registers

// bankIndex maps a processor mode to its slot in the banked-register arrays.
// User and System modes share the same (unbanked) slot.
func bankIndex(m Mode) int {
	switch m {
	case ModeFIQ:
		return 1
	case ModeIRQ:
		return 2
	case ModeSVC:
		return 3
	case ModeABT:
		return 4
	case ModeUND:
		return 5
	default:
		return 0
	}
}

// Banks holds every register that is banked per mode: R13 (SP) and R14 (LR)
// for all six banks, SPSR for the five exception modes, and the FIQ-private
// shadow of R8-R12.
//
// SwitchMode is implemented as an in-place swap between the live register
// file and the target bank's slot, rather than an independent save/restore
// pair, because a swap is its own inverse: switching A->B then B->A restores
// exactly the bits that were live before, with no separate save bookkeeping
// to get wrong.
type Banks struct {
	r13, r14 [6]uint32
	spsr     [6]PSR
	fiqR8_12 [5]uint32
}

// SwitchMode exchanges R13/R14 (and R8-R12 when FIQ is entered or left)
// between regs and the bank slots for from and to. CPSR.Mode itself is not
// touched here; the caller updates cpsr.Mode separately once the swap is
// done.
func (b *Banks) SwitchMode(regs *[16]uint32, from, to Mode) {
	if from == to {
		return
	}
	fi, ti := bankIndex(from), bankIndex(to)

	// slot 0 (User/System) is the live file itself: leaving a banked mode
	// swaps its R13/R14 back out, entering one swaps them in.
	if fi != 0 {
		b.r13[fi], regs[13] = regs[13], b.r13[fi]
		b.r14[fi], regs[14] = regs[14], b.r14[fi]
	}
	if ti != 0 {
		b.r13[ti], regs[13] = regs[13], b.r13[ti]
		b.r14[ti], regs[14] = regs[14], b.r14[ti]
	}

	fromFIQ := from == ModeFIQ
	toFIQ := to == ModeFIQ
	if fromFIQ != toFIQ {
		for i := 0; i < 5; i++ {
			b.fiqR8_12[i], regs[8+i] = regs[8+i], b.fiqR8_12[i]
		}
	}
}

// SPSR returns a pointer to the SPSR shadow for the given mode. Reading or
// writing SPSR in User or System mode is architecturally undefined; callers
// must guard against that themselves (there is no banked SPSR to return).
func (b *Banks) SPSR(m Mode) *PSR {
	return &b.spsr[bankIndex(m)]
}

// HasSPSR reports whether m has a banked SPSR (every mode except User and
// System).
func HasSPSR(m Mode) bool {
	return m != ModeUser && m != ModeSYS
}

// BanksState is a save-state snapshot of every banked register Banks holds.
type BanksState struct {
	R13, R14 [6]uint32
	SPSR     [6]PSR
	FIQR8_12 [5]uint32
}

// Snapshot copies out every banked register.
func (b *Banks) Snapshot() BanksState {
	return BanksState{R13: b.r13, R14: b.r14, SPSR: b.spsr, FIQR8_12: b.fiqR8_12}
}

// Restore replaces every banked register wholesale.
func (b *Banks) Restore(s BanksState) {
	b.r13, b.r14, b.spsr, b.fiqR8_12 = s.R13, s.R14, s.SPSR, s.FIQR8_12
}
