// Package cpu implements the ARM7TDMI (ARMv4T, the DS's I/O core) and
// ARM946E-S (ARMv5TE, the DS's application core) interpreters. Both share
// this package: the instruction set is the same base architecture with the
// v5 core adding a handful of extra instructions (CLZ, LDRD/STRD, BLX) and a
// CP15 system-control coprocessor for its TCMs and cache control.
//
// The decode strategy uses a dispatch table built once from a classify
// function, rather than a hand-written chain of if/else, and
// instruction-group handlers named execXxx.
package cpu

import (
	"github.com/retrobus/ndscore/cpu/registers"
)

// Arch distinguishes the two cores where their behaviour genuinely differs:
// unaligned word loads (rotate on v4, true misaligned access on v5), CP15
// presence, and the extra v5 instructions.
type Arch int

const (
	ARMv4 Arch = iota
	ARMv5
)

// pipelineSlot is one stage of the two-slot fetch/decode pipeline. Its
// fields are exported so a save-state snapshot of Core can be encoded by a
// package outside cpu; nothing outside Core itself constructs one.
type pipelineSlot struct {
	Opcode uint32
	Addr   uint32
}

// Core is one ARM processor: its register file, current instruction-fetch
// pipeline, and cycle counter. It holds no memory itself; all access goes
// through Bus.
type Core struct {
	Arch Arch
	Bus  Bus

	R    [16]uint32
	CPSR registers.PSR
	bank registers.Banks

	decode    pipelineSlot
	fetch     pipelineSlot
	haveBoth  bool // false immediately after Flush, until the second fetch lands
	nextAccess AccessKind

	cycles uint64
	Halted bool

	cp15 *cp15 // nil on ARMv4; the I/O core has no system-control coprocessor
}

// NewCore returns a Core in the reset state: Supervisor mode, IRQ/FIQ
// masked, ARM (not Thumb) state, pipeline flushed to pc.
func NewCore(arch Arch, bus Bus, pc uint32) *Core {
	c := &Core{
		Arch: arch,
		Bus:  bus,
		CPSR: registers.NewPSR(),
	}
	if arch == ARMv5 {
		c.cp15 = newCP15()
	}
	c.R[15] = pc
	c.Flush(pc)
	return c
}

// instrSize returns 4 in ARM state, 2 in Thumb state.
func (c *Core) instrSize() uint32 {
	if c.CPSR.T {
		return 2
	}
	return 4
}

// Flush discards the pipeline and restarts fetching at addr: the effect of
// any instruction that changes the PC (branch, mode-changing data
// processing into R15, exception entry). The next two fetches are
// (non-sequential, sequential), matching the real pipeline's two-stage
// refill after any change of flow.
func (c *Core) Flush(addr uint32) {
	c.fetch.Addr = addr
	c.haveBoth = false
	c.nextAccess = NonSequential
}

// TCMProvider exposes the ARMv5 core's CP15 TCM windows to the memory bus,
// which needs to short-circuit ITCM/DTCM accesses ahead of the normal
// memory map.
type TCMProvider interface {
	TCMWindow(addr uint32, dataAccess bool) (base, size uint32, ok bool)
}

// CP15 returns the core's system-control coprocessor, or nil on an ARMv4
// core (which has none).
func (c *Core) CP15() TCMProvider {
	if c.cp15 == nil {
		return nil
	}
	return c.cp15
}

// Cycles returns the running cycle count.
func (c *Core) Cycles() uint64 { return c.cycles }

// AddCycles charges n cycles directly; used for stall cycles not tied to a
// bus access (e.g. a multiply's internal iteration cost).
func (c *Core) AddCycles(n uint64) { c.cycles += n }

// Rebase subtracts delta from the cycle counter, keeping it in step with a
// scheduler.Rebase() call.
func (c *Core) Rebase(delta uint64) {
	if delta > c.cycles {
		c.cycles = 0
		return
	}
	c.cycles -= delta
}

// pcRead returns the value R15 reads as to an executing instruction: the
// address of that instruction plus two instruction widths (8 in ARM state,
// 4 in Thumb state), the real architectural look-ahead.
func (c *Core) pcRead(executingAddr uint32) uint32 {
	return executingAddr + 2*c.instrSize()
}

func (c *Core) fetchOpcode(addr uint32) uint32 {
	size := c.instrSize()
	width := Word
	if size == 2 {
		width = Halfword
	}
	v := c.Bus.FetchCode(addr, width, c.nextAccess)
	c.nextAccess = Sequential
	return v
}

// Step executes exactly one instruction, unless the pipeline needed an
// extra refill cycle after a Flush, in which case it only advances the
// pipeline and returns without retiring an instruction. Callers loop on
// Step until the desired cycle budget is spent; Halted cores are the
// caller's responsibility to skip.
func (c *Core) Step() {
	opcode := c.fetchOpcode(c.fetch.Addr)
	fetchedAddr := c.fetch.Addr
	c.fetch.Addr += c.instrSize()

	if !c.haveBoth {
		c.decode = pipelineSlot{Opcode: opcode, Addr: fetchedAddr}
		c.haveBoth = true
		return
	}

	toExec := c.decode
	c.decode = pipelineSlot{Opcode: opcode, Addr: fetchedAddr}

	c.R[15] = c.pcRead(toExec.Addr)
	if c.CPSR.T {
		c.executeThumb(uint16(toExec.Opcode), toExec.Addr)
	} else {
		c.executeARM(toExec.Opcode, toExec.Addr)
	}
}

// SwitchMode changes CPSR.Mode, banking R13/R14 (and R8-R12 across FIQ) via
// Banks.SwitchMode. CPSR's other fields are untouched; callers that also
// need to change flags or T do so separately.
func (c *Core) SwitchMode(to registers.Mode) {
	from := c.CPSR.Mode
	c.bank.SwitchMode(&c.R, from, to)
	c.CPSR.Mode = to
}

// vector is the fixed entry address for each exception, both cores' BIOS
// placing the vector table at 0x00000000 (or, on the ARM9 with CP15 vector
// remap enabled, 0xFFFF0000).
type vector uint32

const (
	vectorReset       vector = 0x00
	vectorUndefined   vector = 0x04
	vectorSWI         vector = 0x08
	vectorPrefetchAbt vector = 0x0C
	vectorDataAbt     vector = 0x10
	vectorIRQ         vector = 0x18
	vectorFIQ         vector = 0x1C
)

func (c *Core) vectorBase() uint32 {
	if c.cp15 != nil && c.cp15.vectorsHigh {
		return 0xFFFF0000
	}
	return 0
}

// enterException performs the common part of taking any exception: bank to
// the target mode, save CPSR to the new SPSR, save the return address to
// R14, mask interrupts as the exception class requires, switch to ARM
// state, and flush the pipeline to the vector.
//
// returnAddr is the address the architecture defines as the link value for
// this exception class (already including the "+4" or "+8" adjustment the
// specific exception needs); callers compute it since the adjustment
// differs per exception and, for SWI/undefined, per instruction set.
func (c *Core) enterException(mode registers.Mode, returnAddr uint32, v vector, disableFIQ bool) {
	savedCPSR := c.CPSR
	c.SwitchMode(mode)
	*c.bank.SPSR(mode) = savedCPSR
	c.R[14] = returnAddr
	c.CPSR.I = true
	if disableFIQ {
		c.CPSR.F = true
	}
	c.CPSR.T = false
	target := c.vectorBase() + uint32(v)
	c.R[15] = c.pcRead(target)
	c.Flush(target)
}

// restoreCPSRFromSPSR loads CPSR from the current mode's banked SPSR,
// banking registers to match the restored mode. This is the architected
// effect of any data-processing instruction that targets R15 with the S bit
// set while in a privileged mode: the standard way a handler returns from
// an exception.
func (c *Core) restoreCPSRFromSPSR() {
	if !registers.HasSPSR(c.CPSR.Mode) {
		return
	}
	spsr := *c.bank.SPSR(c.CPSR.Mode)
	c.bank.SwitchMode(&c.R, c.CPSR.Mode, spsr.Mode)
	c.CPSR = spsr
}

// IRQ takes the IRQ exception if CPSR.I is clear and the bus is asserting an
// enabled interrupt. Called once per Step from the system loop, or folded
// into Step itself by callers that want it checked every instruction: IRQ
// is sampled once per instruction boundary.
func (c *Core) IRQ() {
	if c.CPSR.I || !c.Bus.IRQPending() {
		return
	}
	// the link value is the address of the next instruction to execute had
	// the IRQ not been taken, plus 4 (R14_irq = PC_of_next_instr + 4);
	// decode.Addr is that instruction's address already, since decode holds
	// what Step is about to execute next.
	c.Halted = false
	c.enterException(registers.ModeIRQ, c.decode.Addr+4, vectorIRQ, false)
}

// SoftwareInterrupt takes the SWI exception, called by the SWI/SWI-Thumb
// instruction handlers. The current CPSR.T selects the return-address
// adjustment (instruction size), which differs between ARM and Thumb.
func (c *Core) SoftwareInterrupt(instrAddr uint32) {
	size := c.instrSize()
	c.enterException(registers.ModeSVC, instrAddr+size, vectorSWI, false)
}

// UndefinedInstruction takes the Undefined Instruction exception for a
// decode-table gap the running program actually reached at runtime.
func (c *Core) UndefinedInstruction(instrAddr uint32) {
	size := c.instrSize()
	c.enterException(registers.ModeUND, instrAddr+size, vectorUndefined, false)
}

// CoreState is a save-state snapshot of everything Core holds that isn't
// reachable through Bus: registers, pipeline, banked state, and (on the
// ARMv5 core) CP15. The zero value's cp15 field is simply unused on an
// ARMv4 core, matching Core's own nil-cp15-means-no-coprocessor rule.
type CoreState struct {
	R          [16]uint32
	CPSR       registers.PSR
	Bank       registers.BanksState
	Decode     pipelineSlot
	Fetch      pipelineSlot
	HaveBoth   bool
	NextAccess AccessKind
	Cycles     uint64
	Halted     bool
	CP15       CP15State
}

// Snapshot captures the core's full architectural and pipeline state.
func (c *Core) Snapshot() CoreState {
	s := CoreState{
		R:          c.R,
		CPSR:       c.CPSR,
		Bank:       c.bank.Snapshot(),
		Decode:     c.decode,
		Fetch:      c.fetch,
		HaveBoth:   c.haveBoth,
		NextAccess: c.nextAccess,
		Cycles:     c.cycles,
		Halted:     c.Halted,
	}
	if c.cp15 != nil {
		s.CP15 = c.cp15.snapshot()
	}
	return s
}

// Restore replaces the core's state wholesale, as captured by a prior
// Snapshot. The caller is responsible for restoring Bus separately; Core
// has no access to it to save or replay.
func (c *Core) Restore(s CoreState) {
	c.R = s.R
	c.CPSR = s.CPSR
	c.bank.Restore(s.Bank)
	c.decode = s.Decode
	c.fetch = s.Fetch
	c.haveBoth = s.HaveBoth
	c.nextAccess = s.NextAccess
	c.cycles = s.Cycles
	c.Halted = s.Halted
	if c.cp15 != nil {
		c.cp15.restore(s.CP15)
	}
}
