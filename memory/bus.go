// Package memory implements the shared memory and I/O bus spanning both
// ARM cores: main RAM, shared/private WRAM with WRAMCNT partitioning, the
// BIOS ROMs, the math coprocessor registers, and a general address-range
// registry that the GPU, DMA, timer, IPC and cartridge packages plug their
// own register windows and VRAM/OAM/palette storage into.
//
// Modelled on cartridge-mapper bank-switching (address range dispatch
// redirecting to whichever bank is currently paged in), generalised
// from "one mapper picks one bank" to "a registry of owners each claim a
// range", since the DS bus has many more independent owners than a single
// cartridge mapper does.
package memory

import (
	"github.com/retrobus/ndscore/coreerr"
	"github.com/retrobus/ndscore/cpu"
	"github.com/retrobus/ndscore/logger"
	"github.com/retrobus/ndscore/random"
)

const (
	mainRAMSize    = 4 * 1024 * 1024
	sharedWRAMSize = 32 * 1024
	arm7WRAMSize   = 64 * 1024
)

// RegionHandler is implemented by any subsystem that owns a slice of
// address space: the GPU (VRAM/OAM/palette), DMA/timer/IPC/cartridge
// (their register windows), and the cartridge backup/ROM path.
type RegionHandler interface {
	ReadByte(addr uint32) (byte, bool)
	WriteByte(addr uint32, v byte) bool
}

type region struct {
	base, size uint32
	handler    RegionHandler
}

// Bus is the shared memory system both cores' cpu.Bus views delegate to.
type Bus struct {
	mainRAM    [mainRAMSize]byte
	sharedWRAM [sharedWRAMSize]byte
	arm7WRAM   [arm7WRAMSize]byte
	bios7      []byte
	bios9      []byte

	wramcnt uint8

	Math MathUnit

	regions []region

	scheduler     Scheduler
	arm7IRQPending func() bool
	arm9IRQPending func() bool

	exmemcnt uint16
}

// Scheduler is the subset of scheduler.Scheduler the bus needs, to drive
// cycle accounting without importing scheduler directly (avoids a import
// cycle: scheduler is a leaf package, memory depends on it only through
// this narrow interface so memory itself can stay a leaf too).
type Scheduler interface {
	Advance(n uint64)
}

// New returns a Bus with every RAM array primed to hardware-realistic
// power-on garbage rather than all-zero, via random.Random's fixed
// zero-seed default (no Source is wired in here: the scheduler hasn't
// started yet at construction, so there is no frame/scanline coordinate
// to seed from).
func New() *Bus {
	b := &Bus{}
	rng := random.NewRandom(nil)
	rng.Fill(b.mainRAM[:])
	rng.Fill(b.sharedWRAM[:])
	rng.Fill(b.arm7WRAM[:])
	return b
}

// LoadBIOS installs the fixed BIOS images used for vector fetches and
// BIOS-HLE fallback. Configuration errors (wrong size) are the caller's
// responsibility to check before calling Step; this just stores whatever
// it's given.
func (b *Bus) LoadBIOS7(data []byte) error {
	if len(data) != 16*1024 {
		return coreerr.Errorf(coreerr.Configuration, "arm7 bios must be 16 KiB, got %d bytes", len(data))
	}
	b.bios7 = data
	return nil
}

func (b *Bus) LoadBIOS9(data []byte) error {
	if len(data) != 4*1024 {
		return coreerr.Errorf(coreerr.Configuration, "arm9 bios must be 4 KiB, got %d bytes", len(data))
	}
	b.bios9 = data
	return nil
}

// SetScheduler wires the scheduler the bus advances on every access.
func (b *Bus) SetScheduler(s Scheduler) { b.scheduler = s }

// SetIRQSources wires the two cores' pending-interrupt predicates, each
// consulted by that core's Bus view.
func (b *Bus) SetIRQSources(arm7, arm9 func() bool) {
	b.arm7IRQPending = arm7
	b.arm9IRQPending = arm9
}

// RAMBytes returns a live slice of main RAM starting at addr, clamped to
// however much of length actually fits before the end of RAM. The APU's
// register window uses this to let a channel stream samples directly out
// of the same bytes the CPU writes, without a copy per sample (the source
// address register behaves like a live RAM pointer rather than a one-time
// snapshot).
func (b *Bus) RAMBytes(addr uint32, length int) []byte {
	start := int(addr % mainRAMSize)
	end := start + length
	if end > mainRAMSize {
		end = mainRAMSize
	}
	if end < start {
		return nil
	}
	return b.mainRAM[start:end]
}

// MainRAMBytes returns the entire main RAM array as a live slice, for
// save-state serialization; callers must not retain it past the snapshot.
func (b *Bus) MainRAMBytes() []byte { return b.mainRAM[:] }

// SharedWRAMBytes returns the entire ARM7/ARM9 shared WRAM array as a live
// slice, for save-state serialization.
func (b *Bus) SharedWRAMBytes() []byte { return b.sharedWRAM[:] }

// ARM7WRAMBytes returns the ARM7's private WRAM array as a live slice, for
// save-state serialization.
func (b *Bus) ARM7WRAMBytes() []byte { return b.arm7WRAM[:] }

// EXMEMCNT returns the external memory control register's current value,
// pairing SetEXMEMCNT for save-state round-tripping.
func (b *Bus) EXMEMCNT() uint16 { return b.exmemcnt }

// RegisterRegion claims [base, base+size) for handler. Later registrations
// covering the same address win on lookup, so a subsystem can be
// reconfigured (e.g. VRAM remapping) by re-registering.
func (b *Bus) RegisterRegion(base, size uint32, handler RegionHandler) {
	b.regions = append(b.regions, region{base: base, size: size, handler: handler})
}

func (b *Bus) findRegion(addr uint32) RegionHandler {
	for i := len(b.regions) - 1; i >= 0; i-- {
		r := b.regions[i]
		if addr >= r.base && addr < r.base+r.size {
			return r.handler
		}
	}
	return nil
}

// readByte9/writeByte9 and readByte7/writeByte7 implement each core's
// memory map. Addresses are those the core's own CPU issues (post-TCM
// short-circuit, which the ARM9 view checks before calling down here).
func (b *Bus) readByte9(addr uint32) byte {
	switch {
	case addr < 0x01000000:
		if b.bios9 != nil && int(addr) < len(b.bios9) {
			return b.bios9[addr]
		}
	case addr >= 0x02000000 && addr < 0x03000000:
		return b.mainRAM[addr%mainRAMSize]
	case addr >= 0x03000000 && addr < 0x04000000:
		if v, ok := b.readSharedWRAM9(addr); ok {
			return v
		}
		return 0
	case addr >= 0x04000000 && addr < 0x05000000:
		if h := b.findRegion(addr); h != nil {
			if v, ok := h.ReadByte(addr); ok {
				return v
			}
		}
		logger.Logf("mem9", "read from unmapped io register %#08x", addr)
		return 0
	default:
		if h := b.findRegion(addr); h != nil {
			if v, ok := h.ReadByte(addr); ok {
				return v
			}
		}
		logger.Logf("mem9", "read from unmapped address %#08x", addr)
	}
	return 0
}

func (b *Bus) writeByte9(addr uint32, v byte) {
	switch {
	case addr >= 0x02000000 && addr < 0x03000000:
		b.mainRAM[addr%mainRAMSize] = v
	case addr >= 0x03000000 && addr < 0x04000000:
		if !b.writeSharedWRAM9(addr, v) {
			logger.Logf("mem9", "write to empty shared wram slice %#08x", addr)
		}
	default:
		if h := b.findRegion(addr); h != nil {
			if h.WriteByte(addr, v) {
				return
			}
		}
		logger.Logf("mem9", "write to unmapped address %#08x = %#02x", addr, v)
	}
}

func (b *Bus) readByte7(addr uint32) byte {
	switch {
	case addr < 0x00004000:
		if b.bios7 != nil && int(addr) < len(b.bios7) {
			return b.bios7[addr]
		}
	case addr >= 0x02000000 && addr < 0x03000000:
		return b.mainRAM[addr%mainRAMSize]
	case addr >= 0x03000000 && addr < 0x03800000:
		return b.readSharedWRAM7(addr)
	case addr >= 0x03800000 && addr < 0x04000000:
		return b.arm7WRAM[addr%arm7WRAMSize]
	default:
		if h := b.findRegion(addr); h != nil {
			if v, ok := h.ReadByte(addr); ok {
				return v
			}
		}
		logger.Logf("mem7", "read from unmapped address %#08x", addr)
	}
	return 0
}

func (b *Bus) writeByte7(addr uint32, v byte) {
	switch {
	case addr >= 0x02000000 && addr < 0x03000000:
		b.mainRAM[addr%mainRAMSize] = v
	case addr >= 0x03000000 && addr < 0x03800000:
		b.writeSharedWRAM7(addr, v)
	case addr >= 0x03800000 && addr < 0x04000000:
		b.arm7WRAM[addr%arm7WRAMSize] = v
	default:
		if h := b.findRegion(addr); h != nil {
			if h.WriteByte(addr, v) {
				return
			}
		}
		logger.Logf("mem7", "write to unmapped address %#08x = %#02x", addr, v)
	}
}

var _ cpu.Bus = (*ARM7View)(nil)
var _ cpu.Bus = (*ARM9View)(nil)
