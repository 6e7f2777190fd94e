package memory

// wramLayout describes one core's current view into the 32 KiB shared WRAM
// block, as selected by WRAMCNT.
type wramLayout struct {
	offset uint32
	size   uint32
}

// wramShapes[WRAMCNT value] = {arm9 layout, arm7 layout}. An empty layout
// (size 0) means that core's shared-WRAM aperture instead mirrors its own
// private WRAM (ARM7's 64 KiB block; ARM9 has no private WRAM of its own,
// so an empty ARM9 slice reads open bus, modelled here as zero).
var wramShapes = [4][2]wramLayout{
	0: {{0, 32 * 1024}, {0, 0}},
	1: {{16 * 1024, 16 * 1024}, {0, 16 * 1024}},
	2: {{0, 16 * 1024}, {16 * 1024, 16 * 1024}},
	3: {{0, 0}, {0, 32 * 1024}},
}

// SetWRAMCNT installs a new shared-WRAM partition. Only the low two bits of
// v are architected.
func (b *Bus) SetWRAMCNT(v uint8) {
	b.wramcnt = v & 0x3
}

func (b *Bus) WRAMCNT() uint8 { return b.wramcnt }

// readSharedWRAM9/7 and writeSharedWRAM9/7 implement each core's partitioned
// view, falling back to the ARM7-private 64 KiB block when a core's shared
// slice is empty (ARM7 only; ARM9 has nothing to fall back to: its reads
// return zero and its writes are dropped, the caller logging each dropped
// write as an I/O warning).
func (b *Bus) sharedWRAMLayout9() wramLayout { return wramShapes[b.wramcnt][0] }
func (b *Bus) sharedWRAMLayout7() wramLayout { return wramShapes[b.wramcnt][1] }

func (b *Bus) readSharedWRAM9(addr uint32) (byte, bool) {
	l := b.sharedWRAMLayout9()
	if l.size == 0 {
		return 0, false
	}
	return b.sharedWRAM[l.offset+(addr%l.size)], true
}

func (b *Bus) writeSharedWRAM9(addr uint32, v byte) bool {
	l := b.sharedWRAMLayout9()
	if l.size == 0 {
		return false
	}
	b.sharedWRAM[l.offset+(addr%l.size)] = v
	return true
}

func (b *Bus) readSharedWRAM7(addr uint32) byte {
	l := b.sharedWRAMLayout7()
	if l.size == 0 {
		return b.arm7WRAM[addr%uint32(len(b.arm7WRAM))]
	}
	return b.sharedWRAM[l.offset+(addr%l.size)]
}

func (b *Bus) writeSharedWRAM7(addr uint32, v byte) {
	l := b.sharedWRAMLayout7()
	if l.size == 0 {
		b.arm7WRAM[addr%uint32(len(b.arm7WRAM))] = v
		return
	}
	b.sharedWRAM[l.offset+(addr%l.size)] = v
}
