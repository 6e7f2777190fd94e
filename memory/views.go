package memory

import "github.com/retrobus/ndscore/cpu"

// ARM9View is the application core's cpu.Bus: CP15 TCM windows short-circuit
// the normal memory map ahead of everything else.
type ARM9View struct {
	bus  *Bus
	cp15 cpu.TCMProvider

	itcm [32 * 1024]byte
	dtcm [16 * 1024]byte
}

func NewARM9View(bus *Bus) *ARM9View {
	return &ARM9View{bus: bus}
}

// SetCP15 wires the core's coprocessor 15 once the Core exists (views are
// constructed before the Core that owns the CP15 instance, so this is a
// second wiring step rather than a constructor argument).
func (v *ARM9View) SetCP15(cp15 cpu.TCMProvider) { v.cp15 = cp15 }

func (v *ARM9View) readByte(addr uint32, dataAccess bool) byte {
	if v.cp15 != nil {
		if base, size, ok := v.cp15.TCMWindow(addr, dataAccess); ok {
			off := (addr - base) % size
			if size == uint32(len(v.itcm)) {
				return v.itcm[off]
			}
			return v.dtcm[off]
		}
	}
	return v.bus.readByte9(addr)
}

func (v *ARM9View) writeByte(addr uint32, value byte, dataAccess bool) {
	if v.cp15 != nil {
		if base, size, ok := v.cp15.TCMWindow(addr, dataAccess); ok {
			off := (addr - base) % size
			if size == uint32(len(v.itcm)) {
				v.itcm[off] = value
			} else {
				v.dtcm[off] = value
			}
			return
		}
	}
	v.bus.writeByte9(addr, value)
}

func (v *ARM9View) FetchCode(addr uint32, width cpu.Width, access cpu.AccessKind) uint32 {
	return v.readMulti(addr, width, false)
}

func (v *ARM9View) Read(addr uint32, width cpu.Width, access cpu.AccessKind) uint32 {
	return v.readMulti(addr, width, true)
}

func (v *ARM9View) readMulti(addr uint32, width cpu.Width, dataAccess bool) uint32 {
	v.bus.chargeCycles(addr, width, dataAccess)
	var result uint32
	for i := uint32(0); i < uint32(width); i++ {
		result |= uint32(v.readByte(addr+i, dataAccess)) << (8 * i)
	}
	return result
}

func (v *ARM9View) Write(addr uint32, width cpu.Width, access cpu.AccessKind, value uint32) {
	v.bus.chargeCycles(addr, width, true)
	for i := uint32(0); i < uint32(width); i++ {
		v.writeByte(addr+i, byte(value>>(8*i)), true)
	}
}

func (v *ARM9View) Cycles(n uint64) { v.bus.advance(n) }

// ReadWord/WriteWord/ReadHalf/WriteHalf give the DMA unit raw bus access
// that doesn't go through CP15/TCM short-circuiting, matching how DMA
// transfers move data at the shared-bus level on real hardware rather than
// through a CPU core's instruction-fetch path.
func (v *ARM9View) ReadWord(addr uint32) uint32    { return v.readBus(addr&^3, cpu.Word) }
func (v *ARM9View) WriteWord(addr uint32, val uint32) {
	for i := uint32(0); i < 4; i++ {
		v.bus.writeByte9((addr&^3)+i, byte(val>>(8*i)))
	}
}
func (v *ARM9View) ReadHalf(addr uint32) uint16 {
	return uint16(v.readBus(addr&^1, cpu.Halfword))
}
func (v *ARM9View) WriteHalf(addr uint32, val uint16) {
	for i := uint32(0); i < 2; i++ {
		v.bus.writeByte9((addr&^1)+i, byte(val>>(8*i)))
	}
}
func (v *ARM9View) readBus(addr uint32, width cpu.Width) uint32 {
	v.bus.chargeCycles(addr, width, true)
	var result uint32
	for i := uint32(0); i < uint32(width); i++ {
		result |= uint32(v.bus.readByte9(addr+i)) << (8 * i)
	}
	return result
}

func (v *ARM9View) IRQPending() bool {
	if v.bus.arm9IRQPending == nil {
		return false
	}
	return v.bus.arm9IRQPending()
}

// ARM7View is the I/O core's cpu.Bus: no CP15, no TCM, a smaller private
// WRAM and a different BIOS.
type ARM7View struct {
	bus *Bus
}

func NewARM7View(bus *Bus) *ARM7View { return &ARM7View{bus: bus} }

func (v *ARM7View) FetchCode(addr uint32, width cpu.Width, access cpu.AccessKind) uint32 {
	return v.readMulti(addr, width)
}

func (v *ARM7View) Read(addr uint32, width cpu.Width, access cpu.AccessKind) uint32 {
	return v.readMulti(addr, width)
}

func (v *ARM7View) readMulti(addr uint32, width cpu.Width) uint32 {
	v.bus.chargeCycles(addr, width, false)
	var result uint32
	for i := uint32(0); i < uint32(width); i++ {
		result |= uint32(v.bus.readByte7(addr+i)) << (8 * i)
	}
	return result
}

func (v *ARM7View) Write(addr uint32, width cpu.Width, access cpu.AccessKind, value uint32) {
	v.bus.chargeCycles(addr, width, true)
	for i := uint32(0); i < uint32(width); i++ {
		v.bus.writeByte7(addr+i, byte(value>>(8*i)))
	}
}

func (v *ARM7View) Cycles(n uint64) { v.bus.advance(n) }

func (v *ARM7View) ReadWord(addr uint32) uint32 { return v.readMulti(addr&^3, cpu.Word) }
func (v *ARM7View) WriteWord(addr uint32, val uint32) {
	addr &^= 3
	for i := uint32(0); i < 4; i++ {
		v.bus.writeByte7(addr+i, byte(val>>(8*i)))
	}
}
func (v *ARM7View) ReadHalf(addr uint32) uint16 {
	return uint16(v.readMulti(addr&^1, cpu.Halfword))
}
func (v *ARM7View) WriteHalf(addr uint32, val uint16) {
	addr &^= 1
	for i := uint32(0); i < 2; i++ {
		v.bus.writeByte7(addr+i, byte(val>>(8*i)))
	}
}

func (v *ARM7View) IRQPending() bool {
	if v.bus.arm7IRQPending == nil {
		return false
	}
	return v.bus.arm7IRQPending()
}

// chargeCycles and advance implement the waitstate/EXMEMCNT-driven cycle
// accounting: a structural model (cartridge/GBA-slot accesses cost more
// than internal RAM) rather than a cycle-exact one, since the timing
// invariants that matter here are event-ordering, not exact counts.
func (b *Bus) chargeCycles(addr uint32, width cpu.Width, dataAccess bool) {
	n := uint64(1)
	switch {
	case addr >= 0x08000000 && addr < 0x0A000000:
		n = uint64(b.cartWaitstate(0))
	case addr >= 0x0A000000 && addr < 0x0B000000:
		n = uint64(b.cartWaitstate(1))
	case addr >= 0x06000000 && addr < 0x07000000:
		n = 2
	}
	if width == cpu.Word {
		n += n / 2
	}
	b.advance(n)
}

func (b *Bus) advance(n uint64) {
	if b.scheduler != nil {
		b.scheduler.Advance(n)
	}
}

// SetEXMEMCNT installs the cartridge/GBA-slot waitstate control word.
func (b *Bus) SetEXMEMCNT(v uint16) { b.exmemcnt = v }

// cartWaitstate returns the extra cycle count EXMEMCNT selects for the
// given phase (0 = first access, 1 = second/sequential access) of a
// cartridge-bus transfer.
func (b *Bus) cartWaitstate(phase int) int {
	table := [4]int{4, 3, 2, 8}
	shift := uint(phase * 2)
	return table[(b.exmemcnt>>shift)&0x3]
}
