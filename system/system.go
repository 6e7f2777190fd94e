package system

import (
	"github.com/retrobus/ndscore/apu"
	"github.com/retrobus/ndscore/cartridge"
	"github.com/retrobus/ndscore/cpu"
	"github.com/retrobus/ndscore/dma"
	"github.com/retrobus/ndscore/input"
	"github.com/retrobus/ndscore/ipc"
	"github.com/retrobus/ndscore/memory"
	"github.com/retrobus/ndscore/random"
	"github.com/retrobus/ndscore/romfile"
	"github.com/retrobus/ndscore/savestate"
	"github.com/retrobus/ndscore/scheduler"
	"github.com/retrobus/ndscore/timer"
	"github.com/retrobus/ndscore/video2d"
	"github.com/retrobus/ndscore/video3d"
	"github.com/retrobus/ndscore/vram"
)

// This system's own I/O address map. Every peripheral's register window is
// written base-relative (each package's own doc comments say so); these
// constants are where System pins each window on the shared bus. They do
// not need to match real hardware's addresses byte for byte — no tested
// behavior is keyed to a literal register address — but they follow
// GBATEK's relative ordering and sizes where that was convenient, so a
// reader familiar with the real memory map isn't surprised.
const (
	addrEngineARegs = 0x04000000
	addrEngineBRegs = 0x04001000
	addrDMA7        = 0x040000B0
	addrDMA9        = 0x04000100
	addrTimer7      = 0x04000140
	addrTimer9      = 0x04000150
	addrKeypad      = 0x04000160
	addrIPC7        = 0x04000180
	addrIPC9        = 0x04000190
	addrROMCtrl     = 0x040001A0
	addrSPI         = 0x040001C0
	addrIntC7       = 0x04000200
	addrIntC9       = 0x04000210
	addrVRAMCnt     = 0x04000240
	addrOAMA        = 0x07000000
	addrOAMB        = 0x07000400
	addrPaletteA    = 0x05000000
	addrPaletteB    = 0x05000400
	addrGeometry    = 0x04000400
	addrAPU         = 0x04000700
	addrBackup      = 0x08000000

	addrPOWCNT1 = 0x04000304
)

const (
	ipcWindowSize    = 12
	dmaWindowSize    = 4 * 12
	timerWindowSize  = 4 * 4
	keypadWindowSize = 4
	romctrlWindowSize = 0x14
	spiWindowSize    = 4
	vramcntWindowSize = 9
)

// System owns both cores, the shared bus, the scheduler, and every
// peripheral, and drives the single-threaded cooperative step loop:
// advance the ARMv5 core by N cycles, the ARMv4 core by N/2, drain due
// scheduler events, repeat until end-of-frame.
type System struct {
	bus *memory.Bus
	sch *scheduler.Scheduler

	arm9 *cpu.Core
	arm7 *cpu.Core
	view9 *memory.ARM9View
	view7 *memory.ARM7View

	intc7 *IntController
	intc9 *IntController

	dma7, dma9     *dma.Unit
	timer7, timer9 *timer.Unit
	ipcBlock       *ipc.Block

	romctrl *cartridge.Controller
	backup  *cartridge.Backup
	spiBus  *cartridge.SPIBus
	spiRegs *cartridge.SPIRegisters

	vram     *vram.VRAM
	vramRegs *vram.Registers

	engineA, engineB     *video2d.Engine
	engineARegs, engineBRegs *video2d.Registers

	geometry    *video3d.Engine
	geometryRegs *video3d.Registers
	rasterizer  *video3d.Rasterizer
	framebuffer3D *video3d.Framebuffer

	mixer *apu.Mixer
	input *input.State

	powcnt1 uint16

	frameARGB [2][video2d.ScreenHeight][video2d.ScreenWidth]video2d.RGB24

	endOfFrame   bool
	scanline     int
	bootScheduled bool
}

// Config gathers System's construction-time inputs. The audio queue
// itself is apu.Mixer's bounded Drain-based queue; callers poll
// DrainAudio rather than supplying a handle, since this interpreter has
// no separate host-audio-thread boundary to hand one across.
type Config struct {
	BIOS7    []byte
	BIOS9    []byte
	Firmware []byte
	ROM      []byte
	SkipBIOS bool
	HostSampleRate int
	AudioQueueCapacity int

	// Now supplies the real-time-clock chip's date/time; the RTC calls it
	// each time its date/time register is read. Left nil, the clock reads back a fixed epoch rather
	// than the host's wall clock, keeping a run's boot state reproducible.
	Now func() (year, month, day, hour, min, sec int)
}

// New assembles a System from its boot images, wiring every peripheral's
// register window onto the shared bus.
func New(cfg Config) (*System, error) {
	rom, err := romfile.LoadROM(cfg.ROM)
	if err != nil {
		return nil, err
	}
	bios7, err := romfile.LoadBIOS7(cfg.BIOS7)
	if err != nil {
		return nil, err
	}
	bios9, err := romfile.LoadBIOS9(cfg.BIOS9)
	if err != nil {
		return nil, err
	}
	key1Table, err := romfile.KEY1Table(bios7)
	if err != nil {
		return nil, err
	}

	s := &System{}
	s.bus = memory.New()
	if err := s.bus.LoadBIOS7(bios7); err != nil {
		return nil, err
	}
	if err := s.bus.LoadBIOS9(bios9); err != nil {
		return nil, err
	}
	s.sch = scheduler.New()
	s.bus.SetScheduler(s.sch)

	s.view9 = memory.NewARM9View(s.bus)
	s.view7 = memory.NewARM7View(s.bus)

	entry9, entry7 := uint32(0), uint32(0)
	if cfg.SkipBIOS {
		entry9 = rom.Header.ARM9EntryAddr
		entry7 = rom.Header.ARM7EntryAddr
	}
	s.arm9 = cpu.NewCore(cpu.ARMv5, s.view9, entry9)
	s.arm7 = cpu.NewCore(cpu.ARMv4, s.view7, entry7)
	s.view9.SetCP15(s.arm9.CP15())

	s.intc7 = NewIntController()
	s.intc9 = NewIntController()
	s.bus.SetIRQSources(s.intc7.Pending, s.intc9.Pending)

	s.dma7 = dma.New(s.view7, s.intc7.dmaIRQ)
	s.dma9 = dma.New(s.view9, s.intc9.dmaIRQ)
	s.timer7 = timer.New(0, s.sch, s.intc7.timerIRQ)
	s.timer9 = timer.New(1, s.sch, s.intc9.timerIRQ)
	s.ipcBlock = ipc.New(s.intc7.ipcIRQ, s.intc9.ipcIRQ)

	s.romctrl = cartridge.New(rom.Data, key1Table)
	s.backup = cartridge.NewBackup(cartridge.BackupFlash256K)

	var firmware *cartridge.Firmware
	if len(cfg.Firmware) > 0 {
		fw, err := romfile.LoadFirmware(cfg.Firmware)
		if err != nil {
			return nil, err
		}
		firmware = cartridge.NewFirmware(fw.Data)
	} else {
		firmware = cartridge.NewFirmware(nil)
	}
	s.input = input.New()
	touch := cartridge.NewTouchscreen()
	now := cfg.Now
	if now == nil {
		now = func() (int, int, int, int, int, int) { return 2000, 1, 1, 0, 0, 0 }
	}
	rtc := cartridge.NewRTC(now)
	s.spiBus = cartridge.NewSPIBus(firmware, touch, rtc)
	s.spiRegs = cartridge.NewSPIRegisters(s.spiBus)

	s.vram = vram.New()
	s.vramRegs = vram.NewRegisters(s.vram)

	s.engineA = &video2d.Engine{IsEngineA: true, VRAM: s.vram, BGRole: vram.RoleEngineABG, OBJRole: vram.RoleEngineAOBJ, OAM: make([]byte, 1024)}
	s.engineB = &video2d.Engine{IsEngineA: false, VRAM: s.vram, BGRole: vram.RoleEngineBBG, OBJRole: vram.RoleEngineBOBJ, OAM: make([]byte, 1024)}
	rng := random.NewRandom(nil)
	rng.Fill(s.engineA.OAM)
	rng.Fill(s.engineB.OAM)
	s.engineARegs = video2d.NewRegisters(s.engineA)
	s.engineBRegs = video2d.NewRegisters(s.engineB)

	s.geometry = video3d.NewEngine()
	s.geometryRegs = video3d.NewRegisters(s.geometry)
	s.rasterizer = video3d.NewRasterizer()
	s.framebuffer3D = video3d.NewFramebuffer(video2d.ScreenWidth, video2d.ScreenHeight)

	s.mixer = apu.NewMixer(cfg.HostSampleRate, cfg.AudioQueueCapacity)
	mixerRegs := apu.NewRegisters(s.mixer, s.bus.RAMBytes)

	s.registerRegions(mixerRegs)

	return s, nil
}

func (s *System) registerRegions(mixerRegs *apu.Registers) {
	b := s.bus
	b.RegisterRegion(addrEngineARegs, video2d.WindowSize, memory.AtBase(addrEngineARegs, s.engineARegs))
	b.RegisterRegion(addrEngineBRegs, video2d.WindowSize, memory.AtBase(addrEngineBRegs, s.engineBRegs))
	b.RegisterRegion(addrDMA7, dmaWindowSize, memory.AtBase(addrDMA7, s.dma7))
	b.RegisterRegion(addrDMA9, dmaWindowSize, memory.AtBase(addrDMA9, s.dma9))
	b.RegisterRegion(addrTimer7, timerWindowSize, memory.AtBase(addrTimer7, s.timer7))
	b.RegisterRegion(addrTimer9, timerWindowSize, memory.AtBase(addrTimer9, s.timer9))
	b.RegisterRegion(addrKeypad, keypadWindowSize, memory.AtBase(addrKeypad, input.NewRegisters(s.input)))
	b.RegisterRegion(addrIPC7, ipcWindowSize, memory.AtBase(addrIPC7, ipc.NewView7(s.ipcBlock)))
	b.RegisterRegion(addrIPC9, ipcWindowSize, memory.AtBase(addrIPC9, ipc.NewView9(s.ipcBlock)))
	b.RegisterRegion(addrROMCtrl, romctrlWindowSize, memory.AtBase(addrROMCtrl, s.romctrl))
	b.RegisterRegion(addrSPI, spiWindowSize, memory.AtBase(addrSPI, s.spiRegs))
	b.RegisterRegion(addrIntC7, uint32(windowSize), memory.AtBase(addrIntC7, s.intc7))
	b.RegisterRegion(addrIntC9, uint32(windowSize), memory.AtBase(addrIntC9, s.intc9))
	b.RegisterRegion(addrVRAMCnt, vramcntWindowSize, memory.AtBase(addrVRAMCnt, s.vramRegs))
	b.RegisterRegion(addrOAMA, uint32(len(s.engineA.OAM)), memory.ByteSliceRegion{Data: s.engineA.OAM})
	b.RegisterRegion(addrOAMB, uint32(len(s.engineB.OAM)), memory.ByteSliceRegion{Data: s.engineB.OAM})
	b.RegisterRegion(addrPaletteA, uint32(len(s.engineA.PaletteBG)*2), video2d.PaletteRegion{Table: &s.engineA.PaletteBG})
	b.RegisterRegion(addrPaletteB, uint32(len(s.engineB.PaletteBG)*2), video2d.PaletteRegion{Table: &s.engineB.PaletteBG})
	b.RegisterRegion(addrGeometry, video3d.WindowSize, memory.AtBase(addrGeometry, s.geometryRegs))
	b.RegisterRegion(addrAPU, apu.ChannelCount*0x10+2, memory.AtBase(addrAPU, mixerRegs))
	b.RegisterRegion(addrBackup, uint32(s.backup.Size()), memory.AtBase(addrBackup, cartridge.Region{Backup: s.backup}))
	b.RegisterRegion(addrPOWCNT1, 2, memory.AtBase(addrPOWCNT1, s))
}

// ReadByte/WriteByte implement POWCNT1 directly on System itself: a single
// two-byte register too small to deserve its own adapter type.
func (s *System) ReadByte(addr uint32) (byte, bool) {
	switch addr {
	case 0:
		return byte(s.powcnt1), true
	case 1:
		return byte(s.powcnt1 >> 8), true
	default:
		return 0, false
	}
}

func (s *System) WriteByte(addr uint32, v byte) bool {
	switch addr {
	case 0:
		s.powcnt1 = (s.powcnt1 &^ 0xFF) | uint16(v)
		return true
	case 1:
		s.powcnt1 = (s.powcnt1 &^ 0xFF00) | uint16(v)<<8
		return true
	default:
		return false
	}
}

// cyclesPerScanline and scanlines-per-frame follow the fixed DS video
// timing the HBlank/HDraw/VBlank events are derived from.
const (
	cyclesHDraw      = 1536
	cyclesHBlank     = 560
	cyclesPerScanline = cyclesHDraw + cyclesHBlank
	visibleScanlines = 192
	totalScanlines   = 263
)

// Step runs the cooperative 2:1 loop until one end-of-frame event fires,
// returning true at that point. The ARM9 runs at twice the ARM7's rate;
// System interleaves them one scanline
// worth of budget at a time, draining due scheduler events between slices
// so DMA/timer/video events land mid-scanline at the right relative point.
func (s *System) Step() bool {
	if !s.bootScheduled {
		s.sch.Schedule(scheduler.NewTag(scheduler.HDraw), 0)
		s.bootScheduled = true
	}
	s.endOfFrame = false
	for !s.endOfFrame {
		budget := s.sch.CyclesToNext()
		if budget == 0 {
			budget = cyclesPerScanline
		}
		s.runSlice(budget)
		s.drainDue()
		if delta, did := s.sch.Rebase(); did {
			s.arm9.Rebase(delta)
			s.arm7.Rebase(delta)
		}
	}
	return true
}

// runSlice advances both cores by budget ARM9 cycles (ARM7 by budget/2,
// the fixed 2:1 clock ratio), a halted core fast-forwarding straight to
// the end of the slice rather than stepping uselessly.
func (s *System) runSlice(budget uint64) {
	target9 := s.arm9.Cycles() + budget
	target7 := s.arm7.Cycles() + budget/2

	for s.arm9.Cycles() < target9 || s.arm7.Cycles() < target7 {
		if s.arm9.Cycles() < target9 {
			if s.arm9.Halted {
				s.arm9.AddCycles(target9 - s.arm9.Cycles())
			} else {
				s.arm9.IRQ()
				s.arm9.Step()
			}
		}
		if s.arm7.Cycles() < target7 {
			if s.arm7.Halted {
				s.arm7.AddCycles(target7 - s.arm7.Cycles())
			} else {
				s.arm7.IRQ()
				s.arm7.Step()
			}
		}
	}
	s.mixer.Step(int(budget))
	s.sch.Advance(budget)
}

// drainDue pops and services every scheduler event whose time has been
// reached, processing entries strictly in non-decreasing Time order,
// which NextDue's heap pop already guarantees.
func (s *System) drainDue() {
	for {
		tag, _, ok := s.sch.NextDue()
		if !ok {
			return
		}
		s.service(tag)
	}
}

func (s *System) service(tag scheduler.Tag) {
	switch tag.Kind {
	case scheduler.HDraw:
		s.onHDraw()
		s.sch.Schedule(scheduler.NewTag(scheduler.HBlank), cyclesHDraw)
	case scheduler.HBlank:
		s.onHBlank()
		if s.scanline+1 >= totalScanlines {
			s.endOfFrame = true
		}
		s.sch.Schedule(scheduler.NewTag(scheduler.HDraw), cyclesHBlank)
	case scheduler.Timer:
		if tag.Core == 0 {
			s.timer7.Service(tag.Channel)
		} else {
			s.timer9.Service(tag.Channel)
		}
	}
}

// onHDraw renders the scanline about to start and fires any Immediate/
// HBlank-pending DMA this system models as occurring at draw start.
func (s *System) onHDraw() {
	if s.scanline < visibleScanlines {
		row := s.engineA.RenderScanline(s.scanline)
		s.frameARGB[0][s.scanline] = row
		rowB := s.engineB.RenderScanline(s.scanline)
		s.frameARGB[1][s.scanline] = rowB
	}
	if s.scanline == 0 && s.geometry.Swapped() {
		x1, y1, w, h := s.geometry.Viewport()
		s.rasterizer.Render(s.framebuffer3D, s.geometry.FrontBuffer(), x1, y1, w, h, nil)
	}
	for n := 0; n < 4; n++ {
		if s.dma7.Due(n, dma.Special) {
			s.dma7.Trigger(n)
		}
		if s.dma9.Due(n, dma.Special) {
			s.dma9.Trigger(n)
		}
	}
}

func (s *System) onHBlank() {
	for n := 0; n < 4; n++ {
		if s.dma7.Due(n, dma.HBlank) {
			s.dma7.Trigger(n)
		}
		if s.dma9.Due(n, dma.HBlank) {
			s.dma9.Trigger(n)
		}
	}
	s.intc7.Raise(IRQHBlank)
	s.intc9.Raise(IRQHBlank)

	s.scanline++
	if s.scanline == visibleScanlines {
		for n := 0; n < 4; n++ {
			if s.dma7.Due(n, dma.VBlank) {
				s.dma7.Trigger(n)
			}
			if s.dma9.Due(n, dma.VBlank) {
				s.dma9.Trigger(n)
			}
		}
		s.intc7.Raise(IRQVBlank)
		s.intc9.Raise(IRQVBlank)
	}
	if s.scanline >= totalScanlines {
		s.scanline = 0
	}
}

// SetKeyInput/SetExtKeyInput/Touch/ReleaseTouch/HingeOpen forward to the
// input state.
func (s *System) SetKeyInput(mask uint16)    { s.input.SetKeyInput(mask) }
func (s *System) SetExtKeyInput(mask uint16) { s.input.SetExtKeyInput(mask) }
func (s *System) Touch(x, y uint16) {
	s.input.Touch(x, y)
	s.spiBus.SelectDevice(cartridge.DeviceTouchscreen)
}
func (s *System) ReleaseTouch() { s.input.ReleaseTouch() }
func (s *System) HingeOpen(open bool) { s.input.HingeOpen(open) }

// FrameEngineA/FrameEngineB return the most recently rendered 256x192
// framebuffer for each 2D engine; which physical screen (top/bottom) shows
// which engine is POWCNT1 bit 15's job to report via TopScreenIsEngineA.
func (s *System) FrameEngineA() [video2d.ScreenHeight][video2d.ScreenWidth]video2d.RGB24 {
	return s.frameARGB[0]
}

func (s *System) FrameEngineB() [video2d.ScreenHeight][video2d.ScreenWidth]video2d.RGB24 {
	return s.frameARGB[1]
}

// TopScreenIsEngineA reports which 2D engine is mapped to the physical top
// screen, read from POWCNT1 bit 15.
func (s *System) TopScreenIsEngineA() bool {
	return s.powcnt1&(1<<15) != 0
}

// DrainAudio returns every host-rate frame the mixer has produced since
// the last call, and how many frames have been dropped for queue overflow
// since the last call.
func (s *System) DrainAudio() ([]apu.Frame, int) {
	frames := s.mixer.Drain()
	dropped := s.mixer.Dropped()
	return frames, dropped
}

// SaveState captures enough of the running session to resume execution
// from this exact cycle: the scheduler's pending events, both cores' full
// register/pipeline/coprocessor state, the three RAM arrays, the WRAM and
// external-memory control bits, the math coprocessor's latched state, and
// the cartridge backup image. Peripheral register latches (DMA, timers,
// the 2D/3D pipelines, the mixer) are not captured; a resumed session
// rebuilds those the way the guest would on any register read it issues
// after restore, rather than this package tracking every peripheral's
// internal state twice.
func (s *System) SaveState() *savestate.State {
	mainRAM := s.bus.MainRAMBytes()
	sharedWRAM := s.bus.SharedWRAMBytes()
	arm7WRAM := s.bus.ARM7WRAMBytes()

	return &savestate.State{
		SchedulerCycles:  s.sch.Cycles(),
		SchedulerEntries: append([]scheduler.Entry(nil), s.sch.Entries()...),

		ARM7: s.arm7.Snapshot(),
		ARM9: s.arm9.Snapshot(),

		MainRAM:    append([]byte(nil), mainRAM...),
		SharedWRAM: append([]byte(nil), sharedWRAM...),
		ARM7WRAM:   append([]byte(nil), arm7WRAM...),
		WRAMCNT:    s.bus.WRAMCNT(),
		EXMEMCNT:   s.bus.EXMEMCNT(),

		Math: s.bus.Math.Snapshot(),

		Backup: append([]byte(nil), s.backup.Raw()...),
	}
}

// LoadState restores everything SaveState captured. The caller is
// responsible for pairing it with a State produced by the same binary; the
// wire format carries no version negotiation.
func (s *System) LoadState(st *savestate.State) {
	s.sch.Restore(st.SchedulerCycles, st.SchedulerEntries)

	s.arm7.Restore(st.ARM7)
	s.arm9.Restore(st.ARM9)

	copy(s.bus.MainRAMBytes(), st.MainRAM)
	copy(s.bus.SharedWRAMBytes(), st.SharedWRAM)
	copy(s.bus.ARM7WRAMBytes(), st.ARM7WRAM)
	s.bus.SetWRAMCNT(st.WRAMCNT)
	s.bus.SetEXMEMCNT(st.EXMEMCNT)

	s.bus.Math.Restore(st.Math)

	copy(s.backup.Raw(), st.Backup)
}
