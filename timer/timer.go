// Package timer implements the four hardware timers per core: a 16-bit
// up-counter with a reload value, a prescaler selecting the clock divider,
// and an optional cascade ("count-up") mode where a timer increments once
// per overflow of the timer below it rather than on its own prescaled
// clock.
//
// Overflow is modelled as a scheduler event rather than per-cycle polling,
// the same style the scheduler package itself documents for DMA/APU/GPU
// events. A cascading timer has no event of its own: it advances directly
// from the overflow handler of the timer below it.
package timer

import "github.com/retrobus/ndscore/scheduler"

// prescalerShift[selector] gives the number of system-clock cycles per
// timer tick as 1<<shift: selectors 0..3 are /1, /64, /256, /1024.
var prescalerShift = [4]uint{0, 6, 8, 10}

type channel struct {
	reload  uint16
	control uint8 // bits 0-1 prescaler select, bit 2 cascade (timers 1-3 only), bit 6 irq enable, bit 7 start

	counter    uint16
	lastLoaded uint64 // scheduler cycle the counter was last known-good at, for Counter() interpolation
	running    bool
}

// control bit layout:
const (
	ctrlStart      = 1 << 7
	ctrlIRQEnable  = 1 << 6
	ctrlCascade    = 1 << 2
	ctrlPrescaler  = 0x3
)

// Unit owns the four timers for one core.
type Unit struct {
	core int
	ch   [4]channel
	sch  *scheduler.Scheduler
	irq  func(channelIndex int)
}

func New(core int, sch *scheduler.Scheduler, irq func(channelIndex int)) *Unit {
	return &Unit{core: core, sch: sch, irq: irq}
}

func (u *Unit) tag(n int) scheduler.Tag {
	return scheduler.Tag{Kind: scheduler.Timer, Core: u.core, Channel: n}
}

// SetReload stores TMxCNT_L. Takes effect the next time the timer starts
// or reloads via cascade/overflow, not immediately, matching real hardware.
func (u *Unit) SetReload(n int, v uint16) {
	u.ch[n].reload = v
}

// SetControl stores TMxCNT_H and starts/stops/reconfigures timer n.
func (u *Unit) SetControl(n int, v uint8) {
	ch := &u.ch[n]
	wasRunning := ch.running
	ch.control = v
	ch.running = v&ctrlStart != 0

	if ch.running && !wasRunning {
		ch.counter = ch.reload
		ch.lastLoaded = u.sch.Cycles()
		u.scheduleNext(n)
	} else if !ch.running {
		u.sch.Remove(u.tag(n))
	}
}

func (u *Unit) cascading(n int) bool {
	return n > 0 && u.ch[n].control&ctrlCascade != 0
}

// scheduleNext arms the next overflow event for a non-cascading timer:
// (0x10000 - counter) ticks away, each tick being 1<<prescalerShift system
// cycles.
func (u *Unit) scheduleNext(n int) {
	ch := &u.ch[n]
	if u.cascading(n) {
		return // cascading timers only advance from onOverflow below
	}
	ticksToOverflow := uint64(0x10000 - uint64(ch.counter))
	shift := prescalerShift[ch.control&ctrlPrescaler]
	u.sch.Schedule(u.tag(n), ticksToOverflow<<shift)
}

// Service is called by the system loop when the scheduler reports a Timer
// event due for this core; n is the channel from the Tag.
func (u *Unit) Service(n int) {
	u.onOverflow(n)
}

func (u *Unit) onOverflow(n int) {
	ch := &u.ch[n]
	ch.counter = ch.reload
	ch.lastLoaded = u.sch.Cycles()
	if ch.control&ctrlIRQEnable != 0 && u.irq != nil {
		u.irq(n)
	}
	if !u.cascading(n) {
		u.scheduleNext(n)
	}
	if n+1 < 4 && u.cascading(n+1) && u.ch[n+1].running {
		u.advanceCascade(n + 1)
	}
}

func (u *Unit) advanceCascade(n int) {
	ch := &u.ch[n]
	ch.counter++
	if ch.counter == 0 {
		u.onOverflow(n)
	}
}

// Register window: each channel occupies 4 bytes (TMxCNT_L low/high,
// TMxCNT_H low/high), letting Unit satisfy memory.RegionHandler once
// registered at a channel-block base address. addr is base-relative.
const channelStride = 4

// ReadByte implements memory.RegionHandler.
func (u *Unit) ReadByte(addr uint32) (byte, bool) {
	n := int(addr) / channelStride
	if n < 0 || n >= 4 {
		return 0, false
	}
	switch off := int(addr) % channelStride; off {
	case 0:
		return byte(u.Counter(n)), true
	case 1:
		return byte(u.Counter(n) >> 8), true
	case 2:
		return u.ch[n].control, true
	default:
		return 0, true
	}
}

// WriteByte implements memory.RegionHandler. Byte 0/1 write TMxCNT_L (the
// reload value, latched on next start); byte 2 writes TMxCNT_H and applies
// immediately via SetControl.
func (u *Unit) WriteByte(addr uint32, v byte) bool {
	n := int(addr) / channelStride
	if n < 0 || n >= 4 {
		return false
	}
	switch off := int(addr) % channelStride; off {
	case 0:
		u.SetReload(n, (u.ch[n].reload &^ 0xFF) | uint16(v))
	case 1:
		u.SetReload(n, (u.ch[n].reload & 0xFF) | uint16(v)<<8)
	case 2:
		u.SetControl(n, v)
	}
	return true
}

// Counter returns timer n's current 16-bit value, interpolated from the
// scheduler's cycle count for a running, non-cascading timer (cascading
// timers only change on a sibling's overflow, so their stored counter is
// always exact).
func (u *Unit) Counter(n int) uint16 {
	ch := &u.ch[n]
	if !ch.running || u.cascading(n) {
		return ch.counter
	}
	shift := prescalerShift[ch.control&ctrlPrescaler]
	elapsedTicks := (u.sch.Cycles() - ch.lastLoaded) >> shift
	return uint16(uint64(ch.counter) + elapsedTicks)
}
