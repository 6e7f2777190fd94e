package timer_test

import (
	"testing"

	"github.com/retrobus/ndscore/scheduler"
	"github.com/retrobus/ndscore/timer"
)

func TestOverflowPeriodFormula(t *testing.T) {
	sch := scheduler.New()
	u := timer.New(0, sch, nil)
	u.SetReload(0, 0xFFF0) // 16 ticks to overflow
	u.SetControl(0, 0x80)  // start, prescaler /1

	if got := sch.CyclesToNext(); got != 16 {
		t.Fatalf("expected 16 cycles to overflow, got %d", got)
	}
}

func TestCascadeAdvancesOnSiblingOverflow(t *testing.T) {
	sch := scheduler.New()
	fired := map[int]int{}
	u := timer.New(0, sch, func(ch int) { fired[ch]++ })

	u.SetReload(0, 0xFFFF) // overflow after 1 tick
	u.SetControl(0, 0x80|0x40) // start, irq enable
	u.SetReload(1, 0)
	u.SetControl(1, 0x80|0x04) // start, cascade

	sch.Advance(1)
	tag, _, ok := sch.NextDue()
	if !ok || tag.Channel != 0 {
		t.Fatalf("expected timer 0 to be due")
	}
	u.Service(0)

	if u.Counter(1) != 1 {
		t.Fatalf("expected cascading timer 1 to advance by one on timer 0's overflow, got %d", u.Counter(1))
	}
	if fired[0] != 1 {
		t.Fatalf("expected timer 0's irq callback to fire once")
	}
}

func TestRegisterWindowStartsTimer(t *testing.T) {
	sch := scheduler.New()
	u := timer.New(0, sch, nil)

	u.WriteByte(0, 0xF0) // TM0CNT_L low
	u.WriteByte(1, 0xFF) // TM0CNT_L high -> reload 0xFFF0
	u.WriteByte(2, 0x80) // TM0CNT_H -> start, prescaler /1

	if got := sch.CyclesToNext(); got != 16 {
		t.Fatalf("expected 16 cycles to overflow after register-driven start, got %d", got)
	}
	if got, _ := u.ReadByte(0); got != byte(u.Counter(0)) {
		t.Fatalf("expected counter low byte readback to match Counter()")
	}
}

func TestCounterInterpolatesFromScheduler(t *testing.T) {
	sch := scheduler.New()
	u := timer.New(0, sch, nil)
	u.SetReload(0, 0)
	u.SetControl(0, 0x80)

	sch.Advance(10)
	if got := u.Counter(0); got != 10 {
		t.Fatalf("expected counter to read 10 after 10 cycles at /1 prescaler, got %d", got)
	}
}
