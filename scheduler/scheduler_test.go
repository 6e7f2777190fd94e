package scheduler_test

import (
	"testing"

	"github.com/retrobus/ndscore/scheduler"
)

func TestScheduleAndNextDue(t *testing.T) {
	s := scheduler.New()
	s.Schedule(scheduler.NewTag(scheduler.HBlank), 100)

	if _, _, ok := s.NextDue(); ok {
		t.Fatalf("event should not be due yet")
	}
	if got := s.CyclesToNext(); got != 100 {
		t.Fatalf("expected 100 cycles to next event, got %d", got)
	}

	s.Advance(100)
	tag, slack, ok := s.NextDue()
	if !ok {
		t.Fatalf("expected event to be due")
	}
	if tag.Kind != scheduler.HBlank {
		t.Fatalf("unexpected tag kind: %v", tag.Kind)
	}
	if slack != 0 {
		t.Fatalf("expected zero slack, got %d", slack)
	}
}

func TestRescheduleNonReentrantReplaces(t *testing.T) {
	s := scheduler.New()
	tag := scheduler.Tag{Kind: scheduler.Timer, Core: 0, Channel: 1}
	s.Schedule(tag, 50)
	s.Schedule(tag, 200)

	if s.Len() != 1 {
		t.Fatalf("expected rescheduling a non-reentrant tag to replace it, got %d pending", s.Len())
	}
	if got := s.CyclesToNext(); got != 200 {
		t.Fatalf("expected the later schedule to win, got %d", got)
	}
}

func TestReentrantAPUStepCoexists(t *testing.T) {
	s := scheduler.New()
	tag := scheduler.Tag{Kind: scheduler.APUStep, Core: -1, Channel: 3}
	s.Schedule(tag, 10)
	s.Schedule(tag, 20)

	if s.Len() != 2 {
		t.Fatalf("expected two coexisting APUStep entries, got %d", s.Len())
	}
}

func TestRemoveIsNoopWhenAbsent(t *testing.T) {
	s := scheduler.New()
	s.Remove(scheduler.Tag{Kind: scheduler.DMAWord, Core: 1, Channel: 2})
	if s.Len() != 0 {
		t.Fatalf("expected empty scheduler")
	}
}

func TestRebasePreservesOrderAndDistance(t *testing.T) {
	s := scheduler.New()
	s.SetCycles(0x7FFF_0100)
	s.Schedule(scheduler.Tag{Kind: scheduler.HBlank, Core: -1, Channel: -1}, 10)
	s.Schedule(scheduler.Tag{Kind: scheduler.HDraw, Core: -1, Channel: -1}, 50)
	s.Schedule(scheduler.Tag{Kind: scheduler.VBlank, Core: -1, Channel: -1}, 1000)

	before := s.CyclesToNext()

	delta, did := s.Rebase()
	if !did {
		t.Fatalf("expected rebase to trigger above threshold")
	}
	if delta != 0x7FFF_0100 {
		t.Fatalf("unexpected rebase delta: %#x", delta)
	}

	after := s.CyclesToNext()
	if before != after {
		t.Fatalf("rebase changed distance to next event: before=%d after=%d", before, after)
	}

	// relative order preserved: HBlank still fires before HDraw before VBlank
	s.Advance(10)
	tag, _, ok := s.NextDue()
	if !ok || tag.Kind != scheduler.HBlank {
		t.Fatalf("expected HBlank first after rebase")
	}
	s.Advance(40)
	tag, _, ok = s.NextDue()
	if !ok || tag.Kind != scheduler.HDraw {
		t.Fatalf("expected HDraw second after rebase")
	}
}

func TestNoRebaseBelowThreshold(t *testing.T) {
	s := scheduler.New()
	s.SetCycles(1000)
	if _, did := s.Rebase(); did {
		t.Fatalf("did not expect a rebase below the threshold")
	}
}
