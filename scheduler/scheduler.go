// Package scheduler implements the event-driven heart of the core: a
// min-heap of (tag, absolute cycle) entries that the frame loop consults to
// know how far each CPU may run before something needs to happen.
//
// The heap is built on container/heap from the standard library; there is
// no third-party priority-queue convention worth following here (see
// DESIGN.md).
package scheduler

import "container/heap"

// Kind identifies the variety of event an Entry represents.
type Kind int

const (
	HBlank Kind = iota
	HDraw
	VBlank
	Timer
	APUStep
	APUReset
	GenerateSample
	DMAWord
	DMABlock
	GeometryFIFOCheck
)

// reentrant reports whether more than one Entry with this Kind+Core+Channel
// may be pending at once. Only APU channel stepping is documented as
// re-entrant: a channel may have its next-sample event
// rescheduled while a previous one is still conceptually "in flight" across
// a rebase boundary.
func (k Kind) reentrant() bool {
	return k == APUStep
}

// Tag identifies a specific event: its Kind, which core it concerns (0 or 1;
// -1 when the event is not core-specific, e.g. a GPU event), and which
// channel within that Kind (a timer number 0-3, an APU channel 0-15, a DMA
// channel 0-3; -1 when not applicable).
type Tag struct {
	Kind    Kind
	Core    int
	Channel int
}

// NewTag builds a Tag with no core/channel qualification.
func NewTag(kind Kind) Tag { return Tag{Kind: kind, Core: -1, Channel: -1} }

// Entry is one scheduled event.
type Entry struct {
	Tag  Tag
	Time uint64
}

// rebaseThreshold: once the running cycle counter reaches this value,
// Rebase subtracts it from every entry and reports the delta so the caller
// can do the same to its CPU cycle counters, keeping all counters well
// clear of uint64/uint32 wraparound for the lifetime of a long play session
//.
const rebaseThreshold = 0x7FFF_0000

// Scheduler owns the current absolute cycle and the pending event heap.
type Scheduler struct {
	cycles uint64
	heap   entryHeap
}

// New returns an empty Scheduler with its cycle counter at zero.
func New() *Scheduler {
	s := &Scheduler{}
	heap.Init(&s.heap)
	return s
}

// Cycles returns the current absolute cycle.
func (s *Scheduler) Cycles() uint64 { return s.cycles }

// Advance moves the scheduler's absolute cycle forward by n. Called once per
// step of whichever CPU is "ahead" is wrong; the scheduler's cycle always
// tracks the minimum of the two CPU counters, so System advances it after
// both cores have stepped to the same point.
func (s *Scheduler) Advance(n uint64) { s.cycles += n }

// SetCycles pins the absolute cycle directly. Used by save-state restore
// and by tests that want to start from a specific point.
func (s *Scheduler) SetCycles(c uint64) { s.cycles = c }

// Schedule inserts an entry at cycles+delay. For non-reentrant kinds, any
// existing entry with the same Tag is removed first, satisfying the
// invariant that only explicitly reentrant tags may have more than one
// pending entry.
func (s *Scheduler) Schedule(tag Tag, delay uint64) {
	if !tag.Kind.reentrant() {
		s.Remove(tag)
	}
	heap.Push(&s.heap, Entry{Tag: tag, Time: s.cycles + delay})
}

// Remove deletes every entry matching tag. It is not an error for no entry
// to match.
func (s *Scheduler) Remove(tag Tag) {
	// filter-and-reheapify: removal is rare relative to scheduling and
	// popping, so an O(n) scan keeps the heap implementation itself
	// trivial and correct.
	kept := s.heap[:0]
	for _, e := range s.heap {
		if e.Tag != tag {
			kept = append(kept, e)
		}
	}
	s.heap = kept
	heap.Init(&s.heap)
}

// NextDue returns the head entry's tag and the slack (how far past its
// scheduled time the scheduler's clock has already advanced) if the head's
// time has been reached, and ok=true. If the earliest entry is still in the
// future, ok is false and the returned tag/slack are zero-valued.
//
// The caller uses NextDue in a loop, popping every due entry before
// resuming CPU execution, and uses slack to schedule the event's own
// follow-up so timing drift doesn't accumulate.
func (s *Scheduler) NextDue() (tag Tag, slack uint64, ok bool) {
	if len(s.heap) == 0 {
		return Tag{}, 0, false
	}
	head := s.heap[0]
	if head.Time > s.cycles {
		return Tag{}, 0, false
	}
	heap.Pop(&s.heap)
	return head.Tag, s.cycles - head.Time, true
}

// CyclesToNext returns how many cycles remain before the earliest pending
// event, or 0 if one is already due. Callers use this to cap how far a CPU
// may run before the scheduler needs to be consulted again.
func (s *Scheduler) CyclesToNext() uint64 {
	if len(s.heap) == 0 {
		// no pending event: let the caller pick its own default budget
		// (typically one scanline's worth of cycles) rather than stalling
		// forever.
		return 0
	}
	head := s.heap[0]
	if head.Time <= s.cycles {
		return 0
	}
	return head.Time - s.cycles
}

// Rebase subtracts the current cycle from every pending entry and from the
// scheduler's own clock, once the clock has grown large enough to risk
// overflow. It returns the amount subtracted and whether a
// rebase actually occurred; the caller must apply the same subtraction to
// every CPU cycle counter atomically with this call so that relative
// distances — and therefore CyclesToNext's budgets — are unaffected.
func (s *Scheduler) Rebase() (delta uint64, did bool) {
	if s.cycles < rebaseThreshold {
		return 0, false
	}
	delta = s.cycles
	for i := range s.heap {
		s.heap[i].Time -= delta
	}
	s.cycles = 0
	return delta, true
}

// Len reports the number of pending entries. Exposed for diagnostics.
func (s *Scheduler) Len() int { return len(s.heap) }

// Entries returns a snapshot copy of the pending entries, earliest first is
// not guaranteed (heap order only). Used by diagnostics and save-state.
func (s *Scheduler) Entries() []Entry {
	out := make([]Entry, len(s.heap))
	copy(out, s.heap)
	return out
}

// Restore replaces the scheduler's state wholesale. Used by save-state
// deserialize.
func (s *Scheduler) Restore(cycles uint64, entries []Entry) {
	s.cycles = cycles
	s.heap = append(entryHeap(nil), entries...)
	heap.Init(&s.heap)
}

// entryHeap implements container/heap.Interface ordered by ascending Time.
type entryHeap []Entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].Time < h[j].Time }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
