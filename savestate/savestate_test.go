package savestate_test

import (
	"testing"

	"github.com/retrobus/ndscore/cpu"
	"github.com/retrobus/ndscore/cpu/registers"
	"github.com/retrobus/ndscore/memory"
	"github.com/retrobus/ndscore/savestate"
	"github.com/retrobus/ndscore/scheduler"
)

func TestEncodeDecodeRoundTrips(t *testing.T) {
	want := &savestate.State{
		SchedulerCycles: 12345,
		SchedulerEntries: []scheduler.Entry{
			{Tag: scheduler.NewTag(scheduler.HBlank), Time: 12400},
		},
		ARM9: cpu.CoreState{
			R:      [16]uint32{0: 1, 13: 0x02380000, 15: 0x08000000},
			CPSR:   registers.PSR{Mode: registers.ModeSVC, I: true},
			Cycles: 99,
		},
		MainRAM:  []byte{1, 2, 3, 4},
		WRAMCNT:  0x02,
		EXMEMCNT: 0x0080,
		Math:     memory.MathUnitState{DivResult: -1, DivRemain: 7},
		Backup:   []byte{0xFF, 0xFF, 0xFF},
	}

	encoded, err := savestate.Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := savestate.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.SchedulerCycles != want.SchedulerCycles {
		t.Fatalf("SchedulerCycles: got %d, want %d", got.SchedulerCycles, want.SchedulerCycles)
	}
	if len(got.SchedulerEntries) != 1 || got.SchedulerEntries[0] != want.SchedulerEntries[0] {
		t.Fatalf("SchedulerEntries did not round-trip: got %+v", got.SchedulerEntries)
	}
	if got.ARM9.R != want.ARM9.R {
		t.Fatalf("ARM9.R did not round-trip: got %+v, want %+v", got.ARM9.R, want.ARM9.R)
	}
	if got.ARM9.CPSR != want.ARM9.CPSR {
		t.Fatalf("ARM9.CPSR did not round-trip: got %+v, want %+v", got.ARM9.CPSR, want.ARM9.CPSR)
	}
	if got.WRAMCNT != want.WRAMCNT || got.EXMEMCNT != want.EXMEMCNT {
		t.Fatal("WRAM/EXMEM control bits did not round-trip")
	}
	if got.Math != want.Math {
		t.Fatalf("Math did not round-trip: got %+v, want %+v", got.Math, want.Math)
	}
	if string(got.Backup) != string(want.Backup) {
		t.Fatal("Backup did not round-trip")
	}
}
