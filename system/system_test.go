package system_test

import (
	"bytes"
	"testing"

	"github.com/retrobus/ndscore/romfile"
	"github.com/retrobus/ndscore/savestate"
	"github.com/retrobus/ndscore/system"
)

// newTestConfig builds the minimal set of boot images New requires: correctly
// sized BIOS/firmware blobs and a ROM with a valid header whose ARM9/ARM7
// segments fit inside the image. Opcode content is left zeroed, which ARM
// decodes as a condition-EQ-gated AND instruction that never fires since the
// reset CPSR carries Z=0 — effectively a NOP stream that lets the step loop
// run without hitting undefined-instruction territory.
func newTestConfig() system.Config {
	rom := make([]byte, romfile.HeaderSize+0x1000)
	// ARM9: offset 0x20, entry 0x24, ram addr 0x28, size 0x2C
	putLE32(rom, 0x20, romfile.HeaderSize)
	putLE32(rom, 0x24, 0x02000000)
	putLE32(rom, 0x28, 0x02000000)
	putLE32(rom, 0x2C, 0x100)
	// ARM7: offset 0x30, entry 0x34, ram addr 0x38, size 0x3C
	putLE32(rom, 0x30, romfile.HeaderSize+0x100)
	putLE32(rom, 0x34, 0x02380000)
	putLE32(rom, 0x38, 0x02380000)
	putLE32(rom, 0x3C, 0x100)

	return system.Config{
		BIOS7:              make([]byte, romfile.BIOS7Size),
		BIOS9:              make([]byte, romfile.BIOS9Size),
		Firmware:           make([]byte, 0x40000),
		ROM:                rom,
		HostSampleRate:     32768,
		AudioQueueCapacity: 4096,
	}
}

func putLE32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}

func TestNewBuildsASystem(t *testing.T) {
	s, err := system.New(newTestConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s == nil {
		t.Fatal("New returned a nil system with no error")
	}
}

func TestNewRejectsUndersizedBIOS(t *testing.T) {
	cfg := newTestConfig()
	cfg.BIOS7 = make([]byte, 10)
	if _, err := system.New(cfg); err == nil {
		t.Fatal("expected an error constructing with a short bios7 image")
	}
}

func TestStepReachesEndOfFrame(t *testing.T) {
	s, err := system.New(newTestConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !s.Step() {
		t.Fatal("Step should report true once the frame boundary fires")
	}
}

func TestTopScreenFollowsPOWCNT1(t *testing.T) {
	s, err := system.New(newTestConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// POWCNT1 bit 15 selects which engine drives the physical top screen;
	// the reset default is zero, so engine B starts on top.
	if s.TopScreenIsEngineA() {
		t.Fatal("expected engine B mapped to the top screen before POWCNT1 is written")
	}
	s.WriteByte(1, 0x80) // POWCNT1 bit 15, high byte bit 7
	if !s.TopScreenIsEngineA() {
		t.Fatal("expected engine A mapped to the top screen after setting POWCNT1 bit 15")
	}
}

func TestInputRoundTrips(t *testing.T) {
	s, err := system.New(newTestConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetKeyInput(0x03FF)
	s.Touch(100, 80)
	s.ReleaseTouch()
	s.HingeOpen(true)
}

func TestDrainAudioStartsEmpty(t *testing.T) {
	s, err := system.New(newTestConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frames, dropped := s.DrainAudio()
	if len(frames) != 0 || dropped != 0 {
		t.Fatalf("expected an empty queue before any Step, got %d frames, %d dropped", len(frames), dropped)
	}
}

func TestSaveStateRoundTrips(t *testing.T) {
	s, err := system.New(newTestConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetKeyInput(0x0201)
	for i := 0; i < 64; i++ {
		s.Step()
	}

	before := s.SaveState()
	encoded, err := savestate.Encode(before)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	s2, err := system.New(newTestConfig())
	if err != nil {
		t.Fatalf("New (second system): %v", err)
	}
	decoded, err := savestate.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	s2.LoadState(decoded)

	after := s2.SaveState()
	if before.SchedulerCycles != after.SchedulerCycles {
		t.Fatalf("scheduler cycles: got %d, want %d", after.SchedulerCycles, before.SchedulerCycles)
	}
	if before.ARM9.R != after.ARM9.R {
		t.Fatalf("arm9 registers did not round-trip: got %+v, want %+v", after.ARM9.R, before.ARM9.R)
	}
	if before.ARM7.R != after.ARM7.R {
		t.Fatalf("arm7 registers did not round-trip: got %+v, want %+v", after.ARM7.R, before.ARM7.R)
	}
	if !bytes.Equal(before.MainRAM, after.MainRAM) {
		t.Fatal("main RAM did not round-trip")
	}
	if !bytes.Equal(before.Backup, after.Backup) {
		t.Fatal("cartridge backup did not round-trip")
	}

	// a restored system must still step without panicking.
	s2.Step()
}
