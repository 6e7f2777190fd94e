package apu

import (
	"os"
	"testing"
)

func TestExpand7BitTreats127As128(t *testing.T) {
	if got := expand7Bit(127); got != 128 {
		t.Fatalf("expand7Bit(127) = %d, want 128", got)
	}
	if got := expand7Bit(64); got != 64 {
		t.Fatalf("expand7Bit(64) = %d, want 64", got)
	}
	if got := expand7Bit(0); got != 0 {
		t.Fatalf("expand7Bit(0) = %d, want 0", got)
	}
}

func TestVolumeDivShift(t *testing.T) {
	cases := []struct {
		d    VolumeDiv
		want uint
	}{
		{Div1, 0}, {Div2, 1}, {Div4, 2}, {Div16, 4},
	}
	for _, c := range cases {
		if got := c.d.shift(); got != c.want {
			t.Fatalf("%v.shift() = %d, want %d", c.d, got, c.want)
		}
	}
}

func TestChannelPCM8SignExtendsAndScales(t *testing.T) {
	c := &Channel{
		Enabled: true,
		Format:  FormatPCM8,
		Data:    []byte{0x7F, 0x80},
		Length:  2,
		Repeat:  RepeatOneShot,
		TimerReload: 0xFFFF,
		VolumeMul: 127,
	}
	c.Reset()
	c.Step(1)
	if c.current != 0x7F*256 {
		t.Fatalf("current = %d, want %d", c.current, 0x7F*256)
	}
	s := c.Sample()
	if s != int32(c.current) {
		t.Fatalf("Sample() = %d, want %d (full volume at 127->128)", s, c.current)
	}
}

func TestChannelPCM16Passthrough(t *testing.T) {
	c := &Channel{
		Enabled: true,
		Format:  FormatPCM16,
		Data:    []byte{0x34, 0x12},
		Length:  1,
		Repeat:  RepeatOneShot,
		TimerReload: 0xFFFF,
		VolumeMul: 127,
	}
	c.Reset()
	c.Step(1)
	if c.current != 0x1234 {
		t.Fatalf("current = %#x, want 0x1234", c.current)
	}
}

func TestChannelOneShotDisablesAtEnd(t *testing.T) {
	c := &Channel{
		Enabled: true,
		Format:  FormatPCM8,
		Data:    []byte{0x01},
		Length:  1,
		Repeat:  RepeatOneShot,
		TimerReload: 0xFFFF,
	}
	c.Reset()
	c.Step(1) // consumes the only sample, samplePos -> 1
	c.Step(1) // samplePos(1) >= Length(1): one-shot disables
	if c.Enabled {
		t.Fatalf("channel should have disabled itself after one-shot end")
	}
}

func TestChannelLoopRepeatsFromLoopStart(t *testing.T) {
	c := &Channel{
		Enabled: true,
		Format:  FormatPCM8,
		Data:    []byte{0x10, 0x20, 0x30},
		Length:  3,
		LoopStart: 1,
		Repeat:  RepeatLoop,
		TimerReload: 0xFFFF,
	}
	c.Reset()
	c.Step(1) // sample 0
	c.Step(1) // sample 1
	c.Step(1) // sample 2
	c.Step(1) // wraps to LoopStart(1)
	if c.current != int16(0x20)*256 {
		t.Fatalf("current after loop = %d, want %d", c.current, int16(0x20)*256)
	}
}

func TestChannelPanWeightsSplitEvenlyAtCenter(t *testing.T) {
	c := &Channel{Pan: 64}
	l, r := c.PanWeights()
	if l != 64 || r != 64 {
		t.Fatalf("PanWeights() = (%d,%d), want (64,64)", l, r)
	}
}

func TestChannelPanWeightsFullRightAt127(t *testing.T) {
	c := &Channel{Pan: 127}
	l, r := c.PanWeights()
	if l != 0 || r != 128 {
		t.Fatalf("PanWeights() = (%d,%d), want (0,128) under the 127->128 quirk", l, r)
	}
}

func TestADPCMDecodeUsesHeaderSeed(t *testing.T) {
	c := &Channel{
		Format: FormatIMAADPCM,
		Data:   []byte{0x00, 0x00, 0x00, 0x00, 0x05},
		Length: 2,
	}
	c.Reset()
	if c.adpcmPredictor != 0 || c.adpcmStepIndex != 0 {
		t.Fatalf("Reset() predictor/stepIndex = %d/%d, want 0/0", c.adpcmPredictor, c.adpcmStepIndex)
	}
	first := c.decodeADPCMNibble()
	if first == 0 {
		t.Fatalf("decodeADPCMNibble produced no movement from a non-zero nibble")
	}
}

func TestMixerDropsFramesWhenQueueFull(t *testing.T) {
	m := NewMixer(44100, 1)
	m.Channels[0] = Channel{
		Enabled: true,
		Format:  FormatPSG,
		Duty:    3,
		TimerReload: 0xFFFF,
		VolumeMul: 127,
	}
	m.Channels[0].Reset()

	for i := 0; i < CyclesPerSample*4; i++ {
		m.Step(1)
	}
	if m.Dropped() == 0 {
		t.Fatalf("expected dropped frames once the 1-frame queue filled")
	}
}

func TestMixerSkipsAltSourceChannels(t *testing.T) {
	m := NewMixer(44100, 64)
	m.Channels[1].Enabled = true
	m.Channels[1].AltSource = true
	m.Channels[1].Format = FormatPSG
	m.Channels[1].Duty = 7
	m.Channels[1].TimerReload = 1
	m.Channels[1].VolumeMul = 127
	m.Channels[1].Reset()

	m.Step(CyclesPerSample * 2)
	frames := m.Drain()
	if len(frames) == 0 {
		t.Fatalf("expected at least one resampled frame")
	}
	for _, f := range frames {
		if f.Left != 0 || f.Right != 0 {
			t.Fatalf("alt-source channel leaked into the mix: %+v", f)
		}
	}
}

func TestWAVCaptureWritesNonEmptyFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "capture-*.wav")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	cap := NewWAVCapture(f, 44100)
	if err := cap.Write([]Frame{{Left: 100, Right: -100}, {Left: 200, Right: -200}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := cap.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected a non-empty WAV file")
	}
}
