package apu

// Channel is one of the 16 mixer voices: its format, source data, timing,
// and the volume/pan/repeat state shared generically across every format.
type Channel struct {
	Enabled    bool
	Format     Format
	Data       []byte // raw sample bytes (PCM8/16), ADPCM stream, or unused for PSG/Noise
	LoopStart  uint32 // sample index
	Length     uint32 // sample count
	Repeat     RepeatMode
	TimerReload uint16 // channel timer reload; fetch advances every 0x10000-cycle overflow
	VolumeDiv  VolumeDiv
	VolumeMul  uint8 // 7-bit
	Pan        uint8 // 7-bit
	Duty       uint8 // PSG only: 3-bit duty selector (0..7 of 8ths high)
	AltSource  bool  // this channel is routed as channel 1/3's "alternative" source

	samplePos    uint32
	timerCounter uint16
	current      int16

	adpcmPredictor int32
	adpcmStepIndex int
	adpcmHighNibble bool

	noiseLFSR uint16
	dutyPos   int
}

// Reset latches playback to the start of the sample and re-seeds format
// specific decoder state (ADPCM predictor/step index are read from the
// first 4 bytes of Data on real hardware).
func (c *Channel) Reset() {
	c.samplePos = 0
	c.timerCounter = c.TimerReload
	c.dutyPos = 0
	c.noiseLFSR = 0x7FFF
	if c.Format == FormatIMAADPCM && len(c.Data) >= 4 {
		c.adpcmPredictor = int32(int16(uint16(c.Data[0]) | uint16(c.Data[1])<<8))
		c.adpcmStepIndex = int(c.Data[2])
		if c.adpcmStepIndex > len(adpcmStepTable)-1 {
			c.adpcmStepIndex = len(adpcmStepTable) - 1
		}
		c.adpcmHighNibble = false
	}
}

// Step advances the channel by cpuCycles CPU cycles, fetching as many new
// samples as the channel's timer overflows dictate.
func (c *Channel) Step(cpuCycles int) {
	if !c.Enabled {
		return
	}
	for i := 0; i < cpuCycles; i++ {
		c.timerCounter++
		if c.timerCounter == 0 {
			c.timerCounter = c.TimerReload
			c.advance()
		}
	}
}

func (c *Channel) advance() {
	switch c.Format {
	case FormatPSG:
		c.dutyPos = (c.dutyPos + 1) % 8
		c.current = c.psgSample()
		return
	case FormatNoise:
		c.stepLFSR()
		c.current = c.noiseSample()
		return
	}

	if c.samplePos >= c.Length {
		switch c.Repeat {
		case RepeatLoop:
			c.samplePos = c.LoopStart
		case RepeatManual:
			return // holds last sample until the next register write
		default:
			c.Enabled = false
			c.current = 0
			return
		}
	}

	switch c.Format {
	case FormatPCM8:
		if int(c.samplePos) < len(c.Data) {
			c.current = int16(int8(c.Data[c.samplePos])) * 256
		}
	case FormatPCM16:
		off := int(c.samplePos) * 2
		if off+1 < len(c.Data) {
			c.current = int16(uint16(c.Data[off]) | uint16(c.Data[off+1])<<8)
		}
	case FormatIMAADPCM:
		c.current = c.decodeADPCMNibble()
	}
	c.samplePos++
}

// psgSample implements the square-wave format: high for Duty+1 eighths of
// the period, low otherwise.
func (c *Channel) psgSample() int16 {
	if c.dutyPos < int(c.Duty)+1 {
		return 0x7FFF
	}
	return -0x8000
}

func (c *Channel) stepLFSR() {
	bit := (c.noiseLFSR ^ (c.noiseLFSR >> 1)) & 1
	c.noiseLFSR = (c.noiseLFSR >> 1) | (bit << 14)
}

// noiseSample implements the 15-bit LFSR noise format.
func (c *Channel) noiseSample() int16 {
	if c.noiseLFSR&1 != 0 {
		return -0x8000
	}
	return 0x7FFF
}

// Sample returns the channel's current decoded sample after volume
// division and the 7-bit volume multiplier, pre-pan.
func (c *Channel) Sample() int32 {
	if !c.Enabled {
		return 0
	}
	v := int32(c.current) >> c.VolumeDiv.shift()
	return v * int32(expand7Bit(c.VolumeMul)) / 128
}

// PanWeights returns the left/right mix weights (0..128) derived from the
// 7-bit pan control.
func (c *Channel) PanWeights() (left, right int32) {
	p := expand7Bit(c.Pan)
	return int32(128 - p), int32(p)
}
