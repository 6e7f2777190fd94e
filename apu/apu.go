// Package apu implements the 16-channel audio mixer: per-channel sample
// fetch across five wave formats, the volume/pan quirks shared by every
// channel, end-of-sample behaviour, and the CYCLES_PER_SAMPLE-interval
// mix-down and host-rate resampling pipeline.
//
// The shape follows a small per-channel struct advanced every CPU step,
// drained into a host-rate mixer on a fixed interval, with a separate
// resample stage doing nothing but the final sample combination —
// `Channel`/`Mixer`/`resample` kept as separate, separately testable
// pieces rather than one monolithic mixer type.
package apu

// ChannelCount is fixed by hardware.
const ChannelCount = 16

// CyclesPerSample is the fixed interval, in CPU cycles, at which the
// mixer produces one native-rate sample.
const CyclesPerSample = 1024

// Format selects how a channel's raw sample bytes are interpreted.
type Format int

const (
	FormatPCM8 Format = iota
	FormatPCM16
	FormatIMAADPCM
	FormatPSG
	FormatNoise
)

// VolumeDiv is one of the four hardware volume-division shifts: divide by
// 1, 2, 4, or 16.
type VolumeDiv int

const (
	Div1 VolumeDiv = iota
	Div2
	Div4
	Div16
)

func (d VolumeDiv) shift() uint {
	switch d {
	case Div2:
		return 1
	case Div4:
		return 2
	case Div16:
		return 4
	default:
		return 0
	}
}

// RepeatMode selects end-of-sample behaviour: loop back to LoopStart, stop
// and go silent, or halt awaiting the next manual key-on write.
type RepeatMode int

const (
	RepeatOneShot RepeatMode = iota
	RepeatLoop
	RepeatManual
)

// expand7Bit implements the "127 is treated as 128" quirk shared by the
// volume multiplier and the pan control, returning the
// effective 0..128 scale.
func expand7Bit(v uint8) int {
	if v == 127 {
		return 128
	}
	return int(v)
}
