package apu

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVCapture drains Mixer frames into a 16-bit stereo PCM WAV file. It
// exists for test tooling and offline inspection, not for the emulation
// path itself.
type WAVCapture struct {
	enc *wav.Encoder
}

// NewWAVCapture opens a WAV encoder over w at the mixer's configured host
// rate.
func NewWAVCapture(w io.WriteSeeker, hostRate int) *WAVCapture {
	return &WAVCapture{
		enc: wav.NewEncoder(w, hostRate, 16, 2, 1),
	}
}

// Write appends frames as interleaved stereo PCM16 samples.
func (c *WAVCapture) Write(frames []Frame) error {
	if len(frames) == 0 {
		return nil
	}
	data := make([]int, 0, len(frames)*2)
	for _, f := range frames {
		data = append(data, int(f.Left), int(f.Right))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: c.enc.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	return c.enc.Write(buf)
}

// Close flushes the WAV header and closes the underlying encoder.
func (c *WAVCapture) Close() error {
	return c.enc.Close()
}
