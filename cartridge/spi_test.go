package cartridge

import "testing"

func TestFirmwareReadStreamsFromAddress(t *testing.T) {
	data := make([]byte, 0x100)
	for i := range data {
		data[i] = byte(i)
	}
	fw := NewFirmware(data)

	fw.Transfer(0x03)
	fw.Transfer(0x00)
	fw.Transfer(0x00)
	fw.Transfer(0x10)

	for i := 0; i < 4; i++ {
		got := fw.Transfer(0x00)
		if want := byte(0x10 + i); got != want {
			t.Fatalf("byte %d: got %#x want %#x", i, got, want)
		}
	}
}

func TestFirmwareResetReturnsToIdle(t *testing.T) {
	fw := NewFirmware(make([]byte, 16))
	fw.Transfer(0x03)
	fw.Transfer(0x00)
	fw.Transfer(0x00)
	fw.Transfer(0x00)
	fw.Reset()
	// After reset a stray byte shouldn't be interpreted as still-streaming.
	if got := fw.Transfer(0x00); got != 0 {
		t.Fatalf("expected idle no-op response, got %#x", got)
	}
}

func TestTouchscreenReleasedReportsMax(t *testing.T) {
	ts := NewTouchscreen()
	ts.SetTouch(0x800, 0x800, false)
	hi := ts.Transfer(touchChannelX << 4)
	lo := ts.Transfer(0x00)
	got := uint16(hi)<<5 | uint16(lo)>>3
	if got != 0xFFF {
		t.Fatalf("released touch: got %#x want 0xfff", got)
	}
}

func TestTouchscreenPressedReportsPosition(t *testing.T) {
	ts := NewTouchscreen()
	ts.SetTouch(0x123, 0x456, true)

	hi := ts.Transfer(touchChannelX << 4)
	lo := ts.Transfer(0x00)
	gotX := uint16(hi)<<5 | uint16(lo)>>3
	if gotX != 0x123 {
		t.Fatalf("x sample: got %#x want 0x123", gotX)
	}

	hi = ts.Transfer(touchChannelY << 4)
	lo = ts.Transfer(0x00)
	gotY := uint16(hi)<<5 | uint16(lo)>>3
	if gotY != 0x456 {
		t.Fatalf("y sample: got %#x want 0x456", gotY)
	}
}

func TestSPIBusRoutesToSelectedDevice(t *testing.T) {
	fw := NewFirmware([]byte{0xAA})
	ts := NewTouchscreen()
	bus := NewSPIBus(fw, ts, nil)

	bus.SelectDevice(DeviceFirmware)
	bus.Transfer(0x03)
	bus.Transfer(0x00)
	bus.Transfer(0x00)
	got := bus.Transfer(0x00)
	got = bus.Transfer(0x00)
	if got != 0xAA {
		t.Fatalf("expected firmware byte 0xAA, got %#x", got)
	}
}

func TestRTCReportsBCDFields(t *testing.T) {
	rtc := NewRTC(func() (int, int, int, int, int, int) {
		return 2026, 7, 30, 14, 5, 9
	})
	got := rtc.DateTimeBCD()
	want := [7]byte{0x26, 0x07, 0x30, 0x00, 0x14, 0x05, 0x09}
	if got != want {
		t.Fatalf("got %x want %x", got, want)
	}
}
