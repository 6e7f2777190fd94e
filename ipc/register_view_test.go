package ipc

import "testing"

func TestView9SendReachesView7Recv(t *testing.T) {
	b := New(nil, nil)
	v7 := NewView7(b)
	v9 := NewView9(b)

	v9.WriteByte(4, 0x78)
	v9.WriteByte(5, 0x56)
	v9.WriteByte(6, 0x34)
	v9.WriteByte(7, 0x12)

	var got uint32
	for i := uint32(0); i < 4; i++ {
		bv, ok := v7.ReadByte(8 + i)
		if !ok {
			t.Fatalf("expected recv byte %d to be readable", i)
		}
		got |= uint32(bv) << (8 * i)
	}
	if got != 0x12345678 {
		t.Fatalf("got %#x want 0x12345678", got)
	}
}

func TestView7SyncWriteVisibleToView9(t *testing.T) {
	b := New(nil, nil)
	v7 := NewView7(b)
	v9 := NewView9(b)

	v7.WriteByte(0, 0x0A)
	got, _ := v9.ReadByte(0)
	if got != 0x0A {
		t.Fatalf("got %#x want 0x0a", got)
	}
}

func TestFIFOCntClearBitResetsError(t *testing.T) {
	b := New(nil, nil)
	v9 := NewView9(b)
	for i := 0; i < 17; i++ {
		b.Send7(uint32(i))
	}
	if !b.Error9() {
		t.Fatalf("expected sticky overflow error")
	}
	v9.WriteByte(3, 1<<7)
	if b.Error9() {
		t.Fatalf("expected clear bit to reset sticky error")
	}
}
