package ipc_test

import (
	"testing"

	"github.com/retrobus/ndscore/ipc"
)

func TestPingPongSixteenValues(t *testing.T) {
	b := ipc.New(nil, nil)
	for i := uint32(0); i < 16; i++ {
		if !b.Send7(i * 3) {
			t.Fatalf("expected push %d to succeed", i)
		}
	}
	if !b.Full9() {
		t.Fatalf("expected the receiving fifo to report full after 16 pushes")
	}
	for i := uint32(0); i < 16; i++ {
		v, ok := b.Receive9()
		if !ok || v != i*3 {
			t.Fatalf("pop %d: got %d ok=%v, want %d", i, v, ok, i*3)
		}
	}
	if !b.Empty9() {
		t.Fatalf("expected fifo empty after draining all 16 values")
	}
}

func TestOverflowSetsStickyError(t *testing.T) {
	b := ipc.New(nil, nil)
	for i := 0; i < 16; i++ {
		b.Send7(uint32(i))
	}
	if b.Send7(99) {
		t.Fatalf("expected the 17th push to fail")
	}
	if !b.Error9() {
		t.Fatalf("expected sticky overflow error on the receiving side")
	}
}

func TestUnderflowSetsStickyError(t *testing.T) {
	b := ipc.New(nil, nil)
	if _, ok := b.Receive7(); ok {
		t.Fatalf("expected pop from empty fifo to fail")
	}
	if !b.Error7() {
		t.Fatalf("expected sticky underflow error")
	}
}

func TestClearResetsContentsAndError(t *testing.T) {
	b := ipc.New(nil, nil)
	b.Receive7() // underflow, sets error
	b.Send9(42)
	b.Clear7()
	if b.Error7() {
		t.Fatalf("expected Clear7 to reset the sticky error flag")
	}
}

func TestSyncRegisterCrossReads(t *testing.T) {
	b := ipc.New(nil, nil)
	b.WriteSync7(0xA)
	b.WriteSync9(0x5)
	if b.ReadSync9() != 0xA {
		t.Fatalf("expected ARM9 to observe ARM7's sync nibble")
	}
	if b.ReadSync7() != 0x5 {
		t.Fatalf("expected ARM7 to observe ARM9's sync nibble")
	}
}

func TestSyncIRQGenerateFiresRemote(t *testing.T) {
	fired := false
	b := ipc.New(nil, func() { fired = true })
	b.SetIRQOnSync9(true)
	b.WriteSync7(0x1 | (1 << 5))
	if !fired {
		t.Fatalf("expected writing sync with the generate-irq bit set to fire the remote IRQ")
	}
}
