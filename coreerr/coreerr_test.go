package coreerr_test

import (
	"testing"

	"github.com/retrobus/ndscore/coreerr"
)

func TestCategoryOf(t *testing.T) {
	err := coreerr.Errorf(coreerr.Configuration, "missing bios7")
	if coreerr.CategoryOf(err) != coreerr.Configuration {
		t.Fatalf("expected Configuration category")
	}
}

func TestIsAndHas(t *testing.T) {
	inner := coreerr.Errorf(coreerr.IOWarning, "unmapped read at %#08x", 0x04123456)
	outer := coreerr.Errorf(coreerr.Programmer, "while servicing DMA: %w", inner)

	if !coreerr.Is(inner, "unmapped read at %#08x") {
		t.Fatalf("expected Is to match inner pattern")
	}
	if coreerr.Is(outer, "unmapped read at %#08x") {
		t.Fatalf("Is should not match through nesting")
	}
	if !coreerr.Has(outer, "unmapped read at %#08x") {
		t.Fatalf("expected Has to find nested pattern")
	}
}

func TestFatalPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected Fatal to panic")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected panic value to be an error")
		}
		if coreerr.CategoryOf(err) != coreerr.Programmer {
			t.Fatalf("expected Programmer category")
		}
	}()
	coreerr.Fatal("unimplemented opcode %#04x at pc=%#08x", 0xabcd, 0x02000000)
}
