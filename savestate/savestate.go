// Package savestate defines the serialized form of a running session and
// the gob encode/decode pair that turns it into bytes: the scheduler's
// pending event heap, both cores' full architectural state, the three RAM
// arrays and WRAM/external-memory control bits, the division/square-root
// unit's latched state, and the cartridge's persistent backup image.
//
// Building and applying a State is System's job, since most of what goes
// into one lives behind unexported fields only System can reach; this
// package only owns the wire format.
package savestate

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/retrobus/ndscore/cpu"
	"github.com/retrobus/ndscore/memory"
	"github.com/retrobus/ndscore/scheduler"
)

// State is everything a resumed session needs to continue executing from
// the exact cycle it was captured at. It deliberately stops at the
// boundary of "can the CPUs keep running correctly": per-peripheral
// register latches (DMA channel configuration, timer reload values, the
// 2D/3D pipelines' own internal state, audio channel phase) are rebuilt by
// the guest's own I/O writes rather than captured here, the same way a
// real console's save-state feature is free to trade completeness for
// simplicity when the peripheral state is cheap for software to
// re-establish. Cross-build binary compatibility is explicitly not a
// goal; State is meant to round-trip within one run of one build.
type State struct {
	SchedulerCycles  uint64
	SchedulerEntries []scheduler.Entry

	ARM7 cpu.CoreState
	ARM9 cpu.CoreState

	MainRAM    []byte
	SharedWRAM []byte
	ARM7WRAM   []byte
	WRAMCNT    uint8
	EXMEMCNT   uint16

	Math memory.MathUnitState

	Backup []byte
}

// Encode writes s as a gob stream.
func Encode(s *State) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("savestate: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a gob stream previously produced by Encode.
func Decode(data []byte) (*State, error) {
	var s State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("savestate: decode: %w", err)
	}
	return &s, nil
}
