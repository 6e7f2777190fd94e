package video3d

// Registers exposes the geometry engine's command ports on the bus: the
// general GXFIFO packed-command port, and the direct one-register-per-
// command ports real hardware also provides for commands issued one at a
// time rather than packed four-to-a-word. Both paths end up at
// Engine.Push/drain; a direct register write synthesizes a single-opcode
// command word (the other three packed-opcode slots sent as zero, which
// decodes to no-ops) followed by its parameter words.
type Registers struct {
	e *Engine

	// pending accumulates the bytes of a multi-byte register write until a
	// full 32-bit word has landed, since the bus writes one byte at a time.
	pending   map[uint32]*wordAssembly
}

type wordAssembly struct {
	bytes [4]byte
	have  [4]bool
}

func NewRegisters(e *Engine) *Registers {
	return &Registers{e: e, pending: make(map[uint32]*wordAssembly)}
}

// portOpcode maps a direct-register base offset (base-relative to
// wherever this Registers is registered on the bus) to the opcode it
// issues. Each port is 4 bytes per parameter word, sized by
// paramWords[opcode] (0-sized commands still occupy one 4-byte word on
// real hardware, issued on any write to their port).
var portOpcode = map[uint32]Opcode{
	0x40:  OpMtxMode,
	0x44:  OpMtxPush,
	0x48:  OpMtxPop,
	0x54:  OpMtxIdentity,
	0x58:  OpMtxLoad4x4,
	0x60:  OpMtxMul4x4,
	0x80:  OpColor,
	0x88:  OpTexCoord,
	0x8C:  OpVtx16,
	0xA4:  OpPolygonAttr,
	0x100: OpBeginVtxs,
	0x104: OpEndVtxs,
	0x140: OpSwapBuffers,
	0x180: OpViewport,
}

const gxfifoAddr = 0x00
const gxstatAddr = 0x200

// WindowSize is the base-relative span this Registers needs registered
// on the bus (spans the GXFIFO port, every direct command port, and
// GXSTAT).
const WindowSize = gxstatAddr + 4

func (r *Registers) ReadByte(addr uint32) (byte, bool) {
	// GXSTAT and the command ports are write-oriented; only GXSTAT's
	// low byte (FIFO empty/busy, approximated since this FIFO drains
	// synchronously) is meaningfully readable.
	if addr == gxstatAddr {
		status := byte(0)
		status |= 1 << 0 // box test / fifo ready, always set: Push drains synchronously
		status |= 1 << 2 // GXFIFO empty, for the same reason
		return status, true
	}
	return 0, false
}

func (r *Registers) WriteByte(addr uint32, v byte) bool {
	if addr >= gxfifoAddr && addr < gxfifoAddr+4 {
		return r.assembleAndPush(gxfifoAddr, addr-gxfifoAddr, v, nil)
	}
	for base, op := range portOpcode {
		n := paramWords[op]
		span := uint32(4 * (n + 1))
		if addr < base || addr >= base+span {
			continue
		}
		rel := addr - base
		wordIdx := rel / 4
		byteIdx := rel % 4
		key := base + wordIdx*4
		opToSend := op
		if wordIdx > 0 {
			opToSend = 0 // parameter word, not a new command
		}
		return r.assembleAndPush(key, byteIdx, v, &opToSend)
	}
	return false
}

// assembleAndPush collects the 4 bytes of one 32-bit register word and,
// once complete, pushes it to the engine. For the first word of a direct
// port (firstOp non-nil and byteIdx==0 relative to that port's opcode
// slot), the low byte of the assembled word is overwritten with the
// command's opcode so Push's decode finds it there, matching how real
// direct-port writes synthesize the FIFO command byte.
func (r *Registers) assembleAndPush(key uint32, byteIdx uint32, v byte, firstOp *Opcode) bool {
	w, ok := r.pending[key]
	if !ok {
		w = &wordAssembly{}
		r.pending[key] = w
	}
	w.bytes[byteIdx] = v
	w.have[byteIdx] = true
	for i := 0; i < 4; i++ {
		if !w.have[i] {
			return true
		}
	}
	word := uint32(w.bytes[0]) | uint32(w.bytes[1])<<8 | uint32(w.bytes[2])<<16 | uint32(w.bytes[3])<<24
	delete(r.pending, key)
	if firstOp != nil && *firstOp != 0 {
		word = (word &^ 0xFF) | uint32(*firstOp)
	}
	r.e.Push(word)
	return true
}
