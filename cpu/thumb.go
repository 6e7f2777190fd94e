package cpu

// thumbHandler decodes and executes one Thumb opcode.
type thumbHandler func(c *Core, opcode uint16, addr uint32)

// thumbTable is indexed by bits[15:8], a dispatch table built once from
// classifyThumb rather than a hand-written if/else chain.
var thumbTable [256]thumbHandler

func init() {
	for i := range thumbTable {
		thumbTable[i] = classifyThumb(uint16(i))
	}
}

// classifyThumb maps the top byte of a Thumb opcode to its format's
// handler, following the format layout the ARM Architecture Reference
// Manual numbers 1 through 19.
func classifyThumb(b15_8 uint16) thumbHandler {
	switch {
	case b15_8>>5 == 0x0 && (b15_8>>3)&0x3 != 0x3:
		return execMoveShiftedRegister
	case b15_8>>5 == 0x0 && (b15_8>>3)&0x3 == 0x3:
		return execAddSubtract
	case b15_8>>5 == 0x1:
		return execMovCmpAddSubImm
	case b15_8>>2 == 0x10:
		return execALUOperations
	case b15_8>>2 == 0x11:
		return execHiRegisterOps
	case b15_8>>3 == 0x9:
		return execPCRelativeLoad
	case b15_8>>4 == 0x5 && b15_8&0x9 == 0x1:
		return execLoadStoreSignExtended
	case b15_8>>4 == 0x5:
		return execLoadStoreRegisterOffset
	case b15_8>>5 == 0x3:
		return execLoadStoreImmOffset
	case b15_8>>4 == 0x8:
		return execLoadStoreHalfword
	case b15_8>>4 == 0x9:
		return execSPRelativeLoadStore
	case b15_8>>4 == 0xA:
		return execLoadAddress
	case b15_8 == 0xB0:
		return execAddOffsetToSP
	case b15_8>>4 == 0xB && (b15_8>>1)&0x3 == 0x2:
		return execPushPopRegisters
	case b15_8>>4 == 0xC:
		return execMultipleLoadStore
	case b15_8>>4 == 0xD && (b15_8&0xF) == 0xF:
		return execSoftwareInterruptThumb
	case b15_8>>4 == 0xD:
		return execConditionalBranch
	case b15_8>>4 == 0xE && b15_8&0x8 == 0:
		return execUnconditionalBranch
	case b15_8>>4 == 0xE && b15_8&0x8 != 0:
		return execBLXSuffix // ARMv5-only; ARMv4 treats it as BLX-unsupported, see execBLXSuffix
	case b15_8>>4 == 0xF:
		return execLongBranchWithLink
	default:
		return execThumbUndefined
	}
}

func (c *Core) executeThumb(opcode uint16, addr uint32) {
	thumbTable[opcode>>8](c, opcode, addr)
}

func execThumbUndefined(c *Core, opcode uint16, addr uint32) {
	c.UndefinedInstruction(addr)
}
