package cpu

import "math/bits"

// execArmV5DSPAdd covers the ARMv5TE saturated-arithmetic family that
// shares encoding space with multiply (QADD, QSUB, QDADD, QDSUB), plus
// CLZ which lives in the same region of the data-processing space. Both
// cores share the dispatch table, so an ARMv4 core reaching this handler
// takes the undefined-instruction exception instead.
func execArmV5DSPAdd(c *Core, opcode uint32, addr uint32) {
	if c.Arch != ARMv5 {
		execUndefined(c, opcode, addr)
		return
	}
	if opcode&0x0FFF0FF0 == 0x016F0F10 {
		execCLZ(c, opcode)
		return
	}

	rd := (opcode >> 12) & 0xF
	rm := opcode & 0xF
	rn := (opcode >> 16) & 0xF
	op := (opcode >> 21) & 0x3

	a := int32(c.R[rm])
	b := int32(c.R[rn])

	switch op {
	case 0: // QADD
		c.R[rd] = uint32(saturatingAdd(c, a, b))
	case 1: // QSUB
		c.R[rd] = uint32(saturatingSub(c, a, b))
	case 2: // QDADD
		doubled := saturatingDouble(c, b)
		c.R[rd] = uint32(saturatingAdd(c, a, doubled))
	case 3: // QDSUB
		doubled := saturatingDouble(c, b)
		c.R[rd] = uint32(saturatingSub(c, a, doubled))
	}
}

func execCLZ(c *Core, opcode uint32) {
	rd := (opcode >> 12) & 0xF
	rm := opcode & 0xF
	c.R[rd] = uint32(bits.LeadingZeros32(c.R[rm]))
}

func saturatingAdd(c *Core, a, b int32) int32 {
	sum := int64(a) + int64(b)
	return clampQ(c, sum)
}

func saturatingSub(c *Core, a, b int32) int32 {
	diff := int64(a) - int64(b)
	return clampQ(c, diff)
}

func saturatingDouble(c *Core, v int32) int32 {
	doubled := int64(v) * 2
	return clampQ(c, doubled)
}

func clampQ(c *Core, v int64) int32 {
	const max = int64(1)<<31 - 1
	const min = -(int64(1) << 31)
	if v > max {
		c.CPSR.Q = true
		return int32(max)
	}
	if v < min {
		c.CPSR.Q = true
		return int32(min)
	}
	return int32(v)
}

// execBranchLinkExchangeRegister handles the ARMv5 BLX Rm instruction: link
// and exchange to Thumb state if Rm's bit 0 is set.
func execBranchLinkExchangeRegister(c *Core, opcode uint32, addr uint32) {
	rm := opcode & 0xF
	target := c.R[rm]
	c.R[14] = addr + 4
	branchExchange(c, target)
}
