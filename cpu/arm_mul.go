package cpu

// execMultiply handles MUL and MLA: Rd = Rm*Rs (+ Rn), 32-bit result only.
func execMultiply(c *Core, opcode uint32, addr uint32) {
	rd := (opcode >> 16) & 0xF
	rn := (opcode >> 12) & 0xF
	rs := (opcode >> 8) & 0xF
	rm := opcode & 0xF
	accumulate := opcode&(1<<21) != 0
	s := opcode&(1<<20) != 0

	result := c.R[rm] * c.R[rs]
	if accumulate {
		result += c.R[rn]
	}
	c.R[rd] = result
	if s {
		c.CPSR.SetNZ(result)
	}
}

// execMultiplyLong handles UMULL/UMLAL/SMULL/SMLAL: a 64-bit product spread
// across RdHi:RdLo.
func execMultiplyLong(c *Core, opcode uint32, addr uint32) {
	rdHi := (opcode >> 16) & 0xF
	rdLo := (opcode >> 12) & 0xF
	rs := (opcode >> 8) & 0xF
	rm := opcode & 0xF
	signed := opcode&(1<<22) != 0
	accumulate := opcode&(1<<21) != 0
	s := opcode&(1<<20) != 0

	var product uint64
	if signed {
		product = uint64(int64(int32(c.R[rm])) * int64(int32(c.R[rs])))
	} else {
		product = uint64(c.R[rm]) * uint64(c.R[rs])
	}
	if accumulate {
		product += uint64(c.R[rdHi])<<32 | uint64(c.R[rdLo])
	}
	c.R[rdLo] = uint32(product)
	c.R[rdHi] = uint32(product >> 32)
	if s {
		c.CPSR.Z = product == 0
		c.CPSR.N = product&(1<<63) != 0
	}
}

// execSwap handles SWP/SWPB: an atomic (from the guest's point of view;
// this interpreter never yields mid-instruction so atomicity is free) read
// of [Rn] followed by a store of Rm to the same address.
func execSwap(c *Core, opcode uint32, addr uint32) {
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF
	rm := opcode & 0xF
	byteSwap := opcode&(1<<22) != 0

	base := c.R[rn]
	width := Word
	if byteSwap {
		width = Byte
	}
	old := c.Bus.Read(base, width, NonSequential)
	c.Bus.Write(base, width, Sequential, c.R[rm])
	c.R[rd] = old
}
