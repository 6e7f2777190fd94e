package cpu

// dataProcOp is the 4-bit opcode field of a data-processing instruction.
type dataProcOp uint32

const (
	opAND dataProcOp = iota
	opEOR
	opSUB
	opRSB
	opADD
	opADC
	opSBC
	opRSC
	opTST
	opTEQ
	opCMP
	opCMN
	opORR
	opMOV
	opBIC
	opMVN
)

// shifterOperand evaluates the second operand of a data-processing
// instruction: an immediate rotated by an even amount, or a register
// optionally shifted by an immediate or by the bottom byte of another
// register.
func shifterOperand(c *Core, opcode uint32) (value uint32, carryOut bool) {
	if opcode&(1<<25) != 0 {
		imm := opcode & 0xFF
		rot := (opcode >> 8) & 0xF * 2
		if rot == 0 {
			return imm, c.CPSR.C
		}
		v, carry := barrelShift(imm, shiftROR, rot, true, c.CPSR.C)
		return v, carry
	}

	rm := opcode & 0xF
	st := shiftType((opcode >> 5) & 0x3)
	val := c.readGPR(rm)

	if opcode&(1<<4) != 0 {
		rs := (opcode >> 8) & 0xF
		amount := c.readGPR(rs) & 0xFF
		if rm == 15 {
			val += 4 // register-specified shift: R15 reads as addr+12 here
		}
		return barrelShift(val, st, amount, false, c.CPSR.C)
	}

	amount := (opcode >> 7) & 0x1F
	return barrelShift(val, st, amount, true, c.CPSR.C)
}

// readGPR reads register n, giving the architected PC-read value (addr+8)
// when n is R15. Data-processing handlers call this rather than c.R[15]
// directly so PC-relative operands are correct regardless of where in Step
// the read happens.
func (c *Core) readGPR(n uint32) uint32 {
	return c.R[n]
}

func execDataProcessing(c *Core, opcode uint32, addr uint32) {
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF
	s := opcode&(1<<20) != 0
	op := dataProcOp((opcode >> 21) & 0xF)

	operand2, shiftCarry := shifterOperand(c, opcode)
	operand1 := c.readGPR(rn)

	var result uint32
	writesResult := true

	switch op {
	case opAND:
		result = operand1 & operand2
	case opEOR:
		result = operand1 ^ operand2
	case opSUB:
		result = subWithFlags(c, operand1, operand2, s)
	case opRSB:
		result = subWithFlags(c, operand2, operand1, s)
	case opADD:
		result = addWithFlags(c, operand1, operand2, s)
	case opADC:
		carry := uint32(0)
		if c.CPSR.C {
			carry = 1
		}
		result = addWithFlags(c, operand1, operand2+carry, s)
	case opSBC:
		borrow := uint32(1)
		if c.CPSR.C {
			borrow = 0
		}
		result = subWithFlags(c, operand1, operand2+borrow, s)
	case opRSC:
		borrow := uint32(1)
		if c.CPSR.C {
			borrow = 0
		}
		result = subWithFlags(c, operand2, operand1+borrow, s)
	case opTST:
		result = operand1 & operand2
		writesResult = false
		if s {
			c.CPSR.SetNZ(result)
			c.CPSR.C = shiftCarry
		}
	case opTEQ:
		result = operand1 ^ operand2
		writesResult = false
		if s {
			c.CPSR.SetNZ(result)
			c.CPSR.C = shiftCarry
		}
	case opCMP:
		subWithFlags(c, operand1, operand2, true)
		writesResult = false
	case opCMN:
		addWithFlags(c, operand1, operand2, true)
		writesResult = false
	case opORR:
		result = operand1 | operand2
	case opMOV:
		result = operand2
	case opBIC:
		result = operand1 &^ operand2
	case opMVN:
		result = ^operand2
	}

	if op == opAND || op == opEOR || op == opORR || op == opMOV || op == opBIC || op == opMVN {
		if s {
			c.CPSR.SetNZ(result)
			c.CPSR.C = shiftCarry
		}
	}

	if writesResult {
		c.R[rd] = result
		if rd == 15 {
			if s {
				c.restoreCPSRFromSPSR()
			}
			c.Flush(result)
		}
	}
}

func addWithFlags(c *Core, a, b uint32, setFlags bool) uint32 {
	result := a + b
	if setFlags {
		c.CPSR.N = result&0x80000000 != 0
		c.CPSR.Z = result == 0
		c.CPSR.C = result < a
		c.CPSR.V = (a^result)&(b^result)&0x80000000 != 0
	}
	return result
}

func subWithFlags(c *Core, a, b uint32, setFlags bool) uint32 {
	result := a - b
	if setFlags {
		c.CPSR.N = result&0x80000000 != 0
		c.CPSR.Z = result == 0
		c.CPSR.C = a >= b
		c.CPSR.V = (a^b)&(a^result)&0x80000000 != 0
	}
	return result
}
