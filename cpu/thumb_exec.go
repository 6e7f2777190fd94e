package cpu

// Format 1: move shifted register (LSL/LSR/ASR Rd, Rs, #imm5).
func execMoveShiftedRegister(c *Core, opcode uint16, addr uint32) {
	op := (opcode >> 11) & 0x3
	amount := uint32((opcode >> 6) & 0x1F)
	rs := (opcode >> 3) & 0x7
	rd := opcode & 0x7

	var st shiftType
	switch op {
	case 0:
		st = shiftLSL
	case 1:
		st = shiftLSR
	case 2:
		st = shiftASR
	}
	v, carry := barrelShift(c.R[rs], st, amount, true, c.CPSR.C)
	c.R[rd] = v
	c.CPSR.C = carry
	c.CPSR.SetNZ(v)
}

// Format 2: add/subtract (register or 3-bit immediate).
func execAddSubtract(c *Core, opcode uint16, addr uint32) {
	immediate := opcode&(1<<10) != 0
	subtract := opcode&(1<<9) != 0
	rnOrImm := uint32((opcode >> 6) & 0x7)
	rs := (opcode >> 3) & 0x7
	rd := opcode & 0x7

	operand2 := rnOrImm
	if !immediate {
		operand2 = c.R[rnOrImm]
	}

	var result uint32
	if subtract {
		result = subWithFlags(c, c.R[rs], operand2, true)
	} else {
		result = addWithFlags(c, c.R[rs], operand2, true)
	}
	c.R[rd] = result
}

// Format 3: move/compare/add/subtract immediate (8-bit).
func execMovCmpAddSubImm(c *Core, opcode uint16, addr uint32) {
	op := (opcode >> 11) & 0x3
	rd := (opcode >> 8) & 0x7
	imm := uint32(opcode & 0xFF)

	switch op {
	case 0: // MOV
		c.R[rd] = imm
		c.CPSR.SetNZ(imm)
	case 1: // CMP
		subWithFlags(c, c.R[rd], imm, true)
	case 2: // ADD
		c.R[rd] = addWithFlags(c, c.R[rd], imm, true)
	case 3: // SUB
		c.R[rd] = subWithFlags(c, c.R[rd], imm, true)
	}
}

// Format 4: ALU operations, Rd = Rd OP Rs (both low registers).
func execALUOperations(c *Core, opcode uint16, addr uint32) {
	op := (opcode >> 6) & 0xF
	rs := (opcode >> 3) & 0x7
	rd := opcode & 0x7

	a := c.R[rd]
	b := c.R[rs]

	switch op {
	case 0x0: // AND
		c.R[rd] = a & b
		c.CPSR.SetNZ(c.R[rd])
	case 0x1: // EOR
		c.R[rd] = a ^ b
		c.CPSR.SetNZ(c.R[rd])
	case 0x2: // LSL
		v, carry := barrelShift(a, shiftLSL, b&0xFF, false, c.CPSR.C)
		c.R[rd] = v
		c.CPSR.C = carry
		c.CPSR.SetNZ(v)
	case 0x3: // LSR
		v, carry := barrelShift(a, shiftLSR, b&0xFF, false, c.CPSR.C)
		c.R[rd] = v
		c.CPSR.C = carry
		c.CPSR.SetNZ(v)
	case 0x4: // ASR
		v, carry := barrelShift(a, shiftASR, b&0xFF, false, c.CPSR.C)
		c.R[rd] = v
		c.CPSR.C = carry
		c.CPSR.SetNZ(v)
	case 0x5: // ADC
		carry := uint32(0)
		if c.CPSR.C {
			carry = 1
		}
		c.R[rd] = addWithFlags(c, a, b+carry, true)
	case 0x6: // SBC
		borrow := uint32(1)
		if c.CPSR.C {
			borrow = 0
		}
		c.R[rd] = subWithFlags(c, a, b+borrow, true)
	case 0x7: // ROR
		v, carry := barrelShift(a, shiftROR, b&0xFF, false, c.CPSR.C)
		c.R[rd] = v
		c.CPSR.C = carry
		c.CPSR.SetNZ(v)
	case 0x8: // TST
		c.CPSR.SetNZ(a & b)
	case 0x9: // NEG
		c.R[rd] = subWithFlags(c, 0, b, true)
	case 0xA: // CMP
		subWithFlags(c, a, b, true)
	case 0xB: // CMN
		addWithFlags(c, a, b, true)
	case 0xC: // ORR
		c.R[rd] = a | b
		c.CPSR.SetNZ(c.R[rd])
	case 0xD: // MUL
		c.R[rd] = a * b
		c.CPSR.SetNZ(c.R[rd])
	case 0xE: // BIC
		c.R[rd] = a &^ b
		c.CPSR.SetNZ(c.R[rd])
	case 0xF: // MVN
		c.R[rd] = ^b
		c.CPSR.SetNZ(c.R[rd])
	}
}

// Format 5: hi-register operations and BX/BLX, operating on any of R0-R15.
func execHiRegisterOps(c *Core, opcode uint16, addr uint32) {
	op := (opcode >> 8) & 0x3
	h1 := opcode&(1<<7) != 0
	h2 := opcode&(1<<6) != 0
	rs := uint32((opcode >> 3) & 0x7)
	rd := uint32(opcode & 0x7)
	if h2 {
		rs += 8
	}
	if h1 {
		rd += 8
	}

	srcVal := c.R[rs]
	if rs == 15 {
		srcVal = addr + 4
	}

	switch op {
	case 0: // ADD
		c.R[rd] += srcVal
		if rd == 15 {
			c.Flush(c.R[rd] &^ 1)
			c.R[15] = c.pcRead(c.R[rd] &^ 1)
		}
	case 1: // CMP
		subWithFlags(c, c.R[rd], srcVal, true)
	case 2: // MOV
		c.R[rd] = srcVal
		if rd == 15 {
			c.Flush(c.R[rd] &^ 1)
			c.R[15] = c.pcRead(c.R[rd] &^ 1)
		}
	case 3: // BX / BLX
		if h1 {
			// BLX Rs (ARMv5 only, h1 set is otherwise unpredictable)
			c.R[14] = addr + 2 | 1
		}
		branchExchange(c, srcVal)
	}
}

// Format 6: PC-relative load, LDR Rd, [PC, #imm8*4]. PC reads as the
// current instruction's address rounded down to a word boundary, plus 4.
func execPCRelativeLoad(c *Core, opcode uint16, addr uint32) {
	rd := (opcode >> 8) & 0x7
	imm := uint32(opcode&0xFF) * 4
	base := (addr & ^uint32(3)) + 4
	c.R[rd] = c.Bus.Read(base+imm, Word, NonSequential)
}

// Format 7: load/store with register offset.
func execLoadStoreRegisterOffset(c *Core, opcode uint16, addr uint32) {
	load := opcode&(1<<11) != 0
	byteAccess := opcode&(1<<10) != 0
	ro := (opcode >> 6) & 0x7
	rb := (opcode >> 3) & 0x7
	rd := opcode & 0x7

	effective := c.R[rb] + c.R[ro]
	width := Word
	if byteAccess {
		width = Byte
	}
	if load {
		v := c.Bus.Read(effective, width, NonSequential)
		if width == Word {
			v = rotateUnaligned(c, v, effective)
		} else {
			v &= 0xFF
		}
		c.R[rd] = v
	} else {
		c.Bus.Write(effective, width, NonSequential, c.R[rd])
	}
}

// Format 8: load/store sign-extended byte/halfword.
func execLoadStoreSignExtended(c *Core, opcode uint16, addr uint32) {
	hFlag := opcode&(1<<11) != 0
	signExtended := opcode&(1<<10) != 0
	ro := (opcode >> 6) & 0x7
	rb := (opcode >> 3) & 0x7
	rd := opcode & 0x7

	effective := c.R[rb] + c.R[ro]

	switch {
	case !signExtended && !hFlag: // STRH
		c.Bus.Write(effective, Halfword, NonSequential, c.R[rd])
	case !signExtended && hFlag: // LDRH
		c.R[rd] = c.Bus.Read(effective, Halfword, NonSequential)
	case signExtended && !hFlag: // LDSB
		v := c.Bus.Read(effective, Byte, NonSequential)
		c.R[rd] = signExtend(v, 8)
	case signExtended && hFlag: // LDSH
		v := c.Bus.Read(effective, Halfword, NonSequential)
		c.R[rd] = signExtend(v, 16)
	}
}

// Format 9: load/store with 5-bit immediate offset (scaled by access size).
func execLoadStoreImmOffset(c *Core, opcode uint16, addr uint32) {
	byteAccess := opcode&(1<<12) != 0
	load := opcode&(1<<11) != 0
	imm := uint32((opcode >> 6) & 0x1F)
	rb := (opcode >> 3) & 0x7
	rd := opcode & 0x7

	var effective uint32
	width := Word
	if byteAccess {
		width = Byte
		effective = c.R[rb] + imm
	} else {
		effective = c.R[rb] + imm*4
	}

	if load {
		v := c.Bus.Read(effective, width, NonSequential)
		if width == Word {
			v = rotateUnaligned(c, v, effective)
		} else {
			v &= 0xFF
		}
		c.R[rd] = v
	} else {
		c.Bus.Write(effective, width, NonSequential, c.R[rd])
	}
}

// Format 10: load/store halfword, LDRH/STRH Rd, [Rb, #imm5*2].
func execLoadStoreHalfword(c *Core, opcode uint16, addr uint32) {
	load := opcode&(1<<11) != 0
	imm := uint32((opcode>>6)&0x1F) * 2
	rb := (opcode >> 3) & 0x7
	rd := opcode & 0x7

	effective := c.R[rb] + imm
	if load {
		c.R[rd] = c.Bus.Read(effective, Halfword, NonSequential)
	} else {
		c.Bus.Write(effective, Halfword, NonSequential, c.R[rd])
	}
}

// Format 11: SP-relative load/store, LDR/STR Rd, [SP, #imm8*4].
func execSPRelativeLoadStore(c *Core, opcode uint16, addr uint32) {
	load := opcode&(1<<11) != 0
	rd := (opcode >> 8) & 0x7
	imm := uint32(opcode&0xFF) * 4

	effective := c.R[13] + imm
	if load {
		v := c.Bus.Read(effective, Word, NonSequential)
		c.R[rd] = rotateUnaligned(c, v, effective)
	} else {
		c.Bus.Write(effective, Word, NonSequential, c.R[rd])
	}
}

// Format 12: load address, ADD Rd, PC/SP, #imm8*4.
func execLoadAddress(c *Core, opcode uint16, addr uint32) {
	sp := opcode&(1<<11) != 0
	rd := (opcode >> 8) & 0x7
	imm := uint32(opcode&0xFF) * 4

	if sp {
		c.R[rd] = c.R[13] + imm
	} else {
		c.R[rd] = (addr & ^uint32(3)) + 4 + imm
	}
}

// Format 13: ADD/SUB SP, #imm7*4.
func execAddOffsetToSP(c *Core, opcode uint16, addr uint32) {
	negative := opcode&(1<<7) != 0
	imm := uint32(opcode&0x7F) * 4
	if negative {
		c.R[13] -= imm
	} else {
		c.R[13] += imm
	}
}

// Format 14: PUSH/POP {reglist}{, LR/PC}.
func execPushPopRegisters(c *Core, opcode uint16, addr uint32) {
	load := opcode&(1<<11) != 0
	pcLr := opcode&(1<<8) != 0
	regList := opcode & 0xFF

	if load {
		sp := c.R[13]
		for i := 0; i < 8; i++ {
			if regList&(1<<i) != 0 {
				c.R[i] = c.Bus.Read(sp, Word, NonSequential)
				sp += 4
			}
		}
		if pcLr {
			v := c.Bus.Read(sp, Word, NonSequential)
			sp += 4
			target := v &^ 1
			c.Flush(target)
			c.R[15] = c.pcRead(target)
		}
		c.R[13] = sp
	} else {
		count := 0
		for i := 0; i < 8; i++ {
			if regList&(1<<i) != 0 {
				count++
			}
		}
		if pcLr {
			count++
		}
		sp := c.R[13] - uint32(count)*4
		c.R[13] = sp
		for i := 0; i < 8; i++ {
			if regList&(1<<i) != 0 {
				c.Bus.Write(sp, Word, NonSequential, c.R[i])
				sp += 4
			}
		}
		if pcLr {
			c.Bus.Write(sp, Word, NonSequential, c.R[14])
		}
	}
}

// Format 15: multiple load/store, LDMIA/STMIA Rb!, {reglist}.
func execMultipleLoadStore(c *Core, opcode uint16, addr uint32) {
	load := opcode&(1<<11) != 0
	rb := (opcode >> 8) & 0x7
	regList := opcode & 0xFF

	base := c.R[rb]
	for i := 0; i < 8; i++ {
		if regList&(1<<i) == 0 {
			continue
		}
		if load {
			c.R[i] = c.Bus.Read(base, Word, NonSequential)
		} else {
			c.Bus.Write(base, Word, NonSequential, c.R[i])
		}
		base += 4
	}
	c.R[rb] = base
}

// Format 16: conditional branch.
func execConditionalBranch(c *Core, opcode uint16, addr uint32) {
	cond := uint32((opcode >> 8) & 0xF)
	flags := struct{ N, Z, C, V bool }{c.CPSR.N, c.CPSR.Z, c.CPSR.C, c.CPSR.V}
	if !conditionPassed(flags, cond) {
		return
	}
	offset := signExtend(uint32(opcode&0xFF), 8) << 1
	target := addr + 4 + offset
	c.Flush(target)
	c.R[15] = c.pcRead(target)
}

// Format 17: SWI.
func execSoftwareInterruptThumb(c *Core, opcode uint16, addr uint32) {
	c.SoftwareInterrupt(addr)
}

// Format 18: unconditional branch.
func execUnconditionalBranch(c *Core, opcode uint16, addr uint32) {
	offset := signExtend(uint32(opcode&0x7FF), 11) << 1
	target := addr + 4 + offset
	c.Flush(target)
	c.R[15] = c.pcRead(target)
}

// Format 19: long branch with link, two 16-bit halves.
// First half (H=0) stashes PC+4+(offset<<12) in LR; second half (H=1)
// computes the final target from LR+(offset<<1) and sets LR to the return
// address with bit0 set (so a subsequent BX from Thumb code round-trips).
func execLongBranchWithLink(c *Core, opcode uint16, addr uint32) {
	low := opcode&(1<<11) != 0
	offset := uint32(opcode & 0x7FF)

	if !low {
		signed := signExtend(offset, 11) << 12
		c.R[14] = addr + 4 + signed
		return
	}

	target := c.R[14] + offset<<1
	c.R[14] = (addr + 2) | 1
	c.Flush(target)
	c.R[15] = c.pcRead(target)
}

// execBLXSuffix is the ARMv5-only Thumb BLX-suffix instruction (opcode
// 1110 1xxxxxxxxxx): like the second half of a long-branch-with-link, but
// switches to ARM state and aligns the target to a word boundary. The
// teacher's ARMv4T-only coprocessor interpreter has no such instruction.
// The Thumb dispatch table is shared by both cores, so on an ARMv4 core
// this handler passes the encoding on to execThumbUndefined.
func execBLXSuffix(c *Core, opcode uint16, addr uint32) {
	if c.Arch != ARMv5 {
		execThumbUndefined(c, opcode, addr)
		return
	}
	offset := uint32(opcode&0x7FF) << 1
	target := (c.R[14] + offset) &^ 3
	c.R[14] = (addr + 2) | 1
	c.CPSR.T = false
	c.Flush(target)
	c.R[15] = c.pcRead(target)
}
