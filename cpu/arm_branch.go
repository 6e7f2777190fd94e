package cpu

// execBranch handles B and BL: a sign-extended 24-bit word offset relative
// to addr+8 (the PC-read value at the point the branch is "fetched").
func execBranch(c *Core, opcode uint32, addr uint32) {
	link := opcode&(1<<24) != 0
	offset := signExtend(opcode&0xFFFFFF, 24) << 2
	target := addr + 8 + offset
	if link {
		c.R[14] = addr + 4
	}
	c.Flush(target)
	c.R[15] = c.pcRead(target)
}

// execBranchExchange handles BX: branch to Rm, switching to Thumb state if
// its bit 0 is set.
func execBranchExchange(c *Core, opcode uint32, addr uint32) {
	rm := opcode & 0xF
	branchExchange(c, c.R[rm])
}

func branchExchange(c *Core, target uint32) {
	c.CPSR.T = target&1 != 0
	target &^= 1
	c.Flush(target)
	c.R[15] = c.pcRead(target)
}

// execUnconditionalExtension handles the ARMv5 cond==0xF instruction space:
// BLX with a 24-bit immediate plus the H bit for half-halfword alignment.
// On an ARMv4 core, and for any cond==0xF encoding other than BLX, it takes
// the undefined-instruction exception.
func execUnconditionalExtension(c *Core, opcode uint32, addr uint32) {
	if c.Arch != ARMv5 || opcode&0x0E000000 != 0x0A000000 {
		execUndefined(c, opcode, addr)
		return
	}
	h := (opcode >> 24) & 1
	offset := signExtend(opcode&0xFFFFFF, 24)<<2 | (h << 1)
	target := addr + 8 + offset
	c.R[14] = addr + 4
	c.CPSR.T = true
	c.Flush(target)
	c.R[15] = c.pcRead(target)
}

func execSoftwareInterruptARM(c *Core, opcode uint32, addr uint32) {
	c.SoftwareInterrupt(addr)
}

func execUndefined(c *Core, opcode uint32, addr uint32) {
	c.UndefinedInstruction(addr)
}

// execCoprocessorDataOp and execCoprocessorRegisterTransfer only matter on
// ARMv5, where CP15 is the system-control coprocessor (CP#15) used for TCM
// and cache configuration; any other coprocessor number, or any use on
// ARMv4, is an undefined instruction on real hardware.
func execCoprocessorDataOp(c *Core, opcode uint32, addr uint32) {
	execUndefined(c, opcode, addr)
}

func execCoprocessorRegisterTransfer(c *Core, opcode uint32, addr uint32) {
	if c.Arch != ARMv5 || c.cp15 == nil {
		execUndefined(c, opcode, addr)
		return
	}
	cpnum := (opcode >> 8) & 0xF
	if cpnum != 15 {
		execUndefined(c, opcode, addr)
		return
	}
	crn := (opcode >> 16) & 0xF
	crm := opcode & 0xF
	opcode2 := (opcode >> 5) & 0x7
	rd := (opcode >> 12) & 0xF
	toCoprocessor := opcode&(1<<20) == 0

	if toCoprocessor {
		c.cp15.write(crn, crm, opcode2, c.R[rd])
	} else {
		v := c.cp15.read(crn, crm, opcode2)
		if rd == 15 {
			c.CPSR.SetNZ(v)
		} else {
			c.R[rd] = v
		}
	}
}
