package cpu

import "github.com/retrobus/ndscore/cpu/registers"

// execPSRTransfer handles MRS (load CPSR/SPSR into a register) and MSR
// (store a register or rotated immediate into CPSR/SPSR, optionally only
// the flag bits). The two share the 000100xx 1001-free encoding space and
// are disambiguated by bit21.
func execPSRTransfer(c *Core, opcode uint32, addr uint32) {
	spsrBit := opcode&(1<<22) != 0
	isMSR := opcode&(1<<21) != 0

	if !isMSR {
		rd := (opcode >> 12) & 0xF
		if spsrBit && registers.HasSPSR(c.CPSR.Mode) {
			c.R[rd] = c.bank.SPSR(c.CPSR.Mode).Value()
		} else {
			c.R[rd] = c.CPSR.Value()
		}
		return
	}

	var mask uint32
	if opcode&(1<<19) != 0 {
		mask |= 0xFF000000 // flags field
	}
	if opcode&(1<<16) != 0 {
		mask |= 0x000000FF // control field (mode, I, F, T)
	}

	var value uint32
	if opcode&(1<<25) != 0 {
		imm := opcode & 0xFF
		rot := ((opcode >> 8) & 0xF) * 2
		value, _ = barrelShift(imm, shiftROR, rot, true, c.CPSR.C)
	} else {
		value = c.readGPR(opcode & 0xF)
	}

	if spsrBit {
		if registers.HasSPSR(c.CPSR.Mode) {
			c.bank.SPSR(c.CPSR.Mode).SetValueMasked(value, mask)
		}
		return
	}

	oldMode := c.CPSR.Mode
	c.CPSR.SetValueMasked(value, mask)
	if mask&0xFF != 0 && c.CPSR.Mode != oldMode {
		c.bank.SwitchMode(&c.R, oldMode, c.CPSR.Mode)
	}
}
