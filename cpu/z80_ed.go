package cpu

// initEDOps builds the ED-prefixed table. Grounded on cpu_z80.go's
// initEDOps/opLDNNBC/opNEG/opLDI/opLDIR/etc. Opcodes ED doesn't assign
// fall through to the "NOP-trap" (8 T-states, documented duplicate of
// NOP) when Undocumented is set, or an op-trap otherwise.
func (c *CPU) initEDOps() {
	for i := range c.edOps {
		c.edOps[i] = (*CPU).edDefault
	}

	rp := []struct {
		get func(*CPU) uint16
		set func(*CPU, uint16)
	}{
		{(*CPU).BC, (*CPU).SetBC},
		{(*CPU).DE, (*CPU).SetDE},
		{(*CPU).HL, (*CPU).SetHL},
		{func(cpu *CPU) uint16 { return cpu.SP }, func(cpu *CPU, v uint16) { cpu.SP = v }},
	}
	for i, r := range rp {
		r := r
		c.edOps[0x42+i*0x10] = func(cpu *CPU) { r.set(cpu, cpu.sbcHL16(cpu.HL(), r.get(cpu))); cpu.tick(15) }
		c.edOps[0x4A+i*0x10] = func(cpu *CPU) { r.set(cpu, cpu.adcHL16(cpu.HL(), r.get(cpu))); cpu.tick(15) }
		c.edOps[0x43+i*0x10] = func(cpu *CPU) { addr := cpu.fetchWord(); cpu.writeWord(addr, r.get(cpu)); cpu.tick(20) }
		c.edOps[0x4B+i*0x10] = func(cpu *CPU) { addr := cpu.fetchWord(); r.set(cpu, cpu.readWord(addr)); cpu.tick(20) }
	}

	c.edOps[0x44] = (*CPU).opNEG
	c.edOps[0x4C] = (*CPU).opNEG
	c.edOps[0x54] = (*CPU).opNEG
	c.edOps[0x5C] = (*CPU).opNEG
	c.edOps[0x64] = (*CPU).opNEG
	c.edOps[0x6C] = (*CPU).opNEG
	c.edOps[0x74] = (*CPU).opNEG
	c.edOps[0x7C] = (*CPU).opNEG

	c.edOps[0x45] = (*CPU).opRETN
	c.edOps[0x55] = (*CPU).opRETN
	c.edOps[0x65] = (*CPU).opRETN
	c.edOps[0x75] = (*CPU).opRETN
	c.edOps[0x4D] = (*CPU).opRETI
	c.edOps[0x5D] = (*CPU).opRETN
	c.edOps[0x6D] = (*CPU).opRETN
	c.edOps[0x7D] = (*CPU).opRETN

	c.edOps[0x46] = func(cpu *CPU) { cpu.IM = 0; cpu.tick(8) }
	c.edOps[0x4E] = func(cpu *CPU) { cpu.IM = 0; cpu.tick(8) } // undocumented duplicate
	c.edOps[0x56] = func(cpu *CPU) { cpu.IM = 1; cpu.tick(8) }
	c.edOps[0x5E] = func(cpu *CPU) { cpu.IM = 2; cpu.tick(8) }
	c.edOps[0x66] = func(cpu *CPU) { cpu.IM = 0; cpu.tick(8) }
	c.edOps[0x6E] = func(cpu *CPU) { cpu.IM = 0; cpu.tick(8) }
	c.edOps[0x76] = func(cpu *CPU) { cpu.IM = 1; cpu.tick(8) }
	c.edOps[0x7E] = func(cpu *CPU) { cpu.IM = 2; cpu.tick(8) }

	c.edOps[0x47] = func(cpu *CPU) { cpu.I = cpu.A; cpu.tick(9) }
	c.edOps[0x4F] = func(cpu *CPU) { cpu.R = cpu.A; cpu.tick(9) }
	c.edOps[0x57] = (*CPU).opLDAI
	c.edOps[0x5F] = (*CPU).opLDAR

	c.edOps[0x67] = (*CPU).opRRD
	c.edOps[0x6F] = (*CPU).opRLD

	ioPair := map[int]byte{0x40: 0, 0x48: 1, 0x50: 2, 0x58: 3, 0x60: 4, 0x68: 5, 0x78: 7}
	for op, reg := range ioPair {
		reg := reg
		c.edOps[op] = func(cpu *CPU) { cpu.opINRegC(reg) }
		c.edOps[op+1] = func(cpu *CPU) { cpu.opOUTCReg(reg) }
	}
	c.edOps[0x70] = func(cpu *CPU) { cpu.opINRegC(8) } // undocumented IN F,(C)
	c.edOps[0x71] = func(cpu *CPU) { cpu.opOUTCImm0() } // undocumented OUT (C),0

	c.edOps[0xA0] = (*CPU).opLDI
	c.edOps[0xB0] = (*CPU).opLDIR
	c.edOps[0xA8] = (*CPU).opLDD
	c.edOps[0xB8] = (*CPU).opLDDR
	c.edOps[0xA1] = (*CPU).opCPI
	c.edOps[0xB1] = (*CPU).opCPIR
	c.edOps[0xA9] = (*CPU).opCPD
	c.edOps[0xB9] = (*CPU).opCPDR
	c.edOps[0xA2] = (*CPU).opINI
	c.edOps[0xB2] = (*CPU).opINIR
	c.edOps[0xAA] = (*CPU).opIND
	c.edOps[0xBA] = (*CPU).opINDR
	c.edOps[0xA3] = (*CPU).opOUTI
	c.edOps[0xB3] = (*CPU).opOTIR
	c.edOps[0xAB] = (*CPU).opOUTD
	c.edOps[0xBB] = (*CPU).opOTDR
}

func (c *CPU) edDefault() {
	if c.Cfg.Undocumented {
		c.tick(8)
		return
	}
	c.trap(2)
}

func (c *CPU) opNEG() {
	a := c.A
	c.A, c.F = sub8(0, a, 0)
	c.tick(8)
}

func (c *CPU) opRETN() {
	c.IFF1 = c.IFF2
	c.PC = c.popWord()
	c.tick(14)
}

func (c *CPU) opRETI() {
	c.IFF1 = c.IFF2
	c.PC = c.popWord()
	c.tick(14)
}

func (c *CPU) opLDAI() {
	c.A = c.I
	c.F &^= FlagS | FlagZ | FlagH | FlagPV | FlagN | FlagY | FlagX
	if c.A == 0 {
		c.F |= FlagZ
	}
	if c.A&0x80 != 0 {
		c.F |= FlagS
	}
	if c.IFF2 {
		c.F |= FlagPV
	}
	c.F |= c.A & (FlagY | FlagX)
	c.tick(9)
}

func (c *CPU) opLDAR() {
	c.A = c.R
	c.F &^= FlagS | FlagZ | FlagH | FlagPV | FlagN | FlagY | FlagX
	if c.A == 0 {
		c.F |= FlagZ
	}
	if c.A&0x80 != 0 {
		c.F |= FlagS
	}
	if c.IFF2 {
		c.F |= FlagPV
	}
	c.F |= c.A & (FlagY | FlagX)
	c.tick(9)
}

func (c *CPU) opRRD() {
	addr := c.HL()
	mem := c.read(addr)
	res := (c.A << 4) | (mem >> 4)
	c.A = (c.A & 0xF0) | (mem & 0x0F)
	c.write(addr, res)
	c.setSZPFlags(c.A)
	c.F &^= FlagN | FlagH
	c.tick(18)
}

func (c *CPU) opRLD() {
	addr := c.HL()
	mem := c.read(addr)
	res := (mem << 4) | (c.A & 0x0F)
	c.A = (c.A & 0xF0) | (mem >> 4)
	c.write(addr, res)
	c.setSZPFlags(c.A)
	c.F &^= FlagN | FlagH
	c.tick(18)
}

func (c *CPU) opINRegC(reg byte) {
	v := c.in(c.C, c.B)
	if reg != 8 { // reg 8 = undocumented IN F,(C): sets flags, discards value
		c.writeReg8(reg, v)
	}
	c.updateInFlags(v)
	c.tick(12)
}

func (c *CPU) opOUTCReg(reg byte) {
	c.out(c.C, c.B, c.readReg8(reg))
	c.tick(12)
}

func (c *CPU) opOUTCImm0() {
	c.out(c.C, c.B, 0)
	c.tick(12)
}

// Block transfer/search/IO instructions. Grounded on cpu_z80.go's
// opLDI/opLDIR/opCPI/opCPIR/opINI/opINIR/opOUTI/opOTIR families.

func (c *CPU) opLDI() {
	v := c.read(c.HL())
	c.write(c.DE(), v)
	c.SetHL(c.HL() + 1)
	c.SetDE(c.DE() + 1)
	c.SetBC(c.BC() - 1)
	c.F &^= FlagN | FlagH | FlagPV | FlagY | FlagX
	if c.BC() != 0 {
		c.F |= FlagPV
	}
	n := v + c.A
	if n&0x02 != 0 {
		c.F |= FlagY
	}
	if n&0x08 != 0 {
		c.F |= FlagX
	}
	c.tick(16)
}

func (c *CPU) opLDIR() {
	c.opLDI()
	if c.BC() != 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *CPU) opLDD() {
	v := c.read(c.HL())
	c.write(c.DE(), v)
	c.SetHL(c.HL() - 1)
	c.SetDE(c.DE() - 1)
	c.SetBC(c.BC() - 1)
	c.F &^= FlagN | FlagH | FlagPV | FlagY | FlagX
	if c.BC() != 0 {
		c.F |= FlagPV
	}
	n := v + c.A
	if n&0x02 != 0 {
		c.F |= FlagY
	}
	if n&0x08 != 0 {
		c.F |= FlagX
	}
	c.tick(16)
}

func (c *CPU) opLDDR() {
	c.opLDD()
	if c.BC() != 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *CPU) opCPI() {
	v := c.read(c.HL())
	res := c.A - v
	halfCarry := (c.A & 0x0F) < (v & 0x0F)
	c.SetHL(c.HL() + 1)
	c.SetBC(c.BC() - 1)
	c.F = (c.F & FlagC) | FlagN
	if res == 0 {
		c.F |= FlagZ
	}
	if res&0x80 != 0 {
		c.F |= FlagS
	}
	if halfCarry {
		c.F |= FlagH
	}
	if c.BC() != 0 {
		c.F |= FlagPV
	}
	n := res
	if halfCarry {
		n--
	}
	if n&0x02 != 0 {
		c.F |= FlagY
	}
	if n&0x08 != 0 {
		c.F |= FlagX
	}
	c.tick(16)
}

func (c *CPU) opCPIR() {
	c.opCPI()
	if c.BC() != 0 && c.F&FlagZ == 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *CPU) opCPD() {
	v := c.read(c.HL())
	res := c.A - v
	halfCarry := (c.A & 0x0F) < (v & 0x0F)
	c.SetHL(c.HL() - 1)
	c.SetBC(c.BC() - 1)
	c.F = (c.F & FlagC) | FlagN
	if res == 0 {
		c.F |= FlagZ
	}
	if res&0x80 != 0 {
		c.F |= FlagS
	}
	if halfCarry {
		c.F |= FlagH
	}
	if c.BC() != 0 {
		c.F |= FlagPV
	}
	n := res
	if halfCarry {
		n--
	}
	if n&0x02 != 0 {
		c.F |= FlagY
	}
	if n&0x08 != 0 {
		c.F |= FlagX
	}
	c.tick(16)
}

func (c *CPU) opCPDR() {
	c.opCPD()
	if c.BC() != 0 && c.F&FlagZ == 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *CPU) opINI() {
	v := c.in(c.C, c.B)
	c.write(c.HL(), v)
	c.B--
	c.SetHL(c.HL() + 1)
	c.F &^= FlagZ
	if c.B == 0 {
		c.F |= FlagZ
	}
	c.F |= FlagN
	c.tick(16)
}

func (c *CPU) opINIR() {
	c.opINI()
	if c.B != 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *CPU) opIND() {
	v := c.in(c.C, c.B)
	c.write(c.HL(), v)
	c.B--
	c.SetHL(c.HL() - 1)
	c.F &^= FlagZ
	if c.B == 0 {
		c.F |= FlagZ
	}
	c.F |= FlagN
	c.tick(16)
}

func (c *CPU) opINDR() {
	c.opIND()
	if c.B != 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *CPU) opOUTI() {
	v := c.read(c.HL())
	c.SetHL(c.HL() + 1)
	c.B--
	c.out(c.C, c.B, v)
	c.F &^= FlagZ
	if c.B == 0 {
		c.F |= FlagZ
	}
	c.F |= FlagN
	c.tick(16)
}

func (c *CPU) opOTIR() {
	c.opOUTI()
	if c.B != 0 {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *CPU) opOUTD() {
	v := c.read(c.HL())
	c.SetHL(c.HL() - 1)
	c.B--
	c.out(c.C, c.B, v)
	c.F &^= FlagZ
	if c.B == 0 {
		c.F |= FlagZ
	}
	c.F |= FlagN
	c.tick(16)
}

func (c *CPU) opOTDR() {
	c.opOUTD()
	if c.B != 0 {
		c.PC -= 2
		c.tick(5)
	}
}
