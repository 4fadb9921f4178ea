package cpu

// init8080Ops builds the 8080 dispatch table. Grounded in full on
// original_source/z80core/alt8080.h: the MOV grid and ALU block reuse the
// same register encoding as the Z80 (this hardware is the Z80's direct
// ancestor), so the table-construction loops mirror initBaseOps; the
// 8080-only load/store forms (SHLD/LHLD/STA/LDA/STAX/LDAX), DAD's
// carry-only flag update, and the undocumented NOP/JMP/CALL/RET opcode
// aliases are grounded directly on alt8080.h's case labels.
func (c *CPU) init8080Ops() {
	for i := range c.base8080 {
		c.base8080[i] = (*CPU).opTrap8080
	}

	for _, op := range []int{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38} {
		c.base8080[op] = func(cpu *CPU) { cpu.tick(4) }
	}

	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			continue
		}
		dest, src := byte((op>>3)&0x07), byte(op&0x07)
		c.base8080[op] = func(cpu *CPU) { cpu.opLDRegReg(dest, src) }
	}
	c.base8080[0x76] = (*CPU).opHALT

	immDest := map[int]byte{0x06: 0, 0x0E: 1, 0x16: 2, 0x1E: 3, 0x26: 4, 0x2E: 5, 0x36: 6, 0x3E: 7}
	for op, dest := range immDest {
		dest := dest
		c.base8080[op] = func(cpu *CPU) { cpu.opLDRegImm(dest) }
	}

	for i := 0; i < 8; i++ {
		r := byte(i)
		c.base8080[0x04+i*8] = func(cpu *CPU) { cpu.opINCReg(r) }
		c.base8080[0x05+i*8] = func(cpu *CPU) { cpu.opDECReg(r) }
	}

	aluBase := map[int]aluOp{0x90: aluSub, 0x98: aluSbc, 0xA8: aluXor, 0xB0: aluOr, 0xB8: aluCp}
	for base, op := range aluBase {
		op := op
		for i := 0; i < 8; i++ {
			src := byte(i)
			c.base8080[base+i] = func(cpu *CPU) { cpu.opALUReg(op, src) }
		}
	}
	for i := 0; i < 8; i++ {
		src := byte(i)
		c.base8080[0x80+i] = func(cpu *CPU) { cpu.opALUReg(aluAdd, src) }
		c.base8080[0x88+i] = func(cpu *CPU) { cpu.opALUReg(aluAdc, src) }
		c.base8080[0xA0+i] = func(cpu *CPU) { cpu.opANA8080(src) }
	}

	c.base8080[0xC6] = func(cpu *CPU) { cpu.opALUImm(aluAdd) }
	c.base8080[0xCE] = func(cpu *CPU) { cpu.opALUImm(aluAdc) }
	c.base8080[0xD6] = func(cpu *CPU) { cpu.opALUImm(aluSub) }
	c.base8080[0xDE] = func(cpu *CPU) { cpu.opALUImm(aluSbc) }
	c.base8080[0xE6] = func(cpu *CPU) { v := cpu.fetchByte(); cpu.anaValue(v); cpu.tick(7) }
	c.base8080[0xEE] = func(cpu *CPU) { cpu.opALUImm(aluXor) }
	c.base8080[0xF6] = func(cpu *CPU) { cpu.opALUImm(aluOr) }
	c.base8080[0xFE] = func(cpu *CPU) { cpu.opALUImm(aluCp) }

	c.base8080[0x01] = func(cpu *CPU) { cpu.SetBC(cpu.fetchWord()); cpu.tick(10) }
	c.base8080[0x11] = func(cpu *CPU) { cpu.SetDE(cpu.fetchWord()); cpu.tick(10) }
	c.base8080[0x21] = func(cpu *CPU) { cpu.SetHL(cpu.fetchWord()); cpu.tick(10) }
	c.base8080[0x31] = func(cpu *CPU) { cpu.SP = cpu.fetchWord(); cpu.tick(10) }

	c.base8080[0x09] = func(cpu *CPU) { cpu.dad8080(cpu.BC()) }
	c.base8080[0x19] = func(cpu *CPU) { cpu.dad8080(cpu.DE()) }
	c.base8080[0x29] = func(cpu *CPU) { cpu.dad8080(cpu.HL()) }
	c.base8080[0x39] = func(cpu *CPU) { cpu.dad8080(cpu.SP) }

	c.base8080[0x03] = func(cpu *CPU) { cpu.SetBC(cpu.BC() + 1); cpu.tick(5) }
	c.base8080[0x13] = func(cpu *CPU) { cpu.SetDE(cpu.DE() + 1); cpu.tick(5) }
	c.base8080[0x23] = func(cpu *CPU) { cpu.SetHL(cpu.HL() + 1); cpu.tick(5) }
	c.base8080[0x33] = func(cpu *CPU) { cpu.SP++; cpu.tick(5) }
	c.base8080[0x0B] = func(cpu *CPU) { cpu.SetBC(cpu.BC() - 1); cpu.tick(5) }
	c.base8080[0x1B] = func(cpu *CPU) { cpu.SetDE(cpu.DE() - 1); cpu.tick(5) }
	c.base8080[0x2B] = func(cpu *CPU) { cpu.SetHL(cpu.HL() - 1); cpu.tick(5) }
	c.base8080[0x3B] = func(cpu *CPU) { cpu.SP--; cpu.tick(5) }

	c.base8080[0x22] = func(cpu *CPU) { addr := cpu.fetchWord(); cpu.writeWord(addr, cpu.HL()); cpu.tick(16) }
	c.base8080[0x2A] = func(cpu *CPU) { addr := cpu.fetchWord(); cpu.SetHL(cpu.readWord(addr)); cpu.tick(16) }
	c.base8080[0x32] = func(cpu *CPU) { addr := cpu.fetchWord(); cpu.write(addr, cpu.A); cpu.tick(13) }
	c.base8080[0x3A] = func(cpu *CPU) { addr := cpu.fetchWord(); cpu.A = cpu.read(addr); cpu.tick(13) }
	c.base8080[0x02] = func(cpu *CPU) { cpu.write(cpu.BC(), cpu.A); cpu.tick(7) }
	c.base8080[0x0A] = func(cpu *CPU) { cpu.A = cpu.read(cpu.BC()); cpu.tick(7) }
	c.base8080[0x12] = func(cpu *CPU) { cpu.write(cpu.DE(), cpu.A); cpu.tick(7) }
	c.base8080[0x1A] = func(cpu *CPU) { cpu.A = cpu.read(cpu.DE()); cpu.tick(7) }

	c.base8080[0xC5] = func(cpu *CPU) { cpu.pushWord(cpu.BC()); cpu.tick(11) }
	c.base8080[0xD5] = func(cpu *CPU) { cpu.pushWord(cpu.DE()); cpu.tick(11) }
	c.base8080[0xE5] = func(cpu *CPU) { cpu.pushWord(cpu.HL()); cpu.tick(11) }
	c.base8080[0xF5] = func(cpu *CPU) {
		cpu.write(cpu.SP-1, cpu.A)
		cpu.write(cpu.SP-2, (cpu.F&^(FlagY|FlagX))|FlagN)
		cpu.SP -= 2
		cpu.tick(11)
	}
	c.base8080[0xC1] = func(cpu *CPU) { cpu.SetBC(cpu.popWord()); cpu.tick(10) }
	c.base8080[0xD1] = func(cpu *CPU) { cpu.SetDE(cpu.popWord()); cpu.tick(10) }
	c.base8080[0xE1] = func(cpu *CPU) { cpu.SetHL(cpu.popWord()); cpu.tick(10) }
	c.base8080[0xF1] = func(cpu *CPU) { cpu.F = cpu.read(cpu.SP); cpu.A = cpu.read(cpu.SP + 1); cpu.SP += 2; cpu.tick(10) }

	c.base8080[0xC3] = func(cpu *CPU) { cpu.PC = cpu.fetchWord(); cpu.tick(10) }
	c.base8080[0xCD] = (*CPU).opCALLNN
	c.base8080[0xC9] = func(cpu *CPU) { cpu.PC = cpu.popWord(); cpu.tick(10) }
	c.base8080[0xE9] = func(cpu *CPU) { cpu.PC = cpu.HL(); cpu.tick(5) }
	c.base8080[0xF9] = func(cpu *CPU) { cpu.SP = cpu.HL(); cpu.tick(5) }
	c.base8080[0xE3] = (*CPU).opEXSPHL8080
	c.base8080[0xEB] = func(cpu *CPU) { cpu.D, cpu.H = cpu.H, cpu.D; cpu.E, cpu.L = cpu.L, cpu.E; cpu.tick(5) }

	jpCond := map[int]byte{0xC2: 0, 0xCA: 1, 0xD2: 2, 0xDA: 3, 0xE2: 4, 0xEA: 5, 0xF2: 6, 0xFA: 7}
	for op, cc := range jpCond {
		cc := cc
		c.base8080[op] = func(cpu *CPU) { cpu.opJPCond(cc) }
	}
	callCond := map[int]byte{0xC4: 0, 0xCC: 1, 0xD4: 2, 0xDC: 3, 0xE4: 4, 0xEC: 5, 0xF4: 6, 0xFC: 7}
	for op, cc := range callCond {
		cc := cc
		c.base8080[op] = func(cpu *CPU) { cpu.opCALLCond8080(cc) }
	}
	retCond := map[int]byte{0xC0: 0, 0xC8: 1, 0xD0: 2, 0xD8: 3, 0xE0: 4, 0xE8: 5, 0xF0: 6, 0xF8: 7}
	for op, cc := range retCond {
		cc := cc
		c.base8080[op] = func(cpu *CPU) { cpu.opRETCond8080(cc) }
	}
	for i := 0; i < 8; i++ {
		vec := uint16(i * 8)
		c.base8080[0xC7+i*8] = func(cpu *CPU) { cpu.pushWord(cpu.PC); cpu.PC = vec; cpu.tick(11) }
	}

	c.base8080[0xD3] = func(cpu *CPU) { n := cpu.fetchByte(); cpu.out(n, n, cpu.A); cpu.tick(10) }
	c.base8080[0xDB] = func(cpu *CPU) { n := cpu.fetchByte(); cpu.A = cpu.in(n, n); cpu.tick(10) }

	c.base8080[0x07] = func(cpu *CPU) {
		bit := cpu.A & 0x80 >> 7
		cpu.F = (cpu.F &^ FlagC) | bit
		cpu.A = cpu.A<<1 | bit
		cpu.tick(4)
	}
	c.base8080[0x0F] = func(cpu *CPU) {
		bit := cpu.A & 0x01
		cpu.F = (cpu.F &^ FlagC) | bit
		cpu.A = cpu.A>>1 | bit<<7
		cpu.tick(4)
	}
	c.base8080[0x17] = func(cpu *CPU) {
		carryIn := carryIn(cpu.F)
		bit := cpu.A & 0x80 >> 7
		cpu.F = (cpu.F &^ FlagC) | bit
		cpu.A = cpu.A<<1 | carryIn
		cpu.tick(4)
	}
	c.base8080[0x1F] = func(cpu *CPU) {
		carryIn := carryIn(cpu.F)
		bit := cpu.A & 0x01
		cpu.F = (cpu.F &^ FlagC) | bit
		cpu.A = cpu.A>>1 | carryIn<<7
		cpu.tick(4)
	}
	c.base8080[0x27] = (*CPU).opDAA8080
	c.base8080[0x2F] = func(cpu *CPU) { cpu.A = ^cpu.A; cpu.tick(4) }
	c.base8080[0x37] = func(cpu *CPU) { cpu.F |= FlagC; cpu.tick(4) }
	c.base8080[0x3F] = func(cpu *CPU) { cpu.F ^= FlagC; cpu.tick(4) }
	c.base8080[0xF3] = (*CPU).opDI
	c.base8080[0xFB] = (*CPU).opEI

	// Undocumented aliases (active unless a strict/documented-only
	// variant is wanted -- this module doesn't gate these behind Config,
	// since unlike the Z80 quirks they were never something 8080 software
	// could detect and avoid; they're simply what the silicon does).
	c.base8080[0xCB] = c.base8080[0xC3]
	c.base8080[0xD9] = c.base8080[0xC9]
	c.base8080[0xDD] = c.base8080[0xCD]
	c.base8080[0xED] = c.base8080[0xCD]
	c.base8080[0xFD] = c.base8080[0xCD]
}

func (c *CPU) opTrap8080() { c.trap(1) }

func (c *CPU) dad8080(operand uint16) {
	sum := uint32(c.HL()) + uint32(operand)
	c.SetHL(uint16(sum))
	c.F &^= FlagC
	if sum > 0xFFFF {
		c.F |= FlagC
	}
	c.tick(10)
}

// anaValue implements ANA's AND-with-A plus the AMD8080/Intel-8080 H-flag
// variant (spec.md Open Question, Config.AMD8080ANA). Grounded on
// alt8080.h's finish_ana.
func (c *CPU) anaValue(value byte) {
	before := c.A
	res := before & value
	c.A = res
	c.F = szpTable[res]
	if !c.Cfg.AMD8080ANA && (before|value)&0x08 != 0 {
		c.F |= FlagH
	}
}

func (c *CPU) opANA8080(src byte) {
	c.anaValue(c.readReg8(src))
	if src == 6 {
		c.tick(7)
	} else {
		c.tick(4)
	}
}

func (c *CPU) opDAA8080() {
	a := c.A
	adj := byte(0)
	if (a&0x0F) > 9 || c.Flag(FlagH) {
		adj |= 0x06
	}
	highCarry := a > 0x99 || c.Flag(FlagC)
	if highCarry {
		adj |= 0x60
	}
	res := a + adj
	cout := addCout(a, adj, res)
	c.F = (c.F & FlagC) | szpTable[res]
	if highCarry {
		c.F |= FlagC
	}
	if cout&0x08 != 0 {
		c.F |= FlagH
	}
	c.A = res
	c.tick(4)
}

func (c *CPU) opEXSPHL8080() {
	lo, hi := c.read(c.SP), c.read(c.SP+1)
	mem := uint16(hi)<<8 | uint16(lo)
	hl := c.HL()
	c.write(c.SP, byte(hl))
	c.write(c.SP+1, byte(hl>>8))
	c.SetHL(mem)
	c.tick(18)
}

func (c *CPU) opCALLCond8080(cc byte) {
	addr := c.fetchWord()
	if c.condTrue(cc) {
		c.pushWord(c.PC)
		c.PC = addr
		c.tick(17)
	} else {
		c.tick(11)
	}
}

func (c *CPU) opRETCond8080(cc byte) {
	if c.condTrue(cc) {
		c.PC = c.popWord()
		c.tick(11)
	} else {
		c.tick(5)
	}
}
