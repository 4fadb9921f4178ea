package cpu

import "fmt"

// Step executes exactly one instruction (or one HALT idle tick, or one
// interrupt/DMA service) and returns the T-states consumed. It is the
// single entry point for both architectures; Arch selects which
// dispatch tables are walked.
func (c *CPU) Step() (int, error) {
	if c.Status == Stopped {
		return 0, c.Err
	}
	before := c.T

	if c.serviceDMAIfRequested() {
		return int(c.T - before), nil
	}

	if c.nmiLine && !c.nmiPrev {
		c.nmiPending = true
	}
	c.nmiPrev = c.nmiLine

	if c.nmiPending {
		c.serviceNMI()
		return int(c.T - before), nil
	}

	if c.irqLine && c.IFF1 {
		if err := c.serviceIRQ(); err != nil {
			c.Status = Stopped
			return int(c.T - before), err
		}
		return int(c.T - before), nil
	}

	if c.Halted {
		c.tick(4)
		return int(c.T - before), nil
	}

	op := c.fetchOpcode()
	var table *[256]opFunc
	if c.Arch == Arch8080 {
		table = &c.base8080
	} else {
		table = &c.baseOps
	}
	table[op](c)
	c.finishInstruction()

	if c.Status == Stopped {
		return int(c.T - before), c.Err
	}
	return int(c.T - before), nil
}

// finishInstruction runs after every dispatched instruction (including EI
// itself) and drives the EI-protection countdown: EI sets iffDelay to 2,
// and IFF1/IFF2 only flip true once it has been decremented to 0 by two
// finishInstruction calls, so the instruction immediately following EI
// never observes IFF1 true and cannot take an interrupt.
func (c *CPU) finishInstruction() {
	if c.iffDelay > 0 {
		c.iffDelay--
		if c.iffDelay == 0 {
			c.IFF1 = true
			c.IFF2 = true
		}
	}
}

// opDI and opEI are shared by both architectures (8080's DI/EI are the
// same mechanism, without the interrupt-mode distinction).
func (c *CPU) opDI() {
	c.IFF1 = false
	c.IFF2 = false
	c.iffDelay = 0
	c.tick(4)
}

func (c *CPU) opEI() {
	c.iffDelay = 2
	c.tick(4)
}

// Run steps the CPU until until returns true, or an error stops it.
// A nil until runs until the CPU stops on its own (error, or an external
// request observed between instructions).
func (c *CPU) Run(until func(*CPU) bool) error {
	for {
		if _, err := c.Step(); err != nil {
			return err
		}
		if until != nil && until(c) {
			return nil
		}
		if c.Status == Stopped {
			return c.Err
		}
	}
}

// RequestInterrupt asserts the maskable interrupt line and latches the
// data-bus byte an IM 0/2 acknowledge cycle will read.
func (c *CPU) RequestInterrupt(data byte) {
	c.irqLine = true
	c.irqData = data
}

// ClearInterrupt deasserts the maskable interrupt line (level-triggered
// devices must do this themselves once serviced).
func (c *CPU) ClearInterrupt() { c.irqLine = false }

// RequestNMI raises the (edge-triggered) non-maskable interrupt line.
func (c *CPU) RequestNMI() { c.nmiLine = true }

// RequestDMA registers a DMA handler to be serviced at the next
// instruction boundary per spec.md §4.1.6/§5.
func (c *CPU) RequestDMA(h DMAHandler) {
	c.dmaRequested = true
	c.dmaHandler = h
}

// RequestStop asks the CPU to exit its run loop at the next instruction
// boundary with ErrUserInt (spec.md §5, "Cancellation").
func (c *CPU) RequestStop() {
	c.Status = Stopped
	c.Err = ErrUserInt
}

func (c *CPU) serviceDMAIfRequested() bool {
	if !c.dmaRequested || c.dmaHandler == nil {
		return false
	}
	c.dmaRequested = false
	cycles := c.dmaHandler.ServiceDMA()
	c.tick(cycles)
	if h, ok := c.bus.(DMAAckHook); ok {
		h.OnDMAAck()
	}
	return true
}

func (c *CPU) serviceNMI() {
	c.nmiPending = false
	c.Halted = false
	c.incrementR()
	c.pushWord(c.PC)
	c.IFF2 = c.IFF1
	c.IFF1 = false
	c.PC = 0x0066
	c.tick(11)
}

func (c *CPU) serviceIRQ() error {
	c.Halted = false
	c.incrementR()
	c.IFF1 = false
	c.IFF2 = false

	if c.Arch == Arch8080 {
		// The 8080 has no interrupt modes: the interrupting device always
		// places an instruction (almost always an RST) on the data bus.
		c.tick(2)
		c.base8080[c.irqData](c)
		return nil
	}

	switch c.IM {
	case 0:
		// The data-bus byte is executed as an opcode (commonly RST).
		// Dispatch it through the base table directly rather than
		// through fetchOpcode, since it isn't read from memory at PC.
		c.tick(2)
		c.baseOps[c.irqData](c)
	case 1:
		c.pushWord(c.PC)
		c.PC = 0x0038
		c.tick(13)
	case 2:
		vector := uint16(c.I)<<8 | uint16(c.irqData&0xFE)
		target := c.readWord(vector)
		c.pushWord(c.PC)
		c.PC = target
		c.tick(19)
	default:
		return fmt.Errorf("%w: invalid interrupt mode %d", ErrIntError, c.IM)
	}
	return nil
}

func (c *CPU) trap(depth int) {
	c.Status = Stopped
	switch depth {
	case 1:
		c.Err = ErrOpTrap1
	case 2:
		c.Err = ErrOpTrap2
	case 3:
		c.Err = ErrOpTrap3
	default:
		c.Err = ErrOpTrap4
	}
}

// opHALT is shared by both architectures: HLT/HALT behavior (spec.md
// §4.1.5) is architecture-independent.
func (c *CPU) opHALT() {
	if !c.IFF1 && !c.hasHaltHook() {
		c.Status = Stopped
		c.Err = ErrOpHalt
		c.tick(4)
		return
	}
	c.Halted = true
	if h, ok := c.bus.(HaltHook); ok {
		h.OnHalt()
	}
	c.tick(4)
}

func (c *CPU) hasHaltHook() bool {
	_, ok := c.bus.(HaltHook)
	return ok
}
