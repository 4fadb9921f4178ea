package cpu

import (
	"testing"

	"github.com/intuitionamiga/z80pack-go/bus"
)

// ANA's H flag follows the Intel variant (OR of operand bit 3) by
// default, and is never set under the AMD8080ANA variant.
func TestANA8080_HFlagVariant(t *testing.T) {
	b := bus.NewSystemBus()
	b.Load(0, []byte{0xA0}) // ANA B
	c := New(Arch8080, b, Config{})
	c.A, c.B = 0x08, 0x00

	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !c.Flag(FlagH) {
		t.Fatal("Intel variant: H flag clear, want set ((A|B)&8 != 0)")
	}

	b2 := bus.NewSystemBus()
	b2.Load(0, []byte{0xA0})
	c2 := New(Arch8080, b2, Config{AMD8080ANA: true})
	c2.A, c2.B = 0x08, 0x00

	if _, err := c2.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c2.Flag(FlagH) {
		t.Fatal("AMD variant: H flag set, want clear")
	}
}

// DD 65 (LD IXH,IXL register-direct form) only takes its undocumented
// index-half meaning when Cfg.Undocumented is set; otherwise the seeded
// "behave like the unprefixed opcode" entry runs LD H,L against the real
// H/L pair and leaves IX untouched.
func TestUndocumentedIXHalfRegisters(t *testing.T) {
	b := bus.NewSystemBus()
	b.Load(0, []byte{0xDD, 0x65}) // DD LD H,L / LD IXH,IXL
	c := New(ArchZ80, b, Config{})
	c.IX = 0x1234
	c.H, c.L = 0xAA, 0xBB

	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.IX != 0x1234 {
		t.Fatalf("documented mode: IX = %04X, want unchanged 1234", c.IX)
	}
	if c.H != 0xBB {
		t.Fatalf("documented mode: H = %02X, want BB (LD H,L)", c.H)
	}

	b2 := bus.NewSystemBus()
	b2.Load(0, []byte{0xDD, 0x65})
	c2 := New(ArchZ80, b2, Config{Undocumented: true})
	c2.IX = 0x1234
	c2.H, c2.L = 0xAA, 0xBB

	if _, err := c2.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c2.IX != 0x3434 {
		t.Fatalf("undocumented mode: IX = %04X, want 3434 (IXH := IXL)", c2.IX)
	}
	if c2.H != 0xAA || c2.L != 0xBB {
		t.Fatalf("undocumented mode touched real H/L: H=%02X L=%02X", c2.H, c2.L)
	}
}

type dmaStub struct {
	cycles   int
	serviced bool
}

func (d *dmaStub) ServiceDMA() int {
	d.serviced = true
	return d.cycles
}

type dmaAckBus struct {
	*bus.SystemBus
	acked bool
}

func (b *dmaAckBus) OnDMAAck() { b.acked = true }

// A DMA request serviced at the next Step() boundary consumes the
// handler's reported T-states, fires OnDMAAck, and does not fetch or
// execute the instruction at PC (spec.md §4.1.6/§5).
func TestDMARequestServicedBeforeNextInstruction(t *testing.T) {
	sysBus := bus.NewSystemBus()
	sysBus.Load(0, []byte{0x3C}) // INC A, must not run this Step
	ackBus := &dmaAckBus{SystemBus: sysBus}
	c := New(ArchZ80, ackBus, Config{})
	c.A = 0x01

	stub := &dmaStub{cycles: 7}
	c.RequestDMA(stub)

	tstates, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if tstates != 7 {
		t.Fatalf("T-states = %d, want 7 (the DMA handler's reported cost)", tstates)
	}
	if !stub.serviced {
		t.Fatal("ServiceDMA was never called")
	}
	if !ackBus.acked {
		t.Fatal("OnDMAAck was never called")
	}
	if c.A != 0x01 {
		t.Fatalf("A = %02X, want unchanged 01 -- INC A must not have run", c.A)
	}
	if c.PC != 0 {
		t.Fatalf("PC = %04X, want 0 -- the DMA cycle doesn't fetch", c.PC)
	}
}

type haltObserver struct {
	*bus.SystemBus
	halted bool
}

func (b *haltObserver) OnHalt() { b.halted = true }

// DI; HALT with a HaltHook-capable bus attached idles (Halted=true, the
// machine is NOT stopped with ErrOpHalt) and notifies the hook, unlike
// the no-frontpanel case in scenarios_test.go.
func TestDIHalt_WithFrontpanelIdles(t *testing.T) {
	sysBus := bus.NewSystemBus()
	sysBus.Load(0, []byte{0xF3, 0x76}) // DI; HALT
	fp := &haltObserver{SystemBus: sysBus}
	c := New(ArchZ80, fp, Config{})

	if _, err := c.Step(); err != nil { // DI
		t.Fatalf("DI: %v", err)
	}
	if _, err := c.Step(); err != nil { // HALT
		t.Fatalf("HALT: %v", err)
	}
	if c.Status == Stopped {
		t.Fatal("Status = Stopped, want the machine to idle with a frontpanel attached")
	}
	if !c.Halted {
		t.Fatal("Halted flag not set")
	}
	if !fp.halted {
		t.Fatal("OnHalt hook never fired")
	}
}
