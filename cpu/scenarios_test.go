package cpu

import (
	"testing"

	"github.com/intuitionamiga/z80pack-go/bus"
)

func newTestZ80() (*CPU, *bus.SystemBus) {
	b := bus.NewSystemBus()
	return New(ArchZ80, b, Config{}), b
}

// ADD A,B overflow: A=0x7F, B=0x01, F.C=0 -> A=0x80, S=1, Z=0, H=1, V=1,
// N=0, C=0, T+=4.
func TestADDAB_Overflow(t *testing.T) {
	c, b := newTestZ80()
	c.A, c.B = 0x7F, 0x01
	b.Load(0, []byte{0x80}) // ADD A,B

	tstates, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.A != 0x80 {
		t.Fatalf("A = %02X, want 0x80", c.A)
	}
	if tstates != 4 {
		t.Fatalf("T-states = %d, want 4", tstates)
	}
	if !c.Flag(FlagS) {
		t.Error("S flag not set")
	}
	if c.Flag(FlagZ) {
		t.Error("Z flag set, want clear")
	}
	if !c.Flag(FlagH) {
		t.Error("H flag not set")
	}
	if !c.Flag(FlagPV) {
		t.Error("V flag not set")
	}
	if c.Flag(FlagN) {
		t.Error("N flag set, want clear")
	}
	if c.Flag(FlagC) {
		t.Error("C flag set, want clear")
	}
}

// IM 2 interrupt: I=0x30, data byte 0x40, memory[0x3040..0x3041]=00,20;
// request interrupt; next Step pushes PC, sets PC=0x2000, clears IFF1,
// consumes 19 T.
func TestIM2Interrupt(t *testing.T) {
	c, b := newTestZ80()
	c.I = 0x30
	c.IM = 2
	c.IFF1 = true
	c.SP = 0xFFF0
	c.PC = 0x1000
	b.Load(0x3040, []byte{0x00, 0x20})

	c.RequestInterrupt(0x40)
	tstates, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if tstates != 19 {
		t.Fatalf("T-states = %d, want 19", tstates)
	}
	if c.PC != 0x2000 {
		t.Fatalf("PC = %04X, want 0x2000", c.PC)
	}
	if c.IFF1 {
		t.Error("IFF1 still set after interrupt acknowledge")
	}
	if c.SP != 0xFFEE {
		t.Fatalf("SP = %04X, want 0xFFEE after push", c.SP)
	}
	lo, hi := b.MemRead(0xFFEE), b.MemRead(0xFFEF)
	if uint16(hi)<<8|uint16(lo) != 0x1000 {
		t.Fatalf("pushed return address = %04X%02X, want 0x1000", hi, lo)
	}
}

// DI; HALT with no frontpanel collaborator attached stops the machine
// with ErrOpHalt (spec.md §8 boundary case).
func TestDIHalt_NoFrontpanel(t *testing.T) {
	c, b := newTestZ80()
	b.Load(0, []byte{0xF3, 0x76}) // DI; HALT

	if _, err := c.Step(); err != nil {
		t.Fatalf("DI: %v", err)
	}
	_, err := c.Step()
	if err == nil {
		t.Fatal("expected ErrOpHalt, got nil")
	}
	if c.Status != Stopped {
		t.Fatalf("Status = %v, want Stopped", c.Status)
	}
	if c.Err != ErrOpHalt {
		t.Fatalf("Err = %v, want ErrOpHalt", c.Err)
	}
}

// EI; RET does not take a pending interrupt between EI and RET, even
// though EI itself sets IFF1/IFF2 (after its one-instruction protection
// delay) -- the RET executes first.
func TestEIRET_NoInterruptBetween(t *testing.T) {
	c, b := newTestZ80()
	c.SP = 0xFFF0
	b.Load(0xFFF0, []byte{0x34, 0x12}) // return address 0x1234
	b.Load(0, []byte{0xFB, 0xC9})      // EI; RET

	c.RequestInterrupt(0xFF) // pending before EI even runs

	if _, err := c.Step(); err != nil { // EI
		t.Fatalf("EI: %v", err)
	}
	pcBeforeRet := c.PC
	if _, err := c.Step(); err != nil { // RET, not an interrupt ack
		t.Fatalf("RET: %v", err)
	}
	if c.PC != 0x1234 {
		t.Fatalf("PC = %04X (started at %04X), want 0x1234 -- interrupt was taken instead of RET", c.PC, pcBeforeRet)
	}
}

// LD A,I and LD A,R both copy IFF2 into the P/V flag.
func TestLDAIR_CopiesIFF2ToPV(t *testing.T) {
	c, b := newTestZ80()
	c.I, c.R = 0x42, 0x13
	c.IFF2 = true
	b.Load(0, []byte{0xED, 0x57, 0xED, 0x5F}) // LD A,I ; LD A,R

	if _, err := c.Step(); err != nil {
		t.Fatalf("LD A,I: %v", err)
	}
	if c.A != 0x42 || !c.Flag(FlagPV) {
		t.Fatalf("after LD A,I: A=%02X PV=%v, want A=42 PV=true", c.A, c.Flag(FlagPV))
	}
	if _, err := c.Step(); err != nil {
		t.Fatalf("LD A,R: %v", err)
	}
	if !c.Flag(FlagPV) {
		t.Fatal("after LD A,R: PV flag clear, want set (IFF2 still true)")
	}
}

// Two consecutive Reset() calls leave identical state.
func TestResetIdempotent(t *testing.T) {
	c, _ := newTestZ80()
	c.A, c.PC, c.IM = 0x55, 0x1234, 2
	c.Reset()
	wantPC, wantSP, wantIM, wantIFF1, wantStatus := c.PC, c.SP, c.IM, c.IFF1, c.Status
	c.Reset()
	if c.PC != wantPC || c.SP != wantSP || c.IM != wantIM || c.IFF1 != wantIFF1 || c.Status != wantStatus {
		t.Fatalf("second Reset() diverged: PC=%04X SP=%04X IM=%d IFF1=%v Status=%v",
			c.PC, c.SP, c.IM, c.IFF1, c.Status)
	}
}

// A tight JR $ loop never modifies memory.
func TestTightLoopNeverWrites(t *testing.T) {
	c, b := newTestZ80()
	b.Load(0, []byte{0x18, 0xFE}) // JR $
	b.OnWrite = func(addr uint16, value byte) {
		t.Fatalf("unexpected write to %04X = %02X during JR $ loop", addr, value)
	}
	for i := 0; i < 1000; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if c.PC != 0 {
		t.Fatalf("PC = %04X, want 0x0000 (JR $ always returns to itself)", c.PC)
	}
}
