package bus

import "testing"

func TestMemoryLoadAndReadWrite(t *testing.T) {
	m := NewMemory()
	m.Load(0x1000, []byte{0x11, 0x22, 0x33})
	if m.MemRead(0x1000) != 0x11 || m.MemRead(0x1001) != 0x22 || m.MemRead(0x1002) != 0x33 {
		t.Fatalf("Load did not place bytes at the expected addresses")
	}
	m.MemWrite(0x1000, 0xAA)
	if m.MemRead(0x1000) != 0xAA {
		t.Fatalf("MemWrite did not take effect")
	}
}

func TestMemoryROMRejectsWrites(t *testing.T) {
	m := NewMemory()
	m.Load(0, []byte{0xCA})
	m.SetROM(0, 0x0FFF)

	m.MemWrite(0, 0xFF)
	if m.MemRead(0) != 0xCA {
		t.Fatalf("write inside ROM range took effect, ROM should be read-only")
	}
	m.MemWrite(0x1000, 0x55) // just past the ROM window
	if m.MemRead(0x1000) != 0x55 {
		t.Fatalf("write just outside the ROM range was rejected")
	}
}

func TestMemoryOnWriteHookFiresOutsideROM(t *testing.T) {
	m := NewMemory()
	var gotAddr uint16
	var gotVal byte
	fired := 0
	m.OnWrite = func(addr uint16, value byte) {
		fired++
		gotAddr, gotVal = addr, value
	}

	m.MemWrite(0x2000, 0x7E)
	if fired != 1 || gotAddr != 0x2000 || gotVal != 0x7E {
		t.Fatalf("OnWrite fired=%d addr=%04X val=%02X, want 1, 2000, 7E", fired, gotAddr, gotVal)
	}
}

func TestMemoryOnWriteHookSuppressedInROM(t *testing.T) {
	m := NewMemory()
	m.SetROM(0, 0xFF)
	fired := false
	m.OnWrite = func(addr uint16, value byte) { fired = true }

	m.MemWrite(0x80, 0x01)
	if fired {
		t.Fatal("OnWrite fired for a write discarded by ROM protection")
	}
}

// Unmapped I/O ports read as 0xFF, the open-collector-bus convention
// (spec.md §4.2) for nothing driving the data bus.
func TestIOSpaceUnmappedPortReadsFF(t *testing.T) {
	s := NewIOSpace()
	if v := s.IOIn(0x10, 0x00); v != 0xFF {
		t.Fatalf("unmapped port read %02X, want FF", v)
	}
	s.IOOut(0x10, 0x00, 0x42) // must not panic with nothing attached
}

type fakePort struct {
	value byte
	outs  []byte
}

func (p *fakePort) In() byte       { return p.value }
func (p *fakePort) Out(value byte) { p.outs = append(p.outs, value) }

func TestIOSpaceAttachDispatchesOnLowByte(t *testing.T) {
	s := NewIOSpace()
	port := &fakePort{value: 0x99}
	s.Attach(0x40, port)

	if v := s.IOIn(0x40, 0xFF); v != 0x99 {
		t.Fatalf("IOIn(0x40) = %02X, want 99", v)
	}
	// high byte is ignored for dispatch purposes
	if v := s.IOIn(0x40, 0x00); v != 0x99 {
		t.Fatalf("IOIn ignoring high byte changed result: got %02X", v)
	}
	s.IOOut(0x40, 0xFF, 0x07)
	if len(port.outs) != 1 || port.outs[0] != 0x07 {
		t.Fatalf("Out not recorded on attached handler: %+v", port.outs)
	}

	// a different port number is unaffected
	if v := s.IOIn(0x41, 0x00); v != 0xFF {
		t.Fatalf("adjacent unmapped port = %02X, want FF", v)
	}
}

func TestSystemBusPromotesMemoryAndIO(t *testing.T) {
	b := NewSystemBus()
	b.Load(0, []byte{0x01, 0x02})
	if b.MemRead(0) != 0x01 || b.MemRead(1) != 0x02 {
		t.Fatal("SystemBus did not promote Memory's methods")
	}
	port := &fakePort{value: 0x5A}
	b.Attach(0x01, port)
	if v := b.IOIn(0x01, 0x00); v != 0x5A {
		t.Fatalf("SystemBus did not promote IOSpace's methods: got %02X", v)
	}
}
