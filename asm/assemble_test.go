package asm

import (
	"bytes"
	"strings"
	"testing"
)

func memReader(files map[string]string) FileReader {
	return func(path string) (string, error) {
		if s, ok := files[path]; ok {
			return s, nil
		}
		return "", &pathError{path}
	}
}

type pathError struct{ path string }

func (e *pathError) Error() string { return "no such file: " + e.path }

func assembleSource(t *testing.T, cfg Config, src string) *Context {
	t.Helper()
	ctx, fatal, err := Assemble(cfg, []string{"main.asm"}, memReader(map[string]string{"main.asm": src}))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if fatal != nil {
		t.Fatalf("fatal diagnostic: %v", fatal)
	}
	return ctx
}

// A minimal program exercising ORG, EQU, a label, an instruction, and
// DEFB assembles to the expected byte image with no diagnostics.
func TestAssembleBasicProgram(t *testing.T) {
	src := `
	ORG 8000H
BASE:	EQU 8000H
START:	LD A,B
	LD B,10
	DB 1,2,3
	HALT
`
	ctx := assembleSource(t, Config{}, src)
	if ctx.ErrorCount != 0 {
		for _, d := range ctx.Diagnostics {
			t.Logf("diagnostic: %s", d.String())
		}
		t.Fatalf("ErrorCount = %d, want 0", ctx.ErrorCount)
	}
	v, ok := ctx.Lookup("START")
	if !ok || v != 0x8000 {
		t.Fatalf("START = %04X, ok=%v, want 8000", v, ok)
	}
	want := []byte{0x78, 0x06, 0x0A, 0x01, 0x02, 0x03, 0x76}
	got := ctx.RenderObject()
	hex := WriteIntelHexFromBytes(0x8000, want)
	if string(got) != hex {
		t.Fatalf("object mismatch:\ngot:  %q\nwant: %q", got, hex)
	}
}

// helper building the expected Intel HEX text for a single contiguous
// run, so the test above doesn't need to hand-encode checksums.
func WriteIntelHexFromBytes(origin uint16, data []byte) string {
	ctx := NewContext(Config{})
	ctx.Pass = 2
	ctx.PC = origin
	ctx.Emit(data...)
	return ctx.WriteIntelHex()
}

// IRP expansion: IRP X,<A,B,C> / DB 'X' / ENDM emits bytes 41 42 43.
func TestIRPExpansion(t *testing.T) {
	src := `
	ORG 0
	IRP X,<A,B,C>
	DB 'X'
	ENDM
`
	ctx := assembleSource(t, Config{}, src)
	if ctx.ErrorCount != 0 {
		for _, d := range ctx.Diagnostics {
			t.Logf("diagnostic: %s", d.String())
		}
		t.Fatalf("ErrorCount = %d, want 0", ctx.ErrorCount)
	}
	segs := ctx.Segments()
	if len(segs) != 1 || !bytes.Equal(segs[0].Bytes, []byte{0x41, 0x42, 0x43}) {
		t.Fatalf("segments = %+v, want one segment {0,[41 42 43]}", segs)
	}
}

// A macro with LOCAL L1 expanded three times produces three distinct
// labels ??0001, ??0002, ??0003.
func TestMacroLocalLabels(t *testing.T) {
	src := `
	ORG 0
M:	MACRO
	LOCAL L1
L1:	NOP
	ENDM
	M
	M
	M
`
	ctx := assembleSource(t, Config{}, src)
	if ctx.ErrorCount != 0 {
		for _, d := range ctx.Diagnostics {
			t.Logf("diagnostic: %s", d.String())
		}
		t.Fatalf("ErrorCount = %d, want 0", ctx.ErrorCount)
	}
	for _, name := range []string{"??0001", "??0002", "??0003"} {
		if _, ok := ctx.Lookup(name); !ok {
			t.Errorf("expected local label %s to be defined", name)
		}
	}
}

// Intel HEX decoder applied to Intel HEX emission reconstructs the
// original byte image exactly (spec.md §8 round-trip property).
func TestIntelHexRoundTrip(t *testing.T) {
	ctx := NewContext(Config{})
	ctx.Pass = 2
	ctx.PC = 0x0100
	ctx.Emit(0xAA, 0xBB, 0xCC, 0xDD)
	ctx.PC = 0x0200
	ctx.Emit(0x11, 0x22)

	text := ctx.WriteIntelHex()
	decoded, err := ReadIntelHex(text)
	if err != nil {
		t.Fatalf("ReadIntelHex: %v", err)
	}
	want := map[uint16]byte{
		0x0100: 0xAA, 0x0101: 0xBB, 0x0102: 0xCC, 0x0103: 0xDD,
		0x0200: 0x11, 0x0201: 0x22,
	}
	if len(decoded) != len(want) {
		t.Fatalf("decoded %d bytes, want %d", len(decoded), len(want))
	}
	for addr, b := range want {
		if decoded[addr] != b {
			t.Errorf("decoded[%04X] = %02X, want %02X", addr, decoded[addr], b)
		}
	}
}

// The worked example from spec.md §8: two data bytes 0xAA, 0xBB at
// address 0x0100, record length 16, produces a single data record plus
// the EOF record.
func TestIntelHexWorkedExample(t *testing.T) {
	ctx := NewContext(Config{RecordLen: 16})
	ctx.Pass = 2
	ctx.PC = 0x0100
	ctx.Emit(0xAA, 0xBB)

	got := ctx.WriteIntelHex()
	if !strings.HasPrefix(got, ":020100") {
		t.Fatalf("record header = %q, want prefix :020100", got[:min(7, len(got))])
	}
	if !strings.Contains(got, "AABB") {
		t.Fatalf("data bytes missing from record: %q", got)
	}
	if !strings.HasSuffix(got, ":00000001FF\r\n") {
		t.Fatalf("missing EOF record: %q", got)
	}
}

// For every 16-bit value v: eval("v") = v; eval("HIGH v") = v>>8;
// eval("LOW v") = v&0xFF.
func TestExprHighLow(t *testing.T) {
	ctx := NewContext(Config{})
	for _, v := range []uint16{0, 1, 0x00FF, 0xABCD, 0xFFFF} {
		got, err := ctx.EvalExpr(itoaHex(v))
		if err != nil {
			t.Fatalf("eval %04X: %v", v, err)
		}
		if got != v {
			t.Errorf("eval(%s) = %04X, want %04X", itoaHex(v), got, v)
		}
		hi, err := ctx.EvalExpr("HIGH " + itoaHex(v))
		if err != nil {
			t.Fatalf("eval HIGH %04X: %v", v, err)
		}
		if hi != v>>8 {
			t.Errorf("HIGH %04X = %02X, want %02X", v, hi, v>>8)
		}
		lo, err := ctx.EvalExpr("LOW " + itoaHex(v))
		if err != nil {
			t.Fatalf("eval LOW %04X: %v", v, err)
		}
		if lo != v&0xFF {
			t.Errorf("LOW %04X = %02X, want %02X", v, lo, v&0xFF)
		}
	}
}

// itoaHex renders v as a traditional-assembler hex literal: a leading
// "0" (so it can never be mistaken for an identifier) and a trailing
// "H" suffix (so it parses as hex regardless of the context's RADIX).
func itoaHex(v uint16) string {
	const digits = "0123456789ABCDEF"
	var b [4]byte
	for i := 3; i >= 0; i-- {
		b[i] = digits[v%16]
		v /= 16
	}
	return "0" + string(b[:]) + "H"
}
