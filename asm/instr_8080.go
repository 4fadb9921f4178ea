package asm

import "fmt"

var reg8080Order = []string{"B", "C", "D", "E", "H", "L", "M", "A"}

func reg8080Code(name string) (byte, bool) {
	switch name {
	case "B":
		return 0, true
	case "C":
		return 1, true
	case "D":
		return 2, true
	case "E":
		return 3, true
	case "H":
		return 4, true
	case "L":
		return 5, true
	case "M": // (HL) in 8080 mnemonic syntax
		return 6, true
	case "A":
		return 7, true
	}
	return 0, false
}

func rp8080Code(name string) (byte, bool) {
	switch name {
	case "B":
		return 0, true // BC, named "B" in 8080 syntax (LXI B,...)
	case "D":
		return 1, true // DE
	case "H":
		return 2, true // HL
	case "SP":
		return 3, true
	}
	return 0, false
}

// classify8080Operand maps 8080 register-pair mnemonics (B meaning BC,
// D meaning DE, H meaning HL, M meaning (HL), PSW meaning AF) onto the
// same operand-kind space classifyOperand already produces for Z80
// syntax, since both architectures share this package's operand/expr
// machinery.
func classify8080Operand(raw string) operand {
	s := upcaseASCII(trimOperand(raw))
	switch s {
	case "M":
		return operand{kind: "(HL)"}
	case "PSW":
		return operand{kind: "PSW"}
	case "B":
		return operand{kind: "BC8"}
	case "D":
		return operand{kind: "DE8"}
	case "H":
		return operand{kind: "HL8"}
	}
	return classifyOperand(raw)
}

func trimOperand(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	return s
}

// build8080Table constructs the Intel 8080 mnemonic table. Opcode
// values mirror cpu/i8080.go's decode tables for the documented
// opcodes; the undocumented aliases decoded there are never emitted
// here. Grounded on the
// teacher's assembler/ie64asm.go encode-function-per-mnemonic shape and
// on original_source/z80asm's traditional 8080 mnemonic surface (MOV/
// MVI/LXI/ANA/ORA/...) rather than Z80-style LD/AND/OR syntax.
func build8080Table() instrTable {
	t := newInstrTable()

	t.add("NOP", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x00}, nil })
	t.add("HLT", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x76}, nil })
	t.add("DI", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xF3}, nil })
	t.add("EI", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xFB}, nil })
	t.add("RLC", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x07}, nil })
	t.add("RRC", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x0F}, nil })
	t.add("RAL", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x17}, nil })
	t.add("RAR", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x1F}, nil })
	t.add("DAA", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x27}, nil })
	t.add("CMA", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x2F}, nil })
	t.add("STC", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x37}, nil })
	t.add("CMC", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x3F}, nil })
	t.add("RET", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xC9}, nil })
	t.add("XCHG", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xEB}, nil })
	t.add("XTHL", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xE3}, nil })
	t.add("SPHL", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xF9}, nil })
	t.add("PCHL", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xE9}, nil })

	for _, dest := range reg8080Order {
		for _, src := range reg8080Order {
			if dest == "M" && src == "M" {
				continue // that slot is HLT
			}
			dc, _ := reg8080Code(dest)
			sc, _ := reg8080Code(src)
			opcode := byte(0x40) | dc<<3 | sc
			t.add("MOV", []string{mov8080Kind(dest), mov8080Kind(src)}, 1, func(ctx *Context, ops []operand) ([]byte, error) {
				return []byte{opcode}, nil
			})
		}
		dc, _ := reg8080Code(dest)
		opcode := byte(0x06) | dc<<3
		t.add("MVI", []string{mov8080Kind(dest), "n"}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
			v, err := evalByte(ctx, ops[1])
			if err != nil {
				return nil, err
			}
			return []byte{opcode, v}, nil
		})
		incOp, decOp := byte(0x04)|dc<<3, byte(0x05)|dc<<3
		t.add("INR", []string{mov8080Kind(dest)}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{incOp}, nil })
		t.add("DCR", []string{mov8080Kind(dest)}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{decOp}, nil })
	}

	aluMnemonics := []struct {
		name string
		base byte
	}{
		{"ADD", 0x80}, {"ADC", 0x88}, {"SUB", 0x90}, {"SBB", 0x98},
		{"ANA", 0xA0}, {"XRA", 0xA8}, {"ORA", 0xB0}, {"CMP", 0xB8},
	}
	immMnemonics := map[string]byte{
		"ADI": 0xC6, "ACI": 0xCE, "SUI": 0xD6, "SBI": 0xDE,
		"ANI": 0xE6, "XRI": 0xEE, "ORI": 0xF6, "CPI": 0xFE,
	}
	for _, m := range aluMnemonics {
		m := m
		for _, src := range reg8080Order {
			sc, _ := reg8080Code(src)
			opcode := m.base | sc
			t.add(m.name, []string{mov8080Kind(src)}, 1, func(ctx *Context, ops []operand) ([]byte, error) {
				return []byte{opcode}, nil
			})
		}
	}
	for name, op := range immMnemonics {
		op := op
		t.add(name, []string{"n"}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
			v, err := evalByte(ctx, ops[0])
			if err != nil {
				return nil, err
			}
			return []byte{op, v}, nil
		})
	}

	for _, rr := range []string{"B", "D", "H", "SP"} {
		rc, _ := rp8080Code(rr)
		kind := rp8080Kind(rr)
		lxiOp := byte(0x01) | rc<<4
		inxOp := byte(0x03) | rc<<4
		dcxOp := byte(0x0B) | rc<<4
		dadOp := byte(0x09) | rc<<4
		t.add("LXI", []string{kind, "n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
			lo, hi, err := evalWord(ctx, ops[1])
			if err != nil {
				return nil, err
			}
			return []byte{lxiOp, lo, hi}, nil
		})
		t.add("INX", []string{kind}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{inxOp}, nil })
		t.add("DCX", []string{kind}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{dcxOp}, nil })
		t.add("DAD", []string{kind}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{dadOp}, nil })
	}

	t.add("PUSH", []string{"BC8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xC5}, nil })
	t.add("PUSH", []string{"DE8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xD5}, nil })
	t.add("PUSH", []string{"HL8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xE5}, nil })
	t.add("PUSH", []string{"PSW"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xF5}, nil })
	t.add("POP", []string{"BC8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xC1}, nil })
	t.add("POP", []string{"DE8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xD1}, nil })
	t.add("POP", []string{"HL8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xE1}, nil })
	t.add("POP", []string{"PSW"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xF1}, nil })

	t.add("SHLD", []string{"n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0x22, lo, hi}, nil
	})
	t.add("LHLD", []string{"n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0x2A, lo, hi}, nil
	})
	t.add("STA", []string{"n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0x32, lo, hi}, nil
	})
	t.add("LDA", []string{"n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0x3A, lo, hi}, nil
	})
	t.add("STAX", []string{"BC8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x02}, nil })
	t.add("STAX", []string{"DE8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x12}, nil })
	t.add("LDAX", []string{"BC8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x0A}, nil })
	t.add("LDAX", []string{"DE8"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x1A}, nil })

	t.add("JMP", []string{"n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0xC3, lo, hi}, nil
	})
	t.add("CALL", []string{"n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0xCD, lo, hi}, nil
	})
	condMnemonics := map[string]byte{"NZ": 0, "Z": 1, "NC": 2, "C": 3, "PO": 4, "PE": 5, "P": 6, "M": 7}
	for name, code := range condMnemonics {
		code := code
		jOp := byte(0xC2) | code<<3
		cOp := byte(0xC4) | code<<3
		rOp := byte(0xC0) | code<<3
		t.add("J"+name, []string{"n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
			lo, hi, err := evalWord(ctx, ops[0])
			if err != nil {
				return nil, err
			}
			return []byte{jOp, lo, hi}, nil
		})
		t.add("C"+name, []string{"n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
			lo, hi, err := evalWord(ctx, ops[0])
			if err != nil {
				return nil, err
			}
			return []byte{cOp, lo, hi}, nil
		})
		t.add("R"+name, nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{rOp}, nil })
	}
	t.add("RST", []string{"n"}, 1, func(ctx *Context, ops []operand) ([]byte, error) {
		v, err := ctx.EvalExpr(ops[0].expr)
		if err != nil {
			return nil, err
		}
		if v%8 != 0 || v > 0x38 {
			return nil, fmt.Errorf("RST target must be one of 0..7 (x8)")
		}
		return []byte{0xC7 | byte(v)}, nil
	})
	t.add("IN", []string{"n"}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
		v, err := evalByte(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0xDB, v}, nil
	})
	t.add("OUT", []string{"n"}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
		v, err := evalByte(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0xD3, v}, nil
	})

	return t
}

// mov8080Kind returns the operand-kind string classify8080Operand
// produces for an 8080 register name, so table construction and
// operand classification agree.
func mov8080Kind(reg string) string {
	switch reg {
	case "M":
		return "(HL)"
	case "B", "D", "H":
		return rp8080Kind(reg)
	}
	return reg
}

func rp8080Kind(rr string) string {
	switch rr {
	case "B":
		return "BC8"
	case "D":
		return "DE8"
	case "H":
		return "HL8"
	case "SP":
		return "SP"
	}
	return rr
}
