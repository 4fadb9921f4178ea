package asm

import "fmt"

// buildZ80Table constructs the Z80 mnemonic encoder table. Operand
// shapes mirror the decode side in cpu/z80_base.go, cpu/z80_cb.go,
// cpu/z80_ed.go and cpu/z80_ddfd.go exactly: this table emits the same
// opcode bytes that package decodes, so the assembler and the
// interpreter agree on encoding by construction. Grounded on the
// teacher's assembler/ie64asm.go asmMove/asmALU3/asmBcc family for the
// "classify operands, pick the encode function" structure, generalized
// from IE64's fixed-width instructions to the Z80's variable-length,
// prefix-based encoding.
func buildZ80Table() instrTable {
	t := newInstrTable()

	t.add("NOP", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x00}, nil })
	t.add("HALT", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x76}, nil })
	t.add("DI", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xF3}, nil })
	t.add("EI", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xFB}, nil })
	t.add("EXX", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xD9}, nil })
	t.add("RLCA", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x07}, nil })
	t.add("RRCA", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x0F}, nil })
	t.add("RLA", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x17}, nil })
	t.add("RRA", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x1F}, nil })
	t.add("DAA", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x27}, nil })
	t.add("CPL", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x2F}, nil })
	t.add("SCF", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x37}, nil })
	t.add("CCF", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x3F}, nil })
	t.add("RET", nil, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xC9}, nil })

	t.add("EX", []string{"DE", "HL"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xEB}, nil })
	t.add("EX", []string{"AF", "AF'"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x08}, nil })
	t.add("EX", []string{"(SP)", "HL"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xE3}, nil })
	t.add("EX", []string{"(SP)", "IX"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xDD, 0xE3}, nil })
	t.add("EX", []string{"(SP)", "IY"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xFD, 0xE3}, nil })

	regOrder := []string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	for _, dest := range regOrder {
		for _, src := range regOrder {
			if dest == "(HL)" && src == "(HL)" {
				continue // that slot is HALT
			}
			dc, _ := reg8Code(dest)
			sc, _ := reg8Code(src)
			opcode := byte(0x40) | dc<<3 | sc
			t.add("LD", []string{dest, src}, 1, func(ctx *Context, ops []operand) ([]byte, error) {
				return []byte{opcode}, nil
			})
		}
		dc, _ := reg8Code(dest)
		opcode := byte(0x06) | dc<<3
		size := 2
		t.add("LD", []string{dest, "n"}, size, func(ctx *Context, ops []operand) ([]byte, error) {
			v, err := evalByte(ctx, ops[1])
			if err != nil {
				return nil, err
			}
			return []byte{opcode, v}, nil
		})
	}

	aluMnemonics := []struct {
		name string
		base byte
		op   byte // matches cpu.aluOp ordering in alu.go
	}{
		{"ADD", 0x80, 0}, {"ADC", 0x88, 1}, {"SUB", 0x90, 2}, {"SBC", 0x98, 3},
		{"AND", 0xA0, 4}, {"XOR", 0xA8, 5}, {"OR", 0xB0, 6}, {"CP", 0xB8, 7},
	}
	for _, m := range aluMnemonics {
		m := m
		for _, src := range regOrder {
			sc, _ := reg8Code(src)
			opcode := m.base | sc
			enc := func(ctx *Context, ops []operand) ([]byte, error) { return []byte{opcode}, nil }
			if m.name == "ADD" || m.name == "ADC" || m.name == "SBC" {
				t.add(m.name, []string{"A", src}, 1, enc)
			}
			t.add(m.name, []string{src}, 1, enc)
		}
		immOp := m.base + 0x46
		immEnc := func(ctx *Context, ops []operand) ([]byte, error) {
			idx := len(ops) - 1
			v, err := evalByte(ctx, ops[idx])
			if err != nil {
				return nil, err
			}
			return []byte{immOp, v}, nil
		}
		if m.name == "ADD" || m.name == "ADC" || m.name == "SBC" {
			t.add(m.name, []string{"A", "n"}, 2, immEnc)
		}
		t.add(m.name, []string{"n"}, 2, immEnc)
	}

	for _, r := range regOrder {
		rc, _ := reg8Code(r)
		incOp, decOp := byte(0x04)|rc<<3, byte(0x05)|rc<<3
		t.add("INC", []string{r}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{incOp}, nil })
		t.add("DEC", []string{r}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{decOp}, nil })
	}

	rp16 := []string{"BC", "DE", "HL", "SP"}
	for _, rr := range rp16 {
		rc, _ := rp16Code(rr)
		ldOp := byte(0x01) | rc<<4
		incOp := byte(0x03) | rc<<4
		decOp := byte(0x0B) | rc<<4
		addOp := byte(0x09) | rc<<4
		t.add("LD", []string{rr, "n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
			lo, hi, err := evalWord(ctx, ops[1])
			if err != nil {
				return nil, err
			}
			return []byte{ldOp, lo, hi}, nil
		})
		t.add("INC", []string{rr}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{incOp}, nil })
		t.add("DEC", []string{rr}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{decOp}, nil })
		t.add("ADD", []string{"HL", rr}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{addOp}, nil })
	}
	for _, rr := range rp16 {
		if rr == "SP" {
			continue
		}
		rc, _ := rp16Code(rr)
		sbcOp := byte(0x42) | rc<<4
		adcOp := byte(0x4A) | rc<<4
		t.add("SBC", []string{"HL", rr}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, sbcOp}, nil })
		t.add("ADC", []string{"HL", rr}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, adcOp}, nil })
	}
	t.add("SBC", []string{"HL", "SP"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x72}, nil })
	t.add("ADC", []string{"HL", "SP"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x7A}, nil })

	pushPopRP := []string{"BC", "DE", "HL", "AF"}
	for _, rr := range pushPopRP {
		rc, _ := rp16CodeAF(rr)
		pushOp := byte(0xC5) | rc<<4
		popOp := byte(0xC1) | rc<<4
		t.add("PUSH", []string{rr}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{pushOp}, nil })
		t.add("POP", []string{rr}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{popOp}, nil })
	}
	t.add("PUSH", []string{"IX"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xDD, 0xE5}, nil })
	t.add("POP", []string{"IX"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xDD, 0xE1}, nil })
	t.add("PUSH", []string{"IY"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xFD, 0xE5}, nil })
	t.add("POP", []string{"IY"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xFD, 0xE1}, nil })

	t.add("LD", []string{"(nn)", "HL"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0x22, lo, hi}, nil
	})
	t.add("LD", []string{"HL", "(nn)"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[1])
		if err != nil {
			return nil, err
		}
		return []byte{0x2A, lo, hi}, nil
	})
	for _, rr := range []string{"BC", "DE", "SP"} {
		rc, _ := rp16Code(rr)
		storeOp := byte(0x43) | rc<<4
		loadOp := byte(0x4B) | rc<<4
		t.add("LD", []string{"(nn)", rr}, 4, func(ctx *Context, ops []operand) ([]byte, error) {
			lo, hi, err := evalWord(ctx, ops[0])
			if err != nil {
				return nil, err
			}
			return []byte{0xED, storeOp, lo, hi}, nil
		})
		t.add("LD", []string{rr, "(nn)"}, 4, func(ctx *Context, ops []operand) ([]byte, error) {
			lo, hi, err := evalWord(ctx, ops[1])
			if err != nil {
				return nil, err
			}
			return []byte{0xED, loadOp, lo, hi}, nil
		})
	}
	t.add("LD", []string{"(nn)", "IX"}, 4, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0xDD, 0x22, lo, hi}, nil
	})
	t.add("LD", []string{"IX", "(nn)"}, 4, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[1])
		if err != nil {
			return nil, err
		}
		return []byte{0xDD, 0x2A, lo, hi}, nil
	})
	t.add("LD", []string{"(nn)", "IY"}, 4, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0xFD, 0x22, lo, hi}, nil
	})
	t.add("LD", []string{"IY", "(nn)"}, 4, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[1])
		if err != nil {
			return nil, err
		}
		return []byte{0xFD, 0x2A, lo, hi}, nil
	})
	t.add("LD", []string{"(nn)", "A"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0x32, lo, hi}, nil
	})
	t.add("LD", []string{"A", "(nn)"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[1])
		if err != nil {
			return nil, err
		}
		return []byte{0x3A, lo, hi}, nil
	})
	t.add("LD", []string{"(BC)", "A"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x02}, nil })
	t.add("LD", []string{"A", "(BC)"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x0A}, nil })
	t.add("LD", []string{"(DE)", "A"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x12}, nil })
	t.add("LD", []string{"A", "(DE)"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0x1A}, nil })
	t.add("LD", []string{"SP", "HL"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xF9}, nil })
	t.add("LD", []string{"SP", "IX"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xDD, 0xF9}, nil })
	t.add("LD", []string{"SP", "IY"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xFD, 0xF9}, nil })
	t.add("JP", []string{"HL"}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xE9}, nil })
	t.add("JP", []string{"IX"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xDD, 0xE9}, nil })
	t.add("JP", []string{"IY"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xFD, 0xE9}, nil })
	t.add("LD", []string{"IX", "n"}, 4, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[1])
		if err != nil {
			return nil, err
		}
		return []byte{0xDD, 0x21, lo, hi}, nil
	})
	t.add("LD", []string{"IY", "n"}, 4, func(ctx *Context, ops []operand) ([]byte, error) {
		lo, hi, err := evalWord(ctx, ops[1])
		if err != nil {
			return nil, err
		}
		return []byte{0xFD, 0x21, lo, hi}, nil
	})
	t.add("INC", []string{"IX"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xDD, 0x23}, nil })
	t.add("DEC", []string{"IX"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xDD, 0x2B}, nil })
	t.add("INC", []string{"IY"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xFD, 0x23}, nil })
	t.add("DEC", []string{"IY"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xFD, 0x2B}, nil })
	// ADD IX,rr only accepts BC/DE/IX/SP (HL is not a valid second operand
	// with this prefix; adding the index register to itself doubles it).
	for _, pair := range []struct{ name string; code byte }{{"BC", 0}, {"DE", 1}, {"IX", 2}, {"SP", 3}} {
		pair := pair
		opcode := byte(0x09) | pair.code<<4
		t.add("ADD", []string{"IX", pair.name}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
			return []byte{0xDD, opcode}, nil
		})
	}
	for _, pair := range []struct{ name string; code byte }{{"BC", 0}, {"DE", 1}, {"IY", 2}, {"SP", 3}} {
		pair := pair
		opcode := byte(0x09) | pair.code<<4
		t.add("ADD", []string{"IY", pair.name}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
			return []byte{0xFD, opcode}, nil
		})
	}

	// LD r,(IX+d) / LD (IX+d),r / LD r,(IY+d) / LD (IY+d),r, plain
	// registers only (not (HL)).
	for _, idxName := range []string{"IX", "IY"} {
		idxName := idxName
		prefix := byte(0xDD)
		if idxName == "IY" {
			prefix = 0xFD
		}
		for _, r := range []string{"B", "C", "D", "E", "H", "L", "A"} {
			rc, _ := reg8Code(r)
			ldFromOp := byte(0x46) | rc<<3
			ldToOp := byte(0x70) | rc
			t.add("LD", []string{r, "(" + idxName + "+d)"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
				d, err := evalDisp(ctx, ops[1].expr)
				if err != nil {
					return nil, err
				}
				return []byte{prefix, ldFromOp, d}, nil
			})
			t.add("LD", []string{"(" + idxName + "+d)", r}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
				d, err := evalDisp(ctx, ops[0].expr)
				if err != nil {
					return nil, err
				}
				return []byte{prefix, ldToOp, d}, nil
			})
		}
		t.add("LD", []string{"(" + idxName + "+d)", "n"}, 4, func(ctx *Context, ops []operand) ([]byte, error) {
			d, err := evalDisp(ctx, ops[0].expr)
			if err != nil {
				return nil, err
			}
			v, err := evalByte(ctx, ops[1])
			if err != nil {
				return nil, err
			}
			return []byte{prefix, 0x36, d, v}, nil
		})
		t.add("INC", []string{"(" + idxName + "+d)"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
			d, err := evalDisp(ctx, ops[0].expr)
			if err != nil {
				return nil, err
			}
			return []byte{prefix, 0x34, d}, nil
		})
		t.add("DEC", []string{"(" + idxName + "+d)"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
			d, err := evalDisp(ctx, ops[0].expr)
			if err != nil {
				return nil, err
			}
			return []byte{prefix, 0x35, d}, nil
		})
		for _, m := range aluMnemonics {
			base := m.base + 6
			name := m.name
			t.add(name, []string{"(" + idxName + "+d)"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
				d, err := evalDisp(ctx, ops[0].expr)
				if err != nil {
					return nil, err
				}
				return []byte{prefix, base, d}, nil
			})
			if name == "ADD" || name == "ADC" || name == "SBC" {
				t.add(name, []string{"A", "(" + idxName + "+d)"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
					d, err := evalDisp(ctx, ops[1].expr)
					if err != nil {
						return nil, err
					}
					return []byte{prefix, base, d}, nil
				})
			}
		}
	}

	t.add("JP", []string{"n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
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
	for _, cc := range []string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"} {
		cc := cc
		cn, _ := condCode(cc)
		jpOp := byte(0xC2) | cn<<3
		callOp := byte(0xC4) | cn<<3
		retOp := byte(0xC0) | cn<<3
		t.add("JP", []string{cc, "n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
			lo, hi, err := evalWord(ctx, ops[1])
			if err != nil {
				return nil, err
			}
			return []byte{jpOp, lo, hi}, nil
		})
		t.add("CALL", []string{cc, "n"}, 3, func(ctx *Context, ops []operand) ([]byte, error) {
			lo, hi, err := evalWord(ctx, ops[1])
			if err != nil {
				return nil, err
			}
			return []byte{callOp, lo, hi}, nil
		})
		t.add("RET", []string{cc}, 1, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{retOp}, nil })
		if cc == "NZ" || cc == "Z" || cc == "NC" || cc == "C" {
			jrOp := map[string]byte{"NZ": 0x20, "Z": 0x28, "NC": 0x30, "C": 0x38}[cc]
			t.add("JR", []string{cc, "n"}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
				d, err := evalSByte(ctx, ops[1], ctx.PC+2)
				if err != nil {
					return nil, err
				}
				return []byte{jrOp, d}, nil
			})
		}
	}
	t.add("JR", []string{"n"}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
		d, err := evalSByte(ctx, ops[0], ctx.PC+2)
		if err != nil {
			return nil, err
		}
		return []byte{0x18, d}, nil
	})
	t.add("DJNZ", []string{"n"}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
		d, err := evalSByte(ctx, ops[0], ctx.PC+2)
		if err != nil {
			return nil, err
		}
		return []byte{0x10, d}, nil
	})
	t.add("RST", []string{"n"}, 1, func(ctx *Context, ops []operand) ([]byte, error) {
		v, err := ctx.EvalExpr(ops[0].expr)
		if err != nil {
			return nil, err
		}
		if v%8 != 0 || v > 0x38 {
			return nil, fmt.Errorf("RST target must be one of 00H,08H,...,38H")
		}
		return []byte{0xC7 | byte(v)}, nil
	})

	t.add("IN", []string{"A", "(nn)"}, 2,func(ctx *Context, ops []operand) ([]byte, error) {
		v, err := evalByte(ctx, ops[1])
		if err != nil {
			return nil, err
		}
		return []byte{0xDB, v}, nil
	})
	t.add("OUT", []string{"(nn)", "A"}, 2,func(ctx *Context, ops []operand) ([]byte, error) {
		v, err := evalByte(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0xD3, v}, nil
	})
	ioRegs := []struct {
		name string
		code byte
	}{{"B", 0}, {"C", 1}, {"D", 2}, {"E", 3}, {"H", 4}, {"L", 5}, {"A", 7}}
	for _, r := range ioRegs {
		r := r
		inOp := byte(0x40) | r.code<<3
		outOp := byte(0x41) | r.code<<3
		t.add("IN", []string{r.name, "(C)"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, inOp}, nil })
		t.add("OUT", []string{"(C)", r.name}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, outOp}, nil })
	}
	t.add("IN", []string{"F", "(C)"}, 2, requireUndoc(func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x70}, nil }))
	t.add("OUT", []string{"(C)", "n"}, 2, requireUndoc(func(ctx *Context, ops []operand) ([]byte, error) {
		v, err := ctx.EvalExpr(ops[1].expr)
		if err != nil {
			return nil, err
		}
		if v != 0 {
			return nil, fmt.Errorf("OUT (C),n only supports the undocumented n=0 form")
		}
		return []byte{0xED, 0x71}, nil
	}))

	t.add("NEG", nil, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x44}, nil })
	t.add("RETN", nil, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x45}, nil })
	t.add("RETI", nil, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x4D}, nil })
	t.add("RRD", nil, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x67}, nil })
	t.add("RLD", nil, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x6F}, nil })
	t.add("LD", []string{"I", "A"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x47}, nil })
	t.add("LD", []string{"R", "A"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x4F}, nil })
	t.add("LD", []string{"A", "I"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x57}, nil })
	t.add("LD", []string{"A", "R"}, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, 0x5F}, nil })
	imModes := map[int64]byte{0: 0x46, 1: 0x56, 2: 0x5E}
	t.add("IM", []string{"n"}, 2, func(ctx *Context, ops []operand) ([]byte, error) {
		v, err := ctx.EvalExpr(ops[0].expr)
		if err != nil {
			return nil, err
		}
		op, ok := imModes[int64(v)]
		if !ok {
			return nil, fmt.Errorf("IM mode must be 0, 1, or 2")
		}
		return []byte{0xED, op}, nil
	})
	for name, op := range map[string]byte{
		"LDI": 0xA0, "LDIR": 0xB0, "LDD": 0xA8, "LDDR": 0xB8,
		"CPI": 0xA1, "CPIR": 0xB1, "CPD": 0xA9, "CPDR": 0xB9,
		"INI": 0xA2, "INIR": 0xB2, "IND": 0xAA, "INDR": 0xBA,
		"OUTI": 0xA3, "OTIR": 0xB3, "OUTD": 0xAB, "OTDR": 0xBB,
	} {
		op := op
		t.add(name, nil, 2, func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xED, op}, nil })
	}

	addCBGroup(t, "RLC", 0x00)
	addCBGroup(t, "RRC", 0x08)
	addCBGroup(t, "RL", 0x10)
	addCBGroup(t, "RR", 0x18)
	addCBGroup(t, "SLA", 0x20)
	addCBGroup(t, "SRA", 0x28)
	addCBGroup(t, "SRL", 0x38)
	for _, r := range regOrder {
		rc, _ := reg8Code(r)
		opcode := 0x30 | rc
		t.add("SLL", []string{r}, 2, requireUndoc(cbPlainEnc(opcode)))
	}
	for idxName, prefix := range map[string]byte{"IX": 0xDD, "IY": 0xFD} {
		t.add("SLL", []string{"(" + idxName + "+d)"}, 4, requireUndoc(cbIndexedEnc(prefix, 0x36, 0)))
	}

	// BIT/RES/SET take a runtime bit number 0..7 as their first operand;
	// one table entry per register/addressing form covers all 8 bits,
	// since the bit value only affects which opcode byte gets computed,
	// not which table slot is matched.
	for _, r := range regOrder {
		rc, _ := reg8Code(r)
		t.add("BIT", []string{"n", r}, 2, bitOpEnc(0x40, rc))
		t.add("RES", []string{"n", r}, 2, bitOpEnc(0x80, rc))
		t.add("SET", []string{"n", r}, 2, bitOpEnc(0xC0, rc))
	}
	for idxName, prefix := range map[string]byte{"IX": 0xDD, "IY": 0xFD} {
		prefix := prefix
		t.add("BIT", []string{"n", "(" + idxName + "+d)"}, 4, bitIndexedEnc(prefix, 0x40, 6))
		t.add("RES", []string{"n", "(" + idxName + "+d)"}, 4, bitIndexedEnc(prefix, 0x80, 6))
		t.add("SET", []string{"n", "(" + idxName + "+d)"}, 4, bitIndexedEnc(prefix, 0xC0, 6))
	}

	return t
}

func bitNumber(ctx *Context, o operand) (byte, error) {
	v, err := ctx.EvalExpr(o.expr)
	if err != nil {
		return 0, err
	}
	if v > 7 {
		return 0, fmt.Errorf("bit number must be 0..7")
	}
	return byte(v), nil
}

func bitOpEnc(group byte, reg byte) instrEncoder {
	return func(ctx *Context, ops []operand) ([]byte, error) {
		bit, err := bitNumber(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{0xCB, group | bit<<3 | reg}, nil
	}
}

func bitIndexedEnc(prefix, group, reg byte) instrEncoder {
	return func(ctx *Context, ops []operand) ([]byte, error) {
		bit, err := bitNumber(ctx, ops[0])
		if err != nil {
			return nil, err
		}
		d, err := evalDisp(ctx, ops[1].expr)
		if err != nil {
			return nil, err
		}
		return []byte{prefix, 0xCB, d, group | bit<<3 | reg}, nil
	}
}

func cbPlainEnc(opcode byte) instrEncoder {
	return func(ctx *Context, ops []operand) ([]byte, error) { return []byte{0xCB, opcode}, nil }
}

func cbIndexedEnc(prefix, opcode byte, dispIndex int) instrEncoder {
	return func(ctx *Context, ops []operand) ([]byte, error) {
		d, err := evalDisp(ctx, ops[dispIndex].expr)
		if err != nil {
			return nil, err
		}
		return []byte{prefix, 0xCB, d, opcode}, nil
	}
}

func addCBGroup(t instrTable, name string, base byte) {
	for _, r := range []string{"B", "C", "D", "E", "H", "L", "(HL)", "A"} {
		rc, _ := reg8Code(r)
		opcode := base | rc
		t.add(name, []string{r}, 2, cbPlainEnc(opcode))
	}
	for _, idxName := range []string{"IX", "IY"} {
		idxName := idxName
		prefix := byte(0xDD)
		if idxName == "IY" {
			prefix = 0xFD
		}
		opcode := base | 6
		t.add(name, []string{"(" + idxName + "+d)"}, 4, cbIndexedEnc(prefix, opcode, 0))
	}
}
