package asm

import (
	"fmt"
	"strings"
)

// instrEncoder produces the bytes for one matched instruction form. It
// is called on pass 2 with fully resolved operands; pass 1 only needs
// the size, which is fixed per mnemonic/operand-shape and stored
// alongside the encoder so pass 1 never has to run it speculatively.
type instrEncoder func(ctx *Context, ops []operand) ([]byte, error)

type instrForm struct {
	size    int
	encoder instrEncoder
}

// instrTable maps MNEMONIC -> operand-shape signature -> form. Built
// once per architecture by buildZ80Table/build8080Table (instr_z80.go,
// instr_8080.go), generated with the same loop-over-register-code
// pattern cpu/z80_base.go's initBaseOps uses to build its dispatch
// table, run in reverse: there the loop builds a decoder per opcode,
// here it builds an encoder per mnemonic/operand combination.
type instrTable map[string]map[string]instrForm

func newInstrTable() instrTable { return make(instrTable) }

func (t instrTable) add(mnemonic string, ops []string, size int, enc instrEncoder) {
	m := upcaseASCII(mnemonic)
	if t[m] == nil {
		t[m] = make(map[string]instrForm)
	}
	t[m][strings.Join(ops, ",")] = instrForm{size: size, encoder: enc}
}

// signature builds the lookup key for a parsed operand list: each
// operand's kind, except that "n"/"(nn)"/"(IX+d)"/"(IY+d)" forms use
// their kind directly (the expression text never participates in
// matching -- only pass 2 needs to evaluate it).
func signature(ops []operand) string {
	kinds := make([]string, len(ops))
	for i, o := range ops {
		kinds[i] = o.kind
	}
	return strings.Join(kinds, ",")
}

func (t instrTable) lookup(mnemonic string, ops []operand) (instrForm, bool) {
	forms, ok := t[upcaseASCII(mnemonic)]
	if !ok {
		return instrForm{}, false
	}
	f, ok := forms[signature(ops)]
	return f, ok
}

// requireUndoc wraps an encoder so it errors when undocumented opcodes
// were not requested (-u), per spec.md §6.2.
func requireUndoc(enc instrEncoder) instrEncoder {
	return func(ctx *Context, ops []operand) ([]byte, error) {
		if !ctx.Cfg.Undocumented {
			return nil, fmt.Errorf("undocumented instruction used without -u")
		}
		return enc(ctx, ops)
	}
}

func evalByte(ctx *Context, o operand) (byte, error) {
	v, err := ctx.EvalExpr(o.expr)
	if err != nil {
		return 0, err
	}
	return ChkByte(int64(int16(v)))
}

func evalSByte(ctx *Context, o operand, pcAfter uint16) (byte, error) {
	v, err := ctx.EvalExpr(o.expr)
	if err != nil {
		return 0, err
	}
	disp := int32(int16(v)) - int32(pcAfter)
	b, err := ChkSByte(int64(disp))
	if err != nil {
		return 0, err
	}
	return byte(b), nil
}

func evalWord(ctx *Context, o operand) (lo, hi byte, err error) {
	v, err := ctx.EvalExpr(o.expr)
	if err != nil {
		return 0, 0, err
	}
	return byte(v), byte(v >> 8), nil
}

func evalDisp(ctx *Context, expr string) (byte, error) {
	v, err := ctx.EvalExpr(expr)
	if err != nil {
		return 0, err
	}
	b, err := ChkSByte(int64(int16(v)))
	if err != nil {
		return 0, err
	}
	return byte(b), nil
}
