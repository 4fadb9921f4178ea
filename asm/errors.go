package asm

import "fmt"

// Code is a named diagnostic code such as "E_MISOPE" (spec.md §7). E_*
// codes are recoverable: the offending line is skipped, the error count
// increments, and assembly proceeds to produce a listing. F_* codes are
// fatal: assembly aborts immediately.
type Code string

const (
	E_MISOPE Code = "E_MISOPE" // missing operand
	E_INVOPE Code = "E_INVOPE" // invalid operand
	E_ILLOPE Code = "E_ILLOPE" // illegal operand for this opcode
	E_VALOUT Code = "E_VALOUT" // value out of range
	E_MISDEL Code = "E_MISDEL" // missing delimiter
	E_MULSYM Code = "E_MULSYM" // symbol multiply defined
	E_MACNEST Code = "E_MACNEST" // macro nesting overflow
	E_IFNEST Code = "E_IFNEST" // IF nesting overflow
	E_NIMEXP Code = "E_NIMEXP" // directive valid only inside macro expansion
	E_OUTLCL Code = "E_OUTLCL" // LOCAL placeholder counter exhausted
	F_OUTMEM Code = "F_OUTMEM" // out of memory
	F_INTERN Code = "F_INTERN" // internal inconsistency
)

// Fatal reports whether a Code aborts assembly immediately (F_*) rather
// than being tallied and skipped (E_*).
func (c Code) Fatal() bool { return len(c) > 0 && c[0] == 'F' }

// Diagnostic is one assembler error or warning, tied to a source line.
type Diagnostic struct {
	Code Code
	Line int
	File string
	Msg  string
}

func (d Diagnostic) String() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Code, d.Msg)
	}
	return fmt.Sprintf("%d: %s: %s", d.Line, d.Code, d.Msg)
}

// addError records a recoverable diagnostic and lets the current line's
// assembly continue to be skipped by the caller; addFatal panics with a
// sentinel the pass driver recovers, matching the "abort immediately"
// contract for F_* codes.
func (ctx *Context) addError(code Code, format string, args ...interface{}) {
	ctx.Diagnostics = append(ctx.Diagnostics, Diagnostic{
		Code: code,
		Line: ctx.LineNo,
		File: ctx.FileName,
		Msg:  fmt.Sprintf(format, args...),
	})
	ctx.ErrorCount++
}

type fatalAbort struct{ diag Diagnostic }

func (ctx *Context) addFatal(code Code, format string, args ...interface{}) {
	diag := Diagnostic{
		Code: code,
		Line: ctx.LineNo,
		File: ctx.FileName,
		Msg:  fmt.Sprintf(format, args...),
	}
	ctx.Diagnostics = append(ctx.Diagnostics, diag)
	panic(fatalAbort{diag})
}

func (ctx *Context) addWarning(format string, args ...interface{}) {
	ctx.Warnings = append(ctx.Warnings, fmt.Sprintf(format, args...))
}
