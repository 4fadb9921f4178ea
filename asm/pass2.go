package asm

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RunPass2 re-walks the same flattened lines a second time, now with
// every symbol fully resolved by pass 1: it produces real bytes into
// the object image, a listing row per source line, and the final
// diagnostic list. Per spec.md §4.3.5, pass 2 always runs end to end and
// always produces a listing, even when pass 1 recorded errors.
func RunPass2(ctx *Context, lines []sourceLine) {
	ctx.ResetForPass2()
	as := newAssembler(ctx, lines)
	as.run()
}

// runProtected runs fn and converts an F_* addFatal panic into a
// returned Diagnostic, matching spec.md §7's "abort immediately" rule
// for fatal codes without letting a panic escape to the caller.
func runProtected(fn func()) (fatal *Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			if ab, ok := r.(fatalAbort); ok {
				d := ab.diag
				fatal = &d
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

// Assemble runs both passes of a complete assembly over mainFiles, the
// list of top-level source paths spec.md §4.1's "Input: list of source
// file paths plus a configuration block" names: each is flattened in
// order (INCLUDEs expanding depth-first as usual) and their lines
// concatenated into one program, matching pass 1's "read every source
// file in order" and pass 2's full re-read (spec.md §4.3.5). A shared
// seen-set spans all of them, so a file INCLUDEd by one top-level entry
// and then also named directly still trips circular-include protection.
// read defaults to OSFileReader when nil. The returned Context carries
// every diagnostic, the listing, and the emitted image regardless of
// whether assembly succeeded; the caller (cmd/z80asm) inspects
// ctx.ErrorCount and the returned fatal diagnostic to choose an exit
// code per spec.md §6.2 (0 clean, 1 any E_* diagnostic, 2 on F_*).
func Assemble(cfg Config, mainFiles []string, read FileReader) (*Context, *Diagnostic, error) {
	if read == nil {
		read = OSFileReader
	}
	if len(mainFiles) == 0 {
		return nil, nil, fmt.Errorf("no source files given")
	}

	seen := make(map[string]bool)
	var lines []sourceLine
	for _, mainFile := range mainFiles {
		fileLines, err := flattenIncludes(mainFile, ".", cfg.IncludePaths, read, seen)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, fileLines...)
	}

	ctx := NewContext(cfg)
	ctx.FileName = mainFiles[0]
	for name, val := range cfg.Defines {
		v, _ := ctx.EvalExpr(val)
		ctx.Define(name, v, true)
	}

	if fatal := runProtected(func() { RunPass1(ctx, lines) }); fatal != nil {
		return ctx, fatal, nil
	}
	if fatal := runProtected(func() { RunPass2(ctx, lines) }); fatal != nil {
		return ctx, fatal, nil
	}
	return ctx, nil, nil
}

// RenderObject encodes the assembled image in ctx.Cfg.ObjectFmt.
func (ctx *Context) RenderObject() []byte {
	switch ctx.Cfg.ObjectFmt {
	case ObjectSRecord:
		return []byte(ctx.WriteSRecord())
	case ObjectBinary:
		return ctx.WriteBinary()
	case ObjectCArray:
		return []byte(ctx.WriteCArray(carrayName(ctx)))
	default:
		return []byte(ctx.WriteIntelHex())
	}
}

func carrayName(ctx *Context) string {
	base := ctx.Cfg.ObjectFile
	if base == "" {
		base = ctx.FileName
	}
	base = filepath.Base(base)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "rom"
	}
	return sanitizeIdent(base)
}

func sanitizeIdent(s string) string {
	b := []byte(s)
	for i, c := range b {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			b[i] = '_'
		}
	}
	if len(b) > 0 && b[0] >= '0' && b[0] <= '9' {
		return "_" + string(b)
	}
	return string(b)
}

// ExitCode maps an assembly outcome to spec.md §6.2's exit codes: 0
// clean, 1 any recoverable diagnostic, 2 fatal.
func ExitCode(ctx *Context, fatal *Diagnostic) int {
	if fatal != nil {
		return 2
	}
	if ctx != nil && ctx.ErrorCount > 0 {
		return 1
	}
	return 0
}
