package asm

import "strings"

// lineFeeder hands the driver its next physical line, interleaving
// file-level source with the (already fully substituted) bodies of
// active macro/IRP/IRPC/REPT expansions pushed on top of it. Both passes
// build a fresh feeder over the same flattened file lines and walk it
// independently, matching spec.md §4.3.5's "pass 2 always re-reads"
// contract -- macro/conditional state is never carried between passes.
type lineFeeder struct {
	file    []sourceLine
	fi      int
	queues  [][]string
	curFile string
	curLine int
}

func newLineFeeder(file []sourceLine) *lineFeeder {
	return &lineFeeder{file: file}
}

func (f *lineFeeder) next() (string, bool) {
	for len(f.queues) > 0 {
		top := len(f.queues) - 1
		q := f.queues[top]
		if len(q) == 0 {
			f.queues = f.queues[:top]
			continue
		}
		text := q[0]
		f.queues[top] = q[1:]
		return text, true
	}
	if f.fi >= len(f.file) {
		return "", false
	}
	sl := f.file[f.fi]
	f.fi++
	f.curFile, f.curLine = sl.file, sl.lineno
	return sl.text, true
}

// push splices lines onto the feeder so they're consumed before
// anything beneath them, used for macro/IRP/IRPC/REPT expansions.
func (f *lineFeeder) push(lines []string) {
	f.queues = append(f.queues, lines)
}

// depth is how many macro expansions are currently nested, for the
// MacNestLimit check in ExpandMacro/ExpandIRP/ExpandIRPC/ExpandREPT.
func (f *lineFeeder) depth() int { return len(f.queues) }

// truncateTop discards the remainder of the innermost active expansion,
// implementing EXITM.
func (f *lineFeeder) truncateTop() {
	if len(f.queues) > 0 {
		f.queues[len(f.queues)-1] = nil
	}
}

// assembler drives one pass over a flattened source: it owns the
// feeder, the architecture's instruction table, and the tiny bit of
// per-pass state (macro-call nesting depth, whether END was seen) that
// doesn't belong on Context because Context is reused across both
// passes' feeders.
type assembler struct {
	ctx      *Context
	feeder   *lineFeeder
	instr    instrTable
	classify func(string) operand
	done     bool
}

func newAssembler(ctx *Context, lines []sourceLine) *assembler {
	as := &assembler{ctx: ctx, feeder: newLineFeeder(lines)}
	if ctx.Cfg.Arch == Arch8080 {
		as.instr, as.classify = build8080Table(), classify8080Operand
	} else {
		as.instr, as.classify = buildZ80Table(), classifyOperand
	}
	return as
}

// run walks the feeder to EOF or END, whichever comes first.
func (as *assembler) run() {
	for !as.done {
		text, ok := as.feeder.next()
		if !ok {
			return
		}
		as.ctx.LineNo = as.feeder.curLine
		as.ctx.FileName = as.feeder.curFile
		as.processOne(text)
	}
}

// processOne handles exactly one source line: conditional directives
// (tracked even while suppressed), then -- if the current IF nesting is
// emitting -- label definition, directive dispatch, or instruction
// encoding. Errors returned by handleDirective were already recorded
// by the directive handler and only set the listing mark here; label,
// macro-expansion, lookup and encoding failures are recorded here via
// addError; the error evalCondDirective returns is not used.
func (as *assembler) processOne(text string) {
	ctx := as.ctx
	stripped := stripComment(text)
	trimmed := strings.TrimSpace(stripped)

	label, rest := splitLabelOpcode(stripped)
	word, args := firstWordArgs(rest)

	if handled, _ := ctx.evalCondDirective(word, args); handled {
		if ctx.Pass == 2 {
			ctx.addListingLine(ctx.effectivePC(), false, trimmed, "")
		}
		return
	}

	if !ctx.Emitting() {
		// A suppressed IF branch still needs MACRO/IRP/IRPC/REPT bodies
		// swallowed whole so their ENDM doesn't get mistaken for this
		// IF's ENDIF, but the body itself never expands.
		if isBlockHeader(word) {
			captureBody(as.feeder)
		}
		if ctx.Pass == 2 {
			ctx.addListingLine(0, false, trimmed, "")
		}
		return
	}

	startPC := ctx.effectivePC()
	errMark := ""

	if label != "" && !isPseudoNamer(word) {
		if err := ctx.Define(label, startPC, false); err != nil {
			ctx.addError(E_MULSYM, "%v", err)
			errMark = "M"
		}
	}

	if word == "" {
		if ctx.Pass == 2 {
			ctx.addListingLine(startPC, false, trimmed, errMark)
		}
		return
	}

	if handled, err := as.handleDirective(label, word, args); handled {
		if err != nil {
			if errMark == "" {
				errMark = "E"
			}
		}
		if ctx.Pass == 2 {
			hasPC := ctx.pendingBytes != nil || directiveShowsAddr(word)
			ctx.addListingLine(startPC, hasPC, trimmed, errMark)
		}
		return
	}

	if def, ok := ctx.lookupMacro(word); ok {
		lines, err := ctx.ExpandMacro(def, splitOperands(args), as.feeder.depth()+1)
		if err != nil {
			ctx.addError(E_MACNEST, "%v", err)
			errMark = "N"
		} else {
			as.feeder.push(lines)
		}
		if ctx.Pass == 2 {
			ctx.addListingLine(startPC, false, trimmed, errMark)
		}
		return
	}

	ops := make([]operand, 0, 2)
	for _, raw := range splitOperands(args) {
		if raw == "" {
			continue
		}
		ops = append(ops, as.classify(raw))
	}
	form, ok := as.instr.lookup(word, ops)
	if !ok {
		ctx.addError(E_INVOPE, "unrecognized mnemonic/operand form: %s %s", word, args)
		if ctx.Pass == 2 {
			ctx.addListingLine(startPC, true, trimmed, "E")
		}
		return
	}

	if ctx.Pass == 1 {
		ctx.Emit(make([]byte, form.size)...)
		return
	}

	bytes, err := form.encoder(ctx, ops)
	if err != nil {
		ctx.addError(E_ILLOPE, "%s: %v", word, err)
		ctx.Emit(make([]byte, form.size)...)
		ctx.addListingLine(startPC, true, trimmed, "E")
		return
	}
	ctx.Emit(bytes...)
	ctx.addListingLine(startPC, true, trimmed, "")
}

// isPseudoNamer reports whether word consumes the label field as a
// symbol/macro name rather than leaving it as a PC label -- EQU/SET/
// MACRO are the only such directives.
func isPseudoNamer(word string) bool {
	switch strings.ToUpper(word) {
	case "EQU", "SET", "MACRO":
		return true
	}
	return false
}

// directiveShowsAddr reports whether a directive's listing row should
// show the PC column even when it emitted no bytes this line (ORG,
// .PHASE land on an address worth showing; TITLE/PAGE/RADIX don't).
func directiveShowsAddr(word string) bool {
	switch strings.ToUpper(word) {
	case "ORG", ".PHASE", ".DEPHASE", "EQU", "SET":
		return true
	}
	return false
}
