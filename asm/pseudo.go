package asm

import (
	"strconv"
	"strings"
)

// diagnosed marks an error that has already been recorded via addError,
// so the caller that receives it back from a handler knows not to log it
// a second time -- it only needs to stop processing the current line and
// move on, per spec.md §7's "skip the line, increment the error count,
// continue" contract for E_* codes.
type diagnosed struct{}

func (diagnosed) Error() string { return "" }

// fail records code/msg against the current line and returns the
// sentinel that tells processOne the line is done, not that assembly
// should stop.
func fail(ctx *Context, code Code, format string, args ...interface{}) error {
	ctx.addError(code, format, args...)
	return diagnosed{}
}

// firstWordArgs splits rest (the text after any label) into its leading
// word and the remainder.
func firstWordArgs(rest string) (word, args string) {
	rest = strings.TrimSpace(rest)
	i := 0
	for i < len(rest) && !isSpaceByte(rest[i]) {
		i++
	}
	return rest[:i], strings.TrimSpace(rest[i:])
}

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' }

// splitLabelOpcode separates a traditional fixed-field assembler line
// into its label (column-1 token, or any token with a trailing ':') and
// the remainder. A line that starts with whitespace has no label.
func splitLabelOpcode(line string) (label, rest string) {
	left := strings.TrimLeft(line, " \t")
	indented := len(left) != len(line)
	i := 0
	for i < len(left) && !isSpaceByte(left[i]) {
		i++
	}
	first := left[:i]
	if strings.HasSuffix(first, ":") {
		return strings.TrimSuffix(first, ":"), strings.TrimSpace(left[i:])
	}
	if !indented && first != "" {
		return first, strings.TrimSpace(left[i:])
	}
	return "", left
}

// isBlockHeader reports whether word starts a block that swallows
// subsequent lines itself (MACRO/IRP/IRPC/REPT), so a suppressed IF
// branch still consumes the body instead of mistaking its ENDM for the
// IF's own ENDIF.
func isBlockHeader(word string) bool {
	switch strings.ToUpper(word) {
	case "MACRO", "IRP", "IRPC", "REPT":
		return true
	}
	return false
}

// handleDirective dispatches one non-instruction keyword. handled is
// false when word is an ordinary mnemonic the caller should hand to the
// instruction table instead.
func (as *assembler) handleDirective(label, word, args string) (handled bool, err error) {
	ctx := as.ctx
	upper := strings.ToUpper(word)

	switch upper {
	case "EQU":
		if label == "" {
			return true, fail(ctx, E_MISOPE, "EQU requires a name")
		}
		v, e := ctx.EvalExpr(args)
		if e != nil {
			return true, fail(ctx, E_INVOPE, "EQU %s: %v", label, e)
		}
		if e := ctx.Define(label, v, false); e != nil {
			return true, fail(ctx, E_MULSYM, "%v", e)
		}
		return true, nil

	case "SET":
		if label == "" {
			return true, fail(ctx, E_MISOPE, "SET requires a name")
		}
		v, e := ctx.EvalExpr(args)
		if e != nil {
			return true, fail(ctx, E_INVOPE, "SET %s: %v", label, e)
		}
		if e := ctx.Define(label, v, true); e != nil {
			return true, fail(ctx, E_MULSYM, "%v", e)
		}
		return true, nil

	case "MACRO":
		if label == "" {
			return true, fail(ctx, E_MISOPE, "MACRO requires a name")
		}
		var params []string
		for _, p := range strings.Split(args, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				params = append(params, p)
			}
		}
		body, e := captureBody(as.feeder)
		if e != nil {
			return true, fail(ctx, E_NIMEXP, "%v", e)
		}
		if e := ctx.DefineMacro(label, params, body); e != nil {
			return true, fail(ctx, E_MULSYM, "%v", e)
		}
		return true, nil

	case "IRP", "IRPC", "REPT":
		var dummy, rest string
		if upper == "REPT" {
			rest = args
		} else {
			// "dummy,<list>" -- split on the first comma, not
			// whitespace, since real sources rarely space it out.
			d, r, found := strings.Cut(args, ",")
			if !found {
				return true, fail(ctx, E_MISDEL, "%s requires a dummy parameter and a list", upper)
			}
			dummy, rest = strings.TrimSpace(d), strings.TrimSpace(r)
		}
		body, e := captureBody(as.feeder)
		if e != nil {
			return true, fail(ctx, E_NIMEXP, "%v", e)
		}
		def := &macroDef{body: body}
		switch upper {
		case "IRP":
			def.kind, def.params = macroIRP, []string{dummy}
			lines, e := ctx.ExpandIRP(def, rest, as.feeder.depth()+1)
			if e != nil {
				return true, diagnosed{}
			}
			as.feeder.push(lines)
		case "IRPC":
			def.kind, def.params = macroIRPC, []string{dummy}
			lines, e := ctx.ExpandIRPC(def, rest, as.feeder.depth()+1)
			if e != nil {
				return true, diagnosed{}
			}
			as.feeder.push(lines)
		case "REPT":
			def.kind = macroREPT
			count, e := ctx.EvalExpr(rest)
			if e != nil {
				return true, fail(ctx, E_INVOPE, "REPT: %v", e)
			}
			lines, e := ctx.ExpandREPT(def, int64(count), as.feeder.depth()+1)
			if e != nil {
				return true, diagnosed{}
			}
			as.feeder.push(lines)
		}
		return true, nil

	case "EXITM":
		as.feeder.truncateTop()
		return true, nil

	case "LOCAL":
		return true, fail(ctx, E_NIMEXP, "LOCAL outside macro expansion")

	case "ENDM":
		ctx.addFatal(F_INTERN, "ENDM without matching MACRO/IRP/IRPC/REPT")
		return true, nil

	case "ORG":
		v, e := ctx.EvalExpr(args)
		if e != nil {
			return true, fail(ctx, E_INVOPE, "ORG: %v", e)
		}
		ctx.PC = v
		ctx.phase = false
		return true, nil

	case "ASEG":
		ctx.phase = false
		return true, nil

	case ".PHASE":
		v, e := ctx.EvalExpr(args)
		if e != nil {
			return true, fail(ctx, E_INVOPE, ".PHASE: %v", e)
		}
		ctx.enterPhase(v)
		return true, nil

	case ".DEPHASE":
		ctx.exitPhase()
		return true, nil

	case "RADIX":
		v, e := ctx.EvalExpr(args)
		if e != nil || v < 2 || v > 16 {
			return true, fail(ctx, E_INVOPE, "RADIX must be 2..16")
		}
		ctx.Radix = int(v)
		return true, nil

	case "TITLE":
		ctx.Title = strings.Trim(args, "\"'")
		return true, nil

	case "SUBTTL":
		ctx.Subttl = strings.Trim(args, "\"'")
		return true, nil

	case "PAGE":
		if n, e := strconv.Atoi(strings.TrimSpace(args)); e == nil && n > 0 {
			ctx.pageLen = n
		}
		return true, nil

	case "PUBLIC", "EXTRN", "EXTERNAL":
		for _, n := range strings.Split(args, ",") {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			if upper != "PUBLIC" && !ctx.Defined(n) {
				ctx.Define(n, 0, true)
			}
		}
		return true, nil

	case "END":
		as.done = true
		if args != "" {
			if _, e := ctx.EvalExpr(args); e != nil {
				return true, fail(ctx, E_INVOPE, "END: %v", e)
			}
		}
		return true, nil

	case "DEFB", "DB":
		return true, as.emitDB(args)
	case "DEFW", "DW":
		return true, as.emitDW(args)
	case "DEFS", "DS":
		return true, as.emitDS(args)
	case "DEFM":
		return true, as.emitDM(args)
	}

	return false, nil
}

// emitDB assembles DEFB/DB: a comma-separated list of byte expressions
// or quoted strings (each string byte emitted in turn).
func (as *assembler) emitDB(args string) error {
	ctx := as.ctx
	if strings.TrimSpace(args) == "" {
		return fail(ctx, E_MISOPE, "DEFB requires at least one value")
	}
	for _, item := range splitOperands(args) {
		item = strings.TrimSpace(item)
		if s, ok := stringLiteral(item); ok {
			ctx.Emit([]byte(s)...)
			continue
		}
		v, err := ctx.EvalExpr(item)
		if err != nil {
			return fail(ctx, E_INVOPE, "DEFB: %v", err)
		}
		b, err := ChkByte(int64(int16(v)))
		if err != nil {
			return fail(ctx, E_VALOUT, "DEFB: %v", err)
		}
		ctx.Emit(b)
	}
	return nil
}

func (as *assembler) emitDW(args string) error {
	ctx := as.ctx
	if strings.TrimSpace(args) == "" {
		return fail(ctx, E_MISOPE, "DEFW requires at least one value")
	}
	for _, item := range splitOperands(args) {
		v, err := ctx.EvalExpr(strings.TrimSpace(item))
		if err != nil {
			return fail(ctx, E_INVOPE, "DEFW: %v", err)
		}
		ctx.Emit(byte(v), byte(v>>8))
	}
	return nil
}

func (as *assembler) emitDS(args string) error {
	ctx := as.ctx
	parts := splitOperands(args)
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return fail(ctx, E_MISOPE, "DEFS requires a size")
	}
	n, err := ctx.EvalExpr(strings.TrimSpace(parts[0]))
	if err != nil {
		return fail(ctx, E_INVOPE, "DEFS: %v", err)
	}
	fill := byte(0)
	if len(parts) > 1 {
		v, err := ctx.EvalExpr(strings.TrimSpace(parts[1]))
		if err != nil {
			return fail(ctx, E_INVOPE, "DEFS fill: %v", err)
		}
		fill = byte(v)
	}
	for i := uint16(0); i < n; i++ {
		ctx.Emit(fill)
	}
	return nil
}

func (as *assembler) emitDM(args string) error {
	ctx := as.ctx
	s, ok := stringLiteral(strings.TrimSpace(args))
	if !ok {
		return fail(ctx, E_INVOPE, "DEFM requires a quoted string")
	}
	ctx.Emit([]byte(s)...)
	return nil
}

// stringLiteral recognizes a 'single' or "double" quoted literal and
// returns its contents.
func stringLiteral(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}
