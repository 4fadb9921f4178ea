package asm

import "fmt"

// Symbol is one entry of the symbol table (spec.md §4.3.3): a hash map
// from name to Symbol, names upper-cased when the upcase flag is set.
// Grounded on the teacher's assembler/ie64asm.go labels/equates/sets
// maps, unified into one table with a redefinition-rule flag since the
// traditional label/EQU/SET name-space is shared rather than split
// across three separate maps the way IE64's is.
type Symbol struct {
	Name    string // normalized (upcased/truncated) key
	RawName string // pre-truncation, pre-upcase form, kept for listing
	Value   uint16
	IsSet   bool // defined via SET (redefinable) rather than EQU/label
	Defined bool // false until pass 1 actually assigns it
	DefLine int
}

// normalizeSymbol applies the upcase flag and significant-length
// truncation the symbol table keys on (spec.md §4.3.3).
func (ctx *Context) normalizeSymbol(name string) string {
	if ctx.Cfg.Upcase {
		name = upcaseASCII(name)
	}
	if len(name) > ctx.Cfg.SignificantLen {
		name = name[:ctx.Cfg.SignificantLen]
	}
	return name
}

func upcaseASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// Lookup resolves a symbol for expression evaluation. Pass 1 tolerates
// forward references by returning 0, "resolved, not yet defined" so the
// caller (the expression evaluator) can proceed without erroring
// (spec.md §4.3.5).
func (ctx *Context) Lookup(name string) (uint16, bool) {
	key := ctx.normalizeSymbol(name)
	if key == "$" {
		return ctx.effectivePC(), true
	}
	sym, ok := ctx.symbols[key]
	if !ok {
		if ctx.Pass == 1 {
			return 0, true
		}
		return 0, false
	}
	return sym.Value, true
}

// Defined reports whether name currently has a table entry, used by
// IFDEF/IFNDEF without going through the pass-1-tolerant Lookup path.
func (ctx *Context) Defined(name string) bool {
	_, ok := ctx.symbols[ctx.normalizeSymbol(name)]
	return ok
}

// Define enters a label/EQU symbol. Redefining a plain label or EQU
// symbol is an error; SET symbols may always be redefined, and a SET
// symbol may not later be redefined as a plain label/EQU (spec.md
// §4.3.3: "EQU and SET share name-space with labels but distinct
// redefine rules").
func (ctx *Context) Define(name string, value uint16, isSet bool) error {
	key := ctx.normalizeSymbol(name)
	existing, ok := ctx.symbols[key]
	// Pass 2 re-walks the whole source and so re-declares every label
	// pass 1 already placed; that's expected, not a real redefinition, as
	// long as the value still matches what pass 1 computed.
	if ok && existing.Defined && ctx.Pass == 2 && existing.IsSet == isSet && existing.Value == value {
		existing.DefLine = ctx.LineNo
		return nil
	}
	if ok && existing.Defined && !existing.IsSet {
		return fmt.Errorf("symbol %q already defined", name)
	}
	if ok && existing.Defined && existing.IsSet && !isSet {
		return fmt.Errorf("symbol %q already defined with SET, cannot redefine as label/EQU", name)
	}
	ctx.symbols[key] = &Symbol{
		Name:    key,
		RawName: name,
		Value:   value,
		IsSet:   isSet,
		Defined: true,
		DefLine: ctx.LineNo,
	}
	return nil
}

// Symbols returns the table sorted by name, for the symbol dump section
// of the listing (spec.md §4.3.7).
func (ctx *Context) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(ctx.symbols))
	for _, s := range ctx.symbols {
		out = append(out, s)
	}
	sortSymbols(out)
	return out
}

func sortSymbols(s []*Symbol) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1].Name > s[j].Name; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
