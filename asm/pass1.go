package asm

// RunPass1 walks lines once to populate the symbol table and compute
// every label's final address. No bytes are written (Emit only touches
// the image on pass 2) and no listing rows are produced; per spec.md
// §4.3.5, pass 1's only job is address calculation, with forward
// references tolerated as the placeholder value 0 via Lookup.
func RunPass1(ctx *Context, lines []sourceLine) {
	ctx.Pass = 1
	as := newAssembler(ctx, lines)
	as.run()
}
