package asm

import (
	"fmt"
	"strings"
)

// ListingLine is one row of the columnar listing (spec.md §4.3.7):
// line number, optional PC, generated bytes (wrapped onto continuation
// lines past a fixed width), and the original source text. Grounded on
// the teacher's assembler/ie64asm.go addListing, generalized from its
// single "addr + hex + source" row into the numbered, error-annotated,
// continuation-capable form a traditional listing needs.
type ListingLine struct {
	LineNo int
	PC     uint16
	HasPC  bool
	Bytes  []byte
	Source string
	ErrMark string // single-character error code annotation, if any
}

const listingBytesPerLine = 4

// addListingLine appends one rendered source line, its emitted bytes
// (already collected in ctx.pendingBytes by Emit calls during the
// line), and any diagnostic mark, then clears the pending-bytes buffer
// for the next line.
func (ctx *Context) addListingLine(pc uint16, hasPC bool, source string, errMark string) {
	ctx.Listing = append(ctx.Listing, ListingLine{
		LineNo:  ctx.LineNo,
		PC:      pc,
		HasPC:   hasPC,
		Bytes:   ctx.pendingBytes,
		Source:  source,
		ErrMark: errMark,
	})
	ctx.pendingBytes = nil
}

// RenderListing formats the accumulated listing lines as the teacher's
// addListing formats one address/hex/source row, followed by a symbol
// table dump when Cfg.SymbolDump is set (spec.md §4.3.7). No
// cross-reference section is written. TITLE/SUBTTL/PAGE headers repeat
// every ctx.pageLen body lines while pageLen is positive; Cfg.NoDate is
// not consulted.
func (ctx *Context) RenderListing() string {
	var b strings.Builder
	lineInPage := 0
	writeHeader := func() {
		title := ctx.Title
		if title == "" {
			title = ctx.FileName
		}
		fmt.Fprintf(&b, "%-60s PAGE %d\n", title, ctx.pageNo+1)
		if ctx.Subttl != "" {
			fmt.Fprintf(&b, "%s\n", ctx.Subttl)
		}
		b.WriteString("\n")
	}
	ctx.pageNo = 0
	writeHeader()

	for _, ln := range ctx.Listing {
		if ctx.pageLen > 0 && lineInPage >= ctx.pageLen {
			ctx.pageNo++
			b.WriteString("\f")
			writeHeader()
			lineInPage = 0
		}
		renderListingRow(&b, ln)
		lineInPage++
	}

	if ctx.Cfg.SymbolDump {
		b.WriteString("\nSYMBOL TABLE\n")
		for _, sym := range ctx.Symbols() {
			fmt.Fprintf(&b, "%-16s %04X%s\n", sym.RawName, sym.Value, setMark(sym))
		}
	}

	return b.String()
}

func setMark(sym *Symbol) string {
	if sym.IsSet {
		return " (SET)"
	}
	return ""
}

func renderListingRow(b *strings.Builder, ln ListingLine) {
	pcCol := "    "
	if ln.HasPC {
		pcCol = fmt.Sprintf("%04X", ln.PC)
	}
	mark := ln.ErrMark
	if mark == "" {
		mark = " "
	}

	if len(ln.Bytes) == 0 {
		fmt.Fprintf(b, "%5d %s %s          %s\n", ln.LineNo, pcCol, mark, ln.Source)
		return
	}

	first := true
	for i := 0; i < len(ln.Bytes); i += listingBytesPerLine {
		end := i + listingBytesPerLine
		if end > len(ln.Bytes) {
			end = len(ln.Bytes)
		}
		hex := hexBytes(ln.Bytes[i:end])
		if first {
			fmt.Fprintf(b, "%5d %s %s %-12s %s\n", ln.LineNo, pcCol, mark, hex, ln.Source)
			first = false
		} else {
			fmt.Fprintf(b, "%5s %s %s %-12s\n", "", "    ", " ", hex)
		}
	}
}

func hexBytes(bs []byte) string {
	var sb strings.Builder
	for i, b := range bs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}
