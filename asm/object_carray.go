package asm

import (
	"fmt"
	"strings"
)

// WriteCArray renders the emitted image as a C source fragment: one
// "static const unsigned char name[] = { ... };" declaration per
// contiguous segment, wrapped at Cfg.RecordLen bytes per line (spec.md
// §6.3). Multiple segments get a numeric suffix on the array name so a
// multi-ORG program still produces a single compilable fragment.
func (ctx *Context) WriteCArray(name string) string {
	if name == "" {
		name = "rom"
	}
	segs := ctx.Segments()
	perLine := ctx.Cfg.RecordLen
	if perLine <= 0 {
		perLine = DefaultRecordLen
	}

	var b strings.Builder
	for i, seg := range segs {
		arrName := name
		if len(segs) > 1 {
			arrName = fmt.Sprintf("%s_%d", name, i)
		}
		fmt.Fprintf(&b, "/* origin 0x%04X, %d bytes */\n", seg.Origin, len(seg.Bytes))
		fmt.Fprintf(&b, "static const unsigned char %s[] = {\n", arrName)
		for j := 0; j < len(seg.Bytes); j += perLine {
			end := j + perLine
			if end > len(seg.Bytes) {
				end = len(seg.Bytes)
			}
			b.WriteString("    ")
			for k, v := range seg.Bytes[j:end] {
				if k > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "0x%02X", v)
			}
			b.WriteString(",\n")
		}
		b.WriteString("};\n")
		if i != len(segs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
