package asm

import (
	"fmt"
	"strings"
)

// WriteSRecord renders the emitted image as Motorola S1 data records
// plus an S9 EOF record, lines ending with LF (spec.md §4.3.6/§6.3).
// Each segment starts its own run of records at its own address, the
// same gap-free-by-construction reasoning as WriteIntelHex.
func (ctx *Context) WriteSRecord() string {
	var b strings.Builder
	recLen := ctx.Cfg.RecordLen
	if recLen <= 0 || recLen > 252 {
		recLen = DefaultRecordLen
	}
	for _, seg := range ctx.Segments() {
		addr := seg.Origin
		obj := seg.Bytes
		for i := 0; i < len(obj); i += recLen {
			end := i + recLen
			if end > len(obj) {
				end = len(obj)
			}
			chunk := obj[i:end]
			writeSRecordLine(&b, "S1", addr, chunk)
			addr += uint16(len(chunk))
		}
	}
	writeSRecordLine(&b, "S9", 0, nil)
	return b.String()
}

func writeSRecordLine(b *strings.Builder, recType string, addr uint16, data []byte) {
	byteCount := 2 + 1 + len(data) // address + checksum + data
	sum := byteCount + int(byte(addr>>8)) + int(byte(addr))
	for _, d := range data {
		sum += int(d)
	}
	checksum := byte(^byte(sum))

	fmt.Fprintf(b, "%s%02X%04X", recType, byteCount, addr)
	for _, d := range data {
		fmt.Fprintf(b, "%02X", d)
	}
	fmt.Fprintf(b, "%02X\n", checksum)
}
