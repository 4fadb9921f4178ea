package asm

// WriteBinary renders the emitted image as contiguous bytes, low address
// to high. With Cfg.NoFill (-x) set, segments are packed back to back
// with no gap bytes between them, so a segment after a gap no longer
// sits at its address's offset in the output; otherwise gaps between the
// assembly's lowest and highest written address are zero-filled, per
// spec.md §4.3.6.
func (ctx *Context) WriteBinary() []byte {
	segs := ctx.Segments()
	if len(segs) == 0 {
		return nil
	}

	if ctx.Cfg.NoFill {
		var out []byte
		for _, s := range segs {
			out = append(out, s.Bytes...)
		}
		return out
	}

	lo := segs[0].Origin
	last := segs[len(segs)-1]
	hi := last.Origin + uint16(len(last.Bytes)) - 1
	out := make([]byte, int(hi)-int(lo)+1)
	for _, s := range segs {
		copy(out[int(s.Origin)-int(lo):], s.Bytes)
	}
	return out
}
