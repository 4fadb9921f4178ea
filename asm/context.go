// Package asm implements a two-pass macro assembler for the Z80 and
// Intel 8080 instruction sets. It is deliberately instance-based rather
// than built around package-level globals: the teacher's own assembler
// (assembler/ie64asm.go's IE64Assembler) carries its pass/label/macro
// state on a struct receiver, and the redesign note in the instruction
// set simulator's spec carries that same discipline forward so multiple
// assemblies can run concurrently without interfering with each other.
package asm

// Arch selects which mnemonic/pseudo-op table a Context assembles
// against.
type Arch int

const (
	ArchZ80 Arch = iota
	Arch8080
)

// Config holds the CLI-surface options that shape an assembly (spec.md
// §6.2). Zero value is the traditional-mode default.
type Config struct {
	Arch Arch

	Upcase         bool // -U
	NoFill         bool // -x
	Undocumented   bool // -u
	NoDate         bool // -T
	ExpandMacros   bool // -m
	Verbose        bool // -v
	SymbolDump     bool // -s
	ListFile       bool // -l

	ObjectFile  string // -o
	ListingFile string // -L
	ObjectFmt   ObjectFormat

	SignificantLen int // -nNNNN; 0 means "use DefaultSignificantLen"
	RecordLen      int // HEX/C-array bytes per record/line; 0 means default

	Defines      map[string]string // -Dsym[=val]
	IncludePaths []string          // -Idir
}

// ObjectFormat selects the emitted object file's encoding.
type ObjectFormat int

const (
	ObjectHex ObjectFormat = iota
	ObjectSRecord
	ObjectBinary
	ObjectCArray
)

const (
	MacNestLimit          = 16    // spec.md §4.3.4
	IfNestLimit            = 32   // conservative bound; teacher has no analogue, spec.md names no number
	LocalPlaceholderLimit = 10000 // spec.md §4.3.4, "??NNNN"
	DefaultSignificantLen = 32
	DefaultRecordLen      = 32
)

// Context carries all per-assembly state: the symbol table, macro
// table, conditional-assembly stack, pass/PC/radix state, and
// accumulated diagnostics/listing/object bytes. One Context assembles
// one program; nothing here is package-level, so N goroutines can each
// own a Context and assemble independently, matching §5's "no
// concurrency contract to meet" by simply not sharing any state.
type Context struct {
	Cfg Config

	Pass  int // 1 or 2
	Radix int // default 10; RADIX directive changes it
	PC    uint16

	phase       bool   // .PHASE active
	phaseOrigin uint16 // PC the .PHASE block pretends to run at
	phaseReal   uint16 // true PC code is actually placed at, during .PHASE

	symbols map[string]*Symbol
	macros  map[string]*macroDef

	condStack []condFrame
	macroStack []macroFrame
	localCounter int

	CurrentMacroArgs []string // values "%n" reads in expressions; macro expansion never assigns it, so "%n" reports out of range

	Diagnostics []Diagnostic
	Warnings    []string
	ErrorCount  int

	LineNo   int
	FileName string

	Listing      []ListingLine
	image        map[uint16]byte // sparse byte image, written by Emit during pass 2
	haveImage    bool
	imageLo      uint16
	imageHi      uint16
	pendingBytes []byte // bytes emitted for the line currently being listed

	Title   string
	Subttl  string
	pageLen int
	pageNo  int
}

// NewContext returns a Context ready for pass 1 of a fresh assembly.
func NewContext(cfg Config) *Context {
	if cfg.SignificantLen <= 0 {
		cfg.SignificantLen = DefaultSignificantLen
	}
	if cfg.RecordLen <= 0 {
		cfg.RecordLen = DefaultRecordLen
	}
	return &Context{
		Cfg:     cfg,
		Radix:   10,
		symbols: make(map[string]*Symbol),
		macros:  make(map[string]*macroDef),
		image:   make(map[uint16]byte),
		pageLen: 60,
	}
}

// effectivePC returns the PC value expressions see for "$": the phase
// address while a .PHASE block is active, otherwise the real PC. ctx.PC
// always tracks the real, linear address bytes are written at; phaseReal
// is pinned to the real PC at the moment .PHASE was entered, so the
// difference PC-phaseReal is how far the block has advanced since, added
// onto the address the block pretends to run at.
func (ctx *Context) effectivePC() uint16 {
	if ctx.phase {
		return ctx.phaseOrigin + (ctx.PC - ctx.phaseReal)
	}
	return ctx.PC
}

// enterPhase activates a .PHASE block: code from here on is still placed
// at the real PC, but expressions and labels see origin instead.
func (ctx *Context) enterPhase(origin uint16) {
	ctx.phase = true
	ctx.phaseOrigin = origin
	ctx.phaseReal = ctx.PC
}

// exitPhase ends a .DEPHASE, returning labels/"$" to the real PC.
func (ctx *Context) exitPhase() {
	ctx.phase = false
}

// Emit writes bytes at the current PC into the sparse object image (pass
// 2 only, so pass 1 never produces output per spec.md's pass-1 contract)
// and into the pending listing line, then advances PC. Because the
// image is address-keyed rather than a flat append-ordered buffer,
// repeated ORG/.PHASE directives that reposition PC arbitrarily don't
// corrupt earlier or later output: each byte lands at its real address
// regardless of emission order.
func (ctx *Context) Emit(bytes ...byte) {
	if ctx.Pass == 2 {
		for i, v := range bytes {
			addr := ctx.PC + uint16(i)
			ctx.image[addr] = v
			if !ctx.haveImage {
				ctx.haveImage = true
				ctx.imageLo, ctx.imageHi = addr, addr
			} else {
				if addr < ctx.imageLo {
					ctx.imageLo = addr
				}
				if addr > ctx.imageHi {
					ctx.imageHi = addr
				}
			}
		}
		ctx.pendingBytes = append(ctx.pendingBytes, bytes...)
	}
	ctx.PC += uint16(len(bytes))
}

// ResetForPass2 rewinds PC/phase/macro state so pass 2 re-walks the
// source from the top while keeping the symbol table pass 1 built.
// Macro definitions are cleared because pass 2 reads them again.
func (ctx *Context) ResetForPass2() {
	ctx.Pass = 2
	ctx.PC = 0
	ctx.Radix = 10
	ctx.phase = false
	ctx.localCounter = 0
	ctx.condStack = nil
	ctx.macroStack = nil
	ctx.macros = make(map[string]*macroDef)
}

// Segment is one contiguous run of emitted bytes at a fixed origin.
// Segments() splits the sparse image back into these runs wherever an
// ORG/.PHASE gap left an address unwritten.
type Segment struct {
	Origin uint16
	Bytes  []byte
}

// Segments returns the emitted image as address-ascending contiguous
// runs, merging adjacent bytes and splitting at any gap. Address space
// wraps at 64K so the scan is a fixed 65536-iteration walk rather than a
// sort over map keys.
func (ctx *Context) Segments() []Segment {
	var segs []Segment
	open := false
	for i := 0; i <= 0xFFFF; i++ {
		addr := uint16(i)
		b, ok := ctx.image[addr]
		if !ok {
			open = false
			continue
		}
		if !open {
			segs = append(segs, Segment{Origin: addr})
			open = true
		}
		last := &segs[len(segs)-1]
		last.Bytes = append(last.Bytes, b)
	}
	return segs
}
