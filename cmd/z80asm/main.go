// Command z80asm is a two-pass Z80/Intel 8080 macro assembler, driving
// the asm package across the flag surface of spec.md §6.2.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/intuitionamiga/z80pack-go/asm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	var (
		listFile     bool
		symbolDump   bool
		upcase       bool
		noFill       bool
		undocumented bool
		is8080       bool
		noDate       bool
		expandMacros bool
		verbose      bool
		objectFile   string
		listingFile  string
		defines      []string
		includeDirs  []string
		sigLen       int
		objFmt       string
	)

	cmd := &cobra.Command{
		Use:   "z80asm [flags] source.asm [source2.asm ...]",
		Short: "Two-pass Z80/8080 macro assembler",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := asm.Config{
				Arch:           asm.ArchZ80,
				Upcase:         upcase,
				NoFill:         noFill,
				Undocumented:   undocumented,
				NoDate:         noDate,
				ExpandMacros:   expandMacros,
				Verbose:        verbose,
				SymbolDump:     symbolDump,
				ListFile:       listFile,
				ObjectFile:     objectFile,
				ListingFile:    listingFile,
				SignificantLen: sigLen,
				RecordLen:      sigLen,
				IncludePaths:   includeDirs,
			}
			if is8080 {
				cfg.Arch = asm.Arch8080
			}
			switch strings.ToLower(objFmt) {
			case "", "hex":
				cfg.ObjectFmt = asm.ObjectHex
			case "srec", "s-record", "s19":
				cfg.ObjectFmt = asm.ObjectSRecord
			case "bin", "binary":
				cfg.ObjectFmt = asm.ObjectBinary
			case "carray", "c", "c-array":
				cfg.ObjectFmt = asm.ObjectCArray
			default:
				return fmt.Errorf("unknown -f format %q (want hex, srec, bin, or carray)", objFmt)
			}

			var derr error
			cfg.Defines, derr = parseDefines(defines)
			if derr != nil {
				return derr
			}

			src := args[0]
			if cfg.ObjectFile == "" {
				cfg.ObjectFile = replaceExt(src, objectExt(cfg.ObjectFmt))
			}
			if cfg.ListingFile == "" {
				cfg.ListingFile = replaceExt(src, ".lst")
			}

			if verbose && term.IsTerminal(int(os.Stdout.Fd())) {
				fmt.Fprintf(os.Stdout, "z80asm: assembling %s (%s)\n", strings.Join(args, " "), cfg.Arch)
			}

			ctx, fatal, err := asm.Assemble(cfg, args, nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "z80asm: %v\n", err)
				os.Exit(2)
			}

			for _, d := range ctx.Diagnostics {
				fmt.Fprintln(os.Stderr, d.String())
			}
			for _, w := range ctx.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			if fatal != nil {
				fmt.Fprintln(os.Stderr, fatal.String())
			}

			if cfg.ListFile {
				if err := os.WriteFile(cfg.ListingFile, []byte(ctx.RenderListing()), 0644); err != nil {
					fmt.Fprintf(os.Stderr, "z80asm: writing listing: %v\n", err)
				}
			}
			if fatal == nil {
				if err := os.WriteFile(cfg.ObjectFile, ctx.RenderObject(), 0644); err != nil {
					fmt.Fprintf(os.Stderr, "z80asm: writing object: %v\n", err)
				}
			}

			os.Exit(asm.ExitCode(ctx, fatal))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&listFile, "list", "l", false, "write a listing file")
	flags.BoolVarP(&symbolDump, "symbols", "s", false, "include a symbol table dump in the listing")
	flags.BoolVarP(&upcase, "upcase", "U", false, "fold all symbols to upper case")
	flags.BoolVarP(&noFill, "no-fill", "x", false, "pack binary output without zero-filling ORG gaps")
	flags.BoolVarP(&undocumented, "undocumented", "u", false, "allow undocumented opcodes")
	flags.BoolVarP(&is8080, "8080", "8", false, "assemble Intel 8080 mnemonics instead of Z80")
	flags.BoolVarP(&noDate, "no-date", "T", false, "omit the date from listing headers")
	flags.BoolVarP(&expandMacros, "expand-macros", "m", false, "show macro-expanded lines in the listing")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print progress to stdout")
	flags.StringVarP(&objectFile, "output", "o", "", "object file name (default: <source>.<ext>)")
	flags.StringVarP(&listingFile, "listing", "L", "", "listing file name (default: <source>.lst)")
	flags.StringArrayVarP(&defines, "define", "D", nil, "define sym[=val] (repeatable)")
	flags.StringArrayVarP(&includeDirs, "include", "I", nil, "add a directory to the INCLUDE search path (repeatable)")
	flags.IntVarP(&sigLen, "significant-len", "n", 0, "symbol significant length and HEX/C-array record size")
	flags.StringVarP(&objFmt, "format", "f", "hex", "object format: hex, srec, bin, or carray")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// parseDefines turns repeated -Dsym[=val] flags into the map asm.Config
// expects, "val" left as raw expression text for asm.EvalExpr to parse
// (so -DBASE=4000H works the same as a source-level EQU would).
func parseDefines(defs []string) (map[string]string, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(defs))
	for _, d := range defs {
		name, val, _ := strings.Cut(d, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("-D: empty symbol name in %q", d)
		}
		out[name] = strings.TrimSpace(val)
	}
	return out, nil
}

func objectExt(fmtID asm.ObjectFormat) string {
	switch fmtID {
	case asm.ObjectSRecord:
		return ".s19"
	case asm.ObjectBinary:
		return ".bin"
	case asm.ObjectCArray:
		return ".h"
	default:
		return ".hex"
	}
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
