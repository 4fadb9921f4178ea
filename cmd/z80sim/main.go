// Command z80sim loads a memory image and runs a Z80 or 8080 interpreter
// against it until HALT, a breakpoint, or an unrecoverable CPU error,
// then prints the final register state -- enough to exercise cpu.CPU
// end to end without any device emulation beyond a flat RAM bus.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/intuitionamiga/z80pack-go/asm"
	"github.com/intuitionamiga/z80pack-go/bus"
	"github.com/intuitionamiga/z80pack-go/cpu"
	"github.com/spf13/cobra"
)

func main() {
	var (
		is8080       bool
		undocumented bool
		amd8080ANA   bool
		origin       uint16
		origHex      string
		startPC      uint16
		startPCHex   string
		maxSteps     int
		breakAt      []string
		verbose      bool
		traceSteps   bool
	)

	cmd := &cobra.Command{
		Use:   "z80sim [flags] image",
		Short: "Run a Z80/8080 program image against a flat-memory bus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if origHex != "" {
				v, err := strconv.ParseUint(strings.TrimPrefix(origHex, "0x"), 16, 16)
				if err != nil {
					return fmt.Errorf("-origin: %v", err)
				}
				origin = uint16(v)
			}
			if startPCHex != "" {
				v, err := strconv.ParseUint(strings.TrimPrefix(startPCHex, "0x"), 16, 16)
				if err != nil {
					return fmt.Errorf("-pc: %v", err)
				}
				startPC = uint16(v)
			}

			breaks := make(map[uint16]bool, len(breakAt))
			for _, b := range breakAt {
				v, err := strconv.ParseUint(strings.TrimPrefix(b, "0x"), 16, 16)
				if err != nil {
					return fmt.Errorf("-break %q: %v", b, err)
				}
				breaks[uint16(v)] = true
			}

			mem := bus.NewMemory()
			if err := loadImage(mem, args[0], origin); err != nil {
				return err
			}

			arch := cpu.ArchZ80
			if is8080 {
				arch = cpu.Arch8080
			}
			sysBus := &bus.SystemBus{Memory: mem, IOSpace: bus.NewIOSpace()}
			stopAt := &breakpointHook{addrs: breaks}
			hooked := struct {
				*bus.SystemBus
				*breakpointHook
			}{sysBus, stopAt}

			c := cpu.New(arch, hooked, cpu.Config{Undocumented: undocumented, AMD8080ANA: amd8080ANA})
			c.PC = startPC

			steps := 0
			for {
				if maxSteps > 0 && steps >= maxSteps {
					break
				}
				if stopAt.hit {
					break
				}
				t, err := c.Step()
				steps++
				if traceSteps {
					fmt.Fprintf(os.Stdout, "%5d T=%-6d PC=%04X AF=%04X BC=%04X DE=%04X HL=%04X\n",
						steps, t, c.PC, c.AF(), c.BC(), c.DE(), c.HL())
				}
				if err != nil {
					break
				}
				if c.Status == cpu.Stopped {
					break
				}
			}

			printState(os.Stdout, c, steps, verbose)
			if c.Status == cpu.Stopped && c.Err != cpu.ErrNone {
				os.Exit(1)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&is8080, "8080", "8", false, "interpret Intel 8080 mnemonics instead of Z80")
	flags.BoolVarP(&undocumented, "undocumented", "u", false, "enable undocumented Z80 behavior (IXH/IXL, SLL, ...)")
	flags.BoolVar(&amd8080ANA, "amd-ana", false, "use the AMD8080 ANA H-flag variant (8080 mode only)")
	flags.StringVar(&origHex, "origin", "", "load address for a raw binary image, hex (default 0x0000)")
	flags.StringVar(&startPCHex, "pc", "", "initial PC, hex (default 0x0000)")
	flags.IntVar(&maxSteps, "max-steps", 0, "stop after this many Step() calls (0 = unbounded)")
	flags.StringArrayVar(&breakAt, "break", nil, "stop after the instruction fetched at this address has run, hex (repeatable)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print the full register set, not just the summary line")
	flags.BoolVar(&traceSteps, "trace", false, "print one line per executed instruction")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// loadImage loads path into mem at origin. A ".hex" extension is decoded
// as Intel HEX (each record supplies its own address, so origin is
// ignored); anything else is treated as a raw binary loaded at origin.
func loadImage(mem *bus.Memory, path string, origin uint16) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %v", path, err)
	}
	if strings.HasSuffix(strings.ToLower(path), ".hex") {
		img, err := asm.ReadIntelHex(string(data))
		if err != nil {
			return fmt.Errorf("decoding %s: %v", path, err)
		}
		for addr, b := range img {
			mem.Load(addr, []byte{b})
		}
		return nil
	}
	mem.Load(origin, data)
	return nil
}

// breakpointHook implements cpu.M1Hook: it never touches memory itself,
// just watches every opcode fetch for a configured breakpoint address.
type breakpointHook struct {
	addrs map[uint16]bool
	hit   bool
}

func (h *breakpointHook) OnM1(pc uint16) {
	if h.addrs[pc] {
		h.hit = true
	}
}

func printState(w *os.File, c *cpu.CPU, steps int, verbose bool) {
	fmt.Fprintf(w, "stopped: status=%s error=%s steps=%d T=%d PC=%04X\n",
		c.Status, c.Err, steps, c.T, c.PC)
	if !verbose {
		return
	}
	fmt.Fprintf(w, "AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X IX=%04X IY=%04X\n",
		c.AF(), c.BC(), c.DE(), c.HL(), c.SP, c.IX, c.IY)
	fmt.Fprintf(w, "AF'=%04X BC'=%04X DE'=%04X HL'=%04X I=%02X R=%02X IM=%d IFF1=%v IFF2=%v\n",
		c.AF2(), c.BC2(), c.DE2(), c.HL2(), c.I, c.R, c.IM, c.IFF1, c.IFF2)
}
