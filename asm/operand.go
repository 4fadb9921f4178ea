package asm

import "strings"

// operand is a classified instruction operand. kind names a register,
// condition, or addressing mode token; expr holds the expression text
// for anything that isn't a fixed register/condition name (immediates,
// displacements, indirect addresses).
type operand struct {
	kind string // e.g. "A", "BC", "(HL)", "(IX+d)", "NZ", "n", "(nn)"
	expr string // expression text for "n", "(nn)", and the d of "(IX+d)"/"(IY+d)"
}

var regTokens = map[string]bool{
	"A": true, "B": true, "C": true, "D": true, "E": true, "H": true, "L": true, "F": true,
	"BC": true, "DE": true, "HL": true, "SP": true, "AF": true, "IX": true, "IY": true,
	"I": true, "R": true,
	"IXH": true, "IXL": true, "IYH": true, "IYL": true,
	"NZ": true, "Z": true, "NC": true, "PO": true, "PE": true, "P": true, "M": true,
}

// splitOperands splits an operand list on top-level commas, respecting
// parenthesis nesting and <...> bracketing so `LD (IX+1),A` and macro
// argument lists with embedded commas aren't split incorrectly.
// Grounded on the teacher's assembler/ie64asm.go splitOperands /
// splitMacroArgs pairing.
func splitOperands(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if start <= len(s) {
		tail := strings.TrimSpace(s[start:])
		if tail != "" || len(out) > 0 {
			out = append(out, tail)
		}
	}
	return out
}

// classifyOperand recognizes fixed register/condition tokens and the
// (HL)/(BC)/(DE)/(SP)/(C)/(IX+d)/(IY+d)/(nn) addressing forms; anything
// else is an "n" expression operand.
func classifyOperand(raw string) operand {
	s := strings.TrimSpace(raw)
	upper := upcaseASCII(s)

	if regTokens[upper] {
		return operand{kind: upper}
	}
	if upper == "AF'" {
		return operand{kind: "AF'"}
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		inner := strings.TrimSpace(s[1 : len(s)-1])
		innerUpper := upcaseASCII(inner)
		switch innerUpper {
		case "HL":
			return operand{kind: "(HL)"}
		case "BC":
			return operand{kind: "(BC)"}
		case "DE":
			return operand{kind: "(DE)"}
		case "SP":
			return operand{kind: "(SP)"}
		case "C":
			return operand{kind: "(C)"}
		}
		if disp, ok := indexedDisp(inner, "IX"); ok {
			return operand{kind: "(IX+d)", expr: disp}
		}
		if disp, ok := indexedDisp(inner, "IY"); ok {
			return operand{kind: "(IY+d)", expr: disp}
		}
		return operand{kind: "(nn)", expr: inner}
	}

	return operand{kind: "n", expr: s}
}

// indexedDisp recognizes "IX+d", "IX-d", or bare "IX" (displacement 0)
// inside a parenthesized operand.
func indexedDisp(inner, reg string) (string, bool) {
	upper := upcaseASCII(strings.TrimSpace(inner))
	if upper == reg {
		return "0", true
	}
	if strings.HasPrefix(upper, reg+"+") {
		return strings.TrimSpace(inner[len(reg)+1:]), true
	}
	if strings.HasPrefix(upper, reg+"-") {
		return "-(" + strings.TrimSpace(inner[len(reg)+1:]) + ")", true
	}
	return "", false
}

func reg8Code(name string) (byte, bool) {
	switch name {
	case "B":
		return 0, true
	case "C":
		return 1, true
	case "D":
		return 2, true
	case "E":
		return 3, true
	case "H":
		return 4, true
	case "L":
		return 5, true
	case "(HL)":
		return 6, true
	case "A":
		return 7, true
	}
	return 0, false
}

func condCode(name string) (byte, bool) {
	switch name {
	case "NZ":
		return 0, true
	case "Z":
		return 1, true
	case "NC":
		return 2, true
	case "C":
		return 3, true
	case "PO":
		return 4, true
	case "PE":
		return 5, true
	case "P":
		return 6, true
	case "M":
		return 7, true
	}
	return 0, false
}

func rp16Code(name string) (byte, bool) {
	switch name {
	case "BC":
		return 0, true
	case "DE":
		return 1, true
	case "HL":
		return 2, true
	case "SP":
		return 3, true
	}
	return 0, false
}

// rp16CodeAF is rp16Code with slot 3 meaning AF instead of SP, used by
// PUSH/POP.
func rp16CodeAF(name string) (byte, bool) {
	if name == "AF" {
		return 3, true
	}
	return rp16Code(name)
}
