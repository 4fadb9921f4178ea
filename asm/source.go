package asm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sourceLine is one physical line of the flattened program text, tagged
// with the file it came from so diagnostics and the listing can report
// the right origin across an INCLUDE chain.
type sourceLine struct {
	file   string
	lineno int
	text   string
}

// FileReader loads a source file's contents by path. Assemble's caller
// supplies this (normally backed by os.ReadFile); tests can substitute
// an in-memory map instead.
type FileReader func(path string) (string, error)

// OSFileReader reads files straight off disk, the default for cmd/z80asm.
func OSFileReader(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// resolveInclude locates path against dir first, then each of
// includePaths in order (spec.md §6.2's -I), returning the full path
// read succeeded against and its contents.
func resolveInclude(path string, dir string, includePaths []string, read FileReader) (full, data string, err error) {
	candidates := append([]string{dir}, includePaths...)
	for _, d := range candidates {
		full = filepath.Join(d, path)
		if data, err = read(full); err == nil {
			return full, data, nil
		}
	}
	return "", "", err
}

// flattenIncludes expands INCLUDE "file" directives depth-first into one
// flat slice of sourceLines, resolving relative paths against dir (then
// includePaths) and each subsequent include's own directory, and
// returning a "circular include" error for any file already included
// earlier in the walk (the seen set is never cleared, so a file included
// twice in sequence is rejected too). Grounded on assembler/ie64asm.go's preprocess, which
// performs the same os.ReadFile-plus-seen-set expansion before any other
// processing runs.
func flattenIncludes(path string, dir string, includePaths []string, read FileReader, seen map[string]bool) ([]sourceLine, error) {
	full, data, err := resolveInclude(path, dir, includePaths, read)
	if err != nil {
		return nil, fmt.Errorf("include %q: %v", path, err)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		abs = full
	}
	if seen[abs] {
		return nil, fmt.Errorf("circular include: %s", path)
	}
	seen[abs] = true

	nextDir := filepath.Dir(full)

	var out []sourceLine
	rawLines := strings.Split(data, "\n")
	for i, raw := range rawLines {
		word := firstWord(raw)
		if strings.EqualFold(word, "INCLUDE") {
			_, rest, _ := strings.Cut(strings.TrimSpace(stripComment(raw)), " ")
			incName := strings.Trim(strings.TrimSpace(rest), "\"'")
			if incName == "" {
				return nil, fmt.Errorf("%s:%d: INCLUDE requires a filename", full, i+1)
			}
			sub, err := flattenIncludes(incName, nextDir, includePaths, read, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		out = append(out, sourceLine{file: full, lineno: i + 1, text: raw})
	}
	return out, nil
}
