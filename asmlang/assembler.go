// Package asmlang implements the two-pass assembler for the machine
// package's mnemonic language: labels, directives, multi-radix literals,
// and the full instruction set, emitting a raw binary image. Grounded on
// original_source/src/assembler.c's two-pass structure, generalized from
// its 13 hardcoded mnemonics to the complete catalog in machine.Catalog.
package asmlang

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/alexleitanthem/simcpu/machine"
)

const (
	maxLabelLength = 64 // original_source/src/assembler.h MAX_LABEL_LENGTH
	maxLabels      = 1000
)

// ErrAssemblyFailed is returned by Assemble when one or more lines
// recorded an error; Assembler.Errors() holds the detail.
var ErrAssemblyFailed = errors.New("assembly failed")

// Diagnostic is one recorded error or warning, carrying enough location
// to point a user at the offending line. Column is always 0: diagnostics
// are attributed to a file and line, not to a position within the line.
type Diagnostic struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

// Assembler holds state across both passes of one source file. Each call
// to Assemble resets the per-file state (labels, output, diagnostics);
// symbols added with DefineSymbol persist across calls.
type Assembler struct {
	filename string
	lines    []string

	pass           int
	lineNumber     int
	currentAddress uint16
	originAddress  uint16

	labels  map[string]uint16
	symbols map[string]uint16

	output []byte

	errors   []Diagnostic
	warnings []Diagnostic
}

// New creates an assembler with empty label and symbol tables. Host-defined
// symbols (constants available to source via the identifier grammar,
// alongside labels) are added with DefineSymbol — original_source declares
// assembler_add_symbol/assembler_find_symbol but never wires a source-level
// syntax for defining one, so DefineSymbol is the only way to populate the
// symbol table.
func New() *Assembler {
	return &Assembler{
		labels:  make(map[string]uint16),
		symbols: make(map[string]uint16),
	}
}

// DefineSymbol adds a named constant resolvable by the expression
// evaluator's identifier production.
func (a *Assembler) DefineSymbol(name string, value uint16) {
	a.symbols[name] = value
}

// Assemble translates source read from r into a binary image, per spec.md
// §4.7: pass 1 collects labels (tolerating forward references), pass 2
// re-walks with the complete label table and emits bytes. originAddr is
// the address of the first emitted byte unless a `.org` directive moves
// it. The image holds the emitted bytes back to back in source order: a
// `.org` changes the addresses used for labels and branches but does not
// pad the image. filename is used only for diagnostic messages.
func (a *Assembler) Assemble(filename string, r io.Reader, originAddr uint16) ([]byte, error) {
	a.filename = filename
	a.originAddress = originAddr
	a.output = nil
	a.labels = make(map[string]uint16)
	a.errors = nil
	a.warnings = nil

	scanner := bufio.NewScanner(r)
	a.lines = nil
	for scanner.Scan() {
		a.lines = append(a.lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading assembler source")
	}

	a.pass = 1
	a.currentAddress = originAddr
	for i, line := range a.lines {
		a.lineNumber = i + 1
		a.parseLine(line)
	}

	a.pass = 2
	a.currentAddress = originAddr
	a.output = make([]byte, 0, len(a.lines)*2)
	for i, line := range a.lines {
		a.lineNumber = i + 1
		a.parseLine(line)
	}

	if len(a.errors) > 0 {
		return nil, errors.Wrapf(ErrAssemblyFailed, "%d error(s)", len(a.errors))
	}
	return a.output, nil
}

// Errors returns the diagnostics recorded during the most recent Assemble
// call.
func (a *Assembler) Errors() []Diagnostic { return a.errors }

// Warnings returns the warnings recorded during the most recent Assemble
// call (e.g. an `.include` directive, per spec.md §9).
func (a *Assembler) Warnings() []Diagnostic { return a.warnings }

// Listing renders the label table in a fixed-width hex column format,
// grounded on original_source/src/monitor.c's tabular status dumps,
// satisfying spec.md §4.7's "optional textual listing" output.
func (a *Assembler) Listing() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Labels:\n")
	for name, addr := range a.labels {
		fmt.Fprintf(&sb, "  %-32s 0x%04X\n", name, addr)
	}
	fmt.Fprintf(&sb, "Symbols:\n")
	for name, v := range a.symbols {
		fmt.Fprintf(&sb, "  %-32s 0x%04X\n", name, v)
	}
	return sb.String()
}

// errorf records a diagnostic for the general parse path (directives,
// instructions, expressions). Every line runs once per pass — pass 1 to
// measure byte counts and collect labels, pass 2 to emit — so a line that
// is malformed fails the same way in both; recording only on pass 2 keeps
// Errors() free of duplicate entries for the same line.
func (a *Assembler) errorf(format string, args ...any) {
	if a.pass != 2 {
		return
	}
	a.recordError(format, args...)
}

func (a *Assembler) recordError(format string, args ...any) {
	a.errors = append(a.errors, Diagnostic{
		File: a.filename, Line: a.lineNumber, Column: 0,
		Message: fmt.Sprintf(format, args...),
	})
}

func (a *Assembler) warnf(format string, args ...any) {
	if a.pass != 2 {
		return
	}
	a.warnings = append(a.warnings, Diagnostic{
		File: a.filename, Line: a.lineNumber, Column: 0,
		Message: fmt.Sprintf(format, args...),
	})
}

// parseLine handles one source line: skip blank/comment lines, consume an
// optional label, then dispatch to a directive or an instruction, per
// original_source's assembler_parse_line.
func (a *Assembler) parseLine(line string) {
	c := &lineCursor{text: line}
	c.skipSpace()

	if c.eof() || c.peek() == ';' {
		return
	}

	if a.parseLabel(c) {
		c.skipSpace()
		if c.eof() || c.peek() == ';' {
			return
		}
	}

	if c.peek() == '.' {
		c.advance()
		a.parseDirective(c)
		return
	}

	a.parseInstruction(c)
}

// parseLabel recognizes `identifier:` at the start of a statement,
// recording the label at the current address on pass 1 (and re-reading
// it harmlessly on pass 2, since both passes compute the same addresses
// for identical source). Backtracks and returns false if no trailing
// colon follows the identifier.
func (a *Assembler) parseLabel(c *lineCursor) bool {
	if !isIdentStart(c.peek()) {
		return false
	}
	start := c.pos
	name := c.readIdent()
	probe := &lineCursor{text: c.text, pos: c.pos}
	probe.skipSpace()
	if probe.peek() != ':' {
		c.pos = start
		return false
	}
	c.pos = probe.pos + 1

	if len(name) > maxLabelLength {
		a.errorf("label too long: %s", name)
		return true
	}
	if a.pass == 1 {
		if len(a.labels) >= maxLabels {
			a.recordError("too many labels")
			return true
		}
		if _, dup := a.labels[name]; dup {
			a.recordError("duplicate label: %s", name)
			return true
		}
		a.labels[name] = a.currentAddress
	}
	return true
}

func (a *Assembler) emitByte(v byte) {
	if a.pass == 2 {
		a.output = append(a.output, v)
	}
	a.currentAddress++
}

func (a *Assembler) emitWord(v uint16) {
	a.emitByte(byte(v))
	a.emitByte(byte(v >> 8))
}
