package machine

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SetBreakpoint arms a PC-equality breakpoint, per original_source's
// cpu_set_breakpoint.
func (c *CPU) SetBreakpoint(addr uint16) {
	c.Breakpoint = addr
	c.HasBreak = true
}

// ClearBreakpoint disarms the breakpoint and clears any pending hit flag.
func (c *CPU) ClearBreakpoint() {
	c.HasBreak = false
	c.BreakHit = false
}

// SetWatchpoint arms a memory watchpoint. Step observes any read or write
// to this address during instruction execution and sets WatchHit, per
// spec.md §4.6.
func (c *CPU) SetWatchpoint(addr uint16) {
	c.Watchpoint = addr
	c.HasWatch = true
}

// ClearWatchpoint disarms the watchpoint and clears any pending hit flag.
func (c *CPU) ClearWatchpoint() {
	c.HasWatch = false
	c.WatchHit = false
}

// EnableTrace turns per-instruction trace emission on or off. Trace lines
// are handed to TraceSink if set, otherwise logged at debug level via
// logrus — mirroring original_source's cpu_enable_trace plus
// cpu_print_status, reworked onto a structured logger the way
// oisee-z80-optimizer's CLI layers logging over a plain disassembler.
func (c *CPU) EnableTrace(enable bool) {
	c.TraceEnabled = enable
}

// watchCheck marks WatchHit if addr matches the armed watchpoint. Called
// by the bus-facing read/write helpers in exec.go around every memory
// access an instruction performs.
func (c *CPU) watchCheck(addr uint16) {
	if c.HasWatch && addr == c.Watchpoint {
		c.WatchHit = true
	}
}

// StatusString renders a one-line register/flag/cycle summary, grounded on
// original_source's cpu_get_status_string.
func (c *CPU) StatusString() string {
	return fmt.Sprintf("PC=0x%04X SP=0x%04X A=0x%02X Flags=%s(0x%02X) Cycles=%d",
		c.PC, c.SP, c.A, c.F, byte(c.F), c.CycleCount)
}

func (c *CPU) emitTrace(pc uint16, disasm string) {
	line := fmt.Sprintf("%04X  %-24s  %s", pc, disasm, c.StatusString())
	if c.TraceSink != nil {
		c.TraceSink(line)
		return
	}
	logrus.WithFields(logrus.Fields{
		"pc":    fmt.Sprintf("0x%04X", pc),
		"instr": disasm,
	}).Debug(line)
}
