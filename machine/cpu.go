package machine

import "time"

// Reset vector addresses, per original_source/src/cpu.c (cpu_reset) and
// cpu_handle_interrupts.
const (
	ResetVector = 0xFFFC
	NMIVector   = 0xFFFA
	IRQVector   = 0xFFFE
)

// defaultStackTop is where SP lands after a reset: the stack grows down
// from just below the MMIO window, per original_source's
// "Set initial stack pointer (grows downward from 0x7FFF)".
const defaultStackTop = 0x7FFF

// DefaultFrequencyHz is the CPU's nominal clock rate used by the optional
// run throttle, mirroring original_source's CPU_FREQUENCY_HZ.
const DefaultFrequencyHz = 1_000_000

// CPU is the whole machine: registers, flags, the address space, and the
// debug/control state the step loop consults. There is deliberately no
// separate "core" vs. "system" split — original_source's cpu_state_t bundles
// all of this into one struct and KTStephano-GVM's VM does the same for its
// own architecture.
type CPU struct {
	A, B, C, D byte
	X, Y       uint16
	SP         uint16
	PC         uint16
	F          Flags

	Bus *Bus

	Running     bool
	IRQPending  bool
	NMIPending  bool
	CycleCount  uint64
	InstrCount  uint32

	Breakpoint   uint16
	HasBreak     bool
	BreakHit     bool
	Watchpoint   uint16
	HasWatch     bool
	WatchHit     bool
	TraceEnabled bool
	TraceSink    func(line string)

	FrequencyHz uint32
	lastTick    time.Time
}

// NewCPU allocates a CPU with a fresh 64 KiB bus and resets it to the
// power-on state.
func NewCPU() *CPU {
	cpu := &CPU{Bus: NewBus()}
	cpu.Reset()
	cpu.FrequencyHz = DefaultFrequencyHz
	return cpu
}

// Reset clears registers, flags, debug state, memory, and peripherals, then
// loads PC from the reset vector — a full reset per spec.md §3's lifecycle
// description and original_source's cpu_reset. Bus.Clear runs first, so PC
// always comes from the freshly-installed sentinel vector (0x0200, spec.md
// §3/§6); a vector written before Reset is erased with the rest of memory.
func (c *CPU) Reset() {
	c.resetRegisters()
	c.Bus.Clear()
	c.PC = c.Bus.Read16(ResetVector)
}

// ResetTo performs a warm reset: registers, flags, and control/debug state
// go back to their power-on values, but memory and peripheral state are
// left untouched, per spec.md §3's "warm reset to an explicit address" and
// original_source's cpu_reset_to_address (used so tests can load a program
// and then reset execution state without erasing it).
func (c *CPU) ResetTo(address uint16) {
	c.resetRegisters()
	c.PC = address
}

func (c *CPU) resetRegisters() {
	c.A, c.B, c.C, c.D = 0, 0, 0, 0
	c.X, c.Y = 0, 0
	c.SP = defaultStackTop
	c.F = 0
	c.Running = false
	c.IRQPending = false
	c.NMIPending = false
	c.CycleCount = 0
	c.InstrCount = 0
	c.HasBreak = false
	c.BreakHit = false
	c.HasWatch = false
	c.WatchHit = false
}

// Reg8 reads an 8-bit register by its encoding index. Indices 4..7 (X, Y,
// SP, PC) have no 8-bit view and read back 0, matching
// original_source's isa_get_register falling through its `reg < 4` check.
func (c *CPU) Reg8(r Register) byte {
	switch r {
	case RegA:
		return c.A
	case RegB:
		return c.B
	case RegC:
		return c.C
	case RegD:
		return c.D
	default:
		return 0
	}
}

// SetReg8 writes an 8-bit register by index; indices 4..7 are no-ops.
func (c *CPU) SetReg8(r Register, v byte) {
	switch r {
	case RegA:
		c.A = v
	case RegB:
		c.B = v
	case RegC:
		c.C = v
	case RegD:
		c.D = v
	}
}

// Reg16 reads a 16-bit register by index; A..D have no 16-bit view and
// read back 0.
func (c *CPU) Reg16(r Register) uint16 {
	switch r {
	case RegX:
		return c.X
	case RegY:
		return c.Y
	case RegSP:
		return c.SP
	case RegPC:
		return c.PC
	default:
		return 0
	}
}

// SetReg16 writes a 16-bit register by index; A..D are no-ops.
func (c *CPU) SetReg16(r Register, v uint16) {
	switch r {
	case RegX:
		c.X = v
	case RegY:
		c.Y = v
	case RegSP:
		c.SP = v
	case RegPC:
		c.PC = v
	}
}

// push stores one byte at SP then decrements SP, per
// original_source's isa_push. Stack depth is bounded only by RAM below the
// initial SP — underflow/overflow silently wraps rather than trapping, as
// spec.md §4.3 calls out explicitly. Goes through writeMem, not Bus.Write
// directly, so a watchpoint on a stack cell fires during PHA/JSR/interrupt
// delivery same as any other write (spec.md §4.6).
func (c *CPU) push(v byte) {
	c.writeMem(c.SP, v)
	c.SP--
}

// pop increments SP then loads the byte there, mirroring isa_pop, through
// readMem for the same watchpoint coverage as push.
func (c *CPU) pop() byte {
	c.SP++
	return c.readMem(c.SP)
}

// push16 stores a 16-bit value high byte first then low byte, so a later
// pop16 (low then high) reconstructs it — spec.md §4.3's stack word rule,
// grounded on original_source's isa_push16/isa_pop16.
func (c *CPU) push16(v uint16) {
	c.push(byte(v >> 8))
	c.push(byte(v))
}

func (c *CPU) pop16() uint16 {
	low := c.pop()
	high := c.pop()
	return uint16(low) | uint16(high)<<8
}
