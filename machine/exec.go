package machine

import "github.com/pkg/errors"

// fetchByte reads the byte at PC and advances PC by one.
func (c *CPU) fetchByte() byte {
	v := c.Bus.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetchWord() (byte, byte) {
	return c.fetchByte(), c.fetchByte()
}

// readMem and writeMem are the data-access paths an executing instruction
// uses (as opposed to opcode/operand fetch): they arm the watchpoint per
// spec.md §4.6.
func (c *CPU) readMem(addr uint16) byte {
	c.watchCheck(addr)
	return c.Bus.Read(addr)
}

func (c *CPU) writeMem(addr uint16, v byte) {
	c.watchCheck(addr)
	c.Bus.Write(addr, v)
}

// effectiveAddress resolves a memory-forming addressing mode to a 16-bit
// address, per spec.md §4.1 and original_source's isa_get_address. By the
// time this runs, c.PC already points past the instruction's operand
// bytes, which is what AddrRelative needs ("PC after the operand has been
// fetched").
func (c *CPU) effectiveAddress(mode AddrMode, operand1, operand2 byte) uint16 {
	switch mode {
	case AddrAbsolute:
		return uint16(operand1) | uint16(operand2)<<8
	case AddrXIndexed:
		return (uint16(operand1) | uint16(operand2)<<8) + c.X
	case AddrYIndexed:
		return (uint16(operand1) | uint16(operand2)<<8) + c.Y
	case AddrSPIndexed:
		return c.SP + uint16(int8(operand1))
	case AddrRelative:
		return c.PC + uint16(int8(operand1))
	default:
		return 0
	}
}

// StepResult reports what happened during one call to Step.
type StepResult struct {
	Executed bool // an instruction actually ran
	Stopped  bool // Running went false as a result (HLT, breakpoint, invalid opcode)
}

// Step performs one instruction, following the exact order spec.md §4.2
// lays out: breakpoint check, interrupt delivery, fetch, decode, execute,
// cycle accounting, trace. It runs regardless of c.Running so a debugger
// can single-step a halted machine, mirroring original_source's comment on
// cpu_step ("Allow single-step even when the CPU is not in running mode").
func (c *CPU) Step() (StepResult, error) {
	// 1. Breakpoint check — fires before interrupt delivery.
	if c.HasBreak && c.PC == c.Breakpoint {
		c.BreakHit = true
		c.Running = false
		return StepResult{Stopped: true}, ErrBreakpointHit
	}

	// 2. Interrupt delivery. NMI strictly preempts IRQ. Delivery does not
	// itself execute an instruction — per spec.md §4.2, this step returns
	// once PC is loaded from the vector, and fetch/execute of the handler's
	// first instruction happens on the *next* call to Step.
	if c.NMIPending {
		c.NMIPending = false
		c.push16(c.PC)
		c.push(byte(c.F))
		c.F.set(FlagInterrupt, true)
		c.PC = c.Bus.Read16(NMIVector)
		return StepResult{}, nil
	}
	if c.IRQPending && !c.F.has(FlagInterrupt) {
		c.IRQPending = false
		c.push16(c.PC)
		c.push(byte(c.F))
		c.F.set(FlagInterrupt, true)
		c.PC = c.Bus.Read16(IRQVector)
		return StepResult{}, nil
	}

	pcAtFetch := c.PC

	// 3. Fetch opcode.
	opcodeByte := c.fetchByte()
	info, ok := Lookup(Opcode(opcodeByte))
	if !ok {
		c.Running = false
		return StepResult{Stopped: true}, errors.Wrapf(ErrInvalidOpcode, "0x%02X at PC=0x%04X", opcodeByte, pcAtFetch)
	}

	// 4. Fetch operand bytes per addressing mode.
	var operand1, operand2 byte
	switch info.Mode.OperandBytes() {
	case 1:
		operand1 = c.fetchByte()
	case 2:
		operand1, operand2 = c.fetchWord()
	}

	// 5. Execute.
	stopped := c.execute(Opcode(opcodeByte), info, operand1, operand2)

	// 6. Cycle accounting.
	c.CycleCount += uint64(info.Cycles)
	c.InstrCount++

	// 7. Trace.
	if c.TraceEnabled {
		c.emitTrace(pcAtFetch, info.Disassemble(operand1, operand2))
	}

	return StepResult{Executed: true, Stopped: stopped}, nil
}

// execute runs the decoded instruction's semantics (spec.md §4.3) and
// reports whether it cleared Running.
func (c *CPU) execute(op Opcode, info Info, operand1, operand2 byte) bool {
	switch op {
	case OpLDI:
		c.A = operand1

	case OpLDA:
		addr := c.effectiveAddress(info.Mode, operand1, operand2)
		c.A = c.readMem(addr)

	case OpSTA:
		addr := c.effectiveAddress(info.Mode, operand1, operand2)
		c.writeMem(addr, c.A)

	case OpMOV:
		c.A = c.Reg8(Register(operand1))

	case OpADD:
		sum, carry, overflow := addCarryOverflow(c.A, operand1, false)
		c.A = sum
		c.F.updateArith(sum, carry, overflow)

	case OpSUB:
		diff, borrow, overflow := subBorrowOverflow(c.A, operand1, false)
		c.A = diff
		c.F.updateArith(diff, borrow, overflow)

	case OpADC:
		sum, carry, overflow := addCarryOverflow(c.A, operand1, c.F.has(FlagCarry))
		c.A = sum
		c.F.updateArith(sum, carry, overflow)

	case OpSBC:
		diff, borrow, overflow := subBorrowOverflow(c.A, operand1, c.F.has(FlagCarry))
		c.A = diff
		c.F.updateArith(diff, borrow, overflow)

	case OpCMP:
		diff, borrow, overflow := subBorrowOverflow(c.A, operand1, false)
		c.F.updateArith(diff, borrow, overflow)

	case OpINC:
		reg := Register(operand1)
		v := c.Reg8(reg) + 1
		c.SetReg8(reg, v)
		c.F.updateZN(v)

	case OpDEC:
		reg := Register(operand1)
		v := c.Reg8(reg) - 1
		c.SetReg8(reg, v)
		c.F.updateZN(v)

	case OpAND:
		c.A &= operand1
		c.F.updateZN(c.A)

	case OpOR:
		c.A |= operand1
		c.F.updateZN(c.A)

	case OpXOR:
		c.A ^= operand1
		c.F.updateZN(c.A)

	case OpSHL:
		reg := Register(operand1)
		v := c.Reg8(reg)
		carry := v&0x80 != 0
		v <<= 1
		c.SetReg8(reg, v)
		c.F.updateZN(v)
		c.F.set(FlagCarry, carry)

	case OpSHR:
		reg := Register(operand1)
		v := c.Reg8(reg)
		carry := v&0x01 != 0
		v >>= 1
		c.SetReg8(reg, v)
		c.F.updateZN(v)
		c.F.set(FlagCarry, carry)

	case OpROL:
		reg := Register(operand1)
		v := c.Reg8(reg)
		carryIn := byte(0)
		if c.F.has(FlagCarry) {
			carryIn = 1
		}
		carryOut := v&0x80 != 0
		v = v<<1 | carryIn
		c.SetReg8(reg, v)
		c.F.updateZN(v)
		c.F.set(FlagCarry, carryOut)

	case OpROR:
		reg := Register(operand1)
		v := c.Reg8(reg)
		carryIn := byte(0)
		if c.F.has(FlagCarry) {
			carryIn = 0x80
		}
		carryOut := v&0x01 != 0
		v = v>>1 | carryIn
		c.SetReg8(reg, v)
		c.F.updateZN(v)
		c.F.set(FlagCarry, carryOut)

	case OpJMP:
		c.PC = c.effectiveAddress(info.Mode, operand1, operand2)

	case OpJSR:
		target := c.effectiveAddress(info.Mode, operand1, operand2)
		c.push16(c.PC)
		c.PC = target

	case OpRTS:
		c.PC = c.pop16()

	case OpBEQ:
		c.branchIf(c.F.has(FlagZero), operand1)
	case OpBNE:
		c.branchIf(!c.F.has(FlagZero), operand1)
	case OpBCS:
		c.branchIf(c.F.has(FlagCarry), operand1)
	case OpBCC:
		c.branchIf(!c.F.has(FlagCarry), operand1)
	case OpBMI:
		c.branchIf(c.F.has(FlagNegative), operand1)
	case OpBPL:
		c.branchIf(!c.F.has(FlagNegative), operand1)
	case OpBVS:
		c.branchIf(c.F.has(FlagOverflow), operand1)
	case OpBVC:
		c.branchIf(!c.F.has(FlagOverflow), operand1)

	case OpPHA:
		c.push(c.A)
	case OpPLA:
		c.A = c.pop()
	case OpPHP:
		c.push(byte(c.F))
	case OpPLP:
		c.F = Flags(c.pop()) & flagsReservedMask
	case OpPUSH:
		c.push(c.Reg8(Register(operand1)))
	case OpPOP:
		c.SetReg8(Register(operand1), c.pop())

	case OpSEI:
		c.F.set(FlagInterrupt, true)
	case OpCLI:
		c.F.set(FlagInterrupt, false)
	case OpNOP:
		// no-op

	case OpHLT:
		c.Running = false
		return true
	}
	return false
}

// branchIf sets PC to the relative-mode target when cond holds, per
// spec.md §4.3's branch table.
func (c *CPU) branchIf(cond bool, displacement byte) {
	if cond {
		c.PC = c.effectiveAddress(AddrRelative, displacement, 0)
	}
}
