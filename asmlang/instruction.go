package asmlang

import "github.com/alexleitanthem/simcpu/machine"

// parseInstruction reads a mnemonic and its operand(s), emitting the
// opcode byte followed by whatever operand bytes the addressing mode
// calls for. Operand syntax is keyed off the catalog's addressing mode
// with three named exceptions (LDA/STA's shared bracketed-absolute form,
// JMP/JSR's bracket-less absolute form, and branches' displacement
// arithmetic) exactly as spec.md §4.7 "Operand encoding" describes them;
// original_source/src/assembler.c hardcodes the same three exceptions by
// name (it only ever special-cases LDI/LDA/STA/MOV/JMP/JSR/branches and
// silently emits zero operand bytes for everything else, since its ISA
// implementation never grew past those mnemonics).
func (a *Assembler) parseInstruction(c *lineCursor) {
	name := c.readIdent()
	if name == "" {
		a.errorf("expected instruction")
		return
	}

	op, info, ok := machine.OpcodeByMnemonic(name)
	if !ok {
		a.errorf("unknown instruction: %s", name)
		return
	}
	a.emitByte(byte(op))

	c.skipSpace()

	switch name {
	case "LDA", "STA":
		a.parseLoadStoreOperand(c, name)
	case "JMP", "JSR":
		addr := a.evalExpression(c)
		a.emitWord(addr)
	case "BEQ", "BNE", "BCS", "BCC", "BMI", "BPL", "BVS", "BVC":
		a.parseBranchOperand(c)
	default:
		switch info.Mode {
		case AddrImmediate:
			// The '#' marks the operand as immediate; the full expression
			// grammar follows it (e.g. `#(1+2)`, `#label`).
			if c.peek() == '#' {
				c.advance()
			}
			v := a.evalExpression(c)
			a.emitByte(byte(v))
		case AddrRegister:
			a.parseRegisterOperand(c)
		case AddrImplied:
			// no operand bytes
		default:
			a.errorf("%s: unsupported addressing mode %s", name, info.Mode)
		}
	}
}

const (
	AddrImmediate = machine.AddrImmediate
	AddrRegister  = machine.AddrRegister
	AddrImplied   = machine.AddrImplied
)

// parseLoadStoreOperand implements LDA and STA's shared absolute-bracketed
// form. Neither carries an immediate addressing mode: machine.Catalog lists
// exactly one entry for OpLDA (AddrAbsolute, two operand bytes), so a `#`
// operand here would encode the wrong byte count.
func (a *Assembler) parseLoadStoreOperand(c *lineCursor, mnemonic string) {
	switch c.peek() {
	case '#':
		a.errorf("%s does not take an immediate operand", mnemonic)

	case '[':
		c.advance()
		addr := a.evalExpression(c)
		if c.peek() == ']' {
			c.advance()
		} else {
			a.errorf("expected ']'")
		}
		a.emitWord(addr)

	default:
		a.errorf("%s: invalid addressing mode, expected '['", mnemonic)
	}
}

// parseRegisterOperand reads a register mnemonic (A, B, C, D, X, Y, SP,
// PC) and emits its index byte, used by MOV/INC/DEC/SHL/SHR/ROL/ROR/
// PUSH/POP.
func (a *Assembler) parseRegisterOperand(c *lineCursor) {
	c.skipSpace()
	name := c.readIdent()
	reg, ok := machine.RegisterByName(name)
	if !ok {
		a.errorf("unknown register: %s", name)
		return
	}
	a.emitByte(byte(reg))
}

// parseBranchOperand evaluates an absolute target expression and converts
// it to a signed 8-bit displacement from the address of the *next*
// instruction, erroring if the result falls outside [-128, 127], per
// spec.md §4.7 and original_source's identical
// `offset = address - (current_address + 1)` computation (current_address
// at that point in original already points past the just-emitted opcode
// byte, i.e. the operand byte's address — adding 1 lands on the next
// instruction, matching this assembler's currentAddress bookkeeping).
func (a *Assembler) parseBranchOperand(c *lineCursor) {
	target := a.evalExpression(c)
	displacement := int32(target) - int32(a.currentAddress+1)
	if displacement < -128 || displacement > 127 {
		a.errorf("branch offset out of range: %d", displacement)
		// Still occupy the operand byte: in pass 1 an unresolved forward
		// target evaluates to 0 and can land here, and later labels must
		// get the same addresses in both passes.
		a.emitByte(0)
		return
	}
	a.emitByte(byte(int8(displacement)))
}
