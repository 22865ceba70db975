package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogLookup(t *testing.T) {
	info, ok := Lookup(OpADD)
	assert.True(t, ok)
	assert.Equal(t, "ADD", info.Mnemonic)
	assert.Equal(t, AddrImmediate, info.Mode)
	assert.Equal(t, 1, info.Mode.OperandBytes())
}

func TestInvalidOpcodeNotInCatalog(t *testing.T) {
	assert.False(t, IsValid(0x0F))
	assert.False(t, IsValid(0xFF))
}

func TestRegisterByName(t *testing.T) {
	r, ok := RegisterByName("X")
	assert.True(t, ok)
	assert.Equal(t, RegX, r)

	_, ok = RegisterByName("ZZ")
	assert.False(t, ok)
}

func TestDisassembleImmediate(t *testing.T) {
	info, _ := Lookup(OpLDI)
	assert.Equal(t, "LDI #0x2A", info.Disassemble(0x2A, 0))
}

func TestDisassembleAbsolute(t *testing.T) {
	info, _ := Lookup(OpLDA)
	assert.Equal(t, "LDA [0x1000]", info.Disassemble(0x00, 0x10))
}
