package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusRAMRoundtrip(t *testing.T) {
	b := NewBus()
	b.Write(0x1234, 0x77)
	assert.EqualValues(t, 0x77, b.Read(0x1234))
}

func TestBusVectorRegionIsDirectMemory(t *testing.T) {
	b := NewBus()
	b.Write16(ResetVector, 0xBEEF)
	assert.EqualValues(t, 0xBEEF, b.Read16(ResetVector))
}

func TestNewBusInstallsSentinelResetVector(t *testing.T) {
	b := NewBus()
	assert.EqualValues(t, 0x0200, b.Read16(ResetVector))
}

func TestClearReinstallsSentinelResetVector(t *testing.T) {
	b := NewBus()
	b.Write16(ResetVector, 0xBEEF)
	b.Clear()
	assert.EqualValues(t, 0x0200, b.Read16(ResetVector))
}

func TestBusNonPeripheralMMIOReadsZeroAndIgnoresWrites(t *testing.T) {
	b := NewBus()
	const unmapped = 0x800A // inside the MMIO window but past the timer's registers
	b.Write(unmapped, 0x5A)
	assert.Zero(t, b.Read(unmapped))
}

func TestBusLoadRejectsOverflow(t *testing.T) {
	b := NewBus()
	err := b.Load(make([]byte, 2), 0xFFFF)
	require.ErrorIs(t, err, ErrLoadOverflow)
}

func TestBusLoadAtExactBoundaryFits(t *testing.T) {
	b := NewBus()
	require.NoError(t, b.Load([]byte{0xAA}, 0xFFFF))
	assert.EqualValues(t, 0xAA, b.Read(0xFFFF))
}

func TestBus16BitAccessIsLittleEndianAndPerByte(t *testing.T) {
	b := NewBus()
	b.Write16(0x2000, 0x1234)
	assert.EqualValues(t, 0x34, b.Read(0x2000))
	assert.EqualValues(t, 0x12, b.Read(0x2001))
}
