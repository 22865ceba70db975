package machine

import "github.com/pkg/errors"

// Address space layout, per spec.md §2/§4.4 and original_source/src/isa.h.
const (
	MemorySize  = 0x10000
	RAMStart    = 0x0000
	RAMEnd      = 0x7FFF
	MMIOStart   = 0x8000
	MMIOEnd     = 0xFEFF
	VectorStart = 0xFF00
	VectorEnd   = 0xFFFF
)

// Bus is the single chokepoint the CPU and loader use to read and write
// the 64 KiB address space, per spec.md §4.4: RAM and the vector region
// are direct memory cells, the MMIO window is dispatched to peripherals,
// and every 16-bit access is composed of two 8-bit accesses so device side
// effects happen per byte, not per word.
type Bus struct {
	mem [MemorySize]byte

	Serial   *Serial
	Parallel *Parallel
	Timer    *Timer
}

// NewBus builds a bus with zeroed memory and freshly initialised
// peripherals, then runs the same default-state setup as Clear.
func NewBus() *Bus {
	b := &Bus{}
	b.Clear()
	return b
}

// Clear zeroes memory, re-initialises every peripheral, and installs the
// sentinel reset vector (0x0200, little-endian, at ResetVector), used by a
// full CPU.Reset and by NewBus. Without this a freshly built or reset
// machine has no sane entry point until a loader writes its own vector —
// spec.md §3 and §6 both call out 0x0200 as the default.
func (b *Bus) Clear() {
	for i := range b.mem {
		b.mem[i] = 0
	}
	b.Serial = NewSerial()
	b.Parallel = NewParallel()
	b.Timer = NewTimer()
	b.Write16(ResetVector, 0x0200)
}

// Read dispatches a single byte read by address region.
func (b *Bus) Read(addr uint16) byte {
	if addr >= MMIOStart && addr <= MMIOEnd {
		return b.readMMIO(addr)
	}
	return b.mem[addr]
}

// Write dispatches a single byte write by address region.
func (b *Bus) Write(addr uint16, v byte) {
	if addr >= MMIOStart && addr <= MMIOEnd {
		b.writeMMIO(addr, v)
		return
	}
	b.mem[addr] = v
}

// Read16 composes two 8-bit reads, little-endian, low byte first.
func (b *Bus) Read16(addr uint16) uint16 {
	low := b.Read(addr)
	high := b.Read(addr + 1)
	return uint16(low) | uint16(high)<<8
}

// Write16 composes two 8-bit writes, little-endian, low byte first.
func (b *Bus) Write16(addr uint16, v uint16) {
	b.Write(addr, byte(v))
	b.Write(addr+1, byte(v>>8))
}

// Tick advances every peripheral by one clock tick.
func (b *Bus) Tick() {
	b.Timer.Tick()
}

// Load copies program bytes into memory starting at addr, failing if the
// image would run past the end of the address space — per
// original_source's cpu_load_program bounds check.
func (b *Bus) Load(program []byte, addr uint16) error {
	end := int(addr) + len(program)
	if end > MemorySize {
		return errors.Wrapf(ErrLoadOverflow, "load of %d bytes at 0x%04X", len(program), addr)
	}
	copy(b.mem[addr:end], program)
	return nil
}

// readMMIO dispatches a peripheral-window read to the owning device.
// Addresses inside the window that no peripheral claims read 0, per
// spec.md §4.5's "Reads and writes on a non-peripheral MMIO address read 0
// and ignore."
func (b *Bus) readMMIO(addr uint16) byte {
	switch addr {
	case uartTXAddr, uartRXAddr, uartStatusAddr:
		return b.Serial.Read(addr)
	case gpioPortAddr:
		return b.Parallel.Read(addr)
	case timerLatchAddr, timerLatchHAddr, timerCtrlAddr, timerCountAddr, timerCountHAddr, timerIRQAddr:
		return b.Timer.Read(addr)
	default:
		return 0
	}
}

func (b *Bus) writeMMIO(addr uint16, v byte) {
	switch addr {
	case uartTXAddr, uartRXAddr, uartStatusAddr:
		b.Serial.Write(addr, v)
	case gpioPortAddr:
		b.Parallel.Write(addr, v)
	case timerLatchAddr, timerLatchHAddr, timerCtrlAddr, timerCountAddr, timerCountHAddr, timerIRQAddr:
		b.Timer.Write(addr, v)
	}
}
