package machine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 5: serial output, three characters written through TX land on
// the sink in order with no buffering surprises.
func TestSerialOutputOrder(t *testing.T) {
	cpu := NewCPU()
	var sink bytes.Buffer
	cpu.Bus.Serial.SetOutput(&sink)

	program := []byte{
		0x00, 'H', 0x02, 0x00, 0x80, // LDI #'H'; STA [0x8000]
		0x00, 'i', 0x02, 0x00, 0x80, // LDI #'i'; STA [0x8000]
		0x00, '\n', 0x02, 0x00, 0x80, // LDI #'\n'; STA [0x8000]
		0x73, // HLT
	}
	require.NoError(t, cpu.Bus.Load(program, 0x0200))
	cpu.ResetTo(0x0200)
	require.NoError(t, cpu.Run(1000))

	assert.Equal(t, "Hi\n", sink.String())
}

func TestSerialStatusBits(t *testing.T) {
	s := NewSerial()
	assert.EqualValues(t, 0x01|0x04, s.status(), "fresh UART is TX-ready and TX-empty, RX idle")

	s.Receive('x')
	assert.EqualValues(t, 0x01|0x02|0x04, s.status())
	assert.EqualValues(t, 'x', s.Read(uartRXAddr))
	assert.False(t, s.rxReady, "reading RX clears rx-ready")
}

func TestParallelWriteSetsFullPort(t *testing.T) {
	p := NewParallel()
	p.Write(gpioPortAddr, 0xA5)
	assert.EqualValues(t, 0xA5, p.Read(gpioPortAddr))
}

// Scenario 6: timer IRQ drives a handler that writes to the parallel port
// and returns.
func TestTimerIRQDrivesHandler(t *testing.T) {
	cpu := NewCPU()

	// IRQ vector -> handler at 0x0300.
	require.NoError(t, cpu.Bus.Load([]byte{0x00, 0x03}, IRQVector))

	handler := []byte{
		0x00, 0x42, // LDI #0x42
		0x02, 0x03, 0x80, // STA [0x8003] (GPIO port)
		0x00, 0x01, // LDI #1
		0x02, 0x09, 0x80, // STA [0x8009] (ack timer IRQ)
		0x63, // PLP (delivery pushed the flags on top of the return PC)
		0x42, // RTS
	}
	require.NoError(t, cpu.Bus.Load(handler, 0x0300))

	main := []byte{
		0x71,       // CLI so the pending IRQ can be taken
		0x00, 0x02, // LDI #2 (latch low)
		0x02, 0x04, 0x80, // STA [0x8004] latch low
		0x00, 0x00, // LDI #0 (latch high)
		0x02, 0x05, 0x80, // STA [0x8005] latch high
		0x00, 0x02, // LDI #2 (count low, so it doesn't wait for a reload cycle)
		0x02, 0x07, 0x80, // STA [0x8007]
		0x00, 0x00, // LDI #0 (count high)
		0x02, 0x08, 0x80, // STA [0x8008]
		0x00, 0x06, // LDI #(run|irq-enable) = 0x04|0x02
		0x02, 0x06, 0x80, // STA [0x8006] control
		0x72, // NOP (spin while the timer counts down)
		0x72, // NOP
		0x72, // NOP
		0x72, // NOP
		0x72, // NOP
		0x72, // NOP
		0x73, // HLT
	}
	require.NoError(t, cpu.Bus.Load(main, 0x0200))
	cpu.ResetTo(0x0200)

	// Run drives the whole scenario end to end: no test-side polling of
	// Timer.IRQPending, since Run itself observes the line after each
	// Bus.Tick and latches it onto IRQPending.
	require.NoError(t, cpu.Run(200))

	assert.EqualValues(t, 0x42, cpu.Bus.Parallel.Read(gpioPortAddr))
	assert.False(t, cpu.Bus.Timer.IRQPending(), "handler must have acknowledged the IRQ")
	assert.False(t, cpu.Running, "HLT must have stopped the machine")
}
