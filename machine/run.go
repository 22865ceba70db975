package machine

import "time"

// Run sets Running and repeatedly steps until either Running clears (HLT,
// breakpoint, or invalid opcode) or the cycle delta since entry reaches
// maxCycles, per spec.md §4.2. An optional throttle sleeps between
// instructions to approximate FrequencyHz; throttling is skipped when
// FrequencyHz is 0, mirroring original_source's cpu_run/cpu_throttle.
func (c *CPU) Run(maxCycles uint64) error {
	c.Running = true
	start := c.CycleCount
	c.lastTick = time.Time{}

	for c.Running && c.CycleCount-start < maxCycles {
		result, err := c.Step()
		if err != nil {
			return err
		}
		if !result.Executed {
			// An interrupt was delivered this call but no instruction ran;
			// loop straight back into Step to fetch the handler.
			continue
		}
		c.Bus.Tick()
		c.pollTimerIRQ()
		c.throttle()
		if result.Stopped {
			break
		}
	}
	return nil
}

// pollTimerIRQ observes the timer's IRQ line after a bus tick and latches
// it onto IRQPending, per spec.md §2/§5: peripherals raise interrupts by a
// line the core must poll between instructions, not by calling back into
// the CPU directly.
func (c *CPU) pollTimerIRQ() {
	if c.Bus.Timer.IRQPending() {
		c.IRQPending = true
	}
}

// throttle sleeps just enough to keep wall-clock pace with FrequencyHz. A
// frequency of 0 disables throttling entirely.
func (c *CPU) throttle() {
	if c.FrequencyHz == 0 {
		return
	}
	if c.lastTick.IsZero() {
		c.lastTick = time.Now()
		return
	}
	expected := time.Second / time.Duration(c.FrequencyHz)
	elapsed := time.Since(c.lastTick)
	if elapsed < expected {
		time.Sleep(expected - elapsed)
	}
	c.lastTick = time.Now()
}
