// Package config loads the emulator's session defaults — the knobs that
// are never part of machine architectural state (registers, memory,
// flags) but that a CLI front end needs before it can build one: where a
// program image loads, what frequency to throttle to, whether to arm a
// breakpoint or watchpoint or start tracing immediately. Grounded on the
// TOML-manifest pattern `other_examples/manifests/lookbusy1344-arm_emulator`
// shows for emulator configuration.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Machine holds the non-architectural session defaults original_source's
// cpu_state_t exposed as individual setters (cpu_set_breakpoint,
// cpu_set_watchpoint, cpu_enable_trace, cpu_set_frequency) and monitor.c's
// command-line parsing set up before the run loop started.
type Machine struct {
	LoadAddress  uint16  `toml:"load_address"`
	ResetVector  *uint16 `toml:"reset_vector"`
	FrequencyHz  uint32  `toml:"frequency_hz"`
	Breakpoint   *uint16 `toml:"breakpoint"`
	Watchpoint   *uint16 `toml:"watchpoint"`
	TraceOnStart bool    `toml:"trace_on_start"`
}

// Default returns the built-in session defaults: load at 0x0200 (leaving
// zero page and the usual reset-vector area free in small test programs),
// the machine's own DefaultFrequencyHz, no breakpoint/watchpoint armed,
// tracing off.
func Default() Machine {
	return Machine{
		LoadAddress: 0x0200,
		FrequencyHz: 1_000_000,
	}
}

// Load reads a TOML config file and overlays it onto Default(); fields
// absent from the file keep their default value. An empty path is not an
// error — it simply returns the defaults, mirroring the CLI's "--config
// is optional" contract (SPEC_FULL.md §6).
func Load(path string) (Machine, error) {
	m := Default()
	if path == "" {
		return m, nil
	}
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return Machine{}, errors.Wrapf(err, "loading config %s", path)
	}
	return m, nil
}
