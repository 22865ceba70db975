package machine

import "github.com/pkg/errors"

// Sentinel errors the CPU and bus report. Callers compare against these
// with errors.Is; pkg/errors.New attaches a stack trace at the call site
// when these are wrapped further up (see asmlang and cmd/simcpu), the way
// KTStephano-GVM's vm.go declares its own package-level sentinel errors.
var (
	ErrInvalidOpcode = errors.New("invalid opcode")
	ErrLoadOverflow  = errors.New("program load overruns memory")
	ErrBreakpointHit = errors.New("breakpoint hit")
)
