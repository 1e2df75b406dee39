package adapter

import (
	"context"
	"os/exec"

	"golang.org/x/time/rate"
)

// Throttle limits how fast adapter subprocesses are started, using a
// token bucket, so a large rebuild fan-out doesn't spawn compiler
// processes in an unbounded burst. It does not count processes that
// are still running. Grounded on the teacher's
// analysis/resolution_service.go rate limiter, retargeted from
// outbound HTTP calls to subprocess spawns.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle returns a throttle allowing burst spawns to start at once
// and refilling at the given rate per second.
func NewThrottle(perSecond float64, burst int) *Throttle {
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Run waits for a throttle slot, then runs cmd to completion, returning
// its combined stdout/stderr regardless of exit status.
func (t *Throttle) Run(ctx context.Context, cmd *exec.Cmd) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return cmd.CombinedOutput()
}
