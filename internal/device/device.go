// Package device abstracts the compute device the daemon accounts against:
// either an accelerator reached through its owning runtime, or plain CPU
// with all-zero memory counters.
package device

import (
	"context"

	"github.com/rs/zerolog"

	"synthd/pkg/types"
)

// Accelerator is a live counter source for one accelerator. Implementations
// report real allocator state; they never estimate.
type Accelerator interface {
	// Kind names the device, e.g. "cuda".
	Kind() string
	// Probe checks the accelerator is reachable and usable.
	Probe(ctx context.Context) error
	// Memory reads the live counters.
	Memory(ctx context.Context) (types.DeviceInfo, error)
	// Synchronize blocks until outstanding device work has completed.
	Synchronize(ctx context.Context) error
	// ReleaseCached returns cached-but-unallocated memory to the device.
	ReleaseCached(ctx context.Context) error
}

// Context is the selected compute device. Selection happens once; the
// context never switches devices afterwards.
type Context struct {
	kind  string
	accel Accelerator
	log   zerolog.Logger
}

// Select decides the actual device for a preferred one. Accelerator
// preferences fall back to CPU with a warning when no usable accelerator is
// available; Select itself never fails.
func Select(ctx context.Context, preferred string, accel Accelerator, log zerolog.Logger) *Context {
	log = log.With().Str("component", "device").Logger()
	wantAccel := false
	switch preferred {
	case "", "auto":
		wantAccel = accel != nil
	case "accelerator", "cuda", "gpu":
		wantAccel = true
	case "cpu":
	default:
		log.Warn().Str("preferred", preferred).Msg("unknown device preference, using cpu")
	}
	if wantAccel {
		if accel == nil {
			log.Warn().Str("preferred", preferred).Msg("accelerator requested but none available, falling back to cpu")
		} else if err := accel.Probe(ctx); err != nil {
			log.Warn().Err(err).Str("preferred", preferred).Msg("accelerator unusable, falling back to cpu")
		} else if accel.Kind() == "cpu" {
			log.Warn().Str("preferred", preferred).Msg("accelerator runtime reports cpu execution, falling back to cpu")
		} else {
			log.Info().Str("device", accel.Kind()).Msg("device selected")
			return &Context{kind: accel.Kind(), accel: accel, log: log}
		}
	}
	log.Info().Str("device", "cpu").Msg("device selected")
	return &Context{kind: "cpu", log: log}
}

// Kind names the selected device.
func (c *Context) Kind() string { return c.kind }

// Accelerated reports whether an accelerator backs this context.
func (c *Context) Accelerated() bool { return c.accel != nil }

// Snapshot reads the live memory counters. CPU contexts report all zeros;
// an unreachable accelerator reports zeros rather than stale values.
func (c *Context) Snapshot(ctx context.Context) types.DeviceInfo {
	if c.accel == nil {
		return types.DeviceInfo{}
	}
	info, err := c.accel.Memory(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("memory snapshot failed")
		return types.DeviceInfo{}
	}
	return info
}

// Synchronize drains outstanding accelerator work. A no-op on CPU.
func (c *Context) Synchronize(ctx context.Context) error {
	if c.accel == nil {
		return nil
	}
	return c.accel.Synchronize(ctx)
}

// ReleaseCached returns cached accelerator memory to the device. A no-op on
// CPU.
func (c *Context) ReleaseCached(ctx context.Context) {
	if c.accel == nil {
		return
	}
	if err := c.accel.ReleaseCached(ctx); err != nil {
		c.log.Warn().Err(err).Msg("release cached memory failed")
	}
}
