package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"synthd/pkg/types"
)

// Generate runs one generation call. Failures are reported inside the
// result rather than as an error; timing and memory-delta fields are
// populated only when the execution call actually ran.
func (o *Orchestrator) Generate(ctx context.Context, cfg types.InferenceConfig) types.InferenceResult {
	if !o.Ready() {
		return o.reject("unknown", ErrNotInitialized())
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		return o.reject("unknown", ErrBadRequest("model_id is required"))
	}

	unlock := o.lockID(cfg.ModelID)
	defer unlock()

	h, ok := o.reg.Lookup(cfg.ModelID)
	if !ok {
		return o.reject("unknown", ErrModelNotFound(cfg.ModelID))
	}
	capability := string(h.Capability)

	dev := o.device()
	if err := dev.Synchronize(ctx); err != nil {
		o.log.Warn().Err(err).Msg("pre-generation synchronize failed")
	}
	before := dev.Snapshot(ctx)

	o.cfg.Publisher.Publish(Event{Name: "generate_start", ModelID: cfg.ModelID, Fields: map[string]any{"capability": capability}})

	gctx, cancel := context.WithTimeout(ctx, o.cfg.GenerateTimeout)
	defer cancel()

	start := time.Now()
	out, err := h.Executor().Execute(gctx, cfg)
	elapsed := time.Since(start)

	if err != nil {
		ferr := o.classifyExecuteError(gctx, cfg.ModelID, err)
		generationsTotal.WithLabelValues(capability, "error").Inc()
		o.cfg.Publisher.Publish(Event{Name: "generate_failed", ModelID: cfg.ModelID, Fields: map[string]any{"error": ferr.Error()}})
		o.log.Warn().Err(ferr).Str("model_id", cfg.ModelID).Dur("elapsed", elapsed).Msg("generation failed")
		return failResult(ferr)
	}

	if serr := dev.Synchronize(ctx); serr != nil {
		o.log.Warn().Err(serr).Msg("post-generation synchronize failed")
	}
	after := dev.Snapshot(ctx)
	delta := after.Allocated - before.Allocated
	ms := float64(elapsed) / float64(time.Millisecond)

	generationsTotal.WithLabelValues(capability, "ok").Inc()
	generationDuration.WithLabelValues(capability).Observe(elapsed.Seconds())
	o.cfg.Publisher.Publish(Event{Name: "generate_done", ModelID: cfg.ModelID, Fields: map[string]any{"elapsed_ms": ms, "memory_delta_bytes": delta}})
	o.log.Info().
		Str("model_id", cfg.ModelID).
		Float64("elapsed_ms", ms).
		Int64("memory_delta_bytes", delta).
		Msg("generation complete")

	return types.InferenceResult{
		Success:          true,
		TextOutput:       out.Text,
		Image:            out.Image,
		InferenceTimeMS:  &ms,
		MemoryDeltaBytes: &delta,
	}
}

// classifyExecuteError maps an executor fault to the taxonomy. Deadline and
// caller cancellation share the timeout kind.
func (o *Orchestrator) classifyExecuteError(gctx context.Context, id string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || gctx.Err() != nil {
		return ErrExecutionTimeout(id, o.cfg.GenerateTimeout)
	}
	return ErrExecutionFailed(id, err)
}

// reject counts and shapes a failure that never reached the executor.
func (o *Orchestrator) reject(capability string, err error) types.InferenceResult {
	generationsTotal.WithLabelValues(capability, "rejected").Inc()
	return failResult(err)
}

// failResult shapes a failure into a result carrying no timing or memory
// fields.
func failResult(err error) types.InferenceResult {
	return types.InferenceResult{
		Success:      false,
		ErrorMessage: err.Error(),
		ErrorKind:    Kind(err),
	}
}
