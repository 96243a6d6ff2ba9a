package orchestrator

import (
	"context"
	"strings"
)

// Unload removes the handle under id and releases its resources, then asks
// the device to return cached memory. A false result means nothing was
// loaded under id; unloading an absent identifier is not an error.
func (o *Orchestrator) Unload(ctx context.Context, id string) (bool, error) {
	if !o.Ready() {
		return false, ErrNotInitialized()
	}
	if strings.TrimSpace(id) == "" {
		return false, ErrBadRequest("model_id is required")
	}

	unlock := o.lockID(id)
	defer unlock()

	removed, err := o.reg.Remove(id)
	if err != nil {
		// The handle is gone from the registry either way; backend release
		// faults are reported through logs and events, not the caller.
		o.log.Warn().Err(err).Str("model_id", id).Msg("handle release failed")
		o.cfg.Publisher.Publish(Event{Name: "unload_release_error", ModelID: id, Fields: map[string]any{"error": err.Error()}})
	}
	if !removed {
		o.log.Debug().Str("model_id", id).Msg("unload for identifier with no handle")
		return false, nil
	}

	loadedModels.Set(float64(o.reg.Len()))
	o.device().ReleaseCached(ctx)
	o.cfg.Publisher.Publish(Event{Name: "unload_done", ModelID: id})
	o.log.Info().Str("model_id", id).Msg("model unloaded")
	return true, nil
}
