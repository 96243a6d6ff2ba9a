package orchestrator

import (
	"context"
	"strings"

	"synthd/internal/catalog"
	"synthd/internal/registry"
	"synthd/internal/runtime"
	"synthd/pkg/types"
)

// Load constructs an execution object for req and registers it under
// req.ModelID. It returns optimization diagnostics alongside the outcome;
// on failure the registry is unchanged.
//
// Overwrite policy: loading onto an identifier that already holds a model
// first releases the existing handle. The replacement is reported through a
// diagnostic and an implicit_unload event.
func (o *Orchestrator) Load(ctx context.Context, req types.LoadRequest) ([]string, error) {
	if !o.Ready() {
		return nil, ErrNotInitialized()
	}
	if strings.TrimSpace(req.ModelID) == "" {
		return nil, ErrBadRequest("model_id is required")
	}
	if strings.TrimSpace(req.Source) == "" {
		return nil, ErrBadRequest("source is required")
	}
	capability, err := types.ParseCapability(req.Capability)
	if err != nil {
		return nil, ErrBadRequest(err.Error())
	}
	prec, err := types.ParsePrecision(req.Precision)
	if err != nil {
		return nil, ErrBadRequest(err.Error())
	}

	rt, ok := o.cfg.Runtimes.Lookup(capability)
	if !ok {
		return nil, ErrCapabilityUnavailable(capability)
	}

	unlock := o.lockID(req.ModelID)
	defer unlock()

	var diags []string
	if prior, exists := o.reg.Lookup(req.ModelID); exists {
		o.log.Warn().
			Str("model_id", req.ModelID).
			Str("prior_source", prior.Source).
			Msg("identifier already loaded, releasing existing handle")
		o.cfg.Publisher.Publish(Event{Name: "implicit_unload", ModelID: req.ModelID, Fields: map[string]any{"source": prior.Source}})
		if _, rerr := o.reg.Remove(req.ModelID); rerr != nil {
			o.log.Warn().Err(rerr).Str("model_id", req.ModelID).Msg("release of replaced handle failed")
		}
		loadedModels.Set(float64(o.reg.Len()))
		diags = append(diags, "replaced existing model under this identifier")
	}

	source := catalog.Resolve(o.cfg.Catalog, req.Source)
	o.cfg.Publisher.Publish(Event{Name: "load_start", ModelID: req.ModelID, Fields: map[string]any{"source": source, "capability": string(capability)}})

	lctx, cancel := context.WithTimeout(ctx, o.cfg.LoadTimeout)
	defer cancel()

	o.loadMu.Lock()
	exec, rdiags, err := rt.Load(lctx, runtime.LoadSpec{
		Source:           source,
		ModelID:          req.ModelID,
		Capability:       capability,
		Precision:        prec,
		AttentionSlicing: req.AttentionSlicing,
		CPUOffload:       req.CPUOffload,
	})
	o.loadMu.Unlock()
	diags = append(diags, rdiags...)

	if err != nil {
		loadsTotal.WithLabelValues(string(capability), "error").Inc()
		o.cfg.Publisher.Publish(Event{Name: "load_failed", ModelID: req.ModelID, Fields: map[string]any{"error": err.Error()}})
		return diags, ErrLoadFailed(req.ModelID, err)
	}

	h := registry.NewHandle(req.ModelID, capability, prec, source, exec)
	if displaced := o.reg.Insert(h); displaced != nil {
		if rerr := displaced.Release(); rerr != nil {
			o.log.Warn().Err(rerr).Str("model_id", req.ModelID).Msg("release of displaced handle failed")
		}
	}
	loadedModels.Set(float64(o.reg.Len()))
	loadsTotal.WithLabelValues(string(capability), "ok").Inc()
	o.cfg.Publisher.Publish(Event{Name: "load_done", ModelID: req.ModelID, Fields: map[string]any{"capability": string(capability), "precision": string(prec)}})
	o.log.Info().
		Str("model_id", req.ModelID).
		Str("capability", string(capability)).
		Str("precision", string(prec)).
		Str("source", source).
		Msg("model loaded")
	return diags, nil
}
