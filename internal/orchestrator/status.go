package orchestrator

import (
	"context"
	"time"

	"synthd/pkg/types"
)

// MemoryInfo synchronizes the device and snapshots its memory counters.
// Before Initialize, and on CPU-only hosts, every field is zero.
func (o *Orchestrator) MemoryInfo(ctx context.Context) types.DeviceInfo {
	dev := o.device()
	if dev == nil {
		return types.DeviceInfo{}
	}
	if err := dev.Synchronize(ctx); err != nil {
		o.log.Warn().Err(err).Msg("synchronize before memory snapshot failed")
	}
	return dev.Snapshot(ctx)
}

// Capabilities lists the capability names loadable right now.
func (o *Orchestrator) Capabilities() []string {
	caps := o.cfg.Runtimes.Capabilities()
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}

// Models merges the startup catalog with the live registry.
func (o *Orchestrator) Models() []types.ModelSummary {
	loadedBySource := make(map[string]string)
	loadedByID := make(map[string]bool)
	for _, lm := range o.reg.Snapshot() {
		loadedBySource[lm.Source] = lm.ID
		loadedByID[lm.ID] = true
	}

	out := make([]types.ModelSummary, 0, len(o.cfg.Catalog))
	for _, cm := range o.cfg.Catalog {
		row := types.ModelSummary{CatalogModel: cm}
		if loadedByID[cm.ID] {
			row.Loaded = true
			row.LoadedAs = cm.ID
		} else if id, ok := loadedBySource[cm.Path]; ok {
			row.Loaded = true
			row.LoadedAs = id
		}
		out = append(out, row)
	}
	return out
}

// Status builds the detailed status response for /status.
func (o *Orchestrator) Status() types.StatusResponse {
	state := "ready"
	deviceKind := ""
	if dev := o.device(); dev != nil {
		deviceKind = dev.Kind()
	} else {
		state = "initializing"
	}
	models := o.reg.Snapshot()
	return types.StatusResponse{
		State:          state,
		Device:         deviceKind,
		Models:         models,
		ModelCount:     len(models),
		UptimeSeconds:  types.UptimeSeconds(o.startTime),
		ServerTimeUnix: time.Now().Unix(),
	}
}
