// Package orchestrator coordinates the model lifecycle: loading models onto
// the selected device, running generation calls with timing and memory-delta
// accounting, and releasing handles. It is structured into small files by
// concern:
//
//   - orchestrator.go: core Orchestrator type, constructor, Initialize,
//     per-identifier locking, Shutdown.
//   - config.go: Config and package defaults.
//   - errors.go: the failure taxonomy (typed errors, Is* helpers, Kind).
//   - load.go: Load, the documented handle-overwrite policy, serialized
//     construction.
//   - generate.go: Generate and result accounting.
//   - unload.go: Unload.
//   - status.go: MemoryInfo, Capabilities, Models, Status reporting.
//   - events.go: lifecycle event publishing.
//   - metrics.go: Prometheus counters and gauges.
//
// Concurrency model: operations on the same model identifier are exclusive.
// Loads additionally serialize among themselves; generation calls on
// different identifiers run concurrently.
//
// External packages should treat this package as the coordination layer and
// use public methods only (New, Initialize, Load, Generate, Unload,
// MemoryInfo, Capabilities, Models, Status, Shutdown).
package orchestrator
