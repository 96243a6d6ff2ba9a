// Package runtime defines the execution backends models run on. A Runtime
// constructs Executors; an Executor is the live, loaded model. Which runtime
// serves which capability is decided once at startup through the Table.
package runtime

import (
	"context"

	"synthd/pkg/types"
)

// LoadSpec describes one model load. Source is already resolved (a local
// path or a reference the backend understands).
type LoadSpec struct {
	Source           string
	ModelID          string
	Capability       types.Capability
	Precision        types.Precision
	AttentionSlicing bool
	CPUOffload       bool
}

// Output is what one generation call produced. Exactly one of Image and
// Text is set on success.
type Output struct {
	Image *types.ImageArtifact
	Text  string
}

// Executor is a loaded model. Execute may be called repeatedly; Close
// releases the backing resources and the executor must not be used after.
type Executor interface {
	Execute(ctx context.Context, cfg types.InferenceConfig) (Output, error)
	Close() error
}

// Runtime builds executors for the capabilities it serves. Load returns
// optimization diagnostics alongside the executor: human-readable notes
// about requested options the backend applied differently or not at all.
type Runtime interface {
	Capabilities() []types.Capability
	Load(ctx context.Context, spec LoadSpec) (Executor, []string, error)
}
