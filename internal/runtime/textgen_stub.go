//go:build !llama

package runtime

// No-CGO stub compiled when the llama tag is not set, keeping default
// builds CGO-free. Startup sees ok=false and leaves text generation out of
// the capability table.

import "github.com/rs/zerolog"

// NewTextGeneration reports the in-process text runtime as unavailable in
// builds without the llama tag.
func NewTextGeneration(ctxSize, threads int, log zerolog.Logger) (Runtime, bool) {
	return nil, false
}
