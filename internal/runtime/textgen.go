//go:build llama

package runtime

// cgo link directives for the in-process llama runtime. The $ORIGIN rpath
// lets the loader find libllama.so next to the built binary; the -L path
// covers link time for the llama build variant.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	goruntime "runtime"

	llama "github.com/go-skynet/go-llama.cpp"
	"github.com/rs/zerolog"

	"synthd/pkg/types"
)

// textGen runs GGUF text models in-process through llama.cpp.
type textGen struct {
	ctxSize int
	threads int
	log     zerolog.Logger
}

// NewTextGeneration builds the in-process text runtime. Present only in
// binaries built with the llama tag. A non-positive thread count selects
// one thread per logical CPU.
func NewTextGeneration(ctxSize, threads int, log zerolog.Logger) (Runtime, bool) {
	if threads <= 0 {
		threads = goruntime.NumCPU()
	}
	return &textGen{
		ctxSize: ctxSize,
		threads: threads,
		log:     log.With().Str("component", "textgen").Logger(),
	}, true
}

func (g *textGen) Capabilities() []types.Capability {
	return []types.Capability{types.CapabilityTextGeneration}
}

func (g *textGen) Load(ctx context.Context, spec LoadSpec) (Executor, []string, error) {
	var diags []string
	opts := []llama.ModelOption{llama.SetContext(g.ctxSize)}
	switch spec.Precision {
	case types.PrecisionFP16:
		opts = append(opts, llama.EnableF16Memory)
	case types.PrecisionBF16:
		diags = append(diags, "bf16 not supported by the text runtime, keeping model precision")
	}
	if spec.AttentionSlicing {
		diags = append(diags, "attention_slicing has no effect on the text runtime")
	}
	if spec.CPUOffload {
		diags = append(diags, "cpu_offload has no effect on the text runtime")
	}
	model, err := llama.New(spec.Source, opts...)
	if err != nil {
		return nil, diags, fmt.Errorf("llama: %w", err)
	}
	g.log.Debug().Str("model_id", spec.ModelID).Str("source", spec.Source).Msg("gguf model loaded")
	return &textExecutor{model: model, threads: g.threads}, diags, nil
}

type textExecutor struct {
	model   *llama.LLama
	threads int
}

// Execute generates text. Steps bounds the number of generated tokens.
func (e *textExecutor) Execute(ctx context.Context, cfg types.InferenceConfig) (Output, error) {
	if e.model == nil {
		return Output{}, errors.New("model already closed")
	}
	e.model.SetTokenCallback(func(string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	opts := []llama.PredictOption{
		llama.SetTokens(cfg.Steps),
		llama.SetThreads(e.threads),
	}
	if cfg.Seed != nil {
		opts = append(opts, llama.SetSeed(int(*cfg.Seed)))
	}
	text, err := e.model.Predict(cfg.Prompt, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, ctx.Err()
		}
		return Output{}, err
	}
	return Output{Text: text}, nil
}

func (e *textExecutor) Close() error {
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}
