package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"synthd/internal/imaging"
	"synthd/internal/worker"
	"synthd/pkg/types"
)

// ImageGen serves the image capabilities through the external worker
// process. One pipeline per model identifier lives inside the worker; the
// executor here is a handle driving it.
type ImageGen struct {
	client *worker.Client
	caps   []types.Capability
	log    zerolog.Logger
}

// NewImageGen builds the worker-backed runtime for the capabilities the
// worker advertises.
func NewImageGen(client *worker.Client, caps []types.Capability, log zerolog.Logger) *ImageGen {
	return &ImageGen{
		client: client,
		caps:   caps,
		log:    log.With().Str("component", "imagegen").Logger(),
	}
}

func (g *ImageGen) Capabilities() []types.Capability {
	out := make([]types.Capability, len(g.caps))
	copy(out, g.caps)
	return out
}

func (g *ImageGen) Load(ctx context.Context, spec LoadSpec) (Executor, []string, error) {
	resp, err := g.client.Load(ctx, worker.LoadRequest{
		Source:           spec.Source,
		ModelID:          spec.ModelID,
		Capability:       string(spec.Capability),
		Precision:        string(spec.Precision),
		AttentionSlicing: spec.AttentionSlicing,
		CPUOffload:       spec.CPUOffload,
	})
	if err != nil {
		return nil, resp.Diagnostics, err
	}
	g.log.Debug().Str("model_id", spec.ModelID).Strs("diagnostics", resp.Diagnostics).Msg("pipeline constructed")
	return &imageExecutor{client: g.client, id: spec.ModelID}, resp.Diagnostics, nil
}

type imageExecutor struct {
	client *worker.Client
	id     string
}

func (e *imageExecutor) Execute(ctx context.Context, cfg types.InferenceConfig) (Output, error) {
	resp, err := e.client.Execute(ctx, cfg)
	if err != nil {
		return Output{}, err
	}
	if resp.ImageBase64 == "" {
		if resp.TextOutput != "" {
			return Output{Text: resp.TextOutput}, nil
		}
		return Output{}, errors.New("worker returned no artifact")
	}
	img, err := imaging.DecodeBase64PNG(resp.ImageBase64)
	if err != nil {
		return Output{}, fmt.Errorf("decode worker artifact: %w", err)
	}
	return Output{Image: img}, nil
}

// Close releases the worker-side pipeline. Runs without a caller context,
// so the call is bounded here.
func (e *imageExecutor) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := e.client.Unload(ctx, e.id)
	return err
}
