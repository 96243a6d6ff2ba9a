package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"synthd/internal/catalog"
	"synthd/internal/httpapi"
	"synthd/internal/orchestrator"
	"synthd/internal/runtime"
	"synthd/pkg/types"
)

// grayExec is the live model behind the stub runtime. Image capabilities
// render a flat gray artifact at the requested dimensions; text generation
// echoes the prompt.
type grayExec struct {
	capability types.Capability
}

func (e *grayExec) Execute(ctx context.Context, cfg types.InferenceConfig) (runtime.Output, error) {
	if e.capability == types.CapabilityTextGeneration {
		return runtime.Output{Text: "echo: " + cfg.Prompt}, nil
	}
	pix := make([]uint8, cfg.Width*cfg.Height*3)
	for i := range pix {
		pix[i] = 0x80
	}
	return runtime.Output{Image: &types.ImageArtifact{Width: cfg.Width, Height: cfg.Height, Channels: 3, Pix: pix}}, nil
}

func (e *grayExec) Close() error { return nil }

type stubRuntime struct {
	caps  []types.Capability
	diags []string

	mu    sync.Mutex
	loads int
}

func (r *stubRuntime) Capabilities() []types.Capability { return r.caps }

func (r *stubRuntime) Load(ctx context.Context, spec runtime.LoadSpec) (runtime.Executor, []string, error) {
	r.mu.Lock()
	r.loads++
	r.mu.Unlock()
	return &grayExec{capability: spec.Capability}, r.diags, nil
}

func (r *stubRuntime) loadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

// createTempModelsDir creates a temporary directory populated with empty
// model files and returns the directory path and the file names, which
// double as catalog ids.
func createTempModelsDir(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(""), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", n, err)
		}
	}
	return dir, names
}

// newTestServer stands up the full HTTP surface over a real orchestrator:
// catalog scanned from modelsDir, the given runtimes registered, CPU device.
func newTestServer(t *testing.T, modelsDir string, rts ...runtime.Runtime) (*httptest.Server, *orchestrator.Orchestrator) {
	t.Helper()
	var models []types.CatalogModel
	if modelsDir != "" {
		var err error
		models, err = catalog.ScanDir(modelsDir)
		if err != nil {
			t.Fatalf("scan models: %v", err)
		}
	}
	table := runtime.NewTable()
	for _, rt := range rts {
		table.Register(rt)
	}
	orch := orchestrator.New(orchestrator.Config{Catalog: models, Runtimes: table})
	orch.Initialize(context.Background(), "cpu")
	t.Cleanup(func() { _ = orch.Shutdown(context.Background()) })
	srv := httptest.NewServer(httpapi.NewMux(orch))
	t.Cleanup(srv.Close)
	return srv, orch
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
