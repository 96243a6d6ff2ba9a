package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"synthd/internal/httpapi"
	"synthd/internal/imaging"
	"synthd/internal/orchestrator"
	"synthd/internal/runtime"
	"synthd/internal/worker"
	"synthd/pkg/types"
)

// TestLiveWorker_Generate drives a real image worker end to end: load a
// model, render a small image, decode the returned PNG.
// Skips unless:
// - SYNTHD_WORKER_URL points to a running worker, and
// - SYNTHD_E2E_MODEL names a source that worker can load.
func TestLiveWorker_Generate(t *testing.T) {
	workerURL := strings.TrimSpace(os.Getenv("SYNTHD_WORKER_URL"))
	if workerURL == "" {
		t.Skip("SYNTHD_WORKER_URL not set; skipping live worker test")
	}
	source := strings.TrimSpace(os.Getenv("SYNTHD_E2E_MODEL"))
	if source == "" {
		t.Skip("SYNTHD_E2E_MODEL not set; skipping live worker test")
	}

	logger := zerolog.Nop()
	wc, err := worker.New(workerURL, logger)
	if err != nil {
		t.Fatalf("worker url: %v", err)
	}
	probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, err := wc.StatusInfo(probeCtx)
	if err != nil {
		t.Skipf("worker unreachable: %v", err)
	}
	var caps []types.Capability
	for _, name := range st.Capabilities {
		if c, cerr := types.ParseCapability(name); cerr == nil {
			caps = append(caps, c)
		}
	}
	hasT2I := false
	for _, c := range caps {
		if c == types.CapabilityTextToImage {
			hasT2I = true
		}
	}
	if !hasT2I {
		t.Skipf("worker lacks text_to_image, reports %v", st.Capabilities)
	}

	table := runtime.NewTable()
	table.Register(runtime.NewImageGen(wc, caps, logger))
	orch := orchestrator.New(orchestrator.Config{Runtimes: table, Accelerator: wc})
	orch.Initialize(context.Background(), "auto")
	t.Cleanup(func() { _ = orch.Shutdown(context.Background()) })
	srv := httptest.NewServer(httpapi.NewMux(orch))
	t.Cleanup(srv.Close)

	resp, body := httpPostJSON(t, srv.URL+"/models/load",
		[]byte(`{"source":`+jsonString(source)+`,"model_id":"live","capability":"text_to_image"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status=%d body=%s", resp.StatusCode, body)
	}

	resp, body = httpPostJSON(t, srv.URL+"/generate",
		[]byte(`{"model_id":"live","prompt":"a lighthouse at dusk","width":64,"height":64,"steps":4}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status=%d body=%s", resp.StatusCode, body)
	}
	var gr types.GenerateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		t.Fatalf("generate json: %v body=%s", err, body)
	}
	if !gr.Success || gr.ImageBase64 == "" {
		t.Fatalf("generate result: %+v", gr.InferenceResult)
	}
	art, err := imaging.DecodeBase64PNG(gr.ImageBase64)
	if err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	t.Logf("live worker on %q rendered %dx%d", st.Device, art.Width, art.Height)
}

// jsonString escapes a string for embedding inside a JSON literal built by
// hand.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
