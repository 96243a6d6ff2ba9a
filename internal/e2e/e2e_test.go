package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"synthd/internal/imaging"
	"synthd/pkg/types"
)

// TestE2E_Load_Generate_Status_Unload walks the whole lifecycle over the
// wire: catalog listing, readiness, load with diagnostics, status, a
// generation whose artifact round-trips through base64 PNG, and unload.
func TestE2E_Load_Generate_Status_Unload(t *testing.T) {
	dir, _ := createTempModelsDir(t, "sd15-unet.safetensors", "tiny.gguf")
	rt := &stubRuntime{
		caps:  []types.Capability{types.CapabilityTextToImage, types.CapabilityImageToImage},
		diags: []string{"attention slicing not supported by this backend"},
	}
	srv, _ := newTestServer(t, dir, rt)

	// 1) The scanned catalog is visible before anything is loaded.
	resp, body := httpGet(t, srv.URL+"/models")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/models status=%d body=%s", resp.StatusCode, body)
	}
	var ml types.ModelsResponse
	if err := json.Unmarshal(body, &ml); err != nil {
		t.Fatalf("/models json: %v body=%s", err, body)
	}
	if len(ml.Models) != 2 {
		t.Fatalf("expected 2 catalog entries, got %d", len(ml.Models))
	}
	for _, m := range ml.Models {
		if m.Loaded {
			t.Fatalf("catalog entry %s reported loaded before any load", m.ID)
		}
	}

	// 2) Readiness reflects initialization.
	resp, body = httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz status=%d body=%s", resp.StatusCode, body)
	}

	// 3) Load through the catalog id; runtime diagnostics come back.
	resp, body = httpPostJSON(t, srv.URL+"/models/load",
		[]byte(`{"source":"sd15-unet.safetensors","model_id":"sd15","capability":"text_to_image","precision":"fp16"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status=%d body=%s", resp.StatusCode, body)
	}
	var lr types.LoadResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		t.Fatalf("load json: %v body=%s", err, body)
	}
	if !lr.Success || lr.Error != "" {
		t.Fatalf("load failed: %+v", lr)
	}
	if len(lr.Diagnostics) != 1 || !strings.Contains(lr.Diagnostics[0], "attention slicing") {
		t.Fatalf("diagnostics = %v", lr.Diagnostics)
	}

	// 4) Status reports the handle.
	resp, body = httpGet(t, srv.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status status=%d body=%s", resp.StatusCode, body)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, body)
	}
	if st.State != "ready" || st.ModelCount != 1 || len(st.Models) != 1 || st.Models[0].ID != "sd15" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.Device != "cpu" {
		t.Fatalf("device = %q, want cpu", st.Device)
	}

	// 5) Generate; the artifact round-trips through base64 PNG.
	resp, body = httpPostJSON(t, srv.URL+"/generate",
		[]byte(`{"model_id":"sd15","prompt":"a lighthouse at dusk","width":64,"height":64,"steps":4}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status=%d body=%s", resp.StatusCode, body)
	}
	var gr types.GenerateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		t.Fatalf("generate json: %v body=%s", err, body)
	}
	if !gr.Success {
		t.Fatalf("generate failed: %+v", gr.InferenceResult)
	}
	if gr.ImageBase64 == "" || gr.ImageWidth != 64 || gr.ImageHeight != 64 {
		t.Fatalf("artifact fields: base64 len=%d w=%d h=%d", len(gr.ImageBase64), gr.ImageWidth, gr.ImageHeight)
	}
	art, err := imaging.DecodeBase64PNG(gr.ImageBase64)
	if err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if art.Width != 64 || art.Height != 64 {
		t.Fatalf("decoded %dx%d, want 64x64", art.Width, art.Height)
	}
	if gr.InferenceTimeMS == nil || gr.MemoryDeltaBytes == nil {
		t.Fatalf("timing/memory missing on success: %+v", gr.InferenceResult)
	}

	// 6) The catalog row now carries the loaded state.
	_, body = httpGet(t, srv.URL+"/models")
	if err := json.Unmarshal(body, &ml); err != nil {
		t.Fatalf("/models json: %v body=%s", err, body)
	}
	var row *types.ModelSummary
	for i := range ml.Models {
		if ml.Models[i].ID == "sd15-unet.safetensors" {
			row = &ml.Models[i]
		}
	}
	if row == nil || !row.Loaded || row.LoadedAs != "sd15" {
		t.Fatalf("loaded state not reflected: %+v", ml.Models)
	}

	// 7) Unload removes the handle; a second unload is a quiet no-op.
	resp, body = httpPostJSON(t, srv.URL+"/models/sd15/unload", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unload status=%d body=%s", resp.StatusCode, body)
	}
	var ur types.UnloadResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		t.Fatalf("unload json: %v body=%s", err, body)
	}
	if !ur.Removed {
		t.Fatalf("unload removed=false for a live handle")
	}
	_, body = httpPostJSON(t, srv.URL+"/models/sd15/unload", nil)
	if err := json.Unmarshal(body, &ur); err != nil {
		t.Fatalf("unload json: %v body=%s", err, body)
	}
	if ur.Removed {
		t.Fatalf("second unload removed=true")
	}
	_, body = httpGet(t, srv.URL+"/status")
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, body)
	}
	if st.ModelCount != 0 {
		t.Fatalf("model_count = %d after unload", st.ModelCount)
	}
}

// TestE2E_FailureShapes checks the error taxonomy over the wire: status
// codes, stable kinds, and the absence of timing fields on failures.
func TestE2E_FailureShapes(t *testing.T) {
	dir, _ := createTempModelsDir(t, "sd15-unet.safetensors")
	rt := &stubRuntime{caps: []types.Capability{types.CapabilityTextToImage}}
	srv, _ := newTestServer(t, dir, rt)

	// Generation against an identifier that was never loaded.
	resp, body := httpPostJSON(t, srv.URL+"/generate", []byte(`{"model_id":"missing-model","prompt":"x"}`))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown model status=%d body=%s", resp.StatusCode, body)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("json: %v body=%s", err, body)
	}
	if raw["error_kind"] != "model_not_found" {
		t.Fatalf("error_kind = %v", raw["error_kind"])
	}
	if msg, _ := raw["error_message"].(string); !strings.Contains(msg, "missing-model") {
		t.Fatalf("error_message = %q, want the identifier named", msg)
	}
	if _, ok := raw["inference_time_ms"]; ok {
		t.Fatalf("failure carries inference_time_ms: %s", body)
	}
	if _, ok := raw["memory_delta_bytes"]; ok {
		t.Fatalf("failure carries memory_delta_bytes: %s", body)
	}

	// A request field outside the schema is rejected up front, by name.
	resp, body = httpPostJSON(t, srv.URL+"/generate", []byte(`{"model_id":"m","prompt":"x","sampler":"ddim"}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field status=%d body=%s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("json: %v body=%s", err, body)
	}
	if raw["error_kind"] != "bad_request" {
		t.Fatalf("error_kind = %v", raw["error_kind"])
	}
	if msg, _ := raw["error_message"].(string); !strings.Contains(msg, "sampler") {
		t.Fatalf("error_message = %q, want the offending field named", msg)
	}

	// Loading a capability no runtime serves fails and registers nothing.
	resp, body = httpPostJSON(t, srv.URL+"/models/load",
		[]byte(`{"source":"sd15-unet.safetensors","model_id":"up","capability":"image_upscaling"}`))
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unavailable capability status=%d body=%s", resp.StatusCode, body)
	}
	var lr types.LoadResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		t.Fatalf("load json: %v body=%s", err, body)
	}
	if lr.Success || lr.ErrorKind != "capability_unavailable" {
		t.Fatalf("load response: %+v", lr)
	}
	var st types.StatusResponse
	_, body = httpGet(t, srv.URL+"/status")
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, body)
	}
	if st.ModelCount != 0 {
		t.Fatalf("failed load left %d handles", st.ModelCount)
	}
}

// TestE2E_LoadReplacesExistingHandle loads twice onto one identifier and
// checks the replacement is diagnosed and leaves exactly one handle.
func TestE2E_LoadReplacesExistingHandle(t *testing.T) {
	dir, _ := createTempModelsDir(t, "alpha.safetensors", "beta.safetensors")
	rt := &stubRuntime{caps: []types.Capability{types.CapabilityTextToImage}}
	srv, _ := newTestServer(t, dir, rt)

	load := func(source string) types.LoadResponse {
		t.Helper()
		resp, body := httpPostJSON(t, srv.URL+"/models/load",
			[]byte(`{"source":"`+source+`","model_id":"canvas","capability":"text_to_image"}`))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("load %s status=%d body=%s", source, resp.StatusCode, body)
		}
		var lr types.LoadResponse
		if err := json.Unmarshal(body, &lr); err != nil {
			t.Fatalf("load json: %v body=%s", err, body)
		}
		return lr
	}

	first := load("alpha.safetensors")
	if !first.Success || len(first.Diagnostics) != 0 {
		t.Fatalf("first load: %+v", first)
	}
	second := load("beta.safetensors")
	if !second.Success {
		t.Fatalf("second load: %+v", second)
	}
	if len(second.Diagnostics) != 1 || !strings.Contains(second.Diagnostics[0], "replaced") {
		t.Fatalf("replacement not diagnosed: %v", second.Diagnostics)
	}
	if rt.loadCount() != 2 {
		t.Fatalf("runtime saw %d loads, want 2", rt.loadCount())
	}

	var st types.StatusResponse
	_, body := httpGet(t, srv.URL+"/status")
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, body)
	}
	if st.ModelCount != 1 || st.Models[0].Source == "" {
		t.Fatalf("status after replacement: %+v", st)
	}
	if got := st.Models[0].Source; !strings.HasSuffix(got, "beta.safetensors") {
		t.Fatalf("surviving source = %q, want the replacement", got)
	}

	resp, body := httpPostJSON(t, srv.URL+"/models/canvas/unload", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unload status=%d body=%s", resp.StatusCode, body)
	}
	_, body = httpGet(t, srv.URL+"/status")
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, body)
	}
	if st.ModelCount != 0 {
		t.Fatalf("model_count = %d after unload", st.ModelCount)
	}
}
