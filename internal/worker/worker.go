// Package worker is the HTTP client for the external image-generation
// worker process. The worker owns the diffusion pipelines and the
// accelerator; this daemon drives it through a small JSON API and proxies
// its live memory counters.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"synthd/pkg/types"
)

// Client talks to one worker instance.
type Client struct {
	base *url.URL
	hc   *http.Client
	log  zerolog.Logger
	// device kind reported by the worker's status endpoint; set by Probe
	// before concurrent use.
	kind string
}

// New builds a client for the worker at rawURL.
func New(rawURL string, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("worker url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("worker url: unsupported scheme %q", u.Scheme)
	}
	return &Client{
		base: u,
		// Long-running load/execute calls are bounded by request contexts,
		// not a client-wide timeout.
		hc:  &http.Client{},
		log: log.With().Str("component", "worker").Logger(),
	}, nil
}

// Status is the worker's self-description.
type Status struct {
	// Device kind the worker executes on: cuda, mps, cpu.
	Device string `json:"device"`
	// Capability names the worker can build pipelines for.
	Capabilities []string `json:"capabilities"`
}

// LoadRequest asks the worker to construct one pipeline.
type LoadRequest struct {
	Source           string `json:"source"`
	ModelID          string `json:"model_id"`
	Capability       string `json:"capability"`
	Precision        string `json:"precision"`
	AttentionSlicing bool   `json:"attention_slicing"`
	CPUOffload       bool   `json:"cpu_offload"`
}

// LoadResponse reports a pipeline construction outcome.
type LoadResponse struct {
	OK          bool     `json:"ok"`
	Error       string   `json:"error,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// ExecuteResponse carries one generation outcome. Images arrive as base64
// PNG; the caller decodes to pixels.
type ExecuteResponse struct {
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	TextOutput  string `json:"text_output,omitempty"`
}

type unloadResponse struct {
	Removed bool `json:"removed"`
}

// Probe checks reachability and caches the worker's device kind.
func (c *Client) Probe(ctx context.Context) error {
	st, err := c.StatusInfo(ctx)
	if err != nil {
		return err
	}
	c.kind = st.Device
	return nil
}

// Kind reports the device kind learned by the last successful Probe.
func (c *Client) Kind() string {
	if c.kind == "" {
		return "unknown"
	}
	return c.kind
}

// StatusInfo fetches the worker's status document.
func (c *Client) StatusInfo(ctx context.Context) (Status, error) {
	var st Status
	err := c.do(ctx, http.MethodGet, "/v1/status", nil, &st)
	return st, err
}

// Load asks the worker to construct a pipeline for one model.
func (c *Client) Load(ctx context.Context, req LoadRequest) (LoadResponse, error) {
	var resp LoadResponse
	if err := c.do(ctx, http.MethodPost, "/v1/models/load", req, &resp); err != nil {
		return resp, err
	}
	if !resp.OK {
		msg := resp.Error
		if msg == "" {
			msg = "load refused"
		}
		return resp, fmt.Errorf("worker: %s", msg)
	}
	return resp, nil
}

// Execute runs one generation call against an already-loaded pipeline.
func (c *Client) Execute(ctx context.Context, cfg types.InferenceConfig) (ExecuteResponse, error) {
	var resp ExecuteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/execute", cfg, &resp); err != nil {
		return resp, err
	}
	if !resp.OK {
		msg := resp.Error
		if msg == "" {
			msg = "execution refused"
		}
		return resp, fmt.Errorf("worker: %s", msg)
	}
	return resp, nil
}

// Unload releases one pipeline. A false result means the worker had no
// pipeline under the identifier.
func (c *Client) Unload(ctx context.Context, modelID string) (bool, error) {
	var resp unloadResponse
	err := c.do(ctx, http.MethodPost, "/v1/models/"+url.PathEscape(modelID)+"/unload", nil, &resp)
	if err != nil {
		return false, err
	}
	return resp.Removed, nil
}

// Memory fetches the worker's live allocator counters.
func (c *Client) Memory(ctx context.Context) (types.DeviceInfo, error) {
	var info types.DeviceInfo
	err := c.do(ctx, http.MethodGet, "/v1/memory", nil, &info)
	return info, err
}

// Synchronize blocks until the worker has drained outstanding device work.
func (c *Client) Synchronize(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/sync", nil, nil)
}

// ReleaseCached asks the worker's allocator to return cached memory to the
// device.
func (c *Client) ReleaseCached(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/release", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("worker request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("worker: %s", readError(resp))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode worker response: %w", err)
	}
	return nil
}

// readError extracts a useful message from a non-2xx worker response.
func readError(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil && payload.Error != "" {
		return fmt.Sprintf("%s (status %d)", payload.Error, resp.StatusCode)
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		s = resp.Status
	}
	return s
}
