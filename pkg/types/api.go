package types

// LoadRequest asks the daemon to construct and register one model.
type LoadRequest struct {
	// Catalog id or verbatim source reference (path, remote ref).
	// example: sd15-unet.safetensors
	Source string `json:"source" example:"sd15-unet.safetensors"`
	// Identifier the handle will be registered under.
	// example: sd15-unit
	ModelID string `json:"model_id" example:"sd15-unit"`
	// Capability name: text_to_image, image_to_image, text_generation,
	// image_upscaling.
	// example: text_to_image
	Capability string `json:"capability" example:"text_to_image"`
	// Numeric precision: fp32 (default), fp16, bf16.
	// example: fp16
	Precision string `json:"precision,omitempty" example:"fp16"`
	// Ask the runtime to slice attention computation at load time.
	AttentionSlicing bool `json:"attention_slicing,omitempty"`
	// Ask the runtime to offload idle submodules to host memory.
	CPUOffload bool `json:"cpu_offload,omitempty"`
}

// LoadResponse reports one load outcome.
type LoadResponse struct {
	// Whether the handle was registered.
	// example: true
	Success bool `json:"success" example:"true"`
	// Failure description; empty on success.
	Error string `json:"error,omitempty"`
	// Stable failure kind; empty on success.
	// example: capability_unavailable
	ErrorKind string `json:"error_kind,omitempty" example:"capability_unavailable"`
	// Non-fatal notes from optional optimization attempts and handle
	// replacement; present on success and failure alike.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// GenerateResponse mirrors InferenceResult on the wire, with the first
// image artifact (when present) encoded as base64 PNG plus its dimensions
// as explicit fields.
type GenerateResponse struct {
	InferenceResult
	// Base64-encoded PNG of the first artifact.
	ImageBase64 string `json:"image_base64,omitempty"`
	// Decoded artifact width in pixels.
	// example: 512
	ImageWidth int `json:"image_width,omitempty" example:"512"`
	// Decoded artifact height in pixels.
	// example: 512
	ImageHeight int `json:"image_height,omitempty" example:"512"`
}

// UnloadResponse reports whether an unload removed a handle. A false value
// is the normal outcome for an identifier that was never loaded.
type UnloadResponse struct {
	// Whether a handle existed and was released.
	// example: true
	Removed bool `json:"removed" example:"true"`
}

// CapabilitiesResponse lists capability names loadable right now.
type CapabilitiesResponse struct {
	// Sorted capability names.
	Capabilities []string `json:"capabilities"`
}

// ModelSummary is one row of GET /models: a catalog entry merged with its
// loaded state.
type ModelSummary struct {
	CatalogModel
	// Whether a handle serving this file is currently registered.
	// example: false
	Loaded bool `json:"loaded" example:"false"`
	// Identifier of the handle when loaded.
	LoadedAs string `json:"loaded_as,omitempty"`
}

// ModelsResponse wraps the list returned by GET /models.
type ModelsResponse struct {
	// Catalog entries with loaded state.
	Models []ModelSummary `json:"models"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall daemon state: initializing or ready.
	// example: ready
	State string `json:"state" example:"ready"`
	// Selected compute device kind (cuda, cpu).
	// example: cuda
	Device string `json:"device" example:"cuda"`
	// Live handles.
	Models []LoadedModel `json:"models"`
	// Number of live handles.
	// example: 2
	ModelCount int `json:"model_count" example:"2"`
	// Uptime of the daemon in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
