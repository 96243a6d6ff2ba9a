package types

import (
	"fmt"
	"time"
)

// Capability is the kind of inference a loaded model performs.
type Capability string

const (
	CapabilityTextToImage    Capability = "text_to_image"
	CapabilityImageToImage   Capability = "image_to_image"
	CapabilityTextGeneration Capability = "text_generation"
	CapabilityImageUpscaling Capability = "image_upscaling"
)

// ParseCapability maps a wire-level capability name to a Capability.
func ParseCapability(s string) (Capability, error) {
	switch Capability(s) {
	case CapabilityTextToImage, CapabilityImageToImage, CapabilityTextGeneration, CapabilityImageUpscaling:
		return Capability(s), nil
	default:
		return "", fmt.Errorf("unknown capability: %q", s)
	}
}

// Precision selects the numeric precision a model is loaded with.
type Precision string

const (
	PrecisionFP32 Precision = "fp32"
	PrecisionFP16 Precision = "fp16"
	PrecisionBF16 Precision = "bf16"
)

// ParsePrecision maps a wire-level precision name to a Precision.
// The empty string selects fp32.
func ParsePrecision(s string) (Precision, error) {
	switch Precision(s) {
	case "":
		return PrecisionFP32, nil
	case PrecisionFP32, PrecisionFP16, PrecisionBF16:
		return Precision(s), nil
	default:
		return "", fmt.Errorf("unknown precision: %q", s)
	}
}

// DeviceInfo is a point-in-time snapshot of compute-device memory counters,
// in bytes. All counters are zero when no accelerator is active.
type DeviceInfo struct {
	// Bytes currently allocated on the device.
	// example: 2147483648
	Allocated int64 `json:"allocated" example:"2147483648"`
	// Bytes reserved by the device allocator (allocated plus cached).
	// example: 3221225472
	Reserved int64 `json:"reserved" example:"3221225472"`
	// High-water mark of allocated bytes since process start.
	// example: 4294967296
	PeakAllocated int64 `json:"peak_allocated" example:"4294967296"`
	// Total device memory in bytes.
	// example: 25769803776
	Total int64 `json:"total" example:"25769803776"`
}

// ImageArtifact is a decoded image as a height x width x channels pixel
// array. Pix is row-major with Channels bytes per pixel.
type ImageArtifact struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// InferenceConfig carries the full parameter set for one generation call.
// Constructed per request and never mutated afterwards.
type InferenceConfig struct {
	// Identifier of an already-loaded model.
	// example: sd15-unit
	ModelID string `json:"model_id" example:"sd15-unit"`
	// Prompt text driving the generation.
	// example: a lighthouse at dusk, oil painting
	Prompt string `json:"prompt" example:"a lighthouse at dusk, oil painting"`
	// Concepts to steer away from (image capabilities).
	NegativePrompt string `json:"negative_prompt,omitempty"`
	// Number of sampling steps.
	// example: 50
	Steps int `json:"steps" example:"50"`
	// Classifier-free guidance scale.
	// example: 7.5
	GuidanceScale float64 `json:"guidance_scale" example:"7.5"`
	// Output width in pixels; must be a multiple of 8.
	// example: 512
	Width int `json:"width" example:"512"`
	// Output height in pixels; must be a multiple of 8.
	// example: 512
	Height int `json:"height" example:"512"`
	// Generator seed. When set, generation is deterministic for a fixed
	// workload; when omitted the runtime seeds itself.
	// example: 42
	Seed *int64 `json:"seed,omitempty" example:"42"`
	// Number of artifacts generated in one call; only the first is returned.
	// example: 1
	BatchSize int `json:"batch_size" example:"1"`
	// Numeric precision override for this call.
	// example: fp16
	Precision Precision `json:"precision" example:"fp16"`
	// Trade speed for lower peak memory during attention.
	AttentionSlicing bool `json:"attention_slicing,omitempty"`
	// Offload idle submodules to host memory.
	CPUOffload bool `json:"cpu_offload,omitempty"`
	// Base64-encoded source image for image-to-image and upscaling.
	InputImage string `json:"input_image,omitempty"`
}

// DefaultInferenceConfig returns an InferenceConfig with the documented
// defaults applied; request decoding overlays client fields on top of it.
func DefaultInferenceConfig() InferenceConfig {
	return InferenceConfig{
		Steps:         50,
		GuidanceScale: 7.5,
		Width:         512,
		Height:        512,
		BatchSize:     1,
		Precision:     PrecisionFP32,
	}
}

// InferenceResult is the outcome of one generation call. Timing and memory
// fields are populated only when the execution call actually ran.
type InferenceResult struct {
	// Whether generation produced an artifact.
	// example: true
	Success bool `json:"success" example:"true"`
	// Human-readable failure description; empty on success.
	ErrorMessage string `json:"error_message,omitempty"`
	// Stable failure kind for hosts (see the error taxonomy).
	// example: model_not_found
	ErrorKind string `json:"error_kind,omitempty" example:"model_not_found"`
	// Generated text, for text-generation models.
	TextOutput string `json:"text_output,omitempty"`
	// First image artifact of the batch; encoded separately on the wire.
	Image *ImageArtifact `json:"-"`
	// Wall-clock duration of the execution call in milliseconds.
	// example: 1532.8
	InferenceTimeMS *float64 `json:"inference_time_ms,omitempty" example:"1532.8"`
	// allocated-after minus allocated-before across the call; may be
	// negative due to allocator fragmentation and rounding.
	// example: 104857600
	MemoryDeltaBytes *int64 `json:"memory_delta_bytes,omitempty" example:"104857600"`
}

// ModelFormat is the detected on-disk serialization of a model file.
type ModelFormat string

const (
	FormatGGUF        ModelFormat = "gguf"
	FormatSafetensors ModelFormat = "safetensors"
	FormatONNX        ModelFormat = "onnx"
	FormatTorch       ModelFormat = "torch"
	FormatTensorRT    ModelFormat = "tensorrt"
	FormatUnknown     ModelFormat = "unknown"
)

// CatalogModel is a discoverable model file under the models directory.
type CatalogModel struct {
	// Stable identifier, the file name.
	// example: sd15-unet.safetensors
	ID string `json:"id" example:"sd15-unet.safetensors"`
	// Human-friendly name.
	// example: sd15-unet.safetensors
	Name string `json:"name" example:"sd15-unet.safetensors"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/sd15-unet.safetensors
	Path string `json:"path" example:"/home/user/models/sd15-unet.safetensors"`
	// Detected serialization format.
	// example: safetensors
	Format ModelFormat `json:"format" example:"safetensors"`
	// File size in bytes.
	// example: 3438167540
	SizeBytes int64 `json:"size_bytes" example:"3438167540"`
}

// LoadedModel describes one live handle for /status.
type LoadedModel struct {
	// Identifier the handle is registered under.
	// example: sd15-unit
	ID string `json:"id" example:"sd15-unit"`
	// Capability declared at load time.
	// example: text_to_image
	Capability Capability `json:"capability" example:"text_to_image"`
	// Precision the model was loaded with.
	// example: fp16
	Precision Precision `json:"precision" example:"fp16"`
	// Source the load resolved (catalog id or verbatim reference).
	Source string `json:"source"`
	// Load completion time in unix seconds.
	// example: 1700000000
	LoadedAtUnix int64 `json:"loaded_at_unix" example:"1700000000"`
}

// GPUDevice is one graphics adapter discovered by the hardware probe.
type GPUDevice struct {
	// Probe-assigned index.
	// example: 0
	Index int `json:"index" example:"0"`
	// PCI address of the adapter.
	// example: 0000:01:00.0
	Address string `json:"address,omitempty" example:"0000:01:00.0"`
	// PCI vendor name when known.
	// example: NVIDIA Corporation
	Vendor string `json:"vendor,omitempty" example:"NVIDIA Corporation"`
	// PCI product name when known.
	Product string `json:"product,omitempty"`
}

// HWSnapshot is one hardware-monitor sample: host counters from the OS plus
// the device snapshot.
type HWSnapshot struct {
	// Sample time in unix seconds.
	// example: 1700000000
	TakenAtUnix int64 `json:"taken_at_unix" example:"1700000000"`
	// Host CPU utilization percentage since the previous sample.
	// example: 31.5
	CPUPercent float64 `json:"cpu_percent" example:"31.5"`
	// Logical CPU count.
	// example: 16
	CPUCount int `json:"cpu_count" example:"16"`
	// Host memory total in bytes.
	// example: 67108864000
	MemTotalBytes uint64 `json:"mem_total_bytes" example:"67108864000"`
	// Host memory in use in bytes.
	// example: 23622320128
	MemUsedBytes uint64 `json:"mem_used_bytes" example:"23622320128"`
	// Host memory utilization percentage.
	// example: 35.2
	MemUsedPercent float64 `json:"mem_used_percent" example:"35.2"`
	// Compute-device memory counters; zero on CPU-only hosts.
	Device DeviceInfo `json:"device"`
}

// UptimeSeconds reports whole seconds elapsed since start.
func UptimeSeconds(start time.Time) int64 { return int64(time.Since(start).Seconds()) }
