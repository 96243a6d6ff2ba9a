package catalog

import (
	"path/filepath"
	"strings"

	"synthd/pkg/types"
)

// DetectFormat classifies a model file by extension.
func DetectFormat(name string) types.ModelFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gguf", ".ggml":
		return types.FormatGGUF
	case ".safetensors":
		return types.FormatSafetensors
	case ".onnx":
		return types.FormatONNX
	case ".pt", ".pth", ".bin", ".ckpt":
		return types.FormatTorch
	case ".plan", ".engine", ".trt":
		return types.FormatTensorRT
	default:
		return types.FormatUnknown
	}
}
