package httpapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"synthd/internal/orchestrator"
	"synthd/pkg/types"
)

// generateSchemaJSON bounds every numeric field of a generation request and
// rejects fields the daemon does not know. The ranges match what the image
// and text runtimes accept; requests outside them fail before touching a
// model.
const generateSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["model_id", "prompt"],
	"properties": {
		"model_id":          {"type": "string", "minLength": 1},
		"prompt":            {"type": "string", "minLength": 1},
		"negative_prompt":   {"type": "string"},
		"steps":             {"type": "integer", "minimum": 1, "maximum": 500},
		"guidance_scale":    {"type": "number", "minimum": 0, "maximum": 50},
		"width":             {"type": "integer", "minimum": 8, "maximum": 4096, "multipleOf": 8},
		"height":            {"type": "integer", "minimum": 8, "maximum": 4096, "multipleOf": 8},
		"seed":              {"type": "integer", "minimum": 0},
		"batch_size":        {"type": "integer", "minimum": 1, "maximum": 16},
		"precision":         {"type": "string", "enum": ["fp32", "fp16", "bf16"]},
		"attention_slicing": {"type": "boolean"},
		"cpu_offload":       {"type": "boolean"},
		"input_image":       {"type": "string"}
	}
}`

var generateSchema *gojsonschema.Schema

func init() {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(generateSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("httpapi: generate schema: %v", err))
	}
	generateSchema = s
}

// parseInferenceConfig validates a raw generation request body against the
// schema and decodes it over the documented defaults. All failures come
// back as bad-request errors naming the offending fields.
func parseInferenceConfig(body []byte) (types.InferenceConfig, error) {
	result, err := generateSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return types.InferenceConfig{}, orchestrator.ErrBadRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return types.InferenceConfig{}, orchestrator.ErrBadRequest(strings.Join(details, "; "))
	}
	cfg := types.DefaultInferenceConfig()
	if err := json.Unmarshal(body, &cfg); err != nil {
		return types.InferenceConfig{}, orchestrator.ErrBadRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return cfg, nil
}
