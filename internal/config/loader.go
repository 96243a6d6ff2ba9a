package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified"; Default fills the documented defaults and
// loaders overlay file, env, and flag values on top.
type Config struct {
	// HTTP listen address.
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
	// Directory scanned for model files at startup.
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	// Preferred compute device: auto, accelerator (cuda/gpu accepted), cpu.
	PreferredDevice string `json:"preferred_device" yaml:"preferred_device" toml:"preferred_device"`
	// Base URL of the image-generation worker; empty disables the image
	// capabilities.
	WorkerURL string `json:"worker_url" yaml:"worker_url" toml:"worker_url"`
	// Upper bound on one execution call, in seconds. 0 selects the default.
	GenerateTimeoutSec int `json:"generate_timeout_sec" yaml:"generate_timeout_sec" toml:"generate_timeout_sec"`
	// Upper bound on one model load, in seconds. 0 means unbounded.
	LoadTimeoutSec int `json:"load_timeout_sec" yaml:"load_timeout_sec" toml:"load_timeout_sec"`
	// Maximum accepted request body size in bytes.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// Log level: debug, info, warn, error, off.
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// Log format: auto (console on TTY), console, json.
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
	// Hardware monitor sampling interval in seconds; 0 disables the monitor.
	MonitorIntervalSec int `json:"monitor_interval_sec" yaml:"monitor_interval_sec" toml:"monitor_interval_sec"`
	// Context size for the in-process text-generation runtime.
	LlamaCtx int `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	// Thread count for the in-process text-generation runtime; 0 means one
	// per logical CPU.
	LlamaThreads int `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	// CORS is disabled unless enabled here.
	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		ModelsDir:          "~/models",
		PreferredDevice:    "auto",
		GenerateTimeoutSec: 600,
		MaxBodyBytes:       16 << 20,
		LogLevel:           "info",
		LogFormat:          "auto",
		MonitorIntervalSec: 15,
		LlamaCtx:           4096,
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Merge overlays non-zero fields of over onto base and returns the result.
func Merge(base, over Config) Config {
	out := base
	if over.Addr != "" {
		out.Addr = over.Addr
	}
	if over.ModelsDir != "" {
		out.ModelsDir = over.ModelsDir
	}
	if over.PreferredDevice != "" {
		out.PreferredDevice = over.PreferredDevice
	}
	if over.WorkerURL != "" {
		out.WorkerURL = over.WorkerURL
	}
	if over.GenerateTimeoutSec != 0 {
		out.GenerateTimeoutSec = over.GenerateTimeoutSec
	}
	if over.LoadTimeoutSec != 0 {
		out.LoadTimeoutSec = over.LoadTimeoutSec
	}
	if over.MaxBodyBytes != 0 {
		out.MaxBodyBytes = over.MaxBodyBytes
	}
	if over.LogLevel != "" {
		out.LogLevel = over.LogLevel
	}
	if over.LogFormat != "" {
		out.LogFormat = over.LogFormat
	}
	if over.MonitorIntervalSec != 0 {
		out.MonitorIntervalSec = over.MonitorIntervalSec
	}
	if over.LlamaCtx != 0 {
		out.LlamaCtx = over.LlamaCtx
	}
	if over.LlamaThreads != 0 {
		out.LlamaThreads = over.LlamaThreads
	}
	if over.CORSEnabled {
		out.CORSEnabled = true
	}
	if len(over.CORSAllowedOrigins) > 0 {
		out.CORSAllowedOrigins = over.CORSAllowedOrigins
	}
	if len(over.CORSAllowedMethods) > 0 {
		out.CORSAllowedMethods = over.CORSAllowedMethods
	}
	if len(over.CORSAllowedHeaders) > 0 {
		out.CORSAllowedHeaders = over.CORSAllowedHeaders
	}
	return out
}
