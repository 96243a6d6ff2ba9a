package config

import (
	"net/url"
)

// invalidConfigError names the field that failed validation.
type invalidConfigError struct {
	field  string
	reason string
}

func (e invalidConfigError) Error() string { return "invalid config: " + e.field + ": " + e.reason }

// IsInvalidConfig reports whether err came from Config.Validate.
func IsInvalidConfig(err error) bool {
	_, ok := err.(invalidConfigError)
	return ok
}

// Validate checks field values after all overlays have been applied.
func (c Config) Validate() error {
	switch c.PreferredDevice {
	case "", "auto", "accelerator", "cuda", "gpu", "cpu":
	default:
		return invalidConfigError{"preferred_device", "must be auto, accelerator, cuda, gpu, or cpu"}
	}
	if c.WorkerURL != "" {
		u, err := url.Parse(c.WorkerURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return invalidConfigError{"worker_url", "must be an http(s) URL"}
		}
	}
	if c.GenerateTimeoutSec < 0 {
		return invalidConfigError{"generate_timeout_sec", "must be >= 0"}
	}
	if c.LoadTimeoutSec < 0 {
		return invalidConfigError{"load_timeout_sec", "must be >= 0"}
	}
	if c.MaxBodyBytes < 0 {
		return invalidConfigError{"max_body_bytes", "must be >= 0"}
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error", "off":
	default:
		return invalidConfigError{"log_level", "must be debug, info, warn, error, or off"}
	}
	switch c.LogFormat {
	case "", "auto", "console", "json":
	default:
		return invalidConfigError{"log_format", "must be auto, console, or json"}
	}
	if c.MonitorIntervalSec < 0 {
		return invalidConfigError{"monitor_interval_sec", "must be >= 0"}
	}
	if c.LlamaCtx < 0 {
		return invalidConfigError{"llama_ctx", "must be >= 0"}
	}
	if c.LlamaThreads < 0 {
		return invalidConfigError{"llama_threads", "must be >= 0"}
	}
	return nil
}
