package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays SYNTHD_* environment variables onto cfg.
// Precedence is file < env < flags; callers apply flags last.
func FromEnv(cfg Config) Config {
	cfg.Addr = envStr("SYNTHD_ADDR", cfg.Addr)
	cfg.ModelsDir = envStr("SYNTHD_MODELS_DIR", cfg.ModelsDir)
	cfg.PreferredDevice = envStr("SYNTHD_DEVICE", cfg.PreferredDevice)
	cfg.WorkerURL = envStr("SYNTHD_WORKER_URL", cfg.WorkerURL)
	cfg.GenerateTimeoutSec = envInt("SYNTHD_GENERATE_TIMEOUT_SEC", cfg.GenerateTimeoutSec)
	cfg.LoadTimeoutSec = envInt("SYNTHD_LOAD_TIMEOUT_SEC", cfg.LoadTimeoutSec)
	cfg.MaxBodyBytes = envInt64("SYNTHD_MAX_BODY_BYTES", cfg.MaxBodyBytes)
	cfg.LogLevel = envStr("SYNTHD_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envStr("SYNTHD_LOG_FORMAT", cfg.LogFormat)
	cfg.MonitorIntervalSec = envInt("SYNTHD_MONITOR_INTERVAL_SEC", cfg.MonitorIntervalSec)
	cfg.LlamaCtx = envInt("SYNTHD_LLAMA_CTX", cfg.LlamaCtx)
	cfg.LlamaThreads = envInt("SYNTHD_LLAMA_THREADS", cfg.LlamaThreads)
	cfg.CORSEnabled = envBool("SYNTHD_CORS_ENABLED", cfg.CORSEnabled)
	if v := os.Getenv("SYNTHD_CORS_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}
	return cfg
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
