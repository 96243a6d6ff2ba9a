package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"synthd/internal/imaging"
	"synthd/internal/orchestrator"
	"synthd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Load(ctx context.Context, req types.LoadRequest) ([]string, error)
	Generate(ctx context.Context, cfg types.InferenceConfig) types.InferenceResult
	Unload(ctx context.Context, id string) (bool, error)
	MemoryInfo(ctx context.Context) types.DeviceInfo
	Capabilities() []string
	Models() []types.ModelSummary
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Post("/models/load", func(w http.ResponseWriter, r *http.Request) {
		if !requireJSON(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.LoadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, types.LoadResponse{
				Success:   false,
				Error:     "invalid JSON body",
				ErrorKind: orchestrator.KindBadRequest,
			})
			return
		}
		start := time.Now()
		lvl := requestLogLevel(r)
		ctx, cancel := joinContexts(r.Context(), serverBaseCtx)
		defer cancel()
		diags, err := svc.Load(ctx, req)
		resp := types.LoadResponse{Success: err == nil, Diagnostics: diags}
		status := http.StatusOK
		if err != nil {
			// Client gone or server stopping; nobody is reading the response.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			resp.Error = err.Error()
			resp.ErrorKind = orchestrator.Kind(err)
			status = statusForError(err)
		}
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Int("status", status).Dur("dur", time.Since(start)).Str("model_id", req.ModelID)
			if err != nil {
				z = z.Str("error_kind", resp.ErrorKind)
			}
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("load end")
		}
		writeJSON(w, status, resp)
	})

	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
		if !requireJSON(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			// MaxBytesReader errors land here; keep the reply uniform.
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		cfg, err := parseInferenceConfig(body)
		if err != nil {
			writeJSON(w, statusForError(err), types.GenerateResponse{InferenceResult: types.InferenceResult{
				Success:      false,
				ErrorMessage: err.Error(),
				ErrorKind:    orchestrator.Kind(err),
			}})
			return
		}
		start := time.Now()
		lvl := requestLogLevel(r)
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Str("model_id", cfg.ModelID)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("generate start")
		}
		ctx, cancel := joinContexts(r.Context(), serverBaseCtx)
		defer cancel()
		res := svc.Generate(ctx, cfg)
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		resp := types.GenerateResponse{InferenceResult: res}
		if res.Image != nil {
			b64, encErr := imaging.EncodeBase64PNG(res.Image)
			if encErr != nil {
				writeJSONError(w, http.StatusInternalServerError, "encode artifact: "+encErr.Error())
				return
			}
			resp.ImageBase64 = b64
			resp.ImageWidth = res.Image.Width
			resp.ImageHeight = res.Image.Height
		}
		status := http.StatusOK
		if !res.Success {
			status = statusForKind(res.ErrorKind)
		}
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Int("status", status).Dur("dur", time.Since(start)).Str("model_id", cfg.ModelID)
			if !res.Success {
				z = z.Str("error_kind", res.ErrorKind)
			}
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("generate end")
		}
		writeJSON(w, status, resp)
	})

	r.Post("/models/{id}/unload", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx, cancel := joinContexts(r.Context(), serverBaseCtx)
		defer cancel()
		removed, err := svc.Unload(ctx, id)
		if err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, types.UnloadResponse{Removed: removed})
	})

	r.Get("/memory", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := joinContexts(r.Context(), serverBaseCtx)
		defer cancel()
		writeJSON(w, http.StatusOK, svc.MemoryInfo(ctx))
	})

	r.Get("/capabilities", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.CapabilitiesResponse{Capabilities: svc.Capabilities()})
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: svc.Models()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/hw", func(w http.ResponseWriter, r *http.Request) {
		if hwCollector == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "hardware monitor not running")
			return
		}
		snap, ok := hwCollector()
		if !ok {
			writeJSONError(w, http.StatusServiceUnavailable, "no hardware sample yet")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("initializing"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// requireJSON rejects bodies that do not declare a JSON content type.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	return true
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
