package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"synthd/internal/catalog"
	"synthd/internal/common/fsutil"
	"synthd/internal/config"
	"synthd/internal/device"
	"synthd/internal/httpapi"
	"synthd/internal/orchestrator"
	"synthd/internal/runtime"
	"synthd/internal/worker"
	"synthd/pkg/types"
)

func buildServeCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inference daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address, e.g. :8080")
	cmd.Flags().StringVar(&opts.modelsDir, "models-dir", "", "Directory to scan for model files")
	cmd.Flags().StringVar(&opts.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (enables CORS)")
	return cmd
}

func runServe(opts *cliOptions) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	if opts.corsOrigins != "" {
		cfg.CORSEnabled = true
	}
	logger := newLogger(cfg)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if gpus, err := device.ProbeGPUs(); err != nil {
		logger.Debug().Err(err).Msg("gpu probe failed")
	} else {
		for _, g := range gpus {
			logger.Info().Int("index", g.Index).Str("vendor", g.Vendor).Str("product", g.Product).Msg("discovered gpu")
		}
	}

	models := scanCatalog(cfg.ModelsDir, logger)

	table, accel := buildRuntimeTable(runCtx, cfg, logger)

	orch := orchestrator.New(orchestrator.Config{
		Catalog:         models,
		Runtimes:        table,
		Accelerator:     accel,
		Publisher:       orchestrator.NewLogPublisher(logger),
		Logger:          logger,
		GenerateTimeout: time.Duration(cfg.GenerateTimeoutSec) * time.Second,
		LoadTimeout:     time.Duration(cfg.LoadTimeoutSec) * time.Second,
	})
	accelerated := orch.Initialize(runCtx, cfg.PreferredDevice)
	logger.Info().
		Bool("accelerated", accelerated).
		Strs("capabilities", capabilityNames(table)).
		Msg("orchestrator ready")

	if cfg.MonitorIntervalSec > 0 {
		mon := device.NewMonitor(orch.Device(), time.Duration(cfg.MonitorIntervalSec)*time.Second, logger)
		httpapi.SetHWCollector(mon.Last)
		go mon.Run(runCtx)
	}

	httpapi.SetLogger(logger)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)
	httpapi.SetBaseContext(runCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(orch),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := orch.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("model release during shutdown failed")
	}
	logger.Info().Msg("stopped")
	return nil
}

// scanCatalog builds the startup model catalog. A models directory that
// does not exist yet is normal on a fresh install and leaves an empty
// catalog; other scan failures are logged and likewise non-fatal.
func scanCatalog(dir string, logger zerolog.Logger) []types.CatalogModel {
	expanded, err := fsutil.ExpandHome(dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("model catalog scan failed")
		return nil
	}
	if !fsutil.PathExists(expanded) {
		logger.Info().Str("dir", expanded).Msg("models directory absent, starting with an empty catalog")
		return nil
	}
	models, err := catalog.ScanDir(expanded)
	if err != nil {
		logger.Warn().Err(err).Str("dir", expanded).Msg("model catalog scan failed")
		return nil
	}
	logger.Info().Int("models", len(models)).Str("dir", expanded).Msg("model catalog scanned")
	return models
}

// buildRuntimeTable registers every runtime whose backend is usable right
// now. A capability with no entry is reported as unavailable at load time.
func buildRuntimeTable(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*runtime.Table, device.Accelerator) {
	table := runtime.NewTable()
	var accel device.Accelerator

	if cfg.WorkerURL != "" {
		wc, err := worker.New(cfg.WorkerURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("invalid worker url, image capabilities disabled")
		} else if caps := probeWorkerCapabilities(ctx, wc, logger); len(caps) > 0 {
			table.Register(runtime.NewImageGen(wc, caps, logger))
			accel = wc
		}
	}

	if tg, ok := runtime.NewTextGeneration(cfg.LlamaCtx, cfg.LlamaThreads, logger); ok {
		table.Register(tg)
	}

	return table, accel
}

// probeWorkerCapabilities asks the worker what it can serve. Unreachable
// workers yield no capabilities rather than failing startup.
func probeWorkerCapabilities(ctx context.Context, wc *worker.Client, logger zerolog.Logger) []types.Capability {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := wc.StatusInfo(probeCtx)
	if err != nil {
		logger.Warn().Err(err).Msg("image worker unreachable, image capabilities disabled")
		return nil
	}
	caps := make([]types.Capability, 0, len(st.Capabilities))
	for _, name := range st.Capabilities {
		c, err := types.ParseCapability(name)
		if err != nil {
			logger.Warn().Str("capability", name).Msg("worker reported an unknown capability")
			continue
		}
		caps = append(caps, c)
	}
	return caps
}

func capabilityNames(table *runtime.Table) []string {
	caps := table.Capabilities()
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}

// newLogger builds the process logger from the configured level and format.
func newLogger(cfg config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "off":
		level = zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
			level = l
		}
	}
	var out io.Writer = os.Stderr
	format := cfg.LogFormat
	if format == "auto" || format == "" {
		format = "json"
		if st, err := os.Stderr.Stat(); err == nil && st.Mode()&os.ModeCharDevice != 0 {
			format = "console"
		}
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
