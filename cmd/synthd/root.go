package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"synthd/internal/config"
)

// cliOptions collects flag values; empty strings mean "not set" so the
// file/env layers below keep their values.
type cliOptions struct {
	configPath  string
	logLevel    string
	logFormat   string
	addr        string
	modelsDir   string
	device      string
	workerURL   string
	corsOrigins string
}

func buildRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "synthd",
		Short:         "Daemon that loads generative models and serves inference over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (.yaml, .json, .toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error|off (defaults SYNTHD_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: auto|console|json")
	root.PersistentFlags().StringVar(&opts.device, "device", "", "Preferred compute device: auto|accelerator|cpu")
	root.PersistentFlags().StringVar(&opts.workerURL, "worker-url", "", "Base URL of the image-generation worker")

	root.AddCommand(buildServeCmd(opts), buildHWCmd(opts), buildCapabilitiesCmd(opts))
	return root
}

// Execute runs the CLI and reports failure through the exit code.
func Execute() error {
	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

// resolveConfig layers defaults, the config file, SYNTHD_* env vars, and
// flags, in that order.
func resolveConfig(opts *cliOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		fileCfg, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = config.Merge(cfg, fileCfg)
	}
	cfg = config.FromEnv(cfg)
	cfg = config.Merge(cfg, config.Config{
		Addr:               opts.addr,
		ModelsDir:          opts.modelsDir,
		PreferredDevice:    opts.device,
		WorkerURL:          opts.workerURL,
		LogLevel:           opts.logLevel,
		LogFormat:          opts.logFormat,
		CORSAllowedOrigins: splitCSV(opts.corsOrigins),
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// splitCSV splits a comma-separated flag value, dropping empty entries.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
