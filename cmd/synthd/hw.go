package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"synthd/internal/device"
	"synthd/internal/worker"
	"synthd/pkg/types"
)

func buildHWCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hw",
		Short: "Print one hardware sample and the discovered GPUs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHW(opts)
		},
	}
}

type hwReport struct {
	Device string            `json:"device"`
	Sample types.HWSnapshot  `json:"sample"`
	GPUs   []types.GPUDevice `json:"gpus,omitempty"`
}

func runHW(opts *cliOptions) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var accel device.Accelerator
	if cfg.WorkerURL != "" {
		if wc, err := worker.New(cfg.WorkerURL, logger); err == nil {
			accel = wc
		}
	}
	dev := device.Select(ctx, cfg.PreferredDevice, accel, logger)
	mon := device.NewMonitor(dev, 0, logger)

	// The first CPU reading always reports zero; prime it and sample again.
	mon.Sample(ctx)
	time.Sleep(500 * time.Millisecond)

	report := hwReport{
		Device: dev.Kind(),
		Sample: mon.Sample(ctx),
	}
	if gpus, err := device.ProbeGPUs(); err == nil {
		report.GPUs = gpus
	} else {
		logger.Debug().Err(err).Msg("gpu probe failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
