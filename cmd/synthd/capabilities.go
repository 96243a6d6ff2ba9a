package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func buildCapabilitiesCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Print the capabilities this process can serve right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			table, _ := buildRuntimeTable(ctx, cfg, logger)
			names := capabilityNames(table)
			if len(names) == 0 {
				fmt.Println("(none)")
				return nil
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}
