package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-analyzer/internal/pipeline"
	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/server"
	"github.com/jonathan/ats-analyzer/internal/server/ratelimit"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes REST endpoints for analyzing résumés and managing the active rule set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			src, closeSrc, err := a.ruleSource(ctx)
			if err != nil {
				return err
			}
			defer closeSrc()

			cache := rules.NewCache(src, a.log)
			// Fail at startup rather than on the first request
			if _, err := cache.Get(ctx); err != nil {
				return fmt.Errorf("failed to load rules from %s: %w", src.Name(), err)
			}

			analyzer := pipeline.New(cache, pipeline.Options{
				Logger:       a.log,
				MaxTextBytes: a.cfg.Analysis.MaxTextBytes,
				Concurrency:  a.cfg.Analysis.Concurrency,
			})

			rl := a.cfg.RateLimit
			srv := server.New(server.Config{
				Port:          a.cfg.Port,
				RateLimit:     ratelimit.NewConfig(rl.RequestsPerMinute, rl.Burst, rl.Whitelist),
				MaxBatchItems: a.cfg.Server.MaxBatchItems,
				Logger:        a.log,
			}, analyzer, cache)

			return srv.Start(ctx)
		},
	}

	cmd.Flags().Int("port", 8080, "Port to listen on")
	_ = a.v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}
