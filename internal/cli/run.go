package cli

import (
	stdcontext "context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkrein/sigfuzz/internal/backend"
	"github.com/mkrein/sigfuzz/internal/config"
	"github.com/mkrein/sigfuzz/internal/corpus"
	"github.com/mkrein/sigfuzz/internal/engine"
	"github.com/mkrein/sigfuzz/internal/fuzz"
	"github.com/mkrein/sigfuzz/internal/logging"
	"github.com/mkrein/sigfuzz/internal/metrics"
	"github.com/mkrein/sigfuzz/internal/tui"
)

func newRunCmd(manifestPath *string) *cobra.Command {
	var (
		workers       int
		useTUI        bool
		metricsListen string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a fuzzing run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*manifestPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Run.Workers = workers
			}
			if metricsListen != "" {
				cfg.Metrics.Listen = metricsListen
			}

			if err := logging.Setup(cfg.Log); err != nil {
				return err
			}
			defer logging.Close()

			if err := os.MkdirAll(cfg.Run.WorkDir, 0o755); err != nil {
				return fmt.Errorf("create work dir: %w", err)
			}

			fctx := cfg.Context()
			fctx.Coverage = fuzz.NopAnalyzer{}

			registry := backend.NewRegistry()
			b, ok := registry[cfg.Run.Backend]
			if !ok {
				return fmt.Errorf("unknown backend %q", cfg.Run.Backend)
			}

			provider, err := corpus.NewProvider(corpus.Options{
				InputDir:     cfg.Corpus.InputDir,
				ScratchDir:   cfg.Run.WorkDir,
				Extension:    cfg.Run.FileExtension,
				MaxInputSize: cfg.Corpus.MaxInputBytes,
				Replay:       fctx.ReplayMode(),
			})
			if err != nil {
				return err
			}

			ctx, cancel := stdcontext.WithCancel(cmd.Context())
			defer cancel()

			if cfg.Metrics.Listen != "" {
				go func() {
					if err := metrics.Serve(ctx, cfg.Metrics.Listen); err != nil {
						logging.Error().Str("addr", cfg.Metrics.Listen).Err(err).Msg("metrics listener failed")
					}
				}()
			}

			eng := engine.New(fctx, b, provider, cfg.Run.Workers)

			if useTUI {
				errCh := make(chan error, 1)
				go func() {
					errCh <- eng.Run(ctx)
					cancel()
				}()
				ui := tui.New(fctx)
				if err := ui.Run(ctx, cancel); err != nil {
					return err
				}
				return <-errCh
			}
			return eng.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Override the number of fuzzing lanes")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Show a live status screen")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Expose Prometheus metrics on this address")

	return cmd
}
