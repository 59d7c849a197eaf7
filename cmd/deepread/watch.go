package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
	"github.com/joseph-ayodele/deepread-extract/internal/ingest"
	"github.com/joseph-ayodele/deepread-extract/internal/pipeline"
	"github.com/joseph-ayodele/deepread-extract/internal/resolver"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var (
		visualise bool
		debounce  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process files as they appear under samples/<process type>/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lang, err := constants.ParseLanguage(g.language)
			if err != nil {
				return common.NewConfigError(err.Error(), err)
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.Close()

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Root:         a.cfg.Paths.SamplesDir,
				ProcessTypes: resolver.TypesFor(lang),
				Debounce:     debounce,
				Logger:       a.logger,
			})
			if err != nil {
				return common.NewFileSystemError("start watcher", err)
			}

			opts := pipeline.Options{Language: lang, Visualise: visualise}
			for {
				select {
				case s, ok := <-events:
					if !ok {
						a.logger.Info("watcher stopped")
						return nil
					}
					out, _ := a.orch.ProcessSample(ctx, s, opts)
					printOutcome(cmd, out)
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					a.logger.Warn("watcher error", "error", err)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&visualise, "vis", false, "also save an image with the detected regions drawn")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "wait this long after the last change before processing a file")
	return cmd
}
