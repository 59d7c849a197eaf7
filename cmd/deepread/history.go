package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/deepread-extract/internal/common"
	"github.com/joseph-ayodele/deepread-extract/internal/export"
	"github.com/joseph-ayodele/deepread-extract/internal/repository"
)

func newHistoryCmd(g *globalOptions) *cobra.Command {
	var (
		report string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs from the ledger, optionally as an XLSX report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig(g)
			logger := newLogger(cfg)
			if cfg.Ledger.DSN == "" {
				return common.NewConfigErrorf("history needs a ledger: set --ledger or LEDGER_DSN")
			}

			ctx := cmd.Context()
			db, err := openLedger(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			runs, err := repository.NewExtractRunRepository(db, logger).List(ctx, limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			if report != "" {
				if err := writeReport(report, export.RowsFromRuns(runs)); err != nil {
					return err
				}
				logger.Info("report written", "path", report, "rows", len(runs))
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tSTATUS\tLANG\tTYPE\tFILE\tERROR")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, r.Language, r.ProcessType, r.SourcePath, r.ErrorMessage)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&report, "report", "", "write an XLSX report to this path instead of printing")
	cmd.Flags().IntVar(&limit, "limit", 0, "only the most recent N runs (0 = all)")
	return cmd
}
