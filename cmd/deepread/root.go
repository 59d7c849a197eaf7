package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
	"github.com/joseph-ayodele/deepread-extract/internal/export"
	"github.com/joseph-ayodele/deepread-extract/internal/pipeline"
)

type runOptions struct {
	processType string
	visualise   bool
	file        string
	all         bool
	report      string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "deepread",
		Short: "Send documents to DEEPREAD Extract and save the results",
		Long: "Sends a document, or every document under samples/<process type>/, to the DEEPREAD Extract API.\n" +
			"Results are written to outputs/<process type>/<name>.json, optionally with a visualisation of the\n" +
			"detected regions.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(cmd, g, o)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return common.NewConfigError(err.Error(), err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.key, "key", "k", "", "RapidAPI key (default $RAPIDAPI_KEY)")
	pf.StringVarP(&g.language, "language", "l", "", "language selecting the endpoint: en or ja (default from '<name>-<language>.<ext>', else en)")
	pf.StringVar(&g.samples, "samples", "", "samples directory (default $SAMPLES_DIR or samples)")
	pf.StringVar(&g.outputs, "outputs", "", "outputs directory (default $OUTPUT_DIR or outputs)")
	pf.StringVar(&g.ledger, "ledger", "", "run ledger DSN (default $LEDGER_DSN; empty disables the ledger)")

	f := cmd.Flags()
	f.StringVarP(&o.processType, "process-type", "p", "", "process type: form, invoice or receipt (required for en with --file)")
	f.BoolVar(&o.visualise, "vis", false, "also save an image with the detected regions drawn")
	f.BoolVar(&o.visualise, "visualise", false, "alias of --vis")
	f.StringVarP(&o.file, "file", "f", "", "process a single file")
	f.BoolVar(&o.all, "all", false, "process every file under the samples directory")
	f.StringVar(&o.report, "report", "", "with --all, write an XLSX summary of the run to this path")

	cmd.AddCommand(newWatchCmd(g), newHistoryCmd(g))
	return cmd
}

func runExtract(cmd *cobra.Command, g *globalOptions, o *runOptions) error {
	if o.all == (o.file != "") {
		return common.NewConfigErrorf("exactly one of --file or --all is required")
	}
	if o.all && o.processType != "" {
		return common.NewConfigErrorf("--process-type argument not allowed with --all")
	}
	if o.report != "" && !o.all {
		return common.NewConfigErrorf("--report requires --all")
	}
	lang, err := constants.ParseLanguage(g.language)
	if err != nil {
		return common.NewConfigError(err.Error(), err)
	}
	pt, err := constants.ParseProcessType(o.processType)
	if err != nil {
		return common.NewConfigError(err.Error(), err)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := pipeline.Options{Language: lang, ProcessType: pt, Visualise: o.visualise}

	if o.file != "" {
		out, err := a.orch.ProcessOne(ctx, o.file, opts)
		if err != nil {
			return err
		}
		printOutcome(cmd, out)
		return nil
	}

	outcomes, stats, err := a.orch.ProcessAll(ctx, a.cfg.Paths.SamplesDir, opts)
	for _, out := range outcomes {
		printOutcome(cmd, out)
	}
	if err != nil {
		return err
	}
	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "processed %d file(s), %d failed, %d skipped\n", len(outcomes), failed, stats.Skipped)

	if o.report != "" {
		if err := writeReport(o.report, outcomeRows(outcomes)); err != nil {
			return err
		}
		a.logger.Info("report written", "path", o.report, "rows", len(outcomes))
	}
	return nil
}

func printOutcome(cmd *cobra.Command, out pipeline.Outcome) {
	w := cmd.OutOrStdout()
	if out.Err != nil {
		fmt.Fprintf(w, "FAILED %s: %v\n", out.Path, out.Err)
		return
	}
	fmt.Fprintf(w, "OK     %s (%s/%s) -> %s", out.Path, out.Language, out.ProcessType, out.JSONPath)
	if out.ImagePath != "" {
		fmt.Fprintf(w, ", %s", out.ImagePath)
	}
	fmt.Fprintln(w)
}

func outcomeRows(outcomes []pipeline.Outcome) []export.Row {
	rows := make([]export.Row, 0, len(outcomes))
	for _, out := range outcomes {
		r := export.Row{
			File:        out.Path,
			Language:    string(out.Language),
			ProcessType: string(out.ProcessType),
			Status:      string(out.Status),
			JSONPath:    out.JSONPath,
			ImagePath:   out.ImagePath,
			Duration:    out.Duration,
		}
		if out.Err != nil {
			r.Error = out.Err.Error()
		}
		rows = append(rows, r)
	}
	return rows
}

func writeReport(path string, rows []export.Row) error {
	b, err := export.RunsXLSX(rows)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return common.NewFileSystemError(fmt.Sprintf("create %s", dir), err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return common.NewFileSystemError(fmt.Sprintf("write %s", path), err)
	}
	return nil
}
