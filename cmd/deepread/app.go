package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/deepread-extract/internal/common"
	"github.com/joseph-ayodele/deepread-extract/internal/convert"
	"github.com/joseph-ayodele/deepread-extract/internal/extract"
	"github.com/joseph-ayodele/deepread-extract/internal/pipeline"
	"github.com/joseph-ayodele/deepread-extract/internal/render"
	"github.com/joseph-ayodele/deepread-extract/internal/repository"
	"github.com/joseph-ayodele/deepread-extract/internal/store"
)

// globalOptions are flags shared by every command.
type globalOptions struct {
	key      string
	samples  string
	outputs  string
	ledger   string
	language string
}

// app holds the wired components for one invocation.
type app struct {
	cfg    *common.Config
	logger *slog.Logger
	db     *repository.DB
	runs   repository.ExtractRunRepository
	orch   *pipeline.Orchestrator
}

// loadConfig merges flags over env/config file values.
func loadConfig(g *globalOptions) *common.Config {
	cfg := common.LoadConfig()
	if g.key != "" {
		cfg.API.Key = g.key
	}
	if g.samples != "" {
		cfg.Paths.SamplesDir = g.samples
	}
	if g.outputs != "" {
		cfg.Paths.OutputDir = g.outputs
	}
	if g.ledger != "" {
		cfg.Ledger.DSN = g.ledger
	}
	return cfg
}

func newLogger(cfg *common.Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return logger
}

// openLedger returns nil, nil when no DSN is configured.
func openLedger(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, error) {
	if cfg.Ledger.DSN == "" {
		return nil, nil
	}
	return repository.Open(ctx, repository.Config{Driver: cfg.Ledger.Driver, DSN: cfg.Ledger.DSN}, logger)
}

// newApp validates configuration and wires the pipeline.
func newApp(ctx context.Context, g *globalOptions) (*app, error) {
	cfg := loadConfig(g)
	logger := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	db, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	var recorder pipeline.Recorder
	if db != nil {
		a.db = db
		a.runs = repository.NewExtractRunRepository(db, logger)
		recorder = a.runs
	}

	a.orch = pipeline.New(pipeline.Deps{
		Client: extract.NewClient(extract.Config{
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.API.Timeout,
		}, nil, logger),
		Store: store.New(cfg.Paths.OutputDir, logger),
		Images: convert.NewConverter(convert.Config{
			Pdftoppm:      cfg.Convert.Pdftoppm,
			DPI:           cfg.Convert.DPI,
			HeicConverter: cfg.Convert.HeicConverter,
		}, logger),
		Renderer: render.New(render.Options{}, logger),
		Recorder: recorder,
		APIKey:   cfg.API.Key,
		Logger:   logger,
	})

	logger.Info("deepread configured",
		"samples_dir", cfg.Paths.SamplesDir,
		"output_dir", cfg.Paths.OutputDir,
		"ledger", db != nil,
	)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close ledger", "error", err)
		}
	}
}
