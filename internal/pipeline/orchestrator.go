// Package pipeline runs files through extraction, persistence and optional
// visualisation, one file at a time.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
	"github.com/joseph-ayodele/deepread-extract/internal/extract"
	"github.com/joseph-ayodele/deepread-extract/internal/ingest"
	"github.com/joseph-ayodele/deepread-extract/internal/render"
	"github.com/joseph-ayodele/deepread-extract/internal/resolver"
	"github.com/joseph-ayodele/deepread-extract/internal/store"
)

// ImageSource yields a decodable image for an input file.
type ImageSource interface {
	Renderable(ctx context.Context, path string) (string, error)
}

// Options are the caller's selections for a run.
type Options struct {
	Language    constants.Language    // empty: from the filename suffix
	ProcessType constants.ProcessType // single-file mode only
	Visualise   bool
}

// Outcome describes what happened to one file.
type Outcome struct {
	Path        string
	Language    constants.Language
	ProcessType constants.ProcessType
	Status      constants.RunStatus
	JSONPath    string
	ImagePath   string
	Err         error
	Duration    time.Duration
}

type Deps struct {
	Client   extract.Submitter
	Store    *store.Store
	Images   ImageSource
	Renderer *render.Renderer
	Recorder Recorder // nil: no ledger
	APIKey   string
	Logger   *slog.Logger
}

type Orchestrator struct {
	client   extract.Submitter
	store    *store.Store
	images   ImageSource
	renderer *render.Renderer
	recorder Recorder
	apiKey   string
	logger   *slog.Logger
}

func New(d Deps) *Orchestrator {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.Renderer == nil {
		d.Renderer = render.New(render.Options{}, d.Logger)
	}
	return &Orchestrator{
		client:   d.Client,
		store:    d.Store,
		images:   d.Images,
		renderer: d.Renderer,
		recorder: d.Recorder,
		apiKey:   d.APIKey,
		logger:   d.Logger,
	}
}

// ProcessOne handles a single file named by the user. The process type is
// settled by resolver.ChooseProcessType.
func (o *Orchestrator) ProcessOne(ctx context.Context, path string, opts Options) (Outcome, error) {
	lang := resolver.Resolve(path, opts.Language)
	pt, err := resolver.ChooseProcessType(lang, opts.ProcessType, opts.Language != "")
	if err != nil {
		out := Outcome{Path: path, Language: lang, Status: constants.RunStatusFailed, Err: err}
		o.logger.Error("pipeline.config_error", "path", path, "language", lang, "error", err)
		return out, err
	}
	return o.process(ctx, path, lang, pt, opts.Visualise)
}

// ProcessSample handles a file found under samples/<pt>/: the directory names
// the process type and the language comes from opts or the filename.
func (o *Orchestrator) ProcessSample(ctx context.Context, s ingest.Sample, opts Options) (Outcome, error) {
	return o.process(ctx, s.Path, resolver.Resolve(s.Path, opts.Language), s.ProcessType, opts.Visualise)
}

// ProcessAll runs every sample under samplesDir whose directory is a process
// type allowed for opts.Language (all types when empty). Per-file failures are
// logged and reported in the outcomes; only an unreadable samplesDir or a
// cancelled context is returned as an error.
func (o *Orchestrator) ProcessAll(ctx context.Context, samplesDir string, opts Options) ([]Outcome, ingest.DirStats, error) {
	start := time.Now()
	samples, stats, err := ingest.ScanSamples(samplesDir, resolver.TypesFor(opts.Language))
	if err != nil {
		o.logger.Error("pipeline.scan_failed", "dir", samplesDir, "error", err)
		return nil, stats, common.NewFileSystemError(fmt.Sprintf("scan %s", samplesDir), err)
	}

	outcomes := make([]Outcome, 0, len(samples))
	var failed int
	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("pipeline.batch_cancelled", "done", len(outcomes), "remaining", len(samples)-len(outcomes))
			return outcomes, stats, err
		}
		out, err := o.ProcessSample(ctx, s, opts)
		if err != nil {
			failed++
		}
		outcomes = append(outcomes, out)
	}

	o.logger.Info("pipeline.batch_done",
		"dir", samplesDir,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"failed", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return outcomes, stats, nil
}

func (o *Orchestrator) process(ctx context.Context, path string, lang constants.Language, pt constants.ProcessType, visualise bool) (Outcome, error) {
	start := time.Now()
	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = common.WithRequestID(ctx, reqID)
	}
	log := o.logger.With("req_id", reqID, "path", path, "language", lang, "process_type", pt)

	out := Outcome{Path: path, Language: lang, ProcessType: pt, Status: constants.RunStatusFailed}
	fail := func(runID uuid.UUID, err error) (Outcome, error) {
		out.Err = err
		out.Duration = time.Since(start)
		if runID != uuid.Nil {
			if rerr := o.recorder.FinishFailure(ctx, runID, err.Error()); rerr != nil {
				log.Warn("pipeline.ledger_failed", "error", rerr)
			}
		}
		return out, err
	}

	req, err := extract.NewRequest(path, lang, pt, o.apiKey)
	if err != nil {
		log.Error("pipeline.config_error", "error", err)
		return fail(uuid.Nil, err)
	}
	log.Info("pipeline.start")

	runID, err := o.recorder.Start(ctx, path, lang, pt)
	if err != nil {
		log.Warn("pipeline.ledger_failed", "error", err)
		runID = uuid.Nil
	}

	res, err := o.client.Submit(ctx, req)
	if err != nil {
		var rf *extract.RemoteExtractionFailure
		if errors.As(err, &rf) {
			log.Error("pipeline.remote_failure", "status", rf.StatusCode, "body", rf.Body, "error", rf.Err)
		} else {
			log.Error("pipeline.submit_failed", "error", err)
		}
		return fail(runID, err)
	}

	jsonPath, err := o.store.Persist(pt, filepath.Base(path), res.Raw)
	if err != nil {
		return fail(runID, err)
	}
	out.JSONPath = jsonPath
	log.Info("pipeline.persist.ok", "json_path", jsonPath, "bytes", len(res.Raw))

	// The raw result is kept either way; a mismatch only matters for rendering.
	if err := extract.ValidateShape(pt, res.Data); err != nil {
		log.Warn("pipeline.shape_mismatch", "error", err)
	}

	if visualise {
		imgPath, err := o.visualise(ctx, path, pt, res.Data)
		if err != nil {
			log.Error("pipeline.visualise_failed", "error", err)
			return fail(runID, err)
		}
		out.ImagePath = imgPath
		log.Info("pipeline.visualise.ok", "image_path", imgPath)
	}

	if runID != uuid.Nil {
		if err := o.recorder.FinishOK(ctx, runID, out.JSONPath, out.ImagePath); err != nil {
			log.Warn("pipeline.ledger_failed", "error", err)
		}
	}
	out.Status = constants.RunStatusOK
	out.Duration = time.Since(start)
	log.Info("pipeline.done", "elapsed_ms", out.Duration.Milliseconds())
	return out, nil
}

// visualise draws data over the renderable form of path and saves it under
// the renderable file's basename.
func (o *Orchestrator) visualise(ctx context.Context, path string, pt constants.ProcessType, data json.RawMessage) (string, error) {
	renderable, err := o.images.Renderable(ctx, path)
	if err != nil {
		return "", common.NewAppError(common.CodeRender, fmt.Sprintf("prepare image for %s", path), err)
	}
	img, err := imaging.Open(renderable, imaging.AutoOrientation(true))
	if err != nil {
		return "", common.NewAppError(common.CodeRender, fmt.Sprintf("decode %s", renderable), err)
	}
	vis, err := o.renderer.Render(data, img, pt)
	if err != nil {
		return "", err
	}
	return o.store.SaveImage(pt, filepath.Base(renderable), vis.Image)
}
