package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
)

// Run is one row of extract_runs.
type Run struct {
	ID           uuid.UUID
	SourcePath   string
	Language     constants.Language
	ProcessType  constants.ProcessType
	Status       constants.RunStatus
	JSONPath     string
	ImagePath    string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Duration is zero while the run is in progress.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

type ExtractRunRepository interface {
	Start(ctx context.Context, sourcePath string, lang constants.Language, pt constants.ProcessType) (uuid.UUID, error)
	FinishOK(ctx context.Context, id uuid.UUID, jsonPath, imagePath string) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	List(ctx context.Context, limit int) ([]Run, error)
}

type extractRunRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractRunRepository(db *DB, log *slog.Logger) ExtractRunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractRunRepo{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (r *extractRunRepo) Start(ctx context.Context, sourcePath string, lang constants.Language, pt constants.ProcessType) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, r.db.rebind(
		`INSERT INTO extract_runs (id, source_path, language, process_type, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`),
		id.String(), sourcePath, string(lang), string(pt), string(constants.RunStatusRunning), r.now())
	if err != nil {
		r.log.Error("extract_run start failed", "path", sourcePath, "err", err)
		return uuid.Nil, err
	}
	r.log.Debug("extract_run started", "run_id", id, "path", sourcePath, "process_type", pt)
	return id, nil
}

func (r *extractRunRepo) FinishOK(ctx context.Context, id uuid.UUID, jsonPath, imagePath string) error {
	if err := r.finish(ctx, id, constants.RunStatusOK, jsonPath, imagePath, ""); err != nil {
		r.log.Error("extract_run finish(OK) failed", "run_id", id, "err", err)
		return err
	}
	r.log.Debug("extract_run finished (OK)", "run_id", id)
	return nil
}

func (r *extractRunRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	if err := r.finish(ctx, id, constants.RunStatusFailed, "", "", message); err != nil {
		r.log.Error("extract_run finish(FAILED) failed", "run_id", id, "err", err)
		return err
	}
	r.log.Debug("extract_run finished (FAILED)", "run_id", id, "error", message)
	return nil
}

func (r *extractRunRepo) finish(ctx context.Context, id uuid.UUID, status constants.RunStatus, jsonPath, imagePath, message string) error {
	res, err := r.db.ExecContext(ctx, r.db.rebind(
		`UPDATE extract_runs SET status = ?, json_path = ?, image_path = ?, error_message = ?, finished_at = ? WHERE id = ?`),
		string(status), jsonPath, imagePath, message, r.now(), id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("extract_run %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// List returns the most recent runs first; limit <= 0 means all.
func (r *extractRunRepo) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, source_path, language, process_type, status, json_path, image_path, error_message, started_at, finished_at
FROM extract_runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, r.db.rebind(q), args...)
	if err != nil {
		r.log.Error("extract_run list failed", "err", err)
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run                 Run
			id, lang, pt, state string
			finished            sql.NullTime
		)
		if err := rows.Scan(&id, &run.SourcePath, &lang, &pt, &state,
			&run.JSONPath, &run.ImagePath, &run.ErrorMessage, &run.StartedAt, &finished); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("extract_run id %q: %w", id, err)
		}
		run.Language = constants.Language(lang)
		run.ProcessType = constants.ProcessType(pt)
		run.Status = constants.RunStatus(state)
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// IsNotFound reports whether err came from finishing an unknown run.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
