package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/deepread-extract/constants"
)

// Recorder keeps a ledger of processed files. repository.ExtractRunRepository
// satisfies it.
type Recorder interface {
	Start(ctx context.Context, sourcePath string, lang constants.Language, pt constants.ProcessType) (uuid.UUID, error)
	FinishOK(ctx context.Context, id uuid.UUID, jsonPath, imagePath string) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
}

type nopRecorder struct{}

func (nopRecorder) Start(context.Context, string, constants.Language, constants.ProcessType) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (nopRecorder) FinishOK(context.Context, uuid.UUID, string, string) error { return nil }
func (nopRecorder) FinishFailure(context.Context, uuid.UUID, string) error    { return nil }
