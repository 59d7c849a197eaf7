package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
)

// Submitter sends one file to DEEPREAD Extract.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Result, error)
}

// Request is one file bound for one endpoint. Build it with NewRequest.
type Request struct {
	path        string
	language    constants.Language
	processType constants.ProcessType
	apiKey      string
}

// NewRequest validates the combination before any network activity.
// Invalid input is a configuration error.
func NewRequest(path string, lang constants.Language, pt constants.ProcessType, apiKey string) (Request, error) {
	v := common.NewValidator().
		Field("path", path, common.Required, common.RegularFile).
		Field("language", lang, common.Required, common.OneOf(constants.Languages()...)).
		Field("process_type", pt, common.Required, common.OneOf(constants.ProcessTypesFor(lang)...)).
		Field("api_key", apiKey, common.Required)
	if err := v.Error(); err != nil {
		return Request{}, common.NewConfigError("invalid extraction request", err)
	}
	return Request{path: path, language: lang, processType: pt, apiKey: apiKey}, nil
}

func (r Request) Path() string                       { return r.path }
func (r Request) Language() constants.Language       { return r.language }
func (r Request) ProcessType() constants.ProcessType { return r.processType }

// Result is a successful response: the untouched body and its "data" member.
type Result struct {
	Raw        []byte
	Data       json.RawMessage
	StatusCode int
}

// ErrMissingData marks a response without the top-level "data" member:
// error envelopes, rate-limit messages and the like.
var ErrMissingData = errors.New(`response has no "data" member`)

// RemoteExtractionFailure means the API did not return a success envelope,
// or the call never completed. Body holds whatever came back, for diagnostics.
type RemoteExtractionFailure struct {
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteExtractionFailure) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("failed to process document %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to process document %s (status %d): %s", e.Path, e.StatusCode, truncate(e.Body, 512))
}

func (e *RemoteExtractionFailure) Unwrap() error { return e.Err }

// GRPCStatus classifies the failure for status.Code and common.ExitCode.
func (e *RemoteExtractionFailure) GRPCStatus() *status.Status {
	return common.NewAppError(common.CodeRemoteExtraction, e.Error(), nil).GRPCStatus()
}

func truncate(s string, max int) string {
	return common.Truncate(s, max, "...(truncated)")
}
