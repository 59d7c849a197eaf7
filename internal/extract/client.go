package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
)

// DefaultTimeout bounds a single extraction call. No retries are made.
const DefaultTimeout = 60 * time.Second

// Config for the DEEPREAD Extract client.
type Config struct {
	BaseURL string        // replaces https://<host>; the X-RapidAPI-Host header still names the language host
	Timeout time.Duration // http client timeout, default DefaultTimeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// Endpoint is the extract URL for lang.
func (c *Client) Endpoint(lang constants.Language) string {
	base := "https://" + Host(lang)
	if c.cfg.BaseURL != "" {
		base = strings.TrimRight(c.cfg.BaseURL, "/")
	}
	return base + extractPath
}

// Submit posts the file and returns the response when it carries "data".
// Anything else, including transport errors, is a *RemoteExtractionFailure.
func (c *Client) Submit(ctx context.Context, req Request) (Result, error) {
	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	start := time.Now()
	host := Host(req.language)
	url := c.Endpoint(req.language)

	content, err := os.ReadFile(req.path)
	if err != nil {
		c.logger.Error("extract.read_source_error", "req_id", reqID, "path", req.path, "error", err)
		return Result{}, common.NewFileSystemError("read source file", err)
	}

	body, contentType, err := buildMultipart(req, content)
	if err != nil {
		c.logger.Error("extract.encode_error", "req_id", reqID, "error", err)
		return Result{}, common.NewAppError(common.CodeInternal, "encode multipart body", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		c.logger.Error("extract.build_request_error", "req_id", reqID, "error", err)
		return Result{}, &RemoteExtractionFailure{Path: req.path, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("X-RapidAPI-Host", host)
	httpReq.Header.Set("X-RapidAPI-Key", req.apiKey)

	c.logger.Info("extract.http.request",
		"req_id", reqID,
		"url", url,
		"path", req.path,
		"language", req.language,
		"process_type", req.processType,
		"content_length", body.Len(),
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("extract.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Result{}, &RemoteExtractionFailure{Path: req.path, Err: err}
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Warn("extract.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("extract.http.read_error", "req_id", reqID, "error", err)
		return Result{}, &RemoteExtractionFailure{Path: req.path, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Info("extract.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	data, err := dataMember(raw)
	if err != nil {
		c.logger.Warn("extract.no_data",
			"req_id", reqID,
			"path", req.path,
			"status", resp.StatusCode,
			"body", truncate(string(raw), 8<<10),
		)
		return Result{}, &RemoteExtractionFailure{Path: req.path, StatusCode: resp.StatusCode, Body: string(raw), Err: err}
	}

	return Result{Raw: raw, Data: data, StatusCode: resp.StatusCode}, nil
}

// buildMultipart lays out the body the endpoints expect: an optional
// process_type field, then source_file with a guessed content type.
func buildMultipart(req Request, content []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if sendsProcessType(req.language) {
		if err := w.WriteField("process_type", string(req.processType)); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="source_file"; filename="source_file%s"`, filepath.Ext(req.path)))
	h.Set("Content-Type", guessContentType(req.path, content))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func dataMember(raw []byte) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	data, ok := envelope["data"]
	if !ok {
		return nil, ErrMissingData
	}
	return data, nil
}
