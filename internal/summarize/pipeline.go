package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"quicky/internal/api"
	"quicky/internal/domain"
)

// Stage names reported through the OnStage callback.
const (
	StageUploading   = "uploading"
	StageSummarizing = "summarizing"
)

// Request describes one document submission.
type Request struct {
	FilePath      string
	Format        domain.Format
	SessionID     string
	AutoSummarize bool
	OnStage       func(stage string)
}

// Result carries the upload artifact and, when chained, the summary.
type Result struct {
	Artifact domain.Artifact
	Summary  *domain.Summary
}

// StageError is a stage-aware error wrapping the underlying cause.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error formats pipeline failures for logs and UI.
func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// backendCaller isolates the API client behind an interface.
type backendCaller interface {
	Upload(ctx context.Context, filename string, r io.Reader) (domain.Artifact, error)
	Summarize(ctx context.Context, req api.SummarizeRequest) (domain.Summary, error)
}

// Pipeline submits documents to the backend: an upload stage producing
// the extracted artifact, then an optional summarize stage sitting
// behind the client-side cache.
type Pipeline struct {
	client backendCaller
	cache  *Cache
	open   func(name string) (io.ReadCloser, error)
}

// NewPipeline constructs the production pipeline over the API client.
func NewPipeline(client *api.Client, cache *Cache) *Pipeline {
	return &Pipeline{
		client: client,
		cache:  cache,
		open: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
	}
}

// Run uploads the file and, when requested, chains the summarize stage.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.FilePath) == "" {
		return Result{}, &StageError{
			Stage:   StageUploading,
			Message: "document path is required",
		}
	}

	file, err := p.open(req.FilePath)
	if err != nil {
		return Result{}, &StageError{
			Stage:   StageUploading,
			Message: fmt.Sprintf("cannot open document: %s", req.FilePath),
			Err:     err,
		}
	}
	defer file.Close()

	emitStage(req.OnStage, StageUploading)
	artifact, err := p.client.Upload(ctx, filepath.Base(req.FilePath), file)
	if err != nil {
		return Result{}, &StageError{
			Stage:   StageUploading,
			Message: uploadFailureMessage(err),
			Err:     err,
		}
	}

	result := Result{Artifact: artifact}
	if !req.AutoSummarize {
		return result, nil
	}

	emitStage(req.OnStage, StageSummarizing)
	summary, err := p.SummarizeContent(ctx, domain.ToolFile.ContentType(), artifact.FullContent, req.Format, req.SessionID)
	if err != nil {
		return Result{}, &StageError{
			Stage:   StageSummarizing,
			Message: uploadFailureMessage(err),
			Err:     err,
		}
	}

	result.Summary = &summary
	return result, nil
}

// SummarizeContent requests a summary for already-extracted content,
// going through the cache and singleflight group when one is configured.
func (p *Pipeline) SummarizeContent(ctx context.Context, contentType, source string, format domain.Format, sessionID string) (domain.Summary, error) {
	compute := func() (domain.Summary, error) {
		return p.client.Summarize(ctx, api.SummarizeRequest{
			ContentType:   contentType,
			ContentSource: source,
			Format:        format,
			SessionID:     sessionID,
		})
	}

	if p.cache == nil {
		return compute()
	}
	return p.cache.GetOrCompute(Key(source, format), compute)
}

// emitStage forwards stage updates when callback is configured.
func emitStage(cb func(stage string), stage string) {
	if cb != nil {
		cb(stage)
	}
}

// uploadFailureMessage extracts the server's message when one exists.
// Transport failures have no server message; callers substitute the
// generic fallback before showing anything to the user.
func uploadFailureMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// NewPipelineForTests constructs a pipeline with injectable dependencies.
func NewPipelineForTests(client backendCaller, cache *Cache, open func(name string) (io.ReadCloser, error)) *Pipeline {
	return &Pipeline{
		client: client,
		cache:  cache,
		open:   open,
	}
}
