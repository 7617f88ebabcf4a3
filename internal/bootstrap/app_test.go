package bootstrap

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"quicky/internal/api"
	"quicky/internal/domain"
	"quicky/internal/notify"
	"quicky/internal/selection"
	"quicky/internal/session"
	"quicky/internal/summarize"
	"quicky/internal/upload"
)

// fakeStore returns deterministic settings for App tests.
type fakeStore struct {
	settings domain.Settings
	saved    []domain.Settings
}

// Load returns preconfigured settings.
func (s *fakeStore) Load() (domain.Settings, error) {
	return s.settings, nil
}

// Save records persisted settings.
func (s *fakeStore) Save(settings domain.Settings) error {
	s.settings = settings
	s.saved = append(s.saved, settings)
	return nil
}

// fakePipeline allows injecting custom run behavior per test.
type fakePipeline struct {
	run       func(ctx context.Context, req summarize.Request) (summarize.Result, error)
	summarize func(ctx context.Context, contentType, source string, format domain.Format, sessionID string) (domain.Summary, error)
}

func (p *fakePipeline) Run(ctx context.Context, req summarize.Request) (summarize.Result, error) {
	if p.run == nil {
		return summarize.Result{}, nil
	}
	return p.run(ctx, req)
}

func (p *fakePipeline) SummarizeContent(ctx context.Context, contentType, source string, format domain.Format, sessionID string) (domain.Summary, error) {
	if p.summarize == nil {
		return domain.Summary{}, nil
	}
	return p.summarize(ctx, contentType, source, format, sessionID)
}

// fakeBackend is an inert direct-API implementation.
type fakeBackend struct {
	summaries []domain.Summary
}

func (b *fakeBackend) Summaries(ctx context.Context, sessionID string) ([]domain.Summary, error) {
	return b.summaries, nil
}

func (b *fakeBackend) ToggleLike(ctx context.Context, summaryID int64) (bool, error) {
	return true, nil
}

func (b *fakeBackend) Health(ctx context.Context) (domain.HealthStatus, error) {
	return domain.HealthStatus{Status: "healthy"}, nil
}

// newTestApp assembles an App with fakes and frozen notification timers.
func newTestApp(t *testing.T, pipeline *fakePipeline) *App {
	t.Helper()

	toolSelector, err := selection.NewSelector(toolIDs())
	if err != nil {
		t.Fatalf("tool selector: %v", err)
	}
	formatSelector, err := selection.NewSelector(formatIDs())
	if err != nil {
		t.Fatalf("format selector: %v", err)
	}

	app := &App{
		Settings:       domain.Settings{APIBaseURL: "http://localhost:5000", DataDir: t.TempDir(), AutoSummarize: false, RequestTimeout: 5},
		Store:          &fakeStore{},
		Session:        session.New(filepath.Join(t.TempDir(), "session.json")),
		Tracker:        upload.NewTracker(),
		Center:         notify.NewCenterForTests(50, func(time.Duration, func()) {}),
		Pipeline:       pipeline,
		Backend:        &fakeBackend{},
		logger:         zap.NewNop(),
		toolSelector:   toolSelector,
		formatSelector: formatSelector,
		events:         upload.NewEventBus(100),
	}
	app.wireObservers()
	return app
}

// waitForEventType polls until an event of the wanted type is published.
func waitForEventType(t *testing.T, app *App, want upload.EventType) upload.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, event := range app.JobEvents(0) {
			if event.Type == want {
				return event
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("event type %s not published; events = %+v", want, app.JobEvents(0))
	return upload.Event{}
}

// TestUploadSuccessPublishesResultWithoutNotification checks that the
// success visual is the only success signal.
func TestUploadSuccessPublishesResultWithoutNotification(t *testing.T) {
	app := newTestApp(t, &fakePipeline{
		run: func(ctx context.Context, req summarize.Request) (summarize.Result, error) {
			return summarize.Result{Artifact: domain.Artifact{Preview: "notes...", FullContent: "notes"}}, nil
		},
	})

	job := app.submitDocument("/docs/notes.docx", domain.UploadOriginDrop)
	event := waitForEventType(t, app, upload.EventTypeResult)

	if event.JobSeq != job.Seq || event.Artifact == nil || event.Artifact.FullContent != "notes" {
		t.Fatalf("result event = %+v", event)
	}
	if got := app.CurrentJob(); got.Phase != domain.UploadPhaseSucceeded {
		t.Fatalf("phase = %s, want succeeded", got.Phase)
	}
	if active := app.ActiveNotifications(); len(active) != 0 {
		t.Fatalf("notifications = %+v, want none on success", active)
	}
}

// TestUploadServerRejectionRevertsAndNotifiesOnce checks protocol failures.
func TestUploadServerRejectionRevertsAndNotifiesOnce(t *testing.T) {
	app := newTestApp(t, &fakePipeline{
		run: func(ctx context.Context, req summarize.Request) (summarize.Result, error) {
			return summarize.Result{}, &summarize.StageError{
				Stage:   summarize.StageUploading,
				Message: "quota exceeded",
				Err:     &api.APIError{StatusCode: 429, Message: "quota exceeded"},
			}
		},
	})

	app.submitDocument("/docs/big.pdf", domain.UploadOriginDrop)
	waitForEventType(t, app, upload.EventTypeError)

	deadline := time.Now().Add(2 * time.Second)
	for app.CurrentJob().Phase != domain.UploadPhaseIdle && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := app.CurrentJob().Phase; got != domain.UploadPhaseIdle {
		t.Fatalf("phase = %s, want idle after revert", got)
	}

	active := app.ActiveNotifications()
	if len(active) != 1 {
		t.Fatalf("notifications = %d, want exactly one", len(active))
	}
	if active[0].Kind != domain.NotificationError || !strings.Contains(active[0].Message, "quota exceeded") {
		t.Fatalf("notification = %+v", active[0])
	}
}

// TestUploadTransportFailureUsesGenericFallback checks failures with no
// server-derived message.
func TestUploadTransportFailureUsesGenericFallback(t *testing.T) {
	app := newTestApp(t, &fakePipeline{
		run: func(ctx context.Context, req summarize.Request) (summarize.Result, error) {
			return summarize.Result{}, &summarize.StageError{
				Stage:   summarize.StageUploading,
				Message: "connection refused",
				Err:     context.DeadlineExceeded,
			}
		},
	})

	app.submitDocument("/docs/notes.docx", domain.UploadOriginDrop)
	waitForEventType(t, app, upload.EventTypeError)

	active := app.ActiveNotifications()
	if len(active) != 1 || active[0].Message != genericUploadError {
		t.Fatalf("notifications = %+v, want one generic fallback", active)
	}
}

// TestStartUploadRejectsDisallowedExtension checks the picker allow-list.
func TestStartUploadRejectsDisallowedExtension(t *testing.T) {
	app := newTestApp(t, &fakePipeline{})

	if _, err := app.StartUpload("/docs/movie.mp4"); err == nil {
		t.Fatal("expected extension rejection")
	}
	if active := app.ActiveNotifications(); len(active) != 1 {
		t.Fatalf("notifications = %d, want one local validation error", len(active))
	}
	if got := app.CurrentJob().Phase; got != domain.UploadPhaseIdle {
		t.Fatalf("phase = %s, want idle (nothing submitted)", got)
	}
}

// TestDropPathSubmitsDisallowedExtension checks that drop submissions
// skip local validation and let the server decide.
func TestDropPathSubmitsDisallowedExtension(t *testing.T) {
	submitted := make(chan string, 1)
	app := newTestApp(t, &fakePipeline{
		run: func(ctx context.Context, req summarize.Request) (summarize.Result, error) {
			submitted <- req.FilePath
			return summarize.Result{}, &summarize.StageError{
				Stage:   summarize.StageUploading,
				Message: "Unsupported file type",
				Err:     &api.APIError{StatusCode: 400, Message: "Unsupported file type"},
			}
		},
	})

	app.submitDocument("/docs/movie.mp4", domain.UploadOriginDrop)

	select {
	case path := <-submitted:
		if path != "/docs/movie.mp4" {
			t.Fatalf("submitted %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("drop submission never reached the pipeline")
	}

	waitForEventType(t, app, upload.EventTypeError)
	active := app.ActiveNotifications()
	if len(active) != 1 || !strings.Contains(active[0].Message, "Unsupported file type") {
		t.Fatalf("notifications = %+v", active)
	}
}

// TestSupersededUploadResultIsDiscarded checks the stale-response race:
// the first job's late settlement must not disturb the second job.
func TestSupersededUploadResultIsDiscarded(t *testing.T) {
	releaseFirst := make(chan struct{})
	app := newTestApp(t, &fakePipeline{
		run: func(ctx context.Context, req summarize.Request) (summarize.Result, error) {
			if strings.HasSuffix(req.FilePath, "first.pdf") {
				<-releaseFirst
				return summarize.Result{Artifact: domain.Artifact{FullContent: "stale"}}, nil
			}
			return summarize.Result{Artifact: domain.Artifact{FullContent: "fresh"}}, nil
		},
	})

	app.submitDocument("/docs/first.pdf", domain.UploadOriginDrop)
	second := app.submitDocument("/docs/second.pdf", domain.UploadOriginDrop)

	waitForEventType(t, app, upload.EventTypeResult)
	close(releaseFirst)

	// The late first-job result arrives now and must be discarded.
	time.Sleep(100 * time.Millisecond)

	current := app.CurrentJob()
	if current.Seq != second.Seq || current.FileName != "second.pdf" {
		t.Fatalf("current = %+v, want second job", current)
	}
	if current.Artifact == nil || current.Artifact.FullContent != "fresh" {
		t.Fatalf("artifact = %+v, stale result overwrote state", current.Artifact)
	}

	results := 0
	for _, event := range app.JobEvents(0) {
		if event.Type == upload.EventTypeResult {
			results++
		}
	}
	if results != 1 {
		t.Fatalf("result events = %d, want 1 (stale discarded)", results)
	}
}

// TestScenarioDroppedDocxSucceedsEndToEnd walks the documented flow:
// drop notes.docx, see the uploading phase, get the artifact, no toast.
func TestScenarioDroppedDocxSucceedsEndToEnd(t *testing.T) {
	app := newTestApp(t, &fakePipeline{
		run: func(ctx context.Context, req summarize.Request) (summarize.Result, error) {
			if req.OnStage != nil {
				req.OnStage(summarize.StageUploading)
			}
			return summarize.Result{Artifact: domain.Artifact{Preview: "notes...", FullContent: "chapter one"}}, nil
		},
	})

	app.submitDocument("/docs/notes.docx", domain.UploadOriginDrop)
	result := waitForEventType(t, app, upload.EventTypeResult)

	sawUploading := false
	for _, event := range app.JobEvents(0) {
		if event.Type == upload.EventTypePhase && event.Phase == domain.UploadPhaseUploading {
			sawUploading = true
		}
	}
	if !sawUploading {
		t.Fatal("uploading phase event never published")
	}
	if result.Artifact == nil || result.Artifact.FullContent != "chapter one" {
		t.Fatalf("artifact = %+v", result.Artifact)
	}
	if active := app.ActiveNotifications(); len(active) != 0 {
		t.Fatalf("notifications = %+v, want none", active)
	}
}

// TestSummarizeTextPublishesSummaryResult checks the non-file tool path.
func TestSummarizeTextPublishesSummaryResult(t *testing.T) {
	app := newTestApp(t, &fakePipeline{
		summarize: func(ctx context.Context, contentType, source string, format domain.Format, sessionID string) (domain.Summary, error) {
			if contentType != "paragraph" {
				t.Fatalf("content type = %q", contentType)
			}
			if sessionID == "" {
				t.Fatal("session id missing")
			}
			return domain.Summary{Text: "• point", Format: format}, nil
		},
	})

	summary, err := app.SummarizeText("some long enough text to summarize")
	if err != nil {
		t.Fatalf("summarize text: %v", err)
	}
	if summary.Text != "• point" || summary.Format != domain.FormatBullets {
		t.Fatalf("summary = %+v", summary)
	}
}

// TestSummarizeURLRequiresURLTool checks tool gating for URL submissions.
func TestSummarizeURLRequiresURLTool(t *testing.T) {
	app := newTestApp(t, &fakePipeline{
		summarize: func(ctx context.Context, contentType, source string, format domain.Format, sessionID string) (domain.Summary, error) {
			return domain.Summary{Text: "summary", ContentType: contentType}, nil
		},
	})

	// Default tool is video; URL submissions are accepted.
	if _, err := app.SummarizeURL("https://youtu.be/abc"); err != nil {
		t.Fatalf("summarize url: %v", err)
	}

	if err := app.SelectTool(string(domain.ToolText)); err != nil {
		t.Fatalf("select tool: %v", err)
	}
	if _, err := app.SummarizeURL("https://youtu.be/abc"); err == nil {
		t.Fatal("expected rejection with text tool active")
	}
}

// TestSaveSettingsRefreshesDiagnostics checks persistence plus recheck.
func TestSaveSettingsRefreshesDiagnostics(t *testing.T) {
	app := newTestApp(t, &fakePipeline{})
	app.checker = nil // diagnostics covered separately

	store := app.Store.(*fakeStore)
	saved, err := app.SaveSettings(domain.Settings{
		APIBaseURL: " http://backend:5000/ ",
		DataDir:    "",
	})
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}

	if saved.APIBaseURL != "http://backend:5000" {
		t.Fatalf("api base = %q, want trimmed", saved.APIBaseURL)
	}
	if saved.DataDir == "" || saved.RequestTimeout <= 0 {
		t.Fatalf("defaults not applied: %+v", saved)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d times, want 1", len(store.saved))
	}
}
