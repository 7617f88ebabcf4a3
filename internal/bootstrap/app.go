package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"quicky/internal/api"
	"quicky/internal/config"
	"quicky/internal/diagnostics"
	"quicky/internal/domain"
	"quicky/internal/inspect"
	"quicky/internal/logging"
	"quicky/internal/notify"
	"quicky/internal/selection"
	"quicky/internal/session"
	"quicky/internal/summarize"
	"quicky/internal/upload"
	"quicky/internal/watch"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// genericUploadError is shown when the server gave no usable message.
const genericUploadError = "Upload failed. Please try again."

// Document formats the picker accepts; the drop and inbox paths submit
// anything and let the server decide.
var documentExtensions = []string{".pdf", ".docx", ".doc"}

var documentDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Documents",
		Pattern:     "*.pdf;*.docx;*.doc",
	},
}

// App wires configuration, session, selection, uploads, and UI runtime.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Session     *session.Identity
	Tracker     *upload.Tracker
	Center      *notify.Center
	Pipeline    pipelineRunner
	Backend     backendAPI
	Diagnostics domain.DiagnosticReport

	assets  fs.FS
	checker *diagnostics.Checker
	logger  *zap.Logger

	toolSelector   *selection.Selector
	formatSelector *selection.Selector

	mu         sync.Mutex
	events     *upload.EventBus
	inbox      *watch.Inbox
	runtimeCtx context.Context
}

// pipelineRunner isolates the upload/summarize pipeline behind an interface.
type pipelineRunner interface {
	Run(ctx context.Context, req summarize.Request) (summarize.Result, error)
	SummarizeContent(ctx context.Context, contentType, source string, format domain.Format, sessionID string) (domain.Summary, error)
}

// backendAPI covers the direct API calls not routed through the pipeline.
type backendAPI interface {
	Summaries(ctx context.Context, sessionID string) ([]domain.Summary, error)
	ToggleLike(ctx context.Context, summaryID int64) (bool, error)
	Health(ctx context.Context) (domain.HealthStatus, error)
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	config.LoadDotEnv()

	defaults := config.DefaultSettings()
	store := config.NewJSONStore(filepath.Join(defaults.DataDir, "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings = config.ApplyEnvOverrides(normalizeSettings(settings))

	logger := logging.New(filepath.Join(settings.DataDir, "quicky.log"))

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	client := api.NewClient(settings.APIBaseURL, time.Duration(settings.RequestTimeout)*time.Second)
	cache := summarize.NewCache(summarize.DefaultCacheTTL)

	toolSelector, err := selection.NewSelector(toolIDs())
	if err != nil {
		return nil, fmt.Errorf("build tool selector: %w", err)
	}
	formatSelector, err := selection.NewSelector(formatIDs())
	if err != nil {
		return nil, fmt.Errorf("build format selector: %w", err)
	}

	app := &App{
		Settings:       settings,
		Store:          store,
		Session:        session.New(filepath.Join(settings.DataDir, "session.json")),
		Tracker:        upload.NewTracker(),
		Center:         notify.NewCenter(200),
		Pipeline:       summarize.NewPipeline(client, cache),
		Backend:        client,
		Diagnostics:    report,
		assets:         assets,
		checker:        checker,
		logger:         logger,
		toolSelector:   toolSelector,
		formatSelector: formatSelector,
		events:         upload.NewEventBus(1000),
	}
	app.wireObservers()
	return app, nil
}

// wireObservers connects selection and notification changes to UI pushes.
func (a *App) wireObservers() {
	a.Center.SetSink(func(event notify.Event) {
		a.emit("notification:event", event)
	})
	a.toolSelector.SetObserver(func(previous, current string) {
		a.emit("selection:event", selectionEvent{Selector: "tool", Previous: previous, Current: current})
	})
	a.formatSelector.SetObserver(func(previous, current string) {
		a.emit("selection:event", selectionEvent{Selector: "format", Previous: previous, Current: current})
	})
}

// selectionEvent is the payload pushed on selector transitions.
type selectionEvent struct {
	Selector string `json:"selector"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Quicky",
		Width:       1080,
		Height:      760,
		AssetServer: assetOptions,
		Logger:      logging.NewWailsAdapter(a.logger),
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop: true,
		},
		Bind: []interface{}{a},
	})
}

// Startup stores the runtime context, registers native file drop, and
// starts the inbox watcher when one is configured.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	wailsruntime.OnFileDrop(ctx, func(x, y int, paths []string) {
		if len(paths) == 0 {
			return
		}
		// One tracked job: a multi-file drop submits the first file only.
		a.submitDocument(paths[0], domain.UploadOriginDrop)
	})

	a.startInboxWatcher()
}

// Shutdown stops background work and flushes the log.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	inbox := a.inbox
	a.inbox = nil
	a.runtimeCtx = nil
	a.mu.Unlock()

	if inbox != nil {
		if err := inbox.Stop(); err != nil {
			a.logger.Warn("stop inbox watcher", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// GetSession returns the durable per-install session token.
func (a *App) GetSession() string {
	return a.Session.GetOrCreate()
}

// ResetSession clears the persisted token and returns a fresh one.
func (a *App) ResetSession() (string, error) {
	if err := a.Session.Reset(); err != nil {
		return "", fmt.Errorf("reset session: %w", err)
	}
	return a.Session.GetOrCreate(), nil
}

// SelectTool activates an input tool.
func (a *App) SelectTool(id string) error {
	return a.toolSelector.Select(id)
}

// SelectFormat activates an output format.
func (a *App) SelectFormat(id string) error {
	return a.formatSelector.Select(id)
}

// Selections returns the active tool and format for UI re-sync.
func (a *App) Selections() map[string]string {
	return map[string]string{
		"tool":   a.toolSelector.Current(),
		"format": a.formatSelector.Current(),
	}
}

// PickDocumentFile opens a native file dialog restricted to documents.
func (a *App) PickDocumentFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select document",
		Filters: documentDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// StartUpload submits a picker-chosen document. The picker path enforces
// the extension allow-list since dialog filters can be bypassed on some
// platforms; drop and inbox submissions skip this check.
func (a *App) StartUpload(path string) (domain.UploadJob, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return domain.UploadJob{}, fmt.Errorf("document path is empty")
	}
	if !hasDocumentExtension(trimmed) {
		message := fmt.Sprintf("Unsupported file type: %s", filepath.Base(trimmed))
		a.Center.Error(message)
		return domain.UploadJob{}, fmt.Errorf("unsupported file type: %s", filepath.Ext(trimmed))
	}

	return a.submitDocument(trimmed, domain.UploadOriginPicker), nil
}

// InspectDocument returns an informational preflight of a local file.
func (a *App) InspectDocument(path string) (inspect.DocumentInfo, error) {
	return inspect.Inspect(path)
}

// submitDocument tracks a new upload job and runs it asynchronously.
// Starting a new job supersedes the tracked one; the superseded network
// call keeps running and its settlement is discarded by sequence number.
func (a *App) submitDocument(path string, origin domain.UploadOrigin) domain.UploadJob {
	job := a.Tracker.Begin(filepath.Base(path), origin)
	a.publishPhase(job, "Document selected")

	go a.runUploadJob(job.Seq, path)
	return job
}

// runUploadJob executes the pipeline and maps its outcome to job events.
func (a *App) runUploadJob(jobSeq int64, path string) {
	if !a.Tracker.MarkUploading(jobSeq) {
		return
	}
	a.publishPhase(a.Tracker.Current(), "Uploading "+filepath.Base(path))

	a.mu.Lock()
	settings := a.Settings
	a.mu.Unlock()

	result, err := a.Pipeline.Run(context.Background(), summarize.Request{
		FilePath:      path,
		Format:        domain.Format(a.formatSelector.Current()),
		SessionID:     a.Session.GetOrCreate(),
		AutoSummarize: settings.AutoSummarize,
		OnStage: func(stage string) {
			a.emit("job:stage", map[string]any{"jobSeq": jobSeq, "stage": stage})
		},
	})
	if err != nil {
		a.settleFailed(jobSeq, err)
		return
	}

	if !a.Tracker.Succeed(jobSeq, result.Artifact) {
		a.logger.Debug("discarding stale upload result", zap.Int64("jobSeq", jobSeq))
		return
	}

	// The success visual on the drop target is the signal; no
	// notification is raised on top of it.
	job := a.Tracker.Current()
	a.publishEvent(upload.Event{
		JobSeq:   jobSeq,
		Type:     upload.EventTypeResult,
		Phase:    domain.UploadPhaseSucceeded,
		FileName: job.FileName,
		Artifact: &result.Artifact,
		Summary:  result.Summary,
	})
	if result.Summary != nil {
		a.emit("summary:result", result.Summary)
	}
	a.logger.Info("upload succeeded",
		zap.Int64("jobSeq", jobSeq),
		zap.String("file", job.FileName),
		zap.Bool("summarized", result.Summary != nil))
}

// settleFailed reverts the tracked job and raises exactly one error
// notification. Stale failures are discarded silently.
func (a *App) settleFailed(jobSeq int64, err error) {
	message := failureMessage(err)

	if !a.Tracker.Fail(jobSeq, message) {
		a.logger.Debug("discarding stale upload failure", zap.Int64("jobSeq", jobSeq), zap.Error(err))
		return
	}

	job := a.Tracker.Current()
	a.publishEvent(upload.Event{
		JobSeq:   jobSeq,
		Type:     upload.EventTypeError,
		Phase:    domain.UploadPhaseFailed,
		FileName: job.FileName,
		Message:  message,
	})
	a.Center.Error(message)
	a.logger.Warn("upload failed",
		zap.Int64("jobSeq", jobSeq),
		zap.String("file", job.FileName),
		zap.Error(err))

	// Restore the drop target to its pre-upload content.
	if a.Tracker.Reset(jobSeq) {
		a.publishPhase(a.Tracker.Current(), "Ready")
	}
}

// SummarizeURL submits a video or blog URL to the backend using the
// active tool and format.
func (a *App) SummarizeURL(url string) (domain.Summary, error) {
	tool := domain.Tool(a.toolSelector.Current())
	if tool != domain.ToolVideo && tool != domain.ToolBlog {
		return domain.Summary{}, fmt.Errorf("active tool %s does not take a URL", tool)
	}
	return a.summarizeSource(tool.ContentType(), strings.TrimSpace(url))
}

// SummarizeText submits pasted text to the backend.
func (a *App) SummarizeText(text string) (domain.Summary, error) {
	return a.summarizeSource(domain.ToolText.ContentType(), strings.TrimSpace(text))
}

// summarizeSource runs the summarize stage directly for non-file tools.
func (a *App) summarizeSource(contentType, source string) (domain.Summary, error) {
	if source == "" {
		return domain.Summary{}, fmt.Errorf("content source is empty")
	}

	summary, err := a.Pipeline.SummarizeContent(
		context.Background(),
		contentType,
		source,
		domain.Format(a.formatSelector.Current()),
		a.Session.GetOrCreate(),
	)
	if err != nil {
		message := failureMessage(err)
		a.Center.Error(message)
		a.logger.Warn("summarize failed", zap.String("contentType", contentType), zap.Error(err))
		return domain.Summary{}, fmt.Errorf("summarize %s: %w", contentType, err)
	}

	a.emit("summary:result", summary)
	return summary, nil
}

// History returns the session's past summaries.
func (a *App) History() ([]domain.Summary, error) {
	summaries, err := a.Backend.Summaries(context.Background(), a.Session.GetOrCreate())
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return summaries, nil
}

// ToggleLike flips the liked flag on one summary.
func (a *App) ToggleLike(summaryID int64) (bool, error) {
	liked, err := a.Backend.ToggleLike(context.Background(), summaryID)
	if err != nil {
		return false, fmt.Errorf("toggle like: %w", err)
	}
	return liked, nil
}

// ActiveNotifications returns live notifications for UI re-sync.
func (a *App) ActiveNotifications() []domain.Notification {
	return a.Center.Active()
}

// NotificationEvents returns notification events after sinceSeq.
func (a *App) NotificationEvents(sinceSeq int64) []notify.Event {
	return a.Center.Events(sinceSeq)
}

// JobEvents returns upload events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []upload.Event {
	return a.events.Since(sinceSeq)
}

// CurrentJob returns the tracked upload job snapshot.
func (a *App) CurrentJob() domain.UploadJob {
	return a.Tracker.Current()
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, refreshes diagnostics,
// and restarts the inbox watcher against the new folder.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	a.restartInboxWatcher()
	return normalized, nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns startup checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	report := a.Diagnostics
	a.mu.Unlock()

	return report, nil
}

// CopySummary places summary text on the system clipboard.
func (a *App) CopySummary(text string) error {
	ctx, err := a.runtimeContext()
	if err != nil {
		return err
	}
	return wailsruntime.ClipboardSetText(ctx, text)
}

// startInboxWatcher begins watching the configured inbox folder.
func (a *App) startInboxWatcher() {
	a.mu.Lock()
	dir := strings.TrimSpace(a.Settings.InboxDir)
	a.mu.Unlock()
	if dir == "" {
		return
	}

	inbox, err := watch.NewInbox(dir, func(path string) {
		a.submitDocument(path, domain.UploadOriginInbox)
	})
	if err != nil {
		a.logger.Warn("create inbox watcher", zap.String("dir", dir), zap.Error(err))
		return
	}
	if err := inbox.Start(); err != nil {
		a.logger.Warn("start inbox watcher", zap.String("dir", dir), zap.Error(err))
		return
	}

	a.mu.Lock()
	a.inbox = inbox
	a.mu.Unlock()
	a.logger.Info("watching inbox folder", zap.String("dir", dir))
}

// restartInboxWatcher stops any running watcher and starts a fresh one.
func (a *App) restartInboxWatcher() {
	a.mu.Lock()
	inbox := a.inbox
	a.inbox = nil
	a.mu.Unlock()

	if inbox != nil {
		if err := inbox.Stop(); err != nil {
			a.logger.Warn("stop inbox watcher", zap.Error(err))
		}
	}
	a.startInboxWatcher()
}

// publishPhase sends a normalized phase event for the tracked job.
func (a *App) publishPhase(job domain.UploadJob, message string) {
	a.publishEvent(upload.Event{
		JobSeq:   job.Seq,
		Type:     upload.EventTypePhase,
		Phase:    job.Phase,
		FileName: job.FileName,
		Message:  message,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event upload.Event) {
	published := a.events.Publish(event)
	a.emit("job:event", published)
}

// emit pushes one event to the frontend when the runtime is up.
func (a *App) emit(name string, payload any) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, name, payload)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// failureMessage returns the server's message or the generic fallback.
// Transport failures and unparsable bodies have no server message.
func failureMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericUploadError
}

// normalizeSettings trims user inputs and applies defaults when empty.
func normalizeSettings(settings domain.Settings) domain.Settings {
	defaults := config.DefaultSettings()

	settings.APIBaseURL = strings.TrimRight(strings.TrimSpace(settings.APIBaseURL), "/")
	settings.DataDir = strings.TrimSpace(settings.DataDir)
	settings.InboxDir = strings.TrimSpace(settings.InboxDir)

	if settings.APIBaseURL == "" {
		settings.APIBaseURL = defaults.APIBaseURL
	}
	if settings.DataDir == "" {
		settings.DataDir = defaults.DataDir
	}
	if settings.RequestTimeout <= 0 {
		settings.RequestTimeout = defaults.RequestTimeout
	}
	return settings
}

// hasDocumentExtension checks the picker allow-list.
func hasDocumentExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range documentExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
