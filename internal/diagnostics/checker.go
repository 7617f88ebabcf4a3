package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"quicky/internal/domain"
)

// healthProbeTimeout bounds the startup reachability check.
const healthProbeTimeout = 3 * time.Second

// Checker validates backend reachability and required filesystem paths.
type Checker struct {
	doGet      func(url string) (*http.Response, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS and network dependencies.
func NewChecker() *Checker {
	client := &http.Client{Timeout: healthProbeTimeout}
	return &Checker{
		doGet:      client.Get,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkAPIBase(settings.APIBaseURL),
		c.checkAPIHealth(settings.APIBaseURL),
		c.checkDataDir(settings.DataDir),
		c.checkInboxDir(settings.InboxDir),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkAPIBase validates the configured backend URL shape.
func (c *Checker) checkAPIBase(baseURL string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "api_base",
		Name: "API base URL",
	}

	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "API base URL is empty."
		item.Hint = "Set the Quicky backend URL in settings."
		return item
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("API base URL is not a valid http(s) URL: %s", trimmed)
		item.Hint = "Use a full URL such as http://localhost:5000."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Configured backend: %s", trimmed)
	return item
}

// checkAPIHealth probes the backend health endpoint.
func (c *Checker) checkAPIHealth(baseURL string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "api_health",
		Name: "Backend reachability",
	}

	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Cannot probe health without an API base URL."
		return item
	}

	resp, err := c.doGet(trimmed + "/api/health")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Backend is unreachable."
		item.Hint = "Start the Quicky backend or fix the API base URL."
		return item
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Health endpoint returned status %d.", resp.StatusCode)
		return item
	}

	var health domain.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil || health.Status != "healthy" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Health endpoint returned an unexpected body."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "Backend is healthy."
	return item
}

// checkDataDir validates data directory existence and write access.
// Session persistence degrades to per-process tokens without it.
func (c *Checker) checkDataDir(dataDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "data_dir",
		Name: "Data directory",
	}

	if strings.TrimSpace(dataDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Data directory is empty."
		item.Hint = "Set a directory where the session token can be stored."
		return item
	}

	if err := c.mkdirAll(dataDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create data directory: %s", dataDir)
		item.Hint = "Choose a writable location; the session token will not persist otherwise."
		return item
	}

	tmpFile, err := c.createTemp(dataDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Data directory is not writable: %s", dataDir)
		item.Hint = "Choose a writable location; the session token will not persist otherwise."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dataDir)
	return item
}

// checkInboxDir validates the optional watched folder when configured.
func (c *Checker) checkInboxDir(inboxDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "inbox_dir",
		Name: "Inbox folder",
	}

	trimmed := strings.TrimSpace(inboxDir)
	if trimmed == "" {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "Inbox folder is not configured."
		return item
	}

	info, err := c.stat(trimmed)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Inbox folder does not exist: %s", trimmed)
		} else {
			item.Message = fmt.Sprintf("Cannot access inbox folder: %s", trimmed)
		}
		item.Hint = "Create the folder or clear the inbox setting."
		return item
	}
	if !info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Inbox path is not a directory: %s", trimmed)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Watching folder: %s", trimmed)
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	doGet func(url string) (*http.Response, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		doGet:      doGet,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
