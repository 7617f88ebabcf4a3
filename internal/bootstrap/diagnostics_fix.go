package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"quicky/internal/config"
	"quicky/internal/domain"
)

// FixDiagnostic applies the automatic remedy for one failed check and
// returns the refreshed report. Only filesystem and configuration
// problems are fixable; backend reachability just re-runs the probe.
func (a *App) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	changed := false
	switch id {
	case "api_base":
		settings.APIBaseURL = config.DefaultSettings().APIBaseURL
		changed = true

	case "api_health":
		// Nothing to repair locally; re-running the checks probes again.

	case "data_dir":
		if err := os.MkdirAll(settings.DataDir, 0o755); err != nil {
			return domain.DiagnosticReport{}, fmt.Errorf("create data directory: %w", err)
		}

	case "inbox_dir":
		if settings.InboxDir == "" {
			return domain.DiagnosticReport{}, fmt.Errorf("no inbox folder is configured")
		}
		if err := os.MkdirAll(settings.InboxDir, 0o755); err != nil {
			return domain.DiagnosticReport{}, fmt.Errorf("create inbox folder: %w", err)
		}

	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unknown diagnostic id: %s", id)
	}

	if changed {
		if err := a.Store.Save(settings); err != nil {
			return domain.DiagnosticReport{}, fmt.Errorf("save settings: %w", err)
		}
	}

	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	report := a.Diagnostics
	a.mu.Unlock()

	if id == "inbox_dir" {
		a.restartInboxWatcher()
	}
	return report, nil
}
