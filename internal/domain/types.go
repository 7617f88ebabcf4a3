package domain

import "time"

// Tool is the input modality the user submits content through.
type Tool string

const (
	ToolVideo Tool = "video"
	ToolBlog  Tool = "blog"
	ToolText  Tool = "text"
	ToolFile  Tool = "file"
)

// ContentType maps a tool to the content_type value the backend expects.
func (t Tool) ContentType() string {
	switch t {
	case ToolText:
		return "paragraph"
	case ToolFile:
		return "ebook"
	default:
		return string(t)
	}
}

// Format is the requested shape of the generated summary.
type Format string

const (
	FormatBullets    Format = "bullets"
	FormatParagraphs Format = "paragraphs"
	FormatNotes      Format = "notes"
	FormatMindmap    Format = "mindmap"
	FormatKeywords   Format = "keywords"
	FormatSlides     Format = "slides"
)

// UploadPhase tracks the lifecycle of a single file transfer attempt.
type UploadPhase string

const (
	UploadPhaseIdle      UploadPhase = "idle"
	UploadPhaseSelecting UploadPhase = "selecting"
	UploadPhaseUploading UploadPhase = "uploading"
	UploadPhaseSucceeded UploadPhase = "succeeded"
	UploadPhaseFailed    UploadPhase = "failed"
)

// UploadOrigin records which entry point produced an upload job.
type UploadOrigin string

const (
	UploadOriginPicker UploadOrigin = "picker"
	UploadOriginDrop   UploadOrigin = "drop"
	UploadOriginInbox  UploadOrigin = "inbox"
)

// UploadJob stores the identity and lifecycle of one file transfer.
// Seq increases monotonically; a settlement carrying a stale Seq is
// discarded so a superseded upload cannot overwrite newer state.
type UploadJob struct {
	Seq      int64        `json:"seq"`
	FileName string       `json:"fileName"`
	Origin   UploadOrigin `json:"origin"`
	Phase    UploadPhase  `json:"phase"`
	Error    string       `json:"error,omitempty"`
	Artifact *Artifact    `json:"artifact,omitempty"`
}

// Artifact is the server's answer to a successful upload: a preview of
// the extracted text plus the full content used as summarize input.
type Artifact struct {
	Preview     string `json:"content"`
	FullContent string `json:"full_content"`
}

// NotificationKind distinguishes success and error messages.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient, auto-dismissing user-facing message.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// Summary is one generated summary as returned by the backend.
type Summary struct {
	ID          int64     `json:"id,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Source      string    `json:"content_source,omitempty"`
	Format      Format    `json:"summary_format,omitempty"`
	Text        string    `json:"summary_text"`
	Liked       bool      `json:"liked,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// HealthStatus is the backend health probe response.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	APIBaseURL     string `json:"apiBaseUrl"`
	DataDir        string `json:"dataDir"`
	InboxDir       string `json:"inboxDir,omitempty"`
	RequestTimeout int    `json:"requestTimeoutSeconds"`
	AutoSummarize  bool   `json:"autoSummarize"`
}
