package upload

import (
	"sync"

	"quicky/internal/domain"
)

// Tracker follows the single tracked upload job. Starting a new job
// supersedes the tracked one without cancelling its network call;
// settlements are applied only when their sequence number still matches,
// so a stale response cannot overwrite newer state.
type Tracker struct {
	mu      sync.RWMutex
	nextSeq int64
	current domain.UploadJob
}

// NewTracker creates a tracker in idle state.
func NewTracker() *Tracker {
	return &Tracker{
		current: domain.UploadJob{Phase: domain.UploadPhaseIdle},
	}
}

// Begin tracks a new job in selecting phase, superseding any prior one.
func (t *Tracker) Begin(fileName string, origin domain.UploadOrigin) domain.UploadJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextSeq++
	t.current = domain.UploadJob{
		Seq:      t.nextSeq,
		FileName: fileName,
		Origin:   origin,
		Phase:    domain.UploadPhaseSelecting,
	}
	return t.current
}

// MarkUploading moves the job to uploading phase. Returns false when seq
// no longer identifies the tracked job.
func (t *Tracker) MarkUploading(seq int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.Seq != seq || t.current.Phase != domain.UploadPhaseSelecting {
		return false
	}
	t.current.Phase = domain.UploadPhaseUploading
	return true
}

// Succeed settles the tracked job with its artifact. Stale sequence
// numbers are discarded silently.
func (t *Tracker) Succeed(seq int64, artifact domain.Artifact) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.Seq != seq || t.current.Phase != domain.UploadPhaseUploading {
		return false
	}
	t.current.Phase = domain.UploadPhaseSucceeded
	t.current.Artifact = &artifact
	return true
}

// Fail settles the tracked job with an error message. Stale sequence
// numbers are discarded silently.
func (t *Tracker) Fail(seq int64, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.Seq != seq || t.current.Phase != domain.UploadPhaseUploading {
		return false
	}
	t.current.Phase = domain.UploadPhaseFailed
	t.current.Error = message
	return true
}

// Reset returns a settled job to idle, restoring the drop target.
func (t *Tracker) Reset(seq int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.Seq != seq {
		return false
	}
	t.current = domain.UploadJob{Phase: domain.UploadPhaseIdle}
	return true
}

// Current returns a snapshot of the tracked job.
func (t *Tracker) Current() domain.UploadJob {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// InFlight reports whether an upload is currently outstanding.
func (t *Tracker) InFlight() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch t.current.Phase {
	case domain.UploadPhaseSelecting, domain.UploadPhaseUploading:
		return true
	default:
		return false
	}
}
