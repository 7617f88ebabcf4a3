package summarize

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quicky/internal/domain"
)

// TestKeyIsStableAndFormatSensitive verifies key derivation.
func TestKeyIsStableAndFormatSensitive(t *testing.T) {
	a := Key("content", domain.FormatBullets)
	b := Key("content", domain.FormatBullets)
	c := Key("content", domain.FormatSlides)

	if a != b {
		t.Fatalf("same input produced different keys: %s vs %s", a, b)
	}
	if a == c {
		t.Fatal("different formats produced the same key")
	}
}

// TestGetOrComputeCollapsesConcurrentCallers verifies singleflight dedup.
func TestGetOrComputeCollapsesConcurrentCallers(t *testing.T) {
	cache := NewCache(time.Minute)

	var computes int32
	release := make(chan struct{})
	compute := func() (domain.Summary, error) {
		atomic.AddInt32(&computes, 1)
		<-release
		return domain.Summary{Text: "shared"}, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]domain.Summary, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			summary, err := cache.GetOrCompute("key", compute)
			if err != nil {
				t.Errorf("caller %d: %v", idx, err)
				return
			}
			results[idx] = summary
		}(i)
	}

	// Give the callers time to pile up on the same key before releasing.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&computes); got != 1 {
		t.Fatalf("compute ran %d times, want 1", got)
	}
	for idx, summary := range results {
		if summary.Text != "shared" {
			t.Fatalf("caller %d result = %+v", idx, summary)
		}
	}
}
