package fingerprint

import (
	"fmt"
	"sync/atomic"
	"time"

	"orphansweep/pkg/log"
)

// emitInterval limits how often progress lines are written. Progress is
// advisory output only; it never influences results.
const emitInterval = 2 * time.Second

// tracker accumulates per-batch progress counters. All counters are atomic
// so workers can update them without coordination.
type tracker struct {
	label   string
	total   int
	workers int
	log     log.LoggerService
	start   time.Time

	completed atomic.Int64
	failed    atomic.Int64
	cacheHits atomic.Int64
	lastEmit  atomic.Int64
}

func newTracker(label string, total, workers int, logger log.LoggerService) *tracker {
	t := &tracker{
		label:   label,
		total:   total,
		workers: workers,
		log:     logger,
		start:   time.Now(),
	}
	t.lastEmit.Store(t.start.UnixNano())
	return t
}

// Done records one completed fingerprint.
func (t *tracker) Done(cached bool) {
	if cached {
		t.cacheHits.Add(1)
	}
	t.bump()
}

// Fail records one record excluded by an access error.
func (t *tracker) Fail() {
	t.failed.Add(1)
	t.bump()
}

func (t *tracker) bump() {
	completed := t.completed.Add(1)

	now := time.Now().UnixNano()
	last := t.lastEmit.Load()
	if now-last < int64(emitInterval) {
		return
	}
	if !t.lastEmit.CompareAndSwap(last, now) {
		return
	}

	t.emit(completed)
}

func (t *tracker) emit(completed int64) {
	elapsed := time.Since(t.start)
	percent := float64(completed) / float64(t.total) * 100

	rate := 0.0
	if elapsed > 0 {
		rate = float64(completed) / elapsed.Seconds()
	}

	eta := "?"
	if rate > 0 {
		remaining := time.Duration(float64(t.total-int(completed))/rate) * time.Second
		eta = formatETA(remaining)
	}

	t.log.Info("Progress %s: %d/%d (%.1f%%) | %.1f files/s | %d workers | ETA %s",
		t.label, completed, t.total, percent, rate, t.workers, eta)
}

// Finish logs the final batch summary.
func (t *tracker) Finish() {
	elapsed := time.Since(t.start)
	t.log.Info("Finished %s: %d fingerprinted, %d cache hits, %d skipped in %.1fs",
		t.label, t.completed.Load()-t.failed.Load(), t.cacheHits.Load(), t.failed.Load(), elapsed.Seconds())
}

func formatETA(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fmin", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}
