// Package progress reports byte throughput of long running operations.
package progress

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultInterval is how often a running tracker reports
const DefaultInterval = time.Second

// Tracker counts processed bytes for one operation and logs the count
// periodically until stopped. A nil *Tracker is valid and does nothing.
type Tracker struct {
	name     string
	total    uint64
	logger   *slog.Logger
	interval time.Duration

	processed atomic.Uint64
	start     time.Time
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// Start begins tracking an operation expected to process total bytes.
// Zero means the total is unknown.
func Start(logger *slog.Logger, name string, total uint64, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t := &Tracker{
		name:     name,
		total:    total,
		logger:   logger,
		interval: interval,
		start:    time.Now(),
		done:     make(chan struct{}),
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// Add records n processed bytes
func (t *Tracker) Add(n uint64) {
	if t == nil || n == 0 {
		return
	}
	t.processed.Add(n)
}

// Processed returns the bytes recorded so far
func (t *Tracker) Processed() uint64 {
	if t == nil {
		return 0
	}
	return t.processed.Load()
}

// Stop ends the reporting loop and logs a summary
func (t *Tracker) Stop() {
	if t == nil {
		return
	}
	t.stopOnce.Do(func() {
		close(t.done)
		t.wg.Wait()
		elapsed := time.Since(t.start)
		processed := t.processed.Load()
		t.logger.Info("completed",
			"operation", t.name,
			"processed", humanize.IBytes(processed),
			"elapsed", elapsed.Round(time.Millisecond),
			"rate", rate(processed, elapsed),
		)
	})
}

func (t *Tracker) run() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	var prev uint64
	for {
		select {
		case <-ticker.C:
			current := t.processed.Load()
			attrs := []any{
				"operation", t.name,
				"processed", humanize.IBytes(current),
				"rate", rate(current-prev, t.interval),
			}
			if t.total > 0 {
				attrs = append(attrs,
					"total", humanize.IBytes(t.total),
					"percent", float64(current)/float64(t.total)*100,
				)
				if current > prev && current < t.total {
					remaining := time.Duration(float64(t.total-current) / float64(current-prev) * float64(t.interval))
					attrs = append(attrs, "eta", remaining.Round(time.Second))
				}
			}
			t.logger.Info("progress", attrs...)
			prev = current
		case <-t.done:
			return
		}
	}
}

func rate(n uint64, d time.Duration) string {
	if d <= 0 {
		return humanize.IBytes(n) + "/s"
	}
	return humanize.IBytes(uint64(float64(n)/d.Seconds())) + "/s"
}

// Writer is a writer that records bytes written through it on a tracker
type Writer struct {
	W       io.Writer
	Tracker *Tracker
}

// Write implements io.Writer and tracks bytes written
func (pw *Writer) Write(p []byte) (n int, err error) {
	n, err = pw.W.Write(p)
	if n > 0 {
		pw.Tracker.Add(uint64(n))
	}
	return
}
