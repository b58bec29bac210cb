package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/forgelabs/scanforge/internal/model"
)

// Inline races the work function directly against the deadline timer inside
// the caller's process. It is the lowest-overhead variant, with a documented
// limitation: work that misses its deadline is not interrupted — it keeps
// running to completion and its late result is discarded.
type Inline struct {
	work           Work
	defaultTimeout time.Duration
	logger         *slog.Logger
}

// NewInline creates an inline coordinator around the given work function.
// defaultTimeout is the process-wide default; zero defers to the fallback.
func NewInline(work Work, defaultTimeout time.Duration, logger *slog.Logger) *Inline {
	return &Inline{
		work:           work,
		defaultTimeout: defaultTimeout,
		logger:         logger,
	}
}

// workSignal carries the work function's completion or failure.
type workSignal struct {
	result json.RawMessage
	err    error
}

// Execute runs the job and returns its single outcome. Whichever of work
// completion, work failure, or timer fire arrives first wins; the losing
// signal is never observed. A panic in the work function resolves as a fault.
func (c *Inline) Execute(ctx context.Context, job model.Job) model.Outcome {
	timeout := ResolveTimeout(job.Timeout, c.defaultTimeout, FallbackTimeout)
	start := time.Now()

	c.logger.Info("scan started",
		"job_id", job.ID,
		"mode", model.ModeInline,
		"timeout_ms", timeout.Milliseconds(),
	)

	// Buffered so the work goroutine can always deliver its signal and exit,
	// even when the deadline has already won the race.
	done := make(chan workSignal, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- workSignal{err: fmt.Errorf("work panicked: %v", rec)}
			}
		}()
		result, err := c.work(ctx, job.Input)
		done <- workSignal{result: result, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var out model.Outcome
	select {
	case sig := <-done:
		if sig.err != nil {
			out = classify(job.ID, timeout, sig.err)
		} else {
			out = model.Completed(job.ID, sig.result)
		}
	case <-timer.C:
		// The work keeps running; its late signal lands in the buffered
		// channel and is dropped when the channel is collected.
		out = model.TimedOut(job.ID, timeout)
	case <-ctx.Done():
		out = model.Faulted(job.ID, fmt.Sprintf("scan canceled: %v", ctx.Err()))
	}

	finish(&out, start)
	observe(c.logger, model.ModeInline, out)
	return out
}
