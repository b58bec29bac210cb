package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/forgelabs/scanforge/internal/model"
	"github.com/forgelabs/scanforge/internal/worker"
)

// Isolated runs each job in its own worker subprocess and force-kills the
// process when the deadline fires, guaranteeing that a runaway scan stops
// consuming CPU and memory. The job input is transferred to the worker at
// spawn time; coordinator and worker share no mutable state.
type Isolated struct {
	workerBin      string
	defaultTimeout time.Duration
	logger         *slog.Logger
}

// NewIsolated creates an isolated coordinator that spawns workerBin once per
// job. defaultTimeout is the process-wide default; zero defers to the fallback.
func NewIsolated(workerBin string, defaultTimeout time.Duration, logger *slog.Logger) *Isolated {
	return &Isolated{
		workerBin:      workerBin,
		defaultTimeout: defaultTimeout,
		logger:         logger,
	}
}

// Execute runs the job in a fresh worker process and returns its single
// outcome. Four signals race: the worker's terminal message, the worker's
// exit, the deadline timer, and caller cancellation. The first one observed
// wins. On timeout the worker is killed fire-and-forget; the kill is not
// confirmed before the outcome is returned, but the handle never outlives
// this call.
func (c *Isolated) Execute(ctx context.Context, job model.Job) model.Outcome {
	timeout := ResolveTimeout(job.Timeout, c.defaultTimeout, FallbackTimeout)
	start := time.Now()

	c.logger.Info("scan started",
		"job_id", job.ID,
		"mode", model.ModeIsolated,
		"timeout_ms", timeout.Milliseconds(),
	)

	unit, err := worker.Spawn(ctx, c.workerBin, worker.Request{
		JobID:     job.ID,
		Input:     job.Input,
		TimeoutMS: timeout.Milliseconds(),
	})
	if err != nil {
		out := model.Faulted(job.ID, fmt.Sprintf("spawn worker: %v", err))
		finish(&out, start)
		observe(c.logger, model.ModeIsolated, out)
		return out
	}

	// The unit must be terminated or naturally exited by the time this call
	// returns; Kill is idempotent and a no-op after a natural exit.
	defer unit.Kill()

	activeWorkers.Inc()
	defer activeWorkers.Dec()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var out model.Outcome
	select {
	case msg := <-unit.Messages():
		out = c.resolveMessage(job, timeout, msg)
	case code := <-unit.Exited():
		// A terminal message enqueued before the exit notification takes
		// precedence over the exit code.
		select {
		case msg := <-unit.Messages():
			out = c.resolveMessage(job, timeout, msg)
		default:
			out = model.Faulted(job.ID, fmt.Sprintf("worker exited with code %d before reporting a result", code))
		}
	case <-timer.C:
		unit.Kill()
		out = model.TimedOut(job.ID, timeout)
	case <-ctx.Done():
		unit.Kill()
		out = model.Faulted(job.ID, fmt.Sprintf("scan canceled: %v", ctx.Err()))
	}

	finish(&out, start)
	observe(c.logger, model.ModeIsolated, out)
	return out
}

// resolveMessage maps a worker terminal message to an outcome, preserving a
// pre-classified timeout code instead of re-wrapping it.
func (c *Isolated) resolveMessage(job model.Job, timeout time.Duration, msg worker.Message) model.Outcome {
	switch msg.Type {
	case worker.MsgResult:
		return model.Completed(job.ID, msg.Result)
	case worker.MsgError:
		if msg.Code == model.CodeTimeout {
			return model.TimedOut(job.ID, timeout)
		}
		return model.Faulted(job.ID, msg.Error)
	default:
		return model.Faulted(job.ID, fmt.Sprintf("unknown worker message type %q", msg.Type))
	}
}
