package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/forgelabs/scanforge/internal/model"
)

// Work is the pluggable analysis function a coordinator runs against a
// deadline. The input is an opaque blob; the coordinator imposes no contract
// on the function's internals and does not assume it cooperates with
// cancellation.
type Work func(ctx context.Context, input []byte) (json.RawMessage, error)

// Coordinator executes one job against its effective deadline and delivers
// exactly one outcome. Implementations are stateless across jobs and safe for
// concurrent use.
type Coordinator interface {
	Execute(ctx context.Context, job model.Job) model.Outcome
}

// classify converts a work error into an outcome. An error that already
// carries a timeout classification keeps it instead of being wrapped into a
// fault a second time.
func classify(jobID string, effective time.Duration, err error) model.Outcome {
	var se *model.ScanError
	if errors.As(err, &se) && se.Code == model.CodeTimeout {
		d := time.Duration(se.TimeoutMS) * time.Millisecond
		if d <= 0 {
			d = effective
		}
		return model.TimedOut(jobID, d)
	}
	return model.Faulted(jobID, err.Error())
}

// finish stamps the outcome with the wall-clock duration of the job.
func finish(out *model.Outcome, start time.Time) {
	out.DurationMS = time.Since(start).Milliseconds()
}

// observe records the resolution in the log and metrics. Timeouts are logged
// at warn level so they stand out during correlation by job ID.
func observe(logger *slog.Logger, mode string, out model.Outcome) {
	switch out.Status {
	case model.StatusCompleted:
		logger.Info("scan completed", "job_id", out.JobID, "mode", mode, "duration_ms", out.DurationMS)
	case model.StatusTimedOut:
		logger.Warn("scan timed out", "job_id", out.JobID, "mode", mode, "timeout_ms", out.TimeoutMS)
	default:
		logger.Error("scan faulted", "job_id", out.JobID, "mode", mode, "error", out.Message)
	}

	scansTotal.WithLabelValues(mode, out.Status).Inc()
	scanDuration.WithLabelValues(mode).Observe(float64(out.DurationMS) / 1000)
}
