package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Outcome codes surfaced to callers so they can distinguish a deadline from a
// work failure programmatically.
const (
	CodeTimeout = "SCAN_TIMEOUT"
	CodeError   = "SCAN_ERROR"
)

// Outcome is the terminal result of a job. Exactly one Outcome is produced
// and observed per job; Status is one of completed, timed_out, or faulted.
type Outcome struct {
	JobID      string          `json:"job_id"`
	Status     string          `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Code       string          `json:"code,omitempty"`
	Message    string          `json:"message,omitempty"`
	TimeoutMS  int64           `json:"timeout_ms,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

// Completed builds the outcome for work that finished before its deadline.
func Completed(jobID string, result json.RawMessage) Outcome {
	return Outcome{
		JobID:  jobID,
		Status: StatusCompleted,
		Result: result,
	}
}

// TimedOut builds the outcome for a job whose deadline elapsed first. The
// message carries the numeric limit so callers can correlate it with logs.
func TimedOut(jobID string, timeout time.Duration) Outcome {
	ms := timeout.Milliseconds()
	return Outcome{
		JobID:     jobID,
		Status:    StatusTimedOut,
		Code:      CodeTimeout,
		Message:   fmt.Sprintf("scan %s exceeded the %dms deadline", jobID, ms),
		TimeoutMS: ms,
	}
}

// Faulted builds the outcome for work that failed, or for an execution unit
// that crashed or exited abnormally.
func Faulted(jobID, message string) Outcome {
	return Outcome{
		JobID:   jobID,
		Status:  StatusFaulted,
		Code:    CodeError,
		Message: message,
	}
}

// ScanError is a pre-classified execution error. A work function that detects
// its own deadline may return one carrying CodeTimeout; coordinators propagate
// the classification unchanged instead of wrapping it a second time.
type ScanError struct {
	Code      string
	Message   string
	TimeoutMS int64
}

func (e *ScanError) Error() string { return e.Message }
