package model

import "time"

// Execution mode constants.
const (
	ModeInline   = "inline"
	ModeIsolated = "isolated"
)

// Scan status constants. Completed, timed_out, and faulted are terminal.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusTimedOut  = "timed_out"
	StatusFaulted   = "faulted"
)

// Job is one request to execute a bounded-time unit of analysis work.
// The coordinator treats Input as an opaque blob; it only manages the work's
// lifetime against the resolved deadline.
type Job struct {
	ID      string
	Input   []byte
	Timeout time.Duration // per-job override; zero or negative means use the configured default
}

// NewJob builds a job for the given input, generating an ID when the caller
// does not supply one. The ID is used for log and result correlation only.
func NewJob(id string, input []byte, timeout time.Duration) Job {
	if id == "" {
		id = NewID()
	}
	return Job{ID: id, Input: input, Timeout: timeout}
}

// Scan is the persisted record of one submitted job and its outcome.
type Scan struct {
	ID         string     `json:"id"`
	Mode       string     `json:"mode"`
	Status     string     `json:"status"`
	Code       string     `json:"code,omitempty"`
	Message    string     `json:"message,omitempty"`
	Result     []byte     `json:"result,omitempty"`
	TimeoutMS  int64      `json:"timeout_ms"`
	DurationMS *int64     `json:"duration_ms,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
