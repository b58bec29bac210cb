package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewIDLength(t *testing.T) {
	id := NewID()
	if len(id) != 26 {
		t.Errorf("ID length = %d, want 26 (ULID)", len(id))
	}
}

func TestNewJobGeneratesID(t *testing.T) {
	j := NewJob("", []byte("input"), 0)
	if j.ID == "" {
		t.Fatal("expected generated job ID")
	}
	if len(j.ID) != 26 {
		t.Errorf("generated ID length = %d, want 26", len(j.ID))
	}
}

func TestNewJobKeepsCallerID(t *testing.T) {
	j := NewJob("caller-id", []byte("input"), 5*time.Second)
	if j.ID != "caller-id" {
		t.Errorf("ID = %q, want caller-id", j.ID)
	}
	if j.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", j.Timeout)
	}
}

func TestCompletedOutcome(t *testing.T) {
	out := Completed("job-1", json.RawMessage(`{"findings":[]}`))
	if out.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", out.Status, StatusCompleted)
	}
	if out.Code != "" {
		t.Errorf("Code = %q, want empty for completed", out.Code)
	}
	if string(out.Result) != `{"findings":[]}` {
		t.Errorf("Result = %s", out.Result)
	}
}

func TestTimedOutOutcome(t *testing.T) {
	out := TimedOut("job-2", 1500*time.Millisecond)
	if out.Status != StatusTimedOut {
		t.Errorf("Status = %q, want %q", out.Status, StatusTimedOut)
	}
	if out.Code != CodeTimeout {
		t.Errorf("Code = %q, want %q", out.Code, CodeTimeout)
	}
	if out.TimeoutMS != 1500 {
		t.Errorf("TimeoutMS = %d, want 1500", out.TimeoutMS)
	}
	if !strings.Contains(out.Message, "1500ms") {
		t.Errorf("message %q does not state the limit in ms", out.Message)
	}
	if !strings.Contains(out.Message, "job-2") {
		t.Errorf("message %q does not carry the job ID", out.Message)
	}
}

func TestFaultedOutcome(t *testing.T) {
	out := Faulted("job-3", "worker exploded")
	if out.Status != StatusFaulted {
		t.Errorf("Status = %q, want %q", out.Status, StatusFaulted)
	}
	if out.Code != CodeError {
		t.Errorf("Code = %q, want %q", out.Code, CodeError)
	}
	if out.Message != "worker exploded" {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestScanErrorAsError(t *testing.T) {
	var err error = &ScanError{Code: CodeTimeout, Message: "deadline hit", TimeoutMS: 200}

	var se *ScanError
	if !errors.As(err, &se) {
		t.Fatal("errors.As failed to unwrap ScanError")
	}
	if se.Code != CodeTimeout {
		t.Errorf("Code = %q, want %q", se.Code, CodeTimeout)
	}
	if err.Error() != "deadline hit" {
		t.Errorf("Error() = %q", err.Error())
	}
}
