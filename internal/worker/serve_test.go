package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/forgelabs/scanforge/internal/model"
)

func frameRequest(t *testing.T, req Request) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteMessage(&buf, &req); err != nil {
		t.Fatalf("frame request: %v", err)
	}
	return &buf
}

func readReply(t *testing.T, out *bytes.Buffer) Message {
	t.Helper()
	var msg Message
	if err := ReadMessage(out, &msg); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return msg
}

func TestServeSuccess(t *testing.T) {
	in := frameRequest(t, Request{JobID: "job-1", Input: []byte("package main")})
	var out bytes.Buffer

	code := Serve(in, &out, func(_ context.Context, input []byte) (json.RawMessage, error) {
		if string(input) != "package main" {
			t.Errorf("input = %q", input)
		}
		return json.RawMessage(`{"findings":[]}`), nil
	})

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	msg := readReply(t, &out)
	if msg.Type != MsgResult {
		t.Errorf("Type = %q, want %q", msg.Type, MsgResult)
	}
	if string(msg.Result) != `{"findings":[]}` {
		t.Errorf("Result = %s", msg.Result)
	}
}

func TestServeWorkError(t *testing.T) {
	in := frameRequest(t, Request{JobID: "job-1"})
	var out bytes.Buffer

	code := Serve(in, &out, func(context.Context, []byte) (json.RawMessage, error) {
		return nil, errors.New("rule engine broke")
	})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	msg := readReply(t, &out)
	if msg.Type != MsgError {
		t.Errorf("Type = %q, want %q", msg.Type, MsgError)
	}
	if msg.Code != model.CodeError {
		t.Errorf("Code = %q, want %q", msg.Code, model.CodeError)
	}
	if msg.Error != "rule engine broke" {
		t.Errorf("Error = %q", msg.Error)
	}
}

func TestServePreclassifiedTimeout(t *testing.T) {
	in := frameRequest(t, Request{JobID: "job-1"})
	var out bytes.Buffer

	Serve(in, &out, func(context.Context, []byte) (json.RawMessage, error) {
		return nil, &model.ScanError{Code: model.CodeTimeout, Message: "internal deadline", TimeoutMS: 250}
	})

	msg := readReply(t, &out)
	if msg.Code != model.CodeTimeout {
		t.Errorf("Code = %q, want %q (classification preserved)", msg.Code, model.CodeTimeout)
	}
}

func TestServeWorkPanic(t *testing.T) {
	in := frameRequest(t, Request{JobID: "job-1"})
	var out bytes.Buffer

	code := Serve(in, &out, func(context.Context, []byte) (json.RawMessage, error) {
		panic("nil map write")
	})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	msg := readReply(t, &out)
	if msg.Type != MsgError {
		t.Errorf("Type = %q, want %q", msg.Type, MsgError)
	}
	if !strings.Contains(msg.Error, "nil map write") {
		t.Errorf("Error = %q, want panic message", msg.Error)
	}
}

func TestServeMalformedRequest(t *testing.T) {
	var out bytes.Buffer

	code := Serve(strings.NewReader("garbage"), &out, func(context.Context, []byte) (json.RawMessage, error) {
		t.Fatal("work must not run on malformed request")
		return nil, nil
	})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	msg := readReply(t, &out)
	if msg.Type != MsgError {
		t.Errorf("Type = %q, want %q", msg.Type, MsgError)
	}
}
