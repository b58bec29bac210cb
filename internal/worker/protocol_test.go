package worker

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Message{Type: MsgResult, Result: []byte(`{"findings":[]}`)}
	if err := WriteMessage(&buf, &in); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	var out Message
	if err := ReadMessage(&buf, &out); err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if out.Type != MsgResult {
		t.Errorf("Type = %q, want %q", out.Type, MsgResult)
	}
	if string(out.Result) != `{"findings":[]}` {
		t.Errorf("Result = %s", out.Result)
	}
}

func TestReadMessageRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint32(MaxMessageSize+1)); err != nil {
		t.Fatalf("write length: %v", err)
	}

	var msg Message
	err := ReadMessage(&buf, &msg)
	if err == nil {
		t.Fatal("expected error for oversized frame")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("error = %v, want size rejection", err)
	}
}

func TestReadMessageTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint32(100)); err != nil {
		t.Fatalf("write length: %v", err)
	}
	buf.WriteString("short")

	var msg Message
	if err := ReadMessage(&buf, &msg); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}
