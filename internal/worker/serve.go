package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/forgelabs/scanforge/internal/model"
)

// Serve handles one job on the given streams: it reads the framed request
// from r, runs work on the request input, and writes a single terminal
// message to w. The returned code is the process exit status.
//
// A pre-classified *model.ScanError keeps its code on the wire; any other
// failure is reported as a generic scan error. A panic in the work function
// is converted to an error message rather than crashing without a frame.
func Serve(r io.Reader, w io.Writer, work func(context.Context, []byte) (json.RawMessage, error)) int {
	var req Request
	if err := ReadMessage(r, &req); err != nil {
		_ = WriteMessage(w, &Message{
			Type:  MsgError,
			Code:  model.CodeError,
			Error: fmt.Sprintf("read request: %v", err),
		})
		return 1
	}

	result, err := runWork(work, req.Input)
	if err != nil {
		msg := Message{Type: MsgError, Code: model.CodeError, Error: err.Error()}
		var se *model.ScanError
		if errors.As(err, &se) && se.Code != "" {
			msg.Code = se.Code
		}
		_ = WriteMessage(w, &msg)
		return 1
	}

	if err := WriteMessage(w, &Message{Type: MsgResult, Result: result}); err != nil {
		return 1
	}
	return 0
}

func runWork(work func(context.Context, []byte) (json.RawMessage, error), input []byte) (result json.RawMessage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("work panicked: %v", rec)
		}
	}()
	return work(context.Background(), input)
}
