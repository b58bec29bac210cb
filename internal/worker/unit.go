package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Unit is a handle to one spawned worker process. It is owned exclusively by
// a single coordinator for the duration of one job and is never reused.
type Unit struct {
	cmd      *exec.Cmd
	messages chan Message
	exited   chan int
	killOnce sync.Once
}

// Spawn starts the worker binary, delivers the framed request on its stdin,
// and begins decoding frames from its stdout. The terminal message, if the
// worker produces one, is always enqueued before the exit notification is
// delivered, so a clean exit can never race past its own result.
func Spawn(ctx context.Context, bin string, req Request) (*Unit, error) {
	cmd := exec.CommandContext(ctx, bin)
	cmd.Stderr = io.Discard

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker: %w", err)
	}

	u := &Unit{
		cmd:      cmd,
		messages: make(chan Message, 1),
		exited:   make(chan int, 1),
	}

	go func() {
		// A worker that dies before reading its request surfaces through the
		// exit path; the write error itself carries no extra information.
		_ = WriteMessage(stdin, &req)
		stdin.Close()
	}()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		var msg Message
		if err := ReadMessage(stdout, &msg); err != nil {
			// EOF or a truncated frame without a terminal message. Drain so
			// the process can be reaped; the exit code tells the story.
			io.Copy(io.Discard, stdout)
			return
		}
		u.messages <- msg
		io.Copy(io.Discard, stdout)
	}()

	go func() {
		<-readerDone
		err := cmd.Wait()
		u.exited <- exitStatus(err)
	}()

	return u, nil
}

// Messages returns the channel carrying the worker's terminal message.
// At most one message is ever delivered.
func (u *Unit) Messages() <-chan Message {
	return u.messages
}

// Exited returns the channel carrying the worker's exit code, delivered once
// after the process ends and its stdout has been fully drained.
func (u *Unit) Exited() <-chan int {
	return u.exited
}

// Kill forcibly terminates the worker process. It is best-effort, idempotent,
// and does not wait for the process to be reaped; a call after natural exit
// is a no-op.
func (u *Unit) Kill() {
	u.killOnce.Do(func() {
		if u.cmd.Process != nil {
			_ = u.cmd.Process.Kill()
		}
	})
}

// exitStatus maps a Wait error to a process exit code. -1 means the process
// did not exit on its own, e.g. it was killed.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
