package procexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned (wrapped) when a command outlives its timeout.
var ErrTimeout = errors.New("process timed out")

// maxCapture bounds how much of each output stream is kept in memory;
// the tail of the stream is kept.
const maxCapture = 64 * 1024

// waitDelay bounds how long Run waits for output pipes after a kill.
const waitDelay = 2 * time.Second

// Command describes a single external process invocation. Argv[0] is the
// program; it is resolved through PATH unless it contains a separator.
type Command struct {
	Argv    []string
	Dir     string
	Env     []string // nil inherits the parent environment
	Timeout time.Duration
}

// Result holds what a finished process left behind.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// ExitError reports a process that ran to completion with a non-zero status.
type ExitError struct {
	Argv   []string
	Code   int
	Stderr []byte
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Argv[0], e.Code)
	if tail := Tail(e.Stderr, 512); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// Run executes the command and waits for it. A nil error means exit status 0.
// A non-zero status is reported as *ExitError alongside a populated Result;
// a timeout is reported as an error wrapping ErrTimeout.
func Run(ctx context.Context, c Command) (*Result, error) {
	if len(c.Argv) == 0 || c.Argv[0] == "" {
		return nil, errors.New("procexec: empty argument vector")
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)

	stdout := &tailBuffer{limit: maxCapture}
	stderr := &tailBuffer{limit: maxCapture}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err == nil {
		return res, nil
	}

	res.ExitCode = -1
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, fmt.Errorf("%s after %s: %w", c.Argv[0], c.Timeout, ErrTimeout)
		}
		return res, fmt.Errorf("%s cancelled: %w", c.Argv[0], ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{Argv: c.Argv, Code: res.ExitCode, Stderr: res.Stderr}
	}
	return res, fmt.Errorf("failed to start %s: %w", c.Argv[0], err)
}

// Tail returns the last n bytes of b as trimmed text.
func Tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return strings.TrimSpace(string(b))
}

// tailBuffer keeps only the last limit bytes written to it, where the
// final diagnostics live, and reports every write as successful so the
// child never blocks on a full pipe.
type tailBuffer struct {
	data  []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= b.limit {
		b.data = append(b.data[:0], p[n-b.limit:]...)
		return n, nil
	}
	b.data = append(b.data, p...)
	if over := len(b.data) - b.limit; over > 0 {
		copy(b.data, b.data[over:])
		b.data = b.data[:b.limit]
	}
	return n, nil
}

func (b *tailBuffer) Bytes() []byte {
	return b.data
}
