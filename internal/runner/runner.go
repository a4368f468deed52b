package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/scopbatch/internal/ctxlog"
	"github.com/vk/scopbatch/internal/procexec"
	"github.com/vk/scopbatch/internal/testcase"
)

// DefaultTimeout bounds a single generator invocation.
const DefaultTimeout = 60 * time.Second

// Options configures a Runner.
type Options struct {
	// Workers is the maximum number of concurrent invocations. Zero or
	// negative means runtime.NumCPU().
	Workers int
	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration
	// OnDone, when set, is called after every finished invocation. It may
	// be called from several goroutines at once.
	OnDone func(Outcome)
}

// Outcome is the result of generating code for one test case.
type Outcome struct {
	Case     testcase.TestCase
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
	Err      *GenerationError
}

// Succeeded reports whether the generator exited 0 for this case.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// GenerationError attributes a failed invocation to its test case.
type GenerationError struct {
	Case     testcase.TestCase
	ExitCode int
	Stderr   []byte
	Err      error
}

// Error implements the error interface for GenerationError.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s: %v", e.Case.OutputPath(), e.Err)
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Runner invokes the generator executable over a set of test cases.
type Runner struct {
	workers int
	timeout time.Duration
	onDone  func(Outcome)
}

// New returns a Runner configured by opts.
func New(opts Options) *Runner {
	r := &Runner{
		workers: opts.Workers,
		timeout: opts.Timeout,
		onDone:  opts.OnDone,
	}
	if r.workers <= 0 {
		r.workers = runtime.NumCPU()
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	return r
}

// Workers returns the effective pool size.
func (r *Runner) Workers() int {
	return r.workers
}

// Run invokes "<generator> <input> <output>" for every case and returns one
// Outcome per case, in the order of cases. Cases not yet started when ctx is
// cancelled are reported as failed with the context error.
func (r *Runner) Run(ctx context.Context, generator string, cases []testcase.TestCase) []Outcome {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Generating code.", "cases", len(cases), "workers", r.workers)

	outcomes := make([]Outcome, len(cases))
	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(cases); j++ {
				outcomes[j] = r.skipped(cases[j], err)
			}
			break
		}
		g.Go(func() error {
			outcomes[i] = r.invoke(ctx, generator, tc)
			if r.onDone != nil {
				r.onDone(outcomes[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if !o.Succeeded() {
			failed++
		}
	}
	logger.Info("🏁 Generation finished.", "succeeded", len(outcomes)-failed, "failed", failed)
	return outcomes
}

func (r *Runner) invoke(ctx context.Context, generator string, tc testcase.TestCase) Outcome {
	logger := ctxlog.FromContext(ctx).With("case", tc.Path())
	logger.Debug("Invoking generator.", "output", tc.OutputPath())

	res, err := procexec.Run(ctx, procexec.Command{
		Argv:    []string{generator, tc.Path(), tc.OutputPath()},
		Timeout: r.timeout,
	})

	out := Outcome{Case: tc, ExitCode: -1}
	if res != nil {
		out.ExitCode = res.ExitCode
		out.Stdout = res.Stdout
		out.Stderr = res.Stderr
		out.Duration = res.Duration
	}
	if err != nil {
		out.Err = &GenerationError{Case: tc, ExitCode: out.ExitCode, Stderr: out.Stderr, Err: err}
		if errors.Is(err, procexec.ErrTimeout) {
			logger.Error("Generator timed out.", "timeout", r.timeout)
		} else {
			logger.Error("Generator failed.", "exit_code", out.ExitCode, "error", err)
		}
		return out
	}

	logger.Debug("Generator succeeded.", "duration", out.Duration)
	return out
}

func (r *Runner) skipped(tc testcase.TestCase, cause error) Outcome {
	out := Outcome{
		Case:     tc,
		ExitCode: -1,
		Err:      &GenerationError{Case: tc, ExitCode: -1, Err: fmt.Errorf("not started: %w", cause)},
	}
	if r.onDone != nil {
		r.onDone(out)
	}
	return out
}
