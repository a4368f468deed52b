// Package report summarises a harness run for humans.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/vk/scopbatch/internal/runner"
	"github.com/vk/scopbatch/internal/testcase"
)

// Failure pairs a failed case with the reason it failed.
type Failure struct {
	Case testcase.TestCase
	Err  error
}

// Report is the final summary of a run. Cases are sorted by path so that
// repeated runs over the same tree print identical reports.
type Report struct {
	Discovered []testcase.TestCase
	Succeeded  []testcase.TestCase
	Failed     []Failure
	CleanupErr error
}

// New builds a Report from the discovered cases and the runner outcomes.
func New(discovered []testcase.TestCase, outcomes []runner.Outcome) *Report {
	r := &Report{Discovered: append([]testcase.TestCase(nil), discovered...)}
	for _, o := range outcomes {
		if o.Succeeded() {
			r.Succeeded = append(r.Succeeded, o.Case)
		} else {
			r.Failed = append(r.Failed, Failure{Case: o.Case, Err: o.Err})
		}
	}

	byPath := func(cs []testcase.TestCase) {
		sort.Slice(cs, func(i, j int) bool { return cs[i].Path() < cs[j].Path() })
	}
	byPath(r.Discovered)
	byPath(r.Succeeded)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Case.Path() < r.Failed[j].Case.Path() })
	return r
}

// OK reports whether every discovered case was generated successfully.
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Succeeded) == len(r.Discovered)
}

// Write prints the report: the discovered inputs first, then the outcome
// of each one.
func (r *Report) Write(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("Discovered %d test case(s):\n", len(r.Discovered))
	for _, tc := range r.Discovered {
		ew.printf("  %s\n", tc.Path())
	}

	ew.printf("\nSucceeded: %d\n", len(r.Succeeded))
	for _, tc := range r.Succeeded {
		ew.printf("  ok    %s -> %s\n", tc.Path(), tc.OutputPath())
	}

	ew.printf("Failed: %d\n", len(r.Failed))
	for _, f := range r.Failed {
		ew.printf("  FAIL  %s: %v\n", f.Case.Path(), f.Err)
	}

	if r.CleanupErr != nil {
		ew.printf("\nWarning: %v\n", r.CleanupErr)
	}
	return ew.err
}

// errWriter remembers the first write error so Write can report it once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
