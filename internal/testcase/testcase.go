package testcase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/scopbatch/internal/ctxlog"
	"github.com/vk/scopbatch/internal/fsutil"
)

const (
	// DefaultInputSuffix marks a file as a test case.
	DefaultInputSuffix = ".clay.scop"
	// DefaultOutputSuffix is appended to the stem of each generated file.
	DefaultOutputSuffix = ".clay.c"
)

// TestCase is a discovered input file. It is immutable once discovered.
type TestCase struct {
	path         string
	inputSuffix  string
	outputSuffix string
}

// New returns a TestCase for path, which must end with inputSuffix.
func New(path, inputSuffix, outputSuffix string) (TestCase, error) {
	if inputSuffix == "" || outputSuffix == "" {
		return TestCase{}, fmt.Errorf("input and output suffixes must not be empty")
	}
	if !strings.HasSuffix(path, inputSuffix) {
		return TestCase{}, fmt.Errorf("path %q does not name a %s file", path, inputSuffix)
	}
	return TestCase{path: path, inputSuffix: inputSuffix, outputSuffix: outputSuffix}, nil
}

// Path returns the input file path as discovered.
func (tc TestCase) Path() string {
	return tc.path
}

// OutputPath returns the sibling file the generator should write: the same
// directory and stem, with the output suffix in place of the input suffix.
func (tc TestCase) OutputPath() string {
	return strings.TrimSuffix(tc.path, tc.inputSuffix) + tc.outputSuffix
}

// String implements fmt.Stringer.
func (tc TestCase) String() string {
	return tc.path
}

// DiscoveryError reports that the test root could not be walked.
type DiscoveryError struct {
	Root string
	Err  error
}

// Error implements the error interface for DiscoveryError.
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("cannot discover test cases under %s: %v", e.Root, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Discover walks root and returns every regular file whose name ends with
// inputSuffix, in walk order. An empty result is not an error. A symlinked
// root is followed. Unreadable subdirectories are logged and skipped.
func Discover(ctx context.Context, root, inputSuffix, outputSuffix string) ([]TestCase, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Discovering test cases.", "root", root, "suffix", inputSuffix)

	info, err := os.Stat(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	paths, err := fsutil.FindFilesBySuffix(root, inputSuffix, func(path string, err error) {
		logger.Warn("Skipping unreadable path.", "path", path, "error", err)
	})
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	cases := make([]TestCase, 0, len(paths))
	for _, p := range paths {
		tc, err := New(p, inputSuffix, outputSuffix)
		if err != nil {
			return nil, &DiscoveryError{Root: root, Err: err}
		}
		cases = append(cases, tc)
	}

	logger.Debug("Discovery finished.", "count", len(cases))
	return cases, nil
}
