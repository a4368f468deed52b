package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/vk/scopbatch/internal/ctxlog"
	"github.com/vk/scopbatch/internal/procexec"
)

// Spec describes how to build the generator.
type Spec struct {
	Compiler  string
	Flags     []string
	Source    string
	Libraries []string
	Output    string
	Dir       string // working directory of the toolchain; empty means the current one
	Timeout   time.Duration
}

// Argv returns the toolchain argument vector.
func (s Spec) Argv() []string {
	argv := make([]string, 0, 4+len(s.Flags)+len(s.Libraries))
	argv = append(argv, s.Compiler)
	argv = append(argv, s.Flags...)
	argv = append(argv, s.Source)
	for _, lib := range s.Libraries {
		argv = append(argv, "-l"+lib)
	}
	return append(argv, "-o", s.Output)
}

func (s Spec) validate() error {
	switch {
	case s.Compiler == "":
		return errors.New("compiler must not be empty")
	case s.Source == "":
		return errors.New("source must not be empty")
	case s.Output == "":
		return errors.New("output must not be empty")
	}
	return nil
}

// BuildError reports a failed toolchain invocation. ExitCode is -1 when the
// toolchain never produced an exit status (start failure or timeout).
type BuildError struct {
	Argv     []string
	ExitCode int
	Stderr   []byte
	Err      error
}

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	return fmt.Sprintf("building generator with %q: %v", strings.Join(e.Argv, " "), e.Err)
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Build runs the toolchain once and returns a handle to the produced
// executable. A stale executable at the output path is removed first so
// that at most one artifact exists during the run.
func Build(ctx context.Context, spec Spec) (*Artifact, error) {
	logger := ctxlog.FromContext(ctx)

	if err := spec.validate(); err != nil {
		return nil, &BuildError{Argv: spec.Argv(), ExitCode: -1, Err: err}
	}

	output := spec.Output
	if !filepath.IsAbs(output) {
		output = filepath.Join(spec.Dir, output)
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, &BuildError{Argv: spec.Argv(), ExitCode: -1, Err: err}
	}

	if info, err := os.Lstat(abs); err == nil {
		if !isExecutableFile(info) {
			return nil, &BuildError{Argv: spec.Argv(), ExitCode: -1, Err: fmt.Errorf("refusing to overwrite %s: existing %s is not an executable file", abs, info.Mode())}
		}
		logger.Warn("Removing stale generator executable before build.", "path", abs, "size", info.Size(), "mode", info.Mode().String())
		if err := os.Remove(abs); err != nil {
			return nil, &BuildError{Argv: spec.Argv(), ExitCode: -1, Err: fmt.Errorf("removing stale artifact: %w", err)}
		}
	}

	argv := spec.Argv()
	logger.Info("🔨 Building generator.", "argv", argv)

	res, err := procexec.Run(ctx, procexec.Command{
		Argv:    argv,
		Dir:     spec.Dir,
		Timeout: spec.Timeout,
	})
	if err != nil {
		be := &BuildError{Argv: argv, ExitCode: -1, Err: err}
		if res != nil {
			be.ExitCode = res.ExitCode
			be.Stderr = res.Stderr
		}
		// The toolchain may have left a partial file behind.
		_ = os.Remove(abs)
		return nil, be
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, &BuildError{Argv: argv, ExitCode: 0, Stderr: res.Stderr, Err: fmt.Errorf("toolchain succeeded but produced no executable: %w", err)}
	}
	if info.IsDir() {
		return nil, &BuildError{Argv: argv, ExitCode: 0, Stderr: res.Stderr, Err: fmt.Errorf("build output %s is a directory", abs)}
	}

	logger.Info("Generator built.", "path", abs, "duration", res.Duration)
	return &Artifact{path: abs}, nil
}

// isExecutableFile reports whether info describes a regular file that a
// previous build could have produced. Windows has no exec bits.
func isExecutableFile(info os.FileInfo) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
