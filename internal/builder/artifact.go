package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/vk/scopbatch/internal/ctxlog"
)

// Artifact is the transient generator executable. It is read-only after
// Build returns and is destroyed by Remove.
type Artifact struct {
	path string

	once      sync.Once
	removeErr error
}

// Path returns the absolute path of the executable.
func (a *Artifact) Path() string {
	return a.path
}

// CleanupError reports that the executable could not be deleted.
type CleanupError struct {
	Path string
	Err  error
}

// Error implements the error interface for CleanupError.
func (e *CleanupError) Error() string {
	return fmt.Sprintf("removing generator executable %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CleanupError) Unwrap() error {
	return e.Err
}

// Remove deletes the executable. Only the first call touches the
// filesystem; later calls return the first result. An executable that is
// already gone is not an error. Failures are logged, never fatal.
func (a *Artifact) Remove(ctx context.Context) error {
	a.once.Do(func() {
		logger := ctxlog.FromContext(ctx)
		err := os.Remove(a.path)
		switch {
		case err == nil:
			logger.Debug("Generator executable removed.", "path", a.path)
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("Generator executable already missing at cleanup.", "path", a.path)
		default:
			a.removeErr = &CleanupError{Path: a.path, Err: err}
			logger.Error("Failed to remove generator executable.", "path", a.path, "error", err)
		}
	})
	return a.removeErr
}
