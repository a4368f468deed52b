package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scopbatch/internal/app"
	"github.com/vk/scopbatch/internal/cli"
	"github.com/vk/scopbatch/internal/testutil"
)

func writeHarness(t *testing.T, compiler, artifact string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.hcl")
	content := fmt.Sprintf("build {\n  compiler = %q\n  source = \"codegen.cpp\"\n  output = %q\n}\n", compiler, artifact)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
	assert.Equal(t, 2, exitCode(err, &bytes.Buffer{}))
}

func TestRun_EndToEnd(t *testing.T) {
	// --- Arrange ---
	tc := testutil.NewToolchain(t, testutil.CopyGenerator)
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"a/b/x.clay.scop": "x",
		"a/y.clay.scop":   "y",
	})
	artifact := filepath.Join(t.TempDir(), "codegen")
	harness := writeHarness(t, tc.Compiler, artifact)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"-c", harness, root})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode(err, errOut))
	assert.FileExists(t, filepath.Join(root, "a", "b", "x.clay.c"))
	assert.FileExists(t, filepath.Join(root, "a", "y.clay.c"))
	assert.NoFileExists(t, artifact)
	assert.Contains(t, out.String(), "Discovered 2 test case(s):")
}

func TestRun_GenerationFailureExitCode(t *testing.T) {
	tc := testutil.NewToolchain(t, testutil.CopyGenerator)
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"ok.clay.scop":  "fine",
		"bad.clay.scop": "FAIL",
	})
	artifact := filepath.Join(t.TempDir(), "codegen")
	harness := writeHarness(t, tc.Compiler, artifact)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	err := run(context.Background(), out, errOut, []string{"-c", harness, "-workers", "1", root})

	require.ErrorIs(t, err, app.ErrGenerationFailed)
	assert.Equal(t, 3, exitCode(err, errOut))
	assert.Contains(t, out.String(), "Succeeded: 1")
	assert.NoFileExists(t, artifact)
}

func TestRun_BuildFailureExitCode(t *testing.T) {
	tc := testutil.NewFailingToolchain(t)
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{"x.clay.scop": "x"})
	harness := writeHarness(t, tc.Compiler, filepath.Join(t.TempDir(), "codegen"))
	errOut := &bytes.Buffer{}

	err := run(context.Background(), &bytes.Buffer{}, errOut, []string{"-c", harness, root})

	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err, errOut))
	assert.Contains(t, errOut.String(), "build failed")
	assert.NoFileExists(t, filepath.Join(root, "x.clay.c"))
}

func TestRun_MissingRootExitCode(t *testing.T) {
	t.Parallel()
	errOut := &bytes.Buffer{}

	err := run(context.Background(), &bytes.Buffer{}, errOut, []string{filepath.Join(t.TempDir(), "missing")})

	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err, errOut))
	assert.Contains(t, errOut.String(), "discovery failed")
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, exitCode(nil, &bytes.Buffer{}))
	assert.Equal(t, 4, exitCode(&cli.ExitError{Code: 4, Message: "x"}, &bytes.Buffer{}))
	assert.Equal(t, 1, exitCode(errors.New("boom"), &bytes.Buffer{}))
	assert.Equal(t, 3, exitCode(fmt.Errorf("wrapped: %w", app.ErrGenerationFailed), &bytes.Buffer{}))
}
