package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CopyGenerator copies its input to its output, unless the input contains
// the word FAIL, in which case it exits 1 without writing anything.
const CopyGenerator = `#!/bin/sh
echo "$1 $2" >> "$SCOPBATCH_FAKE_LOG"
if grep -q FAIL "$1"; then
  echo "cannot generate code for $1" >&2
  exit 1
fi
cp "$1" "$2"
`

// HangingGenerator never finishes on inputs containing HANG.
const HangingGenerator = `#!/bin/sh
echo "$1 $2" >> "$SCOPBATCH_FAKE_LOG"
if grep -q HANG "$1"; then
  sleep 30
fi
cp "$1" "$2"
`

// RequireShell skips the test on platforms without /bin/sh.
func RequireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

// Toolchain describes a fake compiler installed in a temp directory.
type Toolchain struct {
	// Compiler is the path of the fake compiler executable.
	Compiler string
	// BuildLog collects one line per compiler invocation.
	BuildLog string
	// RunLog collects one line per generator invocation.
	RunLog string
}

// NewToolchain writes a fake compiler that honours "-o <path>" by
// installing generatorScript there as an executable. It also points
// SCOPBATCH_FAKE_LOG at the generator invocation log, so callers must not
// run in parallel.
func NewToolchain(t *testing.T, generatorScript string) *Toolchain {
	t.Helper()
	RequireShell(t)

	dir := t.TempDir()
	tc := &Toolchain{
		Compiler: filepath.Join(dir, "fakecc"),
		BuildLog: filepath.Join(dir, "build.log"),
		RunLog:   filepath.Join(dir, "run.log"),
	}

	generator := filepath.Join(dir, "generator.sh")
	require.NoError(t, os.WriteFile(generator, []byte(generatorScript), 0755))

	compiler := `#!/bin/sh
echo "$@" >> "` + tc.BuildLog + `"
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
if [ -z "$out" ]; then
  echo "fakecc: no output file" >&2
  exit 2
fi
cp "` + generator + `" "$out" && chmod +x "$out"
`
	require.NoError(t, os.WriteFile(tc.Compiler, []byte(compiler), 0755))
	t.Setenv("SCOPBATCH_FAKE_LOG", tc.RunLog)
	return tc
}

// NewFailingToolchain writes a fake compiler that always exits 1.
func NewFailingToolchain(t *testing.T) *Toolchain {
	t.Helper()
	RequireShell(t)

	dir := t.TempDir()
	tc := &Toolchain{
		Compiler: filepath.Join(dir, "fakecc"),
		BuildLog: filepath.Join(dir, "build.log"),
		RunLog:   filepath.Join(dir, "run.log"),
	}
	compiler := `#!/bin/sh
echo "$@" >> "` + tc.BuildLog + `"
echo "codegen.cpp:1: undefined reference to cloog_state_malloc" >&2
exit 1
`
	require.NoError(t, os.WriteFile(tc.Compiler, []byte(compiler), 0755))
	t.Setenv("SCOPBATCH_FAKE_LOG", tc.RunLog)
	return tc
}

// BuildCount returns how many times the fake compiler ran.
func (tc *Toolchain) BuildCount(t *testing.T) int {
	t.Helper()
	return countLines(t, tc.BuildLog)
}

// RunCount returns how many times the built generator ran.
func (tc *Toolchain) RunCount(t *testing.T) int {
	t.Helper()
	return countLines(t, tc.RunLog)
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return 0
	}
	return len(strings.Split(trimmed, "\n"))
}

// WriteTree creates files under root from a map of slash-separated relative
// paths to contents and returns root.
func WriteTree(t *testing.T, root string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}
