package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scopbatch/internal/runner"
	"github.com/vk/scopbatch/internal/testcase"
)

func mustCase(t *testing.T, path string) testcase.TestCase {
	t.Helper()
	tc, err := testcase.New(path, testcase.DefaultInputSuffix, testcase.DefaultOutputSuffix)
	require.NoError(t, err)
	return tc
}

func TestReport_SeparatesOutcomesAndSorts(t *testing.T) {
	// --- Arrange ---
	y := mustCase(t, "a/y.clay.scop")
	x := mustCase(t, "a/b/x.clay.scop")
	z := mustCase(t, "z.clay.scop")
	outcomes := []runner.Outcome{
		{Case: z},
		{Case: y, ExitCode: 1, Err: &runner.GenerationError{Case: y, ExitCode: 1, Err: errors.New("exit status 1")}},
		{Case: x},
	}

	// --- Act ---
	r := New([]testcase.TestCase{z, y, x}, outcomes)

	// --- Assert ---
	assert.Equal(t, []testcase.TestCase{x, y, z}, r.Discovered)
	assert.Equal(t, []testcase.TestCase{x, z}, r.Succeeded)
	require.Len(t, r.Failed, 1)
	assert.Equal(t, y, r.Failed[0].Case)
	assert.False(t, r.OK())
}

func TestReport_Write(t *testing.T) {
	x := mustCase(t, "a/b/x.clay.scop")
	y := mustCase(t, "a/y.clay.scop")
	r := New([]testcase.TestCase{x, y}, []runner.Outcome{
		{Case: x},
		{Case: y, Err: &runner.GenerationError{Case: y, Err: errors.New("boom")}},
	})
	r.CleanupErr = errors.New("removing generator executable ./codegen: permission denied")

	var out bytes.Buffer
	require.NoError(t, r.Write(&out))

	want := `Discovered 2 test case(s):
  a/b/x.clay.scop
  a/y.clay.scop

Succeeded: 1
  ok    a/b/x.clay.scop -> a/b/x.clay.c
Failed: 1
  FAIL  a/y.clay.scop: generating a/y.clay.c: boom

Warning: removing generator executable ./codegen: permission denied
`
	assert.Equal(t, want, out.String())
}

func TestReport_EmptyRunIsOK(t *testing.T) {
	r := New(nil, nil)

	var out bytes.Buffer
	require.NoError(t, r.Write(&out))
	assert.True(t, r.OK())
	assert.Contains(t, out.String(), "Discovered 0 test case(s):")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestReport_WritePropagatesError(t *testing.T) {
	err := New(nil, nil).Write(failingWriter{})
	require.EqualError(t, err, "closed pipe")
}
