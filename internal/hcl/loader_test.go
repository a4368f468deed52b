package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scopbatch/internal/config"
	"github.com/zclconf/go-cty/cty"
)

func writeHarnessFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testLoader(environ ...string) *Loader {
	return &Loader{environ: func() []string { return environ }}
}

func TestLoad_FullFile(t *testing.T) {
	// --- Arrange ---
	path := writeHarnessFile(t, `
		build {
			compiler  = lookup(env, "CXX", "g++")
			flags     = ["-O2"]
			source    = "src/codegen.cpp"
			libraries = ["cloog-isl", "osl"]
			output    = "bin/codegen"
			timeout   = "2m"
		}

		generate {
			input_suffix  = ".scop"
			output_suffix = ".c"
			timeout       = "5s"
			workers       = 3
		}
	`)

	// --- Act ---
	model, err := testLoader("CXX=clang++").Load(context.Background(), path, config.Default())

	// --- Assert ---
	require.NoError(t, err)
	want := &config.Model{
		Build: config.Build{
			Compiler:  "clang++",
			Flags:     []string{"-O2"},
			Source:    "src/codegen.cpp",
			Libraries: []string{"cloog-isl", "osl"},
			Output:    "bin/codegen",
			Timeout:   2 * time.Minute,
		},
		Generate: config.Generate{
			InputSuffix:  ".scop",
			OutputSuffix: ".c",
			Timeout:      5 * time.Second,
			Workers:      3,
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeHarnessFile(t, `
		build {
			source = "../../src/codegen.cpp"
		}
	`)
	base := config.Default()

	model, err := testLoader().Load(context.Background(), path, base)

	require.NoError(t, err)
	assert.Equal(t, "../../src/codegen.cpp", model.Build.Source)
	assert.Equal(t, base.Build.Compiler, model.Build.Compiler)
	assert.Equal(t, base.Build.Libraries, model.Build.Libraries)
	assert.Equal(t, base.Generate, model.Generate)
	assert.Equal(t, "../src/codegen.cpp", base.Build.Source, "base must not be modified")
}

func TestLoad_LookupFallsBackWithoutVariable(t *testing.T) {
	path := writeHarnessFile(t, `
		build {
			compiler = lookup(env, "CXX", "g++")
			output   = upper("codegen")
		}
	`)

	model, err := testLoader().Load(context.Background(), path, config.Default())

	require.NoError(t, err)
	assert.Equal(t, "g++", model.Build.Compiler)
	assert.Equal(t, "CODEGEN", model.Build.Output)
}

func TestLoad_EmptyListClearsLibraries(t *testing.T) {
	path := writeHarnessFile(t, `
		build {
			libraries = []
		}
	`)

	model, err := testLoader().Load(context.Background(), path, config.Default())

	require.NoError(t, err)
	assert.Empty(t, model.Build.Libraries)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax error", "build {\n compiler = \n", "failed to parse"},
		{"unknown attribute", "build {\n linker = \"ld\"\n}\n", "failed to decode"},
		{"unknown block", "deploy {}\n", "failed to decode"},
		{"bad duration", "generate {\n timeout = \"soon\"\n}\n", "invalid generate.timeout"},
		{"wrong type", "generate {\n workers = \"many\"\n}\n", "failed to decode"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeHarnessFile(t, tc.content)
			_, err := testLoader().Load(context.Background(), path, config.Default())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"), config.Default())
	require.Error(t, err)
}

func TestEnvValue(t *testing.T) {
	v := envValue([]string{"A=1", "B=x=y", "A=2", "=skip", "NOEQUALS"})

	assert.Equal(t, cty.StringVal("2"), v.Index(cty.StringVal("A")))
	assert.Equal(t, cty.StringVal("x=y"), v.Index(cty.StringVal("B")))
	assert.Equal(t, 2, v.LengthInt())

	assert.True(t, envValue(nil).Type().Equals(cty.Map(cty.String)))
}
