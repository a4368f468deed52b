package hcl

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/scopbatch/internal/config"
	"github.com/vk/scopbatch/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	environ func() []string
}

// NewLoader creates a new HCL configuration loader that evaluates `env`
// against the current process environment.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

// Load parses the harness file at path and returns a copy of base with the
// file's settings applied.
func (l *Loader) Load(ctx context.Context, path string, base *config.Model) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	environ := os.Environ
	if l.environ != nil {
		environ = l.environ
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, newEvalContext(environ()), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model := base.Clone()
	if err := applyBuild(&model.Build, root.Build); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := applyGenerate(&model.Generate, root.Generate); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("HCL loading complete.", "compiler", model.Build.Compiler, "source", model.Build.Source)
	return model, nil
}

func applyBuild(dst *config.Build, b *buildBlock) error {
	if b == nil {
		return nil
	}
	setString(&dst.Compiler, b.Compiler)
	setString(&dst.Source, b.Source)
	setString(&dst.Output, b.Output)
	if b.Flags != nil {
		dst.Flags = *b.Flags
	}
	if b.Libraries != nil {
		dst.Libraries = *b.Libraries
	}
	return setDuration(&dst.Timeout, b.Timeout, "build.timeout")
}

func applyGenerate(dst *config.Generate, g *generateBlock) error {
	if g == nil {
		return nil
	}
	setString(&dst.InputSuffix, g.InputSuffix)
	setString(&dst.OutputSuffix, g.OutputSuffix)
	if g.Workers != nil {
		dst.Workers = *g.Workers
	}
	return setDuration(&dst.Timeout, g.Timeout, "generate.timeout")
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, *v, err)
	}
	*dst = d
	return nil
}
