package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/scopbatch/internal/builder"
	"github.com/vk/scopbatch/internal/ctxlog"
	"github.com/vk/scopbatch/internal/report"
	"github.com/vk/scopbatch/internal/runner"
	"github.com/vk/scopbatch/internal/testcase"
)

// ErrGenerationFailed is returned by Run, after the report is written, when
// at least one test case could not be generated.
var ErrGenerationFailed = errors.New("generation failed")

// Run executes one harness pass over the configured root. Discovery and
// build failures abort the run; generation failures are collected into the
// report. The build artifact is removed on every path once it exists.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "root", a.config.Root)

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	gen := a.model.Generate
	cases, err := testcase.Discover(ctx, a.config.Root, gen.InputSuffix, gen.OutputSuffix)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}
	a.logger.Info("Test cases discovered.", "count", len(cases), "root", a.config.Root)
	if len(cases) == 0 {
		a.logger.Warn("No test cases found, the generator will still be built.")
	}

	rep, err := a.buildAndGenerate(ctx, cases)
	if err != nil {
		return err
	}

	if err := rep.Write(a.outW); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	if !rep.OK() {
		return fmt.Errorf("%w: %d of %d test case(s)", ErrGenerationFailed, len(rep.Failed), len(rep.Discovered))
	}
	return nil
}

// buildAndGenerate owns the generator executable for its whole lifetime:
// it is built first and removed by the deferred call on every exit path.
func (a *App) buildAndGenerate(ctx context.Context, cases []testcase.TestCase) (rep *report.Report, err error) {
	b := a.model.Build
	art, err := builder.Build(ctx, builder.Spec{
		Compiler:  b.Compiler,
		Flags:     b.Flags,
		Source:    b.Source,
		Libraries: b.Libraries,
		Output:    b.Output,
		Timeout:   b.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}
	defer func() {
		cleanupErr := art.Remove(ctx)
		if rep != nil {
			rep.CleanupErr = cleanupErr
		}
	}()

	a.progress.total.Store(int64(len(cases)))
	a.progress.done.Store(0)
	a.progress.failed.Store(0)
	r := runner.New(runner.Options{
		Workers: a.model.Generate.Workers,
		Timeout: a.model.Generate.Timeout,
		OnDone:  a.recordOutcome,
	})
	outcomes := r.Run(ctx, art.Path(), cases)

	return report.New(cases, outcomes), nil
}

func (a *App) recordOutcome(o runner.Outcome) {
	a.progress.done.Add(1)
	if !o.Succeeded() {
		a.progress.failed.Add(1)
	}
}
