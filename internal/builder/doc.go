/*
Package builder compiles the generator under test into a transient
executable and owns that executable for the rest of the run.

The build is a single, synchronous toolchain invocation:

	<compiler> [flags...] <source> -l<lib>... -o <output>

There is no retry and no partial-build recovery. A failing toolchain is
reported as a *BuildError and no Artifact is returned.

A successful build yields an *Artifact, a handle over the executable on
disk. The caller must release it with Remove, normally via defer right
after Build returns, so the executable never outlives the run:

	art, err := builder.Build(ctx, spec)
	if err != nil {
		return err
	}
	defer art.Remove(ctx)
*/
package builder
