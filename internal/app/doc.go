// Package app contains the harness lifecycle: discovery, the one-time
// generator build, batch generation, guaranteed cleanup of the build
// artifact, and the final report. It is decoupled from any entrypoint.
package app
