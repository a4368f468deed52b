// Package procexec runs external programs from an explicit argument vector,
// never through a shell. It captures exit status and output streams, applies
// an optional timeout, and maps a non-zero status to a typed error so callers
// can attach their own phase-specific meaning.
package procexec
