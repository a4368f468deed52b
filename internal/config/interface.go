package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the harness file at path and overlays it on base.
	Load(ctx context.Context, path string, base *Model) (*Model, error)
}
