package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"modscout/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.BaseURL = "http://127.0.0.1:0"
	cfg.Catalog.APIKey = "test"
	cfg.Judge.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	return &cfg
}

// WithCatalog points the test config at a catalog endpoint, usually an
// httptest server URL.
func WithCatalog(baseURL, apiKey string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.BaseURL = baseURL
		cfg.Catalog.APIKey = apiKey
	}
}

// WithJudge points the primary judge backend at an endpoint.
func WithJudge(baseURL, model string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Judge.BaseURL = baseURL
		cfg.Judge.Model = model
	}
}

// WithSnapshotPath overrides the default snapshot location.
func WithSnapshotPath(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Snapshot.Path = path
	}
}
