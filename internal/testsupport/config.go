package testsupport

import (
	"path/filepath"
	"testing"

	"mediatidy/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LedgerPath = filepath.Join(base, "ledger.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.RegistryPath = filepath.Join(base, "extensions.yaml")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithFloorYear overrides the oldest accepted filing year.
func WithFloorYear(year int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Dates.FloorYear = year
	}
}

// WithProbeBinary points the container metadata reader at a stub.
func WithProbeBinary(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Probe.Binary = path
	}
}
