package testsupport

import (
	"path/filepath"
	"testing"

	"confwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Every subject area is tracked and no delivery channel is configured.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DatasetDir = filepath.Join(base, "dataset")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Pipeline.InterestedAreas = []string{config.WildcardArea}
	cfgVal.Pipeline.MaxPapersPerYear = 50
	cfgVal.LLM.APIKey = "test"
	cfgVal.DBLP.PaceMillis = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithInterestedAreas overrides the subject filter on the test config.
func WithInterestedAreas(areas ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.InterestedAreas = areas
	}
}

// WithHistoryYears overrides how many prior years are analyzed.
func WithHistoryYears(years int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.HistoryYears = years
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
