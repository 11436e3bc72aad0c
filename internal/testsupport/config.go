// Package testsupport provides fixtures shared by package tests.
package testsupport

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"nzbforge/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DatabasePath = filepath.Join(base, "catalog.sqlite")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithGroup overrides the export group on the test config.
func WithGroup(group string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Export.Group = group
	}
}

// SeedCatalog creates a minimal catalog database at the config's database
// path and returns that path. Statements run in order; the schema is the
// caller's to shape.
func SeedCatalog(t testing.TB, cfg *config.Config, statements []string) string {
	t.Helper()

	db, err := sql.Open("sqlite", cfg.Paths.DatabasePath)
	if err != nil {
		t.Fatalf("open catalog for seeding: %v", err)
	}
	defer db.Close()

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed statement failed: %v\n%s", err, stmt)
		}
	}
	return cfg.Paths.DatabasePath
}
