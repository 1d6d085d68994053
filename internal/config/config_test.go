package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config must not error: %v", err)
	}
	if cfg.Wage.BaseRate != 500 || cfg.Wage.BudgetLimit != 120000 {
		t.Errorf("unexpected wage defaults: %+v", cfg.Wage)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("unexpected store default: %+v", cfg.Store)
	}
	if cfg.Cooldown() != 10*time.Second || cfg.StatusGrace() != 60*time.Second {
		t.Errorf("unexpected clock defaults: %+v", cfg.Clock)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
wage:
  base_rate: 650
  budget_limit: 50000
  schemes: [1, 2]
  scheme_limits:
    2: 9000
store:
  driver: csv
  path: /tmp/punchbook.csv
clock:
  cooldown_seconds: 30
admin:
  password: hunter2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Wage.BaseRate != 650 {
		t.Errorf("base rate: got %v", cfg.Wage.BaseRate)
	}
	if cfg.Store.Driver != "csv" {
		t.Errorf("driver: got %q", cfg.Store.Driver)
	}
	if cfg.Cooldown() != 30*time.Second {
		t.Errorf("cooldown: got %s", cfg.Cooldown())
	}
	if cfg.Admin.Password != "hunter2" {
		t.Errorf("password: got %q", cfg.Admin.Password)
	}
	// Untouched sections keep their defaults.
	if cfg.Clock.StatusGraceSeconds != 60 {
		t.Errorf("status grace: got %d", cfg.Clock.StatusGraceSeconds)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"negative base rate", "wage:\n  base_rate: -1\n"},
		{"zero budget", "wage:\n  budget_limit: 0\n"},
		{"empty schemes", "wage:\n  schemes: []\n"},
		{"unknown driver", "store:\n  driver: postgres\n"},
		{"broken yaml", "wage: ["},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.raw), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected a load error")
			}
		})
	}
}

func TestBudgetFor(t *testing.T) {
	cfg := Default()
	cfg.Wage.SchemeLimits = map[int]float64{2: 9000}

	if got := cfg.BudgetFor(1); got != 120000 {
		t.Errorf("scheme 1 falls back to the shared limit, got %v", got)
	}
	if got := cfg.BudgetFor(2); got != 9000 {
		t.Errorf("scheme 2 uses its override, got %v", got)
	}
}

func TestKnownScheme(t *testing.T) {
	cfg := Default()
	if !cfg.KnownScheme(1) || !cfg.KnownScheme(3) {
		t.Error("default schemes 1..3 must be known")
	}
	if cfg.KnownScheme(4) {
		t.Error("scheme 4 must not be known by default")
	}
}
