// Package config holds the single immutable configuration value that is
// threaded through every component at construction time. Nothing in the
// core reads tunables from ambient scope.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/punchbook/punchbook/internal/models"
)

// Config is the full punchbook configuration.
type Config struct {
	Wage    WageConfig    `yaml:"wage"`
	Clock   ClockConfig   `yaml:"clock"`
	Store   StoreConfig   `yaml:"store"`
	Exports ExportsConfig `yaml:"exports"`
	Admin   AdminConfig   `yaml:"admin"`
	Log     LogConfig     `yaml:"log"`
}

// WageConfig drives the rate/budget engine.
type WageConfig struct {
	// BaseRate is the uncapped hourly rate.
	BaseRate float64 `yaml:"base_rate"`
	// BudgetLimit is the spend ceiling applied to every scheme unless
	// overridden in SchemeLimits.
	BudgetLimit  float64         `yaml:"budget_limit"`
	SchemeLimits map[int]float64 `yaml:"scheme_limits"`
	// Schemes enumerates the valid scheme identifiers.
	Schemes []int `yaml:"schemes"`
}

// ClockConfig holds the timing windows around clock actions.
type ClockConfig struct {
	// CooldownSeconds is the minimum interval between two clock actions
	// by the same worker.
	CooldownSeconds int `yaml:"cooldown_seconds"`
	// CooldownGraceSeconds absorbs clock skew when checking the cooldown.
	CooldownGraceSeconds int `yaml:"cooldown_grace_seconds"`
	// StatusGraceSeconds absorbs clock skew when projecting live status.
	StatusGraceSeconds int `yaml:"status_grace_seconds"`
}

// StoreConfig selects the event log backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite | csv
	Path   string `yaml:"path"`
}

// ExportsConfig names the projection destinations written after every
// successful event-log mutation.
type ExportsConfig struct {
	SummaryPath string `yaml:"summary_path"`
	AuditPath   string `yaml:"audit_path"`
}

// AdminConfig gates the destructive edit path.
type AdminConfig struct {
	Password string `yaml:"password"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	dir := dataDir()
	return &Config{
		Wage: WageConfig{
			BaseRate:    500,
			BudgetLimit: 120000,
			Schemes:     []int{1, 2, 3},
		},
		Clock: ClockConfig{
			CooldownSeconds:      10,
			CooldownGraceSeconds: 5,
			StatusGraceSeconds:   60,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   filepath.Join(dir, "punchbook.db"),
		},
		Exports: ExportsConfig{
			SummaryPath: filepath.Join(dir, "daily_summary.csv"),
			AuditPath:   filepath.Join(dir, "audit_log.csv"),
		},
		Admin: AdminConfig{Password: "1234"},
		Log:   LogConfig{Level: "warn", Format: "console"},
	}
}

// Load reads the YAML config at path, or the default location when path
// is empty. A missing file is not an error: defaults apply, so a fresh
// install degrades to a working setup instead of failing.
func Load(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(dataDir(), "config.yaml")
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Wage.BaseRate <= 0 {
		return fmt.Errorf("wage.base_rate must be positive")
	}
	if c.Wage.BudgetLimit <= 0 {
		return fmt.Errorf("wage.budget_limit must be positive")
	}
	if len(c.Wage.Schemes) == 0 {
		return fmt.Errorf("wage.schemes must not be empty")
	}
	switch c.Store.Driver {
	case "sqlite", "csv":
	default:
		return fmt.Errorf("store.driver must be sqlite or csv, got %q", c.Store.Driver)
	}
	return nil
}

// SchemeIDs returns the enumerated scheme identifiers.
func (c *Config) SchemeIDs() []models.SchemeID {
	ids := make([]models.SchemeID, 0, len(c.Wage.Schemes))
	for _, s := range c.Wage.Schemes {
		ids = append(ids, models.SchemeID(s))
	}
	return ids
}

// KnownScheme reports whether id is one of the configured schemes.
func (c *Config) KnownScheme(id models.SchemeID) bool {
	for _, s := range c.Wage.Schemes {
		if models.SchemeID(s) == id {
			return true
		}
	}
	return false
}

// BudgetFor returns the spend ceiling for one scheme.
func (c *Config) BudgetFor(id models.SchemeID) float64 {
	if limit, ok := c.Wage.SchemeLimits[int(id)]; ok {
		return limit
	}
	return c.Wage.BudgetLimit
}

// Cooldown is the minimum interval between clock actions.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Clock.CooldownSeconds) * time.Second
}

// CooldownGrace is the skew tolerance for cooldown checks.
func (c *Config) CooldownGrace() time.Duration {
	return time.Duration(c.Clock.CooldownGraceSeconds) * time.Second
}

// StatusGrace is the skew tolerance for status projection.
func (c *Config) StatusGrace() time.Duration {
	return time.Duration(c.Clock.StatusGraceSeconds) * time.Second
}

// dataDir returns ~/.punchbook, falling back to the working directory
// when the home directory cannot be resolved.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".punchbook"
	}
	return filepath.Join(home, ".punchbook")
}
