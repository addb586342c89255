package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/l1jgo/itemforge/internal/apply"
)

type Config struct {
	Data        DataConfig        `toml:"data"`
	Patch       PatchConfig       `toml:"patch"`
	Rebalance   RebalanceConfig   `toml:"rebalance"`
	Permissions PermissionsConfig `toml:"permissions"`
	Database    DatabaseConfig    `toml:"database"`
	Logging     LoggingConfig     `toml:"logging"`
	Scripting   ScriptingConfig   `toml:"scripting"`
}

// DataConfig points at the YAML tables.
type DataConfig struct {
	Catalog  string `toml:"catalog" env:"ITEMFORGE_CATALOG"`
	Curves   string `toml:"curves"`
	BaseSets string `toml:"base_sets"`
	Hints    string `toml:"hints"`
	Keywords string `toml:"keywords"`
	Loot     string `toml:"loot"`
}

type PatchConfig struct {
	Dir         string `toml:"dir" env:"ITEMFORGE_PATCH_DIR"`
	Merge       bool   `toml:"merge" env:"ITEMFORGE_PATCH_MERGE"`
	Backup      bool   `toml:"backup"`
	RoundWeight bool   `toml:"round_weight"`
}

type RebalanceConfig struct {
	Curve         string  `toml:"curve"`    // default curve name
	BaseSet       string  `toml:"base_set"` // default base set name
	WarmthScale   float64 `toml:"warmth_scale"`
	ExcludeShield bool    `toml:"exclude_shield"`
	CraftBench    string  `toml:"craft_bench"`
	TemperBench   string  `toml:"temper_bench"`
}

// PermissionsConfig holds one permission table per patch scope.
type PermissionsConfig struct {
	Local  apply.Permissions `toml:"local"`
	Shared apply.Permissions `toml:"shared"`
}

// DatabaseConfig enables the apply-run audit. An empty DSN disables it.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn" env:"ITEMFORGE_DATABASE_DSN"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"ITEMFORGE_LOG_LEVEL"`
	Format string `toml:"format" env:"ITEMFORGE_LOG_FORMAT"` // "json" or "console"
}

type ScriptingConfig struct {
	Dir string `toml:"dir" env:"ITEMFORGE_SCRIPTS_DIR"`
}

// Load reads path over the defaults, then applies ITEMFORGE_* environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engines cannot run with.
func (c *Config) Validate() error {
	if c.Patch.Dir == "" {
		return fmt.Errorf("config: patch.dir is empty")
	}
	if c.Rebalance.WarmthScale < 0 {
		return fmt.Errorf("config: rebalance.warmth_scale %v is negative", c.Rebalance.WarmthScale)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: logging.format %q, want json or console", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Data: DataConfig{
			Catalog:  "data/yaml/catalog.yaml",
			Curves:   "data/yaml/curves.yaml",
			BaseSets: "data/yaml/base_sets.yaml",
			Hints:    "data/yaml/hints.yaml",
			Keywords: "data/yaml/keywords.yaml",
			Loot:     "data/yaml/loot_profiles.yaml",
		},
		Patch: PatchConfig{
			Dir:         "patches",
			Merge:       true,
			Backup:      true,
			RoundWeight: true,
		},
		Rebalance: RebalanceConfig{
			Curve:         "default",
			BaseSet:       "iron",
			WarmthScale:   100,
			ExcludeShield: true,
			CraftBench:    "CraftingSmithingForge",
			TemperBench:   "CraftingSmithingArmorTable",
		},
		Permissions: PermissionsConfig{
			Local:  apply.AllowAll(),
			Shared: sharedDefaults(),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
	}
}

// Shared documents come from other people; they may not create recipes or
// move slots unless the user opts in.
func sharedDefaults() apply.Permissions {
	p := apply.AllowAll()
	p.CreateRecipes = false
	p.Slots = false
	return p
}
