package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "itemforge.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[patch]
dir = "/tmp/patches"
merge = false

[rebalance]
warmth_scale = 50.5

[permissions.shared]
armor = false

[database]
conn_max_lifetime = "10m"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/patches", cfg.Patch.Dir)
	assert.False(t, cfg.Patch.Merge)
	assert.True(t, cfg.Patch.Backup, "untouched keys keep their defaults")
	assert.Equal(t, 50.5, cfg.Rebalance.WarmthScale)
	assert.False(t, cfg.Permissions.Shared.Armor)
	assert.True(t, cfg.Permissions.Local.Armor)
	assert.Equal(t, "10m0s", cfg.Database.ConnMaxLifetime.String())
	assert.Equal(t, "data/yaml/catalog.yaml", cfg.Data.Catalog)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[logging]\nlevel = \"warn\"\n")
	t.Setenv("ITEMFORGE_LOG_LEVEL", "debug")
	t.Setenv("ITEMFORGE_PATCH_DIR", "/srv/patches")
	t.Setenv("ITEMFORGE_DATABASE_DSN", "postgres://u:p@db/itemforge")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/srv/patches", cfg.Patch.Dir)
	assert.Equal(t, "postgres://u:p@db/itemforge", cfg.Database.DSN)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "patches", cfg.Patch.Dir)
	assert.False(t, cfg.Permissions.Shared.CreateRecipes)
	assert.Empty(t, cfg.Database.DSN)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[patch\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[rebalance]\nwarmth_scale = -1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[logging]\nformat = \"xml\"\n"))
	assert.Error(t, err)
}
