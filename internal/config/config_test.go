package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "Wyrmgo", cfg.Server.Name)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, int64(60_000), cfg.Combat.CombatLockMs)
	assert.Equal(t, int32(2), cfg.Combat.BlockChargeCap)
	assert.Equal(t, int32(30), cfg.World.DespawnRadius)
	assert.Equal(t, uint8(2), cfg.World.DespawnRange)
	assert.InDelta(t, 857.36, cfg.Speed.A, 1e-9)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	body := `
[server]
name = "Testrealm"

[combat]
block_charge_cap = 5

[rates]
exp_rate = 2.5

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Testrealm", cfg.Server.Name)
	assert.Equal(t, int32(5), cfg.Combat.BlockChargeCap)
	assert.InDelta(t, 2.5, cfg.Rates.ExpRate, 1e-9)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// untouched keys keep their defaults
	assert.Equal(t, 50*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, int64(60_000), cfg.World.CorpseDecayMs)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nname=1"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
