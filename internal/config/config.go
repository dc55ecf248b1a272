package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	World   WorldConfig   `toml:"world"`
	Combat  CombatConfig  `toml:"combat"`
	Speed   SpeedConfig   `toml:"speed"`
	Rates   RatesConfig   `toml:"rates"`
	Logging LoggingConfig `toml:"logging"`
}

// SpeedConfig holds the logarithmic step-speed curve coefficients:
// effective = floor(A*ln(speed/2 + B) + C + 0.5).
type SpeedConfig struct {
	A float64 `toml:"a"`
	B float64 `toml:"b"`
	C float64 `toml:"c"`
}

type ServerConfig struct {
	Name      string        `toml:"name"`
	TickRate  time.Duration `toml:"tick_rate"`
	DataDir   string        `toml:"data_dir"`
	ScriptDir string        `toml:"script_dir"`
	StartTime int64         // set at boot, not from config
}

type WorldConfig struct {
	MapFile       string `toml:"map_file"`
	DespawnRadius int32  `toml:"despawn_radius"`  // tiles from master before a summon despawns
	DespawnRange  uint8  `toml:"despawn_range"`   // floors from master before a summon despawns
	CorpseDecayMs int64  `toml:"corpse_decay_ms"` // time a corpse stays on the ground
}

type CombatConfig struct {
	CombatLockMs     int64 `toml:"combat_lock_ms"`     // attribution window after last damage
	BlockChargeCap   int32 `toml:"block_charge_cap"`   // max stored shield charges
	BlockRegenMs     int64 `toml:"block_regen_ms"`     // time to regain one shield charge
	PathRecomputeMs  int64 `toml:"path_recompute_ms"`  // forced follow re-plan interval
	MaxPathSeekTiles int32 `toml:"max_path_seek_tiles"`
}

type RatesConfig struct {
	ExpRate         float64 `toml:"exp_rate"`
	SharedExpSplit  float64 `toml:"shared_exp_split"` // party leader share under shared exp
	ConditionTickMs int64   `toml:"condition_tick_ms"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "Wyrmgo",
			TickRate:  50 * time.Millisecond,
			DataDir:   "data",
			ScriptDir: "scripts",
		},
		World: WorldConfig{
			MapFile:       "data/world.yaml",
			DespawnRadius: 30,
			DespawnRange:  2,
			CorpseDecayMs: 60_000,
		},
		Combat: CombatConfig{
			CombatLockMs:     60_000,
			BlockChargeCap:   2,
			BlockRegenMs:     1_000,
			PathRecomputeMs:  2_000,
			MaxPathSeekTiles: 50,
		},
		Speed: SpeedConfig{
			A: 857.36,
			B: 261.29,
			C: -4795.01,
		},
		Rates: RatesConfig{
			ExpRate:         1.0,
			SharedExpSplit:  1.0,
			ConditionTickMs: 1_000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
