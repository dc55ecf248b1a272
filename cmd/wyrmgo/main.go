package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wyrmgo/server/internal/config"
	"github.com/wyrmgo/server/internal/core/event"
	"github.com/wyrmgo/server/internal/core/sched"
	coresys "github.com/wyrmgo/server/internal/core/system"
	"github.com/wyrmgo/server/internal/data"
	"github.com/wyrmgo/server/internal/scripting"
	"github.com/wyrmgo/server/internal/system"
	"github.com/wyrmgo/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("WYRMGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Defaults()
		cfg.Server.StartTime = time.Now().Unix()
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting server",
		zap.String("name", cfg.Server.Name),
		zap.Duration("tick_rate", cfg.Server.TickRate))

	// World map and template data.
	worldMap, err := data.LoadMap(cfg.World.MapFile)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}

	monsterTable, err := data.LoadMonsterTable(filepath.Join(cfg.Server.DataDir, "monsters.yaml"))
	if err != nil {
		return fmt.Errorf("load monster table: %w", err)
	}
	log.Info("monster templates loaded", zap.Int("count", monsterTable.Count()))

	npcTable, err := data.LoadNpcTable(filepath.Join(cfg.Server.DataDir, "npcs.yaml"))
	if err != nil {
		return fmt.Errorf("load npc table: %w", err)
	}
	log.Info("npc templates loaded", zap.Int("count", npcTable.Count()))

	spawns, err := data.LoadSpawnList(filepath.Join(cfg.Server.DataDir, "spawns.yaml"))
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}

	// Core plumbing: game clock, timer wheel, event bus, world state.
	schCtx := sched.NewContext(sched.WallClock{})
	bus := event.NewBus()
	worldState := world.NewState(log, cfg, schCtx, bus, worldMap)
	worldMap.SetTileObserver(worldState.OnTileChanged)

	luaEngine, err := scripting.NewEngine(cfg.Server.ScriptDir, worldState, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	worldState.SetHooks(luaEngine)

	spawnAll(worldState, monsterTable, npcTable, spawns, log)
	log.Info("world populated", zap.Int("creatures", worldState.CreatureCount()))

	// Tick pipeline.
	runner := coresys.NewRunner()
	runner.Register(system.NewDispatchSystem(bus))
	runner.Register(system.NewScheduleSystem(schCtx))
	runner.Register(system.NewThinkSystem(worldState))
	runner.Register(system.NewCorpseSystem(worldState, bus, log))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	log.Info("game loop running")
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// spawnAll places the initial population from the spawn list.
func spawnAll(ws *world.State, monsters *data.MonsterTable, npcs *data.NpcTable, spawns []data.SpawnEntry, log *zap.Logger) int {
	total := 0
	for _, spawn := range spawns {
		pos := world.Position{X: spawn.X, Y: spawn.Y, Z: spawn.Z}
		for i := 0; i < spawn.Count; i++ {
			var err error
			switch spawn.Kind {
			case "monster":
				tpl := monsters.Get(spawn.Name)
				if tpl == nil {
					log.Warn("spawn: unknown monster", zap.String("name", spawn.Name))
					continue
				}
				_, err = ws.SpawnMonster(tpl, pos, nil)
			case "npc":
				tpl := npcs.Get(spawn.Name)
				if tpl == nil {
					log.Warn("spawn: unknown npc", zap.String("name", spawn.Name))
					continue
				}
				_, err = ws.SpawnNpc(tpl, pos)
			default:
				log.Warn("spawn: unknown kind", zap.String("kind", spawn.Kind))
				continue
			}
			if err != nil {
				log.Warn("spawn failed",
					zap.String("name", spawn.Name),
					zap.String("pos", pos.String()),
					zap.Error(err))
				continue
			}
			total++
		}
	}
	return total
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
