package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wyrmgo/server/internal/world"
)

// Engine wraps a single gopher-lua VM driving NPC behavior.
// Single-goroutine access only (game loop). Handler calls may re-enter
// the world synchronously through the game API.
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	state *world.State

	// handlers maps an NPC script name to its registered handler table.
	handlers map[string]*lua.LTable
}

// NewEngine creates a Lua engine bound to the world and loads every .lua
// file from the script directory. Scripts call register_npc at load time.
func NewEngine(scriptsDir string, state *world.State, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:       vm,
		log:      log,
		state:    state,
		handlers: make(map[string]*lua.LTable),
	}
	e.registerAPI()

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, err
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() { e.vm.Close() }

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// registerAPI installs register_npc and the game table scripts call back
// into.
func (e *Engine) registerAPI() {
	e.vm.SetGlobal("register_npc", e.vm.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		table := L.CheckTable(2)
		e.handlers[name] = table
		e.log.Debug("registered npc script", zap.String("script", name))
		return 0
	}))

	game := e.vm.NewTable()
	e.vm.SetGlobal("game", game)

	e.vm.SetField(game, "say", e.vm.NewFunction(func(L *lua.LState) int {
		if c := e.creatureArg(L, 1); c != nil {
			e.state.CreatureSay(c, L.CheckString(2))
		}
		return 0
	}))

	e.vm.SetField(game, "move_to", e.vm.NewFunction(func(L *lua.LState) int {
		c := e.creatureArg(L, 1)
		if c == nil {
			L.Push(lua.LFalse)
			return 1
		}
		pos := world.Position{
			X: int32(L.CheckInt(2)),
			Y: int32(L.CheckInt(3)),
			Z: uint8(L.CheckInt(4)),
		}
		minDist := int32(L.OptInt(5, 0))
		maxDist := int32(L.OptInt(6, 1))
		L.Push(lua.LBool(c.MoveTo(pos, minDist, maxDist)))
		return 1
	}))

	e.vm.SetField(game, "turn_to", e.vm.NewFunction(func(L *lua.LState) int {
		npc := e.creatureArg(L, 1)
		other := e.creatureArg(L, 2)
		if npc != nil && other != nil {
			npc.TurnToCreature(other)
		}
		return 0
	}))

	// game.set_focus(npc_id, creature_id); 0 releases the focus.
	e.vm.SetField(game, "set_focus", e.vm.NewFunction(func(L *lua.LState) int {
		if npc := e.creatureArg(L, 1); npc != nil {
			npc.SetCreatureFocus(e.creatureArg(L, 2))
		}
		return 0
	}))

	e.vm.SetField(game, "open_trade", e.vm.NewFunction(func(L *lua.LState) int {
		npc := e.creatureArg(L, 1)
		player := e.creatureArg(L, 2)
		if npc != nil && player != nil {
			npc.OpenTrade(player)
		}
		return 0
	}))

	e.vm.SetField(game, "close_trade", e.vm.NewFunction(func(L *lua.LState) int {
		npc := e.creatureArg(L, 1)
		player := e.creatureArg(L, 2)
		if npc != nil && player != nil {
			npc.CloseTrade(player)
		}
		return 0
	}))

	e.vm.SetField(game, "creature_name", e.vm.NewFunction(func(L *lua.LState) int {
		if c := e.creatureArg(L, 1); c != nil {
			L.Push(lua.LString(c.Name))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))

	e.vm.SetField(game, "creature_pos", e.vm.NewFunction(func(L *lua.LState) int {
		c := e.creatureArg(L, 1)
		if c == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(c.Pos.X))
		L.Push(lua.LNumber(c.Pos.Y))
		L.Push(lua.LNumber(c.Pos.Z))
		return 3
	}))

	e.vm.SetField(game, "creature_health", e.vm.NewFunction(func(L *lua.LState) int {
		c := e.creatureArg(L, 1)
		if c == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(c.Health))
		L.Push(lua.LNumber(c.HealthMax))
		return 2
	}))

	e.vm.SetField(game, "creature_skill", e.vm.NewFunction(func(L *lua.LState) int {
		c := e.creatureArg(L, 1)
		if c == nil {
			L.Push(lua.LNil)
			return 1
		}
		if s, ok := c.Skill(L.CheckString(2)); ok {
			L.Push(lua.LNumber(s.Level))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))

	// game.give_skill(creature_id, name, level); false if already known.
	e.vm.SetField(game, "give_skill", e.vm.NewFunction(func(L *lua.LState) int {
		c := e.creatureArg(L, 1)
		if c == nil {
			L.Push(lua.LFalse)
			return 1
		}
		L.Push(lua.LBool(c.GiveSkill(L.CheckString(2), int32(L.CheckInt(3)))))
		return 1
	}))
}

// creatureArg resolves a creature id argument; nil for 0 or a dead id.
func (e *Engine) creatureArg(L *lua.LState, n int) *world.Creature {
	id := uint32(L.CheckInt64(n))
	if id == 0 {
		return nil
	}
	return e.state.CreatureByID(id)
}

// callHandler invokes one event function from an NPC's handler table.
func (e *Engine) callHandler(npc *world.Creature, event string, args ...lua.LValue) {
	if npc.Npc == nil {
		return
	}
	table := e.handlers[npc.Npc.ScriptName]
	if table == nil {
		return
	}
	fn := table.RawGetString(event)
	if fn == lua.LNil {
		return
	}

	callArgs := make([]lua.LValue, 0, len(args)+1)
	callArgs = append(callArgs, lua.LNumber(npc.ID))
	callArgs = append(callArgs, args...)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, callArgs...); err != nil {
		e.log.Error("lua npc handler error",
			zap.String("script", npc.Npc.ScriptName),
			zap.String("event", event),
			zap.Error(err))
	}
}

// Engine implements world.Hooks.

func (e *Engine) OnThink(c *world.Creature, interval int64) {
	if c.Npc != nil {
		e.callHandler(c, "on_think", lua.LNumber(interval))
	}
}

func (e *Engine) OnAppear(npc, other *world.Creature) {
	e.callHandler(npc, "on_appear", lua.LNumber(other.ID), lua.LString(other.Name))
}

func (e *Engine) OnDisappear(npc, other *world.Creature) {
	e.callHandler(npc, "on_disappear", lua.LNumber(other.ID))
}

func (e *Engine) OnMove(npc, other *world.Creature, fromPos, toPos world.Position) {
	e.callHandler(npc, "on_move", lua.LNumber(other.ID),
		lua.LNumber(fromPos.X), lua.LNumber(fromPos.Y),
		lua.LNumber(toPos.X), lua.LNumber(toPos.Y))
}

func (e *Engine) OnSay(npc, speaker *world.Creature, text string) {
	e.callHandler(npc, "on_say", lua.LNumber(speaker.ID), lua.LString(speaker.Name), lua.LString(text))
}

func (e *Engine) OnTradeOpen(npc, player *world.Creature) {
	e.callHandler(npc, "on_trade_open", lua.LNumber(player.ID))
}

func (e *Engine) OnTradeClose(npc, player *world.Creature) {
	e.callHandler(npc, "on_trade_close", lua.LNumber(player.ID))
}
