package data

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wyrmgo/server/internal/world"
)

type skillEntry struct {
	Name  string `yaml:"name"`
	Level int32  `yaml:"level"`
}

type monsterEntry struct {
	Name             string       `yaml:"name"`
	Health           int32        `yaml:"health"`
	Speed            int32        `yaml:"speed"`
	Armor            int32        `yaml:"armor"`
	Defense          int32        `yaml:"defense"`
	AttackMin        int32        `yaml:"attack_min"`
	AttackMax        int32        `yaml:"attack_max"`
	AttackIntervalMs int64        `yaml:"attack_interval_ms"`
	TargetDistance   int32        `yaml:"target_distance"`
	RunAwayHealth    int32        `yaml:"run_away_health"`
	Experience       uint64       `yaml:"experience"`
	LootDrop         bool         `yaml:"loot_drop"`
	Skills           []skillEntry `yaml:"skills"`
	Immunities       []string     `yaml:"immunities"`
	ConditionImmune  []string     `yaml:"condition_immunities"`
	Suppressions     []string     `yaml:"condition_suppressions"`
}

type monsterListFile struct {
	Monsters []monsterEntry `yaml:"monsters"`
}

// MonsterTable holds all monster templates indexed by lowercased name.
// Each template's skill registry is interned: every spawn of the same
// template shares one skill map.
type MonsterTable struct {
	byName map[string]*world.MonsterTemplate
}

// Get returns a monster template by name (case-insensitive), or nil.
func (t *MonsterTable) Get(name string) *world.MonsterTemplate {
	return t.byName[strings.ToLower(name)]
}

func (t *MonsterTable) Count() int { return len(t.byName) }

// LoadMonsterTable loads monster templates from a YAML file.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster list %s: %w", path, err)
	}
	var file monsterListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse monster list: %w", err)
	}

	t := &MonsterTable{byName: make(map[string]*world.MonsterTemplate, len(file.Monsters))}
	for _, e := range file.Monsters {
		damageImm, err := parseCombatTypes(e.Immunities)
		if err != nil {
			return nil, fmt.Errorf("monster %q: %w", e.Name, err)
		}
		condImm, err := parseConditionTypes(e.ConditionImmune)
		if err != nil {
			return nil, fmt.Errorf("monster %q: %w", e.Name, err)
		}
		suppress, err := parseConditionTypes(e.Suppressions)
		if err != nil {
			return nil, fmt.Errorf("monster %q: %w", e.Name, err)
		}

		tpl := &world.MonsterTemplate{
			Name:                  e.Name,
			Health:                e.Health,
			Speed:                 e.Speed,
			Armor:                 e.Armor,
			Defense:               e.Defense,
			AttackMin:             e.AttackMin,
			AttackMax:             e.AttackMax,
			AttackIntervalMs:      e.AttackIntervalMs,
			TargetDistance:        e.TargetDistance,
			RunAwayHealth:         e.RunAwayHealth,
			Experience:            e.Experience,
			LootDrop:              e.LootDrop,
			Skills:                internSkills(e.Skills),
			DamageImmunities:      damageImm,
			ConditionImmunities:   condImm,
			ConditionSuppressions: suppress,
		}
		t.byName[strings.ToLower(e.Name)] = tpl
	}
	return t, nil
}

type npcEntry struct {
	Name        string       `yaml:"name"`
	Health      int32        `yaml:"health"`
	Speed       int32        `yaml:"speed"`
	Script      string       `yaml:"script"`
	WalkTicksMs int64        `yaml:"walk_ticks_ms"`
	HomeRadius  int32        `yaml:"home_radius"`
	Skills      []skillEntry `yaml:"skills"`
}

type npcListFile struct {
	Npcs []npcEntry `yaml:"npcs"`
}

// NpcTable holds all NPC templates indexed by lowercased name.
type NpcTable struct {
	byName map[string]*world.NpcTemplate
}

// Get returns an NPC template by name (case-insensitive), or nil.
func (t *NpcTable) Get(name string) *world.NpcTemplate {
	return t.byName[strings.ToLower(name)]
}

func (t *NpcTable) Count() int { return len(t.byName) }

// LoadNpcTable loads NPC templates from a YAML file.
func LoadNpcTable(path string) (*NpcTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc list %s: %w", path, err)
	}
	var file npcListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse npc list: %w", err)
	}

	t := &NpcTable{byName: make(map[string]*world.NpcTemplate, len(file.Npcs))}
	for _, e := range file.Npcs {
		t.byName[strings.ToLower(e.Name)] = &world.NpcTemplate{
			Name:       e.Name,
			Health:     e.Health,
			Speed:      e.Speed,
			Script:     e.Script,
			WalkTicks:  e.WalkTicksMs,
			HomeRadius: e.HomeRadius,
			Skills:     internSkills(e.Skills),
		}
	}
	return t, nil
}

func internSkills(entries []skillEntry) map[string]*world.Skill {
	if len(entries) == 0 {
		return nil
	}
	skills := make(map[string]*world.Skill, len(entries))
	for _, e := range entries {
		skills[e.Name] = &world.Skill{Name: e.Name, Level: e.Level}
	}
	return skills
}

var combatTypeNames = map[string]world.CombatType{
	"physical":  world.CombatPhysical,
	"energy":    world.CombatEnergy,
	"earth":     world.CombatEarth,
	"fire":      world.CombatFire,
	"drown":     world.CombatDrown,
	"ice":       world.CombatIce,
	"holy":      world.CombatHoly,
	"death":     world.CombatDeath,
	"lifedrain": world.CombatLifeDrain,
	"healing":   world.CombatHealing,
}

func parseCombatTypes(names []string) (world.CombatType, error) {
	var mask world.CombatType
	for _, name := range names {
		ct, ok := combatTypeNames[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("unknown combat type %q", name)
		}
		mask |= ct
	}
	return mask, nil
}

var conditionTypeNames = map[string]world.ConditionType{
	"poison":       world.ConditionPoison,
	"fire":         world.ConditionFire,
	"energy":       world.ConditionEnergy,
	"bleeding":     world.ConditionBleeding,
	"freezing":     world.ConditionFreezing,
	"dazzled":      world.ConditionDazzled,
	"cursed":       world.ConditionCursed,
	"drown":        world.ConditionDrown,
	"haste":        world.ConditionHaste,
	"paralyze":     world.ConditionParalyze,
	"invisible":    world.ConditionInvisible,
	"drunk":        world.ConditionDrunk,
	"regeneration": world.ConditionRegeneration,
	"infight":      world.ConditionInFight,
}

func parseConditionTypes(names []string) (world.ConditionType, error) {
	var mask world.ConditionType
	for _, name := range names {
		ct, ok := conditionTypeNames[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("unknown condition type %q", name)
		}
		mask |= ct
	}
	return mask, nil
}
