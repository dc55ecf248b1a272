package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnEntry places one template in the world at load time.
type SpawnEntry struct {
	Kind  string `yaml:"kind"` // "monster" or "npc"
	Name  string `yaml:"name"`
	X     int32  `yaml:"x"`
	Y     int32  `yaml:"y"`
	Z     uint8  `yaml:"z"`
	Count int    `yaml:"count"`
}

type spawnListFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

// LoadSpawnList loads the initial population from a YAML file.
func LoadSpawnList(path string) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list %s: %w", path, err)
	}
	var file spawnListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse spawn list: %w", err)
	}
	for i := range file.Spawns {
		if file.Spawns[i].Count <= 0 {
			file.Spawns[i].Count = 1
		}
	}
	return file.Spawns, nil
}
