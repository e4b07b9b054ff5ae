package levels

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/milk9111/spritebox/prefabs"
	"gopkg.in/yaml.v3"
)

// Dir is where on-disk overrides of the embedded levels live.
const Dir = "levels"

//go:embed *.yaml
var LevelsFS embed.FS

// Level is one loadable scene: its music playlist and its entities in
// insertion order.
type Level struct {
	Name     string               `yaml:"-"`
	Playlist []string             `yaml:"playlist"`
	Entities []prefabs.EntitySpec `yaml:"entities"`
}

// Load reads a level by name (".yaml" optional), preferring the copy on
// disk.
func Load(name string) (*Level, error) {
	file := fileName(name)
	data, err := os.ReadFile(filepath.Join(Dir, file))
	if err != nil {
		data, err = LevelsFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("levels: read %s: %w", file, err)
		}
	}

	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", file, err)
	}
	lvl.Name = LevelName(file)
	return &lvl, nil
}

// Names lists the embedded levels.
func Names() []string {
	entries, err := LevelsFS.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, LevelName(e.Name()))
	}
	sort.Strings(names)
	return names
}

// LevelName strips directories and the extension from a level path.
func LevelName(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func fileName(name string) string {
	name = LevelName(name)
	return name + ".yaml"
}
