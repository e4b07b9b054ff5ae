package prefabs

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Dir is where on-disk overrides of the embedded prefabs live.
const Dir = "prefabs"

//go:embed *.yaml scripts/*.tengo
var prefabsFS embed.FS

// Load reads a descriptor, preferring the copy under Dir so edits are
// picked up without a rebuild.
func Load(name string) ([]byte, error) {
	return readOverride(cleanPrefabPath(name))
}

// LoadScript reads a tengo script from scripts/, however the name is
// prefixed.
func LoadScript(name string) ([]byte, error) {
	if name == "" {
		return nil, fs.ErrNotExist
	}
	return readOverride(path.Join("scripts", strings.TrimPrefix(cleanPrefabPath(name), "scripts/")))
}

func readOverride(clean string) ([]byte, error) {
	if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(clean))); err == nil {
		return data, nil
	}
	return prefabsFS.ReadFile(clean)
}

func cleanPrefabPath(p string) string {
	s := path.Clean(filepath.ToSlash(p))
	s = strings.TrimPrefix(s, "./")
	s, _ = strings.CutPrefix(s, Dir+"/")
	return s
}
