package assets

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Dir is where on-disk overrides of the embedded assets live.
const Dir = "assets"

//go:embed textures sounds music
var assetsFS embed.FS

// FS returns the embedded assets with files under Dir taking precedence.
func FS() fs.FS {
	return overlayFS{disk: os.DirFS(Dir), embedded: assetsFS}
}

type overlayFS struct {
	disk     fs.FS
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if o.disk != nil {
		f, err := o.disk.Open(name)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return o.embedded.Open(name)
}

func cleanAssetPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if filepath.IsAbs(p) {
		if idx := strings.LastIndex(s, "/"+Dir+"/"); idx >= 0 {
			return s[idx+len(Dir)+2:]
		}
		return path.Base(s)
	}
	s = strings.TrimPrefix(s, "./")
	s = strings.TrimPrefix(s, Dir+"/")
	return path.Clean(s)
}
