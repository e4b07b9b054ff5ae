package prefabs

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

type ChangeKind int

const (
	ChangeSettings ChangeKind = iota
	ChangeLevel
	ChangeScript
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSettings:
		return "settings"
	case ChangeLevel:
		return "level"
	case ChangeScript:
		return "script"
	}
	return "unknown"
}

// Change is a descriptor or script file edited on disk.
type Change struct {
	Path string
	Kind ChangeKind
}

// ClassifyChange sorts a changed path into what must be reloaded. Files
// other than yaml descriptors and tengo scripts are ignored.
func ClassifyChange(path string) (Change, bool) {
	slash := filepath.ToSlash(path)
	switch strings.ToLower(filepath.Ext(slash)) {
	case ".tengo":
		return Change{Path: path, Kind: ChangeScript}, true
	case ".yaml", ".yml":
	default:
		return Change{}, false
	}

	dir := filepath.Base(filepath.Dir(filepath.FromSlash(slash)))
	if dir == Dir {
		return Change{Path: path, Kind: ChangeSettings}, true
	}
	return Change{Path: path, Kind: ChangeLevel}, true
}

// Watcher reports descriptor and script edits. A goroutine debounces the
// raw fsnotify events; the game loop drains them with Poll between frames.
type Watcher struct {
	fsw     *fsnotify.Watcher
	changes chan Change
	closing chan struct{}
	once    sync.Once
}

// NewWatcher watches each existing directory and its scripts/ child.
// Missing directories are skipped since a release build may only carry
// the embedded copies.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		for _, d := range []string{dir, filepath.Join(dir, "scripts")} {
			if info, err := os.Stat(d); err != nil || !info.IsDir() {
				continue
			}
			if err := fsw.Add(d); err != nil {
				_ = fsw.Close()
				return nil, err
			}
		}
	}

	w := &Watcher{
		fsw:     fsw,
		changes: make(chan Change, 16),
		closing: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closing)
		err = w.fsw.Close()
	})
	return err
}

// Poll returns the changes seen since the last call without blocking.
func (w *Watcher) Poll() []Change {
	var out []Change
	for {
		select {
		case c := <-w.changes:
			out = append(out, c)
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	seen := make(map[string]time.Time)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			change, ok := ClassifyChange(ev.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if at, ok := seen[ev.Name]; ok && now.Sub(at) < watchDebounce {
				continue
			}
			seen[ev.Name] = now
			select {
			case w.changes <- change:
			case <-w.closing:
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("prefabs: watch: %v", err)
		case <-w.closing:
			return
		}
	}
}
