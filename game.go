package main

import (
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/spritebox/assets"
	"github.com/milk9111/spritebox/ecs"
	"github.com/milk9111/spritebox/ecs/entity"
	"github.com/milk9111/spritebox/ecs/system"
	"github.com/milk9111/spritebox/levels"
	"github.com/milk9111/spritebox/prefabs"
	"github.com/milk9111/spritebox/telemetry"
	"github.com/milk9111/spritebox/ui"
)

const (
	pauseMenu     = "pause"
	uiFontName    = "ui"
	uiFontSize    = 14
	maxFrameDelta = 100 * time.Millisecond
)

type Options struct {
	Level         string
	Settings      string
	Watch         bool
	StatsPath     string
	ScreenshotDir string
	Debug         bool
}

type Game struct {
	opts     Options
	audioCtx *audio.Context

	settings *prefabs.Settings
	res      *assets.Resources
	scene    *ecs.Scene
	input    *system.InputSystem
	sounds   *system.AudioSystem
	music    *system.MusicSystem
	overlay  *ui.Manager
	watcher  *prefabs.Watcher
	stats    *telemetry.Recorder

	level        string
	pendingLevel string
	quit         bool
	screenshot   bool
	frame        int
	last         time.Time
}

func NewGame(opts Options, audioCtx *audio.Context, overlay *ui.Manager) (*Game, error) {
	if overlay == nil {
		overlay = ui.NewManager(nil)
	}
	g := &Game{
		opts:     opts,
		audioCtx: audioCtx,
		input:    system.NewInputSystem(),
		overlay:  overlay,
	}
	overlay.ShowFPS = opts.Debug

	if err := g.loadSettings(); err != nil {
		return nil, err
	}

	level, err := startLevel(opts.Level, g.settings)
	if err != nil {
		return nil, err
	}
	if err := g.loadLevel(level); err != nil {
		return nil, err
	}

	if opts.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, levels.Dir)
		if err != nil {
			log.Printf("game: watch disabled: %v", err)
		} else {
			g.watcher = w
		}
	}

	g.stats, err = telemetry.NewRecorder(opts.StatsPath)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// loadSettings (re)reads the settings descriptor and everything built from
// it: resources, audio, the scene and its menus.
func (g *Game) loadSettings() error {
	settings, err := prefabs.LoadSettings(g.opts.Settings)
	if err != nil {
		return err
	}

	res := assets.New(assets.FS(), g.audioCtx)
	if err := res.LoadAll(settings.Resources); err != nil {
		return err
	}

	w, h := viewSize(settings.Window)
	scene := ecs.NewScene(ecs.SceneConfig{
		ViewWidth:       float64(w),
		ViewHeight:      float64(h),
		CameraFocusBias: settings.Window.CameraFocusBias,
	})

	face := g.overlay.Face()
	if src, ok := res.Font(uiFontName); ok {
		face = &text.GoTextFace{Source: src, Size: uiFontSize}
	}
	for _, spec := range settings.Menus {
		menu, err := ui.NewMenu(spec, g, face, w, h)
		if err != nil {
			return err
		}
		scene.RegisterMenu(menu.Name, menu)
	}

	if g.sounds != nil {
		g.sounds.StopAll()
	}
	if g.music != nil {
		g.music.Stop()
	}

	g.settings = settings
	g.res = res
	g.scene = scene
	g.sounds = system.NewAudioSystem(res)
	g.music = system.NewMusicSystem(res, system.MusicConfig{
		Volume: settings.Music.Volume,
		Fade:   time.Duration(settings.Music.FadeMS) * time.Millisecond,
	})
	g.overlay.SetControls(settings.Controls)
	return nil
}

func (g *Game) loadLevel(name string) error {
	lvl, err := levels.Load(name)
	if err != nil {
		return err
	}
	g.sounds.StopAll()
	err = entity.LoadLevel(g.scene, g.settings, lvl, entity.Deps{
		Textures: g.res,
		Sounds:   g.sounds,
	})
	if err != nil {
		return err
	}
	g.level = lvl.Name
	ebiten.SetWindowTitle(windowTitle(g.settings.Window, g.level))
	log.Printf("game: loaded level %s", g.level)
	return nil
}

// reload applies on-disk changes between frames. Settings edits rebuild
// everything; level and script edits reload the current level. A broken
// descriptor leaves the scene cleared until the next good save.
func (g *Game) reload(changes []prefabs.Change) {
	for _, c := range changes {
		log.Printf("game: %s changed: %s", c.Kind, filepath.Base(c.Path))
	}
	if slices.ContainsFunc(changes, func(c prefabs.Change) bool { return c.Kind == prefabs.ChangeSettings }) {
		if err := g.loadSettings(); err != nil {
			log.Printf("game: reload settings: %v", err)
			return
		}
	}
	if err := g.loadLevel(g.level); err != nil {
		log.Printf("game: reload: %v", err)
	}
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}

	now := time.Now()
	dt := time.Second / time.Duration(ebiten.TPS())
	if !g.last.IsZero() {
		dt = min(now.Sub(g.last), maxFrameDelta)
	}
	g.last = now

	if g.watcher != nil {
		if changed := g.watcher.Poll(); len(changed) > 0 {
			g.reload(changed)
		}
	}
	if g.pendingLevel != "" {
		name := g.pendingLevel
		g.pendingLevel = ""
		if err := g.loadLevel(name); err != nil {
			log.Printf("game: %v", err)
		}
	}

	g.input.Update(g.scene)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if _, ok := g.scene.ActiveMenu(); ok {
			g.scene.PopMenu()
		} else if err := g.scene.PushMenu(pauseMenu); err != nil {
			log.Printf("game: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.screenshot = true
	}

	var updateTime time.Duration
	if menu, ok := g.scene.ActiveMenu(); ok {
		if err := menu.Update(); err != nil {
			log.Printf("game: %v", err)
		}
	} else {
		start := time.Now()
		if err := g.scene.Update(dt); err != nil {
			return fmt.Errorf("game: level %s: %w", g.level, err)
		}
		updateTime = time.Since(start)
	}

	g.updateMusic(dt)

	g.frame++
	return g.stats.Record(telemetry.FrameSample{
		Frame:    g.frame,
		Level:    g.level,
		FrameMS:  durationMS(dt),
		UpdateMS: durationMS(updateTime),
		Entities: len(g.scene.Entities()),
		Bodies:   g.scene.Physics().BodyCount(),
	})
}

// updateMusic follows the scene playlist and holds the track while a menu
// is open.
func (g *Game) updateMusic(dt time.Duration) {
	_, menuOpen := g.scene.ActiveMenu()
	g.music.SetPaused(menuOpen)
	g.music.SetPlaylist(g.scene.Playlist())
	g.music.Update(dt)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(ecs.ScreenTarget{Image: screen})
	g.scene.DrawMenus(screen)
	g.overlay.Draw(screen)

	if g.screenshot {
		g.screenshot = false
		path, err := telemetry.SaveScreenshot(g.opts.ScreenshotDir, telemetry.Capture(screen), time.Now())
		if err != nil {
			log.Printf("game: screenshot: %v", err)
		} else {
			log.Printf("game: saved %s", path)
		}
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return viewSize(g.settings.Window)
}

// Close stops the watcher and flushes telemetry, logging the frame summary.
func (g *Game) Close() error {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if g.stats != nil {
		log.Printf("telemetry: %s", g.stats.Summary())
	}
	return g.stats.Close()
}

func (g *Game) Resume() { g.scene.CloseMenus() }
func (g *Game) Back() { g.scene.PopMenu() }
func (g *Game) Quit() { g.quit = true }

func (g *Game) OpenMenu(name string) error {
	return g.scene.PushMenu(name)
}

// LoadLevel queues a level switch for the start of the next frame.
func (g *Game) LoadLevel(name string) error {
	if _, err := levels.Load(name); err != nil {
		return err
	}
	g.pendingLevel = name
	g.scene.CloseMenus()
	return nil
}

func startLevel(flagLevel string, settings *prefabs.Settings) (string, error) {
	switch {
	case flagLevel != "":
		return flagLevel, nil
	case settings.StartLevel != "":
		return settings.StartLevel, nil
	case len(settings.Levels) > 0:
		return settings.Levels[0], nil
	}
	if names := levels.Names(); len(names) > 0 {
		return names[0], nil
	}
	return "", fmt.Errorf("game: no level to start")
}

func viewSize(w prefabs.WindowSpec) (int, int) {
	width, height := w.Width, w.Height
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	return width, height
}

func windowTitle(w prefabs.WindowSpec, level string) string {
	title := w.Title
	if title == "" {
		title = "spritebox"
	}
	width, height := viewSize(w)
	vsync := "off"
	if w.VSync {
		vsync = "on"
	}
	return fmt.Sprintf("%s - %dx%d vsync %s - %s", title, width, height, vsync, level)
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
