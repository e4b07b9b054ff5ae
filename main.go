package main

import (
	"flag"
	"image"
	"io"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/spritebox/assets"
	"github.com/milk9111/spritebox/prefabs"
	"github.com/milk9111/spritebox/ui"
)

func main() {
	levelName := flag.String("level", "", "level name in levels/ (basename, .yaml optional); defaults to the settings start level")
	settingsName := flag.String("settings", prefabs.SettingsFile, "settings descriptor in prefabs/")
	watch := flag.Bool("watch", false, "reload settings, levels and scripts when they change on disk")
	statsPath := flag.String("stats", "", "write per-frame timings to this CSV file")
	shotDir := flag.String("screenshots", "screenshots", "directory for F12 screenshots")
	debug := flag.Bool("debug", false, "show the FPS counter")
	flag.Parse()

	overlay := ui.NewManager(nil)
	log.SetOutput(io.MultiWriter(os.Stderr, overlay))

	game, err := NewGame(Options{
		Level:         *levelName,
		Settings:      *settingsName,
		Watch:         *watch,
		StatsPath:     *statsPath,
		ScreenshotDir: *shotDir,
		Debug:         *debug,
	}, audio.NewContext(assets.SampleRate), overlay)
	if err != nil {
		log.Fatal(err)
	}

	window := game.settings.Window
	w, h := viewSize(window)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(window.VSync)
	if icon, ok := game.res.Image(window.Icon); ok {
		ebiten.SetWindowIcon([]image.Image{icon})
	}

	runErr := ebiten.RunGame(game)
	if err := game.Close(); err != nil {
		log.Printf("telemetry: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
