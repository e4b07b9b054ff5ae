package entity

import (
	"fmt"
	"sort"
	"time"

	"github.com/milk9111/spritebox/ecs"
	"github.com/milk9111/spritebox/ecs/component"
	"github.com/milk9111/spritebox/levels"
	"github.com/milk9111/spritebox/prefabs"
)

// Deps are the loaded resources and services a level binds to.
type Deps struct {
	Textures Textures
	Sounds   Sounds
	// Scripts defaults to prefabs.LoadScript.
	Scripts ScriptLoader
}

// LoadLevel clears the scene and populates it from lvl. Any configuration
// error aborts the load; the scene is then left cleared.
func LoadLevel(scene *ecs.Scene, settings *prefabs.Settings, lvl *levels.Level, deps Deps) error {
	if scene == nil {
		panic("entity: LoadLevel with nil scene")
	}
	if settings == nil || lvl == nil {
		return fmt.Errorf("load level: missing settings or level")
	}

	scene.Clear()
	if err := loadLevel(scene, settings, lvl, deps); err != nil {
		scene.Clear()
		return fmt.Errorf("load level %q: %w", lvl.Name, err)
	}
	return nil
}

func loadLevel(scene *ecs.Scene, settings *prefabs.Settings, lvl *levels.Level, deps Deps) error {
	sheets, err := BuildSpriteSheets(settings.SpriteSheets, deps.Textures)
	if err != nil {
		return err
	}

	ctx := &buildContext{scene: scene, textures: deps.Textures, sheets: sheets}
	for _, spec := range lvl.Entities {
		if _, err := buildEntity(ctx, spec); err != nil {
			return err
		}
	}

	actions := newActionBuilder(scene, deps.Sounds, deps.Scripts, settings.Actions)
	for _, pending := range ctx.controllers {
		if err := bindControls(actions, pending, settings.Controls); err != nil {
			return fmt.Errorf("entity %q: %w", pending.entity.Name, err)
		}
	}

	scene.SetPlaylist(lvl.Playlist)
	return nil
}

// bindControls binds every key of the named control table, in key name
// order so load errors are reported deterministically.
func bindControls(actions *actionBuilder, pending pendingController, tables map[string]map[string]string) error {
	table, ok := tables[pending.table]
	if !ok {
		return fmt.Errorf("unknown control table %q", pending.table)
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, keyName := range names {
		key, err := ParseKey(keyName)
		if err != nil {
			return fmt.Errorf("control table %q: %w", pending.table, err)
		}
		bound, err := actions.Bundle(table[keyName])
		if err != nil {
			return fmt.Errorf("control table %q key %s: %w", pending.table, keyName, err)
		}
		pending.controller.Bind(key, bound...)
	}
	return nil
}

// BuildSpriteSheets resolves and validates every declared sheet.
func BuildSpriteSheets(specs []prefabs.SpriteSheetSpec, textures Textures) (map[string]*component.SpriteSheet, error) {
	out := make(map[string]*component.SpriteSheet, len(specs))
	for _, spec := range specs {
		if _, dup := out[spec.Name]; dup {
			return nil, fmt.Errorf("sprite sheet %q declared twice", spec.Name)
		}
		sheet, err := buildSpriteSheet(spec, textures)
		if err != nil {
			return nil, fmt.Errorf("sprite sheet %q: %w", spec.Name, err)
		}
		out[spec.Name] = sheet
	}
	return out, nil
}

func buildSpriteSheet(spec prefabs.SpriteSheetSpec, textures Textures) (*component.SpriteSheet, error) {
	if textures == nil {
		return nil, fmt.Errorf("%w %q", ErrMissingTexture, spec.Texture)
	}
	tex, ok := textures.Texture(spec.Texture)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingTexture, spec.Texture)
	}

	scale := spec.Scale
	if scale == 0 {
		scale = 1
	}
	sheet := &component.SpriteSheet{
		Name:       spec.Name,
		Texture:    tex,
		XOffset:    spec.XOffset,
		YOffset:    spec.YOffset,
		CellWidth:  spec.Width,
		CellHeight: spec.Height,
		Scale:      scale,
		Animations: make(map[component.AnimationType]component.AnimationInfo, len(spec.Animations)),
	}

	for _, anim := range spec.Animations {
		typ, err := component.ParseAnimationType(anim.Name)
		if err != nil {
			return nil, err
		}
		info := component.AnimationInfo{
			FrameCount:    anim.NumFrames,
			FrameDuration: time.Duration(anim.FrameTimeMS) * time.Millisecond,
			Rows:          make(map[component.Direction]int, len(anim.Rows)),
		}
		for dirName, row := range anim.Rows {
			dir, err := component.ParseDirection(dirName)
			if err != nil {
				return nil, fmt.Errorf("animation %s: %w", anim.Name, err)
			}
			info.Rows[dir] = row
		}
		sheet.Animations[typ] = info
	}

	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	return sheet, nil
}
