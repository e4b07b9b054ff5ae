package entity

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/spritebox/ecs"
	"github.com/milk9111/spritebox/ecs/component"
	"github.com/milk9111/spritebox/prefabs"
)

var (
	ErrUnknownComponent = errors.New("entity: unknown component")
	ErrMissingTexture   = errors.New("entity: missing texture")
	ErrMissingSheet     = errors.New("entity: missing sprite sheet")
)

// Textures resolves texture names for shapes, sprites and sheets.
type Textures interface {
	Texture(name string) (*ebiten.Image, bool)
	Stretch(name string) bool
}

type buildContext struct {
	scene    *ecs.Scene
	textures Textures
	sheets   map[string]*component.SpriteSheet
	// controllers are bound once every entity exists so Move actions can
	// resolve any target by name.
	controllers []pendingController
}

type pendingController struct {
	entity     *ecs.Entity
	controller *component.Controller
	table      string
}

type componentBuildFn func(ctx *buildContext, e *ecs.Entity, raw any) error

var componentRegistry = map[string]componentBuildFn{
	"body":       addBody,
	"shape":      addShape,
	"sprite":     addSprite,
	"animation":  addAnimation,
	"camera":     addCamera,
	"controller": addController,
}

// buildEntity creates an entity with its components in declaration order
// and adds it to the scene.
func buildEntity(ctx *buildContext, spec prefabs.EntitySpec) (*ecs.Entity, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, fmt.Errorf("build entity: missing name")
	}
	entries, err := spec.Entries()
	if err != nil {
		return nil, err
	}

	e := ecs.NewEntity(spec.Name)
	e.CameraFocus = spec.CameraFocus
	for _, entry := range entries {
		builder, ok := componentRegistry[entry.Tag]
		if !ok {
			return nil, fmt.Errorf("build entity %q: %w %q", spec.Name, ErrUnknownComponent, entry.Tag)
		}
		if err := builder(ctx, e, entry.Raw); err != nil {
			return nil, fmt.Errorf("build entity %q: add %q: %w", spec.Name, entry.Tag, err)
		}
	}

	if err := ctx.scene.AddEntity(e); err != nil {
		return nil, err
	}
	return e, nil
}

func toTransform(t prefabs.TransformSpec) component.Transform {
	return component.Transform{X: t.X, Y: t.Y, ScaleX: t.ScaleX, ScaleY: t.ScaleY, Rotation: t.Rotation}
}

type bodySpec = prefabs.BodyComponentSpec

func addBody(ctx *buildContext, e *ecs.Entity, raw any) error {
	spec, err := prefabs.DecodeComponentSpec[bodySpec](raw)
	if err != nil {
		return err
	}

	static := false
	switch strings.ToLower(spec.Type) {
	case "static":
		static = true
	case "", "dynamic":
	default:
		return fmt.Errorf("unknown body type %q", spec.Type)
	}

	handle, err := ctx.scene.Physics().CreateBody(ecs.BodySpec{
		Static:   static,
		X:        ecs.PixelsToMeters(spec.X),
		Y:        ecs.PixelsToMeters(spec.Y),
		Width:    ecs.PixelsToMeters(spec.Width),
		Height:   ecs.PixelsToMeters(spec.Height),
		Angle:    spec.Rotation * math.Pi / 180,
		Mass:     spec.Mass,
		Friction: spec.Friction,
	})
	if err != nil {
		return err
	}

	e.Transform.X = spec.X
	e.Transform.Y = spec.Y
	e.Transform.Rotation = spec.Rotation
	e.Add(&component.Body{
		Handle: handle,
		Static: static,
		Width:  spec.Width,
		Height: spec.Height,
	})
	return nil
}

type shapeSpec = prefabs.ShapeComponentSpec

func addShape(ctx *buildContext, e *ecs.Entity, raw any) error {
	spec, err := prefabs.DecodeComponentSpec[shapeSpec](raw)
	if err != nil {
		return err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("shape size %gx%g must be positive", spec.Width, spec.Height)
	}

	shape := &component.Shape{
		Width:  spec.Width,
		Height: spec.Height,
		Pose:   component.Transform{X: spec.X, Y: spec.Y},
		Local:  toTransform(spec.Local),
	}
	if spec.Color != nil {
		shape.Color = spec.Color.Color
	} else if spec.Texture == "" {
		shape.Color = color.White
	}

	if spec.Texture != "" {
		tex, err := ctx.texture(spec.Texture)
		if err != nil {
			return err
		}
		shape.Texture = tex
		if spec.Repeat != nil {
			shape.Repeat = *spec.Repeat
		} else {
			shape.Repeat = !ctx.textures.Stretch(spec.Texture)
		}
	}

	e.Add(shape)
	return nil
}

type spriteSpec = prefabs.SpriteComponentSpec

func addSprite(ctx *buildContext, e *ecs.Entity, raw any) error {
	spec, err := prefabs.DecodeComponentSpec[spriteSpec](raw)
	if err != nil {
		return err
	}
	if spec.Texture == "" {
		return fmt.Errorf("%w: sprite needs a texture", ErrMissingTexture)
	}
	tex, err := ctx.texture(spec.Texture)
	if err != nil {
		return err
	}

	sprite := &component.Sprite{
		Texture: tex,
		Width:   spec.Width,
		Height:  spec.Height,
		Pose:    component.Transform{X: spec.X, Y: spec.Y},
		Local:   toTransform(spec.Local),
	}
	if spec.Source != nil {
		sprite.UseSource = true
		sprite.Source = image.Rect(
			int(spec.Source.X), int(spec.Source.Y),
			int(spec.Source.X+spec.Source.Width), int(spec.Source.Y+spec.Source.Height),
		)
	}
	if sprite.Width <= 0 || sprite.Height <= 0 {
		src := sprite.SourceRect()
		sprite.Width, sprite.Height = float64(src.Dx()), float64(src.Dy())
	}

	e.Add(sprite)
	return nil
}

type animationSpec = prefabs.AnimationComponentSpec

func addAnimation(ctx *buildContext, e *ecs.Entity, raw any) error {
	spec, err := prefabs.DecodeComponentSpec[animationSpec](raw)
	if err != nil {
		return err
	}
	sheet, ok := ctx.sheets[spec.Sheet]
	if !ok {
		return fmt.Errorf("%w %q", ErrMissingSheet, spec.Sheet)
	}

	if !ecs.Has[*component.Body](e) {
		e.Transform.X = spec.X
		e.Transform.Y = spec.Y
	}
	e.Add(&component.Animation{
		Clock: component.NewAnimationClock(sheet),
		Pose:  component.Transform{X: spec.X, Y: spec.Y},
		Local: toTransform(spec.Local),
	})
	return nil
}

type cameraSpec = prefabs.CameraComponentSpec

func addCamera(_ *buildContext, e *ecs.Entity, raw any) error {
	spec, err := prefabs.DecodeComponentSpec[cameraSpec](raw)
	if err != nil {
		return err
	}
	cam := &component.Camera{
		View:  component.Rect{X: spec.X, Y: spec.Y, W: spec.Width, H: spec.Height},
		Local: toTransform(spec.Local),
	}
	if spec.Viewport != nil {
		cam.Viewport = component.Rect{X: spec.Viewport.X, Y: spec.Viewport.Y, W: spec.Viewport.Width, H: spec.Viewport.Height}
	}
	e.Add(cam)
	return nil
}

type controllerSpec = prefabs.ControllerComponentSpec

func addController(ctx *buildContext, e *ecs.Entity, raw any) error {
	spec, err := prefabs.DecodeComponentSpec[controllerSpec](raw)
	if err != nil {
		return err
	}
	if spec.Table == "" {
		return fmt.Errorf("controller needs a table")
	}
	c := component.NewController()
	e.Add(c)
	ctx.controllers = append(ctx.controllers, pendingController{entity: e, controller: c, table: spec.Table})
	return nil
}

func (ctx *buildContext) texture(name string) (*ebiten.Image, error) {
	if ctx.textures == nil {
		return nil, fmt.Errorf("%w %q", ErrMissingTexture, name)
	}
	tex, ok := ctx.textures.Texture(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingTexture, name)
	}
	return tex, nil
}
