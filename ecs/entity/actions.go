package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/spritebox/ecs"
	"github.com/milk9111/spritebox/ecs/component"
	"github.com/milk9111/spritebox/prefabs"
)

var ErrUnknownAction = errors.New("entity: unknown action")

// Sounds plays and stops named sounds for the Sound primitive and scripts.
type Sounds interface {
	Play(name string)
	Stop(name string)
}

// ScriptLoader returns the source of a named script.
type ScriptLoader func(name string) ([]byte, error)

const (
	MoveVelocity = "velocity"
	MoveForce    = "force"
	MoveImpulse  = "impulse"
)

// actionBuilder turns named action bundles into bound component.Actions for
// one scene. Scripts are compiled once per file and cloned per binding.
type actionBuilder struct {
	scene   *ecs.Scene
	sounds  Sounds
	scripts ScriptLoader
	bundles map[string][]prefabs.ActionSpec
	cache   map[string]*compiledScript
}

func newActionBuilder(scene *ecs.Scene, sounds Sounds, scripts ScriptLoader, bundles map[string][]prefabs.ActionSpec) *actionBuilder {
	if scripts == nil {
		scripts = prefabs.LoadScript
	}
	return &actionBuilder{
		scene:   scene,
		sounds:  sounds,
		scripts: scripts,
		bundles: bundles,
		cache:   make(map[string]*compiledScript),
	}
}

// Bundle builds every primitive of the named bundle.
func (b *actionBuilder) Bundle(name string) ([]component.Action, error) {
	specs, ok := b.bundles[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, name)
	}
	out := make([]component.Action, 0, len(specs))
	for i, spec := range specs {
		action, err := b.primitive(spec)
		if err != nil {
			return nil, fmt.Errorf("action %q[%d]: %w", name, i, err)
		}
		out = append(out, action)
	}
	return out, nil
}

func (b *actionBuilder) primitive(spec prefabs.ActionSpec) (component.Action, error) {
	set := 0
	if spec.Sound != "" {
		set++
	}
	if spec.Move != nil {
		set++
	}
	if spec.Script != "" {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("expected exactly one of sound, move, script; got %d", set)
	}

	switch {
	case spec.Sound != "":
		return SoundAction(b.sounds, spec.Sound), nil
	case spec.Move != nil:
		return MoveAction(b.scene, *spec.Move)
	default:
		return b.scriptAction(spec.Script)
	}
}

// SoundAction plays the sound while pressed and stops it on release.
func SoundAction(sounds Sounds, name string) component.Action {
	return func(pressed bool) error {
		if sounds == nil {
			return nil
		}
		if pressed {
			sounds.Play(name)
		} else {
			sounds.Stop(name)
		}
		return nil
	}
}

// MoveAction drives the body of the named entity. The entity and its body
// are resolved now, so a bad target fails the level load.
func MoveAction(scene *ecs.Scene, spec prefabs.MoveSpec) (component.Action, error) {
	target, err := scene.Entity(spec.Entity)
	if err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}
	bodyComp, ok := ecs.First[*component.Body](target)
	if !ok {
		return nil, fmt.Errorf("move: entity %q has no body", spec.Entity)
	}
	handle := bodyComp.Handle
	vec := cp.Vector{X: spec.X, Y: spec.Y}

	mode := strings.ToLower(strings.TrimSpace(spec.Mode))
	if mode == "" {
		mode = MoveVelocity
	}

	switch mode {
	case MoveVelocity:
		return func(pressed bool) error {
			body, err := scene.Physics().Body(handle)
			if err != nil {
				return err
			}
			if pressed {
				body.SetVelocityVector(vec)
				target.CameraFocus = true
				return nil
			}
			body.SetVelocity(0, 0)
			target.CameraFocus = false
			return nil
		}, nil
	case MoveForce:
		return func(pressed bool) error {
			body, err := scene.Physics().Body(handle)
			if err != nil {
				return err
			}
			if pressed {
				body.SetForce(vec)
			} else {
				body.SetForce(cp.Vector{})
			}
			return nil
		}, nil
	case MoveImpulse:
		return func(pressed bool) error {
			if !pressed {
				return nil
			}
			body, err := scene.Physics().Body(handle)
			if err != nil {
				return err
			}
			body.ApplyImpulseAtLocalPoint(vec, cp.Vector{})
			return nil
		}, nil
	}
	return nil, fmt.Errorf("move: unknown mode %q", spec.Mode)
}
