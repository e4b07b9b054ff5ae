package entity

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/spritebox/ecs"
	"github.com/milk9111/spritebox/ecs/component"
)

type compiledScript struct {
	name     string
	compiled *tengo.Compiled
}

// scriptAction compiles the named script on first use. Each binding runs
// its own clone with the global `pressed` set before every run.
func (b *actionBuilder) scriptAction(name string) (component.Action, error) {
	cs, ok := b.cache[name]
	if !ok {
		src, err := b.scripts(name)
		if err != nil {
			return nil, fmt.Errorf("script %q: %w", name, err)
		}

		script := tengo.NewScript(src)
		script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
		if err := script.Add("pressed", false); err != nil {
			return nil, err
		}
		for fnName, fn := range b.scriptBuiltins(name) {
			if err := script.Add(fnName, fn); err != nil {
				return nil, fmt.Errorf("script %q: add %s: %w", name, fnName, err)
			}
		}

		compiled, err := script.Compile()
		if err != nil {
			return nil, fmt.Errorf("script %q: %w", name, err)
		}
		cs = &compiledScript{name: name, compiled: compiled}
		b.cache[name] = cs
	}

	compiled := cs.compiled.Clone()
	return func(pressed bool) error {
		if err := compiled.Set("pressed", pressed); err != nil {
			return err
		}
		if err := compiled.Run(); err != nil {
			return fmt.Errorf("script %q: %w", cs.name, err)
		}
		return nil
	}, nil
}

func (b *actionBuilder) scriptBuiltins(scriptName string) map[string]*tengo.UserFunction {
	scene := b.scene
	sounds := b.sounds

	vec := func(x, y float64) tengo.Object {
		return &tengo.ImmutableMap{Value: map[string]tengo.Object{
			"x": &tengo.Float{Value: x},
			"y": &tengo.Float{Value: y},
		}}
	}

	return map[string]*tengo.UserFunction{
		"set_velocity": {Name: "set_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
			body, x, y, err := bodyVectorArgs(scene, args)
			if err != nil {
				return nil, err
			}
			body.SetVelocity(x, y)
			return tengo.UndefinedValue, nil
		}},
		"apply_impulse": {Name: "apply_impulse", Value: func(args ...tengo.Object) (tengo.Object, error) {
			body, x, y, err := bodyVectorArgs(scene, args)
			if err != nil {
				return nil, err
			}
			body.ApplyImpulseAtLocalPoint(cp.Vector{X: x, Y: y}, cp.Vector{})
			return tengo.UndefinedValue, nil
		}},
		"position": {Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			e, err := entityArg(scene, args[0])
			if err != nil {
				return nil, err
			}
			return vec(e.Transform.X, e.Transform.Y), nil
		}},
		"velocity": {Name: "velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			e, err := entityArg(scene, args[0])
			if err != nil {
				return nil, err
			}
			return vec(e.Velocity.X, e.Velocity.Y), nil
		}},
		"play_sound": {Name: "play_sound", Value: func(args ...tengo.Object) (tengo.Object, error) {
			name, err := stringArg(args, "first")
			if err != nil {
				return nil, err
			}
			if sounds != nil {
				sounds.Play(name)
			}
			return tengo.UndefinedValue, nil
		}},
		"stop_sound": {Name: "stop_sound", Value: func(args ...tengo.Object) (tengo.Object, error) {
			name, err := stringArg(args, "first")
			if err != nil {
				return nil, err
			}
			if sounds != nil {
				sounds.Stop(name)
			}
			return tengo.UndefinedValue, nil
		}},
		"focus": {Name: "focus", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 2 {
				return nil, tengo.ErrWrongNumArguments
			}
			e, err := entityArg(scene, args[0])
			if err != nil {
				return nil, err
			}
			on, ok := tengo.ToBool(args[1])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "second", Expected: "bool", Found: args[1].TypeName()}
			}
			e.CameraFocus = on
			return tengo.UndefinedValue, nil
		}},
		"log": {Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				s, _ := tengo.ToString(a)
				parts = append(parts, s)
			}
			log.Printf("script %s: %s", scriptName, strings.Join(parts, " "))
			return tengo.UndefinedValue, nil
		}},
	}
}

func stringArg(args []tengo.Object, pos string) (string, error) {
	if len(args) != 1 {
		return "", tengo.ErrWrongNumArguments
	}
	s, ok := tengo.ToString(args[0])
	if !ok {
		return "", tengo.ErrInvalidArgumentType{Name: pos, Expected: "string", Found: args[0].TypeName()}
	}
	return s, nil
}

func entityArg(scene *ecs.Scene, arg tengo.Object) (*ecs.Entity, error) {
	name, ok := tengo.ToString(arg)
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "string", Found: arg.TypeName()}
	}
	return scene.Entity(name)
}

func bodyVectorArgs(scene *ecs.Scene, args []tengo.Object) (*cp.Body, float64, float64, error) {
	if len(args) != 3 {
		return nil, 0, 0, tengo.ErrWrongNumArguments
	}
	e, err := entityArg(scene, args[0])
	if err != nil {
		return nil, 0, 0, err
	}
	x, ok := tengo.ToFloat64(args[1])
	if !ok {
		return nil, 0, 0, tengo.ErrInvalidArgumentType{Name: "second", Expected: "float", Found: args[1].TypeName()}
	}
	y, ok := tengo.ToFloat64(args[2])
	if !ok {
		return nil, 0, 0, tengo.ErrInvalidArgumentType{Name: "third", Expected: "float", Found: args[2].TypeName()}
	}
	body, err := bodyOf(scene, e)
	if err != nil {
		return nil, 0, 0, err
	}
	return body, x, y, nil
}

func bodyOf(scene *ecs.Scene, e *ecs.Entity) (*cp.Body, error) {
	b, ok := ecs.First[*component.Body](e)
	if !ok {
		return nil, fmt.Errorf("entity %q has no body", e.Name)
	}
	return scene.Physics().Body(b.Handle)
}
