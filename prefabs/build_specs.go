package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EntitySpec lists an entity's components in declaration order. Each
// entry is a single-key map from component tag to its fields.
type EntitySpec struct {
	Name        string           `yaml:"name"`
	CameraFocus bool             `yaml:"camera_focus"`
	Components  []map[string]any `yaml:"components"`
}

// ComponentEntry is one tagged component of an EntitySpec.
type ComponentEntry struct {
	Tag string
	Raw any
}

// Entries flattens Components, rejecting entries with more or fewer than
// one tag.
func (e EntitySpec) Entries() ([]ComponentEntry, error) {
	out := make([]ComponentEntry, 0, len(e.Components))
	for i, m := range e.Components {
		if len(m) != 1 {
			return nil, fmt.Errorf("prefabs: entity %q component %d: expected one tag, got %d", e.Name, i, len(m))
		}
		for tag, raw := range m {
			out = append(out, ComponentEntry{Tag: tag, Raw: raw})
		}
	}
	return out, nil
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
}

type RectSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// BodyComponentSpec sizes and places a box body in pixels; X and Y are its
// center.
type BodyComponentSpec struct {
	Type     string  `yaml:"type"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
	Mass     float64 `yaml:"mass"`
	Friction float64 `yaml:"friction"`
}

type ShapeComponentSpec struct {
	Width   float64       `yaml:"width"`
	Height  float64       `yaml:"height"`
	X       float64       `yaml:"x"`
	Y       float64       `yaml:"y"`
	Texture string        `yaml:"texture"`
	Color   *YAMLColor    `yaml:"color"`
	Repeat  *bool         `yaml:"repeat"`
	Local   TransformSpec `yaml:"local"`
}

type SpriteComponentSpec struct {
	Width   float64       `yaml:"width"`
	Height  float64       `yaml:"height"`
	X       float64       `yaml:"x"`
	Y       float64       `yaml:"y"`
	Texture string        `yaml:"texture"`
	Source  *RectSpec     `yaml:"source"`
	Local   TransformSpec `yaml:"local"`
}

type AnimationComponentSpec struct {
	Sheet string        `yaml:"sheet"`
	X     float64       `yaml:"x"`
	Y     float64       `yaml:"y"`
	Local TransformSpec `yaml:"local"`
}

type CameraComponentSpec struct {
	Width    float64       `yaml:"width"`
	Height   float64       `yaml:"height"`
	X        float64       `yaml:"x"`
	Y        float64       `yaml:"y"`
	Viewport *RectSpec     `yaml:"viewport"`
	Local    TransformSpec `yaml:"local"`
}

type ControllerComponentSpec struct {
	Table string `yaml:"table"`
}
