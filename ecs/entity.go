package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/spritebox/ecs/component"
)

// Entity is a named, ordered bag of components. Velocity is the last
// velocity read from its BODY, in meters per second.
type Entity struct {
	Name        string
	Transform   component.Transform
	Velocity    cp.Vector
	Components  []component.Component
	CameraFocus bool
}

func NewEntity(name string, components ...component.Component) *Entity {
	return &Entity{Name: name, Components: components}
}

func (e *Entity) Add(c component.Component) {
	if c == nil {
		return
	}
	e.Components = append(e.Components, c)
}

// First returns the first component of type T in declaration order.
func First[T component.Component](e *Entity) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	for _, c := range e.Components {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// Each calls fn for every component of type T in declaration order and
// stops at the first error.
func Each[T component.Component](e *Entity, fn func(T) error) error {
	if e == nil {
		return nil
	}
	for _, c := range e.Components {
		v, ok := c.(T)
		if !ok {
			continue
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

func Has[T component.Component](e *Entity) bool {
	_, ok := First[T](e)
	return ok
}
