package component

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// Action is a bound input primitive. It runs with pressed=true every frame
// the key is held and once with pressed=false on release.
type Action func(pressed bool) error

type Controller struct {
	Bindings map[ebiten.Key][]Action
	Local    Transform
}

func NewController() *Controller {
	return &Controller{Bindings: make(map[ebiten.Key][]Action)}
}

func (c *Controller) Bind(key ebiten.Key, actions ...Action) {
	if c.Bindings == nil {
		c.Bindings = make(map[ebiten.Key][]Action)
	}
	c.Bindings[key] = append(c.Bindings[key], actions...)
}

// Keys returns the bound keys in ascending order.
func (c *Controller) Keys() []ebiten.Key {
	keys := make([]ebiten.Key, 0, len(c.Bindings))
	for k := range c.Bindings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Dispatch runs the actions bound to key in order and stops at the first
// error.
func (c *Controller) Dispatch(key ebiten.Key, pressed bool) error {
	for _, action := range c.Bindings[key] {
		if action == nil {
			continue
		}
		if err := action(pressed); err != nil {
			return err
		}
	}
	return nil
}
