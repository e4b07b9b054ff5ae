package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/spritebox/ecs"
)

// InputSystem feeds this frame's key edges into the scene's key state.
type InputSystem struct {
	pressed  []ebiten.Key
	released []ebiten.Key
}

func NewInputSystem() *InputSystem {
	return &InputSystem{}
}

func (i *InputSystem) Update(scene *ecs.Scene) {
	if scene == nil {
		return
	}
	i.pressed = inpututil.AppendJustPressedKeys(i.pressed[:0])
	i.released = inpututil.AppendJustReleasedKeys(i.released[:0])
	ApplyKeyEdges(scene.Keys(), i.pressed, i.released)
}

// ApplyKeyEdges records presses before releases so a key tapped within one
// frame still reports its release.
func ApplyKeyEdges(keys *ecs.KeyState, pressed, released []ebiten.Key) {
	for _, k := range pressed {
		keys.Press(k)
	}
	for _, k := range released {
		keys.Release(k)
	}
}
