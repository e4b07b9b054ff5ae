package ecs

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// KeyState tracks held keys and the keys released since the last flush.
// Held keys are a level signal; releases are one-shot edges.
type KeyState struct {
	pressed  map[ebiten.Key]struct{}
	released []ebiten.Key
}

func NewKeyState() *KeyState {
	return &KeyState{pressed: make(map[ebiten.Key]struct{})}
}

func (k *KeyState) Press(key ebiten.Key) {
	if k.pressed == nil {
		k.pressed = make(map[ebiten.Key]struct{})
	}
	k.pressed[key] = struct{}{}
}

func (k *KeyState) Release(key ebiten.Key) {
	delete(k.pressed, key)
	for _, r := range k.released {
		if r == key {
			return
		}
	}
	k.released = append(k.released, key)
}

func (k *KeyState) IsPressed(key ebiten.Key) bool {
	_, ok := k.pressed[key]
	return ok
}

func (k *KeyState) WasReleased(key ebiten.Key) bool {
	for _, r := range k.released {
		if r == key {
			return true
		}
	}
	return false
}

// Pressed returns the held keys in ascending order.
func (k *KeyState) Pressed() []ebiten.Key {
	keys := make([]ebiten.Key, 0, len(k.pressed))
	for key := range k.pressed {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (k *KeyState) Released() []ebiten.Key {
	return append([]ebiten.Key(nil), k.released...)
}

// Flush discards the released-key record.
func (k *KeyState) Flush() {
	k.released = k.released[:0]
}

func (k *KeyState) Reset() {
	clear(k.pressed)
	k.Flush()
}
