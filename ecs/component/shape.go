package component

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Shape is a rectangle centered on Pose, either filled with Color or
// covered by Texture. With Repeat the texture is tiled at its native size
// instead of stretched.
type Shape struct {
	Width   float64
	Height  float64
	Color   color.Color
	Texture *ebiten.Image
	Repeat  bool
	Pose    Transform
	Local   Transform
}
