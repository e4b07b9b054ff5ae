package component

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

type Sprite struct {
	Texture   *ebiten.Image
	Source    image.Rectangle
	UseSource bool
	Width     float64
	Height    float64
	Pose      Transform
	Local     Transform
}

// SourceRect returns the region of Texture the sprite draws.
func (s *Sprite) SourceRect() image.Rectangle {
	if s.UseSource {
		return s.Source
	}
	if s.Texture == nil {
		return image.Rect(0, 0, int(s.Width), int(s.Height))
	}
	return s.Texture.Bounds()
}
