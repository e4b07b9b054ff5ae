package component

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Transform is a 2D pose in pixel space. Rotation is in degrees. A zero
// scale is read as 1 so the zero value is the identity.
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

func (t Transform) Scale() (float64, float64) {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// GeoM returns scale, then rotation, then translation.
func (t Transform) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	sx, sy := t.Scale()
	g.Scale(sx, sy)
	if t.Rotation != 0 {
		g.Rotate(t.Rotation * math.Pi / 180)
	}
	g.Translate(t.X, t.Y)
	return g
}

// WithPose copies position and rotation from p and keeps t's scale.
func (t Transform) WithPose(p Transform) Transform {
	t.X = p.X
	t.Y = p.Y
	t.Rotation = p.Rotation
	return t
}
