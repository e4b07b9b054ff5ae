package ecs

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/spritebox/ecs/component"
)

// Draw renders every SHAPE, SPRITE and ANIMATION in entity insertion order
// then declaration order. There is no depth sort; layering comes from load
// order.
func (s *Scene) Draw(target RenderTarget) {
	tw, th := target.Size()
	view := s.camera.WorldToScreen(tw, th)

	for _, e := range s.entities {
		for _, c := range e.Components {
			switch v := c.(type) {
			case *component.Shape:
				drawShape(target, v, view)
			case *component.Sprite:
				drawSprite(target, v, view)
			case *component.Animation:
				drawAnimation(target, v, view)
			}
		}
	}
}

// compose returns local, then pose, then the camera mapping, with the
// primitive's w by h box centered on the origin first.
func compose(w, h float64, local, pose component.Transform, view ebiten.GeoM) ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-w/2, -h/2)
	l := local.GeoM()
	g.Concat(l)
	p := pose.GeoM()
	g.Concat(p)
	g.Concat(view)
	return g
}

func drawShape(target RenderTarget, sh *component.Shape, view ebiten.GeoM) {
	if sh.Width <= 0 || sh.Height <= 0 {
		return
	}
	geo := compose(sh.Width, sh.Height, sh.Local, sh.Pose, view)
	if sh.Texture == nil {
		clr := sh.Color
		if clr == nil {
			clr = color.White
		}
		target.FillRect(sh.Width, sh.Height, clr, geo)
		return
	}

	tb := sh.Texture.Bounds()
	tw, th := tb.Dx(), tb.Dy()
	if tw == 0 || th == 0 {
		return
	}
	if !sh.Repeat {
		var g ebiten.GeoM
		g.Scale(sh.Width/float64(tw), sh.Height/float64(th))
		g.Concat(geo)
		target.DrawImage(sh.Texture, tb, g)
		return
	}

	for y := 0; y < int(sh.Height); y += th {
		for x := 0; x < int(sh.Width); x += tw {
			w := min(tw, int(sh.Width)-x)
			h := min(th, int(sh.Height)-y)
			src := image.Rect(tb.Min.X, tb.Min.Y, tb.Min.X+w, tb.Min.Y+h)
			var g ebiten.GeoM
			g.Translate(float64(x), float64(y))
			g.Concat(geo)
			target.DrawImage(sh.Texture, src, g)
		}
	}
}

func drawSprite(target RenderTarget, sp *component.Sprite, view ebiten.GeoM) {
	if sp.Texture == nil {
		return
	}
	src := sp.SourceRect()
	if src.Empty() {
		return
	}
	w, h := float64(src.Dx()), float64(src.Dy())
	var g ebiten.GeoM
	if sp.Width > 0 && sp.Height > 0 {
		g.Scale(sp.Width/w, sp.Height/h)
		w, h = sp.Width, sp.Height
	}
	g.Concat(compose(w, h, sp.Local, sp.Pose, view))
	target.DrawImage(sp.Texture, src, g)
}

func drawAnimation(target RenderTarget, a *component.Animation, view ebiten.GeoM) {
	if a.Clock == nil {
		return
	}
	sheet := a.Clock.Sheet()
	if sheet == nil || sheet.Texture == nil {
		return
	}
	src, err := a.Clock.Rect()
	if err != nil {
		return
	}
	scale := float64(max(sheet.Scale, 1))
	w, h := float64(src.Dx())*scale, float64(src.Dy())*scale
	var g ebiten.GeoM
	g.Scale(scale, scale)
	g.Concat(compose(w, h, a.Local, a.Pose, view))
	target.DrawImage(sheet.Texture, src, g)
}
