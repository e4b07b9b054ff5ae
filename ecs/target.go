package ecs

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// RenderTarget receives the draw pass. Geometry maps the unit of each
// primitive (w by h pixels for FillRect, src size for DrawImage) onto the
// target.
type RenderTarget interface {
	Size() (float64, float64)
	FillRect(w, h float64, clr color.Color, geo ebiten.GeoM)
	DrawImage(img *ebiten.Image, src image.Rectangle, geo ebiten.GeoM)
}

// ScreenTarget draws onto an ebiten image.
type ScreenTarget struct {
	Image *ebiten.Image
}

var whitePixel *ebiten.Image

func white() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

func (t ScreenTarget) Size() (float64, float64) {
	b := t.Image.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (t ScreenTarget) FillRect(w, h float64, clr color.Color, geo ebiten.GeoM) {
	if clr == nil {
		clr = color.White
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Concat(geo)
	op.ColorScale.ScaleWithColor(clr)
	t.Image.DrawImage(white(), op)
}

func (t ScreenTarget) DrawImage(img *ebiten.Image, src image.Rectangle, geo ebiten.GeoM) {
	if img == nil {
		return
	}
	sub, ok := img.SubImage(src).(*ebiten.Image)
	if !ok || sub == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geo
	op.Filter = ebiten.FilterNearest
	t.Image.DrawImage(sub, op)
}
