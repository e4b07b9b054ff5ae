package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/spritebox/assets"
	"github.com/milk9111/spritebox/ecs/component"
	"github.com/milk9111/spritebox/ecs/entity"
	"github.com/milk9111/spritebox/prefabs"
	"github.com/milk9111/spritebox/ui"
)

const (
	screenWidth  = 512
	screenHeight = 512
)

// sheetViewer plays the animations of the sprite sheets declared in the
// settings. Arrows pick the direction, space toggles Idle/Walk and tab
// cycles sheets.
type sheetViewer struct {
	names  []string
	clocks map[string]*component.AnimationClock
	index  int
	face   text.Face
	err    error
}

func (v *sheetViewer) clock() *component.AnimationClock {
	return v.clocks[v.names[v.index]]
}

func (v *sheetViewer) Update() error {
	c := v.clock()
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		v.index = (v.index + 1) % len(v.names)
		c = v.clock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if c.Type() == component.AnimationIdle {
			c.SetType(component.AnimationWalk)
		} else {
			c.SetType(component.AnimationIdle)
		}
	}

	arrows := map[ebiten.Key]component.Direction{
		ebiten.KeyArrowUp:    component.DirectionUp,
		ebiten.KeyArrowDown:  component.DirectionDown,
		ebiten.KeyArrowLeft:  component.DirectionLeft,
		ebiten.KeyArrowRight: component.DirectionRight,
	}
	for key, dir := range arrows {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		for _, allowed := range c.Sheet().Mode().Directions() {
			if allowed == dir {
				c.SetDirection(dir)
			}
		}
	}

	_, v.err = c.Advance(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (v *sheetViewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x20, 0x20, 0x28, 0xff})
	c := v.clock()
	sheet := c.Sheet()

	status := fmt.Sprintf("%s  %s/%s  col %d", sheet.Name, c.Type(), c.Direction(), c.Column())
	if v.err != nil {
		status = fmt.Sprintf("%s  %v", sheet.Name, v.err)
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(8, 8)
	text.Draw(screen, status, v.face, op)

	rect, err := c.Rect()
	if err != nil || sheet.Texture == nil {
		return
	}
	frame, ok := sheet.Texture.SubImage(rect).(*ebiten.Image)
	if !ok {
		return
	}
	scale := float64(max(sheet.Scale, 1))
	fw := float64(rect.Dx()) * scale
	fh := float64(rect.Dy()) * scale
	img := &ebiten.DrawImageOptions{}
	img.GeoM.Scale(scale, scale)
	img.GeoM.Translate((screenWidth-fw)/2, (screenHeight-fh)/2)
	img.Filter = ebiten.FilterNearest
	screen.DrawImage(frame, img)
}

func (v *sheetViewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	settingsName := flag.String("settings", prefabs.SettingsFile, "settings descriptor in prefabs/")
	only := flag.String("sheet", "", "start on this sprite sheet")
	flag.Parse()

	settings, err := prefabs.LoadSettings(*settingsName)
	if err != nil {
		log.Fatal(err)
	}
	res := assets.New(assets.FS(), nil)
	if err := res.LoadAll(settings.Resources); err != nil {
		log.Fatal(err)
	}
	sheets, err := entity.BuildSpriteSheets(settings.SpriteSheets, res)
	if err != nil {
		log.Fatal(err)
	}
	if len(sheets) == 0 {
		log.Fatalf("no sprite sheets in %s", *settingsName)
	}

	v := &sheetViewer{clocks: make(map[string]*component.AnimationClock), face: ui.DefaultFace()}
	for name, sheet := range sheets {
		v.names = append(v.names, name)
		v.clocks[name] = component.NewAnimationClock(sheet)
	}
	sort.Strings(v.names)
	for i, name := range v.names {
		if name == *only {
			v.index = i
		}
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Sprite Sheet Viewer")
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
