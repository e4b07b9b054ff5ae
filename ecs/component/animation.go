package component

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	ErrMissingRow       = errors.New("animation: missing row")
	ErrMissingAnimation = errors.New("animation: missing animation")
	ErrInvalidSheet     = errors.New("animation: invalid sheet")
)

type AnimationType uint8

const (
	AnimationIdle AnimationType = iota
	AnimationWalk
)

var animationTypes = []AnimationType{AnimationIdle, AnimationWalk}

func (t AnimationType) String() string {
	switch t {
	case AnimationIdle:
		return "Idle"
	case AnimationWalk:
		return "Walk"
	}
	return fmt.Sprintf("AnimationType(%d)", t)
}

func ParseAnimationType(name string) (AnimationType, error) {
	for _, t := range animationTypes {
		if strings.EqualFold(name, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("animation: unknown type %q", name)
}

type Direction uint8

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

var directions = []Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "Up"
	case DirectionDown:
		return "Down"
	case DirectionLeft:
		return "Left"
	case DirectionRight:
		return "Right"
	}
	return fmt.Sprintf("Direction(%d)", d)
}

func (d Direction) Horizontal() bool {
	return d == DirectionLeft || d == DirectionRight
}

func ParseDirection(name string) (Direction, error) {
	for _, d := range directions {
		if strings.EqualFold(name, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("animation: unknown direction %q", name)
}

// DirectionMode says which directions a sheet draws.
type DirectionMode uint8

const (
	DirectionModeFourWay DirectionMode = iota
	DirectionModeHorizontal
)

func (m DirectionMode) Directions() []Direction {
	if m == DirectionModeHorizontal {
		return []Direction{DirectionLeft, DirectionRight}
	}
	return directions
}

type AnimationInfo struct {
	FrameCount    int
	FrameDuration time.Duration
	Rows          map[Direction]int
}

func (a AnimationInfo) Duration() time.Duration {
	return time.Duration(a.FrameCount) * a.FrameDuration
}

// SpriteSheet describes a grid of animation cells on one texture. It is
// built once per level and never mutated afterwards.
type SpriteSheet struct {
	Name       string
	Texture    *ebiten.Image
	XOffset    int
	YOffset    int
	CellWidth  int
	CellHeight int
	Scale      int
	Animations map[AnimationType]AnimationInfo
}

// Mode reports DirectionModeHorizontal when no animation has an Up or Down
// row.
func (s *SpriteSheet) Mode() DirectionMode {
	for _, info := range s.Animations {
		for dir := range info.Rows {
			if !dir.Horizontal() {
				return DirectionModeFourWay
			}
		}
	}
	return DirectionModeHorizontal
}

// Validate checks that every animation type and every direction of the
// sheet's mode resolves to a row.
func (s *SpriteSheet) Validate() error {
	if s.CellWidth <= 0 || s.CellHeight <= 0 {
		return fmt.Errorf("%w: sheet %q cell size %dx%d", ErrInvalidSheet, s.Name, s.CellWidth, s.CellHeight)
	}
	if s.Scale <= 0 {
		return fmt.Errorf("%w: sheet %q scale %d", ErrInvalidSheet, s.Name, s.Scale)
	}
	mode := s.Mode()
	for _, t := range animationTypes {
		info, ok := s.Animations[t]
		if !ok {
			return fmt.Errorf("%w: sheet %q has no %s animation", ErrMissingAnimation, s.Name, t)
		}
		if info.FrameCount <= 0 || info.FrameDuration <= 0 {
			return fmt.Errorf("%w: sheet %q %s needs positive frames and frame time", ErrInvalidSheet, s.Name, t)
		}
		for _, dir := range mode.Directions() {
			if _, ok := info.Rows[dir]; !ok {
				return fmt.Errorf("%w: sheet %q %s/%s", ErrMissingRow, s.Name, t, dir)
			}
		}
	}
	return nil
}

// AnimationClock picks the sheet cell for the current type and direction
// from accumulated time. Phase wraps modulo the animation length and is
// never reset by SetType or SetDirection.
type AnimationClock struct {
	sheet *SpriteSheet
	typ   AnimationType
	dir   Direction
	phase time.Duration
}

func NewAnimationClock(sheet *SpriteSheet) *AnimationClock {
	return &AnimationClock{
		sheet: sheet,
		typ:   AnimationIdle,
		dir:   DirectionRight,
	}
}

func (c *AnimationClock) Sheet() *SpriteSheet      { return c.sheet }
func (c *AnimationClock) Type() AnimationType      { return c.typ }
func (c *AnimationClock) Direction() Direction     { return c.dir }
func (c *AnimationClock) Phase() time.Duration     { return c.phase }
func (c *AnimationClock) SetType(t AnimationType)  { c.typ = t }
func (c *AnimationClock) SetDirection(d Direction) { c.dir = d }

// Advance adds elapsed to the phase and returns the cell to draw. A type
// and direction pair without a row fails before the phase moves.
func (c *AnimationClock) Advance(elapsed time.Duration) (image.Rectangle, error) {
	info, row, err := c.lookup()
	if err != nil {
		return image.Rectangle{}, err
	}
	if elapsed > 0 {
		c.phase += elapsed
	}
	if d := info.Duration(); c.phase >= d {
		c.phase %= d
	}
	return c.cell(info, row), nil
}

// Rect returns the current cell without advancing.
func (c *AnimationClock) Rect() (image.Rectangle, error) {
	info, row, err := c.lookup()
	if err != nil {
		return image.Rectangle{}, err
	}
	return c.cell(info, row), nil
}

// Column is the frame index for the current phase.
func (c *AnimationClock) Column() int {
	if c.sheet == nil {
		return 0
	}
	info, ok := c.sheet.Animations[c.typ]
	if !ok || info.FrameDuration <= 0 || info.FrameCount <= 0 {
		return 0
	}
	return int((c.phase % info.Duration()) / info.FrameDuration)
}

func (c *AnimationClock) lookup() (AnimationInfo, int, error) {
	if c.sheet == nil {
		return AnimationInfo{}, 0, fmt.Errorf("%w: clock has no sheet", ErrInvalidSheet)
	}
	info, ok := c.sheet.Animations[c.typ]
	if !ok {
		return AnimationInfo{}, 0, fmt.Errorf("%w: sheet %q type %s", ErrMissingAnimation, c.sheet.Name, c.typ)
	}
	if info.FrameCount <= 0 || info.FrameDuration <= 0 {
		return AnimationInfo{}, 0, fmt.Errorf("%w: sheet %q %s needs positive frames and frame time", ErrInvalidSheet, c.sheet.Name, c.typ)
	}
	row, ok := info.Rows[c.dir]
	if !ok {
		return AnimationInfo{}, 0, fmt.Errorf("%w: sheet %q %s/%s", ErrMissingRow, c.sheet.Name, c.typ, c.dir)
	}
	return info, row, nil
}

func (c *AnimationClock) cell(info AnimationInfo, row int) image.Rectangle {
	col := int((c.phase % info.Duration()) / info.FrameDuration)
	x := c.sheet.XOffset + col*c.sheet.CellWidth
	y := c.sheet.YOffset + row*c.sheet.CellHeight
	return image.Rect(x, y, x+c.sheet.CellWidth, y+c.sheet.CellHeight)
}

// Animation owns a clock and the pose its current cell is drawn at.
type Animation struct {
	Clock *AnimationClock
	Pose  Transform
	Local Transform
}
