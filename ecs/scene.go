package ecs

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/spritebox/ecs/component"
)

var (
	ErrDuplicateEntity = errors.New("ecs: duplicate entity name")
	ErrEntityNotFound  = errors.New("ecs: entity not found")
	ErrMenuNotFound    = errors.New("ecs: menu not found")
)

// Camera maps world space onto the render target. Transform takes camera
// space to world space; View is the region of camera space shown and
// Viewport the normalized region of the target it fills.
type Camera struct {
	Transform ebiten.GeoM
	View      component.Rect
	Viewport  component.Rect
}

// WorldToScreen returns the camera inverse followed by the view to
// viewport mapping for a target of the given size.
func (c Camera) WorldToScreen(targetW, targetH float64) ebiten.GeoM {
	g := c.Transform
	if g.IsInvertible() {
		g.Invert()
	} else {
		g.Reset()
	}
	g.Translate(-c.View.X, -c.View.Y)
	if !c.View.Empty() {
		g.Scale(c.Viewport.W*targetW/c.View.W, c.Viewport.H*targetH/c.View.H)
	}
	g.Translate(c.Viewport.X*targetW, c.Viewport.Y*targetH)
	return g
}

// Overlay is a UI layer stacked above the scene, such as a menu.
type Overlay interface {
	Update() error
	Draw(screen *ebiten.Image)
}

type SceneConfig struct {
	ViewWidth  float64
	ViewHeight float64
	// CameraFocusBias lifts the focus point above the focused entity so the
	// entity sits below the middle of the view.
	CameraFocusBias float64
	Rand            *rand.Rand
}

// Scene owns the physics world and the ordered entities of the current
// level. Insertion order is update and draw order.
type Scene struct {
	cfg      SceneConfig
	physics  *PhysicsWorld
	entities []*Entity
	byName   map[string]*Entity
	camera   Camera
	playlist []string
	menus    map[string]Overlay
	stack    []string
	keys     *KeyState
	rng      *rand.Rand
}

func NewScene(cfg SceneConfig) *Scene {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	s := &Scene{
		cfg:     cfg,
		physics: NewPhysicsWorld(),
		byName:  make(map[string]*Entity),
		menus:   make(map[string]Overlay),
		keys:    NewKeyState(),
		rng:     rng,
	}
	s.resetCamera()
	return s
}

// Clear destroys every entity and body, empties the playlist and resets
// the camera. Registered menus survive.
func (s *Scene) Clear() {
	s.physics.DestroyAll()
	s.entities = nil
	clear(s.byName)
	s.playlist = nil
	s.resetCamera()
	s.keys.Flush()
}

func (s *Scene) resetCamera() {
	s.camera = Camera{
		View:     component.Rect{W: s.cfg.ViewWidth, H: s.cfg.ViewHeight},
		Viewport: component.Rect{W: 1, H: 1},
	}
}

func (s *Scene) Physics() *PhysicsWorld { return s.physics }
func (s *Scene) Keys() *KeyState        { return s.keys }
func (s *Scene) Camera() Camera         { return s.camera }

func (s *Scene) SetCamera(c Camera) {
	s.camera = c
}

// AddEntity appends e to the scene. Names are unique.
func (s *Scene) AddEntity(e *Entity) error {
	if e == nil {
		return fmt.Errorf("ecs: add entity: nil entity")
	}
	if _, ok := s.byName[e.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEntity, e.Name)
	}
	s.entities = append(s.entities, e)
	s.byName[e.Name] = e
	return nil
}

func (s *Scene) Entity(name string) (*Entity, error) {
	e, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntityNotFound, name)
	}
	return e, nil
}

func (s *Scene) Entities() []*Entity {
	return s.entities
}

// SetPlaylist replaces the music playlist. Starting from an empty
// playlist shuffles the new one once.
func (s *Scene) SetPlaylist(names []string) {
	wasEmpty := len(s.playlist) == 0
	s.playlist = append([]string(nil), names...)
	if wasEmpty {
		s.rng.Shuffle(len(s.playlist), func(i, j int) {
			s.playlist[i], s.playlist[j] = s.playlist[j], s.playlist[i]
		})
	}
}

func (s *Scene) Playlist() []string {
	return append([]string(nil), s.playlist...)
}

func (s *Scene) RegisterMenu(name string, menu Overlay) {
	s.menus[name] = menu
}

func (s *Scene) Menu(name string) (Overlay, bool) {
	m, ok := s.menus[name]
	return m, ok
}

// MenuNames returns the registered menu names in sorted order.
func (s *Scene) MenuNames() []string {
	names := make([]string, 0, len(s.menus))
	for name := range s.menus {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scene) PushMenu(name string) error {
	if _, ok := s.menus[name]; !ok {
		return fmt.Errorf("%w: %q", ErrMenuNotFound, name)
	}
	s.stack = append(s.stack, name)
	return nil
}

func (s *Scene) PopMenu() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

func (s *Scene) CloseMenus() {
	s.stack = s.stack[:0]
}

// ActiveMenu returns the menu on top of the stack.
func (s *Scene) ActiveMenu() (Overlay, bool) {
	if len(s.stack) == 0 {
		return nil, false
	}
	return s.menus[s.stack[len(s.stack)-1]], true
}

// DrawMenus draws the menu stack bottom to top.
func (s *Scene) DrawMenus(screen *ebiten.Image) {
	for _, name := range s.stack {
		if m := s.menus[name]; m != nil {
			m.Draw(screen)
		}
	}
}
