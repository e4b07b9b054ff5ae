package ecs

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/spritebox/ecs/component"
)

type drawCall struct {
	kind string
	clr  color.Color
	img  *ebiten.Image
	src  image.Rectangle
	w, h float64
	geo  ebiten.GeoM
}

type recordingTarget struct {
	w, h  float64
	calls []drawCall
}

func (r *recordingTarget) Size() (float64, float64) { return r.w, r.h }

func (r *recordingTarget) FillRect(w, h float64, clr color.Color, geo ebiten.GeoM) {
	r.calls = append(r.calls, drawCall{kind: "rect", clr: clr, w: w, h: h, geo: geo})
}

func (r *recordingTarget) DrawImage(img *ebiten.Image, src image.Rectangle, geo ebiten.GeoM) {
	r.calls = append(r.calls, drawCall{kind: "image", img: img, src: src, w: float64(src.Dx()), h: float64(src.Dy()), geo: geo})
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func newTestScene() *Scene {
	return NewScene(SceneConfig{ViewWidth: 800, ViewHeight: 600, Rand: rand.New(rand.NewSource(1))})
}

func walkSheet() *component.SpriteSheet {
	rows := map[component.Direction]int{
		component.DirectionUp:    0,
		component.DirectionDown:  1,
		component.DirectionLeft:  2,
		component.DirectionRight: 3,
	}
	return &component.SpriteSheet{
		Name:       "walker",
		CellWidth:  32,
		CellHeight: 32,
		Scale:      1,
		Animations: map[component.AnimationType]component.AnimationInfo{
			component.AnimationIdle: {FrameCount: 2, FrameDuration: 100 * time.Millisecond, Rows: rows},
			component.AnimationWalk: {FrameCount: 2, FrameDuration: 100 * time.Millisecond, Rows: rows},
		},
	}
}

func TestSceneClear(t *testing.T) {
	s := newTestScene()

	for i, name := range []string{"a", "b", "c"} {
		h, err := s.Physics().CreateBody(BodySpec{X: float64(i), Width: 1, Height: 1})
		if err != nil {
			t.Fatalf("create body: %v", err)
		}
		e := NewEntity(name, &component.Body{Handle: h})
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("add entity: %v", err)
		}
	}
	s.SetPlaylist([]string{"one", "two"})
	moved := Camera{View: component.Rect{X: 5, W: 10, H: 10}, Viewport: component.Rect{W: 0.5, H: 0.5}}
	moved.Transform.Translate(1, 1)
	s.SetCamera(moved)

	s.Clear()

	if len(s.Entities()) != 0 {
		t.Fatalf("expected no entities, got %d", len(s.Entities()))
	}
	if s.Physics().BodyCount() != 0 {
		t.Fatalf("expected no bodies, got %d", s.Physics().BodyCount())
	}
	remaining := 0
	s.Physics().Space().EachBody(func(*cp.Body) { remaining++ })
	if remaining != 0 {
		t.Fatalf("expected empty space, got %d bodies", remaining)
	}
	if len(s.Playlist()) != 0 {
		t.Fatalf("expected empty playlist, got %v", s.Playlist())
	}
	cam := s.Camera()
	x, y := cam.Transform.Apply(3, 4)
	if x != 3 || y != 4 {
		t.Fatalf("camera transform not identity: (%v,%v)", x, y)
	}
	if cam.View != (component.Rect{W: 800, H: 600}) {
		t.Fatalf("unexpected view %+v", cam.View)
	}
	if cam.Viewport != (component.Rect{W: 1, H: 1}) {
		t.Fatalf("unexpected viewport %+v", cam.Viewport)
	}
	if _, err := s.Entity("a"); !errors.Is(err, ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
	if err := s.AddEntity(NewEntity("a")); err != nil {
		t.Fatalf("name should be free after clear: %v", err)
	}
}

func TestSceneDuplicateName(t *testing.T) {
	s := newTestScene()
	if err := s.AddEntity(NewEntity("hero")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddEntity(NewEntity("hero")); !errors.Is(err, ErrDuplicateEntity) {
		t.Fatalf("expected ErrDuplicateEntity, got %v", err)
	}
}

func TestScenePlaylistShuffledOnceFromEmpty(t *testing.T) {
	s := newTestScene()
	tracks := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	s.SetPlaylist(tracks)
	first := s.Playlist()
	if len(first) != len(tracks) {
		t.Fatalf("expected %d tracks, got %d", len(tracks), len(first))
	}

	s.SetPlaylist([]string{"x", "y", "z"})
	got := s.Playlist()
	want := []string{"x", "y", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("non-empty playlist should not be reshuffled: %v", got)
		}
	}
}

// hero is a 1x1 m dynamic body at the origin with a walk sheet and a
// controller binding D to a velocity move of (+5, 0).
func newHeroScene(t *testing.T) (*Scene, *Entity) {
	t.Helper()
	s := newTestScene()
	h, err := s.Physics().CreateBody(BodySpec{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("create body: %v", err)
	}
	hero := NewEntity("hero",
		&component.Body{Handle: h, Width: 100, Height: 100},
		&component.Animation{Clock: component.NewAnimationClock(walkSheet())},
	)
	ctrl := component.NewController()
	ctrl.Bind(ebiten.KeyD, func(pressed bool) error {
		target, err := s.Entity("hero")
		if err != nil {
			return err
		}
		b, _ := First[*component.Body](target)
		body, err := s.Physics().Body(b.Handle)
		if err != nil {
			return err
		}
		if pressed {
			body.SetVelocity(5, 0)
			target.CameraFocus = true
		} else {
			body.SetVelocity(0, 0)
			target.CameraFocus = false
		}
		return nil
	})
	hero.Add(ctrl)
	if err := s.AddEntity(hero); err != nil {
		t.Fatalf("add: %v", err)
	}
	return s, hero
}

func TestSceneUpdateWalkScenario(t *testing.T) {
	s, hero := newHeroScene(t)
	anim, _ := First[*component.Animation](hero)
	clock := anim.Clock

	s.Keys().Press(ebiten.KeyD)
	if err := s.Update(50 * time.Millisecond); err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	if !approxEqual(hero.Velocity.X, 5) || !approxEqual(hero.Velocity.Y, 0) {
		t.Fatalf("frame 1: expected velocity (5,0), got %v", hero.Velocity)
	}
	if clock.Type() != component.AnimationWalk || clock.Direction() != component.DirectionRight {
		t.Fatalf("frame 1: expected Walk/Right, got %s/%s", clock.Type(), clock.Direction())
	}
	if clock.Phase() != 50*time.Millisecond || clock.Column() != 0 {
		t.Fatalf("frame 1: expected phase 50ms column 0, got %v column %d", clock.Phase(), clock.Column())
	}
	// 5 m/s for 50ms is 25px
	if !approxEqual(hero.Transform.X, 25) {
		t.Fatalf("frame 1: expected x=25px, got %v", hero.Transform.X)
	}

	if err := s.Update(60 * time.Millisecond); err != nil {
		t.Fatalf("frame 2: %v", err)
	}
	if clock.Phase() != 110*time.Millisecond || clock.Column() != 1 {
		t.Fatalf("frame 2: expected phase 110ms column 1, got %v column %d", clock.Phase(), clock.Column())
	}

	s.Keys().Release(ebiten.KeyD)
	if err := s.Update(10 * time.Millisecond); err != nil {
		t.Fatalf("frame 3: %v", err)
	}
	if !approxEqual(hero.Velocity.X, 0) || !approxEqual(hero.Velocity.Y, 0) {
		t.Fatalf("frame 3: expected zero velocity, got %v", hero.Velocity)
	}
	if clock.Type() != component.AnimationIdle {
		t.Fatalf("frame 3: expected Idle, got %s", clock.Type())
	}
	if clock.Direction() != component.DirectionRight {
		t.Fatalf("frame 3: idle should keep direction, got %s", clock.Direction())
	}
	if hero.CameraFocus {
		t.Fatalf("frame 3: release should drop camera focus")
	}
	if len(s.Keys().Released()) != 0 {
		t.Fatalf("released keys should be flushed after the frame")
	}
}

func TestSceneControllerEdges(t *testing.T) {
	s := newTestScene()
	var presses, releases int
	ctrl := component.NewController()
	ctrl.Bind(ebiten.KeySpace, func(pressed bool) error {
		if pressed {
			presses++
		} else {
			releases++
		}
		return nil
	})
	if err := s.AddEntity(NewEntity("input", ctrl)); err != nil {
		t.Fatalf("add: %v", err)
	}

	frames := []struct {
		press, release bool
	}{
		{press: true},
		{},
		{},
		{release: true},
		{},
		{},
	}
	for i, f := range frames {
		if f.press {
			s.Keys().Press(ebiten.KeySpace)
		}
		if f.release {
			s.Keys().Release(ebiten.KeySpace)
		}
		if err := s.Update(time.Millisecond); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if presses != 3 {
		t.Fatalf("held key should fire every frame: expected 3, got %d", presses)
	}
	if releases != 1 {
		t.Fatalf("release should fire once, got %d", releases)
	}
}

func TestSceneHeldKeyWinsOverRelease(t *testing.T) {
	s, hero := newHeroScene(t)
	ctrl, _ := First[*component.Controller](hero)
	ctrl.Bind(ebiten.KeyArrowRight, ctrl.Bindings[ebiten.KeyD]...)

	s.Keys().Press(ebiten.KeyD)
	s.Keys().Press(ebiten.KeyArrowRight)
	if err := s.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("frame 1: %v", err)
	}

	// ArrowRight sorts after D, so a key-order dispatch would zero the
	// velocity after D set it.
	s.Keys().Release(ebiten.KeyArrowRight)
	if err := s.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("frame 2: %v", err)
	}
	if !approxEqual(hero.Velocity.X, 5) || !approxEqual(hero.Velocity.Y, 0) {
		t.Fatalf("expected velocity (5,0) while D is held, got %v", hero.Velocity)
	}
	if !hero.CameraFocus {
		t.Fatalf("expected camera focus to stay on while D is held")
	}
	anim, _ := First[*component.Animation](hero)
	if anim.Clock.Type() != component.AnimationWalk {
		t.Fatalf("expected walk, got %s", anim.Clock.Type())
	}
}

func TestSceneCameraFocus(t *testing.T) {
	s, hero := newHeroScene(t)
	s.cfg.CameraFocusBias = 50

	s.Keys().Press(ebiten.KeyD)
	if err := s.Update(100 * time.Millisecond); err != nil {
		t.Fatalf("update: %v", err)
	}
	// the hero's world position lands in the middle of the view, 50px low
	g := s.Camera().WorldToScreen(800, 600)
	x, y := g.Apply(hero.Transform.X, hero.Transform.Y)
	if !approxEqual(x, 400) || !approxEqual(y, 350) {
		t.Fatalf("expected hero at (400,350) on screen, got (%v,%v)", x, y)
	}
}

func TestSceneCameraComponentLastWins(t *testing.T) {
	s := newTestScene()
	first := NewEntity("first", &component.Camera{View: component.Rect{W: 400, H: 300}})
	first.Transform.X = 10
	second := NewEntity("second", &component.Camera{View: component.Rect{W: 200, H: 100}})
	second.Transform.X = 20
	for _, e := range []*Entity{first, second} {
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := s.Update(time.Millisecond); err != nil {
		t.Fatalf("update: %v", err)
	}
	cam := s.Camera()
	if cam.View.W != 200 || cam.View.H != 100 {
		t.Fatalf("expected the last camera's view, got %+v", cam.View)
	}
	x, _ := cam.Transform.Apply(0, 0)
	if x != 20 {
		t.Fatalf("expected camera at x=20, got %v", x)
	}
}

func TestSceneShapeFollowsBody(t *testing.T) {
	s := newTestScene()
	h, err := s.Physics().CreateBody(BodySpec{X: 2, Y: 3, Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("create body: %v", err)
	}
	withBody := &component.Shape{Width: 100, Height: 100}
	decor := &component.Shape{Width: 10, Height: 10, Pose: component.Transform{X: 7, Y: 8}}
	if err := s.AddEntity(NewEntity("box", &component.Body{Handle: h}, withBody)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddEntity(NewEntity("decor", decor)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !approxEqual(withBody.Pose.X, 200) || !approxEqual(withBody.Pose.Y, 300) {
		t.Fatalf("expected shape at (200,300), got (%v,%v)", withBody.Pose.X, withBody.Pose.Y)
	}
	if decor.Pose.X != 7 || decor.Pose.Y != 8 {
		t.Fatalf("shape without a body should keep its pose, got (%v,%v)", decor.Pose.X, decor.Pose.Y)
	}
}

func TestSceneSpriteFollowsBody(t *testing.T) {
	s := newTestScene()
	h, err := s.Physics().CreateBody(BodySpec{X: 2, Y: 3, Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("create body: %v", err)
	}
	sp := &component.Sprite{
		Width:  64,
		Height: 64,
		Pose:   component.Transform{X: -1, Y: -1, ScaleX: 2, ScaleY: 2},
		Local:  component.Transform{X: 4},
	}
	if err := s.AddEntity(NewEntity("crate", &component.Body{Handle: h}, sp)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !approxEqual(sp.Pose.X, 200) || !approxEqual(sp.Pose.Y, 300) {
		t.Fatalf("expected sprite at (200,300), got (%v,%v)", sp.Pose.X, sp.Pose.Y)
	}
	if sp.Pose.ScaleX != 2 || sp.Pose.ScaleY != 2 {
		t.Fatalf("body pose should keep the sprite scale, got (%v,%v)", sp.Pose.ScaleX, sp.Pose.ScaleY)
	}
	if sp.Local.X != 4 {
		t.Fatalf("local offset changed: %+v", sp.Local)
	}
}

func TestSceneAnimationPoseWithoutBody(t *testing.T) {
	tests := []struct {
		name       string
		components func(a *component.Animation) []component.Component
		transform  component.Transform
		wantX      float64
		wantY      float64
	}{
		{
			name: "first shape",
			components: func(a *component.Animation) []component.Component {
				return []component.Component{
					&component.Shape{Width: 10, Height: 10, Pose: component.Transform{X: 40, Y: 50}},
					&component.Shape{Width: 10, Height: 10, Pose: component.Transform{X: 90, Y: 90}},
					a,
				}
			},
			transform: component.Transform{X: 7, Y: 9},
			wantX:     40,
			wantY:     50,
		},
		{
			name: "entity transform",
			components: func(a *component.Animation) []component.Component {
				return []component.Component{a}
			},
			transform: component.Transform{X: 7, Y: 9},
			wantX:     7,
			wantY:     9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene()
			anim := &component.Animation{Clock: component.NewAnimationClock(walkSheet())}
			anim.Clock.SetType(component.AnimationWalk)
			anim.Clock.SetDirection(component.DirectionLeft)
			e := NewEntity("torch", tt.components(anim)...)
			e.Transform = tt.transform
			if err := s.AddEntity(e); err != nil {
				t.Fatalf("add: %v", err)
			}

			if err := s.Update(150 * time.Millisecond); err != nil {
				t.Fatalf("update: %v", err)
			}
			if !approxEqual(anim.Pose.X, tt.wantX) || !approxEqual(anim.Pose.Y, tt.wantY) {
				t.Fatalf("expected pose (%v,%v), got (%v,%v)", tt.wantX, tt.wantY, anim.Pose.X, anim.Pose.Y)
			}
			if anim.Clock.Phase() != 150*time.Millisecond {
				t.Fatalf("expected phase 150ms, got %v", anim.Clock.Phase())
			}
			if anim.Clock.Type() != component.AnimationWalk || anim.Clock.Direction() != component.DirectionLeft {
				t.Fatalf("clock without a body should keep walk/left, got %s/%s", anim.Clock.Type(), anim.Clock.Direction())
			}
		})
	}
}

func TestSceneUpdateMissingRowFails(t *testing.T) {
	s, hero := newHeroScene(t)
	anim, _ := First[*component.Animation](hero)
	delete(anim.Clock.Sheet().Animations[component.AnimationWalk].Rows, component.DirectionRight)

	s.Keys().Press(ebiten.KeyD)
	if err := s.Update(50 * time.Millisecond); !errors.Is(err, component.ErrMissingRow) {
		t.Fatalf("expected ErrMissingRow, got %v", err)
	}
}

func TestSceneStaleBodyFails(t *testing.T) {
	s := newTestScene()
	h, err := s.Physics().CreateBody(BodySpec{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("create body: %v", err)
	}
	s.Physics().DestroyAll()
	if err := s.AddEntity(NewEntity("ghost", &component.Body{Handle: h})); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Update(time.Millisecond); !errors.Is(err, ErrStaleBody) {
		t.Fatalf("expected ErrStaleBody, got %v", err)
	}
}

func TestSceneDrawOrder(t *testing.T) {
	s := newTestScene()
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	green := color.RGBA{G: 255, A: 255}

	// A sits to the right of and below B; order must still be A, B.
	a := NewEntity("A",
		&component.Shape{Width: 10, Height: 10, Color: red, Pose: component.Transform{X: 500, Y: 500}},
		&component.Shape{Width: 5, Height: 5, Color: green, Pose: component.Transform{X: 500, Y: 500}},
	)
	b := NewEntity("B", &component.Shape{Width: 10, Height: 10, Color: blue, Pose: component.Transform{X: -100, Y: -100}})
	for _, e := range []*Entity{a, b} {
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	target := &recordingTarget{w: 800, h: 600}
	s.Draw(target)

	want := []color.Color{red, green, blue}
	if len(target.calls) != len(want) {
		t.Fatalf("expected %d draws, got %d", len(want), len(target.calls))
	}
	for i, clr := range want {
		if target.calls[i].clr != clr {
			t.Fatalf("draw %d: expected %v, got %v", i, clr, target.calls[i].clr)
		}
	}

	// shapes are centered on their pose
	x, y := target.calls[0].geo.Apply(0, 0)
	if !approxEqual(x, 495) || !approxEqual(y, 495) {
		t.Fatalf("expected A's corner at (495,495), got (%v,%v)", x, y)
	}
}

func TestSceneDrawComposesCameraAndViewport(t *testing.T) {
	s := newTestScene()
	cam := s.Camera()
	cam.Transform.Translate(100, 0)
	cam.View = component.Rect{W: 400, H: 300}
	cam.Viewport = component.Rect{X: 0.5, W: 0.5, H: 1}
	s.SetCamera(cam)

	shape := &component.Shape{
		Width:  20,
		Height: 20,
		Pose:   component.Transform{X: 110, Y: 10},
		Local:  component.Transform{X: 10},
	}
	if err := s.AddEntity(NewEntity("box", shape)); err != nil {
		t.Fatalf("add: %v", err)
	}

	target := &recordingTarget{w: 800, h: 600}
	s.Draw(target)
	if len(target.calls) != 1 {
		t.Fatalf("expected one draw, got %d", len(target.calls))
	}
	// center: local (10,0) + pose (110,10) = (120,10); camera space (20,10);
	// view 400x300 onto 400x600 starting at x=400 scales y by 2.
	x, y := target.calls[0].geo.Apply(10, 10)
	if !approxEqual(x, 420) || !approxEqual(y, 20) {
		t.Fatalf("expected center at (420,20), got (%v,%v)", x, y)
	}
}

func TestSceneDrawTextured(t *testing.T) {
	tex := new(ebiten.Image)

	sheet := walkSheet()
	sheet.Texture = tex
	sheet.Scale = 2
	advanced := &component.Animation{
		Clock: component.NewAnimationClock(sheet),
		Pose:  component.Transform{X: 300, Y: 200},
	}
	if _, err := advanced.Clock.Advance(150 * time.Millisecond); err != nil {
		t.Fatalf("advance: %v", err)
	}

	tests := []struct {
		name    string
		c       component.Component
		wantSrc image.Rectangle
		// screen positions of the source cell's top-left and bottom-right
		corner [2]float64
		far    [2]float64
	}{
		{
			name:    "sprite at source size",
			c:       &component.Sprite{Texture: tex, Source: image.Rect(16, 0, 48, 16), UseSource: true, Pose: component.Transform{X: 100, Y: 100}},
			wantSrc: image.Rect(16, 0, 48, 16),
			corner:  [2]float64{84, 92},
			far:     [2]float64{116, 108},
		},
		{
			name:    "sprite scaled to size",
			c:       &component.Sprite{Texture: tex, Source: image.Rect(0, 0, 10, 20), UseSource: true, Width: 40, Height: 40, Pose: component.Transform{X: 100, Y: 100}},
			wantSrc: image.Rect(0, 0, 10, 20),
			corner:  [2]float64{80, 80},
			far:     [2]float64{120, 120},
		},
		{
			name:    "sprite local offset",
			c:       &component.Sprite{Texture: tex, Source: image.Rect(0, 0, 8, 8), UseSource: true, Pose: component.Transform{X: 50, Y: 50}, Local: component.Transform{X: 10, Y: -10}},
			wantSrc: image.Rect(0, 0, 8, 8),
			corner:  [2]float64{56, 36},
			far:     [2]float64{64, 44},
		},
		{
			// walk right is row 3; 150ms into 100ms frames is column 1
			name:    "animation cell at sheet scale",
			c:       advanced,
			wantSrc: image.Rect(32, 96, 64, 128),
			corner:  [2]float64{268, 168},
			far:     [2]float64{332, 232},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene()
			if err := s.AddEntity(NewEntity("thing", tt.c)); err != nil {
				t.Fatalf("add: %v", err)
			}

			target := &recordingTarget{w: 800, h: 600}
			s.Draw(target)
			if len(target.calls) != 1 {
				t.Fatalf("expected one draw, got %d", len(target.calls))
			}
			call := target.calls[0]
			if call.kind != "image" || call.img != tex {
				t.Fatalf("expected an image draw of the texture, got %+v", call)
			}
			if call.src != tt.wantSrc {
				t.Fatalf("expected source %v, got %v", tt.wantSrc, call.src)
			}
			x, y := call.geo.Apply(0, 0)
			if !approxEqual(x, tt.corner[0]) || !approxEqual(y, tt.corner[1]) {
				t.Fatalf("expected corner at %v, got (%v,%v)", tt.corner, x, y)
			}
			x, y = call.geo.Apply(float64(tt.wantSrc.Dx()), float64(tt.wantSrc.Dy()))
			if !approxEqual(x, tt.far[0]) || !approxEqual(y, tt.far[1]) {
				t.Fatalf("expected far corner at %v, got (%v,%v)", tt.far, x, y)
			}
		})
	}
}

func TestSceneDrawSkipsUntexturedSprite(t *testing.T) {
	s := newTestScene()
	sheet := walkSheet()
	anim := &component.Animation{Clock: component.NewAnimationClock(sheet)}
	if err := s.AddEntity(NewEntity("blank", &component.Sprite{Width: 10, Height: 10}, anim)); err != nil {
		t.Fatalf("add: %v", err)
	}
	target := &recordingTarget{w: 800, h: 600}
	s.Draw(target)
	if len(target.calls) != 0 {
		t.Fatalf("expected no draws without textures, got %d", len(target.calls))
	}
}

func TestPhysicsWorldHandles(t *testing.T) {
	pw := NewPhysicsWorld()
	static, err := pw.CreateBody(BodySpec{Static: true, X: 1, Y: 2, Width: 4, Height: 1})
	if err != nil {
		t.Fatalf("create static: %v", err)
	}
	dynamic, err := pw.CreateBody(BodySpec{X: 0, Y: 0, Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("create dynamic: %v", err)
	}
	if pw.BodyCount() != 2 {
		t.Fatalf("expected 2 bodies, got %d", pw.BodyCount())
	}

	body, err := pw.Body(static)
	if err != nil {
		t.Fatalf("resolve static: %v", err)
	}
	if p := body.Position(); p != (cp.Vector{X: 1, Y: 2}) {
		t.Fatalf("unexpected static position %v", p)
	}

	d, err := pw.Body(dynamic)
	if err != nil {
		t.Fatalf("resolve dynamic: %v", err)
	}
	d.SetVelocity(2, 0)
	pw.Step(500 * time.Millisecond)
	if !approxEqual(d.Position().X, 1) {
		t.Fatalf("expected x=1m after 0.5s at 2m/s, got %v", d.Position().X)
	}

	if _, err := pw.CreateBody(BodySpec{Width: 0, Height: 1}); err == nil {
		t.Fatalf("expected error for zero width")
	}

	pw.DestroyAll()
	if _, err := pw.Body(dynamic); !errors.Is(err, ErrStaleBody) {
		t.Fatalf("expected ErrStaleBody after DestroyAll, got %v", err)
	}
	fresh, err := pw.CreateBody(BodySpec{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("create after clear: %v", err)
	}
	if fresh.Index != 0 || fresh.Gen == dynamic.Gen {
		t.Fatalf("expected new generation at index 0, got %+v", fresh)
	}
}

type stubMenu struct {
	name  string
	drawn *[]string
}

func (m *stubMenu) Update() error { return nil }

func (m *stubMenu) Draw(*ebiten.Image) { *m.drawn = append(*m.drawn, m.name) }

func TestSceneMenuStack(t *testing.T) {
	s := newTestScene()
	var drawn []string
	s.RegisterMenu("pause", &stubMenu{name: "pause", drawn: &drawn})
	s.RegisterMenu("levels", &stubMenu{name: "levels", drawn: &drawn})

	if _, ok := s.ActiveMenu(); ok {
		t.Fatalf("no menu should be active")
	}
	if err := s.PushMenu("missing"); !errors.Is(err, ErrMenuNotFound) {
		t.Fatalf("PushMenu(missing) = %v, want ErrMenuNotFound", err)
	}
	if err := s.PushMenu("pause"); err != nil {
		t.Fatalf("PushMenu: %v", err)
	}
	if err := s.PushMenu("levels"); err != nil {
		t.Fatalf("PushMenu: %v", err)
	}

	top, ok := s.ActiveMenu()
	if !ok || top.(*stubMenu).name != "levels" {
		t.Fatalf("active menu = %v, want levels", top)
	}
	s.DrawMenus(nil)
	if len(drawn) != 2 || drawn[0] != "pause" || drawn[1] != "levels" {
		t.Fatalf("draw order = %v, want bottom to top", drawn)
	}

	s.PopMenu()
	if top, _ := s.ActiveMenu(); top.(*stubMenu).name != "pause" {
		t.Fatalf("after pop active = %v", top)
	}

	s.Clear()
	if _, ok := s.ActiveMenu(); !ok {
		t.Fatalf("Clear should not close menus")
	}
	s.CloseMenus()
	if _, ok := s.ActiveMenu(); ok {
		t.Fatalf("CloseMenus left a menu open")
	}
	if got := s.MenuNames(); len(got) != 2 || got[0] != "levels" {
		t.Fatalf("menu names = %v", got)
	}
}
