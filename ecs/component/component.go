package component

import "fmt"

// Kind identifies which payload a Component carries.
type Kind uint8

const (
	KindBody Kind = iota
	KindShape
	KindSprite
	KindAnimation
	KindCamera
	KindController
)

var kindNames = [...]string{
	KindBody:       "body",
	KindShape:      "shape",
	KindSprite:     "sprite",
	KindAnimation:  "animation",
	KindCamera:     "camera",
	KindController: "controller",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Component is the closed set of payloads an entity can carry: *Body,
// *Shape, *Sprite, *Animation, *Camera and *Controller. The BODY variant
// holds a handle into the physics world; every other variant owns its
// payload.
type Component interface {
	Kind() Kind
	LocalTransform() Transform
	component()
}

func (*Body) Kind() Kind       { return KindBody }
func (*Shape) Kind() Kind      { return KindShape }
func (*Sprite) Kind() Kind     { return KindSprite }
func (*Animation) Kind() Kind  { return KindAnimation }
func (*Camera) Kind() Kind     { return KindCamera }
func (*Controller) Kind() Kind { return KindController }

func (b *Body) LocalTransform() Transform       { return b.Local }
func (s *Shape) LocalTransform() Transform      { return s.Local }
func (s *Sprite) LocalTransform() Transform     { return s.Local }
func (a *Animation) LocalTransform() Transform  { return a.Local }
func (c *Camera) LocalTransform() Transform     { return c.Local }
func (c *Controller) LocalTransform() Transform { return c.Local }

func (*Body) component()       {}
func (*Shape) component()      {}
func (*Sprite) component()     {}
func (*Animation) component()  {}
func (*Camera) component()     {}
func (*Controller) component() {}
