package ecs

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/spritebox/ecs/component"
)

// PixelsPerMeter converts physics space to pixel space.
const PixelsPerMeter = 100.0

var ErrStaleBody = errors.New("ecs: stale body handle")

func MetersToPixels(m float64) float64 { return m * PixelsPerMeter }
func PixelsToMeters(px float64) float64 { return px / PixelsPerMeter }
func RadiansToDegrees(r float64) float64 { return r * 180 / math.Pi }

// BodySpec describes a box body in physics space. X and Y locate its
// center.
type BodySpec struct {
	Static   bool
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Angle    float64
	Mass     float64
	Friction float64
}

type bodySlot struct {
	body  *cp.Body
	shape *cp.Shape
}

// PhysicsWorld owns the Chipmunk space and every body created for the
// scene. Bodies live in an arena addressed by component.BodyHandle; the
// arena's generation moves on every DestroyAll so handles from an earlier
// level stop resolving.
type PhysicsWorld struct {
	space *cp.Space
	slots []bodySlot
	gen   uint32
}

// NewPhysicsWorld creates a world with no gravity.
func NewPhysicsWorld() *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	return &PhysicsWorld{space: space, gen: 1}
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

func (pw *PhysicsWorld) CreateBody(spec BodySpec) (component.BodyHandle, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return component.BodyHandle{}, fmt.Errorf("ecs: create body: size %gx%g must be positive", spec.Width, spec.Height)
	}

	var body *cp.Body
	if spec.Static {
		body = cp.NewStaticBody()
	} else {
		mass := spec.Mass
		if mass <= 0 {
			mass = 1
		}
		body = cp.NewBody(mass, cp.MomentForBox(mass, spec.Width, spec.Height))
	}
	body.SetPosition(cp.Vector{X: spec.X, Y: spec.Y})
	body.SetAngle(spec.Angle)

	shape := cp.NewBox(body, spec.Width, spec.Height, 0)
	friction := spec.Friction
	if friction <= 0 {
		friction = 0.8
	}
	shape.SetFriction(friction)

	pw.space.AddBody(body)
	pw.space.AddShape(shape)

	pw.slots = append(pw.slots, bodySlot{body: body, shape: shape})
	return component.BodyHandle{Index: len(pw.slots) - 1, Gen: pw.gen}, nil
}

// Body resolves a handle to its Chipmunk body.
func (pw *PhysicsWorld) Body(h component.BodyHandle) (*cp.Body, error) {
	if pw == nil || h.Gen != pw.gen || h.Index < 0 || h.Index >= len(pw.slots) {
		return nil, fmt.Errorf("%w: %+v", ErrStaleBody, h)
	}
	slot := pw.slots[h.Index]
	if slot.body == nil {
		return nil, fmt.Errorf("%w: %+v", ErrStaleBody, h)
	}
	return slot.body, nil
}

func (pw *PhysicsWorld) BodyCount() int {
	if pw == nil {
		return 0
	}
	return len(pw.slots)
}

// DestroyAll removes every body and shape from the space.
func (pw *PhysicsWorld) DestroyAll() {
	if pw == nil {
		return
	}
	for _, slot := range pw.slots {
		if slot.shape != nil {
			pw.space.RemoveShape(slot.shape)
		}
		if slot.body != nil {
			pw.space.RemoveBody(slot.body)
		}
	}
	pw.slots = pw.slots[:0]
	pw.gen++
	if pw.gen == 0 {
		pw.gen = 1
	}
}

func (pw *PhysicsWorld) Step(dt time.Duration) {
	if pw == nil || dt <= 0 {
		return
	}
	pw.space.Step(dt.Seconds())
}
