package ecs

import (
	"fmt"
	"time"

	"github.com/milk9111/spritebox/ecs/component"
)

// Update runs one frame: controller input, one physics step, then
// component resolution for every entity in insertion order. Any error
// aborts the frame.
func (s *Scene) Update(dt time.Duration) error {
	if err := s.dispatchInput(); err != nil {
		return err
	}

	s.physics.Step(dt)

	for _, e := range s.entities {
		if err := s.resolve(e, dt); err != nil {
			return fmt.Errorf("scene: entity %q: %w", e.Name, err)
		}
	}
	return nil
}

// dispatchInput fires keys released since the last frame with
// pressed=false, then held keys with pressed=true, and drops the released
// record. Releases go first per controller so a held key bound to the same
// target wins the frame.
func (s *Scene) dispatchInput() error {
	defer s.keys.Flush()

	for _, e := range s.entities {
		err := Each(e, func(c *component.Controller) error {
			keys := c.Keys()
			for _, key := range keys {
				if s.keys.IsPressed(key) || !s.keys.WasReleased(key) {
					continue
				}
				if err := c.Dispatch(key, false); err != nil {
					return fmt.Errorf("key %s: %w", key, err)
				}
			}
			for _, key := range keys {
				if !s.keys.IsPressed(key) {
					continue
				}
				if err := c.Dispatch(key, true); err != nil {
					return fmt.Errorf("key %s: %w", key, err)
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("scene: controller %q: %w", e.Name, err)
		}
	}
	return nil
}

// resolve applies BODY, SHAPE, SPRITE, ANIMATION and CAMERA in that order
// since later kinds read state derived by earlier ones.
func (s *Scene) resolve(e *Entity, dt time.Duration) error {
	bodyResolved := false
	err := Each(e, func(b *component.Body) error {
		body, err := s.physics.Body(b.Handle)
		if err != nil {
			return err
		}
		pos := body.Position()
		e.Transform.X = MetersToPixels(pos.X)
		e.Transform.Y = MetersToPixels(pos.Y)
		e.Transform.Rotation = RadiansToDegrees(body.Angle())
		e.Velocity = body.Velocity()
		bodyResolved = true
		if e.CameraFocus {
			s.focus(e.Transform.X, e.Transform.Y)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if bodyResolved {
		_ = Each(e, func(sh *component.Shape) error {
			sh.Pose = sh.Pose.WithPose(e.Transform)
			return nil
		})
		_ = Each(e, func(sp *component.Sprite) error {
			sp.Pose = sp.Pose.WithPose(e.Transform)
			return nil
		})
	}

	err = Each(e, func(a *component.Animation) error {
		clock := a.Clock
		if clock == nil {
			return fmt.Errorf("%w: animation without clock", component.ErrInvalidSheet)
		}
		if bodyResolved {
			typ, dir := ClassifyMotion(e.Velocity, clock.Direction(), clock.Sheet().Mode())
			clock.SetType(typ)
			clock.SetDirection(dir)
		}
		if _, err := clock.Advance(dt); err != nil {
			return err
		}
		a.Pose = a.Pose.WithPose(s.animationPose(e, bodyResolved))
		return nil
	})
	if err != nil {
		return err
	}

	return Each(e, func(c *component.Camera) error {
		cam := s.camera
		cam.Transform = c.Local.GeoM()
		cam.Transform.Concat(e.Transform.GeoM())
		if !c.View.Empty() {
			cam.View = c.View
		}
		if !c.Viewport.Empty() {
			cam.Viewport = c.Viewport
		}
		s.camera = cam
		return nil
	})
}

// animationPose is the BODY pose, else the first SHAPE pose, else the
// entity transform.
func (s *Scene) animationPose(e *Entity, bodyResolved bool) component.Transform {
	if bodyResolved {
		return e.Transform
	}
	if sh, ok := First[*component.Shape](e); ok {
		return sh.Pose
	}
	return e.Transform
}

// focus moves the camera so the view is centered on (x, y) lifted by the
// focus bias.
func (s *Scene) focus(x, y float64) {
	v := s.camera.View
	s.camera.Transform.Reset()
	s.camera.Transform.Translate(x-v.X-v.W/2, y-s.cfg.CameraFocusBias-v.Y-v.H/2)
}
