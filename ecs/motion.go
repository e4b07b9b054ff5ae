package ecs

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/spritebox/ecs/component"
)

// MotionBias is the speed, in meters per second, at or below which a body
// counts as idle.
const MotionBias = 0.01

// ClassifyMotion maps a velocity to an animation type and direction. Idle
// keeps prev. Otherwise the larger axis wins, ties go horizontal, and y
// grows downward. Horizontal sheets only look at the x sign and keep prev
// when it is zero.
func ClassifyMotion(v cp.Vector, prev component.Direction, mode component.DirectionMode) (component.AnimationType, component.Direction) {
	if math.Hypot(v.X, v.Y) <= MotionBias {
		return component.AnimationIdle, prev
	}

	if mode == component.DirectionModeHorizontal {
		switch {
		case v.X < 0:
			return component.AnimationWalk, component.DirectionLeft
		case v.X > 0:
			return component.AnimationWalk, component.DirectionRight
		}
		if !prev.Horizontal() {
			prev = component.DirectionRight
		}
		return component.AnimationWalk, prev
	}

	if math.Abs(v.X) >= math.Abs(v.Y) {
		if v.X < 0 {
			return component.AnimationWalk, component.DirectionLeft
		}
		return component.AnimationWalk, component.DirectionRight
	}
	if v.Y < 0 {
		return component.AnimationWalk, component.DirectionUp
	}
	return component.AnimationWalk, component.DirectionDown
}
