package component

// BodyHandle addresses a body slot in the physics world. Handles from a
// previous level are rejected once the world has been cleared.
type BodyHandle struct {
	Index int
	Gen   uint32
}

func (h BodyHandle) Valid() bool {
	return h.Gen != 0
}

// Body references a physics body owned by the scene's physics world.
type Body struct {
	Handle BodyHandle
	Static bool
	Width  float64
	Height float64
	Local  Transform
}
