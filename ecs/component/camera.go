package component

// Rect is an axis aligned rectangle. Viewports use it with normalized
// 0..1 coordinates.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Camera makes its entity's transform the scene camera. View is the region
// of camera space shown; an empty View or Viewport keeps the scene's.
type Camera struct {
	View     Rect
	Viewport Rect
	Local    Transform
}
