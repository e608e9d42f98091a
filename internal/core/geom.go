// Package core provides the terminal-independent drawing primitives the game
// view renders into. It has no Bubble Tea dependency so views stay testable.
package core

// Rect is an axis-aligned area on the screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate just past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate just past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Centered returns a w×h rectangle centered inside r.
// The result may extend past r when it does not fit.
func (r Rect) Centered(w, h int) Rect {
	cx, cy := r.Center()
	return Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}
}

// Fits reports whether a w×h area fits inside r.
func (r Rect) Fits(w, h int) bool {
	return w <= r.W && h <= r.H
}
