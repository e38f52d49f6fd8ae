// Package zone describes the capturable regions of a hexed map: their
// identity, footprint and the layout they are arranged in.
package zone

import (
	"fmt"
	"math"
)

// Point is a tile coordinate.
type Point struct {
	X int32
	Y int32
}

// Pack folds a point into a single map key.
func (p Point) Pack() uint64 {
	return uint64(uint32(p.X))<<32 | uint64(uint32(p.Y))
}

// Unpack reverses Pack.
func Unpack(v uint64) Point {
	return Point{X: int32(uint32(v >> 32)), Y: int32(uint32(v))}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Shape names a zone footprint.
type Shape uint8

const (
	ShapeHexagon Shape = iota
	ShapeRect
)

func (s Shape) String() string {
	switch s {
	case ShapeHexagon:
		return "hexagon"
	case ShapeRect:
		return "rect"
	}
	return "unknown"
}

// ParseShape accepts the names produced by Shape.String.
func ParseShape(name string) (Shape, error) {
	switch name {
	case "", "hexagon", "hex":
		return ShapeHexagon, nil
	case "rect", "rectangle":
		return ShapeRect, nil
	}
	return 0, fmt.Errorf("unknown zone shape %q", name)
}

// Zone is an immutable capturable region. Implementations are comparable
// values, so two zones with the same id, center and extent are the same zone.
type Zone interface {
	ID() int
	Center() Point
	Shape() Shape
	// Bounds returns the inclusive bounding box of the footprint.
	Bounds() (min, max Point)
	Contains(x, y int32) bool
}

// Hexagon is a flat-topped hexagon whose width equals Diameter.
type Hexagon struct {
	Ident    int
	At       Point
	Diameter int32
}

func NewHexagon(id int, x, y, diameter int32) Hexagon {
	return Hexagon{Ident: id, At: Point{X: x, Y: y}, Diameter: diameter}
}

func (h Hexagon) ID() int        { return h.Ident }
func (h Hexagon) Center() Point  { return h.At }
func (h Hexagon) Shape() Shape   { return ShapeHexagon }
func (h Hexagon) Radius() int32  { return h.Diameter / 2 }
func (h Hexagon) String() string { return fmt.Sprintf("hex #%d %s", h.Ident, h.At) }

func (h Hexagon) Bounds() (Point, Point) {
	r := h.Radius()
	return Point{X: h.At.X - r, Y: h.At.Y - r}, Point{X: h.At.X + r, Y: h.At.Y + r}
}

var hexApothem = 0.25 * math.Sqrt(3)

func (h Hexagon) Contains(x, y int32) bool {
	if h.Diameter <= 0 {
		return false
	}
	size := float64(h.Diameter)
	dx := math.Abs(float64(x-h.At.X)) / size
	dy := math.Abs(float64(y-h.At.Y)) / size
	return dy <= hexApothem && hexApothem*dx+0.25*dy <= 0.5*hexApothem
}

// Rect is an axis-aligned rectangular zone centered on At.
type Rect struct {
	Ident  int
	At     Point
	Width  int32
	Height int32
}

func NewRect(id int, x, y, width, height int32) Rect {
	return Rect{Ident: id, At: Point{X: x, Y: y}, Width: width, Height: height}
}

func (r Rect) ID() int        { return r.Ident }
func (r Rect) Center() Point  { return r.At }
func (r Rect) Shape() Shape   { return ShapeRect }
func (r Rect) String() string { return fmt.Sprintf("rect #%d %s", r.Ident, r.At) }

func (r Rect) Bounds() (Point, Point) {
	min := Point{X: r.At.X - r.Width/2, Y: r.At.Y - r.Height/2}
	return min, Point{X: min.X + r.Width - 1, Y: min.Y + r.Height - 1}
}

func (r Rect) Contains(x, y int32) bool {
	min, max := r.Bounds()
	return x >= min.X && x <= max.X && y >= min.Y && y <= max.Y
}

// Distance2 is the squared distance between a zone center and a tile.
func Distance2(z Zone, x, y int32) int64 {
	c := z.Center()
	dx, dy := int64(x-c.X), int64(y-c.Y)
	return dx*dx + dy*dy
}
