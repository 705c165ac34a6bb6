package wake

import "math"

// Vec3 is a world-space position or direction.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns the unit vector, or the zero vector unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Rect is an axis-aligned region of the horizontal (x, z) plane.
// Edges are inclusive.
type Rect struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// SquareAround returns the square centered on (cx, cz) with the given half extent.
func SquareAround(cx, cz, halfExtent float64) Rect {
	return Rect{
		MinX: cx - halfExtent,
		MinZ: cz - halfExtent,
		MaxX: cx + halfExtent,
		MaxZ: cz + halfExtent,
	}
}

func (r Rect) Contains(x, z float64) bool {
	return x >= r.MinX && x <= r.MaxX && z >= r.MinZ && z <= r.MaxZ
}

// intersectsCircle reports whether the closest point of r to the circle
// center lies within the radius.
func (r Rect) intersectsCircle(c Circle) bool {
	dx := c.X - clamp(c.X, r.MinX, r.MaxX)
	dz := c.Z - clamp(c.Z, r.MinZ, r.MaxZ)
	return dx*dx+dz*dz <= c.Radius*c.Radius
}

func (r Rect) center() (float64, float64) {
	return (r.MinX + r.MaxX) / 2, (r.MinZ + r.MaxZ) / 2
}

// Circle is a horizontal range query: center (X, Z) and radius.
// Vertical distance is ignored.
type Circle struct {
	X, Z   float64
	Radius float64
}

// Contains is inclusive: a point at exactly Radius is inside.
func (c Circle) Contains(x, z float64) bool {
	dx := x - c.X
	dz := z - c.Z
	return dx*dx+dz*dz <= c.Radius*c.Radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
