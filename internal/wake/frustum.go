package wake

import "math"

// Plane is the half-space Normal·p + D >= 0. The normal need not be unit
// length; only the sign of the distance is used.
type Plane struct {
	Normal Vec3
	D      float64
}

func (p Plane) Distance(v Vec3) float64 {
	return p.Normal.Dot(v) + p.D
}

// PlaneThrough returns the plane with the given inward normal passing through point.
func PlaneThrough(normal, point Vec3) Plane {
	return Plane{Normal: normal, D: -normal.Dot(point)}
}

// Frustum is a convex view volume bounded by six inward-facing planes:
// left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

func NewFrustum(planes [6]Plane) *Frustum {
	return &Frustum{Planes: planes}
}

// FrustumFromMatrix extracts the clip planes of a row-major view-projection
// matrix (Gribb/Hartmann).
func FrustumFromMatrix(m [16]float64) *Frustum {
	row := func(i int) [4]float64 {
		return [4]float64{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	plane := func(a [4]float64, sign float64) Plane {
		return Plane{
			Normal: Vec3{r3[0] + sign*a[0], r3[1] + sign*a[1], r3[2] + sign*a[2]},
			D:      r3[3] + sign*a[3],
		}
	}
	return &Frustum{Planes: [6]Plane{
		plane(r0, 1), plane(r0, -1),
		plane(r1, 1), plane(r1, -1),
		plane(r2, 1), plane(r2, -1),
	}}
}

// Camera describes a perspective view. Yaw 0 looks down +Z and turns
// towards +X; positive pitch looks up. Angles are in radians.
type Camera struct {
	Eye    Vec3
	Yaw    float64
	Pitch  float64
	FovY   float64
	Aspect float64
	Near   float64
	Far    float64
}

const maxPitch = math.Pi/2 - 1e-3

// PerspectiveFrustum builds the view volume of cam directly from its basis.
func PerspectiveFrustum(cam Camera) *Frustum {
	pitch := clamp(cam.Pitch, -maxPitch, maxPitch)
	forward := Vec3{
		X: math.Sin(cam.Yaw) * math.Cos(pitch),
		Y: math.Sin(pitch),
		Z: math.Cos(cam.Yaw) * math.Cos(pitch),
	}
	right := forward.Cross(Vec3{Y: 1}).Normalize()
	up := right.Cross(forward).Normalize()

	tanY := math.Tan(cam.FovY / 2)
	tanX := tanY * cam.Aspect

	// Side normals are unnormalized: f*tan ± axis.
	return &Frustum{Planes: [6]Plane{
		PlaneThrough(forward.Scale(tanX).Add(right), cam.Eye),
		PlaneThrough(forward.Scale(tanX).Sub(right), cam.Eye),
		PlaneThrough(forward.Scale(tanY).Add(up), cam.Eye),
		PlaneThrough(forward.Scale(tanY).Sub(up), cam.Eye),
		PlaneThrough(forward, cam.Eye.Add(forward.Scale(cam.Near))),
		PlaneThrough(forward.Scale(-1), cam.Eye.Add(forward.Scale(cam.Far))),
	}}
}

// ContainsPoint is inclusive: a point on a plane is inside.
func (f *Frustum) ContainsPoint(p Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsBox reports whether the axis-aligned box [lo, hi] is not
// fully outside any plane. Touching a plane counts as intersecting.
func (f *Frustum) IntersectsBox(lo, hi Vec3) bool {
	for _, pl := range f.Planes {
		// vertex furthest along the plane normal
		v := lo
		if pl.Normal.X >= 0 {
			v.X = hi.X
		}
		if pl.Normal.Y >= 0 {
			v.Y = hi.Y
		}
		if pl.Normal.Z >= 0 {
			v.Z = hi.Z
		}
		if pl.Distance(v) < 0 {
			return false
		}
	}
	return true
}
