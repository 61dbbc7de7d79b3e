// SPDX-License-Identifier: GPL-2.0-or-later

package view

import (
	"github.com/chewxy/math32"

	"q2view/bsp"
	qmath "q2view/math"
	"q2view/math/vec"
)

// Camera describes a viewer in map space. Angles are pitch, yaw and roll in
// degrees, fields of view are full angles in degrees.
type Camera struct {
	Origin vec.Vec3
	Angles vec.Vec3
	FovX   float32
	FovY   float32
	Near   float32
	Far    float32
}

// DefaultCamera looks along +x from origin.
func DefaultCamera(origin vec.Vec3) Camera {
	return Camera{
		Origin: origin,
		FovX:   90,
		FovY:   73.74,
		Near:   4,
		Far:    8192,
	}
}

const (
	planeLeft = iota
	planeRight
	planeBottom
	planeTop
	planeNear
	planeFar
)

// Frustum is the view volume of a camera. All plane normals point inside.
type Frustum struct {
	Planes [6]*bsp.Plane
}

// NewFrustum builds the six planes of c. Fields of view are clamped to
// [1,179] and the pitch to [-89,89].
func NewFrustum(c Camera) *Frustum {
	angles := vec.Vec3{
		qmath.Clamp(-89, c.Angles[0], 89),
		qmath.AngleMod(c.Angles[1]),
		qmath.AngleMod(c.Angles[2]),
	}
	forward, right, up := vec.AngleVectors(angles)

	sx, cx := math32.Sincos(qmath.Radians(qmath.Clamp(1, c.FovX, 179) / 2))
	sy, cy := math32.Sincos(qmath.Radians(qmath.Clamp(1, c.FovY, 179) / 2))

	f := &Frustum{}
	side := func(i int, n vec.Vec3) {
		n = n.Normalize()
		f.Planes[i] = bsp.NewPlane(n, vec.Dot(n, c.Origin))
	}
	side(planeLeft, vec.Add(forward.Scale(sx), right.Scale(cx)))
	side(planeRight, vec.Sub(forward.Scale(sx), right.Scale(cx)))
	side(planeBottom, vec.Add(forward.Scale(sy), up.Scale(cy)))
	side(planeTop, vec.Sub(forward.Scale(sy), up.Scale(cy)))

	d := vec.Dot(forward, c.Origin)
	f.Planes[planeNear] = bsp.NewPlane(forward, d+c.Near)
	f.Planes[planeFar] = bsp.NewPlane(forward.Scale(-1), -(d + c.Far))
	return f
}

// SphereVisible reports whether a sphere is at least partly inside.
func (f *Frustum) SphereVisible(center vec.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.Distance(center) < -radius {
			return false
		}
	}
	return true
}

// BoxVisible reports whether the box is not completely behind one plane.
func (f *Frustum) BoxVisible(mins, maxs vec.Vec3) bool {
	for _, p := range f.Planes {
		if p.BoxOnPlaneSide(mins, maxs) == 2 {
			return false
		}
	}
	return true
}

// LeafVisible tests the bounding sphere of the leaf box.
func (f *Frustum) LeafVisible(l *bsp.MLeaf) bool {
	mins, maxs := l.Bounds()
	center := vec.Lerp(mins, maxs, 0.5)
	return f.SphereVisible(center, vec.Distance(maxs, center))
}

// Contains reports whether p is inside the view volume.
func (f *Frustum) Contains(p vec.Vec3) bool {
	return f.SphereVisible(p, 0)
}

// BoxFrustum culls leafs by their boxes instead of their bounding spheres.
type BoxFrustum struct {
	*Frustum
}

func (f BoxFrustum) LeafVisible(l *bsp.MLeaf) bool {
	return f.BoxVisible(l.Bounds())
}

var (
	_ bsp.Frustum = (*Frustum)(nil)
	_ bsp.Frustum = BoxFrustum{}
)
