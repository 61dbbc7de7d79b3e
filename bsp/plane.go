// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"q2view/math/vec"
)

type Plane struct {
	Normal   vec.Vec3
	Dist     float32
	Type     byte
	SignBits byte // bit i is set if Normal[i] < 0
}

func newPlane(p dplane) *Plane {
	pl := &Plane{
		Normal: vec.VFromA(p.Normal),
		Dist:   p.Distance,
		Type:   byte(p.Type),
	}
	pl.setSignBits()
	return pl
}

// NewPlane returns the plane {x: normal·x = dist}. The type is derived from
// the normal the way the map compiler does it.
func NewPlane(normal vec.Vec3, dist float32) *Plane {
	pl := &Plane{
		Normal: normal,
		Dist:   dist,
		Type:   planeTypeForNormal(normal),
	}
	pl.setSignBits()
	return pl
}

func planeTypeForNormal(n vec.Vec3) byte {
	for i := range n {
		if n[i] == 1 || n[i] == -1 {
			return byte(i)
		}
	}
	ax, ay, az := abs(n[0]), abs(n[1]), abs(n[2])
	switch {
	case ax >= ay && ax >= az:
		return 3
	case ay >= ax && ay >= az:
		return 4
	}
	return 5
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func (p *Plane) setSignBits() {
	p.SignBits = 0
	for i, n := range p.Normal {
		if n < 0 {
			p.SignBits |= 1 << i
		}
	}
}

// Distance returns the signed distance of p to the plane. Values >= 0 are
// on the front side.
func (p *Plane) Distance(point vec.Vec3) float32 {
	return vec.Dot(p.Normal, point) - p.Dist
}

// BoxOnPlaneSide returns 1 if the box is completely in front of the plane,
// 2 if it is completely behind and 3 if the plane crosses it.
func (p *Plane) BoxOnPlaneSide(mins, maxs vec.Vec3) int {
	if p.Type < 3 && p.Normal[p.Type] == 1 {
		if p.Dist <= mins[p.Type] {
			return 1
		}
		if p.Dist > maxs[p.Type] {
			return 2
		}
		return 3
	}
	// far is the corner furthest along the normal, near the opposite one
	var far, near vec.Vec3
	for i := range far {
		if p.SignBits&(1<<i) != 0 {
			far[i], near[i] = mins[i], maxs[i]
		} else {
			far[i], near[i] = maxs[i], mins[i]
		}
	}
	sides := 0
	if vec.Dot(p.Normal, far) >= p.Dist {
		sides = 1
	}
	if vec.Dot(p.Normal, near) < p.Dist {
		sides |= 2
	}
	return sides
}
