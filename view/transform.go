// SPDX-License-Identifier: GPL-2.0-or-later

// Package view maps viewer positions into map space and decides which
// parts of a map a camera can see.
package view

import (
	"github.com/pkg/errors"

	"q2view/math/vec"
)

// DefaultScale is the size of one map unit in engine units.
const DefaultScale = 0.0005

var ErrBadScale = errors.New("scale must be positive")

// Transform converts between engine space (y up, looking down -z) and the
// z up space the map was authored in.
type Transform struct {
	Scale float32
}

func NewTransform(scale float32) (Transform, error) {
	if !(scale > 0) {
		return Transform{}, errors.Wrapf(ErrBadScale, "scale %v", scale)
	}
	return Transform{Scale: scale}, nil
}

// ToMap returns (e.z, -e.x, -e.y) / Scale.
func (t Transform) ToMap(e vec.Vec3) vec.Vec3 {
	return vec.Vec3{e[2], -e[0], -e[1]}.Scale(1 / t.Scale)
}

// ToEngine is the inverse of ToMap.
func (t Transform) ToEngine(m vec.Vec3) vec.Vec3 {
	return vec.Vec3{-m[1], -m[2], m[0]}.Scale(t.Scale)
}
