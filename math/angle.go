// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"github.com/chewxy/math32"
)

// AngleMod changes an angle to be within 0-360 degrees
func AngleMod(a float32) float32 {
	return a - math32.Floor(a/360)*360
}

// Radians converts degrees to radians
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}
