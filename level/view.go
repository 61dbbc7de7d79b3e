// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"q2view/bsp"
	"q2view/config"
	"q2view/math/vec"
	"q2view/view"
)

// Settings control how View builds a frame.
type Settings struct {
	Transform view.Transform
	// FatPVS merges the clusters within this radius, 0 disables it.
	FatPVS float32
	FovX   float32
	FovY   float32
}

func DefaultSettings() Settings {
	return SettingsFrom(config.Default().View)
}

func SettingsFrom(c config.ViewConfig) Settings {
	return Settings{
		Transform: view.Transform{Scale: c.Scale},
		FatPVS:    c.FatPVS,
		FovX:      c.FovX,
		FovY:      c.FovY,
	}
}

// Frame is what a viewer sees from one position.
type Frame struct {
	// Position in map space
	Position vec.Vec3
	// Leaf is nil if the position is in no leaf.
	Leaf    *bsp.MLeaf
	Visible bsp.BitVector
	Stats   bsp.CullStats
}

// Cluster returns the cluster of the viewer or -1.
func (f Frame) Cluster() int {
	if f.Leaf == nil {
		return -1
	}
	return f.Leaf.Cluster
}

// View converts the engine space position and looks along angles.
func (l *Level) View(s Settings, engine, angles vec.Vec3) Frame {
	return l.ViewFrom(s, s.Transform.ToMap(engine), angles)
}

// ViewFrom looks from p in map space.
func (l *Level) ViewFrom(s Settings, p, angles vec.Vec3) Frame {
	f := Frame{Position: p}
	f.Leaf, _ = l.Tree.RegionContaining(p)
	f.Visible = l.Tree.FatVisibility(p, s.FatPVS)
	c := view.DefaultCamera(p)
	c.Angles = angles
	c.FovX, c.FovY = s.FovX, s.FovY
	f.Stats = l.Tree.Cull(f.Visible, view.NewFrustum(c), nil)
	instrumentCull(f.Stats)
	return f
}

// Start returns the player start in map space, or the center of the world
// if the map has none.
func (l *Level) Start() (vec.Vec3, vec.Vec3) {
	if o, yaw, ok := l.Entities.PlayerStart(); ok {
		return o, vec.Vec3{0, yaw, 0}
	}
	if root := l.Tree.Root(); root != nil {
		mins, maxs := root.Bounds()
		return vec.Lerp(mins, maxs, 0.5), vec.Vec3{}
	}
	return vec.Vec3{}, vec.Vec3{}
}
