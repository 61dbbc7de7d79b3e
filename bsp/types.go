// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// On disk records, packed little endian.

type dplane struct {
	Normal   [3]float32
	Distance float32
	Type     uint32 // 0: axial plane in X, 1: axial plane in Y, 2 axial in Z, 3,4,5 similar but non axial
}

type dnode struct {
	PlaneID   uint32
	Children  [2]int32 // front, back. negative values are -(leaf+1)
	Mins      [3]int16
	Maxs      [3]int16
	FirstFace uint16
	FaceCount uint16
}

type dleaf struct {
	Contents       uint32
	Cluster        int16 // -1 for no visibility information
	Area           uint16
	Mins           [3]int16
	Maxs           [3]int16
	FirstLeafFace  uint16
	LeafFaceCount  uint16
	FirstLeafBrush uint16
	LeafBrushCount uint16
}

// offsets are relative to the start of the visibility lump
type visOffset struct {
	PVS uint32
	PAS uint32 // potentially audible set, unused
}

const (
	ContentsSolid  = 1
	ContentsWindow = 2
	ContentsLava   = 8
	ContentsSlime  = 16
	ContentsWater  = 32
	ContentsMist   = 64
)
