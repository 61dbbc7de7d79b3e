// SPDX-License-Identifier: GPL-2.0-or-later

// Package bsptest writes small IBSP v38 maps for tests.
package bsptest

import (
	"bytes"
	"encoding/binary"
)

const (
	lumpEntities   = 0
	lumpPlanes     = 1
	lumpVisibility = 3
	lumpNodes      = 4
	lumpLeafs      = 8
	lumpLeafFaces  = 9
	lumpCount      = 19
)

type Plane struct {
	Normal [3]float32
	Dist   float32
	Type   uint32
}

// Node children are node indices or LeafRef values.
type Node struct {
	Plane     uint32
	Front     int32
	Back      int32
	Mins      [3]int16
	Maxs      [3]int16
	FirstFace uint16
	FaceCount uint16
}

type Leaf struct {
	Contents  uint32
	Cluster   int16
	Area      uint16
	Mins      [3]int16
	Maxs      [3]int16
	FirstFace uint16
	FaceCount uint16
}

// LeafRef encodes leaf i as node child.
func LeafRef(i int) int32 {
	return -int32(i) - 1
}

// Map describes the lumps of a test map.
type Map struct {
	Planes    []Plane
	Nodes     []Node
	Leafs     []Leaf
	LeafFaces []uint16
	// PVS holds one row per cluster. A nil PVS writes no visibility lump.
	PVS      [][]bool
	Entities string
	// Raw replaces the contents of a lump.
	Raw map[int][]byte
}

type diskNode struct {
	Plane     uint32
	Children  [2]int32
	Mins      [3]int16
	Maxs      [3]int16
	FirstFace uint16
	FaceCount uint16
}

type diskLeaf struct {
	Contents       uint32
	Cluster        int16
	Area           uint16
	Mins           [3]int16
	Maxs           [3]int16
	FirstLeafFace  uint16
	LeafFaceCount  uint16
	FirstLeafBrush uint16
	LeafBrushCount uint16
}

type directory struct {
	Offset int32
	Length int32
}

type header struct {
	Magic   [4]byte
	Version int32
	Lumps   [lumpCount]directory
}

func encode(v any) []byte {
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, v); err != nil {
		panic(err)
	}
	return b.Bytes()
}

func (m *Map) lumps() map[int][]byte {
	l := make(map[int][]byte)
	if len(m.Planes) > 0 {
		l[lumpPlanes] = encode(m.Planes)
	}
	if len(m.Nodes) > 0 {
		ns := make([]diskNode, len(m.Nodes))
		for i, n := range m.Nodes {
			ns[i] = diskNode{n.Plane, [2]int32{n.Front, n.Back}, n.Mins, n.Maxs, n.FirstFace, n.FaceCount}
		}
		l[lumpNodes] = encode(ns)
	}
	if len(m.Leafs) > 0 {
		ls := make([]diskLeaf, len(m.Leafs))
		for i, f := range m.Leafs {
			ls[i] = diskLeaf{
				Contents:      f.Contents,
				Cluster:       f.Cluster,
				Area:          f.Area,
				Mins:          f.Mins,
				Maxs:          f.Maxs,
				FirstLeafFace: f.FirstFace,
				LeafFaceCount: f.FaceCount,
			}
		}
		l[lumpLeafs] = encode(ls)
	}
	if len(m.LeafFaces) > 0 {
		l[lumpLeafFaces] = encode(m.LeafFaces)
	}
	if m.PVS != nil {
		l[lumpVisibility] = VisLump(m.PVS)
	}
	if m.Entities != "" {
		l[lumpEntities] = append([]byte(m.Entities), 0)
	}
	for k, v := range m.Raw {
		l[k] = v
	}
	return l
}

// Bytes returns the complete map file.
func (m *Map) Bytes() []byte {
	h := header{Magic: [4]byte{'I', 'B', 'S', 'P'}, Version: 38}
	var body bytes.Buffer
	const headerSize = 160
	lumps := m.lumps()
	for k := 0; k < lumpCount; k++ {
		data, ok := lumps[k]
		if !ok {
			continue
		}
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
		h.Lumps[k] = directory{Offset: int32(headerSize + body.Len()), Length: int32(len(data))}
		body.Write(data)
	}
	return append(encode(&h), body.Bytes()...)
}

func (m *Map) Reader() *bytes.Reader {
	return bytes.NewReader(m.Bytes())
}

// CompressVis packs bits least significant first and replaces runs of zero
// bytes by a zero followed by the run length.
func CompressVis(bits []bool) []byte {
	row := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			row[i/8] |= 1 << (i % 8)
		}
	}
	var out []byte
	for i := 0; i < len(row); i++ {
		if row[i] != 0 {
			out = append(out, row[i])
			continue
		}
		rep := 1
		for i+1 < len(row) && row[i+1] == 0 && rep < 255 {
			rep++
			i++
		}
		out = append(out, 0, byte(rep))
	}
	return out
}

// VisLump builds a visibility lump: the cluster count, the offset table,
// all PVS rows and then the PAS rows, which reuse the PVS contents.
func VisLump(rows [][]bool) []byte {
	n := len(rows)
	dirSize := 4 + 8*n
	compressed := make([][]byte, n)
	pvsSize := 0
	for i, r := range rows {
		compressed[i] = CompressVis(r)
		pvsSize += len(compressed[i])
	}
	offsets := make([][2]uint32, n)
	pvs, pas := dirSize, dirSize+pvsSize
	for i, c := range compressed {
		offsets[i] = [2]uint32{uint32(pvs), uint32(pas)}
		pvs += len(c)
		pas += len(c)
	}
	var b bytes.Buffer
	b.Write(encode(uint32(n)))
	b.Write(encode(offsets))
	for i := 0; i < 2; i++ {
		for _, c := range compressed {
			b.Write(c)
		}
	}
	return b.Bytes()
}
