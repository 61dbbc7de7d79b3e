// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// LumpKind indexes the lump directory of the header.
type LumpKind int

const (
	LumpEntities LumpKind = iota
	LumpPlanes
	LumpVertexes
	LumpVisibility
	LumpNodes
	LumpTexInfo
	LumpFaces
	LumpLighting
	LumpLeafs
	LumpLeafFaces
	LumpLeafBrushes
	LumpEdges
	LumpSurfEdges
	LumpModels
	LumpBrushes
	LumpBrushSides
	LumpPop
	LumpAreas
	LumpAreaPortals

	LumpCount
)

var lumpNames = [LumpCount]string{
	"entities", "planes", "vertexes", "visibility", "nodes", "texinfo",
	"faces", "lighting", "leafs", "leaffaces", "leafbrushes", "edges",
	"surfedges", "models", "brushes", "brushsides", "pop", "areas",
	"areaportals",
}

func (k LumpKind) String() string {
	if k < 0 || k >= LumpCount {
		return fmt.Sprintf("lump(%d)", int(k))
	}
	return lumpNames[k]
}

const (
	// Version is the only supported IBSP version.
	Version    = 38
	HeaderSize = 160
)

var Magic = [4]byte{'I', 'B', 'S', 'P'}

var (
	ErrBadMagic   = errors.New("not an IBSP file")
	ErrBadVersion = errors.New("unsupported IBSP version")
)

// Directory is a byte range inside the map file. Called lump_t in c.
type Directory struct {
	Offset int32
	Length int32
}

type Header struct {
	Magic   [4]byte
	Version int32
	Lumps   [LumpCount]Directory
}

// ReadHeader reads and checks the header at the start of r.
func ReadHeader(r io.ReadSeeker) (*Header, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to header")
	}
	h := &Header{}
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	if h.Magic != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "magic %q", h.Magic[:])
	}
	if h.Version != Version {
		return nil, errors.Wrapf(ErrBadVersion, "version %d (should be %d)", h.Version, Version)
	}
	return h, nil
}

// Lump returns the directory entry for k.
func (h *Header) Lump(k LumpKind) Directory {
	if k < 0 || k >= LumpCount {
		return Directory{}
	}
	return h.Lumps[k]
}
