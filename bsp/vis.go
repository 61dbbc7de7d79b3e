// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"encoding/binary"
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

var (
	ErrCorruptVis        = errors.New("corrupt visibility data")
	ErrClusterOutOfRange = errors.New("cluster out of range")
)

// BitVector holds the visibility state of every cluster as seen from one
// cluster.
type BitVector []bool

// Visible reports whether cluster c is marked visible. Out of range clusters
// are not visible.
func (b BitVector) Visible(c int) bool {
	return c >= 0 && c < len(b) && b[c]
}

// Count returns the number of visible clusters.
func (b BitVector) Count() int {
	n := 0
	for _, v := range b {
		if v {
			n++
		}
	}
	return n
}

func allVisible(n int) BitVector {
	b := make(BitVector, n)
	for i := range b {
		b[i] = true
	}
	return b
}

// DecompressVis expands the run length encoded row in into exactly n bits.
//
// 'in' is compressed and looks like
// 07 00 05 05 00 03 01 01
// and gets uncompressed to the bytes
// 07 00 00 00 00 00 05 00 00 00 01 01	(7 5x0 5 3x0 1 1)
// where each byte is expanded into 8 bits, least significant first.
func DecompressVis(in []byte, n int) (BitVector, error) {
	out := make(BitVector, n)
	c := 0
	for v := 0; c < n; v++ {
		if v >= len(in) {
			return nil, errors.Wrapf(ErrCorruptVis, "row ended after %d of %d bits", c, n)
		}
		b := in[v]
		if b != 0 {
			for bit := 0; bit < 8 && c < n; bit++ {
				out[c] = b&(1<<bit) != 0
				c++
			}
			continue
		}
		v++
		if v >= len(in) {
			return nil, errors.Wrapf(ErrCorruptVis, "zero run without count at byte %d", v-1)
		}
		// out is already false
		c += 8 * int(in[v])
	}
	return out, nil
}

// VisibilityTable holds the decompressed PVS of every cluster.
type VisibilityTable struct {
	clusters int
	// one row per cluster plus the all visible row at index clusters
	states  []BitVector
	unvised bool
}

// LoadVisibility reads and decompresses the visibility lump. A map without
// visibility lump results in an unvised table without clusters.
func LoadVisibility(h *Header, r io.ReadSeeker) (*VisibilityTable, error) {
	d := h.Lump(LumpVisibility)
	if d.Length == 0 {
		return newUnvisedTable(0), nil
	}
	if d.Offset < 0 || d.Length < 4 {
		return nil, errors.Wrapf(ErrCorruptVis, "lump offset %d, length %d", d.Offset, d.Length)
	}
	length := int64(d.Length)
	size, err := streamSize(r)
	if err != nil {
		return nil, err
	}
	if int64(d.Offset)+length > size {
		return nil, errors.Wrapf(ErrCorruptVis, "lump ends at %d behind end of data at %d", int64(d.Offset)+length, size)
	}
	if _, err := r.Seek(int64(d.Offset), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to visibility lump")
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrap(err, "reading cluster count")
	}
	dirSize := 4 + 8*int64(count)
	if dirSize > length {
		return nil, errors.Wrapf(ErrCorruptVis, "%d clusters do not fit into %d bytes", count, length)
	}
	t := &VisibilityTable{clusters: int(count)}
	if count == 0 {
		t.states = []BitVector{{}}
		return t, nil
	}
	offsets := make([]visOffset, count)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		return nil, errors.Wrap(err, "reading visibility offsets")
	}

	// The PVS rows of all clusters are stored back to back, followed by the
	// PAS rows. The first PAS row therefore ends the PVS section.
	start, end := int64(offsets[0].PVS), int64(offsets[0].PAS)
	if start < dirSize || start > end || end > length {
		return nil, errors.Wrapf(ErrCorruptVis, "pvs section [%d,%d) outside of lump [%d,%d)", start, end, dirSize, length)
	}
	data := make([]byte, end-start)
	if _, err := r.Seek(int64(d.Offset)+start, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to pvs data")
	}
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrap(err, "reading pvs data")
	}

	t.states = make([]BitVector, 0, count+1)
	for i, o := range offsets {
		rel := int64(o.PVS) - start
		if rel < 0 || rel > int64(len(data)) {
			return nil, errors.Wrapf(ErrCorruptVis, "cluster %d: pvs offset %d outside of section", i, o.PVS)
		}
		row, err := DecompressVis(data[rel:], int(count))
		if err != nil {
			return nil, errors.Wrapf(err, "cluster %d", i)
		}
		t.states = append(t.states, row)
	}
	t.states = append(t.states, allVisible(int(count)))
	slog.Debug("loaded visibility", "clusters", count, "bytes", len(data))
	return t, nil
}

// newUnvisedTable returns a table that considers every cluster visible from
// everywhere.
func newUnvisedTable(clusters int) *VisibilityTable {
	all := allVisible(clusters)
	t := &VisibilityTable{
		clusters: clusters,
		states:   make([]BitVector, clusters+1),
		unvised:  true,
	}
	for i := range t.states {
		t.states[i] = all
	}
	return t
}

func (t *VisibilityTable) ClusterCount() int {
	return t.clusters
}

// Unvised reports whether the map carried no visibility data.
func (t *VisibilityTable) Unvised() bool {
	return t.unvised
}

// VisibilityFor returns the PVS of cluster. Negative clusters have no
// visibility information and get the all visible row.
func (t *VisibilityTable) VisibilityFor(cluster int) (BitVector, error) {
	if cluster < 0 {
		return t.Everything(), nil
	}
	if cluster >= t.clusters {
		return nil, errors.Wrapf(ErrClusterOutOfRange, "cluster %d of %d", cluster, t.clusters)
	}
	return t.states[cluster], nil
}

// Everything returns the all visible row used when the viewer is not inside
// any cluster.
func (t *VisibilityTable) Everything() BitVector {
	if len(t.states) == 0 {
		return BitVector{}
	}
	return t.states[len(t.states)-1]
}

func (t *VisibilityTable) Unload() {
	t.clusters = 0
	t.states = nil
	t.unvised = false
}
