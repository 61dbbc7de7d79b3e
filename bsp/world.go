// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"q2view/math/vec"
)

// Tree is the partition tree of a map together with its visibility data.
// All points passed to Tree must be in map coordinates.
//
// A Tree is immutable after Load returns, so it can be queried from several
// goroutines as long as Load and Unload are not called concurrently.
type Tree struct {
	root   Node
	planes []*Plane
	nodes  []*MNode
	leafs  []*MLeaf
	vis    *VisibilityTable

	batches      [][][]int
	clusterLeafs [][]*MLeaf
}

// Load reads the planes, nodes, leafs, leaf faces and visibility lumps and
// builds the tree. On error the Tree stays unloaded.
func (t *Tree) Load(h *Header, r io.ReadSeeker) error {
	t.Unload()

	leafs, err := LoadLump[dleaf](h, LumpLeafs, r)
	if err != nil {
		return err
	}
	leafFaces, err := LoadLump[uint16](h, LumpLeafFaces, r)
	if err != nil {
		return err
	}
	nodes, err := LoadLump[dnode](h, LumpNodes, r)
	if err != nil {
		return err
	}
	planeLump, err := LoadLump[dplane](h, LumpPlanes, r)
	if err != nil {
		return err
	}
	vis, err := LoadVisibility(h, r)
	if err != nil {
		return err
	}
	if nodes.Len() == 0 {
		return errors.Wrap(ErrMalformedTree, "map has no nodes")
	}
	if vis.Unvised() {
		vis = newUnvisedTable(maxCluster(leafs.Records()) + 1)
		slog.Warn("map has no visibility data, drawing everything", "clusters", vis.ClusterCount())
	}

	planes := make([]*Plane, planeLump.Len())
	for i, p := range planeLump.Records() {
		planes[i] = newPlane(p)
	}

	b := newTreeBuilder(planes, nodes.Records(), leafs.Records(), leafFaces.Records(), vis.ClusterCount())
	root, err := b.node(0)
	if err != nil {
		return err
	}

	t.root = root
	t.planes = planes
	t.nodes = b.builtNodes
	t.leafs = b.builtLeafs
	t.vis = vis
	t.batches = b.batches
	t.clusterLeafs = b.clusterLeafs
	return nil
}

func maxCluster(leafs []dleaf) int {
	m := -1
	for _, l := range leafs {
		if int(l.Cluster) > m {
			m = int(l.Cluster)
		}
	}
	return m
}

// Unload drops everything loaded by Load. It is safe to call it on an
// unloaded Tree.
func (t *Tree) Unload() {
	if t.vis != nil {
		t.vis.Unload()
	}
	*t = Tree{}
}

func (t *Tree) Loaded() bool {
	return t.root != nil
}

func (t *Tree) Root() Node {
	return t.root
}

// ClusterCount returns the number of clusters, 0 if unloaded.
func (t *Tree) ClusterCount() int {
	if t.vis == nil {
		return 0
	}
	return t.vis.ClusterCount()
}

// Unvised reports whether the map came without visibility data.
func (t *Tree) Unvised() bool {
	return t.vis != nil && t.vis.Unvised()
}

// Leaf returns the leaf with index i if it is part of the tree.
func (t *Tree) Leaf(i int) (*MLeaf, bool) {
	if i < 0 || i >= len(t.leafs) || t.leafs[i] == nil {
		return nil, false
	}
	return t.leafs[i], true
}

// Leaves returns all leafs reachable from the root in index order.
func (t *Tree) Leaves() []*MLeaf {
	ls := make([]*MLeaf, 0, len(t.leafs))
	for _, l := range t.leafs {
		if l != nil {
			ls = append(ls, l)
		}
	}
	return ls
}

// NodeCount returns the number of nodes reachable from the root.
func (t *Tree) NodeCount() int {
	n := 0
	for _, no := range t.nodes {
		if no != nil {
			n++
		}
	}
	return n
}

// RegionContaining returns the leaf p is in.
func (t *Tree) RegionContaining(p vec.Vec3) (*MLeaf, bool) {
	if t.root == nil {
		return nil, false
	}
	l := classify(t.root, p)
	return l, l != nil
}

// Everything returns the all visible vector.
func (t *Tree) Everything() BitVector {
	if t.vis == nil {
		return BitVector{}
	}
	return t.vis.Everything()
}

// VisibilityFrom returns the PVS for a viewer at p. If p is in no leaf or in
// a leaf without cluster everything is visible.
func (t *Tree) VisibilityFrom(p vec.Vec3) BitVector {
	l, ok := t.RegionContaining(p)
	if !ok {
		return t.Everything()
	}
	return t.visibilityOf(l)
}

func (t *Tree) visibilityOf(l *MLeaf) BitVector {
	v, err := t.vis.VisibilityFor(l.Cluster)
	if err != nil {
		// the builder rejects leafs with clusters out of range
		slog.Error("VisibilityFrom: leaf with bad cluster", "leaf", l.Index, "cluster", l.Cluster, "err", err)
		return t.Everything()
	}
	return v
}

// ClusterFaceBatches returns for every cluster the face index lists of its
// leafs. The result must not be modified.
func (t *Tree) ClusterFaceBatches() [][][]int {
	return t.batches
}

// ClusterLeaves returns for every cluster its leafs, in the same order as
// ClusterFaceBatches. The result must not be modified.
func (t *Tree) ClusterLeaves() [][]*MLeaf {
	return t.clusterLeafs
}
