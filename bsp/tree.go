// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"github.com/pkg/errors"

	"q2view/math/vec"
)

var ErrMalformedTree = errors.New("malformed bsp tree")

// Node is either an *MNode or an *MLeaf.
type Node interface {
	Bounds() (mins, maxs vec.Vec3)
	isNode()
}

type nodeBase struct {
	mins vec.Vec3
	maxs vec.Vec3
}

func (n *nodeBase) Bounds() (vec.Vec3, vec.Vec3) {
	return n.mins, n.maxs
}

func (*nodeBase) isNode() {}

// MNode splits space by Plane. Children[0] is in front of the plane,
// Children[1] behind it.
type MNode struct {
	nodeBase
	Index     int
	Plane     *Plane
	Children  [2]Node
	FirstFace int
	FaceCount int
}

// MLeaf is a convex cell of the map.
type MLeaf struct {
	nodeBase
	Index    int
	Contents int
	Cluster  int // -1 if the leaf has no visibility information
	Area     int
	// Faces are indices into the face array of the map.
	Faces []int
}

// classify walks from n down to the leaf containing p. Points exactly on a
// plane belong to its front side.
func classify(n Node, p vec.Vec3) *MLeaf {
	for {
		switch node := n.(type) {
		case *MLeaf:
			return node
		case *MNode:
			if node.Plane.Distance(p) < 0 {
				n = node.Children[1]
			} else {
				n = node.Children[0]
			}
		default:
			return nil
		}
	}
}

type treeBuilder struct {
	planes    []*Plane
	nodes     []dnode
	leafs     []dleaf
	leafFaces []uint16
	clusters  int

	builtNodes []*MNode
	builtLeafs []*MLeaf

	// per cluster face index batches, one per leaf
	batches [][][]int
	// per cluster leafs, in the same order as batches
	clusterLeafs [][]*MLeaf
}

func newTreeBuilder(planes []*Plane, nodes []dnode, leafs []dleaf, leafFaces []uint16, clusters int) *treeBuilder {
	return &treeBuilder{
		planes:       planes,
		nodes:        nodes,
		leafs:        leafs,
		leafFaces:    leafFaces,
		clusters:     clusters,
		builtNodes:   make([]*MNode, len(nodes)),
		builtLeafs:   make([]*MLeaf, len(leafs)),
		batches:      make([][][]int, clusters),
		clusterLeafs: make([][]*MLeaf, clusters),
	}
}

// child decodes the on disk child reference. Negative values are leafs.
func (b *treeBuilder) child(raw int32) (Node, error) {
	if raw < 0 {
		return b.leaf(int(-(raw + 1)))
	}
	return b.node(int(raw))
}

func (b *treeBuilder) node(num int) (*MNode, error) {
	if num >= len(b.nodes) {
		return nil, errors.Wrapf(ErrMalformedTree, "node %d of %d", num, len(b.nodes))
	}
	if b.builtNodes[num] != nil {
		return nil, errors.Wrapf(ErrMalformedTree, "node %d is referenced twice", num)
	}
	d := b.nodes[num]
	if int(d.PlaneID) >= len(b.planes) {
		return nil, errors.Wrapf(ErrMalformedTree, "node %d: plane %d of %d", num, d.PlaneID, len(b.planes))
	}
	n := &MNode{
		nodeBase: nodeBase{
			mins: vec.VFromShorts(d.Mins),
			maxs: vec.VFromShorts(d.Maxs),
		},
		Index:     num,
		Plane:     b.planes[d.PlaneID],
		FirstFace: int(d.FirstFace),
		FaceCount: int(d.FaceCount),
	}
	// mark before descending so a cycle is detected
	b.builtNodes[num] = n
	for i, raw := range d.Children {
		c, err := b.child(raw)
		if err != nil {
			return nil, err
		}
		n.Children[i] = c
	}
	return n, nil
}

func (b *treeBuilder) leaf(num int) (*MLeaf, error) {
	if num >= len(b.leafs) {
		return nil, errors.Wrapf(ErrMalformedTree, "leaf %d of %d", num, len(b.leafs))
	}
	if l := b.builtLeafs[num]; l != nil {
		// a leaf shared by several nodes is registered only once
		return l, nil
	}
	d := b.leafs[num]
	first, count := int(d.FirstLeafFace), int(d.LeafFaceCount)
	if first+count > len(b.leafFaces) {
		return nil, errors.Wrapf(ErrMalformedTree, "leaf %d: faces [%d,%d) of %d", num, first, first+count, len(b.leafFaces))
	}
	cluster := int(d.Cluster)
	if cluster < -1 || cluster >= b.clusters {
		return nil, errors.Wrapf(ErrMalformedTree, "leaf %d: cluster %d of %d", num, cluster, b.clusters)
	}
	l := &MLeaf{
		nodeBase: nodeBase{
			mins: vec.VFromShorts(d.Mins),
			maxs: vec.VFromShorts(d.Maxs),
		},
		Index:    num,
		Contents: int(d.Contents),
		Cluster:  cluster,
		Area:     int(d.Area),
		Faces:    make([]int, count),
	}
	for i := range l.Faces {
		l.Faces[i] = int(b.leafFaces[first+i])
	}
	b.builtLeafs[num] = l
	if cluster == -1 {
		return l, nil
	}
	b.batches[cluster] = append(b.batches[cluster], l.Faces)
	b.clusterLeafs[cluster] = append(b.clusterLeafs[cluster], l)
	return l, nil
}
