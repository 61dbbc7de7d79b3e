// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"q2view/math/vec"
)

// LeavesTouching returns every leaf whose cell may intersect the box. A leaf
// shared by several nodes is listed once.
func (t *Tree) LeavesTouching(mins, maxs vec.Vec3) []*MLeaf {
	if t.root == nil {
		return nil
	}
	var leafs []*MLeaf
	seen := make(map[int]bool)
	var walk func(n Node)
	walk = func(n Node) {
		for {
			switch node := n.(type) {
			case *MLeaf:
				if !seen[node.Index] {
					seen[node.Index] = true
					leafs = append(leafs, node)
				}
				return
			case *MNode:
				switch node.Plane.BoxOnPlaneSide(mins, maxs) {
				case 1:
					n = node.Children[0]
				case 2:
					n = node.Children[1]
				default: // go down both
					walk(node.Children[0])
					n = node.Children[1]
				}
			default:
				return
			}
		}
	}
	walk(t.root)
	return leafs
}

// FatVisibility returns the union of the PVS of all clusters within radius
// of p.
//
// The PVS must include a small area around the viewer to allow head bobbing
// or other small motion. Otherwise, a bob might cause a cluster that should be
// visible to not show up, especially when the bob crosses a waterline.
func (t *Tree) FatVisibility(p vec.Vec3, radius float32) BitVector {
	if radius <= 0 {
		return t.VisibilityFrom(p)
	}
	r := vec.Vec3{radius, radius, radius}
	fat := make(BitVector, t.ClusterCount())
	seen := make(map[int]bool)
	for _, l := range t.LeavesTouching(vec.Sub(p, r), vec.Add(p, r)) {
		// solid and outside leafs carry no cluster
		if l.Cluster < 0 || seen[l.Cluster] {
			continue
		}
		seen[l.Cluster] = true
		for i, v := range t.visibilityOf(l) {
			fat[i] = fat[i] || v
		}
	}
	if len(seen) == 0 {
		return t.Everything()
	}
	return fat
}
