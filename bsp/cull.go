// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// Frustum decides whether a leaf can be seen by the camera.
type Frustum interface {
	LeafVisible(l *MLeaf) bool
}

// CullStats counts face references. A face shared by several leafs is
// counted once per leaf.
type CullStats struct {
	Drawn         int
	PVSCulled     int
	FrustumCulled int
}

func (s CullStats) Total() int {
	return s.Drawn + s.PVSCulled + s.FrustumCulled
}

// FaceFunc receives every face that survives culling.
type FaceFunc func(cluster int, l *MLeaf, face int)

// Cull walks all clusters. Faces of clusters not in vis are PVS culled,
// faces of leafs outside of f are frustum culled and the rest is passed to
// draw. f and draw may be nil.
func (t *Tree) Cull(vis BitVector, f Frustum, draw FaceFunc) CullStats {
	var s CullStats
	for c, batches := range t.batches {
		if !vis.Visible(c) {
			for _, faces := range batches {
				s.PVSCulled += len(faces)
			}
			continue
		}
		for i, faces := range batches {
			l := t.clusterLeafs[c][i]
			if f != nil && !f.LeafVisible(l) {
				s.FrustumCulled += len(faces)
				continue
			}
			s.Drawn += len(faces)
			if draw == nil {
				continue
			}
			for _, face := range faces {
				draw(c, l, face)
			}
		}
	}
	return s
}
