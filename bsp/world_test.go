// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"q2view/bsp/bsptest"
	"q2view/math/vec"
)

func loadTree(t *testing.T, m *bsptest.Map) *Tree {
	t.Helper()
	r := m.Reader()
	h, err := ReadHeader(r)
	if err != nil {
		t.Fatal(err)
	}
	tree := &Tree{}
	if err := tree.Load(h, r); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tree
}

func loadTreeErr(t *testing.T, m *bsptest.Map) error {
	t.Helper()
	r := m.Reader()
	h, err := ReadHeader(r)
	if err != nil {
		t.Fatal(err)
	}
	tree := &Tree{}
	err = tree.Load(h, r)
	if err != nil && tree.Loaded() {
		t.Errorf("failed Load left the tree loaded")
	}
	return err
}

func twoLeafMap() *bsptest.Map {
	return &bsptest.Map{
		Planes: []bsptest.Plane{{Normal: [3]float32{0, 0, 1}, Type: 2}},
		Nodes: []bsptest.Node{
			{Plane: 0, Front: bsptest.LeafRef(1), Back: bsptest.LeafRef(0)},
		},
		Leafs: []bsptest.Leaf{
			{Cluster: 0, Mins: [3]int16{-64, -64, -64}, Maxs: [3]int16{64, 64, 0}},
			{Cluster: 1, Mins: [3]int16{-64, -64, 0}, Maxs: [3]int16{64, 64, 64}},
		},
	}
}

func TestRegionContainingTwoLeafs(t *testing.T) {
	tree := loadTree(t, twoLeafMap())
	for _, tc := range []struct {
		p    vec.Vec3
		want int
	}{
		{vec.Vec3{0, 0, 5}, 1},
		{vec.Vec3{0, 0, -5}, 0},
		{vec.Vec3{0, 0, 0}, 1},
		{vec.Vec3{1000, -1000, -0.001}, 0},
	} {
		l, ok := tree.RegionContaining(tc.p)
		if !ok || l.Index != tc.want {
			t.Errorf("RegionContaining(%v) = %v, want leaf %d", tc.p, l, tc.want)
		}
	}
}

func TestRegionContaining(t *testing.T) {
	tree := loadTree(t, bsptest.SimpleMap())
	for _, tc := range []struct {
		p       vec.Vec3
		leaf    int
		cluster int
	}{
		{vec.Vec3{10, 10, 0}, 1, 0},
		{vec.Vec3{10, -10, 0}, 2, 1},
		{vec.Vec3{-10, 0, 10}, 3, 2},
		{vec.Vec3{-10, 0, -10}, 0, -1},
		{vec.Vec3{0, 0, 0}, 1, 0},
		{vec.Vec3{-0.5, 100, 0}, 3, 2},
	} {
		l, ok := tree.RegionContaining(tc.p)
		if !ok {
			t.Fatalf("RegionContaining(%v) found nothing", tc.p)
		}
		if l.Index != tc.leaf || l.Cluster != tc.cluster {
			t.Errorf("RegionContaining(%v) = leaf %d cluster %d, want leaf %d cluster %d", tc.p, l.Index, l.Cluster, tc.leaf, tc.cluster)
		}
	}
}

func TestRegionInsideBounds(t *testing.T) {
	tree := loadTree(t, bsptest.SimpleMap())
	for x := float32(-250); x < 256; x += 37 {
		for y := float32(-250); y < 256; y += 41 {
			for z := float32(-250); z < 256; z += 43 {
				p := vec.Vec3{x, y, z}
				l, ok := tree.RegionContaining(p)
				if !ok {
					t.Fatalf("RegionContaining(%v) found nothing", p)
				}
				mins, maxs := l.Bounds()
				for i := range p {
					if p[i] < mins[i] || p[i] > maxs[i] {
						t.Errorf("%v is outside of leaf %d [%v, %v]", p, l.Index, mins, maxs)
					}
				}
			}
		}
	}
}

func TestTreeShape(t *testing.T) {
	tree := loadTree(t, bsptest.SimpleMap())
	if !tree.Loaded() {
		t.Fatal("not loaded")
	}
	if tree.NodeCount() != 3 || len(tree.Leaves()) != 4 {
		t.Errorf("%d nodes, %d leafs", tree.NodeCount(), len(tree.Leaves()))
	}
	root, ok := tree.Root().(*MNode)
	if !ok {
		t.Fatalf("root is %T", tree.Root())
	}
	if root.Index != 0 || root.Plane.Normal != (vec.Vec3{1, 0, 0}) {
		t.Errorf("root = %+v", root)
	}
	if l, ok := root.Children[1].(*MNode).Children[1].(*MLeaf); !ok || l.Index != 0 || l.Contents != ContentsSolid {
		t.Errorf("back of back = %+v", root.Children[1].(*MNode).Children[1])
	}
	l, ok := tree.Leaf(3)
	if !ok || !reflect.DeepEqual(l.Faces, []int{3, 4}) {
		t.Errorf("Leaf(3) = %+v, %v", l, ok)
	}
	if _, ok := tree.Leaf(4); ok {
		t.Errorf("Leaf(4) ok")
	}
}

func TestVisibilityFrom(t *testing.T) {
	tree := loadTree(t, bsptest.SimpleMap())
	if tree.ClusterCount() != 3 || tree.Unvised() {
		t.Fatalf("ClusterCount() = %d, Unvised() = %v", tree.ClusterCount(), tree.Unvised())
	}
	for _, tc := range []struct {
		p    vec.Vec3
		want BitVector
	}{
		{vec.Vec3{10, 10, 0}, bits("110")},
		{vec.Vec3{10, -10, 0}, bits("111")},
		{vec.Vec3{-10, 0, 10}, bits("011")},
		// solid leaf without cluster
		{vec.Vec3{-10, 0, -10}, bits("111")},
	} {
		got := tree.VisibilityFrom(tc.p)
		if len(got) != tree.ClusterCount() {
			t.Errorf("VisibilityFrom(%v) has %d bits", tc.p, len(got))
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("VisibilityFrom(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestClusterFaceBatches(t *testing.T) {
	tree := loadTree(t, bsptest.SimpleMap())
	want := [][][]int{{{0, 1}}, {{2}}, {{3, 4}}}
	if got := tree.ClusterFaceBatches(); !reflect.DeepEqual(got, want) {
		t.Errorf("ClusterFaceBatches() = %v, want %v", got, want)
	}
	batched, faces := 0, 0
	for _, c := range tree.ClusterFaceBatches() {
		for _, b := range c {
			batched += len(b)
		}
	}
	for _, l := range tree.Leaves() {
		if l.Cluster >= 0 {
			faces += len(l.Faces)
		}
	}
	if batched != faces {
		t.Errorf("%d batched faces, %d faces in clustered leafs", batched, faces)
	}
	for c, ls := range tree.ClusterLeaves() {
		if len(ls) != len(tree.ClusterFaceBatches()[c]) {
			t.Errorf("cluster %d: %d leafs for %d batches", c, len(ls), len(tree.ClusterFaceBatches()[c]))
		}
		for _, l := range ls {
			if l.Cluster != c {
				t.Errorf("leaf %d with cluster %d listed under %d", l.Index, l.Cluster, c)
			}
		}
	}
}

func TestSharedLeaf(t *testing.T) {
	m := &bsptest.Map{
		Planes: []bsptest.Plane{
			{Normal: [3]float32{0, 0, 1}, Type: 2},
			{Normal: [3]float32{1, 0, 0}, Type: 0},
		},
		Nodes: []bsptest.Node{
			{Plane: 0, Front: 1, Back: bsptest.LeafRef(1)},
			{Plane: 1, Front: bsptest.LeafRef(0), Back: bsptest.LeafRef(1)},
		},
		Leafs: []bsptest.Leaf{
			{Cluster: 0},
			{Cluster: 0, FirstFace: 0, FaceCount: 1},
		},
		LeafFaces: []uint16{7},
		PVS:       [][]bool{{true}},
	}
	tree := loadTree(t, m)
	if got := tree.ClusterFaceBatches(); !reflect.DeepEqual(got, [][][]int{{{}, {7}}}) {
		t.Errorf("ClusterFaceBatches() = %v", got)
	}
	l, _ := tree.RegionContaining(vec.Vec3{0, 0, -1})
	r, _ := tree.RegionContaining(vec.Vec3{-1, 0, 1})
	if l != r {
		t.Errorf("shared leaf built twice")
	}
	got := leafIndices(tree.LeavesTouching(vec.Vec3{-1, -1, -1}, vec.Vec3{1, 1, 1}))
	if !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("LeavesTouching() = %v, want [0 1]", got)
	}
}

func TestUnvised(t *testing.T) {
	tree := loadTree(t, twoLeafMap())
	if !tree.Unvised() || tree.ClusterCount() != 2 {
		t.Fatalf("Unvised() = %v, ClusterCount() = %d", tree.Unvised(), tree.ClusterCount())
	}
	if got := tree.VisibilityFrom(vec.Vec3{0, 0, 1}); !reflect.DeepEqual(got, bits("11")) {
		t.Errorf("VisibilityFrom() = %v", got)
	}
}

func TestMalformedTree(t *testing.T) {
	cycle := twoLeafMap()
	cycle.Nodes = []bsptest.Node{
		{Plane: 0, Front: 1, Back: bsptest.LeafRef(0)},
		{Plane: 0, Front: 0, Back: bsptest.LeafRef(1)},
	}
	badNode := twoLeafMap()
	badNode.Nodes[0].Front = 5
	badLeaf := twoLeafMap()
	badLeaf.Nodes[0].Front = bsptest.LeafRef(2)
	badPlane := twoLeafMap()
	badPlane.Nodes[0].Plane = 1
	badFaces := twoLeafMap()
	badFaces.Leafs[0].FaceCount = 3
	badCluster := bsptest.SimpleMap()
	badCluster.Leafs[2].Cluster = 3
	noNodes := twoLeafMap()
	noNodes.Nodes = nil

	for name, m := range map[string]*bsptest.Map{
		"cycle":       cycle,
		"node index":  badNode,
		"leaf index":  badLeaf,
		"plane index": badPlane,
		"leaf faces":  badFaces,
		"cluster":     badCluster,
		"no nodes":    noNodes,
	} {
		if err := loadTreeErr(t, m); !errors.Is(err, ErrMalformedTree) {
			t.Errorf("%s: err = %v, want %v", name, err, ErrMalformedTree)
		}
	}
}

func TestUnload(t *testing.T) {
	tree := loadTree(t, bsptest.SimpleMap())
	tree.Unload()
	tree.Unload()
	if tree.Loaded() || tree.ClusterCount() != 0 || len(tree.Leaves()) != 0 {
		t.Errorf("tree still loaded after Unload")
	}
	if _, ok := tree.RegionContaining(vec.Vec3{}); ok {
		t.Errorf("RegionContaining on unloaded tree found a leaf")
	}
	if got := tree.VisibilityFrom(vec.Vec3{}); len(got) != 0 {
		t.Errorf("VisibilityFrom on unloaded tree = %v", got)
	}
	// a tree can be loaded again
	tree = loadTree(t, twoLeafMap())
	if tree.ClusterCount() != 2 {
		t.Errorf("reload: ClusterCount() = %d", tree.ClusterCount())
	}
}
