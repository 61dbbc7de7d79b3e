// SPDX-License-Identifier: GPL-2.0-or-later

package view

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"q2view/bsp"
	"q2view/bsp/bsptest"
	"q2view/math/vec"
)

func near(a, b vec.Vec3, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestTransform(t *testing.T) {
	tr, err := NewTransform(DefaultScale)
	if err != nil {
		t.Fatal(err)
	}
	got := tr.ToMap(vec.Vec3{1, 2, 3})
	if want := (vec.Vec3{6000, -2000, -4000}); !near(got, want, 0.01) {
		t.Errorf("ToMap() = %v, want %v", got, want)
	}
	for _, e := range []vec.Vec3{{0, 0, 0}, {1, 2, 3}, {-0.25, 0.125, 0.5}} {
		if back := tr.ToEngine(tr.ToMap(e)); !near(back, e, 1e-5) {
			t.Errorf("ToEngine(ToMap(%v)) = %v", e, back)
		}
	}
	for _, s := range []float32{0, -1, math32.NaN()} {
		if _, err := NewTransform(s); !errors.Is(err, ErrBadScale) {
			t.Errorf("NewTransform(%v) err = %v", s, err)
		}
	}
}

func TestFrustumPoints(t *testing.T) {
	c := DefaultCamera(vec.Vec3{})
	c.FovY = 90
	c.Near = 1
	c.Far = 1000
	f := NewFrustum(c)
	for _, tc := range []struct {
		p    vec.Vec3
		want bool
	}{
		{vec.Vec3{100, 0, 0}, true},
		{vec.Vec3{100, 90, -90}, true},
		{vec.Vec3{-100, 0, 0}, false},
		{vec.Vec3{100, 200, 0}, false},
		{vec.Vec3{100, -200, 0}, false},
		{vec.Vec3{100, 0, 200}, false},
		{vec.Vec3{0.5, 0, 0}, false},
		{vec.Vec3{2000, 0, 0}, false},
	} {
		if got := f.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
	if !f.SphereVisible(vec.Vec3{2000, 0, 0}, 1500) {
		t.Errorf("large sphere behind the far plane is not visible")
	}

	c.Angles = vec.Vec3{0, 90, 0}
	f = NewFrustum(c)
	if !f.Contains(vec.Vec3{0, 100, 0}) || f.Contains(vec.Vec3{100, 0, 0}) {
		t.Errorf("yaw 90 does not look along +y")
	}

	c.Angles = vec.Vec3{90, 0, 0}
	f = NewFrustum(c)
	// pitch is clamped to 89, looking down
	if !f.Contains(vec.Vec3{1, 0, -100}) {
		t.Errorf("pitch 90 does not look down")
	}
}

func TestLeafVisible(t *testing.T) {
	r := bsptest.SimpleMap().Reader()
	h, err := bsp.ReadHeader(r)
	if err != nil {
		t.Fatal(err)
	}
	tree := &bsp.Tree{}
	if err := tree.Load(h, r); err != nil {
		t.Fatal(err)
	}
	f := NewFrustum(DefaultCamera(vec.Vec3{200, 100, 0}))
	for _, tc := range []struct {
		leaf        int
		sphere, box bool
	}{
		{0, false, false},
		{1, true, true},
		// only the bounding sphere reaches into the view
		{2, true, false},
		{3, false, false},
	} {
		l, ok := tree.Leaf(tc.leaf)
		if !ok {
			t.Fatalf("no leaf %d", tc.leaf)
		}
		if got := f.LeafVisible(l); got != tc.sphere {
			t.Errorf("LeafVisible(%d) = %v, want %v", tc.leaf, got, tc.sphere)
		}
		if got := (BoxFrustum{f}).LeafVisible(l); got != tc.box {
			t.Errorf("BoxFrustum.LeafVisible(%d) = %v, want %v", tc.leaf, got, tc.box)
		}
	}
	s := tree.Cull(tree.Everything(), f, nil)
	if s.Drawn != 3 || s.FrustumCulled != 2 {
		t.Errorf("Cull() = %+v", s)
	}
}
