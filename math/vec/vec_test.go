package vec

import (
	"testing"
)

var (
	NULL = Vec3{}
)

func TestBasics(t *testing.T) {
	v := Vec3{1, 2, 3}
	if v[0] != 1 || v[1] != 2 || v[2] != 3 {
		t.Errorf("Vector construction is not obvious")
	}
	if VFromShorts([3]int16{-1, 2, 300}) != (Vec3{-1, 2, 300}) {
		t.Errorf("VFromShorts does not convert component wise")
	}
}

func TestLength(t *testing.T) {
	if NULL.Length() != 0 {
		t.Errorf("Null vector has not 0 length")
	}
	for _, v := range []Vec3{{2, 2, 1}, {2, 1, 2}, {1, 2, 2}} {
		if v.Length() != 3 {
			t.Errorf("%v Length is not 3", v)
		}
	}
}

func TestAdd(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := Add(NULL, v)
	if v != got {
		t.Errorf("Adding a null vector changed the vector")
	}
	got = Add(v, v)
	want := Vec3{2, 4, 6}
	if got != want {
		t.Errorf("Add(%v,%v) = %v want %v", v, v, got, want)
	}
}

func TestSub(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := Sub(v, v)
	if got != NULL {
		t.Errorf("Sub(%v,%v) = %v want %v", v, v, got, NULL)
	}
	v2 := Vec3{9, 7, 5}
	got = Sub(v2, v)
	want := Vec3{8, 5, 2}
	if got != want {
		t.Errorf("Sub(%v,%v) = %v want %v", v2, v, got, want)
	}
}

func TestScale(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := v.Scale(2)
	want := Vec3{2, 4, 6}
	if got != want {
		t.Errorf("%v.Scale(2) = %v want %v", v, got, want)
	}
}

func TestNormalize(t *testing.T) {
	if got := NULL.Normalize(); got != NULL {
		t.Errorf("NULL.Normalize() = %v", got)
	}
	v := Vec3{0, 3, 4}
	want := Vec3{0, 0.6, 0.8}
	if got := v.Normalize(); got != want {
		t.Errorf("%v.Normalize() = %v want %v", v, got, want)
	}
}

func TestDot(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}
	if got := Dot(a, b); got != 12 {
		t.Errorf("Dot(%v,%v) = %v want 12", a, b, got)
	}
	if got := DoublePrecDot(a, b); got != 12 {
		t.Errorf("DoublePrecDot(%v,%v) = %v want 12", a, b, got)
	}
}

func TestCross(t *testing.T) {
	got := Cross(Vec3{1, 0, 0}, Vec3{0, 1, 0})
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Cross(x,y) = %v want %v", got, want)
	}
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax(Vec3{1, 5, -2}, Vec3{3, -1, -4})
	if lo != (Vec3{1, -1, -4}) || hi != (Vec3{3, 5, -2}) {
		t.Errorf("MinMax = %v, %v", lo, hi)
	}
}

func TestAngleVectors(t *testing.T) {
	f, _, u := AngleVectors(NULL)
	if f != (Vec3{1, 0, 0}) {
		t.Errorf("forward of zero angles = %v", f)
	}
	if u != (Vec3{0, 0, 1}) {
		t.Errorf("up of zero angles = %v", u)
	}
}

func TestEqual(t *testing.T) {
	v1 := Vec3{2, 3, 4}
	v2 := Vec3{4, 3, 2}
	if v1 == v2 {
		t.Errorf("Vectors %v and %v are considered equal", v1, v2)
	}
}
