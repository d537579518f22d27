package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, 0}

	if got, want := a.Min(b), (Vec3{1, -1, -2}); got != want {
		t.Errorf("Vec3.Min() = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{3, 5, 0}); got != want {
		t.Errorf("Vec3.Max() = %v, want %v", got, want)
	}
	if got := a.MaxComponent(); got != 5 {
		t.Errorf("Vec3.MaxComponent() = %v, want 5", got)
	}
}

func TestVec4PerspectiveDivide(t *testing.T) {
	v := Vec4{2, 4, 6, 2}
	if got, want := v.PerspectiveDivide(), (Vec3{1, 2, 3}); got != want {
		t.Errorf("PerspectiveDivide() = %v, want %v", got, want)
	}
	if got, want := Point(Vec3{1, 2, 3}).PerspectiveDivide(), (Vec3{1, 2, 3}); got != want {
		t.Errorf("Point().PerspectiveDivide() = %v, want %v", got, want)
	}
}
