package math3d

import (
	"testing"
)

func BenchmarkTransformToWorldPoint(b *testing.B) {
	parent := NewTransformAt(V3(1, 2, 3), V3(0.1, 0.2, 0.3))
	t := NewTransformAt(V3(-1, 0, 4), V3(0.5, -0.25, 0))
	t.SetParent(parent)
	p := V3(1, 2, 3)

	for b.Loop() {
		_ = t.ToWorldPoint(p)
	}
}

func BenchmarkTransformToLocalPoint(b *testing.B) {
	t := NewTransformAt(V3(0, 1, -5), V3(0.3, 0.7, 0))
	p := V3(1, 2, 3)

	for b.Loop() {
		_ = t.ToLocalPoint(p)
	}
}

func BenchmarkTransformRotate(b *testing.B) {
	t := NewTransform()

	for b.Loop() {
		t.Rotate(0.01, 0.02, 0)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 0, 0)
	v2 := V3(0, 1, 0)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}
