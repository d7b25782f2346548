package render

import (
	"math"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// polygonArea returns the absolute shoelace area of a screen polygon.
func polygonArea(pts ...math3d.Vec2) float64 {
	sum := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// nearPoint returns where the segment a→b crosses z = NearClipDst.
func nearPoint(a, b math3d.Vec3) math3d.Vec3 {
	t := (NearClipDst - a.Z) / (b.Z - a.Z)
	return a.Lerp(b, t)
}

func TestClipCounts(t *testing.T) {
	tests := []struct {
		name    string
		zs      [3]float64
		points  int
		clipped int
	}{
		{"none clipped", [3]float64{5, 5, 5}, 3, 0},
		{"one clipped", [3]float64{-1, 5, 5}, 6, 1},
		{"two clipped", [3]float64{-1, -1, 5}, 3, 1},
		{"all clipped", [3]float64{-1, -2, -3}, 0, 1},
		{"on the plane counts as clipped", [3]float64{NearClipDst, 5, 5}, 6, 1},
	}

	cam := NewCamera(90)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := triangleMesh(
				math3d.V3(0, 1, tt.zs[0]),
				math3d.V3(1, -1, tt.zs[1]),
				math3d.V3(-1, -1, tt.zs[2]),
			)
			var stats clipStats
			pts := clipAndProject(nil, mesh, math3d.NewTransform(), cam, 100, 100, &stats)
			if len(pts) != tt.points {
				t.Fatalf("expected %d points, got %d", tt.points, len(pts))
			}
			if stats.trianglesIn != 1 || stats.trianglesOut != tt.points/3 || stats.trianglesClipped != tt.clipped {
				t.Errorf("unexpected stats %+v", stats)
			}
			for i, p := range pts {
				if p.Depth < NearClipDst {
					t.Errorf("point %d depth %v is in front of the near plane", i, p.Depth)
				}
			}
		})
	}
}

func TestClipScenarioBehindCamera(t *testing.T) {
	// One vertex at view z = -1, two at z = 5.
	cam := NewCamera(60)
	mesh := triangleMesh(math3d.V3(0, 1, -1), math3d.V3(1, -1, 5), math3d.V3(-1, -1, 5))
	pts := ClipAndProject(nil, mesh, math3d.NewTransform(), cam, 200, 200)
	if len(pts) != 6 {
		t.Fatalf("expected 2 triangles, got %d points", len(pts))
	}
	for i, p := range pts {
		if p.Depth < NearClipDst {
			t.Errorf("point %d has view z %v", i, p.Depth)
		}
	}
}

func TestClipConservesArea(t *testing.T) {
	const w, h = 400, 300
	cam := NewCamera(75)
	tr := math3d.NewTransform()

	t.Run("one clipped", func(t *testing.T) {
		v0, v1, v2 := math3d.V3(0.2, 1, -0.5), math3d.V3(1.5, -1, 4), math3d.V3(-1, -0.7, 3)
		pts := ClipAndProject(nil, triangleMesh(v0, v1, v2), tr, cam, w, h)
		if len(pts) != 6 {
			t.Fatalf("expected 2 triangles, got %d points", len(pts))
		}

		// Analytic quad: v1, v2 and the two crossings of the near plane.
		quad := []math3d.Vec2{
			cam.Project(nearPoint(v0, v1), w, h),
			cam.Project(v1, w, h),
			cam.Project(v2, w, h),
			cam.Project(nearPoint(v0, v2), w, h),
		}
		want := polygonArea(quad...)

		got := 0.0
		for i := 0; i < len(pts); i += 3 {
			got += polygonArea(pts[i].Screen, pts[i+1].Screen, pts[i+2].Screen)
		}
		if math.Abs(got-want) > 1e-6*want {
			t.Errorf("clipped area %v, analytic %v", got, want)
		}

		// Both halves keep the source winding.
		s0 := edge(pts[0].Screen, pts[1].Screen, pts[2].Screen)
		s1 := edge(pts[3].Screen, pts[4].Screen, pts[5].Screen)
		if (s0 > 0) != (s1 > 0) {
			t.Errorf("output triangles wind differently: %v, %v", s0, s1)
		}
	})

	t.Run("two clipped", func(t *testing.T) {
		v0, v1, v2 := math3d.V3(0.3, 0.5, 2), math3d.V3(1, -1, -1), math3d.V3(-1, -1, -0.5)
		pts := ClipAndProject(nil, triangleMesh(v0, v1, v2), tr, cam, w, h)
		if len(pts) != 3 {
			t.Fatalf("expected 1 triangle, got %d points", len(pts))
		}
		want := polygonArea(
			cam.Project(v0, w, h),
			cam.Project(nearPoint(v0, v1), w, h),
			cam.Project(nearPoint(v0, v2), w, h),
		)
		got := polygonArea(pts[0].Screen, pts[1].Screen, pts[2].Screen)
		if math.Abs(got-want) > 1e-6*want {
			t.Errorf("clipped area %v, analytic %v", got, want)
		}
	})
}

func TestClipPreservesFrontFacing(t *testing.T) {
	cam := NewCamera(60)
	tr := math3d.NewTransform()
	// Clockwise on screen: front-facing.
	base := [3]math3d.Vec3{math3d.V3(-1, -1, 3), math3d.V3(0, 1, 3), math3d.V3(1, -1, 3)}
	for clip := range 3 {
		v := base
		v[clip].Z = -2
		pts := ClipAndProject(nil, triangleMesh(v[0], v[1], v[2]), tr, cam, 100, 100)
		for i := 0; i < len(pts); i += 3 {
			if a := edge(pts[i].Screen, pts[i+1].Screen, pts[i+2].Screen); a <= 0 {
				t.Errorf("clipping vertex %d: triangle %d became back-facing (%v)", clip, i/3, a)
			}
		}
	}
}

func TestClipInterpolatesAttributes(t *testing.T) {
	cam := NewCamera(60)
	mesh := triangleMesh(math3d.V3(0, 0, -1), math3d.V3(1, 0, 1), math3d.V3(-1, 0, 1))
	mesh.UVs = []math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	mesh.Normals = []math3d.Vec3{math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 1, 0)}

	pts := ClipAndProject(nil, mesh, math3d.NewTransform(), cam, 100, 100)
	// The crossing is about halfway along each edge from the clipped vertex.
	wantT := (NearClipDst + 1) / 2
	for _, p := range pts {
		if p.Depth != NearClipDst {
			continue
		}
		if math.Abs(p.UV.X-wantT) > 1e-12 || math.Abs(p.UV.Y-wantT) > 1e-12 {
			t.Errorf("uv %v, want (%v, %v)", p.UV, wantT, wantT)
		}
		if math.Abs(p.Normal.Len()-1) > 1e-12 {
			t.Errorf("clipped normal %v is not unit length", p.Normal)
		}
	}
}

func TestClipAppendsToScratch(t *testing.T) {
	cam := NewCamera(60)
	mesh := models.NewCube(1)
	tr := math3d.NewTransformAt(math3d.V3(0, 0, 5), math3d.Zero3())

	scratch := make([]RasterizerPoint, 0, 128)
	pts := ClipAndProject(scratch, mesh, tr, cam, 64, 64)
	if len(pts) != 36 {
		t.Fatalf("expected 36 points, got %d", len(pts))
	}
	if &pts[0] != &scratch[:1][0] {
		t.Error("expected the scratch buffer to be reused")
	}
}

func BenchmarkClipAndProject(b *testing.B) {
	cam := NewCamera(60)
	mesh := models.NewGrid(20, 16, -1)
	tr := math3d.NewTransform()
	var pts []RasterizerPoint
	for b.Loop() {
		pts = ClipAndProject(pts[:0], mesh, tr, cam, 320, 240)
	}
}
