package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-restir/pkg/core"
)

// gridTriangles builds n unit triangles spread along the X axis at z = 0
func gridTriangles(n int) []*Triangle {
	triangles := make([]*Triangle, n)
	for i := 0; i < n; i++ {
		x := float64(i) * 2
		triangles[i] = NewTriangle(core.NewVec3(x, 0, 0), core.NewVec3(x+1, 0, 0), core.NewVec3(x, 1, 0), i)
	}
	return triangles
}

func TestBVH_LeafThresholdBoundary(t *testing.T) {
	bvh := NewBVH(gridTriangles(leafThreshold))
	if bvh.Root.Triangles == nil {
		t.Errorf("Expected single leaf for %d triangles", leafThreshold)
	}

	bvh = NewBVH(gridTriangles(leafThreshold + 1))
	if bvh.Root.Triangles != nil {
		t.Errorf("Expected split for %d triangles", leafThreshold+1)
	}
	if d := bvh.depth(bvh.Root); d < 2 {
		t.Errorf("Expected depth >= 2 after split, got %d", d)
	}
}

func TestBVH_Empty(t *testing.T) {
	bvh := NewBVH(nil)
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	if _, ok := bvh.Hit(ray, 0.001, 1000); ok {
		t.Error("Expected no hit for empty BVH")
	}
	if bvh.Occluded(ray, 0.001, 1000) {
		t.Error("Expected no occlusion for empty BVH")
	}
}

func TestBVH_MatchesLinearSearch(t *testing.T) {
	triangles := gridTriangles(64)
	bvh := NewBVH(triangles)

	for i := 0; i < 64; i++ {
		ray := core.NewRay(core.NewVec3(float64(i)*2+0.25, 0.25, 3), core.NewVec3(0, 0, -1))
		hit, ok := bvh.Hit(ray, 0.001, 1000)
		if !ok {
			t.Fatalf("Expected hit on triangle %d", i)
		}
		if hit.TriangleIndex != i {
			t.Errorf("TriangleIndex incorrect: got %d, expected %d", hit.TriangleIndex, i)
		}
		if math.Abs(hit.T-3) > 1e-9 {
			t.Errorf("T incorrect: got %f, expected 3", hit.T)
		}
		if !bvh.Occluded(ray, 0.001, 1000) {
			t.Errorf("Expected occlusion along ray %d", i)
		}
		if bvh.Occluded(ray, 0.001, 2.5) {
			t.Errorf("Expected no occlusion when tMax stops short of triangle %d", i)
		}
	}
}

func TestBVH_ClosestOfOverlapping(t *testing.T) {
	triangles := []*Triangle{
		NewTriangle(core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), 0),
		NewTriangle(core.NewVec3(-1, -1, 1), core.NewVec3(1, -1, 1), core.NewVec3(0, 1, 1), 1),
		NewTriangle(core.NewVec3(-1, -1, -1), core.NewVec3(1, -1, -1), core.NewVec3(0, 1, -1), 2),
	}
	bvh := NewBVH(triangles)

	hit, ok := bvh.Hit(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), 0.001, 100)
	if !ok {
		t.Fatal("Expected hit")
	}
	if hit.TriangleIndex != 1 {
		t.Errorf("Expected closest triangle 1, got %d", hit.TriangleIndex)
	}
}
