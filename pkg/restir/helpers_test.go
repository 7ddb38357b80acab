package restir

import (
	"fmt"
	"testing"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/geometry"
	"github.com/df07/go-restir/pkg/lights"
	"github.com/df07/go-restir/pkg/material"
)

// recordingLogger keeps warnings for assertions
type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debugf(string, ...interface{})  {}
func (l *recordingLogger) Infof(string, ...interface{})   {}
func (l *recordingLogger) Noticef(string, ...interface{}) {}
func (l *recordingLogger) Warningf(format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Errorf(string, ...interface{}) {}

// testScene is a minimal SceneQuery over a BVH. Triangle 0 is always the light.
type testScene struct {
	triangles []*geometry.Triangle
	bvh       *geometry.BVH
	emissive  map[int]int
}

func (s *testScene) TraceVisibilityRay(origin, direction core.Vec3, tMin, tMax float64) bool {
	return !s.bvh.Occluded(core.NewRay(origin, direction), tMin, tMax)
}

func (s *testScene) TraceRay(ray core.Ray, tMin, tMax float64) (geometry.HitRecord, bool) {
	return s.bvh.Hit(ray, tMin, tMax)
}

func (s *testScene) EmissiveLightIndex(hit geometry.HitRecord) (int, bool) {
	i, ok := s.emissive[hit.TriangleIndex]
	return i, ok
}

// lightTriangle is a downward facing triangle centered above the origin at height 1
func lightTriangle() *geometry.Triangle {
	return geometry.NewTriangle(
		core.NewVec3(-0.5, 1, -0.5),
		core.NewVec3(0.5, 1, -0.5),
		core.NewVec3(-0.5, 1, 0.5),
		0,
	)
}

// newTestScene builds a scene with the ceiling light and, when blocked, a large
// occluder halfway between the floor and the light
func newTestScene(t *testing.T, radiance core.Vec3, blocked bool) (*testScene, *lights.Lights) {
	t.Helper()
	light := lightTriangle()
	triangles := []*geometry.Triangle{light}
	if blocked {
		triangles = append(triangles,
			geometry.NewTriangle(core.NewVec3(-10, 0.5, -10), core.NewVec3(10, 0.5, -10), core.NewVec3(-10, 0.5, 10), 1),
			geometry.NewTriangle(core.NewVec3(10, 0.5, -10), core.NewVec3(10, 0.5, 10), core.NewVec3(-10, 0.5, 10), 1),
		)
	}
	scene := &testScene{
		triangles: triangles,
		bvh:       geometry.NewBVH(triangles),
		emissive:  map[int]int{0: 0},
	}
	l, err := lights.New(nil, []lights.EmissiveTriangle{{Triangle: light, Radiance: radiance, TriangleIndex: 0}}, nil, lights.DefaultSelectionWeights())
	if err != nil {
		t.Fatalf("lights.New failed: %v", err)
	}
	return scene, l
}

// floorGBuffer places every pixel on a diffuse floor at y = 0 spanning
// [-extent, extent] in x and z, viewed from straight above
func floorGBuffer(width, height int, extent float64, albedo core.Vec3) *GBuffer {
	g := NewGBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := -extent + 2*extent*(float64(x)+0.5)/float64(width)
			pz := -extent + 2*extent*(float64(y)+0.5)/float64(height)
			p := core.NewVec3(px, 0, pz)
			*g.At(x, y) = SurfaceData{
				Valid:         true,
				Position:      p,
				Normal:        core.NewVec3(0, 1, 0),
				ViewDir:       core.NewVec3(0, 1, 0),
				DiffuseAlbedo: albedo,
				Roughness:     1,
				Material:      material.KindStandard,
				Depth:         5,
				Hit:           geometry.HitRecord{Point: p, Normal: core.NewVec3(0, 1, 0), T: 5, FrontFace: true},
			}
		}
	}
	return g
}

// testOptions returns small, fast options
func testOptions(mode Mode) Options {
	o := DefaultOptions()
	o.Mode = mode
	o.LightTileCount = 8
	o.LightTileSize = 256
	o.NumWorkers = 2
	return o
}
