package scene

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/geometry"
	"github.com/df07/go-restir/pkg/lights"
	"github.com/df07/go-restir/pkg/material"
	"github.com/df07/go-restir/pkg/renderer"
	"github.com/pkg/errors"
)

// Scene is a triangle scene with one material per triangle, an optional
// environment map and analytic lights. Triangles whose material emits become
// emissive lights when the scene is preprocessed.
type Scene struct {
	Name         string
	CameraConfig renderer.CameraConfig
	Triangles    []*geometry.Triangle
	Materials    []material.Surface
	Tangents     []core.Vec3 // Per triangle fiber direction; only used by hair
	Environment  *lights.Environment
	Analytic     []lights.AnalyticLight

	bvh    *geometry.BVH
	lights *lights.Lights
}

// AddMaterial registers a surface and returns its index
func (s *Scene) AddMaterial(m material.Surface) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// AddTriangle adds a triangle with the given material and returns its index
func (s *Scene) AddTriangle(v0, v1, v2 core.Vec3, materialIndex int) int {
	s.Triangles = append(s.Triangles, geometry.NewTriangle(v0, v1, v2, materialIndex))
	s.Tangents = append(s.Tangents, v1.Subtract(v0).Normalize())
	return len(s.Triangles) - 1
}

// AddQuad adds the parallelogram corner, corner+u, corner+u+v, corner+v as two
// triangles. The front face normal is u × v.
func (s *Scene) AddQuad(corner, u, v core.Vec3, materialIndex int) {
	s.AddTriangle(corner, corner.Add(u), corner.Add(u).Add(v), materialIndex)
	s.AddTriangle(corner, corner.Add(u).Add(v), corner.Add(v), materialIndex)
}

// AddBox adds an axis aligned box of the given size, rotated by degrees about
// the vertical axis through its base center, with outward facing normals
func (s *Scene) AddBox(baseCenter, size core.Vec3, degrees float64, materialIndex int) {
	a := degrees * math.Pi / 180
	sin, cos := math.Sin(a), math.Cos(a)
	rotate := func(p core.Vec3) core.Vec3 {
		return core.NewVec3(p.X*cos+p.Z*sin, p.Y, -p.X*sin+p.Z*cos)
	}
	h := size.Multiply(0.5)
	corner := func(x, y, z float64) core.Vec3 {
		local := core.NewVec3(x*h.X, (y+1)*h.Y, z*h.Z)
		return baseCenter.Add(rotate(local))
	}
	dx := rotate(core.NewVec3(size.X, 0, 0))
	dy := core.NewVec3(0, size.Y, 0)
	dz := rotate(core.NewVec3(0, 0, size.Z))

	s.AddQuad(corner(-1, -1, -1), dx, dz, materialIndex) // bottom
	s.AddQuad(corner(-1, 1, -1), dz, dx, materialIndex)  // top
	s.AddQuad(corner(-1, -1, -1), dy, dx, materialIndex) // front (-z)
	s.AddQuad(corner(-1, -1, 1), dx, dy, materialIndex)  // back (+z)
	s.AddQuad(corner(-1, -1, -1), dz, dy, materialIndex) // left (-x)
	s.AddQuad(corner(1, -1, -1), dy, dz, materialIndex)  // right (+x)
}

// AddPointLight adds an analytic point light
func (s *Scene) AddPointLight(position, intensity core.Vec3) {
	s.Analytic = append(s.Analytic, lights.NewPointLight(position, intensity))
}

// AddDirectionalLight adds an analytic directional light traveling along direction
func (s *Scene) AddDirectionalLight(direction, radiance core.Vec3) {
	s.Analytic = append(s.Analytic, lights.NewDirectionalLight(direction, radiance))
}

// Preprocess builds the BVH and the light set. It must be called after the
// last geometry or light change and before rendering.
func (s *Scene) Preprocess() error {
	for i, tri := range s.Triangles {
		if tri.MaterialIndex < 0 || tri.MaterialIndex >= len(s.Materials) {
			return errors.Errorf("triangle %d references material %d of %d", i, tri.MaterialIndex, len(s.Materials))
		}
	}
	s.bvh = geometry.NewBVH(s.Triangles)

	var emissive []lights.EmissiveTriangle
	for i, tri := range s.Triangles {
		radiance := s.Materials[tri.MaterialIndex].Emission
		if radiance.IsZero() || tri.Area() <= 0 {
			continue
		}
		emissive = append(emissive, lights.EmissiveTriangle{Triangle: tri, Radiance: radiance, TriangleIndex: i})
	}

	env := s.Environment
	if env != nil && env.IsBlack() {
		env = nil
	}
	l, err := lights.New(env, emissive, s.Analytic, lights.DefaultSelectionWeights())
	if err != nil {
		return errors.Wrapf(err, "building lights for scene %q", s.Name)
	}
	if l.Empty() {
		return errors.Errorf("scene %q has no lights", s.Name)
	}
	s.lights = l
	return nil
}

// GetPrimitiveCount returns the number of triangles in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Triangles)
}

// Lights implements renderer.Scene
func (s *Scene) Lights() *lights.Lights {
	return s.lights
}

// TraceRay implements restir.SceneQuery
func (s *Scene) TraceRay(ray core.Ray, tMin, tMax float64) (geometry.HitRecord, bool) {
	return s.bvh.Hit(ray, tMin, tMax)
}

// TraceVisibilityRay implements restir.SceneQuery
func (s *Scene) TraceVisibilityRay(origin, direction core.Vec3, tMin, tMax float64) bool {
	return !s.bvh.Occluded(core.NewRay(origin, direction), tMin, tMax)
}

// EmissiveLightIndex implements restir.SceneQuery
func (s *Scene) EmissiveLightIndex(hit geometry.HitRecord) (int, bool) {
	if s.lights == nil {
		return 0, false
	}
	return s.lights.EmissiveIndex(hit.TriangleIndex)
}

// SurfaceAt implements renderer.Scene. Emission is only seen from the front face.
func (s *Scene) SurfaceAt(hit geometry.HitRecord) (material.Surface, core.Vec3) {
	if hit.TriangleIndex < 0 || hit.TriangleIndex >= len(s.Triangles) {
		return material.Surface{}, core.Vec3{}
	}
	m := s.Materials[s.Triangles[hit.TriangleIndex].MaterialIndex]
	if !hit.FrontFace {
		m.Emission = core.Vec3{}
	}
	return m, s.Tangents[hit.TriangleIndex]
}

// Background implements renderer.Scene
func (s *Scene) Background(direction core.Vec3) core.Vec3 {
	if s.lights == nil {
		return core.Vec3{}
	}
	return s.lights.EnvRadiance(direction)
}
