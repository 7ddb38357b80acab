package scene

import (
	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/lights"
	"github.com/df07/go-restir/pkg/material"
	"github.com/df07/go-restir/pkg/renderer"
)

// NewDefaultScene creates an outdoor scene lit by a sky gradient, a sun and a
// few small emitters, exercising every light population and both BSDFs
func NewDefaultScene() *Scene {
	s := &Scene{
		Name: "default",
		CameraConfig: renderer.CameraConfig{
			Center:      core.NewVec3(0, 1.5, 5),
			LookAt:      core.NewVec3(0, 0.5, 0),
			Up:          core.NewVec3(0, 1, 0),
			Width:       400,
			AspectRatio: 16.0 / 9.0,
			VFov:        40.0,
		},
	}

	ground := s.AddMaterial(material.Surface{DiffuseAlbedo: core.NewVec3(0.48, 0.48, 0.0), Roughness: 1})
	blue := s.AddMaterial(material.Surface{DiffuseAlbedo: core.NewVec3(0.1, 0.2, 0.5), Roughness: 1})
	gold := s.AddMaterial(material.Surface{
		DiffuseAlbedo:  core.NewVec3(0.1, 0.08, 0.02),
		SpecularAlbedo: core.NewVec3(0.8, 0.6, 0.2),
		Roughness:      0.35,
	})
	fur := s.AddMaterial(material.Surface{
		Kind:           material.KindHair,
		DiffuseAlbedo:  core.NewVec3(0.35, 0.2, 0.1),
		SpecularAlbedo: core.NewVec3(0.3, 0.3, 0.3),
		Roughness:      0.4,
	})
	lamp := s.AddMaterial(material.Surface{Emission: core.NewVec3(8, 6, 4), Roughness: 1})

	// Large but finite ground quad, facing up
	s.AddQuad(core.NewVec3(-50, 0, -50), core.NewVec3(0, 0, 100), core.NewVec3(100, 0, 0), ground)

	s.AddBox(core.NewVec3(-1.2, 0, 0), core.NewVec3(0.8, 0.8, 0.8), 20, blue)
	s.AddBox(core.NewVec3(0, 0, -0.5), core.NewVec3(0.8, 1.4, 0.8), -10, gold)
	s.AddBox(core.NewVec3(1.2, 0, 0.2), core.NewVec3(0.8, 0.6, 0.8), 35, fur)

	// A ring of small downward facing lamps
	for i := 0; i < 6; i++ {
		x := -2.5 + float64(i)
		s.AddQuad(core.NewVec3(x, 2.5, 1), core.NewVec3(0.3, 0, 0), core.NewVec3(0, 0, 0.3), lamp)
	}

	s.AddDirectionalLight(core.NewVec3(-0.4, -1, -0.3), core.NewVec3(2.5, 2.4, 2.2))
	s.AddPointLight(core.NewVec3(0, 1.2, 1.5), core.NewVec3(1.5, 1.5, 2))

	// Sky gradient: blue above, white toward the horizon and below
	env, err := lights.NewGradientEnvironment(core.NewVec3(0.3, 0.45, 0.8), core.NewVec3(0.8, 0.8, 0.8), 64, 32)
	if err == nil {
		s.Environment = env
	}

	return s
}

// NewTriangleScene creates a diffuse floor lit by a single emissive triangle
func NewTriangleScene() *Scene {
	s := &Scene{
		Name: "triangle",
		CameraConfig: renderer.CameraConfig{
			Center:      core.NewVec3(0, 3, 3),
			LookAt:      core.NewVec3(0, 0, 0),
			Up:          core.NewVec3(0, 1, 0),
			Width:       200,
			AspectRatio: 1.0,
			VFov:        50.0,
		},
	}
	floor := s.AddMaterial(material.Surface{DiffuseAlbedo: core.NewVec3(0.6, 0.6, 0.6), Roughness: 1})
	light := s.AddMaterial(material.Surface{Emission: core.NewVec3(4, 4, 4), Roughness: 1})

	s.AddQuad(core.NewVec3(-2, 0, -2), core.NewVec3(0, 0, 4), core.NewVec3(4, 0, 0), floor)
	// Facing down
	s.AddTriangle(core.NewVec3(-0.5, 1, -0.5), core.NewVec3(0.5, 1, -0.5), core.NewVec3(-0.5, 1, 0.5), light)
	return s
}
