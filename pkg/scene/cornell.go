package scene

import (
	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/material"
	"github.com/df07/go-restir/pkg/renderer"
)

// NewCornellScene creates the classic Cornell box with two boxes and a ceiling light
func NewCornellScene() *Scene {
	s := &Scene{
		Name: "cornell",
		CameraConfig: renderer.CameraConfig{
			Center:      core.NewVec3(278, 278, -800), // Position camera outside the box looking in
			LookAt:      core.NewVec3(278, 278, 0),    // Look at the center of the box
			Up:          core.NewVec3(0, 1, 0),
			Width:       400,
			AspectRatio: 1.0,
			VFov:        40.0,
		},
	}

	white := s.AddMaterial(material.Surface{DiffuseAlbedo: core.NewVec3(0.73, 0.73, 0.73), Roughness: 1})
	red := s.AddMaterial(material.Surface{DiffuseAlbedo: core.NewVec3(0.65, 0.05, 0.05), Roughness: 1})
	green := s.AddMaterial(material.Surface{DiffuseAlbedo: core.NewVec3(0.12, 0.45, 0.15), Roughness: 1})
	glossy := s.AddMaterial(material.Surface{
		DiffuseAlbedo:  core.NewVec3(0.5, 0.5, 0.5),
		SpecularAlbedo: core.NewVec3(0.3, 0.3, 0.3),
		Roughness:      0.3,
	})
	light := s.AddMaterial(material.Surface{
		DiffuseAlbedo: core.NewVec3(0.78, 0.78, 0.78),
		Emission:      core.NewVec3(15, 15, 15),
		Roughness:     1,
	})

	// Cornell box dimensions (standard 555x555x555 units), walls facing inward
	boxSize := 555.0
	x := core.NewVec3(boxSize, 0, 0)
	y := core.NewVec3(0, boxSize, 0)
	z := core.NewVec3(0, 0, boxSize)

	s.AddQuad(core.NewVec3(0, 0, 0), z, x, white)       // floor
	s.AddQuad(core.NewVec3(0, boxSize, 0), x, z, white) // ceiling
	s.AddQuad(core.NewVec3(0, 0, boxSize), y, x, white) // back wall
	s.AddQuad(core.NewVec3(0, 0, 0), y, z, red)         // left wall
	s.AddQuad(core.NewVec3(boxSize, 0, 0), z, y, green) // right wall

	// Ceiling light slightly below the ceiling, facing down
	lightSize := 130.0
	lightOffset := (boxSize - lightSize) / 2.0
	s.AddQuad(
		core.NewVec3(lightOffset, boxSize-1, lightOffset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		light,
	)

	s.AddBox(core.NewVec3(212.5, 0, 147.5), core.NewVec3(165, 165, 165), -18, white)
	s.AddBox(core.NewVec3(347.5, 0, 377.5), core.NewVec3(165, 330, 165), 15, glossy)

	return s
}
