package renderer

import (
	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/geometry"
	"github.com/df07/go-restir/pkg/lights"
	"github.com/df07/go-restir/pkg/material"
	"github.com/df07/go-restir/pkg/restir"
)

// Scene is what the renderer needs from a scene: ray queries for the
// resampling pipeline plus materials, background and lights for the G-buffer.
type Scene interface {
	restir.SceneQuery

	// SurfaceAt returns the material and fiber tangent at a hit
	SurfaceAt(hit geometry.HitRecord) (material.Surface, core.Vec3)

	// Background returns the radiance seen along a ray that leaves the scene
	Background(direction core.Vec3) core.Vec3

	// Lights returns the scene's light set
	Lights() *lights.Lights
}
