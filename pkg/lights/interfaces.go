package lights

import (
	"github.com/df07/go-restir/pkg/core"
)

// Kind identifies the light population a sample was drawn from
type Kind uint8

const (
	KindInvalid Kind = iota
	KindEnvironment
	KindEmissive
	KindAnalytic
)

// String returns the name of the light kind
func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindEmissive:
		return "emissive"
	case KindAnalytic:
		return "analytic"
	default:
		return "invalid"
	}
}

// EvaluatedLightSample is a light sample seen from one query position. It is never
// stored; reservoirs keep the compact LightSample and re-evaluate on demand.
type EvaluatedLightSample struct {
	Position   core.Vec3 // Point on the light (finite lights only)
	Normal     core.Vec3 // Light surface normal (emissive only)
	Direction  core.Vec3 // Unit direction from the query position toward the light
	Distance   float64   // +Inf for environment and directional lights
	GeomFactor float64   // Jacobian from the light's measure to solid angle: cosθl/d², 1/d² or 1
	Emission   core.Vec3 // Radiance (or intensity for point lights) arriving along Direction

	// PDF is the density of the sample in the light's own measure: area for emissive
	// triangles, discrete for analytic lights, solid angle for the environment map.
	// It includes SelectionPDF.
	PDF          float64
	SelectionPDF float64 // Probability of picking the light's population
	Delta        bool    // Point and directional lights cannot be hit by BSDF rays
}

// SolidAnglePDF converts PDF to solid angle measure at the query position
func (e EvaluatedLightSample) SolidAnglePDF() float64 {
	if e.GeomFactor <= 0 {
		return 0
	}
	return e.PDF / e.GeomFactor
}

// IsInfinite reports whether the light is at infinite distance
func (e EvaluatedLightSample) IsInfinite() bool {
	return e.Distance > 1e300
}
