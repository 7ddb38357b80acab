package material

import (
	"github.com/df07/go-restir/pkg/core"
)

// Kind tags the BSDF model a surface uses
type Kind uint8

const (
	KindStandard Kind = iota // Lambertian diffuse + GGX specular
	KindHair                 // Kajiya-Kay style fiber
)

// String returns the name of the material kind
func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindHair:
		return "hair"
	default:
		return "unknown"
	}
}

// BSDF is the capability interface used by direct lighting.
// wo points from the surface toward the viewer, wi toward the light; both unit length.
type BSDF interface {
	// Eval returns f(wo, wi) times the cosine term for wi
	Eval(wo, wi core.Vec3) core.Vec3

	// PDF returns the solid angle density of Sample producing wi
	PDF(wo, wi core.Vec3) float64

	// Sample draws a direction. ok is false when no valid direction was produced.
	Sample(wo core.Vec3, sampler core.Sampler) (wi core.Vec3, pdf float64, ok bool)
}

// Surface describes the material at a shading point
type Surface struct {
	Kind           Kind
	DiffuseAlbedo  core.Vec3
	SpecularAlbedo core.Vec3
	Roughness      float64   // Perceptual roughness; alpha = roughness²
	Emission       core.Vec3 // Emitted radiance toward the viewer
}

// Frame is the local geometry a BSDF is evaluated in
type Frame struct {
	Normal  core.Vec3 // Shading normal, facing the viewer
	Tangent core.Vec3 // Fiber direction for hair; optional otherwise
}

// MinGGXAlpha keeps near-mirror lobes from producing unbounded densities
const MinGGXAlpha = 0.0064

// New builds the BSDF for a surface
func New(s Surface, f Frame) BSDF {
	switch s.Kind {
	case KindHair:
		return NewHair(s, f)
	default:
		return NewStandard(s, f)
	}
}

// DiffuseProbability returns the probability of sampling the diffuse lobe,
// proportional to the lobe albedos.
func DiffuseProbability(diffuse, specular core.Vec3) float64 {
	d := diffuse.Luminance()
	s := specular.Luminance()
	if d+s <= 0 {
		return 1
	}
	return d / (d + s)
}

// Alpha converts perceptual roughness to the clamped GGX alpha
func Alpha(roughness float64) float64 {
	return max(roughness*roughness, MinGGXAlpha)
}
