package material

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
)

// Hair is a Kajiya-Kay fiber model. It scatters into the full sphere around
// the fiber tangent, so there is no hemisphere cut-off.
type Hair struct {
	tangent  core.Vec3
	diffuse  core.Vec3
	specular core.Vec3
	exponent float64
}

// NewHair creates the fiber BSDF. The tangent falls back to a vector
// perpendicular to the normal when the frame does not provide one.
func NewHair(s Surface, f Frame) *Hair {
	tangent := f.Tangent.Normalize()
	if tangent.IsZero() {
		tangent, _ = core.OrthonormalBasis(f.Normal)
	}
	alpha := Alpha(s.Roughness)
	return &Hair{
		tangent:  tangent,
		diffuse:  s.DiffuseAlbedo,
		specular: s.SpecularAlbedo,
		exponent: max(2/(alpha*alpha)-2, 1),
	}
}

// Eval implements the BSDF interface
func (h *Hair) Eval(wo, wi core.Vec3) core.Vec3 {
	cosI := h.tangent.Dot(wi)
	cosO := h.tangent.Dot(wo)
	sinI := math.Sqrt(math.Max(0, 1-cosI*cosI))
	sinO := math.Sqrt(math.Max(0, 1-cosO*cosO))

	// The specular cone is centered on the mirror direction around the fiber
	cone := math.Max(0, cosI*(-cosO)+sinI*sinO)
	spec := h.specular.Multiply((h.exponent + 2) / (2 * math.Pi) * math.Pow(cone, h.exponent))
	diff := h.diffuse.Multiply(1 / (math.Pi * math.Pi))

	return diff.Add(spec).Multiply(sinI)
}

// PDF implements the BSDF interface with uniform sphere sampling
func (h *Hair) PDF(wo, wi core.Vec3) float64 {
	return 1 / (4 * math.Pi)
}

// Sample implements the BSDF interface
func (h *Hair) Sample(wo core.Vec3, sampler core.Sampler) (core.Vec3, float64, bool) {
	return core.SampleOnUnitSphere(sampler.Get2D()), 1 / (4 * math.Pi), true
}
