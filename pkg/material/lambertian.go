package material

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
)

// lambertianLobe is the perfectly diffuse part of the standard BSDF
type lambertianLobe struct {
	albedo core.Vec3
}

// eval returns albedo/π · cosθ; zero below the surface
func (l lambertianLobe) eval(n, wi core.Vec3) core.Vec3 {
	cosTheta := wi.Dot(n)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	return l.albedo.Multiply(cosTheta / math.Pi)
}

// pdf is the cosine-weighted hemisphere density cos(θ) / π
func (l lambertianLobe) pdf(n, wi core.Vec3) float64 {
	cosTheta := wi.Dot(n)
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

func (l lambertianLobe) sample(n core.Vec3, u core.Vec2) core.Vec3 {
	return core.SampleCosineHemisphere(n, u).Normalize()
}
