package material

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
)

// ggxLobe is an isotropic GGX microfacet reflection lobe with Schlick Fresnel
type ggxLobe struct {
	f0    core.Vec3 // Specular reflectance at normal incidence
	alpha float64
}

// distribution evaluates the GGX normal distribution D(h)
func (g ggxLobe) distribution(cosH float64) float64 {
	if cosH <= 0 {
		return 0
	}
	a2 := g.alpha * g.alpha
	d := cosH*cosH*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

// smithG1 is the separable Smith masking term for one direction
func (g ggxLobe) smithG1(cosTheta float64) float64 {
	a2 := g.alpha * g.alpha
	return 2 * cosTheta / (cosTheta + math.Sqrt(a2+(1-a2)*cosTheta*cosTheta))
}

func (g ggxLobe) fresnel(cosD float64) core.Vec3 {
	w := math.Pow(1-math.Max(0, math.Min(1, cosD)), 5)
	one := core.NewVec3(1, 1, 1)
	return g.f0.Add(one.Subtract(g.f0).Multiply(w))
}

// eval returns the microfacet BRDF times cosθi
func (g ggxLobe) eval(n, wo, wi core.Vec3) core.Vec3 {
	cosO := wo.Dot(n)
	cosI := wi.Dot(n)
	if cosO <= 0 || cosI <= 0 {
		return core.Vec3{}
	}
	h := wo.Add(wi).Normalize()
	d := g.distribution(h.Dot(n))
	gv := g.smithG1(cosO) * g.smithG1(cosI)
	f := g.fresnel(wo.Dot(h))
	return f.Multiply(d * gv / (4 * cosO))
}

// pdf of sampling wi through a GGX distributed half vector
func (g ggxLobe) pdf(n, wo, wi core.Vec3) float64 {
	if wo.Dot(n) <= 0 || wi.Dot(n) <= 0 {
		return 0
	}
	h := wo.Add(wi).Normalize()
	woh := wo.Dot(h)
	if woh <= 0 {
		return 0
	}
	return g.distribution(h.Dot(n)) * h.Dot(n) / (4 * woh)
}

func (g ggxLobe) sample(n, wo core.Vec3, u core.Vec2) (core.Vec3, bool) {
	a2 := g.alpha * g.alpha
	cosH := math.Sqrt((1 - u.X) / (1 + (a2-1)*u.X))
	sinH := math.Sqrt(math.Max(0, 1-cosH*cosH))
	phi := 2 * math.Pi * u.Y

	tangent, bitangent := core.OrthonormalBasis(n)
	h := tangent.Multiply(sinH * math.Cos(phi)).
		Add(bitangent.Multiply(sinH * math.Sin(phi))).
		Add(n.Multiply(cosH))

	wi := reflect(wo.Negate(), h)
	if wi.Dot(n) <= 0 {
		return core.Vec3{}, false
	}
	return wi.Normalize(), true
}

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
