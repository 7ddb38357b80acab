package material

import (
	"github.com/df07/go-restir/pkg/core"
)

// Standard is a Lambertian diffuse plus GGX specular composite.
// Lobes are picked for sampling in proportion to their albedo.
type Standard struct {
	normal   core.Vec3
	diffuse  lambertianLobe
	specular ggxLobe
	pDiffuse float64
}

// NewStandard creates the standard BSDF for a surface
func NewStandard(s Surface, f Frame) *Standard {
	return &Standard{
		normal:   f.Normal,
		diffuse:  lambertianLobe{albedo: s.DiffuseAlbedo},
		specular: ggxLobe{f0: s.SpecularAlbedo, alpha: Alpha(s.Roughness)},
		pDiffuse: DiffuseProbability(s.DiffuseAlbedo, s.SpecularAlbedo),
	}
}

// Eval implements the BSDF interface
func (b *Standard) Eval(wo, wi core.Vec3) core.Vec3 {
	if wo.Dot(b.normal) <= 0 || wi.Dot(b.normal) <= 0 {
		return core.Vec3{}
	}
	result := b.diffuse.eval(b.normal, wi)
	if !b.specular.f0.IsZero() {
		result = result.Add(b.specular.eval(b.normal, wo, wi))
	}
	return result
}

// PDF implements the BSDF interface
func (b *Standard) PDF(wo, wi core.Vec3) float64 {
	if wo.Dot(b.normal) <= 0 || wi.Dot(b.normal) <= 0 {
		return 0
	}
	pdf := b.pDiffuse * b.diffuse.pdf(b.normal, wi)
	if b.pDiffuse < 1 {
		pdf += (1 - b.pDiffuse) * b.specular.pdf(b.normal, wo, wi)
	}
	return pdf
}

// Sample implements the BSDF interface. The returned pdf is the mixture density,
// so it can be used directly in MIS against light sampling.
func (b *Standard) Sample(wo core.Vec3, sampler core.Sampler) (core.Vec3, float64, bool) {
	if wo.Dot(b.normal) <= 0 {
		return core.Vec3{}, 0, false
	}

	var wi core.Vec3
	if sampler.Get1D() < b.pDiffuse {
		wi = b.diffuse.sample(b.normal, sampler.Get2D())
	} else {
		var ok bool
		if wi, ok = b.specular.sample(b.normal, wo, sampler.Get2D()); !ok {
			return core.Vec3{}, 0, false
		}
	}

	pdf := b.PDF(wo, wi)
	if pdf <= 0 {
		return core.Vec3{}, 0, false
	}
	return wi, pdf, true
}
