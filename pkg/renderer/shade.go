package renderer

import (
	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/material"
	"github.com/df07/go-restir/pkg/restir"
)

// ShadePixel combines the final samples of every pass into the radiance
// leaving the primary surface toward the camera
func ShadePixel(r *restir.ReSTIR, g *restir.GBuffer, x, y int) core.Vec3 {
	sd := g.At(x, y)

	var bsdf material.BSDF
	color := core.Vec3{}
	if sd.Valid {
		bsdf = material.New(material.Surface{
			Kind:           sd.Material,
			DiffuseAlbedo:  sd.DiffuseAlbedo,
			SpecularAlbedo: sd.SpecularAlbedo,
			Roughness:      sd.Roughness,
		}, material.Frame{Normal: sd.Normal, Tangent: sd.Tangent})

		// Emission that was not a resampling candidate is added directly
		if !r.Options().ResampleEmission {
			color = sd.Emission
		}
	}

	for pass := 0; pass < r.NumPasses(); pass++ {
		fs := r.FinalSample(x, y, pass)
		switch fs.PathSample {
		case restir.PathEmission:
			color = color.Add(fs.Li.Multiply(fs.MISWeight))
		case restir.PathLight:
			if bsdf != nil {
				f := bsdf.Eval(sd.ViewDir, fs.Direction)
				color = color.Add(f.MultiplyVec(fs.Li).Multiply(fs.MISWeight))
			}
		}
	}
	return color
}
