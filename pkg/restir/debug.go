package restir

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/lights"
)

var lightKindColors = map[lights.Kind]color.RGBA{
	lights.KindInvalid:     {0, 0, 0, 255},
	lights.KindEnvironment: {60, 120, 255, 255},
	lights.KindEmissive:    {255, 200, 40, 255},
	lights.KindAnalytic:    {230, 60, 60, 255},
}

// DebugImage visualizes one channel of pass 0 as selected by Options.DebugOutput.
// It returns nil when debug output is disabled.
func (r *ReSTIR) DebugImage() *image.RGBA {
	if r.opts.DebugOutput == DebugNone {
		return nil
	}
	reservoirs, contexts := r.latest(0)
	final := r.buf.final[0]
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	maxM := math.Max(1, float64(r.opts.MaxHistoryLength+1)*float64(r.opts.InitialLightSampleCount+r.opts.InitialBRDFSampleCount+1))

	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			i := y*r.width + x
			res := reservoirs[i]
			var c color.RGBA
			switch r.opts.DebugOutput {
			case DebugWeight:
				c = gray(res.Weight / (1 + res.Weight))
			case DebugM:
				c = gray(res.M / maxM)
			case DebugTargetPdf:
				c = gray(res.TargetPdf / (1 + res.TargetPdf))
			case DebugLightKind:
				if contexts[i].Valid && res.PathSample == PathLight {
					c = lightKindColors[res.LightSample.Kind()]
				} else {
					c = lightKindColors[lights.KindInvalid]
				}
			case DebugRadiance:
				c = radiance(final[i].Li)
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func gray(v float64) color.RGBA {
	g := uint8(math.Min(math.Max(v, 0), 1) * 255)
	return color.RGBA{g, g, g, 255}
}

func radiance(v core.Vec3) color.RGBA {
	v = v.GammaCorrect(2.2).Clamp(0, 1)
	return color.RGBA{uint8(v.X * 255), uint8(v.Y * 255), uint8(v.Z * 255), 255}
}
