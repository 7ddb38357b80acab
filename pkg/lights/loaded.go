package lights

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
)

// LoadedLightSample holds everything about a light sample that does not depend
// on the query position, so it can be evaluated from many surfaces cheaply.
type LoadedLightSample struct {
	Sample       LightSample
	Position     core.Vec3 // Finite lights
	Normal       core.Vec3 // Emissive triangles
	Direction    core.Vec3 // Toward the light, infinite lights
	Radiance     core.Vec3
	PDF          float64
	SelectionPDF float64
	kind         Kind
	delta        bool
	infinite     bool
}

// Load resolves a sample against the light set. Samples referencing lights that
// do not exist load as invalid.
func (l *Lights) Load(s LightSample) LoadedLightSample {
	kind := s.Kind()
	index := s.Index()
	sel := l.Probability(kind)
	if sel <= 0 {
		return LoadedLightSample{}
	}
	loaded := LoadedLightSample{Sample: s, kind: kind, SelectionPDF: sel}

	switch kind {
	case KindEmissive:
		if index >= len(l.emissive.triangles) {
			return LoadedLightSample{}
		}
		tri := l.emissive.triangles[index]
		loaded.Position = l.emissive.point(index, s.Position())
		loaded.Normal = tri.Triangle.Normal()
		loaded.Radiance = tri.Radiance
		loaded.PDF = l.emissive.areaPDF(index) * sel

	case KindAnalytic:
		if index >= len(l.analytic.lights) {
			return LoadedLightSample{}
		}
		light := l.analytic.lights[index]
		loaded.Radiance = light.Intensity
		loaded.PDF = l.analytic.table.PDF(index) * sel
		loaded.delta = true
		if light.Type == AnalyticDirectional {
			loaded.infinite = true
			loaded.Direction = light.Direction.Negate()
		} else {
			loaded.Position = light.Position
		}

	case KindEnvironment:
		if l.env == nil || index >= len(l.env.Pixels) {
			return LoadedLightSample{}
		}
		uv := l.env.texelUV(index, s.Position())
		loaded.infinite = true
		loaded.Direction = l.env.Direction(uv)
		loaded.Radiance = l.env.Pixels[index]
		loaded.PDF = l.env.directionPDF(index, uv) * sel

	default:
		return LoadedLightSample{}
	}
	return loaded
}

// IsValid reports whether the sample loaded successfully
func (ls LoadedLightSample) IsValid() bool {
	return ls.kind != KindInvalid
}

// Eval evaluates the loaded sample from a query position
func (ls LoadedLightSample) Eval(position core.Vec3) EvaluatedLightSample {
	if !ls.IsValid() {
		return EvaluatedLightSample{}
	}
	e := EvaluatedLightSample{
		Normal:       ls.Normal,
		PDF:          ls.PDF,
		SelectionPDF: ls.SelectionPDF,
		Delta:        ls.delta,
	}

	if ls.infinite {
		e.Direction = ls.Direction
		e.Distance = math.Inf(1)
		e.GeomFactor = 1
		e.Emission = ls.Radiance
		return e
	}

	toLight := ls.Position.Subtract(position)
	distSq := toLight.LengthSquared()
	if distSq <= 0 {
		return EvaluatedLightSample{}
	}
	dist := math.Sqrt(distSq)
	e.Position = ls.Position
	e.Direction = toLight.Multiply(1 / dist)
	e.Distance = dist

	if ls.kind == KindAnalytic {
		e.GeomFactor = 1 / distSq
		e.Emission = ls.Radiance
		return e
	}

	// Emissive triangles emit only from the front face
	cosLight := -e.Direction.Dot(ls.Normal)
	if cosLight <= 0 {
		return e
	}
	e.GeomFactor = cosLight / distSq
	e.Emission = ls.Radiance
	return e
}
