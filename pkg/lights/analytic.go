package lights

import (
	"github.com/df07/go-restir/pkg/core"
	"github.com/pkg/errors"
)

// AnalyticType enumerates the delta light shapes
type AnalyticType int

const (
	AnalyticPoint AnalyticType = iota
	AnalyticDirectional
)

// AnalyticLight is a point or directional light. Point lights radiate
// Intensity equally in all directions; directional lights deliver Intensity
// as radiance along -Direction.
type AnalyticLight struct {
	Type      AnalyticType
	Position  core.Vec3
	Direction core.Vec3 // Direction the light travels (directional only)
	Intensity core.Vec3
}

// NewPointLight creates a point light
func NewPointLight(position, intensity core.Vec3) AnalyticLight {
	return AnalyticLight{Type: AnalyticPoint, Position: position, Intensity: intensity}
}

// NewDirectionalLight creates a directional light travelling along direction
func NewDirectionalLight(direction, intensity core.Vec3) AnalyticLight {
	return AnalyticLight{Type: AnalyticDirectional, Direction: direction.Normalize(), Intensity: intensity}
}

type analyticSet struct {
	lights []AnalyticLight
	table  *core.AliasTable
}

func newAnalyticSet(lights []AnalyticLight) (*analyticSet, error) {
	if len(lights) > MaxLightIndex {
		return nil, errors.Wrapf(ErrTooManyLights, "%d analytic lights", len(lights))
	}
	set := &analyticSet{lights: lights}
	if len(lights) == 0 {
		return set, nil
	}
	weights := make([]float64, len(lights))
	for i, l := range lights {
		weights[i] = max(l.Intensity.Luminance(), 0)
	}
	table, err := core.NewAliasTable(weights)
	if err != nil && !errors.Is(err, core.ErrEmptyDistribution) {
		return nil, errors.Wrap(err, "lights: analytic importance table")
	}
	set.table = table
	return set, nil
}

func (s *analyticSet) empty() bool {
	return s.table == nil
}

func (s *analyticSet) sample(u float64) LightSample {
	if s.table == nil {
		return InvalidSample
	}
	return NewLightSample(KindAnalytic, s.table.Sample(u), core.Vec2{})
}
