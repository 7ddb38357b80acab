package lights

import (
	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/geometry"
	"github.com/pkg/errors"
)

// EmissiveTriangle is one light-emitting scene triangle. Emission is one-sided,
// along the triangle's geometric normal.
type EmissiveTriangle struct {
	Triangle      *geometry.Triangle
	Radiance      core.Vec3
	TriangleIndex int // Index of the triangle in the scene geometry
}

type emissiveSet struct {
	triangles []EmissiveTriangle
	table     *core.AliasTable
}

// newEmissiveSet weights triangles by radiance luminance times area
func newEmissiveSet(triangles []EmissiveTriangle) (*emissiveSet, error) {
	if len(triangles) > MaxLightIndex {
		return nil, errors.Wrapf(ErrTooManyLights, "%d emissive triangles", len(triangles))
	}
	set := &emissiveSet{triangles: triangles}
	if len(triangles) == 0 {
		return set, nil
	}
	weights := make([]float64, len(triangles))
	for i, tri := range triangles {
		weights[i] = max(tri.Radiance.Luminance(), 0) * tri.Triangle.Area()
	}
	table, err := core.NewAliasTable(weights)
	if err != nil && !errors.Is(err, core.ErrEmptyDistribution) {
		return nil, errors.Wrap(err, "lights: emissive importance table")
	}
	set.table = table
	return set, nil
}

func (s *emissiveSet) empty() bool {
	return s.table == nil
}

func (s *emissiveSet) sample(u float64, pos core.Vec2) LightSample {
	if s.table == nil {
		return InvalidSample
	}
	return NewLightSample(KindEmissive, s.table.Sample(u), pos)
}

// point returns the surface point encoded by the sample's position
func (s *emissiveSet) point(index int, pos core.Vec2) core.Vec3 {
	b1, b2 := core.SampleUniformTriangle(pos)
	return s.triangles[index].Triangle.PointAt(b1, b2)
}

// areaPDF is the area density of the sample within the emissive population
func (s *emissiveSet) areaPDF(index int) float64 {
	area := s.triangles[index].Triangle.Area()
	if s.table == nil || area <= 0 {
		return 0
	}
	return s.table.PDF(index) / area
}
