package lights

import (
	"github.com/df07/go-restir/pkg/core"
)

// LightSample references a point on one light in a single 64-bit word:
//
//	bits 62-63  kind
//	bits 32-61  light index
//	bits 16-31  position u (16-bit fixed point)
//	bits  0-15  position v (16-bit fixed point)
//
// The zero value is the invalid sample.
type LightSample uint64

const (
	kindShift     = 62
	indexShift    = 32
	indexBits     = 30
	positionBits  = 16
	positionScale = 1 << positionBits

	// MaxLightIndex is the largest index a sample can address
	MaxLightIndex = 1<<indexBits - 1
)

// InvalidSample is the empty light sample
const InvalidSample LightSample = 0

// NewLightSample encodes a sample. The index must be at most MaxLightIndex;
// positions are clamped to [0, 1).
func NewLightSample(kind Kind, index int, position core.Vec2) LightSample {
	if kind == KindInvalid || index < 0 || index > MaxLightIndex {
		return InvalidSample
	}
	return LightSample(uint64(kind)<<kindShift |
		uint64(index)<<indexShift |
		quantize(position.X)<<positionBits |
		quantize(position.Y))
}

// Kind returns the light population of the sample
func (s LightSample) Kind() Kind {
	return Kind(s >> kindShift)
}

// Index returns the light index within its population
func (s LightSample) Index() int {
	return int((uint64(s) >> indexShift) & MaxLightIndex)
}

// Position returns the decoded position payload at the center of its
// quantization cell, always strictly inside (0, 1).
func (s LightSample) Position() core.Vec2 {
	u := (uint64(s) >> positionBits) & (positionScale - 1)
	v := uint64(s) & (positionScale - 1)
	return core.NewVec2(dequantize(u), dequantize(v))
}

// IsValid reports whether the sample references a light
func (s LightSample) IsValid() bool {
	return s.Kind() != KindInvalid
}

func quantize(x float64) uint64 {
	q := int64(x * positionScale)
	return uint64(min(max(q, 0), positionScale-1))
}

func dequantize(q uint64) float64 {
	return (float64(q) + 0.5) / positionScale
}
