package lights

import (
	"math"
	"testing"

	"github.com/df07/go-restir/pkg/core"
)

func TestLightSample_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		index    int
		position core.Vec2
	}{
		{"Environment", KindEnvironment, 12345, core.NewVec2(0.25, 0.75)},
		{"Emissive", KindEmissive, 0, core.NewVec2(0.999999, 0.000001)},
		{"Analytic", KindAnalytic, MaxLightIndex, core.NewVec2(0.5, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLightSample(tt.kind, tt.index, tt.position)
			if s.Kind() != tt.kind {
				t.Errorf("Kind incorrect: got %v, expected %v", s.Kind(), tt.kind)
			}
			if s.Index() != tt.index {
				t.Errorf("Index incorrect: got %d, expected %d", s.Index(), tt.index)
			}
			p := s.Position()
			const cell = 1.0 / positionScale
			if math.Abs(p.X-tt.position.X) > cell || math.Abs(p.Y-tt.position.Y) > cell {
				t.Errorf("Position incorrect: got %v, expected %v", p, tt.position)
			}
			if p.X <= 0 || p.X >= 1 || p.Y <= 0 || p.Y >= 1 {
				t.Errorf("Position %v not strictly inside the unit square", p)
			}
			if !s.IsValid() {
				t.Error("Expected valid sample")
			}
		})
	}
}

func TestLightSample_Invalid(t *testing.T) {
	if InvalidSample.IsValid() {
		t.Error("Expected zero sample to be invalid")
	}
	if NewLightSample(KindEmissive, MaxLightIndex+1, core.Vec2{}) != InvalidSample {
		t.Error("Expected index overflow to produce the invalid sample")
	}
	if NewLightSample(KindInvalid, 3, core.Vec2{}) != InvalidSample {
		t.Error("Expected invalid kind to produce the invalid sample")
	}
	if NewLightSample(KindAnalytic, -1, core.Vec2{}) != InvalidSample {
		t.Error("Expected negative index to produce the invalid sample")
	}
}

func TestLightSample_EqualityByBits(t *testing.T) {
	a := NewLightSample(KindEmissive, 7, core.NewVec2(0.1, 0.2))
	b := NewLightSample(KindEmissive, 7, core.NewVec2(0.1, 0.2))
	c := NewLightSample(KindEmissive, 8, core.NewVec2(0.1, 0.2))
	if a != b {
		t.Error("Expected identical samples to compare equal")
	}
	if a == c {
		t.Error("Expected different indices to compare unequal")
	}
}
