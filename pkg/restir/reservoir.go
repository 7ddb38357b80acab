package restir

import (
	"fmt"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/lights"
)

// PathSample identifies what a reservoir's selected sample represents
type PathSample uint8

const (
	// PathNone is an empty reservoir
	PathNone PathSample = iota
	// PathEmission is the surface's own emission seen directly (path length 1)
	PathEmission
	// PathLight is a light sample reached from the surface (path length 2)
	PathLight
)

// String returns the name of the path sample
func (p PathSample) String() string {
	switch p {
	case PathEmission:
		return "emission"
	case PathLight:
		return "light"
	default:
		return "none"
	}
}

// Reservoir is the persistent per-pixel resampling state carried between stages and frames
type Reservoir struct {
	LightSample lights.LightSample
	PathSample  PathSample
	M           float64 // Confidence weight
	Weight      float64 // Unbiased contribution weight
	TargetPdf   float64 // Target function value of the selected sample at its own pixel
}

// IsEmpty reports whether the reservoir holds no usable sample
func (r Reservoir) IsEmpty() bool {
	return r.PathSample == PathNone || r.Weight <= 0
}

// String formats the reservoir for debugging
func (r Reservoir) String() string {
	return fmt.Sprintf("Reservoir{%v kind=%v M=%.2f W=%.4g p=%.4g}",
		r.PathSample, r.LightSample.Kind(), r.M, r.Weight, r.TargetPdf)
}

// RisState accumulates candidates during one resampling pass
type RisState struct {
	LightSample     lights.LightSample
	PathSample      PathSample
	WeightSum       float64
	M               float64
	Weight          float64
	TargetPdf       float64
	CanonicalWeight float64
}

// StreamInitialMIS adds one candidate drawn from a source distribution with
// density sourcePdf, weighted by a multiple importance sampling weight. u is a
// uniform random number deciding replacement.
func (s *RisState) StreamInitialMIS(sample lights.LightSample, path PathSample, targetPdf, sourcePdf, misWeight, u float64) bool {
	sampleWeight := 0.0
	if sourcePdf > 0 {
		sampleWeight = misWeight * targetPdf / sourcePdf
	}
	s.M++
	return s.stream(sample, path, targetPdf, sampleWeight, u)
}

// StreamSample adds a candidate with full MIS weight
func (s *RisState) StreamSample(sample lights.LightSample, path PathSample, targetPdf, sourcePdf, u float64) bool {
	return s.StreamInitialMIS(sample, path, targetPdf, sourcePdf, 1, u)
}

// stream performs the weighted reservoir update with a precomputed resampling weight
func (s *RisState) stream(sample lights.LightSample, path PathSample, targetPdf, sampleWeight, u float64) bool {
	if !(sampleWeight > 0) || !core.IsFinite(sampleWeight) {
		return false
	}
	s.WeightSum += sampleWeight
	if u*s.WeightSum < sampleWeight {
		s.LightSample = sample
		s.PathSample = path
		s.TargetPdf = targetPdf
		return true
	}
	return false
}

// FinalizeResampling computes the unbiased contribution weight
// weightSum·numerator / (targetPdf·denominator)
func (s *RisState) FinalizeResampling(numerator, denominator float64) {
	d := s.TargetPdf * denominator
	if s.TargetPdf <= 0 || d == 0 {
		s.Weight = 0
		return
	}
	s.Weight = s.WeightSum * numerator / d
}

// ToReservoir converts the state, collapsing anything non-finite or negative
// to the empty reservoir
func (s *RisState) ToReservoir() Reservoir {
	for _, v := range [...]float64{s.WeightSum, s.Weight, s.TargetPdf, s.M} {
		if !core.IsFinite(v) || v < 0 {
			return Reservoir{}
		}
	}
	r := Reservoir{
		LightSample: s.LightSample,
		PathSample:  s.PathSample,
		M:           s.M,
		Weight:      s.Weight,
		TargetPdf:   s.TargetPdf,
	}
	if r.PathSample == PathNone {
		r.Weight = 0
		r.TargetPdf = 0
	}
	return r
}
