package restir

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type pairwiseWeightFunc func(mSum, mCand, pi, mCanon, pc float64) float64

var pairwiseWeights = map[string]pairwiseWeightFunc{
	"NonDefensiveNonCanonical": NonDefensiveNonCanonicalWeight,
	"NonDefensiveCanonical":    NonDefensiveCanonicalWeight,
	"DefensiveNonCanonical":    DefensiveNonCanonicalWeight,
	"DefensiveCanonical":       DefensiveCanonicalWeight,
}

func TestPairwiseWeights_Bounds(t *testing.T) {
	confidences := []float64{0, 0.5, 1, 4, 20, 640}
	pdfs := []float64{0, 1e-6, 0.1, 1, 10, 1e6}

	for name, fn := range pairwiseWeights {
		t.Run(name, func(t *testing.T) {
			for _, mCanon := range confidences {
				for _, mCand := range confidences {
					// Other candidates may add to the sum
					for _, extra := range []float64{0, 3} {
						mSum := mCanon + mCand + extra
						for _, pi := range pdfs {
							for _, pc := range pdfs {
								w := fn(mSum, mCand, pi, mCanon, pc)
								if w < 0 || w > 1 || math.IsNaN(w) {
									t.Fatalf("%s(%g, %g, %g, %g, %g) = %g, outside [0, 1]", name, mSum, mCand, pi, mCanon, pc, w)
								}
								if pc == 0 && w != 0 {
									t.Fatalf("%s(%g, %g, %g, %g, 0) = %g, expected 0", name, mSum, mCand, pi, mCanon, w)
								}
							}
						}
					}
				}
			}
		})
	}
}

func TestPairwiseWeights_PartitionOfUnity(t *testing.T) {
	// With a single candidate, the candidate and canonical weights of the same
	// sample must sum to one.
	tests := []struct {
		mCanon, mCand float64
		pAtCand       float64 // Sample's target at the candidate surface
		pAtCanon      float64 // Sample's target at the canonical surface
	}{
		{1, 1, 0.5, 0.5},
		{1, 20, 2, 0.1},
		{32, 640, 0.01, 3},
	}
	for _, tt := range tests {
		mSum := tt.mCanon + tt.mCand
		m0 := NonDefensiveNonCanonicalWeight(mSum, tt.mCand, tt.pAtCand, tt.mCanon, tt.pAtCanon)
		m1 := NonDefensiveCanonicalWeight(mSum, tt.mCand, tt.pAtCand, tt.mCanon, tt.pAtCanon)
		if math.Abs(m0+m1-1) > 1e-12 {
			t.Errorf("Non-defensive weights for %+v sum to %f, expected 1", tt, m0+m1)
		}

		// Defensive weights leave mCanon/mSum for the canonical technique
		d0 := DefensiveNonCanonicalWeight(mSum, tt.mCand, tt.pAtCand, tt.mCanon, tt.pAtCanon)
		d1 := DefensiveCanonicalWeight(mSum, tt.mCand, tt.pAtCand, tt.mCanon, tt.pAtCanon)
		if math.Abs(d0+d1+tt.mCanon/mSum-1) > 1e-12 {
			t.Errorf("Defensive weights for %+v sum to %f, expected 1", tt, d0+d1+tt.mCanon/mSum)
		}
	}
}

func TestMFactor(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"Both zero", 0, 0, 1},
		{"Equal", 2, 2, 1},
		{"Half", 1, 2, 1.0 / 256},
		{"Symmetric", 2, 1, 1.0 / 256},
		{"One zero", 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MFactor(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("MFactor(%f, %f) incorrect: got %f, expected %f", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestClampHistoryM(t *testing.T) {
	tests := []struct {
		prevM, currentM, maxHistory, expected float64
	}{
		{1000, 1, 20, 20},
		{5, 1, 20, 5},
		{1000, 33, 20, 660},
		{10, 1, 0, 0},
	}
	for _, tt := range tests {
		got := ClampHistoryM(tt.prevM, tt.currentM, tt.maxHistory)
		if got != tt.expected {
			t.Errorf("ClampHistoryM(%f, %f, %f) incorrect: got %f, expected %f", tt.prevM, tt.currentM, tt.maxHistory, got, tt.expected)
		}
	}
}

func TestPairwiseMerge_EmptyCandidateIsIdentity(t *testing.T) {
	canonical := Reservoir{
		LightSample: encodeX(0.3),
		PathSample:  PathLight,
		M:           33,
		Weight:      1.7,
		TargetPdf:   0.3,
	}
	empty := PairwiseCandidate{}

	for _, defensive := range []bool{false, true} {
		for _, u := range []float64{0, 0.5, 0.999} {
			mSum := canonical.M + empty.M
			s := BeginPairwise(canonical, mSum, defensive)
			s.StreamPairwise(empty, canonical, mSum, defensive, 1, u)
			s.FinalizeWithCanonical(canonical, u)
			got := s.ToReservoir()
			if diff := cmp.Diff(canonical, got, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
				t.Errorf("defensive=%v u=%f: merge with empty changed the reservoir (-want +got):\n%s", defensive, u, diff)
			}
		}
	}
}

func TestPairwiseMerge_ConfidenceAccumulates(t *testing.T) {
	canonical := Reservoir{LightSample: encodeX(0.3), PathSample: PathLight, M: 4, Weight: 1, TargetPdf: 0.5}
	candidate := PairwiseCandidate{
		Reservoir:         Reservoir{LightSample: encodeX(0.8), PathSample: PathLight, M: 20, Weight: 2, TargetPdf: 0.4},
		TargetAtCanonical: 0.6,
		CanonicalAtSelf:   0.2,
	}
	mSum := canonical.M + candidate.M

	s := BeginPairwise(canonical, mSum, false)
	s.StreamPairwise(candidate, canonical, mSum, false, 0.5, 0.5)
	s.FinalizeWithCanonical(canonical, 0.5)
	if s.M != 4+20*0.5 {
		t.Errorf("M incorrect: got %f, expected %f", s.M, 4+20*0.5)
	}
	if s.Weight <= 0 || !(s.TargetPdf == 0.6 || s.TargetPdf == 0.5) {
		t.Errorf("Unexpected merge result: %+v", s)
	}
}
