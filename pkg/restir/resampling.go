package restir

import (
	"math"
)

// Pairwise MIS weights. mSum is the confidence total over the canonical
// reservoir and every candidate, mCand and mCanon are the two reservoirs' own
// confidence, p_i is the evaluated sample's target value at the candidate
// surface and p_c at the canonical surface.

// NonDefensiveNonCanonicalWeight is the candidate-slot weight used by temporal reuse
func NonDefensiveNonCanonicalWeight(mSum, mCand, pi, mCanon, pc float64) float64 {
	if pc <= 0 {
		return 0
	}
	return ratio(mCand*pi, (mSum-mCanon)*pi+mCanon*pc)
}

// NonDefensiveCanonicalWeight is the canonical-slot weight used by temporal reuse
func NonDefensiveCanonicalWeight(mSum, mCand, pi, mCanon, pc float64) float64 {
	if pc <= 0 {
		return 0
	}
	return ratio(mCand, mSum-mCanon) * ratio(mCanon*pc, (mSum-mCanon)*pi+mCanon*pc)
}

// DefensiveNonCanonicalWeight is the candidate-slot weight used by spatial reuse
func DefensiveNonCanonicalWeight(mSum, mCand, pi, mCanon, pc float64) float64 {
	if pc <= 0 {
		return 0
	}
	return ratio(mCand, mSum) * ratio((mSum-mCanon)*pi, (mSum-mCanon)*pi+mCanon*pc)
}

// DefensiveCanonicalWeight is the canonical-slot weight used by spatial reuse
func DefensiveCanonicalWeight(mSum, mCand, pi, mCanon, pc float64) float64 {
	if pc <= 0 {
		return 0
	}
	return ratio(mCand, mSum) * ratio(mCanon*pc, (mSum-mCanon)*pi+mCanon*pc)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// MFactor down-weights a candidate's confidence when its target value changed
// sharply between two surfaces. It is 1 when both values are 0.
func MFactor(a, b float64) float64 {
	lo, hi := math.Min(a, b), math.Max(a, b)
	if hi <= 0 {
		return 1
	}
	return math.Min(math.Max(math.Pow(lo/hi, 8), 0), 1)
}

// ClampHistoryM bounds reused history confidence to currentM·maxHistoryLength
func ClampHistoryM(prevM, currentM, maxHistoryLength float64) float64 {
	return math.Min(prevM, currentM*maxHistoryLength)
}

// PairwiseCandidate is one reservoir merged against the canonical reservoir,
// with the cross evaluations the weights need
type PairwiseCandidate struct {
	Reservoir
	TargetAtCanonical float64 // Candidate's sample at the canonical surface
	CanonicalAtSelf   float64 // Canonical sample at the candidate's surface
}

// BeginPairwise starts a pairwise merge around a canonical reservoir whose
// confidence together with every candidate's is mSum
func BeginPairwise(canonical Reservoir, mSum float64, defensive bool) RisState {
	var s RisState
	switch {
	case defensive:
		s.CanonicalWeight = ratio(canonical.M, mSum)
	case mSum <= canonical.M:
		s.CanonicalWeight = 1
	}
	if mSum <= 0 {
		s.CanonicalWeight = 1
	}
	return s
}

// StreamPairwise merges one candidate. mFactor scales the candidate's
// confidence; pass 1 to disable.
func (s *RisState) StreamPairwise(c PairwiseCandidate, canonical Reservoir, mSum float64, defensive bool, mFactor, u float64) bool {
	var m0, m1 float64
	if defensive {
		m0 = DefensiveNonCanonicalWeight(mSum, c.M, c.TargetPdf, canonical.M, c.TargetAtCanonical)
		m1 = DefensiveCanonicalWeight(mSum, c.M, c.CanonicalAtSelf, canonical.M, canonical.TargetPdf)
	} else {
		m0 = NonDefensiveNonCanonicalWeight(mSum, c.M, c.TargetPdf, canonical.M, c.TargetAtCanonical)
		m1 = NonDefensiveCanonicalWeight(mSum, c.M, c.CanonicalAtSelf, canonical.M, canonical.TargetPdf)
	}
	s.CanonicalWeight += m1
	s.M += c.M * mFactor

	if c.PathSample == PathNone {
		return false
	}
	return s.stream(c.LightSample, c.PathSample, c.TargetAtCanonical, c.TargetAtCanonical*c.Weight*m0, u)
}

// FinalizeWithCanonical folds the canonical reservoir's own sample in and
// computes the combined unbiased contribution weight
func (s *RisState) FinalizeWithCanonical(canonical Reservoir, u float64) {
	if canonical.PathSample != PathNone {
		w := s.CanonicalWeight * canonical.TargetPdf * canonical.Weight
		s.stream(canonical.LightSample, canonical.PathSample, canonical.TargetPdf, w, u)
	}
	s.M += canonical.M
	if s.TargetPdf <= 0 {
		s.Weight = 0
		return
	}
	s.Weight = s.WeightSum / s.TargetPdf
}
