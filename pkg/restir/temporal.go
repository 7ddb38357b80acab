package restir

import (
	"math"
)

// temporalResampling merges each pixel's reservoir with the reprojected
// reservoir of the previous frame using non-defensive pairwise MIS
func (r *ReSTIR) temporalResampling(pass int, rayTraced bool) {
	if !r.historyValid {
		return
	}
	o := &r.opts
	ev := r.evaluator()
	current := r.buf.currentContexts()
	previous := r.buf.previousContexts()
	set := &r.buf.passes[pass]
	motion := r.gbuf.MotionVectors
	maxHistory := float64(o.MaxHistoryLength)

	r.forEachPixel(func(x, y, i int) {
		c := &current[i]
		if !c.Valid {
			return
		}
		rng := r.pixelSampler(x, y, pass, seedTemporal)
		jx, jy := rng.Get1D()-0.5, rng.Get1D()-0.5
		px := int(math.Floor(float64(x) + 0.5 + motion[i].X + jx))
		py := int(math.Floor(float64(y) + 0.5 + motion[i].Y + jy))
		if !r.buf.inBounds(px, py) {
			return
		}
		j := r.buf.index(px, py)
		pc := &previous[j]
		if !pc.Valid || !similar(c, pc, o.NormalThreshold, o.DepthThreshold) {
			return
		}
		if o.RejectNeighborForHitType && pc.Material != c.Material {
			return
		}

		canonical := set.current[i]
		history := set.previous[j]
		history.M = ClampHistoryM(history.M, canonical.M, maxHistory)
		mSum := canonical.M + history.M

		candidate := PairwiseCandidate{
			Reservoir:         history,
			TargetAtCanonical: c.EvalTargetFunction(ev, history.LightSample, history.PathSample, rayTraced),
			CanonicalAtSelf:   pc.EvalTargetFunction(ev, canonical.LightSample, canonical.PathSample, rayTraced),
		}
		mFactor := 1.0
		if o.UseMFactor {
			mFactor = MFactor(candidate.TargetAtCanonical, history.TargetPdf)
		}

		s := BeginPairwise(canonical, mSum, false)
		s.StreamPairwise(candidate, canonical, mSum, false, mFactor, rng.Get1D())
		s.FinalizeWithCanonical(canonical, rng.Get1D())
		set.current[i] = s.ToReservoir()
	})
}
