package restir

const maxSpatialNeighbors = 32

// acceptNeighbor applies the configured neighbor rejection tests
func (r *ReSTIR) acceptNeighbor(c, n *EvalContext) bool {
	if !n.Valid {
		return false
	}
	if r.opts.RejectNeighborForHitType && c.Material != n.Material {
		return false
	}
	if r.opts.RejectNeighborForNormalDepth && !similar(c, n, r.opts.NormalThreshold, r.opts.DepthThreshold) {
		return false
	}
	return true
}

// spatialResampling merges each pixel with screen space neighbors using
// defensive pairwise MIS. Every iteration reads the previous iteration's
// reservoirs and writes a separate buffer.
func (r *ReSTIR) spatialResampling(pass int, rayTraced bool) {
	o := &r.opts
	ev := r.evaluator()
	contexts := r.buf.currentContexts()
	set := &r.buf.passes[pass]

	for iter := 0; iter < o.SpatialIterations; iter++ {
		in, out := set.current, set.scratch
		r.forEachPixel(func(x, y, i int) {
			c := &contexts[i]
			canonical := in[i]
			if !c.Valid {
				out[i] = canonical
				return
			}
			rng := r.pixelSampler(x, y, pass, seedSpatial, uint64(iter))

			var neighbors [maxSpatialNeighbors]int
			n := 0
			mSum := canonical.M
			start := rng.Intn(len(r.offsets))
			for k := 0; k < o.SpatialNeighborCount; k++ {
				off := r.offsets[(start+k)%len(r.offsets)]
				nx := x + int(float64(off[0])/127*o.SpatialGatherRadius)
				ny := y + int(float64(off[1])/127*o.SpatialGatherRadius)
				if (nx == x && ny == y) || !r.buf.inBounds(nx, ny) {
					continue
				}
				j := r.buf.index(nx, ny)
				if !r.acceptNeighbor(c, &contexts[j]) {
					continue
				}
				neighbors[n] = j
				n++
				mSum += in[j].M
			}

			s := BeginPairwise(canonical, mSum, true)
			for _, j := range neighbors[:n] {
				neighbor := in[j]
				nc := &contexts[j]
				candidate := PairwiseCandidate{
					Reservoir:         neighbor,
					TargetAtCanonical: c.EvalTargetFunction(ev, neighbor.LightSample, neighbor.PathSample, rayTraced),
					CanonicalAtSelf:   nc.EvalTargetFunction(ev, canonical.LightSample, canonical.PathSample, rayTraced),
				}
				mFactor := 1.0
				if o.UseMFactor {
					mFactor = MFactor(candidate.TargetAtCanonical, neighbor.TargetPdf)
				}
				s.StreamPairwise(candidate, canonical, mSum, true, mFactor, rng.Get1D())
			}
			s.FinalizeWithCanonical(canonical, rng.Get1D())
			out[i] = s.ToReservoir()
		})
		set.swapSpatial()
	}
}
