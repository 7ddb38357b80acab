package restir

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/lights"
)

// brdfMaxDistance is the length a BSDF ray with solid angle density pdf is
// allowed to travel when BRDF ray shortening is enabled
func brdfMaxDistance(cutoff, pdf float64) float64 {
	if cutoff <= 0 {
		return math.MaxFloat64
	}
	return math.Sqrt((1/cutoff - 1) * pdf)
}

// brdfLightPdf is the density, in the light's measure, of a BSDF sample
// reaching the evaluated light sample
func (r *ReSTIR) brdfLightPdf(c *EvalContext, e lights.EvaluatedLightSample) float64 {
	if e.Delta || r.opts.InitialBRDFSampleCount == 0 || r.scene == nil {
		return 0
	}
	pdf := c.bsdf.PDF(c.ViewDir, e.Direction)
	if pdf <= 0 {
		return 0
	}
	if !e.IsInfinite() && e.Distance > brdfMaxDistance(r.opts.BRDFCutoff, pdf) {
		return 0
	}
	return pdf * e.GeomFactor
}

// lightTileFor picks the light tile shared by a screen tile in this frame and pass
func (r *ReSTIR) lightTileFor(x, y, pass int) int {
	tx := uint32(x / r.opts.ScreenTileSize)
	ty := uint32(y / r.opts.ScreenTileSize)
	h := core.JenkinsHash(tx*73856093 ^ ty*19349663 ^ uint32(r.frameSeed) ^ uint32(pass)*83492791)
	return int(h % uint32(r.tiles.count))
}

// initialResampling draws light tile and BSDF candidates for every pixel and
// resamples them into the pass's current reservoirs
func (r *ReSTIR) initialResampling(pass int, withVisibility bool) {
	o := &r.opts
	ev := r.evaluator()
	contexts := r.buf.currentContexts()
	out := r.buf.passes[pass].current
	nL := float64(o.InitialLightSampleCount)
	nB := float64(o.InitialBRDFSampleCount)
	if r.scene == nil {
		nB = 0
	}
	stride := max(r.tiles.size/o.InitialLightSampleCount, 1)

	r.forEachPixel(func(x, y, i int) {
		c := &contexts[i]
		if !c.Valid {
			out[i] = Reservoir{PathSample: PathEmission, M: 1, Weight: 1, TargetPdf: c.Emission.Luminance()}
			return
		}
		rng := r.pixelSampler(x, y, pass, seedInitial)

		var s RisState
		tile := r.lightTileFor(x, y, pass)
		offset := rng.Intn(r.tiles.size)
		for k := 0; k < o.InitialLightSampleCount; k++ {
			loaded, pL := r.tiles.at(tile, (offset+k*stride)%r.tiles.size)
			p, e := c.EvalLoaded(ev, loaded, false)
			pB := 0.0
			if p > 0 {
				pB = r.brdfLightPdf(c, e)
			}
			s.StreamInitialMIS(loaded.Sample, PathLight, p, pL, ratio(pL, nL*pL+nB*pB), rng.Get1D())
		}

		for k := 0; k < int(nB); k++ {
			r.streamBRDFCandidate(&s, c, ev, rng, nL, nB)
		}

		if o.ResampleEmission && !c.Emission.IsZero() {
			s.StreamSample(lights.InvalidSample, PathEmission, c.Emission.Luminance(), 1, rng.Get1D())
		}

		s.FinalizeResampling(1, 1)
		res := s.ToReservoir()
		if withVisibility && res.PathSample == PathLight && !c.Visible(ev, r.lights.Eval(res.LightSample, c.Position)) {
			res = Reservoir{M: res.M}
		}
		out[i] = res
	})
}

// streamBRDFCandidate traces one BSDF sampled ray and streams the light it
// finds, if any. A ray that finds nothing still counts toward M.
func (r *ReSTIR) streamBRDFCandidate(s *RisState, c *EvalContext, ev *Evaluator, rng *core.RandomSampler, nL, nB float64) {
	wi, pdf, ok := c.bsdf.Sample(c.ViewDir, rng)
	u := rng.Get1D()
	if !ok || pdf <= 0 {
		s.M++
		return
	}

	sample := lights.InvalidSample
	hit, found := r.scene.TraceRay(core.NewRay(c.Position, wi), ev.RayEpsilon, math.MaxFloat64)
	if found {
		if index, emissive := r.scene.EmissiveLightIndex(hit); emissive {
			if r.opts.BRDFCutoff > 0 && hit.T >= brdfMaxDistance(r.opts.BRDFCutoff, pdf) {
				s.M++
				return
			}
			sample = r.lights.EmissiveSampleForHit(index, hit.Barycentrics)
		}
	} else {
		sample = r.lights.EnvSampleForDirection(wi)
	}
	if !sample.IsValid() {
		s.M++
		return
	}

	p, e := c.EvalLoaded(ev, r.lights.Load(sample), false)
	pB := 0.0
	if p > 0 {
		pB = r.brdfLightPdf(c, e)
	}
	pL := r.tiles.techniquePdf(e, sample.Kind())
	s.StreamInitialMIS(sample, PathLight, p, pB, ratio(pB, nL*pL+nB*pB), u)
}
