package restir

import (
	"time"

	"github.com/df07/go-restir/pkg/core"
)

// Random stream tags, one per stage, so stages never share random numbers
const (
	seedLightTiles uint64 = iota + 1
	seedInitial
	seedTemporal
	seedSpatial
	seedFinal
)

// stage is one data-parallel pass. Per-pass stages run once for every
// reservoir set; the others once per frame.
type stage struct {
	name    string
	perPass bool
	run     func(r *ReSTIR, pass int)
}

// buildPipeline assembles the stage list for a set of options. Visibility and
// bias correction choices are bound here so the per-pixel loops stay free of
// option checks that cannot change within a frame.
func buildPipeline(o Options) []stage {
	stages := []stage{{
		name: "lightTiles",
		run: func(r *ReSTIR, _ int) {
			r.tiles.generate(r.lights, r.pool, r.frameSeed)
		},
	}}

	initialVisibility := o.UseInitialVisibility && o.reuse()
	stages = append(stages, stage{
		name:    "initial",
		perPass: true,
		run: func(r *ReSTIR, pass int) {
			r.initialResampling(pass, initialVisibility)
		},
	})

	rayTraced := o.BiasCorrection == BiasCorrectionRayTraced
	if o.Mode.Temporal() {
		stages = append(stages, stage{
			name:    "temporal",
			perPass: true,
			run: func(r *ReSTIR, pass int) {
				r.temporalResampling(pass, rayTraced)
			},
		})
	}
	if o.Mode.Spatial() && o.SpatialIterations > 0 && o.SpatialNeighborCount > 0 {
		stages = append(stages, stage{
			name:    "spatial",
			perPass: true,
			run: func(r *ReSTIR, pass int) {
				r.spatialResampling(pass, rayTraced)
			},
		})
	}

	finalVisibility := o.UseFinalVisibility
	reuseVisibility := o.ReuseFinalVisibility && o.UseFinalVisibility
	stages = append(stages, stage{
		name:    "final",
		perPass: true,
		run: func(r *ReSTIR, pass int) {
			r.finalSampleEvaluation(pass, finalVisibility, reuseVisibility)
		},
	})
	return stages
}

// runPipeline executes every stage with a barrier in between and records timings
func (r *ReSTIR) runPipeline() {
	r.stats.Stages = r.stats.Stages[:0]
	for _, st := range r.stages {
		start := time.Now()
		if st.perPass {
			for pass := range r.buf.passes {
				st.run(r, pass)
			}
		} else {
			st.run(r, 0)
		}
		r.stats.Stages = append(r.stats.Stages, StageTiming{Name: st.name, Duration: time.Since(start)})
	}
}

// forEachPixel runs fn over the frame with rows as work units
func (r *ReSTIR) forEachPixel(fn func(x, y, i int)) {
	r.pool.ParallelFor(r.height, 1, func(begin, end int) {
		for y := begin; y < end; y++ {
			for x := 0; x < r.width; x++ {
				fn(x, y, y*r.width+x)
			}
		}
	})
}

// pixelSampler returns the deterministic random stream of one pixel in one stage
func (r *ReSTIR) pixelSampler(x, y, pass int, tag uint64, extra ...uint64) *core.RandomSampler {
	seeds := append([]uint64{core.PackPixel(x, y), r.frameSeed, uint64(pass), tag}, extra...)
	return core.NewSeededSampler(seeds...)
}

func (r *ReSTIR) evaluator() *Evaluator {
	return &Evaluator{Lights: r.lights, Scene: r.scene, RayEpsilon: r.opts.RayEpsilon}
}
