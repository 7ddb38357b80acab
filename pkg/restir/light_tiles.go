package restir

import (
	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/lights"
)

// lightTiles holds LightTileCount presampled tiles of LightTileSize loaded
// light samples, regenerated every frame. Within a tile each light kind owns a
// contiguous slot range sized by Lights.SampleCounts.
type lightTiles struct {
	count, size int
	counts      lights.Counts
	fractions   [4]float64 // Share of a tile's slots owned by each kind
	samples     []lights.LoadedLightSample
	pdfs        []float64 // Density of drawing the slot's sample by picking a uniform slot
}

func newLightTiles(count, size int) *lightTiles {
	return &lightTiles{
		count:   count,
		size:    size,
		samples: make([]lights.LoadedLightSample, count*size),
		pdfs:    make([]float64, count*size),
	}
}

// setLights recomputes the per-kind slot layout
func (t *lightTiles) setLights(l *lights.Lights) {
	t.counts = l.SampleCounts(t.size)
	t.fractions = [4]float64{}
	for k := range t.counts {
		t.fractions[k] = float64(t.counts[k]) / float64(t.size)
	}
}

// kindForSlot returns the light kind owning a slot and the slot's index and
// count within that kind's range
func (t *lightTiles) kindForSlot(slot int) (lights.Kind, int, int) {
	for _, k := range []lights.Kind{lights.KindEnvironment, lights.KindEmissive, lights.KindAnalytic} {
		n := t.counts[k]
		if slot < n {
			return k, slot, n
		}
		slot -= n
	}
	return lights.KindInvalid, 0, 0
}

// techniquePdf is the density, in the light's measure, of a uniformly chosen
// tile slot producing the evaluated sample
func (t *lightTiles) techniquePdf(e lights.EvaluatedLightSample, kind lights.Kind) float64 {
	if e.SelectionPDF <= 0 {
		return 0
	}
	return e.PDF / e.SelectionPDF * t.fractions[kind]
}

// generate fills every slot. The alias table draw is stratified within the
// kind's slot range.
func (t *lightTiles) generate(l *lights.Lights, pool *core.WorkerPool, frameSeed uint64) {
	pool.ParallelFor(t.count, 1, func(begin, end int) {
		for tile := begin; tile < end; tile++ {
			for slot := 0; slot < t.size; slot++ {
				i := tile*t.size + slot
				rng := core.NewSeededSampler(uint64(tile), uint64(slot), frameSeed, seedLightTiles)
				kind, local, n := t.kindForSlot(slot)
				u := (float64(local) + rng.Get1D()) / float64(n)

				var s lights.LightSample
				switch kind {
				case lights.KindEnvironment:
					s = l.SampleEnv(u, rng.Get2D())
				case lights.KindEmissive:
					s = l.SampleEmissive(u, rng.Get2D())
				case lights.KindAnalytic:
					s = l.SampleAnalytic(u)
				}

				loaded := l.Load(s)
				t.samples[i] = loaded
				t.pdfs[i] = 0
				if loaded.IsValid() && loaded.SelectionPDF > 0 {
					t.pdfs[i] = loaded.PDF / loaded.SelectionPDF * t.fractions[kind]
				}
			}
		}
	})
}

func (t *lightTiles) at(tile, slot int) (lights.LoadedLightSample, float64) {
	i := tile*t.size + slot
	return t.samples[i], t.pdfs[i]
}
