package restir

import (
	"math"
	"testing"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/lights"
	"github.com/google/go-cmp/cmp"
)

func TestLightTiles_Generate(t *testing.T) {
	env, err := lights.NewUniformEnvironment(core.NewVec3(0.2, 0.2, 0.2))
	if err != nil {
		t.Fatalf("NewUniformEnvironment failed: %v", err)
	}
	l, err := lights.New(env,
		[]lights.EmissiveTriangle{{Triangle: lightTriangle(), Radiance: core.NewVec3(5, 5, 5)}},
		[]lights.AnalyticLight{lights.NewPointLight(core.NewVec3(0, 2, 0), core.NewVec3(1, 1, 1))},
		lights.DefaultSelectionWeights())
	if err != nil {
		t.Fatalf("lights.New failed: %v", err)
	}

	tiles := newLightTiles(4, 64)
	tiles.setLights(l)
	tiles.generate(l, core.NewWorkerPool(2), 1234)

	for tile := 0; tile < tiles.count; tile++ {
		for slot := 0; slot < tiles.size; slot++ {
			loaded, pdf := tiles.at(tile, slot)
			kind, _, _ := tiles.kindForSlot(slot)
			if loaded.Sample.Kind() != kind {
				t.Fatalf("Slot %d kind incorrect: got %v, expected %v", slot, loaded.Sample.Kind(), kind)
			}
			if !(pdf > 0) || math.IsInf(pdf, 0) {
				t.Fatalf("Slot %d pdf invalid: %f", slot, pdf)
			}
		}
	}

	sum := 0.0
	for _, f := range tiles.fractions {
		sum += f
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("Kind fractions sum incorrect: got %f, expected 1", sum)
	}
}

func TestLightTiles_SmallerThanPopulationCount(t *testing.T) {
	env, err := lights.NewUniformEnvironment(core.NewVec3(0.2, 0.2, 0.2))
	if err != nil {
		t.Fatalf("NewUniformEnvironment failed: %v", err)
	}
	l, err := lights.New(env,
		[]lights.EmissiveTriangle{{Triangle: lightTriangle(), Radiance: core.NewVec3(5, 5, 5)}},
		[]lights.AnalyticLight{lights.NewPointLight(core.NewVec3(0, 2, 0), core.NewVec3(1, 1, 1))},
		lights.SelectionWeights{Environment: 0.2, Emissive: 0.5, Analytic: 0.3})
	if err != nil {
		t.Fatalf("lights.New failed: %v", err)
	}

	tiles := newLightTiles(2, 2)
	tiles.setLights(l)
	tiles.generate(l, core.NewWorkerPool(1), 5)

	generated := map[lights.Kind]bool{}
	for tile := 0; tile < tiles.count; tile++ {
		for slot := 0; slot < tiles.size; slot++ {
			loaded, _ := tiles.at(tile, slot)
			generated[loaded.Sample.Kind()] = true
		}
	}

	sum := 0.0
	for _, k := range []lights.Kind{lights.KindEnvironment, lights.KindEmissive, lights.KindAnalytic} {
		sum += tiles.fractions[k]
		if tiles.fractions[k] > 0 && !generated[k] {
			t.Errorf("Kind %v has fraction %f but no generated slots", k, tiles.fractions[k])
		}
		ev := lights.EvaluatedLightSample{PDF: 1, SelectionPDF: l.Probability(k)}
		if pdf := tiles.techniquePdf(ev, k); !generated[k] && pdf != 0 {
			t.Errorf("Technique pdf for ungenerated kind %v incorrect: got %f, expected 0", k, pdf)
		}
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("Kind fractions sum incorrect: got %f, expected 1", sum)
	}
	if generated[lights.KindEnvironment] {
		t.Error("Expected the least probable population to get no slots")
	}
}

func TestLightTiles_Deterministic(t *testing.T) {
	_, l := newTestScene(t, core.NewVec3(1, 1, 1), false)
	a := newLightTiles(2, 32)
	b := newLightTiles(2, 32)
	a.setLights(l)
	b.setLights(l)
	a.generate(l, core.NewWorkerPool(1), 99)
	b.generate(l, core.NewWorkerPool(4), 99)
	if diff := cmp.Diff(a.pdfs, b.pdfs); diff != "" {
		t.Errorf("Tile pdfs differ between runs (-a +b):\n%s", diff)
	}
	for i := range a.samples {
		if a.samples[i].Sample != b.samples[i].Sample {
			t.Fatalf("Slot %d differs: %x vs %x", i, uint64(a.samples[i].Sample), uint64(b.samples[i].Sample))
		}
	}
}

func TestNeighborOffsets(t *testing.T) {
	offsets := neighborOffsets()
	if len(offsets) != neighborOffsetCount {
		t.Fatalf("Offset count incorrect: got %d, expected %d", len(offsets), neighborOffsetCount)
	}
	distinct := map[[2]int8]bool{}
	for _, o := range offsets {
		x, y := float64(o[0]), float64(o[1])
		if x*x+y*y > 128*128 {
			t.Errorf("Offset %v outside the unit disk", o)
		}
		distinct[o] = true
	}
	if len(distinct) < neighborOffsetCount/2 {
		t.Errorf("Expected well spread offsets, got %d distinct", len(distinct))
	}
}
