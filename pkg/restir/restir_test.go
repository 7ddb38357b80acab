package restir

import (
	"math"
	"testing"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/lights"
	"github.com/df07/go-restir/pkg/log"
	"github.com/df07/go-restir/pkg/material"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// referenceDirect integrates the light triangle's direct illumination on a
// diffuse floor point by midpoint quadrature over the triangle's area
func referenceDirect(p core.Vec3, albedo, radiance core.Vec3) core.Vec3 {
	tri := lightTriangle()
	const n = 400
	normal := core.NewVec3(0, 1, 0)
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u := core.NewVec2((float64(i)+0.5)/n, (float64(j)+0.5)/n)
			b1, b2 := core.SampleUniformTriangle(u)
			q := tri.PointAt(b1, b2)
			d := q.Subtract(p)
			dist2 := d.LengthSquared()
			wi := d.Multiply(1 / math.Sqrt(dist2))
			cosS := wi.Dot(normal)
			cosL := -wi.Dot(tri.Normal())
			if cosS > 0 && cosL > 0 {
				sum += cosS * cosL / dist2
			}
		}
	}
	geometric := sum * tri.Area() / (n * n)
	return albedo.MultiplyVec(radiance).Multiply(geometric / math.Pi)
}

// shade evaluates the pixel's outgoing radiance from the final samples of every pass
func shade(r *ReSTIR, g *GBuffer, x, y int) core.Vec3 {
	s := *g.At(x, y)
	bsdf := material.New(material.Surface{
		Kind:           s.Material,
		DiffuseAlbedo:  s.DiffuseAlbedo,
		SpecularAlbedo: s.SpecularAlbedo,
		Roughness:      s.Roughness,
	}, material.Frame{Normal: s.Normal, Tangent: s.Tangent})

	result := core.Vec3{}
	for pass := 0; pass < r.NumPasses(); pass++ {
		fs := r.FinalSample(x, y, pass)
		if fs.PathSample != PathLight {
			continue
		}
		result = result.Add(bsdf.Eval(s.ViewDir, fs.Direction).MultiplyVec(fs.Li).Multiply(fs.MISWeight))
	}
	return result
}

func TestReSTIR_ConvergesToDirectLighting(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		bias       BiasCorrection
		brdfCount  int
		brdfCutoff float64
	}{
		{"Light samples only", ModeNoResampling, BiasCorrectionBasic, 0, 0},
		{"Light and BSDF samples", ModeNoResampling, BiasCorrectionBasic, 2, 0},
		{"BSDF samples with cutoff", ModeNoResampling, BiasCorrectionBasic, 2, 0.1},
		{"Spatial basic", ModeSpatial, BiasCorrectionBasic, 0, 0},
		{"Spatial ray traced", ModeSpatial, BiasCorrectionRayTraced, 0, 0},
		{"Temporal basic", ModeTemporal, BiasCorrectionBasic, 0, 0},
		{"Temporal ray traced", ModeTemporal, BiasCorrectionRayTraced, 0, 0},
		{"Spatiotemporal basic", ModeSpatiotemporal, BiasCorrectionBasic, 0, 0},
		{"Spatiotemporal ray traced", ModeSpatiotemporal, BiasCorrectionRayTraced, 0, 0},
	}

	const width, height = 4, 4
	const frames = 256
	albedo := core.NewVec3(0.6, 0.6, 0.6)
	radiance := core.NewVec3(4, 4, 4)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, l := newTestScene(t, radiance, false)
			g := floorGBuffer(width, height, 0.4, albedo)

			opts := testOptions(tt.mode)
			opts.BiasCorrection = tt.bias
			opts.InitialLightSampleCount = 32
			opts.InitialBRDFSampleCount = tt.brdfCount
			opts.BRDFCutoff = tt.brdfCutoff
			opts.ResampleEmission = false
			r, err := New(width, height, scene, l, opts, log.Discard())
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			accum := make([]float64, width*height)
			for f := 0; f < frames; f++ {
				if err := r.RenderFrame(g); err != nil {
					t.Fatalf("RenderFrame failed: %v", err)
				}
				for y := 0; y < height; y++ {
					for x := 0; x < width; x++ {
						accum[y*width+x] += shade(r, g, x, y).X
					}
				}
			}

			estimate, reference := 0.0, 0.0
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					estimate += accum[y*width+x] / frames
					reference += referenceDirect(g.At(x, y).Position, albedo, radiance).X
				}
			}
			relErr := math.Abs(estimate-reference) / reference
			if relErr > 0.02 {
				t.Errorf("Mean radiance incorrect: got %f, expected %f (relative error %.4f)", estimate/(width*height), reference/(width*height), relErr)
			}
		})
	}
}

func TestReSTIR_FullyOccludedPixel(t *testing.T) {
	for _, mode := range []Mode{ModeNoResampling, ModeSpatiotemporal} {
		t.Run(mode.String(), func(t *testing.T) {
			scene, l := newTestScene(t, core.NewVec3(10, 10, 10), true)
			g := floorGBuffer(8, 8, 0.4, core.NewVec3(0.5, 0.5, 0.5))
			r, err := New(8, 8, scene, l, testOptions(mode), log.Discard())
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			for f := 0; f < 4; f++ {
				if err := r.RenderFrame(g); err != nil {
					t.Fatalf("RenderFrame failed: %v", err)
				}
				for y := 0; y < 8; y++ {
					for x := 0; x < 8; x++ {
						if li := r.FinalSample(x, y, 0).Li; !li.IsZero() {
							t.Fatalf("Frame %d pixel (%d, %d) Li incorrect: got %v, expected 0", f, x, y, li)
						}
						if m := r.Reservoir(x, y, 0).M; m <= 0 {
							t.Fatalf("Frame %d pixel (%d, %d) M incorrect: got %f, expected > 0", f, x, y, m)
						}
					}
				}
			}
		})
	}
}

func TestReSTIR_Deterministic(t *testing.T) {
	run := func(workers int) ([]Reservoir, []FinalSample) {
		scene, l := newTestScene(t, core.NewVec3(4, 4, 4), false)
		g := floorGBuffer(16, 8, 0.8, core.NewVec3(0.5, 0.5, 0.5))
		opts := testOptions(ModeSpatiotemporal)
		opts.NumWorkers = workers
		opts.NumPasses = 2
		r, err := New(16, 8, scene, l, opts, log.Discard())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		for f := 0; f < 3; f++ {
			if err := r.RenderFrame(g); err != nil {
				t.Fatalf("RenderFrame failed: %v", err)
			}
		}
		var reservoirs []Reservoir
		var finals []FinalSample
		for pass := 0; pass < 2; pass++ {
			for y := 0; y < 8; y++ {
				for x := 0; x < 16; x++ {
					reservoirs = append(reservoirs, r.Reservoir(x, y, pass))
					finals = append(finals, r.FinalSample(x, y, pass))
				}
			}
		}
		return reservoirs, finals
	}

	resA, finA := run(1)
	resB, finB := run(4)
	if diff := cmp.Diff(resA, resB); diff != "" {
		t.Errorf("Reservoirs differ between runs (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(finA, finB); diff != "" {
		t.Errorf("Final samples differ between runs (-a +b):\n%s", diff)
	}
}

func TestReSTIR_TemporalHistoryIsClamped(t *testing.T) {
	scene, l := newTestScene(t, core.NewVec3(4, 4, 4), false)
	g := floorGBuffer(4, 4, 0.4, core.NewVec3(0.5, 0.5, 0.5))
	opts := testOptions(ModeTemporal)
	opts.InitialBRDFSampleCount = 0
	opts.ResampleEmission = false
	opts.MaxHistoryLength = 20
	r, err := New(4, 4, scene, l, opts, log.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	canonicalM := float64(opts.InitialLightSampleCount)
	for f := 0; f < 60; f++ {
		if err := r.RenderFrame(g); err != nil {
			t.Fatalf("RenderFrame failed: %v", err)
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				if m := r.Reservoir(x, y, 0).M; m > canonicalM*21 {
					t.Fatalf("Frame %d M incorrect: got %f, expected at most %f", f, m, canonicalM*21)
				}
			}
		}
	}
	if m := r.Reservoir(1, 1, 0).M; m < canonicalM*2 {
		t.Errorf("Expected temporal reuse to grow M, got %f", m)
	}
	if !r.Stats().HistoryUsed {
		t.Error("Expected the last frame to use history")
	}
}

func TestReSTIR_AccessorsBetweenBeginAndUpdate(t *testing.T) {
	const size = 6
	scene, l := newTestScene(t, core.NewVec3(4, 4, 4), false)
	g := floorGBuffer(size, size, 0.4, core.NewVec3(0.5, 0.5, 0.5))
	r, err := New(size, size, scene, l, testOptions(ModeSpatiotemporal), log.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	snapshot := func() []Reservoir {
		out := make([]Reservoir, 0, size*size)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				out = append(out, r.Reservoir(x, y, 0))
			}
		}
		return out
	}

	for f := 0; f < 2; f++ {
		if err := r.RenderFrame(g); err != nil {
			t.Fatalf("RenderFrame failed: %v", err)
		}
	}
	afterFrame := snapshot()

	if err := r.BeginFrame(g); err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	if diff := cmp.Diff(afterFrame, snapshot()); diff != "" {
		t.Errorf("Reservoirs after BeginFrame differ from the last finished frame (-want +got):\n%s", diff)
	}

	if err := r.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	updated := snapshot()
	if err := r.EndFrame(); err != nil {
		t.Fatalf("EndFrame failed: %v", err)
	}
	if diff := cmp.Diff(updated, snapshot()); diff != "" {
		t.Errorf("Reservoirs after EndFrame differ from Update (-want +got):\n%s", diff)
	}
	// Temporal reuse grows confidence, so the updated frame differs from the old one
	if updated[0].M <= afterFrame[0].M {
		t.Errorf("Updated M incorrect: got %f, expected more than %f", updated[0].M, afterFrame[0].M)
	}
}

func TestReSTIR_HistoryReset(t *testing.T) {
	scene, l := newTestScene(t, core.NewVec3(4, 4, 4), false)
	g := floorGBuffer(4, 4, 0.4, core.NewVec3(0.5, 0.5, 0.5))
	opts := testOptions(ModeTemporal)
	r, err := New(4, 4, scene, l, opts, log.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := r.RenderFrame(g); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if r.Stats().HistoryUsed {
		t.Error("Expected the first frame to run without history")
	}
	if err := r.RenderFrame(g); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if !r.Stats().HistoryUsed {
		t.Error("Expected the second frame to use history")
	}

	if err := r.SetLights(l); err != nil {
		t.Fatalf("SetLights failed: %v", err)
	}
	if err := r.RenderFrame(g); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if r.Stats().HistoryUsed {
		t.Error("Expected SetLights to drop history")
	}

	r.SetOptions(opts)
	if err := r.RenderFrame(g); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if r.Stats().HistoryUsed {
		t.Error("Expected SetOptions to drop history")
	}
}

func TestReSTIR_InvalidPixels(t *testing.T) {
	scene, l := newTestScene(t, core.NewVec3(4, 4, 4), false)
	g := floorGBuffer(4, 4, 0.4, core.NewVec3(0.5, 0.5, 0.5))
	background := core.NewVec3(0.1, 0.2, 0.3)
	*g.At(2, 1) = SurfaceData{Emission: background}

	r, err := New(4, 4, scene, l, testOptions(ModeSpatiotemporal), log.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for f := 0; f < 2; f++ {
		if err := r.RenderFrame(g); err != nil {
			t.Fatalf("RenderFrame failed: %v", err)
		}
	}

	fs := r.FinalSample(2, 1, 0)
	if fs.PathSample != PathEmission {
		t.Errorf("PathSample incorrect: got %v, expected %v", fs.PathSample, PathEmission)
	}
	if diff := cmp.Diff(background, fs.Li); diff != "" {
		t.Errorf("Li mismatch (-want +got):\n%s", diff)
	}
	if hit := r.PrimaryHit(2, 1, 0); hit.T != 0 || !hit.Point.IsZero() {
		t.Errorf("Expected zero hit record, got %+v", hit)
	}
	if hit := r.PrimaryHit(1, 1, 0); hit.T == 0 {
		t.Error("Expected a primary hit for a valid pixel")
	}
}

func TestReSTIR_Errors(t *testing.T) {
	scene, l := newTestScene(t, core.NewVec3(1, 1, 1), false)

	if _, err := New(0, 4, scene, l, DefaultOptions(), nil); !errors.Is(err, ErrInvalidResolution) {
		t.Errorf("Expected ErrInvalidResolution, got %v", err)
	}
	if _, err := New(4, 4, scene, nil, DefaultOptions(), nil); !errors.Is(err, ErrNoLights) {
		t.Errorf("Expected ErrNoLights, got %v", err)
	}

	r, err := New(4, 4, scene, l, testOptions(ModeSpatial), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := r.Update(); !errors.Is(err, ErrFrameNotStarted) {
		t.Errorf("Expected ErrFrameNotStarted, got %v", err)
	}
	if err := r.BeginFrame(NewGBuffer(3, 4)); !errors.Is(err, ErrGBufferMismatch) {
		t.Errorf("Expected ErrGBufferMismatch, got %v", err)
	}
	if err := r.Resize(8, 2); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if err := r.RenderFrame(floorGBuffer(8, 2, 0.4, core.NewVec3(0.5, 0.5, 0.5))); err != nil {
		t.Errorf("RenderFrame after resize failed: %v", err)
	}
}

func TestBRDFCutoff_LightTechniqueInteraction(t *testing.T) {
	scene, l := newTestScene(t, core.NewVec3(4, 4, 4), false)
	g := floorGBuffer(1, 1, 0, core.NewVec3(0.5, 0.5, 0.5))
	opts := testOptions(ModeNoResampling)
	opts.InitialBRDFSampleCount = 1

	tests := []struct {
		name     string
		cutoff   float64
		distance float64
		expectPB bool
	}{
		{"Disabled cutoff keeps distant lights", 0, 1000, true},
		{"Near light within cutoff", 0.1, 0.5, true},
		{"Far light beyond cutoff", 0.1, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts.BRDFCutoff = tt.cutoff
			r, err := New(1, 1, scene, l, opts, log.Discard())
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			c := NewEvalContext(*g.At(0, 0))
			e := l.Eval(l.SampleEmissive(0.5, core.NewVec2(0.5, 0.5)), c.Position)
			e.Distance = tt.distance
			pB := r.brdfLightPdf(&c, e)
			if (pB > 0) != tt.expectPB {
				t.Errorf("BSDF pdf incorrect: got %f, expected positive=%v", pB, tt.expectPB)
			}
		})
	}

	// cos/π at normal incidence is the largest diffuse density
	maxDist := brdfMaxDistance(0.1, 1/math.Pi)
	if math.Abs(maxDist-math.Sqrt(9/math.Pi)) > 1e-12 {
		t.Errorf("brdfMaxDistance incorrect: got %f, expected %f", maxDist, math.Sqrt(9/math.Pi))
	}
	if brdfMaxDistance(0, 1) != math.MaxFloat64 {
		t.Error("Expected unbounded distance with cutoff disabled")
	}
}

func TestReSTIR_DebugImage(t *testing.T) {
	scene, l := newTestScene(t, core.NewVec3(4, 4, 4), false)
	g := floorGBuffer(6, 4, 0.4, core.NewVec3(0.5, 0.5, 0.5))
	opts := testOptions(ModeSpatial)
	r, err := New(6, 4, scene, l, opts, log.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := r.RenderFrame(g); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if img := r.DebugImage(); img != nil {
		t.Error("Expected no debug image with debug output disabled")
	}

	for _, mode := range []DebugOutput{DebugWeight, DebugM, DebugTargetPdf, DebugLightKind, DebugRadiance} {
		opts.DebugOutput = mode
		r.SetOptions(opts)
		if err := r.RenderFrame(g); err != nil {
			t.Fatalf("RenderFrame failed: %v", err)
		}
		img := r.DebugImage()
		if img == nil {
			t.Fatalf("Debug image for %v is nil", mode)
		}
		if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
			t.Errorf("Debug image size incorrect: got %dx%d, expected 6x4", b.Dx(), b.Dy())
		}
		if mode == DebugLightKind {
			if got := img.RGBAAt(2, 2); got != lightKindColors[lights.KindEmissive] {
				t.Errorf("Light kind color incorrect: got %v, expected %v", got, lightKindColors[lights.KindEmissive])
			}
		}
	}
}
