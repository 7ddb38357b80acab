package lights

import (
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-restir/pkg/core"
	"github.com/pkg/errors"
)

// ErrTooManyLights is returned when a light population cannot be addressed by a LightSample
var ErrTooManyLights = errors.New("lights: light count exceeds the sample index range")

// SelectionWeights are the relative probabilities of drawing from each light
// population. Populations without lights are skipped and the rest renormalized.
type SelectionWeights struct {
	Environment float64
	Emissive    float64
	Analytic    float64
}

// DefaultSelectionWeights gives every population the same weight
func DefaultSelectionWeights() SelectionWeights {
	return SelectionWeights{Environment: 1, Emissive: 1, Analytic: 1}
}

// Counts holds one number per light Kind, indexed by Kind
type Counts [4]int

// Total returns the sum over all kinds
func (c Counts) Total() int {
	return c[KindEnvironment] + c[KindEmissive] + c[KindAnalytic]
}

// Lights is the scene's complete light set: an optional environment map,
// emissive triangles and analytic point or directional lights.
type Lights struct {
	env                *Environment
	emissive           *emissiveSet
	analytic           *analyticSet
	emissiveByTriangle map[int]int
	weights            SelectionWeights
	probabilities      [4]float64
}

// New builds the light set. env may be nil.
func New(env *Environment, emissive []EmissiveTriangle, analytic []AnalyticLight, weights SelectionWeights) (*Lights, error) {
	emissiveSet, err := newEmissiveSet(emissive)
	if err != nil {
		return nil, err
	}
	analyticSet, err := newAnalyticSet(analytic)
	if err != nil {
		return nil, err
	}

	l := &Lights{
		env:                env,
		emissive:           emissiveSet,
		analytic:           analyticSet,
		emissiveByTriangle: make(map[int]int, len(emissive)),
	}
	for i, tri := range emissive {
		l.emissiveByTriangle[tri.TriangleIndex] = i
	}
	l.SetSelectionWeights(weights)
	return l, nil
}

// SetSelectionWeights recomputes the population selection probabilities
func (l *Lights) SetSelectionWeights(weights SelectionWeights) {
	l.weights = weights
	w := [4]float64{}
	if l.HasEnvironment() {
		w[KindEnvironment] = max(weights.Environment, 0)
	}
	if !l.emissive.empty() {
		w[KindEmissive] = max(weights.Emissive, 0)
	}
	if !l.analytic.empty() {
		w[KindAnalytic] = max(weights.Analytic, 0)
	}

	total := w[KindEnvironment] + w[KindEmissive] + w[KindAnalytic]
	if total <= 0 {
		// All present populations were weighted zero; fall back to uniform
		for _, k := range []Kind{KindEnvironment, KindEmissive, KindAnalytic} {
			if l.present(k) {
				w[k] = 1
				total++
			}
		}
	}
	l.probabilities = [4]float64{}
	if total > 0 {
		for k := range w {
			l.probabilities[k] = w[k] / total
		}
	}
}

func (l *Lights) present(k Kind) bool {
	switch k {
	case KindEnvironment:
		return l.HasEnvironment()
	case KindEmissive:
		return !l.emissive.empty()
	case KindAnalytic:
		return !l.analytic.empty()
	}
	return false
}

// Probability returns the selection probability of a light population
func (l *Lights) Probability(kind Kind) float64 {
	if int(kind) >= len(l.probabilities) {
		return 0
	}
	return l.probabilities[kind]
}

// Empty reports whether the scene has no light that can emit
func (l *Lights) Empty() bool {
	return l.probabilities[KindEnvironment]+l.probabilities[KindEmissive]+l.probabilities[KindAnalytic] == 0
}

// HasEnvironment reports whether a non-black environment map is present
func (l *Lights) HasEnvironment() bool {
	return l.env != nil && !l.env.IsBlack()
}

// Environment returns the environment map, or nil
func (l *Lights) Environment() *Environment {
	return l.env
}

// EmissiveCount returns the number of emissive triangles
func (l *Lights) EmissiveCount() int {
	return len(l.emissive.triangles)
}

// AnalyticCount returns the number of analytic lights
func (l *Lights) AnalyticCount() int {
	return len(l.analytic.lights)
}

// SampleEnv draws an environment texel by importance; pos places the sample inside it
func (l *Lights) SampleEnv(u float64, pos core.Vec2) LightSample {
	if l.env == nil {
		return InvalidSample
	}
	return l.env.sample(u, pos)
}

// SampleEmissive draws an emissive triangle by power; pos is mapped uniformly onto it
func (l *Lights) SampleEmissive(u float64, pos core.Vec2) LightSample {
	return l.emissive.sample(u, pos)
}

// SampleAnalytic draws an analytic light by intensity
func (l *Lights) SampleAnalytic(u float64) LightSample {
	return l.analytic.sample(u)
}

// Sample picks a population by its selection probability, then a light within it
func (l *Lights) Sample(sampler core.Sampler) LightSample {
	u := sampler.Get1D()
	pos := sampler.Get2D()

	last := KindInvalid
	for _, k := range []Kind{KindEnvironment, KindEmissive, KindAnalytic} {
		if l.probabilities[k] > 0 {
			last = k
		}
	}
	for _, k := range []Kind{KindEnvironment, KindEmissive, KindAnalytic} {
		p := l.probabilities[k]
		if p <= 0 {
			continue
		}
		if u < p || k == last {
			return l.sampleKind(k, min(u/p, math.Nextafter(1, 0)), pos)
		}
		u -= p
	}
	return InvalidSample
}

func (l *Lights) sampleKind(k Kind, u float64, pos core.Vec2) LightSample {
	switch k {
	case KindEnvironment:
		return l.SampleEnv(u, pos)
	case KindEmissive:
		return l.SampleEmissive(u, pos)
	case KindAnalytic:
		return l.SampleAnalytic(u)
	}
	return InvalidSample
}

// SampleCounts splits a light tile of tileSize slots between the populations in
// proportion to their selection probabilities. The counts always sum to
// tileSize. Every population with non-zero probability gets at least one slot
// when the tile has room; otherwise only the tileSize most probable ones do.
// The remainder goes to the most probable population.
func (l *Lights) SampleCounts(tileSize int) Counts {
	var counts Counts
	if tileSize <= 0 {
		return counts
	}

	// Present kinds, most probable first; ties keep the fixed kind order
	var present []Kind
	for _, k := range []Kind{KindEnvironment, KindEmissive, KindAnalytic} {
		if l.probabilities[k] > 0 {
			present = append(present, k)
		}
	}
	sort.SliceStable(present, func(a, b int) bool {
		return l.probabilities[present[a]] > l.probabilities[present[b]]
	})
	if len(present) == 0 {
		return counts
	}
	if tileSize < len(present) {
		for _, k := range present[:tileSize] {
			counts[k] = 1
		}
		return counts
	}

	for _, k := range present {
		counts[k] = max(int(math.Floor(l.probabilities[k]*float64(tileSize))), 1)
	}
	largest := present[0]
	if used := counts.Total(); used < tileSize {
		counts[largest] += tileSize - used
	}
	// Minimum slots can overflow small tiles; take the excess from the
	// populations holding more than one slot, most probable first
	for _, k := range present {
		for counts.Total() > tileSize && counts[k] > 1 {
			counts[k]--
		}
	}
	return counts
}

// EnvSampleForDirection returns the environment sample a BSDF ray escaping
// along dir corresponds to
func (l *Lights) EnvSampleForDirection(dir core.Vec3) LightSample {
	if !l.HasEnvironment() {
		return InvalidSample
	}
	return l.env.sampleForDirection(dir)
}

// EnvRadiance returns the environment radiance along dir, or black
func (l *Lights) EnvRadiance(dir core.Vec3) core.Vec3 {
	if l.env == nil {
		return core.Vec3{}
	}
	return l.env.Radiance(dir)
}

// EmissiveIndex returns the emissive light index of a scene triangle
func (l *Lights) EmissiveIndex(triangleIndex int) (int, bool) {
	i, ok := l.emissiveByTriangle[triangleIndex]
	return i, ok
}

// EmissiveSampleForHit returns the emissive sample for a BSDF ray that hit
// emissive light index at barycentrics (b1, b2)
func (l *Lights) EmissiveSampleForHit(index int, barycentrics core.Vec2) LightSample {
	if index < 0 || index >= len(l.emissive.triangles) {
		return InvalidSample
	}
	return NewLightSample(KindEmissive, index, core.InvertUniformTriangle(barycentrics.X, barycentrics.Y))
}

// Eval evaluates a sample from a query position
func (l *Lights) Eval(s LightSample, position core.Vec3) EvaluatedLightSample {
	return l.Load(s).Eval(position)
}

// String summarizes the light set
func (l *Lights) String() string {
	envSize := "none"
	if l.env != nil {
		envSize = fmt.Sprintf("%dx%d", l.env.Width, l.env.Height)
	}
	return fmt.Sprintf("lights{env=%s emissive=%d analytic=%d p=(%.3f, %.3f, %.3f)}",
		envSize, l.EmissiveCount(), l.AnalyticCount(),
		l.probabilities[KindEnvironment], l.probabilities[KindEmissive], l.probabilities[KindAnalytic])
}
