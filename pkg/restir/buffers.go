package restir

import (
	"github.com/df07/go-restir/pkg/core"
)

// FinalSample is the per-pixel result handed to the host's shading stage
type FinalSample struct {
	Direction  core.Vec3  // Unit direction toward the light
	Distance   float64    // Distance to the light, +Inf for infinite lights
	Li         core.Vec3  // Incident radiance scaled by the contribution weight
	PathSample PathSample // What Li represents
	MISWeight  float64    // Weight for combining multiple passes
}

// reservoirSet is one pass's reservoir storage: the current and previous frame
// plus a scratch buffer that spatial iterations write into before swapping
type reservoirSet struct {
	current  []Reservoir
	previous []Reservoir
	scratch  []Reservoir
}

// buffers owns every per-pixel array of the pipeline
type buffers struct {
	width, height int
	passes        []reservoirSet
	contexts      [2][]EvalContext // current, previous
	final         [][]FinalSample  // per pass
}

func newBuffers(width, height, numPasses int) *buffers {
	n := width * height
	b := &buffers{
		width:  width,
		height: height,
		passes: make([]reservoirSet, numPasses),
		final:  make([][]FinalSample, numPasses),
	}
	for i := range b.passes {
		b.passes[i] = reservoirSet{
			current:  make([]Reservoir, n),
			previous: make([]Reservoir, n),
			scratch:  make([]Reservoir, n),
		}
		b.final[i] = make([]FinalSample, n)
	}
	b.contexts[0] = make([]EvalContext, n)
	b.contexts[1] = make([]EvalContext, n)
	return b
}

func (b *buffers) currentContexts() []EvalContext {
	return b.contexts[0]
}

func (b *buffers) previousContexts() []EvalContext {
	return b.contexts[1]
}

// swapSpatial makes the scratch buffer the current one after a spatial iteration
func (s *reservoirSet) swapSpatial() {
	s.current, s.scratch = s.scratch, s.current
}

// endFrame turns this frame's data into history
func (b *buffers) endFrame() {
	for i := range b.passes {
		p := &b.passes[i]
		p.current, p.previous = p.previous, p.current
	}
	b.contexts[0], b.contexts[1] = b.contexts[1], b.contexts[0]
}

func (b *buffers) index(x, y int) int {
	return y*b.width + x
}

func (b *buffers) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}
