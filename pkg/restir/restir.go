package restir

import (
	"time"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/geometry"
	"github.com/df07/go-restir/pkg/lights"
	"github.com/df07/go-restir/pkg/log"
	"github.com/pkg/errors"
)

// ReSTIR runs reservoir based spatiotemporal importance resampling for direct
// lighting over a fixed size frame. A frame is driven by BeginFrame, Update and
// EndFrame; results can be read with FinalSample until the next BeginFrame.
type ReSTIR struct {
	width, height int
	opts          Options
	logger        core.Logger
	pool          *core.WorkerPool
	scene         SceneQuery
	lights        *lights.Lights

	stages  []stage
	tiles   *lightTiles
	offsets [][2]int8
	buf     *buffers
	gbuf    *GBuffer

	frameIndex   uint32
	frameSeed    uint64
	frameStarted bool
	updated      bool
	historyValid bool
	stats        FrameStats
}

// New creates the pipeline. Options are validated and clamped.
func New(width, height int, scene SceneQuery, l *lights.Lights, opts Options, logger core.Logger) (*ReSTIR, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidResolution, "%dx%d", width, height)
	}
	if l == nil {
		return nil, ErrNoLights
	}
	if logger == nil {
		logger = log.Discard()
	}
	r := &ReSTIR{
		width:   width,
		height:  height,
		logger:  logger,
		scene:   scene,
		lights:  l,
		offsets: neighborOffsets(),
	}
	r.SetOptions(opts)
	return r, nil
}

// Options returns the active, validated options
func (r *ReSTIR) Options() Options {
	return r.opts
}

// SetOptions validates and applies new options. Temporal history is dropped.
func (r *ReSTIR) SetOptions(opts Options) {
	opts = opts.Validate(r.logger)
	r.opts = opts
	r.pool = core.NewWorkerPool(opts.NumWorkers)
	r.lights.SetSelectionWeights(lights.SelectionWeights{
		Environment: opts.EnvLightWeight,
		Emissive:    opts.EmissiveLightWeight,
		Analytic:    opts.AnalyticLightWeight,
	})
	r.tiles = newLightTiles(opts.LightTileCount, opts.LightTileSize)
	r.tiles.setLights(r.lights)
	r.buf = newBuffers(r.width, r.height, opts.NumPasses)
	r.stages = buildPipeline(opts)
	r.logger.Debugf("options applied: mode=%v bias=%v passes=%d stages=%d", opts.Mode, opts.BiasCorrection, opts.NumPasses, len(r.stages))
	r.ResetHistory()
}

// SetLights replaces the light set. Temporal history is dropped.
func (r *ReSTIR) SetLights(l *lights.Lights) error {
	if l == nil {
		return ErrNoLights
	}
	r.lights = l
	r.lights.SetSelectionWeights(lights.SelectionWeights{
		Environment: r.opts.EnvLightWeight,
		Emissive:    r.opts.EmissiveLightWeight,
		Analytic:    r.opts.AnalyticLightWeight,
	})
	r.tiles.setLights(l)
	r.ResetHistory()
	return nil
}

// Resize changes the frame size. Temporal history is dropped.
func (r *ReSTIR) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidResolution, "%dx%d", width, height)
	}
	if width == r.width && height == r.height {
		return nil
	}
	r.width, r.height = width, height
	r.buf = newBuffers(width, height, r.opts.NumPasses)
	r.ResetHistory()
	return nil
}

// ResetHistory invalidates the previous frame for temporal reuse
func (r *ReSTIR) ResetHistory() {
	if r.historyValid {
		r.logger.Infof("temporal history reset at frame %d", r.frameIndex)
	}
	r.historyValid = false
}

// BeginFrame loads the frame's G-buffer and builds the evaluation contexts
func (r *ReSTIR) BeginFrame(gbuf *GBuffer) error {
	if gbuf == nil || gbuf.Width != r.width || gbuf.Height != r.height ||
		len(gbuf.Surfaces) != r.width*r.height || len(gbuf.MotionVectors) != r.width*r.height {
		return errors.Wrapf(ErrGBufferMismatch, "expected %dx%d", r.width, r.height)
	}
	r.gbuf = gbuf
	r.frameSeed = uint64(core.JenkinsHash(r.frameIndex))
	r.frameStarted = true
	r.updated = false

	contexts := r.buf.currentContexts()
	r.forEachPixel(func(x, y, i int) {
		contexts[i] = NewEvalContext(gbuf.Surfaces[i])
	})
	return nil
}

// Update runs every pipeline stage for the current frame
func (r *ReSTIR) Update() error {
	if !r.frameStarted {
		return ErrFrameNotStarted
	}
	start := time.Now()
	r.stats.HistoryUsed = r.historyValid && r.opts.Mode.Temporal()
	r.runPipeline()
	r.stats.Total = time.Since(start)
	r.stats.FrameIndex = r.frameIndex
	r.collectReservoirStats()
	r.updated = true
	return nil
}

// EndFrame makes the frame's reservoirs and contexts the history of the next
func (r *ReSTIR) EndFrame() error {
	if !r.frameStarted || !r.updated {
		return ErrFrameNotStarted
	}
	r.buf.endFrame()
	r.frameStarted = false
	r.historyValid = true
	r.frameIndex++
	return nil
}

// RenderFrame runs BeginFrame, Update and EndFrame
func (r *ReSTIR) RenderFrame(gbuf *GBuffer) error {
	if err := r.BeginFrame(gbuf); err != nil {
		return err
	}
	if err := r.Update(); err != nil {
		return err
	}
	return r.EndFrame()
}

// FrameIndex returns the index of the next frame to render
func (r *ReSTIR) FrameIndex() uint32 {
	return r.frameIndex
}

// Size returns the frame size
func (r *ReSTIR) Size() (int, int) {
	return r.width, r.height
}

// NumPasses returns the number of independent reservoir sets
func (r *ReSTIR) NumPasses() int {
	return len(r.buf.passes)
}

// Stats returns statistics of the last updated frame
func (r *ReSTIR) Stats() FrameStats {
	s := r.stats
	s.Stages = append([]StageTiming(nil), r.stats.Stages...)
	return s
}

// latest returns the reservoirs and contexts of the most recently updated
// frame. Between BeginFrame and Update that is still the previous frame.
func (r *ReSTIR) latest(pass int) ([]Reservoir, []EvalContext) {
	if r.frameStarted && r.updated {
		return r.buf.passes[pass].current, r.buf.currentContexts()
	}
	return r.buf.passes[pass].previous, r.buf.previousContexts()
}

// FinalSample returns the final sample of a pixel for one pass
func (r *ReSTIR) FinalSample(x, y, pass int) FinalSample {
	if !r.buf.inBounds(x, y) || pass < 0 || pass >= len(r.buf.final) {
		return FinalSample{}
	}
	return r.buf.final[pass][r.buf.index(x, y)]
}

// PrimaryHit returns the primary hit record the final sample was computed
// for; it is zero for pixels without a valid surface
func (r *ReSTIR) PrimaryHit(x, y, pass int) geometry.HitRecord {
	if !r.buf.inBounds(x, y) || pass < 0 || pass >= len(r.buf.passes) {
		return geometry.HitRecord{}
	}
	_, contexts := r.latest(pass)
	return contexts[r.buf.index(x, y)].Hit
}

// Reservoir returns a pixel's reservoir after the last update
func (r *ReSTIR) Reservoir(x, y, pass int) Reservoir {
	if !r.buf.inBounds(x, y) || pass < 0 || pass >= len(r.buf.passes) {
		return Reservoir{}
	}
	reservoirs, _ := r.latest(pass)
	return reservoirs[r.buf.index(x, y)]
}
