package restir

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/geometry"
	"github.com/df07/go-restir/pkg/lights"
	"github.com/df07/go-restir/pkg/material"
)

// SceneQuery is the ray query surface the pipeline needs from the host renderer
type SceneQuery interface {
	// TraceVisibilityRay reports whether nothing blocks the segment [tMin, tMax]
	TraceVisibilityRay(origin, direction core.Vec3, tMin, tMax float64) bool
	// TraceRay returns the closest hit along ray
	TraceRay(ray core.Ray, tMin, tMax float64) (geometry.HitRecord, bool)
	// EmissiveLightIndex maps a hit to its emissive light index
	EmissiveLightIndex(hit geometry.HitRecord) (int, bool)
}

// SurfaceData is one G-buffer texel as supplied by the host
type SurfaceData struct {
	Valid          bool
	Position       core.Vec3
	Normal         core.Vec3 // Shading normal, facing the viewer
	ViewDir        core.Vec3 // Unit vector from the surface toward the camera
	Tangent        core.Vec3 // Fiber direction for hair
	DiffuseAlbedo  core.Vec3
	SpecularAlbedo core.Vec3
	Roughness      float64
	Material       material.Kind
	Emission       core.Vec3
	Depth          float64 // View depth, used for neighbor similarity
	Hit            geometry.HitRecord
}

// GBuffer holds the per-pixel surfaces and motion vectors of one frame.
// Motion vectors are in pixels and point from the current pixel to where the
// same surface was in the previous frame.
type GBuffer struct {
	Width, Height int
	Surfaces      []SurfaceData
	MotionVectors []core.Vec2
}

// NewGBuffer allocates an empty G-buffer
func NewGBuffer(width, height int) *GBuffer {
	return &GBuffer{
		Width:         width,
		Height:        height,
		Surfaces:      make([]SurfaceData, width*height),
		MotionVectors: make([]core.Vec2, width*height),
	}
}

// At returns the surface at pixel (x, y)
func (g *GBuffer) At(x, y int) *SurfaceData {
	return &g.Surfaces[y*g.Width+x]
}

// EvalContext is the shading snapshot a reservoir's target function is evaluated against
type EvalContext struct {
	Valid              bool
	Position           core.Vec3
	Normal             core.Vec3
	ViewDir            core.Vec3
	Material           material.Kind
	Emission           core.Vec3
	Depth              float64
	DiffuseProbability float64
	Alpha              float64
	Hit                geometry.HitRecord
	bsdf               material.BSDF
}

// NewEvalContext builds a context from G-buffer data
func NewEvalContext(s SurfaceData) EvalContext {
	c := EvalContext{
		Valid:    s.Valid,
		Position: s.Position,
		Normal:   s.Normal,
		ViewDir:  s.ViewDir,
		Material: s.Material,
		Emission: s.Emission,
		Depth:    s.Depth,
	}
	if !s.Valid {
		return c
	}
	c.Hit = s.Hit
	c.DiffuseProbability = material.DiffuseProbability(s.DiffuseAlbedo, s.SpecularAlbedo)
	c.Alpha = material.Alpha(s.Roughness)
	c.bsdf = material.New(material.Surface{
		Kind:           s.Material,
		DiffuseAlbedo:  s.DiffuseAlbedo,
		SpecularAlbedo: s.SpecularAlbedo,
		Roughness:      s.Roughness,
		Emission:       s.Emission,
	}, material.Frame{Normal: s.Normal, Tangent: s.Tangent})
	return c
}

// BSDF returns the surface BSDF, or nil for invalid surfaces
func (c *EvalContext) BSDF() material.BSDF {
	return c.bsdf
}

// Evaluator bundles what the target function needs beyond the surface
type Evaluator struct {
	Lights     *lights.Lights
	Scene      SceneQuery
	RayEpsilon float64
}

// EvalTargetFunction returns p̂ for a sample at this surface
func (c *EvalContext) EvalTargetFunction(ev *Evaluator, s lights.LightSample, path PathSample, withVisibility bool) float64 {
	switch path {
	case PathEmission:
		return c.Emission.Luminance()
	case PathLight:
		if !c.Valid || !s.IsValid() {
			return 0
		}
		p, _ := c.EvalLoaded(ev, ev.Lights.Load(s), withVisibility)
		return p
	}
	return 0
}

// EvalLoaded evaluates p̂ for a loaded light sample and also returns the
// evaluated sample for callers that need its pdf or direction
func (c *EvalContext) EvalLoaded(ev *Evaluator, loaded lights.LoadedLightSample, withVisibility bool) (float64, lights.EvaluatedLightSample) {
	if !c.Valid || !loaded.IsValid() {
		return 0, lights.EvaluatedLightSample{}
	}
	e := loaded.Eval(c.Position)
	return c.EvalEvaluated(ev, e, withVisibility), e
}

// EvalEvaluated evaluates p̂ for an already evaluated light sample
func (c *EvalContext) EvalEvaluated(ev *Evaluator, e lights.EvaluatedLightSample, withVisibility bool) float64 {
	if !c.Valid || e.GeomFactor <= 0 || e.Emission.IsZero() {
		return 0
	}
	f := c.bsdf.Eval(c.ViewDir, e.Direction)
	p := f.MultiplyVec(e.Emission).Luminance() * e.GeomFactor
	if !(p > 0) || !core.IsFinite(p) {
		return 0
	}
	if withVisibility && !c.Visible(ev, e) {
		return 0
	}
	return p
}

// Visible traces one shadow ray from the surface toward the light
func (c *EvalContext) Visible(ev *Evaluator, e lights.EvaluatedLightSample) bool {
	if ev.Scene == nil {
		return true
	}
	tMax := math.MaxFloat64
	if !e.IsInfinite() {
		tMax = e.Distance - ev.RayEpsilon
		if tMax <= ev.RayEpsilon {
			return true
		}
	}
	return ev.Scene.TraceVisibilityRay(c.Position, e.Direction, ev.RayEpsilon, tMax)
}

// similar reports whether two surfaces are close enough in orientation and
// depth to share samples
func similar(a, b *EvalContext, normalThreshold, depthThreshold float64) bool {
	if a.Normal.Dot(b.Normal) < normalThreshold {
		return false
	}
	return math.Abs(a.Depth-b.Depth) <= depthThreshold*math.Max(a.Depth, b.Depth)
}
