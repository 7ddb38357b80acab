package renderer

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/restir"
)

// FillGBuffer traces one primary ray through the center of every pixel and
// writes the visible surface. Motion vectors are computed against prev, the
// camera of the previous frame; a nil prev gives zero motion.
func FillGBuffer(pool *core.WorkerPool, s Scene, cam, prev *Camera, g *restir.GBuffer) {
	width, height := g.Width, g.Height
	pool.ParallelFor(height, 1, func(begin, end int) {
		for y := begin; y < end; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				ray := cam.PixelRay(x, y)
				g.Surfaces[i] = primarySurface(s, cam, ray)
				g.MotionVectors[i] = motionVector(g.Surfaces[i], prev, x, y)
			}
		}
	})
}

func primarySurface(s Scene, cam *Camera, ray core.Ray) restir.SurfaceData {
	hit, ok := s.TraceRay(ray, 1e-4, math.MaxFloat64)
	if !ok {
		return restir.SurfaceData{Emission: s.Background(ray.Direction)}
	}

	surface, tangent := s.SurfaceAt(hit)
	return restir.SurfaceData{
		Valid:          true,
		Position:       hit.Point,
		Normal:         hit.Normal,
		ViewDir:        ray.Direction.Negate(),
		Tangent:        tangent,
		DiffuseAlbedo:  surface.DiffuseAlbedo,
		SpecularAlbedo: surface.SpecularAlbedo,
		Roughness:      surface.Roughness,
		Material:       surface.Kind,
		Emission:       surface.Emission,
		Depth:          cam.Depth(hit.Point),
		Hit:            hit,
	}
}

// offscreenMotion moves a reprojection far outside any frame so the temporal
// pass rejects it by bounds
const offscreenMotion = 1e9

func motionVector(sd restir.SurfaceData, prev *Camera, x, y int) core.Vec2 {
	if prev == nil || !sd.Valid {
		return core.Vec2{}
	}
	px, py, ok := prev.Project(sd.Position)
	if !ok {
		return core.NewVec2(offscreenMotion, offscreenMotion)
	}
	return core.NewVec2(px-(float64(x)+0.5), py-(float64(y)+0.5))
}
