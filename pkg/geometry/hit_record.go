package geometry

import "github.com/df07/go-restir/pkg/core"

// HitRecord contains information about a ray-triangle intersection
type HitRecord struct {
	Point         core.Vec3 // Point of intersection
	Normal        core.Vec3 // Surface normal, facing the incoming ray
	T             float64   // Parameter t along the ray
	FrontFace     bool      // Whether ray hit the front face
	TriangleIndex int       // Index of the hit triangle in the scene
	Barycentrics  core.Vec2 // Weights of V1 and V2 at the hit point
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
