package geometry

import (
	"github.com/df07/go-restir/pkg/core"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2    core.Vec3 // The three vertices
	MaterialIndex int       // Index into the owning scene's material table
	normal        core.Vec3 // Cached normal vector
	area          float64   // Cached surface area
	bbox          AABB      // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, materialIndex int) *Triangle {
	t := &Triangle{
		V0:            v0,
		V1:            v1,
		V2:            v2,
		MaterialIndex: materialIndex,
	}

	cross := v1.Subtract(v0).Cross(v2.Subtract(v0))
	t.normal = cross.Normalize()
	t.area = 0.5 * cross.Length()
	t.bbox = NewAABBFromPoints(v0, v1, v2)

	return t
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return HitRecord{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return HitRecord{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return HitRecord{}, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return HitRecord{}, false
	}

	hit := HitRecord{
		T:             tHit,
		Point:         ray.At(tHit),
		TriangleIndex: -1,
		Barycentrics:  core.NewVec2(u, v),
	}
	hit.SetFaceNormal(ray, t.normal)
	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() AABB {
	return t.bbox
}

// Normal returns the geometric normal (right-handed winding V0, V1, V2)
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// Area returns the surface area of the triangle
func (t *Triangle) Area() float64 {
	return t.area
}

// PointAt returns the point with barycentric weights b1 (V1) and b2 (V2)
func (t *Triangle) PointAt(b1, b2 float64) core.Vec3 {
	return t.V0.Multiply(1 - b1 - b2).Add(t.V1.Multiply(b1)).Add(t.V2.Multiply(b2))
}
