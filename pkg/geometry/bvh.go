package geometry

import (
	"sort"

	"github.com/df07/go-restir/pkg/core"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox AABB
	Left        *BVHNode
	Right       *BVHNode
	Triangles   []int // Triangle indices for leaf nodes (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy over a triangle list
type BVH struct {
	Root      *BVHNode
	triangles []*Triangle
}

// Leaf threshold: if we have this many or fewer triangles, store them in a leaf node
const leafThreshold = 8

// NewBVH constructs a BVH over the given triangles. The slice is not modified
// and hit records report indices into it.
func NewBVH(triangles []*Triangle) *BVH {
	if len(triangles) == 0 {
		return &BVH{}
	}

	indices := make([]int, len(triangles))
	for i := range indices {
		indices[i] = i
	}

	bvh := &BVH{triangles: triangles}
	bvh.Root = bvh.build(indices)
	return bvh
}

// build recursively splits at the median along the longest axis
func (bvh *BVH) build(indices []int) *BVHNode {
	box := EmptyAABB()
	for _, i := range indices {
		box = box.Union(bvh.triangles[i].BoundingBox())
	}

	if len(indices) <= leafThreshold {
		return &BVHNode{BoundingBox: box, Triangles: indices}
	}

	axis := box.LongestAxis()
	sort.Slice(indices, func(a, b int) bool {
		ca := axisValue(bvh.triangles[indices[a]].BoundingBox().Center(), axis)
		cb := axisValue(bvh.triangles[indices[b]].BoundingBox().Center(), axis)
		return ca < cb
	})

	mid := len(indices) / 2
	return &BVHNode{
		BoundingBox: box,
		Left:        bvh.build(indices[:mid]),
		Right:       bvh.build(indices[mid:]),
	}
}

// Hit returns the closest intersection along the ray within [tMin, tMax]
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	if bvh.Root == nil {
		return HitRecord{}, false
	}
	return bvh.hitNode(bvh.Root, ray, tMin, tMax)
}

func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return HitRecord{}, false
	}

	var closest HitRecord
	hitAnything := false
	closestSoFar := tMax

	if node.Triangles != nil {
		for _, i := range node.Triangles {
			if hit, ok := bvh.triangles[i].Hit(ray, tMin, closestSoFar); ok {
				hit.TriangleIndex = i
				hitAnything = true
				closestSoFar = hit.T
				closest = hit
			}
		}
		return closest, hitAnything
	}

	for _, child := range [2]*BVHNode{node.Left, node.Right} {
		if child == nil {
			continue
		}
		if hit, ok := bvh.hitNode(child, ray, tMin, closestSoFar); ok {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}
	return closest, hitAnything
}

// Occluded reports whether anything intersects the ray within [tMin, tMax].
// It stops at the first hit found.
func (bvh *BVH) Occluded(ray core.Ray, tMin, tMax float64) bool {
	if bvh.Root == nil {
		return false
	}
	return bvh.anyHit(bvh.Root, ray, tMin, tMax)
}

func (bvh *BVH) anyHit(node *BVHNode, ray core.Ray, tMin, tMax float64) bool {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return false
	}
	if node.Triangles != nil {
		for _, i := range node.Triangles {
			if _, ok := bvh.triangles[i].Hit(ray, tMin, tMax); ok {
				return true
			}
		}
		return false
	}
	return (node.Left != nil && bvh.anyHit(node.Left, ray, tMin, tMax)) ||
		(node.Right != nil && bvh.anyHit(node.Right, ray, tMin, tMax))
}

// depth returns the height of the tree, used by tests
func (bvh *BVH) depth(node *BVHNode) int {
	if node == nil {
		return 0
	}
	return 1 + max(bvh.depth(node.Left), bvh.depth(node.Right))
}
