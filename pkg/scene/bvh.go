package scene

import (
	"sort"

	"github.com/df07/go-tiled-raytracer/pkg/core"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Objects     []ObjectID // Objects of a leaf node (nil for internal nodes)
}

// BVH is a bounding volume hierarchy over the world-space bounds of scene objects
type BVH struct {
	Root *BVHNode
}

// Leaf threshold: if we have this many or fewer objects, store them in a leaf node
const leafThreshold = 8

// NewBVH constructs a BVH over every object in the scene
func NewBVH(s *Scene) *BVH {
	if len(s.objects) == 0 {
		return &BVH{Root: nil}
	}

	ids := make([]ObjectID, len(s.objects))
	for i := range ids {
		ids[i] = ObjectID(i)
	}
	return &BVH{Root: buildBVH(s, ids)}
}

// buildBVH recursively splits the objects at the median along the longest axis
func buildBVH(s *Scene, ids []ObjectID) *BVHNode {
	boundingBox := s.ObjectBounds(ids[0])
	for _, id := range ids[1:] {
		boundingBox = boundingBox.Union(s.ObjectBounds(id))
	}

	if len(ids) <= leafThreshold {
		return &BVHNode{BoundingBox: boundingBox, Objects: ids}
	}

	axis := boundingBox.LongestAxis()
	sort.Slice(ids, func(i, j int) bool {
		return s.ObjectBounds(ids[i]).Center().Component(axis) <
			s.ObjectBounds(ids[j]).Center().Component(axis)
	})

	mid := len(ids) / 2
	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(s, ids[:mid]),
		Right:       buildBVH(s, ids[mid:]),
	}
}

// Hit returns the nearest object intersection with t strictly inside (near, far)
func (bvh *BVH) Hit(s *Scene, ray core.Ray, near, far float32) (Hit, bool) {
	if bvh.Root == nil {
		return Hit{}, false
	}
	return bvh.hitNode(s, bvh.Root, ray, near, far)
}

// hitNode recursively tests ray intersection with BVH nodes
func (bvh *BVH) hitNode(s *Scene, node *BVHNode, ray core.Ray, near, far float32) (Hit, bool) {
	if !node.BoundingBox.Hit(ray, near, far) {
		return Hit{}, false
	}

	var closest Hit
	hitAnything := false
	closestSoFar := far

	// Leaf node: linear search through its objects
	if node.Objects != nil {
		for _, id := range node.Objects {
			if hit, ok := s.hitObject(id, ray, near, closestSoFar); ok {
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
		if hit, ok := bvh.hitNode(s, child, ray, near, closestSoFar); ok {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}
	return closest, hitAnything
}

// BVHStats contains statistics about the BVH structure
type BVHStats struct {
	TotalNodes   int
	LeafNodes    int
	MaxDepth     int
	AvgDepth     float64
	TotalObjects int
}

// Stats returns statistics about the BVH structure
func (bvh *BVH) Stats() BVHStats {
	if bvh.Root == nil {
		return BVHStats{}
	}

	var stats BVHStats
	bvh.collectStats(bvh.Root, 0, &stats)

	// Calculate average depth after collecting all data
	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.Objects != nil {
		stats.LeafNodes++
		stats.TotalObjects += len(node.Objects)
		stats.AvgDepth += float64(depth)
		return
	}
	if node.Left != nil {
		bvh.collectStats(node.Left, depth+1, stats)
	}
	if node.Right != nil {
		bvh.collectStats(node.Right, depth+1, stats)
	}
}
