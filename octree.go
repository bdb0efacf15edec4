package lucien

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

const (
	defaultCellSize = 64.0

	// cellBias shifts cell coordinates into the positive range before
	// Morton interleaving; cells further than cellBias*CellSize from the
	// origin on any axis alias back into range.
	cellBias = 1 << 20
)

// OctreeOptions configures an index.
type OctreeOptions struct {
	// CellSize is the edge length of one leaf cell. Entities land in the
	// cell containing their representative position.
	CellSize float32
}

type octreeNode[ID comparable] struct {
	bounds    EntityBounds
	entityIDs []ID
}

// Octree is a sparse spatial index over Morton-keyed cells of a fixed
// size. Point entities land in the cell containing their position;
// bounded entities span every cell their bounds overlap, so cell-level
// query rejection never hides an entity larger than a cell. All
// operations are safe for concurrent use; queries hold the read lock for
// their duration.
type Octree[ID comparable, Content any] struct {
	mu       sync.RWMutex
	cellSize float32
	nodes    map[uint64]*octreeNode[ID]
	cellsOf  map[ID][]uint64
	entities *EntityManager[ID, Content]
}

func NewOctree[ID comparable, Content any](opts OctreeOptions) *Octree[ID, Content] {
	if opts.CellSize <= 0 {
		opts.CellSize = defaultCellSize
	}
	return &Octree[ID, Content]{
		cellSize: opts.CellSize,
		nodes:    map[uint64]*octreeNode[ID]{},
		cellsOf:  map[ID][]uint64{},
		entities: NewEntityManager[ID, Content](),
	}
}

// Insert adds or replaces a point entity at position.
func (o *Octree[ID, Content]) Insert(id ID, content Content, position mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.insertLocked(id, content, position, nil)
}

// InsertBounded adds or replaces an entity with a full extent. The
// position is the representative point used for bucketing, normally the
// bounds center.
func (o *Octree[ID, Content]) InsertBounded(id ID, content Content, position mgl32.Vec3, bounds EntityBounds) {
	o.mu.Lock()
	defer o.mu.Unlock()
	b := bounds
	o.insertLocked(id, content, position, &b)
}

func (o *Octree[ID, Content]) insertLocked(id ID, content Content, position mgl32.Vec3, bounds *EntityBounds) {
	if _, exists := o.cellsOf[id]; exists {
		o.removeLocked(id)
	}

	lo := o.cellCoords(position)
	hi := lo
	if bounds != nil {
		lo = o.cellCoords(bounds.Min)
		hi = o.cellCoords(bounds.Max)
	}

	var keys []uint64
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				cell := [3]int64{x, y, z}
				key := mortonKey(uint32(x+cellBias), uint32(y+cellBias), uint32(z+cellBias))
				node, ok := o.nodes[key]
				if !ok {
					node = &octreeNode[ID]{bounds: o.cellBounds(cell)}
					o.nodes[key] = node
				}
				node.entityIDs = append(node.entityIDs, id)
				keys = append(keys, key)
			}
		}
	}
	o.cellsOf[id] = keys
	o.entities.Set(id, content, position, bounds)
	log.Debugf("octree: inserted entity %v into %d cells", id, len(keys))
}

// Remove deletes an entity and reports whether it was present.
func (o *Octree[ID, Content]) Remove(id ID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.removeLocked(id)
}

func (o *Octree[ID, Content]) removeLocked(id ID) bool {
	keys, ok := o.cellsOf[id]
	if !ok {
		return false
	}
	for _, key := range keys {
		node := o.nodes[key]
		if node == nil {
			continue
		}
		for i, other := range node.entityIDs {
			if other == id {
				node.entityIDs = append(node.entityIDs[:i], node.entityIDs[i+1:]...)
				break
			}
		}
		if len(node.entityIDs) == 0 {
			delete(o.nodes, key)
		}
	}
	delete(o.cellsOf, id)
	o.entities.Remove(id)
	return true
}

// UpdatePosition moves an entity to a new position, translating its
// bounds by the same delta.
func (o *Octree[ID, Content]) UpdatePosition(id ID, position mgl32.Vec3) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	old, ok := o.entities.Position(id)
	if !ok {
		return fmt.Errorf("octree: unknown entity %v", id)
	}
	content, _ := o.entities.Content(id)
	bounds := o.entities.Bounds(id)
	if bounds != nil {
		delta := position.Sub(old)
		moved := EntityBounds{Min: bounds.Min.Add(delta), Max: bounds.Max.Add(delta)}
		bounds = &moved
	}
	o.removeLocked(id)
	o.insertLocked(id, content, position, bounds)
	return nil
}

// Count returns the number of indexed entities.
func (o *Octree[ID, Content]) Count() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.entities.Count()
}

func (o *Octree[ID, Content]) cellCoords(p mgl32.Vec3) [3]int64 {
	return [3]int64{
		int64(math.Floor(float64(p.X()) / float64(o.cellSize))),
		int64(math.Floor(float64(p.Y()) / float64(o.cellSize))),
		int64(math.Floor(float64(p.Z()) / float64(o.cellSize))),
	}
}

func (o *Octree[ID, Content]) cellBounds(cell [3]int64) EntityBounds {
	min := mgl32.Vec3{
		float32(cell[0]) * o.cellSize,
		float32(cell[1]) * o.cellSize,
		float32(cell[2]) * o.cellSize,
	}
	size := mgl32.Vec3{o.cellSize, o.cellSize, o.cellSize}
	return EntityBounds{Min: min, Max: min.Add(size)}
}

// PlaneIntersectAll classifies every entity near the plane and returns the
// results sorted ascending by absolute distance, equal distances keeping
// traversal order. With tolerance 0 only entities in cells the plane
// crosses are visited and nothing is dropped by distance; with a positive
// tolerance, entities further than tolerance from the plane are dropped
// and the tolerance also serves as the ON_PLANE band for bounded entities.
func (o *Octree[ID, Content]) PlaneIntersectAll(plane Plane3D, tolerance float32) []PlaneIntersection[ID, Content] {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.planeIntersectLocked(plane, tolerance, tolerance)
}

// PlaneIntersectPositiveSide returns every entity that counts as part of
// the positive half-space, including straddling and on-plane entities,
// sorted by absolute distance.
func (o *Octree[ID, Content]) PlaneIntersectPositiveSide(plane Plane3D) []PlaneIntersection[ID, Content] {
	o.mu.RLock()
	defer o.mu.RUnlock()

	all := o.planeIntersectLocked(plane, onPlaneEpsilon, float32(math.Inf(1)))
	return filterIntersections(all, PlaneIntersection[ID, Content].IsOnPositiveSide)
}

// PlaneIntersectNegativeSide is the negative half-space counterpart of
// PlaneIntersectPositiveSide.
func (o *Octree[ID, Content]) PlaneIntersectNegativeSide(plane Plane3D) []PlaneIntersection[ID, Content] {
	o.mu.RLock()
	defer o.mu.RUnlock()

	all := o.planeIntersectLocked(plane, onPlaneEpsilon, float32(math.Inf(1)))
	return filterIntersections(all, PlaneIntersection[ID, Content].IsOnNegativeSide)
}

// PlaneIntersectWithinDistance returns every entity within maxDistance of
// the plane on either side, sorted by absolute distance.
func (o *Octree[ID, Content]) PlaneIntersectWithinDistance(plane Plane3D, maxDistance float32) []PlaneIntersection[ID, Content] {
	o.mu.RLock()
	defer o.mu.RUnlock()

	all := o.planeIntersectLocked(plane, onPlaneEpsilon, maxDistance)
	return filterIntersections(all, func(pi PlaneIntersection[ID, Content]) bool {
		return abs32(pi.DistanceFromPlane()) <= maxDistance
	})
}

// planeIntersectLocked walks every non-empty cell within reach of the
// plane and classifies its residents. Spanning entities appear in several
// cells and are classified once. Callers hold at least the read lock. A
// non-positive reach never drops classified results by distance.
func (o *Octree[ID, Content]) planeIntersectLocked(plane Plane3D, band, reach float32) []PlaneIntersection[ID, Content] {
	var results []PlaneIntersection[ID, Content]
	seen := map[ID]struct{}{}

	for _, node := range o.nodes {
		if len(node.entityIDs) == 0 {
			continue
		}
		if !planeIntersectsBox(plane, node.bounds, reach) {
			continue
		}
		for _, id := range node.entityIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			content, ok := o.entities.Content(id)
			if !ok {
				continue
			}

			var hit PlaneIntersection[ID, Content]
			if bounds := o.entities.Bounds(id); bounds != nil {
				hit = planeAABBIntersection(plane, id, content, *bounds, band)
			} else {
				pos, _ := o.entities.Position(id)
				hit = planePointIntersection(plane, id, content, pos)
			}
			if reach > 0 && abs32(hit.DistanceFromPlane()) > reach {
				continue
			}
			results = append(results, hit)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Compare(results[j]) < 0
	})
	log.Debugf("octree: plane query matched %d of %d entities", len(results), o.entities.Count())
	return results
}

func filterIntersections[ID comparable, Content any](in []PlaneIntersection[ID, Content], keep func(PlaneIntersection[ID, Content]) bool) []PlaneIntersection[ID, Content] {
	out := in[:0:0]
	for _, pi := range in {
		if keep(pi) {
			out = append(out, pi)
		}
	}
	return out
}

// mortonKey interleaves the low 21 bits of each coordinate into a 63 bit
// space filling curve key.
func mortonKey(x, y, z uint32) uint64 {
	return spreadBits(x) | spreadBits(y)<<1 | spreadBits(z)<<2
}

func spreadBits(v uint32) uint64 {
	x := uint64(v) & 0x1fffff
	x = (x | x<<32) & 0x1f00000000ffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}
