package lucien

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type entityRecord[Content any] struct {
	content  Content
	position mgl32.Vec3
	bounds   *EntityBounds
}

// EntityManager stores the content, position, and optional bounds of every
// entity in an index. It is not goroutine safe on its own; the owning
// index serializes access.
type EntityManager[ID comparable, Content any] struct {
	entities map[ID]*entityRecord[Content]
}

func NewEntityManager[ID comparable, Content any]() *EntityManager[ID, Content] {
	return &EntityManager[ID, Content]{entities: map[ID]*entityRecord[Content]{}}
}

// Set inserts or replaces an entity. A nil bounds marks a point entity.
func (em *EntityManager[ID, Content]) Set(id ID, content Content, position mgl32.Vec3, bounds *EntityBounds) {
	em.entities[id] = &entityRecord[Content]{content: content, position: position, bounds: bounds}
}

// Content returns the payload for id.
func (em *EntityManager[ID, Content]) Content(id ID) (Content, bool) {
	if rec, ok := em.entities[id]; ok {
		return rec.content, true
	}
	var zero Content
	return zero, false
}

// Position returns the representative point for id.
func (em *EntityManager[ID, Content]) Position(id ID) (mgl32.Vec3, bool) {
	if rec, ok := em.entities[id]; ok {
		return rec.position, true
	}
	return mgl32.Vec3{}, false
}

// Bounds returns the entity's extent, nil for point entities and unknown
// IDs.
func (em *EntityManager[ID, Content]) Bounds(id ID) *EntityBounds {
	if rec, ok := em.entities[id]; ok {
		return rec.bounds
	}
	return nil
}

// Remove deletes id and reports whether it was present.
func (em *EntityManager[ID, Content]) Remove(id ID) bool {
	if _, ok := em.entities[id]; !ok {
		return false
	}
	delete(em.entities, id)
	return true
}

// Count returns the number of stored entities.
func (em *EntityManager[ID, Content]) Count() int {
	return len(em.entities)
}

// SequentialIDGenerator hands out uint64 entity IDs starting at 1. Safe
// for concurrent use.
type SequentialIDGenerator struct {
	next atomic.Uint64
}

func (g *SequentialIDGenerator) NextID() uint64 {
	return g.next.Add(1)
}

// UUIDGenerator hands out random string entity IDs for callers that need
// IDs unique across indexes or processes.
type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}
