package lucien

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// IntersectionType classifies an entity relative to a query plane.
type IntersectionType uint8

const (
	// PositiveSide means the entity lies entirely on the side the plane
	// normal points toward.
	PositiveSide IntersectionType = iota
	// NegativeSide means the entity lies entirely on the opposite side.
	NegativeSide
	// Intersecting means the entity spans both sides of the plane.
	Intersecting
	// OnPlane means the entity sits within the query tolerance of the plane.
	OnPlane
)

func (t IntersectionType) String() string {
	switch t {
	case PositiveSide:
		return "POSITIVE_SIDE"
	case NegativeSide:
		return "NEGATIVE_SIDE"
	case Intersecting:
		return "INTERSECTING"
	case OnPlane:
		return "ON_PLANE"
	}
	return fmt.Sprintf("IntersectionType(%d)", uint8(t))
}

// PlaneIntersection reports one entity from a plane query: which side of
// the plane it is on, its signed distance from the plane, the point on the
// entity nearest the plane, and its bounds at query time. The value is
// immutable once constructed and safe to copy, compare, and share across
// goroutines.
//
// The constructor trusts its caller: it does not check that the sign of
// the distance matches the classification, that the closest point lies
// within the bounds, or that the distance is finite. A producer that
// violates those invariants gets surprising but deterministic predicate
// and ordering results, never a failure.
type PlaneIntersection[ID comparable, Content any] struct {
	entityID     ID
	content      Content
	distance     float32
	closestPoint mgl32.Vec3
	kind         IntersectionType
	bounds       *EntityBounds
}

// NewPlaneIntersection packages a single plane-query hit.
func NewPlaneIntersection[ID comparable, Content any](entityID ID, content Content, distance float32, closestPoint mgl32.Vec3, kind IntersectionType, bounds *EntityBounds) PlaneIntersection[ID, Content] {
	return PlaneIntersection[ID, Content]{
		entityID:     entityID,
		content:      content,
		distance:     distance,
		closestPoint: closestPoint,
		kind:         kind,
		bounds:       bounds,
	}
}

// EntityID identifies the entity being reported.
func (pi PlaneIntersection[ID, Content]) EntityID() ID { return pi.entityID }

// Content returns the payload associated with the entity.
func (pi PlaneIntersection[ID, Content]) Content() Content { return pi.content }

// DistanceFromPlane is the signed distance from the entity to the plane,
// positive on the side the plane normal points toward.
func (pi PlaneIntersection[ID, Content]) DistanceFromPlane() float32 { return pi.distance }

// ClosestPoint is the point on the entity nearest to the plane.
func (pi PlaneIntersection[ID, Content]) ClosestPoint() mgl32.Vec3 { return pi.closestPoint }

// Type returns the four-way classification of the entity.
func (pi PlaneIntersection[ID, Content]) Type() IntersectionType { return pi.kind }

// Bounds returns the entity's extent at query time, nil for point entities.
func (pi PlaneIntersection[ID, Content]) Bounds() *EntityBounds { return pi.bounds }

// ActuallyIntersects reports whether the entity is not cleanly on one
// side: it straddles the plane or sits on it.
func (pi PlaneIntersection[ID, Content]) ActuallyIntersects() bool {
	return pi.kind == Intersecting || pi.kind == OnPlane
}

// IsOnPositiveSide reports whether the entity counts as part of the
// positive half-space. Straddling and on-plane entities count for both
// sides, so a half-space filter never misses boundary entities; callers
// wanting the strict side compare Type against PositiveSide directly.
func (pi PlaneIntersection[ID, Content]) IsOnPositiveSide() bool {
	return pi.kind == PositiveSide || pi.kind == Intersecting || pi.kind == OnPlane
}

// IsOnNegativeSide reports whether the entity counts as part of the
// negative half-space, with the same inclusive boundary treatment as
// IsOnPositiveSide.
func (pi PlaneIntersection[ID, Content]) IsOnNegativeSide() bool {
	return pi.kind == NegativeSide || pi.kind == Intersecting || pi.kind == OnPlane
}

// Compare orders results by absolute distance from the plane, ascending,
// regardless of classification or which side the distance is signed
// toward. Ties compare equal; callers needing a stable secondary order
// supply their own, typically a stable sort or an entity-ID tie-break.
// Non-finite distances follow plain float comparison.
func (pi PlaneIntersection[ID, Content]) Compare(other PlaneIntersection[ID, Content]) int {
	a := math.Abs(float64(pi.distance))
	b := math.Abs(float64(other.distance))
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders a diagnostic summary. The format is for logging only and
// is not parsed back.
func (pi PlaneIntersection[ID, Content]) String() string {
	p := pi.closestPoint
	return fmt.Sprintf("PlaneIntersection[entity=%v, distance=%.3f, type=%s, point=(%g, %g, %g)]",
		pi.entityID, pi.distance, pi.kind, p.X(), p.Y(), p.Z())
}
