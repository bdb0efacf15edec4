package lucien

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestIndex() *Octree[uint64, string] {
	return NewOctree[uint64, string](OctreeOptions{CellSize: 10})
}

func upPlane() Plane3D {
	return NewPlane(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
}

func entityIDs(hits []PlaneIntersection[uint64, string]) []uint64 {
	ids := make([]uint64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.EntityID()
	}
	return ids
}

func TestPlaneIntersectAllSortsByAbsoluteDistance(t *testing.T) {
	o := newTestIndex()
	o.Insert(1, "above", mgl32.Vec3{0, 0, 5})
	o.Insert(2, "below", mgl32.Vec3{0, 0, -7})
	o.InsertBounded(3, "straddling", mgl32.Vec3{}, NewEntityBoundsAround(mgl32.Vec3{}, 1))

	hits := o.PlaneIntersectAll(upPlane(), 0)

	want := []uint64{3, 1, 2}
	got := entityIDs(hits)
	if len(got) != len(want) {
		t.Fatalf("got %d hits %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got %v, want %v", got, want)
		}
	}

	if hits[0].Type() != Intersecting {
		t.Errorf("straddling entity: got %v, want %v", hits[0].Type(), Intersecting)
	}
	if !approxEq(hits[1].DistanceFromPlane(), 5) {
		t.Errorf("above entity distance: got %g, want 5", hits[1].DistanceFromPlane())
	}
	if !approxEq(hits[2].DistanceFromPlane(), -7) {
		t.Errorf("below entity distance: got %g, want -7", hits[2].DistanceFromPlane())
	}
}

func TestPlaneIntersectSidesIncludeBoundaryEntities(t *testing.T) {
	o := newTestIndex()
	o.Insert(1, "above", mgl32.Vec3{0, 0, 5})
	o.Insert(2, "below", mgl32.Vec3{0, 0, -7})
	o.InsertBounded(3, "straddling", mgl32.Vec3{}, NewEntityBoundsAround(mgl32.Vec3{}, 1))

	positive := entityIDs(o.PlaneIntersectPositiveSide(upPlane()))
	if len(positive) != 2 || positive[0] != 3 || positive[1] != 1 {
		t.Errorf("positive side: got %v, want [3 1]", positive)
	}

	negative := entityIDs(o.PlaneIntersectNegativeSide(upPlane()))
	if len(negative) != 2 || negative[0] != 3 || negative[1] != 2 {
		t.Errorf("negative side: got %v, want [3 2]", negative)
	}
}

func TestPlaneIntersectWithinDistance(t *testing.T) {
	o := newTestIndex()
	o.Insert(1, "near", mgl32.Vec3{0, 0, 1.5})
	o.Insert(2, "far", mgl32.Vec3{0, 0, 25})
	o.Insert(3, "near below", mgl32.Vec3{0, 0, -2})

	hits := o.PlaneIntersectWithinDistance(upPlane(), 3)

	got := entityIDs(hits)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("got %v, want [1 3]", got)
	}
}

func TestBoundedEntityLargerThanCell(t *testing.T) {
	o := newTestIndex()
	// The box's home cell ([10,20) in z) never touches the plane, but its
	// extent does; it must still be found, and found exactly once.
	bounds := NewEntityBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 31})
	o.InsertBounded(1, "tall", mgl32.Vec3{0, 0, 15}, bounds)

	hits := o.PlaneIntersectAll(upPlane(), 0)
	if len(hits) != 1 || hits[0].EntityID() != 1 {
		t.Fatalf("tolerance-0 query: got %v, want [1]", entityIDs(hits))
	}
	if hits[0].Type() != Intersecting {
		t.Errorf("type: got %v, want %v", hits[0].Type(), Intersecting)
	}
	if !approxEq(hits[0].DistanceFromPlane(), -1) {
		t.Errorf("distance: got %g, want -1", hits[0].DistanceFromPlane())
	}

	within := o.PlaneIntersectWithinDistance(upPlane(), 2)
	if len(within) != 1 || within[0].EntityID() != 1 {
		t.Fatalf("within-distance query: got %v, want [1]", entityIDs(within))
	}

	if !o.Remove(1) {
		t.Fatal("expected Remove to report true")
	}
	if hits := o.PlaneIntersectAll(upPlane(), 0); len(hits) != 0 {
		t.Errorf("query after remove: got %v", entityIDs(hits))
	}
	if o.Count() != 0 {
		t.Errorf("count after remove: got %d, want 0", o.Count())
	}
}

func TestRemoveAndCount(t *testing.T) {
	o := newTestIndex()
	o.Insert(1, "a", mgl32.Vec3{0, 0, 1})
	o.Insert(2, "b", mgl32.Vec3{0, 0, 2})

	if o.Count() != 2 {
		t.Fatalf("count after insert: got %d, want 2", o.Count())
	}
	if !o.Remove(1) {
		t.Error("expected Remove of known entity to report true")
	}
	if o.Remove(99) {
		t.Error("expected Remove of unknown entity to report false")
	}
	if o.Count() != 1 {
		t.Errorf("count after remove: got %d, want 1", o.Count())
	}

	hits := o.PlaneIntersectPositiveSide(upPlane())
	if len(hits) != 1 || hits[0].EntityID() != 2 {
		t.Errorf("query after remove: got %v", entityIDs(hits))
	}
}

func TestInsertReplacesExistingEntity(t *testing.T) {
	o := newTestIndex()
	o.Insert(1, "first", mgl32.Vec3{0, 0, 5})
	o.Insert(1, "second", mgl32.Vec3{0, 0, -5})

	if o.Count() != 1 {
		t.Fatalf("count: got %d, want 1", o.Count())
	}
	hits := o.PlaneIntersectNegativeSide(upPlane())
	if len(hits) != 1 || hits[0].Content() != "second" {
		t.Fatalf("expected replaced entity on negative side, got %v", entityIDs(hits))
	}
}

func TestUpdatePositionMovesAcrossPlane(t *testing.T) {
	o := newTestIndex()
	o.InsertBounded(1, "mover", mgl32.Vec3{0, 0, 5}, NewEntityBoundsAround(mgl32.Vec3{0, 0, 5}, 1))

	if err := o.UpdatePosition(1, mgl32.Vec3{0, 0, -5}); err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	if err := o.UpdatePosition(42, mgl32.Vec3{}); err == nil {
		t.Error("expected error for unknown entity")
	}

	if hits := o.PlaneIntersectPositiveSide(upPlane()); len(hits) != 0 {
		t.Errorf("positive side after move: got %v", entityIDs(hits))
	}

	negative := o.PlaneIntersectNegativeSide(upPlane())
	if len(negative) != 1 || negative[0].EntityID() != 1 {
		t.Fatalf("negative side after move: got %v", entityIDs(negative))
	}
	// Bounds travel with the entity: the near corner is now at z=-4.
	if d := negative[0].DistanceFromPlane(); !approxEq(d, -4) {
		t.Errorf("moved entity distance: got %g, want -4", d)
	}
}
