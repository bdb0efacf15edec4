package lucien

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// onPlaneEpsilon bounds the point-entity distance still treated as lying
// on the plane.
const onPlaneEpsilon = 1e-6

// planeAABBIntersection classifies a bounded entity against a plane by the
// signed distances of the eight box corners. All corners within tolerance
// of the plane reads as ON_PLANE with the averaged distance; corner
// distances of opposite sign read as INTERSECTING with the
// smaller-magnitude corner distance; otherwise the box is cleanly on one
// side and the reported distance is the near corner's.
func planeAABBIntersection[ID comparable, Content any](plane Plane3D, entityID ID, content Content, bounds EntityBounds, tolerance float32) PlaneIntersection[ID, Content] {
	minDist := float32(math.Inf(1))
	maxDist := float32(math.Inf(-1))
	var closest mgl32.Vec3

	for _, corner := range bounds.Corners() {
		d := plane.DistanceToPoint(corner)
		if d < minDist {
			minDist = d
			closest = corner
		}
		if d > maxDist {
			maxDist = d
		}
	}

	var kind IntersectionType
	var distance float32
	switch {
	case abs32(minDist) <= tolerance && abs32(maxDist) <= tolerance:
		kind = OnPlane
		distance = (minDist + maxDist) / 2
	case minDist*maxDist <= 0:
		kind = Intersecting
		if abs32(minDist) < abs32(maxDist) {
			distance = minDist
		} else {
			distance = maxDist
		}
		closest = bounds.ClosestPointToPlane(plane)
	case minDist > 0:
		kind = PositiveSide
		distance = minDist
	default:
		kind = NegativeSide
		distance = maxDist
	}

	b := bounds
	return NewPlaneIntersection(entityID, content, distance, closest, kind, &b)
}

// planePointIntersection classifies a point entity against a plane. The
// result carries nil bounds.
func planePointIntersection[ID comparable, Content any](plane Plane3D, entityID ID, content Content, point mgl32.Vec3) PlaneIntersection[ID, Content] {
	distance := plane.DistanceToPoint(point)

	var kind IntersectionType
	switch {
	case abs32(distance) <= onPlaneEpsilon:
		kind = OnPlane
	case distance > 0:
		kind = PositiveSide
	default:
		kind = NegativeSide
	}
	return NewPlaneIntersection(entityID, content, distance, point, kind, nil)
}

// planeIntersectsBox reports whether the box crosses the plane or comes
// within maxDistance of it. Used to reject whole index cells before
// per-entity classification.
func planeIntersectsBox(plane Plane3D, box EntityBounds, maxDistance float32) bool {
	minDist := float32(math.Inf(1))
	maxDist := float32(math.Inf(-1))
	for _, corner := range box.Corners() {
		d := plane.DistanceToPoint(corner)
		if d < minDist {
			minDist = d
		}
		if d > maxDist {
			maxDist = d
		}
	}
	if minDist*maxDist <= 0 {
		return true
	}
	nearest := abs32(minDist)
	if abs32(maxDist) < nearest {
		nearest = abs32(maxDist)
	}
	return nearest <= maxDistance
}

func abs32(f float32) float32 {
	return float32(math.Abs(float64(f)))
}
