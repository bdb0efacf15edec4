package lucien

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane3D is an infinite plane in normal-constant form: a point p lies on
// the plane when Dot(Normal, p) + D == 0. The normal is kept normalized so
// DistanceToPoint returns true euclidean distance.
type Plane3D struct {
	Normal mgl32.Vec3
	D      float32
}

// NewPlane builds the plane through point with the given normal. The
// normal is normalized; signed distances point toward it.
func NewPlane(point, normal mgl32.Vec3) Plane3D {
	n := normal.Normalize()
	return Plane3D{Normal: n, D: -n.Dot(point)}
}

// NewPlaneFromPoints builds the plane through a, b, and c. The normal
// follows the winding: (b-a) x (c-a).
func NewPlaneFromPoints(a, b, c mgl32.Vec3) Plane3D {
	return NewPlane(a, b.Sub(a).Cross(c.Sub(a)))
}

// DistanceToPoint returns the signed distance from p to the plane,
// positive on the side the normal points toward.
func (pl Plane3D) DistanceToPoint(p mgl32.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

func (pl Plane3D) String() string {
	return fmt.Sprintf("Plane3D[normal=(%g, %g, %g), d=%.3f]",
		pl.Normal.X(), pl.Normal.Y(), pl.Normal.Z(), pl.D)
}
