package lucien

import "github.com/go-gl/mathgl/mgl32"

// EntityBounds is the axis-aligned extent of an entity at query time.
type EntityBounds struct {
	Min mgl32.Vec3 `json:"min"`
	Max mgl32.Vec3 `json:"max"`
}

// NewEntityBounds builds bounds from min and max corners. The caller is
// responsible for min <= max on every axis.
func NewEntityBounds(min, max mgl32.Vec3) EntityBounds {
	return EntityBounds{Min: min, Max: max}
}

// NewEntityBoundsAround builds a cube of the given half extent centered on
// a point.
func NewEntityBoundsAround(center mgl32.Vec3, halfExtent float32) EntityBounds {
	e := mgl32.Vec3{halfExtent, halfExtent, halfExtent}
	return EntityBounds{Min: center.Sub(e), Max: center.Add(e)}
}

// Center returns the midpoint of the box.
func (b EntityBounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether p lies inside or on the box.
func (b EntityBounds) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Corners returns the eight corners of the box.
func (b EntityBounds) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Min.Z()},
		{b.Min.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Max.Y(), b.Min.Z()},
		{b.Min.X(), b.Min.Y(), b.Max.Z()},
		{b.Max.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Max.Z()},
		{b.Max.X(), b.Max.Y(), b.Max.Z()},
	}
}

// ClosestPointToPlane returns the point of the box nearest the plane: the
// center projected onto the plane, clamped back into the box.
func (b EntityBounds) ClosestPointToPlane(pl Plane3D) mgl32.Vec3 {
	c := b.Center()
	proj := c.Sub(pl.Normal.Mul(pl.DistanceToPoint(c)))
	return mgl32.Vec3{
		clamp32(proj.X(), b.Min.X(), b.Max.X()),
		clamp32(proj.Y(), b.Min.Y(), b.Max.Y()),
		clamp32(proj.Z(), b.Min.Z(), b.Max.Z()),
	}
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
