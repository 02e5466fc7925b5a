package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from two opposite corners in any order
func NewAABB(a, b Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	bounds := AABB{Min: points[0], Max: points[0]}
	for _, point := range points[1:] {
		bounds.Min = bounds.Min.Min(point)
		bounds.Max = bounds.Max.Max(point)
	}

	return bounds
}

// Slab runs the slab test against the three pairs of parallel planes and
// returns the parametric entry and exit distances of the ray along with the
// axis of the entry face. A ray parallel to a slab whose origin lies outside
// it reports tNear > tFar.
func (aabb AABB) Slab(ray Ray) (tNear, tFar float64, axis int) {
	tNear = math.Inf(-1)
	tFar = math.Inf(1)

	for a := 0; a < 3; a++ {
		lo := aabb.Min.Axis(a)
		hi := aabb.Max.Axis(a)
		origin := ray.Origin.Axis(a)
		direction := ray.Direction.Axis(a)

		if direction == 0 {
			if origin < lo || origin > hi {
				return math.Inf(1), math.Inf(-1), a
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (lo - origin) * invDirection
		t2 := (hi - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		if t1 > tNear {
			tNear = t1
			axis = a
		}
		tFar = min(tFar, t2)
	}

	return tNear, tFar, axis
}

// Hit reports whether the ray overlaps the box anywhere in front of its
// origin and no farther than tMax
func (aabb AABB) Hit(ray Ray, tMax float64) bool {
	tNear, tFar, _ := aabb.Slab(ray)
	return tFar >= max(0, tNear) && tNear <= tMax
}

// Contains reports whether p lies inside the box or on its boundary
func (aabb AABB) Contains(p Vec3) bool {
	return p.X >= aabb.Min.X && p.X <= aabb.Max.X &&
		p.Y >= aabb.Min.Y && p.Y <= aabb.Max.Y &&
		p.Z >= aabb.Min.Z && p.Z <= aabb.Max.Z
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max)}
}

// Translate returns the box moved by offset
func (aabb AABB) Translate(offset Vec3) AABB {
	return AABB{Min: aabb.Min.Add(offset), Max: aabb.Max.Add(offset)}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}
