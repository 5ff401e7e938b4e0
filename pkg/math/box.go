package math

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3
	Max Vec3
}

// EmptyBox returns an inverted box that any Extend call will replace.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// Valid reports whether Min <= Max on every axis.
func (b Box) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Extend returns the smallest box containing b and p.
func (b Box) Extend(p Vec3) Box {
	return Box{
		Min: Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// Center returns the midpoint of the box.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}
