package math

import "github.com/ungerik/go3d/float64/vec3"

// Box is an axis-aligned bounding box. The zero value is empty.
type Box struct {
	Min, Max vec3.T
	valid    bool
}

// Extend grows the box to include p.
func (b *Box) Extend(p vec3.T) {
	if !b.valid {
		b.Min, b.Max = p, p
		b.valid = true
		return
	}
	for i := range p {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Empty returns true if no point has been added.
func (b Box) Empty() bool {
	return !b.valid
}

// Size returns the extent along each axis.
func (b Box) Size() vec3.T {
	return vec3.Sub(&b.Max, &b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() vec3.T {
	return vec3.Interpolate(&b.Min, &b.Max, 0.5)
}

// Diagonal returns the length of the box diagonal.
func (b Box) Diagonal() float64 {
	s := b.Size()
	return s.Length()
}
