package morphology

import "math"

// Offset is a neighbour position relative to the pixel being filtered.
type Offset struct {
	DY, DX int
}

// StructuringElement is a flat neighbourhood used by the rank filters.
type StructuringElement struct {
	// Radius is the disk radius the element was built from.
	Radius float64

	// Offsets lists every neighbour, including the centre.
	Offsets []Offset
}

// Disk builds a flat disk with the Matlab strel('disk') convention: the
// element spans int(radius) pixels in each direction and keeps the offsets
// with dx*dx + dy*dy <= radius*radius. A radius below zero is treated as 0,
// which yields the single centre pixel.
func Disk(radius float64) StructuringElement {
	if radius < 0 || math.IsNaN(radius) {
		radius = 0
	}
	iradius := int(radius)
	radius2 := radius * radius

	offsets := make([]Offset, 0, (2*iradius+1)*(2*iradius+1))
	for dy := -iradius; dy <= iradius; dy++ {
		for dx := -iradius; dx <= iradius; dx++ {
			if float64(dx*dx+dy*dy) <= radius2 {
				offsets = append(offsets, Offset{DY: dy, DX: dx})
			}
		}
	}
	return StructuringElement{Radius: radius, Offsets: offsets}
}

// Size returns the number of pixels in the element.
func (se StructuringElement) Size() int {
	return len(se.Offsets)
}

// Contains reports whether the element includes the given offset.
func (se StructuringElement) Contains(dy, dx int) bool {
	for _, o := range se.Offsets {
		if o.DY == dy && o.DX == dx {
			return true
		}
	}
	return false
}
