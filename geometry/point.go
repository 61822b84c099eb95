package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Dimensionality represents the spatial dimension of a tree's reference domain
type Dimensionality uint8

const (
	D2 Dimensionality = iota + 2 // quadtrees: reference square, 4 corners
	D3                           // octrees: reference cube, 8 corners
)

// NumCorners returns the number of corner vertices of a reference cell
func (d Dimensionality) NumCorners() int {
	switch d {
	case D2:
		return 4
	case D3:
		return 8
	default:
		panic(fmt.Errorf("unsupported dimensionality %d", d))
	}
}

// Point is a location in physical space. Two dimensional forests embed
// their trees in 3D and carry the z coordinate along unchanged.
type Point = r3.Vec

// Eps is the absolute tolerance below which two coordinates are equal. It
// assumes coordinates live in a normalized, bounded domain.
const Eps = 1e-15

// Bounds returns the axis aligned bounding box of pts
func Bounds(pts []Point) (lo, hi Point) {
	if len(pts) == 0 {
		return
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Y, hi.Y = min(lo.Y, p.Y), max(hi.Y, p.Y)
		lo.Z, hi.Z = min(lo.Z, p.Z), max(hi.Z, p.Z)
	}
	return
}

// Extent returns the largest absolute coordinate found in pts
func Extent(pts []Point) float64 {
	var m float64
	for _, p := range pts {
		m = max(m, math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z))
	}
	return m
}
