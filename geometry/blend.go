package geometry

import "gonum.org/v1/gonum/spatial/r3"

// PixelOrder converts the four corners of a tree from right-hand-rule
// (counter clockwise) order to pixel order, where corner i+2j sits at
// reference position (i, j).
func PixelOrder(rhr [4]Point) [4]Point {
	return [4]Point{rhr[0], rhr[1], rhr[3], rhr[2]}
}

// BlendQuad maps the reference point (a, b) in [0,1]^2 onto the quadrilateral
// spanned by the pixel ordered corners v:
//
//	p = v0(1-a)(1-b) + v1 a(1-b) + v2 (1-a)b + v3 ab
func BlendQuad(v [4]Point, a, b float64) Point {
	w := [4]float64{
		(1 - a) * (1 - b),
		a * (1 - b),
		(1 - a) * b,
		a * b,
	}
	var p Point
	for i := range v {
		p = r3.Add(p, r3.Scale(w[i], v[i]))
	}
	return p
}

// QuadrantCorners returns the physical corners of a quadrant whose lower left
// reference position is (eta1, eta2) and whose normalized side length is h.
// The result is in pixel order: index i+2j is the corner at (eta1+ih, eta2+jh).
func QuadrantCorners(v [4]Point, eta1, eta2, h float64) (corners [4]Point) {
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			corners[i+2*j] = BlendQuad(v, eta1+float64(i)*h, eta2+float64(j)*h)
		}
	}
	return
}

// BlendHex is the trilinear analogue of BlendQuad over the eight pixel
// ordered corners of a hexahedron, corner i+2j+4k at reference (i, j, k).
func BlendHex(v [8]Point, a, b, c float64) Point {
	ra := [2]float64{1 - a, a}
	rb := [2]float64{1 - b, b}
	rc := [2]float64{1 - c, c}
	var p Point
	for k := 0; k < 2; k++ {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				w := ra[i] * rb[j] * rc[k]
				p = r3.Add(p, r3.Scale(w, v[i+2*j+4*k]))
			}
		}
	}
	return p
}

// OctantCorners returns the eight physical corners of an octant in pixel order
func OctantCorners(v [8]Point, eta1, eta2, eta3, h float64) (corners [8]Point) {
	for k := 0; k < 2; k++ {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				corners[i+2*j+4*k] = BlendHex(v,
					eta1+float64(i)*h, eta2+float64(j)*h, eta3+float64(k)*h)
			}
		}
	}
	return
}
