package geometry

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     Point
		expected int
	}{
		{"identical", Point{X: 1, Y: 2, Z: 3}, Point{X: 1, Y: 2, Z: 3}, 0},
		{"x decides", Point{X: 0, Y: 9, Z: 9}, Point{X: 1, Y: 0, Z: 0}, -1},
		{"x decides reversed", Point{X: 1, Y: 0, Z: 0}, Point{X: 0, Y: 9, Z: 9}, 1},
		{"y decides", Point{X: 1, Y: 0.25}, Point{X: 1, Y: 0.5}, -1},
		{"z decides", Point{X: 1, Y: 1, Z: 2}, Point{X: 1, Y: 1, Z: 1}, 1},
		{"below eps", Point{X: 0.5}, Point{X: 0.5 + 1e-16}, 0},
		{"below eps every axis", Point{X: 1e-16, Y: -1e-16, Z: 5e-16}, Point{}, 0},
		{"at eps", Point{X: 0}, Point{X: Eps}, -1},
		{"x within eps, y apart", Point{X: 1e-16, Y: 1}, Point{X: 0, Y: 0}, 1},
		{"negative zero", Point{X: -0.0}, Point{X: 0}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Compare(tc.a, tc.b))
			assert.Equal(t, -tc.expected, Compare(tc.b, tc.a), "antisymmetry")
		})
	}
}

func TestCompare_SortsLexicographically(t *testing.T) {
	pts := []Point{
		{X: 1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0.5, Y: 0.5, Z: -1},
	}
	sort.Slice(pts, func(i, j int) bool { return Compare(pts[i], pts[j]) < 0 })
	assert.Equal(t, []Point{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0.5, Y: 0.5, Z: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
	}, pts)
}

func TestEqualModulo(t *testing.T) {
	periods := []Point{{X: 1}, {Y: 1}}

	assert.True(t, EqualModulo(Point{X: 0, Y: 0.5}, Point{X: 1, Y: 0.5}, periods))
	assert.True(t, EqualModulo(Point{X: 0, Y: 0}, Point{X: 1, Y: 1}, periods))
	assert.True(t, EqualModulo(Point{X: 1, Y: 0}, Point{X: 0, Y: 1}, periods))
	assert.True(t, EqualModulo(Point{X: 0.25}, Point{X: 0.25}, nil))
	assert.False(t, EqualModulo(Point{X: 0, Y: 0.5}, Point{X: 1, Y: 0.25}, periods))
	assert.False(t, EqualModulo(Point{X: 0}, Point{X: 1}, nil))
	assert.False(t, EqualModulo(Point{X: 0}, Point{X: 2}, periods), "only nearest images")
}

func TestBoundsAndExtent(t *testing.T) {
	pts := []Point{{X: -1, Y: 2}, {X: 3, Y: -4, Z: 0.5}}
	lo, hi := Bounds(pts)
	assert.Equal(t, Point{X: -1, Y: -4}, lo)
	assert.Equal(t, Point{X: 3, Y: 2, Z: 0.5}, hi)
	assert.Equal(t, 4.0, Extent(pts))
	assert.Equal(t, 0.0, Extent(nil))
}

func TestDimensionality_NumCorners(t *testing.T) {
	assert.Equal(t, 4, D2.NumCorners())
	assert.Equal(t, 8, D3.NumCorners())
	assert.Panics(t, func() { Dimensionality(7).NumCorners() })
}
