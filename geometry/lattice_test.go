package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLattice_Reduce(t *testing.T) {
	l, err := NewLattice([]Point{{X: 3}, {Y: 2}})
	require.NoError(t, err)

	testCases := []struct {
		name     string
		p        Point
		expected Point
	}{
		{"inside", Point{X: 1.5, Y: 0.5}, Point{X: 1.5, Y: 0.5}},
		{"right edge", Point{X: 3, Y: 0.5}, Point{X: 0, Y: 0.5}},
		{"top right corner", Point{X: 3, Y: 2}, Point{}},
		{"below zero", Point{X: -0.5, Y: -1}, Point{X: 2.5, Y: 1}},
		{"rounding below a period", Point{X: 3 - 4e-16, Y: 1}, Point{X: 0, Y: 1}},
		{"z untouched", Point{X: 4, Y: 0, Z: 7}, Point{X: 1, Z: 7}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, Equal(tc.expected, l.Reduce(tc.p)), "got %v", l.Reduce(tc.p))
		})
	}
}

func TestLattice_Skewed(t *testing.T) {
	l, err := NewLattice([]Point{{X: 1, Y: 1}})
	require.NoError(t, err)
	assert.True(t, Equal(Point{X: 0.25, Y: 0}, l.Reduce(Point{X: 1.25, Y: 1})))
}

func TestNewLattice(t *testing.T) {
	l, err := NewLattice(nil)
	require.NoError(t, err)
	assert.Nil(t, l)
	p := Point{X: 5}
	assert.Equal(t, p, l.Reduce(p), "nil lattice is the identity")

	for _, periods := range [][]Point{
		{{X: 1}, {X: 2}},
		{{}},
		{{X: 1}, {Y: 1}, {Z: 1}, {X: 1, Y: 1}},
	} {
		_, err := NewLattice(periods)
		assert.ErrorIs(t, err, ErrDegeneratePeriods, "%v", periods)
	}
}
