package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// skewed quadrilateral in right-hand-rule order
var testQuad = [4]Point{
	{X: 0, Y: 0, Z: 0},
	{X: 2, Y: 0.25, Z: 0},
	{X: 1.75, Y: 1.5, Z: 0.5},
	{X: -0.25, Y: 1, Z: 0},
}

func TestPixelOrder(t *testing.T) {
	px := PixelOrder(testQuad)
	assert.Equal(t, testQuad[0], px[0])
	assert.Equal(t, testQuad[1], px[1])
	assert.Equal(t, testQuad[3], px[2])
	assert.Equal(t, testQuad[2], px[3])
}

// Interpolation of the root quadrant reproduces the tree corners exactly
func TestQuadrantCorners_RootIsExact(t *testing.T) {
	px := PixelOrder(testQuad)
	corners := QuadrantCorners(px, 0, 0, 1)
	for i := range corners {
		assert.Equal(t, px[i], corners[i], "corner %d", i)
	}
}

func TestBlendQuad_Midpoints(t *testing.T) {
	px := PixelOrder(testQuad)
	mid := BlendQuad(px, 0.5, 0)
	assert.InDelta(t, 1.0, mid.X, 1e-15)
	assert.InDelta(t, 0.125, mid.Y, 1e-15)

	center := BlendQuad(px, 0.5, 0.5)
	assert.InDelta(t, (0+2+1.75-0.25)/4, center.X, 1e-15)
	assert.InDelta(t, (0+0.25+1.5+1)/4, center.Y, 1e-15)
	assert.InDelta(t, 0.125, center.Z, 1e-15)
}

// Neighboring quadrants evaluate their shared corners to identical values
func TestQuadrantCorners_SharedCornersAgree(t *testing.T) {
	px := PixelOrder(testQuad)
	h := 1.0 / 8
	for j := 0; j < 8; j++ {
		for i := 0; i < 7; i++ {
			left := QuadrantCorners(px, float64(i)*h, float64(j)*h, h)
			right := QuadrantCorners(px, float64(i+1)*h, float64(j)*h, h)
			assert.Equal(t, left[1], right[0])
			assert.Equal(t, left[3], right[2])
		}
	}
	// a quadrant twice the size shares its corners with the small ones
	big := QuadrantCorners(px, 0.5, 0.5, 0.25)
	small := QuadrantCorners(px, 0.625, 0.625, 0.125)
	assert.Equal(t, big[3], small[3])
}

func TestOctantCorners_RootIsExact(t *testing.T) {
	var v [8]Point
	for k := 0; k < 2; k++ {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				v[i+2*j+4*k] = Point{X: float64(i) + 0.1*float64(j), Y: float64(j), Z: float64(k) * 3}
			}
		}
	}
	corners := OctantCorners(v, 0, 0, 0, 1)
	assert.Equal(t, v, corners)

	c := BlendHex(v, 0.5, 0.5, 0.5)
	assert.InDelta(t, 0.55, c.X, 1e-15)
	assert.InDelta(t, 0.5, c.Y, 1e-15)
	assert.InDelta(t, 1.5, c.Z, 1e-15)
}
