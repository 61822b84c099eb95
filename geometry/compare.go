package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Compare orders points lexicographically by x, then y, then z. Coordinates
// closer than Eps are treated as equal, so Compare returns 0 when all three
// differences fall below the tolerance.
func Compare(a, b Point) int {
	if math.Abs(a.X-b.X) >= Eps {
		return sign(a.X < b.X)
	}
	if math.Abs(a.Y-b.Y) >= Eps {
		return sign(a.Y < b.Y)
	}
	if math.Abs(a.Z-b.Z) >= Eps {
		return sign(a.Z < b.Z)
	}
	return 0
}

// Equal reports whether a and b are the same point within Eps
func Equal(a, b Point) bool {
	return Compare(a, b) == 0
}

// EqualModulo reports whether a and b coincide up to an integer combination
// of the given translations, each coefficient taken from {-1, 0, 1}. This is
// enough to identify corners of a periodic domain whose images lie in
// neighboring cells.
func EqualModulo(a, b Point, periods []Point) bool {
	if Equal(a, b) {
		return true
	}
	if len(periods) == 0 {
		return false
	}
	coef := make([]int, len(periods))
	for i := range coef {
		coef[i] = -1
	}
	for {
		shifted := b
		for i, c := range coef {
			shifted = r3.Add(shifted, r3.Scale(float64(c), periods[i]))
		}
		if Equal(a, shifted) {
			return true
		}
		// odometer over {-1,0,1}^n
		i := 0
		for ; i < len(coef); i++ {
			if coef[i] < 1 {
				coef[i]++
				break
			}
			coef[i] = -1
		}
		if i == len(coef) {
			return false
		}
	}
}

func sign(less bool) int {
	if less {
		return -1
	}
	return 1
}
