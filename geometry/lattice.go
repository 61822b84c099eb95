package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrDegeneratePeriods = errors.New("periodic translations are not linearly independent")

// Lattice reduces points of a periodic domain to a single representative per
// class of periodic images.
type Lattice struct {
	periods []Point
	// tol[i] is Eps expressed as a fraction of period i
	tol []float64
	qr  mat.QR
}

// NewLattice factorizes the translation vectors. Nil or empty periods give a
// nil lattice, whose Reduce is the identity.
func NewLattice(periods []Point) (*Lattice, error) {
	if len(periods) == 0 {
		return nil, nil
	}
	if len(periods) > 3 {
		return nil, fmt.Errorf("%w: %d translations in 3D", ErrDegeneratePeriods, len(periods))
	}
	a := mat.NewDense(3, len(periods), nil)
	l := &Lattice{
		periods: periods,
		tol:     make([]float64, len(periods)),
	}
	for j, t := range periods {
		a.Set(0, j, t.X)
		a.Set(1, j, t.Y)
		a.Set(2, j, t.Z)
		n := r3.Norm(t)
		if n == 0 {
			return nil, fmt.Errorf("%w: translation %d is zero", ErrDegeneratePeriods, j)
		}
		l.tol[j] = Eps / n
	}
	l.qr.Factorize(a)
	if l.qr.Cond() > mat.ConditionTolerance {
		return nil, fmt.Errorf("%w: condition number %g", ErrDegeneratePeriods, l.qr.Cond())
	}
	return l, nil
}

// Reduce subtracts whole periods from p so that its lattice coordinates fall
// in [0, 1). Coordinates within Eps of a whole period snap to it, so a point
// and its periodic images reduce to points that Compare as equal.
func (l *Lattice) Reduce(p Point) Point {
	if l == nil {
		return p
	}
	var c mat.VecDense
	if err := l.qr.SolveVecTo(&c, false, mat.NewVecDense(3, []float64{p.X, p.Y, p.Z})); err != nil {
		// unreachable after the condition check in NewLattice
		panic(err)
	}
	for j, t := range l.periods {
		cj := c.AtVec(j)
		whole := math.Floor(cj)
		if cj-whole > 1-l.tol[j] {
			whole++
		}
		if whole != 0 {
			p = r3.Sub(p, r3.Scale(whole, t))
		}
	}
	return p
}
