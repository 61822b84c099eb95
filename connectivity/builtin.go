package connectivity

import (
	"fmt"
	"math"

	"github.com/notargets/quadforest/geometry"
)

// NewUnitSquare returns a single tree covering [0,1]^2 with boundary faces
func NewUnitSquare() *Connectivity {
	return NewBrick(1, 1, false, false)
}

// NewPeriodic returns a single tree covering [0,1]^2 whose opposite faces are
// glued to each other.
func NewPeriodic() *Connectivity {
	return NewBrick(1, 1, true, true)
}

// NewBrick returns an nx × ny grid of unit trees covering [0,nx]×[0,ny],
// optionally periodic in x and/or y.
func NewBrick(nx, ny int32, periodicX, periodicY bool) *Connectivity {
	if nx <= 0 || ny <= 0 {
		panic(fmt.Errorf("invalid brick dimensions %d×%d", nx, ny))
	}
	vid := func(i, j int32) int32 { return j*(nx+1) + i }
	conn := New(nx*ny, (nx+1)*(ny+1))
	for j := int32(0); j <= ny; j++ {
		for i := int32(0); i <= nx; i++ {
			conn.SetVertex(vid(i, j), geometry.Point{X: float64(i), Y: float64(j)})
		}
	}
	tid := func(i, j int32) int32 { return j*nx + i }
	for j := int32(0); j < ny; j++ {
		for i := int32(0); i < nx; i++ {
			copy(conn.TreeToVertex[NumCorners*tid(i, j):], []int32{
				vid(i, j), vid(i+1, j), vid(i+1, j+1), vid(i, j+1),
			})
		}
	}
	if err := conn.BuildFaceLinks(); err != nil {
		panic(err)
	}
	if periodicX {
		for j := int32(0); j < ny; j++ {
			conn.SetFaceLink(tid(nx-1, j), 1, tid(0, j), 3, 0)
		}
		conn.Periods = append(conn.Periods, geometry.Point{X: float64(nx)})
	}
	if periodicY {
		for i := int32(0); i < nx; i++ {
			conn.SetFaceLink(tid(i, ny-1), 2, tid(i, 0), 0, 0)
		}
		conn.Periods = append(conn.Periods, geometry.Point{Y: float64(ny)})
	}
	return conn
}

// NewStar returns six trees arranged around a shared center vertex. Tree k
// spans the center, the spoke vertex at angle 60k degrees, an outer vertex at
// 60k+30 degrees and the next spoke vertex.
func NewStar() *Connectivity {
	const (
		numTrees = 6
		spoke    = 1.0
		outer    = 1.25
	)
	conn := New(numTrees, 1+2*numTrees)
	conn.SetVertex(0, geometry.Point{})
	for k := int32(0); k < numTrees; k++ {
		phi := float64(k) * math.Pi / 3
		conn.SetVertex(1+k, geometry.Point{X: spoke * math.Cos(phi), Y: spoke * math.Sin(phi)})
		phi += math.Pi / 6
		conn.SetVertex(1+numTrees+k, geometry.Point{X: outer * math.Cos(phi), Y: outer * math.Sin(phi)})
	}
	for k := int32(0); k < numTrees; k++ {
		copy(conn.TreeToVertex[NumCorners*k:], []int32{
			0, 1 + k, 1 + numTrees + k, 1 + (k+1)%numTrees,
		})
	}
	if err := conn.BuildFaceLinks(); err != nil {
		panic(err)
	}
	return conn
}

// Builtin returns a named builtin connectivity
func Builtin(name string) (*Connectivity, error) {
	switch name {
	case "unitsquare":
		return NewUnitSquare(), nil
	case "periodic":
		return NewPeriodic(), nil
	case "star":
		return NewStar(), nil
	case "brick":
		return NewBrick(3, 2, false, false), nil
	case "periodic-brick":
		return NewBrick(3, 2, true, true), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownConnectivity, name)
}
