package connectivity

import "errors"

var (
	ErrUnknownConnectivity = errors.New("unknown connectivity")
	ErrInvalidMesh         = errors.New("invalid quadrilateral mesh")
)
