package gamemap

import "errors"

// Construction and lookup errors. Concrete errors wrap one of these and name
// the offending coordinates.
var (
	ErrOutOfBounds     = errors.New("point out of bounds")
	ErrMalformedPlan   = errors.New("malformed floor plan")
	ErrInvalidRoom     = errors.New("invalid room")
	ErrInvalidCorridor = errors.New("invalid corridor")
	ErrInvalidLevel    = errors.New("invalid level")
	ErrNoTraversable   = errors.New("no traversable point")
)
