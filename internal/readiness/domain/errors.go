package readiness

import "errors"

var (
	// ErrNotFound indicates a readiness or notification record does not exist.
	ErrNotFound = errors.New("readiness: not found")
	// ErrPlantNotFound indicates the referenced plant is not registered.
	ErrPlantNotFound = errors.New("readiness: plant not found")
)
