package service

import (
	"errors"
	"fmt"
)

// ErrLocationNotFound signals that a location id does not exist
var ErrLocationNotFound = errors.New("location not found")

// ErrNoGeocodeMatch signals that geocoding returned zero candidates
var ErrNoGeocodeMatch = errors.New("no matching location found")

// ValidationError signals malformed input to a create or update operation
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Msg)
}

// IsNotFound reports whether err is one of the not-found conditions
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLocationNotFound) || errors.Is(err, ErrNoGeocodeMatch)
}
