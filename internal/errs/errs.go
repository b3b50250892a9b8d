// Package errs holds the error sentinels shared by every faultkit package.
//
// Public packages re-export these values so callers never import this package
// directly; errors.Is works across package boundaries because the sentinels
// are the same values.
package errs

import "errors"

var (
	// ErrInvalidArgument is returned when an input is empty, nil or outside its domain.
	// It is always reported before any work is done.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAllocation is returned when a working buffer cannot be reserved.
	ErrAllocation = errors.New("allocation failed")
)
