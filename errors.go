package faultkit

import (
	"github.com/hupe1980/faultkit/blobstore"
	"github.com/hupe1980/faultkit/corrupt"
	"github.com/hupe1980/faultkit/internal/errs"
)

var (
	// ErrInvalidArgument is returned when an argument is out of range or empty.
	ErrInvalidArgument = errs.ErrInvalidArgument

	// ErrAllocation is returned when a buffer cannot be reserved within the
	// configured memory limit.
	ErrAllocation = errs.ErrAllocation

	// ErrNotFound is returned when an input blob does not exist.
	ErrNotFound = blobstore.ErrNotFound
)

// Advisory is a non-fatal condition attached to a Report.
type Advisory = corrupt.Advisory

// OpError records the operation and the blob that failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type OpError struct {
	Op   string
	Name string
	Err  error
}

func (e *OpError) Error() string {
	if e.Name == "" {
		return "faultkit: " + e.Op + ": " + e.Err.Error()
	}
	return "faultkit: " + e.Op + " " + e.Name + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }
