package corrupt

import (
	"fmt"
	"math"

	"github.com/hupe1980/faultkit/internal/errs"
)

// ErrInvalidArgument is returned for out-of-domain addresses or empty input.
var ErrInvalidArgument = errs.ErrInvalidArgument

// Region is a resolved byte range [Offset, Offset+Count).
type Region struct {
	Offset int
	Count  int
}

// End returns the exclusive end offset.
func (r Region) End() int { return r.Offset + r.Count }

func (r Region) String() string {
	return fmt.Sprintf("[%d, %d)", r.Offset, r.End())
}

// ValidateFraction checks a fractional address without a buffer length.
// loc must lie in [0, 1) and size must be positive.
func ValidateFraction(loc, size float64) error {
	if math.IsNaN(loc) || loc < 0 || loc >= 1 {
		return fmt.Errorf("%w: loc must be in [0.0 ... 1.0), got %v", ErrInvalidArgument, loc)
	}
	if math.IsNaN(size) || size <= 0 {
		return fmt.Errorf("%w: size must be > 0.0, got %v", ErrInvalidArgument, size)
	}
	return nil
}

// Resolve converts a fractional address into a Region of a buffer with total bytes.
func Resolve(total int, loc, size float64) (Region, error) {
	if err := ValidateFraction(loc, size); err != nil {
		return Region{}, err
	}
	if total <= 0 {
		return Region{}, fmt.Errorf("%w: empty buffer", ErrInvalidArgument)
	}

	if loc+size > 1 {
		size = 1 - loc
	}

	offset := roundHalfUp(loc * float64(total))
	offset = min(offset, total-1)

	count := roundHalfUp(size * float64(total))
	count = max(1, count)
	count = min(count, total-offset)

	return Region{Offset: offset, Count: count}, nil
}

// roundHalfUp rounds a non-negative value to the nearest integer, halves up.
func roundHalfUp(v float64) int {
	return int(v + 0.5)
}
