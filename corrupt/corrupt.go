package corrupt

import (
	"fmt"

	"github.com/hupe1980/faultkit/random"
)

// Advisory is a non-fatal condition. The operation that raised it still
// produced a complete output.
type Advisory struct {
	Op      string
	Message string
}

func (a *Advisory) String() string {
	return a.Op + ": " + a.Message
}

// Delete returns data with the bytes of r removed.
func Delete(data []byte, r Region) []byte {
	out := make([]byte, len(data)-r.Count)
	n := copy(out, data[:r.Offset])
	copy(out[n:], data[r.End():])
	return out
}

// Mutate returns a copy of data whose bytes in r are drawn uniformly from
// [0, 255] using src. The output has the same length as data.
func Mutate(data []byte, r Region, src random.Source) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	random.Bytes(src, out[r.Offset:r.End()])
	return out
}

// Replace removes count bytes at start and inserts repl in their place.
// repl may be empty or of a different length than count.
//
// When start+count runs past the end of data, Replace returns an Advisory and
// splices using the bytes that exist: start is clamped to len(data) and count
// to the remainder.
func Replace(data []byte, start, count int, repl []byte) ([]byte, *Advisory, error) {
	if start < 0 || count < 0 {
		return nil, nil, fmt.Errorf("%w: start and count must be >= 0, got %d and %d",
			ErrInvalidArgument, start, count)
	}

	var adv *Advisory
	if start > len(data) || count > len(data)-start {
		adv = &Advisory{
			Op:      "replace",
			Message: fmt.Sprintf("start + count > length(input) = %d", len(data)),
		}
		start = min(start, len(data))
		count = len(data) - start
	}

	out := make([]byte, 0, len(data)-count+len(repl))
	out = append(out, data[:start]...)
	out = append(out, repl...)
	out = append(out, data[start+count:]...)
	return out, adv, nil
}
