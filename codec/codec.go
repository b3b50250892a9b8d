// Package codec provides the byte codecs whose decoders corruption campaigns
// exercise.
//
// Each codec turns a payload into an encoded document and back. Campaigns
// damage the encoded bytes and watch how Decode reacts: a robust decoder
// returns an error instead of silently handing back different bytes.
//
// Built-in codecs are selected by stable name with ByName.
package codec

import (
	"errors"
	"fmt"
	"sort"
)

// MaxDecodedSize bounds the output of every built-in decoder. Damaged length
// fields must not trigger unbounded allocations.
const MaxDecodedSize = 64 << 20

// ErrTooLarge is returned when a decoded payload would exceed MaxDecodedSize.
var ErrTooLarge = errors.New("codec: decoded payload too large")

// Codec encodes and decodes byte payloads.
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(src []byte) ([]byte, error)
	Decode(src []byte) ([]byte, error)
	Name() string
}

var builtins = map[string]Codec{
	"raw":  Raw{},
	"zstd": Zstd{},
	"s2":   S2{},
	"gzip": Gzip{},
	"lz4":  LZ4{},
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	c, ok := builtins[name]
	return c, ok
}

// Names returns the sorted names of all built-in codecs.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustEncode is a helper for tests.
func MustEncode(c Codec, src []byte) []byte {
	b, err := c.Encode(src)
	if err != nil {
		panic(fmt.Errorf("codec %s encode failed: %w", c.Name(), err))
	}
	return b
}

// Raw passes bytes through unchanged. Every corruption is silent.
type Raw struct{}

func (Raw) Name() string { return "raw" }

func (Raw) Encode(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

func (Raw) Decode(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}
