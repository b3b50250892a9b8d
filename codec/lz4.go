package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lz4 blocks are prefixed by an 8-byte header:
// uncompressed size (uint32 LE) and compressed size (uint32 LE).
// A compressed size of 0 marks a block stored uncompressed.
const blockHeaderSize = 8

// LZ4 uses size-prefixed LZ4 blocks without a checksum.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) Encode(src []byte) ([]byte, error) {
	var n int
	compressed := make([]byte, lz4.CompressBlockBound(len(src)))
	if len(src) > 0 {
		var err error
		if n, err = lz4.CompressBlock(src, compressed, nil); err != nil {
			return nil, err
		}
	}

	out := make([]byte, blockHeaderSize, blockHeaderSize+max(n, len(src)))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(src)))
	if n == 0 {
		// Incompressible
		binary.LittleEndian.PutUint32(out[4:], 0)
		return append(out, src...), nil
	}
	binary.LittleEndian.PutUint32(out[4:], uint32(n))
	return append(out, compressed[:n]...), nil
}

func (LZ4) Decode(src []byte) ([]byte, error) {
	if len(src) < blockHeaderSize {
		return nil, errors.New("lz4: block too small for header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(src[0:])
	compressedSize := binary.LittleEndian.Uint32(src[4:])
	if uncompressedSize > MaxDecodedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, uncompressedSize)
	}

	body := src[blockHeaderSize:]
	if compressedSize == 0 {
		if uint32(len(body)) != uncompressedSize {
			return nil, errors.New("lz4: stored block size mismatch")
		}
		return append([]byte(nil), body...), nil
	}

	if uncompressedSize == 0 || uint32(len(body)) != compressedSize {
		return nil, errors.New("lz4: compressed block size mismatch")
	}

	out := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, err
	}
	if uint32(n) != uncompressedSize {
		return nil, errors.New("lz4: decompressed size mismatch")
	}
	return out, nil
}
