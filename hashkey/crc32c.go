package hashkey

import (
	"hash"
	"hash/crc32"
)

// castagnoli is the Castagnoli polynomial table shared by all checksums.
var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
// Corruption reports use it to fingerprint input and output buffers.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32 for incremental use.
func NewCRC32C() hash.Hash32 {
	return crc32.New(castagnoli)
}
