// Package hashkey provides deterministic 64-bit hash keys for strings, integer
// points and float64 values, plus the CRC32-Castagnoli checksum used to
// fingerprint buffers.
//
// None of the functions give cryptographic guarantees. The key functions are
// fixed by their constants and must produce bit-identical results on every
// IEEE-754 platform, so stored keys remain valid across builds.
//
// # Choosing a function
//
//   - [String]: spreads short text strings over all 64 bits; use the key directly.
//   - [StringFast]: Kernighan–Pike polynomial hash; reduce it with [Bucket]
//     using a prime table size (see the prime package).
//   - [Point]: collision-free for integer points in [0, 20000] x [0, 20000].
//   - [Float64]: bucket key for float64 values.
package hashkey
