// Package mmap maps local files read-only into memory.
//
// The local blob store reads inputs through a mapping and copies the bytes it
// needs into an owned buffer before the mapping is closed.
//
//	m, err := mmap.Open("input.bin")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// # Platform Support
//
//   - Linux, macOS, BSD: mmap(2) with madvise(2) sequential hints.
//   - Other platforms: the file is read into a heap buffer.
//
// Close is idempotent. Callers must not touch Bytes() after Close returns.
package mmap
