// Package fs provides the filesystem abstraction behind local whole-file
// reads and writes, with fault injection for tests.
//
//   - [FileSystem]: the operations faultkit needs (open, remove, rename, stat).
//   - [LocalFS]: production implementation using the os package.
//   - [FaultyFS]: wraps another FileSystem and fails writes, syncs or closes
//     on demand.
//
// [WriteFileAtomic] writes through a temporary sibling file and renames it
// into place, so readers observe either the old contents or the complete new
// contents, never a prefix.
//
// Operations take no context.Context. Local filesystem calls are short and
// not interruptible at the syscall level.
package fs
