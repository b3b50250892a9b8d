// Package random provides the pseudo-random sources used by the corruption
// operations, and uniform draws on closed integer intervals.
//
// Two implementations are offered and the choice is the caller's:
//
//   - [Rand]: a thread-confined PCG generator. Give each goroutine its own.
//   - [Locked]: a mutex-guarded wrapper safe for sharing.
//
// A process default exists for convenience. [Default] returns it, [SetDefault]
// replaces it for every later caller, and [ResetDefault] restores a fresh one
// seeded with [DefaultSeed]. Reseeding the default through [GenIntOnInterval]
// is visible to everyone sharing it.
package random
