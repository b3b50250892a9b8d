// Package resource bounds the memory held by corruption buffers, the number
// of concurrent campaign trials, and the byte rate of output writes.
//
// A nil *Controller is valid and imposes no limits.
package resource
