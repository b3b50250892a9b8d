// Package corrupt builds damaged copies of byte buffers: removal or
// randomization of a fractionally addressed region, and exact byte splices.
//
// Every transform takes the input buffer by reference, never modifies it, and
// returns a freshly allocated output. File and blob handling live in the root
// faultkit package.
//
// # Fractional addressing
//
// A region is given as (loc, size), both fractions of the buffer length.
// [Resolve] converts it to byte offsets:
//
//	offset = round(loc * total), clamped to [0, total-1]
//	count  = max(1, round(size * total)), clamped to total-offset
//
// If loc+size exceeds 1.0 the region runs to the end of the buffer.
package corrupt
