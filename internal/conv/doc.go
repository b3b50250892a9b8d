// Package conv provides checked integer conversions for sizes and offsets
// that cross type boundaries: blob sizes reported as int64 become buffer
// lengths, and region offsets become roaring bitmap members.
package conv
