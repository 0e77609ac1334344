// Package fststrings provides the zero-copy byte/string conversions used by
// the character and factor column serializers when they turn a block's raw
// bytes back into Go strings. Adapted from pkg/strings (BytesToString /
// StringToBytes / Clone), modernized to use unsafe.String/unsafe.Slice
// instead of that package's reflect.StringHeader-based conversion, which the
// Go team has deprecated in favor of the unsafe.String family (available
// since Go 1.20; this module's go.mod targets go1.21).
package fststrings

import "unsafe"

// BytesToString converts b to a string without copying. The returned string
// shares memory with b — the caller must not mutate b afterward.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBytes converts s to a byte slice without copying. The returned
// slice shares memory with s and must not be mutated or appended to in a
// way that lets Go relocate it.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Clone returns an independent copy of s, for when a string returned from
// BytesToString over a reusable scratch buffer needs to outlive the buffer.
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, s)
	return BytesToString(b)
}
