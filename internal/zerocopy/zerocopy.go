// Package zerocopy converts between byte slices and strings without copying, and locates
// strings inside the buffers they were sliced from.
//
// Strings returned by String share memory with their source slice. The slice must not be
// modified for as long as the string is reachable; the garbage collector keeps the backing
// array alive, so lifetime is not a concern, only mutation.
package zerocopy

import "unsafe"

// String returns a string sharing b's bytes.
func String(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Offset returns the byte offset of s's data from the start of buf.
//
// It reports false when s is empty or when s does not lie entirely inside buf, which is
// the case for any string that was not sliced from buf.
func Offset(buf []byte, s string) (int, bool) {
	if len(s) == 0 || len(buf) == 0 {
		return 0, false
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	data := uintptr(unsafe.Pointer(unsafe.StringData(s)))
	if data < base {
		return 0, false
	}

	off := data - base
	size := uintptr(len(buf))
	if off >= size || uintptr(len(s)) > size-off {
		return 0, false
	}

	return int(off), true //nolint:gosec
}
