package field

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/internal/zerocopy"
)

// State is the resolution state of a Position.
type State uint8

const (
	// Unresolved means the field's location is unknown; reads fall back to a live lookup.
	Unresolved State = iota
	// Absent means the field is known not to be in the message.
	Absent
	// Resolved means the field's text lives at a known range of the buffer.
	Resolved
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "Unresolved"
	case Absent:
		return "Absent"
	case Resolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// Position records where a text field's value lives inside a message buffer.
//
// A Position does not hold the buffer. It is only meaningful together with the exact
// buffer it was built from, and every read re-checks the range against the buffer it is
// given. The zero value is Unresolved.
type Position struct {
	state State
	start uint32
	end   uint32
}

// BuildPosition locates value inside buf.
//
// value must be a view into buf, such as a string produced by zerocopy.String over a
// sub-slice of buf. It returns false when value is empty, does not lie inside buf, or its
// offsets do not fit in 32 bits.
func BuildPosition(buf []byte, value string) (Position, bool) {
	off, ok := zerocopy.Offset(buf, value)
	if !ok {
		return Position{}, false
	}

	end := off + len(value)
	if uint64(end) > math.MaxUint32 {
		return Position{}, false
	}

	return Position{state: Resolved, start: uint32(off), end: uint32(end)}, true //nolint:gosec
}

// NewPosition returns Absent when present is false. Otherwise it locates value inside buf,
// and returns Unresolved if that fails so the field is looked up again on read instead of
// being reported missing.
func NewPosition(buf []byte, value string, present bool) Position {
	if !present {
		return Position{state: Absent}
	}

	if p, ok := BuildPosition(buf, value); ok {
		return p
	}

	return Position{}
}

// State returns the resolution state.
func (p Position) State() State {
	return p.state
}

// Range returns the half-open byte range of a Resolved position.
func (p Position) Range() (start, end uint32) {
	return p.start, p.end
}

// IsAbsent reports whether the field is known to be missing.
func (p Position) IsAbsent() bool {
	return p.state == Absent
}

// IsResolved reports whether the field's range is known.
func (p Position) IsResolved() bool {
	return p.state == Resolved
}

func (p Position) String() string {
	if p.state == Resolved {
		return fmt.Sprintf("Resolved[%d:%d]", p.start, p.end)
	}

	return p.state.String()
}

// ReadPosition reconstructs the typed value p addresses in buf.
//
// For an Unresolved position it returns fallback's result unchanged. For an Absent position
// it returns the zero value and false without touching buf or calling fallback. For a
// Resolved position it views buf[start:end] as text without copying and converts it with
// parse; parse errors are returned as is.
//
// A range that falls outside buf or that does not hold valid UTF-8 means buf is not the
// buffer p was built from, or was modified; ReadPosition reports errs.ErrCorruptFieldCache.
//
// Parameters:
//   - p: Position captured when the message was received
//   - buf: The same buffer p was built from
//   - parse: Converts the text into the typed value
//   - fallback: Full lookup used when p is Unresolved
//
// Returns:
//   - T: The field value
//   - bool: Whether the field is present
//   - error: Conversion, corruption or fallback error
func ReadPosition[T ~string](p Position, buf []byte, parse func(string) (T, error), fallback func() (T, bool, error)) (T, bool, error) {
	var zero T

	switch p.state {
	case Absent:
		return zero, false, nil
	case Resolved:
		if p.start >= p.end || uint64(p.end) > uint64(len(buf)) {
			return zero, false, fmt.Errorf("%w: range [%d:%d] outside %d-byte buffer", errs.ErrCorruptFieldCache, p.start, p.end, len(buf))
		}

		text := zerocopy.String(buf[p.start:p.end])
		if !utf8.ValidString(text) {
			return zero, false, fmt.Errorf("%w: range [%d:%d] is not UTF-8", errs.ErrCorruptFieldCache, p.start, p.end)
		}

		v, err := parse(text)
		if err != nil {
			return zero, false, err
		}

		return v, true, nil
	default:
		return fallback()
	}
}
