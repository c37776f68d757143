package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
)

// MaxMemberNames is the largest number of names a member names payload can hold.
const MaxMemberNames = math.MaxUint16

// EncodeMemberNames encodes a list of "interface.member" names into a length-prefixed
// binary format.
// Format: [Count: uint16] [Len1: uint16][Name1: UTF-8] [Len2: uint16][Name2: UTF-8] ...
//
// Parameters:
//   - names: The ordered list of member names to encode
//   - engine: The endian engine to use for the count and length fields
//
// Returns:
//   - []byte: The encoded member names payload
//   - error: An error if there are more than MaxMemberNames names or one is too long
func EncodeMemberNames(names []string, engine endian.EndianEngine) ([]byte, error) {
	if len(names) > MaxMemberNames {
		return nil, fmt.Errorf("%w: %d names exceed maximum %d", errs.ErrInvalidMemberNamesCount, len(names), MaxMemberNames)
	}

	totalSize := 2
	for _, name := range names {
		if len(name) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: %d byte name exceeds maximum length", errs.ErrInvalidMemberNamesPayload, len(name))
		}
		totalSize += 2 + len(name)
	}

	buf := make([]byte, 0, totalSize)
	buf = engine.AppendUint16(buf, uint16(len(names))) //nolint:gosec
	for _, name := range names {
		buf = engine.AppendUint16(buf, uint16(len(name))) //nolint:gosec
		buf = append(buf, name...)
	}

	return buf, nil
}

// DecodeMemberNames decodes a payload written by EncodeMemberNames.
//
// Parameters:
//   - data: The payload, starting at the count field
//   - engine: The endian engine used to encode it
//
// Returns:
//   - []string: The decoded names, in order
//   - int: The number of bytes consumed
//   - error: errs.ErrInvalidMemberNamesPayload if data is truncated
func DecodeMemberNames(data []byte, engine endian.EndianEngine) ([]string, int, error) {
	if len(data) < 2 {
		return nil, 0, fmt.Errorf("%w: cannot read count (need 2 bytes, have %d)", errs.ErrInvalidMemberNamesPayload, len(data))
	}

	count := int(engine.Uint16(data))
	offset := 2
	// each name takes at least its length prefix
	if len(data)-offset < count*2 {
		return nil, 0, fmt.Errorf("%w: %d names cannot fit in %d bytes", errs.ErrInvalidMemberNamesPayload, count, len(data))
	}

	names := make([]string, count)
	for i := range names {
		if len(data) < offset+2 {
			return nil, 0, fmt.Errorf("%w: cannot read length of name %d at offset %d", errs.ErrInvalidMemberNamesPayload, i, offset)
		}
		n := int(engine.Uint16(data[offset:]))
		offset += 2

		if len(data) < offset+n {
			return nil, 0, fmt.Errorf("%w: name %d needs %d bytes at offset %d, have %d",
				errs.ErrInvalidMemberNamesPayload, i, n, offset, len(data)-offset)
		}
		names[i] = string(data[offset : offset+n])
		offset += n
	}

	return names, offset, nil
}

// VerifyMemberNames checks that every name hashes to one of the recorded member IDs.
//
// Parameters:
//   - names: The decoded member names
//   - ids: The set of member IDs found in the index
//   - hashFunc: The function that computed the IDs
//
// Returns:
//   - error: errs.ErrHashMismatch naming the first name whose hash was never recorded
func VerifyMemberNames(names []string, ids map[uint64]struct{}, hashFunc func(string) uint64) error {
	for i, name := range names {
		id := hashFunc(name)
		if _, ok := ids[id]; !ok {
			return fmt.Errorf("%w: name %q at %d hashes to 0x%016x", errs.ErrHashMismatch, name, i, id)
		}
	}

	return nil
}
