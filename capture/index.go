package capture

import (
	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
)

// IndexEntry locates one recorded message. Entries are fixed-size so the index supports
// random access by position.
//
// Offsets are absolute within the decompressed data section:
//
//	message 0: 48 bytes → Offset=0,  Size=48
//	message 1: 96 bytes → Offset=48, Size=96
//	direct access: data[entry.Offset : entry.Offset+entry.Size]
type IndexEntry struct {
	// MemberID is the xxHash64 of "interface.member", or 0 for messages without a member.
	MemberID uint64 // 8 bytes, offset 0-7

	// Serial is the message serial.
	Serial uint32 // 4 bytes, offset 8-11

	// Offset is the byte offset of the message in the data section.
	Offset uint32 // 4 bytes, offset 12-15

	// Size is the length of the message in bytes.
	Size uint32 // 4 bytes, offset 16-19

	// Delta is the time since the capture's start time, in microseconds.
	Delta uint32 // 4 bytes, offset 20-23
}

// WriteToSlice writes the entry to b, which must be at least IndexEntrySize bytes.
func (e *IndexEntry) WriteToSlice(b []byte, engine endian.EndianEngine) error {
	if len(b) < IndexEntrySize {
		return errs.ErrInvalidIndexEntrySize
	}

	engine.PutUint64(b[0:8], e.MemberID)
	engine.PutUint32(b[8:12], e.Serial)
	engine.PutUint32(b[12:16], e.Offset)
	engine.PutUint32(b[16:20], e.Size)
	engine.PutUint32(b[20:24], e.Delta)

	return nil
}

// End returns the offset just past the message.
func (e IndexEntry) End() uint64 {
	return uint64(e.Offset) + uint64(e.Size)
}

// ParseIndexEntry parses an index entry from the start of data.
func ParseIndexEntry(data []byte, engine endian.EndianEngine) (IndexEntry, error) {
	if len(data) < IndexEntrySize {
		return IndexEntry{}, errs.ErrInvalidIndexEntrySize
	}

	return IndexEntry{
		MemberID: engine.Uint64(data[0:8]),
		Serial:   engine.Uint32(data[8:12]),
		Offset:   engine.Uint32(data[12:16]),
		Size:     engine.Uint32(data[16:20]),
		Delta:    engine.Uint32(data[20:24]),
	}, nil
}
