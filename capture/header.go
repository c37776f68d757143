package capture

import (
	"encoding/binary"
	"time"

	"github.com/arloliu/dbuswire/errs"
)

// Header is the fixed-size section at the start of a capture.
type Header struct {
	// Flag packs the byte order, magic number and data codec.
	Flag Flag // byte offset 0-3
	// StartTime is the capture's start time in Unix microseconds.
	StartTime int64 // byte offset 4-11
	// MessageCount is the number of recorded messages.
	MessageCount uint32 // byte offset 12-15
	// IndexOffset is the byte offset of the index section.
	IndexOffset uint32 // byte offset 16-19
	// DataOffset is the byte offset of the data section, right after the index.
	DataOffset uint32 // byte offset 20-23
	// DataSize is the size of the data section as stored, after compression.
	DataSize uint32 // byte offset 24-27
	// RawDataSize is the size of the data section after decompression.
	RawDataSize uint32 // byte offset 28-31
}

// NewHeader creates a header for a capture starting at startTime. Counts and offsets are
// filled in when the writer finishes.
func NewHeader(startTime time.Time) *Header {
	return &Header{
		Flag:        NewFlag(),
		StartTime:   startTime.UnixMicro(),
		IndexOffset: IndexOffsetOffset,
	}
}

// Parse parses the header from exactly HeaderSize bytes.
//
// The options field is always little-endian; it selects the byte order of the rest.
//
// Returns:
//   - error: errs.ErrInvalidHeaderSize, or a flag validation error
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Flag.Options = binary.LittleEndian.Uint16(data[0:2])
	h.Flag.DataCompression = data[2]
	h.Flag.Reserved = data[3]
	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()
	h.StartTime = int64(engine.Uint64(data[4:12])) //nolint:gosec
	h.MessageCount = engine.Uint32(data[12:16])
	h.IndexOffset = engine.Uint32(data[16:20])
	h.DataOffset = engine.Uint32(data[20:24])
	h.DataSize = engine.Uint32(data[24:28])
	h.RawDataSize = engine.Uint32(data[28:32])

	return nil
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := h.Flag.GetEndianEngine()

	binary.LittleEndian.PutUint16(b[0:2], h.Flag.Options)
	b[2] = h.Flag.DataCompression
	b[3] = h.Flag.Reserved
	engine.PutUint64(b[4:12], uint64(h.StartTime)) //nolint:gosec
	engine.PutUint32(b[12:16], h.MessageCount)
	engine.PutUint32(b[16:20], h.IndexOffset)
	engine.PutUint32(b[20:24], h.DataOffset)
	engine.PutUint32(b[24:28], h.DataSize)
	engine.PutUint32(b[28:32], h.RawDataSize)

	return b
}

// StartTimeAsTime returns the start time as a time.Time.
func (h *Header) StartTimeAsTime() time.Time {
	return time.UnixMicro(h.StartTime)
}

// ParseHeader parses a Header from the start of data.
//
// Parameters:
//   - data: Capture bytes (at least 32)
//
// Returns:
//   - Header: Parsed header
//   - error: errs.ErrInvalidHeaderSize or a flag validation error
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	var h Header
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
