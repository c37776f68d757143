package capture

import (
	"fmt"
	"iter"
	"time"

	"github.com/arloliu/dbuswire/compress"
	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/internal/encoding"
	"github.com/arloliu/dbuswire/internal/hash"
	"github.com/arloliu/dbuswire/message"
	"github.com/arloliu/dbuswire/names"
)

// Record is one recorded message with its position and receive time.
type Record struct {
	Index   int
	Time    time.Time
	Message *message.Message
}

// Reader gives random access to the messages of a capture.
//
// The data section is decompressed once by Open. Messages returned by the Reader are
// parsed on demand as views into that shared buffer, so their field caches address it
// directly. A Reader is immutable and safe for concurrent use.
type Reader struct {
	header  Header
	entries []IndexEntry
	members []string
	data    []byte
}

// Open parses a capture produced by Writer.Finish.
//
// Parameters:
//   - data: Complete capture bytes; not retained when the data section is compressed
//
// Returns:
//   - *Reader: Reader over the capture
//   - error: Header, index or decompression errors; errs.ErrInvalidIndexEntry if an entry
//     points outside the data section
func Open(data []byte) (*Reader, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	if header.MessageCount > MaxMessages {
		return nil, fmt.Errorf("%w: %d", errs.ErrTooManyMessages, header.MessageCount)
	}
	indexEnd := uint64(header.IndexOffset) + uint64(header.MessageCount)*IndexEntrySize
	hasNames := header.Flag.HasMemberNames()
	if header.IndexOffset != IndexOffsetOffset || uint64(header.DataOffset) < indexEnd ||
		(!hasNames && uint64(header.DataOffset) != indexEnd) {
		return nil, fmt.Errorf("%w: index at %d, data at %d", errs.ErrInvalidIndexEntrySize, header.IndexOffset, header.DataOffset)
	}
	dataEnd := uint64(header.DataOffset) + uint64(header.DataSize)
	if dataEnd > uint64(len(data)) {
		return nil, fmt.Errorf("%w: data section ends at %d, capture is %d bytes", errs.ErrDataSizeMismatch, dataEnd, len(data))
	}
	if header.RawDataSize > MaxDataSize {
		return nil, fmt.Errorf("%w: raw data section of %d bytes", errs.ErrMessageTooLarge, header.RawDataSize)
	}

	codec, err := compress.GetCodec(header.Flag.GetDataCompression())
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(data[header.DataOffset:dataEnd])
	if err != nil {
		return nil, fmt.Errorf("decompress capture data: %w", err)
	}
	if uint64(len(raw)) != uint64(header.RawDataSize) {
		return nil, fmt.Errorf("%w: decompressed %d bytes, header says %d", errs.ErrDataSizeMismatch, len(raw), header.RawDataSize)
	}

	engine := header.Flag.GetEndianEngine()
	entries := make([]IndexEntry, header.MessageCount)
	for i := range entries {
		off := int(header.IndexOffset) + i*IndexEntrySize
		entry, err := ParseIndexEntry(data[off:off+IndexEntrySize], engine)
		if err != nil {
			return nil, err
		}
		if entry.Size == 0 || entry.End() > uint64(len(raw)) {
			return nil, fmt.Errorf("%w: entry %d [%d:%d] of %d", errs.ErrInvalidIndexEntry, i, entry.Offset, entry.End(), len(raw))
		}
		entries[i] = entry
	}

	var members []string
	if hasNames {
		members, err = decodeMembers(data[indexEnd:header.DataOffset], entries, engine)
		if err != nil {
			return nil, err
		}
	}

	return &Reader{header: header, entries: entries, members: members, data: raw}, nil
}

// decodeMembers parses the member name table and checks it against the index.
func decodeMembers(payload []byte, entries []IndexEntry, engine endian.EndianEngine) ([]string, error) {
	members, n, err := encoding.DecodeMemberNames(payload, engine)
	if err != nil {
		return nil, err
	}
	if n != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidMemberNamesPayload, len(payload)-n)
	}

	ids := make(map[uint64]struct{}, len(members))
	for _, e := range entries {
		if e.MemberID != 0 {
			ids[e.MemberID] = struct{}{}
		}
	}
	if err := encoding.VerifyMemberNames(members, ids, hash.ID); err != nil {
		return nil, err
	}

	return members, nil
}

// Members returns the capture's "interface.member" names in first-seen order, or nil
// if it was written without a member name table.
func (r *Reader) Members() []string {
	return r.members
}

// Len returns the number of messages in the capture.
func (r *Reader) Len() int {
	return len(r.entries)
}

// StartTime returns the capture's reference time.
func (r *Reader) StartTime() time.Time {
	return r.header.StartTimeAsTime()
}

// Header returns the parsed capture header.
func (r *Reader) Header() Header {
	return r.header
}

// CompressionStats reports how well the data section compressed.
func (r *Reader) CompressionStats() compress.CompressionStats {
	return compress.CompressionStats{
		Algorithm:      r.header.Flag.GetDataCompression(),
		OriginalSize:   int64(r.header.RawDataSize),
		CompressedSize: int64(r.header.DataSize),
	}
}

// Entry returns the index entry of the i-th message.
func (r *Reader) Entry(i int) (IndexEntry, error) {
	if i < 0 || i >= len(r.entries) {
		return IndexEntry{}, fmt.Errorf("%w: %d of %d", errs.ErrMessageIndexOutOfRange, i, len(r.entries))
	}

	return r.entries[i], nil
}

// Message parses the i-th message.
func (r *Reader) Message(i int) (*message.Message, error) {
	entry, err := r.Entry(i)
	if err != nil {
		return nil, err
	}

	return message.Parse(r.data[entry.Offset:entry.End()])
}

// Timestamp returns when the i-th message was recorded.
func (r *Reader) Timestamp(i int) (time.Time, error) {
	entry, err := r.Entry(i)
	if err != nil {
		return time.Time{}, err
	}

	return r.timestamp(entry), nil
}

func (r *Reader) timestamp(e IndexEntry) time.Time {
	return time.UnixMicro(r.header.StartTime + int64(e.Delta))
}

// All returns an iterator over every message in recording order.
//
// A message that fails to parse is yielded with its error; iteration continues if the
// consumer keeps going.
func (r *Reader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for i := range r.entries {
			if !yield(r.record(i)) {
				return
			}
		}
	}
}

// ByMember returns an iterator over the messages calling or emitting iface.member.
//
// Entries are filtered by member hash first; each candidate's interface and member are
// then compared, so hash collisions never produce false matches.
func (r *Reader) ByMember(iface names.InterfaceName, member names.MemberName) iter.Seq2[Record, error] {
	id := hash.MemberID(string(iface), string(member))

	return func(yield func(Record, error) bool) {
		for i, e := range r.entries {
			if e.MemberID != id {
				continue
			}

			rec, err := r.record(i)
			if err != nil {
				if !yield(rec, err) {
					return
				}

				continue
			}

			ok, err := matches(rec.Message, iface, member)
			if err == nil && !ok {
				continue
			}
			if !yield(rec, err) {
				return
			}
		}
	}
}

func (r *Reader) record(i int) (Record, error) {
	e := r.entries[i]
	rec := Record{Index: i, Time: r.timestamp(e)}

	msg, err := message.Parse(r.data[e.Offset:e.End()])
	if err != nil {
		return rec, fmt.Errorf("message %d: %w", i, err)
	}
	rec.Message = msg

	return rec, nil
}

func matches(msg *message.Message, iface names.InterfaceName, member names.MemberName) (bool, error) {
	gotMember, ok, err := msg.Member()
	if err != nil || !ok || gotMember != member {
		return false, err
	}

	gotIface, _, err := msg.Interface()
	if err != nil {
		return false, err
	}

	return gotIface == iface, nil
}
