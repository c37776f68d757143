package capture

import (
	"fmt"
	"time"

	"github.com/arloliu/dbuswire/compress"
	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/internal/collision"
	"github.com/arloliu/dbuswire/internal/encoding"
	"github.com/arloliu/dbuswire/internal/hash"
	"github.com/arloliu/dbuswire/internal/options"
	"github.com/arloliu/dbuswire/internal/pool"
	"github.com/arloliu/dbuswire/message"
)

// initialIndexCapacity is the starting capacity of the index slice.
const initialIndexCapacity = 64

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithCompression sets the codec applied to the data section. The default is Zstd.
func WithCompression(c format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		codec, err := compress.CreateCodec(c, "capture data")
		if err != nil {
			return err
		}
		w.header.Flag.SetDataCompression(c)
		w.codec = codec

		return nil
	})
}

// WithLittleEndian writes the header and index little-endian. This is the default.
func WithLittleEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.header.Flag.WithLittleEndian()
	})
}

// WithBigEndian writes the header and index big-endian.
func WithBigEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.header.Flag.WithBigEndian()
	})
}

// WithMemberNames stores a table of the distinct "interface.member" names after the
// index, so readers can list members without parsing messages. The table is always
// written when two members share a hash.
func WithMemberNames(enabled bool) WriterOption {
	return options.NoError(func(w *Writer) {
		w.memberNames = enabled
	})
}

// Writer records messages into a capture.
//
// Messages are stored as their raw bytes, in append order, together with an index entry
// holding the member hash, serial and receive time. A Writer is not safe for concurrent
// use and cannot be reused after Finish.
type Writer struct {
	header      *Header
	engine      endian.EndianEngine
	codec       compress.Codec
	entries     []IndexEntry
	data        *pool.ByteBuffer
	members     *collision.Tracker
	memberNames bool
	finished    bool
}

// NewWriter creates a Writer for a capture that starts at startTime.
//
// Parameters:
//   - startTime: Reference time; every appended message must be recorded at or after it
//   - opts: Compression and byte order options
//
// Returns:
//   - *Writer: New capture writer
//   - error: An option error
func NewWriter(startTime time.Time, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		header:  NewHeader(startTime),
		codec:   compress.NewZstdCompressor(),
		entries: make([]IndexEntry, 0, initialIndexCapacity),
		members: collision.NewTracker(),
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}
	w.engine = w.header.Flag.GetEndianEngine()
	w.data = pool.GetCaptureBuffer()

	return w, nil
}

// Append records msg as received at the given time.
//
// The message's interface and member are read through its field cache to compute the
// member hash that Reader.ByMember filters on.
//
// Returns:
//   - error: errs.ErrWriterFinished, errs.ErrTooManyMessages, errs.ErrTimestampOutOfOrder,
//     errs.ErrTimestampOutOfRange, errs.ErrMessageTooLarge, or a field read error
func (w *Writer) Append(msg *message.Message, at time.Time) error {
	if w.finished {
		return errs.ErrWriterFinished
	}
	if len(w.entries) >= MaxMessages {
		return errs.ErrTooManyMessages
	}

	delta := at.UnixMicro() - w.header.StartTime
	if delta < 0 {
		return fmt.Errorf("%w: %s", errs.ErrTimestampOutOfOrder, at.Format(time.RFC3339Nano))
	}
	if delta > MaxDelta {
		return fmt.Errorf("%w: %dus after start", errs.ErrTimestampOutOfRange, delta)
	}

	raw := msg.Bytes()
	if w.data.Len()+len(raw) > MaxDataSize {
		return fmt.Errorf("%w: capture data section is full", errs.ErrMessageTooLarge)
	}

	id, err := w.memberID(msg)
	if err != nil {
		return err
	}

	w.entries = append(w.entries, IndexEntry{
		MemberID: id,
		Serial:   msg.Serial(),
		Offset:   uint32(w.data.Len()), //nolint:gosec
		Size:     uint32(len(raw)),     //nolint:gosec
		Delta:    uint32(delta),        //nolint:gosec
	})
	_, _ = w.data.Write(raw)

	return nil
}

// memberID hashes the message's interface and member, or returns 0 if it has no member.
// Hashed members are tracked for the member name table.
func (w *Writer) memberID(msg *message.Message) (uint64, error) {
	member, ok, err := msg.Member()
	if err != nil || !ok {
		return 0, err
	}

	iface, _, err := msg.Interface()
	if err != nil {
		return 0, err
	}

	id := hash.MemberID(string(iface), string(member))
	if err := w.members.Track(string(iface), string(member), id); err != nil {
		return 0, err
	}

	return id, nil
}

// Members returns the distinct "interface.member" names appended so far, in first-seen
// order.
func (w *Writer) Members() []string {
	return w.members.Names()
}

// Len returns the number of messages appended so far.
func (w *Writer) Len() int {
	return len(w.entries)
}

// Finish assembles the capture: header, index, the optional member name table, then the
// compressed data section.
//
// After Finish the Writer releases its buffer and rejects further calls.
func (w *Writer) Finish() ([]byte, error) {
	if w.finished {
		return nil, errs.ErrWriterFinished
	}
	w.finished = true
	defer func() {
		pool.PutCaptureBuffer(w.data)
		w.data = nil
	}()

	compressed, err := w.codec.Compress(w.data.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress capture data: %w", err)
	}

	var table []byte
	if w.memberNames || w.members.HasCollision() {
		table, err = encoding.EncodeMemberNames(w.members.Names(), w.engine)
		if err != nil {
			return nil, err
		}
	}

	indexSize := len(w.entries) * IndexEntrySize
	h := w.header
	h.Flag.SetMemberNames(table != nil)
	h.MessageCount = uint32(len(w.entries))                    //nolint:gosec
	h.DataOffset = uint32(HeaderSize + indexSize + len(table)) //nolint:gosec
	h.DataSize = uint32(len(compressed))                       //nolint:gosec
	h.RawDataSize = uint32(w.data.Len())                       //nolint:gosec

	out := make([]byte, HeaderSize+indexSize+len(table)+len(compressed))
	copy(out, h.Bytes())
	for i := range w.entries {
		off := HeaderSize + i*IndexEntrySize
		if err := w.entries[i].WriteToSlice(out[off:off+IndexEntrySize], w.engine); err != nil {
			return nil, err
		}
	}
	copy(out[HeaderSize+indexSize:], table)
	copy(out[h.DataOffset:], compressed)

	return out, nil
}
