package message

import (
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/field"
	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/names"
)

// Message is a complete bus message: its raw bytes, decoded header, and a cache of the
// fields read while routing it.
//
// A Message never changes after it is created and is safe for concurrent reads. It does
// not copy the buffer it was parsed from; the caller must not modify that buffer.
type Message struct {
	buf    []byte
	header *Header
	quick  field.Cache
}

var _ field.Source = (*Message)(nil)

// Parse decodes the message at the start of buf.
//
// buf may extend past the message; the Message keeps only its own bytes. The hot header
// fields (path, interface, member, reply serial) are located once here, so later reads
// of them only slice the buffer.
//
// Parameters:
//   - buf: Raw message bytes
//
// Returns:
//   - *Message: The parsed message, sharing buf's memory
//   - error: Any header decoding error, or errs.ErrTruncated if the body is incomplete
func Parse(buf []byte) (*Message, error) {
	h, err := Decode(buf)
	if err != nil {
		return nil, err
	}

	size := h.Size()
	if len(buf) < size {
		return nil, fmt.Errorf("%w: %d bytes, message needs %d", errs.ErrTruncated, len(buf), size)
	}
	buf = buf[:size:size]

	quick, err := field.NewCache(buf, h)
	if err != nil {
		return nil, err
	}

	return &Message{buf: buf, header: h, quick: quick}, nil
}

// ReadMessage reads exactly one message from r.
//
// It reads the fixed prefix first to learn the message size, then the rest into a single
// freshly allocated buffer that the returned Message owns.
func ReadMessage(r io.Reader) (*Message, error) {
	prefix := make([]byte, PrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, err
	}

	size, err := messageSize(prefix)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	copy(buf, prefix)
	if _, err := io.ReadFull(r, buf[PrefixSize:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return nil, err
	}

	return Parse(buf)
}

// messageSize validates the fixed fields of the 16-byte prefix and computes the total
// message size, so nothing is allocated for a prefix Decode would reject.
func messageSize(prefix []byte) (int, error) {
	engine, err := endian.FromFlag(prefix[0])
	if err != nil {
		return 0, fmt.Errorf("%w: 0x%02x", err, prefix[0])
	}
	if !format.MessageType(prefix[1]).IsValid() {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidMessageType, prefix[1])
	}
	if prefix[3] != format.ProtocolVersion {
		return 0, fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, prefix[3])
	}
	if engine.Uint32(prefix[8:12]) == 0 {
		return 0, errs.ErrInvalidSerial
	}

	bodyLen := uint64(engine.Uint32(prefix[4:8]))
	arrayLen := uint64(engine.Uint32(prefix[FixedHeaderSize:PrefixSize]))
	if arrayLen > format.MaxArrayLength {
		return 0, fmt.Errorf("%w: header field array of %d bytes", errs.ErrMessageTooLarge, arrayLen)
	}

	total := uint64(align8(PrefixSize+int(arrayLen))) + bodyLen
	if total > format.MaxMessageSize {
		return 0, fmt.Errorf("%w: %d bytes", errs.ErrMessageTooLarge, total)
	}

	return int(total), nil
}

// Bytes returns the raw message. It must not be modified.
func (m *Message) Bytes() []byte {
	return m.buf
}

// Header returns a copy of the header decoded when the message was parsed.
func (m *Message) Header() *Header {
	h := *m.header

	return &h
}

// HeaderView decodes the header again from the raw bytes, bypassing every cache.
func (m *Message) HeaderView() (field.HeaderView, error) {
	h, err := Decode(m.buf)
	if err != nil {
		return nil, err
	}

	return h, nil
}

// Path returns the object path.
func (m *Message) Path() (names.ObjectPath, bool, error) {
	return m.quick.Path(m)
}

// Interface returns the interface name.
func (m *Message) Interface() (names.InterfaceName, bool, error) {
	return m.quick.Interface(m)
}

// Member returns the method or signal name.
func (m *Message) Member() (names.MemberName, bool, error) {
	return m.quick.Member(m)
}

// ReplySerial returns the serial of the call this message replies to.
func (m *Message) ReplySerial() (uint32, bool, error) {
	return m.quick.ReplySerial(m)
}

// Type returns the message type.
func (m *Message) Type() format.MessageType {
	return m.header.Type
}

// Flags returns the header flags.
func (m *Message) Flags() format.Flags {
	return m.header.Flags
}

// Serial returns the message serial.
func (m *Message) Serial() uint32 {
	return m.header.Serial
}

// Body returns the raw body bytes.
func (m *Message) Body() []byte {
	return m.buf[m.header.BodyOffset():]
}

// BodySignature returns the body signature, or the empty signature if the message has no
// body.
func (m *Message) BodySignature() names.Signature {
	sig, _ := m.header.Signature()
	return sig
}

// Destination returns the destination bus name.
func (m *Message) Destination() (names.BusName, bool) {
	return m.header.Destination()
}

// Sender returns the sender's unique bus name.
func (m *Message) Sender() (names.BusName, bool) {
	return m.header.Sender()
}

// ErrorName returns the error name of an error reply.
func (m *Message) ErrorName() (names.ErrorName, bool) {
	return m.header.ErrorName()
}

// UnixFDs returns the number of file descriptors that accompany the message.
func (m *Message) UnixFDs() (uint32, bool) {
	return m.header.UnixFDs()
}

// Fields returns a copy of the decoded header fields. Changing the copy does not affect
// the message.
func (m *Message) Fields() *field.Fields {
	return m.header.Fields()
}

// Size returns the length of the message in bytes.
func (m *Message) Size() int {
	return len(m.buf)
}

// WriteTo writes the raw message to w.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.buf)
	return int64(n), err
}

func (m *Message) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s serial=%d", m.header.Type, m.header.Serial)
	for _, f := range m.header.fields.All() {
		sb.WriteByte(' ')
		sb.WriteString(f.String())
	}
	if len(m.Body()) > 0 {
		fmt.Fprintf(&sb, " body=%dB", len(m.Body()))
	}

	return sb.String()
}
