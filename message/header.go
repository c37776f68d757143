package message

import (
	"fmt"

	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/field"
	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/names"
)

const (
	// FixedHeaderSize is the size of the fixed prefix: endianness, type, flags, version,
	// body length and serial.
	FixedHeaderSize = 12

	// PrefixSize is the number of leading bytes needed to compute a message's total size:
	// the fixed prefix plus the header field array length.
	PrefixSize = 16
)

// Header is a decoded message header.
//
// Text values in its fields are views into the buffer passed to Decode; the buffer must not
// be modified while the header or any value read from it is in use.
type Header struct {
	Type       format.MessageType
	Flags      format.Flags
	Version    uint8
	BodyLength uint32
	Serial     uint32

	engine    endian.EndianEngine
	fields    *field.Fields
	bodyStart int
}

var _ field.HeaderView = (*Header)(nil)

// Decode decodes the header at the start of buf.
//
// buf must hold at least the complete header including its trailing padding; the body may
// be missing. Header fields with unknown codes are skipped when their value has a basic
// type. Decode does not copy: text fields share buf's memory.
//
// Parameters:
//   - buf: Raw message bytes, starting with the endianness flag
//
// Returns:
//   - *Header: The decoded header
//   - error: errs.ErrTruncated, errs.ErrInvalidEndian, errs.ErrInvalidMessageType,
//     errs.ErrUnsupportedVersion, errs.ErrInvalidSerial, errs.ErrMessageTooLarge,
//     errs.ErrInvalidPadding, errs.ErrFieldTypeMismatch, errs.ErrMissingField,
//     or a name validation error
func Decode(buf []byte) (*Header, error) {
	if len(buf) < PrefixSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d for the header prefix", errs.ErrTruncated, len(buf), PrefixSize)
	}

	engine, err := endian.FromFlag(buf[0])
	if err != nil {
		return nil, fmt.Errorf("%w: 0x%02x", err, buf[0])
	}

	h := &Header{
		Type:       format.MessageType(buf[1]),
		Flags:      format.Flags(buf[2]),
		Version:    buf[3],
		BodyLength: engine.Uint32(buf[4:8]),
		Serial:     engine.Uint32(buf[8:12]),
		engine:     engine,
		fields:     field.NewFields(),
	}

	if !h.Type.IsValid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidMessageType, buf[1])
	}
	if h.Version != format.ProtocolVersion {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}
	if h.Serial == 0 {
		return nil, errs.ErrInvalidSerial
	}

	arrayLen := engine.Uint32(buf[FixedHeaderSize:PrefixSize])
	if arrayLen > format.MaxArrayLength {
		return nil, fmt.Errorf("%w: header field array of %d bytes", errs.ErrMessageTooLarge, arrayLen)
	}

	fieldsEnd := PrefixSize + int(arrayLen)
	h.bodyStart = align8(fieldsEnd)
	if total := uint64(h.bodyStart) + uint64(h.BodyLength); total > format.MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrMessageTooLarge, total)
	}
	if len(buf) < h.bodyStart {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", errs.ErrTruncated, len(buf), h.bodyStart)
	}

	r := &wireReader{buf: buf[:fieldsEnd], pos: PrefixSize, engine: engine}
	for r.pos < fieldsEnd {
		if err := r.align(8); err != nil {
			return nil, err
		}
		if err := decodeField(r, h.fields); err != nil {
			return nil, err
		}
	}

	// padding between the field array and the body
	tail := &wireReader{buf: buf[:h.bodyStart], pos: fieldsEnd, engine: engine}
	if err := tail.align(8); err != nil {
		return nil, err
	}

	if err := checkRequired(h.Type, h.fields); err != nil {
		return nil, err
	}
	if h.BodyLength > 0 {
		if _, ok := h.Signature(); !ok {
			return nil, errs.ErrBodySignature
		}
	}

	return h, nil
}

func decodeField(r *wireReader, fields *field.Fields) error {
	b, err := r.readByte()
	if err != nil {
		return err
	}
	code := format.FieldCode(b)
	if code == format.FieldInvalid {
		return fmt.Errorf("%w: 0 at offset %d", errs.ErrInvalidFieldCode, r.pos-1)
	}

	sig, err := r.readSignature()
	if err != nil {
		return err
	}

	if !code.IsKnown() {
		if len(sig) != 1 {
			return fmt.Errorf("%w: code %d with signature %q", errs.ErrInvalidFieldCode, code, sig)
		}

		return r.skipBasic(sig[0])
	}

	if len(sig) != 1 || sig[0] != code.Signature() {
		return fmt.Errorf("%w: %s carries %q, want %q", errs.ErrFieldTypeMismatch, code, sig, code.Signature())
	}

	f, err := decodeValue(r, code)
	if err != nil {
		return fmt.Errorf("header field %s: %w", code, err)
	}
	fields.Add(f)

	return nil
}

func decodeValue(r *wireReader, code format.FieldCode) (field.Field, error) {
	switch code.Signature() {
	case 'u':
		v, err := r.readUint32()
		if err != nil {
			return field.Field{}, err
		}
		if code == format.FieldReplySerial {
			if v == 0 {
				return field.Field{}, errs.ErrInvalidSerial
			}

			return field.NewReplySerial(v), nil
		}

		return field.NewUnixFDs(v), nil
	case 'g':
		s, err := r.readSignature()
		if err != nil {
			return field.Field{}, err
		}
		sig, err := names.ParseSignature(s)
		if err != nil {
			return field.Field{}, err
		}

		return field.NewSignature(sig), nil
	}

	s, err := r.readString()
	if err != nil {
		return field.Field{}, err
	}

	return textField(code, s)
}

// textField validates s as the name type code carries and wraps it in a Field.
func textField(code format.FieldCode, s string) (field.Field, error) {
	switch code {
	case format.FieldPath:
		v, err := names.ParseObjectPath(s)
		return field.NewPath(v), err
	case format.FieldInterface:
		v, err := names.ParseInterfaceName(s)
		return field.NewInterface(v), err
	case format.FieldMember:
		v, err := names.ParseMemberName(s)
		return field.NewMember(v), err
	case format.FieldErrorName:
		v, err := names.ParseErrorName(s)
		return field.NewErrorName(v), err
	case format.FieldDestination:
		v, err := names.ParseBusName(s)
		return field.NewDestination(v), err
	case format.FieldSender:
		v, err := names.ParseBusName(s)
		return field.NewSender(v), err
	case format.FieldSignature:
		v, err := names.ParseSignature(s)
		return field.NewSignature(v), err
	default:
		return field.Field{}, fmt.Errorf("%w: %s is not a text field", errs.ErrFieldTypeMismatch, code)
	}
}

// checkRequired verifies that fields holds every field the message type requires.
func checkRequired(t format.MessageType, fields *field.Fields) error {
	var required []format.FieldCode
	switch t {
	case format.TypeMethodCall:
		required = []format.FieldCode{format.FieldPath, format.FieldMember}
	case format.TypeSignal:
		required = []format.FieldCode{format.FieldPath, format.FieldInterface, format.FieldMember}
	case format.TypeError:
		required = []format.FieldCode{format.FieldErrorName, format.FieldReplySerial}
	case format.TypeMethodReturn:
		required = []format.FieldCode{format.FieldReplySerial}
	default:
		return fmt.Errorf("%w: %d", errs.ErrInvalidMessageType, t)
	}

	for _, code := range required {
		if _, ok := fields.Get(code); !ok {
			return fmt.Errorf("%w: %s requires %s", errs.ErrMissingField, t, code)
		}
	}

	return nil
}

func align8(n int) int {
	return (n + 7) &^ 7
}

// Path returns the object path field.
func (h *Header) Path() (names.ObjectPath, bool, error) {
	f, ok := h.fields.Get(format.FieldPath)
	if !ok {
		return "", false, nil
	}
	v, _ := f.Path()

	return v, true, nil
}

// Interface returns the interface field.
func (h *Header) Interface() (names.InterfaceName, bool, error) {
	f, ok := h.fields.Get(format.FieldInterface)
	if !ok {
		return "", false, nil
	}
	v, _ := f.Interface()

	return v, true, nil
}

// Member returns the member field.
func (h *Header) Member() (names.MemberName, bool, error) {
	f, ok := h.fields.Get(format.FieldMember)
	if !ok {
		return "", false, nil
	}
	v, _ := f.Member()

	return v, true, nil
}

// ReplySerial returns the reply serial field.
func (h *Header) ReplySerial() (uint32, bool, error) {
	f, ok := h.fields.Get(format.FieldReplySerial)
	if !ok {
		return 0, false, nil
	}
	v, _ := f.ReplySerial()

	return v, true, nil
}

// ErrorName returns the error name field.
func (h *Header) ErrorName() (names.ErrorName, bool) {
	f, ok := h.fields.Get(format.FieldErrorName)
	if !ok {
		return "", false
	}

	return f.ErrorName()
}

// Destination returns the destination field.
func (h *Header) Destination() (names.BusName, bool) {
	f, ok := h.fields.Get(format.FieldDestination)
	if !ok {
		return "", false
	}

	return f.Destination()
}

// Sender returns the sender field.
func (h *Header) Sender() (names.BusName, bool) {
	f, ok := h.fields.Get(format.FieldSender)
	if !ok {
		return "", false
	}

	return f.Sender()
}

// Signature returns the body signature field.
func (h *Header) Signature() (names.Signature, bool) {
	f, ok := h.fields.Get(format.FieldSignature)
	if !ok {
		return "", false
	}

	return f.Signature()
}

// UnixFDs returns the file descriptor count field.
func (h *Header) UnixFDs() (uint32, bool) {
	f, ok := h.fields.Get(format.FieldUnixFDs)
	if !ok {
		return 0, false
	}

	return f.UnixFDs()
}

// Fields returns a copy of the decoded header fields in wire order. Changing the copy
// does not affect the header.
func (h *Header) Fields() *field.Fields {
	return h.fields.Clone()
}

// Engine returns the byte order the message was encoded with.
func (h *Header) Engine() endian.EndianEngine {
	return h.engine
}

// BodyOffset returns the offset of the body from the start of the message.
func (h *Header) BodyOffset() int {
	return h.bodyStart
}

// Size returns the total message size: header, padding and body.
func (h *Header) Size() int {
	return h.bodyStart + int(h.BodyLength)
}
