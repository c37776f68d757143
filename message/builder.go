package message

import (
	"fmt"
	"sync/atomic"

	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/field"
	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/internal/options"
	"github.com/arloliu/dbuswire/internal/pool"
	"github.com/arloliu/dbuswire/names"
)

// BuilderOption configures a Builder.
type BuilderOption = options.Option[*Builder]

var serialCounter atomic.Uint32

// nextSerial returns a process-wide serial, skipping zero on wrap-around.
func nextSerial() uint32 {
	for {
		if s := serialCounter.Add(1); s != 0 {
			return s
		}
	}
}

// WithSerial sets an explicit serial instead of the next process-wide one.
func WithSerial(serial uint32) BuilderOption {
	return options.New(func(b *Builder) error {
		if serial == 0 {
			return errs.ErrInvalidSerial
		}
		b.serial = serial

		return nil
	})
}

// WithLittleEndian encodes the message little-endian.
func WithLittleEndian() BuilderOption {
	return options.NoError(func(b *Builder) {
		b.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian encodes the message big-endian.
func WithBigEndian() BuilderOption {
	return options.NoError(func(b *Builder) {
		b.engine = endian.GetBigEndianEngine()
	})
}

// WithFlags sets the header flags. Undefined bits are dropped.
func WithFlags(flags format.Flags) BuilderOption {
	return options.NoError(func(b *Builder) {
		b.flags = flags.Known()
	})
}

// Builder composes a message field by field.
//
// Setters replace any earlier field with the same code, so a built message carries each
// field at most once unless AddField was used. A Builder is not safe for concurrent use.
type Builder struct {
	typ     format.MessageType
	flags   format.Flags
	serial  uint32
	engine  endian.EndianEngine
	fields  *field.Fields
	bodySig names.Signature
	body    []byte
}

func newBuilder(typ format.MessageType, opts []BuilderOption) (*Builder, error) {
	b := &Builder{
		typ:    typ,
		engine: endian.Native(),
		fields: field.NewFields(),
	}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}
	if b.serial == 0 {
		b.serial = nextSerial()
	}

	return b, nil
}

// NewMethodCall starts a method call to member on the object at path.
//
// Parameters:
//   - path: Object path of the target object
//   - member: Method name
//   - opts: Optional serial, byte order and flags
//
// Returns:
//   - *Builder: Builder to add interface, destination and body to
//   - error: An option error
func NewMethodCall(path names.ObjectPath, member names.MemberName, opts ...BuilderOption) (*Builder, error) {
	b, err := newBuilder(format.TypeMethodCall, opts)
	if err != nil {
		return nil, err
	}

	return b.Path(path).Member(member), nil
}

// NewSignal starts a signal emitted by the object at path.
func NewSignal(path names.ObjectPath, iface names.InterfaceName, member names.MemberName, opts ...BuilderOption) (*Builder, error) {
	b, err := newBuilder(format.TypeSignal, opts)
	if err != nil {
		return nil, err
	}

	return b.Path(path).Interface(iface).Member(member), nil
}

// NewMethodReturn starts a reply to call. The reply is addressed to the call's sender when
// the call has one.
func NewMethodReturn(call *Message, opts ...BuilderOption) (*Builder, error) {
	b, err := newBuilder(format.TypeMethodReturn, opts)
	if err != nil {
		return nil, err
	}

	return b.replyTo(call), nil
}

// NewError starts an error reply to call.
func NewError(call *Message, name names.ErrorName, opts ...BuilderOption) (*Builder, error) {
	b, err := newBuilder(format.TypeError, opts)
	if err != nil {
		return nil, err
	}

	return b.replyTo(call).ErrorName(name), nil
}

func (b *Builder) replyTo(call *Message) *Builder {
	b.ReplySerial(call.Serial())
	if sender, ok := call.Sender(); ok {
		b.Destination(sender)
	}

	return b
}

// Path sets the object path.
func (b *Builder) Path(p names.ObjectPath) *Builder {
	b.fields.Replace(field.NewPath(p))
	return b
}

// Interface sets the interface name.
func (b *Builder) Interface(i names.InterfaceName) *Builder {
	b.fields.Replace(field.NewInterface(i))
	return b
}

// Member sets the method or signal name.
func (b *Builder) Member(m names.MemberName) *Builder {
	b.fields.Replace(field.NewMember(m))
	return b
}

// ErrorName sets the error name.
func (b *Builder) ErrorName(e names.ErrorName) *Builder {
	b.fields.Replace(field.NewErrorName(e))
	return b
}

// ReplySerial sets the serial of the call being replied to.
func (b *Builder) ReplySerial(serial uint32) *Builder {
	b.fields.Replace(field.NewReplySerial(serial))
	return b
}

// Destination sets the recipient's bus name.
func (b *Builder) Destination(d names.BusName) *Builder {
	b.fields.Replace(field.NewDestination(d))
	return b
}

// Sender sets the sender's bus name. Normally the bus fills this in.
func (b *Builder) Sender(s names.BusName) *Builder {
	b.fields.Replace(field.NewSender(s))
	return b
}

// UnixFDs sets the number of file descriptors sent with the message.
func (b *Builder) UnixFDs(n uint32) *Builder {
	b.fields.Replace(field.NewUnixFDs(n))
	return b
}

// AddField appends f without replacing existing fields with the same code.
func (b *Builder) AddField(f field.Field) *Builder {
	b.fields.Add(f)
	return b
}

// Body sets the marshalled body and its signature. The bytes are copied into the message
// when it is built. An empty signature removes any signature field set before.
func (b *Builder) Body(sig names.Signature, body []byte) *Builder {
	b.bodySig = sig
	b.body = body
	if sig == "" {
		b.fields.Remove(format.FieldSignature)
	}

	return b
}

// Fields returns the fields set so far.
func (b *Builder) Fields() *field.Fields {
	return b.fields
}

// Build encodes the message and parses it back into a Message that owns its buffer.
//
// Returns:
//   - *Message: The encoded message
//   - error: errs.ErrMissingField if the message type lacks a required field,
//     errs.ErrBodySignature for a body without signature, or a name validation error
func (b *Builder) Build() (*Message, error) {
	if len(b.body) > 0 && b.bodySig == "" {
		return nil, errs.ErrBodySignature
	}
	if b.bodySig != "" {
		b.fields.Replace(field.NewSignature(b.bodySig))
	}
	if err := checkRequired(b.typ, b.fields); err != nil {
		return nil, err
	}

	bb := pool.GetMessageBuffer()
	defer pool.PutMessageBuffer(bb)

	err := encode(bb, headerSpec{
		engine: b.engine,
		typ:    b.typ,
		flags:  b.flags,
		serial: b.serial,
		fields: b.fields,
		body:   b.body,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", b.typ, err)
	}

	buf := make([]byte, bb.Len())
	copy(buf, bb.Bytes())

	return Parse(buf)
}
