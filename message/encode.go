package message

import (
	"fmt"

	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/field"
	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/internal/pool"
)

// headerSpec is everything encode needs to marshal one message.
type headerSpec struct {
	engine endian.EndianEngine
	typ    format.MessageType
	flags  format.Flags
	serial uint32
	fields *field.Fields
	body   []byte
}

// encode marshals the message into bb, which must be empty: alignment is relative to the
// start of the buffer.
func encode(bb *pool.ByteBuffer, spec headerSpec) error {
	engine := spec.engine

	bb.Grow(PrefixSize + 32*spec.fields.Len() + len(spec.body) + 8)
	_ = bb.WriteByte(endian.Flag(engine))
	_ = bb.WriteByte(byte(spec.typ))
	_ = bb.WriteByte(byte(spec.flags))
	_ = bb.WriteByte(format.ProtocolVersion)
	bb.B = engine.AppendUint32(bb.B, uint32(len(spec.body))) //nolint:gosec
	bb.B = engine.AppendUint32(bb.B, spec.serial)

	lenAt := bb.Len()
	bb.B = engine.AppendUint32(bb.B, 0)

	for _, f := range spec.fields.All() {
		bb.Pad(8)
		if err := encodeField(bb, engine, f); err != nil {
			return err
		}
	}

	arrayLen := bb.Len() - lenAt - 4
	if arrayLen > format.MaxArrayLength {
		return fmt.Errorf("%w: header field array of %d bytes", errs.ErrMessageTooLarge, arrayLen)
	}
	engine.PutUint32(bb.B[lenAt:], uint32(arrayLen)) //nolint:gosec

	bb.Pad(8)
	if size := bb.Len() + len(spec.body); size > format.MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", errs.ErrMessageTooLarge, size)
	}
	_, _ = bb.Write(spec.body)

	return nil
}

func encodeField(bb *pool.ByteBuffer, engine endian.EndianEngine, f field.Field) error {
	code := f.Code()
	sig := code.Signature()
	if sig == 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidFieldCode, code)
	}

	_ = bb.WriteByte(byte(code))
	_ = bb.WriteByte(1)
	_ = bb.WriteByte(sig)
	_ = bb.WriteByte(0)

	if v, ok := f.Uint32(); ok {
		bb.Pad(4)
		bb.B = engine.AppendUint32(bb.B, v)

		return nil
	}

	text, _ := f.Text()
	if _, err := textField(code, text); err != nil {
		return fmt.Errorf("header field %s: %w", code, err)
	}

	if sig == 'g' {
		_ = bb.WriteByte(byte(len(text)))
	} else {
		bb.Pad(4)
		bb.B = engine.AppendUint32(bb.B, uint32(len(text))) //nolint:gosec
	}
	_, _ = bb.WriteString(text)
	_ = bb.WriteByte(0)

	return nil
}
