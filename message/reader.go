package message

import (
	"fmt"
	"unicode/utf8"

	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/internal/zerocopy"
)

// wireReader walks a marshalled header. Offsets are relative to the start of the message,
// which is also the alignment origin.
type wireReader struct {
	buf    []byte
	pos    int
	engine endian.EndianEngine
}

// align skips to the next multiple of n, requiring the skipped bytes to be zero.
func (r *wireReader) align(n int) error {
	next := (r.pos + n - 1) &^ (n - 1)
	if next > len(r.buf) {
		return fmt.Errorf("%w: alignment to %d at offset %d", errs.ErrTruncated, n, r.pos)
	}

	for i := r.pos; i < next; i++ {
		if r.buf[i] != 0 {
			return fmt.Errorf("%w: at offset %d", errs.ErrInvalidPadding, i)
		}
	}
	r.pos = next

	return nil
}

func (r *wireReader) need(n int) error {
	if n < 0 || len(r.buf)-r.pos < n {
		return fmt.Errorf("%w: need %d bytes at offset %d", errs.ErrTruncated, n, r.pos)
	}

	return nil
}

func (r *wireReader) readByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++

	return b, nil
}

func (r *wireReader) skip(n, alignment int) error {
	if err := r.align(alignment); err != nil {
		return err
	}
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n

	return nil
}

func (r *wireReader) readUint32() (uint32, error) {
	if err := r.align(4); err != nil {
		return 0, err
	}
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := r.engine.Uint32(r.buf[r.pos:])
	r.pos += 4

	return v, nil
}

// text returns the n bytes at the current offset as a string view into buf and consumes
// the NUL that must follow them.
func (r *wireReader) text(n int) (string, error) {
	if err := r.need(n + 1); err != nil {
		return "", err
	}

	b := r.buf[r.pos : r.pos+n]
	if r.buf[r.pos+n] != 0 {
		return "", fmt.Errorf("%w: at offset %d", errs.ErrMissingNulTerminate, r.pos+n)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: at offset %d", errs.ErrInvalidUTF8, r.pos)
	}
	r.pos += n + 1

	return zerocopy.String(b), nil
}

// readString reads a string or object path: a 4-aligned u32 length, the bytes, and a NUL.
func (r *wireReader) readString() (string, error) {
	n, err := r.readUint32()
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(len(r.buf)) {
		return "", fmt.Errorf("%w: string length %d at offset %d", errs.ErrTruncated, n, r.pos)
	}

	return r.text(int(n))
}

// readSignature reads a signature: a u8 length, the bytes, and a NUL.
func (r *wireReader) readSignature() (string, error) {
	n, err := r.readByte()
	if err != nil {
		return "", err
	}

	return r.text(int(n))
}

// skipBasic consumes one value of a single basic type. Used for header fields with codes
// this package does not know.
func (r *wireReader) skipBasic(sig byte) error {
	switch sig {
	case 'y':
		return r.skip(1, 1)
	case 'n', 'q':
		return r.skip(2, 2)
	case 'b', 'i', 'u', 'h':
		return r.skip(4, 4)
	case 'x', 't', 'd':
		return r.skip(8, 8)
	case 's', 'o':
		_, err := r.readString()
		return err
	case 'g':
		_, err := r.readSignature()
		return err
	default:
		return fmt.Errorf("%w: unsupported type %q in unknown header field", errs.ErrInvalidFieldCode, sig)
	}
}
