package field

import (
	"fmt"
	"strconv"

	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/names"
)

// Field is one header field: a code and the typed value that code carries.
//
// It is a closed variant. Use the NewX constructors to build one and the accessor matching
// its code to read it back; an accessor for a different code reports false. Fields are
// small comparable values and can be compared with ==.
type Field struct {
	code format.FieldCode
	text string
	num  uint32
}

// NewPath creates a Path field.
func NewPath(p names.ObjectPath) Field {
	return Field{code: format.FieldPath, text: string(p)}
}

// NewInterface creates an Interface field.
func NewInterface(i names.InterfaceName) Field {
	return Field{code: format.FieldInterface, text: string(i)}
}

// NewMember creates a Member field.
func NewMember(m names.MemberName) Field {
	return Field{code: format.FieldMember, text: string(m)}
}

// NewErrorName creates an ErrorName field.
func NewErrorName(e names.ErrorName) Field {
	return Field{code: format.FieldErrorName, text: string(e)}
}

// NewReplySerial creates a ReplySerial field.
func NewReplySerial(serial uint32) Field {
	return Field{code: format.FieldReplySerial, num: serial}
}

// NewDestination creates a Destination field.
func NewDestination(b names.BusName) Field {
	return Field{code: format.FieldDestination, text: string(b)}
}

// NewSender creates a Sender field.
func NewSender(b names.BusName) Field {
	return Field{code: format.FieldSender, text: string(b)}
}

// NewSignature creates a Signature field.
func NewSignature(s names.Signature) Field {
	return Field{code: format.FieldSignature, text: string(s)}
}

// NewUnixFDs creates a UnixFDs field.
func NewUnixFDs(n uint32) Field {
	return Field{code: format.FieldUnixFDs, num: n}
}

// Code returns the field code.
func (f Field) Code() format.FieldCode {
	return f.code
}

// IsZero reports whether f is the zero Field, which carries no code.
func (f Field) IsZero() bool {
	return f.code == format.FieldInvalid
}

// Path returns the object path if f is a Path field.
func (f Field) Path() (names.ObjectPath, bool) {
	return names.ObjectPath(f.text), f.code == format.FieldPath
}

// Interface returns the interface name if f is an Interface field.
func (f Field) Interface() (names.InterfaceName, bool) {
	return names.InterfaceName(f.text), f.code == format.FieldInterface
}

// Member returns the member name if f is a Member field.
func (f Field) Member() (names.MemberName, bool) {
	return names.MemberName(f.text), f.code == format.FieldMember
}

// ErrorName returns the error name if f is an ErrorName field.
func (f Field) ErrorName() (names.ErrorName, bool) {
	return names.ErrorName(f.text), f.code == format.FieldErrorName
}

// ReplySerial returns the replied-to serial if f is a ReplySerial field.
func (f Field) ReplySerial() (uint32, bool) {
	return f.num, f.code == format.FieldReplySerial
}

// Destination returns the destination bus name if f is a Destination field.
func (f Field) Destination() (names.BusName, bool) {
	return names.BusName(f.text), f.code == format.FieldDestination
}

// Sender returns the sender bus name if f is a Sender field.
func (f Field) Sender() (names.BusName, bool) {
	return names.BusName(f.text), f.code == format.FieldSender
}

// Signature returns the body signature if f is a Signature field.
func (f Field) Signature() (names.Signature, bool) {
	return names.Signature(f.text), f.code == format.FieldSignature
}

// UnixFDs returns the file descriptor count if f is a UnixFDs field.
func (f Field) UnixFDs() (uint32, bool) {
	return f.num, f.code == format.FieldUnixFDs
}

// Text returns the value of a string-typed field (path, names, signature).
func (f Field) Text() (string, bool) {
	switch f.code.Signature() {
	case 's', 'o', 'g':
		return f.text, true
	default:
		return "", false
	}
}

// Uint32 returns the value of an integer field (reply serial, unix fds).
func (f Field) Uint32() (uint32, bool) {
	if f.code.Signature() == 'u' {
		return f.num, true
	}

	return 0, false
}

func (f Field) String() string {
	if v, ok := f.Uint32(); ok {
		return f.code.String() + "=" + strconv.FormatUint(uint64(v), 10)
	}
	if v, ok := f.Text(); ok {
		return fmt.Sprintf("%s=%q", f.code, v)
	}

	return "Invalid"
}
