// Package dbuswire reads, builds and records bus messages in the D-Bus wire format.
//
// Parsed messages keep their marshalled bytes and answer header-field lookups from
// them without copying. The fields consulted on every dispatch (path, interface,
// member and reply serial) are located once at parse time and remembered as byte
// positions, so repeated lookups cost a bounds check and a slice.
//
// # Basic Usage
//
// Building and parsing a message:
//
//	import "github.com/arloliu/dbuswire"
//
//	b, _ := dbuswire.NewMethodCall("/org/example/Player", "Play")
//	msg, _ := b.Interface("org.example.Player").Build()
//
//	parsed, _ := dbuswire.ParseMessage(msg.Bytes())
//	member, ok, _ := parsed.Member() // "Play", true
//
// Recording traffic into a capture:
//
//	w, _ := dbuswire.NewCaptureWriter(time.Now())
//	_ = w.Append(msg, time.Now())
//	data, _ := w.Finish()
//
//	r, _ := dbuswire.OpenCapture(data)
//	for rec, err := range r.ByMember("org.example.Player", "Play") {
//	    fmt.Println(rec.Time, rec.Message)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the message and capture
// packages. For field-level access use the field package, and the names package for
// validated bus names.
package dbuswire

import (
	"io"
	"time"

	"github.com/arloliu/dbuswire/capture"
	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/internal/hash"
	"github.com/arloliu/dbuswire/message"
	"github.com/arloliu/dbuswire/names"
)

// ParseMessage validates one marshalled message and indexes its routing fields.
//
// The returned message references buf; buf must not be modified while the message is
// in use. Bytes past the end of the message are ignored.
//
// Parameters:
//   - buf: A complete message, starting at its endianness byte
//
// Returns:
//   - *message.Message: The parsed message.
//   - error: An error from the errs package if buf is not a valid message.
func ParseMessage(buf []byte) (*message.Message, error) {
	return message.Parse(buf)
}

// ReadMessage reads exactly one message from r.
//
// It returns io.EOF only when r is exhausted before the first byte of a message.
func ReadMessage(r io.Reader) (*message.Message, error) {
	return message.ReadMessage(r)
}

// NewMethodCall starts a method call message for member on the object at path.
//
// Parameters:
//   - path: The object to call
//   - member: The method name
//   - opts: Optional settings (message.WithSerial, message.WithBigEndian, message.WithFlags)
//
// Returns:
//   - *message.Builder: A builder for further header fields and the body.
//   - error: An error if an option is invalid.
//
// Example:
//
//	b, err := dbuswire.NewMethodCall("/org/freedesktop/DBus", "GetNameOwner",
//	    message.WithSerial(7),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	msg, err := b.Interface("org.freedesktop.DBus").Destination("org.freedesktop.DBus").Build()
func NewMethodCall(path names.ObjectPath, member names.MemberName, opts ...message.BuilderOption) (*message.Builder, error) {
	return message.NewMethodCall(path, member, opts...)
}

// NewSignal starts a signal message emitted by the object at path.
//
// Parameters:
//   - path: The emitting object
//   - iface: The interface declaring the signal
//   - member: The signal name
//   - opts: Optional settings, as for NewMethodCall
//
// Returns:
//   - *message.Builder: A builder for further header fields and the body.
//   - error: An error if an option is invalid.
func NewSignal(path names.ObjectPath, iface names.InterfaceName, member names.MemberName, opts ...message.BuilderOption) (*message.Builder, error) {
	return message.NewSignal(path, iface, member, opts...)
}

// NewCaptureWriter creates a capture writer with custom options.
//
// Parameters:
//   - startTime: The capture's reference time; no message may be appended before it
//   - opts: Optional settings (capture.WithCompression, capture.WithBigEndian)
//
// Returns:
//   - *capture.Writer: The created writer.
//   - error: An error if the configuration is invalid.
func NewCaptureWriter(startTime time.Time, opts ...capture.WriterOption) (*capture.Writer, error) {
	return capture.NewWriter(startTime, opts...)
}

// NewDefaultCaptureWriter creates a capture writer with recommended settings:
// little-endian index and zstd data compression.
func NewDefaultCaptureWriter(startTime time.Time) (*capture.Writer, error) {
	return capture.NewWriter(startTime,
		capture.WithLittleEndian(),
		capture.WithCompression(format.CompressionZstd),
	)
}

// OpenCapture validates a capture produced by a capture writer and decompresses its
// data section. Messages returned by the reader reference that section.
func OpenCapture(data []byte) (*capture.Reader, error) {
	return capture.Open(data)
}

// MemberID returns the 64-bit identifier a capture index stores for an interface member.
//
// Messages without an interface use an empty iface.
func MemberID(iface names.InterfaceName, member names.MemberName) uint64 {
	return hash.MemberID(string(iface), string(member))
}
