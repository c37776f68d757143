// Package message encodes and decodes bus messages and exposes their header fields.
//
// # Wire Layout
//
// A message starts with a 12-byte fixed prefix, followed by the header field array and
// the body:
//
//	offset  size  content
//	0       1     endianness flag, 'l' or 'B'
//	1       1     message type
//	2       1     flags
//	3       1     protocol version (1)
//	4       4     body length
//	8       4     serial (non-zero)
//	12      4     header field array length in bytes
//	16      ...   header fields, each an 8-aligned (code, variant) struct
//	...     ...   zero padding to an 8-byte boundary
//	...     ...   body
//
// # Zero-Copy Decoding
//
// Decode and Parse never copy text. Object paths, names and signatures in a decoded header
// are strings sharing the message buffer, and Parse records where the hot routing fields
// live (see field.Cache), so Path, Interface, Member and ReplySerial on a Message cost a
// slice and a validation, not a header walk.
//
// # Building Messages
//
//	b, err := message.NewMethodCall("/org/example/Object", "Ping",
//	    message.WithSerial(7), message.WithLittleEndian())
//	if err != nil {
//	    return err
//	}
//	msg, err := b.Interface("org.example.Iface").Destination("org.example.Service").Build()
//
// Built messages are parsed back from their own encoded bytes, so a built Message behaves
// exactly like one read off the wire.
package message
