// Package field provides header fields and the cache used to read the hot ones cheaply.
//
// # Core Types
//
//   - Field: one header field, a code plus its typed value
//   - Fields: ordered collection of fields, used to compose outgoing headers and to
//     enumerate decoded ones
//   - Position: where a text field's value lives in a message buffer, or that it is absent,
//     or that its location is unknown
//   - Cache: the positions of path, interface and member plus the reply serial, built once
//     per received message
//
// # Hot Path
//
// Routing reads the path, interface and member of every message, and the reply serial of
// every reply. Decoding the header again for each read would walk the field array and
// re-validate names every time. Instead, the message decoder builds a Cache right after it
// decodes the header:
//
//	cache, err := field.NewCache(buf, header)
//	...
//	member, ok, err := cache.Member(msg) // slices buf, no header walk, no copy
//
// Values returned through a Cache share memory with the message buffer. The buffer must
// not be modified after the Cache is built.
package field
