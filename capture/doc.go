// Package capture records bus messages into a compact, indexed file and reads them back.
//
// # Layout
//
//	+-----------------+  offset 0
//	| Header (32 B)   |  magic, byte order, codec, start time, counts, offsets
//	+-----------------+  offset 32
//	| Index           |  one 24-byte IndexEntry per message
//	+-----------------+
//	| Member names    |  optional, see WithMemberNames
//	+-----------------+  Header.DataOffset
//	| Data            |  raw messages back to back, compressed as one block
//	+-----------------+
//
// Each index entry carries the xxHash64 of the message's "interface.member", so a Reader
// can select the traffic of one member without parsing every message. Hash matches are
// confirmed against the message's own fields, so a collision costs a parse, never a wrong
// result.
//
// # Usage
//
//	w, err := capture.NewWriter(time.Now(), capture.WithCompression(format.CompressionS2))
//	if err != nil {
//	    return err
//	}
//	for msg := range incoming {
//	    if err := w.Append(msg, time.Now()); err != nil {
//	        return err
//	    }
//	}
//	data, err := w.Finish()
//
//	r, err := capture.Open(data)
//	for rec, err := range r.ByMember("org.freedesktop.DBus.Properties", "PropertiesChanged") {
//	    ...
//	}
package capture
