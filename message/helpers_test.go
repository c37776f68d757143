package message

import (
	"encoding/binary"
)

// rawField is a header field encoded by hand. val is a uint32, uint64 or string; the
// string is written as a signature when sig is "g".
type rawField struct {
	code byte
	sig  string
	val  any
}

// rawMessage encodes a little-endian message without any validation, for feeding the
// decoder inputs the Builder refuses to produce.
func rawMessage(typ byte, serial uint32, body []byte, fields ...rawField) []byte {
	le := binary.LittleEndian
	buf := []byte{'l', typ, 0, 1}
	buf = le.AppendUint32(buf, uint32(len(body)))
	buf = le.AppendUint32(buf, serial)
	buf = le.AppendUint32(buf, 0)

	pad := func(n int) {
		for len(buf)%n != 0 {
			buf = append(buf, 0)
		}
	}

	for _, f := range fields {
		pad(8)
		buf = append(buf, f.code, byte(len(f.sig)))
		buf = append(buf, f.sig...)
		buf = append(buf, 0)

		switch v := f.val.(type) {
		case uint32:
			pad(4)
			buf = le.AppendUint32(buf, v)
		case uint64:
			pad(8)
			buf = le.AppendUint64(buf, v)
		case string:
			if f.sig == "g" {
				buf = append(buf, byte(len(v)))
			} else {
				pad(4)
				buf = le.AppendUint32(buf, uint32(len(v)))
			}
			buf = append(buf, v...)
			buf = append(buf, 0)
		}
	}

	le.PutUint32(buf[12:16], uint32(len(buf)-16))
	pad(8)

	return append(buf, body...)
}

func pathField(p string) rawField   { return rawField{code: 1, sig: "o", val: p} }
func memberField(m string) rawField { return rawField{code: 3, sig: "s", val: m} }
