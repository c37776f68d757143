// Package endian provides byte order utilities for encoding and decoding bus messages.
//
// Every message declares its byte order in the first byte of the fixed header:
// 'l' for little-endian and 'B' for big-endian. This package maps that marker to an
// EndianEngine, which combines binary.ByteOrder and binary.AppendByteOrder so the
// header codec can both read fixed-size integers in place and append them while encoding.
//
//	engine, err := endian.FromFlag(buf[0])
//	if err != nil {
//	    return err
//	}
//	serial := engine.Uint32(buf[8:12])
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"

	"github.com/arloliu/dbuswire/errs"
)

const (
	// FlagLittle is the wire marker for little-endian messages.
	FlagLittle byte = 'l'
	// FlagBig is the wire marker for big-endian messages.
	FlagBig byte = 'B'
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100: the first byte in memory is 0x01 only on big-endian hosts.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// Native returns the engine matching the host byte order.
func Native() EndianEngine {
	if CheckEndianness() == binary.BigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// FromFlag returns the engine for a wire endianness marker.
//
// Returns errs.ErrInvalidEndian for any byte other than 'l' or 'B'.
func FromFlag(flag byte) (EndianEngine, error) {
	switch flag {
	case FlagLittle:
		return binary.LittleEndian, nil
	case FlagBig:
		return binary.BigEndian, nil
	default:
		return nil, errs.ErrInvalidEndian
	}
}

// Flag returns the wire marker for engine. Engines other than binary.BigEndian are
// reported as little-endian.
func Flag(engine EndianEngine) byte {
	if IsBigEndian(engine) {
		return FlagBig
	}

	return FlagLittle
}

// IsBigEndian reports whether engine is the big-endian engine.
func IsBigEndian(engine EndianEngine) bool {
	return engine == binary.BigEndian
}
