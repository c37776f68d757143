package capture

import (
	"fmt"

	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/format"
)

// Flag is the packed options field at the start of a capture header.
type Flag struct {
	// Options packs the byte order, the member table flag and the magic number.
	// Bit 0 is set when a member name table follows the index.
	// Bit 1 is the endianness flag: 0 means little-endian, 1 means big-endian.
	// Bits 2 and 3 are reserved and must be 0.
	// Bits 4-15 hold the magic number, 0xEC10 for version 1.
	Options uint16

	// DataCompression is the codec applied to the data section.
	DataCompression uint8

	// Reserved must be 0.
	Reserved uint8
}

// NewFlag creates a little-endian flag for a Zstd-compressed capture.
func NewFlag() Flag {
	return Flag{
		Options:         MagicCaptureV1Opt,
		DataCompression: uint8(format.CompressionZstd),
	}
}

// IsBigEndian returns whether index entries are big-endian.
func (f Flag) IsBigEndian() bool {
	return f.Options&EndiannessMask != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *Flag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

// WithBigEndian sets big-endian byte order.
func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// HasMemberNames returns whether a member name table follows the index.
func (f Flag) HasMemberNames() bool {
	return f.Options&MemberNamesMask != 0
}

// SetMemberNames sets or clears the member name table flag.
func (f *Flag) SetMemberNames(enabled bool) {
	if enabled {
		f.Options |= MemberNamesMask
	} else {
		f.Options &^= MemberNamesMask
	}
}

// GetEndianEngine returns the engine matching the flag's byte order.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// GetMagicNumber returns the magic number bits.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// SetDataCompression sets the data section codec.
func (f *Flag) SetDataCompression(c format.CompressionType) {
	f.DataCompression = uint8(c)
}

// GetDataCompression returns the data section codec.
func (f Flag) GetDataCompression() format.CompressionType {
	return format.CompressionType(f.DataCompression)
}

// Validate checks the magic number, the reserved bits and the codec.
func (f Flag) Validate() error {
	if f.GetMagicNumber() != MagicCaptureV1Opt {
		return fmt.Errorf("%w: 0x%04x", errs.ErrInvalidMagicNumber, f.GetMagicNumber())
	}
	if f.Options&ReservedBitsMask != 0 || f.Reserved != 0 {
		return fmt.Errorf("%w: options 0x%04x", errs.ErrInvalidHeaderFlags, f.Options)
	}

	switch f.GetDataCompression() {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
		return nil
	default:
		return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidCompression, f.DataCompression)
	}
}
