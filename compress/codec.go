package compress

import (
	"fmt"

	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/format"
)

// MaxDecompressedSize bounds the output of every Decompress call (128 MiB), the largest
// data section a capture may hold. Larger output fails with errs.ErrDecompressedTooLarge
// before it is fully allocated.
const MaxDecompressedSize = 128 * 1024 * 1024

// Compressor compresses a capture's data section: the concatenated raw messages.
//
// Bus traffic is highly repetitive (the same paths, interfaces and member names over and
// over), so even fast codecs shrink it substantially.
//
// The returned slice is owned by the caller and the input is not modified, except for
// the no-op codec, which returns its input.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores data produced by the matching Compressor.
//
// Implementations must be safe for concurrent use.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes how well a data section compressed.
type CompressionStats struct {
	// Algorithm identifies the codec used.
	Algorithm format.CompressionType

	// OriginalSize is the size of the data before compression.
	OriginalSize int64

	// CompressedSize is the size of the data as stored.
	CompressedSize int64
}

// CompressionRatio returns compressed size / original size.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space saved as a percentage (0-100).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec creates a Codec for the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of what is being compressed, for error messages
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: errs.ErrInvalidCompression for an unknown type
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s %s (0x%x)", errs.ErrInvalidCompression, target, compressionType, uint8(compressionType))
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s (0x%x)", errs.ErrInvalidCompression, compressionType, uint8(compressionType))
}
