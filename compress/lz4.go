package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/dbuswire/errs"
)

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor provides LZ4 block compression, the fastest codec to decompress. It suits
// captures that are replayed often.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress encodes data as a single LZ4 block.
//
// Parameters:
//   - data: Data section to compress
//
// Returns:
//   - []byte: The block (nil if data is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// Decompress decodes one LZ4 block.
//
// A block does not record its decoded size, so the output buffer starts at four times
// the input and doubles while it is too short, up to MaxDecompressedSize.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := min(len(data)*4, MaxDecompressedSize)
	for {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if bufSize == MaxDecompressedSize {
			return nil, fmt.Errorf("%w: lz4 block decodes past %d bytes", errs.ErrDecompressedTooLarge, MaxDecompressedSize)
		}
		bufSize = min(bufSize*2, MaxDecompressedSize)
	}
}
