//go:build gozstd && cgo

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/gozstd"

	"github.com/arloliu/dbuswire/errs"
)

const gozstdLevel = 3

// Compress compresses the input data using Zstandard compression.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, gozstdLevel), nil
}

// Decompress decompresses Zstd-compressed data.
//
// A frame that declares its content size is checked against MaxDecompressedSize and
// decoded in one call. Frames without a declared size are streamed through a limited
// reader.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var fh zstd.Header
	if err := fh.Decode(data); err != nil {
		return nil, fmt.Errorf("zstd frame header: %w", err)
	}

	var (
		out []byte
		err error
	)
	if fh.HasFCS {
		if fh.FrameContentSize > MaxDecompressedSize {
			return nil, fmt.Errorf("%w: zstd frame declares %d bytes", errs.ErrDecompressedTooLarge, fh.FrameContentSize)
		}
		out, err = gozstd.Decompress(make([]byte, 0, fh.FrameContentSize), data)
	} else {
		zr := gozstd.NewReader(bytes.NewReader(data))
		out, err = io.ReadAll(io.LimitReader(zr, MaxDecompressedSize+1))
		zr.Release()
	}
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if len(out) > MaxDecompressedSize {
		return nil, fmt.Errorf("%w: zstd data decodes past %d bytes", errs.ErrDecompressedTooLarge, MaxDecompressedSize)
	}

	return out, nil
}
