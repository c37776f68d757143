package compress

// ZstdCompressor provides Zstandard compression.
//
// It gives the best ratio of the built-in codecs and suits captures kept for later
// analysis. The pure Go implementation is used by default; build with -tags gozstd to
// use the cgo binding instead.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
