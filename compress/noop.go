package compress

// NoOpCompressor stores data unchanged.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data itself; the result shares the input's memory.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself; the result shares the input's memory.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
