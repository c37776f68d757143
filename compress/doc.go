// Package compress provides the codecs used for capture data sections.
//
// A capture stores recorded messages back to back; the whole data section is compressed
// as one block with the codec named in the capture header:
//   - None: stored as is
//   - Zstd: best ratio (klauspost/compress by default, valyala/gozstd with -tags gozstd)
//   - S2: balanced speed and ratio
//   - LZ4: fastest decompression
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionS2)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(data)
//
// # Thread Safety
//
// All codecs are stateless values backed by pooled encoders and decoders, and are safe for
// concurrent use.
package compress
