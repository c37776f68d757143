package capture

import (
	"math"

	"github.com/arloliu/dbuswire/compress"
)

const (
	// Bit masks of Flag.Options.
	MemberNamesMask  = 0x0001 // 1=member name table present
	EndiannessMask   = 0x0002 // 0=little, 1=big
	ReservedBitsMask = 0x000C // must be zero
	MagicNumberMask  = 0xFFF0

	// MagicCaptureV1Opt identifies a version 1 capture.
	MagicCaptureV1Opt = 0xEC10
)

const (
	HeaderSize        = 32         // fixed header size in bytes
	IndexEntrySize    = 24         // fixed index entry size in bytes
	IndexOffsetOffset = HeaderSize // byte offset where the index section starts

	// MaxMessages is the largest number of messages a capture may hold.
	MaxMessages = 1 << 24

	// MaxDataSize bounds the uncompressed data section (128 MiB), the most any codec
	// will decompress.
	MaxDataSize = compress.MaxDecompressedSize

	// MaxDelta is the latest a message may be recorded after the capture's start time,
	// in microseconds (about 71 minutes).
	MaxDelta = math.MaxUint32
)
