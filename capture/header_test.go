package capture

import (
	"testing"
	"time"

	"github.com/arloliu/dbuswire/endian"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/format"
	"github.com/stretchr/testify/require"
)

func TestHeader_BytesParse(t *testing.T) {
	start := time.UnixMicro(1_700_000_000_123_456)

	for _, big := range []bool{false, true} {
		h := NewHeader(start)
		if big {
			h.Flag.WithBigEndian()
		}
		h.Flag.SetDataCompression(format.CompressionLZ4)
		h.MessageCount = 3
		h.DataOffset = HeaderSize + 3*IndexEntrySize
		h.DataSize = 100
		h.RawDataSize = 250

		b := h.Bytes()
		require.Len(t, b, HeaderSize)

		parsed, err := ParseHeader(b)
		require.NoError(t, err)
		require.Equal(t, *h, parsed)
		require.True(t, start.Equal(parsed.StartTimeAsTime()))
		require.Equal(t, big, parsed.Flag.IsBigEndian())
	}
}

func TestFlag(t *testing.T) {
	f := NewFlag()
	require.NoError(t, f.Validate())
	require.False(t, f.IsBigEndian())
	require.Equal(t, endian.GetLittleEndianEngine(), f.GetEndianEngine())
	require.Equal(t, format.CompressionZstd, f.GetDataCompression())

	f.WithBigEndian()
	require.True(t, f.IsBigEndian())
	require.Equal(t, endian.GetBigEndianEngine(), f.GetEndianEngine())
	require.Equal(t, uint16(MagicCaptureV1Opt), f.GetMagicNumber())

	f.WithLittleEndian()
	require.False(t, f.IsBigEndian())

	require.False(t, f.HasMemberNames())
	f.SetMemberNames(true)
	require.True(t, f.HasMemberNames())
	require.NoError(t, f.Validate())
	f.SetMemberNames(false)
	require.False(t, f.HasMemberNames())

	f.DataCompression = 0
	require.ErrorIs(t, f.Validate(), errs.ErrInvalidCompression)

	f = NewFlag()
	f.Reserved = 1
	require.ErrorIs(t, f.Validate(), errs.ErrInvalidHeaderFlags)
}

func TestIndexEntry(t *testing.T) {
	e := IndexEntry{MemberID: 0x0123456789abcdef, Serial: 7, Offset: 48, Size: 96, Delta: 1500}

	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		b := make([]byte, IndexEntrySize)
		require.NoError(t, e.WriteToSlice(b, engine))

		got, err := ParseIndexEntry(b, engine)
		require.NoError(t, err)
		require.Equal(t, e, got)
		require.Equal(t, uint64(144), got.End())
	}

	require.ErrorIs(t, e.WriteToSlice(make([]byte, 8), endian.Native()), errs.ErrInvalidIndexEntrySize)
	_, err := ParseIndexEntry(make([]byte, 8), endian.Native())
	require.ErrorIs(t, err, errs.ErrInvalidIndexEntrySize)
}
