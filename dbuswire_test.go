package dbuswire

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dbuswire/capture"
	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/internal/hash"
	"github.com/arloliu/dbuswire/message"
	"github.com/arloliu/dbuswire/names"
)

func TestNewMethodCall_ParseMessage(t *testing.T) {
	b, err := NewMethodCall("/org/freedesktop/DBus", "GetNameOwner", message.WithSerial(7))
	require.NoError(t, err)

	msg, err := b.Interface("org.freedesktop.DBus").Destination("org.freedesktop.DBus").Build()
	require.NoError(t, err)

	parsed, err := ParseMessage(msg.Bytes())
	require.NoError(t, err)
	require.Equal(t, format.TypeMethodCall, parsed.Type())
	require.Equal(t, uint32(7), parsed.Serial())

	member, ok, err := parsed.Member()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, names.MemberName("GetNameOwner"), member)

	dest, ok := parsed.Destination()
	require.True(t, ok)
	require.Equal(t, names.BusName("org.freedesktop.DBus"), dest)
}

func TestParseMessage_Invalid(t *testing.T) {
	_, err := ParseMessage([]byte{'l', 1, 0, 1})
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func TestReadMessage(t *testing.T) {
	var stream bytes.Buffer
	for i := range 3 {
		b, err := NewSignal("/org/example/Clock", "org.example.Clock", "Tick", message.WithSerial(uint32(i+1)))
		require.NoError(t, err)
		msg, err := b.Build()
		require.NoError(t, err)
		_, err = msg.WriteTo(&stream)
		require.NoError(t, err)
	}

	for i := range 3 {
		msg, err := ReadMessage(&stream)
		require.NoError(t, err)
		require.Equal(t, uint32(i+1), msg.Serial())
	}

	_, err := ReadMessage(&stream)
	require.ErrorIs(t, err, io.EOF)
}

func TestCaptureRoundTrip(t *testing.T) {
	start := time.UnixMicro(1_700_000_000_000_000)

	w, err := NewDefaultCaptureWriter(start)
	require.NoError(t, err)

	b, err := NewSignal("/org/example/Clock", "org.example.Clock", "Tick")
	require.NoError(t, err)
	tick, err := b.Build()
	require.NoError(t, err)
	b, err = NewMethodCall("/org/example/Clock", "Reset")
	require.NoError(t, err)
	reset, err := b.Build()
	require.NoError(t, err)

	require.NoError(t, w.Append(tick, start))
	require.NoError(t, w.Append(reset, start.Add(time.Millisecond)))
	require.NoError(t, w.Append(tick, start.Add(2*time.Millisecond)))

	data, err := w.Finish()
	require.NoError(t, err)

	r, err := OpenCapture(data)
	require.NoError(t, err)
	require.Equal(t, 3, r.Len())
	require.Equal(t, format.CompressionZstd, r.Header().Flag.GetDataCompression())

	var got []time.Time
	for rec, err := range r.ByMember("org.example.Clock", "Tick") {
		require.NoError(t, err)
		got = append(got, rec.Time)
	}
	require.Equal(t, []time.Time{start, start.Add(2 * time.Millisecond)}, got)

	e, err := r.Entry(0)
	require.NoError(t, err)
	require.Equal(t, MemberID("org.example.Clock", "Tick"), e.MemberID)

	e, err = r.Entry(1)
	require.NoError(t, err)
	require.Equal(t, MemberID("", "Reset"), e.MemberID, "no interface hashes with an empty prefix")
}

func TestNewCaptureWriter_Options(t *testing.T) {
	w, err := NewCaptureWriter(time.Now(), capture.WithBigEndian(), capture.WithCompression(format.CompressionNone))
	require.NoError(t, err)

	data, err := w.Finish()
	require.NoError(t, err)

	r, err := OpenCapture(data)
	require.NoError(t, err)
	require.Zero(t, r.Len())
	require.True(t, r.Header().Flag.IsBigEndian())

	_, err = NewCaptureWriter(time.Now(), capture.WithCompression(format.CompressionType(0x7f)))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestMemberID(t *testing.T) {
	require.Equal(t, MemberID("org.example.Clock", "Tick"), MemberID("org.example.Clock", "Tick"))
	require.NotEqual(t, MemberID("org.example.Clock", "Tick"), MemberID("org.example.Clock", "Reset"))
	require.NotEqual(t, MemberID("org.example.Clock", "Tick"), MemberID("org.example.Timer", "Tick"))
	require.NotEqual(t, MemberID("", "Tick"), MemberID("org.example.Clock", "Tick"))

	// the hash covers "interface.member", so an empty interface hashes as ".member"
	require.Equal(t, hash.ID(".Tick"), MemberID("", "Tick"))
	require.Equal(t, hash.ID("org.example.Clock.Tick"), MemberID("org.example.Clock", "Tick"))
}
