package field

import (
	"errors"
	"testing"

	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/internal/zerocopy"
	"github.com/arloliu/dbuswire/names"
	"github.com/stretchr/testify/require"
)

// stubHeader serves fixed values; text values may or may not be views into a buffer.
type stubHeader struct {
	path        names.ObjectPath
	iface       names.InterfaceName
	member      names.MemberName
	replySerial uint32
	hasSerial   bool
	err         error
}

func (h stubHeader) Path() (names.ObjectPath, bool, error) {
	return h.path, h.path != "", h.err
}

func (h stubHeader) Interface() (names.InterfaceName, bool, error) {
	return h.iface, h.iface != "", h.err
}

func (h stubHeader) Member() (names.MemberName, bool, error) {
	return h.member, h.member != "", h.err
}

func (h stubHeader) ReplySerial() (uint32, bool, error) {
	return h.replySerial, h.hasSerial, h.err
}

// stubSource counts full header lookups.
type stubSource struct {
	buf     []byte
	header  stubHeader
	err     error
	lookups int
}

func (s *stubSource) Bytes() []byte {
	return s.buf
}

func (s *stubSource) HeaderView() (HeaderView, error) {
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}

	return s.header, nil
}

// newStubSource lays out path, interface and member in a buffer behind a fixed prefix and
// returns a header whose values are views into it.
func newStubSource(path, iface, member string) *stubSource {
	buf := []byte("l\x01\x00\x01\x00\x00\x00\x00\x01\x00\x00\x00")
	view := func(s string) string {
		if s == "" {
			return ""
		}
		start := len(buf)
		buf = append(buf, s...)
		buf = append(buf, 0)

		return zerocopy.String(buf[start : start+len(s)])
	}

	// grow first so later appends do not move earlier views
	buf = append(make([]byte, 0, 256), buf...)
	h := stubHeader{
		path:   names.ObjectPath(view(path)),
		iface:  names.InterfaceName(view(iface)),
		member: names.MemberName(view(member)),
	}

	return &stubSource{buf: buf, header: h}
}

func TestNewCache_AllHotFieldsPresent(t *testing.T) {
	src := newStubSource("/org/example/Object", "org.example.Iface", "Ping")

	cache, err := NewCache(src.buf, src.header)
	require.NoError(t, err)

	path, iface, member := cache.Positions()
	require.True(t, path.IsResolved())
	require.True(t, iface.IsResolved())
	require.True(t, member.IsResolved())

	gotPath, ok, err := cache.Path(src)
	require.NoError(t, err)
	require.True(t, ok)
	gotIface, ok, err := cache.Interface(src)
	require.NoError(t, err)
	require.True(t, ok)
	gotMember, ok, err := cache.Member(src)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, src.lookups)

	// same values as an uncached lookup
	live, err := src.HeaderView()
	require.NoError(t, err)
	wantPath, _, _ := live.Path()
	wantIface, _, _ := live.Interface()
	wantMember, _, _ := live.Member()
	require.Equal(t, wantPath, gotPath)
	require.Equal(t, wantIface, gotIface)
	require.Equal(t, wantMember, gotMember)
}

func TestCache_AbsentInterfaceSkipsFallback(t *testing.T) {
	src := newStubSource("/org/example/Object", "", "Ping")

	cache, err := NewCache(src.buf, src.header)
	require.NoError(t, err)

	_, iface, _ := cache.Positions()
	require.True(t, iface.IsAbsent())

	got, ok, err := cache.Interface(src)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, got)
	require.Equal(t, 0, src.lookups)
}

func TestCache_UnresolvedFallsBack(t *testing.T) {
	// values that do not alias the buffer cannot be located
	src := &stubSource{
		buf: []byte("l\x01\x00\x01\x00\x00\x00\x00\x01\x00\x00\x00"),
		header: stubHeader{
			path:   "/org/example/Object",
			iface:  "org.example.Iface",
			member: "Ping",
		},
	}

	cache, err := NewCache(src.buf, src.header)
	require.NoError(t, err)

	path, iface, member := cache.Positions()
	require.Equal(t, Unresolved, path.State())
	require.Equal(t, Unresolved, iface.State())
	require.Equal(t, Unresolved, member.State())

	got, ok, err := cache.Member(src)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, names.MemberName("Ping"), got)
	require.Equal(t, 1, src.lookups)

	_, _, err = cache.Member(src)
	require.NoError(t, err)
	require.Equal(t, 2, src.lookups, "a miss is looked up again on every read")

	gotPath, ok, err := cache.Path(src)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, names.ObjectPath("/org/example/Object"), gotPath)
}

func TestCache_FallbackErrorPropagates(t *testing.T) {
	boom := errors.New("corrupt header")
	src := &stubSource{err: boom}

	var cache Cache

	_, _, err := cache.Path(src)
	require.ErrorIs(t, err, boom)
	_, _, err = cache.Interface(src)
	require.ErrorIs(t, err, boom)
	_, _, err = cache.Member(src)
	require.ErrorIs(t, err, boom)
	_, _, err = cache.ReplySerial(src)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 4, src.lookups)
}

func TestCache_ReplySerial(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		src := newStubSource("", "", "")
		src.header.replySerial = 42
		src.header.hasSerial = true

		cache, err := NewCache(src.buf, src.header)
		require.NoError(t, err)

		serial, ok, err := cache.ReplySerial(src)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, uint32(42), serial)
		require.Equal(t, 0, src.lookups)
	})

	t.Run("Absent", func(t *testing.T) {
		src := newStubSource("/a", "", "M")

		cache, err := NewCache(src.buf, src.header)
		require.NoError(t, err)

		_, ok, err := cache.ReplySerial(src)
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, 0, src.lookups)
	})

	t.Run("Zero cache looks up", func(t *testing.T) {
		src := newStubSource("", "", "")
		src.header.replySerial = 7
		src.header.hasSerial = true

		var cache Cache
		serial, ok, err := cache.ReplySerial(src)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, uint32(7), serial)
		require.Equal(t, 1, src.lookups)
	})
}

func TestNewCache_HeaderError(t *testing.T) {
	boom := errors.New("malformed header")

	_, err := NewCache(nil, stubHeader{err: boom})
	require.ErrorIs(t, err, boom)
}

func TestCache_ReadAgainstForeignBuffer(t *testing.T) {
	src := newStubSource("/org/example/Object", "org.example.Iface", "Ping")
	cache, err := NewCache(src.buf, src.header)
	require.NoError(t, err)

	foreign := &stubSource{buf: src.buf[:14]}
	_, _, err = cache.Interface(foreign)
	require.ErrorIs(t, err, errs.ErrCorruptFieldCache)
	require.Equal(t, 0, foreign.lookups)
}

func BenchmarkCache_Member(b *testing.B) {
	src := newStubSource("/org/example/Object", "org.example.Iface", "PropertiesChanged")
	cache, err := NewCache(src.buf, src.header)
	require.NoError(b, err)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, _, err := cache.Member(src); err != nil {
			b.Fatal(err)
		}
	}
}
