package zerocopy

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	buf := []byte("/org/example/Object")
	s := String(buf)

	require.Equal(t, "/org/example/Object", s)
	require.Equal(t, unsafe.SliceData(buf), unsafe.StringData(s))
	require.Empty(t, String(nil))
	require.Empty(t, String([]byte{}))
}

func TestOffset(t *testing.T) {
	buf := []byte("xxxxorg.example.Iface\x00yyyy")

	t.Run("Inside", func(t *testing.T) {
		off, ok := Offset(buf, String(buf[4:21]))
		require.True(t, ok)
		require.Equal(t, 4, off)
	})

	t.Run("Whole buffer", func(t *testing.T) {
		off, ok := Offset(buf, String(buf))
		require.True(t, ok)
		require.Equal(t, 0, off)
	})

	t.Run("Tail", func(t *testing.T) {
		off, ok := Offset(buf, String(buf[len(buf)-1:]))
		require.True(t, ok)
		require.Equal(t, len(buf)-1, off)
	})

	t.Run("Unrelated buffer", func(t *testing.T) {
		other := []byte("org.example.Iface")
		_, ok := Offset(buf, String(other))
		require.False(t, ok)
	})

	t.Run("Overruns buffer", func(t *testing.T) {
		wide := []byte("0123456789")
		_, ok := Offset(wide[:5], String(wide[3:8]))
		require.False(t, ok)
	})

	t.Run("Empty", func(t *testing.T) {
		_, ok := Offset(buf, "")
		require.False(t, ok)
		_, ok = Offset(nil, "abc")
		require.False(t, ok)
	})
}
