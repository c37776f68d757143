package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_Pad(t *testing.T) {
	bb := NewByteBuffer(16)
	_ = bb.WriteByte('l')
	bb.Pad(8)
	require.Equal(t, 8, bb.Len())
	require.Equal(t, []byte{'l', 0, 0, 0, 0, 0, 0, 0}, bb.Bytes())

	bb.Pad(8)
	require.Equal(t, 8, bb.Len(), "already aligned")

	_, _ = bb.WriteString("ab")
	bb.Pad(4)
	require.Equal(t, 12, bb.Len())
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("Sufficient capacity", func(t *testing.T) {
		bb := NewByteBuffer(64)
		before := cap(bb.B)
		bb.Grow(32)
		require.Equal(t, before, cap(bb.B))
	})

	t.Run("Small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(8)
		_, _ = bb.Write([]byte("12345678"))
		bb.Grow(1)
		require.GreaterOrEqual(t, cap(bb.B), 8+MessageBufferDefaultSize)
		require.Equal(t, []byte("12345678"), bb.Bytes())
	})

	t.Run("Large request", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(10 * MessageBufferDefaultSize)
		require.GreaterOrEqual(t, cap(bb.B), 10*MessageBufferDefaultSize)
	})
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	_, _ = bb.WriteString("hello")

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
	require.Equal(t, "hello", out.String())
}

func TestByteBufferPool(t *testing.T) {
	t.Run("Put resets", func(t *testing.T) {
		p := NewByteBufferPool(32, 0)
		bb := p.Get()
		_, _ = bb.WriteString("data")
		p.Put(bb)

		got := p.Get()
		require.Equal(t, 0, got.Len())
	})

	t.Run("Oversized buffers are dropped", func(t *testing.T) {
		p := NewByteBufferPool(8, 16)
		bb := p.Get()
		bb.Grow(1024)
		p.Put(bb)

		got := p.Get()
		require.LessOrEqual(t, cap(got.B), 16)
	})

	t.Run("Nil put", func(t *testing.T) {
		require.NotPanics(t, func() { NewByteBufferPool(8, 0).Put(nil) })
	})

	t.Run("Default pools", func(t *testing.T) {
		mb := GetMessageBuffer()
		require.NotNil(t, mb)
		PutMessageBuffer(mb)

		cb := GetCaptureBuffer()
		require.NotNil(t, cb)
		PutCaptureBuffer(cb)
	})
}
