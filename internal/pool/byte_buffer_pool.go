package pool

import (
	"io"
	"sync"
)

const (
	MessageBufferDefaultSize  = 512              // typical header plus a small body
	MessageBufferMaxThreshold = 1024 * 64        // 64KiB
	CaptureBufferDefaultSize  = 1024 * 64        // 64KiB
	CaptureBufferMaxThreshold = 1024 * 1024 * 16 // 16MiB
)

// ByteBuffer is an append-only byte buffer with alignment helpers for wire encoding.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer, keeping its memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Grow ensures room for n more bytes without reallocating.
// Small buffers grow by at least their default size, larger ones by 25%.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	growBy := MessageBufferDefaultSize
	if cap(bb.B) > 4*MessageBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < n {
		growBy = n
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteString appends s to the buffer.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.B = append(bb.B, s...)
	return len(s), nil
}

// WriteByte appends c to the buffer.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// Pad appends zero bytes until the length is a multiple of align.
func (bb *ByteBuffer) Pad(align int) {
	for len(bb.B)%align != 0 {
		bb.B = append(bb.B, 0)
	}
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers.
//
// Buffers that grew beyond maxThreshold are dropped on Put instead of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	messagePool = NewByteBufferPool(MessageBufferDefaultSize, MessageBufferMaxThreshold)
	capturePool = NewByteBufferPool(CaptureBufferDefaultSize, CaptureBufferMaxThreshold)
)

// GetMessageBuffer retrieves a buffer for encoding one message.
func GetMessageBuffer() *ByteBuffer {
	return messagePool.Get()
}

// PutMessageBuffer returns a message buffer to its pool.
func PutMessageBuffer(bb *ByteBuffer) {
	messagePool.Put(bb)
}

// GetCaptureBuffer retrieves a buffer for assembling a capture data section.
func GetCaptureBuffer() *ByteBuffer {
	return capturePool.Get()
}

// PutCaptureBuffer returns a capture buffer to its pool.
func PutCaptureBuffer(bb *ByteBuffer) {
	capturePool.Put(bb)
}
