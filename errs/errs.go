// Package errs defines the sentinel errors returned by dbuswire packages.
//
// Errors are compared with errors.Is. Callers that need context (the field code or byte
// offset involved) receive the sentinel wrapped with fmt.Errorf and %w.
package errs

import "errors"

// Name and value validation errors.
var (
	ErrInvalidObjectPath    = errors.New("invalid object path")
	ErrInvalidInterfaceName = errors.New("invalid interface name")
	ErrInvalidMemberName    = errors.New("invalid member name")
	ErrInvalidErrorName     = errors.New("invalid error name")
	ErrInvalidBusName       = errors.New("invalid bus name")
	ErrInvalidSignature     = errors.New("invalid signature")
)

// Header field errors.
var (
	ErrFieldTypeMismatch = errors.New("header field carries a value of the wrong type")
	ErrInvalidFieldCode  = errors.New("invalid header field code")
	ErrMissingField      = errors.New("required header field is missing")

	// ErrCorruptFieldCache reports that a cached field range no longer addresses valid text
	// in its buffer. It indicates a corrupted or foreign buffer, not bad input, and is not
	// recoverable by retrying.
	ErrCorruptFieldCache = errors.New("cached field range does not address valid text")
)

// Message codec errors.
var (
	ErrTruncated           = errors.New("message truncated")
	ErrInvalidEndian       = errors.New("invalid endianness flag")
	ErrInvalidMessageType  = errors.New("invalid message type")
	ErrUnsupportedVersion  = errors.New("unsupported protocol version")
	ErrInvalidSerial       = errors.New("message serial must be non-zero")
	ErrMessageTooLarge     = errors.New("message exceeds maximum size")
	ErrInvalidPadding      = errors.New("non-zero alignment padding")
	ErrMissingNulTerminate = errors.New("string is not nul terminated")
	ErrInvalidUTF8         = errors.New("string is not valid UTF-8")
	ErrBodySignature       = errors.New("body present without a signature")
)

// Capture errors.
var (
	ErrInvalidHeaderSize      = errors.New("invalid capture header size")
	ErrInvalidMagicNumber     = errors.New("invalid capture magic number")
	ErrInvalidHeaderFlags     = errors.New("invalid capture header flags")
	ErrInvalidIndexEntrySize  = errors.New("invalid capture index entry size")
	ErrInvalidIndexEntry      = errors.New("capture index entry out of data bounds")
	ErrMessageIndexOutOfRange = errors.New("message index out of range")
	ErrTooManyMessages        = errors.New("too many messages in capture")
	ErrWriterFinished         = errors.New("capture writer already finished")
	ErrTimestampOutOfOrder    = errors.New("capture timestamp precedes start time")
	ErrTimestampOutOfRange    = errors.New("capture timestamp too far from start time")
	ErrInvalidCompression     = errors.New("invalid compression type")
	ErrDecompressedTooLarge   = errors.New("decompressed data exceeds maximum size")
	ErrDataSizeMismatch       = errors.New("capture data size does not match header")

	ErrInvalidMemberNamesPayload = errors.New("invalid capture member names payload")
	ErrInvalidMemberNamesCount   = errors.New("invalid capture member names count")
	ErrHashMismatch              = errors.New("member name does not match any recorded member hash")
)
