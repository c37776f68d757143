package format

type (
	FieldCode       uint8
	MessageType     uint8
	Flags           uint8
	CompressionType uint8
)

// Header field codes.
const (
	FieldInvalid     FieldCode = 0x0 // FieldInvalid is never valid on the wire.
	FieldPath        FieldCode = 0x1 // FieldPath is the object path of a call or signal.
	FieldInterface   FieldCode = 0x2 // FieldInterface is the interface of a call or signal.
	FieldMember      FieldCode = 0x3 // FieldMember is the method or signal name.
	FieldErrorName   FieldCode = 0x4 // FieldErrorName is the name of an error reply.
	FieldReplySerial FieldCode = 0x5 // FieldReplySerial is the serial of the call being replied to.
	FieldDestination FieldCode = 0x6 // FieldDestination is the bus name of the recipient.
	FieldSender      FieldCode = 0x7 // FieldSender is the unique bus name of the sender.
	FieldSignature   FieldCode = 0x8 // FieldSignature is the body signature.
	FieldUnixFDs     FieldCode = 0x9 // FieldUnixFDs is the number of file descriptors in the message.
)

// Message types.
const (
	TypeInvalid      MessageType = 0x0
	TypeMethodCall   MessageType = 0x1
	TypeMethodReturn MessageType = 0x2
	TypeError        MessageType = 0x3
	TypeSignal       MessageType = 0x4
)

// Header flags.
const (
	FlagNoReplyExpected      Flags = 0x1
	FlagNoAutoStart          Flags = 0x2
	FlagAllowInteractiveAuth Flags = 0x4

	flagMask = FlagNoReplyExpected | FlagNoAutoStart | FlagAllowInteractiveAuth
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

const (
	// ProtocolVersion is the only major protocol version understood on the wire.
	ProtocolVersion uint8 = 1

	// MaxFieldsInMessage is the capacity reserved for a header field collection.
	// Nine codes are defined; rounded up to the next 8-element boundary.
	MaxFieldsInMessage = 16

	// MaxMessageSize is the largest message accepted, header and body included (128 MiB).
	MaxMessageSize = 1 << 27

	// MaxArrayLength bounds the header field array (64 MiB).
	MaxArrayLength = 1 << 26

	// MaxNameLength bounds interface, member, error and bus names, and signatures.
	MaxNameLength = 255
)

func (c FieldCode) String() string {
	switch c {
	case FieldPath:
		return "Path"
	case FieldInterface:
		return "Interface"
	case FieldMember:
		return "Member"
	case FieldErrorName:
		return "ErrorName"
	case FieldReplySerial:
		return "ReplySerial"
	case FieldDestination:
		return "Destination"
	case FieldSender:
		return "Sender"
	case FieldSignature:
		return "Signature"
	case FieldUnixFDs:
		return "UnixFDs"
	default:
		return "Unknown"
	}
}

// Signature returns the single-type wire signature a field with this code must carry,
// or 0 for codes that are not defined.
func (c FieldCode) Signature() byte {
	switch c {
	case FieldPath:
		return 'o'
	case FieldInterface, FieldMember, FieldErrorName, FieldDestination, FieldSender:
		return 's'
	case FieldReplySerial, FieldUnixFDs:
		return 'u'
	case FieldSignature:
		return 'g'
	default:
		return 0
	}
}

// IsKnown reports whether c is one of the defined header field codes.
func (c FieldCode) IsKnown() bool {
	return c >= FieldPath && c <= FieldUnixFDs
}

func (t MessageType) String() string {
	switch t {
	case TypeMethodCall:
		return "MethodCall"
	case TypeMethodReturn:
		return "MethodReturn"
	case TypeError:
		return "Error"
	case TypeSignal:
		return "Signal"
	default:
		return "Invalid"
	}
}

// IsValid reports whether t is a message type that may appear on the wire.
func (t MessageType) IsValid() bool {
	return t >= TypeMethodCall && t <= TypeSignal
}

// Has reports whether all bits of flag are set in f.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Known masks out undefined flag bits, which receivers must ignore.
func (f Flags) Known() Flags {
	return f & flagMask
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
