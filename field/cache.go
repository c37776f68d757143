package field

import (
	"github.com/arloliu/dbuswire/names"
)

// HeaderView is the decoded header a Cache is built from and falls back to.
//
// Text values it returns must be views into the message buffer for the Cache to record
// their positions; values that are not are still served, through a fallback lookup.
type HeaderView interface {
	Path() (names.ObjectPath, bool, error)
	Interface() (names.InterfaceName, bool, error)
	Member() (names.MemberName, bool, error)
	ReplySerial() (uint32, bool, error)
}

// Source is the message a Cache reads from: its raw buffer, and a full, uncached header
// decode used when a cached position is unresolved.
type Source interface {
	Bytes() []byte
	HeaderView() (HeaderView, error)
}

// serialSlot caches the reply serial. Integers have no byte-range form, so the value is
// stored directly.
type serialSlot struct {
	resolved bool
	present  bool
	value    uint32
}

// Cache holds the positions of the fields read while routing every message: path,
// interface and member, plus the reply serial.
//
// A Cache is built once, right after the header is decoded, and never changes. It must
// only be read against the Source whose buffer it was built from. It is safe for
// concurrent use. The zero value is valid and resolves every field through the Source.
type Cache struct {
	path        Position
	iface       Position
	member      Position
	replySerial serialSlot
}

// NewCache records where h's path, interface and member live in buf and captures the
// reply serial. It fails only if one of h's accessors fails.
func NewCache(buf []byte, h HeaderView) (Cache, error) {
	path, ok, err := h.Path()
	if err != nil {
		return Cache{}, err
	}
	pathPos := NewPosition(buf, string(path), ok)

	iface, ok, err := h.Interface()
	if err != nil {
		return Cache{}, err
	}
	ifacePos := NewPosition(buf, string(iface), ok)

	member, ok, err := h.Member()
	if err != nil {
		return Cache{}, err
	}
	memberPos := NewPosition(buf, string(member), ok)

	serial, ok, err := h.ReplySerial()
	if err != nil {
		return Cache{}, err
	}

	return Cache{
		path:        pathPos,
		iface:       ifacePos,
		member:      memberPos,
		replySerial: serialSlot{resolved: true, present: ok, value: serial},
	}, nil
}

// Path returns the message's object path.
func (c Cache) Path(src Source) (names.ObjectPath, bool, error) {
	return ReadPosition(c.path, src.Bytes(), names.ParseObjectPath, func() (names.ObjectPath, bool, error) {
		h, err := src.HeaderView()
		if err != nil {
			return "", false, err
		}

		return h.Path()
	})
}

// Interface returns the message's interface name.
func (c Cache) Interface(src Source) (names.InterfaceName, bool, error) {
	return ReadPosition(c.iface, src.Bytes(), names.ParseInterfaceName, func() (names.InterfaceName, bool, error) {
		h, err := src.HeaderView()
		if err != nil {
			return "", false, err
		}

		return h.Interface()
	})
}

// Member returns the message's member name.
func (c Cache) Member(src Source) (names.MemberName, bool, error) {
	return ReadPosition(c.member, src.Bytes(), names.ParseMemberName, func() (names.MemberName, bool, error) {
		h, err := src.HeaderView()
		if err != nil {
			return "", false, err
		}

		return h.Member()
	})
}

// ReplySerial returns the serial of the call this message replies to.
func (c Cache) ReplySerial(src Source) (uint32, bool, error) {
	if c.replySerial.resolved {
		return c.replySerial.value, c.replySerial.present, nil
	}

	h, err := src.HeaderView()
	if err != nil {
		return 0, false, err
	}

	return h.ReplySerial()
}

// Positions returns the cached positions of path, interface and member.
func (c Cache) Positions() (path, iface, member Position) {
	return c.path, c.iface, c.member
}
