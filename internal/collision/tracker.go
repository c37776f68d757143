package collision

import (
	"github.com/arloliu/dbuswire/errs"
)

// Tracker records the distinct interface members seen while writing a capture and
// detects member hash collisions.
//
// Names are kept as "interface.member", the string the member hash is computed over.
type Tracker struct {
	names        map[uint64]string   // first name seen per hash
	extra        map[string]struct{} // colliding names beyond the first per hash
	list         []string            // distinct names in first-seen order
	hasCollision bool
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64]string),
		extra: make(map[string]struct{}),
	}
}

// Track records the member iface.member under its hash id.
//
// A member already tracked is ignored without building its joined name. A different
// member with an id already in use sets the collision flag and is tracked as well.
//
// Returns:
//   - error: errs.ErrInvalidMemberName if member is empty
func (t *Tracker) Track(iface, member string, id uint64) error {
	if member == "" {
		return errs.ErrInvalidMemberName
	}

	existing, ok := t.names[id]
	if !ok {
		name := iface + "." + member
		t.names[id] = name
		t.list = append(t.list, name)

		return nil
	}
	if isJoined(existing, iface, member) {
		return nil
	}

	t.hasCollision = true
	name := iface + "." + member
	if _, dup := t.extra[name]; !dup {
		t.extra[name] = struct{}{}
		t.list = append(t.list, name)
	}

	return nil
}

// isJoined reports whether name equals iface + "." + member.
func isJoined(name, iface, member string) bool {
	return len(name) == len(iface)+1+len(member) &&
		name[:len(iface)] == iface &&
		name[len(iface)] == '.' &&
		name[len(iface)+1:] == member
}

// HasCollision returns true if two members with the same hash were tracked.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the distinct member names in the order they were first tracked.
func (t *Tracker) Names() []string {
	return t.list
}

// Count returns the number of distinct members.
func (t *Tracker) Count() int {
	return len(t.list)
}

// Reset clears all tracked members and the collision state.
func (t *Tracker) Reset() {
	clear(t.names)
	clear(t.extra)
	t.list = t.list[:0]
	t.hasCollision = false
}
