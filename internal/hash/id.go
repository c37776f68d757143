package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// MemberID computes the xxHash64 of "interface.member" without building the joined string.
// An empty interface hashes as ".member", so members with and without an interface differ.
func MemberID(iface, member string) uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.WriteString(iface)
	_, _ = d.WriteString(".")
	_, _ = d.WriteString(member)

	return d.Sum64()
}
