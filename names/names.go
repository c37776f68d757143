// Package names provides the strongly typed string values carried in message headers:
// object paths, interface, member, error and bus names, and type signatures.
//
// Each type has a ParseX constructor that validates its input against the protocol naming
// rules. Parsing never copies: a parsed value shares the bytes of the string it was parsed
// from, so values parsed from a zero-copy view of a message buffer keep addressing that
// buffer.
package names

import (
	"fmt"

	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/format"
)

type (
	// ObjectPath names an object, e.g. "/org/freedesktop/DBus".
	ObjectPath string
	// InterfaceName names an interface, e.g. "org.freedesktop.DBus.Properties".
	InterfaceName string
	// MemberName names a method or signal, e.g. "GetAll".
	MemberName string
	// ErrorName names an error, e.g. "org.freedesktop.DBus.Error.Failed".
	ErrorName string
	// BusName is a unique (":1.42") or well-known ("org.example.Service") connection name.
	BusName string
	// Signature is a sequence of complete types, e.g. "a{sv}".
	Signature string
)

// ParseObjectPath validates s as an object path.
func ParseObjectPath(s string) (ObjectPath, error) {
	if err := validateObjectPath(s); err != nil {
		return "", err
	}

	return ObjectPath(s), nil
}

// ParseInterfaceName validates s as an interface name.
func ParseInterfaceName(s string) (InterfaceName, error) {
	if !isDottedName(s, false, false) {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidInterfaceName, s)
	}

	return InterfaceName(s), nil
}

// ParseMemberName validates s as a member name.
func ParseMemberName(s string) (MemberName, error) {
	if len(s) == 0 || len(s) > format.MaxNameLength || !isElement(s, false, false) {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidMemberName, s)
	}

	return MemberName(s), nil
}

// ParseErrorName validates s as an error name. Error names follow interface name rules.
func ParseErrorName(s string) (ErrorName, error) {
	if !isDottedName(s, false, false) {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidErrorName, s)
	}

	return ErrorName(s), nil
}

// ParseBusName validates s as a unique or well-known bus name.
func ParseBusName(s string) (BusName, error) {
	var ok bool
	if len(s) > 0 && s[0] == ':' {
		ok = len(s) <= format.MaxNameLength && isDottedName(s[1:], true, true)
	} else {
		ok = isDottedName(s, true, false)
	}
	if !ok {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidBusName, s)
	}

	return BusName(s), nil
}

// ParseSignature validates s as a signature. The empty signature is valid.
func ParseSignature(s string) (Signature, error) {
	if err := validateSignature(s); err != nil {
		return "", err
	}

	return Signature(s), nil
}

// IsUnique reports whether n is a unique connection name.
func (n BusName) IsUnique() bool {
	return len(n) > 0 && n[0] == ':'
}

// IsRoot reports whether p is the root path "/".
func (p ObjectPath) IsRoot() bool {
	return p == "/"
}

func validateObjectPath(s string) error {
	if len(s) == 0 || s[0] != '/' {
		return fmt.Errorf("%w: %q must start with '/'", errs.ErrInvalidObjectPath, s)
	}
	if len(s) == 1 {
		return nil
	}
	if s[len(s)-1] == '/' {
		return fmt.Errorf("%w: %q has a trailing '/'", errs.ErrInvalidObjectPath, s)
	}

	elemLen := 0
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '/' {
			if elemLen == 0 {
				return fmt.Errorf("%w: %q has an empty element", errs.ErrInvalidObjectPath, s)
			}
			elemLen = 0

			continue
		}
		if !isAlnum(c) && c != '_' {
			return fmt.Errorf("%w: %q contains %q", errs.ErrInvalidObjectPath, s, c)
		}
		elemLen++
	}

	return nil
}

// isDottedName checks a name made of at least two '.'-separated elements.
func isDottedName(s string, allowHyphen, allowLeadingDigit bool) bool {
	if len(s) == 0 || len(s) > format.MaxNameLength {
		return false
	}

	elements := 0
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '.' {
			continue
		}
		if !isElement(s[start:i], allowHyphen, allowLeadingDigit) {
			return false
		}
		elements++
		start = i + 1
	}

	return elements >= 2
}

func isElement(s string, allowHyphen, allowLeadingDigit bool) bool {
	if len(s) == 0 {
		return false
	}
	if !allowLeadingDigit && isDigit(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isAlnum(c), c == '_':
		case c == '-' && allowHyphen:
		default:
			return false
		}
	}

	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
