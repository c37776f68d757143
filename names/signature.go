package names

import (
	"fmt"

	"github.com/arloliu/dbuswire/errs"
	"github.com/arloliu/dbuswire/format"
)

const maxContainerDepth = 32

// validateSignature checks that s is a sequence of complete types.
func validateSignature(s string) error {
	if len(s) > format.MaxNameLength {
		return fmt.Errorf("%w: length %d exceeds %d", errs.ErrInvalidSignature, len(s), format.MaxNameLength)
	}

	for i := 0; i < len(s); {
		next, err := completeType(s, i, 0, 0)
		if err != nil {
			return err
		}
		i = next
	}

	return nil
}

// CountTypes returns the number of complete types in sig.
func (sig Signature) CountTypes() int {
	n := 0
	for i := 0; i < len(sig); n++ {
		next, err := completeType(string(sig), i, 0, 0)
		if err != nil {
			return n
		}
		i = next
	}

	return n
}

// completeType parses one complete type starting at s[i] and returns the index after it.
func completeType(s string, i, arrays, structs int) (int, error) {
	if i >= len(s) {
		return 0, fmt.Errorf("%w: %q ends inside a container", errs.ErrInvalidSignature, s)
	}

	c := s[i]
	switch {
	case isBasicType(c), c == 'v':
		return i + 1, nil
	case c == 'a':
		if arrays+1 > maxContainerDepth {
			return 0, fmt.Errorf("%w: %q nests arrays too deeply", errs.ErrInvalidSignature, s)
		}
		if i+1 < len(s) && s[i+1] == '{' {
			return dictEntry(s, i+1, arrays+1, structs)
		}

		return completeType(s, i+1, arrays+1, structs)
	case c == '(':
		if structs+1 > maxContainerDepth {
			return 0, fmt.Errorf("%w: %q nests structs too deeply", errs.ErrInvalidSignature, s)
		}
		j := i + 1
		if j < len(s) && s[j] == ')' {
			return 0, fmt.Errorf("%w: %q has an empty struct", errs.ErrInvalidSignature, s)
		}
		for j < len(s) && s[j] != ')' {
			next, err := completeType(s, j, arrays, structs+1)
			if err != nil {
				return 0, err
			}
			j = next
		}
		if j >= len(s) {
			return 0, fmt.Errorf("%w: %q has an unterminated struct", errs.ErrInvalidSignature, s)
		}

		return j + 1, nil
	default:
		return 0, fmt.Errorf("%w: %q has unexpected type code %q", errs.ErrInvalidSignature, s, c)
	}
}

// dictEntry parses "{KV}" at s[i]; only valid as an array element.
func dictEntry(s string, i, arrays, structs int) (int, error) {
	j := i + 1
	if j >= len(s) || !isBasicType(s[j]) {
		return 0, fmt.Errorf("%w: %q dict entry key must be a basic type", errs.ErrInvalidSignature, s)
	}

	j, err := completeType(s, j+1, arrays, structs+1)
	if err != nil {
		return 0, err
	}
	if j >= len(s) || s[j] != '}' {
		return 0, fmt.Errorf("%w: %q dict entry must hold exactly two types", errs.ErrInvalidSignature, s)
	}

	return j + 1, nil
}

func isBasicType(c byte) bool {
	switch c {
	case 'y', 'b', 'n', 'q', 'i', 'u', 'x', 't', 'd', 'h', 's', 'o', 'g':
		return true
	default:
		return false
	}
}
