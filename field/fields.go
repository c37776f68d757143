package field

import (
	"iter"

	"github.com/arloliu/dbuswire/format"
)

// Fields is an ordered collection of header fields.
//
// Insertion order is preserved. Add does not enforce unique codes: a collection may hold
// several fields with the same code, and lookups return the first. Builders that need one
// field per code use Replace.
//
// Fields is not safe for concurrent mutation. It is built by one goroutine, while a
// message is composed or its header decoded, and only read afterwards.
type Fields struct {
	fields []Field
}

// NewFields creates an empty collection with room for every defined field code.
func NewFields() *Fields {
	return &Fields{fields: make([]Field, 0, format.MaxFieldsInMessage)}
}

// Add appends f, regardless of existing fields with the same code.
func (fs *Fields) Add(f Field) {
	fs.fields = append(fs.fields, f)
}

// Replace swaps the first field with f's code for f, keeping its position, and returns
// the displaced field. If no field has that code, f is appended and Replace returns false.
func (fs *Fields) Replace(f Field) (Field, bool) {
	for i := range fs.fields {
		if fs.fields[i].code == f.code {
			old := fs.fields[i]
			fs.fields[i] = f

			return old, true
		}
	}
	fs.Add(f)

	return Field{}, false
}

// Get returns the first field with the given code.
func (fs *Fields) Get(code format.FieldCode) (Field, bool) {
	for _, f := range fs.fields {
		if f.code == code {
			return f, true
		}
	}

	return Field{}, false
}

// Take returns the first field with the given code and empties the collection.
// The remaining fields are discarded.
func (fs *Fields) Take(code format.FieldCode) (Field, bool) {
	f, ok := fs.Get(code)
	fs.fields = nil

	return f, ok
}

// Remove deletes every field with the given code, keeping the order of the rest, and
// returns how many were removed.
func (fs *Fields) Remove(code format.FieldCode) int {
	kept := fs.fields[:0]
	for _, f := range fs.fields {
		if f.code != code {
			kept = append(kept, f)
		}
	}
	n := len(fs.fields) - len(kept)
	clear(fs.fields[len(kept):])
	fs.fields = kept

	return n
}

// Slice returns the fields in order. The slice shares the collection's storage and must
// not be modified.
func (fs *Fields) Slice() []Field {
	return fs.fields
}

// All returns an iterator over the fields in order.
func (fs *Fields) All() iter.Seq2[int, Field] {
	return func(yield func(int, Field) bool) {
		for i, f := range fs.fields {
			if !yield(i, f) {
				return
			}
		}
	}
}

// Clone returns an independent copy of the collection. Field values are shared, since a
// Field never changes after it is created.
func (fs *Fields) Clone() *Fields {
	c := &Fields{fields: make([]Field, len(fs.fields), max(len(fs.fields), format.MaxFieldsInMessage))}
	copy(c.fields, fs.fields)

	return c
}

// Len returns the number of fields, duplicates included.
func (fs *Fields) Len() int {
	return len(fs.fields)
}
