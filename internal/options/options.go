// Package options implements the functional options used to configure message builders and
// capture writers.
package options

// Option configures a target of type T. An option that returns an error stops Apply.
type Option[T any] func(T) error

// New wraps a fallible configuration function.
func New[T any](fn func(T) error) Option[T] {
	return Option[T](fn)
}

// NoError wraps a configuration function that cannot fail.
func NoError[T any](fn func(T)) Option[T] {
	return func(target T) error {
		fn(target)
		return nil
	}
}

// Apply applies opts to target in order and returns the first error.
// Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(target); err != nil {
			return err
		}
	}

	return nil
}
