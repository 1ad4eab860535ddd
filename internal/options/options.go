// Package options implements a small functional-options helper shared by
// the encoder and decoder constructors.
package options

// Option configures a target of type T, returning an error if the
// supplied configuration is invalid.
type Option[T any] func(T) error

// Apply runs each option against target in order, stopping at the first
// error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt(target); err != nil {
			return err
		}
	}

	return nil
}

// NoError adapts a function that cannot fail into an Option.
func NoError[T any](fn func(T)) Option[T] {
	return func(target T) error {
		fn(target)
		return nil
	}
}
