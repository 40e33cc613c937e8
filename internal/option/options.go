// Package option provides a generic functional-option helper, used by the
// registry constructor (registry.Option), so knobs are configured through
// options instead of bespoke config structs or a file/env loader. The
// storage root and object builder constructors take no options.
package option

// Option configures a target of type T. Apply returns an error so options
// that validate their input (e.g. a non-negative pool size) can reject bad
// configuration at construction time rather than panicking later.
type Option[T any] interface {
	apply(T) error
}

// Func wraps a function as an Option.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error { return f.applyFunc(target) }

// New creates an Option from a function that can fail.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates an Option from a function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{applyFunc: func(target T) error {
		fn(target)

		return nil
	}}
}

// Apply applies every option to target in order, stopping at the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
