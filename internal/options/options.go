// Package options is the generic functional-option plumbing behind
// column.Option, used to configure ByteColumnWriter/NumericColumnWriter/
// TimestampColumnWriter/StringColumnWriter without exposing their internal
// config structs.
package options

// Option configures a target of type T, failing if the configuration is
// invalid (e.g. a compression type column doesn't support).
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain function into an Option.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New wraps fn as an Option.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// Apply runs every opt against target in order, stopping at the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}

// NoError wraps fn, which can't fail, as an Option.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}
