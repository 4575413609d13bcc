package query

import "github.com/samber/mo"

// Tristate models an optional update field with three distinct states:
// unchanged (not sent), explicitly nulled, or set to a value. This replaces
// the ambiguous "nil pointer" representation where "no update" and "clear the
// field" would collapse into one state.
type Tristate[T any] struct {
	provided bool
	value    mo.Option[T]
}

// Unchanged returns a Tristate that leaves the field out of the request body.
func Unchanged[T any]() Tristate[T] {
	return Tristate[T]{}
}

// Null returns a Tristate that explicitly nulls the field server-side.
func Null[T any]() Tristate[T] {
	return Tristate[T]{provided: true, value: mo.None[T]()}
}

// Set returns a Tristate carrying a concrete replacement value.
func Set[T any](value T) Tristate[T] {
	return Tristate[T]{provided: true, value: mo.Some(value)}
}

// Provided reports whether the field participates in the update at all.
func (t Tristate[T]) Provided() bool {
	return t.provided
}

// Value returns the replacement value, empty when the field is nulled or unchanged.
func (t Tristate[T]) Value() mo.Option[T] {
	return t.value
}

// Apply writes the field into a request body mapping under the given key.
// Unchanged fields leave the mapping untouched; nulled fields store nil.
func (t Tristate[T]) Apply(body map[string]any, key string) {
	if !t.provided {
		return
	}
	if value, ok := t.value.Get(); ok {
		body[key] = value
		return
	}
	body[key] = nil
}
