package pokeapi

import "fmt"

// Status classifies the outcome of a lookup.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusTransient
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusTransient:
		return "transient"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the tagged outcome of a lookup. Value is only meaningful when
// Status is StatusFound; Err is only set when Status is StatusTransient.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Found reports whether the lookup resolved.
func (r Result[T]) Found() bool {
	return r.Status == StatusFound
}

// Ptr returns the value when found and nil otherwise.
func (r Result[T]) Ptr() *T {
	if r.Status != StatusFound {
		return nil
	}
	v := r.Value
	return &v
}

func found[T any](v T) Result[T] {
	return Result[T]{Status: StatusFound, Value: v}
}

func notFound[T any]() Result[T] {
	return Result[T]{Status: StatusNotFound}
}

func transient[T any](err error) Result[T] {
	return Result[T]{Status: StatusTransient, Err: err}
}
