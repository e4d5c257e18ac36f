// Package genericsutil provides small generic helpers used across the module.
package genericsutil

// Simple alias for an empty struct
type None = struct{}

// Returns the zero value of type T
func Zero[T any]() T {
	var zero T
	return zero
}

// Returns v cast as type T if possible, otherwise returns the zero value of T
func AssertOrZero[T any](v any) T {
	if typedV, ok := v.(T); ok {
		return typedV
	}
	return Zero[T]()
}

// Returns field if it is not the zero value for its type, otherwise returns defaultVal
func OrDefault[F comparable](field F, defaultVal F) F {
	var zero F
	if field == zero {
		return defaultVal
	}
	return field
}

// Returns a pointer to v. Useful for partial-config literals.
func Ptr[T any](v T) *T {
	return &v
}

// Dereferences p if non-nil, otherwise returns defaultVal.
func FromPtr[T any](p *T, defaultVal T) T {
	if p != nil {
		return *p
	}
	return defaultVal
}
