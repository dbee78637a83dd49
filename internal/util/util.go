package util

// Pointer simply returns a pointer to the supplied value
func Pointer[T any](v T) *T {
	return &v
}

// ValueOrDefault dereferences ptr or falls back to def when ptr is nil
func ValueOrDefault[T any](ptr *T, def T) T {
	if ptr != nil {
		return *ptr
	}
	return def
}
