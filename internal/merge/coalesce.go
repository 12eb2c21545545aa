package merge

// coalesce prefers the incoming optional value when it is present.
func coalesce[T any](base, incoming *T) *T {
	if incoming != nil {
		return incoming
	}
	return base
}

// coalesceSlice replaces the whole sequence with incoming when it is
// non-empty. Elements are never merged individually.
func coalesceSlice[S ~[]E, E any](base, incoming S) S {
	if len(incoming) > 0 {
		return incoming
	}
	return base
}
