// Package mapper holds small generic helpers for converting between layers.
package mapper

// MapSlice applies mapFunc to each element of items.
// A nil input yields an empty, non-nil slice so JSON encodes it as [].
func MapSlice[T any, R any](items []T, mapFunc func(T) R) []R {
	result := make([]R, 0, len(items))
	for _, item := range items {
		result = append(result, mapFunc(item))
	}
	return result
}

// MapSlicePtr is MapSlice for pointer slices; nil elements are skipped.
func MapSlicePtr[T any, R any](items []*T, mapFunc func(*T) *R) []*R {
	result := make([]*R, 0, len(items))
	for _, item := range items {
		if item != nil {
			result = append(result, mapFunc(item))
		}
	}
	return result
}
