//go:build !debug_heap_utils

package heaputils

// DebugValidate runs the object's Validate method and panics on any error.
// Without the debug_heap_utils build tag this is a no-op.
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 panics when the provided value is not a power of two.
// Without the debug_heap_utils build tag this is a no-op.
func DebugCheckPow2[T Number](value T, name string) {
}
