//go:build debug_heap_utils

package heaputils

// DebugValidate runs the object's Validate method and panics on any error.
// Without the debug_heap_utils build tag this is a no-op.
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 panics when the provided value is not a power of two.
// Without the debug_heap_utils build tag this is a no-op.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
