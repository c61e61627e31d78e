package utils

// Ptr returns a pointer to v. Request structs use pointer fields to tell an
// unset option apart from its zero value.
//
// Example:
//
//	req.Temperature = utils.Ptr(0.2)
func Ptr[T any](v T) *T {
	return &v
}
