package entity

import "fmt"

// ValidationError names the NewsRecord field that failed validation.
// Collect drops records carrying one; it never reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
