package entity

import "fmt"

// ValidationError reports which article field failed validation. The
// ingest store treats it as a skip rather than a failure, so one
// malformed article never aborts a batch.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
