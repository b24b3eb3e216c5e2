package store

import "fmt"

// validationError reports a Params.Validate failure; wrapped into an
// OpError{SYNTAX} by the Runner before it crosses the package boundary.
type validationError struct {
	opKind   OperationKind
	required string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("operation %s missing required field(s): %s", e.opKind, e.required)
}

func errRequiredField(opKind OperationKind, required string) error {
	return &validationError{opKind: opKind, required: required}
}
