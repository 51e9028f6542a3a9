package chain

import (
	"errors"
	"fmt"
)

// RevertError indicates the execution environment rejected a call. It carries the revert reason reported by the
// contract, if any.
type RevertError struct {
	// Reason describes the revert reason string reported by the contract. It may be empty.
	Reason string
}

// Error returns the error message string, implementing the `error` interface.
func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return fmt.Sprintf("execution reverted: %s", e.Reason)
}

// NewRevertError creates a RevertError with the provided revert reason.
func NewRevertError(reason string) *RevertError {
	return &RevertError{Reason: reason}
}

// IsRevertError returns true if the provided error (or any error it wraps) is a RevertError.
func IsRevertError(err error) bool {
	var revertErr *RevertError
	return errors.As(err, &revertErr)
}
