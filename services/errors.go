package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the disbursement workflow. Controllers map these to
// HTTP statuses; nothing in this package retries on them.
var (
	// ErrInvalidOwnerState: the owner entity is not in the state the
	// operation requires (e.g. funding requested before acceptance).
	ErrInvalidOwnerState = errors.New("owner entity is not in a valid state for this operation")

	// ErrDuplicateApprovedRequest: an approved request of the same kind
	// already exists for the owner entity.
	ErrDuplicateApprovedRequest = errors.New("an approved request of this kind already exists for this entity")

	// ErrAlreadyDecided: the request already reached a terminal state.
	ErrAlreadyDecided = errors.New("request has already been decided")

	// ErrRequestNotPending: documents can only be attached while pending.
	ErrRequestNotPending = errors.New("request is no longer pending")

	// ErrRequestNotApproved: payouts only run against approved requests.
	ErrRequestNotApproved = errors.New("request is not approved")

	// ErrDuplicateQuota: a department gets one quota per fiscal year.
	ErrDuplicateQuota = errors.New("a quota already exists for this department and fiscal year")
)

// ValidationError reports malformed or missing fields on a write. The write
// is never partially applied when one of these is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
