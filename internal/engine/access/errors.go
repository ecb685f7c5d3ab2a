package access

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrDenied          = errors.New("access denied")
)

// DeniedError carries the gate's reason. The session has already been revoked
// when a Guard returns it.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

// RoleMismatch reports whether an otherwise valid profile lacked the required role.
func (e *DeniedError) RoleMismatch() bool {
	return e.Reason == ReasonInsufficientRole
}
