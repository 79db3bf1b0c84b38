package pause

import (
	"errors"
	"fmt"
)

var (
	ErrNoProposal           = errors.New("no pause proposal pending")
	ErrSameAdmin            = errors.New("pause confirmation must come from a different admin")
	ErrConfirmationMismatch = errors.New("pause confirmation mask mismatch")
)

// PausedError reports that an operation was blocked by the active pause
// mask. It carries both masks so tooling can report why without a second
// query.
type PausedError struct {
	Active   Category
	Required Category
}

func (e *PausedError) Error() string {
	return fmt.Sprintf("operation paused: active mask %#x blocks %s", uint64(e.Active), e.Required)
}

// NotPausedError reports that a remediation operation ran without the
// required pause being active.
type NotPausedError struct {
	Active   Category
	Required Category
}

func (e *NotPausedError) Error() string {
	return fmt.Sprintf("remediation requires %s to be paused, active mask is %#x", e.Required, uint64(e.Active))
}
