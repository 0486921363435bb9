package training

import (
	"fmt"

	trainingModels "lms/models/training"
)

// NotFoundError indicates a referenced user, module or enrollment does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// DuplicateEnrollmentError indicates an enrollment already exists for the pair.
type DuplicateEnrollmentError struct {
	UserID   uint
	ModuleID uint
}

func (e *DuplicateEnrollmentError) Error() string {
	return fmt.Sprintf("user %d is already enrolled in module %d", e.UserID, e.ModuleID)
}

// IllegalTransitionError indicates the requested status is not reachable
// from the enrollment's current status.
type IllegalTransitionError struct {
	From trainingModels.EnrollmentStatus
	To   trainingModels.EnrollmentStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %q to %q", e.From, e.To)
}

// CertificateNotEligibleError carries the specific guard condition that
// blocked a completed -> certified transition, so callers can render an
// actionable message.
type CertificateNotEligibleError struct {
	Condition string
}

func (e *CertificateNotEligibleError) Error() string {
	return "cannot certify: " + e.Condition
}

// ConcurrencyConflictError indicates another writer mutated the enrollment
// mid-operation. Callers should retry the whole operation.
type ConcurrencyConflictError struct {
	EnrollmentID uint
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("enrollment %d was modified concurrently, retry the operation", e.EnrollmentID)
}
