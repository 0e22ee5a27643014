package services

import (
	"errors"
	"fmt"
)

// Error kinds the controllers map to HTTP statuses.
const (
	KindNotFound          = "not_found"
	KindValidation        = "validation"
	KindInvalidTransition = "invalid_transition"
	KindInvalidVerdict    = "invalid_verdict"
	KindInvalidGrade      = "invalid_grade"
	KindAlreadyDecided    = "already_decided"
	KindConflict          = "conflict"
)

// WorkflowError is the typed failure the services return for expected
// conditions. CurrentStatus is set on guard failures so callers can report
// where the entity actually is.
type WorkflowError struct {
	Kind          string `json:"kind"`
	Message       string `json:"message"`
	CurrentStatus string `json:"current_status,omitempty"`
}

func (e *WorkflowError) Error() string {
	return e.Message
}

// KindOf returns the workflow error kind, or "" for other errors.
func KindOf(err error) string {
	var werr *WorkflowError
	if errors.As(err, &werr) {
		return werr.Kind
	}
	return ""
}

func notFoundErr(format string, args ...any) *WorkflowError {
	return &WorkflowError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func validationErr(format string, args ...any) *WorkflowError {
	return &WorkflowError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func invalidVerdictErr(verdict string) *WorkflowError {
	return &WorkflowError{
		Kind:    KindInvalidVerdict,
		Message: fmt.Sprintf("invalid verdict %q", verdict),
	}
}

func invalidGradeErr(grade float64) *WorkflowError {
	return &WorkflowError{
		Kind:    KindInvalidGrade,
		Message: fmt.Sprintf("grade %.2f is outside the 0-100 range", grade),
	}
}

func invalidTransitionErr(target, currentName string) *WorkflowError {
	msg := fmt.Sprintf("cannot move to %s from the current status", target)
	if currentName != "" {
		msg = fmt.Sprintf("cannot move to %s while %s", target, currentName)
	}
	return &WorkflowError{
		Kind:          KindInvalidTransition,
		Message:       msg,
		CurrentStatus: currentName,
	}
}

func alreadyDecidedErr(defenseID int) *WorkflowError {
	return &WorkflowError{
		Kind:    KindAlreadyDecided,
		Message: fmt.Sprintf("defense %d already has a verdict", defenseID),
	}
}
