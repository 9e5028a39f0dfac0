package exam

import (
	"errors"
	"fmt"
)

var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAnswerNotFound     = errors.New("answer not found")
	ErrAlreadySubmitted   = errors.New("attempt already submitted")
	ErrNotSubmitted       = errors.New("attempt not yet submitted")
	ErrNotOwner           = errors.New("attempt belongs to another student")
	ErrNotEssay           = errors.New("only essay answers can be graded manually")
)

type DenyReason string

const (
	DenyNotAvailable  DenyReason = "exam_not_available"
	DenySingleAttempt DenyReason = "multiple_attempts_not_allowed"
	DenyMaxAttempts   DenyReason = "max_attempts_exceeded"
)

// PolicyError reports an attempt-policy denial with its specific reason.
type PolicyError struct {
	Reason DenyReason
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("attempt denied: %s", e.Reason)
}
