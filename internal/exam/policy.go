package exam

import "time"

// Verdict is the attempt policy's answer to "may this student start?".
type Verdict struct {
	Allowed           bool
	Reason            DenyReason
	NextAttemptNumber int
}

// CanStartAttempt decides whether a student may begin a new attempt, given
// how many of their prior attempts for this exam were submitted. In-progress
// attempts do not count against the limit; abandoning one never burns it.
//
// Callers must re-evaluate this atomically with attempt creation: the SQL
// store runs the check inside the insert transaction and the unique index on
// (student, exam, attempt_number) backs the concurrent case.
func CanStartAttempt(e Exam, studentID string, submittedAttempts int, now time.Time) Verdict {
	if !e.AvailableTo(studentID, now) {
		return Verdict{Reason: DenyNotAvailable}
	}
	if submittedAttempts > 0 && !e.Settings.AllowMultipleAttempts {
		return Verdict{Reason: DenySingleAttempt}
	}
	max := e.Settings.MaxAttempts
	if max < 1 {
		max = 1
	}
	if submittedAttempts >= max {
		return Verdict{Reason: DenyMaxAttempts}
	}
	return Verdict{Allowed: true, NextAttemptNumber: submittedAttempts + 1}
}
