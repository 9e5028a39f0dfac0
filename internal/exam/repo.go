package exam

import (
	"context"
	"time"

	"github.com/examind-labs/examind/internal/grading"
)

type ExamListOpts struct {
	ViewerID   string
	ViewerRole string // student | teacher | parent | admin
	Subject    string
	Limit      int
	Offset     int
}

type SubmissionListOpts struct {
	ExamID    string
	StudentID string
	Submitted *bool
	Graded    *bool
	Limit     int
	Offset    int
}

// ExamStats are simple aggregates over one exam's submitted attempts.
type ExamStats struct {
	TotalSubmissions int     `json:"total_submissions"`
	AverageScore     float64 `json:"average_score"` // mean percentage
	PassRate         float64 `json:"pass_rate"`     // 0..100
	HighestScore     float64 `json:"highest_score"`
	LowestScore      float64 `json:"lowest_score"`
}

// Store owns persistence and the attempt state machine. Lifecycle transitions
// run inside the store so their guards — the policy re-check on start, the
// compare-and-swap on finalize — are atomic with the write.
type Store interface {
	PutQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	ListQuestions(ctx context.Context, limit, offset int) ([]Question, error)

	PutExam(ctx context.Context, e Exam) (Exam, error)
	GetExam(ctx context.Context, id string) (Exam, error)           // full, with answer keys
	GetExamForStudent(ctx context.Context, id string) (Exam, error) // keys stripped
	ListExams(ctx context.Context, opts ExamListOpts) ([]Exam, error)

	StartAttempt(ctx context.Context, examID, studentID string) (Submission, error)
	RecordAnswer(ctx context.Context, submissionID, studentID, questionID string, resp grading.Response, timeTakenSec int) (Submission, error)
	Finalize(ctx context.Context, submissionID, studentID string) (Submission, error)
	AutoFinalize(ctx context.Context, submissionID string) (Submission, error)
	GradeAnswer(ctx context.Context, submissionID, questionID string, marks float64, feedback, gradedBy string) (Submission, error)

	GetSubmission(ctx context.Context, id string) (Submission, error)
	ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error)
	ListExpired(ctx context.Context, now time.Time) ([]Submission, error)

	ExamStats(ctx context.Context, examID string) (ExamStats, error)
}
