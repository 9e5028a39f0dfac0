package exam

import (
	"time"

	"github.com/examind-labs/examind/internal/grading"
)

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

type Question struct {
	ID            string           `json:"id"`
	Text          string           `json:"text"`
	Type          string           `json:"type"` // single_choice, true_false, fill_blank, essay, matching, ordering
	Subject       string           `json:"subject,omitempty"`
	Topic         string           `json:"topic,omitempty"`
	Difficulty    string           `json:"difficulty,omitempty"` // easy|medium|hard
	Marks         float64          `json:"marks"`
	NegativeMarks float64          `json:"negative_marks,omitempty"`
	Options       []Option         `json:"options,omitempty"`
	CorrectAnswer grading.Response `json:"correct_answer,omitempty"`
	CreatedBy     string           `json:"created_by,omitempty"`
	CreatedAt     int64            `json:"created_at,omitempty"`
}

type ExamSettings struct {
	AllowMultipleAttempts bool `json:"allow_multiple_attempts"`
	MaxAttempts           int  `json:"max_attempts"`
}

type Exam struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Subject      string     `json:"subject,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`
	QuestionIDs  []string   `json:"question_ids"`
	Questions    []Question `json:"questions,omitempty"` // hydrated on read
	TotalMarks   float64    `json:"total_marks"`          // derived: sum of question marks
	DurationMin  int        `json:"duration_min"`
	PassingMarks float64    `json:"passing_marks"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	Settings         ExamSettings `json:"settings"`
	EligibleStudents []string     `json:"eligible_students,omitempty"` // empty = open to all
	IsPublished      bool         `json:"is_published"`
	IsActive         bool         `json:"is_active"`
	CreatedAt        int64        `json:"created_at,omitempty"`
}

// AvailableTo reports whether a student may see and sit this exam right now:
// active, published, inside the scheduling window, and either the eligible
// list is empty (open exam) or the student is on it.
func (e Exam) AvailableTo(studentID string, now time.Time) bool {
	if !e.IsActive || !e.IsPublished {
		return false
	}
	if now.Before(e.StartDate) || now.After(e.EndDate) {
		return false
	}
	if len(e.EligibleStudents) == 0 {
		return true
	}
	for _, id := range e.EligibleStudents {
		if id == studentID {
			return true
		}
	}
	return false
}

// StripAnswerKeys removes grading material before serving an exam to students.
func (e Exam) StripAnswerKeys() Exam {
	qs := make([]Question, len(e.Questions))
	copy(qs, e.Questions)
	for i := range qs {
		qs[i].CorrectAnswer = grading.Response{}
		if len(qs[i].Options) > 0 {
			opts := make([]Option, len(qs[i].Options))
			copy(opts, qs[i].Options)
			for j := range opts {
				opts[j].IsCorrect = false
			}
			qs[i].Options = opts
		}
	}
	e.Questions = qs
	return e
}

// Answer is one recorded answer within a submission, unique per question.
type Answer struct {
	QuestionID      string           `json:"question_id"`
	Response        grading.Response `json:"response"`
	TimeTakenSec    int              `json:"time_taken_sec,omitempty"`
	IsCorrect       *bool            `json:"is_correct,omitempty"`    // nil = needs human judgment
	MarksAwarded    *float64         `json:"marks_awarded,omitempty"` // nil until an essay is graded
	IsReviewed      bool             `json:"is_reviewed,omitempty"`
	TeacherFeedback string           `json:"teacher_feedback,omitempty"`
}

// Submission is one exam attempt by one student.
type Submission struct {
	ID            string     `json:"id"`
	ExamID        string     `json:"exam_id"`
	StudentID     string     `json:"student_id"`
	AttemptNumber int        `json:"attempt_number"`
	Answers       []Answer   `json:"answers"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	TimeTakenMin  int        `json:"time_taken_min,omitempty"`
	IsSubmitted   bool       `json:"is_submitted"`
	AutoSubmitted bool       `json:"auto_submitted,omitempty"`
	TotalMarks    float64    `json:"total_marks"`
	MarksObtained float64    `json:"marks_obtained"`
	Percentage    float64    `json:"percentage"`
	Grade         string     `json:"grade,omitempty"`
	IsPassed      bool       `json:"is_passed"`
	IsGraded      bool       `json:"is_graded"`
	GradedBy      string     `json:"graded_by,omitempty"`
	GradedAt      *time.Time `json:"graded_at,omitempty"`
}

// AnswerFor returns a pointer to the recorded answer for the question, or nil.
func (s *Submission) AnswerFor(questionID string) *Answer {
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			return &s.Answers[i]
		}
	}
	return nil
}
