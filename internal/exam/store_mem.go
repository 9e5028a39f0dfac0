package exam

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/examind-labs/examind/internal/grading"
)

// MemStore is an in-memory Store for tests and ephemeral dev runs. All
// lifecycle guards hold under its single mutex, mirroring what the SQL store
// achieves with transactions and the conditional submit update.
type MemStore struct {
	mu          sync.RWMutex
	eval        *grading.Evaluator
	now         func() time.Time
	questions   map[string]Question
	exams       map[string]Exam
	submissions map[string]Submission
}

func NewMemStore() *MemStore {
	return &MemStore{
		eval:        grading.NewEvaluator(),
		now:         time.Now,
		questions:   map[string]Question{},
		exams:       map[string]Exam{},
		submissions: map[string]Submission{},
	}
}

// WithClock overrides the store's clock; test hook.
func (m *MemStore) WithClock(now func() time.Time) *MemStore {
	m.now = now
	return m
}

func (m *MemStore) PutQuestion(_ context.Context, q Question) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	m.questions[q.ID] = q
	return q, nil
}

func (m *MemStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrQuestionNotFound
	}
	return q, nil
}

func (m *MemStore) DeleteQuestion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return ErrQuestionNotFound
	}
	delete(m.questions, id)
	return nil
}

func (m *MemStore) ListQuestions(_ context.Context, limit, offset int) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(m.questions))
	for _, q := range m.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (m *MemStore) PutExam(_ context.Context, e Exam) (Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	var total float64
	for _, qid := range e.QuestionIDs {
		q, ok := m.questions[qid]
		if !ok {
			return Exam{}, ErrQuestionNotFound
		}
		total += q.Marks
	}
	e.TotalMarks = total
	e.Questions = nil // hydrated on read
	m.exams[e.ID] = e
	return e, nil
}

func (m *MemStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.examWithQuestions(id)
}

func (m *MemStore) GetExamForStudent(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, err := m.examWithQuestions(id)
	if err != nil {
		return Exam{}, err
	}
	return e.StripAnswerKeys(), nil
}

// examWithQuestions hydrates the exam's question list; callers hold the lock.
func (m *MemStore) examWithQuestions(id string) (Exam, error) {
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	qs := make([]Question, 0, len(e.QuestionIDs))
	for _, qid := range e.QuestionIDs {
		if q, ok := m.questions[qid]; ok {
			qs = append(qs, q)
		}
	}
	e.Questions = qs
	return e, nil
}

func (m *MemStore) ListExams(_ context.Context, opts ExamListOpts) ([]Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := m.now()
	out := []Exam{}
	for id := range m.exams {
		e, err := m.examWithQuestions(id)
		if err != nil {
			continue
		}
		if opts.Subject != "" && e.Subject != opts.Subject {
			continue
		}
		switch opts.ViewerRole {
		case "student":
			if !e.AvailableTo(opts.ViewerID, now) {
				continue
			}
			e = e.StripAnswerKeys()
		case "teacher":
			if e.CreatedBy != opts.ViewerID {
				continue
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, opts.Limit, opts.Offset), nil
}

func (m *MemStore) StartAttempt(_ context.Context, examID, studentID string) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.examWithQuestions(examID)
	if err != nil {
		return Submission{}, err
	}
	submitted := 0
	for _, s := range m.submissions {
		if s.ExamID == examID && s.StudentID == studentID && s.IsSubmitted {
			submitted++
		}
	}
	v := CanStartAttempt(e, studentID, submitted, m.now())
	if !v.Allowed {
		return Submission{}, &PolicyError{Reason: v.Reason}
	}
	// Resume an in-progress attempt holding the same number instead of
	// violating the (student, exam, attempt_number) uniqueness rule.
	for _, s := range m.submissions {
		if s.ExamID == examID && s.StudentID == studentID && s.AttemptNumber == v.NextAttemptNumber && !s.IsSubmitted {
			return s, nil
		}
	}
	sub := Submission{
		ID:            uuid.NewString(),
		ExamID:        examID,
		StudentID:     studentID,
		AttemptNumber: v.NextAttemptNumber,
		Answers:       []Answer{},
		StartTime:     m.now(),
	}
	m.submissions[sub.ID] = sub
	return sub, nil
}

func (m *MemStore) RecordAnswer(_ context.Context, submissionID, studentID, questionID string, resp grading.Response, timeTakenSec int) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[submissionID]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	if sub.StudentID != studentID {
		return Submission{}, ErrNotOwner
	}
	q, ok := m.questions[questionID]
	if !ok {
		return Submission{}, ErrQuestionNotFound
	}
	if err := recordAnswer(m.eval, &sub, q, resp, timeTakenSec); err != nil {
		return Submission{}, err
	}
	m.submissions[submissionID] = sub
	return sub, nil
}

func (m *MemStore) Finalize(_ context.Context, submissionID, studentID string) (Submission, error) {
	return m.finalizeLocked(submissionID, studentID, false)
}

func (m *MemStore) AutoFinalize(_ context.Context, submissionID string) (Submission, error) {
	return m.finalizeLocked(submissionID, "", true)
}

func (m *MemStore) finalizeLocked(submissionID, studentID string, auto bool) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[submissionID]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	if !auto && sub.StudentID != studentID {
		return Submission{}, ErrNotOwner
	}
	if sub.IsSubmitted {
		return Submission{}, ErrAlreadySubmitted
	}
	e, err := m.examWithQuestions(sub.ExamID)
	if err != nil {
		return Submission{}, err
	}
	finalize(&sub, e, m.now(), auto)
	m.submissions[submissionID] = sub
	return sub, nil
}

func (m *MemStore) GradeAnswer(_ context.Context, submissionID, questionID string, marks float64, feedback, gradedBy string) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[submissionID]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	e, err := m.examWithQuestions(sub.ExamID)
	if err != nil {
		return Submission{}, err
	}
	if err := gradeAnswer(&sub, e, questionID, marks, feedback, gradedBy, m.now()); err != nil {
		return Submission{}, err
	}
	m.submissions[submissionID] = sub
	return sub, nil
}

func (m *MemStore) GetSubmission(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.submissions[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return sub, nil
}

func (m *MemStore) ListSubmissions(_ context.Context, opts SubmissionListOpts) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Submission{}
	for _, s := range m.submissions {
		if opts.ExamID != "" && s.ExamID != opts.ExamID {
			continue
		}
		if opts.StudentID != "" && s.StudentID != opts.StudentID {
			continue
		}
		if opts.Submitted != nil && s.IsSubmitted != *opts.Submitted {
			continue
		}
		if opts.Graded != nil && s.IsGraded != *opts.Graded {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return paginate(out, opts.Limit, opts.Offset), nil
}

func (m *MemStore) ListExpired(_ context.Context, now time.Time) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Submission{}
	for _, s := range m.submissions {
		if s.IsSubmitted {
			continue
		}
		e, ok := m.exams[s.ExamID]
		if !ok || e.DurationMin <= 0 {
			continue
		}
		if !now.Before(s.StartTime.Add(time.Duration(e.DurationMin) * time.Minute)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemStore) ExamStats(_ context.Context, examID string) (ExamStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.exams[examID]; !ok {
		return ExamStats{}, ErrExamNotFound
	}
	var st ExamStats
	passed := 0
	var sum float64
	for _, s := range m.submissions {
		if s.ExamID != examID || !s.IsSubmitted {
			continue
		}
		if st.TotalSubmissions == 0 || s.Percentage > st.HighestScore {
			st.HighestScore = s.Percentage
		}
		if st.TotalSubmissions == 0 || s.Percentage < st.LowestScore {
			st.LowestScore = s.Percentage
		}
		sum += s.Percentage
		if s.IsPassed {
			passed++
		}
		st.TotalSubmissions++
	}
	if st.TotalSubmissions > 0 {
		st.AverageScore = sum / float64(st.TotalSubmissions)
		st.PassRate = float64(passed) / float64(st.TotalSubmissions) * 100
	}
	return st, nil
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return []T{}
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
