package exam

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/examind-labs/examind/internal/db"
	"github.com/examind-labs/examind/internal/grading"
	syncx "github.com/examind-labs/examind/internal/sync"
)

func openTestStore(t *testing.T) (*SQLStore, *syncx.EventRepo) {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "examind.db")
	h, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	events := syncx.NewEventRepo(h)
	return NewSQLStore(h, WithEventLog(events)), events
}

func seedSQLStore(t *testing.T, s *SQLStore) Exam {
	t.Helper()
	ctx := context.Background()
	qs := []Question{
		{ID: "q1", Text: "Capital of France?", Type: grading.TypeSingleChoice,
			Marks: 5, NegativeMarks: 1, CorrectAnswer: grading.Response{Text: "Paris"}},
		{ID: "q2", Text: "Discuss.", Type: grading.TypeEssay, Marks: 10},
	}
	for _, q := range qs {
		if _, err := s.PutQuestion(ctx, q); err != nil {
			t.Fatalf("put %s: %v", q.ID, err)
		}
	}
	e, err := s.PutExam(ctx, Exam{
		ID:           "ex1",
		Title:        "Geography",
		QuestionIDs:  []string{"q1", "q2"},
		DurationMin:  30,
		PassingMarks: 5,
		StartDate:    time.Now().Add(-time.Hour),
		EndDate:      time.Now().Add(time.Hour),
		IsPublished:  true,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("put exam: %v", err)
	}
	return e
}

func TestSQLStore_Lifecycle(t *testing.T) {
	s, events := openTestStore(t)
	e := seedSQLStore(t, s)
	ctx := context.Background()

	if e.TotalMarks != 15 {
		t.Fatalf("total marks = %v, want 15", e.TotalMarks)
	}

	sub, err := s.StartAttempt(ctx, "ex1", "stu1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sub.AttemptNumber != 1 {
		t.Fatalf("attempt number = %d, want 1", sub.AttemptNumber)
	}

	sub, err = s.RecordAnswer(ctx, sub.ID, "stu1", "q1", grading.Response{Text: " paris "}, 12)
	if err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if a := sub.AnswerFor("q1"); a == nil || a.IsCorrect == nil || !*a.IsCorrect {
		t.Fatalf("q1 should be auto-marked correct, got %+v", sub.Answers)
	}
	if _, err := s.RecordAnswer(ctx, sub.ID, "stu1", "q2", grading.Response{Text: "An essay."}, 60); err != nil {
		t.Fatalf("answer q2: %v", err)
	}

	sub, err = s.Finalize(ctx, sub.ID, "stu1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !sub.IsSubmitted || sub.IsGraded {
		t.Fatalf("post-submit flags wrong: %+v", sub)
	}
	if _, err := s.Finalize(ctx, sub.ID, "stu1"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second finalize: err = %v, want ErrAlreadySubmitted", err)
	}
	if _, err := s.RecordAnswer(ctx, sub.ID, "stu1", "q1", grading.Response{Text: "London"}, 1); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("record after submit: err = %v, want ErrAlreadySubmitted", err)
	}

	sub, err = s.GradeAnswer(ctx, sub.ID, "q2", 8, "solid", "teach1")
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if !sub.IsGraded || sub.MarksObtained != 13 {
		t.Fatalf("graded submission = %+v, want 13 marks", sub)
	}

	// Round-trip through the row mapping.
	got, err := s.GetSubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MarksObtained != 13 || got.Grade != sub.Grade || len(got.Answers) != 2 {
		t.Fatalf("reloaded submission = %+v, want %+v", got, sub)
	}

	evs, err := events.After(ctx, 0, 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	wantTypes := []string{syncx.EventAttemptStarted, syncx.EventAttemptSubmitted, syncx.EventAnswerGraded}
	if len(evs) != len(wantTypes) {
		t.Fatalf("events = %d, want %d", len(evs), len(wantTypes))
	}
	for i, ev := range evs {
		if ev.Type != wantTypes[i] {
			t.Errorf("event[%d] = %s, want %s", i, ev.Type, wantTypes[i])
		}
		if ev.Key != sub.ID {
			t.Errorf("event[%d] key = %s, want %s", i, ev.Key, sub.ID)
		}
	}
}

func TestSQLStore_ResumeInProgressAttempt(t *testing.T) {
	s, _ := openTestStore(t)
	seedSQLStore(t, s)
	ctx := context.Background()

	first, err := s.StartAttempt(ctx, "ex1", "stu1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := s.StartAttempt(ctx, "ex1", "stu1")
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second start created %s, want resumed %s", second.ID, first.ID)
	}

	// The unique index rejects a second row for the same attempt number, and
	// the loser of that race recovers the winner's row.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id,exam_id,student_id,attempt_number,answers_json,start_time,is_submitted)
		 VALUES ('dup','ex1','stu1',1,'[]',0,0)`)
	if !isUniqueViolation(err) {
		t.Fatalf("duplicate insert: err = %v, want unique violation", err)
	}
	resumed, err := s.resumeInProgress(ctx, "ex1", "stu1", 1)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.ID != first.ID {
		t.Fatalf("resumed %s, want %s", resumed.ID, first.ID)
	}
}

func TestSQLStore_PendingGradingFilter(t *testing.T) {
	s, _ := openTestStore(t)
	seedSQLStore(t, s)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		stu := fmt.Sprintf("stu%d", i)
		sub, err := s.StartAttempt(ctx, "ex1", stu)
		if err != nil {
			t.Fatalf("start %s: %v", stu, err)
		}
		if _, err := s.RecordAnswer(ctx, sub.ID, stu, "q2", grading.Response{Text: "essay"}, 10); err != nil {
			t.Fatalf("answer %s: %v", stu, err)
		}
		if _, err := s.Finalize(ctx, sub.ID, stu); err != nil {
			t.Fatalf("finalize %s: %v", stu, err)
		}
		if i == 1 {
			if _, err := s.GradeAnswer(ctx, sub.ID, "q2", 7, "", "teach1"); err != nil {
				t.Fatalf("grade %s: %v", stu, err)
			}
		}
	}

	submitted, graded := true, false
	pending, err := s.ListSubmissions(ctx, SubmissionListOpts{
		ExamID: "ex1", Submitted: &submitted, Graded: &graded,
	})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	for _, sub := range pending {
		if sub.IsGraded {
			t.Fatalf("graded submission leaked into pending list: %+v", sub)
		}
	}

	// limit/offset paginate the filtered set, so a page of 1 still yields a
	// pending row.
	page, err := s.ListSubmissions(ctx, SubmissionListOpts{
		ExamID: "ex1", Submitted: &submitted, Graded: &graded, Limit: 1, Offset: 1,
	})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].IsGraded {
		t.Fatalf("page = %+v, want one ungraded row", page)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("constraint failed: UNIQUE constraint failed: submissions.student_id (2067)"), true},
		{errors.New(`ERROR: duplicate key value violates unique constraint "submissions_student_id_exam_id_attempt_number_key" (SQLSTATE 23505)`), true},
		{errors.New("database is locked"), false},
	}
	for _, tc := range cases {
		if got := isUniqueViolation(tc.err); got != tc.want {
			t.Errorf("isUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
