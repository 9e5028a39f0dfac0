package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/examind-labs/examind/internal/auth/middleware"
	"github.com/examind-labs/examind/internal/exam"
	"github.com/examind-labs/examind/internal/grading"
	"github.com/examind-labs/examind/internal/rbac"
)

// asUser stamps the request context the way the JWT middleware would.
func asUser(sub, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authmw.WithSubject(r.Context(), sub)
			ctx = rbac.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// fakeKids stands in for the users table's parent-child links.
type fakeKids map[string][]string

func (f fakeKids) ChildrenOf(_ context.Context, parentID string) ([]string, error) {
	return f[parentID], nil
}

func testRouter(store exam.Store, kids ChildLookup, sub, role string) http.Handler {
	checker := rbac.NewChecker(nil)
	r := chi.NewRouter()
	r.Use(asUser(sub, role))
	r.Post("/questions", CreateQuestionHandler(store))
	r.Post("/exams", CreateExamHandler(store))
	r.Get("/exams/{examID}", GetExamHandler(store))
	r.Get("/exams/{examID}/stats", ExamStatsHandler(store))
	r.Get("/exams/{examID}/pending-grading", PendingGradingHandler(store))
	r.Post("/submissions/start", StartSubmissionHandler(store))
	r.Post("/submissions/{submissionID}/answers", RecordAnswerHandler(store))
	r.Post("/submissions/{submissionID}/submit", SubmitHandler(store))
	r.Get("/submissions", ListSubmissionsHandler(store, checker, kids))
	r.Get("/submissions/{submissionID}", GetSubmissionHandler(store, checker, kids))
	r.Put("/submissions/{submissionID}/grade", GradeAnswerHandler(store))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestAPIFlow(t *testing.T) {
	store := exam.NewMemStore()
	teacher := testRouter(store, nil, "teach1", "teacher")
	student := testRouter(store, nil, "stu1", "student")

	// Teacher authors a question and an exam around it.
	rec := doJSON(t, teacher, http.MethodPost, "/questions", exam.Question{
		Text:          "Capital of France?",
		Type:          grading.TypeSingleChoice,
		Marks:         5,
		CorrectAnswer: grading.Response{Text: "Paris"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create question: %d %s", rec.Code, rec.Body.String())
	}
	q := decode[exam.Question](t, rec)

	rec = doJSON(t, teacher, http.MethodPost, "/exams", exam.Exam{
		Title:        "Geo quiz",
		QuestionIDs:  []string{q.ID},
		DurationMin:  30,
		PassingMarks: 3,
		StartDate:    time.Now().Add(-time.Hour),
		EndDate:      time.Now().Add(time.Hour),
		IsPublished:  true,
		IsActive:     true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create exam: %d %s", rec.Code, rec.Body.String())
	}
	e := decode[exam.Exam](t, rec)

	// Student view hides the key.
	rec = doJSON(t, student, http.MethodGet, "/exams/"+e.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get exam: %d %s", rec.Code, rec.Body.String())
	}
	got := decode[exam.Exam](t, rec)
	if got.Questions[0].CorrectAnswer.Text != "" {
		t.Fatal("answer key leaked to student")
	}

	// Start, answer, submit.
	rec = doJSON(t, student, http.MethodPost, "/submissions/start", map[string]string{"exam_id": e.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: %d %s", rec.Code, rec.Body.String())
	}
	sub := decode[exam.Submission](t, rec)

	rec = doJSON(t, student, http.MethodPost, "/submissions/"+sub.ID+"/answers", map[string]any{
		"question_id": q.ID,
		"response":    grading.Response{Text: "paris"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, student, http.MethodPost, "/submissions/"+sub.ID+"/submit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	final := decode[exam.Submission](t, rec)
	if final.MarksObtained != 5 || !final.IsPassed {
		t.Fatalf("final score wrong: %+v", final)
	}

	// Second submit conflicts.
	rec = doJSON(t, student, http.MethodPost, "/submissions/"+sub.ID+"/submit", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("resubmit: %d, want 409", rec.Code)
	}

	// Second start is denied by the attempt policy with a reason payload.
	rec = doJSON(t, student, http.MethodPost, "/submissions/start", map[string]string{"exam_id": e.ID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("restart: %d, want 403", rec.Code)
	}
	deny := decode[map[string]string](t, rec)
	if deny["reason"] != string(exam.DenySingleAttempt) {
		t.Fatalf("deny reason = %q", deny["reason"])
	}

	// Another student cannot read the submission.
	other := testRouter(store, nil, "stu2", "student")
	rec = doJSON(t, other, http.MethodGet, "/submissions/"+sub.ID, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign read: %d, want 403", rec.Code)
	}
	// The teacher can.
	rec = doJSON(t, teacher, http.MethodGet, "/submissions/"+sub.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("teacher read: %d", rec.Code)
	}

	// Stats reflect the one submitted attempt.
	rec = doJSON(t, teacher, http.MethodGet, "/exams/"+e.ID+"/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d", rec.Code)
	}
	st := decode[exam.ExamStats](t, rec)
	if st.TotalSubmissions != 1 || st.PassRate != 100 {
		t.Fatalf("stats wrong: %+v", st)
	}
}

func TestAPIGradeEssayFlow(t *testing.T) {
	store := exam.NewMemStore()
	teacher := testRouter(store, nil, "teach1", "teacher")
	student := testRouter(store, nil, "stu1", "student")

	rec := doJSON(t, teacher, http.MethodPost, "/questions", exam.Question{
		Text:  "Explain photosynthesis.",
		Type:  grading.TypeEssay,
		Marks: 10,
	})
	q := decode[exam.Question](t, rec)

	rec = doJSON(t, teacher, http.MethodPost, "/exams", exam.Exam{
		Title:        "Bio essay",
		QuestionIDs:  []string{q.ID},
		DurationMin:  60,
		PassingMarks: 6,
		StartDate:    time.Now().Add(-time.Hour),
		EndDate:      time.Now().Add(time.Hour),
		IsPublished:  true,
		IsActive:     true,
	})
	e := decode[exam.Exam](t, rec)

	rec = doJSON(t, student, http.MethodPost, "/submissions/start", map[string]string{"exam_id": e.ID})
	sub := decode[exam.Submission](t, rec)
	doJSON(t, student, http.MethodPost, "/submissions/"+sub.ID+"/answers", map[string]any{
		"question_id": q.ID,
		"response":    grading.Response{Text: "Plants convert light to sugar."},
	})
	rec = doJSON(t, student, http.MethodPost, "/submissions/"+sub.ID+"/submit", nil)
	final := decode[exam.Submission](t, rec)
	if final.IsGraded {
		t.Fatal("essay attempt must await manual grading")
	}

	// The ungraded attempt shows up in the grading queue.
	rec = doJSON(t, teacher, http.MethodGet, "/exams/"+e.ID+"/pending-grading", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pending: %d %s", rec.Code, rec.Body.String())
	}
	pending := decode[[]exam.Submission](t, rec)
	if len(pending) != 1 || pending[0].ID != sub.ID {
		t.Fatalf("pending = %+v, want the submitted attempt", pending)
	}

	rec = doJSON(t, teacher, http.MethodPut, "/submissions/"+sub.ID+"/grade", map[string]any{
		"question_id": q.ID,
		"marks":       8,
		"feedback":    "good",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("grade: %d %s", rec.Code, rec.Body.String())
	}
	graded := decode[exam.Submission](t, rec)
	if !graded.IsGraded || graded.MarksObtained != 8 || !graded.IsPassed {
		t.Fatalf("graded submission wrong: %+v", graded)
	}
	if graded.GradedBy != "teach1" {
		t.Fatalf("graded_by = %q", graded.GradedBy)
	}

	// Grading empties the queue.
	rec = doJSON(t, teacher, http.MethodGet, "/exams/"+e.ID+"/pending-grading", nil)
	pending = decode[[]exam.Submission](t, rec)
	if len(pending) != 0 {
		t.Fatalf("pending after grading = %+v, want none", pending)
	}
}

func TestAPIParentViewsChildResults(t *testing.T) {
	store := exam.NewMemStore()
	kids := fakeKids{"par1": {"stu1"}}
	teacher := testRouter(store, kids, "teach1", "teacher")
	student := testRouter(store, kids, "stu1", "student")
	parent := testRouter(store, kids, "par1", "parent")
	stranger := testRouter(store, kids, "par2", "parent")

	rec := doJSON(t, teacher, http.MethodPost, "/questions", exam.Question{
		Text:          "2+2?",
		Type:          grading.TypeSingleChoice,
		Marks:         4,
		CorrectAnswer: grading.Response{Text: "4"},
	})
	q := decode[exam.Question](t, rec)
	rec = doJSON(t, teacher, http.MethodPost, "/exams", exam.Exam{
		Title:        "Arithmetic",
		QuestionIDs:  []string{q.ID},
		DurationMin:  15,
		PassingMarks: 2,
		StartDate:    time.Now().Add(-time.Hour),
		EndDate:      time.Now().Add(time.Hour),
		IsPublished:  true,
		IsActive:     true,
	})
	e := decode[exam.Exam](t, rec)

	rec = doJSON(t, student, http.MethodPost, "/submissions/start", map[string]string{"exam_id": e.ID})
	sub := decode[exam.Submission](t, rec)
	doJSON(t, student, http.MethodPost, "/submissions/"+sub.ID+"/answers", map[string]any{
		"question_id": q.ID,
		"response":    grading.Response{Text: "4"},
	})
	if rec := doJSON(t, student, http.MethodPost, "/submissions/"+sub.ID+"/submit", nil); rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}

	// The linked parent reads the child's result.
	rec = doJSON(t, parent, http.MethodGet, "/submissions/"+sub.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("parent read: %d %s", rec.Code, rec.Body.String())
	}
	got := decode[exam.Submission](t, rec)
	if got.StudentID != "stu1" || !got.IsPassed {
		t.Fatalf("parent saw %+v", got)
	}

	rec = doJSON(t, parent, http.MethodGet, "/submissions?student_id=stu1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("parent list: %d %s", rec.Code, rec.Body.String())
	}
	if subs := decode[[]exam.Submission](t, rec); len(subs) != 1 || subs[0].ID != sub.ID {
		t.Fatalf("parent list = %+v, want the child's attempt", subs)
	}

	// A parent with no link to the student is refused.
	rec = doJSON(t, stranger, http.MethodGet, "/submissions/"+sub.ID, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unlinked parent read: %d, want 403", rec.Code)
	}
	// Their listing falls back to their own (empty) rows rather than leaking.
	rec = doJSON(t, stranger, http.MethodGet, "/submissions?student_id=stu1", nil)
	if subs := decode[[]exam.Submission](t, rec); len(subs) != 0 {
		t.Fatalf("unlinked parent list = %+v, want none", subs)
	}
}
