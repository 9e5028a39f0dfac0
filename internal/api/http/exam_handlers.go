package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/examind-labs/examind/internal/auth/middleware"
	"github.com/examind-labs/examind/internal/exam"
	"github.com/examind-labs/examind/internal/rbac"
)

func CreateExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if e.Title == "" || len(e.QuestionIDs) == 0 {
			http.Error(w, "title and question_ids required", http.StatusBadRequest)
			return
		}
		if e.DurationMin <= 0 {
			http.Error(w, "positive duration_min required", http.StatusBadRequest)
			return
		}
		if !e.EndDate.After(e.StartDate) {
			http.Error(w, "end_date must be after start_date", http.StatusBadRequest)
			return
		}
		e.ID = ""
		e.CreatedBy = authmw.SubjectFromContext(r.Context())
		stored, err := store.PutExam(r.Context(), e)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, stored)
	}
}

func UpdateExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		existing, err := store.GetExam(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if role != "admin" && existing.CreatedBy != authmw.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		e.ID = id
		e.CreatedBy = existing.CreatedBy
		e.CreatedAt = existing.CreatedAt
		stored, err := store.PutExam(r.Context(), e)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stored)
	}
}

// AttachQuestionsHandler appends questions to an exam and re-derives its
// total marks.
func AttachQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		existing, err := store.GetExam(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if role := rbac.RoleFromContext(r.Context()); role != "admin" && existing.CreatedBy != authmw.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var req struct {
			QuestionIDs []string `json:"question_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(req.QuestionIDs) == 0 {
			http.Error(w, "question_ids required", http.StatusBadRequest)
			return
		}
		have := map[string]bool{}
		for _, qid := range existing.QuestionIDs {
			have[qid] = true
		}
		for _, qid := range req.QuestionIDs {
			if !have[qid] {
				existing.QuestionIDs = append(existing.QuestionIDs, qid)
				have[qid] = true
			}
		}
		stored, err := store.PutExam(r.Context(), existing)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stored)
	}
}

func PublishExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		existing, err := store.GetExam(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if role := rbac.RoleFromContext(r.Context()); role != "admin" && existing.CreatedBy != authmw.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		existing.IsPublished = true
		existing.IsActive = true
		stored, err := store.PutExam(r.Context(), existing)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stored)
	}
}

// GetExamHandler serves the full exam to staff and the key-stripped view to
// students, rejecting exams outside the student's availability.
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		ctx := r.Context()
		role := rbac.RoleFromContext(ctx)
		if role == "teacher" || role == "admin" {
			e, err := store.GetExam(ctx, id)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, e)
			return
		}
		e, err := store.GetExamForStudent(ctx, id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !e.AvailableTo(authmw.SubjectFromContext(ctx), time.Now()) {
			http.Error(w, "exam not available", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func ListExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		es, err := store.ListExams(ctx, exam.ExamListOpts{
			ViewerID:   authmw.SubjectFromContext(ctx),
			ViewerRole: rbac.RoleFromContext(ctx),
			Subject:    r.URL.Query().Get("subject"),
			Limit:      queryInt(r, "limit"),
			Offset:     queryInt(r, "offset"),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, es)
	}
}

func ExamStatsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.ExamStats(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
