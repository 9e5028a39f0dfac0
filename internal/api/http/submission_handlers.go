package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/examind-labs/examind/internal/auth/middleware"
	"github.com/examind-labs/examind/internal/exam"
	"github.com/examind-labs/examind/internal/grading"
	"github.com/examind-labs/examind/internal/rbac"
)

func StartSubmissionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamID string `json:"exam_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ExamID == "" {
			http.Error(w, "exam_id required", http.StatusBadRequest)
			return
		}
		sub, err := store.StartAttempt(r.Context(), req.ExamID, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

func RecordAnswerHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		var req struct {
			QuestionID   string           `json:"question_id"`
			Response     grading.Response `json:"response"`
			TimeTakenSec int              `json:"time_taken_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuestionID == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		sub, err := store.RecordAnswer(r.Context(), id, authmw.SubjectFromContext(r.Context()),
			req.QuestionID, req.Response, req.TimeTakenSec)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func SubmitHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		sub, err := store.Finalize(r.Context(), id, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// canViewStudent reports whether the caller may read a student's submissions:
// their own rows, any rows with submission:view-all, or a linked child's rows
// when the caller is a parent.
func canViewStudent(ctx context.Context, checker *rbac.Checker, kids ChildLookup, studentID string) bool {
	if studentID == authmw.SubjectFromContext(ctx) {
		return true
	}
	role := rbac.RoleFromContext(ctx)
	if checker.Has(role, "submission:view-all") {
		return true
	}
	if role == "parent" && kids != nil {
		ids, err := kids.ChildrenOf(ctx, authmw.SubjectFromContext(ctx))
		if err != nil {
			return false
		}
		for _, id := range ids {
			if id == studentID {
				return true
			}
		}
	}
	return false
}

// GetSubmissionHandler serves a submission to its owner, to staff holding
// submission:view-all, or to the owning student's linked parent.
func GetSubmissionHandler(store exam.Store, checker *rbac.Checker, kids ChildLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sub, err := store.GetSubmission(ctx, chi.URLParam(r, "submissionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if !canViewStudent(ctx, checker, kids, sub.StudentID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func ListSubmissionsHandler(store exam.Store, checker *rbac.Checker, kids ChildLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		opts := exam.SubmissionListOpts{
			ExamID:    r.URL.Query().Get("exam_id"),
			StudentID: r.URL.Query().Get("student_id"),
			Limit:     queryInt(r, "limit"),
			Offset:    queryInt(r, "offset"),
		}
		if v := r.URL.Query().Get("submitted"); v != "" {
			b := v == "true" || v == "1"
			opts.Submitted = &b
		}
		// Without view-all, the listing is pinned to rows the caller may see:
		// their own, or a named child's for parents.
		if !checker.Has(rbac.RoleFromContext(ctx), "submission:view-all") {
			if opts.StudentID == "" || !canViewStudent(ctx, checker, kids, opts.StudentID) {
				opts.StudentID = authmw.SubjectFromContext(ctx)
			}
		}
		subs, err := store.ListSubmissions(ctx, opts)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subs)
	}
}
