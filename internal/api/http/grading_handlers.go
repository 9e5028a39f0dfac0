package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/examind-labs/examind/internal/auth/middleware"
	"github.com/examind-labs/examind/internal/exam"
)

// GradeAnswerHandler applies a manual mark to one essay answer on a submitted
// attempt and returns the re-aggregated submission.
func GradeAnswerHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		var req struct {
			QuestionID string  `json:"question_id"`
			Marks      float64 `json:"marks"`
			Feedback   string  `json:"feedback"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuestionID == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		sub, err := store.GradeAnswer(r.Context(), id, req.QuestionID, req.Marks,
			req.Feedback, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// PendingGradingHandler lists submitted attempts still awaiting manual review
// for one exam. The graded filter runs in the store so limit/offset paginate
// the pending set itself.
func PendingGradingHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submitted, graded := true, false
		subs, err := store.ListSubmissions(r.Context(), exam.SubmissionListOpts{
			ExamID:    chi.URLParam(r, "examID"),
			Submitted: &submitted,
			Graded:    &graded,
			Limit:     queryInt(r, "limit"),
			Offset:    queryInt(r, "offset"),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subs)
	}
}
