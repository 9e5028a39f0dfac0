package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/examind-labs/examind/internal/exam"
	"github.com/examind-labs/examind/internal/grading"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain errors onto HTTP statuses. Policy denials carry their
// reason so clients can tell "window closed" from "attempts used up".
func writeErr(w http.ResponseWriter, err error) {
	var pe *exam.PolicyError
	if errors.As(err, &pe) {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error":  "attempt denied",
			"reason": string(pe.Reason),
		})
		return
	}
	switch {
	case errors.Is(err, exam.ErrExamNotFound),
		errors.Is(err, exam.ErrQuestionNotFound),
		errors.Is(err, exam.ErrSubmissionNotFound),
		errors.Is(err, exam.ErrAnswerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, exam.ErrAlreadySubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, exam.ErrNotOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, exam.ErrNotSubmitted),
		errors.Is(err, exam.ErrNotEssay),
		errors.Is(err, grading.ErrInvalidQuestionType),
		errors.Is(err, grading.ErrMalformedAnswer):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
