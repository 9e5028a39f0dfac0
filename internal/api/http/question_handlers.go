package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/examind-labs/examind/internal/auth/middleware"
	"github.com/examind-labs/examind/internal/exam"
	"github.com/examind-labs/examind/internal/grading"
)

func CreateQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q exam.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if q.Text == "" || q.Marks <= 0 {
			http.Error(w, "text and positive marks required", http.StatusBadRequest)
			return
		}
		if q.NegativeMarks < 0 {
			http.Error(w, "negative_marks must be >= 0", http.StatusBadRequest)
			return
		}
		switch q.Type {
		case grading.TypeSingleChoice, grading.TypeTrueFalse, grading.TypeFillBlank,
			grading.TypeEssay, grading.TypeMatching, grading.TypeOrdering:
		default:
			http.Error(w, "unknown question type: "+q.Type, http.StatusBadRequest)
			return
		}
		q.ID = "" // server-assigned
		q.CreatedBy = authmw.SubjectFromContext(r.Context())
		stored, err := store.PutQuestion(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, stored)
	}
}

func UpdateQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		existing, err := store.GetQuestion(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		var q exam.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = id
		q.CreatedBy = existing.CreatedBy
		q.CreatedAt = existing.CreatedAt
		stored, err := store.PutQuestion(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stored)
	}
}

func GetQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuestion(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func DeleteQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.ListQuestions(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}
