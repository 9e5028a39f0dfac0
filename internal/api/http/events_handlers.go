package http

import (
	"net/http"
	"strconv"

	syncx "github.com/examind-labs/examind/internal/sync"
)

// EventsHandler serves the submission lifecycle audit log. Consumers poll
// with ?after=<last seen offset>.
func EventsHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		evs, err := events.After(r.Context(), after, queryInt(r, "limit"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, evs)
	}
}
