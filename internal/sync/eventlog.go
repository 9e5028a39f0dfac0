package syncx

import (
	"context"
	"database/sql"
	"time"
)

// Lifecycle event types recorded for submissions.
const (
	EventAttemptStarted       = "attempt.started"
	EventAttemptSubmitted     = "attempt.submitted"
	EventAttemptAutoSubmitted = "attempt.auto_submitted"
	EventAnswerGraded         = "answer.graded"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // submission id
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// After returns up to limit events with offset greater than after, oldest
// first. Consumers poll with their last seen offset.
func (r *EventRepo) After(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT offset_id, typ, key, data, created_at FROM event_log
		 WHERE offset_id > $1 ORDER BY offset_id LIMIT $2`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
