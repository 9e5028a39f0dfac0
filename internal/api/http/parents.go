package http

import (
	"context"
	"database/sql"
)

// ChildLookup resolves which student accounts a parent account is linked to.
type ChildLookup interface {
	ChildrenOf(ctx context.Context, parentID string) ([]string, error)
}

// ParentDirectory reads parent-child links from the users table; students
// carry their parent's id in parent_id.
type ParentDirectory struct{ db *sql.DB }

func NewParentDirectory(db *sql.DB) *ParentDirectory { return &ParentDirectory{db: db} }

func (d *ParentDirectory) ChildrenOf(ctx context.Context, parentID string) ([]string, error) {
	if parentID == "" {
		return nil, nil
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id FROM users WHERE parent_id=$1 AND role='student'`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
