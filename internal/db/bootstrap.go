package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EnsureAdmin seeds the admin account on first boot. An existing user with
// the same username is left untouched.
func EnsureAdmin(ctx context.Context, db *sql.DB, username, passHash string) error {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=$1`, username).Scan(&one)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, username, pass_hash, role, full_name, created_at)
		 VALUES ($1,$2,$3,'admin','',$4)`,
		uuid.NewString(), username, passHash, time.Now().Unix())
	return err
}
