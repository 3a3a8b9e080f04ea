package db

import (
	"context"
	"fmt"
	"strings"
)

// Provision creates the user for externalID if absent and enrolls them in every
// shared word they are not enrolled in yet. Existing enrollments, including
// deactivated ones, are left untouched, so calling it again never resurrects
// a removed word. An empty displayName keeps the stored one.
//
// The user upsert and the enrollment insert are separate statements; if the
// second fails the user row stays and the next call fills the gap.
func (db *Database) Provision(ctx context.Context, externalID, displayName string) (int64, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return 0, fmt.Errorf("provision user: external id must be non-empty")
	}

	var userID int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (external_id, display_name) VALUES (?, ?)
		 ON CONFLICT(external_id) DO UPDATE SET
		   display_name = COALESCE(NULLIF(excluded.display_name, ''), users.display_name)
		 RETURNING id`,
		externalID, strings.TrimSpace(displayName),
	).Scan(&userID)
	if err != nil {
		return 0, mapError("provision user", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO enrollments (user_id, word_id)
		 SELECT ?, id FROM words WHERE shared = 1`,
		userID,
	)
	if err != nil {
		return userID, mapError("enroll shared words", err)
	}

	return userID, nil
}

// GetUserByExternalID retrieves a user by the transport identity.
func (db *Database) GetUserByExternalID(ctx context.Context, externalID string) (*User, error) {
	var u User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, external_id, display_name, created_at FROM users WHERE external_id = ?`,
		strings.TrimSpace(externalID),
	).Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		return nil, mapError("get user", err)
	}
	return &u, nil
}

// CountUsers returns the total number of users
func (db *Database) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, mapError("count users", err)
	}
	return count, nil
}
