package db

import (
	"context"
	"fmt"
)

// Enroll links a user to a word unless the pair is already enrolled.
func (db *Database) Enroll(ctx context.Context, userID, wordID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO enrollments (user_id, word_id) VALUES (?, ?)`,
		userID, wordID,
	)
	return mapError("enroll word", err)
}

// ActiveWords lists the user's active words ordered by native text.
// A user without active words gets an empty slice.
func (db *Database) ActiveWords(ctx context.Context, userID int64) ([]ActiveWord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT w.id, w.english, w.native
		 FROM words w
		 JOIN enrollments e ON e.word_id = w.id
		 WHERE e.user_id = ? AND e.active = 1
		 ORDER BY w.native ASC, w.id ASC`,
		userID,
	)
	if err != nil {
		return nil, mapError("list active words", err)
	}
	defer rows.Close()

	words := []ActiveWord{}
	for rows.Next() {
		var w ActiveWord
		if err := rows.Scan(&w.WordID, &w.English, &w.Native); err != nil {
			return nil, mapError("scan active word", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list active words", err)
	}
	return words, nil
}

// RandomActiveWord picks one active word of the user at random.
// It returns ErrNotFound when the lesson set is empty.
func (db *Database) RandomActiveWord(ctx context.Context, userID int64) (*ActiveWord, error) {
	var w ActiveWord
	err := db.conn.QueryRowContext(ctx,
		`SELECT w.id, w.english, w.native
		 FROM words w
		 JOIN enrollments e ON e.word_id = w.id
		 WHERE e.user_id = ? AND e.active = 1
		 ORDER BY RANDOM()
		 LIMIT 1`,
		userID,
	).Scan(&w.WordID, &w.English, &w.Native)
	if err != nil {
		return nil, mapError("pick random word", err)
	}
	return &w, nil
}

// Deactivate removes a word from the user's lesson set. It reports false
// when the user has no active enrollment for the word.
func (db *Database) Deactivate(ctx context.Context, userID, wordID int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE enrollments SET active = 0 WHERE user_id = ? AND word_id = ? AND active = 1`,
		userID, wordID,
	)
	if err != nil {
		return false, mapError("deactivate word", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, mapError("deactivate word", err)
	}
	return affected > 0, nil
}

// RecordResult increments the correct or wrong counter of an enrollment.
func (db *Database) RecordResult(ctx context.Context, userID, wordID int64, correct bool) error {
	query := `UPDATE enrollments SET wrong_count = wrong_count + 1 WHERE user_id = ? AND word_id = ?`
	if correct {
		query = `UPDATE enrollments SET correct_count = correct_count + 1 WHERE user_id = ? AND word_id = ?`
	}

	result, err := db.conn.ExecContext(ctx, query, userID, wordID)
	if err != nil {
		return mapError("record result", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapError("record result", err)
	}
	if affected == 0 {
		return fmt.Errorf("record result for word %d: %w", wordID, ErrNotFound)
	}
	return nil
}

// GetEnrollment retrieves the enrollment of a user for a word.
func (db *Database) GetEnrollment(ctx context.Context, userID, wordID int64) (*Enrollment, error) {
	var e Enrollment
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, word_id, correct_count, wrong_count, active
		 FROM enrollments WHERE user_id = ? AND word_id = ?`,
		userID, wordID,
	).Scan(&e.ID, &e.UserID, &e.WordID, &e.CorrectCount, &e.WrongCount, &e.Active)
	if err != nil {
		return nil, mapError("get enrollment", err)
	}
	return &e, nil
}

// Stats summarizes the user's enrollments, inactive ones included.
func (db *Database) Stats(ctx context.Context, userID int64) (*Stats, error) {
	var s Stats
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(active), 0), COUNT(*),
		        COALESCE(SUM(correct_count), 0), COALESCE(SUM(wrong_count), 0)
		 FROM enrollments WHERE user_id = ?`,
		userID,
	).Scan(&s.ActiveWords, &s.TotalWords, &s.CorrectCount, &s.WrongCount)
	if err != nil {
		return nil, mapError("get stats", err)
	}
	return &s, nil
}
