package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SharedVocabulary is the fixed word set every user starts with.
var SharedVocabulary = []Pair{
	{English: "red", Native: "красный"},
	{English: "blue", Native: "синий"},
	{English: "green", Native: "зелёный"},
	{English: "yellow", Native: "жёлтый"},
	{English: "black", Native: "чёрный"},
	{English: "white", Native: "белый"},
	{English: "I", Native: "я"},
	{English: "you", Native: "ты"},
	{English: "he", Native: "он"},
	{English: "she", Native: "она"},
	{English: "it", Native: "оно"},
	{English: "we", Native: "мы"},
	{English: "they", Native: "они"},
}

// NormalizeText trims and lower-cases personal word input.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SeedSharedWords inserts SharedVocabulary unless shared words already exist.
// It returns the number of inserted rows and is safe to call on every start.
func (db *Database) SeedSharedWords(ctx context.Context) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapError("seed shared words", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE shared = 1`).Scan(&count); err != nil {
		return 0, mapError("count shared words", err)
	}
	if count > 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO words (english, native, shared) VALUES (?, ?, 1)`)
	if err != nil {
		return 0, mapError("seed shared words", err)
	}
	defer stmt.Close()

	for _, p := range SharedVocabulary {
		if _, err := stmt.ExecContext(ctx, p.English, p.Native); err != nil {
			return 0, mapError(fmt.Sprintf("seed shared word %q", p.English), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, mapError("seed shared words", err)
	}
	return len(SharedVocabulary), nil
}

// AddPersonalWord stores a lower-cased pair owned by ownerID and returns its id.
// Identical pairs are not deduplicated.
func (db *Database) AddPersonalWord(ctx context.Context, ownerID int64, english, native string) (int64, error) {
	english = NormalizeText(english)
	native = NormalizeText(native)
	if english == "" || native == "" {
		return 0, ErrEmptyText
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO words (english, native, shared, owner_id) VALUES (?, ?, 0, ?)`,
		english, native, ownerID,
	)
	if err != nil {
		return 0, mapError("add personal word", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, mapError("add personal word", err)
	}
	return id, nil
}

// GetWord retrieves a word by ID
func (db *Database) GetWord(ctx context.Context, id int64) (*Word, error) {
	var (
		w     Word
		owner sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, english, native, shared, owner_id, created_at FROM words WHERE id = ?`, id,
	).Scan(&w.ID, &w.English, &w.Native, &w.Shared, &owner, &w.CreatedAt)
	if err != nil {
		return nil, mapError(fmt.Sprintf("get word %d", id), err)
	}
	if owner.Valid {
		w.OwnerID = &owner.Int64
	}
	return &w, nil
}

// SampleDistractors draws up to count random english texts from the shared
// pool, never returning the excluded word. A short result is not an error.
func (db *Database) SampleDistractors(ctx context.Context, excludingWordID int64, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT english FROM words WHERE shared = 1 AND id != ? ORDER BY RANDOM() LIMIT ?`,
		excludingWordID, count,
	)
	if err != nil {
		return nil, mapError("sample distractors", err)
	}
	defer rows.Close()

	out := make([]string, 0, count)
	for rows.Next() {
		var english string
		if err := rows.Scan(&english); err != nil {
			return nil, mapError("scan distractor", err)
		}
		out = append(out, english)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("sample distractors", err)
	}
	return out, nil
}
