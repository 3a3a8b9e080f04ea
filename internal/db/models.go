package db

import "time"

// User is a learner identified by the transport's identity.
type User struct {
	ID          int64     `json:"id"`
	ExternalID  string    `json:"external_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Word is a stored english/native pair. Shared words have no owner.
type Word struct {
	ID        int64     `json:"id"`
	English   string    `json:"english"`
	Native    string    `json:"native"`
	Shared    bool      `json:"shared"`
	OwnerID   *int64    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Pair is the content of a word without its identity.
type Pair struct {
	English string `json:"english"`
	Native  string `json:"native"`
}

// ActiveWord is a word that is still part of a user's lesson set.
type ActiveWord struct {
	WordID  int64  `json:"word_id"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// Pair returns the word content.
func (w ActiveWord) Pair() Pair {
	return Pair{English: w.English, Native: w.Native}
}

// Enrollment binds a word to a user and carries answer statistics.
type Enrollment struct {
	ID           int64 `json:"id"`
	UserID       int64 `json:"user_id"`
	WordID       int64 `json:"word_id"`
	CorrectCount int   `json:"correct_count"`
	WrongCount   int   `json:"wrong_count"`
	Active       bool  `json:"active"`
}

// Stats summarizes a user's enrollments.
type Stats struct {
	ActiveWords  int `json:"active_words"`
	TotalWords   int `json:"total_words"`
	CorrectCount int `json:"correct_count"`
	WrongCount   int `json:"wrong_count"`
}
