// Package session keeps the question a conversation is currently answering.
package session

import (
	"context"
	"errors"
)

// ErrNoPending is returned by Get when the conversation has no open question.
var ErrNoPending = errors.New("no pending question")

// Pending is the question awaiting an answer in one conversation. Options is
// the set that was offered, kept so a gateway can show the question again;
// answers are graded against English alone.
type Pending struct {
	WordID  int64    `json:"word_id"`
	English string   `json:"english"`
	Native  string   `json:"native"`
	Options []string `json:"options"`
}

// Store holds at most one Pending per key. Put replaces any previous entry.
type Store interface {
	Get(ctx context.Context, key string) (*Pending, error)
	Put(ctx context.Context, key string, p Pending) error
	Clear(ctx context.Context, key string) error
}
