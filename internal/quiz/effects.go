package quiz

import (
	"context"

	"github.com/lexidrill/lexidrill/internal/db"
)

// Effect is an outbound message the engine asks a gateway to deliver.
type Effect interface {
	// Kind is a stable name gateways can use to tag the effect on the wire.
	Kind() string
	effect()
}

// Gateway delivers effects to the conversation identified by externalID.
type Gateway interface {
	Send(ctx context.Context, externalID string, e Effect) error
}

type Welcome struct {
	DisplayName string `json:"display_name"`
}

// Question shows the native prompt with shuffled english options.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Result reports how the pending question was answered.
type Result struct {
	Correct       bool   `json:"correct"`
	Prompt        string `json:"prompt"`
	CorrectAnswer string `json:"correct_answer"`
	UserAnswer    string `json:"user_answer"`
}

// EmptyLessonNotice tells the user there is nothing left to learn.
type EmptyLessonNotice struct{}

// WordList holds the user's active words ordered by native text.
type WordList struct {
	Words []db.ActiveWord `json:"words"`
}

// DeletionMenu offers at most MaxDeletionCandidates words for removal.
type DeletionMenu struct {
	Candidates []db.ActiveWord `json:"candidates"`
}

type DeletionResult struct {
	WordID  int64 `json:"word_id"`
	Removed bool  `json:"removed"`
}

type AddConfirmation struct {
	Pair db.Pair `json:"pair"`
}

// AddFailure is sent when a word could not be added. Invalid marks input
// the user can correct.
type AddFailure struct {
	Reason  string `json:"reason"`
	Invalid bool   `json:"invalid"`
}

// RestartNotice answers a stale answer: there is no question to match it.
type RestartNotice struct{}

// Failure is a generic error message, sent when storage is unavailable.
type Failure struct {
	Reason string `json:"reason"`
}

func (Welcome) Kind() string           { return "welcome" }
func (Question) Kind() string          { return "question" }
func (Result) Kind() string            { return "result" }
func (EmptyLessonNotice) Kind() string { return "empty_lesson" }
func (WordList) Kind() string          { return "word_list" }
func (DeletionMenu) Kind() string      { return "deletion_menu" }
func (DeletionResult) Kind() string    { return "deletion_result" }
func (AddConfirmation) Kind() string   { return "add_confirmation" }
func (AddFailure) Kind() string        { return "add_failure" }
func (RestartNotice) Kind() string     { return "restart" }
func (Failure) Kind() string           { return "failure" }

func (Welcome) effect()           {}
func (Question) effect()          {}
func (Result) effect()            {}
func (EmptyLessonNotice) effect() {}
func (WordList) effect()          {}
func (DeletionMenu) effect()      {}
func (DeletionResult) effect()    {}
func (AddConfirmation) effect()   {}
func (AddFailure) effect()        {}
func (RestartNotice) effect()     {}
func (Failure) effect()           {}
