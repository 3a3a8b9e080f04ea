package quiz

// Event is an inbound intent received from a messaging gateway.
// Every event is addressed by the transport identity of the conversation.
type Event interface {
	externalID() string
}

// UserContacted is sent when a user starts talking to the bot.
type UserContacted struct {
	ExternalID  string
	DisplayName string
}

// AskRequested starts or continues a lesson.
type AskRequested struct {
	ExternalID string
}

// AnswerChosen carries the option the user picked for the pending question.
type AnswerChosen struct {
	ExternalID string
	Answer     string
}

// AddWordRequested asks to store a personal word pair.
type AddWordRequested struct {
	ExternalID string
	English    string
	Native     string
}

// RemoveWordRequested asks for the list of words that can be removed.
type RemoveWordRequested struct {
	ExternalID string
}

// WordDeletionChosen removes one word from the user's lesson set.
type WordDeletionChosen struct {
	ExternalID string
	WordID     int64
}

// ListRequested asks for the user's active words.
type ListRequested struct {
	ExternalID string
}

func (e UserContacted) externalID() string       { return e.ExternalID }
func (e AskRequested) externalID() string        { return e.ExternalID }
func (e AnswerChosen) externalID() string        { return e.ExternalID }
func (e AddWordRequested) externalID() string    { return e.ExternalID }
func (e RemoveWordRequested) externalID() string { return e.ExternalID }
func (e WordDeletionChosen) externalID() string  { return e.ExternalID }
func (e ListRequested) externalID() string       { return e.ExternalID }
