package quiz

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lexidrill/lexidrill/internal/db"
)

// HelpText lists the chat commands understood by ParseText.
const HelpText = `Commands:
/start - start working with the bot
/learn - start a lesson
/add - add a word: /add apple яблоко
/remove - remove a word from your lessons
/list - list your words
/help - show this help

You can also add a word by sending: яблоко = apple

Lessons show a word in your language; pick its English translation
from up to 4 options. Removed words disappear only from your lessons.`

// ParseText maps chat-style text to an event. It returns ErrHelp for /help
// and ErrUnrecognized for anything that is not a known intent. Malformed
// add-word input still yields an AddWordRequested; the engine reports it.
func ParseText(externalID, text string) (Event, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrUnrecognized
	}

	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		command := strings.ToLower(fields[0])
		// "/learn@some_bot" addresses the bot explicitly in group chats.
		if at := strings.IndexByte(command, '@'); at > 0 {
			command = command[:at]
		}
		args := fields[1:]

		switch command {
		case "/start":
			return UserContacted{ExternalID: externalID}, nil
		case "/learn":
			return AskRequested{ExternalID: externalID}, nil
		case "/list":
			return ListRequested{ExternalID: externalID}, nil
		case "/remove":
			return RemoveWordRequested{ExternalID: externalID}, nil
		case "/help":
			return nil, ErrHelp
		case "/add":
			ev := AddWordRequested{ExternalID: externalID}
			if len(args) >= 2 {
				ev.English = args[0]
				ev.Native = strings.Join(args[1:], " ")
			}
			return ev, nil
		}
		return nil, ErrUnrecognized
	}

	if strings.Contains(text, "=") {
		ev := AddWordRequested{ExternalID: externalID}
		parts := strings.Split(text, "=")
		if len(parts) == 2 {
			ev.Native = strings.TrimSpace(parts[0])
			ev.English = strings.TrimSpace(parts[1])
		}
		return ev, nil
	}

	return nil, ErrUnrecognized
}

// DeletionLabel renders a deletion menu entry as "native (english)".
// When native is longer than 15 characters both parts are cut, to 15 and
// 10 characters, and both carry an ellipsis.
func DeletionLabel(w db.ActiveWord) string {
	if utf8.RuneCountInString(w.Native) > 15 {
		return fmt.Sprintf("%s… (%s…)", prefix(w.Native, 15), prefix(w.English, 10))
	}
	return fmt.Sprintf("%s (%s)", w.Native, w.English)
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Describe renders an effect as plain text for text-only gateways.
// Questions are rendered without their options.
func Describe(e Effect) string {
	switch e := e.(type) {
	case Welcome:
		name := e.DisplayName
		if name == "" {
			name = "there"
		}
		return fmt.Sprintf("Hi, %s! Let's learn some English words.\n\n%s", name, HelpText)
	case Question:
		return fmt.Sprintf("How do you translate: %s", e.Prompt)
	case Result:
		if e.Correct {
			return fmt.Sprintf("Correct! %s = %s", e.Prompt, e.CorrectAnswer)
		}
		return fmt.Sprintf("Wrong. %s = %s (you chose %s)", e.Prompt, e.CorrectAnswer, e.UserAnswer)
	case EmptyLessonNotice:
		return "You have no words to learn. Add some with /add."
	case WordList:
		if len(e.Words) == 0 {
			return "You have no words yet. Add some with /add."
		}
		var b strings.Builder
		b.WriteString("Your words:\n")
		for i, w := range e.Words {
			fmt.Fprintf(&b, "\n%d. %s = %s", i+1, w.Native, w.English)
		}
		return b.String()
	case DeletionMenu:
		if len(e.Candidates) == 0 {
			return "You have no words to remove."
		}
		var b strings.Builder
		b.WriteString("Choose a word to remove (it disappears only from your lessons):\n")
		for _, w := range e.Candidates {
			fmt.Fprintf(&b, "\n[%d] %s", w.WordID, DeletionLabel(w))
		}
		return b.String()
	case DeletionResult:
		if e.Removed {
			return "Word removed from your lessons."
		}
		return "Could not remove the word."
	case AddConfirmation:
		return fmt.Sprintf("Word added: %s = %s. It is now part of your lessons.", e.Pair.Native, e.Pair.English)
	case AddFailure:
		if e.Reason == "" {
			return reasonAddFailed
		}
		return e.Reason
	case RestartNotice:
		return "That question has expired. Start a new lesson with /learn."
	case Failure:
		if e.Reason == "" {
			return reasonStorage
		}
		return e.Reason
	}
	return ""
}
