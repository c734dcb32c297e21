package bot

import (
	"strings"

	"github.com/example/vocabot/internal/session"
)

// EventKind identifies the shape of an inbound event
type EventKind int

const (
	EventText EventKind = iota + 1
	EventCommand
	EventPollAnswer
	EventDocument
)

// Event is one inbound update from a user
type Event struct {
	UserID int64
	Kind   EventKind

	// Text is the raw message text, commands included.
	Text string

	// Command and Args are set for EventCommand.
	Command string
	Args    []string

	// PollID and Option are set for EventPollAnswer.
	PollID string
	Option int

	Document *Document
}

// Document is an uploaded file. Data is filled in before the event
// reaches the machine.
type Document struct {
	FileID   string
	FileName string
	MimeType string
	Size     int
	Data     []byte
}

// TextMessage creates a plain text event
func TextMessage(userID int64, text string) Event {
	return Event{UserID: userID, Kind: EventText, Text: text}
}

// CommandEvent creates a slash command event. argsRaw is split on whitespace.
func CommandEvent(userID int64, name, argsRaw string) Event {
	text := "/" + name
	if argsRaw != "" {
		text += " " + argsRaw
	}
	return Event{
		UserID:  userID,
		Kind:    EventCommand,
		Text:    text,
		Command: strings.ToLower(name),
		Args:    strings.Fields(argsRaw),
	}
}

// PollAnswerEvent creates a poll answer event
func PollAnswerEvent(userID int64, pollID string, option int) Event {
	return Event{UserID: userID, Kind: EventPollAnswer, PollID: pollID, Option: option}
}

// DocumentEvent creates a document upload event
func DocumentEvent(userID int64, doc Document) Event {
	return Event{UserID: userID, Kind: EventDocument, Document: &doc}
}

// InputClass is the event class the transition table is keyed by
type InputClass int

const (
	InputCommand InputClass = iota + 1
	InputText
	InputCancel
	InputPollAnswer
	InputDocument
)

func (c InputClass) String() string {
	switch c {
	case InputCommand:
		return "command"
	case InputText:
		return "text"
	case InputCancel:
		return "cancel"
	case InputPollAnswer:
		return "poll_answer"
	case InputDocument:
		return "document"
	default:
		return "unknown"
	}
}

// classify maps an event to its input class. Commands and menu buttons
// count as commands only in Idle; elsewhere they are answers like any
// other text.
func classify(ev Event, state session.State) InputClass {
	switch ev.Kind {
	case EventPollAnswer:
		return InputPollAnswer
	case EventDocument:
		return InputDocument
	case EventCommand:
		if ev.Command == "cancel" {
			return InputCancel
		}
		if state == session.Idle {
			return InputCommand
		}
		return InputText
	default:
		if strings.EqualFold(strings.TrimSpace(ev.Text), "cancel") {
			return InputCancel
		}
		if state == session.Idle {
			if _, ok := commandForButton(ev.Text); ok {
				return InputCommand
			}
		}
		return InputText
	}
}
