package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/vocabot/internal/quiz"
)

// ErrInvariantViolation marks a session whose state and buffered fields
// do not fit together.
var ErrInvariantViolation = errors.New("invariant violation")

// Quiz is the progress of one quiz run
type Quiz struct {
	Kind     quiz.Kind
	Language string
	Tracker  Tracker
	// Current is the question awaiting an answer.
	Current *quiz.Question
	// PollID correlates poll answers with Current for MultipleChoice runs.
	PollID string
}

// Session is the conversational and quiz state of one user
type Session struct {
	UserID     int64
	State      State
	Command    Command
	Language   string
	Word       string
	Definition string
	QuizKind   quiz.Kind
	Quiz       *Quiz
	LastActive time.Time
}

// New creates an idle session for a user
func New(userID int64) Session {
	return Session{UserID: userID, State: Idle}
}

// Clone returns a copy that can be changed without touching s.
// Questions are immutable and shared.
func (s Session) Clone() Session {
	c := s
	if s.Quiz != nil {
		q := *s.Quiz
		c.Quiz = &q
	}
	return c
}

// Reset returns the session to Idle and drops every buffered field,
// including a running quiz.
func (s *Session) Reset() {
	*s = Session{UserID: s.UserID, State: Idle, LastActive: s.LastActive}
}

// Finish returns the session to Idle but keeps a running poll quiz,
// whose answers arrive outside the text flow.
func (s *Session) Finish() {
	q := s.Quiz
	s.Reset()
	if q != nil && q.Kind == quiz.MultipleChoice && q.PollID != "" {
		s.Quiz = q
	}
}

// Busy reports whether there is anything to cancel.
func (s Session) Busy() bool {
	return s.State != Idle || s.Quiz != nil
}

// Validate checks that the buffered fields fit the state.
func (s Session) Validate() error {
	switch s.State {
	case Idle:
		if s.Quiz != nil && (s.Quiz.Kind != quiz.MultipleChoice || s.Quiz.PollID == "" || s.Quiz.Current == nil) {
			return s.violation("idle session may only carry a running poll quiz")
		}
	case AwaitingLanguage:
		if s.Command.Kind == CommandNone {
			return s.violation("no pending command")
		}
	case AwaitingWord:
		if s.Language == "" || !s.Command.NeedsWord() {
			return s.violation("word prompt needs a language and a lookup, add or delete command")
		}
	case AwaitingAddConfirmation, AwaitingDefinition:
		if s.Language == "" || s.Word == "" {
			return s.violation("no buffered word")
		}
	case AwaitingQuizChoice:
		if s.Language == "" || s.Command.Kind != CommandQuiz {
			return s.violation("quiz choice needs a language and a quiz command")
		}
	case AwaitingQuestionCount:
		if s.Language == "" || s.QuizKind == 0 {
			return s.violation("no quiz kind chosen")
		}
	case AwaitingQuizAnswer:
		if s.Quiz == nil || s.Quiz.Current == nil || s.Quiz.Kind == quiz.MultipleChoice {
			return s.violation("no text question awaiting an answer")
		}
	default:
		return s.violation("unknown state")
	}

	if s.Quiz != nil && s.Quiz.Current != nil && s.Quiz.Current.Kind != s.Quiz.Kind {
		return s.violation("current question kind differs from quiz kind")
	}
	return nil
}

func (s Session) violation(msg string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvariantViolation, msg, s.State)
}
