package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/vocabot/internal/quiz"
	"github.com/example/vocabot/internal/session"
)

// QuestionSource generates quiz questions
type QuestionSource interface {
	Generate(ctx context.Context, kind quiz.Kind, lang string) (*quiz.Question, error)
}

type transition struct {
	state session.State
	input InputClass
}

type stepFunc func(ctx context.Context, s *session.Session, ev Event) error

// Machine drives the conversation of every user. Each event runs under
// its user's session lock against a copy of the session; the copy is
// kept only when the step succeeds.
type Machine struct {
	store       TermStore
	channel     Channel
	questions   QuestionSource
	sessions    *session.Store
	config      *BotConfig
	languages   map[string]bool
	log         *slog.Logger
	transitions map[transition]stepFunc
}

// NewMachine creates a new conversation state machine
func NewMachine(store TermStore, channel Channel, questions QuestionSource, sessions *session.Store, cfg *BotConfig, log *slog.Logger) *Machine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}

	m := &Machine{
		store:     store,
		channel:   channel,
		questions: questions,
		sessions:  sessions,
		config:    cfg,
		languages: make(map[string]bool, len(cfg.Languages)),
		log:       log,
	}
	for _, lang := range cfg.Languages {
		m.languages[strings.ToLower(lang)] = true
	}

	m.transitions = map[transition]stepFunc{
		{session.Idle, InputCommand}:                 m.handleCommand,
		{session.Idle, InputText}:                    m.handleHelp,
		{session.Idle, InputDocument}:                m.handleDocument,
		{session.AwaitingLanguage, InputText}:        m.handleLanguage,
		{session.AwaitingWord, InputText}:            m.handleWord,
		{session.AwaitingAddConfirmation, InputText}: m.handleConfirmation,
		{session.AwaitingDefinition, InputText}:      m.handleDefinition,
		{session.AwaitingQuizChoice, InputText}:      m.handleQuizChoice,
		{session.AwaitingQuestionCount, InputText}:   m.handleQuestionCount,
		{session.AwaitingQuizAnswer, InputText}:      m.handleAnswer,
	}
	for _, state := range session.States() {
		m.transitions[transition{state, InputCancel}] = m.handleCancel
		m.transitions[transition{state, InputPollAnswer}] = m.handlePollAnswer
	}

	return m
}

// Handle processes one event of a user to completion. The returned error
// has already been logged and reported to the user.
func (m *Machine) Handle(ctx context.Context, ev Event) error {
	var err error
	m.sessions.Do(ev.UserID, func(s *session.Session) {
		err = m.step(ctx, s, ev)
	})
	return err
}

func (m *Machine) step(ctx context.Context, s *session.Session, ev Event) error {
	if err := s.Validate(); err != nil {
		m.recoverSession(ctx, s, err)
		return err
	}

	input := classify(ev, s.State)
	handler, ok := m.transitions[transition{s.State, input}]
	if !ok {
		m.log.Debug("no transition",
			slog.Int64("user_id", s.UserID),
			slog.String("state", s.State.String()),
			slog.String("input", input.String()))
		return nil
	}

	next := s.Clone()
	if err := handler(ctx, &next, ev); err != nil {
		if errors.Is(err, session.ErrInvariantViolation) {
			m.recoverSession(ctx, s, err)
			return err
		}
		m.reportFailure(ctx, s, err)
		return err
	}
	if err := next.Validate(); err != nil {
		m.recoverSession(ctx, s, err)
		return err
	}

	if next.State != s.State {
		m.log.Debug("state transition",
			slog.Int64("user_id", s.UserID),
			slog.String("from", s.State.String()),
			slog.String("to", next.State.String()),
			slog.String("input", input.String()))
	}
	*s = next
	return nil
}

// recoverSession resets a session found in an impossible state
func (m *Machine) recoverSession(ctx context.Context, s *session.Session, err error) {
	m.log.Error("session invariant violated",
		slog.Int64("user_id", s.UserID),
		slog.String("state", s.State.String()),
		slog.String("error", err.Error()))
	s.Reset()
	m.notify(ctx, s.UserID, msgInternalError, menuKeyboard())
}

// reportFailure logs an aborted step and tells the user to retry. The
// session stays as it was before the event.
func (m *Machine) reportFailure(ctx context.Context, s *session.Session, err error) {
	if errors.Is(err, ErrStoreUnavailable) {
		m.log.Error("term store failure",
			slog.Int64("user_id", s.UserID),
			slog.String("state", s.State.String()),
			slog.String("error", err.Error()))
		m.notify(ctx, s.UserID, msgStoreUnavailable, nil)
		return
	}
	m.log.Error("step aborted",
		slog.Int64("user_id", s.UserID),
		slog.String("state", s.State.String()),
		slog.String("error", err.Error()))
	m.notify(ctx, s.UserID, msgStepFailed, nil)
}

// notify sends a message whose failure is only logged
func (m *Machine) notify(ctx context.Context, userID int64, text string, keyboard *Keyboard) {
	if err := m.channel.SendText(ctx, userID, text, keyboard); err != nil {
		m.log.Error("failed to notify user",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
	}
}

func (m *Machine) send(ctx context.Context, userID int64, text string, keyboard *Keyboard) error {
	if err := m.channel.SendText(ctx, userID, text, keyboard); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (m *Machine) sendPoll(ctx context.Context, userID int64, q *session.Quiz) (string, error) {
	mc := q.Current.MultipleChoice
	pollID, err := m.channel.SendPoll(ctx, userID, pollQuestion(q.Tracker.Next(), mc.Word), mc.Options, mc.Correct)
	if err != nil {
		return "", fmt.Errorf("failed to send poll: %w", err)
	}
	return pollID, nil
}

// language validates a language answer
func (m *Machine) language(text string) (string, error) {
	lang := strings.ToLower(strings.TrimSpace(text))
	if !m.languages[lang] {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, text)
	}
	return lang, nil
}

// generate creates a question, reporting store failures as ErrStoreUnavailable
func (m *Machine) generate(ctx context.Context, kind quiz.Kind, lang string) (*quiz.Question, error) {
	q, err := m.questions.Generate(ctx, kind, lang)
	if err != nil {
		if errors.Is(err, quiz.ErrInsufficientData) {
			return nil, err
		}
		return nil, storeError("generate question", err)
	}
	return q, nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func invariantError(s *session.Session, msg string) error {
	return fmt.Errorf("%w: %s in state %s", session.ErrInvariantViolation, msg, s.State)
}
