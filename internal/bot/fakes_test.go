package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabot/internal/quiz"
	"github.com/example/vocabot/internal/session"
	"github.com/example/vocabot/pkg/models"
)

// fakeStore is an in-memory TermStore. RandomTerms returns terms in
// insertion order.
type fakeStore struct {
	mu      sync.Mutex
	terms   []models.Term
	inserts []models.Term
	deletes []models.Term
	err     error
}

func newFakeStore(lang string, pairs ...[2]string) *fakeStore {
	s := &fakeStore{}
	for _, p := range pairs {
		s.terms = append(s.terms, models.Term{Word: p[0], Definition: p[1], Language: lang})
	}
	return s
}

func (s *fakeStore) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *fakeStore) byLanguage(lang string) []models.Term {
	var out []models.Term
	for _, t := range s.terms {
		if t.Language == lang {
			out = append(out, t)
		}
	}
	return out
}

func (s *fakeStore) RandomTerms(_ context.Context, n int, lang string) ([]models.Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	terms := s.byLanguage(lang)
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms, nil
}

func (s *fakeStore) RecentTerms(_ context.Context, n int, lang string) ([]models.Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	terms := s.byLanguage(lang)
	var out []models.Term
	for i := len(terms) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, terms[i])
	}
	return out, nil
}

func (s *fakeStore) DefinitionsByPrefix(_ context.Context, word, lang string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for _, t := range s.byLanguage(lang) {
		if strings.HasPrefix(strings.ToLower(t.Word), strings.ToLower(word)) {
			out = append(out, t.Definition)
		}
	}
	return out, nil
}

func (s *fakeStore) Insert(_ context.Context, word, definition, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	term := models.Term{Word: word, Definition: definition, Language: lang}
	s.inserts = append(s.inserts, term)
	for _, t := range s.terms {
		if t.Word == word && t.Definition == definition && t.Language == lang {
			return nil
		}
	}
	s.terms = append(s.terms, term)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, word, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deletes = append(s.deletes, models.Term{Word: word, Language: lang})
	kept := s.terms[:0]
	for _, t := range s.terms {
		if t.Word != word || t.Language != lang {
			kept = append(kept, t)
		}
	}
	s.terms = kept
	return nil
}

func (s *fakeStore) Inserts() []models.Term {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Term(nil), s.inserts...)
}

func (s *fakeStore) Deletes() []models.Term {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Term(nil), s.deletes...)
}

type sentMessage struct {
	UserID   int64
	Text     string
	Keyboard *Keyboard
}

type sentPoll struct {
	UserID   int64
	ID       string
	Question string
	Options  []string
	Correct  int
}

// recordingChannel records everything sent and hands out random poll ids
type recordingChannel struct {
	mu       sync.Mutex
	messages []sentMessage
	polls    []sentPoll
	err      error
	pollErr  error
}

func (c *recordingChannel) fail(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// failPolls makes only SendPoll fail
func (c *recordingChannel) failPolls(err error) {
	c.mu.Lock()
	c.pollErr = err
	c.mu.Unlock()
}

func (c *recordingChannel) SendText(_ context.Context, userID int64, text string, keyboard *Keyboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, sentMessage{UserID: userID, Text: text, Keyboard: keyboard})
	return nil
}

func (c *recordingChannel) SendPoll(_ context.Context, userID int64, question string, options []string, correct int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	if c.pollErr != nil {
		return "", c.pollErr
	}
	p := sentPoll{UserID: userID, ID: uuid.NewString(), Question: question, Options: options, Correct: correct}
	c.polls = append(c.polls, p)
	return p.ID, nil
}

func (c *recordingChannel) Messages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentMessage(nil), c.messages...)
}

func (c *recordingChannel) Texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	for i, m := range c.messages {
		out[i] = m.Text
	}
	return out
}

func (c *recordingChannel) Last() sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return sentMessage{}
	}
	return c.messages[len(c.messages)-1]
}

func (c *recordingChannel) Polls() []sentPoll {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentPoll(nil), c.polls...)
}

func (c *recordingChannel) Reset() {
	c.mu.Lock()
	c.messages = nil
	c.polls = nil
	c.mu.Unlock()
}

const testUser int64 = 42

type harness struct {
	t        *testing.T
	machine  *Machine
	sessions *session.Store
	store    *fakeStore
	channel  *recordingChannel
}

func newHarness(t *testing.T, store *fakeStore) *harness {
	t.Helper()

	if store == nil {
		store = &fakeStore{}
	}
	channel := &recordingChannel{}
	sessions := session.NewStore()
	generator := quiz.NewGenerator(store, quiz.DefaultRand, quiz.DefaultOptionLength)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &harness{
		t:        t,
		machine:  NewMachine(store, channel, generator, sessions, DefaultConfig(), log),
		sessions: sessions,
		store:    store,
		channel:  channel,
	}
}

func (h *harness) text(text string) error {
	return h.machine.Handle(context.Background(), TextMessage(testUser, text))
}

func (h *harness) command(name, args string) error {
	return h.machine.Handle(context.Background(), CommandEvent(testUser, name, args))
}

func (h *harness) poll(pollID string, option int) error {
	return h.machine.Handle(context.Background(), PollAnswerEvent(testUser, pollID, option))
}

// must runs steps that are expected to succeed
func (h *harness) must(errs ...error) {
	h.t.Helper()
	for _, err := range errs {
		require.NoError(h.t, err)
	}
}

func (h *harness) session() session.Session {
	h.t.Helper()
	s, ok := h.sessions.Get(testUser)
	require.True(h.t, ok, "session of test user")
	return s
}

// set replaces the test user's session
func (h *harness) set(s session.Session) {
	h.sessions.Do(testUser, func(cur *session.Session) {
		s.UserID = testUser
		*cur = s
	})
}
