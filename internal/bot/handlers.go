package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/vocabot/internal/excel"
	"github.com/example/vocabot/internal/quiz"
	"github.com/example/vocabot/internal/session"
	"github.com/example/vocabot/pkg/models"
)

// parseCommand maps a command name to the flow it starts
func parseCommand(name string) (session.Command, bool) {
	switch name {
	case "select":
		return session.Command{Kind: session.CommandLookup}, true
	case "add":
		return session.Command{Kind: session.CommandAdd}, true
	case "delete":
		return session.Command{Kind: session.CommandDelete}, true
	case "quizzes":
		return session.Command{Kind: session.CommandQuiz}, true
	}

	m := countedCommand.FindStringSubmatch(name)
	if m == nil {
		return session.Command{}, false
	}
	n, ok := parseCount(m[2])
	if !ok {
		return session.Command{}, false
	}
	if m[1] == "random" {
		return session.Command{Kind: session.CommandRandom, Count: n}, true
	}
	return session.Command{Kind: session.CommandRecent, Count: n}, true
}

// maxArgs is the number of inline arguments a command accepts:
// the language, then the word, then the definition.
func maxArgs(cmd session.Command) int {
	switch cmd.Kind {
	case session.CommandAdd:
		return -1
	case session.CommandLookup, session.CommandDelete:
		return 2
	default:
		return 1
	}
}

// handleCommand starts a flow. Inline arguments answer the prompts that
// would otherwise follow.
func (m *Machine) handleCommand(ctx context.Context, s *session.Session, ev Event) error {
	name, args := ev.Command, ev.Args
	if ev.Kind == EventText {
		name, _ = commandForButton(ev.Text)
		args = nil
	}

	cmd, ok := parseCommand(name)
	if !ok {
		return m.handleHelp(ctx, s, ev)
	}
	if limit := maxArgs(cmd); limit >= 0 && len(args) > limit {
		return m.handleHelp(ctx, s, ev)
	}

	s.Command = cmd
	s.State = session.AwaitingLanguage
	if len(args) == 0 {
		return m.send(ctx, s.UserID, msgChooseLanguage, Buttons(m.config.Languages...))
	}
	if len(args) == 1 {
		return m.chooseLanguage(ctx, s, args[0])
	}

	lang, err := m.language(args[0])
	if err != nil {
		return m.promptLanguage(ctx, s)
	}
	s.Language = lang
	s.State = session.AwaitingWord
	if len(args) == 2 {
		return m.enterWord(ctx, s, args[1])
	}

	s.Word = strings.ToLower(args[1])
	s.State = session.AwaitingDefinition
	return m.saveDefinition(ctx, s, strings.Join(args[2:], " "))
}

// handleHelp sends the command list and the import hint
func (m *Machine) handleHelp(ctx context.Context, s *session.Session, _ Event) error {
	if err := m.send(ctx, s.UserID, helpText(), menuKeyboard()); err != nil {
		return err
	}
	return m.send(ctx, s.UserID, msgImportDescription, nil)
}

func (m *Machine) handleLanguage(ctx context.Context, s *session.Session, ev Event) error {
	return m.chooseLanguage(ctx, s, ev.Text)
}

func (m *Machine) promptLanguage(ctx context.Context, s *session.Session) error {
	s.State = session.AwaitingLanguage
	return m.send(ctx, s.UserID, invalidLanguageText(m.config.Languages), Buttons(m.config.Languages...))
}

// chooseLanguage takes the language answer and continues the pending command
func (m *Machine) chooseLanguage(ctx context.Context, s *session.Session, text string) error {
	lang, err := m.language(text)
	if err != nil {
		return m.promptLanguage(ctx, s)
	}

	switch s.Command.Kind {
	case session.CommandRandom, session.CommandRecent:
		var terms []models.Term
		if s.Command.Kind == session.CommandRandom {
			terms, err = m.store.RandomTerms(ctx, s.Command.Count, lang)
		} else {
			terms, err = m.store.RecentTerms(ctx, s.Command.Count, lang)
		}
		if err != nil {
			return storeError("list terms", err)
		}

		reply := msgEmptyDictionary
		if len(terms) > 0 {
			reply = formatTerms(terms)
		}
		s.Finish()
		return m.send(ctx, s.UserID, reply, menuKeyboard())

	case session.CommandLookup, session.CommandAdd, session.CommandDelete:
		s.Language = lang
		s.State = session.AwaitingWord
		return m.send(ctx, s.UserID, msgEnterWord, m.wordSuggestions(ctx, lang))

	case session.CommandQuiz:
		terms, err := m.store.RandomTerms(ctx, 1, lang)
		if err != nil {
			return storeError("check dictionary", err)
		}
		if len(terms) == 0 {
			s.Finish()
			return m.send(ctx, s.UserID, msgEmptyDictionary, menuKeyboard())
		}
		s.Language = lang
		s.State = session.AwaitingQuizChoice
		return m.send(ctx, s.UserID, msgChooseQuiz, quizKeyboard())

	default:
		return invariantError(s, "language answer without a pending command")
	}
}

func (m *Machine) handleWord(ctx context.Context, s *session.Session, ev Event) error {
	return m.enterWord(ctx, s, ev.Text)
}

// enterWord takes the word answer of a lookup, delete or add flow
func (m *Machine) enterWord(ctx context.Context, s *session.Session, text string) error {
	word := strings.ToLower(strings.TrimSpace(text))
	if word == "" {
		return m.send(ctx, s.UserID, msgEnterWord, nil)
	}

	switch s.Command.Kind {
	case session.CommandLookup:
		definitions, err := m.store.DefinitionsByPrefix(ctx, word, s.Language)
		if err != nil {
			return storeError("look up word", err)
		}
		if len(definitions) > 0 {
			s.Finish()
			return m.send(ctx, s.UserID, formatDefinitions(word, definitions), menuKeyboard())
		}
		s.Word = word
		s.State = session.AwaitingAddConfirmation
		return m.send(ctx, s.UserID, msgOfferAdd, yesNoKeyboard())

	case session.CommandDelete:
		if err := m.store.Delete(ctx, word, s.Language); err != nil {
			return storeError("delete word", err)
		}
		s.Finish()
		return m.send(ctx, s.UserID, msgDeleted, menuKeyboard())

	case session.CommandAdd:
		s.Word = word
		return m.promptDefinition(ctx, s)

	default:
		return invariantError(s, "word answer for "+s.Command.Kind.String())
	}
}

// promptDefinition shows what the dictionary already holds for the
// buffered word and asks for a new definition.
func (m *Machine) promptDefinition(ctx context.Context, s *session.Session) error {
	existing, err := m.store.DefinitionsByPrefix(ctx, s.Word, s.Language)
	if err != nil {
		return storeError("look up word", err)
	}
	suggestions := m.definitionSuggestions(ctx, s.Language)

	s.Command = session.Command{Kind: session.CommandAdd}
	s.State = session.AwaitingDefinition

	if len(existing) > 0 {
		if err := m.send(ctx, s.UserID, formatDefinitions(s.Word, existing), nil); err != nil {
			return err
		}
	}
	return m.send(ctx, s.UserID, msgEnterDefinition, suggestions)
}

func (m *Machine) handleConfirmation(ctx context.Context, s *session.Session, ev Event) error {
	switch {
	case matchToken(ev.Text, yesTokens):
		return m.promptDefinition(ctx, s)
	case matchToken(ev.Text, noTokens):
		s.Finish()
		return m.send(ctx, s.UserID, msgDeclined, menuKeyboard())
	default:
		return m.send(ctx, s.UserID, msgOfferAdd, yesNoKeyboard())
	}
}

func (m *Machine) handleDefinition(ctx context.Context, s *session.Session, ev Event) error {
	return m.saveDefinition(ctx, s, ev.Text)
}

// saveDefinition inserts every definition of the input, which may hold
// several separated by the configured separator.
func (m *Machine) saveDefinition(ctx context.Context, s *session.Session, text string) error {
	input := strings.TrimSpace(text)
	definitions := m.splitDefinitions(input)
	if len(definitions) == 0 {
		return m.send(ctx, s.UserID, msgEnterDefinition, nil)
	}

	for _, definition := range definitions {
		if err := m.store.Insert(ctx, s.Word, definition, s.Language); err != nil {
			return storeError("insert term", err)
		}
	}

	reply := addedText(s.Word, input)
	s.Finish()
	return m.send(ctx, s.UserID, reply, menuKeyboard())
}

func (m *Machine) splitDefinitions(input string) []string {
	parts := strings.Split(input, m.config.DefinitionSeparator)
	definitions := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			definitions = append(definitions, p)
		}
	}
	return uniqueStrings(definitions)
}

func (m *Machine) handleQuizChoice(ctx context.Context, s *session.Session, ev Event) error {
	kind, ok := quizKindForLabel(ev.Text)
	if !ok {
		return m.send(ctx, s.UserID, msgChooseQuiz, quizKeyboard())
	}
	s.QuizKind = kind
	s.State = session.AwaitingQuestionCount
	return m.send(ctx, s.UserID, msgEnterCount, RemoveKeyboard())
}

// handleQuestionCount starts a quiz run with the first question
func (m *Machine) handleQuestionCount(ctx context.Context, s *session.Session, ev Event) error {
	n, ok := parseCount(ev.Text)
	if !ok {
		return m.send(ctx, s.UserID, msgInvalidCount, nil)
	}

	question, err := m.generate(ctx, s.QuizKind, s.Language)
	if errors.Is(err, quiz.ErrInsufficientData) {
		s.Finish()
		return m.send(ctx, s.UserID, msgNotEnoughWords, menuKeyboard())
	}
	if err != nil {
		return err
	}

	q := &session.Quiz{
		Kind:     s.QuizKind,
		Language: s.Language,
		Tracker:  session.NewTracker(n),
		Current:  question,
	}
	s.Reset()

	if q.Kind == quiz.MultipleChoice {
		// Poll answers arrive outside the text flow, the session stays idle
		pollID, err := m.sendPoll(ctx, s.UserID, q)
		if err != nil {
			return err
		}
		q.PollID = pollID
		s.Quiz = q
		return nil
	}

	s.Quiz = q
	s.State = session.AwaitingQuizAnswer
	return m.send(ctx, s.UserID, question.Prompt, RemoveKeyboard())
}

// handleAnswer scores a typed answer and asks the next question
func (m *Machine) handleAnswer(ctx context.Context, s *session.Session, ev Event) error {
	q := s.Quiz
	correct := q.Current.Check(quiz.TextAnswer(ev.Text))
	feedback := msgCorrect
	if !correct {
		feedback = wrongAnswerText(q.Current.Solution())
	}

	if q.Tracker.Record(correct) {
		s.Reset()
		return m.sendAll(ctx, s.UserID,
			outgoing{text: feedback},
			outgoing{text: quizFinishedText(q.Tracker.Correct, q.Tracker.Target), keyboard: menuKeyboard()})
	}

	next, err := m.generate(ctx, q.Kind, q.Language)
	if errors.Is(err, quiz.ErrInsufficientData) {
		s.Reset()
		return m.sendAll(ctx, s.UserID,
			outgoing{text: feedback},
			outgoing{text: msgNotEnoughWords},
			outgoing{text: quizFinishedText(q.Tracker.Correct, q.Tracker.Asked), keyboard: menuKeyboard()})
	}
	if err != nil {
		return err
	}

	q.Current = next
	return m.sendAll(ctx, s.UserID, outgoing{text: feedback}, outgoing{text: next.Prompt})
}

// handlePollAnswer scores an answer to the running poll quiz. Answers to
// any other poll are ignored. A poll takes a single vote, so once the
// answer is recorded the step always commits and sends are best-effort.
func (m *Machine) handlePollAnswer(ctx context.Context, s *session.Session, ev Event) error {
	q := s.Quiz
	if q == nil || q.Kind != quiz.MultipleChoice || q.PollID == "" || q.PollID != ev.PollID {
		m.log.Debug("ignoring poll answer",
			slog.Int64("user_id", s.UserID),
			slog.String("poll_id", ev.PollID))
		return nil
	}

	correct := q.Current.Check(quiz.OptionAnswer(ev.Option))
	reveal := revealText(q.Current)

	if q.Tracker.Record(correct) {
		s.Quiz = nil
		m.notifyAll(ctx, s.UserID,
			outgoing{text: reveal},
			outgoing{text: quizFinishedText(q.Tracker.Correct, q.Tracker.Target), keyboard: menuKeyboard()})
		return nil
	}

	next, err := m.generate(ctx, q.Kind, q.Language)
	if errors.Is(err, quiz.ErrInsufficientData) {
		s.Quiz = nil
		m.notifyAll(ctx, s.UserID,
			outgoing{text: reveal},
			outgoing{text: msgNotEnoughWords},
			outgoing{text: quizFinishedText(q.Tracker.Correct, q.Tracker.Asked), keyboard: menuKeyboard()})
		return nil
	}
	if err != nil {
		m.abortPollQuiz(ctx, s, err, reveal)
		return nil
	}

	if err := m.send(ctx, s.UserID, reveal, nil); err != nil {
		m.abortPollQuiz(ctx, s, err)
		return nil
	}
	q.Current = next
	pollID, err := m.sendPoll(ctx, s.UserID, q)
	if err != nil {
		m.abortPollQuiz(ctx, s, err)
		return nil
	}
	q.PollID = pollID
	return nil
}

// abortPollQuiz ends a poll quiz that cannot go on and reports the score
// reached so far.
func (m *Machine) abortPollQuiz(ctx context.Context, s *session.Session, cause error, texts ...string) {
	q := s.Quiz
	m.log.Error("poll quiz aborted",
		slog.Int64("user_id", s.UserID),
		slog.Int("asked", q.Tracker.Asked),
		slog.String("error", cause.Error()))

	s.Quiz = nil
	messages := make([]outgoing, 0, len(texts)+2)
	for _, text := range texts {
		messages = append(messages, outgoing{text: text})
	}
	messages = append(messages,
		outgoing{text: msgQuizAborted},
		outgoing{text: quizFinishedText(q.Tracker.Correct, q.Tracker.Asked), keyboard: menuKeyboard()})
	m.notifyAll(ctx, s.UserID, messages...)
}

// handleCancel drops whatever the user was doing. Plain idle sessions
// have nothing to cancel.
func (m *Machine) handleCancel(ctx context.Context, s *session.Session, _ Event) error {
	if !s.Busy() {
		return nil
	}
	s.Reset()
	return m.send(ctx, s.UserID, msgCancelled, menuKeyboard())
}

// handleDocument imports the word, definition rows of an uploaded file
// into the language named by the file.
func (m *Machine) handleDocument(ctx context.Context, s *session.Session, ev Event) error {
	doc := ev.Document
	if doc == nil {
		return nil
	}

	lang := excel.LanguageFromFileName(doc.FileName)
	if !m.languages[lang] {
		return m.handleHelp(ctx, s, ev)
	}
	if excel.DetectFormat(doc.FileName, doc.MimeType) == excel.FormatUnknown {
		return m.send(ctx, s.UserID, msgOnlyCSV, menuKeyboard())
	}

	result, err := excel.ParseTerms(doc.FileName, doc.MimeType, doc.Data)
	if err != nil {
		m.log.Warn("failed to parse document",
			slog.Int64("user_id", s.UserID),
			slog.String("file", doc.FileName),
			slog.String("error", err.Error()))
		return m.send(ctx, s.UserID, msgUnreadableDocument, menuKeyboard())
	}
	if len(result.Rows) == 0 {
		return m.send(ctx, s.UserID, msgImportEmpty, menuKeyboard())
	}

	for _, row := range result.Rows {
		if err := m.store.Insert(ctx, row.Word, row.Definition, lang); err != nil {
			return storeError("import terms", err)
		}
	}

	m.log.Info("document imported",
		slog.Int64("user_id", s.UserID),
		slog.String("file", doc.FileName),
		slog.String("language", lang),
		slog.Int("added", len(result.Rows)),
		slog.Int("skipped", result.Skipped))
	return m.send(ctx, s.UserID, fmt.Sprintf(msgImported, len(result.Rows)), menuKeyboard())
}

// wordSuggestions offers the most recent words as buttons
func (m *Machine) wordSuggestions(ctx context.Context, lang string) *Keyboard {
	terms := m.recentTerms(ctx, lang)
	words := make([]string, 0, len(terms))
	for _, t := range terms {
		words = append(words, t.Word)
	}
	return Buttons(uniqueStrings(words)...)
}

// definitionSuggestions offers the most recent definitions as buttons
func (m *Machine) definitionSuggestions(ctx context.Context, lang string) *Keyboard {
	terms := m.recentTerms(ctx, lang)
	definitions := make([]string, 0, len(terms))
	for _, t := range terms {
		definitions = append(definitions, t.Definition)
	}
	return Buttons(uniqueStrings(definitions)...)
}

// recentTerms loads suggestion terms. Suggestions are optional, so
// failures are logged and yield none.
func (m *Machine) recentTerms(ctx context.Context, lang string) []models.Term {
	if m.config.RecentSuggestions <= 0 {
		return nil
	}
	terms, err := m.store.RecentTerms(ctx, m.config.RecentSuggestions, lang)
	if err != nil {
		m.log.Warn("failed to load suggestions",
			slog.String("language", lang),
			slog.String("error", err.Error()))
		return nil
	}
	return terms
}

type outgoing struct {
	text     string
	keyboard *Keyboard
}

func (m *Machine) sendAll(ctx context.Context, userID int64, messages ...outgoing) error {
	for _, msg := range messages {
		if err := m.send(ctx, userID, msg.text, msg.keyboard); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) notifyAll(ctx context.Context, userID int64, messages ...outgoing) {
	for _, msg := range messages {
		m.notify(ctx, userID, msg.text, msg.keyboard)
	}
}
