package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabot/internal/quiz"
)

func fillBlankQuestion() *quiz.Question {
	return &quiz.Question{
		Kind:      quiz.FillBlank,
		Language:  "eng",
		Prompt:    "B_OK - bound volume",
		FillBlank: &quiz.FillBlankData{Word: "book", Definition: "bound volume", Position: 1, Letter: 'o'},
	}
}

func multipleChoiceQuestion() *quiz.Question {
	return &quiz.Question{
		Kind:     quiz.MultipleChoice,
		Language: "eng",
		Prompt:   "book",
		MultipleChoice: &quiz.MultipleChoiceData{
			Word:        "book",
			Options:     []string{"a", "b", "c", "d"},
			Definitions: []string{"a", "b", "c", "d"},
		},
	}
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := New(1)
	s.Quiz = &Quiz{Kind: quiz.FillBlank, Tracker: NewTracker(3), Current: fillBlankQuestion()}

	c := s.Clone()
	c.Quiz.Tracker.Record(true)
	c.State = AwaitingQuizAnswer
	c.Word = "changed"

	assert.Equal(t, Idle, s.State)
	assert.Empty(t, s.Word)
	assert.Equal(t, 0, s.Quiz.Tracker.Asked)
	assert.Equal(t, 1, c.Quiz.Tracker.Asked)
}

func TestSession_Reset(t *testing.T) {
	s := Session{
		UserID:   7,
		State:    AwaitingDefinition,
		Command:  Command{Kind: CommandAdd},
		Language: "eng",
		Word:     "book",
		Quiz:     &Quiz{Kind: quiz.FillBlank},
	}
	s.Reset()

	assert.Equal(t, int64(7), s.UserID)
	assert.Equal(t, Idle, s.State)
	assert.Equal(t, CommandNone, s.Command.Kind)
	assert.Empty(t, s.Language)
	assert.Empty(t, s.Word)
	assert.Nil(t, s.Quiz)
	assert.False(t, s.Busy())
}

func TestSession_FinishKeepsPollQuiz(t *testing.T) {
	s := New(1)
	s.State = AwaitingQuestionCount
	s.Language = "eng"
	s.QuizKind = quiz.MultipleChoice
	s.Quiz = &Quiz{Kind: quiz.MultipleChoice, Current: multipleChoiceQuestion(), PollID: "p1"}

	s.Finish()

	assert.Equal(t, Idle, s.State)
	assert.Empty(t, s.Language)
	require.NotNil(t, s.Quiz)
	assert.Equal(t, "p1", s.Quiz.PollID)
	assert.True(t, s.Busy())
	assert.NoError(t, s.Validate())
}

func TestSession_Validate(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{name: "fresh", session: New(1)},
		{
			name:    "idle with poll quiz",
			session: Session{State: Idle, Quiz: &Quiz{Kind: quiz.MultipleChoice, Current: multipleChoiceQuestion(), PollID: "p"}},
		},
		{
			name:    "idle with text quiz",
			session: Session{State: Idle, Quiz: &Quiz{Kind: quiz.FillBlank, Current: fillBlankQuestion()}},
			wantErr: true,
		},
		{
			name:    "idle with poll quiz lacking poll id",
			session: Session{State: Idle, Quiz: &Quiz{Kind: quiz.MultipleChoice, Current: multipleChoiceQuestion()}},
			wantErr: true,
		},
		{name: "language without command", session: Session{State: AwaitingLanguage}, wantErr: true},
		{name: "language with command", session: Session{State: AwaitingLanguage, Command: Command{Kind: CommandRandom, Count: 5}}},
		{name: "word without language", session: Session{State: AwaitingWord, Command: Command{Kind: CommandAdd}}, wantErr: true},
		{name: "word for quiz command", session: Session{State: AwaitingWord, Language: "eng", Command: Command{Kind: CommandQuiz}}, wantErr: true},
		{name: "word ok", session: Session{State: AwaitingWord, Language: "eng", Command: Command{Kind: CommandDelete}}},
		{name: "definition without word", session: Session{State: AwaitingDefinition, Language: "eng"}, wantErr: true},
		{name: "definition ok", session: Session{State: AwaitingDefinition, Language: "eng", Word: "book"}},
		{name: "confirmation without word", session: Session{State: AwaitingAddConfirmation, Language: "eng"}, wantErr: true},
		{name: "quiz choice ok", session: Session{State: AwaitingQuizChoice, Language: "eng", Command: Command{Kind: CommandQuiz}}},
		{name: "quiz choice without command", session: Session{State: AwaitingQuizChoice, Language: "eng"}, wantErr: true},
		{name: "count without kind", session: Session{State: AwaitingQuestionCount, Language: "eng"}, wantErr: true},
		{name: "count ok", session: Session{State: AwaitingQuestionCount, Language: "eng", QuizKind: quiz.MatchPairs}},
		{name: "answer without quiz", session: Session{State: AwaitingQuizAnswer}, wantErr: true},
		{
			name:    "answer for poll quiz",
			session: Session{State: AwaitingQuizAnswer, Quiz: &Quiz{Kind: quiz.MultipleChoice, Current: multipleChoiceQuestion()}},
			wantErr: true,
		},
		{
			name:    "answer with mismatched question",
			session: Session{State: AwaitingQuizAnswer, Quiz: &Quiz{Kind: quiz.MatchPairs, Current: fillBlankQuestion()}},
			wantErr: true,
		},
		{
			name:    "answer ok",
			session: Session{State: AwaitingQuizAnswer, Quiz: &Quiz{Kind: quiz.FillBlank, Current: fillBlankQuestion()}},
		},
		{name: "unknown state", session: Session{State: State(99)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvariantViolation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker(3)
	assert.Equal(t, 1, tr.Next())
	assert.False(t, tr.Record(true))
	assert.False(t, tr.Record(false))
	assert.Equal(t, 3, tr.Next())
	assert.True(t, tr.Record(true))
	assert.True(t, tr.Done())
	assert.Equal(t, "2/3", tr.Summary())
	assert.LessOrEqual(t, tr.Correct, tr.Target)
}

func TestState_String(t *testing.T) {
	for _, s := range States() {
		assert.NotEqual(t, "unknown", s.String())
	}
	assert.Equal(t, "unknown", State(42).String())
	assert.Equal(t, Idle, States()[0])
}
