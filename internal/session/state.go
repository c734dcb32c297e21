package session

// State is the conversation state of a session
type State int

const (
	Idle State = iota
	AwaitingLanguage
	AwaitingWord
	AwaitingDefinition
	AwaitingAddConfirmation
	AwaitingQuizChoice
	AwaitingQuestionCount
	AwaitingQuizAnswer
)

var stateNames = map[State]string{
	Idle:                    "idle",
	AwaitingLanguage:        "awaiting_language",
	AwaitingWord:            "awaiting_word",
	AwaitingDefinition:      "awaiting_definition",
	AwaitingAddConfirmation: "awaiting_add_confirmation",
	AwaitingQuizChoice:      "awaiting_quiz_choice",
	AwaitingQuestionCount:   "awaiting_question_count",
	AwaitingQuizAnswer:      "awaiting_quiz_answer",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// States lists every state, Idle first.
func States() []State {
	return []State{
		Idle,
		AwaitingLanguage,
		AwaitingWord,
		AwaitingDefinition,
		AwaitingAddConfirmation,
		AwaitingQuizChoice,
		AwaitingQuestionCount,
		AwaitingQuizAnswer,
	}
}

// CommandKind identifies the flow a command starts
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandRandom
	CommandRecent
	CommandLookup
	CommandAdd
	CommandDelete
	CommandQuiz
)

func (k CommandKind) String() string {
	switch k {
	case CommandRandom:
		return "random"
	case CommandRecent:
		return "recent"
	case CommandLookup:
		return "lookup"
	case CommandAdd:
		return "add"
	case CommandDelete:
		return "delete"
	case CommandQuiz:
		return "quiz"
	default:
		return "none"
	}
}

// Command is the pending command of a multi-turn flow.
// Count is the number of terms for random and recent listings.
type Command struct {
	Kind  CommandKind
	Count int
}

// NeedsWord reports whether the command continues with a word prompt.
func (c Command) NeedsWord() bool {
	return c.Kind == CommandLookup || c.Kind == CommandAdd || c.Kind == CommandDelete
}
