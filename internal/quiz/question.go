package quiz

import (
	"strconv"
	"strings"
	"unicode"
)

// Kind represents the different quiz kinds
type Kind int

const (
	// MultipleChoice asks for the definition of a word among four options
	MultipleChoice Kind = iota + 1
	// FillBlank asks for the missing letter of a word
	FillBlank
	// MatchPairs asks to match four words with four shuffled definitions
	MatchPairs
)

func (k Kind) String() string {
	switch k {
	case MultipleChoice:
		return "multiple_choice"
	case FillBlank:
		return "fill_blank"
	case MatchPairs:
		return "match_pairs"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Answer is a user's reply to a question: a poll option for
// MultipleChoice, free text otherwise.
type Answer struct {
	Option int
	Text   string
}

// OptionAnswer returns the answer for a selected poll option.
func OptionAnswer(option int) Answer {
	return Answer{Option: option}
}

// TextAnswer returns the answer for a text reply.
func TextAnswer(text string) Answer {
	return Answer{Option: -1, Text: text}
}

// Question is one generated quiz item. Exactly one of the kind payloads
// is set, matching Kind.
type Question struct {
	Kind     Kind
	Language string
	Prompt   string

	MultipleChoice *MultipleChoiceData
	FillBlank      *FillBlankData
	MatchPairs     *MatchPairsData
}

// MultipleChoiceData holds a four-option definition question.
type MultipleChoiceData struct {
	Word string
	// Options are the definitions cut to the poll label limit.
	Options []string
	// Definitions are the full definitions, same order as Options.
	Definitions []string
	Correct     int
}

// FillBlankData holds a missing-letter question.
type FillBlankData struct {
	Word       string
	Definition string
	// Position is the rune index of the blank in Word.
	Position int
	Letter   rune
}

// MatchPairsData holds a word/definition matching question.
type MatchPairsData struct {
	Words []string
	// Definitions are shuffled independently of Words.
	Definitions []string
	// Pairs is the solution, e.g. ["1c", "2a", "3d", "4b"].
	Pairs []string
}

// Check reports whether the answer is correct for the question's kind.
func (q *Question) Check(a Answer) bool {
	switch q.Kind {
	case MultipleChoice:
		return q.MultipleChoice != nil && a.Option == q.MultipleChoice.Correct
	case FillBlank:
		if q.FillBlank == nil {
			return false
		}
		return strings.ToLower(strings.TrimSpace(a.Text)) == string(q.FillBlank.Letter)
	case MatchPairs:
		if q.MatchPairs == nil {
			return false
		}
		tokens := strings.Fields(strings.ToLower(a.Text))
		if len(tokens) != len(q.MatchPairs.Pairs) {
			return false
		}
		for i, token := range tokens {
			if token != q.MatchPairs.Pairs[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Solution renders the correct answer the way a user would type it,
// or the full correct definition for MultipleChoice.
func (q *Question) Solution() string {
	switch {
	case q.Kind == MultipleChoice && q.MultipleChoice != nil:
		return q.MultipleChoice.Definitions[q.MultipleChoice.Correct]
	case q.Kind == FillBlank && q.FillBlank != nil:
		return string(q.FillBlank.Letter)
	case q.Kind == MatchPairs && q.MatchPairs != nil:
		return strings.Join(q.MatchPairs.Pairs, " ")
	default:
		return ""
	}
}

// Valid reports whether the payload matches the kind.
func (q *Question) Valid() bool {
	switch q.Kind {
	case MultipleChoice:
		return q.MultipleChoice != nil && q.FillBlank == nil && q.MatchPairs == nil
	case FillBlank:
		return q.FillBlank != nil && q.MultipleChoice == nil && q.MatchPairs == nil
	case MatchPairs:
		return q.MatchPairs != nil && q.MultipleChoice == nil && q.FillBlank == nil
	default:
		return false
	}
}

func isBlankCandidate(r rune) bool {
	return !unicode.IsSpace(r)
}
