package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/example/vocabot/pkg/models"
)

// ErrInsufficientData is returned when the store cannot supply enough
// usable terms for the requested quiz kind.
var ErrInsufficientData = errors.New("insufficient data")

const (
	// Size is the number of terms used by MultipleChoice and MatchPairs
	Size = 4
	// DefaultOptionLength is the Telegram poll option label limit
	DefaultOptionLength = 100
)

// Sampler supplies random terms of a language
type Sampler interface {
	RandomTerms(ctx context.Context, n int, lang string) ([]models.Term, error)
}

// Rand is the source of randomness used by the generators.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

type globalRand struct{}

func (globalRand) Intn(n int) int                     { return rand.Intn(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// DefaultRand uses the package-level math/rand functions, which are safe
// for concurrent use.
var DefaultRand Rand = globalRand{}

// Generator produces questions from a Sampler
type Generator struct {
	sampler      Sampler
	rnd          Rand
	optionLength int
}

// NewGenerator creates a new generator. A non-positive optionLength
// falls back to DefaultOptionLength.
func NewGenerator(sampler Sampler, rnd Rand, optionLength int) *Generator {
	if rnd == nil {
		rnd = DefaultRand
	}
	if optionLength <= 0 {
		optionLength = DefaultOptionLength
	}
	return &Generator{sampler: sampler, rnd: rnd, optionLength: optionLength}
}

// Generate creates a question of the given kind
func (g *Generator) Generate(ctx context.Context, kind Kind, lang string) (*Question, error) {
	switch kind {
	case MultipleChoice:
		return NewMultipleChoice(ctx, g.sampler, lang, g.rnd, g.optionLength)
	case FillBlank:
		return NewFillBlank(ctx, g.sampler, lang, g.rnd)
	case MatchPairs:
		return NewMatchPairs(ctx, g.sampler, lang, g.rnd)
	default:
		return nil, fmt.Errorf("unknown quiz kind %s", kind)
	}
}

// NewMultipleChoice draws four terms and asks for the definition of one of them
func NewMultipleChoice(ctx context.Context, sampler Sampler, lang string, rnd Rand, optionLength int) (*Question, error) {
	terms, err := sample(ctx, sampler, Size, lang)
	if err != nil {
		return nil, err
	}

	correct := rnd.Intn(len(terms))
	options := make([]string, len(terms))
	definitions := make([]string, len(terms))
	for i, term := range terms {
		definitions[i] = term.Definition
		options[i] = truncate(term.Definition, optionLength)
	}

	word := terms[correct].Word
	return &Question{
		Kind:     MultipleChoice,
		Language: lang,
		Prompt:   word,
		MultipleChoice: &MultipleChoiceData{
			Word:        word,
			Options:     options,
			Definitions: definitions,
			Correct:     correct,
		},
	}, nil
}

// NewFillBlank draws one term and blanks out one of its letters
func NewFillBlank(ctx context.Context, sampler Sampler, lang string, rnd Rand) (*Question, error) {
	terms, err := sample(ctx, sampler, 1, lang)
	if err != nil {
		return nil, err
	}
	term := terms[0]

	letters := []rune(term.Word)
	if !strings.ContainsFunc(term.Word, isBlankCandidate) {
		return nil, fmt.Errorf("word %q has no letters: %w", term.Word, ErrInsufficientData)
	}

	// Re-sample until the position lands on a letter
	pos := rnd.Intn(len(letters))
	for !isBlankCandidate(letters[pos]) {
		pos = rnd.Intn(len(letters))
	}

	upper := []rune(strings.ToUpper(term.Word))
	if len(upper) != len(letters) {
		// Some runes change length when uppercased; keep the original runes
		upper = append([]rune(nil), letters...)
	}
	upper[pos] = '_'

	return &Question{
		Kind:     FillBlank,
		Language: lang,
		Prompt:   string(upper) + " - " + term.Definition,
		FillBlank: &FillBlankData{
			Word:       term.Word,
			Definition: term.Definition,
			Position:   pos,
			Letter:     unicode.ToLower(letters[pos]),
		},
	}, nil
}

// NewMatchPairs draws four terms and shuffles their definitions
func NewMatchPairs(ctx context.Context, sampler Sampler, lang string, rnd Rand) (*Question, error) {
	terms, err := sample(ctx, sampler, Size, lang)
	if err != nil {
		return nil, err
	}

	words := make([]string, len(terms))
	for i, term := range terms {
		words[i] = term.Word
	}

	// slot[i] is the shuffled position of the definition of words[i]
	slot := make([]int, len(terms))
	for i := range slot {
		slot[i] = i
	}
	rnd.Shuffle(len(slot), func(i, j int) {
		slot[i], slot[j] = slot[j], slot[i]
	})

	definitions := make([]string, len(terms))
	for i, term := range terms {
		definitions[slot[i]] = term.Definition
	}

	pairs := make([]string, len(terms))
	for i := range terms {
		pairs[i] = fmt.Sprintf("%d%c", i+1, 'a'+rune(slot[i]))
	}

	var prompt strings.Builder
	for i, word := range words {
		fmt.Fprintf(&prompt, "%d. %s\n", i+1, strings.ToUpper(word))
	}
	prompt.WriteString("\n")
	for i, definition := range definitions {
		if i > 0 {
			prompt.WriteString("\n")
		}
		fmt.Fprintf(&prompt, "%c. %s", 'a'+rune(i), definition)
	}

	return &Question{
		Kind:     MatchPairs,
		Language: lang,
		Prompt:   prompt.String(),
		MatchPairs: &MatchPairsData{
			Words:       words,
			Definitions: definitions,
			Pairs:       pairs,
		},
	}, nil
}

// sample returns exactly n terms or ErrInsufficientData
func sample(ctx context.Context, sampler Sampler, n int, lang string) ([]models.Term, error) {
	terms, err := sampler.RandomTerms(ctx, n, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to sample terms: %w", err)
	}
	if len(terms) < n {
		return nil, fmt.Errorf("need %d terms, got %d: %w", n, len(terms), ErrInsufficientData)
	}
	return terms[:n], nil
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
