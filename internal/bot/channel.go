package bot

import (
	"context"
	"errors"

	"github.com/example/vocabot/pkg/models"
)

var (
	// ErrInvalidLanguage is returned for a language outside the configured set
	ErrInvalidLanguage = errors.New("invalid language")
	// ErrStoreUnavailable wraps every Term Store failure
	ErrStoreUnavailable = errors.New("term store unavailable")
)

// Keyboard changes the reply keyboard shown with a message.
// A nil *Keyboard leaves the current keyboard as is.
type Keyboard struct {
	Buttons []string
	Remove  bool
}

// Buttons returns a keyboard with one button per row
func Buttons(labels ...string) *Keyboard {
	if len(labels) == 0 {
		return RemoveKeyboard()
	}
	return &Keyboard{Buttons: labels}
}

// RemoveKeyboard returns a keyboard that hides the current one
func RemoveKeyboard() *Keyboard {
	return &Keyboard{Remove: true}
}

// Channel sends prompts to a user
type Channel interface {
	SendText(ctx context.Context, userID int64, text string, keyboard *Keyboard) error
	// SendPoll sends a quiz poll and returns the id its answers will carry.
	SendPoll(ctx context.Context, userID int64, question string, options []string, correct int) (string, error)
}

// TermStore is the dictionary the machine reads and writes
type TermStore interface {
	RandomTerms(ctx context.Context, n int, lang string) ([]models.Term, error)
	RecentTerms(ctx context.Context, n int, lang string) ([]models.Term, error)
	DefinitionsByPrefix(ctx context.Context, word, lang string) ([]string, error)
	Insert(ctx context.Context, word, definition, lang string) error
	Delete(ctx context.Context, word, lang string) error
}
