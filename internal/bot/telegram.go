package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrDocumentTooLarge is returned for uploads above the configured limit
var ErrDocumentTooLarge = errors.New("document too large")

// telegramChannel sends prompts through the Bot API. Private chats share
// the user's id, so the user id is the chat id.
type telegramChannel struct {
	api *tgbotapi.BotAPI
}

// NewTelegramChannel creates a Channel backed by the Bot API
func NewTelegramChannel(api *tgbotapi.BotAPI) Channel {
	return &telegramChannel{api: api}
}

func (c *telegramChannel) SendText(ctx context.Context, userID int64, text string, keyboard *Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(userID, text)
	if markup := replyMarkup(keyboard); markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to user %d: %w", userID, err)
	}
	return nil
}

func (c *telegramChannel) SendPoll(ctx context.Context, userID int64, question string, options []string, correct int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	poll := tgbotapi.NewPoll(userID, question, options...)
	poll.Type = "quiz"
	poll.CorrectOptionID = int64(correct)
	poll.IsAnonymous = false
	poll.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)

	msg, err := c.api.Send(poll)
	if err != nil {
		return "", fmt.Errorf("failed to send poll to user %d: %w", userID, err)
	}
	if msg.Poll == nil {
		return "", fmt.Errorf("failed to send poll to user %d: no poll in response", userID)
	}
	return msg.Poll.ID, nil
}

// replyMarkup builds a one-button-per-row reply keyboard
func replyMarkup(keyboard *Keyboard) interface{} {
	if keyboard == nil {
		return nil
	}
	if keyboard.Remove || len(keyboard.Buttons) == 0 {
		return tgbotapi.NewRemoveKeyboard(true)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(keyboard.Buttons))
	for _, label := range keyboard.Buttons {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// eventFromUpdate converts a Telegram update into an Event. Updates the
// bot does not act on are reported as not ok.
func eventFromUpdate(update tgbotapi.Update) (Event, bool) {
	if pa := update.PollAnswer; pa != nil {
		// An empty selection is a retracted vote
		if len(pa.OptionIDs) == 0 {
			return Event{}, false
		}
		return PollAnswerEvent(pa.User.ID, pa.PollID, pa.OptionIDs[0]), true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return Event{}, false
	}
	userID := msg.From.ID

	switch {
	case msg.Document != nil:
		return DocumentEvent(userID, Document{
			FileID:   msg.Document.FileID,
			FileName: msg.Document.FileName,
			MimeType: msg.Document.MimeType,
			Size:     msg.Document.FileSize,
		}), true
	case msg.IsCommand():
		return CommandEvent(userID, msg.Command(), msg.CommandArguments()), true
	case msg.Text != "":
		return TextMessage(userID, msg.Text), true
	default:
		return Event{}, false
	}
}

// downloader fetches uploaded documents
type downloader struct {
	api      *tgbotapi.BotAPI
	client   *http.Client
	maxBytes int64
}

func (d *downloader) download(ctx context.Context, doc *Document) ([]byte, error) {
	if d.maxBytes > 0 && int64(doc.Size) > d.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, doc.Size)
	}

	url, err := d.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return readLimited(resp.Body, d.maxBytes)
}

// readLimited reads r fully, failing once more than max bytes arrive.
// A non-positive max means no limit.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: over %d bytes", ErrDocumentTooLarge, max)
	}
	return data, nil
}
