package gateway

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram implements Gateway on top of the Bot API client
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram wraps an authorised Bot API client
func NewTelegram(api *tgbotapi.BotAPI) *Telegram {
	return &Telegram{api: api}
}

// SendText sends a text message, optionally with a reply keyboard
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string, opts ...Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.send(TextMessage(chatID, text, ApplyOptions(opts...)))
}

// SendDocument uploads data as a file named filename
func (t *Telegram) SendDocument(ctx context.Context, chatID int64, data []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	return t.send(doc)
}

// SendMedia re-sends an already uploaded file by its file ID
func (t *Telegram) SendMedia(ctx context.Context, chatID int64, kind MediaKind, fileID, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := MediaMessage(chatID, kind, fileID, caption)
	if err != nil {
		return err
	}
	return t.send(msg)
}

func (t *Telegram) send(c tgbotapi.Chattable) error {
	if _, err := t.api.Send(c); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

// TextMessage builds the Bot API request for a text message
func TextMessage(chatID int64, text string, o MessageOptions) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	if o.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	switch {
	case len(o.Keyboard) > 0:
		msg.ReplyMarkup = replyKeyboard(o.Keyboard)
	case o.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	return msg
}

// MediaMessage builds the Bot API request for a media item
func MediaMessage(chatID int64, kind MediaKind, fileID, caption string) (tgbotapi.Chattable, error) {
	file := tgbotapi.FileID(fileID)
	switch kind {
	case MediaPhoto:
		m := tgbotapi.NewPhoto(chatID, file)
		m.Caption = caption
		return m, nil
	case MediaVideo:
		m := tgbotapi.NewVideo(chatID, file)
		m.Caption = caption
		return m, nil
	case MediaDocument:
		m := tgbotapi.NewDocument(chatID, file)
		m.Caption = caption
		return m, nil
	case MediaAudio:
		m := tgbotapi.NewAudio(chatID, file)
		m.Caption = caption
		return m, nil
	case MediaVoice:
		m := tgbotapi.NewVoice(chatID, file)
		m.Caption = caption
		return m, nil
	case MediaAnimation:
		m := tgbotapi.NewAnimation(chatID, file)
		m.Caption = caption
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMedia, kind)
	}
}

// replyKeyboard creates a keyboard from buttons
func replyKeyboard(k Keyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(k))
	for _, row := range k {
		var keyboardRow []tgbotapi.KeyboardButton
		for _, b := range row {
			if b.RequestLocation {
				keyboardRow = append(keyboardRow, tgbotapi.NewKeyboardButtonLocation(b.Text))
			} else {
				keyboardRow = append(keyboardRow, tgbotapi.NewKeyboardButton(b.Text))
			}
		}
		rows = append(rows, keyboardRow)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}
