// Package gateway is the outbound side of the messenger: text, files and media
// addressed to a chat ID.
package gateway

import (
	"context"
	"errors"
)

// MaxTextLength is the longest message Telegram accepts, in UTF-16 code units
const MaxTextLength = 4096

// TextLength measures s the way Telegram does
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// MediaKind is the type of a media attachment
type MediaKind string

const (
	MediaPhoto     MediaKind = "photo"
	MediaVideo     MediaKind = "video"
	MediaDocument  MediaKind = "document"
	MediaAudio     MediaKind = "audio"
	MediaVoice     MediaKind = "voice"
	MediaAnimation MediaKind = "animation"
)

// ErrUnsupportedMedia is returned for a media kind the messenger cannot send
var ErrUnsupportedMedia = errors.New("unsupported media kind")

// Button represents a reply keyboard button
type Button struct {
	Text            string
	RequestLocation bool
}

// Keyboard is a reply keyboard, one slice per row
type Keyboard [][]Button

// Gateway sends messages to users
type Gateway interface {
	SendText(ctx context.Context, chatID int64, text string, opts ...Option) error
	SendDocument(ctx context.Context, chatID int64, data []byte, filename string) error
	SendMedia(ctx context.Context, chatID int64, kind MediaKind, fileID, caption string) error
}

// MessageOptions are the extras a text message can carry
type MessageOptions struct {
	Keyboard       Keyboard
	RemoveKeyboard bool
	Markdown       bool
}

// Option configures a text message
type Option func(*MessageOptions)

// WithKeyboard attaches a reply keyboard
func WithKeyboard(k Keyboard) Option {
	return func(o *MessageOptions) { o.Keyboard = k }
}

// WithoutKeyboard hides the current reply keyboard
func WithoutKeyboard() Option {
	return func(o *MessageOptions) { o.RemoveKeyboard = true }
}

// WithMarkdown renders the text as Telegram Markdown
func WithMarkdown() Option {
	return func(o *MessageOptions) { o.Markdown = true }
}

// ApplyOptions folds opts into a MessageOptions value
func ApplyOptions(opts ...Option) MessageOptions {
	var o MessageOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
