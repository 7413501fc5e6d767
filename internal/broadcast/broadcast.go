// Package broadcast fans a single admin message out to every registered user.
package broadcast

import (
	"context"
	"strings"
	"time"

	"github.com/example/coursebot/internal/gateway"
	"github.com/example/coursebot/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDelay is the pause between two sends
const DefaultDelay = 100 * time.Millisecond

// Sender delivers text and media
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, opts ...gateway.Option) error
	SendMedia(ctx context.Context, chatID int64, kind gateway.MediaKind, fileID, caption string) error
}

// Payload is either plain text or one media item with a caption
type Payload struct {
	Text    string
	Media   gateway.MediaKind
	FileID  string
	Caption string
}

// TextPayload builds a text-only payload
func TextPayload(text string) Payload {
	return Payload{Text: text}
}

// IsMedia reports whether the payload carries an attachment
func (p Payload) IsMedia() bool {
	return p.Media != "" && p.FileID != ""
}

// Result is the per-recipient outcome of a broadcast
type Result struct {
	RunID  string
	Sent   []models.Recipient
	Failed []models.Recipient
}

// Dispatcher sends payloads sequentially with a fixed delay
type Dispatcher struct {
	sender Sender
	delay  time.Duration
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(sender Sender, delay time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, delay: delay, logger: logger}
}

// Broadcast sends p to every recipient. A failure for one recipient never stops the others.
// When ctx is cancelled the remaining recipients are left out of both lists.
func (d *Dispatcher) Broadcast(ctx context.Context, p Payload, recipients []models.Recipient) Result {
	res := Result{RunID: uuid.NewString()}
	log := d.logger.With(zap.String("run_id", res.RunID))
	log.Info("broadcast started", zap.Int("recipients", len(recipients)), zap.Bool("media", p.IsMedia()))

	for i, r := range recipients {
		if ctx.Err() != nil {
			log.Warn("broadcast interrupted", zap.Int("remaining", len(recipients)-i))
			break
		}

		if err := d.send(ctx, r.UserID, p); err != nil {
			log.Warn("broadcast delivery failed", zap.Int64("user_id", r.UserID), zap.Error(err))
			res.Failed = append(res.Failed, r)
			continue
		}
		res.Sent = append(res.Sent, r)

		if i < len(recipients)-1 && d.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(d.delay):
			}
		}
	}

	log.Info("broadcast finished", zap.Int("sent", len(res.Sent)), zap.Int("failed", len(res.Failed)))
	return res
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, p Payload) error {
	if p.IsMedia() {
		return d.sender.SendMedia(ctx, chatID, p.Media, p.FileID, p.Caption)
	}
	return d.sender.SendText(ctx, chatID, p.Text)
}

// Report formats the result for the admin, split into messages of at most limit
// characters. Lines are never broken across messages.
func (r Result) Report(limit int) []string {
	lines := []string{"📢 Рассылка завершена!"}
	if len(r.Sent) > 0 {
		lines = append(lines, "✅ Сообщение получили:")
		lines = appendNames(lines, r.Sent)
	}
	if len(r.Failed) > 0 {
		lines = append(lines, "❌ Не удалось отправить:")
		lines = appendNames(lines, r.Failed)
	}
	if len(r.Sent) == 0 && len(r.Failed) == 0 {
		lines = append(lines, "Получателей нет.")
	}
	return split(lines, limit)
}

func appendNames(lines []string, recipients []models.Recipient) []string {
	for _, r := range recipients {
		lines = append(lines, r.FullName)
	}
	return lines
}

func split(lines []string, limit int) []string {
	var (
		parts []string
		b     strings.Builder
		size  int
	)
	for _, line := range lines {
		n := gateway.TextLength(line)
		if size > 0 && size+1+n > limit {
			parts = append(parts, b.String())
			b.Reset()
			size = 0
		}
		if size > 0 {
			b.WriteByte('\n')
			size++
		}
		b.WriteString(line)
		size += n
	}
	if size > 0 {
		parts = append(parts, b.String())
	}
	return parts
}
