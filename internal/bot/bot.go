package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/example/coursebot/internal/broadcast"
	"github.com/example/coursebot/internal/dialog"
	"github.com/example/coursebot/internal/gateway"
	"github.com/example/coursebot/internal/reminder"
	"github.com/example/coursebot/internal/timezone"
	"github.com/example/coursebot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Store represents the data access the bot needs
type Store interface {
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetUserTimezone(ctx context.Context, userID int64, tz string) error
	GetAll(ctx context.Context) ([]models.User, error)
	Search(ctx context.Context, q string) ([]models.User, error)
	ListRecipients(ctx context.Context) ([]models.Recipient, error)
	SeedTestUsers(ctx context.Context) (int, error)
	GetActiveSchedule(ctx context.Context) (*models.Schedule, error)
	UpsertSchedule(ctx context.Context, s models.Schedule) (*models.Schedule, error)
	Wipe(ctx context.Context) error
}

// Broadcaster fans a payload out to recipients
type Broadcaster interface {
	Broadcast(ctx context.Context, p broadcast.Payload, recipients []models.Recipient) broadcast.Result
}

// Config is the bot's share of the application config
type Config struct {
	AdminID          int64
	SupportUsername  string
	FAQPath          string
	FallbackTimezone string
}

// Bot represents the Telegram bot application
type Bot struct {
	gw          gateway.Gateway
	store       Store
	states      dialog.Store
	resolver    timezone.Resolver
	broadcaster Broadcaster
	tokens      reminder.TokenTable
	cfg         Config
	log         *zap.Logger
	now         func() time.Time
	flows       map[dialog.Flow]flow

	// background fan-outs started from handlers
	wg sync.WaitGroup
}

// New creates a bot wired to its dependencies
func New(gw gateway.Gateway, store Store, states dialog.Store, resolver timezone.Resolver,
	broadcaster Broadcaster, tokens reminder.TokenTable, cfg Config, log *zap.Logger) *Bot {
	b := &Bot{
		gw:          gw,
		store:       store,
		states:      states,
		resolver:    resolver,
		broadcaster: broadcaster,
		tokens:      tokens,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
	b.flows = b.dialogFlows()
	return b
}

// Poll handles updates one at a time until ctx is cancelled or the channel closes,
// so each user's dialogue steps are processed in order.
func (b *Bot) Poll(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// Wait blocks until background broadcasts have finished
func (b *Bot) Wait() {
	b.wg.Wait()
}

// incoming is the part of a Telegram message the handlers look at
type incoming struct {
	UserID   int64
	ChatID   int64
	Text     string
	Caption  string
	Location *tgbotapi.Location
	Media    gateway.MediaKind
	FileID   string
}

func parseMessage(m *tgbotapi.Message) incoming {
	in := incoming{
		ChatID:   m.Chat.ID,
		Text:     strings.TrimSpace(m.Text),
		Caption:  m.Caption,
		Location: m.Location,
	}
	if m.From != nil {
		in.UserID = m.From.ID
	} else {
		in.UserID = m.Chat.ID
	}

	switch {
	case len(m.Photo) > 0:
		in.Media, in.FileID = gateway.MediaPhoto, m.Photo[len(m.Photo)-1].FileID
	case m.Video != nil:
		in.Media, in.FileID = gateway.MediaVideo, m.Video.FileID
	case m.Animation != nil:
		// animations also carry a Document
		in.Media, in.FileID = gateway.MediaAnimation, m.Animation.FileID
	case m.Document != nil:
		in.Media, in.FileID = gateway.MediaDocument, m.Document.FileID
	case m.Audio != nil:
		in.Media, in.FileID = gateway.MediaAudio, m.Audio.FileID
	case m.Voice != nil:
		in.Media, in.FileID = gateway.MediaVoice, m.Voice.FileID
	}
	return in
}

// command returns the bot command in text without a @botname suffix
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return cmd
}

func (b *Bot) isAdmin(userID int64) bool {
	return userID == b.cfg.AdminID
}

// HandleUpdate routes a single update. Menu commands always win over an
// open dialogue and reset it; anything else continues the current dialogue.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil || upd.Message.Chat == nil {
		return
	}
	in := parseMessage(upd.Message)
	log := b.log.With(zap.Int64("user_id", in.UserID))

	if in.Location != nil {
		b.handleLocation(ctx, in)
		return
	}

	if h := b.commandHandler(in); h != nil {
		if err := b.states.Reset(ctx, in.UserID); err != nil {
			log.Warn("failed to reset dialogue", zap.Error(err))
		}
		h(ctx, in)
		return
	}

	st, ok, err := b.states.Get(ctx, in.UserID)
	if err != nil {
		log.Error("failed to load dialogue state", zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}
	if ok {
		b.continueDialog(ctx, in, st)
		return
	}

	b.handleUnknown(ctx, in)
}

type handlerFunc func(ctx context.Context, in incoming)

func (b *Bot) commandHandler(in incoming) handlerFunc {
	switch command(in.Text) {
	case cmdStart:
		return b.handleStart
	case cmdCancel:
		return b.handleCancel
	case cmdAddTestUsers:
		return b.adminOnly(in, b.handleAddTestUsers)
	case cmdClearDB:
		return b.adminOnly(in, b.handleClearDB)
	}

	switch in.Text {
	case btnCourseInfo:
		return b.handleCourseInfo
	case btnSupport:
		return b.handleSupport
	case btnSkipGeo:
		return b.handleSkipLocation
	case btnEditSchedule:
		return b.adminOnly(in, b.startFlow(dialog.FlowScheduleEdit))
	case btnBroadcast:
		return b.adminOnly(in, b.startFlow(dialog.FlowBroadcast))
	case btnSearch:
		return b.adminOnly(in, b.startFlow(dialog.FlowSearch))
	case btnStudents:
		return b.adminOnly(in, b.handleExportStudents)
	}
	return nil
}

// adminOnly silently ignores admin commands from everyone else
func (b *Bot) adminOnly(in incoming, h handlerFunc) handlerFunc {
	if !b.isAdmin(in.UserID) {
		return func(context.Context, incoming) {
			b.log.Info("ignored admin command", zap.Int64("user_id", in.UserID), zap.String("text", in.Text))
		}
	}
	return h
}

func (b *Bot) reply(ctx context.Context, in incoming, text string, opts ...gateway.Option) {
	b.send(ctx, in.ChatID, text, opts...)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, opts ...gateway.Option) {
	if err := b.gw.SendText(ctx, chatID, text, opts...); err != nil {
		b.log.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// menuKeyboard returns the main keyboard for the user
func (b *Bot) menuKeyboard(userID int64) gateway.Option {
	if b.isAdmin(userID) {
		return gateway.WithKeyboard(adminKeyboard)
	}
	return gateway.WithKeyboard(afterRegistrationKeyboard)
}

// background runs fn detached from the update loop
func (b *Bot) background(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
}
