package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/example/coursebot/internal/database"
	"github.com/example/coursebot/internal/dialog"
	"github.com/example/coursebot/internal/gateway"
	"github.com/example/coursebot/pkg/models"
	"go.uber.org/zap"
)

func (b *Bot) handleStart(ctx context.Context, in incoming) {
	if b.isAdmin(in.UserID) {
		b.reply(ctx, in, adminWelcomeText, gateway.WithKeyboard(adminKeyboard))
		return
	}

	user, err := b.store.GetByID(ctx, in.UserID)
	if err != nil {
		b.log.Error("failed to check registration", zap.Int64("user_id", in.UserID), zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}
	if user != nil {
		b.reply(ctx, in, alreadyRegisteredText, gateway.WithKeyboard(afterRegistrationKeyboard))
		return
	}

	b.reply(ctx, in, greetingText, gateway.WithoutKeyboard())
	b.startFlow(dialog.FlowRegistration)(ctx, in)
}

func (b *Bot) completeRegistration(ctx context.Context, in incoming, st dialog.State) {
	age, _ := strconv.Atoi(st.Answer(dialog.StepAge))
	user := &models.User{
		UserID:   in.UserID,
		FullName: st.Answer(dialog.StepFullName),
		City:     st.Answer(dialog.StepCity),
		Age:      age,
		Phone:    optional(st.Answer(dialog.StepPhone)),
		Telegram: optional(st.Answer(dialog.StepTelegram)),
	}
	if err := b.store.Create(ctx, user); err != nil {
		b.log.Error("failed to save registration", zap.Int64("user_id", in.UserID), zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}

	b.log.Info("user registered", zap.Int64("user_id", in.UserID))
	b.reply(ctx, in, registeredText, gateway.WithKeyboard(geoKeyboard))
}

func (b *Bot) handleCancel(ctx context.Context, in incoming) {
	b.reply(ctx, in, cancelledText, b.menuKeyboard(in.UserID))
}

// handleLocation stores the zone of the shared location, or keeps the fallback when none is found
func (b *Bot) handleLocation(ctx context.Context, in incoming) {
	log := b.log.With(zap.Int64("user_id", in.UserID))

	tz, ok := b.resolver.Resolve(in.Location.Latitude, in.Location.Longitude)
	if !ok {
		log.Info("no timezone for location, using fallback",
			zap.Float64("lat", in.Location.Latitude),
			zap.Float64("lng", in.Location.Longitude),
		)
		b.reply(ctx, in, fmt.Sprintf(timezoneFallbackFmt, b.cfg.FallbackTimezone), gateway.WithKeyboard(afterRegistrationKeyboard))
		return
	}

	err := b.store.SetUserTimezone(ctx, in.UserID, tz)
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		b.reply(ctx, in, notRegisteredText)
		return
	case err != nil:
		log.Error("failed to save timezone", zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}

	log.Info("timezone set", zap.String("timezone", tz))
	b.reply(ctx, in, fmt.Sprintf(timezoneSetFmt, tz), gateway.WithKeyboard(afterRegistrationKeyboard))
}

func (b *Bot) handleSkipLocation(ctx context.Context, in incoming) {
	b.reply(ctx, in, fmt.Sprintf(geoSkippedFmt, b.cfg.FallbackTimezone), gateway.WithKeyboard(afterRegistrationKeyboard))
}

func (b *Bot) handleCourseInfo(ctx context.Context, in incoming) {
	schedule, err := b.store.GetActiveSchedule(ctx)
	if err != nil {
		b.log.Error("failed to load schedule", zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}
	if schedule == nil {
		b.reply(ctx, in, noScheduleText)
		return
	}

	b.reply(ctx, in, fmt.Sprintf(scheduleInfoFmt, schedule.Text, schedule.Days, schedule.Time, schedule.Timezone))

	if faq := b.readFAQ(); faq != "" {
		b.reply(ctx, in, faq)
	}
}

// readFAQ returns the FAQ file contents, or "" when unset or unreadable
func (b *Bot) readFAQ() string {
	if b.cfg.FAQPath == "" {
		return ""
	}
	data, err := os.ReadFile(b.cfg.FAQPath)
	if err != nil {
		b.log.Warn("failed to read FAQ", zap.String("path", b.cfg.FAQPath), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (b *Bot) handleSupport(ctx context.Context, in incoming) {
	if b.cfg.SupportUsername == "" {
		b.reply(ctx, in, noSupportText)
		return
	}
	username := strings.TrimPrefix(b.cfg.SupportUsername, "@")
	b.reply(ctx, in, fmt.Sprintf(supportFmt, username), gateway.WithMarkdown())
}

func (b *Bot) handleUnknown(ctx context.Context, in incoming) {
	if b.isAdmin(in.UserID) {
		b.reply(ctx, in, unknownText, gateway.WithKeyboard(adminKeyboard))
		return
	}

	user, err := b.store.GetByID(ctx, in.UserID)
	if err != nil {
		b.log.Error("failed to check registration", zap.Int64("user_id", in.UserID), zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}
	if user == nil {
		b.reply(ctx, in, notRegisteredText)
		return
	}
	b.reply(ctx, in, unknownText, gateway.WithKeyboard(afterRegistrationKeyboard))
}

func optional(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
