package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/coursebot/internal/broadcast"
	"github.com/example/coursebot/internal/dialog"
	"github.com/example/coursebot/internal/excel"
	"github.com/example/coursebot/internal/gateway"
	"github.com/example/coursebot/internal/reminder"
	"github.com/example/coursebot/internal/timezone"
	"github.com/example/coursebot/pkg/models"
	"go.uber.org/zap"
)

func (b *Bot) validateDays(in incoming) (string, string) {
	days, err := b.tokens.Parse(in.Text)
	if err != nil || len(days) == 0 {
		return "", invalidDaysText
	}
	return b.tokens.Format(days), ""
}

func validateTime(in incoming) (string, string) {
	if _, _, err := reminder.ParseTimeOfDay(in.Text); err != nil {
		return "", invalidTimeText
	}
	return in.Text, ""
}

func validateTimezone(in incoming) (string, string) {
	if _, err := timezone.Load(in.Text); err != nil {
		return "", invalidTimezoneText
	}
	return in.Text, ""
}

func (b *Bot) completeScheduleEdit(ctx context.Context, in incoming, st dialog.State) {
	saved, err := b.store.UpsertSchedule(ctx, models.Schedule{
		Text:     st.Answer(dialog.StepText),
		Days:     st.Answer(dialog.StepDays),
		Time:     st.Answer(dialog.StepTime),
		Timezone: st.Answer(dialog.StepTimezone),
	})
	if err != nil {
		b.log.Error("failed to save schedule", zap.Error(err))
		b.reply(ctx, in, internalErrText, gateway.WithKeyboard(adminKeyboard))
		return
	}

	b.log.Info("schedule updated",
		zap.String("days", saved.Days),
		zap.String("time", saved.Time),
		zap.String("timezone", saved.Timezone),
	)
	b.reply(ctx, in, scheduleSavedText, gateway.WithKeyboard(adminKeyboard))

	b.background(func() {
		recipients, err := b.store.ListRecipients(ctx)
		if err != nil {
			b.log.Error("failed to list recipients for schedule notice", zap.Error(err))
			return
		}
		b.broadcaster.Broadcast(ctx, broadcast.TextPayload(scheduleChangedText), recipients)
	})
}

// validateBroadcast accepts plain text or one media item
func validateBroadcast(in incoming) (string, string) {
	if in.Media == "" && in.Text == "" {
		return "", emptyBroadcastText
	}
	if in.Media != "" {
		return in.Caption, ""
	}
	return in.Text, ""
}

func (b *Bot) completeBroadcast(ctx context.Context, in incoming, _ dialog.State) {
	payload := broadcast.TextPayload(in.Text)
	if in.Media != "" {
		payload = broadcast.Payload{Media: in.Media, FileID: in.FileID, Caption: in.Caption}
	}

	recipients, err := b.store.ListRecipients(ctx)
	if err != nil {
		b.log.Error("failed to list recipients", zap.Error(err))
		b.reply(ctx, in, internalErrText, gateway.WithKeyboard(adminKeyboard))
		return
	}

	b.reply(ctx, in, broadcastStartText, gateway.WithKeyboard(adminKeyboard))
	b.background(func() {
		res := b.broadcaster.Broadcast(ctx, payload, recipients)
		for _, part := range res.Report(gateway.MaxTextLength) {
			b.reply(ctx, in, part)
		}
	})
}

func (b *Bot) completeSearch(ctx context.Context, in incoming, st dialog.State) {
	users, err := b.store.Search(ctx, st.Answer(dialog.StepQuery))
	if err != nil {
		b.log.Error("failed to search users", zap.Error(err))
		b.reply(ctx, in, internalErrText, gateway.WithKeyboard(adminKeyboard))
		return
	}
	if len(users) == 0 {
		b.reply(ctx, in, searchNoneText, gateway.WithKeyboard(adminKeyboard))
		return
	}

	var sb strings.Builder
	sb.WriteString(searchTitle)
	for _, u := range users {
		fmt.Fprintf(&sb, searchRowFmt, u.FullName, u.City, u.Age, u.Phone.String, u.Telegram.String)
	}
	b.reply(ctx, in, strings.TrimRight(sb.String(), "\n"), gateway.WithKeyboard(adminKeyboard))
}

func (b *Bot) handleExportStudents(ctx context.Context, in incoming) {
	users, err := b.store.GetAll(ctx)
	if err != nil {
		b.log.Error("failed to load students", zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}
	if len(users) == 0 {
		b.reply(ctx, in, noStudentsText)
		return
	}

	data, err := excel.ExportStudents(users)
	if err != nil {
		b.log.Error("failed to build students workbook", zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}
	if err := b.gw.SendDocument(ctx, in.ChatID, data, excel.StudentsFilename); err != nil {
		b.log.Warn("failed to send students workbook", zap.Error(err))
	}
}

func (b *Bot) handleAddTestUsers(ctx context.Context, in incoming) {
	n, err := b.store.SeedTestUsers(ctx)
	if err != nil {
		b.log.Error("failed to seed test users", zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}
	b.reply(ctx, in, fmt.Sprintf(testUsersFmt, n))
}

func (b *Bot) handleClearDB(ctx context.Context, in incoming) {
	if err := b.store.Wipe(ctx); err != nil {
		b.log.Error("failed to wipe database", zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}
	b.log.Warn("database wiped by admin", zap.Int64("user_id", in.UserID))
	b.reply(ctx, in, databaseWipeText)
}
