package bot

import (
	"context"
	"strconv"

	"github.com/example/coursebot/internal/dialog"
	"go.uber.org/zap"
)

// validator checks an answer and returns its normalised value,
// or a non-empty problem text to re-prompt with
type validator func(in incoming) (answer, problem string)

// flow binds a dialogue flow to prompts, per-step validation and a completion handler
type flow struct {
	prompts    map[dialog.Step]string
	validators map[dialog.Step]validator
	complete   func(ctx context.Context, in incoming, st dialog.State)
}

func (b *Bot) dialogFlows() map[dialog.Flow]flow {
	return map[dialog.Flow]flow{
		dialog.FlowRegistration: {
			prompts: map[dialog.Step]string{
				dialog.StepFullName: "Введите ваше ФИО:",
				dialog.StepCity:     "Введите ваш город или страну:",
				dialog.StepAge:      "Введите ваш возраст:",
				dialog.StepPhone:    "Введите ваш номер телефона:",
				dialog.StepTelegram: "Введите ссылку на ваш Telegram:",
			},
			validators: map[dialog.Step]validator{
				dialog.StepAge: validateAge,
			},
			complete: b.completeRegistration,
		},
		dialog.FlowScheduleEdit: {
			prompts: map[dialog.Step]string{
				dialog.StepText:     "Введите новый текст расписания:",
				dialog.StepDays:     "Выберите дни недели (например: Пн, Ср, Пт):",
				dialog.StepTime:     "Введите время (формат: ЧЧ:ММ):",
				dialog.StepTimezone: "Введите часовой пояс (например: UTC+3):",
			},
			validators: map[dialog.Step]validator{
				dialog.StepDays:     b.validateDays,
				dialog.StepTime:     validateTime,
				dialog.StepTimezone: validateTimezone,
			},
			complete: b.completeScheduleEdit,
		},
		dialog.FlowBroadcast: {
			prompts: map[dialog.Step]string{
				dialog.StepMessage: "Введите текст рассылки:",
			},
			validators: map[dialog.Step]validator{
				dialog.StepMessage: validateBroadcast,
			},
			complete: b.completeBroadcast,
		},
		dialog.FlowSearch: {
			prompts: map[dialog.Step]string{
				dialog.StepQuery: "Введите имя или город пользователя для поиска:",
			},
			complete: b.completeSearch,
		},
	}
}

// startFlow begins f for the user and sends the first prompt
func (b *Bot) startFlow(f dialog.Flow) handlerFunc {
	return func(ctx context.Context, in incoming) {
		st, err := dialog.Begin(f, b.now())
		if err != nil {
			b.log.Error("failed to begin dialogue", zap.String("flow", string(f)), zap.Error(err))
			b.reply(ctx, in, internalErrText)
			return
		}
		if err := b.states.Set(ctx, in.UserID, st); err != nil {
			b.log.Error("failed to save dialogue state", zap.Int64("user_id", in.UserID), zap.Error(err))
			b.reply(ctx, in, internalErrText)
			return
		}
		b.reply(ctx, in, b.flows[f].prompts[st.Step])
	}
}

// continueDialog feeds the message to the user's current step
func (b *Bot) continueDialog(ctx context.Context, in incoming, st dialog.State) {
	log := b.log.With(zap.Int64("user_id", in.UserID), zap.String("flow", string(st.Flow)), zap.String("step", string(st.Step)))

	fl, ok := b.flows[st.Flow]
	if !ok {
		log.Warn("dropping state of unknown flow")
		_ = b.states.Reset(ctx, in.UserID)
		b.handleUnknown(ctx, in)
		return
	}

	validate := fl.validators[st.Step]
	if validate == nil {
		validate = requireText
	}
	answer, problem := validate(in)
	if problem != "" {
		b.reply(ctx, in, problem)
		return
	}

	next, done, err := st.Advance(answer, b.now())
	if err != nil {
		log.Error("invalid dialogue state", zap.Error(err))
		_ = b.states.Reset(ctx, in.UserID)
		b.reply(ctx, in, internalErrText)
		return
	}

	if done {
		if err := b.states.Reset(ctx, in.UserID); err != nil {
			log.Warn("failed to reset dialogue", zap.Error(err))
		}
		fl.complete(ctx, in, next)
		return
	}

	if err := b.states.Set(ctx, in.UserID, next); err != nil {
		log.Error("failed to save dialogue state", zap.Error(err))
		b.reply(ctx, in, internalErrText)
		return
	}
	b.reply(ctx, in, fl.prompts[next.Step])
}

func requireText(in incoming) (string, string) {
	if in.Text == "" {
		return "", textRequiredText
	}
	return in.Text, ""
}

func validateAge(in incoming) (string, string) {
	if in.Text == "" {
		return "", ageNotNumberText
	}
	for _, r := range in.Text {
		if r < '0' || r > '9' {
			return "", ageNotNumberText
		}
	}
	if _, err := strconv.Atoi(in.Text); err != nil {
		return "", ageNotNumberText
	}
	return in.Text, ""
}
