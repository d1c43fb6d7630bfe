package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"thesis_bot/internal/metrics"
	"thesis_bot/internal/session"
	"thesis_bot/internal/telegram"
)

// Bot маршрутизирует входящие обновления между студенческим и
// административным сценариями: команды напрямую, текст по шагу сессии,
// нажатия кнопок по разобранному токену.
type Bot struct {
	student  *StudentFlow
	admin    *AdminFlow
	sessions session.Store
	sender   telegram.Sender
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewBot создает маршрутизатор обновлений.
func NewBot(
	student *StudentFlow,
	adminFlow *AdminFlow,
	sessions session.Store,
	sender telegram.Sender,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		student:  student,
		admin:    adminFlow,
		sessions: sessions,
		sender:   sender,
		metrics:  collector,
		logger:   logger,
	}
}

// HandleUpdate реализует telegram.UpdateHandler.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) error {
	b.metrics.IncUpdates()
	err := b.dispatch(ctx, upd)
	if err != nil {
		b.metrics.IncErrors()
	}
	return err
}

func (b *Bot) dispatch(ctx context.Context, upd telegram.Update) error {
	switch {
	case upd.Message != nil:
		return b.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		return b.handleCallback(ctx, upd.CallbackQuery)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.Text == "" {
		return nil
	}
	chatID := msg.Chat.ID

	switch command(msg.Text) {
	case "/start":
		return b.student.HandleStart(ctx, chatID)
	case "/admin":
		return b.admin.HandleCommand(ctx, chatID)
	}

	state, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		return err
	}
	if strings.HasPrefix(state.Step, "admin:") {
		return b.admin.HandleText(ctx, chatID, msg.Text)
	}
	return b.student.HandleText(ctx, chatID, msg.Text)
}

func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	act, err := ParseAction(cb.Data)
	if err != nil {
		if errors.Is(err, ErrUnknownAction) {
			b.logger.Warn("unknown callback action", slog.String("data", cb.Data))
			return b.sender.AnswerCallbackQuery(ctx, cb.ID, "Кнопка устарела.", true)
		}
		return err
	}

	switch {
	case act.Kind == KindNoop:
		return b.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
	case act.IsAdmin():
		return b.admin.HandleCallback(ctx, *cb, act)
	default:
		return b.student.HandleCallback(ctx, *cb, act)
	}
}

// command выделяет команду из текста сообщения, отбрасывая упоминание
// бота вида /start@botname.
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
