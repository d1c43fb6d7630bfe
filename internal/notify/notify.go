package notify

import (
	"context"
	"log/slog"

	"thesis_bot/internal/domain/admin"
	"thesis_bot/internal/telegram"
)

// BestEffort выполняет вызов, чья неудача не должна прерывать основную
// операцию: ошибка логируется и проглатывается. Единственное место в
// коде, где ошибки игнорируются.
func BestEffort(logger *slog.Logger, op string, fn func() error) {
	if err := fn(); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("best-effort call failed", slog.String("op", op), slog.String("error", err.Error()))
	}
}

// Relay рассылает уведомления администраторам и студентам. Доставка
// каждому получателю независима: отказ одного не прерывает остальных.
type Relay struct {
	admins admin.Repository
	sender telegram.Sender
	logger *slog.Logger
}

// NewRelay создает ретранслятор уведомлений.
func NewRelay(admins admin.Repository, sender telegram.Sender, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{admins: admins, sender: sender, logger: logger}
}

// NotifyAdmins отправляет текст всем администраторам, по одной попытке
// на получателя.
func (r *Relay) NotifyAdmins(ctx context.Context, text string) {
	BestEffort(r.logger, "notify admins", func() error {
		ids, err := r.admins.ListChatIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			chatID := id
			BestEffort(r.logger, "notify admin", func() error {
				return r.sender.SendMessage(ctx, chatID, text, nil)
			})
		}
		return nil
	})
}

// NotifyStudent отправляет студенту уведомление, markup может быть nil.
func (r *Relay) NotifyStudent(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	BestEffort(r.logger, "notify student", func() error {
		return r.sender.SendMessage(ctx, chatID, text, markup)
	})
}
