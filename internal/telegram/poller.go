package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// UpdateHandler обрабатывает одно входящее обновление.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update Update) error
}

// Poller получает обновления длинным опросом и передает их обработчику.
type Poller struct {
	client      *Client
	handler     UpdateHandler
	logger      *slog.Logger
	timeout     time.Duration
	interval    time.Duration
	limit       int
	dropPending bool
	dropWebhook bool
}

// NewPoller создает цикл длинного опроса getUpdates.
func NewPoller(client *Client, handler UpdateHandler, logger *slog.Logger, timeout, interval time.Duration, limit int, dropPending, dropWebhook bool) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:      client,
		handler:     handler,
		logger:      logger,
		timeout:     timeout,
		interval:    interval,
		limit:       limit,
		dropPending: dropPending,
		dropWebhook: dropWebhook,
	}
}

// Run блокирует выполнение до отмены контекста.
func (p *Poller) Run(ctx context.Context) {
	if p.dropWebhook {
		deleteCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := p.client.DeleteWebhook(deleteCtx, p.dropPending); err != nil {
			p.logger.Warn("delete webhook failed", slog.String("error", err.Error()))
		}
		cancel()
	}

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.timeout, p.limit)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			p.logger.Error("get updates failed", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.interval):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if err := p.handler.HandleUpdate(ctx, update); err != nil {
				p.logger.Error("handle update failed",
					slog.Int64("update_id", update.UpdateID),
					slog.String("error", err.Error()))
			}
		}

		if len(updates) == 0 && p.interval > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.interval):
			}
		}
	}
}
