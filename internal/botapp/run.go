package botapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"thesis_bot/internal/config"
	"thesis_bot/internal/flow"
	"thesis_bot/internal/logging"
	"thesis_bot/internal/metrics"
	"thesis_bot/internal/notify"
	"thesis_bot/internal/observability"
	"thesis_bot/internal/session"
	"thesis_bot/internal/sheets"
	mongostore "thesis_bot/internal/store/mongo"
	"thesis_bot/internal/telegram"
)

// Run собирает и запускает бота: хранилища, транспорт, сценарии и HTTP
// сервер. Блокирует выполнение до отмены контекста.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, closeDB, err := mongostore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer closeDB()

	subs := mongostore.NewSubmissionRepository(db, cfg.SubmissionsCollection)
	admins := mongostore.NewAdminRepository(db, cfg.AdminsCollection)

	sessions, closeSessions, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	mirror, err := newMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: cfg.TelegramPollingTimeout + cfg.TelegramTimeout}
	client := telegram.NewClient(cfg.BotToken, httpClient)

	collector := metrics.NewCollector()
	relay := notify.NewRelay(admins, client, logger)
	student := flow.NewStudentFlow(subs, sessions, client, relay, mirror, logger)
	adminFlow := flow.NewAdminFlow(admins, subs, sessions, client, relay, mirror, logger)
	bot := flow.NewBot(student, adminFlow, sessions, client, collector, logger)

	mux := http.NewServeMux()
	mux.Handle("/telegram/webhook", telegram.NewWebhookHandler(bot, cfg.WebhookSecret, logger))
	mux.Handle("/metrics", metrics.NewHandler(collector))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.TelegramPollingEnabled {
		poller := telegram.NewPoller(
			client, bot, logger,
			cfg.TelegramPollingTimeout,
			cfg.TelegramPollingInterval,
			cfg.TelegramPollingLimit,
			cfg.TelegramPollingDropPending,
			cfg.TelegramPollingDropWebhook,
		)
		go func() {
			logger.Info("long polling started")
			poller.Run(ctx)
		}()
	} else if cfg.TelegramWebhookURL != "" {
		setCtx, cancel := context.WithTimeout(ctx, cfg.TelegramTimeout)
		err := client.SetWebhook(setCtx, cfg.TelegramWebhookURL, cfg.WebhookSecret, cfg.TelegramWebhookDropPending)
		cancel()
		if err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		logger.Info("webhook registered", slog.String("url", cfg.TelegramWebhookURL))
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// newSessionStore выбирает хранилище сессий: Redis при заданном
// REDIS_URL, иначе память процесса.
func newSessionStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("session store: memory")
		return session.NewMemoryStore(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("session store: redis")
	return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
}

// newMirror подключает Google Sheets, если задан GOOGLE_SHEET_ID, иначе
// возвращает заглушку.
func newMirror(ctx context.Context, cfg config.Config, logger *slog.Logger) (sheets.Mirror, error) {
	if cfg.SheetID == "" {
		logger.Info("sheet mirror disabled")
		return sheets.Disabled{}, nil
	}
	mirror, err := sheets.NewGoogleMirror(ctx, cfg.SheetID, cfg.SheetTab, cfg.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("init sheet mirror: %w", err)
	}
	logger.Info("sheet mirror enabled", slog.String("tab", cfg.SheetTab))
	return mirror, nil
}

// withRequestID снабжает каждый HTTP запрос идентификатором для логов.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := observability.NewRequestID()
		ctx := observability.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
