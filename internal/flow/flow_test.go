package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"thesis_bot/internal/domain/submission"
	"thesis_bot/internal/metrics"
	"thesis_bot/internal/notify"
	"thesis_bot/internal/session"
	"thesis_bot/internal/store/memory"
	"thesis_bot/internal/telegram"
)

type sentMsg struct {
	chatID int64
	text   string
	markup *telegram.InlineKeyboardMarkup
}

type fakeSender struct {
	sent      []sentMsg
	edited    []sentMsg
	answers   []string
	alerts    []string
	failChats map[int64]bool
}

func (s *fakeSender) SendMessage(_ context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) error {
	if s.failChats[chatID] {
		return errors.New("chat blocked")
	}
	s.sent = append(s.sent, sentMsg{chatID: chatID, text: text, markup: markup})
	return nil
}

func (s *fakeSender) EditMessageText(_ context.Context, chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error {
	if s.failChats[chatID] {
		return errors.New("chat blocked")
	}
	s.edited = append(s.edited, sentMsg{chatID: chatID, text: text, markup: markup})
	return nil
}

func (s *fakeSender) AnswerCallbackQuery(_ context.Context, _ string, text string, showAlert bool) error {
	s.answers = append(s.answers, text)
	if showAlert {
		s.alerts = append(s.alerts, text)
	}
	return nil
}

func (s *fakeSender) lastSent() sentMsg {
	if len(s.sent) == 0 {
		return sentMsg{}
	}
	return s.sent[len(s.sent)-1]
}

func (s *fakeSender) lastEdited() sentMsg {
	if len(s.edited) == 0 {
		return sentMsg{}
	}
	return s.edited[len(s.edited)-1]
}

func (s *fakeSender) countTo(chatID int64, substr string) int {
	n := 0
	for _, m := range s.sent {
		if m.chatID == chatID && strings.Contains(m.text, substr) {
			n++
		}
	}
	return n
}

type fakeMirror struct {
	appends int
	updates int
	fail    bool
}

func (m *fakeMirror) AppendSubmission(context.Context, *submission.Submission) error {
	m.appends++
	if m.fail {
		return errors.New("sheet down")
	}
	return nil
}

func (m *fakeMirror) UpdateStatusAndComment(context.Context, string, *submission.Status, *string) error {
	m.updates++
	if m.fail {
		return errors.New("sheet down")
	}
	return nil
}

type testEnv struct {
	subs     *memory.SubmissionStore
	admins   *memory.AdminStore
	sessions *session.MemoryStore
	sender   *fakeSender
	mirror   *fakeMirror
	bot      *Bot
}

func newTestEnv(t *testing.T, adminIDs ...int64) *testEnv {
	t.Helper()
	logger := slog.Default()
	env := &testEnv{
		subs:     memory.NewSubmissionStore(),
		admins:   memory.NewAdminStore(adminIDs...),
		sessions: session.NewMemoryStore(),
		sender:   &fakeSender{failChats: map[int64]bool{}},
		mirror:   &fakeMirror{},
	}
	relay := notify.NewRelay(env.admins, env.sender, logger)
	student := NewStudentFlow(env.subs, env.sessions, env.sender, relay, env.mirror, logger)
	adminFlow := NewAdminFlow(env.admins, env.subs, env.sessions, env.sender, relay, env.mirror, logger)
	env.bot = NewBot(student, adminFlow, env.sessions, env.sender, metrics.NewCollector(), logger)
	return env
}

func (e *testEnv) text(t *testing.T, chatID int64, text string) {
	t.Helper()
	update := telegram.Update{Message: &telegram.Message{
		MessageID: 1,
		Chat:      telegram.Chat{ID: chatID, Type: "private"},
		From:      telegram.User{ID: chatID},
		Text:      text,
	}}
	if err := e.bot.HandleUpdate(context.Background(), update); err != nil {
		t.Fatalf("handle text %q: %v", text, err)
	}
}

func (e *testEnv) callback(t *testing.T, chatID int64, data string) {
	t.Helper()
	update := telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		ID:   "cb-1",
		From: telegram.User{ID: chatID},
		Data: data,
		Message: &telegram.Message{
			MessageID: 10,
			Chat:      telegram.Chat{ID: chatID, Type: "private"},
		},
	}}
	if err := e.bot.HandleUpdate(context.Background(), update); err != nil {
		t.Fatalf("handle callback %q: %v", data, err)
	}
}

// fillForm проводит студента через все пятнадцать вопросов анкеты.
func (e *testEnv) fillForm(t *testing.T, chatID int64, answers map[string]string) {
	t.Helper()
	e.text(t, chatID, "/start")
	e.callback(t, chatID, "student:begin")
	for _, f := range fields {
		if f.Choice {
			e.callback(t, chatID, "student:"+f.Key+":"+answers[f.Key])
			continue
		}
		e.text(t, chatID, answers[f.Key])
	}
}

func sampleAnswers() map[string]string {
	return map[string]string{
		"full_name":         "Иванов Иван Иванович",
		"group":             "ВИС-41",
		"email":             "ivanov@example.com",
		"birthDate":         "26.02.2003",
		"books":             "Пикник на обочине",
		"likedRecentMovie":  "Интерстеллар",
		"aboutYou":          "Люблю бэкенд",
		"afterUniversity":   "Разработчиком",
		"redDiploma":        "yes",
		"scienceInterest":   "maybe",
		"thesisTopic":       "Система приема заявок",
		"thesisDescription": "Бот для подачи анкет",
		"analogsProsCons":   "Google Forms, нет диалога",
		"plannedFeatures":   "Анкета, панель, уведомления",
		"techStack":         "Go, MongoDB, Redis",
	}
}
