package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"thesis_bot/internal/domain/submission"
)

const (
	studentChat = int64(100)
	adminChat   = int64(1)
)

func TestFullFormSubmission(t *testing.T) {
	env := newTestEnv(t, adminChat)
	answers := sampleAnswers()

	env.fillForm(t, studentChat, answers)

	summary := env.sender.lastSent()
	if summary.chatID != studentChat || !strings.Contains(summary.text, "Проверьте анкету") {
		t.Fatalf("expected summary screen, got %q", summary.text)
	}
	for key, value := range answers {
		if fieldByKey[key].Choice {
			continue
		}
		if !strings.Contains(summary.text, value) {
			t.Fatalf("summary misses %q value %q", key, value)
		}
	}

	env.callback(t, studentChat, "student:confirm:send")

	doc, err := env.subs.GetByStudent(context.Background(), studentChat)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if doc.Status != submission.StatusPending {
		t.Fatalf("expected pending status, got %s", doc.Status)
	}
	if doc.Email != answers["email"] || doc.RedDiploma != "yes" || doc.ScienceInterest != "maybe" {
		t.Fatalf("unexpected stored profile: %+v", doc.Profile)
	}
	if env.mirror.appends != 1 {
		t.Fatalf("expected 1 sheet append, got %d", env.mirror.appends)
	}
	if got := env.sender.countTo(adminChat, "Новая заявка"); got != 1 {
		t.Fatalf("expected exactly 1 admin notification, got %d", got)
	}
	if !strings.Contains(env.sender.lastEdited().text, "Анкета отправлена") {
		t.Fatalf("expected submission confirmation, got %q", env.sender.lastEdited().text)
	}
}

func TestStartWithPendingSubmission(t *testing.T) {
	env := newTestEnv(t, adminChat)
	if _, err := env.subs.Create(context.Background(), submission.Submission{
		StudentID: studentChat,
		Profile:   profileFromAnswers(sampleAnswers()),
		Status:    submission.StatusPending,
	}); err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	env.text(t, studentChat, "/start")

	if len(env.sender.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(env.sender.sent))
	}
	if !strings.Contains(env.sender.sent[0].text, "У вас уже есть заявка") {
		t.Fatalf("expected existing-submission notice, got %q", env.sender.sent[0].text)
	}
	menu := env.sender.sent[1]
	if !strings.Contains(menu.text, "Доступные действия") || menu.markup == nil {
		t.Fatalf("expected action menu, got %q", menu.text)
	}
}

func TestBackNavigationKeepsEarlierAnswers(t *testing.T) {
	env := newTestEnv(t, adminChat)
	answers := sampleAnswers()

	env.text(t, studentChat, "/start")
	env.callback(t, studentChat, "student:begin")
	for _, f := range fields[:5] {
		env.text(t, studentChat, answers[f.Key])
	}

	// сейчас задан вопрос про likedRecentMovie, шаг назад к books
	env.callback(t, studentChat, "student:back:books")

	state, err := env.sessions.Get(context.Background(), studentChat)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if state.Step != "books" {
		t.Fatalf("expected step books, got %q", state.Step)
	}
	for _, f := range fields[:4] {
		if state.Answer(f.Key) != answers[f.Key] {
			t.Fatalf("answer %q lost after back navigation", f.Key)
		}
	}
}

func TestEmailValidationReprompts(t *testing.T) {
	env := newTestEnv(t, adminChat)
	answers := sampleAnswers()

	env.text(t, studentChat, "/start")
	env.callback(t, studentChat, "student:begin")
	env.text(t, studentChat, answers["full_name"])
	env.text(t, studentChat, answers["group"])

	env.text(t, studentChat, "abc.com")
	if !strings.Contains(env.sender.lastSent().text, "некорректный email") {
		t.Fatalf("expected email reprompt, got %q", env.sender.lastSent().text)
	}
	state, _ := env.sessions.Get(context.Background(), studentChat)
	if state.Step != "email" {
		t.Fatalf("invalid email must not advance the flow, step is %q", state.Step)
	}

	env.text(t, studentChat, answers["email"])
	state, _ = env.sessions.Get(context.Background(), studentChat)
	if state.Step != "birthDate" {
		t.Fatalf("valid email must advance to birthDate, step is %q", state.Step)
	}
}

func TestEditFieldFromConfirmScreen(t *testing.T) {
	env := newTestEnv(t, adminChat)
	env.fillForm(t, studentChat, sampleAnswers())

	env.callback(t, studentChat, "student:confirm:editmenu:1")
	env.callback(t, studentChat, "student:edit:email")
	if !strings.Contains(env.sender.lastEdited().text, "новое значение") {
		t.Fatalf("expected edit prompt, got %q", env.sender.lastEdited().text)
	}

	env.text(t, studentChat, "abc@com")
	if !strings.Contains(env.sender.lastSent().text, "Некорректный email") {
		t.Fatalf("edited email must be revalidated")
	}

	env.text(t, studentChat, "new@mail.ru")
	state, _ := env.sessions.Get(context.Background(), studentChat)
	if state.Step != "confirm" || state.Answer("email") != "new@mail.ru" {
		t.Fatalf("expected updated email on confirm screen, got step %q value %q", state.Step, state.Answer("email"))
	}
}

func TestEditRefusedAfterBoolAnswer(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created, err := env.subs.Create(context.Background(), submission.Submission{
		StudentID: studentChat,
		Profile:   profileFromAnswers(sampleAnswers()),
		Status:    submission.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	if _, err := env.subs.SetBoolAnswer(context.Background(), created.ID, true); err != nil {
		t.Fatalf("set bool answer: %v", err)
	}

	env.callback(t, studentChat, "student:menu:edit")

	if len(env.sender.alerts) != 1 || !strings.Contains(env.sender.alerts[0], "Редактирование недоступно") {
		t.Fatalf("expected edit refusal alert, got %v", env.sender.alerts)
	}
	doc, _ := env.subs.GetByStudent(context.Background(), studentChat)
	if doc.FullName != "Иванов Иван Иванович" {
		t.Fatalf("profile must not change after refused edit")
	}
}

func TestResubmitUpdatesInPlace(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created, err := env.subs.Create(context.Background(), submission.Submission{
		StudentID: studentChat,
		Profile:   profileFromAnswers(sampleAnswers()),
		Status:    submission.StatusApproved,
	})
	if err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	env.callback(t, studentChat, "student:menu:edit")
	env.callback(t, studentChat, "student:confirm:editmenu:1")
	env.callback(t, studentChat, "student:edit:group")
	env.text(t, studentChat, "ВИС-42")
	env.callback(t, studentChat, "student:confirm:send")

	doc, err := env.subs.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if doc.Group != "ВИС-42" {
		t.Fatalf("expected updated group, got %q", doc.Group)
	}
	if doc.Status != submission.StatusApproved {
		t.Fatalf("in-place update must not touch status, got %s", doc.Status)
	}
	if got := env.sender.countTo(adminChat, "Заявка обновлена"); got != 1 {
		t.Fatalf("expected 1 update notification to admin, got %d", got)
	}
}

func TestCancelDeletesSubmission(t *testing.T) {
	env := newTestEnv(t, adminChat)
	if _, err := env.subs.Create(context.Background(), submission.Submission{
		StudentID: studentChat,
		Profile:   profileFromAnswers(sampleAnswers()),
		Status:    submission.StatusPending,
	}); err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	env.callback(t, studentChat, "student:menu:cancel")

	if _, err := env.subs.GetByStudent(context.Background(), studentChat); !errors.Is(err, submission.ErrNotFound) {
		t.Fatalf("expected hard delete, got %v", err)
	}
	if !strings.Contains(env.sender.lastEdited().text, "удалена") {
		t.Fatalf("expected deletion notice, got %q", env.sender.lastEdited().text)
	}
}

func TestTextAnswerClosesReplyGate(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created, err := env.subs.Create(context.Background(), submission.Submission{
		StudentID: studentChat,
		Profile:   profileFromAnswers(sampleAnswers()),
		Status:    submission.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	if _, err := env.subs.SetQuestion(context.Background(), created.ID, "Какой у вас опыт с Go?"); err != nil {
		t.Fatalf("set question: %v", err)
	}
	if _, err := env.subs.SetAllowReply(context.Background(), created.ID, true); err != nil {
		t.Fatalf("allow reply: %v", err)
	}

	env.callback(t, studentChat, "student:menu:answer")
	env.text(t, studentChat, "Полгода писал сервисы")

	doc, _ := env.subs.GetByID(context.Background(), created.ID)
	if doc.StudentTextAnswer != "Полгода писал сервисы" {
		t.Fatalf("text answer not stored: %q", doc.StudentTextAnswer)
	}
	if doc.AllowStudentReply {
		t.Fatalf("reply gate must close after a text answer")
	}
	if got := env.sender.countTo(adminChat, "Текстовый ответ студента"); got != 1 {
		t.Fatalf("expected 1 admin notification, got %d", got)
	}
}

func TestStaleCallbackFailsClosed(t *testing.T) {
	env := newTestEnv(t, adminChat)

	env.callback(t, studentChat, "student:legacy:whatever")

	if len(env.sender.alerts) != 1 || !strings.Contains(env.sender.alerts[0], "Кнопка устарела") {
		t.Fatalf("expected stale-button alert, got %v", env.sender.alerts)
	}
	if len(env.sender.sent)+len(env.sender.edited) != 0 {
		t.Fatalf("stale button must not produce messages")
	}
}
