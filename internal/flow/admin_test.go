package flow

import (
	"context"
	"strings"
	"testing"

	"thesis_bot/internal/domain/submission"
)

func seedSubmission(t *testing.T, env *testEnv, group string) *submission.Submission {
	t.Helper()
	profile := profileFromAnswers(sampleAnswers())
	if group != "" {
		profile.Group = group
	}
	created, err := env.subs.Create(context.Background(), submission.Submission{
		StudentID: studentChat,
		Profile:   profile,
		Status:    submission.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return created
}

func TestAdminAccessDenied(t *testing.T) {
	env := newTestEnv(t, adminChat)
	stranger := int64(555)

	env.text(t, stranger, "/admin")
	if env.sender.lastSent().text != "Доступ запрещён." {
		t.Fatalf("expected denial, got %q", env.sender.lastSent().text)
	}

	env.callback(t, stranger, "admin:menu")
	if len(env.sender.alerts) != 1 || env.sender.alerts[0] != "Доступ запрещён." {
		t.Fatalf("expected denial alert for callback, got %v", env.sender.alerts)
	}
}

func TestAdminStatusMenuCounters(t *testing.T) {
	env := newTestEnv(t, adminChat)
	seedSubmission(t, env, "")

	env.text(t, adminChat, "/admin")

	menu := env.sender.lastSent()
	if !strings.Contains(menu.text, "Панель администратора") {
		t.Fatalf("expected admin panel, got %q", menu.text)
	}
	buttons := menu.markup.InlineKeyboard
	if len(buttons) != 3 || !strings.Contains(buttons[0][0].Text, "(1)") || !strings.Contains(buttons[1][0].Text, "(0)") {
		t.Fatalf("unexpected counters: %+v", buttons)
	}
}

func TestApproveWithComment(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created := seedSubmission(t, env, "")

	env.text(t, adminChat, "/admin")
	env.callback(t, adminChat, "admin:show:pending")
	env.callback(t, adminChat, "admin:view:"+created.ID+":pending")
	if !strings.Contains(env.sender.lastEdited().text, "Заявка") {
		t.Fatalf("expected submission card, got %q", env.sender.lastEdited().text)
	}

	env.callback(t, adminChat, "admin:decide:"+created.ID+":approved:pending:1")
	env.text(t, adminChat, "Looks good")

	doc, _ := env.subs.GetByID(context.Background(), created.ID)
	if doc.Status != submission.StatusApproved || doc.AdminComment != "Looks good" {
		t.Fatalf("unexpected decision result: %s / %q", doc.Status, doc.AdminComment)
	}
	if env.mirror.updates != 1 {
		t.Fatalf("decision must mirror exactly once, got %d", env.mirror.updates)
	}
	if got := env.sender.countTo(studentChat, "принята"); got != 1 {
		t.Fatalf("expected 1 student notification, got %d", got)
	}
	if got := env.sender.countTo(studentChat, "Looks good"); got != 1 {
		t.Fatalf("decision notification must carry the comment")
	}
	// после решения админ возвращается в верхнее меню
	if !strings.Contains(env.sender.lastSent().text, "Панель администратора") {
		t.Fatalf("expected status menu after decision, got %q", env.sender.lastSent().text)
	}
}

func TestRejectWithDashComment(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created := seedSubmission(t, env, "")

	env.callback(t, adminChat, "admin:decide:"+created.ID+":rejected:pending:1")
	env.text(t, adminChat, "-")

	doc, _ := env.subs.GetByID(context.Background(), created.ID)
	if doc.Status != submission.StatusRejected || doc.AdminComment != "" {
		t.Fatalf("dash must mean empty comment: %s / %q", doc.Status, doc.AdminComment)
	}
	if env.mirror.updates != 1 {
		t.Fatalf("decision must mirror exactly once, got %d", env.mirror.updates)
	}
	if got := env.sender.countTo(studentChat, "отклонена"); got != 1 {
		t.Fatalf("expected 1 student notification, got %d", got)
	}
}

func TestToggleReplyIdempotence(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created := seedSubmission(t, env, "")

	env.callback(t, adminChat, "admin:toggle_reply:"+created.ID+":pending:off")
	env.callback(t, adminChat, "admin:toggle_reply:"+created.ID+":pending:on")
	env.callback(t, adminChat, "admin:toggle_reply:"+created.ID+":pending:on")

	doc, _ := env.subs.GetByID(context.Background(), created.ID)
	if !doc.AllowStudentReply {
		t.Fatalf("expected allow_student_reply = true")
	}
	if got := env.sender.countTo(studentChat, "разрешили ответ"); got != 2 {
		t.Fatalf("each enable must notify exactly once, got %d", got)
	}
	if got := env.sender.countTo(studentChat, "отключена"); got != 1 {
		t.Fatalf("each disable must notify exactly once, got %d", got)
	}
	// свежая карточка перерисована с актуальной подписью тумблера
	card := env.sender.lastEdited()
	found := false
	for _, row := range card.markup.InlineKeyboard {
		for _, b := range row {
			if strings.Contains(b.Text, "Запретить ответ") {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("card must re-render with the fresh toggle label")
	}
}

func TestStudentDeclineAfterToggle(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created := seedSubmission(t, env, "")

	env.callback(t, adminChat, "admin:toggle_reply:"+created.ID+":pending:on")

	prompt := env.sender.lastSent()
	if prompt.chatID != studentChat || prompt.markup == nil {
		t.Fatalf("student must receive a choice prompt")
	}
	if len(prompt.markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("choice prompt must offer accept and decline")
	}

	env.callback(t, studentChat, "student:answer:no")

	doc, _ := env.subs.GetByID(context.Background(), created.ID)
	if doc.StudentAnswer == nil || *doc.StudentAnswer {
		t.Fatalf("expected stored decline")
	}
	if doc.AllowStudentReply {
		t.Fatalf("reply gate must close after the answer")
	}
	if got := env.sender.countTo(adminChat, "Ответ студента по заявке"); got != 1 {
		t.Fatalf("expected 1 admin notification, got %d", got)
	}

	env.callback(t, studentChat, "student:menu:edit")
	if len(env.sender.alerts) == 0 || !strings.Contains(env.sender.alerts[len(env.sender.alerts)-1], "Редактирование недоступно") {
		t.Fatalf("edit must be refused after the answer")
	}
}

func TestStandaloneNote(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created := seedSubmission(t, env, "")

	env.callback(t, adminChat, "admin:note:"+created.ID+":pending")
	env.text(t, adminChat, "Уточните тему")

	doc, _ := env.subs.GetByID(context.Background(), created.ID)
	if doc.AdminComment != "Уточните тему" {
		t.Fatalf("note not stored: %q", doc.AdminComment)
	}
	if doc.Status != submission.StatusPending {
		t.Fatalf("note must not change status, got %s", doc.Status)
	}
	if env.mirror.updates != 1 {
		t.Fatalf("note must mirror exactly once, got %d", env.mirror.updates)
	}
	if got := env.sender.countTo(studentChat, "Комментарий по вашей заявке"); got != 1 {
		t.Fatalf("expected 1 student notification, got %d", got)
	}
}

func TestAskQuestion(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created := seedSubmission(t, env, "")

	env.callback(t, adminChat, "admin:ask:"+created.ID+":pending")
	env.text(t, adminChat, "Почему именно эта тема?")

	doc, _ := env.subs.GetByID(context.Background(), created.ID)
	if doc.AdminQuestion != "Почему именно эта тема?" {
		t.Fatalf("question not stored: %q", doc.AdminQuestion)
	}

	var notice *sentMsg
	for i := range env.sender.sent {
		if env.sender.sent[i].chatID == studentChat && strings.Contains(env.sender.sent[i].text, "Вам задан вопрос") {
			notice = &env.sender.sent[i]
		}
	}
	if notice == nil {
		t.Fatalf("student must be notified about the question")
	}
	// только кнопка «Открыть мою заявку», без «Принять/Отклонить»
	if len(notice.markup.InlineKeyboard) != 1 || len(notice.markup.InlineKeyboard[0]) != 1 {
		t.Fatalf("question notice must carry a single open button, got %+v", notice.markup.InlineKeyboard)
	}
}

func TestGroupSearch(t *testing.T) {
	env := newTestEnv(t, adminChat)
	seedSubmission(t, env, "ВИС-41")
	profile := profileFromAnswers(sampleAnswers())
	profile.Group = "ВИС-42"
	if _, err := env.subs.Create(context.Background(), submission.Submission{
		StudentID: studentChat + 1,
		Profile:   profile,
		Status:    submission.StatusPending,
	}); err != nil {
		t.Fatalf("seed second submission: %v", err)
	}

	env.callback(t, adminChat, "admin:search:pending")
	env.text(t, adminChat, "ВИС-42")

	list := env.sender.lastSent()
	if !strings.Contains(list.text, "найдено 1") {
		t.Fatalf("expected one match, got %q", list.text)
	}
	// строка заявки плюс поиск и назад
	if len(list.markup.InlineKeyboard) != 3 {
		t.Fatalf("unexpected list layout: %+v", list.markup.InlineKeyboard)
	}
}

func TestNotificationFailureDoesNotAbortDecision(t *testing.T) {
	env := newTestEnv(t, adminChat)
	created := seedSubmission(t, env, "")
	env.sender.failChats[studentChat] = true

	env.callback(t, adminChat, "admin:decide:"+created.ID+":approved:pending:1")
	env.text(t, adminChat, "Looks good")

	doc, _ := env.subs.GetByID(context.Background(), created.ID)
	if doc.Status != submission.StatusApproved {
		t.Fatalf("decision must survive a failed student notification, got %s", doc.Status)
	}
	if got := env.sender.countTo(adminChat, "Готово"); got != 1 {
		t.Fatalf("admin must still get the confirmation, got %d", got)
	}
}
