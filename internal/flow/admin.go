package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"thesis_bot/internal/domain/admin"
	"thesis_bot/internal/domain/submission"
	"thesis_bot/internal/notify"
	"thesis_bot/internal/session"
	"thesis_bot/internal/sheets"
	"thesis_bot/internal/telegram"
)

const adminListPageSize = 30

// AdminFlow — панель администратора: списки заявок по статусам, карточка
// заявки, решение с комментарием, вопрос студенту и разрешение ответа.
type AdminFlow struct {
	admins   admin.Repository
	subs     submission.Repository
	sessions session.Store
	sender   telegram.Sender
	relay    *notify.Relay
	mirror   sheets.Mirror
	logger   *slog.Logger
}

// NewAdminFlow создает административный сценарий.
func NewAdminFlow(
	admins admin.Repository,
	subs submission.Repository,
	sessions session.Store,
	sender telegram.Sender,
	relay *notify.Relay,
	mirror sheets.Mirror,
	logger *slog.Logger,
) *AdminFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminFlow{
		admins:   admins,
		subs:     subs,
		sessions: sessions,
		sender:   sender,
		relay:    relay,
		mirror:   mirror,
		logger:   logger,
	}
}

// HandleCommand обрабатывает /admin.
func (f *AdminFlow) HandleCommand(ctx context.Context, chatID int64) error {
	ok, err := f.admins.IsAdmin(ctx, chatID)
	if err != nil {
		return err
	}
	if !ok {
		return f.sender.SendMessage(ctx, chatID, "Доступ запрещён.", nil)
	}
	return f.sendStatusMenu(ctx, chatID, 0)
}

// HandleText обрабатывает текстовый ввод администратора согласно шагу
// сессии: комментарий к решению, заметка, вопрос или поиск по группе.
func (f *AdminFlow) HandleText(ctx context.Context, chatID int64, text string) error {
	ok, err := f.admins.IsAdmin(ctx, chatID)
	if err != nil {
		return err
	}
	if !ok {
		return f.sender.SendMessage(ctx, chatID, "Доступ запрещён.", nil)
	}

	state, err := f.sessions.Get(ctx, chatID)
	if err != nil {
		return err
	}
	value := strings.TrimSpace(text)

	switch state.Step {
	case session.StepAdminWaitComment:
		return f.saveDecision(ctx, chatID, state, value)
	case session.StepAdminWaitNote:
		return f.saveNote(ctx, chatID, state, value)
	case session.StepAdminWaitQuestion:
		return f.saveQuestion(ctx, chatID, state, value)
	case session.StepAdminWaitGroup:
		return f.searchByGroup(ctx, chatID, state, value)
	}
	return nil
}

// HandleCallback обрабатывает нажатие кнопки административной панели.
// Каждое действие заново проверяет членство в коллекции админов.
func (f *AdminFlow) HandleCallback(ctx context.Context, cb telegram.CallbackQuery, act Action) error {
	if cb.Message == nil {
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	ok, err := f.admins.IsAdmin(ctx, chatID)
	if err != nil {
		return err
	}
	if !ok {
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Доступ запрещён.", true)
	}

	switch act.Kind {
	case KindAdminMenu:
		if err := f.sendStatusMenu(ctx, chatID, messageID); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindAdminShow, KindAdminBack:
		if err := f.sendList(ctx, chatID, messageID, act.Status, ""); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindAdminSearch:
		state, err := f.sessions.Get(ctx, chatID)
		if err != nil {
			return err
		}
		state.Step = session.StepAdminWaitGroup
		state.BackStatus = act.Status
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		if err := f.sender.SendMessage(ctx, chatID, "Введите название группы (например: ВИС-41):", nil); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindAdminView:
		return f.viewCard(ctx, cb, act)

	case KindAdminDecide:
		state, err := f.sessions.Get(ctx, chatID)
		if err != nil {
			return err
		}
		state.Step = session.StepAdminWaitComment
		state.DocID = act.DocID
		state.Decision = act.Decision
		state.BackStatus = act.BackStatus
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		if err := f.sender.SendMessage(ctx, chatID, "Напишите комментарий к решению (или '-' если без комментария).", nil); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindAdminNote:
		state, err := f.sessions.Get(ctx, chatID)
		if err != nil {
			return err
		}
		state.Step = session.StepAdminWaitNote
		state.DocID = act.DocID
		state.BackStatus = act.BackStatus
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		if err := f.sender.SendMessage(ctx, chatID, "Напишите комментарий (без изменения статуса).", nil); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindAdminAsk:
		state, err := f.sessions.Get(ctx, chatID)
		if err != nil {
			return err
		}
		state.Step = session.StepAdminWaitQuestion
		state.DocID = act.DocID
		state.BackStatus = act.BackStatus
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		if err := f.sender.SendMessage(ctx, chatID, "Введите вопрос студенту:", nil); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindAdminToggleReply:
		return f.toggleReply(ctx, cb, act)
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
}

// sendStatusMenu показывает верхнее меню с тремя счетчиками. Счетчик,
// который не удалось получить, заменяется на «?».
func (f *AdminFlow) sendStatusMenu(ctx context.Context, chatID, messageID int64) error {
	count := func(status submission.Status) string {
		_, total, err := f.subs.List(ctx, submission.Filter{Status: status}, 1, 0)
		if err != nil {
			f.logger.Warn("count submissions", slog.String("status", string(status)), slog.String("error", err.Error()))
			return "?"
		}
		return fmt.Sprintf("%d", total)
	}

	text := "<b>Панель администратора</b>\nВыберите статус для просмотра заявок:"
	kb := adminStatusMenuKb(
		count(submission.StatusPending),
		count(submission.StatusApproved),
		count(submission.StatusRejected),
	)
	if messageID != 0 {
		return f.sender.EditMessageText(ctx, chatID, messageID, text, kb)
	}
	return f.sender.SendMessage(ctx, chatID, text, kb)
}

func (f *AdminFlow) sendList(ctx context.Context, chatID, messageID int64, status, group string) error {
	items, total, err := f.subs.List(ctx, submission.Filter{
		Status: submission.Status(status),
		Group:  group,
	}, adminListPageSize, 0)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("<b>%s</b> — найдено %d", statusTitle(status), total)
	kb := adminListKb(items, status)
	if messageID != 0 {
		return f.sender.EditMessageText(ctx, chatID, messageID, header, kb)
	}
	return f.sender.SendMessage(ctx, chatID, header, kb)
}

func (f *AdminFlow) viewCard(ctx context.Context, cb telegram.CallbackQuery, act Action) error {
	chatID := cb.Message.Chat.ID
	doc, err := f.subs.GetByID(ctx, act.DocID)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Не удалось загрузить документ", true)
		}
		return err
	}

	kb := adminCardKb(doc.ID, act.Status, doc.AllowStudentReply)
	if err := f.sender.EditMessageText(ctx, chatID, cb.Message.MessageID, renderAdminCard(doc), kb); err != nil {
		return err
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
}

// saveDecision применяет решение approve/reject с комментарием. «-»
// означает решение без комментария.
func (f *AdminFlow) saveDecision(ctx context.Context, chatID int64, state session.State, text string) error {
	comment := text
	if comment == "-" {
		comment = ""
	}

	doc, err := f.subs.GetByID(ctx, state.DocID)
	if err != nil {
		if clearErr := f.sessions.Clear(ctx, chatID); clearErr != nil {
			f.logger.Warn("clear session", slog.String("error", clearErr.Error()))
		}
		return f.sender.SendMessage(ctx, chatID, "Не удалось получить документ.", nil)
	}

	status := submission.Status(state.Decision)
	if _, err := f.subs.SetDecision(ctx, state.DocID, status, comment); err != nil {
		if clearErr := f.sessions.Clear(ctx, chatID); clearErr != nil {
			f.logger.Warn("clear session", slog.String("error", clearErr.Error()))
		}
		return f.sender.SendMessage(ctx, chatID, "Не удалось сохранить решение.", nil)
	}

	notify.BestEffort(f.logger, "mirror decision", func() error {
		var commentPtr *string
		if comment != "" {
			commentPtr = &comment
		}
		return f.mirror.UpdateStatusAndComment(ctx, state.DocID, &status, commentPtr)
	})

	decisionRu := "принята"
	if status == submission.StatusRejected {
		decisionRu = "отклонена"
	}
	f.relay.NotifyStudent(ctx, doc.StudentID, fmt.Sprintf(
		"📌 Решение по вашей заявке: <b>%s</b>\n💬 Комментарий: %s",
		decisionRu, orDash(comment),
	), nil)

	if err := f.sender.SendMessage(ctx, chatID, "Готово ✅", nil); err != nil {
		return err
	}
	if err := f.sessions.Clear(ctx, chatID); err != nil {
		return err
	}
	return f.sendStatusMenu(ctx, chatID, 0)
}

// saveNote сохраняет комментарий без изменения статуса.
func (f *AdminFlow) saveNote(ctx context.Context, chatID int64, state session.State, note string) error {
	doc, err := f.subs.SetComment(ctx, state.DocID, note)
	if err != nil {
		if sendErr := f.sender.SendMessage(ctx, chatID, "Не удалось сохранить комментарий 😕", nil); sendErr != nil {
			return sendErr
		}
		if clearErr := f.sessions.Clear(ctx, chatID); clearErr != nil {
			f.logger.Warn("clear session", slog.String("error", clearErr.Error()))
		}
		return f.sendStatusMenu(ctx, chatID, 0)
	}

	notify.BestEffort(f.logger, "mirror note", func() error {
		var notePtr *string
		if note != "" {
			notePtr = &note
		}
		return f.mirror.UpdateStatusAndComment(ctx, state.DocID, nil, notePtr)
	})
	f.relay.NotifyStudent(ctx, doc.StudentID, "💬 Комментарий по вашей заявке: "+orDash(note), nil)

	if err := f.sender.SendMessage(ctx, chatID, "Комментарий сохранён ✅", nil); err != nil {
		return err
	}
	if err := f.sessions.Clear(ctx, chatID); err != nil {
		return err
	}
	return f.sendStatusMenu(ctx, chatID, 0)
}

// saveQuestion сохраняет вопрос студенту и отправляет ему приглашение
// открыть заявку. Кнопок «Принять/Отклонить» здесь нет: канал вопроса
// не зависит от allow_student_reply.
func (f *AdminFlow) saveQuestion(ctx context.Context, chatID int64, state session.State, question string) error {
	doc, err := f.subs.SetQuestion(ctx, state.DocID, question)
	if err != nil {
		if sendErr := f.sender.SendMessage(ctx, chatID, "Не удалось сохранить вопрос.", nil); sendErr != nil {
			return sendErr
		}
		if clearErr := f.sessions.Clear(ctx, chatID); clearErr != nil {
			f.logger.Warn("clear session", slog.String("error", clearErr.Error()))
		}
		return f.sendStatusMenu(ctx, chatID, 0)
	}

	f.relay.NotifyStudent(ctx, doc.StudentID, "❓ Вам задан вопрос по вашей заявке.", studentOpenKb())

	if err := f.sender.SendMessage(ctx, chatID, "Вопрос сохранён ✅", nil); err != nil {
		return err
	}
	if err := f.sessions.Clear(ctx, chatID); err != nil {
		return err
	}
	return f.sendStatusMenu(ctx, chatID, 0)
}

func (f *AdminFlow) searchByGroup(ctx context.Context, chatID int64, state session.State, group string) error {
	status := state.BackStatus
	if status == "" {
		status = string(submission.StatusPending)
	}
	if err := f.sessions.Clear(ctx, chatID); err != nil {
		return err
	}
	return f.sendList(ctx, chatID, 0, status, group)
}

// toggleReply переключает allow_student_reply и перерисовывает карточку
// по свежим данным: с заявкой могут одновременно работать несколько
// админов.
func (f *AdminFlow) toggleReply(ctx context.Context, cb telegram.CallbackQuery, act Action) error {
	chatID := cb.Message.Chat.ID

	doc, err := f.subs.SetAllowReply(ctx, act.DocID, act.AllowReply)
	if err != nil {
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Ошибка при обновлении", true)
	}

	if act.AllowReply {
		f.relay.NotifyStudent(ctx, doc.StudentID,
			"🗨️ Вам разрешили ответ по вашей заявке. Выберите вариант:", studentDecisionKb())
	} else {
		f.relay.NotifyStudent(ctx, doc.StudentID,
			"⛔️ Возможность ответа по вашей заявке отключена.", nil)
	}

	fresh, err := f.subs.GetByID(ctx, act.DocID)
	if err == nil {
		kb := adminCardKb(fresh.ID, act.BackStatus, fresh.AllowStudentReply)
		notify.BestEffort(f.logger, "rerender admin card", func() error {
			return f.sender.EditMessageText(ctx, chatID, cb.Message.MessageID, renderAdminCard(fresh), kb)
		})
	}

	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Обновлено", false)
}
