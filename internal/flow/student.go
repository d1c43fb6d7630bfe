package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"thesis_bot/internal/domain/submission"
	"thesis_bot/internal/notify"
	"thesis_bot/internal/session"
	"thesis_bot/internal/sheets"
	"thesis_bot/internal/telegram"
)

// StudentFlow ведет студента по анкете: последовательные вопросы, шаг
// назад, экран проверки, точечное редактирование и отправка заявки.
type StudentFlow struct {
	subs     submission.Repository
	sessions session.Store
	sender   telegram.Sender
	relay    *notify.Relay
	mirror   sheets.Mirror
	logger   *slog.Logger
}

// NewStudentFlow создает студенческий сценарий.
func NewStudentFlow(
	subs submission.Repository,
	sessions session.Store,
	sender telegram.Sender,
	relay *notify.Relay,
	mirror sheets.Mirror,
	logger *slog.Logger,
) *StudentFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudentFlow{
		subs:     subs,
		sessions: sessions,
		sender:   sender,
		relay:    relay,
		mirror:   mirror,
		logger:   logger,
	}
}

// HandleStart обрабатывает /start: сбрасывает сессию и либо показывает
// меню действий по существующей заявке, либо начинает анкету.
func (f *StudentFlow) HandleStart(ctx context.Context, chatID int64) error {
	if err := f.sessions.Clear(ctx, chatID); err != nil {
		return err
	}

	existing, err := f.subs.GetByStudent(ctx, chatID)
	if err != nil && !errors.Is(err, submission.ErrNotFound) {
		return err
	}
	if existing != nil && (existing.Status == submission.StatusPending || existing.Status == submission.StatusApproved) {
		text := fmt.Sprintf(
			"У вас уже есть заявка со статусом: <b>%s</b>.\nЕсли нужно переотправить — напишите /start позже, когда статус будет «Отклонена».",
			ruStatus(existing.Status),
		)
		if err := f.sender.SendMessage(ctx, chatID, text, nil); err != nil {
			return err
		}
		return f.sender.SendMessage(ctx, chatID, "Доступные действия:", studentActionsKb(existing))
	}

	if err := f.sender.SendMessage(ctx, chatID, renderGreeting(), nil); err != nil {
		return err
	}
	return f.sender.SendMessage(ctx, chatID, renderOutline(), startContinueKb())
}

// HandleText обрабатывает текстовый ввод студента согласно шагу сессии.
// Сообщения вне сценария игнорируются.
func (f *StudentFlow) HandleText(ctx context.Context, chatID int64, text string) error {
	state, err := f.sessions.Get(ctx, chatID)
	if err != nil {
		return err
	}
	value := strings.TrimSpace(text)

	switch {
	case state.Step == session.StepEditing:
		return f.saveEditedValue(ctx, chatID, state, value)
	case state.Step == session.StepAnsweringAdmin:
		return f.saveTextAnswer(ctx, chatID, value)
	case knownField(state.Step):
		return f.saveFieldValue(ctx, chatID, state, value)
	}
	return nil
}

func (f *StudentFlow) saveFieldValue(ctx context.Context, chatID int64, state session.State, value string) error {
	key := state.Step
	if fieldByKey[key].Choice {
		// выборные поля принимают только кнопки
		return nil
	}
	if value == "" {
		return nil
	}
	if key == "email" && !validateEmail(value) {
		return f.sender.SendMessage(ctx, chatID, "Похоже на некорректный email, попробуйте ещё раз.", backKb(prevKey("email")))
	}

	state.SetAnswer(key, value)
	next := nextKey(key)
	if next == "" {
		state.Step = session.StepConfirm
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		return f.sender.SendMessage(ctx, chatID, renderSummary(state.Answers), confirmKb(state.EditingDocID != ""))
	}
	return f.askField(ctx, chatID, 0, state, next)
}

func (f *StudentFlow) saveEditedValue(ctx context.Context, chatID int64, state session.State, value string) error {
	key := state.EditingField
	if key == "" {
		state.Step = session.StepConfirm
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		return f.sender.SendMessage(ctx, chatID, renderSummary(state.Answers), confirmKb(state.EditingDocID != ""))
	}
	if key == "email" && !validateEmail(value) {
		return f.sender.SendMessage(ctx, chatID, "Некорректный email, попробуйте ещё раз.", backKb(prevKey("email")))
	}

	state.SetAnswer(key, value)
	state.EditingField = ""
	state.Step = session.StepConfirm
	if err := f.sessions.Put(ctx, chatID, state); err != nil {
		return err
	}
	return f.sender.SendMessage(ctx, chatID, renderSummary(state.Answers), confirmKb(state.EditingDocID != ""))
}

func (f *StudentFlow) saveTextAnswer(ctx context.Context, chatID int64, answer string) error {
	doc, err := f.subs.GetByStudent(ctx, chatID)
	if err != nil {
		if clearErr := f.sessions.Clear(ctx, chatID); clearErr != nil {
			f.logger.Warn("clear session", slog.String("error", clearErr.Error()))
		}
		if errors.Is(err, submission.ErrNotFound) {
			return f.sender.SendMessage(ctx, chatID, "Заявка не найдена.", nil)
		}
		return err
	}

	if _, err := f.subs.SetTextAnswer(ctx, doc.ID, answer); err != nil {
		if clearErr := f.sessions.Clear(ctx, chatID); clearErr != nil {
			f.logger.Warn("clear session", slog.String("error", clearErr.Error()))
		}
		return f.sender.SendMessage(ctx, chatID, "Не удалось сохранить ответ. Попробуйте позже.", nil)
	}

	f.relay.NotifyAdmins(ctx, fmt.Sprintf(
		"📨 <b>Текстовый ответ студента по заявке</b>\n👤 %s | %s\n📝 Ответ: %s\n\nОткрыть панель: /admin",
		orDash(doc.FullName), orDash(doc.Group), answer,
	))

	if err := f.sender.SendMessage(ctx, chatID, "Спасибо! Ваш ответ отправлен преподавателю ✅", nil); err != nil {
		return err
	}
	return f.sessions.Clear(ctx, chatID)
}

// HandleCallback обрабатывает нажатие кнопки студенческого сценария.
func (f *StudentFlow) HandleCallback(ctx context.Context, cb telegram.CallbackQuery, act Action) error {
	if cb.Message == nil {
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	state, err := f.sessions.Get(ctx, chatID)
	if err != nil {
		return err
	}

	switch act.Kind {
	case KindStudentBegin:
		if err := f.askField(ctx, chatID, messageID, state, fields[0].Key); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindStudentBack:
		if err := f.askField(ctx, chatID, messageID, state, act.FieldKey); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindStudentChoice:
		return f.handleChoice(ctx, cb, state, act)

	case KindStudentConfirmBack:
		state.Step = session.StepConfirm
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		if err := f.sender.EditMessageText(ctx, chatID, messageID, renderSummary(state.Answers), confirmKb(state.EditingDocID != "")); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindStudentEditMenu:
		if err := f.sender.EditMessageText(ctx, chatID, messageID, "✏️ Выберите поле для изменения:", editMenuKb(act.Page)); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindStudentEditField:
		return f.beginFieldEdit(ctx, cb, state, act.FieldKey)

	case KindStudentConfirmSend:
		return f.submit(ctx, cb, state)

	case KindStudentMenuView:
		return f.viewSubmission(ctx, cb)

	case KindStudentMenuBack:
		doc, err := f.subs.GetByStudent(ctx, chatID)
		if err != nil && !errors.Is(err, submission.ErrNotFound) {
			return err
		}
		if err := f.sender.EditMessageText(ctx, chatID, messageID, "Доступные действия:", studentActionsKb(doc)); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)

	case KindStudentMenuEdit:
		return f.beginResubmit(ctx, cb)

	case KindStudentMenuCancel:
		return f.cancelSubmission(ctx, cb)

	case KindStudentMenuAnswer:
		return f.beginTextAnswer(ctx, cb, state)

	case KindStudentAnswer:
		return f.saveBoolAnswer(ctx, cb, act.Answer)
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
}

// askField отправляет вопрос для поля key: новым сообщением при
// messageID == 0, иначе правкой исходного.
func (f *StudentFlow) askField(ctx context.Context, chatID, messageID int64, state session.State, key string) error {
	field := fieldByKey[key]
	prev := prevKey(key)

	var kb *telegram.InlineKeyboardMarkup
	if field.Choice {
		kb = choiceKb(key, prev)
	} else {
		kb = backKb(prev)
	}

	state.Step = key
	if err := f.sessions.Put(ctx, chatID, state); err != nil {
		return err
	}

	if messageID != 0 {
		return f.sender.EditMessageText(ctx, chatID, messageID, field.Prompt, kb)
	}
	return f.sender.SendMessage(ctx, chatID, field.Prompt, kb)
}

func (f *StudentFlow) handleChoice(ctx context.Context, cb telegram.CallbackQuery, state session.State, act Action) error {
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	if state.EditingField == act.FieldKey {
		state.SetAnswer(act.FieldKey, act.Choice)
		state.EditingField = ""
		state.Step = session.StepConfirm
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		if err := f.sender.EditMessageText(ctx, chatID, messageID, renderSummary(state.Answers), confirmKb(state.EditingDocID != "")); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Обновлено", false)
	}

	state.SetAnswer(act.FieldKey, act.Choice)
	next := nextKey(act.FieldKey)
	if next == "" {
		state.Step = session.StepConfirm
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		if err := f.sender.EditMessageText(ctx, chatID, messageID, renderSummary(state.Answers), confirmKb(state.EditingDocID != "")); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}
	if err := f.askField(ctx, chatID, messageID, state, next); err != nil {
		return err
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
}

func (f *StudentFlow) beginFieldEdit(ctx context.Context, cb telegram.CallbackQuery, state session.State, key string) error {
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	field := fieldByKey[key]

	if field.Choice {
		state.EditingField = key
		state.Step = session.StepConfirm
		if err := f.sessions.Put(ctx, chatID, state); err != nil {
			return err
		}
		text := fmt.Sprintf("Изменить: <b>%s</b>\nВыберите вариант:", field.Label)
		if err := f.sender.EditMessageText(ctx, chatID, messageID, text, choiceKb(key, prevKey(key))); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	state.EditingField = key
	state.Step = session.StepEditing
	if err := f.sessions.Put(ctx, chatID, state); err != nil {
		return err
	}
	text := fmt.Sprintf("✏️ Отправьте новое значение для поля <b>%s</b>\n\n<i>%s</i>", field.Label, field.Hint)
	if err := f.sender.EditMessageText(ctx, chatID, messageID, text, backKb(prevKey(key))); err != nil {
		return err
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
}

// submit сохраняет анкету: создает новую заявку либо обновляет
// существующую при повторной подаче через «Изменить».
func (f *StudentFlow) submit(ctx context.Context, cb telegram.CallbackQuery, state session.State) error {
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	profile := profileFromAnswers(state.Answers)

	if state.EditingDocID != "" {
		if _, err := f.subs.UpdateProfile(ctx, state.EditingDocID, profile); err != nil {
			if errors.Is(err, submission.ErrNotFound) {
				return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Заявка не найдена.", true)
			}
			return err
		}

		f.relay.NotifyAdmins(ctx, renderAdminNotice("✏️ Заявка обновлена", profile, ""))

		if err := f.sessions.Clear(ctx, chatID); err != nil {
			return err
		}
		doc, err := f.subs.GetByStudent(ctx, chatID)
		if err != nil && !errors.Is(err, submission.ErrNotFound) {
			return err
		}
		if err := f.sender.EditMessageText(ctx, chatID, messageID,
			"💾 <b>Изменения сохранены!</b>\n\nДоступные действия:", studentActionsKb(doc)); err != nil {
			return err
		}
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Сохранено", false)
	}

	created, err := f.subs.Create(ctx, submission.Submission{
		StudentID: chatID,
		Profile:   profile,
		Status:    submission.StatusPending,
	})
	if err != nil {
		return err
	}

	notify.BestEffort(f.logger, "mirror append", func() error {
		return f.mirror.AppendSubmission(ctx, created)
	})
	f.relay.NotifyAdmins(ctx, renderAdminNotice("🆕 Новая заявка", profile, submission.StatusPending))

	if err := f.sessions.Clear(ctx, chatID); err != nil {
		return err
	}
	doc, err := f.subs.GetByStudent(ctx, chatID)
	if err != nil && !errors.Is(err, submission.ErrNotFound) {
		return err
	}
	text := "✅ <b>Анкета отправлена!</b>\n\n" +
		"Статус: ⏳ " + ruStatus(submission.StatusPending) + "\n" +
		"О решении придёт уведомление.\n\n" +
		"Доступные действия:"
	if err := f.sender.EditMessageText(ctx, chatID, messageID, text, studentActionsKb(doc)); err != nil {
		return err
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Отправлено", false)
}

func (f *StudentFlow) viewSubmission(ctx context.Context, cb telegram.CallbackQuery) error {
	chatID := cb.Message.Chat.ID
	doc, err := f.subs.GetByStudent(ctx, chatID)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			return f.sender.AnswerCallbackQuery(ctx, cb.ID, "У вас нет заявки.", true)
		}
		return err
	}

	kb := studentViewKb(doc.AllowStudentReply, doc.AdminQuestion != "")
	if err := f.sender.EditMessageText(ctx, chatID, cb.Message.MessageID, renderStudentView(doc), kb); err != nil {
		return err
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
}

// beginResubmit загружает сохраненную заявку в сессию и открывает экран
// проверки для точечного редактирования.
func (f *StudentFlow) beginResubmit(ctx context.Context, cb telegram.CallbackQuery) error {
	chatID := cb.Message.Chat.ID
	doc, err := f.subs.GetByStudent(ctx, chatID)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			return f.sender.AnswerCallbackQuery(ctx, cb.ID, "У вас нет заявки.", true)
		}
		return err
	}
	if !doc.CanEdit() {
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Редактирование недоступно после вашего ответа.", true)
	}

	state := session.State{
		Step:         session.StepConfirm,
		Answers:      answersFromProfile(doc.Profile),
		EditingDocID: doc.ID,
	}
	if err := f.sessions.Put(ctx, chatID, state); err != nil {
		return err
	}
	if err := f.sender.EditMessageText(ctx, chatID, cb.Message.MessageID, renderSummary(state.Answers), confirmKb(true)); err != nil {
		return err
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
}

// cancelSubmission удаляет заявку безвозвратно.
func (f *StudentFlow) cancelSubmission(ctx context.Context, cb telegram.CallbackQuery) error {
	chatID := cb.Message.Chat.ID
	doc, err := f.subs.GetByStudent(ctx, chatID)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			return f.sender.AnswerCallbackQuery(ctx, cb.ID, "У вас нет заявки.", true)
		}
		return err
	}

	if err := f.subs.Delete(ctx, doc.ID); err != nil && !errors.Is(err, submission.ErrNotFound) {
		return err
	}
	if err := f.sender.EditMessageText(ctx, chatID, cb.Message.MessageID,
		"❌ Ваша заявка удалена.\n\nВы можете заполнить её заново через /start.", nil); err != nil {
		return err
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Удалено", false)
}

func (f *StudentFlow) beginTextAnswer(ctx context.Context, cb telegram.CallbackQuery, state session.State) error {
	chatID := cb.Message.Chat.ID
	doc, err := f.subs.GetByStudent(ctx, chatID)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Заявка не найдена.", true)
		}
		return err
	}
	// текстовый ответ доступен при наличии вопроса, независимо от
	// allow_student_reply
	if doc.AdminQuestion == "" {
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Сейчас текстовый ответ не требуется.", true)
	}

	state.Step = session.StepAnsweringAdmin
	if err := f.sessions.Put(ctx, chatID, state); err != nil {
		return err
	}
	if err := f.sender.SendMessage(ctx, chatID, "Напишите ваш ответ преподавателю одним сообщением:", nil); err != nil {
		return err
	}
	return f.sender.AnswerCallbackQuery(ctx, cb.ID, "", false)
}

// saveBoolAnswer сохраняет выбор «принял/отклонил». Ворота
// allow_student_reply закрываются в хранилище атомарно с ответом.
func (f *StudentFlow) saveBoolAnswer(ctx context.Context, cb telegram.CallbackQuery, answer bool) error {
	chatID := cb.Message.Chat.ID
	doc, err := f.subs.GetByStudent(ctx, chatID)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Заявка не найдена.", true)
		}
		return err
	}

	if _, err := f.subs.SetBoolAnswer(ctx, doc.ID, answer); err != nil {
		return f.sender.AnswerCallbackQuery(ctx, cb.ID, "Не удалось сохранить ответ.", true)
	}

	choice := "принял ✅"
	if !answer {
		choice = "отклонил ❌"
	}
	f.relay.NotifyAdmins(ctx, renderStudentReplyNotice(doc, "Выбор: "+choice))

	if err := f.sender.AnswerCallbackQuery(ctx, cb.ID, "Ответ сохранён", false); err != nil {
		return err
	}
	return f.viewSubmissionAfterAnswer(ctx, cb)
}

func (f *StudentFlow) viewSubmissionAfterAnswer(ctx context.Context, cb telegram.CallbackQuery) error {
	chatID := cb.Message.Chat.ID
	doc, err := f.subs.GetByStudent(ctx, chatID)
	if err != nil {
		return nil
	}
	kb := studentViewKb(doc.AllowStudentReply, doc.AdminQuestion != "")
	notify.BestEffort(f.logger, "rerender student view", func() error {
		return f.sender.EditMessageText(ctx, chatID, cb.Message.MessageID, renderStudentView(doc), kb)
	})
	return nil
}
