package flow

import (
	"fmt"

	"thesis_bot/internal/domain/submission"
	"thesis_bot/internal/telegram"
)

const editMenuPerPage = 6

func btn(text, data string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, CallbackData: data}
}

func markup(rows ...[]telegram.InlineKeyboardButton) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func startContinueKb() *telegram.InlineKeyboardMarkup {
	return markup([]telegram.InlineKeyboardButton{btn("▶️ Продолжить", "student:begin")})
}

// backKb — одиночная кнопка «Назад» к предыдущему полю; nil для первого поля.
func backKb(prev string) *telegram.InlineKeyboardMarkup {
	if prev == "" {
		return nil
	}
	return markup([]telegram.InlineKeyboardButton{btn("⬅️ Назад", "student:back:"+prev)})
}

// choiceKb — три варианта ответа в один ряд плюс «Назад», если есть куда.
func choiceKb(key, prev string) *telegram.InlineKeyboardMarkup {
	var row []telegram.InlineKeyboardButton
	for _, opt := range choiceOptions(key) {
		row = append(row, btn(opt.Label, fmt.Sprintf("student:%s:%s", key, opt.Value)))
	}
	rows := [][]telegram.InlineKeyboardButton{row}
	if prev != "" {
		rows = append(rows, []telegram.InlineKeyboardButton{btn("⬅️ Назад", "student:back:"+prev)})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func confirmKb(editing bool) *telegram.InlineKeyboardMarkup {
	send := "✅ Отправить"
	if editing {
		send = "💾 Сохранить изменения"
	}
	return markup(
		[]telegram.InlineKeyboardButton{btn(send, "student:confirm:send")},
		[]telegram.InlineKeyboardButton{btn("✏️ Изменить ответы", "student:confirm:editmenu:1")},
	)
}

// editMenuKb — постраничный выбор поля для правки, по шесть полей на экран.
func editMenuKb(page int) *telegram.InlineKeyboardMarkup {
	pages := (len(fields) + editMenuPerPage - 1) / editMenuPerPage
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * editMenuPerPage
	end := start + editMenuPerPage
	if end > len(fields) {
		end = len(fields)
	}

	var rows [][]telegram.InlineKeyboardButton
	for _, f := range fields[start:end] {
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn("✏️ "+f.Label, "student:edit:"+f.Key),
		})
	}

	if pages > 1 {
		var nav []telegram.InlineKeyboardButton
		if page > 1 {
			nav = append(nav, btn("⬅️ Назад", fmt.Sprintf("student:confirm:editmenu:%d", page-1)))
		}
		nav = append(nav, btn(fmt.Sprintf("%d/%d", page, pages), "noop"))
		if page < pages {
			nav = append(nav, btn("Вперёд ➡️", fmt.Sprintf("student:confirm:editmenu:%d", page+1)))
		}
		rows = append(rows, nav)
	}

	rows = append(rows, []telegram.InlineKeyboardButton{btn("↩️ К проверке анкеты", "student:confirm:back")})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// studentActionsKb — меню «Доступные действия». «Изменить» скрывается,
// если студент уже дал булев ответ.
func studentActionsKb(sub *submission.Submission) *telegram.InlineKeyboardMarkup {
	canEdit := sub == nil || sub.CanEdit()
	rows := [][]telegram.InlineKeyboardButton{
		{btn("📄 Моя заявка", "student:menu:view")},
	}
	if canEdit {
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn("✏️ Изменить", "student:menu:edit"),
			btn("❌ Отменить", "student:menu:cancel"),
		})
	} else {
		rows = append(rows, []telegram.InlineKeyboardButton{btn("❌ Отменить", "student:menu:cancel")})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// studentViewKb — кнопки под карточкой «Ваша заявка».
func studentViewKb(allowAnswer, hasQuestion bool) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	if hasQuestion {
		rows = append(rows, []telegram.InlineKeyboardButton{btn("📝 Ответить преподавателю", "student:menu:answer")})
	}
	if allowAnswer {
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn("✅ Подтвердить заявку", "student:answer:yes"),
			btn("❌ Отменить заявку", "student:answer:no"),
		})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{btn("⬅️ Назад к действиям", "student:menu:back")})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// studentDecisionKb отправляется студенту, когда админ разрешил ответ.
func studentDecisionKb() *telegram.InlineKeyboardMarkup {
	return markup(
		[]telegram.InlineKeyboardButton{
			btn("✅ Подтвердить заявку", "student:answer:yes"),
			btn("❌ Отменить заявку", "student:answer:no"),
		},
		[]telegram.InlineKeyboardButton{btn("📄 Моя заявка", "student:menu:view")},
	)
}

// studentOpenKb отправляется студенту вместе с вопросом преподавателя.
func studentOpenKb() *telegram.InlineKeyboardMarkup {
	return markup([]telegram.InlineKeyboardButton{btn("📄 Открыть мою заявку", "student:menu:view")})
}

func adminStatusMenuKb(pending, approved, rejected string) *telegram.InlineKeyboardMarkup {
	return markup(
		[]telegram.InlineKeyboardButton{btn(fmt.Sprintf("⏳ В ожидании (%s)", pending), "admin:show:pending")},
		[]telegram.InlineKeyboardButton{btn(fmt.Sprintf("✅ Принятые (%s)", approved), "admin:show:approved")},
		[]telegram.InlineKeyboardButton{btn(fmt.Sprintf("❌ Отклонённые (%s)", rejected), "admin:show:rejected")},
	)
}

// adminListKb — список заявок одного статуса, по кнопке на запись.
func adminListKb(items []submission.Submission, status string) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	for _, sub := range items {
		title := fmt.Sprintf("%s | %s", orDash(sub.FullName), orDash(sub.Group))
		if len([]rune(title)) > 60 {
			title = string([]rune(title)[:60])
		}
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn(title, fmt.Sprintf("admin:view:%s:%s", sub.ID, status)),
		})
	}
	rows = append(rows,
		[]telegram.InlineKeyboardButton{btn("🔎 Поиск по группе", "admin:search:"+status)},
		[]telegram.InlineKeyboardButton{btn("⬅️ Назад", "admin:menu")},
	)
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// adminCardKb — действия под карточкой заявки. Подпись тумблера отражает
// текущее значение allow_student_reply.
func adminCardKb(docID, backStatus string, allowReply bool) *telegram.InlineKeyboardMarkup {
	toggle := btn("🗨️ Разрешить ответ", fmt.Sprintf("admin:toggle_reply:%s:%s:on", docID, backStatus))
	if allowReply {
		toggle = btn("🗨️ Запретить ответ", fmt.Sprintf("admin:toggle_reply:%s:%s:off", docID, backStatus))
	}
	return markup(
		[]telegram.InlineKeyboardButton{
			btn("✅ Принять", fmt.Sprintf("admin:decide:%s:approved:%s:1", docID, backStatus)),
			btn("❌ Отклонить", fmt.Sprintf("admin:decide:%s:rejected:%s:1", docID, backStatus)),
		},
		[]telegram.InlineKeyboardButton{btn("💬 Комментарий", fmt.Sprintf("admin:note:%s:%s", docID, backStatus))},
		[]telegram.InlineKeyboardButton{
			toggle,
			btn("✏️ Задать вопрос", fmt.Sprintf("admin:ask:%s:%s", docID, backStatus)),
		},
		[]telegram.InlineKeyboardButton{btn("⬅️ Назад к списку", "admin:back:"+backStatus)},
	)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
