package flow

import (
	"fmt"
	"strings"

	"thesis_bot/internal/domain/submission"
)

func ruStatus(s submission.Status) string {
	switch s {
	case submission.StatusPending:
		return "В ожидании"
	case submission.StatusApproved:
		return "Принята"
	case submission.StatusRejected:
		return "Отклонена"
	}
	if s == "" {
		return "—"
	}
	return string(s)
}

func statusTitle(status string) string {
	switch status {
	case "pending":
		return "⏳ В ожидании"
	case "approved":
		return "✅ Принятые"
	case "rejected":
		return "❌ Отклонённые"
	}
	return status
}

func profileLines(p submission.Profile) []string {
	return []string{
		"👤 ФИО: " + orDash(p.FullName),
		"👥 Группа: " + orDash(p.Group),
		"📧 Email: " + orDash(p.Email),
		"📅 Дата рождения: " + orDash(p.BirthDate),
		"",
		"📚 Книги: " + orDash(p.Books),
		"🎬 Фильм/сериал: " + orDash(p.LikedRecentMovie),
		"ℹ️ О студенте: " + orDash(p.AboutYou),
		"🎓 После университета: " + orDash(p.AfterUniversity),
		"🎖 Красный диплом: " + orDash(p.RedDiploma),
		"📑 Научная деятельность: " + orDash(p.ScienceInterest),
		"",
		"📝 Тема: " + orDash(p.ThesisTopic),
		"📄 Описание: " + orDash(p.ThesisDescription),
		"📊 Аналоги: " + orDash(p.AnalogsProsCons),
		"⚙️ Функционал: " + orDash(p.PlannedFeatures),
		"🖥️ Стек: " + orDash(p.TechStack),
	}
}

// renderSummary — экран «Проверьте анкету» перед отправкой.
func renderSummary(answers map[string]string) string {
	lines := append([]string{"🗂 <b>Проверьте анкету</b>", ""}, profileLines(profileFromAnswers(answers))...)
	return strings.Join(lines, "\n")
}

// renderGreeting — приветствие и список вопросов анкеты.
func renderGreeting() string {
	return "Приветствую! 👋\n\n" +
		"Этот бот создан для приема заявок на мое руководство вашей дипломной работой 👩‍🏫.\n" +
		"На данном этапе для меня важнее понимание общего направления ваших интересов в IT и желаемого результата ВКР, " +
		"а не четкая формулировка темы. 🎯\n\n" +
		"С примерной тематикой дипломных работ прошлых лет можно ознакомиться " +
		`<a href="https://drive.google.com/drive/folders/1OBAJZr9PtM_QERUv_u3mfc8ycHuKSt4U?usp=drive_link">здесь</a>. 📚` + "\n\n" +
		"Успейте подать заявку до конца сентября, количество мест ограничено! ⏰😉\n\n" +
		"Давайте заполним короткую анкету."
}

func renderOutline() string {
	var sb strings.Builder
	sb.WriteString("Вам предстоит ответить на следующие вопросы:\n\n")
	for _, f := range fields {
		sb.WriteString("• " + f.Label + "\n")
	}
	sb.WriteString("\nНажмите «Продолжить», чтобы начать.")
	return sb.String()
}

// renderStudentView — карточка «Ваша заявка» со статусом и каналом ответов.
func renderStudentView(sub *submission.Submission) string {
	comment := "нет"
	if strings.TrimSpace(sub.AdminComment) != "" {
		comment = sub.AdminComment
	}
	boolAnswer := "—"
	if sub.StudentAnswer != nil {
		if *sub.StudentAnswer {
			boolAnswer = "принял ✅"
		} else {
			boolAnswer = "отклонил ❌"
		}
	}

	lines := append([]string{"📄 <b>Ваша заявка</b>", ""}, profileLines(sub.Profile)...)
	lines = append(lines,
		"",
		"📌 Статус: "+ruStatus(sub.Status),
		"💬 Комментарий преподавателя: "+comment,
		"",
		"❓ Вопрос от преподавателя: "+orDash(sub.AdminQuestion),
		"📝 Ваш текстовый ответ: "+orDash(sub.StudentTextAnswer),
		"✅ Ваш выбор (если требуется): "+boolAnswer,
	)
	return strings.Join(lines, "\n")
}

// renderAdminCard — карточка заявки в панели администратора.
func renderAdminCard(sub *submission.Submission) string {
	allow := "нет"
	if sub.AllowStudentReply {
		allow = "да"
	}
	boolAnswer := "—"
	if sub.StudentAnswer != nil {
		if *sub.StudentAnswer {
			boolAnswer = "принял ✅"
		} else {
			boolAnswer = "отклонил ❌"
		}
	}
	if sub.StudentTextAnswer != "" {
		boolAnswer = sub.StudentTextAnswer
	}

	lines := append([]string{"<b>Заявка</b>", ""}, profileLines(sub.Profile)...)
	lines = append(lines,
		"",
		"📌 Статус: "+ruStatus(sub.Status),
		"💬 Комментарий: "+orDash(sub.AdminComment),
		"",
		"🗨️ Ответ студента разрешён: "+allow,
		"❓ Вопрос студенту: "+orDash(sub.AdminQuestion),
		"📝 Ответ студента: "+boolAnswer,
	)
	return strings.Join(lines, "\n")
}

// renderAdminNotice — уведомление админам о новой или обновленной заявке.
func renderAdminNotice(title string, p submission.Profile, status submission.Status) string {
	lines := append([]string{"<b>" + title + "</b>"}, profileLines(p)...)
	if status != "" {
		lines = append(lines, "", "📌 Статус: "+ruStatus(status))
	}
	return strings.Join(lines, "\n")
}

// renderStudentReplyNotice — уведомление админам об ответе студента.
func renderStudentReplyNotice(sub *submission.Submission, answer string) string {
	return fmt.Sprintf(
		"📨 <b>Ответ студента по заявке</b>\n👤 %s | %s\n📝 %s\n\nОткрыть панель: /admin",
		orDash(sub.FullName), orDash(sub.Group), answer,
	)
}
