package flow

import (
	"strings"

	"thesis_bot/internal/domain/submission"
)

// Field описывает один вопрос анкеты: ключ для токенов кнопок, подпись
// для меню редактирования, подсказка и текст вопроса.
type Field struct {
	Key    string
	Label  string
	Hint   string
	Prompt string
	Choice bool
}

// fields — порядок прохождения анкеты. Кнопка «Назад» и меню
// редактирования опираются на этот же список.
var fields = []Field{
	{Key: "full_name", Label: "ФИО", Hint: "Введите ФИО полностью", Prompt: "👤 Введите <b>ФИО</b>:"},
	{Key: "group", Label: "Группа", Hint: "Укажите вашу группу (например, ВИС-41)", Prompt: "👥 Укажите вашу <b>группу</b> (например, ВИС-41):"},
	{Key: "email", Label: "Email", Hint: "Введите рабочий email", Prompt: "📧 Введите ваш <b>email</b>:"},
	{Key: "birthDate", Label: "Дата рождения", Hint: "Например, 26.02.2003", Prompt: "📅 Введите <b>дату рождения</b> (например, 26.02.2003):"},
	{Key: "books", Label: "Книги", Hint: "Какие книги вдохновляют? Какая последняя?", Prompt: "📚 Какие книги вдохновляют тебя? И какая последняя встретилась на пути твоём?"},
	{Key: "likedRecentMovie", Label: "Фильм/сериал", Hint: "Что понравилось из последнего?", Prompt: "🎬 <b>Какой фильм/сериал из последнего вам понравился?</b>"},
	{Key: "aboutYou", Label: "О студенте", Hint: "Что ещё следует о вас знать?", Prompt: "ℹ️ <b>Что ещё следует о вас знать?</b>"},
	{Key: "afterUniversity", Label: "После университета", Hint: "Кем видите себя после выпуска?", Prompt: "🎓 <b>Кем видите себя после окончания университета?</b>"},
	{Key: "redDiploma", Label: "Красный диплом", Hint: "Выберите вариант ниже", Prompt: "🎖 <b>Идёте на красный диплом?</b>", Choice: true},
	{Key: "scienceInterest", Label: "Научная деятельность", Hint: "Выберите вариант ниже", Prompt: "📑 <b>Есть ли желание заниматься научной деятельностью?</b>", Choice: true},
	{Key: "thesisTopic", Label: "Тема диплома", Hint: "Введите название проекта", Prompt: "📝 <b>Введите тему дипломной работы (название проекта)</b>:"},
	{Key: "thesisDescription", Label: "Описание", Hint: "Коротко опишите проект", Prompt: "📄 <b>Введите описание проекта:</b>"},
	{Key: "analogsProsCons", Label: "Аналоги (плюсы/минусы)", Hint: "Какие есть аналоги, их плюсы и минусы", Prompt: "📊 <b>Какие есть аналоги? Их плюсы и минусы:</b>"},
	{Key: "plannedFeatures", Label: "Планируемый функционал", Hint: "Перечень функций (и ролей, если есть)", Prompt: "⚙️ <b>Примерный перечень функционала (с ролями при наличии):</b>"},
	{Key: "techStack", Label: "Стек технологий", Hint: "На чем планируете писать", Prompt: "🖥️ <b>На чём планируете писать? (стек технологий)</b>:"},
}

var fieldByKey = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return m
}()

func knownField(key string) bool {
	_, ok := fieldByKey[key]
	return ok
}

// prevKey возвращает ключ предыдущего поля или "" для первого.
func prevKey(key string) string {
	for i, f := range fields {
		if f.Key == key {
			if i == 0 {
				return ""
			}
			return fields[i-1].Key
		}
	}
	return ""
}

// nextKey возвращает ключ следующего поля или "" после последнего.
func nextKey(key string) string {
	for i, f := range fields {
		if f.Key == key {
			if i == len(fields)-1 {
				return ""
			}
			return fields[i+1].Key
		}
	}
	return ""
}

// ChoiceOption — один вариант для полей с фиксированным набором ответов.
type ChoiceOption struct {
	Label string
	Value string
}

func choiceOptions(key string) []ChoiceOption {
	switch key {
	case "redDiploma":
		return []ChoiceOption{
			{Label: "✅ Да", Value: "yes"},
			{Label: "❌ Нет", Value: "no"},
			{Label: "🤔 Не решил", Value: "undecided"},
		}
	case "scienceInterest":
		return []ChoiceOption{
			{Label: "✅ Да", Value: "yes"},
			{Label: "❌ Нет", Value: "no"},
			{Label: "🤔 Может быть", Value: "maybe"},
		}
	}
	return nil
}

// validateEmail повторяет исходную проверку: «@» не первым символом и
// хотя бы одна точка. Ничего строже здесь сознательно нет.
func validateEmail(value string) bool {
	return strings.Contains(value, "@") && !strings.HasPrefix(value, "@") && strings.Contains(value, ".")
}

// profileFromAnswers собирает профиль заявки из накопленных ответов сессии.
func profileFromAnswers(answers map[string]string) submission.Profile {
	return submission.Profile{
		FullName:          answers["full_name"],
		Group:             answers["group"],
		Email:             answers["email"],
		BirthDate:         answers["birthDate"],
		Books:             answers["books"],
		LikedRecentMovie:  answers["likedRecentMovie"],
		AboutYou:          answers["aboutYou"],
		AfterUniversity:   answers["afterUniversity"],
		RedDiploma:        answers["redDiploma"],
		ScienceInterest:   answers["scienceInterest"],
		ThesisTopic:       answers["thesisTopic"],
		ThesisDescription: answers["thesisDescription"],
		AnalogsProsCons:   answers["analogsProsCons"],
		PlannedFeatures:   answers["plannedFeatures"],
		TechStack:         answers["techStack"],
	}
}

// answersFromProfile раскладывает сохраненную заявку обратно в ответы
// сессии для точечного редактирования.
func answersFromProfile(p submission.Profile) map[string]string {
	return map[string]string{
		"full_name":         p.FullName,
		"group":             p.Group,
		"email":             p.Email,
		"birthDate":         p.BirthDate,
		"books":             p.Books,
		"likedRecentMovie":  p.LikedRecentMovie,
		"aboutYou":          p.AboutYou,
		"afterUniversity":   p.AfterUniversity,
		"redDiploma":        p.RedDiploma,
		"scienceInterest":   p.ScienceInterest,
		"thesisTopic":       p.ThesisTopic,
		"thesisDescription": p.ThesisDescription,
		"analogsProsCons":   p.AnalogsProsCons,
		"plannedFeatures":   p.PlannedFeatures,
		"techStack":         p.TechStack,
	}
}
