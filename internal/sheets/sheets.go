package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"thesis_bot/internal/domain/submission"
)

// Mirror дублирует строки заявок во внешнюю таблицу для отчетности.
// Все вызовы оборачиваются в notify.BestEffort на стороне вызывающего:
// отказ зеркала никогда не доходит до пользователя.
type Mirror interface {
	AppendSubmission(ctx context.Context, sub *submission.Submission) error
	UpdateStatusAndComment(ctx context.Context, docID string, status *submission.Status, comment *string) error
}

// Disabled — зеркало-заглушка, когда таблица не настроена.
type Disabled struct{}

func (Disabled) AppendSubmission(context.Context, *submission.Submission) error {
	return nil
}

func (Disabled) UpdateStatusAndComment(context.Context, string, *submission.Status, *string) error {
	return nil
}

var header = []string{
	"timestamp", "doc_id", "student_id", "full_name", "group", "email",
	"birth_date", "books", "liked_recent_movie", "about_you", "after_university",
	"red_diploma", "science_interest", "thesis_topic", "thesis_description",
	"analogs_pros_cons", "planned_features", "tech_stack",
	"статус", "комментарий", "updated at",
}

// GoogleMirror пишет строки в Google Sheets через сервисный аккаунт.
type GoogleMirror struct {
	svc     *sheets.Service
	sheetID string
	tab     string
	clock   func() time.Time
}

// NewGoogleMirror создает клиент таблицы и дописывает строку заголовков,
// если лист пуст.
func NewGoogleMirror(ctx context.Context, sheetID, tab, credentialsPath string) (*GoogleMirror, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	m := &GoogleMirror{svc: svc, sheetID: sheetID, tab: tab, clock: time.Now}
	if err := m.ensureHeader(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GoogleMirror) ensureHeader(ctx context.Context) error {
	resp, err := m.svc.Spreadsheets.Values.Get(m.sheetID, m.tab+"!1:1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets read header: %w", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	_, err = m.svc.Spreadsheets.Values.Append(m.sheetID, m.tab, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets write header: %w", err)
	}
	return nil
}

func (m *GoogleMirror) AppendSubmission(ctx context.Context, sub *submission.Submission) error {
	row := []interface{}{
		m.clock().UTC().Format(time.RFC3339),
		sub.ID,
		fmt.Sprintf("%d", sub.StudentID),
		sub.FullName, sub.Group, sub.Email, sub.BirthDate,
		sub.Books, sub.LikedRecentMovie, sub.AboutYou, sub.AfterUniversity,
		sub.RedDiploma, sub.ScienceInterest, sub.ThesisTopic, sub.ThesisDescription,
		sub.AnalogsProsCons, sub.PlannedFeatures, sub.TechStack,
		string(sub.Status), sub.AdminComment, "",
	}
	_, err := m.svc.Spreadsheets.Values.Append(m.sheetID, m.tab, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	return nil
}

// UpdateStatusAndComment находит строку по doc_id и обновляет ячейки
// статуса, комментария и времени изменения. nil-поле не трогается.
func (m *GoogleMirror) UpdateStatusAndComment(ctx context.Context, docID string, status *submission.Status, comment *string) error {
	row, err := m.findRow(ctx, docID)
	if err != nil {
		return err
	}
	columns, err := m.headerIndexes(ctx)
	if err != nil {
		return err
	}

	var data []*sheets.ValueRange
	appendCell := func(name string, value string) {
		col, ok := columns[name]
		if !ok {
			return
		}
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", m.tab, columnLetter(col), row),
			Values: [][]interface{}{{value}},
		})
	}
	if status != nil {
		appendCell("статус", string(*status))
	}
	if comment != nil {
		appendCell("комментарий", *comment)
	}
	appendCell("updated at", m.clock().UTC().Format(time.RFC3339))

	if len(data) == 0 {
		return nil
	}
	_, err = m.svc.Spreadsheets.Values.BatchUpdate(m.sheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets batch update: %w", err)
	}
	return nil
}

func (m *GoogleMirror) findRow(ctx context.Context, docID string) (int, error) {
	resp, err := m.svc.Spreadsheets.Values.Get(m.sheetID, m.tab+"!B:B").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("sheets read key column: %w", err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if value, ok := row[0].(string); ok && value == docID {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("sheets row not found for %s", docID)
}

func (m *GoogleMirror) headerIndexes(ctx context.Context) (map[string]int, error) {
	resp, err := m.svc.Spreadsheets.Values.Get(m.sheetID, m.tab+"!1:1").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets read header: %w", err)
	}
	indexes := make(map[string]int)
	if len(resp.Values) == 0 {
		return indexes, nil
	}
	for i, cell := range resp.Values[0] {
		name, ok := cell.(string)
		if !ok {
			continue
		}
		indexes[strings.ToLower(strings.TrimSpace(name))] = i + 1
	}
	return indexes, nil
}

func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
