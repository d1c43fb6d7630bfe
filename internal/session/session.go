package session

import (
	"context"
	"sync"
)

// Шаги студенческого сценария, которые не являются полями анкеты.
const (
	StepConfirm        = "confirm"
	StepEditing        = "editing"
	StepAnsweringAdmin = "answeringAdmin"
)

// Шаги административного сценария. Префикс отделяет их от студенческих,
// чтобы маршрутизатор мог направить текстовый ввод нужному движку.
const (
	StepAdminWaitComment  = "admin:waitComment"
	StepAdminWaitGroup    = "admin:waitGroup"
	StepAdminWaitNote     = "admin:waitNote"
	StepAdminWaitQuestion = "admin:waitQuestion"
)

// State — эфемерное состояние диалога одного чата. Теряется при
// завершении сценария и, для хранилища в памяти, при рестарте процесса.
type State struct {
	Step    string            `json:"step,omitempty"`
	Answers map[string]string `json:"answers,omitempty"`

	EditingField string `json:"editing_field,omitempty"`
	EditingDocID string `json:"editing_doc_id,omitempty"`

	// Контекст административного сценария.
	DocID      string `json:"doc_id,omitempty"`
	Decision   string `json:"decision,omitempty"`
	BackStatus string `json:"back_status,omitempty"`
}

// SetAnswer записывает значение поля анкеты.
func (s *State) SetAnswer(key, value string) {
	if s.Answers == nil {
		s.Answers = make(map[string]string)
	}
	s.Answers[key] = value
}

// Answer возвращает сохраненное значение поля анкеты.
func (s *State) Answer(key string) string {
	return s.Answers[key]
}

// Store хранит состояния диалогов по идентификатору чата.
// Get возвращает нулевое состояние, если записи нет.
type Store interface {
	Get(ctx context.Context, chatID int64) (State, error)
	Put(ctx context.Context, chatID int64, state State) error
	Clear(ctx context.Context, chatID int64) error
}

// MemoryStore хранит состояния в памяти процесса.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]State
}

// NewMemoryStore создает хранилище состояний в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]State)}
}

func (s *MemoryStore) Get(_ context.Context, chatID int64) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[chatID], nil
}

func (s *MemoryStore) Put(_ context.Context, chatID int64, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = state
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
	return nil
}
