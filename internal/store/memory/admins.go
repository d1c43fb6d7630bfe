package memory

import (
	"context"
	"sync"
)

// AdminStore хранит идентификаторы администраторов в памяти.
type AdminStore struct {
	mu    sync.RWMutex
	chats map[int64]struct{}
	order []int64
}

// NewAdminStore создает хранилище администраторов в памяти.
func NewAdminStore(chatIDs ...int64) *AdminStore {
	store := &AdminStore{chats: make(map[int64]struct{})}
	for _, id := range chatIDs {
		store.Add(id)
	}
	return store
}

// Add регистрирует администратора.
func (s *AdminStore) Add(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; ok {
		return
	}
	s.chats[chatID] = struct{}{}
	s.order = append(s.order, chatID)
}

func (s *AdminStore) IsAdmin(_ context.Context, chatID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chats[chatID]
	return ok, nil
}

func (s *AdminStore) ListChatIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, len(s.order))
	copy(ids, s.order)
	return ids, nil
}
