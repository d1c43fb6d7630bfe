package admin

import (
	"context"
	"errors"
)

// Admin — запись администратора. Само присутствие записи в коллекции
// дает права администратора, ролей нет.
type Admin struct {
	ID     string `bson:"-"`
	ChatID int64  `bson:"chat_id"`
	Name   string `bson:"name,omitempty"`
}

// ErrNotFound сообщает об отсутствии записи администратора.
var ErrNotFound = errors.New("admin not found")

// Repository — хранилище администраторов.
type Repository interface {
	IsAdmin(ctx context.Context, chatID int64) (bool, error)
	ListChatIDs(ctx context.Context) ([]int64, error)
}
