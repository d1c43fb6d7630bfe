package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminRepository хранит записи администраторов в MongoDB.
type AdminRepository struct {
	coll *mongo.Collection
}

// NewAdminRepository создает репозиторий администраторов.
func NewAdminRepository(db *mongo.Database, collection string) *AdminRepository {
	return &AdminRepository{coll: db.Collection(collection)}
}

func (r *AdminRepository) IsAdmin(ctx context.Context, chatID int64) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"chat_id": chatID})
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return count > 0, nil
}

func (r *AdminRepository) ListChatIDs(ctx context.Context) ([]int64, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []int64
	for cursor.Next(ctx) {
		var doc struct {
			ChatID int64 `bson:"chat_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode admin: %w", err)
		}
		if doc.ChatID != 0 {
			ids = append(ids, doc.ChatID)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return ids, nil
}
