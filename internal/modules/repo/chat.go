package repo

import (
	"context"
	"time"

	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepo interface {
	Create(ctx context.Context, m *model.ChatMessage) error
	ListBefore(ctx context.Context, questID uuid.UUID, beforeAt time.Time, beforeID uuid.UUID, limit int) ([]ChatRow, error)
}

type ChatRow struct {
	ID        uuid.UUID `json:"id"`
	QuestID   uuid.UUID `json:"quest_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type chatRepo struct{ db *gorm.DB }

func NewChatRepo(db *gorm.DB) ChatRepo {
	return &chatRepo{db: db}
}

func (r *chatRepo) Create(ctx context.Context, m *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListBefore returns up to limit messages strictly older than the (beforeAt, beforeID)
// keyset position, newest first. A zero beforeAt starts from the latest message.
func (r *chatRepo) ListBefore(ctx context.Context, questID uuid.UUID, beforeAt time.Time, beforeID uuid.UUID, limit int) ([]ChatRow, error) {
	q := r.db.WithContext(ctx).
		Table("chat_messages AS m").
		Select("m.id, m.quest_id, m.sender_id, u.username, u.avatar_url, m.message, m.created_at").
		Joins("JOIN users u ON u.id = m.sender_id").
		Where("m.quest_id = ?", questID)

	if !beforeAt.IsZero() && beforeID != uuid.Nil {
		q = q.Where("(m.created_at < ?) OR (m.created_at = ? AND m.id < ?)", beforeAt, beforeAt, beforeID)
	}

	var rows []ChatRow
	query := q.Order("m.created_at DESC, m.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return rows, query.Scan(&rows).Error
}
