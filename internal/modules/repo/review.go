package repo

import (
	"context"
	"time"

	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepo interface {
	Create(ctx context.Context, r *model.Review) error
	ListByQuest(ctx context.Context, questID uuid.UUID) ([]ReviewRow, error)
	Summary(ctx context.Context, questID uuid.UUID) (*ReviewSummary, error)
}

type ReviewRow struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Score     int       `json:"score"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewSummary struct {
	Count        int64   `json:"count"`
	AverageScore float64 `json:"average_score"`
}

type reviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) ReviewRepo {
	return &reviewRepo{db: db}
}

// Create relies on the (quest_id, user_id) unique index, so concurrent duplicate
// submissions yield exactly one row and ErrDuplicate for the rest.
func (r *reviewRepo) Create(ctx context.Context, rv *model.Review) error {
	err := r.db.WithContext(ctx).Create(rv).Error
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrDuplicate
	case isForeignKeyViolation(err):
		return gorm.ErrRecordNotFound
	default:
		return err
	}
}

func (r *reviewRepo) ListByQuest(ctx context.Context, questID uuid.UUID) ([]ReviewRow, error) {
	var rows []ReviewRow
	err := r.db.WithContext(ctx).
		Table("reviews AS rv").
		Select("rv.id, rv.user_id, u.username, u.avatar_url, rv.score, rv.comment, rv.created_at").
		Joins("JOIN users u ON u.id = rv.user_id").
		Where("rv.quest_id = ?", questID).
		Order("rv.created_at DESC, rv.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *reviewRepo) Summary(ctx context.Context, questID uuid.UUID) (*ReviewSummary, error) {
	var s ReviewSummary
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(score), 0) AS average_score").
		Where("quest_id = ?", questID).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
