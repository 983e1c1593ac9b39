package repo

import (
	"context"
	"errors"
	"time"

	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestRepo interface {
	CreateWithQuota(ctx context.Context, q *model.Quest, quota Quota) error
	CountCreatedSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (int64, error)
	OldestCreatedSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (*time.Time, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quest, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*QuestSummaryRow, error)
	ListParticipants(ctx context.Context, questID uuid.UUID) ([]ParticipantRow, error)
	Join(ctx context.Context, questID, userID uuid.UUID, now time.Time) (*model.QuestParticipant, error)
	Leave(ctx context.Context, questID, userID uuid.UUID, now time.Time) error
	Access(ctx context.Context, questID, userID uuid.UUID) (model.Access, error)
	ListOpenInLatitudeBand(ctx context.Context, now time.Time, minLat, maxLat float64, category model.Category) ([]QuestSummaryRow, error)
	DeactivateExpired(ctx context.Context, now time.Time) ([]ExpiredQuest, error)
	CleanupInactive(ctx context.Context) (*CleanupCounts, error)
	PurgeInactive(ctx context.Context, expiredBefore time.Time) (int64, error)
}

// Quota bounds how many quests a non-premium creator may have created since Since.
// Limit <= 0 disables the check.
type Quota struct {
	Limit int64
	Since time.Time
}

type QuestSummaryRow struct {
	ID               uuid.UUID      `json:"id"`
	Title            string         `json:"title"`
	Description      *string        `json:"description,omitempty"`
	CreatorID        uuid.UUID      `json:"creator_id"`
	CreatorUsername  string         `json:"creator_username"`
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	Category         model.Category `json:"category"`
	MaxParticipants  int            `json:"max_participants"`
	VideoURL         *string        `json:"video_url,omitempty"`
	IsActive         bool           `json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	ExpiresAt        time.Time      `json:"expires_at"`
	ParticipantCount int64          `json:"participant_count"`
}

type ParticipantRow struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Level     int64     `json:"level"`
	JoinedAt  time.Time `json:"joined_at"`
}

type ExpiredQuest struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type CleanupCounts struct {
	Messages     int64 `json:"messages"`
	Participants int64 `json:"participants"`
}

type questRepo struct{ db *gorm.DB }

func NewQuestRepo(db *gorm.DB) QuestRepo {
	return &questRepo{db: db}
}

const summaryColumns = `q.id, q.title, q.description, q.creator_id, u.username AS creator_username,
	q.latitude, q.longitude, q.category, q.max_participants, q.video_url, q.is_active,
	q.created_at, q.expires_at,
	(SELECT COUNT(*) FROM quest_participants qp WHERE qp.quest_id = q.id) AS participant_count`

func (r *questRepo) summaryQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("quests AS q").
		Select(summaryColumns).
		Joins("JOIN users u ON u.id = q.creator_id")
}

// CreateWithQuota inserts q and bumps the creator's quest counter. The creator row is
// locked for the duration so concurrent creates by one user serialize on the quota check.
func (r *questRepo) CreateWithQuota(ctx context.Context, q *model.Quest, quota Quota) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var creator model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "is_premium").
			Where("id = ?", q.CreatorID).
			First(&creator).Error; err != nil {
			return err
		}

		if !creator.IsPremium && quota.Limit > 0 {
			var n int64
			if err := tx.Model(&model.Quest{}).
				Where("creator_id = ? AND created_at >= ?", q.CreatorID, quota.Since).
				Count(&n).Error; err != nil {
				return err
			}
			if n >= quota.Limit {
				return ErrQuotaExceeded
			}
		}

		if err := tx.Create(q).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).
			Where("id = ?", q.CreatorID).
			UpdateColumn("quest_count", gorm.Expr("quest_count + 1")).Error
	})
}

func (r *questRepo) CountCreatedSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Quest{}).
		Where("creator_id = ? AND created_at >= ?", creatorID, since).
		Count(&n).Error
	return n, err
}

func (r *questRepo) OldestCreatedSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (*time.Time, error) {
	var q model.Quest
	err := r.db.WithContext(ctx).
		Select("created_at").
		Where("creator_id = ? AND created_at >= ?", creatorID, since).
		Order("created_at ASC").
		Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q.CreatedAt, nil
}

func (r *questRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Quest, error) {
	var q model.Quest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questRepo) GetSummary(ctx context.Context, id uuid.UUID) (*QuestSummaryRow, error) {
	var rows []QuestSummaryRow
	if err := r.summaryQuery(ctx).Where("q.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *questRepo) ListParticipants(ctx context.Context, questID uuid.UUID) ([]ParticipantRow, error) {
	var rows []ParticipantRow
	err := r.db.WithContext(ctx).
		Table("quest_participants AS qp").
		Select("qp.user_id, u.username, u.avatar_url, u.level, qp.joined_at").
		Joins("JOIN users u ON u.id = qp.user_id").
		Where("qp.quest_id = ?", questID).
		Order("qp.joined_at ASC, qp.user_id ASC").
		Scan(&rows).Error
	return rows, err
}

// Join admits userID to questID. The quest row is locked first, so the activity,
// duplicate and capacity checks and the insert all see the same state, and a
// concurrent expiry sweep either waits for this transaction or is observed by it.
func (r *questRepo) Join(ctx context.Context, questID, userID uuid.UUID, now time.Time) (*model.QuestParticipant, error) {
	var p *model.QuestParticipant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q model.Quest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", questID).
			First(&q).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestUnavailable
			}
			return err
		}
		if !q.Open(now) {
			return ErrQuestUnavailable
		}
		if q.CreatorID == userID {
			return ErrCreatorJoin
		}

		var existing int64
		if err := tx.Model(&model.QuestParticipant{}).
			Where("quest_id = ? AND user_id = ?", questID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		var count int64
		if err := tx.Model(&model.QuestParticipant{}).
			Where("quest_id = ?", questID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(q.MaxParticipants) {
			return ErrQuestFull
		}

		p = &model.QuestParticipant{QuestID: questID, UserID: userID, JoinedAt: now}
		if err := tx.Create(p).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyMember
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Leave removes the membership. A missing row on a quest that is gone, inactive or
// expired counts as success, since the expiry cascade may have removed it already.
func (r *questRepo) Leave(ctx context.Context, questID, userID uuid.UUID, now time.Time) error {
	res := r.db.WithContext(ctx).
		Where("quest_id = ? AND user_id = ?", questID, userID).
		Delete(&model.QuestParticipant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var q model.Quest
	err := r.db.WithContext(ctx).Select("id", "is_active", "expires_at").Where("id = ?", questID).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !q.Open(now) {
		return nil
	}
	return ErrNotMember
}

func (r *questRepo) Access(ctx context.Context, questID, userID uuid.UUID) (model.Access, error) {
	var q model.Quest
	if err := r.db.WithContext(ctx).Select("id", "creator_id").Where("id = ?", questID).First(&q).Error; err != nil {
		return model.AccessNone, err
	}
	if q.CreatorID == userID {
		return model.AccessCreator, nil
	}

	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.QuestParticipant{}).
		Where("quest_id = ? AND user_id = ?", questID, userID).
		Count(&n).Error; err != nil {
		return model.AccessNone, err
	}
	if n > 0 {
		return model.AccessMember, nil
	}
	return model.AccessNone, nil
}

// ListOpenInLatitudeBand returns open quests whose latitude lies in [minLat, maxLat].
// The band is a coarse prefilter; exact distance filtering happens in the caller.
// An empty category or model.CategoryAll disables the category filter.
func (r *questRepo) ListOpenInLatitudeBand(ctx context.Context, now time.Time, minLat, maxLat float64, category model.Category) ([]QuestSummaryRow, error) {
	q := r.summaryQuery(ctx).
		Where("q.is_active = ? AND q.expires_at > ?", true, now).
		Where("q.latitude BETWEEN ? AND ?", minLat, maxLat)
	if category != "" && category != model.CategoryAll {
		q = q.Where("q.category = ?", category)
	}

	var rows []QuestSummaryRow
	return rows, q.Order("q.created_at DESC, q.id ASC").Scan(&rows).Error
}

// DeactivateExpired flips is_active on every open quest whose expiry has passed and
// returns exactly the rows it flipped.
func (r *questRepo) DeactivateExpired(ctx context.Context, now time.Time) ([]ExpiredQuest, error) {
	var flipped []model.Quest
	err := r.db.WithContext(ctx).
		Model(&flipped).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "title"}}}).
		Where("is_active = ? AND expires_at <= ?", true, now).
		Update("is_active", false).Error
	if err != nil {
		return nil, err
	}

	out := make([]ExpiredQuest, 0, len(flipped))
	for _, q := range flipped {
		out = append(out, ExpiredQuest{ID: q.ID, Title: q.Title})
	}
	return out, nil
}

// CleanupInactive deletes chat messages and memberships of every inactive quest.
// Running it again over already cleaned quests deletes nothing.
func (r *questRepo) CleanupInactive(ctx context.Context) (*CleanupCounts, error) {
	counts := &CleanupCounts{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inactive := func() *gorm.DB {
			return tx.Model(&model.Quest{}).Select("id").Where("is_active = ?", false)
		}

		res := tx.Where("quest_id IN (?)", inactive()).Delete(&model.ChatMessage{})
		if res.Error != nil {
			return res.Error
		}
		counts.Messages = res.RowsAffected

		res = tx.Where("quest_id IN (?)", inactive()).Delete(&model.QuestParticipant{})
		if res.Error != nil {
			return res.Error
		}
		counts.Participants = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// PurgeInactive deletes inactive quests that expired at or before expiredBefore.
// Memberships, chat messages and reviews go with them through ON DELETE CASCADE.
func (r *questRepo) PurgeInactive(ctx context.Context, expiredBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_active = ? AND expires_at <= ?", false, expiredBefore).
		Delete(&model.Quest{})
	return res.RowsAffected, res.Error
}
