package repo

import (
	"context"
	"errors"

	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByTokenHMAC(ctx context.Context, lookup string) (*model.User, error)
	AwardXP(ctx context.Context, userID uuid.UUID, amount int64, levelFor func(xp int64) int64) (*XPChange, error)
	SetPremium(ctx context.Context, userID uuid.UUID, premium bool) error
	SetPushToken(ctx context.Context, userID uuid.UUID, token string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*model.User, error)
	Follow(ctx context.Context, followerID, followingID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	FollowCounts(ctx context.Context, userID uuid.UUID) (*FollowCounts, error)
}

type XPChange struct {
	XP        int64 `json:"xp"`
	Level     int64 `json:"level"`
	LeveledUp bool  `json:"leveled_up"`
}

// ProfileUpdate carries optional fields; nil means unchanged.
type ProfileUpdate struct {
	AvatarURL *string
	Bio       *string
	Settings  map[string]any
}

type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByTokenHMAC(ctx context.Context, lookup string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("token_hmac = ?", lookup).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// AwardXP adds amount to the user's xp under a row lock and stores the level computed
// by levelFor only when it is higher than the stored one.
func (r *userRepo) AwardXP(ctx context.Context, userID uuid.UUID, amount int64, levelFor func(xp int64) int64) (*XPChange, error) {
	var out *XPChange
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "xp", "level").
			Where("id = ?", userID).
			First(&u).Error; err != nil {
			return err
		}

		xp := u.XP + amount
		level := u.Level
		leveledUp := false
		if next := levelFor(xp); next > level {
			level = next
			leveledUp = true
		}

		if err := tx.Model(&model.User{}).
			Where("id = ?", userID).
			UpdateColumns(map[string]any{"xp": xp, "level": level}).Error; err != nil {
			return err
		}
		out = &XPChange{XP: xp, Level: level, LeveledUp: leveledUp}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) SetPremium(ctx context.Context, userID uuid.UUID, premium bool) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("is_premium", premium)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) SetPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("push_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*model.User, error) {
	updates := map[string]any{}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.Settings != nil {
		updates["settings"] = datatypes.JSONMap(in.Settings)
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(ctx, userID)
}

// Follow is idempotent. A missing target surfaces as gorm.ErrRecordNotFound.
func (r *userRepo) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Follow{FollowerID: followerID, FollowingID: followingID}).Error
	if err != nil && isForeignKeyViolation(err) {
		return gorm.ErrRecordNotFound
	}
	return err
}

func (r *userRepo) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *userRepo) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error
	return n > 0, err
}

func (r *userRepo) FollowCounts(ctx context.Context, userID uuid.UUID) (*FollowCounts, error) {
	counts := &FollowCounts{}

	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("following_id = ?", userID).
		Count(&counts.Followers).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Count(&counts.Following).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// IsNotFound reports whether err means the addressed row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
