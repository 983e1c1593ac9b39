package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	AvatarURL  *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	Bio        *string   `gorm:"type:text" json:"bio,omitempty"`
	IsPremium  bool      `gorm:"not null;default:false" json:"is_premium"`
	QuestCount int64     `gorm:"not null;default:0" json:"quest_count"`
	XP         int64     `gorm:"column:xp;not null;default:0" json:"xp"`
	Level      int64     `gorm:"not null;default:1" json:"level"`
	PushToken  *string   `gorm:"type:text" json:"-"`

	// Client preferences (preferred radius, category, ...), stored as-is.
	Settings datatypes.JSONMap `gorm:"type:jsonb" swaggertype:"object" json:"settings,omitempty"`

	TokenHMAC    *string `gorm:"type:char(64);uniqueIndex" json:"-"`
	TokenHashPHC *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// User <-> Quest
	Quests []Quest `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }

type Follow struct {
	FollowerID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"following_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Follower  *User `gorm:"foreignKey:FollowerID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	Following *User `gorm:"foreignKey:FollowingID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Follow) TableName() string { return "follows" }
