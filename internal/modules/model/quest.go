package model

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryGeneral Category = "general"
	CategorySocial  Category = "social"
	CategorySports  Category = "sports"
	CategoryFood    Category = "food"
	CategoryMusic   Category = "music"
	CategoryArt     Category = "art"
	CategoryGaming  Category = "gaming"
	CategoryStudy   Category = "study"
	CategoryOutdoor Category = "outdoor"
	CategoryOther   Category = "other"

	// CategoryAll is a query sentinel meaning "no category filter". It is never stored.
	CategoryAll Category = "all"
)

var categories = map[Category]struct{}{
	CategoryGeneral: {}, CategorySocial: {}, CategorySports: {}, CategoryFood: {},
	CategoryMusic: {}, CategoryArt: {}, CategoryGaming: {}, CategoryStudy: {},
	CategoryOutdoor: {}, CategoryOther: {},
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

func Categories() []Category {
	return []Category{
		CategoryGeneral, CategorySocial, CategorySports, CategoryFood, CategoryMusic,
		CategoryArt, CategoryGaming, CategoryStudy, CategoryOutdoor, CategoryOther,
	}
}

type Quest struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title           string    `gorm:"type:varchar(100);not null" json:"title"`
	Description     *string   `gorm:"type:text" json:"description,omitempty"`
	CreatorID       uuid.UUID `gorm:"type:uuid;not null;index:idx_quests_creator_created,priority:1" json:"creator_id"`
	Latitude        float64   `gorm:"not null;index:idx_quests_active_lat,priority:3;check:chk_quests_lat,latitude BETWEEN -90 AND 90" json:"latitude"`
	Longitude       float64   `gorm:"not null;check:chk_quests_lng,longitude BETWEEN -180 AND 180" json:"longitude"`
	Category        Category  `gorm:"type:varchar(20);not null;default:'general'" json:"category"`
	MaxParticipants int       `gorm:"not null;default:10;check:chk_quests_max,max_participants > 0" json:"max_participants"`
	VideoURL        *string   `gorm:"type:text" json:"video_url,omitempty"`
	IsActive        bool      `gorm:"not null;default:true;index:idx_quests_active_lat,priority:1;index:idx_quests_active_expires,priority:1" json:"is_active"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_quests_creator_created,priority:2" json:"created_at"`
	ExpiresAt       time.Time `gorm:"not null;index:idx_quests_active_lat,priority:2;index:idx_quests_active_expires,priority:2" json:"expires_at"`

	// Quest <-> User
	Creator *User `gorm:"foreignKey:CreatorID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Quest <-> QuestParticipant
	Participants []QuestParticipant `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Quest <-> ChatMessage
	Messages []ChatMessage `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Quest <-> Review
	Reviews []Review `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Quest) TableName() string { return "quests" }

// Open reports whether the quest still accepts joins and chat at now.
func (q *Quest) Open(now time.Time) bool {
	return q.IsActive && q.ExpiresAt.After(now)
}

type QuestParticipant struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuestID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_quest_user,priority:1" json:"quest_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_quest_user,priority:2;index" json:"user_id"`
	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`

	Quest *Quest `gorm:"foreignKey:QuestID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	User  *User  `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (QuestParticipant) TableName() string { return "quest_participants" }

type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuestID   uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_quest_created,priority:1" json:"quest_id"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_chat_quest_created,priority:2" json:"created_at"`

	Quest  *Quest `gorm:"foreignKey:QuestID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	Sender *User  `gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuestID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_quest_user,priority:1" json:"quest_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_quest_user,priority:2" json:"user_id"`
	Score     int       `gorm:"not null;check:chk_reviews_score,score BETWEEN 1 AND 5" json:"score"`
	Comment   *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Quest *Quest `gorm:"foreignKey:QuestID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	User  *User  `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Review) TableName() string { return "reviews" }

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Follow{},
		&Quest{},
		&QuestParticipant{},
		&ChatMessage{},
		&Review{},
	}
}

// Access is how a user relates to a quest for chat and detail purposes.
type Access string

const (
	AccessCreator Access = "creator"
	AccessMember  Access = "member"
	AccessNone    Access = "none"
)

func (a Access) Granted() bool { return a == AccessCreator || a == AccessMember }
