package service

import (
	"context"
	"io"
	"time"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/infra/blob"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return config.Default()
}

func testEvents(pub EventPublisher) *Events {
	return NewEvents(pub, testConfig(), zap.NewNop())
}

// MockQuestRepo is a mock implementation of repo.QuestRepo
type MockQuestRepo struct {
	mock.Mock
}

func (m *MockQuestRepo) CreateWithQuota(ctx context.Context, q *model.Quest, quota repo.Quota) error {
	args := m.Called(ctx, q, quota)
	return args.Error(0)
}

func (m *MockQuestRepo) CountCreatedSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, creatorID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestRepo) OldestCreatedSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (*time.Time, error) {
	args := m.Called(ctx, creatorID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockQuestRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Quest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quest), args.Error(1)
}

func (m *MockQuestRepo) GetSummary(ctx context.Context, id uuid.UUID) (*repo.QuestSummaryRow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.QuestSummaryRow), args.Error(1)
}

func (m *MockQuestRepo) ListParticipants(ctx context.Context, questID uuid.UUID) ([]repo.ParticipantRow, error) {
	args := m.Called(ctx, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repo.ParticipantRow), args.Error(1)
}

func (m *MockQuestRepo) Join(ctx context.Context, questID, userID uuid.UUID, now time.Time) (*model.QuestParticipant, error) {
	args := m.Called(ctx, questID, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestParticipant), args.Error(1)
}

func (m *MockQuestRepo) Leave(ctx context.Context, questID, userID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, questID, userID, now)
	return args.Error(0)
}

func (m *MockQuestRepo) Access(ctx context.Context, questID, userID uuid.UUID) (model.Access, error) {
	args := m.Called(ctx, questID, userID)
	return args.Get(0).(model.Access), args.Error(1)
}

func (m *MockQuestRepo) ListOpenInLatitudeBand(ctx context.Context, now time.Time, minLat, maxLat float64, category model.Category) ([]repo.QuestSummaryRow, error) {
	args := m.Called(ctx, now, minLat, maxLat, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repo.QuestSummaryRow), args.Error(1)
}

func (m *MockQuestRepo) DeactivateExpired(ctx context.Context, now time.Time) ([]repo.ExpiredQuest, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repo.ExpiredQuest), args.Error(1)
}

func (m *MockQuestRepo) CleanupInactive(ctx context.Context) (*repo.CleanupCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.CleanupCounts), args.Error(1)
}

func (m *MockQuestRepo) PurgeInactive(ctx context.Context, expiredBefore time.Time) (int64, error) {
	args := m.Called(ctx, expiredBefore)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepo is a mock implementation of repo.UserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetByTokenHMAC(ctx context.Context, lookup string) (*model.User, error) {
	args := m.Called(ctx, lookup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) AwardXP(ctx context.Context, userID uuid.UUID, amount int64, levelFor func(xp int64) int64) (*repo.XPChange, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.XPChange), args.Error(1)
}

func (m *MockUserRepo) SetPremium(ctx context.Context, userID uuid.UUID, premium bool) error {
	args := m.Called(ctx, userID, premium)
	return args.Error(0)
}

func (m *MockUserRepo) SetPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, in repo.ProfileUpdate) (*model.User, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	args := m.Called(ctx, followerID, followingID)
	return args.Error(0)
}

func (m *MockUserRepo) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) FollowCounts(ctx context.Context, userID uuid.UUID) (*repo.FollowCounts, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.FollowCounts), args.Error(1)
}

// MockReviewRepo is a mock implementation of repo.ReviewRepo
type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) Create(ctx context.Context, r *model.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepo) ListByQuest(ctx context.Context, questID uuid.UUID) ([]repo.ReviewRow, error) {
	args := m.Called(ctx, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repo.ReviewRow), args.Error(1)
}

func (m *MockReviewRepo) Summary(ctx context.Context, questID uuid.UUID) (*repo.ReviewSummary, error) {
	args := m.Called(ctx, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.ReviewSummary), args.Error(1)
}

// MockChatRepo is a mock implementation of repo.ChatRepo
type MockChatRepo struct {
	mock.Mock
}

func (m *MockChatRepo) Create(ctx context.Context, msg *model.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatRepo) ListBefore(ctx context.Context, questID uuid.UUID, beforeAt time.Time, beforeID uuid.UUID, limit int) ([]repo.ChatRow, error) {
	args := m.Called(ctx, questID, beforeAt, beforeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repo.ChatRow), args.Error(1)
}

// MockPublisher records published events
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, exchangeName string, routingKey string, body any) error {
	args := m.Called(ctx, exchangeName, routingKey, body)
	return args.Error(0)
}

type MockGamificationService struct {
	mock.Mock
}

func (m *MockGamificationService) AwardXP(ctx context.Context, userID uuid.UUID, amount int64) (*repo.XPChange, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.XPChange), args.Error(1)
}

type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (*blob.ObjectMeta, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, key, contentType, body, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.ObjectMeta), args.Error(1)
}

func (m *MockMediaStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockQuotaService struct {
	mock.Mock
}

func (m *MockQuotaService) CanCreate(ctx context.Context, userID uuid.UUID) (*QuotaStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*QuotaStatus), args.Error(1)
}

func (m *MockQuotaService) Window(now time.Time) repo.Quota {
	args := m.Called(now)
	return args.Get(0).(repo.Quota)
}
