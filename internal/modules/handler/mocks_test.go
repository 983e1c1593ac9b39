package handler

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glitch-app/glitch/internal/infra/blob"
	"github.com/glitch-app/glitch/internal/middleware"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/modules/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asUser stands in for the auth middleware.
func asUser(userID uuid.UUID, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		h(c)
	}
}

// MockQuestService is a mock implementation of service.QuestService
type MockQuestService struct {
	mock.Mock
}

func (m *MockQuestService) Create(ctx context.Context, in service.CreateQuestInput) (*model.Quest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quest), args.Error(1)
}

func (m *MockQuestService) GetDetail(ctx context.Context, questID, viewerID uuid.UUID) (*service.QuestDetail, error) {
	args := m.Called(ctx, questID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QuestDetail), args.Error(1)
}

func (m *MockQuestService) Join(ctx context.Context, questID, userID uuid.UUID) (*model.QuestParticipant, error) {
	args := m.Called(ctx, questID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestParticipant), args.Error(1)
}

func (m *MockQuestService) Leave(ctx context.Context, questID, userID uuid.UUID) error {
	args := m.Called(ctx, questID, userID)
	return args.Error(0)
}

func (m *MockQuestService) Access(ctx context.Context, questID, userID uuid.UUID) (model.Access, error) {
	args := m.Called(ctx, questID, userID)
	return args.Get(0).(model.Access), args.Error(1)
}

type MockDiscoveryService struct {
	mock.Mock
}

func (m *MockDiscoveryService) Nearby(ctx context.Context, in service.NearbyInput) ([]service.NearbyQuest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.NearbyQuest), args.Error(1)
}

type MockQuotaService struct {
	mock.Mock
}

func (m *MockQuotaService) CanCreate(ctx context.Context, userID uuid.UUID) (*service.QuotaStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QuotaStatus), args.Error(1)
}

func (m *MockQuotaService) Window(now time.Time) repo.Quota {
	return m.Called(now).Get(0).(repo.Quota)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Add(ctx context.Context, in service.AddReviewInput) (*service.AddReviewOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AddReviewOutput), args.Error(1)
}

func (m *MockReviewService) List(ctx context.Context, questID uuid.UUID) (*service.ListReviewsOutput, error) {
	args := m.Called(ctx, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListReviewsOutput), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) List(ctx context.Context, in service.ListMessagesInput) (*service.ListMessagesOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListMessagesOutput), args.Error(1)
}

func (m *MockChatService) Send(ctx context.Context, in service.SendMessageInput) (*repo.ChatRow, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.ChatRow), args.Error(1)
}

// MockUserService is a mock implementation of service.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Profile(ctx context.Context, viewerID, userID uuid.UUID) (*service.Profile, error) {
	args := m.Called(ctx, viewerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Profile), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in service.UpdateProfileInput) (*model.User, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Follow(ctx context.Context, followerID, targetID uuid.UUID) error {
	return m.Called(ctx, followerID, targetID).Error(0)
}

func (m *MockUserService) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error {
	return m.Called(ctx, followerID, targetID).Error(0)
}

func (m *MockUserService) SetPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockUserService) SetPremium(ctx context.Context, userID uuid.UUID, premium bool) error {
	return m.Called(ctx, userID, premium).Error(0)
}

func (m *MockUserService) CreateWithToken(ctx context.Context, username string) (*model.User, string, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadVideo(ctx context.Context, fh *multipart.FileHeader) (*blob.ObjectMeta, error) {
	args := m.Called(ctx, fh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.ObjectMeta), args.Error(1)
}

func (m *MockMediaService) DeleteVideo(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
