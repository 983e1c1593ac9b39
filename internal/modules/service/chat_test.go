package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/pkg/paging"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var chatNow = time.Date(2026, 6, 20, 20, 0, 0, 0, time.UTC)

func newChatFixture() (*MockChatRepo, *MockQuestRepo, *MockUserRepo, ChatService) {
	chats, quests, users := &MockChatRepo{}, &MockQuestRepo{}, &MockUserRepo{}
	return chats, quests, users, NewChatService(chats, quests, users, nil, clockwork.NewFakeClockAt(chatNow))
}

// newestFirst builds n rows one minute apart, newest first, as the store returns them.
func newestFirst(questID uuid.UUID, n int) []repo.ChatRow {
	rows := make([]repo.ChatRow, n)
	for i := range rows {
		rows[i] = repo.ChatRow{
			ID:        uuid.New(),
			QuestID:   questID,
			Message:   "m",
			CreatedAt: chatNow.Add(-time.Duration(i) * time.Minute),
		}
	}
	return rows
}

func TestChatService_List(t *testing.T) {
	ctx := context.Background()
	questID, userID := uuid.New(), uuid.New()

	t.Run("requires access", func(t *testing.T) {
		chats, quests, _, svc := newChatFixture()
		quests.On("Access", mock.Anything, questID, userID).Return(model.AccessNone, nil)

		_, err := svc.List(ctx, ListMessagesInput{QuestID: questID, UserID: userID})
		assert.ErrorIs(t, err, ErrForbidden)
		chats.AssertNotCalled(t, "ListBefore", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pages oldest first with a cursor", func(t *testing.T) {
		chats, quests, _, svc := newChatFixture()
		quests.On("Access", mock.Anything, questID, userID).Return(model.AccessMember, nil)
		rows := newestFirst(questID, 4)
		newestID, oldestOnPage, oldestAt := rows[0].ID, rows[2].ID, rows[2].CreatedAt
		chats.On("ListBefore", mock.Anything, questID, time.Time{}, uuid.Nil, 4).Return(rows, nil)

		out, err := svc.List(ctx, ListMessagesInput{QuestID: questID, UserID: userID, Limit: 3})
		require.NoError(t, err)
		require.Len(t, out.Items, 3)
		assert.True(t, out.HasMore)
		assert.Equal(t, oldestOnPage, out.Items[0].ID)
		assert.Equal(t, newestID, out.Items[2].ID)
		assert.Equal(t, newestID, rows[0].ID, "repo rows must not be reordered")

		at, id, err := paging.DecodeCursor(out.NextCursor)
		require.NoError(t, err)
		assert.True(t, at.Equal(oldestAt))
		assert.Equal(t, oldestOnPage, id)

		older := newestFirst(questID, 1)
		chats.On("ListBefore", mock.Anything, questID, mock.Anything, oldestOnPage, 4).Return(older, nil)
		out, err = svc.List(ctx, ListMessagesInput{QuestID: questID, UserID: userID, Limit: 3, Before: out.NextCursor})
		require.NoError(t, err)
		assert.Len(t, out.Items, 1)
		assert.False(t, out.HasMore)
		assert.Empty(t, out.NextCursor)
	})

	t.Run("clamps limit", func(t *testing.T) {
		chats, quests, _, svc := newChatFixture()
		quests.On("Access", mock.Anything, questID, userID).Return(model.AccessCreator, nil)
		chats.On("ListBefore", mock.Anything, questID, time.Time{}, uuid.Nil, 101).Return([]repo.ChatRow{}, nil)

		out, err := svc.List(ctx, ListMessagesInput{QuestID: questID, UserID: userID, Limit: 500})
		require.NoError(t, err)
		assert.NotNil(t, out.Items)
		chats.AssertExpectations(t)
	})

	t.Run("bad cursor", func(t *testing.T) {
		_, quests, _, svc := newChatFixture()
		quests.On("Access", mock.Anything, questID, userID).Return(model.AccessMember, nil)

		_, err := svc.List(ctx, ListMessagesInput{QuestID: questID, UserID: userID, Before: "%%%"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestChatService_Send(t *testing.T) {
	ctx := context.Background()
	questID, userID := uuid.New(), uuid.New()
	open := &model.Quest{ID: questID, IsActive: true, ExpiresAt: chatNow.Add(time.Hour)}

	t.Run("member sends", func(t *testing.T) {
		chats, quests, users, svc := newChatFixture()
		quests.On("GetByID", mock.Anything, questID).Return(open, nil)
		quests.On("Access", mock.Anything, questID, userID).Return(model.AccessMember, nil)
		chats.On("Create", mock.Anything, mock.AnythingOfType("*model.ChatMessage")).
			Run(func(args mock.Arguments) { args.Get(1).(*model.ChatMessage).ID = uuid.New() }).
			Return(nil)
		users.On("GetByID", mock.Anything, userID).Return(&model.User{ID: userID, Username: "ada"}, nil)

		row, err := svc.Send(ctx, SendMessageInput{QuestID: questID, UserID: userID, Message: "  on my way  "})
		require.NoError(t, err)
		assert.Equal(t, "on my way", row.Message)
		assert.Equal(t, "ada", row.Username)
		assert.True(t, row.CreatedAt.Equal(chatNow))
		assert.NotEqual(t, uuid.Nil, row.ID)
	})

	t.Run("rejects empty and oversized messages", func(t *testing.T) {
		_, _, _, svc := newChatFixture()
		_, err := svc.Send(ctx, SendMessageInput{QuestID: questID, UserID: userID, Message: "   "})
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.Send(ctx, SendMessageInput{QuestID: questID, UserID: userID, Message: strings.Repeat("é", 1001)})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("expired quest", func(t *testing.T) {
		_, quests, _, svc := newChatFixture()
		expired := &model.Quest{ID: questID, IsActive: true, ExpiresAt: chatNow}
		quests.On("GetByID", mock.Anything, questID).Return(expired, nil)

		_, err := svc.Send(ctx, SendMessageInput{QuestID: questID, UserID: userID, Message: "hi"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("outsider", func(t *testing.T) {
		chats, quests, _, svc := newChatFixture()
		quests.On("GetByID", mock.Anything, questID).Return(open, nil)
		quests.On("Access", mock.Anything, questID, userID).Return(model.AccessNone, nil)

		_, err := svc.Send(ctx, SendMessageInput{QuestID: questID, UserID: userID, Message: "hi"})
		assert.ErrorIs(t, err, ErrForbidden)
		chats.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
