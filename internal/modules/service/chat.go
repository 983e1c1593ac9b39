package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/pkg/paging"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	defaultChatPage = 50
	maxChatPage     = 100
	maxMessageRunes = 1000
)

type ChatService interface {
	List(ctx context.Context, in ListMessagesInput) (*ListMessagesOutput, error)
	Send(ctx context.Context, in SendMessageInput) (*repo.ChatRow, error)
}

type ListMessagesInput struct {
	QuestID uuid.UUID
	UserID  uuid.UUID
	Limit   int
	Before  string
}

type ListMessagesOutput struct {
	// Items are oldest first.
	Items      []repo.ChatRow `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

type SendMessageInput struct {
	QuestID uuid.UUID
	UserID  uuid.UUID
	Message string
}

type chatService struct {
	chats  repo.ChatRepo
	quests repo.QuestRepo
	users  repo.UserRepo
	events *Events
	clock  clockwork.Clock
}

func NewChatService(chats repo.ChatRepo, quests repo.QuestRepo, users repo.UserRepo, events *Events, clock clockwork.Clock) ChatService {
	return &chatService{chats: chats, quests: quests, users: users, events: events, clock: clock}
}

func (s *chatService) requireAccess(ctx context.Context, questID, userID uuid.UUID) error {
	access, err := s.quests.Access(ctx, questID, userID)
	if err != nil {
		return translateQuestErr(err)
	}
	if !access.Granted() {
		return fmt.Errorf("%w: join the quest to use its chat", ErrForbidden)
	}
	return nil
}

func (s *chatService) List(ctx context.Context, in ListMessagesInput) (*ListMessagesOutput, error) {
	if err := s.requireAccess(ctx, in.QuestID, in.UserID); err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultChatPage
	}
	if limit > maxChatPage {
		limit = maxChatPage
	}

	var beforeAt time.Time
	var beforeID uuid.UUID
	if in.Before != "" {
		var err error
		beforeAt, beforeID, err = paging.DecodeCursor(in.Before)
		if err != nil {
			return nil, validationErr("invalid cursor")
		}
	}

	// one extra row tells whether an older page exists
	rows, err := s.chats.ListBefore(ctx, in.QuestID, beforeAt, beforeID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	out := &ListMessagesOutput{}
	if len(rows) > limit {
		out.HasMore = true
		rows = rows[:limit]
	}
	if out.HasMore && len(rows) > 0 {
		oldest := rows[len(rows)-1]
		out.NextCursor = paging.EncodeCursor(oldest.CreatedAt, oldest.ID)
	}

	// rows are newest first; the page goes out oldest first
	items := make([]repo.ChatRow, len(rows))
	for i := range rows {
		items[len(rows)-1-i] = rows[i]
	}
	out.Items = items
	return out, nil
}

func (s *chatService) Send(ctx context.Context, in SendMessageInput) (*repo.ChatRow, error) {
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return nil, validationErr("message cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxMessageRunes {
		return nil, validationErr("message exceeds %d characters", maxMessageRunes)
	}

	q, err := s.quests.GetByID(ctx, in.QuestID)
	if err != nil {
		return nil, translateQuestErr(err)
	}
	now := s.clock.Now()
	if !q.Open(now) {
		return nil, fmt.Errorf("%w: quest is no longer active", ErrNotFound)
	}
	if err := s.requireAccess(ctx, in.QuestID, in.UserID); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		QuestID:   in.QuestID,
		SenderID:  in.UserID,
		Message:   text,
		CreatedAt: now,
	}
	if err := s.chats.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	row := &repo.ChatRow{
		ID:        msg.ID,
		QuestID:   msg.QuestID,
		SenderID:  msg.SenderID,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}
	if sender, err := s.users.GetByID(ctx, in.UserID); err == nil {
		row.Username = sender.Username
		row.AvatarURL = sender.AvatarURL
	}

	s.events.ChatMessage(ctx, in.QuestID, in.UserID, now, msg.ID)
	return row, nil
}
