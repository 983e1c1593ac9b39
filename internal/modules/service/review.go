package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type ReviewService interface {
	Add(ctx context.Context, in AddReviewInput) (*AddReviewOutput, error)
	List(ctx context.Context, questID uuid.UUID) (*ListReviewsOutput, error)
}

type AddReviewInput struct {
	QuestID uuid.UUID `validate:"required"`
	UserID  uuid.UUID `validate:"required"`
	Score   int       `validate:"gte=1,lte=5"`
	Comment string    `validate:"max=1000"`
}

type AddReviewOutput struct {
	Review *model.Review  `json:"review"`
	XP     *repo.XPChange `json:"xp,omitempty"`
}

type ListReviewsOutput struct {
	Items   []repo.ReviewRow    `json:"items"`
	Summary *repo.ReviewSummary `json:"summary"`
}

type reviewService struct {
	reviews      repo.ReviewRepo
	quests       repo.QuestRepo
	gamification GamificationService
	events       *Events
	cfg          *config.Config
	clock        clockwork.Clock
	log          *zap.Logger
}

func NewReviewService(
	reviews repo.ReviewRepo,
	quests repo.QuestRepo,
	gamification GamificationService,
	events *Events,
	cfg *config.Config,
	clock clockwork.Clock,
	log *zap.Logger,
) ReviewService {
	return &reviewService{
		reviews:      reviews,
		quests:       quests,
		gamification: gamification,
		events:       events,
		cfg:          cfg,
		clock:        clock,
		log:          log,
	}
}

// Add stores the review and then awards review xp. The award runs after the review
// committed, so an award failure is logged and the review still stands.
func (s *reviewService) Add(ctx context.Context, in AddReviewInput) (*AddReviewOutput, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.quests.GetByID(ctx, in.QuestID); err != nil {
		if repo.IsNotFound(err) {
			return nil, notFoundErr("quest")
		}
		return nil, fmt.Errorf("load quest: %w", err)
	}

	now := s.clock.Now()
	rv := &model.Review{
		QuestID:   in.QuestID,
		UserID:    in.UserID,
		Score:     in.Score,
		CreatedAt: now,
	}
	if in.Comment != "" {
		rv.Comment = &in.Comment
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: you already reviewed this quest", ErrConflict)
		}
		return nil, translateQuestErr(err)
	}
	s.events.QuestReviewed(ctx, in.QuestID, in.UserID, now, in.Score)

	out := &AddReviewOutput{Review: rv}
	xp, err := s.gamification.AwardXP(ctx, in.UserID, s.cfg.Quest.ReviewXP)
	if err != nil {
		s.log.Error("award review xp failed",
			zap.String("user_id", in.UserID.String()),
			zap.String("quest_id", in.QuestID.String()),
			zap.Error(err))
		return out, nil
	}
	out.XP = xp
	return out, nil
}

func (s *reviewService) List(ctx context.Context, questID uuid.UUID) (*ListReviewsOutput, error) {
	items, err := s.reviews.ListByQuest(ctx, questID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	summary, err := s.reviews.Summary(ctx, questID)
	if err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}
	if items == nil {
		items = []repo.ReviewRow{}
	}
	return &ListReviewsOutput{Items: items, Summary: summary}, nil
}
