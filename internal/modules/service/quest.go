package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/telemetry"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type QuestService interface {
	Create(ctx context.Context, in CreateQuestInput) (*model.Quest, error)
	GetDetail(ctx context.Context, questID, viewerID uuid.UUID) (*QuestDetail, error)
	Join(ctx context.Context, questID, userID uuid.UUID) (*model.QuestParticipant, error)
	Leave(ctx context.Context, questID, userID uuid.UUID) error
	Access(ctx context.Context, questID, userID uuid.UUID) (model.Access, error)
}

type questService struct {
	quests  repo.QuestRepo
	reviews repo.ReviewRepo
	quota   QuotaService
	events  *Events
	cfg     *config.Config
	clock   clockwork.Clock
	log     *zap.Logger
}

func NewQuestService(
	quests repo.QuestRepo,
	reviews repo.ReviewRepo,
	quota QuotaService,
	events *Events,
	cfg *config.Config,
	clock clockwork.Clock,
	log *zap.Logger,
) QuestService {
	return &questService{
		quests:  quests,
		reviews: reviews,
		quota:   quota,
		events:  events,
		cfg:     cfg,
		clock:   clock,
		log:     log,
	}
}

type CreateQuestInput struct {
	CreatorID       uuid.UUID `validate:"required"`
	Title           string    `validate:"required,max=100"`
	Description     string    `validate:"max=2000"`
	Latitude        float64   `validate:"gte=-90,lte=90"`
	Longitude       float64   `validate:"gte=-180,lte=180"`
	Category        string
	MaxParticipants int     `validate:"gte=0,lte=1000"`
	VideoURL        *string `validate:"omitempty,max=2048"`
}

func (s *questService) Create(ctx context.Context, in CreateQuestInput) (*model.Quest, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	category := model.CategoryGeneral
	if in.Category != "" {
		category = model.Category(strings.ToLower(in.Category))
		if !category.Valid() {
			return nil, validationErr("unknown category %q", in.Category)
		}
	}
	maxParticipants := in.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = s.cfg.Quest.DefaultMaxParticipants
	}

	status, err := s.quota.CanCreate(ctx, in.CreatorID)
	if err != nil {
		return nil, err
	}
	if !status.CanCreate {
		return nil, ErrQuotaExceeded
	}

	now := s.clock.Now()
	q := &model.Quest{
		Title:           in.Title,
		CreatorID:       in.CreatorID,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		Category:        category,
		MaxParticipants: maxParticipants,
		VideoURL:        in.VideoURL,
		IsActive:        true,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.cfg.Quest.TTL),
	}
	if in.Description != "" {
		q.Description = &in.Description
	}

	if err := s.quests.CreateWithQuota(ctx, q, s.quota.Window(now)); err != nil {
		return nil, translateQuestErr(err)
	}

	telemetry.RecordQuestCreated(ctx, string(q.Category))
	s.log.Info("quest created",
		zap.String("quest_id", q.ID.String()),
		zap.String("creator_id", q.CreatorID.String()),
		zap.String("category", string(q.Category)))
	s.events.QuestCreated(ctx, q.ID, q.CreatorID, now, map[string]any{
		"title":     q.Title,
		"category":  q.Category,
		"latitude":  q.Latitude,
		"longitude": q.Longitude,
	})
	return q, nil
}

type QuestDetail struct {
	repo.QuestSummaryRow
	Participants []repo.ParticipantRow `json:"participants"`
	Reviews      *repo.ReviewSummary   `json:"reviews"`
	Access       model.Access          `json:"access"`
	Open         bool                  `json:"open"`
}

func (s *questService) GetDetail(ctx context.Context, questID, viewerID uuid.UUID) (*QuestDetail, error) {
	out := &QuestDetail{}
	var summary *repo.QuestSummaryRow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.quests.GetSummary(gctx, questID)
		return err
	})
	g.Go(func() error {
		var err error
		out.Participants, err = s.quests.ListParticipants(gctx, questID)
		return err
	})
	g.Go(func() error {
		var err error
		out.Reviews, err = s.reviews.Summary(gctx, questID)
		return err
	})
	if err := g.Wait(); err != nil {
		if repo.IsNotFound(err) {
			return nil, notFoundErr("quest")
		}
		return nil, fmt.Errorf("load quest detail: %w", err)
	}

	out.QuestSummaryRow = *summary
	if out.Participants == nil {
		out.Participants = []repo.ParticipantRow{}
	}
	out.Open = summary.IsActive && summary.ExpiresAt.After(s.clock.Now())

	out.Access = model.AccessNone
	if summary.CreatorID == viewerID {
		out.Access = model.AccessCreator
	} else {
		for _, p := range out.Participants {
			if p.UserID == viewerID {
				out.Access = model.AccessMember
				break
			}
		}
	}
	return out, nil
}

func (s *questService) Join(ctx context.Context, questID, userID uuid.UUID) (*model.QuestParticipant, error) {
	now := s.clock.Now()
	p, err := s.quests.Join(ctx, questID, userID, now)
	if err != nil {
		telemetry.RecordJoin(ctx, joinOutcome(err))
		return nil, translateQuestErr(err)
	}
	telemetry.RecordJoin(ctx, "joined")
	s.events.QuestJoined(ctx, questID, userID, now)
	return p, nil
}

func joinOutcome(err error) string {
	switch {
	case errors.Is(err, repo.ErrQuestFull):
		return "full"
	case errors.Is(err, repo.ErrAlreadyMember), errors.Is(err, repo.ErrCreatorJoin):
		return "conflict"
	case errors.Is(err, repo.ErrQuestUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func (s *questService) Leave(ctx context.Context, questID, userID uuid.UUID) error {
	now := s.clock.Now()
	if err := s.quests.Leave(ctx, questID, userID, now); err != nil {
		return translateQuestErr(err)
	}
	s.events.QuestLeft(ctx, questID, userID, now)
	return nil
}

func (s *questService) Access(ctx context.Context, questID, userID uuid.UUID) (model.Access, error) {
	a, err := s.quests.Access(ctx, questID, userID)
	if err != nil {
		return model.AccessNone, translateQuestErr(err)
	}
	return a, nil
}
