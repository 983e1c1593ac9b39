package service

import (
	"context"
	"fmt"

	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/telemetry"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// XPPerLevel is the xp span of one level: level = floor(xp / XPPerLevel) + 1.
const XPPerLevel = 100

func LevelForXP(xp int64) int64 {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

type GamificationService interface {
	AwardXP(ctx context.Context, userID uuid.UUID, amount int64) (*repo.XPChange, error)
}

type gamificationService struct {
	users  repo.UserRepo
	events *Events
	clock  clockwork.Clock
	log    *zap.Logger
}

func NewGamificationService(users repo.UserRepo, events *Events, clock clockwork.Clock, log *zap.Logger) GamificationService {
	return &gamificationService{users: users, events: events, clock: clock, log: log}
}

func (s *gamificationService) AwardXP(ctx context.Context, userID uuid.UUID, amount int64) (*repo.XPChange, error) {
	if amount <= 0 {
		return nil, validationErr("xp amount must be positive, got %d", amount)
	}

	change, err := s.users.AwardXP(ctx, userID, amount, LevelForXP)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFoundErr("user")
		}
		return nil, fmt.Errorf("award xp: %w", err)
	}

	telemetry.RecordXPAwarded(ctx, amount, change.LeveledUp)
	if change.LeveledUp {
		s.log.Info("user leveled up",
			zap.String("user_id", userID.String()),
			zap.Int64("level", change.Level),
			zap.Int64("xp", change.XP))
		s.events.UserLeveledUp(ctx, userID, s.clock.Now(), change.Level)
	}
	return change, nil
}
