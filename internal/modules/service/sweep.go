package service

import (
	"context"
	"fmt"
	"time"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// SweepService holds the two periodic passes over quest state. Both are safe to run
// while requests are being served and safe to repeat.
type SweepService interface {
	ExpireDue(ctx context.Context) (*ExpireReport, error)
	PurgeStale(ctx context.Context) (*PurgeReport, error)
}

type ExpireReport struct {
	Expired []repo.ExpiredQuest `json:"expired"`
	Cleanup *repo.CleanupCounts `json:"cleanup,omitempty"`
}

type PurgeReport struct {
	Cutoff time.Time `json:"cutoff"`
	Purged int64     `json:"purged"`
}

type sweepService struct {
	quests repo.QuestRepo
	events *Events
	cfg    *config.Config
	clock  clockwork.Clock
	log    *zap.Logger
}

func NewSweepService(quests repo.QuestRepo, events *Events, cfg *config.Config, clock clockwork.Clock, log *zap.Logger) SweepService {
	return &sweepService{quests: quests, events: events, cfg: cfg, clock: clock, log: log}
}

// ExpireDue deactivates every quest past its expiry and then clears chat and
// memberships of all inactive quests. Deactivation commits on its own: if cleanup
// fails the quests stay inactive and the next pass retries the cleanup.
func (s *sweepService) ExpireDue(ctx context.Context) (*ExpireReport, error) {
	now := s.clock.Now()
	expired, err := s.quests.DeactivateExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("deactivate expired quests: %w", err)
	}

	report := &ExpireReport{Expired: expired}
	for _, q := range expired {
		s.log.Info("quest expired", zap.String("quest_id", q.ID.String()), zap.String("title", q.Title))
		s.events.QuestExpired(ctx, q.ID, q.Title, now)
	}

	cleanup, err := s.quests.CleanupInactive(ctx)
	if err != nil {
		return report, fmt.Errorf("cleanup inactive quests: %w", err)
	}
	report.Cleanup = cleanup
	return report, nil
}

func (s *sweepService) PurgeStale(ctx context.Context) (*PurgeReport, error) {
	cutoff := s.clock.Now().Add(-s.cfg.Scheduler.PurgeRetention)
	n, err := s.quests.PurgeInactive(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("purge quests expired before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if n > 0 {
		s.log.Info("purged stale quests", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return &PurgeReport{Cutoff: cutoff, Purged: n}, nil
}
