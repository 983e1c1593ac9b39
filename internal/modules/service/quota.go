package service

import (
	"context"
	"fmt"
	"time"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type QuotaStatus struct {
	CanCreate      bool       `json:"can_create"`
	IsPremium      bool       `json:"is_premium"`
	UsedInWindow   int64      `json:"used_in_window"`
	Limit          int64      `json:"limit"`
	WindowResetsAt *time.Time `json:"window_resets_at,omitempty"`
}

// QuotaService is the free tier creation throttle: at most Limit quests in any rolling window.
type QuotaService interface {
	CanCreate(ctx context.Context, userID uuid.UUID) (*QuotaStatus, error)
	// Window is the bound the store re-checks atomically when inserting.
	Window(now time.Time) repo.Quota
}

type quotaService struct {
	users  repo.UserRepo
	quests repo.QuestRepo
	cfg    *config.Config
	clock  clockwork.Clock
}

func NewQuotaService(users repo.UserRepo, quests repo.QuestRepo, cfg *config.Config, clock clockwork.Clock) QuotaService {
	return &quotaService{users: users, quests: quests, cfg: cfg, clock: clock}
}

func (s *quotaService) Window(now time.Time) repo.Quota {
	return repo.Quota{
		Limit: s.cfg.Quest.FreeQuestsPerWindow,
		Since: now.Add(-s.cfg.Quest.QuotaWindow),
	}
}

func (s *quotaService) CanCreate(ctx context.Context, userID uuid.UUID) (*QuotaStatus, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFoundErr("user")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	w := s.Window(s.clock.Now())
	status := &QuotaStatus{IsPremium: u.IsPremium, Limit: w.Limit}
	if u.IsPremium || w.Limit <= 0 {
		status.CanCreate = true
		return status, nil
	}

	used, err := s.quests.CountCreatedSince(ctx, userID, w.Since)
	if err != nil {
		return nil, fmt.Errorf("count quests: %w", err)
	}
	status.UsedInWindow = used
	status.CanCreate = used < w.Limit

	if !status.CanCreate {
		oldest, err := s.quests.OldestCreatedSince(ctx, userID, w.Since)
		if err != nil {
			return nil, fmt.Errorf("oldest quest in window: %w", err)
		}
		if oldest != nil {
			resets := oldest.Add(s.cfg.Quest.QuotaWindow)
			status.WindowResetsAt = &resets
		}
	}
	return status, nil
}
