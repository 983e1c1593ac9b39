package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/pkg/geo"
	"github.com/jonboulle/clockwork"
)

// MaxRadiusKm caps discovery queries at half the Earth's circumference.
const MaxRadiusKm = math.Pi * geo.EarthRadiusKm

type DiscoveryService interface {
	Nearby(ctx context.Context, in NearbyInput) ([]NearbyQuest, error)
}

type NearbyInput struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	RadiusKm  float64 `validate:"gte=0"`
	Category  string
}

type NearbyQuest struct {
	repo.QuestSummaryRow
	// DistanceKm is rounded to metres for display; ranking used the exact value.
	DistanceKm float64 `json:"distance_km"`
}

type discoveryService struct {
	quests repo.QuestRepo
	cfg    *config.Config
	clock  clockwork.Clock
}

func NewDiscoveryService(quests repo.QuestRepo, cfg *config.Config, clock clockwork.Clock) DiscoveryService {
	return &discoveryService{quests: quests, cfg: cfg, clock: clock}
}

func (s *discoveryService) Nearby(ctx context.Context, in NearbyInput) ([]NearbyQuest, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	radius := in.RadiusKm
	if radius == 0 {
		radius = s.cfg.Quest.DefaultRadiusKm
	}
	radius = math.Min(radius, MaxRadiusKm)

	category := model.CategoryAll
	if c := strings.ToLower(strings.TrimSpace(in.Category)); c != "" && c != string(model.CategoryAll) {
		category = model.Category(c)
		if !category.Valid() {
			return nil, validationErr("unknown category %q", in.Category)
		}
	}

	origin := geo.Point{Lat: in.Latitude, Lng: in.Longitude}
	minLat, maxLat := geo.LatitudeBand(origin, radius)

	rows, err := s.quests.ListOpenInLatitudeBand(ctx, s.clock.Now(), minLat, maxLat, category)
	if err != nil {
		return nil, fmt.Errorf("list open quests: %w", err)
	}
	return rankNearby(origin, radius, rows, s.cfg.Quest.NearbyLimit), nil
}

// rankNearby keeps rows within radiusKm of origin, orders them by exact distance
// (stable, so equal distances keep their input order) and truncates to limit.
func rankNearby(origin geo.Point, radiusKm float64, rows []repo.QuestSummaryRow, limit int) []NearbyQuest {
	type ranked struct {
		row  repo.QuestSummaryRow
		dist float64
	}
	kept := make([]ranked, 0, len(rows))
	for _, r := range rows {
		d := geo.HaversineKm(origin, geo.Point{Lat: r.Latitude, Lng: r.Longitude})
		if d <= radiusKm {
			kept = append(kept, ranked{row: r, dist: d})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].dist < kept[j].dist })
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	out := make([]NearbyQuest, len(kept))
	for i, k := range kept {
		out[i] = NearbyQuest{QuestSummaryRow: k.row, DistanceKm: math.Round(k.dist*1000) / 1000}
	}
	return out
}
