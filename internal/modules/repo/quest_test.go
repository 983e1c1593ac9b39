package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestQuest(t *testing.T, db *gorm.DB, creator uuid.UUID, createdAt time.Time, max int) *model.Quest {
	t.Helper()
	q := &model.Quest{
		ID:              uuid.New(),
		Title:           "Coffee Meetup",
		CreatorID:       creator,
		Latitude:        -1.2921,
		Longitude:       36.8219,
		Category:        model.CategoryFood,
		MaxParticipants: max,
		IsActive:        true,
		CreatedAt:       createdAt,
		ExpiresAt:       createdAt.Add(3 * time.Hour),
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

func TestQuestRepo_JoinCapacityRace(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	r := NewQuestRepo(db)
	ctx := context.Background()
	now := time.Now()

	creator := createTestUser(t, db, false)
	const capacity, joiners = 3, 10
	q := createTestQuest(t, db, creator.ID, now, capacity)

	users := make([]*model.User, joiners)
	for i := range users {
		users[i] = createTestUser(t, db, false)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		full      int
	)
	for _, u := range users {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := r.Join(ctx, q.ID, id, now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, ErrQuestFull):
				full++
			}
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, capacity, successes)
	assert.Equal(t, joiners-capacity, full)

	var count int64
	require.NoError(t, db.Model(&model.QuestParticipant{}).Where("quest_id = ?", q.ID).Count(&count).Error)
	assert.Equal(t, int64(capacity), count)
}

func TestQuestRepo_JoinRules(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	r := NewQuestRepo(db)
	ctx := context.Background()
	now := time.Now()

	creator := createTestUser(t, db, false)
	member := createTestUser(t, db, false)
	q := createTestQuest(t, db, creator.ID, now, 10)

	t.Run("creator cannot join", func(t *testing.T) {
		_, err := r.Join(ctx, q.ID, creator.ID, now)
		assert.ErrorIs(t, err, ErrCreatorJoin)
	})

	t.Run("duplicate join is a conflict", func(t *testing.T) {
		_, err := r.Join(ctx, q.ID, member.ID, now)
		require.NoError(t, err)
		_, err = r.Join(ctx, q.ID, member.ID, now)
		assert.ErrorIs(t, err, ErrAlreadyMember)

		var count int64
		db.Model(&model.QuestParticipant{}).Where("quest_id = ?", q.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("access kinds", func(t *testing.T) {
		a, err := r.Access(ctx, q.ID, creator.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AccessCreator, a)

		a, err = r.Access(ctx, q.ID, member.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AccessMember, a)

		a, err = r.Access(ctx, q.ID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, model.AccessNone, a)
	})

	t.Run("expired quest is unavailable", func(t *testing.T) {
		late := createTestUser(t, db, false)
		_, err := r.Join(ctx, q.ID, late.ID, q.ExpiresAt)
		assert.ErrorIs(t, err, ErrQuestUnavailable)
	})

	t.Run("missing quest is unavailable", func(t *testing.T) {
		_, err := r.Join(ctx, uuid.New(), member.ID, now)
		assert.ErrorIs(t, err, ErrQuestUnavailable)
	})

	t.Run("leave twice reports not a member", func(t *testing.T) {
		require.NoError(t, r.Leave(ctx, q.ID, member.ID, now))
		assert.ErrorIs(t, r.Leave(ctx, q.ID, member.ID, now), ErrNotMember)
	})

	t.Run("leave after expiry is a no-op", func(t *testing.T) {
		assert.NoError(t, r.Leave(ctx, q.ID, member.ID, q.ExpiresAt.Add(time.Second)))
		assert.NoError(t, r.Leave(ctx, uuid.New(), member.ID, now))
	})
}

func TestQuestRepo_CreateWithQuota(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	r := NewQuestRepo(db)
	ctx := context.Background()
	now := time.Now()

	free := createTestUser(t, db, false)
	premium := createTestUser(t, db, true)
	quota := Quota{Limit: 1, Since: now.Add(-24 * time.Hour)}

	newQuest := func(creator uuid.UUID) *model.Quest {
		return &model.Quest{
			Title: "Run club", CreatorID: creator, Latitude: 1, Longitude: 1,
			Category: model.CategorySports, MaxParticipants: 5, IsActive: true,
			CreatedAt: now, ExpiresAt: now.Add(3 * time.Hour),
		}
	}

	require.NoError(t, r.CreateWithQuota(ctx, newQuest(free.ID), quota))
	assert.ErrorIs(t, r.CreateWithQuota(ctx, newQuest(free.ID), quota), ErrQuotaExceeded)

	for i := 0; i < 3; i++ {
		require.NoError(t, r.CreateWithQuota(ctx, newQuest(premium.ID), quota))
	}

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, "id = ?", premium.ID).Error)
	assert.Equal(t, int64(3), reloaded.QuestCount)
}

func TestQuestRepo_ExpirySweepIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	r := NewQuestRepo(db)
	ctx := context.Background()
	now := time.Now()

	creator := createTestUser(t, db, false)
	member := createTestUser(t, db, false)

	expired := createTestQuest(t, db, creator.ID, now.Add(-4*time.Hour), 10)
	live := createTestQuest(t, db, creator.ID, now, 10)

	require.NoError(t, db.Create(&model.QuestParticipant{QuestID: expired.ID, UserID: member.ID, JoinedAt: now.Add(-3 * time.Hour)}).Error)
	require.NoError(t, db.Create(&model.ChatMessage{QuestID: expired.ID, SenderID: member.ID, Message: "hi", CreatedAt: now.Add(-3 * time.Hour)}).Error)
	require.NoError(t, db.Create(&model.Review{QuestID: expired.ID, UserID: member.ID, Score: 5, CreatedAt: now.Add(-3 * time.Hour)}).Error)
	_, err := r.Join(ctx, live.ID, member.ID, now)
	require.NoError(t, err)

	first, err := r.DeactivateExpired(ctx, now)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(first))
	for _, e := range first {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, expired.ID)
	assert.NotContains(t, ids, live.ID)

	counts, err := r.CleanupInactive(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts.Messages, int64(1))
	assert.GreaterOrEqual(t, counts.Participants, int64(1))

	second, err := r.DeactivateExpired(ctx, now)
	require.NoError(t, err)
	for _, e := range second {
		assert.NotEqual(t, expired.ID, e.ID)
	}

	var left int64
	db.Model(&model.QuestParticipant{}).Where("quest_id = ?", expired.ID).Count(&left)
	assert.Zero(t, left)
	db.Model(&model.QuestParticipant{}).Where("quest_id = ?", live.ID).Count(&left)
	assert.Equal(t, int64(1), left)

	var reviews int64
	db.Model(&model.Review{}).Where("quest_id = ?", expired.ID).Count(&reviews)
	assert.Equal(t, int64(1), reviews, "reviews survive until purge")

	// purge is bounded by the retention cutoff
	n, err := r.PurgeInactive(ctx, expired.ExpiresAt.Add(-time.Second))
	require.NoError(t, err)
	var still int64
	db.Model(&model.Quest{}).Where("id = ?", expired.ID).Count(&still)
	assert.Equal(t, int64(1), still)
	_ = n

	_, err = r.PurgeInactive(ctx, expired.ExpiresAt)
	require.NoError(t, err)
	db.Model(&model.Quest{}).Where("id = ?", expired.ID).Count(&still)
	assert.Zero(t, still)
	db.Model(&model.Review{}).Where("quest_id = ?", expired.ID).Count(&reviews)
	assert.Zero(t, reviews)
}

func TestQuestRepo_ListOpenInLatitudeBand(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	r := NewQuestRepo(db)
	ctx := context.Background()
	now := time.Now()

	creator := createTestUser(t, db, false)
	q := createTestQuest(t, db, creator.ID, now, 4)

	rows, err := r.ListOpenInLatitudeBand(ctx, now, -1.3, -1.28, model.CategoryAll)
	require.NoError(t, err)

	var found *QuestSummaryRow
	for i := range rows {
		if rows[i].ID == q.ID {
			found = &rows[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, creator.Username, found.CreatorUsername)
	assert.Zero(t, found.ParticipantCount)

	rows, err = r.ListOpenInLatitudeBand(ctx, now, -1.3, -1.28, model.CategoryMusic)
	require.NoError(t, err)
	for _, row := range rows {
		assert.NotEqual(t, q.ID, row.ID)
	}
}
