package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/modules/service"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSweepService struct {
	mock.Mock
}

func (m *MockSweepService) ExpireDue(ctx context.Context) (*service.ExpireReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExpireReport), args.Error(1)
}

func (m *MockSweepService) PurgeStale(ctx context.Context) (*service.PurgeReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PurgeReport), args.Error(1)
}

// MockUserService implements service.UserService; only the methods the CLI uses are stubbed.
type MockUserService struct {
	service.UserService
	mock.Mock
}

func (m *MockUserService) CreateWithToken(ctx context.Context, username string) (*model.User, string, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockUserService) SetPremium(ctx context.Context, userID uuid.UUID, premium bool) error {
	return m.Called(ctx, userID, premium).Error(0)
}

func withContainer(t *testing.T, provide func(inj *do.Injector)) {
	t.Helper()
	orig := container
	container = func() *do.Injector {
		inj := do.New()
		provide(inj)
		return inj
	}
	t.Cleanup(func() { container = orig })
}

func withConfirm(t *testing.T, answer bool) *int {
	t.Helper()
	calls := 0
	orig := confirm
	confirm = func(string) (bool, error) {
		calls++
		return answer, nil
	}
	t.Cleanup(func() { confirm = orig })
	return &calls
}

func TestRunExpire(t *testing.T) {
	id := uuid.New()
	sweeps := &MockSweepService{}
	sweeps.On("ExpireDue", mock.Anything).Return(&service.ExpireReport{
		Expired: []repo.ExpiredQuest{{ID: id, Title: "Sunset run"}},
		Cleanup: &repo.CleanupCounts{Messages: 4, Participants: 2},
	}, nil)

	var out bytes.Buffer
	require.NoError(t, runExpire(context.Background(), &out, sweeps))
	assert.Contains(t, out.String(), "Expired 1 quest(s)")
	assert.Contains(t, out.String(), id.String())
	assert.Contains(t, out.String(), "removed 4 message(s) and 2 participant(s)")
}

func TestRunExpire_PartialFailure(t *testing.T) {
	sweeps := &MockSweepService{}
	sweeps.On("ExpireDue", mock.Anything).Return(&service.ExpireReport{
		Expired: []repo.ExpiredQuest{{ID: uuid.New(), Title: "a"}},
	}, errors.New("cleanup failed"))

	var out bytes.Buffer
	err := runExpire(context.Background(), &out, sweeps)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Expired 1 quest(s)")
	assert.Contains(t, out.String(), "cleanup failed")
}

func TestRunPurge(t *testing.T) {
	cutoff := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sweeps := &MockSweepService{}
	sweeps.On("PurgeStale", mock.Anything).Return(&service.PurgeReport{Cutoff: cutoff, Purged: 7}, nil)

	var out bytes.Buffer
	require.NoError(t, runPurge(context.Background(), &out, sweeps))
	assert.Contains(t, out.String(), "purged 7 quest(s) inactive before 2026-03-01T12:00:00Z")
}

func TestSweepCmd_Confirmation(t *testing.T) {
	sweeps := &MockSweepService{}
	sweeps.On("PurgeStale", mock.Anything).Return(&service.PurgeReport{Purged: 1}, nil).Once()
	withContainer(t, func(inj *do.Injector) {
		do.ProvideValue[service.SweepService](inj, sweeps)
	})

	t.Run("declined", func(t *testing.T) {
		calls := withConfirm(t, false)
		root := NewRootCmd()
		root.SetArgs([]string{"sweep", "purge"})
		root.SetOut(&bytes.Buffer{})
		require.NoError(t, root.Execute())
		assert.Equal(t, 1, *calls)
		sweeps.AssertNotCalled(t, "PurgeStale", mock.Anything)
	})

	t.Run("yes flag skips prompt", func(t *testing.T) {
		calls := withConfirm(t, false)
		root := NewRootCmd()
		var out bytes.Buffer
		root.SetArgs([]string{"sweep", "purge", "--yes"})
		root.SetOut(&out)
		require.NoError(t, root.Execute())
		assert.Equal(t, 0, *calls)
		assert.Contains(t, out.String(), "purged 1 quest(s)")
	})
	sweeps.AssertExpectations(t)
}

func TestUserCreateCmd(t *testing.T) {
	users := &MockUserService{}
	id := uuid.New()
	users.On("CreateWithToken", mock.Anything, "amani").Return(&model.User{ID: id, Username: "amani"}, "glt_secret", nil)
	withContainer(t, func(inj *do.Injector) {
		do.ProvideValue[service.UserService](inj, users)
	})

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetArgs([]string{"user", "create", "amani"})
	root.SetOut(&out)
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "created amani")
	assert.Contains(t, out.String(), "glt_secret")
	users.AssertExpectations(t)
}

func TestUserPremiumCmd(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		args    []string
		setup   func(*MockUserService)
		wantErr string
		wantOut string
	}{
		{
			name:    "enable",
			args:    []string{"user", "premium", id.String(), "--enable"},
			setup:   func(u *MockUserService) { u.On("SetPremium", mock.Anything, id, true).Return(nil) },
			wantOut: "premium granted",
		},
		{
			name:    "disable",
			args:    []string{"user", "premium", id.String(), "--disable"},
			setup:   func(u *MockUserService) { u.On("SetPremium", mock.Anything, id, false).Return(nil) },
			wantOut: "premium revoked",
		},
		{
			name:    "no flag",
			args:    []string{"user", "premium", id.String()},
			setup:   func(*MockUserService) {},
			wantErr: "exactly one of",
		},
		{
			name:    "bad id",
			args:    []string{"user", "premium", "nope", "--enable"},
			setup:   func(*MockUserService) {},
			wantErr: "invalid user id",
		},
		{
			name: "unknown user",
			args: []string{"user", "premium", id.String(), "--enable"},
			setup: func(u *MockUserService) {
				u.On("SetPremium", mock.Anything, id, true).Return(service.ErrNotFound)
			},
			wantErr: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &MockUserService{}
			tt.setup(users)
			withContainer(t, func(inj *do.Injector) {
				do.ProvideValue[service.UserService](inj, users)
			})

			root := NewRootCmd()
			var out bytes.Buffer
			root.SetArgs(tt.args)
			root.SetOut(&out)
			err := root.Execute()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.wantOut)
			users.AssertExpectations(t)
		})
	}
}

func TestFormatEvent(t *testing.T) {
	questID := uuid.New()
	body, err := sonic.Marshal(service.Event{
		Type:       "quest.joined",
		OccurredAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		QuestID:    &questID,
		Data:       map[string]any{"participants": 3},
	})
	require.NoError(t, err)

	line := formatEvent("quest.joined", body)
	assert.Contains(t, line, "15:04:05")
	assert.Contains(t, line, "quest.joined")
	assert.Contains(t, line, "quest="+questID.String())
	assert.Contains(t, line, `"participants":3`)
	assert.NotContains(t, line, "user=")

	assert.Contains(t, formatEvent("quest.left", []byte("not json")), "undecodable")
}

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetArgs([]string{"version"})
	root.SetOut(&out)
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "glitchctl version")
}
