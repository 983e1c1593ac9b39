package authn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jonboulle/clockwork"
	"github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var usernameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.]+`)

// SupabaseProvider accepts Supabase access tokens. The Supabase user id doubles as
// the local user id; a local user row is created on first sight.
type SupabaseProvider struct {
	users repo.UserRepo
	cfg   *config.Config
	fetch func(token string) (*types.UserResponse, error)
	cache *lru.Cache
	clock clockwork.Clock
}

func NewSupabaseProvider(cfg *config.Config, users repo.UserRepo) (*SupabaseProvider, error) {
	if cfg.Auth.SupabaseProjectRef == "" || cfg.Auth.SupabaseAPIKey == "" {
		return nil, errors.New("auth.supabase_project_ref and auth.supabase_api_key are required")
	}
	client := auth.New(cfg.Auth.SupabaseProjectRef, cfg.Auth.SupabaseAPIKey).WithClient(newHTTPClient())
	size := cfg.Auth.CacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("supabase cache: %w", err)
	}
	return &SupabaseProvider{
		users: users,
		cfg:   cfg,
		fetch: func(token string) (*types.UserResponse, error) {
			return client.WithToken(token).GetUser()
		},
		cache: cache,
		clock: clockwork.NewRealClock(),
	}, nil
}

// newHTTPClient traces calls to the Supabase auth API.
func newHTTPClient() http.Client {
	return http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func (p *SupabaseProvider) Authenticate(ctx context.Context, bearer string) (uuid.UUID, error) {
	if bearer == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	if v, ok := p.cache.Get(bearer); ok {
		if c, ok := v.(cachedUser); ok && p.clock.Since(c.cachedAt) < p.cfg.Auth.CacheTTL {
			return c.userID, nil
		}
		p.cache.Remove(bearer)
	}

	resp, err := p.fetch(bearer)
	if err != nil || resp == nil || resp.ID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}

	if err := p.ensureUser(ctx, resp); err != nil {
		return uuid.Nil, err
	}
	if p.cfg.Auth.CacheTTL > 0 {
		p.cache.Add(bearer, cachedUser{userID: resp.ID, cachedAt: p.clock.Now()})
	}
	return resp.ID, nil
}

func (p *SupabaseProvider) ensureUser(ctx context.Context, resp *types.UserResponse) error {
	_, err := p.users.GetByID(ctx, resp.ID)
	if err == nil {
		return nil
	}
	if !repo.IsNotFound(err) {
		return fmt.Errorf("load user: %w", err)
	}

	u := &model.User{ID: resp.ID, Username: usernameFor(resp), Level: 1}
	if err := p.users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// lost a race with a parallel first request, or the username is taken
			if _, getErr := p.users.GetByID(ctx, resp.ID); getErr == nil {
				return nil
			}
			u.Username = usernameFor(resp) + "_" + resp.ID.String()[:8]
			if err := p.users.Create(ctx, u); err != nil && !errors.Is(err, repo.ErrDuplicate) {
				return fmt.Errorf("create user: %w", err)
			}
			return nil
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// usernameFor prefers user_metadata.username, then the email local part.
func usernameFor(resp *types.UserResponse) string {
	name := ""
	if v, ok := resp.UserMetadata["username"].(string); ok {
		name = v
	}
	if name == "" {
		name, _, _ = strings.Cut(resp.Email, "@")
	}
	name = usernameUnsafe.ReplaceAllString(name, "_")
	if len(name) > 40 {
		name = name[:40]
	}
	if len(name) < 3 {
		name = "user_" + resp.ID.String()[:8]
	}
	return name
}
