package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/pkg/utils/secrets"
	"github.com/glitch-app/glitch/internal/pkg/utils/tokens"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type cachedUser struct {
	userID   uuid.UUID
	cachedAt time.Time
}

// TokenProvider authenticates "<prefix><secret>" bearer tokens issued by
// UserService.CreateWithToken. Users are looked up by the HMAC of the secret and,
// when enabled, the secret is verified against the stored argon2 hash. Successful
// lookups are cached by HMAC for auth.cache_ttl.
type TokenProvider struct {
	users repo.UserRepo
	cfg   *config.Config
	cache *lru.Cache
	clock clockwork.Clock
}

func NewTokenProvider(cfg *config.Config, users repo.UserRepo) (*TokenProvider, error) {
	if cfg.Auth.SecretPepper == "" {
		return nil, errors.New("auth.secret_pepper is required for the token provider")
	}
	size := cfg.Auth.CacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("token cache: %w", err)
	}
	return &TokenProvider{users: users, cfg: cfg, cache: cache, clock: clockwork.NewRealClock()}, nil
}

func (p *TokenProvider) Authenticate(ctx context.Context, bearer string) (uuid.UUID, error) {
	ctx, span := otel.Tracer("authn").Start(ctx, "authn.token")
	defer span.End()

	secret, ok := tokens.ParseToken(bearer, p.cfg.Auth.TokenPrefix)
	if !ok {
		span.SetAttributes(attribute.Bool("authenticated", false))
		return uuid.Nil, ErrUnauthenticated
	}
	lookup := tokens.HMAC256Hex(p.cfg.Auth.SecretPepper, secret)

	if v, ok := p.cache.Get(lookup); ok {
		if c, ok := v.(cachedUser); ok && p.clock.Since(c.cachedAt) < p.cfg.Auth.CacheTTL {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return c.userID, nil
		}
		p.cache.Remove(lookup)
	}

	u, err := p.users.GetByTokenHMAC(ctx, lookup)
	if err != nil {
		if repo.IsNotFound(err) {
			span.SetAttributes(attribute.Bool("authenticated", false))
			return uuid.Nil, ErrUnauthenticated
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "user lookup failed")
		return uuid.Nil, fmt.Errorf("lookup token: %w", err)
	}

	if p.cfg.Auth.EnableArgon2Verification {
		if u.TokenHashPHC == nil {
			return uuid.Nil, ErrUnauthenticated
		}
		pass, err := secrets.VerifySecret(secret, p.cfg.Auth.SecretPepper, *u.TokenHashPHC)
		if err != nil || !pass {
			span.SetAttributes(attribute.Bool("authenticated", false))
			return uuid.Nil, ErrUnauthenticated
		}
	}

	if p.cfg.Auth.CacheTTL > 0 {
		p.cache.Add(lookup, cachedUser{userID: u.ID, cachedAt: p.clock.Now()})
	}
	span.SetAttributes(attribute.Bool("authenticated", true), attribute.String("user_id", u.ID.String()))
	return u.ID, nil
}
