// Package authn resolves bearer credentials to user ids.
package authn

import (
	"context"
	"errors"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/google/uuid"
)

// ErrUnauthenticated means the credential is malformed, unknown or revoked.
var ErrUnauthenticated = errors.New("unauthenticated")

// Provider is satisfied by every authentication backend.
type Provider interface {
	Authenticate(ctx context.Context, bearer string) (uuid.UUID, error)
}

// New picks the provider named by auth.provider.
func New(cfg *config.Config, users repo.UserRepo) (Provider, error) {
	switch cfg.Auth.Provider {
	case "supabase":
		return NewSupabaseProvider(cfg, users)
	default:
		return NewTokenProvider(cfg, users)
	}
}
