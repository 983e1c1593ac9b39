package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/pkg/utils/secrets"
	"github.com/glitch-app/glitch/internal/pkg/utils/tokens"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureSeedUserExists creates or re-keys the seed user so auth.seed_user_token
// authenticates as auth.seed_username. It does nothing unless both the token and the
// pepper are configured.
func EnsureSeedUserExists(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	token := cfg.Auth.SeedUserToken
	pepper := cfg.Auth.SecretPepper

	if token == "" || pepper == "" {
		return nil
	}
	secret, ok := tokens.ParseToken(token, cfg.Auth.TokenPrefix)
	if !ok {
		return fmt.Errorf("auth.seed_user_token must start with %q", cfg.Auth.TokenPrefix)
	}

	lookup := tokens.HMAC256Hex(pepper, secret)
	phc, err := secrets.HashSecret(secret, pepper)
	if err != nil {
		return err
	}

	var seed model.User
	err = db.WithContext(ctx).Where("username = ?", cfg.Auth.SeedUsername).First(&seed).Error

	switch {
	case err == nil:
		updates := map[string]interface{}{
			"token_hmac":     lookup,
			"token_hash_phc": phc,
		}
		if uErr := db.WithContext(ctx).Model(&seed).Updates(updates).Error; uErr != nil {
			return uErr
		}
		log.Sugar().Infow("seed user exists", "user", seed.ID)
		return nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		newU := model.User{
			Username:     cfg.Auth.SeedUsername,
			Level:        1,
			IsPremium:    true,
			TokenHMAC:    &lookup,
			TokenHashPHC: &phc,
		}
		if cErr := db.WithContext(ctx).Create(&newU).Error; cErr != nil {
			return cErr
		}
		log.Sugar().Infow("seed user created", "user", newU.ID)
		return nil

	default:
		return err
	}
}
