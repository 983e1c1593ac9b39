package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/pkg/utils/secrets"
	"github.com/glitch-app/glitch/internal/pkg/utils/tokens"
	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,50}$`)

type UserService interface {
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	Profile(ctx context.Context, viewerID, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*model.User, error)
	Follow(ctx context.Context, followerID, targetID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error
	SetPushToken(ctx context.Context, userID uuid.UUID, token string) error
	SetPremium(ctx context.Context, userID uuid.UUID, premium bool) error
	CreateWithToken(ctx context.Context, username string) (*model.User, string, error)
}

type Profile struct {
	*model.User
	Followers   int64 `json:"followers"`
	Following   int64 `json:"following"`
	IsFollowing bool  `json:"is_following"`
	IsSelf      bool  `json:"is_self"`
}

type UpdateProfileInput struct {
	AvatarURL *string        `validate:"omitempty,url,max=2048"`
	Bio       *string        `validate:"omitempty,max=500"`
	Settings  map[string]any `validate:"omitempty"`
}

type userService struct {
	users repo.UserRepo
	cfg   *config.Config
}

func NewUserService(users repo.UserRepo, cfg *config.Config) UserService {
	return &userService{users: users, cfg: cfg}
}

func (s *userService) get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFoundErr("user")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *userService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.get(ctx, userID)
}

func (s *userService) Profile(ctx context.Context, viewerID, userID uuid.UUID) (*Profile, error) {
	u, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.users.FollowCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("follow counts: %w", err)
	}
	p := &Profile{User: u, Followers: counts.Followers, Following: counts.Following, IsSelf: viewerID == userID}
	if !p.IsSelf {
		if p.IsFollowing, err = s.users.IsFollowing(ctx, viewerID, userID); err != nil {
			return nil, fmt.Errorf("follow state: %w", err)
		}
	}
	return p, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*model.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.users.UpdateProfile(ctx, userID, repo.ProfileUpdate{
		AvatarURL: in.AvatarURL,
		Bio:       in.Bio,
		Settings:  in.Settings,
	})
	if err != nil {
		return nil, translateQuestErr(err)
	}
	return u, nil
}

func (s *userService) Follow(ctx context.Context, followerID, targetID uuid.UUID) error {
	if followerID == targetID {
		return validationErr("you cannot follow yourself")
	}
	if err := s.users.Follow(ctx, followerID, targetID); err != nil {
		if repo.IsNotFound(err) {
			return notFoundErr("user")
		}
		return fmt.Errorf("follow: %w", err)
	}
	return nil
}

func (s *userService) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error {
	removed, err := s.users.Unfollow(ctx, followerID, targetID)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	if !removed {
		return notFoundErr("not following this user")
	}
	return nil
}

func (s *userService) SetPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return validationErr("push token is required")
	}
	return translateQuestErr(s.users.SetPushToken(ctx, userID, token))
}

func (s *userService) SetPremium(ctx context.Context, userID uuid.UUID, premium bool) error {
	return translateQuestErr(s.users.SetPremium(ctx, userID, premium))
}

// CreateWithToken creates a user and returns the bearer token it authenticates with.
// Only the HMAC lookup key and an argon2 hash of the secret are stored.
func (s *userService) CreateWithToken(ctx context.Context, username string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, "", validationErr("username must be 3-50 letters, digits, '_' or '.'")
	}
	pepper := s.cfg.Auth.SecretPepper
	if pepper == "" {
		return nil, "", errors.New("auth.secret_pepper must be set to issue tokens")
	}

	secret, token, err := tokens.NewSecret(s.cfg.Auth.TokenPrefix)
	if err != nil {
		return nil, "", err
	}
	phc, err := secrets.HashSecret(secret, pepper)
	if err != nil {
		return nil, "", err
	}
	lookup := tokens.HMAC256Hex(pepper, secret)

	u := &model.User{
		Username:     username,
		Level:        1,
		TokenHMAC:    &lookup,
		TokenHashPHC: &phc,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
		return nil, "", err
	}
	return u, token, nil
}
