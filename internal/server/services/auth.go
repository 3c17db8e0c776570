package services

import (
	"context"
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/common"
	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
	"github.com/bomin1134/gb-ud-portal/internal/server/auth"
	"github.com/bomin1134/gb-ud-portal/internal/server/config"
)

type LoginResult struct {
	AccessToken string         `json:"accessToken"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	User        directory.User `json:"user"`
}

// AuthService checks credentials against the roster and issues access tokens.
type AuthService struct {
	directory                   *directory.Directory
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	log                         logging.Logger
	now                         func() time.Time
}

func NewAuthService(dir *directory.Directory, log logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		directory:                   dir,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		log:                         log.With("module", "auth"),
		now:                         time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, id, password string) (*LoginResult, error) {
	u, err := s.directory.Authenticate(id, password)
	if err != nil {
		s.log.Info(ctx, "login rejected", "user", id)
		return nil, err
	}

	token, err := auth.GenerateToken(u, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "login", "user", u.ID, "role", u.Role)
	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   s.now().Add(s.accessTokenValidityDuration),
		User:        u,
	}, nil
}

// Verify resolves an access token to its user. Accounts removed from the
// roster after the token was issued are rejected.
func (s *AuthService) Verify(token string) (directory.User, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return directory.User{}, err
	}
	u, ok := s.directory.Lookup(claims.UserID)
	if !ok {
		return directory.User{}, common.ErrorUnauthorized
	}
	return u, nil
}
