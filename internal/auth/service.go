package auth

import (
	"context"
	"time"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/config"
	"github.com/talentledger/talentledger/internal/identity"
)

// ErrTokenRevoked rejects tokens issued before the user's last logout.
var ErrTokenRevoked = apperr.New(apperr.KindUnauthorized, "token revoked")

// Service issues and refreshes token pairs.
type Service struct {
	tokens     *TokenService
	users      *identity.Service
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService builds an auth service.
func NewService(cfg config.Config, tokens *TokenService, users *identity.Service) *Service {
	return &Service{tokens: tokens, users: users, accessTTL: cfg.AccessTokenTTL, refreshTTL: cfg.RefreshTokenTTL}
}

// TokenPair is returned by Login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login validates credentials and issues tokens.
func (s *Service) Login(ctx context.Context, creds identity.Credentials) (identity.User, TokenPair, error) {
	user, err := s.users.Authenticate(ctx, creds)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}
	access, _, err := s.tokens.Issue(user, KindAccess, s.accessTTL)
	if err != nil {
		return identity.User{}, TokenPair{}, apperr.Internal(err)
	}
	refresh, _, err := s.tokens.Issue(user, KindRefresh, s.refreshTTL)
	if err != nil {
		return identity.User{}, TokenPair{}, apperr.Internal(err)
	}
	return user, TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.accessTTL.Seconds())}, nil
}

// Refresh verifies the refresh token and returns a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := s.tokens.Parse(refreshToken, KindRefresh)
	if err != nil {
		return "", 0, err
	}
	user, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", 0, apperr.New(apperr.KindUnauthorized, "user not found")
		}
		return "", 0, err
	}
	if user.TokenVersion != claims.Version {
		return "", 0, ErrTokenRevoked
	}
	access, _, err := s.tokens.Issue(user, KindAccess, s.accessTTL)
	if err != nil {
		return "", 0, apperr.Internal(err)
	}
	return access, int64(s.accessTTL.Seconds()), nil
}

// Logout revokes every access and refresh token issued to userID.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.users.RevokeTokens(ctx, userID)
}
