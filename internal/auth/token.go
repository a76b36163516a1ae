package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/identity"
)

// TokenKind separates access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims carried by every token this service issues. Version must match
// identity.User.TokenVersion for the token to be honoured.
type Claims struct {
	Role    identity.Role `json:"role"`
	Kind    TokenKind     `json:"kind"`
	Version int           `json:"ver"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HS256 tokens.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService builds a TokenService.
func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token of the given kind for user.
func (s *TokenService) Issue(user identity.User, kind TokenKind, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:    user.Role,
		Kind:    kind,
		Version: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates signature, issuer and lifetime and returns the claims.
// Tokens whose expiry is not after their issue time are rejected.
func (s *TokenService) Parse(tokenString string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.New(apperr.KindUnauthorized, "token has expired")
		}
		return nil, apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	if !parsed.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	if !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid token lifetime")
	}
	if claims.Kind != kind {
		return nil, apperr.New(apperr.KindUnauthorized, "wrong token kind")
	}
	return claims, nil
}
