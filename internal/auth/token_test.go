package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/identity"
)

var testUser = identity.User{ID: "6f2c1b8e-8f3e-4a51-9a43-1f1f3b6c2d10", Email: "a@b.c", Role: identity.RoleUser}

func TestIssueAndParse(t *testing.T) {
	svc := NewTokenService("secret", "talentledger")

	token, exp, err := svc.Issue(testUser, KindAccess, time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := svc.Parse(token, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.Subject)
	assert.Equal(t, identity.RoleUser, claims.Role)
}

func TestParseRejectsWrongKind(t *testing.T) {
	svc := NewTokenService("secret", "talentledger")
	token, _, err := svc.Issue(testUser, KindRefresh, time.Minute)
	require.NoError(t, err)

	_, err = svc.Parse(token, KindAccess)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestParseRejectsForeignSignatureAndIssuer(t *testing.T) {
	issuer := NewTokenService("secret", "talentledger")
	token, _, err := issuer.Issue(testUser, KindAccess, time.Minute)
	require.NoError(t, err)

	_, err = NewTokenService("other-secret", "talentledger").Parse(token, KindAccess)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = NewTokenService("secret", "someone-else").Parse(token, KindAccess)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestParseRejectsNonPositiveLifetime(t *testing.T) {
	svc := NewTokenService("secret", "talentledger")
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: identity.RoleUser,
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testUser.ID,
			Issuer:    "talentledger",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Parse(signed, KindAccess)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestParseRejectsMissingExpiry(t *testing.T) {
	svc := NewTokenService("secret", "talentledger")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  testUser.ID,
			Issuer:   "talentledger",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Parse(signed, KindAccess)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}
