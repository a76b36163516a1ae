package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/auth"
	"github.com/talentledger/talentledger/internal/identity"
)

const userLocal = "user"

// JWTAuth validates bearer access tokens and reloads the user they name.
// Tokens carrying an outdated token version are rejected. The public view of
// the user is stored for downstream handlers.
func JWTAuth(tokens *auth.TokenService, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return apperr.New(apperr.KindUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := tokens.Parse(tokenStr, auth.KindAccess)
		if err != nil {
			return err
		}

		user, err := repo.FindByID(c.UserContext(), claims.Subject)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.New(apperr.KindUnauthorized, "user not found")
			}
			return apperr.Internal(err)
		}
		if user.TokenVersion != claims.Version {
			return auth.ErrTokenRevoked
		}

		c.Locals(userLocal, user.Public())
		return c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed. It must run after JWTAuth.
func RequireRoles(roles ...identity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return apperr.New(apperr.KindForbidden, "insufficient role")
	}
}

// CurrentUser returns the authenticated user stored by JWTAuth.
func CurrentUser(c *fiber.Ctx) (identity.PublicUser, error) {
	user, ok := c.Locals(userLocal).(identity.PublicUser)
	if !ok || user.ID == "" {
		return identity.PublicUser{}, apperr.New(apperr.KindUnauthorized, "unauthorized")
	}
	return user, nil
}
