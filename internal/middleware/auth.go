// Package middleware provides authentication, logging, metrics, tracing and rate limiting
// middleware for the HTTP server.
package middleware

import (
	"strings"

	"croctop/internal/auth"
	"croctop/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier verifies a token of the given kind.
type TokenVerifier interface {
	Verify(token string, kind auth.TokenKind) (models.Identity, error)
}

// bearerToken returns the credential part of an "Authorization: <scheme> <token>" header.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// AuthRequired rejects requests without an access token (401) separately from
// requests whose token fails verification (403). On success the identity is
// stored in locals "userID" and "role".
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return models.RespondWithError(c, models.NewUnauthenticatedError("Authorization required"))
		}

		identity, err := verifier.Verify(token, auth.Access)
		if err != nil {
			return models.RespondWithError(c, models.NewInvalidTokenError())
		}

		c.Locals("userID", identity.UserID)
		c.Locals("role", identity.Role)
		c.SetUserContext(WithUserID(c.UserContext(), identity.UserID))

		return c.Next()
	}
}

// CurrentIdentity reads the identity stored by AuthRequired.
func CurrentIdentity(c *fiber.Ctx) (models.Identity, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return models.Identity{}, false
	}
	role, _ := c.Locals("role").(string)
	return models.Identity{UserID: userID, Role: role}, true
}
