package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"croctop/internal/auth"
	"croctop/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequired(t *testing.T) {
	tokens, err := auth.NewTokenService(
		"middleware-access-secret-0123456789",
		"middleware-refresh-secret-0123456789",
		"croctop-api", 0)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/test", AuthRequired(tokens), func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(identity)
	})

	identity := models.Identity{UserID: 123, Role: models.RoleNormal}
	access, err := tokens.IssueAccessToken(identity)
	require.NoError(t, err)
	refresh, err := tokens.IssueRefreshToken(identity)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedCode   string
	}{
		{"Happy Path", "Bearer " + access, http.StatusOK, ""},
		{"Missing Header", "", http.StatusUnauthorized, models.CodeUnauthenticated},
		{"Scheme Without Token", "Bearer", http.StatusUnauthorized, models.CodeUnauthenticated},
		{"Malformed Token", "Bearer malformed.token.here", http.StatusForbidden, models.CodeInvalidToken},
		{"Refresh Token As Access", "Bearer " + refresh, http.StatusForbidden, models.CodeInvalidToken},
		{"Basic Credentials", "Basic dXNlcjpwYXNz", http.StatusForbidden, models.CodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var got models.Identity
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
				assert.Equal(t, identity, got)
				return
			}

			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedCode, body.Code)
		})
	}
}
