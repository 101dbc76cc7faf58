package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/heartletter/letter_api/shared"
)

type TokenVerifier interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
	VerifyToken(token string) (userID string, role string, err error)
}

// RequiredAuth rejects requests without a valid bearer token and stores the
// caller's id and role in the request locals.
func RequiredAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := verifier.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
		}

		userID, role, err := verifier.VerifyToken(token)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if userID == "" {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, userID)
		c.Locals(shared.UserRole, role)
		return c.Next()
	}
}

// RequireRole must run after RequiredAuth.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if got, _ := c.Locals(shared.UserRole).(string); got != role {
			return shared.ResponseForbidden(c)
		}
		return c.Next()
	}
}

func CurrentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(shared.UserID).(string)
	return userID
}
