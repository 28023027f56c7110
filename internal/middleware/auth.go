package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"textrecords/internal/models"
)

// Session keys shared with the auth handlers.
const (
	SessionUserSub       = "user_sub"
	SessionRedirectAfter = "redirect_after_login"
)

// UserLookup resolves a session subject to a user.
type UserLookup interface {
	GetUserBySub(ctx context.Context, sub string) (*models.User, error)
}

// AuthMiddleware handles user authentication via sessions.
type AuthMiddleware struct {
	users UserLookup
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// CurrentUser returns the user loaded by the middleware, or nil.
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// loadUser resolves the session user. A stale subject clears the session.
func (m *AuthMiddleware) loadUser(c fiber.Ctx) *models.User {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}

	sub, ok := sess.Get(SessionUserSub).(string)
	if !ok || sub == "" {
		return nil
	}

	user, err := m.users.GetUserBySub(c.Context(), sub)
	if err != nil {
		sess.Delete(SessionUserSub)
		return nil
	}

	c.Locals("user", user)
	return user
}

// RequireAuth ensures the user is authenticated, redirecting to /login if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	if m.loadUser(c) == nil {
		if sess := session.FromContext(c); sess != nil && c.Method() == fiber.MethodGet {
			sess.Set(SessionRedirectAfter, c.OriginalURL())
		}
		return c.Redirect().To("/login")
	}
	return c.Next()
}

// RequireAPIAuth ensures the user is authenticated, answering 401 JSON if not.
func (m *AuthMiddleware) RequireAPIAuth(c fiber.Ctx) error {
	if m.loadUser(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "authentication required",
		})
	}
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	m.loadUser(c)
	return c.Next()
}

// SafeRedirect returns target if it is a local path, otherwise "/".
func SafeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
