package middleware

// identity.go holds the context keys JWTAuth fills in and the accessors
// handlers and other middleware use to read them.

import "github.com/labstack/echo/v4"

const (
	ctxUserID  = "user_id"
	ctxIsAdmin = "is_admin"
)

// UserID returns the authenticated user's id, or "" on public routes.
func UserID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok {
		return s
	}
	return ""
}

// IsAdmin reports whether the access token carried the admin flag.
func IsAdmin(c echo.Context) bool {
	b, _ := c.Get(ctxIsAdmin).(bool)
	return b
}

// currentUserID is UserID with "anon" for unauthenticated requests, used
// in rate-limit keys.
func currentUserID(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
