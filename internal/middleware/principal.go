package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserIDHeader carries the authenticated subject set by the API gateway.
// Authentication itself happens upstream; this middleware only validates and
// propagates the identity.
const UserIDHeader = "X-User-ID"

// userIDContextKey is the echo context key holding the caller's user ID
const userIDContextKey = "user_id"

// Principal returns an Echo middleware that requires a valid user ID header
// and stores it in the request context.
func Principal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(UserIDHeader)
			if raw == "" {
				return unauthorizedError(c, "Missing user identity")
			}
			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				return unauthorizedError(c, "Invalid user identity")
			}
			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// GetUserID returns the authenticated user ID from the context, or uuid.Nil
// if the request was not authenticated.
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Get(userIDContextKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
