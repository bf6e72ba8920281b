package middleware

import (
	"errors"
	"strings"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	CookieAccessToken = "accessToken"

	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// AuthMiddleware requires a valid token in the Authorization header or the
// accessToken cookie and stores the caller's identity on the context.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			Abort(c, err)
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				Abort(c, apperror.Auth("Token has expired"))
				return
			}
			Abort(c, apperror.Auth("Invalid access token"))
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// OptionalAuthMiddleware records the caller's identity when a valid token is
// present and lets anonymous requests through otherwise.
func OptionalAuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err == nil {
			if claims, err := tokens.Parse(tokenString); err == nil {
				c.Set(ctxUserID, claims.UserID)
				c.Set(ctxUsername, claims.Username)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", apperror.Auth("Invalid authorization format")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie, err := c.Cookie(CookieAccessToken); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", apperror.Auth("Unauthorized request")
}

// UserID returns the authenticated user's ID, or "" on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// Username returns the authenticated user's username.
func Username(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
