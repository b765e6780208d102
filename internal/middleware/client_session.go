package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/getmentor/rating-api/internal/models"
	"github.com/getmentor/rating-api/pkg/jwt"
)

const (
	// ClientSessionContextKey is the key used to store session in context
	ClientSessionContextKey = "client_session"

	bearerPrefix = "Bearer "
)

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type")
)

// ClientSessionMiddleware validates the bearer token and adds the client session to context
func ClientSessionMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			_ = c.Error(fmt.Errorf("missing bearer token")) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokenManager.ValidateToken(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid session token: %w", err)) //nolint:errcheck

			if errors.Is(err, jwt.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			}
			c.Abort()
			return
		}

		session := &models.ClientSession{
			ClientID:  claims.ClientID,
			Name:      claims.Name,
			ExpiresAt: claims.ExpiresAt.Unix(),
		}

		c.Set(ClientSessionContextKey, session)
		c.Next()
	}
}

// GetClientSession extracts session from context
func GetClientSession(c *gin.Context) (*models.ClientSession, error) {
	val, exists := c.Get(ClientSessionContextKey)
	if !exists {
		return nil, ErrSessionNotFound
	}

	session, ok := val.(*models.ClientSession)
	if !ok {
		return nil, ErrInvalidSession
	}

	return session, nil
}
