package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "pay-chain.backend/internal/domain/errors"
	"pay-chain.backend/internal/interfaces/http/response"
	"pay-chain.backend/pkg/jwt"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// AccountEmailKey is the context key for the authenticated account email
	AccountEmailKey = "accountEmail"
)

// AuthMiddleware validates a bearer session token and stores the
// subject email in the request context. Tokens issued for any other
// purpose are rejected here regardless of signature validity.
func AuthMiddleware(tokens *jwt.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			response.ErrorWithStatus(c, http.StatusUnauthorized, domainerrors.CodeUnauthorized, "Authorization header is required")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.ErrorWithStatus(c, http.StatusUnauthorized, domainerrors.CodeUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := tokens.Verify(tokenString, jwt.PurposeSession)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusUnauthorized, domainerrors.CodeInvalidToken, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(AccountEmailKey, claims.Subject)
		c.Next()
	}
}

// GetAccountEmail gets the authenticated account email from context
func GetAccountEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(AccountEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}
