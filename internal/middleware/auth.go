package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"idcore/api/internal/service"
)

const (
	// ContextClaims holds the *domain.Claims of the verified access token.
	ContextClaims = "access_claims"
	// ContextUserID holds the authenticated user's id.
	ContextUserID = "user_id"
)

// BearerAuth guards the API surface. It verifies the Authorization
// header's access token, including the revocation-ledger check.
func BearerAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := auth.CheckAccessToken(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": userMessage(err)})
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.UserID())

		c.Next()
	}
}
