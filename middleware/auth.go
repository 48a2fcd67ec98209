// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"smartparking/models"
	"smartparking/utils"

	"github.com/gin-gonic/gin"
)

// UserLookup resolves the current role of a token subject.
type UserLookup interface {
	GetByID(id string) (*models.User, error)
}

// JWTAuthMiddleware validates the bearer token and sets "userID" and "role".
// With a non-nil lookup the stored role overrides the token claim.
func JWTAuthMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, role, err := utils.ExtractClaimsFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if users != nil {
			u, err := users.GetByID(userID)
			if err != nil || u == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token mismatch or user not found"})
				return
			}
			role = u.Role
		}
		if role == "" {
			role = models.RoleUser
		}

		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}
