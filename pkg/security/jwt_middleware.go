package security

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"stockledger/pkg/models"
	"stockledger/pkg/roles"
)

// JWTMiddleware validates the bearer token and stores the account claims
// on the request context.
func JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return secretKey(), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims := token.Claims.(jwt.MapClaims)
		c.Set("accountID", claims["accountID"])
		c.Set("role", claims["role"])
		c.Next()
	}
}

// Authorize ensures the account has the required role. This is the route
// gate; the services re-check the same rules so they hold when invoked
// programmatically.
func Authorize(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
			c.Abort()
			return
		}
		accountRole, ok := role.(string)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid role format"})
			c.Abort()
			return
		}

		if !roles.Role(requiredRole).IsValid() || !roles.Role(accountRole).IsValid() ||
			!roles.Role(accountRole).HasPermission(roles.Role(requiredRole)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentAccount rebuilds the acting account from the validated claims.
func CurrentAccount(c *gin.Context) models.Account {
	account := models.Account{}
	if id, ok := c.Get("accountID"); ok {
		account.ID, _ = id.(string)
	}
	if role, ok := c.Get("role"); ok {
		account.Role, _ = role.(string)
	}
	return account
}
