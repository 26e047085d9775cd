package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stockledger/internal/rate_limiter"
)

type LoginHandler struct {
	source      AccountSource
	rateLimiter *rate_limiter.RateLimiter
}

func NewLoginHandler(source AccountSource) *LoginHandler {
	return &LoginHandler{
		source:      source,
		rateLimiter: rate_limiter.NewRateLimiter(10, 5*time.Minute),
	}
}

func (l *LoginHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/auth", l.Login())
}

func (l *LoginHandler) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.GetHeader("X-Forwarded-For")
		if clientIP == "" {
			clientIP = c.GetHeader("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = c.ClientIP()
		}
		if strings.Contains(clientIP, ",") {
			clientIP = strings.Split(clientIP, ",")[0]
		}

		if !l.rateLimiter.IsAllowed(clientIP) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":    "Too many login attempts, try again later",
				"reset_at": time.Now().Add(5 * time.Minute).Format(time.RFC3339),
			})
			return
		}

		var req struct {
			ID         string `json:"id" binding:"required"`
			Credential string `json:"credential" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		account, err := AuthenticateAccount(c.Request.Context(), req.ID, req.Credential, l.source)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid account or credential"})
			return
		}

		token, err := GenerateJWT(account.ID, account.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
