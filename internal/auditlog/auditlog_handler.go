package auditlog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockledger/pkg/security"
)

const defaultRecent = 50

type AuditHandler struct {
	Log *AuditLog
}

func NewHandler(log *AuditLog) *AuditHandler {
	return &AuditHandler{Log: log}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit", security.Authorize("user"), h.GetRecent)
}

func (h *AuditHandler) GetRecent(c *gin.Context) {
	n := defaultRecent
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid value for n"})
			return
		}
		n = parsed
	}

	entries, err := h.Log.Recent(c.Request.Context(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read audit log", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}
