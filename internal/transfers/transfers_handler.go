package transfers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger/internal/ledger"
	"stockledger/pkg/models"
	"stockledger/pkg/security"
)

type TransferHandler struct {
	Service *TransferService
}

func NewHandler(service *TransferService) *TransferHandler {
	return &TransferHandler{Service: service}
}

func (h *TransferHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/stock/register", security.Authorize("user"), h.Register)
	router.POST("/stock/transfer", security.Authorize("user"), h.Transfer)
	router.POST("/stock/reclaim", security.Authorize("admin"), h.Reclaim)
}

func (h *TransferHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, err := h.Service.Register(c.Request.Context(), security.CurrentAccount(c), req)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *TransferHandler) Transfer(c *gin.Context) {
	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, err := h.Service.Transfer(c.Request.Context(), security.CurrentAccount(c), req)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *TransferHandler) Reclaim(c *gin.Context) {
	var req models.ReclaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, err := h.Service.Reclaim(c.Request.Context(), security.CurrentAccount(c), req)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// abortWithLedgerError maps the error taxonomy onto HTTP statuses. Every
// rejection reaches the caller as a distinguishable response, never a
// silently swallowed failure.
func abortWithLedgerError(c *gin.Context, err error) {
	var corrupt *ledger.CorruptLedgerError

	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid amount", "details": err.Error()})
	case errors.Is(err, ledger.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": err.Error()})
	case errors.Is(err, ledger.ErrUnknownAccount):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Unknown account", "details": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientBalance):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Insufficient balance", "details": err.Error()})
	case errors.Is(err, ledger.ErrTransferConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Concurrent modification, please retry", "details": err.Error()})
	case errors.Is(err, ledger.ErrIndeterminateTransfer):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Transfer outcome indeterminate", "details": err.Error()})
	case errors.As(err, &corrupt):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Ledger corruption detected", "details": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Operation failed", "details": err.Error()})
	}
}
