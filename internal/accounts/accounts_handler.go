package accounts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger/internal/ledger"
	"stockledger/pkg/models"
	"stockledger/pkg/security"
)

type AccountsHandler struct {
	Service *AccountService
}

func NewHandler(service *AccountService) *AccountsHandler {
	return &AccountsHandler{Service: service}
}

func (h *AccountsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/accounts", security.Authorize("admin"), h.CreateAccount)
	router.PATCH("/accounts/:id", security.Authorize("admin"), h.UpdateAccount)
	router.GET("/accounts", security.Authorize("admin"), h.GetAccountList)
}

func (h *AccountsHandler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor := security.CurrentAccount(c)

	account, err := h.Service.Create(c.Request.Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": err.Error()})
		case errors.Is(err, ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Account already exists", "details": err.Error()})
		case errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role", "details": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountsHandler) UpdateAccount(c *gin.Context) {
	var req models.UpdateAccountRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor := security.CurrentAccount(c)

	account, err := h.Service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrUnknownAccount):
			c.JSON(http.StatusNotFound, gin.H{"error": "Unable to find account", "details": err.Error()})
		case errors.Is(err, ledger.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": err.Error()})
		case errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role", "details": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountsHandler) GetAccountList(c *gin.Context) {
	accounts, err := h.Service.repo.GetAccounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not obtain list of accounts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, accounts)
}
