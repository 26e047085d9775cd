// Package balances serves the read side: reconciled balances for display.
// This path tolerates a snapshot a few seconds old; mutating paths in the
// transfers package never use it.
package balances

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"stockledger/internal/ledger"
	"stockledger/pkg/models"
	"stockledger/pkg/security"
)

type BalancesHandler struct {
	Loader *ledger.Loader
}

func NewHandler(loader *ledger.Loader) *BalancesHandler {
	return &BalancesHandler{Loader: loader}
}

func (h *BalancesHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/balances", security.Authorize("user"), h.GetBalances)
}

// GetBalances lists balances, optionally filtered by owner. Any account
// may view all balances; acting on them is gated in the transfer service.
func (h *BalancesHandler) GetBalances(c *gin.Context) {
	snapshot, err := h.Loader.Cached(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load balances", "details": err.Error()})
		return
	}

	ownerFilter := c.Query("owner")

	balances := make([]models.Balance, 0, len(snapshot.Balances))
	for _, balance := range snapshot.Balances {
		if ownerFilter != "" && balance.Owner != ownerFilter {
			continue
		}
		balances = append(balances, *balance)
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Owner != balances[j].Owner {
			return balances[i].Owner < balances[j].Owner
		}
		if balances[i].Item != balances[j].Item {
			return balances[i].Item < balances[j].Item
		}
		return balances[i].Spec < balances[j].Spec
	})

	c.JSON(http.StatusOK, balances)
}
