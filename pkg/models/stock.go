package models

// SentinelItem marks the placeholder row appended when an account is
// created. It registers the owner's presence in the inventory table and
// is excluded from balances and item listings.
const SentinelItem = "__account__"

// StockEntry is a raw inventory row as persisted. Several rows may share
// the same (owner, item, spec) key; that is a storage artifact of
// append-only writes, not a domain concept.
type StockEntry struct {
	RowIndex int    `json:"-"`
	Owner    string `json:"owner"`
	Item     string `json:"item"`
	Spec     string `json:"spec"`
	Quantity int    `json:"quantity"`
}

// BalanceKey identifies one reconciled balance.
type BalanceKey struct {
	Owner string `json:"owner"`
	Item  string `json:"item"`
	Spec  string `json:"spec"`
}

// Balance is the canonical, derived quantity for one key. Rows lists the
// indices of the raw entries backing it, in store order; mutations must
// target those rows, never the abstract sum.
type Balance struct {
	BalanceKey
	Quantity int   `json:"quantity"`
	Rows     []int `json:"-"`
}

type RegisterRequest struct {
	Owner    string `json:"owner" binding:"required"`
	Item     string `json:"item" binding:"required"`
	Spec     string `json:"spec"`
	Quantity int    `json:"quantity" binding:"required"`
}

type TransferRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Item   string `json:"item" binding:"required"`
	Spec   string `json:"spec"`
	Amount int    `json:"amount" binding:"required"`
}

type ReclaimRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to"`
	Item   string `json:"item" binding:"required"`
	Spec   string `json:"spec"`
	Amount int    `json:"amount" binding:"required"`
}
