package models

import "time"

const (
	ActionRegister    = "register"
	ActionTransferOut = "transfer_out"
	ActionTransferIn  = "transfer_in"
	ActionReclaim     = "reclaim"
)

// AuditEntry is a write-once record of a balance mutation. Ref correlates
// the out/in pair of a single transfer; insertion order is the only
// ordering guarantee, wall-clock timestamps may collide.
type AuditEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Actor        string    `json:"actor"`
	Action       string    `json:"action"`
	Item         string    `json:"item"`
	Spec         string    `json:"spec"`
	Delta        int       `json:"delta"`
	Counterparty string    `json:"counterparty,omitempty"`
	Ref          string    `json:"ref"`
}
