package models

import (
	"time"
)

// Intent lifecycle statuses as reported by the Speedrun API.
const (
	StatusPending   = "pending"
	StatusFulfilled = "fulfilled"
	StatusSettled   = "settled"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Intent represents an intent record from the Speedrun API.
type Intent struct {
	ID               string    `json:"id"`
	SourceChain      int       `json:"source_chain"`
	DestinationChain int       `json:"destination_chain"`
	Token            string    `json:"token"`
	Amount           string    `json:"amount"`
	Recipient        string    `json:"recipient"`
	IntentFee        string    `json:"intent_fee"`
	Status           string    `json:"status"`
	FulfillmentTx    string    `json:"fulfillment_tx,omitempty"`
	SettlementTx     string    `json:"settlement_tx,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsTerminal reports whether the status is one the network will not move past.
func (i *Intent) IsTerminal() bool {
	switch i.Status {
	case StatusSettled, StatusCancelled, StatusFailed:
		return true
	}
	return false
}
