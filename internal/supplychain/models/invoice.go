package models

import (
	"time"

	id "coldchain/pkg/domain"
)

// Invoice is the seller's invoice for a contract; at most one per contract.
type Invoice struct {
	InvoiceID  id.InvoiceID       `json:"invoice_id"`
	Seller     id.ParticipantName `json:"seller"`
	ContractID id.ContractID      `json:"contract_id"`
	Status     InvoiceStatus      `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}

func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}
	out := *i
	return &out
}
