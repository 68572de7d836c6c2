package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "coldchain/pkg/domain"
)

// PartyBalance is a participant's balances after settlement.
type PartyBalance struct {
	Name           id.ParticipantName `json:"name"`
	AccountBalance decimal.Decimal    `json:"account_balance"`
	DebtBalance    decimal.Decimal    `json:"debt_balance"`
	AssetBalance   decimal.Decimal    `json:"asset_balance"`
}

// BalanceOf snapshots a participant's balances.
func BalanceOf(b *Business) PartyBalance {
	return PartyBalance{
		Name:           b.Name,
		AccountBalance: b.AccountBalance,
		DebtBalance:    b.DebtBalance,
		AssetBalance:   b.AssetBalance,
	}
}

// SettlementResult records the one-time balance transfer for a contract.
type SettlementResult struct {
	ContractID        id.ContractID   `json:"contract_id"`
	AdjustedUnitPrice decimal.Decimal `json:"adjusted_unit_price"`
	Amount            decimal.Decimal `json:"amount"`
	// BuyerShortfall is the part of Amount booked as buyer debt.
	BuyerShortfall decimal.Decimal `json:"buyer_shortfall"`
	LateDelivery   bool            `json:"late_delivery"`
	Buyer          PartyBalance    `json:"buyer"`
	Seller         PartyBalance    `json:"seller"`
	Funder         PartyBalance    `json:"funder"`
	SettledAt      time.Time       `json:"settled_at"`
}
