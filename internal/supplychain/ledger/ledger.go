// Package ledger applies contract settlement to participant balances.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"coldchain/internal/supplychain/models"
	"coldchain/internal/supplychain/penalty"
	"coldchain/internal/supplychain/telemetry"
	dErrors "coldchain/pkg/domain-errors"
)

// Parties are the participant records a settlement mutates. Callers pass
// clones and persist them together with the contract.
type Parties struct {
	Buyer  *models.Business
	Seller *models.Business
	Funder *models.Business
}

func (p Parties) validate() error {
	if p.Buyer == nil || p.Seller == nil || p.Funder == nil {
		return dErrors.New(dErrors.CodeNotFound, "settlement party missing")
	}
	return nil
}

// Settle prices the delivered shipment and moves money between the parties:
// the buyer pays, the seller is credited and the funder's asset balance is
// reduced by the same amount. A buyer without enough funds pays what it has
// and the rest is booked as debt.
//
// Settle does not touch contract statuses; the state machine marks the
// contract settled with the returned result.
func Settle(c *models.Contract, sh *models.Shipment, p Parties, at time.Time) (*models.SettlementResult, error) {
	if c.Settled {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "contract "+c.ContractID.String()+" is already settled")
	}
	if c.FundingStatus != models.FundingApproved {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "funding is "+string(c.FundingStatus)+", not APPROVED")
	}
	if c.ShipmentStatus != models.ShipmentDelivered || sh == nil || sh.Status != models.ShipmentDelivered {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "shipment is not DELIVERED")
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	deliveredAt := at
	if sh.DeliveredAt != nil {
		deliveredAt = *sh.DeliveredAt
	}

	observedMin, observedMax := telemetry.Extremes(sh)
	unitPrice := penalty.AdjustedPrice(c, observedMin, observedMax)
	amount := unitPrice.Mul(decimal.NewFromInt(c.UnitCount))

	shortfall := debit(p.Buyer, amount)
	p.Seller.AccountBalance = p.Seller.AccountBalance.Add(amount)
	p.Funder.AssetBalance = p.Funder.AssetBalance.Sub(amount)

	return &models.SettlementResult{
		ContractID:        c.ContractID,
		AdjustedUnitPrice: unitPrice,
		Amount:            amount,
		BuyerShortfall:    shortfall,
		LateDelivery:      penalty.IsLate(c, deliveredAt),
		Buyer:             models.BalanceOf(p.Buyer),
		Seller:            models.BalanceOf(p.Seller),
		Funder:            models.BalanceOf(p.Funder),
		SettledAt:         at,
	}, nil
}

// debit takes amount from b's account and books what is missing as debt.
func debit(b *models.Business, amount decimal.Decimal) decimal.Decimal {
	available := decimal.Max(decimal.Zero, b.AccountBalance)
	if available.GreaterThanOrEqual(amount) {
		b.AccountBalance = b.AccountBalance.Sub(amount)
		return decimal.Zero
	}
	shortfall := amount.Sub(available)
	b.AccountBalance = b.AccountBalance.Sub(available)
	b.DebtBalance = b.DebtBalance.Add(shortfall)
	return shortfall
}
