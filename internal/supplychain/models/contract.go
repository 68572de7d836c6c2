package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
)

// Terms are the negotiated trade terms fixed at PurchaseOrder time.
// Temperature bounds and penalty factors are optional.
type Terms struct {
	ProductIDs       []string         `json:"product_ids"`
	UnitCount        int64            `json:"unit_count"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	MinTemperature   *decimal.Decimal `json:"min_temperature,omitempty"`
	MaxTemperature   *decimal.Decimal `json:"max_temperature,omitempty"`
	MinPenaltyFactor *decimal.Decimal `json:"min_penalty_factor,omitempty"`
	MaxPenaltyFactor *decimal.Decimal `json:"max_penalty_factor,omitempty"`
	ArrivalDateTime  *time.Time       `json:"arrival_date_time,omitempty"`
}

// Validate enforces term invariants.
func (t Terms) Validate() error {
	if t.UnitCount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "unit_count must be positive")
	}
	if t.UnitPrice.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "unit_price cannot be negative")
	}
	if t.MinTemperature != nil && t.MaxTemperature != nil && t.MinTemperature.GreaterThan(*t.MaxTemperature) {
		return dErrors.New(dErrors.CodeValidation, "min_temperature cannot exceed max_temperature")
	}
	if t.MinPenaltyFactor != nil && t.MinPenaltyFactor.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "min_penalty_factor cannot be negative")
	}
	if t.MaxPenaltyFactor != nil && t.MaxPenaltyFactor.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "max_penalty_factor cannot be negative")
	}
	return nil
}

// Contract is the aggregate root of one trade.
//
// Invariants:
//   - (ShipmentStatus, InvoiceStatus, FundingStatus) satisfies ReachableStatus
//   - Settled holds exactly when ShipmentStatus is DELIVERED and FundingStatus
//     is APPROVED, and Settlement is set whenever Settled is
//   - parties and terms never change after creation
type Contract struct {
	ContractID id.ContractID      `json:"contract_id"`
	Seller     id.ParticipantName `json:"seller"`
	Buyer      id.ParticipantName `json:"buyer"`
	Funder     id.ParticipantName `json:"funder"`
	Terms

	ShipmentStatus ShipmentStatus `json:"shipment_status"`
	InvoiceStatus  InvoiceStatus  `json:"invoice_status"`
	FundingStatus  FundingStatus  `json:"funding_status"`

	Settled    bool              `json:"settled"`
	Settlement *SettlementResult `json:"settlement,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewContract builds a contract in its initial PENDING/PENDING/PLACED state.
func NewContract(contractID id.ContractID, seller, buyer, funder id.ParticipantName, terms Terms, now time.Time) (*Contract, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	return &Contract{
		ContractID:     contractID,
		Seller:         seller,
		Buyer:          buyer,
		Funder:         funder,
		Terms:          terms,
		ShipmentStatus: ShipmentPending,
		InvoiceStatus:  InvoicePending,
		FundingStatus:  FundingPlaced,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HasTemperatureBounds reports whether any threshold is configured.
func (c *Contract) HasTemperatureBounds() bool {
	return c.MinTemperature != nil || c.MaxTemperature != nil
}

// Parties lists the three participants whose balances settlement touches.
func (c *Contract) Parties() []id.ParticipantName {
	return []id.ParticipantName{c.Buyer, c.Seller, c.Funder}
}

// ReadyToSettle reports whether both settlement triggers have happened and
// settlement has not run yet.
func (c *Contract) ReadyToSettle() bool {
	return !c.Settled && c.ShipmentStatus == ShipmentDelivered && c.FundingStatus == FundingApproved
}

// CheckInvariants verifies the status triple and the settled flag.
func (c *Contract) CheckInvariants() error {
	if !ReachableStatus(c.ShipmentStatus, c.InvoiceStatus, c.FundingStatus) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"unreachable status combination "+string(c.ShipmentStatus)+"/"+string(c.InvoiceStatus)+"/"+string(c.FundingStatus))
	}
	shouldBeSettled := c.ShipmentStatus == ShipmentDelivered && c.FundingStatus == FundingApproved
	if c.Settled != shouldBeSettled {
		return dErrors.New(dErrors.CodeInvariantViolation, "settled flag out of sync with statuses")
	}
	if c.Settled && c.Settlement == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "settled contract has no settlement record")
	}
	return nil
}

// Clone returns a deep copy safe to mutate inside a transaction.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.ProductIDs = append([]string(nil), c.ProductIDs...)
	if c.Settlement != nil {
		s := *c.Settlement
		out.Settlement = &s
	}
	return &out
}
