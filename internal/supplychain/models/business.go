package models

import (
	"github.com/shopspring/decimal"

	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
)

// Role discriminates the four participant variants.
type Role string

const (
	RoleSeller  Role = "SELLER"
	RoleBuyer   Role = "BUYER"
	RoleShipper Role = "SHIPPER"
	RoleFunder  Role = "FUNDER"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSeller, RoleBuyer, RoleShipper, RoleFunder:
		return true
	}
	return false
}

// Address is a postal address value.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country"`
	Zip     string `json:"zip,omitempty"`
}

// Business is a trade participant. One record type covers all roles;
// AssetBalance is meaningful for funders and Products for buyers.
type Business struct {
	Name           id.ParticipantName `json:"name"`
	Role           Role               `json:"role"`
	Address        Address            `json:"address"`
	AccountBalance decimal.Decimal    `json:"account_balance"`
	DebtBalance    decimal.Decimal    `json:"debt_balance"`
	AssetBalance   decimal.Decimal    `json:"asset_balance"`
	Products       []Product          `json:"products,omitempty"`
}

// NewBusiness validates and constructs a participant record.
func NewBusiness(name id.ParticipantName, role Role, address Address, accountBalance decimal.Decimal) (*Business, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "participant name cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown participant role: "+string(role))
	}
	return &Business{
		Name:           name,
		Role:           role,
		Address:        address,
		AccountBalance: accountBalance,
	}, nil
}

func (b *Business) HasRole(role Role) bool {
	return b != nil && b.Role == role
}

// Clone returns a deep copy safe to mutate inside a transaction.
func (b *Business) Clone() *Business {
	if b == nil {
		return nil
	}
	out := *b
	if b.Products != nil {
		out.Products = append([]Product(nil), b.Products...)
	}
	return &out
}
