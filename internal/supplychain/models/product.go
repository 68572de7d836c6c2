package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "coldchain/pkg/domain"
)

// Product is an immutable catalogue line.
type Product struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ProductList is a seller's listing.
type ProductList struct {
	ListID    id.ProductListID   `json:"list_id"`
	Products  []Product          `json:"products"`
	Seller    id.ParticipantName `json:"seller"`
	CreatedAt time.Time          `json:"created_at"`
}

func (l *ProductList) Clone() *ProductList {
	if l == nil {
		return nil
	}
	out := *l
	out.Products = append([]Product(nil), l.Products...)
	return &out
}
