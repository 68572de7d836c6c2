package models

import (
	"github.com/shopspring/decimal"

	id "coldchain/pkg/domain"
)

// Kind names a transaction type.
type Kind string

const (
	KindCreateProductList  Kind = "CreateProductList"
	KindPurchaseOrder      Kind = "PurchaseOrder"
	KindCreateShipment     Kind = "CreateShipment"
	KindShipmentDispatched Kind = "ShipmentDispatched"
	KindTemperatureReading Kind = "TemperatureReading"
	KindShipmentReceived   Kind = "ShipmentReceived"
	KindInvoiceUpdate      Kind = "InvoiceUpdate"
	KindFundsApproval      Kind = "FundsApproval"
)

// Transaction is a submitted lifecycle transaction.
type Transaction interface {
	Kind() Kind
}

type CreateProductList struct {
	Products []Product
	Seller   id.ParticipantName
}

type PurchaseOrder struct {
	Terms
	Buyer  id.ParticipantName
	Seller id.ParticipantName
	Funder id.ParticipantName
}

type CreateShipment struct {
	Shipper  id.ParticipantName
	Contract id.ContractID
}

// ShipmentDispatched marks pickup: CREATED to IN_TRANSIT without a reading.
type ShipmentDispatched struct {
	Shipment id.ShipmentID
}

type TemperatureReadingTx struct {
	Shipment   id.ShipmentID
	Centigrade decimal.Decimal
}

type ShipmentReceived struct {
	Shipment id.ShipmentID
}

type InvoiceUpdate struct {
	Seller   id.ParticipantName
	Contract id.ContractID
}

type FundsApproval struct {
	Funder   id.ParticipantName
	Invoice  id.InvoiceID
	Contract id.ContractID
	Decision FundingDecision
}

func (CreateProductList) Kind() Kind    { return KindCreateProductList }
func (PurchaseOrder) Kind() Kind        { return KindPurchaseOrder }
func (CreateShipment) Kind() Kind       { return KindCreateShipment }
func (ShipmentDispatched) Kind() Kind   { return KindShipmentDispatched }
func (TemperatureReadingTx) Kind() Kind { return KindTemperatureReading }
func (ShipmentReceived) Kind() Kind     { return KindShipmentReceived }
func (InvoiceUpdate) Kind() Kind        { return KindInvoiceUpdate }
func (FundsApproval) Kind() Kind        { return KindFundsApproval }
