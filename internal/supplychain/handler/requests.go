package handler

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
	pstrings "coldchain/pkg/platform/strings"
)

const (
	maxProducts   = 1000
	maxBatchItems = 500
)

// TransactionRequest is a request body that converts into a lifecycle
// transaction once normalized and validated. Identifiers are parsed by
// Transaction so path parameters can be filled in after decoding.
type TransactionRequest interface {
	Normalize()
	Validate() error
	Transaction() (models.Transaction, error)
}

func requiredName(field, v string) (id.ParticipantName, error) {
	if v == "" {
		return "", dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	return id.ParseParticipantName(v)
}

type ProductRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CreateProductListRequest is the body of POST /product-lists.
type CreateProductListRequest struct {
	Seller   string           `json:"seller"`
	Products []ProductRequest `json:"products"`
}

func (r *CreateProductListRequest) Normalize() {
	if r == nil {
		return
	}
	r.Seller = strings.TrimSpace(r.Seller)
	for i := range r.Products {
		r.Products[i].ProductID = strings.TrimSpace(r.Products[i].ProductID)
	}
}

func (r *CreateProductListRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Products) > maxProducts {
		return dErrors.New(dErrors.CodeValidation, "too many products")
	}
	if len(r.Products) == 0 {
		return dErrors.New(dErrors.CodeValidation, "products are required")
	}
	for _, p := range r.Products {
		if p.ProductID == "" {
			return dErrors.New(dErrors.CodeValidation, "product_id is required")
		}
		if p.Quantity <= 0 {
			return dErrors.New(dErrors.CodeValidation, "quantity must be positive")
		}
		if p.Price.IsNegative() {
			return dErrors.New(dErrors.CodeValidation, "price cannot be negative")
		}
	}
	return nil
}

func (r *CreateProductListRequest) Transaction() (models.Transaction, error) {
	seller, err := requiredName("seller", r.Seller)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(r.Products))
	for _, p := range r.Products {
		products = append(products, models.Product{ProductID: p.ProductID, Quantity: p.Quantity, Price: p.Price})
	}
	return models.CreateProductList{Seller: seller, Products: products}, nil
}

// PurchaseOrderRequest is the body of POST /purchase-orders. Temperature
// bounds, penalty factors and the arrival time are optional.
type PurchaseOrderRequest struct {
	Buyer            string           `json:"buyer"`
	Seller           string           `json:"seller"`
	Funder           string           `json:"funder"`
	ProductIDs       []string         `json:"product_ids"`
	UnitCount        int64            `json:"unit_count"`
	UnitPrice        *decimal.Decimal `json:"unit_price"`
	MinTemperature   *decimal.Decimal `json:"min_temperature,omitempty"`
	MaxTemperature   *decimal.Decimal `json:"max_temperature,omitempty"`
	MinPenaltyFactor *decimal.Decimal `json:"min_penalty_factor,omitempty"`
	MaxPenaltyFactor *decimal.Decimal `json:"max_penalty_factor,omitempty"`
	ArrivalDateTime  *time.Time       `json:"arrival_date_time,omitempty"`
}

func (r *PurchaseOrderRequest) Normalize() {
	if r == nil {
		return
	}
	r.Buyer = strings.TrimSpace(r.Buyer)
	r.Seller = strings.TrimSpace(r.Seller)
	r.Funder = strings.TrimSpace(r.Funder)
	r.ProductIDs = pstrings.DedupeAndTrim(r.ProductIDs)
}

func (r *PurchaseOrderRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.ProductIDs) > maxProducts {
		return dErrors.New(dErrors.CodeValidation, "too many product_ids")
	}
	if r.UnitPrice == nil {
		return dErrors.New(dErrors.CodeValidation, "unit_price is required")
	}
	return r.terms().Validate()
}

func (r *PurchaseOrderRequest) terms() models.Terms {
	t := models.Terms{
		ProductIDs:       r.ProductIDs,
		UnitCount:        r.UnitCount,
		MinTemperature:   r.MinTemperature,
		MaxTemperature:   r.MaxTemperature,
		MinPenaltyFactor: r.MinPenaltyFactor,
		MaxPenaltyFactor: r.MaxPenaltyFactor,
		ArrivalDateTime:  r.ArrivalDateTime,
	}
	if r.UnitPrice != nil {
		t.UnitPrice = *r.UnitPrice
	}
	return t
}

func (r *PurchaseOrderRequest) Transaction() (models.Transaction, error) {
	buyer, err := requiredName("buyer", r.Buyer)
	if err != nil {
		return nil, err
	}
	seller, err := requiredName("seller", r.Seller)
	if err != nil {
		return nil, err
	}
	funder, err := requiredName("funder", r.Funder)
	if err != nil {
		return nil, err
	}
	return models.PurchaseOrder{Terms: r.terms(), Buyer: buyer, Seller: seller, Funder: funder}, nil
}

// CreateShipmentRequest is the body of POST /shipments.
type CreateShipmentRequest struct {
	Shipper    string `json:"shipper"`
	ContractID string `json:"contract_id"`
}

func (r *CreateShipmentRequest) Normalize() {
	if r == nil {
		return
	}
	r.Shipper = strings.TrimSpace(r.Shipper)
	r.ContractID = strings.TrimSpace(r.ContractID)
}

func (r *CreateShipmentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

func (r *CreateShipmentRequest) Transaction() (models.Transaction, error) {
	shipper, err := requiredName("shipper", r.Shipper)
	if err != nil {
		return nil, err
	}
	contractID, err := id.ParseContractID(r.ContractID)
	if err != nil {
		return nil, err
	}
	return models.CreateShipment{Shipper: shipper, Contract: contractID}, nil
}

// ShipmentEventRequest identifies the shipment of a dispatch or receipt.
// Single submissions take the ID from the path.
type ShipmentEventRequest struct {
	ShipmentID string `json:"shipment_id"`

	kind models.Kind
}

func (r *ShipmentEventRequest) Normalize() {
	if r == nil {
		return
	}
	r.ShipmentID = strings.TrimSpace(r.ShipmentID)
}

func (r *ShipmentEventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

func (r *ShipmentEventRequest) Transaction() (models.Transaction, error) {
	shipmentID, err := id.ParseShipmentID(r.ShipmentID)
	if err != nil {
		return nil, err
	}
	if r.kind == models.KindShipmentDispatched {
		return models.ShipmentDispatched{Shipment: shipmentID}, nil
	}
	return models.ShipmentReceived{Shipment: shipmentID}, nil
}

// ReadingRequest is the body of POST /shipments/{id}/readings.
type ReadingRequest struct {
	ShipmentID string           `json:"shipment_id,omitempty"`
	Centigrade *decimal.Decimal `json:"centigrade"`
}

func (r *ReadingRequest) Normalize() {
	if r == nil {
		return
	}
	r.ShipmentID = strings.TrimSpace(r.ShipmentID)
}

func (r *ReadingRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Centigrade == nil {
		return dErrors.New(dErrors.CodeValidation, "centigrade is required")
	}
	return nil
}

func (r *ReadingRequest) Transaction() (models.Transaction, error) {
	shipmentID, err := id.ParseShipmentID(r.ShipmentID)
	if err != nil {
		return nil, err
	}
	return models.TemperatureReadingTx{Shipment: shipmentID, Centigrade: *r.Centigrade}, nil
}

// InvoiceRequest is the body of POST /invoices.
type InvoiceRequest struct {
	Seller     string `json:"seller"`
	ContractID string `json:"contract_id"`
}

func (r *InvoiceRequest) Normalize() {
	if r == nil {
		return
	}
	r.Seller = strings.TrimSpace(r.Seller)
	r.ContractID = strings.TrimSpace(r.ContractID)
}

func (r *InvoiceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

func (r *InvoiceRequest) Transaction() (models.Transaction, error) {
	seller, err := requiredName("seller", r.Seller)
	if err != nil {
		return nil, err
	}
	contractID, err := id.ParseContractID(r.ContractID)
	if err != nil {
		return nil, err
	}
	return models.InvoiceUpdate{Seller: seller, Contract: contractID}, nil
}

// FundingRequest is the body of POST /contracts/{id}/funding. Besides
// APPROVED and DENIED, decision accepts ON_HOLD: the contract stays unsettled
// and a later APPROVED or DENIED decision may follow.
type FundingRequest struct {
	ContractID string `json:"contract_id,omitempty"`
	Funder     string `json:"funder"`
	InvoiceID  string `json:"invoice_id"`
	Decision   string `json:"decision"`
}

func (r *FundingRequest) Normalize() {
	if r == nil {
		return
	}
	r.ContractID = strings.TrimSpace(r.ContractID)
	r.Funder = strings.TrimSpace(r.Funder)
	r.InvoiceID = strings.TrimSpace(r.InvoiceID)
	r.Decision = strings.ToUpper(strings.TrimSpace(r.Decision))
}

func (r *FundingRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Decision == "" {
		return dErrors.New(dErrors.CodeValidation, "decision is required")
	}
	if !models.FundingDecision(r.Decision).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "decision must be APPROVED, DENIED or ON_HOLD")
	}
	return nil
}

func (r *FundingRequest) Transaction() (models.Transaction, error) {
	funder, err := requiredName("funder", r.Funder)
	if err != nil {
		return nil, err
	}
	contractID, err := id.ParseContractID(r.ContractID)
	if err != nil {
		return nil, err
	}
	invoiceID, err := id.ParseInvoiceID(r.InvoiceID)
	if err != nil {
		return nil, err
	}
	return models.FundsApproval{
		Funder:   funder,
		Invoice:  invoiceID,
		Contract: contractID,
		Decision: models.FundingDecision(r.Decision),
	}, nil
}

// BatchRequest is the body of POST /transactions/batch. Each entry carries
// the body of the matching single endpoint, with path identifiers moved into
// the payload.
type BatchRequest struct {
	Transactions []BatchEntry `json:"transactions"`
}

type BatchEntry struct {
	Kind    models.Kind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func (r *BatchRequest) Normalize() {
	if r == nil {
		return
	}
	for i := range r.Transactions {
		r.Transactions[i].Kind = models.Kind(strings.TrimSpace(string(r.Transactions[i].Kind)))
	}
}

func (r *BatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Transactions) > maxBatchItems {
		return dErrors.New(dErrors.CodeValidation, "batch exceeds 500 transactions")
	}
	if len(r.Transactions) == 0 {
		return dErrors.New(dErrors.CodeValidation, "transactions are required")
	}
	return nil
}

// requestFor returns an empty request body for kind.
func requestFor(kind models.Kind) (TransactionRequest, error) {
	switch kind {
	case models.KindCreateProductList:
		return &CreateProductListRequest{}, nil
	case models.KindPurchaseOrder:
		return &PurchaseOrderRequest{}, nil
	case models.KindCreateShipment:
		return &CreateShipmentRequest{}, nil
	case models.KindShipmentDispatched, models.KindShipmentReceived:
		return &ShipmentEventRequest{kind: kind}, nil
	case models.KindTemperatureReading:
		return &ReadingRequest{}, nil
	case models.KindInvoiceUpdate:
		return &InvoiceRequest{}, nil
	case models.KindFundsApproval:
		return &FundingRequest{}, nil
	}
	return nil, dErrors.New(dErrors.CodeValidation, "unknown transaction kind "+string(kind))
}

// Decode turns the entry into a transaction, applying the same checks as the
// single endpoints.
func (e BatchEntry) Decode() (models.Transaction, error) {
	req, err := requestFor(e.Kind)
	if err != nil {
		return nil, err
	}
	if len(e.Payload) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "payload is required")
	}
	if err := json.Unmarshal(e.Payload, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid payload")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req.Transaction()
}
