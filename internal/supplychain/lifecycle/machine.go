// Package lifecycle validates and applies contract, shipment, invoice and
// funding transitions.
//
// Handlers operate on entities already resolved and cloned by the caller.
// Preconditions are checked before the first write. Handlers still mutate
// their inputs on the way to an error from settlement, so callers discard
// the clones of a rejected transaction and persist the Outcome of an
// accepted one atomically.
package lifecycle

import (
	"time"

	"github.com/shopspring/decimal"

	"coldchain/internal/supplychain/ledger"
	"coldchain/internal/supplychain/models"
	"coldchain/internal/supplychain/telemetry"
	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
)

// Machine holds no state; all state lives on the entities it is handed.
type Machine struct{}

func NewMachine() *Machine {
	return &Machine{}
}

// Outcome is what a handler produced.
type Outcome struct {
	Changes models.ChangeSet
	// Settlement is set when the transaction triggered settlement.
	Settlement *models.SettlementResult
}

func invalid(msg string) error {
	return dErrors.New(dErrors.CodeInvalidTransition, msg)
}

func requireRole(b *models.Business, role models.Role) error {
	if !b.HasRole(role) {
		return invalid("participant " + string(b.Name) + " is not a " + string(role))
	}
	return nil
}

// CreateProductList registers a seller listing.
func (m *Machine) CreateProductList(seller *models.Business, products []models.Product, now time.Time) (*Outcome, error) {
	if err := requireRole(seller, models.RoleSeller); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "product list cannot be empty")
	}
	list := &models.ProductList{
		ListID:    id.NewProductListID(),
		Products:  append([]models.Product(nil), products...),
		Seller:    seller.Name,
		CreatedAt: now,
	}
	return &Outcome{Changes: models.ChangeSet{ProductLists: []*models.ProductList{list}}}, nil
}

// PurchaseOrder creates a contract in PENDING/PENDING/PLACED.
func (m *Machine) PurchaseOrder(po models.PurchaseOrder, buyer, seller, funder *models.Business, now time.Time) (*Outcome, error) {
	if err := requireRole(buyer, models.RoleBuyer); err != nil {
		return nil, err
	}
	if err := requireRole(seller, models.RoleSeller); err != nil {
		return nil, err
	}
	if err := requireRole(funder, models.RoleFunder); err != nil {
		return nil, err
	}
	c, err := models.NewContract(id.NewContractID(), seller.Name, buyer.Name, funder.Name, po.Terms, now)
	if err != nil {
		return nil, err
	}
	return &Outcome{Changes: models.ChangeSet{Contracts: []*models.Contract{c}}}, nil
}

// CreateShipment opens the single shipment of a contract.
func (m *Machine) CreateShipment(c *models.Contract, shipper *models.Business, existing *models.Shipment, now time.Time) (*Outcome, error) {
	if err := requireRole(shipper, models.RoleShipper); err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, invalid("contract " + c.ContractID.String() + " already has a shipment")
	}
	if !c.ShipmentStatus.CanTransitionTo(models.ShipmentCreated) {
		return nil, invalid("contract shipment status is " + string(c.ShipmentStatus) + ", expected PENDING")
	}

	sh := models.NewShipment(id.NewShipmentID(), shipper.Name, c.ContractID, now)
	c.ShipmentStatus = models.ShipmentCreated
	c.UpdatedAt = now
	return &Outcome{Changes: models.ChangeSet{
		Contracts: []*models.Contract{c},
		Shipments: []*models.Shipment{sh},
	}}, nil
}

// DispatchShipment moves a CREATED shipment into transit without a reading.
func (m *Machine) DispatchShipment(c *models.Contract, sh *models.Shipment, now time.Time) (*Outcome, error) {
	if sh.Status != models.ShipmentCreated {
		return nil, invalid("shipment is " + string(sh.Status) + ", expected CREATED")
	}
	startTransit(c, sh, now)
	return &Outcome{Changes: models.ChangeSet{
		Contracts: []*models.Contract{c},
		Shipments: []*models.Shipment{sh},
	}}, nil
}

// RecordReading appends telemetry. The first reading on a CREATED shipment
// puts it in transit.
func (m *Machine) RecordReading(c *models.Contract, sh *models.Shipment, centigrade decimal.Decimal, now time.Time) (*Outcome, error) {
	wasCreated := sh.Status == models.ShipmentCreated
	if err := telemetry.Record(sh, centigrade, now); err != nil {
		return nil, err
	}
	out := &Outcome{Changes: models.ChangeSet{Shipments: []*models.Shipment{sh}}}
	if wasCreated {
		startTransit(c, sh, now)
		out.Changes.Contracts = []*models.Contract{c}
	}
	return out, nil
}

func startTransit(c *models.Contract, sh *models.Shipment, now time.Time) {
	sh.Status = models.ShipmentInTransit
	sh.UpdatedAt = now
	c.ShipmentStatus = models.ShipmentInTransit
	c.UpdatedAt = now
}

// ReceiveShipment delivers the cargo and settles when funding is already
// approved.
func (m *Machine) ReceiveShipment(c *models.Contract, sh *models.Shipment, parties ledger.Parties, now time.Time) (*Outcome, error) {
	if sh.Status != models.ShipmentInTransit {
		return nil, invalid("shipment is " + string(sh.Status) + ", expected IN_TRANSIT")
	}

	delivered := now
	sh.Status = models.ShipmentDelivered
	sh.DeliveredAt = &delivered
	sh.UpdatedAt = now
	c.ShipmentStatus = models.ShipmentDelivered
	c.UpdatedAt = now

	out := &Outcome{Changes: models.ChangeSet{
		Contracts: []*models.Contract{c},
		Shipments: []*models.Shipment{sh},
	}}
	if err := m.settleIfReady(out, c, sh, parties, now); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateInvoice issues the contract's only invoice.
func (m *Machine) GenerateInvoice(c *models.Contract, seller *models.Business, existing *models.Invoice, now time.Time) (*Outcome, error) {
	if err := requireRole(seller, models.RoleSeller); err != nil {
		return nil, err
	}
	if seller.Name != c.Seller {
		return nil, invalid("participant " + string(seller.Name) + " is not the contract seller")
	}
	if existing != nil || !c.InvoiceStatus.CanTransitionTo(models.InvoiceGenerated) {
		return nil, invalid("contract " + c.ContractID.String() + " already has an invoice")
	}

	inv := &models.Invoice{
		InvoiceID:  id.NewInvoiceID(),
		Seller:     seller.Name,
		ContractID: c.ContractID,
		Status:     models.InvoiceGenerated,
		CreatedAt:  now,
	}
	c.InvoiceStatus = models.InvoiceGenerated
	c.UpdatedAt = now
	return &Outcome{Changes: models.ChangeSet{
		Contracts: []*models.Contract{c},
		Invoices:  []*models.Invoice{inv},
	}}, nil
}

// DecideFunding records the funder's decision. Approval of an already
// delivered contract settles it. sh may be nil when no shipment exists yet.
func (m *Machine) DecideFunding(c *models.Contract, inv *models.Invoice, sh *models.Shipment, decision models.FundingDecision, parties ledger.Parties, now time.Time) (*Outcome, error) {
	if !decision.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown funding decision: "+string(decision))
	}
	if parties.Funder == nil || parties.Funder.Name != c.Funder {
		return nil, invalid("participant is not the contract funder")
	}
	if inv.ContractID != c.ContractID {
		return nil, invalid("invoice " + inv.InvoiceID.String() + " does not belong to contract " + c.ContractID.String())
	}
	if c.InvoiceStatus != models.InvoiceGenerated {
		return nil, invalid("contract has no generated invoice")
	}
	next := decision.Status()
	if !c.FundingStatus.CanTransitionTo(next) {
		return nil, invalid("funding is " + string(c.FundingStatus) + ", cannot move to " + string(next))
	}

	c.FundingStatus = next
	c.UpdatedAt = now
	out := &Outcome{Changes: models.ChangeSet{Contracts: []*models.Contract{c}}}
	if err := m.settleIfReady(out, c, sh, parties, now); err != nil {
		return nil, err
	}
	return out, nil
}

// settleIfReady runs the ledger once both triggers have fired. The Settled
// flag on the contract makes the second trigger a no-op.
func (m *Machine) settleIfReady(out *Outcome, c *models.Contract, sh *models.Shipment, parties ledger.Parties, now time.Time) error {
	if !c.ReadyToSettle() {
		return nil
	}
	res, err := ledger.Settle(c, sh, parties, now)
	if err != nil {
		return err
	}
	c.Settled = true
	c.Settlement = res
	out.Settlement = res
	out.Changes.Businesses = append(out.Changes.Businesses, parties.Buyer, parties.Seller, parties.Funder)
	return nil
}
