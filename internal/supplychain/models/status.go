package models

// ShipmentStatus tracks cargo from order to delivery. Contract and Shipment
// carry the same value once the shipment exists.
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "PENDING"
	ShipmentCreated   ShipmentStatus = "CREATED"
	ShipmentInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentDelivered ShipmentStatus = "DELIVERED"
)

var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentPending:   {ShipmentCreated},
	ShipmentCreated:   {ShipmentInTransit},
	ShipmentInTransit: {ShipmentDelivered},
}

func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentPending, ShipmentCreated, ShipmentInTransit, ShipmentDelivered:
		return true
	}
	return false
}

func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range shipmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsReadings reports whether telemetry may be appended in this status.
func (s ShipmentStatus) AcceptsReadings() bool {
	return s == ShipmentCreated || s == ShipmentInTransit
}

// InvoiceStatus tracks invoicing for a contract.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoiceGenerated InvoiceStatus = "GENERATED"
)

func (s InvoiceStatus) IsValid() bool {
	return s == InvoicePending || s == InvoiceGenerated
}

func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return s == InvoicePending && next == InvoiceGenerated
}

// FundingStatus tracks the funder's decision.
type FundingStatus string

const (
	FundingPlaced   FundingStatus = "PLACED"
	FundingOnHold   FundingStatus = "ON_HOLD"
	FundingApproved FundingStatus = "APPROVED"
	FundingDenied   FundingStatus = "DENIED"
)

var fundingTransitions = map[FundingStatus][]FundingStatus{
	FundingPlaced: {FundingOnHold, FundingApproved, FundingDenied},
	FundingOnHold: {FundingApproved, FundingDenied},
}

func (s FundingStatus) IsValid() bool {
	switch s {
	case FundingPlaced, FundingOnHold, FundingApproved, FundingDenied:
		return true
	}
	return false
}

func (s FundingStatus) CanTransitionTo(next FundingStatus) bool {
	for _, allowed := range fundingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FundingDecision is what a funder may submit in FundsApproval.
type FundingDecision string

const (
	DecisionApproved FundingDecision = "APPROVED"
	DecisionDenied   FundingDecision = "DENIED"
	DecisionOnHold   FundingDecision = "ON_HOLD"
)

func (d FundingDecision) IsValid() bool {
	return d == DecisionApproved || d == DecisionDenied || d == DecisionOnHold
}

func (d FundingDecision) Status() FundingStatus {
	return FundingStatus(d)
}

// ReachableStatus reports whether a contract status triple can be produced by
// the lifecycle transitions. Statuses move independently except that a
// funding decision needs an invoice, because FundsApproval references one.
func ReachableStatus(shipment ShipmentStatus, invoice InvoiceStatus, funding FundingStatus) bool {
	if !shipment.IsValid() || !invoice.IsValid() || !funding.IsValid() {
		return false
	}
	if funding != FundingPlaced && invoice != InvoiceGenerated {
		return false
	}
	return true
}
