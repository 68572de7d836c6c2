// Package events records and publishes contract lifecycle events.
//
// Events are emitted after a transaction commits. Delivery is fail-open: a
// sink failure is logged and counted but never undoes a committed
// transaction.
package events

import (
	"time"

	"github.com/google/uuid"

	id "coldchain/pkg/domain"
)

// Kind names a lifecycle event.
type Kind string

const (
	KindProductListCreated Kind = "product_list_created"
	KindContractCreated    Kind = "contract_created"
	KindShipmentCreated    Kind = "shipment_created"
	KindShipmentDispatched Kind = "shipment_dispatched"
	KindReadingRecorded    Kind = "reading_recorded"
	KindShipmentDelivered  Kind = "shipment_delivered"
	KindFundingDecided     Kind = "funding_decided"
	KindInvoiceGenerated   Kind = "invoice_generated"
	KindContractSettled    Kind = "contract_settled"
)

// Event is one lifecycle fact. ContractID is the partition key; it is nil
// only for product list events.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Kind       Kind              `json:"kind"`
	ContractID id.ContractID     `json:"contract_id"`
	EntityID   string            `json:"entity_id"`
	Actor      string            `json:"actor,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}
