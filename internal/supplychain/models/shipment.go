package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "coldchain/pkg/domain"
)

// TemperatureReading is one telemetry sample; readings are append-only.
type TemperatureReading struct {
	Centigrade decimal.Decimal `json:"centigrade"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Shipment carries the cargo for exactly one contract. ObservedMin and
// ObservedMax stay nil until the first reading arrives.
type Shipment struct {
	ShipmentID  id.ShipmentID        `json:"shipment_id"`
	Shipper     id.ParticipantName   `json:"shipper"`
	ContractID  id.ContractID        `json:"contract_id"`
	Status      ShipmentStatus       `json:"status"`
	Readings    []TemperatureReading `json:"readings"`
	ObservedMin *decimal.Decimal     `json:"observed_min,omitempty"`
	ObservedMax *decimal.Decimal     `json:"observed_max,omitempty"`
	DeliveredAt *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewShipment builds a shipment in CREATED status.
func NewShipment(shipmentID id.ShipmentID, shipper id.ParticipantName, contractID id.ContractID, now time.Time) *Shipment {
	return &Shipment{
		ShipmentID: shipmentID,
		Shipper:    shipper,
		ContractID: contractID,
		Status:     ShipmentCreated,
		Readings:   []TemperatureReading{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// HasReadings reports whether any telemetry was recorded.
func (s *Shipment) HasReadings() bool {
	return len(s.Readings) > 0
}

// Clone returns a deep copy safe to mutate inside a transaction.
func (s *Shipment) Clone() *Shipment {
	if s == nil {
		return nil
	}
	out := *s
	out.Readings = append([]TemperatureReading{}, s.Readings...)
	if s.ObservedMin != nil {
		v := *s.ObservedMin
		out.ObservedMin = &v
	}
	if s.ObservedMax != nil {
		v := *s.ObservedMax
		out.ObservedMax = &v
	}
	if s.DeliveredAt != nil {
		v := *s.DeliveredAt
		out.DeliveredAt = &v
	}
	return &out
}
