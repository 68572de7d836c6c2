// Package domain holds identifier primitives shared by the settlement engine.
//
// Every entity key that crosses a trust boundary (HTTP path, JSON body, seed
// file) is parsed with one of the Parse* functions so malformed or nil
// identifiers are rejected before any store lookup.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "coldchain/pkg/domain-errors"
)

// maxIDLength bounds raw input before it reaches uuid.Parse.
const maxIDLength = 64

// maxParticipantNameLength bounds participant names.
const maxParticipantNameLength = 128

type (
	ContractID    uuid.UUID
	ShipmentID    uuid.UUID
	InvoiceID     uuid.UUID
	ProductListID uuid.UUID
)

func NewContractID() ContractID       { return ContractID(uuid.New()) }
func NewShipmentID() ShipmentID       { return ShipmentID(uuid.New()) }
func NewInvoiceID() InvoiceID         { return InvoiceID(uuid.New()) }
func NewProductListID() ProductListID { return ProductListID(uuid.New()) }

func (id ContractID) String() string    { return uuid.UUID(id).String() }
func (id ShipmentID) String() string    { return uuid.UUID(id).String() }
func (id InvoiceID) String() string     { return uuid.UUID(id).String() }
func (id ProductListID) String() string { return uuid.UUID(id).String() }

func (id ContractID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ShipmentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id InvoiceID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ProductListID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ContractID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id ShipmentID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id InvoiceID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ProductListID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ContractID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ShipmentID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *InvoiceID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ProductListID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

func ParseContractID(s string) (ContractID, error) {
	u, err := parseUUID("contract_id", s)
	return ContractID(u), err
}

func ParseShipmentID(s string) (ShipmentID, error) {
	u, err := parseUUID("shipment_id", s)
	return ShipmentID(u), err
}

func ParseInvoiceID(s string) (InvoiceID, error) {
	u, err := parseUUID("invoice_id", s)
	return InvoiceID(u), err
}

func ParseProductListID(s string) (ProductListID, error) {
	u, err := parseUUID("list_id", s)
	return ProductListID(u), err
}

// ParticipantName is the unique key of a business participant.
type ParticipantName string

func (n ParticipantName) String() string { return string(n) }

// ParseParticipantName trims and validates a participant name.
func ParseParticipantName(s string) (ParticipantName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "participant name is required")
	}
	if len(s) > maxParticipantNameLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "participant name must be 128 characters or less")
	}
	if strings.ContainsAny(s, "\x00/") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "participant name contains forbidden characters")
	}
	return ParticipantName(s), nil
}
