package store

import (
	"context"
	"fmt"
	"sync"

	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
	"coldchain/pkg/platform/sentinel"
)

// InMemory is a map-backed entity store. Entities are cloned on the way in and
// on the way out so callers never share pointers with the store.
type InMemory struct {
	mu           sync.RWMutex
	businesses   map[id.ParticipantName]*models.Business
	productLists map[id.ProductListID]*models.ProductList
	contracts    map[id.ContractID]*models.Contract
	shipments    map[id.ShipmentID]*models.Shipment
	invoices     map[id.InvoiceID]*models.Invoice

	shipmentByContract map[id.ContractID]id.ShipmentID
	invoiceByContract  map[id.ContractID]id.InvoiceID
}

func NewInMemory() *InMemory {
	return &InMemory{
		businesses:         make(map[id.ParticipantName]*models.Business),
		productLists:       make(map[id.ProductListID]*models.ProductList),
		contracts:          make(map[id.ContractID]*models.Contract),
		shipments:          make(map[id.ShipmentID]*models.Shipment),
		invoices:           make(map[id.InvoiceID]*models.Invoice),
		shipmentByContract: make(map[id.ContractID]id.ShipmentID),
		invoiceByContract:  make(map[id.ContractID]id.InvoiceID),
	}
}

func (s *InMemory) FindBusiness(_ context.Context, name id.ParticipantName) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.businesses[name]; ok {
		return b.Clone(), nil
	}
	return nil, fmt.Errorf("participant %s: %w", name, sentinel.ErrNotFound)
}

// FindBusinesses returns the participants that exist; missing names are
// absent from the map.
func (s *InMemory) FindBusinesses(_ context.Context, names []id.ParticipantName) (map[id.ParticipantName]*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.ParticipantName]*models.Business, len(names))
	for _, name := range names {
		if b, ok := s.businesses[name]; ok {
			out[name] = b.Clone()
		}
	}
	return out, nil
}

func (s *InMemory) FindProductList(_ context.Context, listID id.ProductListID) (*models.ProductList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.productLists[listID]; ok {
		return l.Clone(), nil
	}
	return nil, fmt.Errorf("product list %s: %w", listID, sentinel.ErrNotFound)
}

func (s *InMemory) FindContract(_ context.Context, contractID id.ContractID) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.contracts[contractID]; ok {
		return c.Clone(), nil
	}
	return nil, fmt.Errorf("contract %s: %w", contractID, sentinel.ErrNotFound)
}

func (s *InMemory) FindShipment(_ context.Context, shipmentID id.ShipmentID) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sh, ok := s.shipments[shipmentID]; ok {
		return sh.Clone(), nil
	}
	return nil, fmt.Errorf("shipment %s: %w", shipmentID, sentinel.ErrNotFound)
}

func (s *InMemory) FindShipmentByContract(_ context.Context, contractID id.ContractID) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if shipmentID, ok := s.shipmentByContract[contractID]; ok {
		return s.shipments[shipmentID].Clone(), nil
	}
	return nil, fmt.Errorf("shipment for contract %s: %w", contractID, sentinel.ErrNotFound)
}

func (s *InMemory) FindInvoice(_ context.Context, invoiceID id.InvoiceID) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inv, ok := s.invoices[invoiceID]; ok {
		return inv.Clone(), nil
	}
	return nil, fmt.Errorf("invoice %s: %w", invoiceID, sentinel.ErrNotFound)
}

func (s *InMemory) FindInvoiceByContract(_ context.Context, contractID id.ContractID) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if invoiceID, ok := s.invoiceByContract[contractID]; ok {
		return s.invoices[invoiceID].Clone(), nil
	}
	return nil, fmt.Errorf("invoice for contract %s: %w", contractID, sentinel.ErrNotFound)
}

// Apply writes every entity in cs or none. The one-shipment and one-invoice
// per contract constraints are checked before the first write.
func (s *InMemory) Apply(ctx context.Context, cs *models.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sh := range cs.Shipments {
		if existing, ok := s.shipmentByContract[sh.ContractID]; ok && existing != sh.ShipmentID {
			return fmt.Errorf("shipment for contract %s: %w", sh.ContractID, sentinel.ErrAlreadyUsed)
		}
	}
	for _, inv := range cs.Invoices {
		if existing, ok := s.invoiceByContract[inv.ContractID]; ok && existing != inv.InvoiceID {
			return fmt.Errorf("invoice for contract %s: %w", inv.ContractID, sentinel.ErrAlreadyUsed)
		}
	}

	for _, b := range cs.Businesses {
		s.businesses[b.Name] = b.Clone()
	}
	for _, l := range cs.ProductLists {
		s.productLists[l.ListID] = l.Clone()
	}
	for _, c := range cs.Contracts {
		s.contracts[c.ContractID] = c.Clone()
	}
	for _, sh := range cs.Shipments {
		s.shipments[sh.ShipmentID] = sh.Clone()
		s.shipmentByContract[sh.ContractID] = sh.ShipmentID
	}
	for _, inv := range cs.Invoices {
		s.invoices[inv.InvoiceID] = inv.Clone()
		s.invoiceByContract[inv.ContractID] = inv.InvoiceID
	}
	return nil
}

// ListContracts returns every contract.
func (s *InMemory) ListContracts(_ context.Context) ([]*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *InMemory) Ping(context.Context) error {
	return nil
}
