package service

import (
	"context"

	"coldchain/internal/supplychain/events"
	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
)

func (s *Service) Contract(ctx context.Context, contractID id.ContractID) (*models.Contract, error) {
	c, err := s.store.FindContract(ctx, contractID)
	if err != nil {
		return nil, translate(err, "contract "+contractID.String())
	}
	return c, nil
}

func (s *Service) Shipment(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error) {
	sh, err := s.store.FindShipment(ctx, shipmentID)
	if err != nil {
		return nil, translate(err, "shipment "+shipmentID.String())
	}
	return sh, nil
}

func (s *Service) Invoice(ctx context.Context, invoiceID id.InvoiceID) (*models.Invoice, error) {
	inv, err := s.store.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, translate(err, "invoice "+invoiceID.String())
	}
	return inv, nil
}

func (s *Service) Participant(ctx context.Context, name id.ParticipantName) (*models.Business, error) {
	b, err := s.store.FindBusiness(ctx, name)
	if err != nil {
		return nil, translate(err, "participant "+string(name))
	}
	return b, nil
}

func (s *Service) ProductList(ctx context.Context, listID id.ProductListID) (*models.ProductList, error) {
	l, err := s.store.FindProductList(ctx, listID)
	if err != nil {
		return nil, translate(err, "product list "+listID.String())
	}
	return l, nil
}

// ContractEvents returns the recorded lifecycle events of a contract. The
// contract must exist even when no history is kept.
func (s *Service) ContractEvents(ctx context.Context, contractID id.ContractID) ([]events.Event, error) {
	if _, err := s.Contract(ctx, contractID); err != nil {
		return nil, err
	}
	lister, ok := s.publisher.(EventLister)
	if !ok {
		return []events.Event{}, nil
	}
	evs, err := lister.List(ctx, contractID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list contract events")
	}
	return evs, nil
}
