package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coldchain/internal/supplychain/events"
	"coldchain/internal/supplychain/ledger"
	"coldchain/internal/supplychain/lifecycle"
	"coldchain/internal/supplychain/lock"
	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
	"coldchain/pkg/platform/sentinel"
	"coldchain/pkg/requestcontext"
)

// Submit routes tx to its handler. Pointer and value forms are accepted.
func (s *Service) Submit(ctx context.Context, tx models.Transaction) (*Result, error) {
	switch t := tx.(type) {
	case models.CreateProductList:
		return s.CreateProductList(ctx, t)
	case *models.CreateProductList:
		return s.CreateProductList(ctx, *t)
	case models.PurchaseOrder:
		return s.PurchaseOrder(ctx, t)
	case *models.PurchaseOrder:
		return s.PurchaseOrder(ctx, *t)
	case models.CreateShipment:
		return s.CreateShipment(ctx, t)
	case *models.CreateShipment:
		return s.CreateShipment(ctx, *t)
	case models.ShipmentDispatched:
		return s.DispatchShipment(ctx, t)
	case *models.ShipmentDispatched:
		return s.DispatchShipment(ctx, *t)
	case models.TemperatureReadingTx:
		return s.RecordReading(ctx, t)
	case *models.TemperatureReadingTx:
		return s.RecordReading(ctx, *t)
	case models.ShipmentReceived:
		return s.ReceiveShipment(ctx, t)
	case *models.ShipmentReceived:
		return s.ReceiveShipment(ctx, *t)
	case models.InvoiceUpdate:
		return s.UpdateInvoice(ctx, t)
	case *models.InvoiceUpdate:
		return s.UpdateInvoice(ctx, *t)
	case models.FundsApproval:
		return s.ApproveFunds(ctx, t)
	case *models.FundsApproval:
		return s.ApproveFunds(ctx, *t)
	case nil:
		return nil, dErrors.New(dErrors.CodeBadRequest, "transaction is required")
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unsupported transaction kind "+string(tx.Kind()))
	}
}

func (s *Service) CreateProductList(ctx context.Context, tx models.CreateProductList) (*Result, error) {
	return s.run(ctx, models.KindCreateProductList, func(ctx context.Context) (*lifecycle.Outcome, error) {
		seller, err := s.store.FindBusiness(ctx, tx.Seller)
		if err != nil {
			return nil, translate(err, "seller "+string(tx.Seller))
		}
		return s.commit(ctx, nil, func(ctx context.Context) (*lifecycle.Outcome, error) {
			return s.machine.CreateProductList(seller, tx.Products, requestcontext.Now(ctx))
		})
	})
}

func (s *Service) PurchaseOrder(ctx context.Context, tx models.PurchaseOrder) (*Result, error) {
	return s.run(ctx, models.KindPurchaseOrder, func(ctx context.Context) (*lifecycle.Outcome, error) {
		parties, err := s.findParticipants(ctx, tx.Buyer, tx.Seller, tx.Funder)
		if err != nil {
			return nil, err
		}
		return s.commit(ctx, nil, func(ctx context.Context) (*lifecycle.Outcome, error) {
			return s.machine.PurchaseOrder(tx, parties[tx.Buyer], parties[tx.Seller], parties[tx.Funder], requestcontext.Now(ctx))
		})
	})
}

func (s *Service) CreateShipment(ctx context.Context, tx models.CreateShipment) (*Result, error) {
	return s.run(ctx, models.KindCreateShipment, func(ctx context.Context) (*lifecycle.Outcome, error) {
		if _, err := s.store.FindContract(ctx, tx.Contract); err != nil {
			return nil, translate(err, "contract "+tx.Contract.String())
		}
		shipper, err := s.store.FindBusiness(ctx, tx.Shipper)
		if err != nil {
			return nil, translate(err, "shipper "+string(tx.Shipper))
		}
		keys := []string{lock.ContractKey(tx.Contract)}
		return s.commit(ctx, keys, func(ctx context.Context) (*lifecycle.Outcome, error) {
			c, err := s.store.FindContract(ctx, tx.Contract)
			if err != nil {
				return nil, translate(err, "contract "+tx.Contract.String())
			}
			existing, err := s.optionalShipment(ctx, tx.Contract)
			if err != nil {
				return nil, err
			}
			return s.machine.CreateShipment(c, shipper, existing, requestcontext.Now(ctx))
		})
	})
}

func (s *Service) DispatchShipment(ctx context.Context, tx models.ShipmentDispatched) (*Result, error) {
	return s.run(ctx, models.KindShipmentDispatched, func(ctx context.Context) (*lifecycle.Outcome, error) {
		return s.withShipment(ctx, tx.Shipment, false, func(ctx context.Context, c *models.Contract, sh *models.Shipment, _ ledger.Parties) (*lifecycle.Outcome, error) {
			return s.machine.DispatchShipment(c, sh, requestcontext.Now(ctx))
		})
	})
}

func (s *Service) RecordReading(ctx context.Context, tx models.TemperatureReadingTx) (*Result, error) {
	return s.run(ctx, models.KindTemperatureReading, func(ctx context.Context) (*lifecycle.Outcome, error) {
		return s.withShipment(ctx, tx.Shipment, false, func(ctx context.Context, c *models.Contract, sh *models.Shipment, _ ledger.Parties) (*lifecycle.Outcome, error) {
			return s.machine.RecordReading(c, sh, tx.Centigrade, requestcontext.Now(ctx))
		})
	})
}

func (s *Service) ReceiveShipment(ctx context.Context, tx models.ShipmentReceived) (*Result, error) {
	return s.run(ctx, models.KindShipmentReceived, func(ctx context.Context) (*lifecycle.Outcome, error) {
		return s.withShipment(ctx, tx.Shipment, true, func(ctx context.Context, c *models.Contract, sh *models.Shipment, p ledger.Parties) (*lifecycle.Outcome, error) {
			return s.machine.ReceiveShipment(c, sh, p, requestcontext.Now(ctx))
		})
	})
}

func (s *Service) UpdateInvoice(ctx context.Context, tx models.InvoiceUpdate) (*Result, error) {
	return s.run(ctx, models.KindInvoiceUpdate, func(ctx context.Context) (*lifecycle.Outcome, error) {
		if _, err := s.store.FindContract(ctx, tx.Contract); err != nil {
			return nil, translate(err, "contract "+tx.Contract.String())
		}
		seller, err := s.store.FindBusiness(ctx, tx.Seller)
		if err != nil {
			return nil, translate(err, "seller "+string(tx.Seller))
		}
		keys := []string{lock.ContractKey(tx.Contract)}
		return s.commit(ctx, keys, func(ctx context.Context) (*lifecycle.Outcome, error) {
			c, err := s.store.FindContract(ctx, tx.Contract)
			if err != nil {
				return nil, translate(err, "contract "+tx.Contract.String())
			}
			existing, err := s.optionalInvoice(ctx, tx.Contract)
			if err != nil {
				return nil, err
			}
			return s.machine.GenerateInvoice(c, seller, existing, requestcontext.Now(ctx))
		})
	})
}

func (s *Service) ApproveFunds(ctx context.Context, tx models.FundsApproval) (*Result, error) {
	return s.run(ctx, models.KindFundsApproval, func(ctx context.Context) (*lifecycle.Outcome, error) {
		c, err := s.store.FindContract(ctx, tx.Contract)
		if err != nil {
			return nil, translate(err, "contract "+tx.Contract.String())
		}
		if _, err := s.store.FindInvoice(ctx, tx.Invoice); err != nil {
			return nil, translate(err, "invoice "+tx.Invoice.String())
		}
		if _, err := s.store.FindBusiness(ctx, tx.Funder); err != nil {
			return nil, translate(err, "funder "+string(tx.Funder))
		}

		return s.commit(ctx, settlementKeys(c), func(ctx context.Context) (*lifecycle.Outcome, error) {
			c, err := s.store.FindContract(ctx, tx.Contract)
			if err != nil {
				return nil, translate(err, "contract "+tx.Contract.String())
			}
			inv, err := s.store.FindInvoice(ctx, tx.Invoice)
			if err != nil {
				return nil, translate(err, "invoice "+tx.Invoice.String())
			}
			sh, err := s.optionalShipment(ctx, c.ContractID)
			if err != nil {
				return nil, err
			}
			parties, err := s.settlementParties(ctx, c)
			if err != nil {
				return nil, err
			}
			// The approving funder is checked against the contract by the
			// machine, so load it by the submitted name.
			funder, err := s.store.FindBusiness(ctx, tx.Funder)
			if err != nil {
				return nil, translate(err, "funder "+string(tx.Funder))
			}
			parties.Funder = funder
			return s.machine.DecideFunding(c, inv, sh, tx.Decision, parties, requestcontext.Now(ctx))
		})
	})
}

type shipmentHandler func(ctx context.Context, c *models.Contract, sh *models.Shipment, p ledger.Parties) (*lifecycle.Outcome, error)

// withShipment resolves a shipment to its contract and runs fn under the
// contract lock. With settles set, participant locks are taken as well and
// the parties are loaded.
func (s *Service) withShipment(ctx context.Context, shipmentID id.ShipmentID, settles bool, fn shipmentHandler) (*lifecycle.Outcome, error) {
	sh, err := s.store.FindShipment(ctx, shipmentID)
	if err != nil {
		return nil, translate(err, "shipment "+shipmentID.String())
	}
	c, err := s.store.FindContract(ctx, sh.ContractID)
	if err != nil {
		return nil, translate(err, "contract "+sh.ContractID.String())
	}

	keys := []string{lock.ContractKey(c.ContractID)}
	if settles {
		keys = settlementKeys(c)
	}
	return s.commit(ctx, keys, func(ctx context.Context) (*lifecycle.Outcome, error) {
		sh, err := s.store.FindShipment(ctx, shipmentID)
		if err != nil {
			return nil, translate(err, "shipment "+shipmentID.String())
		}
		c, err := s.store.FindContract(ctx, sh.ContractID)
		if err != nil {
			return nil, translate(err, "contract "+sh.ContractID.String())
		}
		var parties ledger.Parties
		if settles {
			if parties, err = s.settlementParties(ctx, c); err != nil {
				return nil, err
			}
		}
		return fn(ctx, c, sh, parties)
	})
}

// settlementKeys orders the contract lock before the participant locks and
// sorts the participants, which keeps lock acquisition deadlock free.
func settlementKeys(c *models.Contract) []string {
	names := c.Parties()
	slices.Sort(names)
	keys := []string{lock.ContractKey(c.ContractID)}
	for _, n := range names {
		keys = append(keys, lock.ParticipantKey(n))
	}
	return keys
}

func (s *Service) settlementParties(ctx context.Context, c *models.Contract) (ledger.Parties, error) {
	found, err := s.findParticipants(ctx, c.Buyer, c.Seller, c.Funder)
	if err != nil {
		return ledger.Parties{}, err
	}
	return ledger.Parties{Buyer: found[c.Buyer], Seller: found[c.Seller], Funder: found[c.Funder]}, nil
}

func (s *Service) findParticipants(ctx context.Context, names ...id.ParticipantName) (map[id.ParticipantName]*models.Business, error) {
	found, err := s.store.FindBusinesses(ctx, names)
	if err != nil {
		return nil, translate(err, "participants")
	}
	for _, n := range names {
		if _, ok := found[n]; !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, "participant "+string(n)+" not found")
		}
	}
	return found, nil
}

func (s *Service) optionalShipment(ctx context.Context, contractID id.ContractID) (*models.Shipment, error) {
	sh, err := s.store.FindShipmentByContract(ctx, contractID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "shipment lookup")
	}
	return sh, nil
}

func (s *Service) optionalInvoice(ctx context.Context, contractID id.ContractID) (*models.Invoice, error) {
	inv, err := s.store.FindInvoiceByContract(ctx, contractID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "invoice lookup")
	}
	return inv, nil
}

// commit takes the keys, runs fn, validates the touched contracts and
// persists the outcome. Stores hand out copies, so a rejected outcome is
// simply dropped.
func (s *Service) commit(ctx context.Context, keys []string, fn func(ctx context.Context) (*lifecycle.Outcome, error)) (*lifecycle.Outcome, error) {
	if len(keys) > 0 {
		waitStart := time.Now()
		unlock, err := lock.LockAll(ctx, s.locker, keys...)
		s.metrics.ObserveLockWait(time.Since(waitStart))
		if err != nil {
			return nil, translate(err, "lock")
		}
		defer unlock()
	}

	out, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range out.Changes.Contracts {
		if err := c.CheckInvariants(); err != nil {
			return nil, err
		}
	}

	applyCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()
	if err := s.store.Apply(applyCtx, &out.Changes); err != nil {
		return nil, translate(err, "persist change set")
	}
	return out, nil
}

// run wraps one transaction with tracing, metrics, logging and post-commit
// events.
func (s *Service) run(ctx context.Context, kind models.Kind, fn func(ctx context.Context) (*lifecycle.Outcome, error)) (*Result, error) {
	start := time.Now()
	requestID := requestcontext.RequestID(ctx)
	ctx, span := s.tracer.Start(ctx, "coldchain.transaction",
		trace.WithAttributes(attribute.String("coldchain.kind", string(kind))))
	defer span.End()

	out, err := fn(ctx)
	if err != nil {
		code := dErrors.CodeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
		s.metrics.ObserveTransaction(string(kind), string(code), time.Since(start))
		if code == dErrors.CodeInternal || code == dErrors.CodeInvariantViolation {
			s.logger.ErrorContext(ctx, "transaction failed",
				"kind", kind, "error", err, "request_id", requestID)
		} else {
			s.logger.InfoContext(ctx, "transaction rejected",
				"kind", kind, "code", code, "reason", err.Error(), "request_id", requestID)
		}
		return nil, err
	}

	res := newResult(kind, out)
	if res.Contract != nil {
		span.SetAttributes(attribute.String("coldchain.contract_id", res.Contract.ContractID.String()))
	}
	span.SetStatus(codes.Ok, "")
	s.metrics.ObserveTransaction(string(kind), "ok", time.Since(start))
	if kind == models.KindTemperatureReading {
		s.metrics.IncrementReadings()
	}
	if res.Settlement != nil {
		s.metrics.IncrementSettlement(res.Settlement.Amount, res.Settlement.LateDelivery)
		s.logger.InfoContext(ctx, "contract settled",
			"contract_id", res.Settlement.ContractID,
			"amount", res.Settlement.Amount.String(),
			"adjusted_unit_price", res.Settlement.AdjustedUnitPrice.String(),
			"buyer_shortfall", res.Settlement.BuyerShortfall.String(),
			"request_id", requestID,
		)
	}
	s.logger.DebugContext(ctx, "transaction applied", "kind", kind, "request_id", requestID)

	s.publish(ctx, eventsFor(res, requestID, requestcontext.Now(ctx)))
	return res, nil
}

func (s *Service) publish(ctx context.Context, evs []events.Event) {
	if s.publisher == nil {
		return
	}
	for _, e := range evs {
		if err := s.publisher.Emit(ctx, e); err != nil {
			s.logger.WarnContext(ctx, "lifecycle event not published",
				"kind", e.Kind, "contract_id", e.ContractID, "error", err, "request_id", e.RequestID)
		}
	}
}
