// Package service is the transaction dispatcher of the settlement engine.
//
// Every submission follows the same path: resolve the referenced entities,
// take the contract lock (plus participant locks when balances may move),
// re-read inside the lock, run the lifecycle handler on copies, check the
// contract invariants and persist the change set atomically. Events, metrics
// and logs are produced only after the commit.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"coldchain/internal/supplychain/events"
	"coldchain/internal/supplychain/lifecycle"
	"coldchain/internal/supplychain/lock"
	"coldchain/internal/supplychain/metrics"
	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
)

const (
	defaultTxTimeout        = 5 * time.Second
	defaultBatchConcurrency = 8
	tracerName              = "coldchain/supplychain"
)

// Store is the entity store consumed by the dispatcher. Finders return
// sentinel.ErrNotFound (possibly wrapped) for unknown keys; Apply commits a
// change set all-or-nothing.
type Store interface {
	FindBusiness(ctx context.Context, name id.ParticipantName) (*models.Business, error)
	FindBusinesses(ctx context.Context, names []id.ParticipantName) (map[id.ParticipantName]*models.Business, error)
	FindProductList(ctx context.Context, listID id.ProductListID) (*models.ProductList, error)
	FindContract(ctx context.Context, contractID id.ContractID) (*models.Contract, error)
	FindShipment(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error)
	FindShipmentByContract(ctx context.Context, contractID id.ContractID) (*models.Shipment, error)
	FindInvoice(ctx context.Context, invoiceID id.InvoiceID) (*models.Invoice, error)
	FindInvoiceByContract(ctx context.Context, contractID id.ContractID) (*models.Invoice, error)
	Apply(ctx context.Context, cs *models.ChangeSet) error
}

// Publisher receives lifecycle events after commit.
type Publisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// EventLister is implemented by publishers that keep a queryable history.
type EventLister interface {
	List(ctx context.Context, contractID id.ContractID) ([]events.Event, error)
}

// Service dispatches lifecycle transactions.
type Service struct {
	store            Store
	machine          *lifecycle.Machine
	locker           lock.Locker
	publisher        Publisher
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	txTimeout        time.Duration
	batchConcurrency int
}

// Option configures the Service.
type Option func(*Service)

func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithTxTimeout bounds the store commit of one transaction. Lock waiting is
// bounded by the caller's context instead.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

// WithBatchConcurrency caps how many contracts a batch processes in parallel.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:            store,
		machine:          lifecycle.NewMachine(),
		locker:           lock.NewKeyedMutex(),
		logger:           slog.Default(),
		tracer:           otel.Tracer(tracerName),
		txTimeout:        defaultTxTimeout,
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Result carries the entities a transaction created or changed.
type Result struct {
	Kind         models.Kind              `json:"kind"`
	ProductList  *models.ProductList      `json:"product_list,omitempty"`
	Contract     *models.Contract         `json:"contract,omitempty"`
	Shipment     *models.Shipment         `json:"shipment,omitempty"`
	Invoice      *models.Invoice          `json:"invoice,omitempty"`
	Participants []*models.Business       `json:"participants,omitempty"`
	Settlement   *models.SettlementResult `json:"settlement,omitempty"`
}

func newResult(kind models.Kind, out *lifecycle.Outcome) *Result {
	r := &Result{
		Kind:         kind,
		Participants: out.Changes.Businesses,
		Settlement:   out.Settlement,
	}
	if len(out.Changes.ProductLists) > 0 {
		r.ProductList = out.Changes.ProductLists[0]
	}
	if len(out.Changes.Contracts) > 0 {
		r.Contract = out.Changes.Contracts[0]
	}
	if len(out.Changes.Shipments) > 0 {
		r.Shipment = out.Changes.Shipments[0]
	}
	if len(out.Changes.Invoices) > 0 {
		r.Invoice = out.Changes.Invoices[0]
	}
	return r
}
