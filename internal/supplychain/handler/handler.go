// Package handler exposes the settlement engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coldchain/internal/supplychain/events"
	"coldchain/internal/supplychain/models"
	"coldchain/internal/supplychain/service"
	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
	"coldchain/pkg/platform/httputil"
	"coldchain/pkg/requestcontext"
)

// Service is the engine surface used by the handlers.
type Service interface {
	Submit(ctx context.Context, tx models.Transaction) (*service.Result, error)
	SubmitBatch(ctx context.Context, txs []models.Transaction) ([]service.BatchItem, error)
	Contract(ctx context.Context, contractID id.ContractID) (*models.Contract, error)
	Shipment(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error)
	Invoice(ctx context.Context, invoiceID id.InvoiceID) (*models.Invoice, error)
	Participant(ctx context.Context, name id.ParticipantName) (*models.Business, error)
	ProductList(ctx context.Context, listID id.ProductListID) (*models.ProductList, error)
	ContractEvents(ctx context.Context, contractID id.ContractID) ([]events.Event, error)
}

// Handler wires engine endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the engine endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/product-lists", h.HandleCreateProductList)
	r.Get("/product-lists/{id}", h.HandleGetProductList)
	r.Post("/purchase-orders", h.HandlePurchaseOrder)
	r.Post("/shipments", h.HandleCreateShipment)
	r.Get("/shipments/{id}", h.HandleGetShipment)
	r.Post("/shipments/{id}/dispatch", h.HandleDispatch)
	r.Post("/shipments/{id}/readings", h.HandleReading)
	r.Post("/shipments/{id}/received", h.HandleReceived)
	r.Post("/invoices", h.HandleInvoice)
	r.Get("/invoices/{id}", h.HandleGetInvoice)
	r.Get("/contracts/{id}", h.HandleGetContract)
	r.Get("/contracts/{id}/events", h.HandleContractEvents)
	r.Post("/contracts/{id}/funding", h.HandleFunding)
	r.Get("/participants/{name}", h.HandleGetParticipant)
	r.Post("/transactions/batch", h.HandleBatch)
}

func (h *Handler) HandleCreateProductList(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateProductListRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.submit(w, r, req, http.StatusCreated)
}

func (h *Handler) HandlePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[PurchaseOrderRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.submit(w, r, req, http.StatusCreated)
}

func (h *Handler) HandleCreateShipment(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateShipmentRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.submit(w, r, req, http.StatusCreated)
}

// HandleDispatch takes no body.
func (h *Handler) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	req := &ShipmentEventRequest{ShipmentID: chi.URLParam(r, "id"), kind: models.KindShipmentDispatched}
	req.Normalize()
	h.submit(w, r, req, http.StatusOK)
}

// HandleReceived takes no body.
func (h *Handler) HandleReceived(w http.ResponseWriter, r *http.Request) {
	req := &ShipmentEventRequest{ShipmentID: chi.URLParam(r, "id"), kind: models.KindShipmentReceived}
	req.Normalize()
	h.submit(w, r, req, http.StatusOK)
}

func (h *Handler) HandleReading(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[ReadingRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	req.ShipmentID = chi.URLParam(r, "id")
	h.submit(w, r, req, http.StatusCreated)
}

func (h *Handler) HandleInvoice(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[InvoiceRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.submit(w, r, req, http.StatusCreated)
}

func (h *Handler) HandleFunding(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[FundingRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	req.ContractID = chi.URLParam(r, "id")
	h.submit(w, r, req, http.StatusOK)
}

// submit converts req and dispatches it. Engine rejections are expected
// traffic and logged at info; the service already logs internal failures.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, req TransactionRequest, status int) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	tx, err := req.Transaction()
	if err != nil {
		h.logger.WarnContext(ctx, "invalid transaction request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Submit(ctx, tx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "transaction accepted",
		"request_id", requestID,
		"kind", tx.Kind(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, status, res)
}

func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	// Entries that fail decoding are reported in place and never submitted.
	resp := BatchResponse{Results: make([]BatchItemResponse, len(req.Transactions))}
	var (
		txs       []models.Transaction
		positions []int
	)
	for i, entry := range req.Transactions {
		tx, err := entry.Decode()
		if err != nil {
			resp.Results[i] = failedItem(i, err)
			continue
		}
		txs = append(txs, tx)
		positions = append(positions, i)
	}

	if len(txs) > 0 {
		items, err := h.service.SubmitBatch(ctx, txs)
		if err != nil {
			h.logger.WarnContext(ctx, "batch interrupted",
				"request_id", requestID,
				"error", err,
			)
		}
		for j, item := range items {
			i := positions[j]
			if item.Err != nil {
				resp.Results[i] = failedItem(i, item.Err)
				continue
			}
			resp.Results[i] = BatchItemResponse{Index: i, Result: item.Result}
		}
	}

	for _, item := range resp.Results {
		if item.Error == "" {
			resp.Succeeded++
		}
	}
	h.logger.InfoContext(ctx, "batch processed",
		"request_id", requestID,
		"submitted", len(req.Transactions),
		"succeeded", resp.Succeeded,
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func failedItem(index int, err error) BatchItemResponse {
	item := BatchItemResponse{Index: index, Error: string(dErrors.CodeOf(err))}
	if de, ok := dErrors.From(err); ok && de.Code != dErrors.CodeInternal {
		item.ErrorDescription = de.Message
	}
	return item
}

func (h *Handler) HandleGetContract(w http.ResponseWriter, r *http.Request) {
	contractID, err := id.ParseContractID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Contract(r.Context(), contractID)
	writeRead(w, c, err)
}

func (h *Handler) HandleContractEvents(w http.ResponseWriter, r *http.Request) {
	contractID, err := id.ParseContractID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	evs, err := h.service.ContractEvents(r.Context(), contractID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EventsResponse{ContractID: contractID, Events: evs})
}

func (h *Handler) HandleGetShipment(w http.ResponseWriter, r *http.Request) {
	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sh, err := h.service.Shipment(r.Context(), shipmentID)
	writeRead(w, sh, err)
}

func (h *Handler) HandleGetInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := id.ParseInvoiceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inv, err := h.service.Invoice(r.Context(), invoiceID)
	writeRead(w, inv, err)
}

func (h *Handler) HandleGetParticipant(w http.ResponseWriter, r *http.Request) {
	name, err := id.ParseParticipantName(chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	b, err := h.service.Participant(r.Context(), name)
	writeRead(w, b, err)
}

func (h *Handler) HandleGetProductList(w http.ResponseWriter, r *http.Request) {
	listID, err := id.ParseProductListID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	l, err := h.service.ProductList(r.Context(), listID)
	writeRead(w, l, err)
}

func writeRead(w http.ResponseWriter, v any, err error) {
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}
