package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"coldchain/internal/supplychain/handler/mocks"
	"coldchain/internal/supplychain/models"
	"coldchain/internal/supplychain/service"
	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
	"coldchain/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type HandlerSuite struct {
	suite.Suite
	svc    *mocks.MockService
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	h := New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) TestReadingUsesPathShipment() {
	shipmentID := id.NewShipmentID()
	s.svc.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tx models.Transaction) (*service.Result, error) {
			reading, ok := tx.(models.TemperatureReadingTx)
			s.Require().True(ok, "got %T", tx)
			s.Equal(shipmentID, reading.Shipment)
			s.True(reading.Centigrade.Equal(decimal.RequireFromString("-3.5")))
			return &service.Result{Kind: models.KindTemperatureReading}, nil
		})

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/shipments/"+shipmentID.String()+"/readings", `{"centigrade": -3.5}`)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	testutil.AssertJSONContains(s.T(), rr, "kind", "TemperatureReading")
}

func (s *HandlerSuite) TestReadingRequiresCentigrade() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/shipments/"+id.NewShipmentID().String()+"/readings", `{}`)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
}

func (s *HandlerSuite) TestUnknownFieldRejected() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/invoices", `{"seller":"Seller Co","contract_id":"x","extra":1}`)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *HandlerSuite) TestMalformedPathID() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/shipments/not-a-uuid/received"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
}

func (s *HandlerSuite) TestEngineErrorsMapToStatus() {
	cases := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeInvalidTransition, http.StatusConflict},
		{dErrors.CodePreconditionFailed, http.StatusPreconditionFailed},
		{dErrors.CodeInvalidState, http.StatusUnprocessableEntity},
		{dErrors.CodeTimeout, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		s.Run(string(tc.code), func() {
			s.svc.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(tc.code, "rejected"))
			rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/shipments/"+id.NewShipmentID().String()+"/dispatch"))
			testutil.AssertStatusAndError(s.T(), rr, tc.status, string(tc.code))
		})
	}
}

func (s *HandlerSuite) TestFundingNormalizesDecision() {
	contractID := id.NewContractID()
	invoiceID := id.NewInvoiceID()
	s.svc.EXPECT().Submit(gomock.Any(), models.FundsApproval{
		Funder:   "Funder Co",
		Invoice:  invoiceID,
		Contract: contractID,
		Decision: models.DecisionOnHold,
	}).Return(&service.Result{Kind: models.KindFundsApproval}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/contracts/"+contractID.String()+"/funding", map[string]string{
		"funder":     " Funder Co ",
		"invoice_id": invoiceID.String(),
		"decision":   "on_hold",
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *HandlerSuite) TestFundingRejectsUnknownDecision() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/contracts/"+id.NewContractID().String()+"/funding", map[string]string{
		"funder":     "Funder Co",
		"invoice_id": id.NewInvoiceID().String(),
		"decision":   "maybe",
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
}

func (s *HandlerSuite) TestGetContractNotFound() {
	contractID := id.NewContractID()
	s.svc.EXPECT().Contract(gomock.Any(), contractID).Return(nil, dErrors.New(dErrors.CodeNotFound, "contract not found"))
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/contracts/"+contractID.String()))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *HandlerSuite) TestBatchReportsEveryIndex() {
	shipmentID := id.NewShipmentID()
	s.svc.EXPECT().SubmitBatch(gomock.Any(), gomock.Len(2)).DoAndReturn(
		func(_ context.Context, txs []models.Transaction) ([]service.BatchItem, error) {
			s.Equal(models.KindTemperatureReading, txs[0].Kind())
			s.Equal(models.KindShipmentReceived, txs[1].Kind())
			return []service.BatchItem{
				{Index: 0, Result: &service.Result{Kind: models.KindTemperatureReading}},
				{Index: 1, Err: dErrors.New(dErrors.CodeInvalidTransition, "shipment is CREATED, expected IN_TRANSIT")},
			}, nil
		})

	body := `{"transactions":[
		{"kind":"TemperatureReading","payload":{"shipment_id":"` + shipmentID.String() + `","centigrade":"4.2"}},
		{"kind":"Teleport","payload":{}},
		{"kind":"ShipmentReceived","payload":{"shipment_id":"` + shipmentID.String() + `"}}
	]}`
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/transactions/batch", body))
	testutil.AssertStatusOK(s.T(), rr)

	resp := testutil.UnmarshalResponse[BatchResponse](s.T(), rr)
	s.Equal(1, resp.Succeeded)
	s.Require().Len(resp.Results, 3)
	s.Equal(0, resp.Results[0].Index)
	s.NotNil(resp.Results[0].Result)
	s.Equal(string(dErrors.CodeValidation), resp.Results[1].Error)
	s.Equal(2, resp.Results[2].Index)
	s.Equal(string(dErrors.CodeInvalidTransition), resp.Results[2].Error)
}

func TestBatchEntryDecode(t *testing.T) {
	contractID := id.NewContractID()
	entry := BatchEntry{
		Kind:    models.KindCreateShipment,
		Payload: []byte(`{"shipper":"Polar Freight","contract_id":"` + contractID.String() + `"}`),
	}
	tx, err := entry.Decode()
	require.NoError(t, err)
	assert.Equal(t, models.CreateShipment{Shipper: "Polar Freight", Contract: contractID}, tx)

	_, err = BatchEntry{Kind: models.KindCreateShipment}.Decode()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = BatchEntry{Kind: models.KindPurchaseOrder, Payload: []byte(`{"buyer":"B","seller":"S","funder":"F","unit_count":0,"unit_price":"1"}`)}.Decode()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestPurchaseOrderNormalizesProductIDs(t *testing.T) {
	req := &PurchaseOrderRequest{
		Buyer: "Buyer Co", Seller: "Seller Co", Funder: "Funder Co",
		ProductIDs: []string{" vaccine-a", "vaccine-a ", "insulin"},
		UnitCount:  10,
		UnitPrice:  dPtr("2.5"),
	}
	req.Normalize()
	require.NoError(t, req.Validate())
	tx, err := req.Transaction()
	require.NoError(t, err)
	po := tx.(models.PurchaseOrder)
	assert.Equal(t, []string{"vaccine-a", "insulin"}, po.ProductIDs)
	assert.Equal(t, id.ParticipantName("Funder Co"), po.Funder)
}

func dPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestFundingRequestAcceptsOnHold(t *testing.T) {
	contractID := id.NewContractID()
	req := &FundingRequest{
		ContractID: contractID.String(),
		Funder:     "Funder Co",
		InvoiceID:  id.NewInvoiceID().String(),
		Decision:   " on_hold ",
	}
	req.Normalize()
	require.NoError(t, req.Validate())
	tx, err := req.Transaction()
	require.NoError(t, err)
	approval := tx.(models.FundsApproval)
	assert.Equal(t, models.DecisionOnHold, approval.Decision)
	assert.Equal(t, contractID, approval.Contract)
}
