//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"coldchain/internal/supplychain/models"
	"coldchain/internal/supplychain/store"
	id "coldchain/pkg/domain"
	"coldchain/pkg/platform/sentinel"
	"coldchain/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(store.EnsureSchema(context.Background(), s.postgres.DB))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "entities"))
}

func (s *PostgresStoreSuite) newContract() *models.Contract {
	minT := decimal.NewFromInt(2)
	c, err := models.NewContract(id.NewContractID(), "Seller Co", "Buyer Co", "Funder Co",
		models.Terms{UnitCount: 100, UnitPrice: decimal.RequireFromString("10.50"), MinTemperature: &minT}, time.Now().UTC())
	s.Require().NoError(err)
	return c
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	c := s.newContract()
	sh := models.NewShipment(id.NewShipmentID(), "Polar Freight", c.ContractID, time.Now().UTC())
	sh.Status = models.ShipmentInTransit
	reading := decimal.RequireFromString("4.25")
	sh.Readings = append(sh.Readings, models.TemperatureReading{Centigrade: reading, RecordedAt: time.Now().UTC()})
	sh.ObservedMin, sh.ObservedMax = &reading, &reading

	s.Require().NoError(s.store.Apply(ctx, &models.ChangeSet{
		Contracts: []*models.Contract{c},
		Shipments: []*models.Shipment{sh},
	}))

	got, err := s.store.FindContract(ctx, c.ContractID)
	s.Require().NoError(err)
	s.True(got.UnitPrice.Equal(c.UnitPrice))
	s.Require().NotNil(got.MinTemperature)
	s.True(got.MinTemperature.Equal(decimal.NewFromInt(2)))
	s.Nil(got.MaxTemperature)

	gotShipment, err := s.store.FindShipmentByContract(ctx, c.ContractID)
	s.Require().NoError(err)
	s.Equal(sh.ShipmentID, gotShipment.ShipmentID)
	s.Require().Len(gotShipment.Readings, 1)
	s.True(gotShipment.ObservedMax.Equal(reading))
}

func (s *PostgresStoreSuite) TestListContracts() {
	ctx := context.Background()
	first, second := s.newContract(), s.newContract()
	s.Require().NoError(s.store.Apply(ctx, &models.ChangeSet{Contracts: []*models.Contract{first, second}}))

	got, err := s.store.ListContracts(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	ids := []id.ContractID{got[0].ContractID, got[1].ContractID}
	s.ElementsMatch([]id.ContractID{first.ContractID, second.ContractID}, ids)
	for _, c := range got {
		s.NoError(c.CheckInvariants())
	}
}

func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.FindContract(context.Background(), id.NewContractID())
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindInvoiceByContract(context.Background(), id.NewContractID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindBusinesses() {
	ctx := context.Background()
	var cs models.ChangeSet
	for _, name := range []id.ParticipantName{"Buyer Co", "Seller Co"} {
		b, err := models.NewBusiness(name, models.RoleBuyer, models.Address{Country: "NL"}, decimal.NewFromInt(1))
		s.Require().NoError(err)
		cs.Businesses = append(cs.Businesses, b)
	}
	s.Require().NoError(s.store.Apply(ctx, &cs))

	got, err := s.store.FindBusinesses(ctx, []id.ParticipantName{"Buyer Co", "Seller Co", "Ghost"})
	s.Require().NoError(err)
	s.Len(got, 2)
}

// TestSecondInvoiceRollsBack checks that a unique violation aborts the whole
// change set.
func (s *PostgresStoreSuite) TestSecondInvoiceRollsBack() {
	ctx := context.Background()
	c := s.newContract()
	first := &models.Invoice{InvoiceID: id.NewInvoiceID(), ContractID: c.ContractID, Status: models.InvoiceGenerated}
	s.Require().NoError(s.store.Apply(ctx, &models.ChangeSet{
		Contracts: []*models.Contract{c},
		Invoices:  []*models.Invoice{first},
	}))

	changed := c.Clone()
	changed.FundingStatus = models.FundingApproved
	second := &models.Invoice{InvoiceID: id.NewInvoiceID(), ContractID: c.ContractID, Status: models.InvoiceGenerated}
	err := s.store.Apply(ctx, &models.ChangeSet{
		Contracts: []*models.Contract{changed},
		Invoices:  []*models.Invoice{second},
	})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	got, err := s.store.FindContract(ctx, c.ContractID)
	s.Require().NoError(err)
	s.Equal(models.FundingPlaced, got.FundingStatus)
}

func (s *PostgresStoreSuite) TestConcurrentShipmentCreation() {
	ctx := context.Background()
	c := s.newContract()
	s.Require().NoError(s.store.Apply(ctx, &models.ChangeSet{Contracts: []*models.Contract{c}}))

	const goroutines = 20
	var wg sync.WaitGroup
	var success, conflict atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sh := models.NewShipment(id.NewShipmentID(), "Polar Freight", c.ContractID, time.Now())
			err := s.store.Apply(ctx, &models.ChangeSet{Shipments: []*models.Shipment{sh}})
			if err == nil {
				success.Add(1)
			} else if errors.Is(err, sentinel.ErrAlreadyUsed) {
				conflict.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), success.Load())
	s.Equal(int32(goroutines-1), conflict.Load())
}
