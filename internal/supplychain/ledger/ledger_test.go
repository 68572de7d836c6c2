package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
)

type LedgerSuite struct {
	suite.Suite
	now      time.Time
	contract *models.Contract
	shipment *models.Shipment
	parties  Parties
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func dec(v string) *decimal.Decimal {
	x := decimal.RequireFromString(v)
	return &x
}

func (s *LedgerSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c, err := models.NewContract(id.NewContractID(), "Seller Co", "Buyer Co", "Funder Co", models.Terms{
		UnitCount:        100,
		UnitPrice:        decimal.NewFromInt(10),
		MinTemperature:   dec("2"),
		MaxTemperature:   dec("8"),
		MinPenaltyFactor: dec("1"),
		MaxPenaltyFactor: dec("1"),
	}, s.now)
	s.Require().NoError(err)
	c.ShipmentStatus = models.ShipmentDelivered
	c.InvoiceStatus = models.InvoiceGenerated
	c.FundingStatus = models.FundingApproved
	s.contract = c

	sh := models.NewShipment(id.NewShipmentID(), "Polar Freight", c.ContractID, s.now)
	sh.Status = models.ShipmentDelivered
	s.shipment = sh

	buyer, err := models.NewBusiness("Buyer Co", models.RoleBuyer, models.Address{Country: "NL"}, decimal.NewFromInt(5000))
	s.Require().NoError(err)
	seller, err := models.NewBusiness("Seller Co", models.RoleSeller, models.Address{Country: "ES"}, decimal.NewFromInt(100))
	s.Require().NoError(err)
	funder, err := models.NewBusiness("Funder Co", models.RoleFunder, models.Address{Country: "UK"}, decimal.Zero)
	s.Require().NoError(err)
	funder.AssetBalance = decimal.NewFromInt(20000)
	s.parties = Parties{Buyer: buyer, Seller: seller, Funder: funder}
}

func (s *LedgerSuite) assertDec(want string, got decimal.Decimal, msg string) {
	s.True(got.Equal(decimal.RequireFromString(want)), "%s: got %s want %s", msg, got, want)
}

func (s *LedgerSuite) TestSettleWithExcursion() {
	s.shipment.ObservedMin = dec("0")
	s.shipment.ObservedMax = dec("9")

	res, err := Settle(s.contract, s.shipment, s.parties, s.now)
	s.Require().NoError(err)

	s.assertDec("7", res.AdjustedUnitPrice, "unit price")
	s.assertDec("700", res.Amount, "amount")
	s.assertDec("4300", s.parties.Buyer.AccountBalance, "buyer account")
	s.assertDec("800", s.parties.Seller.AccountBalance, "seller account")
	s.assertDec("19300", s.parties.Funder.AssetBalance, "funder assets")
	s.True(res.BuyerShortfall.IsZero())
	s.False(res.LateDelivery)
	s.Equal(s.now, res.SettledAt)
	s.assertDec("4300", res.Buyer.AccountBalance, "result buyer snapshot")
}

func (s *LedgerSuite) TestSettleWithoutReadings() {
	res, err := Settle(s.contract, s.shipment, s.parties, s.now)
	s.Require().NoError(err)
	s.assertDec("1000", res.Amount, "amount")
	s.assertDec("4000", s.parties.Buyer.AccountBalance, "buyer account")
}

func (s *LedgerSuite) TestShortfallBecomesDebt() {
	s.parties.Buyer.AccountBalance = decimal.NewFromInt(250)

	res, err := Settle(s.contract, s.shipment, s.parties, s.now)
	s.Require().NoError(err)

	s.assertDec("750", res.BuyerShortfall, "shortfall")
	s.assertDec("0", s.parties.Buyer.AccountBalance, "buyer account")
	s.assertDec("750", s.parties.Buyer.DebtBalance, "buyer debt")
	s.assertDec("1100", s.parties.Seller.AccountBalance, "seller still credited in full")
}

func (s *LedgerSuite) TestNegativeBalanceDebtsEverything() {
	s.parties.Buyer.AccountBalance = decimal.NewFromInt(-50)

	res, err := Settle(s.contract, s.shipment, s.parties, s.now)
	s.Require().NoError(err)
	s.assertDec("1000", res.BuyerShortfall, "shortfall")
	s.assertDec("-50", s.parties.Buyer.AccountBalance, "account untouched")
}

func (s *LedgerSuite) TestLateDeliveryIsFlaggedNotRepriced() {
	arrival := s.now.Add(-time.Second)
	s.contract.ArrivalDateTime = &arrival
	delivered := s.now
	s.shipment.DeliveredAt = &delivered
	s.shipment.ObservedMin = dec("0")
	s.shipment.ObservedMax = dec("9")

	res, err := Settle(s.contract, s.shipment, s.parties, s.now)
	s.Require().NoError(err)
	s.True(res.LateDelivery)
	s.assertDec("7", res.AdjustedUnitPrice, "unit price")
	s.assertDec("700", res.Amount, "amount")
	s.assertDec("4300", s.parties.Buyer.AccountBalance, "buyer account")
}

func (s *LedgerSuite) TestOnTimeDeliveryNotFlagged() {
	arrival := s.now.Add(time.Hour)
	s.contract.ArrivalDateTime = &arrival
	delivered := s.now
	s.shipment.DeliveredAt = &delivered

	res, err := Settle(s.contract, s.shipment, s.parties, s.now)
	s.Require().NoError(err)
	s.False(res.LateDelivery)
	s.assertDec("1000", res.Amount, "amount")
}

func (s *LedgerSuite) TestPreconditions() {
	cases := map[string]func(){
		"funding not approved": func() { s.contract.FundingStatus = models.FundingOnHold },
		"contract not delivered": func() {
			s.contract.ShipmentStatus = models.ShipmentInTransit
			s.shipment.Status = models.ShipmentInTransit
		},
		"already settled": func() { s.contract.Settled = true },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			s.SetupTest()
			mutate()
			res, err := Settle(s.contract, s.shipment, s.parties, s.now)
			s.Nil(res)
			s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed), "err=%v", err)
			s.assertDec("5000", s.parties.Buyer.AccountBalance, "no mutation")
		})
	}
}

func TestSettleMissingParty(t *testing.T) {
	c := &models.Contract{
		ShipmentStatus: models.ShipmentDelivered,
		FundingStatus:  models.FundingApproved,
		Terms:          models.Terms{UnitCount: 1, UnitPrice: decimal.NewFromInt(1)},
	}
	sh := &models.Shipment{Status: models.ShipmentDelivered}
	_, err := Settle(c, sh, Parties{}, time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
