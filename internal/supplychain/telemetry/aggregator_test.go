package telemetry

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
)

func newShipment() *models.Shipment {
	return models.NewShipment(id.NewShipmentID(), "Polar Freight", id.NewContractID(), time.Now())
}

func TestRecordTracksExtremes(t *testing.T) {
	sh := newShipment()
	now := time.Now()

	minC, maxC := Extremes(sh)
	assert.Nil(t, minC)
	assert.Nil(t, maxC)

	for _, v := range []string{"4", "0", "9", "5.5"} {
		require.NoError(t, Record(sh, decimal.RequireFromString(v), now))
	}

	minC, maxC = Extremes(sh)
	require.NotNil(t, minC)
	require.NotNil(t, maxC)
	assert.True(t, minC.Equal(decimal.Zero), "min=%s", minC)
	assert.True(t, maxC.Equal(decimal.NewFromInt(9)), "max=%s", maxC)
	assert.Len(t, sh.Readings, 4)
	assert.True(t, sh.Readings[3].Centigrade.Equal(decimal.RequireFromString("5.5")), "append order kept")
}

func TestRecordSingleReadingSetsBoth(t *testing.T) {
	sh := newShipment()
	require.NoError(t, Record(sh, decimal.NewFromInt(-3), time.Now()))
	assert.True(t, sh.ObservedMin.Equal(decimal.NewFromInt(-3)))
	assert.True(t, sh.ObservedMax.Equal(decimal.NewFromInt(-3)))
	assert.NotSame(t, sh.ObservedMin, sh.ObservedMax)
}

func TestRecordRejectsInactiveShipment(t *testing.T) {
	for _, status := range []models.ShipmentStatus{models.ShipmentDelivered, models.ShipmentPending} {
		sh := newShipment()
		sh.Status = status
		err := Record(sh, decimal.NewFromInt(5), time.Now())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState), "status %s", status)
		assert.Empty(t, sh.Readings)
		assert.Nil(t, sh.ObservedMin)
	}
}
