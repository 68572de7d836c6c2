// Package telemetry accumulates temperature readings on a shipment and keeps
// the running extremes used for penalty pricing.
package telemetry

import (
	"time"

	"github.com/shopspring/decimal"

	"coldchain/internal/supplychain/models"
	dErrors "coldchain/pkg/domain-errors"
)

// Record appends a reading to sh and updates ObservedMin/ObservedMax in O(1).
// The caller must hold the lock of the shipment's contract.
func Record(sh *models.Shipment, centigrade decimal.Decimal, at time.Time) error {
	if !sh.Status.AcceptsReadings() {
		return dErrors.New(dErrors.CodeInvalidState,
			"shipment "+sh.ShipmentID.String()+" is "+string(sh.Status)+" and does not accept readings")
	}

	sh.Readings = append(sh.Readings, models.TemperatureReading{Centigrade: centigrade, RecordedAt: at})
	if sh.ObservedMin == nil || centigrade.LessThan(*sh.ObservedMin) {
		v := centigrade
		sh.ObservedMin = &v
	}
	if sh.ObservedMax == nil || centigrade.GreaterThan(*sh.ObservedMax) {
		v := centigrade
		sh.ObservedMax = &v
	}
	sh.UpdatedAt = at
	return nil
}

// Extremes returns the running min and max; both nil when no reading exists.
func Extremes(sh *models.Shipment) (minC, maxC *decimal.Decimal) {
	return sh.ObservedMin, sh.ObservedMax
}
