package service

import (
	"strconv"
	"time"

	"coldchain/internal/supplychain/events"
	"coldchain/internal/supplychain/models"
)

// eventsFor derives the lifecycle events of a committed transaction.
func eventsFor(res *Result, requestID string, now time.Time) []events.Event {
	var out []events.Event
	add := func(e events.Event) {
		e.RequestID = requestID
		e.Timestamp = now
		out = append(out, e)
	}

	switch res.Kind {
	case models.KindCreateProductList:
		if l := res.ProductList; l != nil {
			add(events.Event{
				Kind:       events.KindProductListCreated,
				EntityID:   l.ListID.String(),
				Actor:      string(l.Seller),
				Attributes: map[string]string{"products": strconv.Itoa(len(l.Products))},
			})
		}
	case models.KindPurchaseOrder:
		if c := res.Contract; c != nil {
			add(events.Event{
				Kind:       events.KindContractCreated,
				ContractID: c.ContractID,
				EntityID:   c.ContractID.String(),
				Actor:      string(c.Buyer),
				Attributes: map[string]string{
					"seller":     string(c.Seller),
					"funder":     string(c.Funder),
					"unit_count": strconv.FormatInt(c.UnitCount, 10),
					"unit_price": c.UnitPrice.String(),
				},
			})
		}
	case models.KindCreateShipment:
		if sh := res.Shipment; sh != nil {
			add(shipmentEvent(events.KindShipmentCreated, sh))
		}
	case models.KindShipmentDispatched:
		if sh := res.Shipment; sh != nil {
			add(shipmentEvent(events.KindShipmentDispatched, sh))
		}
	case models.KindTemperatureReading:
		if sh := res.Shipment; sh != nil && sh.HasReadings() {
			e := shipmentEvent(events.KindReadingRecorded, sh)
			e.Attributes["centigrade"] = sh.Readings[len(sh.Readings)-1].Centigrade.String()
			add(e)
		}
	case models.KindShipmentReceived:
		if sh := res.Shipment; sh != nil {
			add(shipmentEvent(events.KindShipmentDelivered, sh))
		}
	case models.KindInvoiceUpdate:
		if inv := res.Invoice; inv != nil {
			add(events.Event{
				Kind:       events.KindInvoiceGenerated,
				ContractID: inv.ContractID,
				EntityID:   inv.InvoiceID.String(),
				Actor:      string(inv.Seller),
			})
		}
	case models.KindFundsApproval:
		if c := res.Contract; c != nil {
			add(events.Event{
				Kind:       events.KindFundingDecided,
				ContractID: c.ContractID,
				EntityID:   c.ContractID.String(),
				Actor:      string(c.Funder),
				Attributes: map[string]string{"funding_status": string(c.FundingStatus)},
			})
		}
	}

	if st := res.Settlement; st != nil {
		add(events.Event{
			Kind:       events.KindContractSettled,
			ContractID: st.ContractID,
			EntityID:   st.ContractID.String(),
			Attributes: map[string]string{
				"amount":              st.Amount.String(),
				"adjusted_unit_price": st.AdjustedUnitPrice.String(),
				"buyer_shortfall":     st.BuyerShortfall.String(),
				"late_delivery":       strconv.FormatBool(st.LateDelivery),
			},
		})
	}
	return out
}

func shipmentEvent(kind events.Kind, sh *models.Shipment) events.Event {
	return events.Event{
		Kind:       kind,
		ContractID: sh.ContractID,
		EntityID:   sh.ShipmentID.String(),
		Actor:      string(sh.Shipper),
		Attributes: map[string]string{"status": string(sh.Status)},
	}
}
